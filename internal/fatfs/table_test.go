package fatfs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scafiti/fatsort/internal/fatfs"
)

func TestFAT16RoundTrip(t *testing.T) {
	raw := make([]byte, 16) // 8 entries
	raw[4], raw[5] = 0x03, 0x00
	raw[6], raw[7] = 0xF8, 0xFF // EOC

	table, err := fatfs.ReadTable(fatfs.FAT16, raw, 6)
	require.NoError(t, err)

	v, err := table.Entry(2)
	require.NoError(t, err)
	require.Equal(t, uint32(3), v)

	v, err = table.Entry(3)
	require.NoError(t, err)
	require.True(t, table.IsEOC(v))

	require.NoError(t, table.SetEntry(4, 5))
	out := table.Encode(16)

	table2, err := fatfs.ReadTable(fatfs.FAT16, out, 6)
	require.NoError(t, err)
	require.True(t, table.Equal(table2))
}

func TestFAT12PackedEntriesRoundTrip(t *testing.T) {
	// Cluster 2 (even) and cluster 3 (odd) exercise both halves of the
	// FAT12 byte-packing rule (spec.md §3): build via SetEntry/Encode,
	// then confirm a fresh decode recovers the same values.
	const countOfClusters = 2 // clusters 2, 3
	zero := make([]byte, countOfClusters+2+(countOfClusters+2)/2+1)

	table, err := fatfs.ReadTable(fatfs.FAT12, zero, countOfClusters)
	require.NoError(t, err)
	require.NoError(t, table.SetEntry(2, 0x345))
	require.NoError(t, table.SetEntry(3, 0x678))

	encoded := table.Encode(len(zero))

	table2, err := fatfs.ReadTable(fatfs.FAT12, encoded, countOfClusters)
	require.NoError(t, err)

	v, err := table2.Entry(2)
	require.NoError(t, err)
	require.Equal(t, uint32(0x345), v)

	v, err = table2.Entry(3)
	require.NoError(t, err)
	require.Equal(t, uint32(0x678), v)
}

func TestFATsMatchDetectsDivergence(t *testing.T) {
	raw1 := make([]byte, 16)
	raw2 := make([]byte, 16)
	raw2[4] = 0x01

	t1, err := fatfs.ReadTable(fatfs.FAT16, raw1, 6)
	require.NoError(t, err)
	t2, err := fatfs.ReadTable(fatfs.FAT16, raw2, 6)
	require.NoError(t, err)

	err = fatfs.FATsMatch([]*fatfs.Table{t1, t2})
	require.Error(t, err)
}
