package fatfs_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scafiti/fatsort/internal/fatfs"
)

func buildFSInfoSector(free, next uint32) []byte {
	b := make([]byte, 512)
	binary.LittleEndian.PutUint32(b[0:4], 0x41615252)
	binary.LittleEndian.PutUint32(b[484:488], 0x61417272)
	binary.LittleEndian.PutUint32(b[488:492], free)
	binary.LittleEndian.PutUint32(b[492:496], next)
	binary.LittleEndian.PutUint32(b[508:512], 0xAA550000)
	return b
}

func TestReadFSInfoDecodesCounters(t *testing.T) {
	raw := buildFSInfoSector(123, 456)

	fs, err := fatfs.ReadFSInfo(raw)
	require.NoError(t, err)
	require.Equal(t, uint32(123), fs.FreeClusterCount)
	require.Equal(t, uint32(456), fs.NextFreeCluster)
}

func TestReadFSInfoRejectsBadSignature(t *testing.T) {
	raw := buildFSInfoSector(1, 2)
	raw[0] = 0x00

	_, err := fatfs.ReadFSInfo(raw)
	require.Error(t, err)
}

func TestEncodeFSInfoPreservesReservedRegionsAndCounters(t *testing.T) {
	raw := buildFSInfoSector(1, 2)
	copy(raw[4:484], []byte("reserved filler"))

	out := fatfs.EncodeFSInfo(raw, &fatfs.FSInfo{FreeClusterCount: 99, NextFreeCluster: 101})

	fs, err := fatfs.ReadFSInfo(out)
	require.NoError(t, err)
	require.Equal(t, uint32(99), fs.FreeClusterCount)
	require.Equal(t, uint32(101), fs.NextFreeCluster)
	require.Equal(t, raw[4:484], out[4:484])
}

func TestScanFreeClustersCountsOnlyFreeEntries(t *testing.T) {
	raw := make([]byte, 20) // 10 FAT16 entries
	setFAT16Entry(raw, 2, 3)
	setFAT16Entry(raw, 3, 0xFFFF) // EOC, used
	// clusters 4..9 left at 0 (free)

	table, err := fatfs.ReadTable(fatfs.FAT16, raw, 8)
	require.NoError(t, err)

	require.Equal(t, uint32(6), fatfs.ScanFreeClusters(table, 8))
}
