package driver_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scafiti/fatsort/internal/blockdev"
	"github.com/scafiti/fatsort/internal/driver"
	"github.com/scafiti/fatsort/internal/fatfs"
	"github.com/scafiti/fatsort/internal/logger"
	"github.com/scafiti/fatsort/internal/options"
)

// buildFAT16Image assembles a minimal, internally-consistent FAT16 image
// (mirroring internal/fatfs's own test fixtures) whose root directory
// holds two out-of-order entries: "ZZZ.TXT" then "AAA.TXT".
func buildFAT16Image(t *testing.T) []byte {
	t.Helper()

	const (
		bytesPerSector    = 512
		sectorsPerCluster = 1
		reservedSectors   = 1
		numFATs           = 1
		rootEntryCount    = 32
		fatSectors        = 16
		countOfClusters   = 4090
	)
	rootDirSectors := rootEntryCount * fatfs.DirentSize / bytesPerSector
	firstDataSector := reservedSectors + numFATs*fatSectors + rootDirSectors
	totalSectors := firstDataSector + countOfClusters*sectorsPerCluster

	img := make([]byte, totalSectors*bytesPerSector)

	boot := img[:512]
	boot[0], boot[1], boot[2] = 0xEB, 0x3C, 0x90
	binary.LittleEndian.PutUint16(boot[11:], bytesPerSector)
	boot[13] = sectorsPerCluster
	binary.LittleEndian.PutUint16(boot[14:], reservedSectors)
	boot[16] = numFATs
	binary.LittleEndian.PutUint16(boot[17:], rootEntryCount)
	binary.LittleEndian.PutUint16(boot[19:], uint16(totalSectors))
	boot[21] = 0xF8
	binary.LittleEndian.PutUint16(boot[22:], fatSectors)
	copy(boot[43:54], "TESTVOL    ")
	copy(boot[54:62], "FAT16   ")
	boot[510], boot[511] = 0x55, 0xAA

	rootOff := (reservedSectors + numFATs*fatSectors) * bytesPerSector
	writeShortSlot(img, rootOff, "ZZZ     TXT")
	writeShortSlot(img, rootOff+32, "AAA     TXT")

	return img
}

func writeShortSlot(img []byte, off int, name string) {
	copy(img[off:off+11], name)
	img[off+11] = fatfs.AttrArchive
}

// TestListOnlyLeavesDeviceBytesUnchanged covers the list-only Scenario F
// invariant (spec.md §4.1): parsing and reporting an unsorted directory
// must never write to the device, even though the comparator would
// reorder "ZZZ.TXT" and "AAA.TXT" if allowed to.
func TestListOnlyLeavesDeviceBytesUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, buildFAT16Image(t), 0o600))

	dev, err := blockdev.Open(path, blockdev.ReadWrite, false)
	require.NoError(t, err)
	defer dev.Close()

	vol, err := fatfs.Open(dev, true)
	require.NoError(t, err)

	opt := options.SortPolicy{DirBias: options.DirsFirst}
	d := driver.New(vol, opt, options.Filters{}, logger.Quiet(&bytes.Buffer{}), nil)

	require.NoError(t, d.Run(true))
	require.Equal(t, 1, d.DirsVisited)
	require.Equal(t, 0, d.DirsSorted)

	before := buildFAT16Image(t)
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.Equal(before, after), "list-only mode must not modify the device")
}

// TestSortReordersRootDirectory is the write counterpart: with
// readOnly=false the same unsorted root is rewritten in name order and the
// new bytes on disk reflect it.
func TestSortReordersRootDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, buildFAT16Image(t), 0o600))

	dev, err := blockdev.Open(path, blockdev.ReadWrite, false)
	require.NoError(t, err)
	defer dev.Close()

	vol, err := fatfs.Open(dev, true)
	require.NoError(t, err)

	opt := options.SortPolicy{DirBias: options.DirsFirst}
	d := driver.New(vol, opt, options.Filters{}, logger.Quiet(&bytes.Buffer{}), nil)
	require.NoError(t, d.Run(false))
	require.Equal(t, 1, d.DirsSorted)

	raw, _, err := vol.RootDirBytes()
	require.NoError(t, err)

	records, err := fatfs.ParseDirectoryStream(raw, vol.Decoder)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	require.Equal(t, "AAA.TXT", records[0].DisplayName())
}
