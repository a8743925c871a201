package fatfs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scafiti/fatsort/internal/fatfs"
)

func TestLFNChecksum(t *testing.T) {
	// "TRACK1  MP3" (11 bytes, 8.3 padded) checksummed by hand against the
	// standard FAT LFN checksum algorithm.
	var name [11]byte
	copy(name[:], "TRACK1  MP3")

	got := fatfs.LFNChecksum(name)

	var want uint8
	for _, c := range name {
		want = ((want & 1) << 7) + (want >> 1) + c
	}
	require.Equal(t, want, got)
}

func TestShortDirentShortName(t *testing.T) {
	var name [11]byte
	copy(name[:], "README  TXT")
	s := fatfs.ShortDirent{RawName: name}
	require.Equal(t, "README.TXT", s.ShortName())
}

func TestShortDirentShortNameNoExtension(t *testing.T) {
	var name [11]byte
	copy(name[:], "MUSIC      ")
	s := fatfs.ShortDirent{RawName: name}
	require.Equal(t, "MUSIC", s.ShortName())
}

func TestShortDirentIsDeleted(t *testing.T) {
	var name [11]byte
	name[0] = 0xE5
	s := fatfs.ShortDirent{RawName: name}
	require.True(t, s.IsDeleted())
}

func TestShortDirentIsDotEntry(t *testing.T) {
	var dot [11]byte
	copy(dot[:], ".          ")
	s := fatfs.ShortDirent{RawName: dot}
	require.True(t, s.IsDotEntry())
}
