package fatfs_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scafiti/fatsort/internal/decode"
	"github.com/scafiti/fatsort/internal/fatfs"
	"github.com/scafiti/fatsort/internal/fserr"
)

// buildShortSlot constructs a raw 32-byte short directory entry matching
// layout.go's shortDirentRaw field order.
func buildShortSlot(name [11]byte, attr uint8) []byte {
	b := make([]byte, 32)
	copy(b[0:11], name[:])
	b[11] = attr
	return b
}

// buildLongSlot constructs a raw 32-byte long-name fragment for ordinal
// (with isLast set on the bit) carrying the given UTF-16LE code units and
// checksum.
func buildLongSlot(ordinal uint8, isLast bool, checksum uint8, units []uint16) []byte {
	b := make([]byte, 32)
	o := ordinal
	if isLast {
		o |= 0x40
	}
	b[0] = o
	// Name1: 5 units at offset 1, Name2: 6 units at offset 14, Name3: 2
	// units at offset 28 (matching longDirentRaw's field layout).
	pad := make([]uint16, 13)
	copy(pad, units)
	for i := len(units); i < 13; i++ {
		pad[i] = 0xFFFF
	}
	if len(units) < 13 {
		pad[len(units)] = 0x0000
	}
	for i, u := range pad[0:5] {
		binary.LittleEndian.PutUint16(b[1+i*2:], u)
	}
	b[11] = fatfs.AttrLongName
	b[12] = 0
	b[13] = checksum
	for i, u := range pad[5:11] {
		binary.LittleEndian.PutUint16(b[14+i*2:], u)
	}
	for i, u := range pad[11:13] {
		binary.LittleEndian.PutUint16(b[28+i*2:], u)
	}
	return b
}

func TestParseDirectoryStreamShortOnly(t *testing.T) {
	var name [11]byte
	copy(name[:], "FILE    TXT")
	slot := buildShortSlot(name, fatfs.AttrArchive)

	raw := append(append([]byte{}, slot...), make([]byte, 32)...) // + terminator
	dec := decode.New(false)

	records, err := fatfs.ParseDirectoryStream(raw, dec)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "FILE.TXT", records[0].DisplayName())
	require.Equal(t, 1, records[0].SlotCount)
}

func TestParseDirectoryStreamWithLongName(t *testing.T) {
	var shortName [11]byte
	copy(shortName[:], "TRACK1~1MP3")
	checksum := fatfs.LFNChecksum(shortName)

	units := utf16Units("track1.mp3")
	longSlot := buildLongSlot(1, true, checksum, units)
	shortSlot := buildShortSlot(shortName, fatfs.AttrArchive)

	raw := append(append(append([]byte{}, longSlot...), shortSlot...), make([]byte, 32)...)
	dec := decode.New(false)

	records, err := fatfs.ParseDirectoryStream(raw, dec)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "track1.mp3", records[0].DisplayName())
	require.Equal(t, 2, records[0].SlotCount)
}

func TestParseDirectoryStreamOrphanFragmentWarns(t *testing.T) {
	var shortName [11]byte
	copy(shortName[:], "A       TXT")
	// Wrong checksum deliberately orphans the fragment.
	longSlot := buildLongSlot(1, true, 0xFF, utf16Units("a.txt"))
	shortSlot := buildShortSlot(shortName, fatfs.AttrArchive)

	raw := append(append(append([]byte{}, longSlot...), shortSlot...), make([]byte, 32)...)
	dec := decode.New(false)

	records, err := fatfs.ParseDirectoryStream(raw, dec)
	require.Error(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "A.TXT", records[0].DisplayName())
}

func TestParseDirectoryStreamDanglingFragmentIsFatal(t *testing.T) {
	var shortName [11]byte
	copy(shortName[:], "A       TXT")
	checksum := fatfs.LFNChecksum(shortName)
	longSlot := buildLongSlot(1, true, checksum, utf16Units("a.txt"))

	// The long fragment is never followed by a short entry before the
	// stream's terminating free slot.
	raw := append(append([]byte{}, longSlot...), make([]byte, 32)...)
	dec := decode.New(false)

	records, err := fatfs.ParseDirectoryStream(raw, dec)
	require.Error(t, err)
	require.Nil(t, records)
	require.True(t, fserr.Is(err, fserr.InvalidFormat))
}

func TestParseDirectoryStreamScrambledFragmentOrderWarns(t *testing.T) {
	var shortName [11]byte
	copy(shortName[:], "AB      TXT")
	checksum := fatfs.LFNChecksum(shortName)

	// Two fragments present, but emitted in ascending rather than
	// descending ordinal order on disk.
	frag1 := buildLongSlot(1, false, checksum, utf16Units("ab"))
	frag2 := buildLongSlot(2, true, checksum, utf16Units(".txt"))
	shortSlot := buildShortSlot(shortName, fatfs.AttrArchive)

	raw := append(append(append(append([]byte{}, frag1...), frag2...), shortSlot...), make([]byte, 32)...)
	dec := decode.New(false)

	records, err := fatfs.ParseDirectoryStream(raw, dec)
	require.Error(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "AB.TXT", records[0].DisplayName())
}

func TestParseDirectoryStreamMissingTerminalFlagWarns(t *testing.T) {
	var shortName [11]byte
	copy(shortName[:], "AB      TXT")
	checksum := fatfs.LFNChecksum(shortName)

	// A single fragment claiming ordinal 1 but never flagged as the
	// terminal (highest-ordinal) fragment.
	frag := buildLongSlot(1, false, checksum, utf16Units("ab.txt"))
	shortSlot := buildShortSlot(shortName, fatfs.AttrArchive)

	raw := append(append(append([]byte{}, frag...), shortSlot...), make([]byte, 32)...)
	dec := decode.New(false)

	records, err := fatfs.ParseDirectoryStream(raw, dec)
	require.Error(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "AB.TXT", records[0].DisplayName())
}

func utf16Units(s string) []uint16 {
	var out []uint16
	for _, r := range s {
		out = append(out, uint16(r))
	}
	return out
}
