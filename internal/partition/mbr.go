// Package partition reads an MBR partition table so fatsort can operate
// on one partition of a whole-disk image instead of requiring the caller
// to pre-extract it first (SPEC_FULL.md §6 --partition, adapted from
// ostafen-digler's internal/disk MBR parser).
package partition

import (
	"encoding/binary"

	"github.com/scafiti/fatsort/internal/fserr"
)

// Type identifies an MBR partition-table type byte relevant to FAT
// volumes; everything else is reported as TypeOther.
type Type uint8

const (
	TypeFAT12         Type = 0x01
	TypeFAT16Small    Type = 0x04
	TypeExtendedCHS   Type = 0x05
	TypeFAT16         Type = 0x06
	TypeFAT32CHS      Type = 0x0B
	TypeFAT32LBA      Type = 0x0C
	TypeFAT16LBA      Type = 0x0E
	TypeExtendedLBA   Type = 0x0F
	TypeGPTProtective Type = 0xEE
)

// IsFAT reports whether t names one of the FAT12/16/32 partition types.
func (t Type) IsFAT() bool {
	switch t {
	case TypeFAT12, TypeFAT16Small, TypeFAT16, TypeFAT32CHS, TypeFAT32LBA, TypeFAT16LBA:
		return true
	default:
		return false
	}
}

// Entry is one decoded MBR partition table entry.
type Entry struct {
	Type        Type
	Bootable    bool
	StartLBA    uint32
	TotalLBA    uint32
	SectorSize  uint32
}

// ByteOffset returns the partition's starting byte offset on the device.
func (e Entry) ByteOffset() int64 {
	return int64(e.StartLBA) * int64(e.SectorSize)
}

// ByteSize returns the partition's size in bytes.
func (e Entry) ByteSize() int64 {
	return int64(e.TotalLBA) * int64(e.SectorSize)
}

// ReadTable decodes the four primary partition table entries from a
// 512-byte MBR sector. sectorSize is normally 512; it is taken as a
// parameter rather than assumed so it can match a volume whose boot
// sector has already reported a different bytes-per-sector value.
func ReadTable(sector []byte, sectorSize uint32) ([]Entry, error) {
	const tableOffset = 0x1BE
	const entrySize = 16

	if len(sector) < 512 {
		return nil, fserr.New(fserr.InvalidFormat, "MBR sector shorter than 512 bytes")
	}
	if sector[510] != 0x55 || sector[511] != 0xAA {
		return nil, fserr.New(fserr.InvalidFormat, "missing 0x55AA MBR signature")
	}

	entries := make([]Entry, 0, 4)
	for i := 0; i < 4; i++ {
		off := tableOffset + i*entrySize
		raw := sector[off : off+entrySize]

		typ := Type(raw[0x04])
		if typ == 0 {
			continue // empty slot
		}
		entries = append(entries, Entry{
			Type:       typ,
			Bootable:   raw[0x00] == 0x80,
			StartLBA:   binary.LittleEndian.Uint32(raw[0x08:0x0C]),
			TotalLBA:   binary.LittleEndian.Uint32(raw[0x0C:0x10]),
			SectorSize: sectorSize,
		})
	}
	return entries, nil
}

// FindFAT returns the n-th (1-indexed, in table order) FAT-type partition
// entry, for the --partition flag's "pick partition N" semantics.
func FindFAT(entries []Entry, n int) (Entry, error) {
	count := 0
	for _, e := range entries {
		if !e.Type.IsFAT() {
			continue
		}
		count++
		if count == n {
			return e, nil
		}
	}
	return Entry{}, fserr.New(fserr.OptionConflict, "no FAT partition found at the requested index")
}
