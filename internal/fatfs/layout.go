// Package fatfs implements the FAT12/16/32 on-disk model: boot sector,
// FAT accessor, cluster chain walker, directory-entry parser, and writer
// (SPEC_FULL.md §2-4). It knows nothing about CLI flags or ordering
// policy and does not use the internal/options package; ordering is done
// by internal/sortpolicy and filtering by internal/filter.
package fatfs

import (
	"encoding/binary"

	"github.com/go-restruct/restruct"
)

// byteOrder is the encoding every on-disk FAT structure uses; FAT predates
// any big-endian personal computer worth supporting.
var byteOrder = binary.LittleEndian

// BootSectorSize is the fixed size of sector 0 on every FAT volume.
const BootSectorSize = 512

// DirentSize is the fixed size of one directory entry slot, short or long.
const DirentSize = 32

// commonBPB is the portion of the boot sector whose layout is identical
// across FAT12, FAT16, and FAT32 (the BIOS Parameter Block proper, before
// the version-specific extended BPB). Decoded with restruct.Unpack the
// way dsoprea-go-exfat decodes its fixed boot-sector structures, since
// every field here is a plain fixed-width little-endian value with no
// conditional layout.
type commonBPB struct {
	JmpBoot           [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotalSectors16    uint16
	Media             uint8
	FATSize16         uint16
	SectorsPerTrack   uint16
	NumHeads          uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
}

const commonBPBSize = 36

func unpackCommonBPB(sector []byte) (commonBPB, error) {
	var b commonBPB
	if err := restruct.Unpack(sector[:commonBPBSize], byteOrder, &b); err != nil {
		return commonBPB{}, err
	}
	return b, nil
}

// fat32ExtBPB is the FAT32-only continuation of the BPB, present only
// when commonBPB.FATSize16 == 0 (spec.md §3).
type fat32ExtBPB struct {
	FATSize32      uint32
	ExtFlags       uint16
	FSVersion      uint16
	RootCluster    uint32
	FSInfoSector   uint16
	BackupBootSec  uint16
	Reserved       [12]byte
	DriveNumber    uint8
	Reserved1      uint8
	BootSignature  uint8
	VolumeID       uint32
	VolumeLabel    [11]byte
	FileSystemType [8]byte
}

// fat1xExtBPB is the FAT12/16 continuation of the BPB at the same offset.
type fat1xExtBPB struct {
	DriveNumber    uint8
	Reserved1      uint8
	BootSignature  uint8
	VolumeID       uint32
	VolumeLabel    [11]byte
	FileSystemType [8]byte
}

// shortDirentRaw is the 32-byte on-disk short directory entry (spec.md §3).
type shortDirentRaw struct {
	Name             [11]byte
	Attr             uint8
	NTReserved       uint8
	CreateTimeTenths uint8
	CreateTime       uint16
	CreateDate       uint16
	LastAccessDate   uint16
	FirstClusterHi   uint16
	WriteTime        uint16
	WriteDate        uint16
	FirstClusterLo   uint16
	FileSize         uint32
}

func unpackShortDirent(b []byte) (shortDirentRaw, error) {
	var s shortDirentRaw
	err := restruct.Unpack(b[:DirentSize], byteOrder, &s)
	return s, err
}

func packShortDirent(s shortDirentRaw) ([]byte, error) {
	return restruct.Pack(byteOrder, &s)
}

// longDirentRaw is the 32-byte on-disk long-name fragment (spec.md §3).
type longDirentRaw struct {
	Ordinal    uint8
	Name1      [5]uint16
	Attr       uint8
	Type       uint8
	Checksum   uint8
	Name2      [6]uint16
	FirstClust uint16
	Name3      [2]uint16
}

func unpackLongDirent(b []byte) (longDirentRaw, error) {
	var l longDirentRaw
	err := restruct.Unpack(b[:DirentSize], byteOrder, &l)
	return l, err
}

func packLongDirent(l longDirentRaw) ([]byte, error) {
	return restruct.Pack(byteOrder, &l)
}

// restructUnpack is a thin pass-through used where the destination type
// varies by FAT kind (fat32ExtBPB vs fat1xExtBPB).
func restructUnpack(b []byte, dst interface{}) error {
	return restruct.Unpack(b, byteOrder, dst)
}

// AttrReadOnly .. AttrLongName mirror the FAT attribute byte bits used
// throughout the parser and ordering engine (spec.md §3).
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrVolumeID  = 0x08
	AttrDirectory = 0x10
	AttrArchive   = 0x20
	// AttrLongName is the sentinel attribute value marking a long-name
	// fragment: read-only | hidden | system | volume-id all set at once.
	AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
	attrLongNameMask = 0x3F
)

const (
	// entryFree marks the end of a directory stream (0x00 at name[0]).
	entryFree = 0x00
	// entryDeleted marks a deleted entry (0xE5 at name[0]).
	entryDeleted = 0xE5
	// lastLongEntryFlag is the high bit of a long entry's ordinal marking
	// it the first (highest-numbered, topmost) fragment on disk.
	lastLongEntryFlag = 0x40
	ordinalMask       = 0x1F
)
