package fatfs

import (
	"github.com/scafiti/fatsort/internal/fserr"
)

// Kind identifies which FAT variant a volume uses, derived from cluster
// count per spec.md §3 (never trusted from a filesystem-type string).
type Kind int

const (
	FAT12 Kind = iota
	FAT16
	FAT32
)

func (k Kind) String() string {
	switch k {
	case FAT12:
		return "FAT12"
	case FAT16:
		return "FAT16"
	case FAT32:
		return "FAT32"
	default:
		return "unknown"
	}
}

// BootSector is the decoded, variant-normalized view of sector 0: every
// field a caller needs regardless of which on-disk shape produced it.
type BootSector struct {
	Kind Kind

	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	Media             uint8

	TotalSectors uint32
	FATSize      uint32 // in sectors, one FAT copy

	RootCluster  uint32 // FAT32 only; 0 for FAT12/16 (fixed root area instead)
	FSInfoSector uint16 // FAT32 only

	VolumeLabel    string
	FileSystemType string
	VolumeID       uint32

	// Derived geometry, computed once here so every other package works
	// off the same numbers (spec.md §3 "Derived geometry").
	FirstDataSector   uint32
	RootDirSector      uint32 // FAT12/16 only
	RootDirSectorCount uint32 // FAT12/16 only
	CountOfClusters    uint32
}

// ParseBootSector decodes and validates the 512-byte boot sector, classifying
// the volume as FAT12/16/32 strictly from cluster count (spec.md §3, §4.1).
func ParseBootSector(sector []byte) (*BootSector, error) {
	if len(sector) < BootSectorSize {
		return nil, fserr.New(fserr.InvalidFormat, "boot sector shorter than 512 bytes")
	}
	if sector[510] != 0x55 || sector[511] != 0xAA {
		return nil, fserr.New(fserr.InvalidFormat, "missing 0x55AA boot sector signature")
	}

	common, err := unpackCommonBPB(sector)
	if err != nil {
		return nil, fserr.Wrap(fserr.InvalidFormat, "decoding BIOS parameter block", err)
	}
	if common.BytesPerSector == 0 || common.SectorsPerCluster == 0 || common.NumFATs == 0 {
		return nil, fserr.New(fserr.InvalidFormat, "zero bytes-per-sector, sectors-per-cluster, or FAT count")
	}
	if common.BytesPerSector%512 != 0 {
		return nil, fserr.New(fserr.InvalidFormat, "bytes-per-sector is not a multiple of 512")
	}
	if common.ReservedSectors == 0 {
		return nil, fserr.New(fserr.InvalidFormat, "reserved sector count is zero")
	}
	if common.RootEntryCount%32 != 0 {
		return nil, fserr.New(fserr.InvalidFormat, "root entry count is not a multiple of 32")
	}
	// BS_JmpBoot must be either a short jump (0xEB, ??, 0x90) or a near
	// jump (0xE9, ??, ??) over the rest of the BPB (original_source/FAT_fs.c:129-131).
	if !(common.JmpBoot[0] == 0xEB && common.JmpBoot[2] == 0x90) && common.JmpBoot[0] != 0xE9 {
		return nil, fserr.New(fserr.InvalidFormat, "invalid BS_JmpBoot jump instruction prefix")
	}

	bs := &BootSector{
		BytesPerSector:    common.BytesPerSector,
		SectorsPerCluster: common.SectorsPerCluster,
		ReservedSectors:   common.ReservedSectors,
		NumFATs:           common.NumFATs,
		RootEntryCount:    common.RootEntryCount,
		Media:             common.Media,
	}

	bs.TotalSectors = uint32(common.TotalSectors16)
	if bs.TotalSectors == 0 {
		bs.TotalSectors = common.TotalSectors32
	}

	rootDirSectors := (uint32(common.RootEntryCount)*DirentSize + uint32(common.BytesPerSector) - 1) / uint32(common.BytesPerSector)

	if common.FATSize16 != 0 {
		if common.RootEntryCount == 0 {
			return nil, fserr.New(fserr.InvalidFormat, "FAT12/16 volume has a zero root entry count")
		}
		bs.FATSize = uint32(common.FATSize16)
	} else {
		var ext fat32ExtBPB
		if err := unpackExtBPB(sector[commonBPBSize:], &ext); err != nil {
			return nil, fserr.Wrap(fserr.InvalidFormat, "decoding FAT32 extended BPB", err)
		}
		if ext.FATSize32 == 0 {
			return nil, fserr.New(fserr.InvalidFormat, "FAT32 volume has a zero 32-bit FAT size")
		}
		if common.RootEntryCount != 0 {
			return nil, fserr.New(fserr.InvalidFormat, "FAT32 volume has a nonzero legacy root entry count")
		}
		bs.FATSize = ext.FATSize32
		bs.RootCluster = ext.RootCluster
		bs.FSInfoSector = ext.FSInfoSector
		bs.VolumeID = ext.VolumeID
		bs.VolumeLabel = trimPadded(ext.VolumeLabel[:])
		bs.FileSystemType = trimPadded(ext.FileSystemType[:])
	}

	bs.RootDirSector = uint32(bs.ReservedSectors) + uint32(bs.NumFATs)*bs.FATSize
	bs.RootDirSectorCount = rootDirSectors
	bs.FirstDataSector = bs.RootDirSector + rootDirSectors

	dataSectors := bs.TotalSectors - bs.FirstDataSector
	bs.CountOfClusters = dataSectors / uint32(bs.SectorsPerCluster)

	switch {
	case bs.CountOfClusters < 4085:
		bs.Kind = FAT12
	case bs.CountOfClusters < 65525:
		bs.Kind = FAT16
	default:
		bs.Kind = FAT32
	}

	if bs.Kind != FAT32 {
		var ext fat1xExtBPB
		if err := unpackExtBPB(sector[commonBPBSize:], &ext); err != nil {
			return nil, fserr.Wrap(fserr.InvalidFormat, "decoding FAT12/16 extended BPB", err)
		}
		bs.VolumeID = ext.VolumeID
		bs.VolumeLabel = trimPadded(ext.VolumeLabel[:])
		bs.FileSystemType = trimPadded(ext.FileSystemType[:])
	}

	return bs, nil
}

// unpackExtBPB decodes the version-specific BPB tail into dst, which must
// be a pointer to fat32ExtBPB or fat1xExtBPB.
func unpackExtBPB(b []byte, dst interface{}) error {
	return restructUnpack(b, dst)
}

func trimPadded(b []byte) string {
	i := len(b)
	for i > 0 && (b[i-1] == ' ' || b[i-1] == 0x00) {
		i--
	}
	return string(b[:i])
}
