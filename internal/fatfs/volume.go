package fatfs

import (
	"github.com/scafiti/fatsort/internal/blockdev"
	"github.com/scafiti/fatsort/internal/decode"
	"github.com/scafiti/fatsort/internal/fserr"
)

// MaxDirentsPerCluster, ClusterSize, and MaxChainLength are the derived
// geometry values spec.md §3 names explicitly, computed once at open.
type Geometry struct {
	SectorSize            uint32
	ClusterSize           uint32
	MaxDirentsPerCluster  uint32
	MaxChainLength        uint32
}

// Volume is an opened FAT12/16/32 device or image: the device handle, the
// parsed boot sector, derived geometry, and the decoder handle (spec.md
// §3 "Volume", §4.1).
type Volume struct {
	Device   *blockdev.Device
	Boot     *BootSector
	Geometry Geometry
	Decoder  decode.Decoder

	fatCopies []*Table
}

// Open reads and validates sector 0, classifies the FAT type, computes
// geometry, and loads every FAT copy for comparison (spec.md §4.1).
// Callers own Device acquisition (mode/mount/lock semantics live in
// blockdev.Open) so this function only needs the already-opened device.
func Open(dev *blockdev.Device, transliterate bool) (*Volume, error) {
	sector := make([]byte, BootSectorSize)
	if _, err := dev.ReadAt(sector, 0); err != nil {
		return nil, err
	}

	boot, err := ParseBootSector(sector)
	if err != nil {
		return nil, err
	}
	if boot.CountOfClusters > 268435445 {
		return nil, fserr.New(fserr.InvalidFormat, "cluster count exceeds FAT32 maximum")
	}

	clusterSize := uint32(boot.BytesPerSector) * uint32(boot.SectorsPerCluster)
	if clusterSize == 0 || clusterSize > 64*1024 {
		return nil, fserr.New(fserr.InvalidFormat, "cluster size must be nonzero and at most 64 KiB")
	}

	v := &Volume{
		Device: dev,
		Boot:   boot,
		Geometry: Geometry{
			SectorSize:           uint32(boot.BytesPerSector),
			ClusterSize:          clusterSize,
			MaxDirentsPerCluster: clusterSize / DirentSize,
			MaxChainLength:       uint32((uint64(4) << 30) / uint64(clusterSize)),
		},
		Decoder: decode.New(transliterate),
	}

	if err := v.loadFATCopies(); err != nil {
		return nil, err
	}
	return v, nil
}

// Close is a no-op beyond releasing the caller's device handle; Volume
// does not own Device's lifetime (blockdev.Device.Close does).
func (v *Volume) Close() error {
	return nil
}

func (v *Volume) fatByteLen() int {
	return int(v.Boot.FATSize) * int(v.Boot.BytesPerSector)
}

func (v *Volume) fatOffset(copyIdx int) int64 {
	return int64(v.Boot.ReservedSectors)*int64(v.Boot.BytesPerSector) + int64(copyIdx)*int64(v.fatByteLen())
}

func (v *Volume) loadFATCopies() error {
	v.fatCopies = make([]*Table, v.Boot.NumFATs)
	for i := 0; i < int(v.Boot.NumFATs); i++ {
		raw := make([]byte, v.fatByteLen())
		if _, err := v.Device.ReadAt(raw, v.fatOffset(i)); err != nil {
			return err
		}
		t, err := ReadTable(v.Boot.Kind, raw, v.Boot.CountOfClusters)
		if err != nil {
			return err
		}
		v.fatCopies[i] = t
	}
	return nil
}

// Table returns the primary (first) decoded FAT copy, the one the walker
// and writer consult for cluster allocation state.
func (v *Volume) Table() *Table {
	return v.fatCopies[0]
}

// FATsMatch compares every loaded FAT copy for equality (spec.md §4.2).
func (v *Volume) FATsMatch() error {
	return FATsMatch(v.fatCopies)
}

// RootDirBytes reads the directory stream for the volume root: the fixed
// region for FAT12/16, or the cluster chain starting at Boot.RootCluster
// for FAT32.
func (v *Volume) RootDirBytes() ([]byte, []uint32, error) {
	if v.Boot.Kind == FAT32 {
		chain, err := WalkChain(v.Table(), v.Boot.RootCluster, v.Geometry.MaxChainLength)
		if err != nil {
			return nil, nil, err
		}
		b, err := v.readChain(chain)
		return b, chain, err
	}

	off := int64(v.Boot.RootDirSector) * int64(v.Boot.BytesPerSector)
	size := int64(v.Boot.RootDirSectorCount) * int64(v.Boot.BytesPerSector)
	b := make([]byte, size)
	if _, err := v.Device.ReadAt(b, off); err != nil {
		return nil, nil, err
	}
	return b, nil, nil
}

// DirBytesForCluster reads a subdirectory's full stream given its first
// cluster (spec.md §4.4 "FAT32 / general" source), returning the bytes
// and the chain they came from (needed by the writer to know slot
// capacity per cluster).
func (v *Volume) DirBytesForCluster(firstCluster uint32) ([]byte, []uint32, error) {
	chain, err := WalkChain(v.Table(), firstCluster, v.Geometry.MaxChainLength)
	if err != nil {
		return nil, nil, err
	}
	b, err := v.readChain(chain)
	return b, chain, err
}

// RefreshFSInfo re-scans the FAT's free-cluster count and rewrites the
// FAT32 FSInfo sector if it has drifted from the scanned ground truth
// (spec.md §2 item 3, Testable Property 6 "FSInfo consistency"). A no-op
// on FAT12/16, which carry no FSInfo sector.
func (v *Volume) RefreshFSInfo() error {
	if v.Boot.Kind != FAT32 || v.Boot.FSInfoSector == 0 {
		return nil
	}

	off := int64(v.Boot.FSInfoSector) * int64(v.Boot.BytesPerSector)
	raw := make([]byte, fsInfoSize)
	if _, err := v.Device.ReadAt(raw, off); err != nil {
		return err
	}

	fs, err := ReadFSInfo(raw)
	if err != nil {
		// A missing or corrupt FSInfo sector is informational only; a
		// volume lacking one is still a valid FAT32 volume.
		return nil
	}

	scanned := ScanFreeClusters(v.Table(), v.Boot.CountOfClusters)
	if fs.FreeClusterCount == scanned {
		return nil
	}
	fs.FreeClusterCount = scanned

	out := EncodeFSInfo(raw, fs)
	if _, err := v.Device.WriteAt(out, off); err != nil {
		return err
	}
	return v.Device.Sync()
}

func (v *Volume) readChain(chain []uint32) ([]byte, error) {
	buf := make([]byte, 0, len(chain)*int(v.Geometry.ClusterSize))
	for _, c := range chain {
		sector := ClusterToSector(v.Boot, c)
		off := int64(sector) * int64(v.Boot.BytesPerSector)
		clusterBuf := make([]byte, v.Geometry.ClusterSize)
		if _, err := v.Device.ReadAt(clusterBuf, off); err != nil {
			return nil, err
		}
		buf = append(buf, clusterBuf...)
	}
	return buf, nil
}
