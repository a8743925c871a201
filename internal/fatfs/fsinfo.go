package fatfs

import (
	"encoding/binary"

	"github.com/scafiti/fatsort/internal/fserr"
)

const (
	fsInfoLeadSig    = 0x41615252
	fsInfoStructSig  = 0x61417272
	fsInfoTrailSig   = 0xAA550000
	fsInfoSize       = 512
)

// FSInfo is the decoded FAT32 FSInfo sector: a hint cache for free-cluster
// count and the most recently allocated cluster (spec.md §2 item 3,
// Testable Property 6 "FSInfo consistency").
type FSInfo struct {
	FreeClusterCount uint32
	NextFreeCluster  uint32
}

// ReadFSInfo decodes the FSInfo sector. Only meaningful for FAT32; callers
// must check Boot.Kind first.
func ReadFSInfo(raw []byte) (*FSInfo, error) {
	if len(raw) < fsInfoSize {
		return nil, fserr.New(fserr.InvalidFormat, "FSInfo sector shorter than 512 bytes")
	}
	lead := binary.LittleEndian.Uint32(raw[0:4])
	structSig := binary.LittleEndian.Uint32(raw[484:488])
	trail := binary.LittleEndian.Uint32(raw[508:512])
	if lead != fsInfoLeadSig || structSig != fsInfoStructSig || trail != fsInfoTrailSig {
		return nil, fserr.New(fserr.InvalidFormat, "FSInfo sector signature mismatch")
	}
	return &FSInfo{
		FreeClusterCount: binary.LittleEndian.Uint32(raw[488:492]),
		NextFreeCluster:  binary.LittleEndian.Uint32(raw[492:496]),
	}, nil
}

// EncodeFSInfo re-serializes fs into a 512-byte sector, preserving the
// reserved regions of raw (the buffer most recently read from disk) and
// only overwriting the two counters this tool is entitled to touch.
func EncodeFSInfo(raw []byte, fs *FSInfo) []byte {
	out := make([]byte, fsInfoSize)
	copy(out, raw)
	binary.LittleEndian.PutUint32(out[488:492], fs.FreeClusterCount)
	binary.LittleEndian.PutUint32(out[492:496], fs.NextFreeCluster)
	return out
}

// ScanFreeClusters counts free clusters directly from the FAT, the
// ground truth FSInfo consistency is checked against (spec.md §8 property
// 6).
func ScanFreeClusters(t *Table, countOfClusters uint32) uint32 {
	var free uint32
	for c := uint32(2); c < countOfClusters+2; c++ {
		v, err := t.Entry(c)
		if err == nil && t.IsFree(v) {
			free++
		}
	}
	return free
}
