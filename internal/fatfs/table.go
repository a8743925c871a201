package fatfs

import (
	"fmt"

	"github.com/scafiti/fatsort/internal/fserr"
)

// clusterFree and the per-Kind clusterBad12/16/32 values mirror the
// reserved cluster values spec.md §3 calls out; end-of-chain thresholds
// also vary by Kind and are checked in IsEOC.
const (
	clusterFree = 0
	clusterBad12 = 0xFF7
	clusterBad16 = 0xFFF7
	clusterBad32 = 0x0FFFFFF7
)

// Table is one decoded copy of the File Allocation Table: a flat slice of
// cluster entries indexed by cluster number (entries 0 and 1 are reserved
// per spec.md §3 and never walked).
type Table struct {
	kind    Kind
	entries []uint32
}

// ReadTable decodes a FAT12/16/32 table from its packed on-disk bytes.
// FAT12 entries are 12 bits packed two-to-three-bytes; FAT16 and FAT32 are
// plain 16- and 32-bit little-endian arrays (spec.md §4.2).
func ReadTable(kind Kind, raw []byte, countOfClusters uint32) (*Table, error) {
	n := countOfClusters + 2
	t := &Table{kind: kind, entries: make([]uint32, n)}

	switch kind {
	case FAT12:
		for i := uint32(0); i < n; i++ {
			off := i + (i / 2)
			if int(off)+1 >= len(raw) {
				return nil, fserr.New(fserr.Bounds, "FAT12 table truncated")
			}
			packed := uint16(raw[off]) | uint16(raw[off+1])<<8
			if i%2 == 0 {
				t.entries[i] = uint32(packed & 0x0FFF)
			} else {
				t.entries[i] = uint32(packed >> 4)
			}
		}
	case FAT16:
		for i := uint32(0); i < n; i++ {
			off := i * 2
			if int(off)+1 >= len(raw) {
				return nil, fserr.New(fserr.Bounds, "FAT16 table truncated")
			}
			t.entries[i] = uint32(raw[off]) | uint32(raw[off+1])<<8
		}
	case FAT32:
		for i := uint32(0); i < n; i++ {
			off := i * 4
			if int(off)+3 >= len(raw) {
				return nil, fserr.New(fserr.Bounds, "FAT32 table truncated")
			}
			v := uint32(raw[off]) | uint32(raw[off+1])<<8 | uint32(raw[off+2])<<16 | uint32(raw[off+3])<<24
			t.entries[i] = v & 0x0FFFFFFF
		}
	}
	return t, nil
}

// Entry returns the raw next-cluster (or EOC/free/bad marker) value stored
// for cluster n.
func (t *Table) Entry(n uint32) (uint32, error) {
	if n >= uint32(len(t.entries)) {
		return 0, fserr.New(fserr.Bounds, "cluster index out of range")
	}
	return t.entries[n], nil
}

// SetEntry overwrites the stored next-cluster value for cluster n.
func (t *Table) SetEntry(n, value uint32) error {
	if n >= uint32(len(t.entries)) {
		return fserr.New(fserr.Bounds, "cluster index out of range")
	}
	t.entries[n] = value
	return nil
}

// IsEOC reports whether value marks the end of a cluster chain for this
// table's Kind.
func (t *Table) IsEOC(value uint32) bool {
	switch t.kind {
	case FAT12:
		return value >= 0xFF8
	case FAT16:
		return value >= 0xFFF8
	default:
		return value >= 0x0FFFFFF8
	}
}

// IsFree reports whether value marks a free cluster.
func (t *Table) IsFree(value uint32) bool {
	return value == clusterFree
}

// IsBad reports whether value marks a cluster the original formatter
// flagged as defective.
func (t *Table) IsBad(value uint32) bool {
	switch t.kind {
	case FAT12:
		return value == clusterBad12
	case FAT16:
		return value == clusterBad16
	default:
		return value == clusterBad32
	}
}

// Encode serializes the table back to its packed on-disk representation,
// sized for byteLen bytes (the on-disk FAT region size for this Kind).
func (t *Table) Encode(byteLen int) []byte {
	raw := make([]byte, byteLen)
	switch t.kind {
	case FAT12:
		for i, v := range t.entries {
			off := i + (i / 2)
			if off+1 >= len(raw) {
				break
			}
			packed := uint16(v & 0x0FFF)
			if i%2 == 0 {
				raw[off] = byte(packed)
				raw[off+1] = (raw[off+1] &^ 0x0F) | byte(packed>>8)
			} else {
				raw[off] = (raw[off] &^ 0xF0) | byte(packed<<4)
				raw[off+1] = byte(packed >> 4)
			}
		}
	case FAT16:
		for i, v := range t.entries {
			off := i * 2
			if off+1 >= len(raw) {
				break
			}
			raw[off] = byte(v)
			raw[off+1] = byte(v >> 8)
		}
	case FAT32:
		for i, v := range t.entries {
			off := i * 4
			if off+3 >= len(raw) {
				break
			}
			orig := uint32(raw[off]) | uint32(raw[off+1])<<8 | uint32(raw[off+2])<<16 | uint32(raw[off+3])<<24
			merged := (v & 0x0FFFFFFF) | (orig & 0xF0000000)
			raw[off] = byte(merged)
			raw[off+1] = byte(merged >> 8)
			raw[off+2] = byte(merged >> 16)
			raw[off+3] = byte(merged >> 24)
		}
	}
	return raw
}

// Equal reports whether two tables have identical entries, used by
// FATsMatch to detect diverging on-disk FAT copies (spec.md §4.2).
func (t *Table) Equal(other *Table) bool {
	if len(t.entries) != len(other.entries) {
		return false
	}
	for i, v := range t.entries {
		if other.entries[i] != v {
			return false
		}
	}
	return true
}

// FATsMatch compares every decoded FAT copy for equality, surfacing a
// FATMismatch error naming the first divergent copy index (spec.md §4.2,
// §7 "corrupt filesystem").
func FATsMatch(copies []*Table) error {
	for i := 1; i < len(copies); i++ {
		if !copies[0].Equal(copies[i]) {
			return fserr.New(fserr.FATMismatch, fmt.Sprintf("FAT copy 0 and FAT copy %d differ", i))
		}
	}
	return nil
}
