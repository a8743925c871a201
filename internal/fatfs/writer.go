package fatfs

import (
	"github.com/scafiti/fatsort/internal/critsec"
	"github.com/scafiti/fatsort/internal/fserr"
)

// WriteDirectory serializes records back into the destination, densely
// packing each record's long fragments followed by its short entry across
// slot boundaries, splitting a record across a cluster boundary when
// necessary (chain != nil), or treating the region as one linear block
// (chain == nil, the FAT12/16 fixed root). Every slot after the last
// record through the end of the destination is zero-filled — the Open
// Question spec.md §9 leaves unresolved is decided here in favor of
// always zeroing the remainder, never leaving stale tail entries behind
// (SPEC_FULL.md §9).
//
// The whole write (every WriteAt call plus the final fsync) runs inside
// internal/critsec.Do so a signal arriving mid-rewrite is queued and
// replayed only after every slot, including the zero-filled tail, has
// reached the device (spec.md §4.6 "Atomicity").
func (v *Volume) WriteDirectory(records []LogicalRecord, chain []uint32, rootOffset int64) error {
	slots, err := serializeRecords(records)
	if err != nil {
		return err
	}

	capacity := destinationCapacitySlots(v, chain, rootOffset)
	if len(slots) > capacity {
		return fserr.New(fserr.Bounds, "sorted directory no longer fits its allocated space")
	}

	return critsec.Do(func() error {
		if chain != nil {
			if err := v.writeSlotsToChain(slots, chain); err != nil {
				return err
			}
		} else {
			if err := v.writeSlotsToRegion(slots, rootOffset); err != nil {
				return err
			}
		}
		return v.Device.Sync()
	})
}

// serializeRecords flattens every record's long fragments (on-disk order)
// followed by its short entry into one ordered list of 32-byte slots.
func serializeRecords(records []LogicalRecord) ([][]byte, error) {
	var slots [][]byte
	for _, r := range records {
		slots = append(slots, r.LongRaw...)
		shortSlot, err := encodeShortDirent(r.Short)
		if err != nil {
			return nil, fserr.Wrap(fserr.InvalidFormat, "encoding short entry for write", err)
		}
		slots = append(slots, shortSlot)
	}
	return slots, nil
}

func destinationCapacitySlots(v *Volume, chain []uint32, rootOffset int64) int {
	if chain != nil {
		return len(chain) * int(v.Geometry.MaxDirentsPerCluster)
	}
	return int(v.Boot.RootDirSectorCount) * int(v.Boot.BytesPerSector) / DirentSize
}

func (v *Volume) writeSlotsToChain(slots [][]byte, chain []uint32) error {
	perCluster := int(v.Geometry.MaxDirentsPerCluster)
	idx := 0
	for _, cluster := range chain {
		sector := ClusterToSector(v.Boot, cluster)
		base := int64(sector) * int64(v.Boot.BytesPerSector)
		for slot := 0; slot < perCluster; slot++ {
			off := base + int64(slot)*DirentSize
			var data []byte
			if idx < len(slots) {
				data = slots[idx]
				idx++
			} else {
				data = zeroSlot
			}
			if _, err := v.Device.WriteAt(data, off); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Volume) writeSlotsToRegion(slots [][]byte, rootOffset int64) error {
	total := int(v.Boot.RootDirSectorCount) * int(v.Boot.BytesPerSector) / DirentSize
	for i := 0; i < total; i++ {
		off := rootOffset + int64(i)*DirentSize
		var data []byte
		if i < len(slots) {
			data = slots[i]
		} else {
			data = zeroSlot
		}
		if _, err := v.Device.WriteAt(data, off); err != nil {
			return err
		}
	}
	return nil
}

var zeroSlot = make([]byte, DirentSize)
