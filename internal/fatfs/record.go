package fatfs

import (
	"github.com/hashicorp/go-multierror"

	"github.com/scafiti/fatsort/internal/decode"
	"github.com/scafiti/fatsort/internal/fserr"
)

// LogicalRecord is the atomic unit the ordering engine reorders: a short
// entry plus the ordered long-name fragments that precede it on disk, and
// the decoded display name those fragments spell out (spec.md §3 "logical
// record").
type LogicalRecord struct {
	Short     ShortDirent
	LongRaw   [][]byte // raw 32-byte long fragments, on-disk order (highest ordinal first)
	LongName  string   // decoded display name; empty if this record has no LFN
	ShortRaw  []byte   // raw 32-byte short entry
	SlotCount int       // LongRaw entries + 1, the number of 32-byte slots this record occupies
}

// DisplayName returns the long name if present, else the short 8.3 name.
func (r LogicalRecord) DisplayName() string {
	if r.LongName != "" {
		return r.LongName
	}
	return r.Short.ShortName()
}

// ParseDirectoryStream walks a directory's raw byte stream (one or more
// clusters concatenated, or the FAT12/16 fixed root area) and assembles it
// into LogicalRecords, stopping at the first free (0x00) entry (spec.md
// §4.4). A long-name run whose checksum, ordinal sequence, or terminal flag
// disagrees with the short entry it precedes is dropped with a
// DecodeWarning accumulated into the returned multierror rather than
// aborting the parse — but a run left dangling at end-of-stream with no
// short entry ever following it is a fatal parse error (spec.md §3): it is
// returned immediately as a distinct fserr.InvalidFormat, not folded into
// the warning list.
func ParseDirectoryStream(raw []byte, dec decode.Decoder) ([]LogicalRecord, error) {
	var records []LogicalRecord
	var warnings *multierror.Error

	var pending []longFragment
	var pendingRaw [][]byte

	flushPending := func() {
		pending = nil
		pendingRaw = nil
	}

	for off := 0; off+DirentSize <= len(raw); off += DirentSize {
		slot := raw[off : off+DirentSize]
		if slot[0] == entryFree {
			break
		}
		if slot[0] == entryDeleted {
			// A deleted short entry still occupies a slot and still sorts
			// (rule 3 sends it last); any fragments queued before it
			// belonged to a different, already-terminated run and are
			// discarded as orphans.
			if len(pending) > 0 {
				warnings = multierror.Append(warnings, fserr.New(fserr.DecodeWarning, "orphaned long-name fragment before deleted entry"))
				flushPending()
			}
			short, err := decodeShortDirent(slot)
			if err != nil {
				warnings = multierror.Append(warnings, fserr.Wrap(fserr.DecodeWarning, "decoding deleted short entry", err))
				continue
			}
			records = append(records, LogicalRecord{Short: short, ShortRaw: append([]byte(nil), slot...), SlotCount: 1})
			continue
		}

		if isLongDirent(slot[11]) { // attr byte is offset 11 within the slot
			frag, err := decodeLongDirent(slot)
			if err != nil {
				warnings = multierror.Append(warnings, fserr.Wrap(fserr.DecodeWarning, "decoding long-name fragment", err))
				flushPending()
				continue
			}
			pending = append(pending, frag)
			pendingRaw = append(pendingRaw, append([]byte(nil), slot...))
			continue
		}

		short, err := decodeShortDirent(slot)
		if err != nil {
			warnings = multierror.Append(warnings, fserr.Wrap(fserr.DecodeWarning, "decoding short entry", err))
			flushPending()
			continue
		}

		rec := LogicalRecord{Short: short, ShortRaw: append([]byte(nil), slot...)}
		if len(pending) > 0 {
			name, ok, decErr := assembleLongName(pending, short.RawName, dec)
			if ok {
				rec.LongName = name
				rec.LongRaw = pendingRaw
				if decErr != nil {
					warnings = multierror.Append(warnings, fserr.Wrap(fserr.DecodeWarning, "decoding long name for "+short.ShortName(), decErr))
				}
			} else {
				warnings = multierror.Append(warnings, fserr.New(fserr.DecodeWarning, "long-name checksum mismatch, falling back to short name for "+short.ShortName()))
			}
		}
		rec.SlotCount = len(rec.LongRaw) + 1
		records = append(records, rec)
		flushPending()
	}

	if len(pending) > 0 {
		return nil, fserr.New(fserr.InvalidFormat, "orphan long-name fragment run at end of directory stream with no terminating short entry")
	}

	return records, warnings.ErrorOrNil()
}

// assembleLongName validates fragment ordinals/checksum/order against the
// paired short name and reassembles them (highest ordinal first on disk, so
// display order is the reverse) into a decoded display string.
func assembleLongName(frags []longFragment, shortRaw [11]byte, dec decode.Decoder) (string, bool, error) {
	want := LFNChecksum(shortRaw)
	ordinals := make(map[uint8]bool)
	for i, f := range frags {
		if f.checksum != want {
			return "", false, nil
		}
		// On disk, fragments run from the highest ordinal down to 1
		// (spec.md §3 "subsequent fragments count down to 1"); a run out
		// of that strict descending order is rejected rather than silently
		// reassembled in the wrong sequence.
		if i > 0 && f.ordinal != frags[i-1].ordinal-1 {
			return "", false, nil
		}
		ordinals[f.ordinal] = true
	}
	for i := 1; i <= len(frags); i++ {
		if !ordinals[uint8(i)] {
			return "", false, nil
		}
	}
	// The first fragment on disk (the highest ordinal) must carry the
	// terminal flag (spec.md §4.4 "the first fragment is marked as
	// terminal").
	if !frags[0].isLast {
		return "", false, nil
	}

	// frags is in on-disk order: highest ordinal (last fragment, flagged
	// isLast) first. Display order is ordinal 1, 2, 3, ...
	ordered := make([]longFragment, len(frags))
	for _, f := range frags {
		ordered[f.ordinal-1] = f
	}

	var u16 []uint16
	for _, f := range ordered {
		u16 = append(u16, f.utf16...)
	}

	b := make([]byte, 0, len(u16)*2)
	for _, c := range u16 {
		if c == 0x0000 {
			break
		}
		if c == 0xFFFF {
			continue
		}
		b = append(b, byte(c), byte(c>>8))
	}

	name, err := dec.DecodeUTF16LE(b)
	return name, true, err
}
