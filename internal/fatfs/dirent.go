package fatfs

import (
	"strings"
	"time"
)

// ShortDirent is the decoded 8.3 short directory entry (spec.md §3).
type ShortDirent struct {
	RawName      [11]byte // undecoded 8.3 name/extension, space-padded
	Attr         uint8
	FirstCluster uint32
	FileSize     uint32
	WriteTime    time.Time
	WriteDateRaw uint16
	WriteTimeRaw uint16
	raw          shortDirentRaw
}

// ModTimeKey forms the 32-bit (write_date<<16)|write_time key spec.md
// §4.5 rule 6 compares numerically.
func (s ShortDirent) ModTimeKey() uint32 {
	return uint32(s.WriteDateRaw)<<16 | uint32(s.WriteTimeRaw)
}

// IsVolumeLabel reports whether this entry is the volume label (spec.md
// §4.5 rule 1).
func (s ShortDirent) IsVolumeLabel() bool {
	return s.Attr&AttrVolumeID != 0 && s.Attr&AttrDirectory == 0
}

// IsDirectory reports whether this entry names a subdirectory.
func (s ShortDirent) IsDirectory() bool {
	return s.Attr&AttrDirectory != 0
}

// IsDeleted reports whether this slot has been unlinked (name[0] == 0xE5,
// spec.md §4.5 rule 3).
func (s ShortDirent) IsDeleted() bool {
	return s.RawName[0] == entryDeleted
}

// IsDotEntry reports whether this entry is "." or ".." (spec.md §4.5 rule
// 2).
func (s ShortDirent) IsDotEntry() bool {
	name := shortNameDisplay(s.RawName)
	return name == "." || name == ".."
}

// ShortName renders the 8.3 name in "NAME.EXT" display form (dot omitted
// for extension-less names).
func (s ShortDirent) ShortName() string {
	return shortNameDisplay(s.RawName)
}

func shortNameDisplay(raw [11]byte) string {
	base := strings.TrimRight(string(raw[:8]), " ")
	ext := strings.TrimRight(string(raw[8:11]), " ")
	if base == "" {
		return ""
	}
	// 0x05 is a documented substitute for a leading 0xE5 byte in a name
	// that is not actually deleted (spec.md §3 edge case).
	if raw[0] == 0x05 {
		base = string(rune(entryDeleted)) + base[1:]
	}
	if ext == "" {
		return base
	}
	return base + "." + ext
}

func decodeShortDirent(b []byte) (ShortDirent, error) {
	raw, err := unpackShortDirent(b)
	if err != nil {
		return ShortDirent{}, err
	}
	return ShortDirent{
		RawName:      raw.Name,
		Attr:         raw.Attr,
		FirstCluster: uint32(raw.FirstClusterHi)<<16 | uint32(raw.FirstClusterLo),
		FileSize:     raw.FileSize,
		WriteTime:    decodeFATTimestamp(raw.WriteDate, raw.WriteTime),
		WriteDateRaw: raw.WriteDate,
		WriteTimeRaw: raw.WriteTime,
		raw:          raw,
	}, nil
}

func encodeShortDirent(s ShortDirent) ([]byte, error) {
	raw := s.raw
	raw.Name = s.RawName
	raw.Attr = s.Attr
	raw.FirstClusterHi = uint16(s.FirstCluster >> 16)
	raw.FirstClusterLo = uint16(s.FirstCluster & 0xFFFF)
	raw.FileSize = s.FileSize
	return packShortDirent(raw)
}

// decodeFATTimestamp converts a packed FAT date/time pair to a time.Time
// for ShortDirent.WriteTime. -t (sort-by-modification-time) ordering does
// not use it; it compares ModTimeKey, built from the raw fields.
func decodeFATTimestamp(date, t uint16) time.Time {
	if date == 0 {
		return time.Time{}
	}
	year := int(date>>9) + 1980
	month := int((date >> 5) & 0x0F)
	day := int(date & 0x1F)
	hour := int(t >> 11)
	min := int((t >> 5) & 0x3F)
	sec := int((t & 0x1F) * 2)
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
}

// longFragment is one decoded long-name directory entry, still in on-disk
// fragment order (highest ordinal first).
type longFragment struct {
	ordinal  uint8
	isLast   bool
	checksum uint8
	utf16    []uint16
}

func decodeLongDirent(b []byte) (longFragment, error) {
	raw, err := unpackLongDirent(b)
	if err != nil {
		return longFragment{}, err
	}
	u := make([]uint16, 0, 13)
	u = append(u, raw.Name1[:]...)
	u = append(u, raw.Name2[:]...)
	u = append(u, raw.Name3[:]...)
	return longFragment{
		ordinal:  raw.Ordinal & ordinalMask,
		isLast:   raw.Ordinal&lastLongEntryFlag != 0,
		checksum: raw.Checksum,
		utf16:    u,
	}, nil
}

// LFNChecksum computes the checksum the FAT spec requires every long-name
// fragment to carry, derived from the paired short 8.3 name bytes (spec.md
// §3).
func LFNChecksum(rawName [11]byte) uint8 {
	var sum uint8
	for _, c := range rawName {
		// Rotate right one bit, then add the next byte, per the FAT LFN
		// checksum algorithm; no shortcut exists, it must be computed
		// byte-by-byte in this exact order.
		sum = ((sum & 1) << 7) + (sum >> 1) + c
	}
	return sum
}

func isLongDirent(attr uint8) bool {
	return attr&attrLongNameMask == AttrLongName
}
