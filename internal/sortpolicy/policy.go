// Package sortpolicy implements the ordering engine: the fixed 8-rule
// comparator over fatfs.LogicalRecord values (spec.md §4.5), plus the
// random-shuffle mode that replaces comparison entirely.
package sortpolicy

import (
	"strings"

	"github.com/scafiti/fatsort/internal/collate"
	"github.com/scafiti/fatsort/internal/fatfs"
	"github.com/scafiti/fatsort/internal/options"
)

// Policy is the compiled, ready-to-compare form of an options.SortPolicy:
// a locale collator is built once (if needed) rather than per comparison.
type Policy struct {
	opt    options.SortPolicy
	keyer  *collate.Keyer // non-nil whenever neither ASCII nor Natural is set, Locale empty or not
}

// New compiles opt into a Policy. Building the collate.Keyer here, once,
// is why Policy exists instead of comparing directly against
// options.SortPolicy on every call.
//
// Locale collation is the default name-comparison mode (matching the
// original tool's use of the process locale via strcoll): an empty
// opt.Locale still builds a root-locale (language.Und) Keyer, used
// unless -a or -n explicitly request byte-for-byte or natural order.
func New(opt options.SortPolicy) *Policy {
	p := &Policy{opt: opt}
	if !opt.ASCII && !opt.Natural {
		p.keyer = collate.New(opt.Locale)
	}
	return p
}

// IsRandom reports whether this policy was compiled with random mode,
// which the driver needs to know before deciding whether to sort.Stable
// or sortpolicy.Shuffle a directory's records.
func (p *Policy) IsRandom() bool {
	return p.opt.Random
}

// Less implements the 8 fixed-precedence rules of spec.md §4.5. The first
// rule that decides the pair wins; Random and ListOnly short-circuit at
// rule 4 and report records as equal, relying on the caller to have
// already put the list in the desired (shuffled or insertion) order.
func (p *Policy) Less(a, b *fatfs.LogicalRecord) bool {
	return p.compare(a, b) < 0
}

func (p *Policy) compare(a, b *fatfs.LogicalRecord) int {
	if c := ruleVolumeLabel(a, b); c != 0 {
		return c
	}
	if c := ruleDotEntries(a, b); c != 0 {
		return c
	}
	if c := ruleDeleted(a, b); c != 0 {
		return c
	}
	if p.opt.ListOnly || p.opt.Random {
		return 0
	}

	if c := p.ruleDirBias(a, b); c != 0 {
		return c
	}

	c := 0
	if p.opt.ByModTime {
		c = ruleModTime(a, b)
	}
	if c == 0 {
		c = p.ruleName(a, b)
	}
	if p.opt.Reverse && c != 0 {
		c = -c
	}
	return c
}

func ruleVolumeLabel(a, b *fatfs.LogicalRecord) int {
	av, bv := a.Short.IsVolumeLabel(), b.Short.IsVolumeLabel()
	switch {
	case av && !bv:
		return -1
	case !av && bv:
		return 1
	default:
		return 0
	}
}

func ruleDotEntries(a, b *fatfs.LogicalRecord) int {
	rank := func(r *fatfs.LogicalRecord) int {
		switch r.Short.ShortName() {
		case ".":
			return 0
		case "..":
			return 1
		default:
			return 2
		}
	}
	ra, rb := rank(a), rank(b)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

func ruleDeleted(a, b *fatfs.LogicalRecord) int {
	ad, bd := a.Short.IsDeleted(), b.Short.IsDeleted()
	switch {
	case ad && !bd:
		return 1
	case !ad && bd:
		return -1
	default:
		return 0
	}
}

func (p *Policy) ruleDirBias(a, b *fatfs.LogicalRecord) int {
	if p.opt.DirBias == options.Mixed {
		return 0
	}
	ad, bd := a.Short.IsDirectory(), b.Short.IsDirectory()
	if ad == bd {
		return 0
	}
	dirFirst := p.opt.DirBias == options.DirsFirst
	switch {
	case ad && !bd:
		if dirFirst {
			return -1
		}
		return 1
	default: // !ad && bd
		if dirFirst {
			return 1
		}
		return -1
	}
}

func ruleModTime(a, b *fatfs.LogicalRecord) int {
	ak, bk := modTimeKey(a), modTimeKey(b)
	switch {
	case ak < bk:
		return -1
	case ak > bk:
		return 1
	default:
		return 0
	}
}

func modTimeKey(r *fatfs.LogicalRecord) uint32 {
	return r.Short.ModTimeKey()
}

func (p *Policy) ruleName(a, b *fatfs.LogicalRecord) int {
	na := p.normalizeName(a.DisplayName())
	nb := p.normalizeName(b.DisplayName())

	switch {
	case p.opt.Natural:
		return compareNatural(na, nb)
	case p.opt.ASCII || p.keyer == nil:
		return strings.Compare(na, nb)
	default:
		ka, kb := p.keyer.Key(na), p.keyer.Key(nb)
		return compareBytes(ka, kb)
	}
}

func (p *Policy) normalizeName(name string) string {
	name = stripPrefix(name, p.opt.Prefixes)
	if p.opt.IgnoreCase {
		name = strings.ToLower(name)
	}
	return name
}

// stripPrefix removes the first matching configured prefix (case
// insensitive), if any, from the front of name (spec.md §4.5 rule 7,
// Scenario C).
func stripPrefix(name string, prefixes []string) string {
	for _, pfx := range prefixes {
		if len(pfx) <= len(name) && strings.EqualFold(name[:len(pfx)], pfx) {
			return name[len(pfx):]
		}
	}
	return name
}

func compareBytes(a, b []byte) int {
	switch {
	case string(a) < string(b):
		return -1
	case string(a) > string(b):
		return 1
	default:
		return 0
	}
}
