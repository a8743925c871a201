// Package collate wraps golang.org/x/text/collate behind the single
// operation the ordering engine needs: produce a locale-defined collation
// key for a display name, then the caller byte-compares keys
// (SPEC_FULL.md §4.5, spec.md §4.5 rule 7's "locale collation" branch).
package collate

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Keyer produces a comparable collation key for a string under a fixed
// locale.
type Keyer struct {
	c   *collate.Collator
	buf *collate.Buffer
}

// New builds a Keyer for the given BCP-47 locale tag (e.g. "en", "de",
// "sv"). An unparsable tag falls back to language.Und, matching
// collate.New's own fallback so -L with a typo degrades to root-locale
// ordering instead of failing the sort. Punctuation and symbols are
// ignorable (shifted alternate handling), so "A-ha" compares like "Aha".
func New(tag string) *Keyer {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.Und
	}
	if shifted, err := lang.SetTypeForKey("ka", "shifted"); err == nil {
		lang = shifted
	}
	return &Keyer{
		c:   collate.New(lang),
		buf: &collate.Buffer{},
	}
}

// Key returns the collation key for s. The returned slice is only valid
// until the next call to Key on the same Keyer (collate.Buffer reuses its
// backing array), so callers that need to retain it must copy.
func (k *Keyer) Key(s string) []byte {
	k.buf.Reset()
	return k.c.KeyFromString(k.buf, s)
}
