// Package decode hides the platform text converter behind the interface
// the directory parser actually needs: bytes in UTF-16LE (as packed into
// long-name directory entries) out as a local-encoding string, with
// transliteration for characters the target encoding can't represent.
//
// Grounded on golang.org/x/text, the Unicode/encoding dependency carried
// by soypat-fat's go.mod (the pack's other FAT implementation) — the
// natural home for this concern given the corpus.
package decode

import (
	"unicode"

	unicodeenc "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Decoder turns the raw UTF-16LE bytes of a reconstructed long name into a
// string in the caller's target representation. A Decoder never fails the
// sort: translation problems come back as a non-nil error alongside a
// best-effort string, and the caller treats that as fserr.DecodeWarning.
type Decoder interface {
	DecodeUTF16LE(b []byte) (string, error)
}

// localeDecoder decodes UTF-16LE to UTF-8. When decoding fails partway
// and transliterate is set, the partial result additionally has combining
// marks stripped after an NFD decomposition, so accented characters
// degrade to their closest plain form (the "transliteration" the volume's
// decoder handle promises in SPEC_FULL.md §3). A successful decode is
// returned unchanged.
type localeDecoder struct {
	transliterate bool
}

// New builds the injected decoder used throughout the core. When
// transliterate is true, the best-effort ASCII-folded form is used only
// as a fallback when UTF-16 decoding itself fails partway through; it is
// never substituted for a successfully decoded name.
func New(transliterate bool) Decoder {
	return &localeDecoder{transliterate: transliterate}
}

func (d *localeDecoder) DecodeUTF16LE(b []byte) (string, error) {
	utf16Dec := unicodeenc.UTF16(unicodeenc.LittleEndian, unicodeenc.IgnoreBOM).NewDecoder()
	out, _, err := transform.Bytes(utf16Dec, b)
	if err != nil {
		if d.transliterate {
			return transliterate(string(out)), err
		}
		return string(out), err
	}
	return string(out), nil
}

// transliterate folds decoded text down to its closest representable form
// by decomposing accented runes and dropping the combining marks, using
// golang.org/x/text/unicode/norm + golang.org/x/text/runes the way the
// ecosystem recommends for ASCII-folding transforms.
func transliterate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
