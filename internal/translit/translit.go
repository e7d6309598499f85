// Package translit rewrites Cyrillic text with Latin letters for readers
// whose fonts lack Cyrillic glyphs.
package translit

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// table maps lower-case Cyrillic letters to Latin. Letters absent from the
// table pass through unchanged.
var table = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	// Ukrainian and Belarusian
	'і': "i", 'ї': "yi", 'є': "ye", 'ґ': "g", 'ў': "u",
}

// Transliterator implements pipeline.Transliterator. The zero value is not
// usable; call New.
type Transliterator struct {
	fold bool
}

// Option configures a Transliterator.
type Option func(*Transliterator)

// WithDiacriticFolding also strips combining marks after transliteration,
// so that "café" becomes "cafe".
func WithDiacriticFolding() Option {
	return func(t *Transliterator) { t.fold = true }
}

// New creates a Transliterator.
func New(opts ...Option) *Transliterator {
	t := &Transliterator{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transliterate returns s with Cyrillic letters replaced. It is safe for
// concurrent use.
func (t *Transliterator) Transliterate(s string) string {
	out, _, err := transform.String(t.transformer(), s)
	if err != nil {
		return s
	}
	return out
}

// transformer builds a fresh chain per call; transform chains keep state.
func (t *Transliterator) transformer() transform.Transformer {
	if !t.fold {
		return cyrillic{}
	}
	return transform.Chain(cyrillic{}, norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// cyrillic is a stateless transform.Transformer applying table.
type cyrillic struct{ transform.NopResetter }

func (cyrillic) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		repl, ok := replacement(r)
		if !ok {
			repl = string(src[nSrc : nSrc+size])
		}
		if nDst+len(repl) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], repl)
		nSrc += size
	}
	return nDst, nSrc, nil
}

// replacement looks r up in table, keeping the case of the first letter.
func replacement(r rune) (string, bool) {
	lower := unicode.ToLower(r)
	repl, ok := table[lower]
	if !ok {
		return "", false
	}
	if lower == r || repl == "" {
		return repl, true
	}
	first, size := utf8.DecodeRuneInString(repl)
	return strings.ToUpper(string(first)) + repl[size:], true
}
