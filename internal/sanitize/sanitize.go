// Package sanitize computes the normalized "sanitized" form genre,
// label, and artist relations carry alongside their display value, used
// for case/punctuation/diacritic-insensitive lookup from the virtual
// filesystem (spec §4.4, §4.7).
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper folds "Sigur Rós" and "Rós" to the same key by
// decomposing accented runes (NFD) and dropping the resulting combining
// marks before recomposing.
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Value lowercases s, strips diacritics, and collapses everything but
// letters, digits, and spaces, so that "Artist, The" and "ARTIST THE"
// both produce the key "artist the". Punctuation is dropped without
// leaving a space, so "Artist-The" produces "artistthe".
func Value(s string) string {
	folded, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		folded = s
	}

	var sb strings.Builder
	lastWasSpace := false
	for _, r := range folded {
		r = unicode.ToLower(r)
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastWasSpace = false
		case unicode.IsSpace(r):
			if !lastWasSpace && sb.Len() > 0 {
				sb.WriteRune(' ')
				lastWasSpace = true
			}
		default:
			// punctuation is dropped rather than replaced with a space,
			// so "Artist's" and "Artists" sanitize identically.
		}
	}

	return strings.TrimSpace(sb.String())
}
