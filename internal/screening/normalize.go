// Package screening implements watchlist name matching: normalization,
// Levenshtein similarity scoring, and a metric-tree index supporting
// sub-linear approximate lookup with non-blocking rebuilds.
package screening

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	punctRe = regexp.MustCompile(`[^A-Z0-9 ]+`)
	wsRe    = regexp.MustCompile(`\s+`)

	// Decompose, drop combining marks, recompose: "Müller" -> "Muller".
	asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize produces the canonical matching form of a name: diacritics
// transliterated to ASCII, uppercased, punctuation replaced by spaces,
// whitespace collapsed.
func Normalize(name string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}

	s := strings.ToUpper(folded)
	s = punctRe.ReplaceAllString(s, " ")
	s = wsRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
