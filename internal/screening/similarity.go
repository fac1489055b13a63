package screening

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores two normalized strings on a 0..100 scale:
// (1 - distance/max(len a, len b)) * 100, clamped. Identical strings
// score 100; the function is symmetric.
func Similarity(a, b string) float64 {
	if a == b {
		return 100
	}

	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 100
	}

	d := levenshtein.ComputeDistance(a, b)

	score := (1 - float64(d)/float64(maxLen)) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}

	return score
}
