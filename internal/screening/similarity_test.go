package screening

import (
	"math"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "OSAMA BIN LADEN", "OSAMA BIN LADEN", 100},
		{"both empty", "", "", 100},
		{"one empty", "ABC", "", 0},
		{"single substitution", "ABC", "ABD", 100.0 * 2 / 3},
		{"two deletions", "OSAMA B LADEN", "OSAMA BIN LADEN", 100.0 * 13 / 15},
		{"one edit in ten runes", "IVAN PETRO", "IVAN PETRA", 90},
		{"completely different", "AAAA", "BBBB", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"OSAMA B LADEN", "OSAMA BIN LADEN"},
		{"IVAN PETROV", "IVAN PETROFF"},
		{"A", "ABCDEFGH"},
	}

	for _, p := range pairs {
		if ab, ba := Similarity(p[0], p[1]), Similarity(p[1], p[0]); ab != ba {
			t.Errorf("Similarity(%q, %q) = %f but reversed = %f", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"", "XYZ"},
		{"AB", "ZZZZZZZZZZ"},
		{"SAME", "SAME"},
	}

	for _, p := range pairs {
		score := Similarity(p[0], p[1])
		if score < 0 || score > 100 {
			t.Errorf("Similarity(%q, %q) = %f, out of [0, 100]", p[0], p[1], score)
		}
	}
}
