package screening

import (
	"sort"
	"testing"

	"github.com/agnivade/levenshtein"
)

func TestBKTree_AddAndSize(t *testing.T) {
	tree := NewBKTree()
	if tree.Size() != 0 {
		t.Fatalf("empty tree size = %d", tree.Size())
	}

	tree.Add("OSAMA BIN LADEN")
	tree.Add("IVAN PETROV")
	tree.Add("OSAMA BIN LADEN") // duplicate

	if tree.Size() != 2 {
		t.Errorf("size = %d, want 2 after duplicate insert", tree.Size())
	}
}

func TestBKTree_SearchMatchesLinearScan(t *testing.T) {
	terms := []string{
		"OSAMA BIN LADEN",
		"USAMA BIN LADIN",
		"IVAN PETROV",
		"IVAN PETROFF",
		"MARIA GONZALEZ",
		"MARIO GONZALES",
		"ACME HOLDINGS LTD",
		"ACME HOLDING LTD",
		"JOHN SMITH",
		"JON SMYTH",
	}

	tree := NewBKTree()
	for _, term := range terms {
		tree.Add(term)
	}

	queries := []struct {
		query  string
		radius int
	}{
		{"OSAMA B LADEN", 2},
		{"IVAN PETROV", 0},
		{"IVAN PETROV", 3},
		{"MARIA GONZALES", 2},
		{"JOHN SMYTH", 2},
		{"NO SUCH NAME AT ALL", 1},
	}

	for _, q := range queries {
		var want []string
		for _, term := range terms {
			if levenshtein.ComputeDistance(q.query, term) <= q.radius {
				want = append(want, term)
			}
		}
		sort.Strings(want)

		got := tree.Search(q.query, q.radius)
		sort.Strings(got)

		if len(got) != len(want) {
			t.Errorf("Search(%q, %d) = %v, want %v", q.query, q.radius, got, want)
			continue
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("Search(%q, %d) = %v, want %v", q.query, q.radius, got, want)
				break
			}
		}
	}
}

func TestBKTree_SearchEdgeCases(t *testing.T) {
	tree := NewBKTree()

	if got := tree.Search("ANY", 5); got != nil {
		t.Errorf("search on empty tree = %v, want nil", got)
	}

	tree.Add("TERM")

	if got := tree.Search("TERM", -1); got != nil {
		t.Errorf("negative radius = %v, want nil", got)
	}

	got := tree.Search("TERM", 0)
	if len(got) != 1 || got[0] != "TERM" {
		t.Errorf("exact search = %v, want [TERM]", got)
	}
}
