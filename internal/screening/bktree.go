package screening

import "github.com/agnivade/levenshtein"

// bkNode is one term in the metric tree. Children are keyed by their
// edit distance to this node's term, which is what lets a radius search
// prune whole subtrees via the triangle inequality.
type bkNode struct {
	term     string
	children map[int]*bkNode
}

// BKTree is a Burkhard-Keller tree over normalized watchlist names,
// keyed by Levenshtein distance.
type BKTree struct {
	root *bkNode
	size int
}

// NewBKTree creates an empty tree.
func NewBKTree() *BKTree {
	return &BKTree{}
}

// Size returns the number of distinct terms in the tree.
func (t *BKTree) Size() int {
	return t.size
}

// Add inserts a term. Duplicate terms are ignored.
func (t *BKTree) Add(term string) {
	if t.root == nil {
		t.root = &bkNode{term: term}
		t.size++
		return
	}

	node := t.root
	for {
		d := levenshtein.ComputeDistance(term, node.term)
		if d == 0 {
			return
		}

		if node.children == nil {
			node.children = make(map[int]*bkNode)
		}

		child, ok := node.children[d]
		if !ok {
			node.children[d] = &bkNode{term: term}
			t.size++
			return
		}

		node = child
	}
}

// Search returns all terms within the given edit distance of query.
// Subtrees whose distance key falls outside [d-radius, d+radius] cannot
// contain a match and are skipped.
func (t *BKTree) Search(query string, radius int) []string {
	if t.root == nil || radius < 0 {
		return nil
	}

	var found []string

	stack := []*bkNode{t.root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d := levenshtein.ComputeDistance(query, node.term)
		if d <= radius {
			found = append(found, node.term)
		}

		for key, child := range node.children {
			if key >= d-radius && key <= d+radius {
				stack = append(stack, child)
			}
		}
	}

	return found
}
