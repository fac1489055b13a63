package screening

import (
	"sort"
	"sync/atomic"
	"unicode/utf8"

	"github.com/vlk/settlecore/internal/domain"
)

// Match is the best watchlist hit for a query, with its similarity score
// and the evidence needed for a blocking decision.
type Match struct {
	Name           string
	NormalizedName string
	Source         string
	RiskScore      int
	Score          float64
}

// Index is an immutable snapshot of the watchlist: a BK-tree over
// normalized names plus the entries behind each name. Built once,
// never mutated; replaced wholesale on re-ingestion.
type Index struct {
	tree   *BKTree
	byNorm map[string][]*domain.SanctionsEntry
}

// BuildIndex constructs a fresh index from watchlist entries. Entries
// without a precomputed normalized name are normalized here.
func BuildIndex(entries []*domain.SanctionsEntry) *Index {
	ix := &Index{
		tree:   NewBKTree(),
		byNorm: make(map[string][]*domain.SanctionsEntry, len(entries)),
	}

	for _, e := range entries {
		normalized := e.NormalizedName
		if normalized == "" {
			normalized = Normalize(e.Name)
		}
		if normalized == "" {
			continue
		}

		ix.tree.Add(normalized)
		ix.byNorm[normalized] = append(ix.byNorm[normalized], e)
	}

	// Deterministic pick when one normalized name maps to several
	// list entries: lowest source, then lowest raw name.
	for _, group := range ix.byNorm {
		sort.Slice(group, func(i, j int) bool {
			if group[i].Source != group[j].Source {
				return group[i].Source < group[j].Source
			}
			return group[i].Name < group[j].Name
		})
	}

	return ix
}

// Size returns the number of distinct normalized names indexed.
func (ix *Index) Size() int {
	if ix == nil {
		return 0
	}
	return ix.tree.Size()
}

// maxDistanceFor bounds the edit distance a candidate may have while
// still scoring >= threshold against a query of the given length.
// From score = (1 - d/m)*100 with m <= queryLen + d it follows that
// d <= queryLen * (100 - threshold) / threshold.
func maxDistanceFor(queryLen int, threshold float64) int {
	if threshold <= 0 {
		return queryLen * 100
	}
	if threshold > 100 {
		threshold = 100
	}
	return int(float64(queryLen) * (100 - threshold) / threshold)
}

// BestMatch returns the highest-scoring watchlist entry with score >=
// threshold for an already-normalized query. Ties break by score
// descending, then normalized name ascending, so repeated runs against
// unchanged data are reproducible.
func (ix *Index) BestMatch(normalizedQuery string, threshold float64) (*Match, bool) {
	if ix == nil || normalizedQuery == "" || ix.tree.Size() == 0 {
		return nil, false
	}

	radius := maxDistanceFor(utf8.RuneCountInString(normalizedQuery), threshold)
	candidates := ix.tree.Search(normalizedQuery, radius)

	var (
		best     *Match
		bestNorm string
	)

	for _, norm := range candidates {
		score := Similarity(normalizedQuery, norm)
		if score < threshold {
			continue
		}

		if best != nil {
			if score < best.Score {
				continue
			}
			if score == best.Score && norm >= bestNorm {
				continue
			}
		}

		entry := ix.byNorm[norm][0]
		best = &Match{
			Name:           entry.Name,
			NormalizedName: norm,
			Source:         entry.Source,
			RiskScore:      entry.RiskScore,
			Score:          score,
		}
		bestNorm = norm
	}

	return best, best != nil
}

// Searcher is the concurrency boundary around the index: lookups load
// the current snapshot, rebuilds publish a fully-built replacement with
// one atomic pointer swap. Readers never observe a partial index.
type Searcher struct {
	current atomic.Pointer[Index]
}

// NewSearcher creates a Searcher holding an empty index.
func NewSearcher() *Searcher {
	s := &Searcher{}
	s.current.Store(BuildIndex(nil))
	return s
}

// Swap publishes a new index snapshot.
func (s *Searcher) Swap(ix *Index) {
	s.current.Store(ix)
}

// BestMatch queries the current snapshot.
func (s *Searcher) BestMatch(normalizedQuery string, threshold float64) (*Match, bool) {
	return s.current.Load().BestMatch(normalizedQuery, threshold)
}

// Size returns the current snapshot's size.
func (s *Searcher) Size() int {
	return s.current.Load().Size()
}
