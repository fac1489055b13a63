package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/infrastructure/metrics"
	"github.com/vlk/settlecore/internal/screening"
)

// WatchlistItem is one name in a bulk ingestion from the list provider.
type WatchlistItem struct {
	Name      string `json:"name"`
	Source    string `json:"source"`
	RiskScore int    `json:"risk_score"`
}

// SanctionsUseCase ingests the watchlist and rebuilds the index.
// Lookups keep running against the previous snapshot during a rebuild;
// the replacement is published with one atomic swap.
type SanctionsUseCase struct {
	txManager     TransactionManager
	sanctionsRepo SanctionsRepository
	recorder      *ChainRecorder
	searcher      *screening.Searcher
	idGen         IDGenerator
	logger        zerolog.Logger
	metrics       *metrics.Metrics
}

// NewSanctionsUseCase creates a SanctionsUseCase.
func NewSanctionsUseCase(
	txManager TransactionManager,
	sanctionsRepo SanctionsRepository,
	recorder *ChainRecorder,
	searcher *screening.Searcher,
	idGen IDGenerator,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *SanctionsUseCase {
	return &SanctionsUseCase{
		txManager:     txManager,
		sanctionsRepo: sanctionsRepo,
		recorder:      recorder,
		searcher:      searcher,
		idGen:         idGen,
		logger:        logger,
		metrics:       m,
	}
}

// Ingest upserts watchlist items and rebuilds the index. Returns the
// number of items stored.
func (uc *SanctionsUseCase) Ingest(ctx context.Context, items []WatchlistItem) (int, error) {
	now := time.Now().UTC()

	entries := make([]*domain.SanctionsEntry, 0, len(items))
	for _, item := range items {
		normalized := screening.Normalize(item.Name)
		if normalized == "" {
			continue
		}

		entries = append(entries, &domain.SanctionsEntry{
			ID:             uc.idGen.Generate(),
			Name:           item.Name,
			NormalizedName: normalized,
			Source:         item.Source,
			RiskScore:      item.RiskScore,
			CreatedAt:      now,
		})
	}

	if len(entries) > 0 {
		if err := uc.sanctionsRepo.Upsert(ctx, entries); err != nil {
			return 0, err
		}

		if err := uc.recordIngestion(ctx, entries, now); err != nil {
			return 0, err
		}
	}

	if err := uc.Rebuild(ctx); err != nil {
		return 0, err
	}

	uc.logger.Info().Int("ingested", len(entries)).Int("index_size", uc.searcher.Size()).Msg("watchlist ingested")

	return len(entries), nil
}

// recordIngestion appends one chained record per list source, so every
// change to the screening data is as traceable as a funds movement.
func (uc *SanctionsUseCase) recordIngestion(ctx context.Context, entries []*domain.SanctionsEntry, at time.Time) error {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Source]++
	}

	// Chain append locks are taken per source; a fixed order keeps
	// concurrent multi-source ingests from deadlocking on each other.
	sources := make([]string, 0, len(counts))
	for source := range counts {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	for _, source := range sources {
		if _, err := uc.recorder.Record(txCtx, tx, domain.EntityTypeWatchlist, source,
			domain.ActionWatchlistIngested, map[string]any{
				"source":      source,
				"entries":     counts[source],
				"ingested_at": at.Format(time.RFC3339),
			}); err != nil {
			return err
		}
	}

	return tx.Commit(txCtx)
}

// Rebuild loads the full watchlist and swaps in a freshly built index.
func (uc *SanctionsUseCase) Rebuild(ctx context.Context) error {
	entries, err := uc.sanctionsRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	ix := screening.BuildIndex(entries)
	uc.searcher.Swap(ix)

	if uc.metrics != nil {
		uc.metrics.IndexRebuilds.Inc()
		uc.metrics.WatchlistSize.Set(float64(ix.Size()))
	}

	return nil
}
