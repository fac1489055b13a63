package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vlk/settlecore/internal/domain"
)

// SanctionsRepository implements usecase.SanctionsRepository.
type SanctionsRepository struct {
	pool *pgxpool.Pool
}

// NewSanctionsRepository creates a new SanctionsRepository.
func NewSanctionsRepository(pool *pgxpool.Pool) *SanctionsRepository {
	return &SanctionsRepository{pool: pool}
}

// Upsert writes a batch of watchlist entries. An entry is identified by
// (normalized_name, source); re-ingesting an existing pair refreshes
// the display name and risk score instead of duplicating the row.
func (r *SanctionsRepository) Upsert(ctx context.Context, entries []*domain.SanctionsEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO sanctions_entries (id, name, normalized_name, source, risk_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (normalized_name, source)
		DO UPDATE SET name = EXCLUDED.name, risk_score = EXCLUDED.risk_score
	`

	batch := &pgx.Batch{}
	for _, entry := range entries {
		batch.Queue(query,
			entry.ID,
			entry.Name,
			entry.NormalizedName,
			entry.Source,
			entry.RiskScore,
			entry.CreatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// ListAll returns the full watchlist for index builds.
func (r *SanctionsRepository) ListAll(ctx context.Context) ([]*domain.SanctionsEntry, error) {
	query := `
		SELECT id, name, normalized_name, source, risk_score, created_at
		FROM sanctions_entries
		ORDER BY source, name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.SanctionsEntry
	for rows.Next() {
		var entry domain.SanctionsEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Name,
			&entry.NormalizedName,
			&entry.Source,
			&entry.RiskScore,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
