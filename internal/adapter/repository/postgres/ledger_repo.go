package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// SumEntries returns the signed sum of every ledger entry. A balanced
// ledger sums to zero.
func (r *LedgerRepository) SumEntries(ctx context.Context) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN entry_type = 'CREDIT' THEN amount ELSE -amount END), 0)
		FROM ledger_entries
	`

	var sum pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// SumBalanceDrift returns the sum over all accounts of
// balance - opening_balance. Internal transfers preserve total money,
// so a consistent ledger drifts by zero.
func (r *LedgerRepository) SumBalanceDrift(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(balance - opening_balance), 0) FROM accounts`

	var sum pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}
