package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

const auditColumns = `id, entity_type, entity_id, action, payload, prev_hash, curr_hash, created_at`

// Create appends an audit record inside the given transaction.
func (r *AuditRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.AuditRecord) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO audit_records (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := pgxTx.Exec(ctx, query,
		record.ID,
		record.EntityType,
		record.EntityID,
		record.Action,
		record.Payload,
		record.PrevHash,
		record.CurrHash,
		record.CreatedAt,
	)

	return err
}

// LatestHashForUpdate locks an entity's chain for append and returns
// the hash of its newest record, or domain.ZeroHash when the chain is
// empty. A plain SELECT would not serialize concurrent appenders at
// READ COMMITTED, and an empty chain has no head row to lock, so the
// lock is a transaction-scoped advisory lock on the chain key: it is
// released automatically when the transaction ends, and a second
// appender blocks here until the first has committed.
func (r *AuditRepository) LatestHashForUpdate(ctx context.Context, tx usecase.Transaction, entityType, entityID string) (string, error) {
	pgxTx := tx.(*Tx).PgxTx()

	lock := `SELECT pg_advisory_xact_lock(hashtextextended($1 || '/' || $2, 0))`
	if _, err := pgxTx.Exec(ctx, lock, entityType, entityID); err != nil {
		return "", err
	}

	query := `
		SELECT curr_hash
		FROM audit_records
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var hash string
	err := pgxTx.QueryRow(ctx, query, entityType, entityID).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ZeroHash, nil
		}

		return "", err
	}

	return hash, nil
}

// ListByEntity returns an entity's full chain, oldest first.
func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditRecord, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_records
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.AuditRecord
	for rows.Next() {
		var record domain.AuditRecord
		err := rows.Scan(
			&record.ID,
			&record.EntityType,
			&record.EntityID,
			&record.Action,
			&record.Payload,
			&record.PrevHash,
			&record.CurrHash,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

// ListEntityRefs pages over the distinct entities that have chains.
func (r *AuditRepository) ListEntityRefs(ctx context.Context, limit, offset int) ([]domain.EntityRef, error) {
	query := `
		SELECT DISTINCT entity_type, entity_id
		FROM audit_records
		ORDER BY entity_type, entity_id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []domain.EntityRef
	for rows.Next() {
		var ref domain.EntityRef
		if err := rows.Scan(&ref.EntityType, &ref.EntityID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}
