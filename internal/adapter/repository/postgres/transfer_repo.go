package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

const transferColumns = `id, message_id, source_account_id, destination_account_id,
	sender_name, receiver_name, amount, currency, end_to_end_id, status,
	created_at, updated_at, completed_at`

// Create inserts a new transfer inside the given transaction. A unique
// constraint on message_id turns replays into ErrDuplicateMessage.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := pgxTx.Exec(ctx, query,
		transfer.ID,
		transfer.MessageID,
		transfer.SourceAccountID,
		transfer.DestinationAccountID,
		transfer.SenderName,
		transfer.ReceiverName,
		decimalToNumeric(transfer.Amount),
		transfer.Currency,
		transfer.EndToEndID,
		string(transfer.Status),
		transfer.CreatedAt,
		transfer.UpdatedAt,
		transfer.CompletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrDuplicateMessage
		}

		return err
	}

	return nil
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	return scanTransfer(r.pool.QueryRow(ctx, query, id))
}

// GetByMessageID retrieves a transfer by its inbound message ID.
func (r *TransferRepository) GetByMessageID(ctx context.Context, messageID string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE message_id = $1`

	return scanTransfer(r.pool.QueryRow(ctx, query, messageID))
}

// UpdateStatus moves a transfer to a new status. Terminal rows are
// never updated; a no-op update reports ErrInvalidStatusTransition.
func (r *TransferRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransferStatus, completedAt *time.Time, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE transfers
		SET status = $2, completed_at = $3, updated_at = $4
		WHERE id = $1 AND status NOT IN ('CLEARED', 'REJECTED')
	`

	tag, err := pgxTx.Exec(ctx, query, id, string(status), completedAt, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStatusTransition
	}

	return nil
}

// ListByStatus lists transfers in a given status, oldest first.
func (r *TransferRepository) ListByStatus(ctx context.Context, status domain.TransferStatus, limit, offset int) ([]*domain.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*domain.Transfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}

func scanTransfer(row pgx.Row) (*domain.Transfer, error) {
	var (
		transfer    domain.Transfer
		amount      pgtype.Numeric
		status      string
		completedAt *time.Time
	)

	err := row.Scan(
		&transfer.ID,
		&transfer.MessageID,
		&transfer.SourceAccountID,
		&transfer.DestinationAccountID,
		&transfer.SenderName,
		&transfer.ReceiverName,
		&amount,
		&transfer.Currency,
		&transfer.EndToEndID,
		&status,
		&transfer.CreatedAt,
		&transfer.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	transfer.Amount = numericToDecimal(amount)
	transfer.Status = domain.TransferStatus(status)
	transfer.CompletedAt = completedAt

	return &transfer, nil
}
