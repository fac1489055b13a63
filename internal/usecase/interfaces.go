package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/screening"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransferRepository defines data access for transfers. Create returns
// domain.ErrDuplicateMessage when the message id already exists;
// uniqueness is enforced by the storage layer.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	GetByMessageID(ctx context.Context, messageID string) (*domain.Transfer, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TransferStatus, completedAt *time.Time, updatedAt time.Time) error
	ListByStatus(ctx context.Context, status domain.TransferStatus, limit, offset int) ([]*domain.Transfer, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	GetByTransfer(ctx context.Context, transferID string) ([]*domain.LedgerEntry, error)
	GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// SanctionsRepository defines data access for the watchlist.
type SanctionsRepository interface {
	Upsert(ctx context.Context, entries []*domain.SanctionsEntry) error
	ListAll(ctx context.Context) ([]*domain.SanctionsEntry, error)
}

// AuditRepository defines data access for the audit chain.
// LatestHashForUpdate takes an exclusive per-chain append lock that is
// held until the given transaction ends, then returns the head hash,
// or domain.ZeroHash when the entity has no records yet. Two
// transactions appending to one chain therefore serialize: the second
// reads the head only after the first has committed. ListByEntity
// returns records ordered by creation time ascending.
type AuditRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.AuditRecord) error
	LatestHashForUpdate(ctx context.Context, tx Transaction, entityType, entityID string) (string, error)
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditRecord, error)
	ListEntityRefs(ctx context.Context, limit, offset int) ([]domain.EntityRef, error)
}

// LedgerRepository defines ledger-wide consistency queries.
type LedgerRepository interface {
	// SumEntries returns the signed sum of all ledger entries.
	SumEntries(ctx context.Context) (decimal.Decimal, error)
	// SumBalanceDrift returns the sum over all accounts of
	// balance - opening_balance.
	SumBalanceDrift(ctx context.Context) (decimal.Decimal, error)
}

// OutboxRepository defines data access for outbound result events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// LockManager hands out exclusive per-account locks with ordered
// acquisition and a bounded wait.
type LockManager interface {
	Acquire(ctx context.Context, timeout time.Duration, keys ...string) (func(), error)
}

// Retrier re-runs an operation on transient storage failures such as
// deadlocks or serialization conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// SanctionsSearcher is the read side of the sanctions index.
type SanctionsSearcher interface {
	BestMatch(normalizedQuery string, threshold float64) (*screening.Match, bool)
	Size() int
}

// ResultCache caches final processing results by message id so repeat
// submissions short-circuit before touching the database.
type ResultCache interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, messageID string) (*domain.ProcessingResult, error)
	Set(ctx context.Context, messageID string, result *domain.ProcessingResult, ttl time.Duration) error
}
