package usecase

import (
	"context"

	"github.com/vlk/settlecore/internal/domain"
)

// QueryUseCase serves read-only lookups of transfers and ledger
// entries for the API surface.
type QueryUseCase struct {
	transferRepo TransferRepository
	entryRepo    EntryRepository
}

// NewQueryUseCase creates a QueryUseCase.
func NewQueryUseCase(transferRepo TransferRepository, entryRepo EntryRepository) *QueryUseCase {
	return &QueryUseCase{
		transferRepo: transferRepo,
		entryRepo:    entryRepo,
	}
}

// GetTransfer retrieves a transfer by ID.
func (uc *QueryUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// GetTransferByMessageID retrieves a transfer by its inbound message ID.
func (uc *QueryUseCase) GetTransferByMessageID(ctx context.Context, messageID string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByMessageID(ctx, messageID)
}

// ListTransfersByStatus lists transfers in one status, oldest first.
// BLOCKED_AML is the review queue.
func (uc *QueryUseCase) ListTransfersByStatus(ctx context.Context, status domain.TransferStatus, limit, offset int) ([]*domain.Transfer, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return uc.transferRepo.ListByStatus(ctx, status, limit, offset)
}

// GetEntriesByTransfer retrieves the ledger entries posted for a
// transfer.
func (uc *QueryUseCase) GetEntriesByTransfer(ctx context.Context, transferID string) ([]*domain.LedgerEntry, error) {
	if _, err := uc.transferRepo.GetByID(ctx, transferID); err != nil {
		return nil, err
	}

	return uc.entryRepo.GetByTransfer(ctx, transferID)
}

// GetEntriesByAccount retrieves an account's entries, newest first.
func (uc *QueryUseCase) GetEntriesByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return uc.entryRepo.GetByAccount(ctx, accountID, limit, offset)
}
