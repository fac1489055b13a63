package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vlk/settlecore/internal/domain"
)

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	ID             string
	Currency       string
	OpeningBalance decimal.Decimal
	AllowOverdraft bool
}

// AccountUseCase handles account provisioning and reads. Balances are
// mutated only by the settlement engine; this use case never touches
// them after creation.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	recorder    *ChainRecorder
}

// NewAccountUseCase creates an AccountUseCase.
func NewAccountUseCase(txManager TransactionManager, accountRepo AccountRepository, recorder *ChainRecorder) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		recorder:    recorder,
	}
}

// CreateAccount provisions a new settlement account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if input.ID == "" {
		return nil, domain.ErrInvalidAccountID
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             input.ID,
		Currency:       input.Currency,
		Balance:        input.OpeningBalance,
		OpeningBalance: input.OpeningBalance,
		AllowOverdraft: input.AllowOverdraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, err
	}

	if _, err := uc.recorder.Record(txCtx, tx, domain.EntityTypeAccount, account.ID,
		domain.ActionAccountCreated, accountSnapshot(account)); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return uc.accountRepo.List(ctx, limit, offset)
}
