package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vlk/settlecore/internal/domain"
)

// AccountConsistency is the per-account invariant check: balance must
// equal opening balance plus the signed sum of the account's entries.
type AccountConsistency struct {
	AccountID         string          `json:"account_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Consistent        bool            `json:"consistent"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// ConsistencyUseCase verifies the ledger invariants after the fact:
// per-account balance reconstruction and the global zero-sum of all
// entries.
type ConsistencyUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	ledgerRepo  LedgerRepository
}

// NewConsistencyUseCase creates a ConsistencyUseCase.
func NewConsistencyUseCase(accountRepo AccountRepository, entryRepo EntryRepository, ledgerRepo LedgerRepository) *ConsistencyUseCase {
	return &ConsistencyUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// CheckAccount reconstructs one account's balance from its entries.
func (uc *ConsistencyUseCase) CheckAccount(ctx context.Context, accountID string) (*AccountConsistency, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sum, err := uc.entryRepo.SumByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	calculated := account.OpeningBalance.Add(sum)

	return &AccountConsistency{
		AccountID:         accountID,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Consistent:        account.Balance.Equal(calculated),
		CheckedAt:         time.Now().UTC(),
	}, nil
}

// CheckLedger verifies the global double-entry invariant. Every cleared
// transfer posts a matched debit/credit pair, so the signed sum of all
// entries must be zero, and the total drift of balances from their
// opening values must be zero as well.
func (uc *ConsistencyUseCase) CheckLedger(ctx context.Context) error {
	entrySum, err := uc.ledgerRepo.SumEntries(ctx)
	if err != nil {
		return err
	}

	if !entrySum.IsZero() {
		return fmt.Errorf("%w: signed entry sum is %s, want 0", domain.ErrIntegrityBreach, entrySum.String())
	}

	drift, err := uc.ledgerRepo.SumBalanceDrift(ctx)
	if err != nil {
		return err
	}

	if !drift.IsZero() {
		return fmt.Errorf("%w: balance drift is %s, want 0", domain.ErrIntegrityBreach, drift.String())
	}

	return nil
}
