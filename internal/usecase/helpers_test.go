package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/usecase"
	"github.com/vlk/settlecore/internal/usecase/mocks"
)

// testEnv wires the full use case graph over in-memory mocks. Tests
// override individual mock funcs to force specific failures.
type testEnv struct {
	accountRepo   *mocks.MockAccountRepository
	transferRepo  *mocks.MockTransferRepository
	entryRepo     *mocks.MockEntryRepository
	sanctionsRepo *mocks.MockSanctionsRepository
	auditRepo     *mocks.MockAuditRepository
	outboxRepo    *mocks.MockOutboxRepository
	ledgerRepo    *mocks.MockLedgerRepository
	txManager     *mocks.MockTransactionManager
	idGen         *mocks.MockIDGenerator
	locks         *mocks.MockLockManager
	cache         *mocks.MockResultCache
	searcher      *mocks.MockSearcher

	recorder   *usecase.ChainRecorder
	verifier   *usecase.ChainVerifier
	screening  *usecase.ScreeningUseCase
	settlement *usecase.SettlementUseCase
	submission *usecase.SubmissionUseCase
	review     *usecase.ReviewUseCase
}

func newTestEnv() *testEnv {
	e := &testEnv{
		accountRepo:   mocks.NewMockAccountRepository(),
		transferRepo:  mocks.NewMockTransferRepository(),
		entryRepo:     mocks.NewMockEntryRepository(),
		sanctionsRepo: mocks.NewMockSanctionsRepository(),
		auditRepo:     mocks.NewMockAuditRepository(),
		outboxRepo:    mocks.NewMockOutboxRepository(),
		ledgerRepo:    mocks.NewMockLedgerRepository(),
		txManager:     mocks.NewMockTransactionManager(),
		idGen:         mocks.NewMockIDGenerator(),
		locks:         mocks.NewMockLockManager(),
		cache:         mocks.NewMockResultCache(),
		searcher:      mocks.NewMockSearcher(),
	}

	e.recorder = usecase.NewChainRecorder(e.auditRepo, e.idGen, nil)
	e.verifier = usecase.NewChainVerifier(e.auditRepo, nil, nil)
	e.screening = usecase.NewScreeningUseCase(e.txManager, e.transferRepo, e.outboxRepo, e.recorder, e.searcher, e.idGen, nil, 85)
	e.settlement = usecase.NewSettlementUseCase(e.txManager, e.accountRepo, e.transferRepo, e.entryRepo,
		e.outboxRepo, e.recorder, e.locks, e.idGen, nil, nil, time.Second)
	e.submission = usecase.NewSubmissionUseCase(e.txManager, e.transferRepo, e.screening, e.settlement,
		e.recorder, e.cache, e.idGen, zerolog.Nop(), nil)
	e.review = usecase.NewReviewUseCase(e.txManager, e.transferRepo, e.outboxRepo, e.settlement,
		e.recorder, e.idGen, zerolog.Nop(), nil)

	return e
}

func (e *testEnv) seedAccount(t *testing.T, id, currency string, balance int64) *domain.Account {
	t.Helper()

	now := time.Now().UTC()
	acc := &domain.Account{
		ID:             id,
		Currency:       currency,
		Balance:        decimal.NewFromInt(balance),
		OpeningBalance: decimal.NewFromInt(balance),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.accountRepo.Create(context.Background(), nil, acc); err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}
	return acc
}

func (e *testEnv) seedTransfer(t *testing.T, id, messageID, from, to string, amount int64, status domain.TransferStatus) *domain.Transfer {
	t.Helper()

	now := time.Now().UTC()
	tr := &domain.Transfer{
		ID:                   id,
		MessageID:            messageID,
		SourceAccountID:      from,
		DestinationAccountID: to,
		SenderName:           "Alice Sender",
		ReceiverName:         "Bob Receiver",
		Amount:               decimal.NewFromInt(amount),
		Currency:             "EUR",
		Status:               status,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := e.transferRepo.Create(context.Background(), nil, tr); err != nil {
		t.Fatalf("seed transfer %s: %v", id, err)
	}
	return tr
}

func (e *testEnv) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()

	acc, err := e.accountRepo.GetByID(context.Background(), accountID)
	if err != nil {
		t.Fatalf("get account %s: %v", accountID, err)
	}
	return acc.Balance
}

func (e *testEnv) transferStatus(t *testing.T, transferID string) domain.TransferStatus {
	t.Helper()

	tr, err := e.transferRepo.GetByID(context.Background(), transferID)
	if err != nil {
		t.Fatalf("get transfer %s: %v", transferID, err)
	}
	return tr.Status
}

func (e *testEnv) auditChain(t *testing.T, entityType, entityID string) []*domain.AuditRecord {
	t.Helper()

	records, err := e.auditRepo.ListByEntity(context.Background(), entityType, entityID)
	if err != nil {
		t.Fatalf("list audit chain: %v", err)
	}
	return records
}
