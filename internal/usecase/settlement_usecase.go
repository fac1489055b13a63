package usecase

import (
	"context"
	"time"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/infrastructure/metrics"
)

// SettlementUseCase is the ledger engine: it settles a screened transfer
// by posting a matched DEBIT/CREDIT pair and updating both balances in
// one atomic unit of work, under exclusive account locks taken in
// ascending account-id order.
type SettlementUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	transferRepo TransferRepository
	entryRepo    EntryRepository
	outboxRepo   OutboxRepository
	recorder     *ChainRecorder
	locks        LockManager
	idGen        IDGenerator
	retrier      Retrier
	metrics      *metrics.Metrics
	lockTimeout  time.Duration
}

// NewSettlementUseCase creates a SettlementUseCase. retrier may be nil,
// in which case transient storage failures are not retried.
func NewSettlementUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	recorder *ChainRecorder,
	locks LockManager,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
	lockTimeout time.Duration,
) *SettlementUseCase {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}

	return &SettlementUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		entryRepo:    entryRepo,
		outboxRepo:   outboxRepo,
		recorder:     recorder,
		locks:        locks,
		idGen:        idGen,
		retrier:      retrier,
		metrics:      m,
		lockTimeout:  lockTimeout,
	}
}

// Settle posts the transfer to the ledger and transitions it to
// CLEARED. Any failure aborts the whole unit of work: no partial
// entries, no partial balance updates. Lock timeouts surface as
// lockmgr.ErrLockTimeout and are retryable by the caller.
func (uc *SettlementUseCase) Settle(ctx context.Context, transferID string) (*domain.Transfer, error) {
	start := time.Now()

	transfer, err := uc.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	if !transfer.Status.CanTransitionTo(domain.TransferStatusCleared) {
		return nil, domain.ErrInvalidStatusTransition
	}

	release, err := uc.locks.Acquire(ctx, uc.lockTimeout, transfer.SourceAccountID, transfer.DestinationAccountID)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.LockTimeouts.Inc()
		}
		return nil, err
	}
	defer release()

	if uc.metrics != nil {
		uc.metrics.LockWaitDuration.Observe(time.Since(start).Seconds())
	}

	run := func() error { return uc.settleTx(ctx, transfer) }
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersSettled.Inc()
		uc.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	}

	return transfer, nil
}

// settleTx runs the settlement unit of work in one transaction. It is
// safe to re-run after a rollback: every mutation happens inside the
// transaction and the in-memory transfer fields are re-derived each
// attempt.
func (uc *SettlementUseCase) settleTx(ctx context.Context, transfer *domain.Transfer) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	source, err := uc.accountRepo.GetByIDTx(txCtx, tx, transfer.SourceAccountID)
	if err != nil {
		return err
	}

	dest, err := uc.accountRepo.GetByIDTx(txCtx, tx, transfer.DestinationAccountID)
	if err != nil {
		return err
	}

	if source.Currency != transfer.Currency || dest.Currency != transfer.Currency {
		return domain.ErrCurrencyMismatch
	}

	if err := source.ValidateDebit(transfer.Amount); err != nil {
		return err
	}

	now := time.Now().UTC()

	debit := &domain.LedgerEntry{
		ID:         uc.idGen.Generate(),
		TransferID: transfer.ID,
		AccountID:  source.ID,
		Type:       domain.EntryTypeDebit,
		Amount:     transfer.Amount,
		CreatedAt:  now,
	}
	if err := uc.entryRepo.Create(txCtx, tx, debit); err != nil {
		return err
	}

	credit := &domain.LedgerEntry{
		ID:         uc.idGen.Generate(),
		TransferID: transfer.ID,
		AccountID:  dest.ID,
		Type:       domain.EntryTypeCredit,
		Amount:     transfer.Amount,
		CreatedAt:  now,
	}
	if err := uc.entryRepo.Create(txCtx, tx, credit); err != nil {
		return err
	}

	source.Balance = source.ApplyDebit(transfer.Amount)
	if err := uc.accountRepo.UpdateBalance(txCtx, tx, source.ID, source.Balance, now); err != nil {
		return err
	}

	dest.Balance = dest.ApplyCredit(transfer.Amount)
	if err := uc.accountRepo.UpdateBalance(txCtx, tx, dest.ID, dest.Balance, now); err != nil {
		return err
	}

	if err := uc.transferRepo.UpdateStatus(txCtx, tx, transfer.ID, domain.TransferStatusCleared, &now, now); err != nil {
		return err
	}

	transfer.Status = domain.TransferStatusCleared
	transfer.UpdatedAt = now
	transfer.CompletedAt = &now

	// Audit every mutation in this unit of work: both account balance
	// movements and the transfer's terminal transition.
	if _, err := uc.recorder.Record(txCtx, tx, domain.EntityTypeAccount, source.ID,
		domain.ActionAccountDebited, entrySnapshot(source, debit)); err != nil {
		return err
	}

	if _, err := uc.recorder.Record(txCtx, tx, domain.EntityTypeAccount, dest.ID,
		domain.ActionAccountCredited, entrySnapshot(dest, credit)); err != nil {
		return err
	}

	if _, err := uc.recorder.Record(txCtx, tx, domain.EntityTypeTransfer, transfer.ID,
		domain.ActionTransferCleared, transferSnapshot(transfer)); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:         uc.idGen.Generate(),
		TransferID: transfer.ID,
		EventType:  domain.EventTypeTransferSettled,
		Payload: map[string]any{
			"transfer_id": transfer.ID,
			"message_id":  transfer.MessageID,
			"status":      string(domain.ResultSuccess),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}
