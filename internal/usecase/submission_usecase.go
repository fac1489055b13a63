package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/infrastructure/metrics"
	"github.com/vlk/settlecore/internal/lockmgr"
)

// PaymentInstruction is a validated inbound transfer request. Parsing
// and schema validation happen upstream; the core only re-checks the
// business invariants it owns.
type PaymentInstruction struct {
	MessageID    string
	SenderIBAN   string
	ReceiverIBAN string
	Amount       decimal.Decimal
	Currency     string
	SenderName   string
	ReceiverName string
	EndToEndID   string
}

// SubmissionUseCase runs the transfer pipeline: idempotency guard,
// sanctions screening, then ledger settlement. It always returns a
// structured ProcessingResult; internal errors never leak raw.
type SubmissionUseCase struct {
	txManager    TransactionManager
	transferRepo TransferRepository
	screening    *ScreeningUseCase
	settlement   *SettlementUseCase
	recorder     *ChainRecorder
	resultCache  ResultCache
	idGen        IDGenerator
	logger       zerolog.Logger
	metrics      *metrics.Metrics
}

// NewSubmissionUseCase creates a SubmissionUseCase.
func NewSubmissionUseCase(
	txManager TransactionManager,
	transferRepo TransferRepository,
	screeningUC *ScreeningUseCase,
	settlementUC *SettlementUseCase,
	recorder *ChainRecorder,
	resultCache ResultCache,
	idGen IDGenerator,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *SubmissionUseCase {
	return &SubmissionUseCase{
		txManager:    txManager,
		transferRepo: transferRepo,
		screening:    screeningUC,
		settlement:   settlementUC,
		recorder:     recorder,
		resultCache:  resultCache,
		idGen:        idGen,
		logger:       logger,
		metrics:      m,
	}
}

// Process handles one payment instruction end to end.
func (uc *SubmissionUseCase) Process(ctx context.Context, in PaymentInstruction) *domain.ProcessingResult {
	if err := validateInstruction(in); err != nil {
		return &domain.ProcessingResult{
			Status:       domain.ResultProcessingError,
			ErrorCode:    domain.CodeInvalidRequest,
			ErrorMessage: err.Error(),
		}
	}

	// Fast path: a cached final result means this message id was
	// already processed to completion.
	if uc.resultCache != nil {
		if cached, err := uc.resultCache.Get(ctx, in.MessageID); err == nil && cached != nil {
			if uc.metrics != nil {
				uc.metrics.DuplicateSubmissions.Inc()
			}
			return &domain.ProcessingResult{
				Status:     domain.ResultDuplicate,
				TransferID: cached.TransferID,
			}
		}
	}

	transfer, result := uc.admit(ctx, in)
	if result != nil {
		return result
	}

	outcome, err := uc.screening.Screen(ctx, transfer)
	if err != nil {
		return uc.fail(transfer, err, true)
	}

	if outcome.Blocked {
		// Not a failure: the transfer waits in BLOCKED_AML for manual
		// review. No cached result, so a re-submission of the same
		// message id still resolves as DUPLICATE via storage.
		return &domain.ProcessingResult{
			Status:     domain.ResultBlockedSanctions,
			TransferID: transfer.ID,
		}
	}

	if err := uc.settleWithRetry(ctx, transfer.ID); err != nil {
		return uc.fail(transfer, err, true)
	}

	final := &domain.ProcessingResult{
		Status:     domain.ResultSuccess,
		TransferID: transfer.ID,
	}
	uc.cacheResult(ctx, in.MessageID, final)

	return final
}

// admit is the idempotency guard: it atomically creates the PENDING
// transfer, or resolves a duplicate message id to the existing one.
// Storage-level uniqueness decides races between concurrent
// submissions; exactly one caller wins.
func (uc *SubmissionUseCase) admit(ctx context.Context, in PaymentInstruction) (*domain.Transfer, *domain.ProcessingResult) {
	now := time.Now().UTC()
	transfer := &domain.Transfer{
		ID:                   uc.idGen.Generate(),
		MessageID:            in.MessageID,
		SourceAccountID:      in.SenderIBAN,
		DestinationAccountID: in.ReceiverIBAN,
		SenderName:           in.SenderName,
		ReceiverName:         in.ReceiverName,
		Amount:               in.Amount,
		Currency:             in.Currency,
		EndToEndID:           in.EndToEndID,
		Status:               domain.TransferStatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := transfer.Validate(); err != nil {
		return nil, &domain.ProcessingResult{
			Status:       domain.ResultProcessingError,
			ErrorCode:    domain.CodeInvalidRequest,
			ErrorMessage: err.Error(),
		}
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, uc.fail(transfer, err, false)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.transferRepo.Create(txCtx, tx, transfer); err != nil {
		if errors.Is(err, domain.ErrDuplicateMessage) {
			_ = tx.Rollback(txCtx)
			return nil, uc.duplicate(ctx, in.MessageID)
		}
		return nil, uc.fail(transfer, err, false)
	}

	if _, err := uc.recorder.Record(txCtx, tx, domain.EntityTypeTransfer, transfer.ID,
		domain.ActionTransferCreated, transferSnapshot(transfer)); err != nil {
		return nil, uc.fail(transfer, err, false)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, uc.fail(transfer, err, false)
	}

	if uc.metrics != nil {
		uc.metrics.TransfersSubmitted.Inc()
	}

	return transfer, nil
}

// duplicate resolves a duplicate message id to the existing transfer.
// No new state, no new ledger or audit writes.
func (uc *SubmissionUseCase) duplicate(ctx context.Context, messageID string) *domain.ProcessingResult {
	if uc.metrics != nil {
		uc.metrics.DuplicateSubmissions.Inc()
	}

	existing, err := uc.transferRepo.GetByMessageID(ctx, messageID)
	if err != nil {
		uc.logger.Error().Err(err).Str("message_id", messageID).Msg("duplicate lookup failed")
		return &domain.ProcessingResult{
			Status:       domain.ResultProcessingError,
			ErrorCode:    domain.CodeInternal,
			ErrorMessage: "failed to resolve duplicate submission",
		}
	}

	return &domain.ProcessingResult{
		Status:     domain.ResultDuplicate,
		TransferID: existing.ID,
	}
}

// settleWithRetry retries settlement on lock timeouts with exponential
// backoff. Business failures are permanent.
func (uc *SubmissionUseCase) settleWithRetry(ctx context.Context, transferID string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 1 * time.Second
	b.MaxElapsedTime = 15 * time.Second

	return backoff.Retry(func() error {
		_, err := uc.settlement.Settle(ctx, transferID)
		if err == nil {
			return nil
		}

		if errors.Is(err, lockmgr.ErrLockTimeout) {
			uc.logger.Warn().Str("transfer_id", transferID).Msg("lock timeout, retrying settlement")
			return err
		}

		return backoff.Permanent(err)
	}, backoff.WithContext(b, ctx))
}

// fail maps an error to a ProcessingResult. persisted says whether the
// transfer was committed: a caller cannot look up a transfer whose
// admission rolled back, so those results carry no id.
func (uc *SubmissionUseCase) fail(transfer *domain.Transfer, err error, persisted bool) *domain.ProcessingResult {
	code, msg := classify(err)

	uc.logger.Error().Err(err).
		Str("transfer_id", transfer.ID).
		Str("message_id", transfer.MessageID).
		Str("code", code).
		Msg("transfer processing failed")

	if uc.metrics != nil {
		uc.metrics.SettlementErrors.WithLabelValues(code).Inc()
	}

	result := &domain.ProcessingResult{
		Status:       domain.ResultProcessingError,
		ErrorCode:    code,
		ErrorMessage: msg,
	}
	if persisted {
		result.TransferID = transfer.ID
	}

	return result
}

func (uc *SubmissionUseCase) cacheResult(ctx context.Context, messageID string, result *domain.ProcessingResult) {
	if uc.resultCache == nil {
		return
	}
	if err := uc.resultCache.Set(ctx, messageID, result, ResultCacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("message_id", messageID).Msg("result cache write failed")
	}
}

// classify maps internal errors to the stable outbound codes.
func classify(err error) (code, msg string) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return domain.CodeAccountNotFound, "account does not exist"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return domain.CodeInsufficientFunds, "insufficient funds on source account"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return domain.CodeCurrencyMismatch, "transfer and account currencies differ"
	case errors.Is(err, lockmgr.ErrLockTimeout):
		return domain.CodeLockTimeout, "account busy, retry later"
	default:
		return domain.CodeInternal, "internal processing error"
	}
}

func validateInstruction(in PaymentInstruction) error {
	if _, err := uuid.Parse(in.MessageID); err != nil {
		return errors.New("message id must be a UUID")
	}
	if in.SenderIBAN == "" || in.ReceiverIBAN == "" {
		return errors.New("sender and receiver accounts are required")
	}
	return nil
}
