package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/infrastructure/metrics"
)

// ReviewInput is one manual review decision.
type ReviewInput struct {
	TransferID string
	Decision   domain.ReviewDecision
	Reviewer   string
	Notes      string
}

// ReviewUseCase resolves transfers held in BLOCKED_AML. APPROVE
// re-enters the settlement path; the transfer reaches CLEARED only if
// ledger posting succeeds. REJECT is terminal. Both outcomes write an
// audit record carrying the reviewer identity and notes.
type ReviewUseCase struct {
	txManager    TransactionManager
	transferRepo TransferRepository
	outboxRepo   OutboxRepository
	settlement   *SettlementUseCase
	recorder     *ChainRecorder
	idGen        IDGenerator
	logger       zerolog.Logger
	metrics      *metrics.Metrics
}

// NewReviewUseCase creates a ReviewUseCase.
func NewReviewUseCase(
	txManager TransactionManager,
	transferRepo TransferRepository,
	outboxRepo OutboxRepository,
	settlementUC *SettlementUseCase,
	recorder *ChainRecorder,
	idGen IDGenerator,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *ReviewUseCase {
	return &ReviewUseCase{
		txManager:    txManager,
		transferRepo: transferRepo,
		outboxRepo:   outboxRepo,
		settlement:   settlementUC,
		recorder:     recorder,
		idGen:        idGen,
		logger:       logger,
		metrics:      m,
	}
}

// Decide applies a reviewer's decision to a blocked transfer.
func (uc *ReviewUseCase) Decide(ctx context.Context, in ReviewInput) (*domain.ProcessingResult, error) {
	if !in.Decision.Valid() {
		return nil, domain.ErrInvalidReviewDecision
	}

	transfer, err := uc.transferRepo.GetByID(ctx, in.TransferID)
	if err != nil {
		return nil, err
	}

	if transfer.Status != domain.TransferStatusBlockedAML {
		return nil, domain.ErrTransferNotReviewable
	}

	uc.logger.Info().
		Str("transfer_id", transfer.ID).
		Str("decision", string(in.Decision)).
		Str("reviewer", in.Reviewer).
		Msg("manual review decision")

	if in.Decision == domain.ReviewReject {
		return uc.reject(ctx, transfer, in)
	}

	return uc.approve(ctx, transfer, in)
}

// approve records the human decision first, then re-enters settlement.
// The approval is itself an auditable event even when settlement later
// fails; the transfer then stays in BLOCKED_AML for another attempt.
func (uc *ReviewUseCase) approve(ctx context.Context, transfer *domain.Transfer, in ReviewInput) (*domain.ProcessingResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if _, err := uc.recorder.Record(txCtx, tx, domain.EntityTypeTransfer, transfer.ID,
		domain.ActionReviewApproved, reviewSnapshot(transfer, in.Decision, in.Reviewer, in.Notes)); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	settled, err := uc.settlement.Settle(ctx, transfer.ID)
	if err != nil {
		code, msg := classify(err)
		return &domain.ProcessingResult{
			Status:       domain.ResultProcessingError,
			TransferID:   transfer.ID,
			ErrorCode:    code,
			ErrorMessage: msg,
		}, nil
	}

	return &domain.ProcessingResult{
		Status:     domain.ResultSuccess,
		TransferID: settled.ID,
	}, nil
}

func (uc *ReviewUseCase) reject(ctx context.Context, transfer *domain.Transfer, in ReviewInput) (*domain.ProcessingResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	if err := uc.transferRepo.UpdateStatus(txCtx, tx, transfer.ID, domain.TransferStatusRejected, &now, now); err != nil {
		return nil, err
	}

	transfer.Status = domain.TransferStatusRejected
	transfer.UpdatedAt = now
	transfer.CompletedAt = &now

	if _, err := uc.recorder.Record(txCtx, tx, domain.EntityTypeTransfer, transfer.ID,
		domain.ActionTransferRejected, reviewSnapshot(transfer, in.Decision, in.Reviewer, in.Notes)); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:         uc.idGen.Generate(),
		TransferID: transfer.ID,
		EventType:  domain.EventTypeTransferRejected,
		Payload: map[string]any{
			"transfer_id": transfer.ID,
			"message_id":  transfer.MessageID,
			"status":      string(domain.ResultProcessingError),
			"reviewer":    in.Reviewer,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersRejected.Inc()
	}

	return &domain.ProcessingResult{
		Status:     domain.ResultProcessingError,
		TransferID: transfer.ID,
		ErrorCode:  domain.CodeReviewRejected,
	}, nil
}
