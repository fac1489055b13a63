package usecase

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/infrastructure/metrics"
	"github.com/vlk/settlecore/internal/screening"
)

// ScreeningOutcome is the screener's decision for one transfer.
type ScreeningOutcome struct {
	Blocked bool
	// ScreenedName is the counterparty name that produced the match.
	ScreenedName string
	Match        *screening.Match
}

// ScreeningUseCase screens transfer counterparties against the
// sanctions index. A hit at or above the threshold moves the transfer to
// BLOCKED_AML and records the evidence in the audit chain; a clear
// leaves the transfer untouched in PENDING. The screener never sets the
// terminal CLEARED state.
type ScreeningUseCase struct {
	txManager    TransactionManager
	transferRepo TransferRepository
	outboxRepo   OutboxRepository
	recorder     *ChainRecorder
	searcher     SanctionsSearcher
	idGen        IDGenerator
	metrics      *metrics.Metrics

	// threshold is stored as float64 bits for lock-free runtime updates.
	threshold atomic.Uint64
}

// NewScreeningUseCase creates a ScreeningUseCase.
func NewScreeningUseCase(
	txManager TransactionManager,
	transferRepo TransferRepository,
	outboxRepo OutboxRepository,
	recorder *ChainRecorder,
	searcher SanctionsSearcher,
	idGen IDGenerator,
	m *metrics.Metrics,
	threshold float64,
) *ScreeningUseCase {
	uc := &ScreeningUseCase{
		txManager:    txManager,
		transferRepo: transferRepo,
		outboxRepo:   outboxRepo,
		recorder:     recorder,
		searcher:     searcher,
		idGen:        idGen,
		metrics:      m,
	}
	uc.SetThreshold(threshold)

	return uc
}

// Threshold returns the current blocking threshold.
func (uc *ScreeningUseCase) Threshold() float64 {
	return math.Float64frombits(uc.threshold.Load())
}

// SetThreshold updates the blocking threshold at runtime.
func (uc *ScreeningUseCase) SetThreshold(t float64) {
	uc.threshold.Store(math.Float64bits(t))
}

// Screen checks both counterparty names and applies the threshold
// policy. The best match across both names decides; ties break by score
// descending then normalized name ascending, mirroring the index.
func (uc *ScreeningUseCase) Screen(ctx context.Context, transfer *domain.Transfer) (*ScreeningOutcome, error) {
	threshold := uc.Threshold()

	var (
		best     *screening.Match
		bestName string
	)

	for _, name := range []string{transfer.SenderName, transfer.ReceiverName} {
		normalized := screening.Normalize(name)
		if normalized == "" {
			continue
		}

		match, ok := uc.searcher.BestMatch(normalized, threshold)
		if !ok {
			continue
		}

		if best == nil ||
			match.Score > best.Score ||
			(match.Score == best.Score && match.NormalizedName < best.NormalizedName) {
			best = match
			bestName = name
		}
	}

	if uc.metrics != nil && best != nil {
		uc.metrics.ScreeningBestScore.Observe(best.Score)
	}

	if best == nil {
		if uc.metrics != nil {
			uc.metrics.ScreeningDecisions.WithLabelValues("clear").Inc()
		}
		return &ScreeningOutcome{Blocked: false}, nil
	}

	if err := uc.block(ctx, transfer, best, bestName); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ScreeningDecisions.WithLabelValues("blocked").Inc()
		uc.metrics.TransfersBlocked.Inc()
	}

	return &ScreeningOutcome{Blocked: true, ScreenedName: bestName, Match: best}, nil
}

// block transitions the transfer to BLOCKED_AML, its audit record and
// the outbound status event sharing one transaction.
func (uc *ScreeningUseCase) block(ctx context.Context, transfer *domain.Transfer, match *screening.Match, screenedName string) error {
	if !transfer.Status.CanTransitionTo(domain.TransferStatusBlockedAML) {
		return domain.ErrInvalidStatusTransition
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	if err := uc.transferRepo.UpdateStatus(txCtx, tx, transfer.ID, domain.TransferStatusBlockedAML, nil, now); err != nil {
		return err
	}

	transfer.Status = domain.TransferStatusBlockedAML
	transfer.UpdatedAt = now

	if _, err := uc.recorder.Record(txCtx, tx, domain.EntityTypeTransfer, transfer.ID,
		domain.ActionTransferBlocked, blockedSnapshot(transfer, match, screenedName)); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:         uc.idGen.Generate(),
		TransferID: transfer.ID,
		EventType:  domain.EventTypeTransferBlocked,
		Payload: map[string]any{
			"transfer_id": transfer.ID,
			"message_id":  transfer.MessageID,
			"status":      string(domain.ResultBlockedSanctions),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}
