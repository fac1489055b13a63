package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/infrastructure/metrics"
)

// VerificationResult is the outcome of one chain traversal.
type VerificationResult struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Valid      bool   `json:"valid"`
	// BreachAt is the id of the first offending record, empty when valid.
	BreachAt string `json:"breach_at,omitempty"`
	// BreachIndex is the position of the offending record, -1 when valid.
	BreachIndex int `json:"breach_index"`
	Records     int `json:"records"`
}

// ChainVerifier recomputes audit chains from stored canonical payloads
// and compares against stored hashes. Verification is a pure read; a
// detected breach is reported, never repaired.
type ChainVerifier struct {
	auditRepo AuditRepository
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewChainVerifier creates a ChainVerifier.
func NewChainVerifier(auditRepo AuditRepository, logger *slog.Logger, m *metrics.Metrics) *ChainVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChainVerifier{
		auditRepo: auditRepo,
		logger:    logger,
		metrics:   m,
	}
}

// Verify walks one entity's chain in creation order, recomputing each
// expected hash from the stored payload and the running previous hash.
// It stops at the first mismatch.
func (v *ChainVerifier) Verify(ctx context.Context, entityType, entityID string) (*VerificationResult, error) {
	records, err := v.auditRepo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	result := &VerificationResult{
		EntityType:  entityType,
		EntityID:    entityID,
		Valid:       true,
		BreachIndex: -1,
		Records:     len(records),
	}

	prev := domain.ZeroHash
	for i, rec := range records {
		expected := domain.ComputeHash(rec.Payload, prev)
		if rec.PrevHash != prev || rec.CurrHash != expected {
			result.Valid = false
			result.BreachAt = rec.ID
			result.BreachIndex = i
			break
		}
		prev = rec.CurrHash
	}

	if v.metrics != nil {
		outcome := "valid"
		if !result.Valid {
			outcome = "invalid"
			v.metrics.IntegrityBreaches.Inc()
		}
		v.metrics.ChainVerifications.WithLabelValues(outcome).Inc()
	}

	if !result.Valid {
		v.logger.Error("audit chain integrity breach",
			slog.String("entity_type", entityType),
			slog.String("entity_id", entityID),
			slog.String("record_id", result.BreachAt),
			slog.Int("index", result.BreachIndex))
	}

	return result, nil
}

// Chain returns one entity's audit records in creation order.
func (v *ChainVerifier) Chain(ctx context.Context, entityType, entityID string) ([]*domain.AuditRecord, error) {
	return v.auditRepo.ListByEntity(ctx, entityType, entityID)
}

// VerifyAll verifies every known chain and returns the failures.
func (v *ChainVerifier) VerifyAll(ctx context.Context) ([]*VerificationResult, error) {
	const pageSize = 500

	var breaches []*VerificationResult

	for offset := 0; ; offset += pageSize {
		refs, err := v.auditRepo.ListEntityRefs(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, ref := range refs {
			result, err := v.Verify(ctx, ref.EntityType, ref.EntityID)
			if err != nil {
				return nil, err
			}
			if !result.Valid {
				breaches = append(breaches, result)
			}
		}

		if len(refs) < pageSize {
			return breaches, nil
		}
	}
}

// Start runs scheduled verification sweeps until the context is
// cancelled.
func (v *ChainVerifier) Start(ctx context.Context, interval time.Duration) error {
	v.logger.Info("chain verifier started", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			v.logger.Info("chain verifier shutting down")
			return ctx.Err()
		case <-ticker.C:
			breaches, err := v.VerifyAll(ctx)
			if err != nil {
				v.logger.Error("scheduled verification failed", slog.String("error", err.Error()))
				continue
			}
			if len(breaches) > 0 {
				v.logger.Error("scheduled verification found breaches", slog.Int("count", len(breaches)))
			}
		}
	}
}
