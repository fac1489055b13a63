package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/infrastructure/metrics"
)

// ChainRecorder appends hash-linked audit records. It is an explicit
// collaborator: every mutating operation in the settlement engine,
// screener and review workflow calls Record as a step of its own logic,
// inside the same transaction as the mutation it documents.
type ChainRecorder struct {
	auditRepo AuditRepository
	idGen     IDGenerator
	metrics   *metrics.Metrics
}

// NewChainRecorder creates a ChainRecorder.
func NewChainRecorder(auditRepo AuditRepository, idGen IDGenerator, m *metrics.Metrics) *ChainRecorder {
	return &ChainRecorder{
		auditRepo: auditRepo,
		idGen:     idGen,
		metrics:   m,
	}
}

// Record appends one chained record for the given entity mutation. The
// snapshot must be a flat whitelist of the mutation's observable state,
// associations resolved to identifiers. The head read locks the chain
// for the rest of the transaction, so concurrent appends to one entity
// cannot fork it. Failure is wrapped as domain.ErrAuditWriteFailed so
// callers abort the shared transaction.
func (r *ChainRecorder) Record(ctx context.Context, tx Transaction, entityType, entityID, action string, snapshot map[string]any) (*domain.AuditRecord, error) {
	prevHash, err := r.auditRepo.LatestHashForUpdate(ctx, tx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuditWriteFailed, err)
	}

	canonical, err := domain.CanonicalPayload(snapshot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuditWriteFailed, err)
	}

	record := &domain.AuditRecord{
		ID:         r.idGen.Generate(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Payload:    canonical,
		PrevHash:   prevHash,
		CurrHash:   domain.ComputeHash(canonical, prevHash),
		CreatedAt:  time.Now().UTC(),
	}

	if err := r.auditRepo.Create(ctx, tx, record); err != nil {
		if r.metrics != nil {
			r.metrics.AuditWriteFailures.Inc()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAuditWriteFailed, err)
	}

	if r.metrics != nil {
		r.metrics.AuditRecordsWritten.WithLabelValues(action).Inc()
	}

	return record, nil
}
