package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vlk/settlecore/internal/adapter/http/dto"
	"github.com/vlk/settlecore/internal/usecase"
)

// AuditHandler exposes audit chains and their verification.
type AuditHandler struct {
	verifier      *usecase.ChainVerifier
	consistencyUC *usecase.ConsistencyUseCase
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(verifier *usecase.ChainVerifier, consistencyUC *usecase.ConsistencyUseCase) *AuditHandler {
	return &AuditHandler{
		verifier:      verifier,
		consistencyUC: consistencyUC,
	}
}

// Chain returns one entity's audit records in chain order.
func (h *AuditHandler) Chain(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityID")
	if entityType == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity reference", "")
		return
	}

	records, err := h.verifier.Chain(r.Context(), entityType, entityID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load audit chain", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditRecordsFromDomain(records))
}

// Verify recomputes one entity's chain and reports the first breach,
// if any.
func (h *AuditHandler) Verify(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityID")
	if entityType == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity reference", "")
		return
	}

	result, err := h.verifier.Verify(r.Context(), entityType, entityID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify audit chain", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// VerifyAll sweeps every chain and returns the breaches.
func (h *AuditHandler) VerifyAll(w http.ResponseWriter, r *http.Request) {
	breaches, err := h.verifier.VerifyAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to verify audit chains", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"breaches": len(breaches),
		"details":  breaches,
	})
}

// CheckLedger verifies the global double-entry invariants.
func (h *AuditHandler) CheckLedger(w http.ResponseWriter, r *http.Request) {
	if err := h.consistencyUC.CheckLedger(r.Context()); err != nil {
		writeError(w, http.StatusConflict, "ledger consistency check failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "consistent"})
}
