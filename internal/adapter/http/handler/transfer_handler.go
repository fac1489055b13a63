package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vlk/settlecore/internal/adapter/http/dto"
	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/usecase"
)

// TransferHandler handles transfer submission and lookups.
type TransferHandler struct {
	submissionUC *usecase.SubmissionUseCase
	queryUC      *usecase.QueryUseCase
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(submissionUC *usecase.SubmissionUseCase, queryUC *usecase.QueryUseCase) *TransferHandler {
	return &TransferHandler{
		submissionUC: submissionUC,
		queryUC:      queryUC,
	}
}

// Submit runs a payment instruction through the pipeline. The response
// is always a ProcessingResult; the HTTP status reflects its outcome.
func (h *TransferHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result := h.submissionUC.Process(r.Context(), req.ToUseCaseInput())

	writeJSON(w, resultStatusCode(result), result)
}

// Get retrieves a transfer by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	transfer, err := h.queryUC.GetTransfer(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// List lists transfers by status. The default status is BLOCKED_AML,
// which is the manual review queue.
func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(domain.TransferStatusBlockedAML)
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	transfers, err := h.queryUC.ListTransfersByStatus(r.Context(), domain.TransferStatus(status), limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}

// ListEntries lists the ledger entries posted for a transfer.
func (h *TransferHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	entries, err := h.queryUC.GetEntriesByTransfer(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// resultStatusCode maps a pipeline outcome to the HTTP layer.
func resultStatusCode(result *domain.ProcessingResult) int {
	switch result.Status {
	case domain.ResultSuccess:
		return http.StatusCreated
	case domain.ResultDuplicate:
		return http.StatusOK
	case domain.ResultBlockedSanctions:
		return http.StatusAccepted
	default:
		switch result.ErrorCode {
		case domain.CodeInvalidRequest:
			return http.StatusBadRequest
		case domain.CodeAccountNotFound:
			return http.StatusNotFound
		case domain.CodeInsufficientFunds, domain.CodeCurrencyMismatch:
			return http.StatusUnprocessableEntity
		case domain.CodeLockTimeout:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	}
}
