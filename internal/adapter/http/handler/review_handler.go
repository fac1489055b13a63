package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vlk/settlecore/internal/adapter/http/dto"
	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/usecase"
)

// ReviewHandler handles manual review decisions for blocked transfers.
type ReviewHandler struct {
	reviewUC *usecase.ReviewUseCase
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewUC *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{reviewUC: reviewUC}
}

// Decide applies a reviewer's APPROVE or REJECT to a blocked transfer.
func (h *ReviewHandler) Decide(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "id")
	if transferID == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	var req dto.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.reviewUC.Decide(r.Context(), req.ToUseCaseInput(transferID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to apply review decision", err.Error())

		return
	}

	status := http.StatusOK
	if result.Status == domain.ResultProcessingError && result.ErrorCode != domain.CodeReviewRejected {
		status = resultStatusCode(result)
	}

	writeJSON(w, status, result)
}
