package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vlk/settlecore/internal/adapter/http/dto"
	"github.com/vlk/settlecore/internal/usecase"
)

// SanctionsHandler handles watchlist ingestion and screening policy.
type SanctionsHandler struct {
	sanctionsUC *usecase.SanctionsUseCase
	screeningUC *usecase.ScreeningUseCase
	searcher    usecase.SanctionsSearcher
}

// NewSanctionsHandler creates a new SanctionsHandler.
func NewSanctionsHandler(sanctionsUC *usecase.SanctionsUseCase, screeningUC *usecase.ScreeningUseCase, searcher usecase.SanctionsSearcher) *SanctionsHandler {
	return &SanctionsHandler{
		sanctionsUC: sanctionsUC,
		screeningUC: screeningUC,
		searcher:    searcher,
	}
}

// Ingest loads a batch of watchlist entries and rebuilds the index.
func (h *SanctionsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req dto.IngestWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if len(req.Entries) == 0 {
		writeError(w, http.StatusBadRequest, "empty watchlist", "")
		return
	}

	count, err := h.sanctionsUC.Ingest(r.Context(), req.Entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to ingest watchlist", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IngestResponse{
		Ingested:  count,
		IndexSize: h.searcher.Size(),
	})
}

// GetThreshold returns the current blocking threshold.
func (h *SanctionsHandler) GetThreshold(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"threshold": h.screeningUC.Threshold()})
}

// SetThreshold updates the blocking threshold at runtime.
func (h *SanctionsHandler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	var req dto.ThresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Threshold <= 0 || req.Threshold > 100 {
		writeError(w, http.StatusBadRequest, "threshold must be in (0, 100]", "")
		return
	}

	h.screeningUC.SetThreshold(req.Threshold)

	writeJSON(w, http.StatusOK, map[string]float64{"threshold": h.screeningUC.Threshold()})
}
