package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/vlk/settlecore/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{domain.ErrTransferNotFound, http.StatusNotFound},
		{domain.ErrAccountExists, http.StatusConflict},
		{domain.ErrDuplicateMessage, http.StatusConflict},
		{domain.ErrTransferNotReviewable, http.StatusConflict},
		{domain.ErrInvalidStatusTransition, http.StatusConflict},
		{domain.ErrInvalidAccountID, http.StatusBadRequest},
		{domain.ErrInvalidStatus, http.StatusBadRequest},
		{domain.ErrInvalidReviewDecision, http.StatusBadRequest},
		{domain.ErrSameAccount, http.StatusBadRequest},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrInvalidCurrency, http.StatusBadRequest},
		{domain.ErrCurrencyMismatch, http.StatusBadRequest},
		{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := mapDomainError(tt.err); got != tt.want {
			t.Errorf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestResultStatusCode(t *testing.T) {
	tests := []struct {
		name   string
		result domain.ProcessingResult
		want   int
	}{
		{"success", domain.ProcessingResult{Status: domain.ResultSuccess}, http.StatusCreated},
		{"duplicate", domain.ProcessingResult{Status: domain.ResultDuplicate}, http.StatusOK},
		{"blocked", domain.ProcessingResult{Status: domain.ResultBlockedSanctions}, http.StatusAccepted},
		{"invalid request", domain.ProcessingResult{Status: domain.ResultProcessingError, ErrorCode: domain.CodeInvalidRequest}, http.StatusBadRequest},
		{"account not found", domain.ProcessingResult{Status: domain.ResultProcessingError, ErrorCode: domain.CodeAccountNotFound}, http.StatusNotFound},
		{"insufficient funds", domain.ProcessingResult{Status: domain.ResultProcessingError, ErrorCode: domain.CodeInsufficientFunds}, http.StatusUnprocessableEntity},
		{"currency mismatch", domain.ProcessingResult{Status: domain.ResultProcessingError, ErrorCode: domain.CodeCurrencyMismatch}, http.StatusUnprocessableEntity},
		{"lock timeout", domain.ProcessingResult{Status: domain.ResultProcessingError, ErrorCode: domain.CodeLockTimeout}, http.StatusServiceUnavailable},
		{"internal", domain.ProcessingResult{Status: domain.ResultProcessingError, ErrorCode: domain.CodeInternal}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resultStatusCode(&tt.result); got != tt.want {
				t.Errorf("resultStatusCode(%s/%s) = %d, want %d", tt.result.Status, tt.result.ErrorCode, got, tt.want)
			}
		})
	}
}
