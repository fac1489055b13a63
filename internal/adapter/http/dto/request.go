package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/usecase"
)

// SubmitTransferRequest represents an inbound payment instruction.
type SubmitTransferRequest struct {
	MessageID    string          `json:"message_id"`
	SenderIBAN   string          `json:"sender_iban"`
	ReceiverIBAN string          `json:"receiver_iban"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	SenderName   string          `json:"sender_name"`
	ReceiverName string          `json:"receiver_name"`
	EndToEndID   string          `json:"end_to_end_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitTransferRequest) ToUseCaseInput() usecase.PaymentInstruction {
	return usecase.PaymentInstruction{
		MessageID:    r.MessageID,
		SenderIBAN:   r.SenderIBAN,
		ReceiverIBAN: r.ReceiverIBAN,
		Amount:       r.Amount,
		Currency:     r.Currency,
		SenderName:   r.SenderName,
		ReceiverName: r.ReceiverName,
		EndToEndID:   r.EndToEndID,
	}
}

// ReviewRequest represents a manual review decision for a blocked
// transfer.
type ReviewRequest struct {
	Decision string `json:"decision"`
	Reviewer string `json:"reviewer"`
	Notes    string `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ReviewRequest) ToUseCaseInput(transferID string) usecase.ReviewInput {
	return usecase.ReviewInput{
		TransferID: transferID,
		Decision:   domain.ReviewDecision(r.Decision),
		Reviewer:   r.Reviewer,
		Notes:      r.Notes,
	}
}

// CreateAccountRequest represents a request to provision an account.
type CreateAccountRequest struct {
	ID             string          `json:"id"`
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	AllowOverdraft bool            `json:"allow_overdraft"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		ID:             r.ID,
		Currency:       r.Currency,
		OpeningBalance: r.OpeningBalance,
		AllowOverdraft: r.AllowOverdraft,
	}
}

// IngestWatchlistRequest represents a bulk watchlist ingestion.
type IngestWatchlistRequest struct {
	Entries []usecase.WatchlistItem `json:"entries"`
}

// ThresholdRequest updates the screening threshold.
type ThresholdRequest struct {
	Threshold float64 `json:"threshold"`
}
