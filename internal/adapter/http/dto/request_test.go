package dto

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/usecase"
)

func TestSubmitTransferRequest_ToUseCaseInput(t *testing.T) {
	req := &SubmitTransferRequest{
		MessageID:    "c7cbbf68-6c49-4a9c-8f58-9b7bba91d3f1",
		SenderIBAN:   "acc-1",
		ReceiverIBAN: "acc-2",
		Amount:       decimal.RequireFromString("250.00"),
		Currency:     "EUR",
		SenderName:   "Alice Sender",
		ReceiverName: "Bob Receiver",
		EndToEndID:   "E2E-42",
	}

	got := req.ToUseCaseInput()

	if got.MessageID != req.MessageID {
		t.Errorf("MessageID = %q, want %q", got.MessageID, req.MessageID)
	}
	if got.SenderIBAN != "acc-1" || got.ReceiverIBAN != "acc-2" {
		t.Errorf("accounts = %q/%q, want acc-1/acc-2", got.SenderIBAN, got.ReceiverIBAN)
	}
	if !got.Amount.Equal(decimal.RequireFromString("250.00")) {
		t.Errorf("Amount = %s, want 250.00", got.Amount)
	}
	if got.Currency != "EUR" || got.SenderName != "Alice Sender" ||
		got.ReceiverName != "Bob Receiver" || got.EndToEndID != "E2E-42" {
		t.Errorf("unexpected conversion: %+v", got)
	}
}

func TestReviewRequest_ToUseCaseInput(t *testing.T) {
	req := &ReviewRequest{
		Decision: "APPROVE",
		Reviewer: "ops-1",
		Notes:    "verified with counterparty",
	}

	got := req.ToUseCaseInput("tr-1")
	want := usecase.ReviewInput{
		TransferID: "tr-1",
		Decision:   domain.ReviewApprove,
		Reviewer:   "ops-1",
		Notes:      "verified with counterparty",
	}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateAccountRequest{
		ID:             "acc-1",
		Currency:       "EUR",
		OpeningBalance: decimal.RequireFromString("1000"),
		AllowOverdraft: true,
	}

	got := req.ToUseCaseInput()

	if got.ID != "acc-1" || got.Currency != "EUR" || !got.AllowOverdraft {
		t.Errorf("unexpected conversion: %+v", got)
	}
	if !got.OpeningBalance.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("OpeningBalance = %s, want 1000", got.OpeningBalance)
	}
}
