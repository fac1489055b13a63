package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransferStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    TransferStatus
		to      TransferStatus
		allowed bool
	}{
		{"pending to cleared", TransferStatusPending, TransferStatusCleared, true},
		{"pending to blocked", TransferStatusPending, TransferStatusBlockedAML, true},
		{"pending to rejected", TransferStatusPending, TransferStatusRejected, false},
		{"blocked to cleared", TransferStatusBlockedAML, TransferStatusCleared, true},
		{"blocked to rejected", TransferStatusBlockedAML, TransferStatusRejected, true},
		{"blocked to pending", TransferStatusBlockedAML, TransferStatusPending, false},
		{"cleared is terminal", TransferStatusCleared, TransferStatusBlockedAML, false},
		{"cleared to rejected", TransferStatusCleared, TransferStatusRejected, false},
		{"rejected is terminal", TransferStatusRejected, TransferStatusCleared, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestTransferStatus_Terminal(t *testing.T) {
	terminal := map[TransferStatus]bool{
		TransferStatusPending:    false,
		TransferStatusBlockedAML: false,
		TransferStatusCleared:    true,
		TransferStatusRejected:   true,
	}

	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestTransferStatus_Valid(t *testing.T) {
	for _, status := range []TransferStatus{
		TransferStatusPending, TransferStatusBlockedAML, TransferStatusCleared, TransferStatusRejected,
	} {
		if !status.Valid() {
			t.Errorf("%s.Valid() = false, want true", status)
		}
	}

	if TransferStatus("SETTLING").Valid() {
		t.Error("unknown status reported as valid")
	}
}

func TestTransfer_Validate(t *testing.T) {
	tests := []struct {
		name      string
		transfer  Transfer
		errorType error
	}{
		{
			name: "valid transfer",
			transfer: Transfer{
				SourceAccountID:      "DE89370400440532013000",
				DestinationAccountID: "FR1420041010050500013M02606",
				Amount:               decimal.NewFromInt(250),
				Currency:             "EUR",
			},
		},
		{
			name: "same account",
			transfer: Transfer{
				SourceAccountID:      "DE89370400440532013000",
				DestinationAccountID: "DE89370400440532013000",
				Amount:               decimal.NewFromInt(250),
				Currency:             "EUR",
			},
			errorType: ErrSameAccount,
		},
		{
			name: "zero amount",
			transfer: Transfer{
				SourceAccountID:      "DE89370400440532013000",
				DestinationAccountID: "FR1420041010050500013M02606",
				Amount:               decimal.Zero,
				Currency:             "EUR",
			},
			errorType: ErrInvalidAmount,
		},
		{
			name: "negative amount",
			transfer: Transfer{
				SourceAccountID:      "DE89370400440532013000",
				DestinationAccountID: "FR1420041010050500013M02606",
				Amount:               decimal.NewFromInt(-10),
				Currency:             "EUR",
			},
			errorType: ErrInvalidAmount,
		},
		{
			name: "lowercase currency",
			transfer: Transfer{
				SourceAccountID:      "DE89370400440532013000",
				DestinationAccountID: "FR1420041010050500013M02606",
				Amount:               decimal.NewFromInt(250),
				Currency:             "eur",
			},
			errorType: ErrInvalidCurrency,
		},
		{
			name: "currency wrong length",
			transfer: Transfer{
				SourceAccountID:      "DE89370400440532013000",
				DestinationAccountID: "FR1420041010050500013M02606",
				Amount:               decimal.NewFromInt(250),
				Currency:             "EURO",
			},
			errorType: ErrInvalidCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.transfer.Validate()

			if tt.errorType == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.errorType) {
				t.Errorf("expected %v, got %v", tt.errorType, err)
			}
		})
	}
}
