package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a transfer.
type TransferStatus string

const (
	TransferStatusPending    TransferStatus = "PENDING"
	TransferStatusBlockedAML TransferStatus = "BLOCKED_AML"
	TransferStatusCleared    TransferStatus = "CLEARED"
	TransferStatusRejected   TransferStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferStatusPending, TransferStatusBlockedAML, TransferStatusCleared, TransferStatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are allowed from s.
func (s TransferStatus) Terminal() bool {
	return s == TransferStatusCleared || s == TransferStatusRejected
}

// CanTransitionTo reports whether the transition s -> next is legal.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	switch s {
	case TransferStatusPending:
		return next == TransferStatusCleared || next == TransferStatusBlockedAML
	case TransferStatusBlockedAML:
		return next == TransferStatusCleared || next == TransferStatusRejected
	default:
		return false
	}
}

// Transfer represents a single funds transfer moving through the
// settlement pipeline. MessageID is the caller-supplied idempotency key
// and is unique across all transfers.
type Transfer struct {
	ID                   string
	MessageID            string
	SourceAccountID      string
	DestinationAccountID string
	SenderName           string
	ReceiverName         string
	Amount               decimal.Decimal
	Currency             string
	EndToEndID           string
	Status               TransferStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
	CompletedAt          *time.Time
}

// Validate validates the transfer request fields.
func (t *Transfer) Validate() error {
	if t.SourceAccountID == t.DestinationAccountID {
		return ErrSameAccount
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if len(t.Currency) != 3 || strings.ToUpper(t.Currency) != t.Currency {
		return ErrInvalidCurrency
	}

	return nil
}
