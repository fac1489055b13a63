package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the side of a double-entry posting.
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// LedgerEntry represents one side of a double-entry posting. Amount is
// always positive; the sign is carried by the entry type.
type LedgerEntry struct {
	ID         string
	TransferID string
	AccountID  string
	Type       EntryType
	Amount     decimal.Decimal
	CreatedAt  time.Time
}

// Validate validates the entry.
func (e *LedgerEntry) Validate() error {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if e.Type != EntryTypeDebit && e.Type != EntryTypeCredit {
		return ErrInvalidEntryType
	}
	return nil
}

// SignedAmount returns the entry amount with its accounting sign:
// credits are positive, debits negative.
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Type == EntryTypeDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
