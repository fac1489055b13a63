package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountExists     = errors.New("account already exists")
	ErrInvalidAccountID  = errors.New("account id is required")

	// Transfer errors
	ErrTransferNotFound         = errors.New("transfer not found")
	ErrDuplicateMessage         = errors.New("duplicate message id")
	ErrSameAccount              = errors.New("cannot transfer to same account")
	ErrInvalidAmount            = errors.New("amount must be positive")
	ErrInvalidCurrency          = errors.New("invalid currency code")
	ErrCurrencyMismatch         = errors.New("cannot transfer between different currencies")
	ErrInvalidEntryType         = errors.New("entry type must be DEBIT or CREDIT")
	ErrInvalidStatus            = errors.New("unknown transfer status")
	ErrInvalidStatusTransition  = errors.New("invalid transfer status transition")
	ErrTransferNotReviewable    = errors.New("transfer is not awaiting review")
	ErrInvalidReviewDecision    = errors.New("review decision must be APPROVE or REJECT")

	// Audit errors
	ErrAuditWriteFailed = errors.New("audit record write failed")
	ErrIntegrityBreach  = errors.New("audit chain integrity breach")
)
