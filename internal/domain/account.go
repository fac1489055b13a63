package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a settlement account that can hold a balance.
// The ID is the account's IBAN as carried on payment instructions.
type Account struct {
	ID             string
	Currency       string
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	AllowOverdraft bool
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDebit checks if the account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	newBalance := a.Balance.Sub(amount)
	if !a.AllowOverdraft && newBalance.IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns the new balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the new balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
