package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vlk/settlecore/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	Currency       string          `json:"currency"`
	Balance        decimal.Decimal `json:"balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	AllowOverdraft bool            `json:"allow_overdraft"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Currency:       a.Currency,
		Balance:        a.Balance,
		OpeningBalance: a.OpeningBalance,
		AllowOverdraft: a.AllowOverdraft,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID                   string          `json:"id"`
	MessageID            string          `json:"message_id"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	SenderName           string          `json:"sender_name"`
	ReceiverName         string          `json:"receiver_name"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	EndToEndID           string          `json:"end_to_end_id,omitempty"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:                   t.ID,
		MessageID:            t.MessageID,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		SenderName:           t.SenderName,
		ReceiverName:         t.ReceiverName,
		Amount:               t.Amount,
		Currency:             t.Currency,
		EndToEndID:           t.EndToEndID,
		Status:               string(t.Status),
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
		CompletedAt:          t.CompletedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID         string          `json:"id"`
	TransferID string          `json:"transfer_id"`
	AccountID  string          `json:"account_id"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EntryFromDomain converts domain ledger entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:         e.ID,
		TransferID: e.TransferID,
		AccountID:  e.AccountID,
		Type:       string(e.Type),
		Amount:     e.Amount,
		CreatedAt:  e.CreatedAt,
	}
}

// EntriesFromDomain converts domain ledger entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// AuditRecordResponse represents one audit chain record.
type AuditRecordResponse struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	PrevHash   string          `json:"prev_hash"`
	CurrHash   string          `json:"curr_hash"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuditRecordFromDomain converts a domain audit record to response.
func AuditRecordFromDomain(r *domain.AuditRecord) *AuditRecordResponse {
	return &AuditRecordResponse{
		ID:         r.ID,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Action:     r.Action,
		Payload:    json.RawMessage(r.Payload),
		PrevHash:   r.PrevHash,
		CurrHash:   r.CurrHash,
		CreatedAt:  r.CreatedAt,
	}
}

// AuditRecordsFromDomain converts domain audit records to responses.
func AuditRecordsFromDomain(records []*domain.AuditRecord) []*AuditRecordResponse {
	result := make([]*AuditRecordResponse, len(records))
	for i, r := range records {
		result[i] = AuditRecordFromDomain(r)
	}
	return result
}

// IngestResponse reports a watchlist ingestion.
type IngestResponse struct {
	Ingested  int `json:"ingested"`
	IndexSize int `json:"index_size"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
