package usecase

import (
	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/screening"
)

// Snapshot constructors whitelist exactly the fields recorded in audit
// payloads. Amounts are serialized as strings, associations as ids, so
// the canonical form is stable across implementations.

func transferSnapshot(t *domain.Transfer) map[string]any {
	return map[string]any{
		"transfer_id":    t.ID,
		"message_id":     t.MessageID,
		"source_account": t.SourceAccountID,
		"dest_account":   t.DestinationAccountID,
		"amount":         t.Amount.String(),
		"currency":       t.Currency,
		"status":         string(t.Status),
	}
}

func blockedSnapshot(t *domain.Transfer, match *screening.Match, screenedName string) map[string]any {
	s := transferSnapshot(t)
	s["screened_name"] = screenedName
	s["matched_name"] = match.Name
	s["match_source"] = match.Source
	s["match_score"] = match.Score
	return s
}

func reviewSnapshot(t *domain.Transfer, decision domain.ReviewDecision, reviewer, notes string) map[string]any {
	s := transferSnapshot(t)
	s["decision"] = string(decision)
	s["reviewer"] = reviewer
	s["notes"] = notes
	return s
}

func accountSnapshot(a *domain.Account) map[string]any {
	return map[string]any{
		"account_id": a.ID,
		"currency":   a.Currency,
		"balance":    a.Balance.String(),
	}
}

func entrySnapshot(a *domain.Account, e *domain.LedgerEntry) map[string]any {
	s := accountSnapshot(a)
	s["entry_id"] = e.ID
	s["entry_type"] = string(e.Type)
	s["entry_amount"] = e.Amount.String()
	s["transfer_id"] = e.TransferID
	return s
}
