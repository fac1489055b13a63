package domain

import "time"

// SanctionsEntry is one name on the watchlist. NormalizedName is the
// canonical matching form (uppercase, ASCII, punctuation stripped,
// whitespace collapsed). Entries are insert-only; the list changes only
// through periodic re-ingestion.
type SanctionsEntry struct {
	ID             string
	Name           string
	NormalizedName string
	Source         string
	RiskScore      int
	CreatedAt      time.Time
}
