package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// ZeroHash is the previous-hash sentinel for the first record of an
// entity's chain: 64 hex zero characters.
var ZeroHash = strings.Repeat("0", 64)

// Entity types recorded in the audit chain.
const (
	EntityTypeTransfer  = "transfer"
	EntityTypeAccount   = "account"
	EntityTypeWatchlist = "watchlist"
)

// Audit actions. One action per entity mutation; reads are not recorded.
const (
	ActionTransferCreated   = "transfer.created"
	ActionTransferBlocked   = "transfer.blocked_aml"
	ActionTransferCleared   = "transfer.cleared"
	ActionTransferRejected  = "transfer.rejected"
	ActionReviewApproved    = "transfer.review_approved"
	ActionAccountCreated    = "account.created"
	ActionAccountDebited    = "account.debited"
	ActionAccountCredited   = "account.credited"
	ActionWatchlistIngested = "watchlist.ingested"
)

// AuditRecord is one immutable link in an entity's hash chain.
// Payload is the canonical JSON serialization of the mutation's
// observable state; CurrHash = SHA-256(Payload || PrevHash) in hex.
type AuditRecord struct {
	ID         string
	EntityType string
	EntityID   string
	Action     string
	Payload    []byte
	PrevHash   string
	CurrHash   string
	CreatedAt  time.Time
}

// EntityRef identifies one audit chain.
type EntityRef struct {
	EntityType string
	EntityID   string
}

// CanonicalPayload serializes a snapshot deterministically. Snapshots are
// flat maps of scalars built by explicit per-entity constructors, so
// encoding/json's sorted map keys and lack of incidental whitespace give
// a stable byte string for identical logical state.
func CanonicalPayload(snapshot map[string]any) ([]byte, error) {
	return json.Marshal(snapshot)
}

// ComputeHash returns hex(SHA-256(canonical || prevHash)). The previous
// hash is concatenated in its hex form so the chain can be recomputed
// from stored records alone.
func ComputeHash(canonical []byte, prevHash string) string {
	h := sha256.New()
	h.Write(canonical)
	h.Write([]byte(prevHash))
	return hex.EncodeToString(h.Sum(nil))
}
