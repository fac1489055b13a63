package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single database transaction so a
	// stuck settlement cannot hold account locks indefinitely.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultLockTimeout is the bounded wait for account lock acquisition.
	DefaultLockTimeout = 5 * time.Second

	// DefaultScreeningThreshold is the similarity score at or above which
	// a watchlist match blocks the transfer.
	DefaultScreeningThreshold = 85.0

	// ResultCacheTTL is how long final processing results are cached for
	// the idempotency fast path.
	ResultCacheTTL = 24 * time.Hour
)
