// Package lockmgr provides exclusive per-account-key locks with a
// globally fixed acquisition order, so multi-account operations cannot
// deadlock regardless of which direction a transfer runs.
package lockmgr

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrLockTimeout is returned when a lock could not be acquired within
// the bounded wait. Callers retry with backoff; it is not a business
// failure.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Manager hands out one semaphore per account key on demand. Keys are
// never removed; the set of accounts is small and append-only.
type Manager struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// New creates a Manager.
func New() *Manager {
	return &Manager{locks: make(map[string]chan struct{})}
}

func (m *Manager) sem(key string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.locks[key]
	if !ok {
		s = make(chan struct{}, 1)
		m.locks[key] = s
	}

	return s
}

// Acquire takes the locks for all keys in ascending key order,
// independent of argument order, within one overall timeout. On success
// it returns a release function; on timeout or context cancellation it
// releases everything taken so far and returns the error.
func (m *Manager) Acquire(ctx context.Context, timeout time.Duration, keys ...string) (func(), error) {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	// Drop duplicates so the same key is never taken twice.
	deduped := sorted[:0]
	for i, k := range sorted {
		if i == 0 || k != sorted[i-1] {
			deduped = append(deduped, k)
		}
	}

	deadline := time.Now().Add(timeout)
	acquired := make([]chan struct{}, 0, len(deduped))

	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			<-acquired[i]
		}
	}

	for _, key := range deduped {
		s := m.sem(key)

		remaining := time.Until(deadline)
		if remaining <= 0 {
			release()
			return nil, ErrLockTimeout
		}

		timer := time.NewTimer(remaining)
		select {
		case s <- struct{}{}:
			timer.Stop()
			acquired = append(acquired, s)
		case <-timer.C:
			release()
			return nil, ErrLockTimeout
		case <-ctx.Done():
			timer.Stop()
			release()
			return nil, ctx.Err()
		}
	}

	return release, nil
}
