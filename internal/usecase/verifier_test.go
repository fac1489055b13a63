package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/usecase"
)

func TestChainRecorder_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("first record anchors on the zero hash", func(t *testing.T) {
		e := newTestEnv()

		rec, err := e.recorder.Record(ctx, nil, domain.EntityTypeTransfer, "tr-1",
			domain.ActionTransferCreated, map[string]any{"transfer_id": "tr-1", "status": "PENDING"})
		if err != nil {
			t.Fatalf("record: %v", err)
		}

		if rec.PrevHash != domain.ZeroHash {
			t.Errorf("prev hash = %s, want zero hash", rec.PrevHash)
		}
		if want := domain.ComputeHash(rec.Payload, domain.ZeroHash); rec.CurrHash != want {
			t.Errorf("curr hash = %s, want %s", rec.CurrHash, want)
		}
	})

	t.Run("records link through their predecessor", func(t *testing.T) {
		e := newTestEnv()

		first, err := e.recorder.Record(ctx, nil, domain.EntityTypeTransfer, "tr-1",
			domain.ActionTransferCreated, map[string]any{"status": "PENDING"})
		if err != nil {
			t.Fatalf("first record: %v", err)
		}

		second, err := e.recorder.Record(ctx, nil, domain.EntityTypeTransfer, "tr-1",
			domain.ActionTransferCleared, map[string]any{"status": "CLEARED"})
		if err != nil {
			t.Fatalf("second record: %v", err)
		}

		if second.PrevHash != first.CurrHash {
			t.Errorf("second.PrevHash = %s, want %s", second.PrevHash, first.CurrHash)
		}
	})

	t.Run("chains are per entity", func(t *testing.T) {
		e := newTestEnv()

		_, _ = e.recorder.Record(ctx, nil, domain.EntityTypeTransfer, "tr-1",
			domain.ActionTransferCreated, map[string]any{"status": "PENDING"})

		other, err := e.recorder.Record(ctx, nil, domain.EntityTypeAccount, "acc-1",
			domain.ActionAccountCreated, map[string]any{"balance": "0"})
		if err != nil {
			t.Fatalf("record: %v", err)
		}

		if other.PrevHash != domain.ZeroHash {
			t.Errorf("fresh entity chained onto another entity's hash: %s", other.PrevHash)
		}
	})

	t.Run("concurrent transactional appends never fork the chain", func(t *testing.T) {
		e := newTestEnv()

		const writers = 16
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()

				tx, err := e.txManager.Begin(ctx)
				if err != nil {
					t.Errorf("begin: %v", err)
					return
				}
				if _, err := e.recorder.Record(ctx, tx, domain.EntityTypeTransfer, "tr-1",
					domain.ActionReviewApproved, map[string]any{"writer": n}); err != nil {
					_ = tx.Rollback(ctx)
					t.Errorf("record: %v", err)
					return
				}
				if err := tx.Commit(ctx); err != nil {
					t.Errorf("commit: %v", err)
				}
			}(i)
		}
		wg.Wait()

		chain := e.auditChain(t, domain.EntityTypeTransfer, "tr-1")
		if len(chain) != writers {
			t.Fatalf("chain length = %d, want %d", len(chain), writers)
		}
		prev := domain.ZeroHash
		for i, rec := range chain {
			if rec.PrevHash != prev {
				t.Fatalf("record %d prev hash = %s, want %s: chain forked", i, rec.PrevHash, prev)
			}
			prev = rec.CurrHash
		}

		verification, err := e.verifier.Verify(ctx, domain.EntityTypeTransfer, "tr-1")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !verification.Valid {
			t.Errorf("untampered chain reported a breach at index %d", verification.BreachIndex)
		}
	})

	t.Run("storage failure maps to ErrAuditWriteFailed", func(t *testing.T) {
		e := newTestEnv()
		e.auditRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, record *domain.AuditRecord) error {
			return errors.New("connection reset")
		}

		_, err := e.recorder.Record(ctx, nil, domain.EntityTypeTransfer, "tr-1",
			domain.ActionTransferCreated, map[string]any{"status": "PENDING"})
		if !errors.Is(err, domain.ErrAuditWriteFailed) {
			t.Errorf("expected ErrAuditWriteFailed, got %v", err)
		}
	})
}

func TestChainVerifier_Verify(t *testing.T) {
	ctx := context.Background()

	record := func(t *testing.T, e *testEnv, entityID string, n int) {
		t.Helper()
		for i := 0; i < n; i++ {
			if _, err := e.recorder.Record(ctx, nil, domain.EntityTypeTransfer, entityID,
				domain.ActionTransferCreated, map[string]any{"seq": i}); err != nil {
				t.Fatalf("record %d: %v", i, err)
			}
		}
	}

	t.Run("intact chain verifies", func(t *testing.T) {
		e := newTestEnv()
		record(t, e, "tr-1", 5)

		result, err := e.verifier.Verify(ctx, domain.EntityTypeTransfer, "tr-1")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}

		if !result.Valid {
			t.Errorf("intact chain reported invalid at index %d", result.BreachIndex)
		}
		if result.Records != 5 {
			t.Errorf("records = %d, want 5", result.Records)
		}
		if result.BreachIndex != -1 {
			t.Errorf("breach index = %d, want -1", result.BreachIndex)
		}
	})

	t.Run("empty chain verifies", func(t *testing.T) {
		e := newTestEnv()

		result, err := e.verifier.Verify(ctx, domain.EntityTypeTransfer, "never-seen")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !result.Valid || result.Records != 0 {
			t.Errorf("result = %+v, want valid empty", result)
		}
	})

	t.Run("tampered payload is pinpointed", func(t *testing.T) {
		e := newTestEnv()
		record(t, e, "tr-1", 4)

		// Retroactively alter the amount in the middle of the chain.
		e.auditRepo.Corrupt(domain.EntityTypeTransfer, "tr-1", 2, []byte(`{"seq":2,"amount":"999999"}`))

		result, err := e.verifier.Verify(ctx, domain.EntityTypeTransfer, "tr-1")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}

		if result.Valid {
			t.Fatal("tampered chain reported valid")
		}
		if result.BreachIndex != 2 {
			t.Errorf("breach index = %d, want 2", result.BreachIndex)
		}
		if result.BreachAt == "" {
			t.Error("breach record id not reported")
		}
	})

	t.Run("tampering the first record breaks the anchor", func(t *testing.T) {
		e := newTestEnv()
		record(t, e, "tr-1", 3)

		e.auditRepo.Corrupt(domain.EntityTypeTransfer, "tr-1", 0, []byte(`{}`))

		result, err := e.verifier.Verify(ctx, domain.EntityTypeTransfer, "tr-1")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if result.Valid || result.BreachIndex != 0 {
			t.Errorf("result = %+v, want breach at 0", result)
		}
	})

	t.Run("verify all reports only broken chains", func(t *testing.T) {
		e := newTestEnv()
		record(t, e, "tr-1", 3)
		record(t, e, "tr-2", 3)
		record(t, e, "tr-3", 3)

		e.auditRepo.Corrupt(domain.EntityTypeTransfer, "tr-2", 1, []byte(`{"forged":true}`))

		breaches, err := e.verifier.VerifyAll(ctx)
		if err != nil {
			t.Fatalf("verify all: %v", err)
		}

		if len(breaches) != 1 {
			t.Fatalf("breaches = %d, want 1", len(breaches))
		}
		if breaches[0].EntityID != "tr-2" || breaches[0].BreachIndex != 1 {
			t.Errorf("breach = %+v, want tr-2 at index 1", breaches[0])
		}
	})
}

func TestChainVerifier_Chain(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv()

	for i := 0; i < 3; i++ {
		if _, err := e.recorder.Record(ctx, nil, domain.EntityTypeTransfer, "tr-1",
			domain.ActionTransferCreated, map[string]any{"seq": i}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	records, err := e.verifier.Chain(ctx, domain.EntityTypeTransfer, "tr-1")
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}

	prev := domain.ZeroHash
	for i, rec := range records {
		if rec.PrevHash != prev {
			t.Errorf("record %d prev hash broken", i)
		}
		prev = rec.CurrHash
	}
}
