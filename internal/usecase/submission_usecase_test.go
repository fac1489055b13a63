package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/screening"
	"github.com/vlk/settlecore/internal/usecase"
)

func instruction(messageID string) usecase.PaymentInstruction {
	return usecase.PaymentInstruction{
		MessageID:    messageID,
		SenderIBAN:   "acc-a",
		ReceiverIBAN: "acc-b",
		Amount:       decimal.NewFromInt(250),
		Currency:     "EUR",
		SenderName:   "Alice Sender",
		ReceiverName: "Bob Receiver",
		EndToEndID:   "E2E-1",
	}
}

const validMessageID = "4cbf1f55-8184-4a52-9aee-5e1d8e28a8e2"

func TestSubmissionUseCase_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("successful end to end", func(t *testing.T) {
		e := newTestEnv()
		e.seedAccount(t, "acc-a", "EUR", 1000)
		e.seedAccount(t, "acc-b", "EUR", 500)

		result := e.submission.Process(ctx, instruction(validMessageID))

		if result.Status != domain.ResultSuccess {
			t.Fatalf("status = %s (%s), want SUCCESS", result.Status, result.ErrorCode)
		}
		if result.TransferID == "" {
			t.Fatal("no transfer id on success")
		}

		if got := e.transferStatus(t, result.TransferID); got != domain.TransferStatusCleared {
			t.Errorf("transfer status = %s, want CLEARED", got)
		}
		if got := e.balance(t, "acc-a"); !got.Equal(decimal.NewFromInt(750)) {
			t.Errorf("source balance = %s, want 750", got)
		}
		if got := e.balance(t, "acc-b"); !got.Equal(decimal.NewFromInt(750)) {
			t.Errorf("destination balance = %s, want 750", got)
		}

		// Clear screening writes nothing: the chain is exactly the
		// creation record followed by the terminal transition.
		chain := e.auditChain(t, domain.EntityTypeTransfer, result.TransferID)
		if len(chain) != 2 {
			t.Fatalf("transfer audit records = %d, want 2", len(chain))
		}
		if chain[0].Action != domain.ActionTransferCreated || chain[1].Action != domain.ActionTransferCleared {
			t.Errorf("chain actions = [%s, %s], want [created, cleared]", chain[0].Action, chain[1].Action)
		}

		verification, err := e.verifier.Verify(ctx, domain.EntityTypeTransfer, result.TransferID)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !verification.Valid {
			t.Errorf("chain invalid at index %d", verification.BreachIndex)
		}

		// Final result is cached for the idempotency fast path.
		cached, _ := e.cache.Get(ctx, validMessageID)
		if cached == nil || cached.Status != domain.ResultSuccess {
			t.Errorf("cached result = %+v, want SUCCESS", cached)
		}
	})

	t.Run("invalid message id", func(t *testing.T) {
		e := newTestEnv()

		result := e.submission.Process(ctx, instruction("not-a-uuid"))

		if result.Status != domain.ResultProcessingError || result.ErrorCode != domain.CodeInvalidRequest {
			t.Errorf("result = %+v, want PROCESSING_ERROR/INVALID_REQUEST", result)
		}
	})

	t.Run("same account rejected before any write", func(t *testing.T) {
		e := newTestEnv()

		in := instruction(validMessageID)
		in.ReceiverIBAN = in.SenderIBAN

		result := e.submission.Process(ctx, in)

		if result.Status != domain.ResultProcessingError || result.ErrorCode != domain.CodeInvalidRequest {
			t.Errorf("result = %+v, want PROCESSING_ERROR/INVALID_REQUEST", result)
		}
	})

	t.Run("duplicate message id", func(t *testing.T) {
		e := newTestEnv()
		e.seedAccount(t, "acc-a", "EUR", 1000)
		e.seedAccount(t, "acc-b", "EUR", 500)

		first := e.submission.Process(ctx, instruction(validMessageID))
		if first.Status != domain.ResultSuccess {
			t.Fatalf("first submission = %+v", first)
		}

		second := e.submission.Process(ctx, instruction(validMessageID))
		if second.Status != domain.ResultDuplicate {
			t.Fatalf("second submission status = %s, want DUPLICATE", second.Status)
		}
		if second.TransferID != first.TransferID {
			t.Errorf("duplicate resolved to %s, want %s", second.TransferID, first.TransferID)
		}

		// No second settlement: balances moved exactly once.
		if got := e.balance(t, "acc-a"); !got.Equal(decimal.NewFromInt(750)) {
			t.Errorf("source balance = %s, want 750", got)
		}
	})

	t.Run("duplicate resolved from storage without cache", func(t *testing.T) {
		e := newTestEnv()
		e.seedAccount(t, "acc-a", "EUR", 1000)
		e.seedAccount(t, "acc-b", "EUR", 500)

		first := e.submission.Process(ctx, instruction(validMessageID))
		if first.Status != domain.ResultSuccess {
			t.Fatalf("first submission = %+v", first)
		}

		// Simulate a cache wipe: the unique constraint still resolves
		// the replay to the original transfer.
		e.cache.GetFunc = func(ctx context.Context, messageID string) (*domain.ProcessingResult, error) {
			return nil, nil
		}

		second := e.submission.Process(ctx, instruction(validMessageID))
		if second.Status != domain.ResultDuplicate || second.TransferID != first.TransferID {
			t.Errorf("replay = %+v, want DUPLICATE of %s", second, first.TransferID)
		}
	})

	t.Run("sanctions hit blocks and parks the transfer", func(t *testing.T) {
		e := newTestEnv()
		e.seedAccount(t, "acc-a", "EUR", 1000)
		e.seedAccount(t, "acc-b", "EUR", 500)

		e.searcher.BestMatchFunc = func(normalizedQuery string, threshold float64) (*screening.Match, bool) {
			if normalizedQuery == "BOB RECEIVER" {
				return &screening.Match{
					Name:           "Bob Receiver",
					NormalizedName: "BOB RECEIVER",
					Source:         "OFAC",
					RiskScore:      95,
					Score:          100,
				}, true
			}
			return nil, false
		}

		result := e.submission.Process(ctx, instruction(validMessageID))

		if result.Status != domain.ResultBlockedSanctions {
			t.Fatalf("status = %s, want BLOCKED_SANCTIONS", result.Status)
		}

		if got := e.transferStatus(t, result.TransferID); got != domain.TransferStatusBlockedAML {
			t.Errorf("transfer status = %s, want BLOCKED_AML", got)
		}
		if got := e.balance(t, "acc-a"); !got.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("source balance = %s, want 1000 untouched", got)
		}

		chain := e.auditChain(t, domain.EntityTypeTransfer, result.TransferID)
		if len(chain) != 2 || chain[1].Action != domain.ActionTransferBlocked {
			t.Fatalf("chain = %d records, want created then blocked", len(chain))
		}

		// Blocked outcomes are not cached: resolution is still pending.
		if cached, _ := e.cache.Get(ctx, validMessageID); cached != nil {
			t.Errorf("blocked result cached: %+v", cached)
		}

		events := e.outboxRepo.Events()
		if len(events) != 1 || events[0].EventType != domain.EventTypeTransferBlocked {
			t.Errorf("outbox events = %+v, want one blocked event", events)
		}
	})

	t.Run("insufficient funds", func(t *testing.T) {
		e := newTestEnv()
		e.seedAccount(t, "acc-a", "EUR", 100)
		e.seedAccount(t, "acc-b", "EUR", 0)

		result := e.submission.Process(ctx, instruction(validMessageID))

		if result.Status != domain.ResultProcessingError || result.ErrorCode != domain.CodeInsufficientFunds {
			t.Errorf("result = %+v, want PROCESSING_ERROR/INSUFFICIENT_FUNDS", result)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		e := newTestEnv()
		e.seedAccount(t, "acc-a", "EUR", 1000)

		result := e.submission.Process(ctx, instruction(validMessageID))

		if result.Status != domain.ResultProcessingError || result.ErrorCode != domain.CodeAccountNotFound {
			t.Errorf("result = %+v, want PROCESSING_ERROR/ACCOUNT_NOT_FOUND", result)
		}
	})

	t.Run("internal errors never leak raw", func(t *testing.T) {
		e := newTestEnv()
		e.seedAccount(t, "acc-a", "EUR", 1000)
		e.seedAccount(t, "acc-b", "EUR", 500)

		e.entryRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
			return context.DeadlineExceeded
		}

		result := e.submission.Process(ctx, instruction(validMessageID))

		if result.Status != domain.ResultProcessingError || result.ErrorCode != domain.CodeInternal {
			t.Errorf("result = %+v, want PROCESSING_ERROR/INTERNAL", result)
		}
		if result.ErrorMessage == context.DeadlineExceeded.Error() {
			t.Error("raw internal error leaked into the result message")
		}
		// The transfer was admitted before settlement failed, so the
		// caller can still look it up by id.
		if result.TransferID == "" {
			t.Error("expected the persisted transfer's id in the result")
		}
	})

	t.Run("admission failure carries no transfer id", func(t *testing.T) {
		e := newTestEnv()
		e.seedAccount(t, "acc-a", "EUR", 1000)
		e.seedAccount(t, "acc-b", "EUR", 500)

		e.transferRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
			return errors.New("connection reset")
		}

		result := e.submission.Process(ctx, instruction(validMessageID))

		if result.Status != domain.ResultProcessingError || result.ErrorCode != domain.CodeInternal {
			t.Errorf("result = %+v, want PROCESSING_ERROR/INTERNAL", result)
		}
		if result.TransferID != "" {
			t.Errorf("result carries id %q for a transfer that was never committed", result.TransferID)
		}
	})

	t.Run("cached result short-circuits", func(t *testing.T) {
		e := newTestEnv()

		_ = e.cache.Set(ctx, validMessageID, &domain.ProcessingResult{
			Status:     domain.ResultSuccess,
			TransferID: "tr-prior",
		}, time.Hour)

		result := e.submission.Process(ctx, instruction(validMessageID))

		if result.Status != domain.ResultDuplicate || result.TransferID != "tr-prior" {
			t.Errorf("result = %+v, want DUPLICATE of tr-prior", result)
		}
	})
}
