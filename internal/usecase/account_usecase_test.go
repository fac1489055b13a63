package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/usecase"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with opening balance", func(t *testing.T) {
		e := newTestEnv()
		uc := usecase.NewAccountUseCase(e.txManager, e.accountRepo, e.recorder)

		acc, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{
			ID:             "DE89370400440532013000",
			Currency:       "EUR",
			OpeningBalance: decimal.NewFromInt(1000),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		if !acc.Balance.Equal(decimal.NewFromInt(1000)) || !acc.OpeningBalance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("balances = %s/%s, want 1000/1000", acc.Balance, acc.OpeningBalance)
		}

		chain := e.auditChain(t, domain.EntityTypeAccount, acc.ID)
		if len(chain) != 1 || chain[0].Action != domain.ActionAccountCreated {
			t.Errorf("chain = %d records, want one created record", len(chain))
		}
	})

	t.Run("empty id rejected", func(t *testing.T) {
		e := newTestEnv()
		uc := usecase.NewAccountUseCase(e.txManager, e.accountRepo, e.recorder)

		_, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{Currency: "EUR"})
		if !errors.Is(err, domain.ErrInvalidAccountID) {
			t.Errorf("expected ErrInvalidAccountID, got %v", err)
		}
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		e := newTestEnv()
		uc := usecase.NewAccountUseCase(e.txManager, e.accountRepo, e.recorder)

		input := usecase.CreateAccountInput{ID: "acc-1", Currency: "EUR"}
		if _, err := uc.CreateAccount(ctx, input); err != nil {
			t.Fatalf("first create: %v", err)
		}

		_, err := uc.CreateAccount(ctx, input)
		if !errors.Is(err, domain.ErrAccountExists) {
			t.Errorf("expected ErrAccountExists, got %v", err)
		}
	})
}

func TestQueryUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("get transfer by id and message id", func(t *testing.T) {
		e := newTestEnv()
		tr := e.seedTransfer(t, "tr-1", "msg-1", "acc-a", "acc-b", 250, domain.TransferStatusPending)
		uc := usecase.NewQueryUseCase(e.transferRepo, e.entryRepo)

		byID, err := uc.GetTransfer(ctx, tr.ID)
		if err != nil || byID.ID != tr.ID {
			t.Errorf("GetTransfer = %+v, %v", byID, err)
		}

		byMsg, err := uc.GetTransferByMessageID(ctx, "msg-1")
		if err != nil || byMsg.ID != tr.ID {
			t.Errorf("GetTransferByMessageID = %+v, %v", byMsg, err)
		}
	})

	t.Run("list review queue", func(t *testing.T) {
		e := newTestEnv()
		e.seedTransfer(t, "tr-1", "msg-1", "acc-a", "acc-b", 250, domain.TransferStatusBlockedAML)
		e.seedTransfer(t, "tr-2", "msg-2", "acc-a", "acc-b", 100, domain.TransferStatusCleared)
		e.seedTransfer(t, "tr-3", "msg-3", "acc-a", "acc-b", 75, domain.TransferStatusBlockedAML)
		uc := usecase.NewQueryUseCase(e.transferRepo, e.entryRepo)

		blocked, err := uc.ListTransfersByStatus(ctx, domain.TransferStatusBlockedAML, 0, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(blocked) != 2 {
			t.Errorf("blocked = %d, want 2", len(blocked))
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		e := newTestEnv()
		uc := usecase.NewQueryUseCase(e.transferRepo, e.entryRepo)

		_, err := uc.ListTransfersByStatus(ctx, "SETTLING", 10, 0)
		if !errors.Is(err, domain.ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("entries require an existing transfer", func(t *testing.T) {
		e := newTestEnv()
		uc := usecase.NewQueryUseCase(e.transferRepo, e.entryRepo)

		_, err := uc.GetEntriesByTransfer(ctx, "missing")
		if !errors.Is(err, domain.ErrTransferNotFound) {
			t.Errorf("expected ErrTransferNotFound, got %v", err)
		}
	})

	t.Run("entries for a settled transfer", func(t *testing.T) {
		e := newTestEnv()
		e.seedAccount(t, "acc-a", "EUR", 1000)
		e.seedAccount(t, "acc-b", "EUR", 500)
		tr := e.seedTransfer(t, "tr-1", "msg-1", "acc-a", "acc-b", 250, domain.TransferStatusPending)
		if _, err := e.settlement.Settle(ctx, tr.ID); err != nil {
			t.Fatalf("settle: %v", err)
		}

		uc := usecase.NewQueryUseCase(e.transferRepo, e.entryRepo)

		entries, err := uc.GetEntriesByTransfer(ctx, tr.ID)
		if err != nil {
			t.Fatalf("entries: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("entries = %d, want 2", len(entries))
		}
	})
}
