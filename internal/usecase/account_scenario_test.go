package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/adapter/repository/memory"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

type ulidGenerator struct{}

func (ulidGenerator) Generate() string { return ulid.Make().String() }

func newMemoryLedger() (*usecase.AccountUseCase, *memory.Store, *memory.TxManager) {
	store := memory.NewStore()
	tm := memory.NewTxManager(store)
	uc := usecase.NewAccountUseCase(tm, store.Accounts(), store.TransactionLog(), store.Outbox(), ulidGenerator{})
	return uc, store, tm
}

func TestAccountUseCase_EndToEndScenario(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newMemoryLedger()

	snap, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{Number: 12345, InitialBalance: 100.50})
	require.NoError(t, err)
	assert.Equal(t, "100.50", snap.Balance.String())

	snap, err = uc.Deposit(ctx, usecase.MoveFundsInput{Number: 12345, Amount: "200.00"})
	require.NoError(t, err)
	assert.Equal(t, "300.50", snap.Balance.String())

	snap, err = uc.Withdraw(ctx, usecase.MoveFundsInput{Number: 12345, Amount: 50.00})
	require.NoError(t, err)
	assert.Equal(t, "250.50", snap.Balance.String())

	_, err = uc.Withdraw(ctx, usecase.MoveFundsInput{Number: 12345, Amount: "9999.00"})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	balance, err := uc.Balance(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "250.50", balance.String())

	history, err := uc.History(ctx, usecase.HistoryInput{Number: 12345})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.TransactionWithdraw, history[0].Kind)
	assert.Equal(t, domain.TransactionDeposit, history[1].Kind)

	events, err := store.Outbox().GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	_, err = uc.CreateAccount(ctx, usecase.CreateAccountInput{Number: 12345})
	assert.ErrorIs(t, err, domain.ErrAccountAlreadyExists)

	recon := usecase.NewReconciliationUseCase(store.Accounts(), store.TransactionLog(), store.Ledger())
	report, err := recon.GenerateReconciliationReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ReconciledAccounts)
	assert.True(t, report.LedgerConsistent)
}

func TestAccountUseCase_ConcurrentDeposits(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newMemoryLedger()

	_, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{Number: 1})
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	var failures atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Deposit(ctx, usecase.MoveFundsInput{Number: 1, Amount: "10.015"}); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, failures.Load())

	balance, err := uc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(workers*1002), balance)
}

func TestAccountUseCase_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newMemoryLedger()

	_, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{Number: 2, InitialBalance: "100.00"})
	require.NoError(t, err)

	const workers = 30
	var wg sync.WaitGroup
	var succeeded, insufficient atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Withdraw(ctx, usecase.MoveFundsInput{Number: 2, Amount: "7.00"})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrInsufficientFunds):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(14), succeeded.Load())
	assert.Equal(t, int32(workers-14), insufficient.Load())

	balance, err := uc.Balance(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "2.00", balance.String())
}

func TestAccountUseCase_ConcurrentCreateSingleWinner(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newMemoryLedger()

	const workers = 20
	var wg sync.WaitGroup
	var created, duplicates atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{Number: 777, InitialBalance: "1.00"})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, domain.ErrAccountAlreadyExists):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(workers-1), duplicates.Load())
}

func TestRunAtomically_NestedCallsJoinOuterTransaction(t *testing.T) {
	ctx := context.Background()
	uc, store, tm := newMemoryLedger()

	_, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{Number: 10, InitialBalance: "50.00"})
	require.NoError(t, err)

	abort := errors.New("abort outer")
	err = tm.RunAtomically(ctx, func(ctx context.Context, outer usecase.Transaction) error {
		snap, err := uc.Deposit(ctx, usecase.MoveFundsInput{Number: 10, Amount: "25.00"})
		require.NoError(t, err)
		assert.Equal(t, "75.00", snap.Balance.String())

		inner, ok := usecase.TxFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, outer, inner)

		return abort
	})
	require.ErrorIs(t, err, abort)

	balance, err := uc.Balance(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "50.00", balance.String(), "inner deposit must roll back with the outer transaction")

	history, err := store.TransactionLog().ListByAccount(ctx, 10, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAtomically_PanicRollsBack(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tm := memory.NewTxManager(store)

	assert.Panics(t, func() {
		_, _ = usecase.Atomically(ctx, tm, func(ctx context.Context, tx usecase.Transaction) (int, error) {
			require.NoError(t, store.Accounts().Create(ctx, tx, &domain.Account{Number: 99}))
			panic("boom")
		})
	})

	_, err := store.Accounts().GetByNumber(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	got, err := usecase.Atomically(ctx, tm, func(ctx context.Context, tx usecase.Transaction) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}
