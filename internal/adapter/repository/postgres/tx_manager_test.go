package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/bankledger/internal/usecase"
)

func TestTxManagerBeginSuccess(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectCommit()

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx == nil {
		t.Fatalf("expected transaction")
	}

	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestTxManagerBeginError(t *testing.T) {
	mockPool := newMockPool(t)
	mockErr := errors.New("begin failed")
	mockPool.ExpectBegin().WillReturnError(mockErr)

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if err == nil || !errors.Is(err, mockErr) {
		t.Fatalf("expected begin error, got err=%v tx=%v", err, tx)
	}
}

func TestTxManagerBeginAppliesOptions(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mockPool.ExpectExec("SET LOCAL lock_timeout = 250").WillReturnResult(pgxmock.NewResult("SET", 0))
	mockPool.ExpectRollback()

	manager := newTxManagerWithPool(mockPool,
		WithIsolationLevel(pgx.Serializable),
		WithLockTimeout(250*time.Millisecond),
	)

	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tx.Rollback(context.Background()); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestTxManagerBeginLockTimeoutFailure(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("SET LOCAL lock_timeout").WillReturnError(errors.New("syntax"))
	mockPool.ExpectRollback()

	manager := newTxManagerWithPool(mockPool, WithLockTimeout(time.Second))
	if _, err := manager.Begin(context.Background()); err == nil {
		t.Fatalf("expected error")
	}

	assertExpectations(t, mockPool)
}

func TestTxRollback(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectRollback()

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tx.Rollback(context.Background()); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestRunAtomicallyCommitsOnSuccess(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectCommit()

	manager := newTxManagerWithPool(mockPool)
	err := manager.RunAtomically(context.Background(), func(ctx context.Context, tx usecase.Transaction) error {
		if _, ok := tx.(*Tx); !ok {
			t.Fatalf("expected *Tx, got %T", tx)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestRunAtomicallyRollsBackOnError(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectRollback()

	fnErr := errors.New("insufficient")
	manager := newTxManagerWithPool(mockPool)
	err := manager.RunAtomically(context.Background(), func(context.Context, usecase.Transaction) error {
		return fnErr
	})
	if !errors.Is(err, fnErr) {
		t.Fatalf("expected fn error, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestRunAtomicallyNestedJoinsOuter(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectCommit()

	manager := newTxManagerWithPool(mockPool, WithRetrier(NewRetrier()))
	err := manager.RunAtomically(context.Background(), func(ctx context.Context, outer usecase.Transaction) error {
		return manager.RunAtomically(ctx, func(_ context.Context, inner usecase.Transaction) error {
			if inner != outer {
				t.Fatalf("nested call started a new transaction")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestRunAtomicallyRetriesDeadlock(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectRollback()
	mockPool.ExpectBegin()
	mockPool.ExpectCommit()

	r := NewRetrier()
	r.initialInterval = time.Millisecond
	r.maxInterval = 2 * time.Millisecond

	manager := newTxManagerWithPool(mockPool, WithRetrier(r))

	attempts := 0
	err := manager.RunAtomically(context.Background(), func(context.Context, usecase.Transaction) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: pgErrDeadlock}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}

	assertExpectations(t, mockPool)
}

func TestParseIsolationLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    pgx.TxIsoLevel
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "read committed", want: pgx.ReadCommitted},
		{in: " SERIALIZABLE ", want: pgx.Serializable},
		{in: "repeatable read", want: pgx.RepeatableRead},
		{in: "chaos", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseIsolationLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseIsolationLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseIsolationLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
