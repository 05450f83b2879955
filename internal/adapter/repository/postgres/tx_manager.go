package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bankledger/internal/usecase"
)

type pgxPool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	pool        pgxPool
	txOptions   pgx.TxOptions
	lockTimeout time.Duration
	retrier     *Retrier
}

// TxManagerOption configures a TxManager.
type TxManagerOption func(*TxManager)

// WithIsolationLevel sets the isolation level of every transaction.
func WithIsolationLevel(level pgx.TxIsoLevel) TxManagerOption {
	return func(m *TxManager) { m.txOptions.IsoLevel = level }
}

// WithLockTimeout bounds how long a statement waits for a row lock.
func WithLockTimeout(d time.Duration) TxManagerOption {
	return func(m *TxManager) { m.lockTimeout = d }
}

// WithRetrier retries whole units of work on deadlocks and serialization failures.
func WithRetrier(r *Retrier) TxManagerOption {
	return func(m *TxManager) { m.retrier = r }
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool, opts ...TxManagerOption) *TxManager {
	return newTxManagerWithPool(pool, opts...)
}

func newTxManagerWithPool(pool pgxPool, opts ...TxManagerOption) *TxManager {
	m := &TxManager{pool: pool}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ParseIsolationLevel maps a config value such as "read committed" to a pgx level.
func ParseIsolationLevel(s string) (pgx.TxIsoLevel, error) {
	switch level := pgx.TxIsoLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case "":
		return "", nil
	case pgx.ReadCommitted, pgx.RepeatableRead, pgx.Serializable:
		return level, nil
	default:
		return "", fmt.Errorf("unsupported isolation level %q", s)
	}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, m.txOptions)
	if err != nil {
		return nil, err
	}

	if m.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", m.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	return &Tx{tx: tx}, nil
}

// RunAtomically executes fn within a transaction. The outermost call is
// retried on deadlocks and serialization failures when a Retrier is set.
func (m *TxManager) RunAtomically(ctx context.Context, fn func(ctx context.Context, tx usecase.Transaction) error) error {
	run := func() error {
		return usecase.RunInTransaction(ctx, m.Begin, fn)
	}

	if _, nested := usecase.TxFromContext(ctx); nested || m.retrier == nil {
		return run()
	}

	return m.retrier.Retry(ctx, run)
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
