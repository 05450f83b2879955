package usecase

import (
	"context"
	"time"

	"github.com/iho/bankledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// Create inserts a new account. It returns domain.ErrDuplicateAccount when
	// the number is already taken. tx may be nil.
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByNumber(ctx context.Context, number int64) (*domain.Account, error)
	// GetByNumberForUpdate reads the account and holds a row lock until tx ends.
	GetByNumberForUpdate(ctx context.Context, tx Transaction, number int64) (*domain.Account, error)
	Save(ctx context.Context, tx Transaction, account *domain.Account) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionLogRepository defines data access for the per-account transaction log.
type TransactionLogRepository interface {
	Append(ctx context.Context, tx Transaction, entry *domain.TransactionLogEntry) error
	ListByAccount(ctx context.Context, accountNumber int64, limit, offset int) ([]*domain.TransactionLogEntry, error)
	SumByAccount(ctx context.Context, accountNumber int64) (deposits, withdrawals domain.Money, err error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	// Totals returns sum(balance), sum(opening_balance) and the signed sum of all log entries.
	Totals(ctx context.Context) (balances, openings, movements domain.Money, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
	// RunAtomically runs fn inside a transaction. Calls made while another
	// RunAtomically is active on ctx join the outer transaction.
	RunAtomically(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// MetricsRecorder receives ledger operation outcomes.
type MetricsRecorder interface {
	ObserveOperation(operation string, code domain.ErrorCode, duration time.Duration)
	ObserveAmount(operation string, amount domain.Money)
}
