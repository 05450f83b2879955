package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iho/bankledger/internal/usecase"
)

// ErrForeignTransaction is returned when a repository receives a transaction
// that was not started by TxManager.
var ErrForeignTransaction = errors.New("mysql: transaction not created by TxManager")

// TxManager implements usecase.TransactionManager on top of gorm.
type TxManager struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewTxManager creates a new TxManager. A positive lockTimeout is applied to
// every transaction's session, rounded up to whole seconds.
func NewTxManager(db *gorm.DB, lockTimeout time.Duration) *TxManager {
	return &TxManager{db: db, lockTimeout: lockTimeout}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if m.lockTimeout > 0 {
		seconds := int64((m.lockTimeout + time.Second - 1) / time.Second)
		if err := tx.Exec("SET SESSION innodb_lock_wait_timeout = ?", seconds).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	return &Tx{db: tx}, nil
}

// RunAtomically executes fn within a transaction, joining an outer one when present.
func (m *TxManager) RunAtomically(ctx context.Context, fn func(ctx context.Context, tx usecase.Transaction) error) error {
	return usecase.RunInTransaction(ctx, m.Begin, fn)
}

// Tx wraps a gorm transaction.
type Tx struct {
	db *gorm.DB
}

func (t *Tx) Commit(context.Context) error {
	return t.db.Commit().Error
}

func (t *Tx) Rollback(context.Context) error {
	return t.db.Rollback().Error
}

// dbFor returns the session bound to tx, or base when tx is nil.
func dbFor(ctx context.Context, base *gorm.DB, tx usecase.Transaction) (*gorm.DB, error) {
	if tx == nil {
		return base.WithContext(ctx), nil
	}

	t, ok := tx.(*Tx)
	if !ok {
		return nil, ErrForeignTransaction
	}

	return t.db.WithContext(ctx), nil
}
