package memory

import (
	"context"
	"sync"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// TxManager implements usecase.TransactionManager for Store.
type TxManager struct {
	store *Store
}

// NewTxManager creates a TxManager bound to store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(context.Context) (usecase.Transaction, error) {
	return &Tx{
		store:    m.store,
		accounts: make(map[int64]*domain.Account),
		held:     make(map[int64]chan struct{}),
	}, nil
}

// RunAtomically executes fn within a transaction.
func (m *TxManager) RunAtomically(ctx context.Context, fn func(ctx context.Context, tx usecase.Transaction) error) error {
	return usecase.RunInTransaction(ctx, m.Begin, fn)
}

// Tx buffers its writes until Commit and releases row locks when it ends.
type Tx struct {
	store *Store

	mu       sync.Mutex
	accounts map[int64]*domain.Account
	entries  []*domain.TransactionLogEntry
	events   []*domain.OutboxEvent
	held     map[int64]chan struct{}
	done     bool
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	if tx == nil {
		return nil, nil
	}
	t, ok := tx.(*Tx)
	if !ok {
		return nil, ErrUnknownTransaction
	}
	return t, nil
}

// lock blocks until the row lock is acquired or ctx is done. Locks already
// held by t are not taken twice.
func (t *Tx) lock(ctx context.Context, row chan struct{}, number int64) error {
	t.mu.Lock()
	_, owned := t.held[number]
	t.mu.Unlock()
	if owned {
		return nil
	}

	select {
	case row <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	t.mu.Lock()
	t.held[number] = row
	t.mu.Unlock()
	return nil
}

func (t *Tx) stageAccount(a *domain.Account) {
	t.mu.Lock()
	t.accounts[a.Number] = copyAccount(a)
	t.mu.Unlock()
}

func (t *Tx) stagedAccount(number int64) (*domain.Account, bool) {
	if t == nil {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.accounts[number]
	if !ok {
		return nil, false
	}
	return copyAccount(a), true
}

func (t *Tx) stageEntry(e *domain.TransactionLogEntry) {
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
}

func (t *Tx) stageEvent(e *domain.OutboxEvent) {
	t.mu.Lock()
	t.events = append(t.events, e)
	t.mu.Unlock()
}

// Commit publishes the staged writes, then releases the row locks.
func (t *Tx) Commit(context.Context) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return nil
	}
	t.done = true
	accounts, entries, events := t.accounts, t.entries, t.events
	t.mu.Unlock()

	t.store.mu.Lock()
	for number, a := range accounts {
		t.store.accounts[number] = a
	}
	t.store.entries = append(t.store.entries, entries...)
	for _, e := range events {
		t.store.events[e.ID] = e
	}
	t.unreserve()
	t.store.mu.Unlock()

	t.release()
	return nil
}

// Rollback discards the staged writes.
func (t *Tx) Rollback(context.Context) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return nil
	}
	t.done = true
	t.mu.Unlock()

	t.store.mu.Lock()
	t.unreserve()
	t.store.mu.Unlock()

	t.release()
	return nil
}

// unreserve drops t's pending inserts. Callers hold store.mu.
func (t *Tx) unreserve() {
	for number, owner := range t.store.reserved {
		if owner == t {
			delete(t.store.reserved, number)
		}
	}
}

func (t *Tx) release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for number, row := range t.held {
		<-row
		delete(t.held, number)
	}
}
