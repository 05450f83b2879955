// Package memory provides an in-process implementation of the ledger
// repositories. Row locks are held until the owning transaction
// ends and writes stay private to it until commit, so it behaves like
// the SQL adapters under concurrent use. A second transaction inserting
// an account number that is still uncommitted elsewhere fails at once
// with ErrDuplicateAccount instead of waiting for the first to finish.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

var ErrUnknownTransaction = errors.New("memory: transaction not created by this store")

// Store keeps accounts, log entries and outbox events in maps.
type Store struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account
	entries  []*domain.TransactionLogEntry
	events   map[string]*domain.OutboxEvent
	rowLocks map[int64]chan struct{}
	// account numbers inserted by transactions that have not ended
	reserved map[int64]*Tx
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]*domain.Account),
		events:   make(map[string]*domain.OutboxEvent),
		rowLocks: make(map[int64]chan struct{}),
		reserved: make(map[int64]*Tx),
	}
}

func (s *Store) rowLock(number int64) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[number]
	if !ok {
		l = make(chan struct{}, 1)
		s.rowLocks[number] = l
	}
	return l
}

// exists reports whether number is committed or staged by t.
func (s *Store) exists(t *Tx, number int64) bool {
	if _, ok := t.stagedAccount(number); ok {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[number]
	return ok
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }

// TransactionLog returns the transaction log repository view of the store.
func (s *Store) TransactionLog() *TransactionLogRepository { return &TransactionLogRepository{s: s} }

// Outbox returns the outbox repository view of the store.
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{s: s} }

// Ledger returns the ledger repository view of the store.
func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{s: s} }

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct{ s *Store }

func (r *AccountRepository) Create(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.accounts[account.Number]; exists {
		return domain.ErrDuplicateAccount
	}
	if _, pending := r.s.reserved[account.Number]; pending {
		return domain.ErrDuplicateAccount
	}

	if t == nil {
		r.s.accounts[account.Number] = copyAccount(account)
		return nil
	}

	r.s.reserved[account.Number] = t
	t.stageAccount(account)
	return nil
}

func (r *AccountRepository) GetByNumber(_ context.Context, number int64) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[number]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return copyAccount(a), nil
}

func (r *AccountRepository) GetByNumberForUpdate(ctx context.Context, tx usecase.Transaction, number int64) (*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrUnknownTransaction
	}

	if err := t.lock(ctx, r.s.rowLock(number), number); err != nil {
		return nil, err
	}
	if staged, ok := t.stagedAccount(number); ok {
		return staged, nil
	}
	return r.GetByNumber(ctx, number)
}

func (r *AccountRepository) Save(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if !r.s.exists(t, account.Number) {
		return domain.ErrRecordNotFound
	}

	if t == nil {
		r.s.mu.Lock()
		r.s.accounts[account.Number] = copyAccount(account)
		r.s.mu.Unlock()
		return nil
	}

	t.stageAccount(account)
	return nil
}

func (r *AccountRepository) List(_ context.Context, limit, offset int) ([]*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		accounts = append(accounts, copyAccount(a))
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Number < accounts[j].Number })

	return page(accounts, limit, offset), nil
}

// TransactionLogRepository implements usecase.TransactionLogRepository.
type TransactionLogRepository struct{ s *Store }

func (r *TransactionLogRepository) Append(_ context.Context, tx usecase.Transaction, entry *domain.TransactionLogEntry) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if !r.s.exists(t, entry.AccountNumber) {
		return domain.ErrRecordNotFound
	}

	c := *entry
	if t == nil {
		r.s.mu.Lock()
		r.s.entries = append(r.s.entries, &c)
		r.s.mu.Unlock()
		return nil
	}

	t.stageEntry(&c)
	return nil
}

func (r *TransactionLogRepository) ListByAccount(_ context.Context, accountNumber int64, limit, offset int) ([]*domain.TransactionLogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.TransactionLogEntry
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		if e := r.s.entries[i]; e.AccountNumber == accountNumber {
			c := *e
			out = append(out, &c)
		}
	}
	return page(out, limit, offset), nil
}

func (r *TransactionLogRepository) SumByAccount(_ context.Context, accountNumber int64) (domain.Money, domain.Money, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var deposits, withdrawals domain.Money
	for _, e := range r.s.entries {
		if e.AccountNumber != accountNumber {
			continue
		}
		if e.Kind == domain.TransactionWithdraw {
			withdrawals += e.Amount
		} else {
			deposits += e.Amount
		}
	}
	return deposits, withdrawals, nil
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct{ s *Store }

func (r *LedgerRepository) Totals(context.Context) (domain.Money, domain.Money, domain.Money, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var balances, openings, movements domain.Money
	for _, a := range r.s.accounts {
		balances += a.Balance
		openings += a.OpeningBalance
	}
	for _, e := range r.s.entries {
		movements += e.SignedAmount()
	}
	return balances, openings, movements, nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct{ s *Store }

func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	c := *event
	if t == nil {
		r.s.mu.Lock()
		r.s.events[event.ID] = &c
		r.s.mu.Unlock()
		return nil
	}

	t.stageEvent(&c)
	return nil
}

func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.OutboxEvent
	for _, e := range r.s.events {
		if !e.Published {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, limit, 0), nil
}

func (r *OutboxRepository) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.events[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	e.Published = true
	e.PublishedAt = &publishedAt
	return nil
}

func (r *OutboxRepository) DeletePublished(_ context.Context, before time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, e := range r.s.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			delete(r.s.events, id)
		}
	}
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
