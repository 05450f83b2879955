package domain

import "time"

// Event types
const (
	EventTypeAccountCreated   = "account.created"
	EventTypeAccountDeposited = "account.deposited"
	EventTypeAccountWithdrawn = "account.withdrawn"
)

const AggregateTypeAccount = "account"

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	Number         int64   `json:"conta"`
	OwnerID        *string `json:"user_id,omitempty"`
	OpeningBalance string  `json:"saldo_inicial"`
}

// BalanceChangedEvent payload for deposits and withdrawals.
type BalanceChangedEvent struct {
	EntryID string `json:"entry_id"`
	Number  int64  `json:"conta"`
	Kind    string `json:"kind"`
	Amount  string `json:"valor"`
	Balance string `json:"saldo"`
	EventAt string `json:"event_at"`
}

func (e AccountCreatedEvent) Payload() map[string]any {
	p := map[string]any{
		"conta":         e.Number,
		"saldo_inicial": e.OpeningBalance,
	}
	if e.OwnerID != nil {
		p["user_id"] = *e.OwnerID
	}
	return p
}

func (e BalanceChangedEvent) Payload() map[string]any {
	return map[string]any{
		"entry_id": e.EntryID,
		"conta":    e.Number,
		"kind":     e.Kind,
		"valor":    e.Amount,
		"saldo":    e.Balance,
		"event_at": e.EventAt,
	}
}
