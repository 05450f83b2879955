package mysql

import (
	"time"

	"github.com/iho/bankledger/internal/domain"
)

// Balances are stored as BIGINT minor units.
type accountModel struct {
	ID             string  `gorm:"primaryKey;size:26"`
	Number         int64   `gorm:"not null;uniqueIndex:accounts_number_key"`
	OwnerID        *string `gorm:"size:64"`
	Balance        int64   `gorm:"not null;check:accounts_balance_non_negative,balance >= 0"`
	OpeningBalance int64   `gorm:"not null"`
	Version        int64   `gorm:"not null;default:1"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (*accountModel) TableName() string {
	return "accounts"
}

type transactionLogModel struct {
	ID            string    `gorm:"primaryKey;size:26"`
	AccountID     string    `gorm:"not null;size:26"`
	AccountNumber int64     `gorm:"not null;index:idx_transaction_log_account,priority:1"`
	Kind          string    `gorm:"not null;size:16"`
	Amount        int64     `gorm:"not null"`
	CreatedAt     time.Time `gorm:"index:idx_transaction_log_account,priority:2"`
}

func (*transactionLogModel) TableName() string {
	return "transaction_log"
}

type outboxEventModel struct {
	ID            string `gorm:"primaryKey;size:26"`
	AggregateID   string `gorm:"not null;size:64"`
	AggregateType string `gorm:"not null;size:64"`
	EventType     string `gorm:"not null;size:64"`
	Payload       []byte `gorm:"type:json"`
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool `gorm:"not null;default:false;index"`
}

func (*outboxEventModel) TableName() string {
	return "outbox_events"
}

func accountToModel(a *domain.Account) *accountModel {
	return &accountModel{
		ID:             a.ID,
		Number:         a.Number,
		OwnerID:        a.OwnerID,
		Balance:        int64(a.Balance),
		OpeningBalance: int64(a.OpeningBalance),
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func modelToAccount(m *accountModel) *domain.Account {
	return &domain.Account{
		ID:             m.ID,
		Number:         m.Number,
		OwnerID:        m.OwnerID,
		Balance:        domain.Money(m.Balance),
		OpeningBalance: domain.Money(m.OpeningBalance),
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func modelToLogEntry(m *transactionLogModel) *domain.TransactionLogEntry {
	return &domain.TransactionLogEntry{
		ID:            m.ID,
		AccountID:     m.AccountID,
		AccountNumber: m.AccountNumber,
		Kind:          domain.TransactionKind(m.Kind),
		Amount:        domain.Money(m.Amount),
		CreatedAt:     m.CreatedAt,
	}
}
