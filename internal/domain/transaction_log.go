package domain

import "time"

// TransactionKind distinguishes log entries.
type TransactionKind string

const (
	TransactionDeposit  TransactionKind = "DEPOSIT"
	TransactionWithdraw TransactionKind = "WITHDRAW"
)

func (k TransactionKind) Valid() bool {
	return k == TransactionDeposit || k == TransactionWithdraw
}

// TransactionLogEntry records one successful deposit or withdrawal.
// Amount is always a positive magnitude.
type TransactionLogEntry struct {
	ID            string
	AccountID     string
	AccountNumber int64
	Kind          TransactionKind
	Amount        Money
	CreatedAt     time.Time
}

// SignedAmount returns the amount as it affected the balance.
func (e *TransactionLogEntry) SignedAmount() Money {
	if e.Kind == TransactionWithdraw {
		return -e.Amount
	}
	return e.Amount
}
