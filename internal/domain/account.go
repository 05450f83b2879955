package domain

import (
	"time"
)

// Account is a bank account identified by an externally assigned number.
type Account struct {
	ID             string
	Number         int64
	OwnerID        *string
	Balance        Money
	OpeningBalance Money
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BalanceSnapshot is the payload returned by every balance changing operation.
type BalanceSnapshot struct {
	Number  int64 `json:"conta"`
	Balance Money `json:"saldo"`
}

func (a *Account) Snapshot() *BalanceSnapshot {
	return &BalanceSnapshot{Number: a.Number, Balance: a.Balance}
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount Money, at time.Time) error {
	if amount <= 0 {
		return ErrInvalidDepositAmount
	}
	next, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = next
	a.Version++
	a.UpdatedAt = at
	return nil
}

// Debit removes amount from the balance. The balance is left untouched on error.
func (a *Account) Debit(amount Money, at time.Time) error {
	if amount <= 0 {
		return ErrInvalidWithdrawAmount
	}
	if a.Balance < amount {
		return ErrInsufficientFunds
	}
	a.Balance -= amount
	a.Version++
	a.UpdatedAt = at
	return nil
}
