package domain

import (
	"errors"
	"testing"
	"time"
)

func TestAccount_Debit(t *testing.T) {
	tests := []struct {
		name        string
		balance     Money
		amount      Money
		expectErr   error
		wantBalance Money
	}{
		{
			name:        "debit more than balance",
			balance:     10000,
			amount:      15000,
			expectErr:   ErrInsufficientFunds,
			wantBalance: 10000,
		},
		{
			name:        "debit exact balance",
			balance:     10000,
			amount:      10000,
			wantBalance: 0,
		},
		{
			name:        "debit less than balance",
			balance:     30050,
			amount:      5000,
			wantBalance: 25050,
		},
		{
			name:        "zero amount rejected",
			balance:     10000,
			amount:      0,
			expectErr:   ErrInvalidWithdrawAmount,
			wantBalance: 10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			err := acc.Debit(tt.amount, time.Now())

			if tt.expectErr != nil && !errors.Is(err, tt.expectErr) {
				t.Errorf("expected %v, got %v", tt.expectErr, err)
			}

			if tt.expectErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if acc.Balance != tt.wantBalance {
				t.Errorf("expected balance %s, got %s", tt.wantBalance, acc.Balance)
			}
		})
	}
}

func TestAccount_Credit(t *testing.T) {
	acc := &Account{Number: 12345, Balance: 10050, Version: 1}
	now := time.Now()

	if err := acc.Credit(20000, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if acc.Balance.String() != "300.50" {
		t.Errorf("expected 300.50, got %s", acc.Balance)
	}

	if acc.Version != 2 {
		t.Errorf("expected version 2, got %d", acc.Version)
	}

	if !acc.UpdatedAt.Equal(now) {
		t.Errorf("expected UpdatedAt to be set")
	}

	if err := acc.Credit(-1, now); !errors.Is(err, ErrInvalidDepositAmount) {
		t.Errorf("expected ErrInvalidDepositAmount, got %v", err)
	}
}

func TestAccount_Snapshot(t *testing.T) {
	acc := &Account{Number: 7, Balance: 25050}
	snap := acc.Snapshot()

	if snap.Number != 7 || snap.Balance != 25050 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestTransactionLogEntry_SignedAmount(t *testing.T) {
	dep := &TransactionLogEntry{Kind: TransactionDeposit, Amount: 500}
	wd := &TransactionLogEntry{Kind: TransactionWithdraw, Amount: 500}

	if dep.SignedAmount() != 500 {
		t.Errorf("expected 500, got %d", dep.SignedAmount())
	}
	if wd.SignedAmount() != -500 {
		t.Errorf("expected -500, got %d", wd.SignedAmount())
	}
	if TransactionKind("REFUND").Valid() {
		t.Errorf("unexpected valid kind")
	}
}
