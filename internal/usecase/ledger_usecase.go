package usecase

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInconsistentLedger is returned when stored balances disagree with the transaction log.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match transaction log")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CheckConsistency verifies that sum(balance) = sum(opening) + sum(movements)
// and that the ledger as a whole never went negative.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	balances, openings, movements, err := uc.ledgerRepo.Totals(ctx)
	if err != nil {
		return false, err
	}

	if balances.IsNegative() {
		return false, fmt.Errorf("%w: negative total balance %s", ErrInconsistentLedger, balances)
	}

	if expected := openings + movements; balances != expected {
		return false, fmt.Errorf(
			"%w: balances=%s expected=%s difference=%s",
			ErrInconsistentLedger,
			balances,
			expected,
			balances-expected,
		)
	}

	return true, nil
}
