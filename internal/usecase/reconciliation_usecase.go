package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/bankledger/internal/domain"
)

const reconciliationPageSize = 500

// ReconciliationUseCase handles balance reconciliation operations
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	logRepo     TransactionLogRepository
	ledger      *LedgerUseCase
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	logRepo TransactionLogRepository,
	ledgerRepo LedgerRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		logRepo:     logRepo,
		ledger:      NewLedgerUseCase(ledgerRepo),
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	Number            int64
	RecordedBalance   domain.Money
	CalculatedBalance domain.Money
	Difference        domain.Money
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount recomputes the balance from the opening balance and the
// transaction log and compares it with the stored balance.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, number int64) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, domain.NewInternalError("failed to load account", err)
	}

	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	deposits, withdrawals, err := uc.logRepo.SumByAccount(ctx, account.Number)
	if err != nil {
		return nil, domain.NewInternalError("failed to sum transactions", err)
	}

	calculated := account.OpeningBalance + deposits - withdrawals
	diff := account.Balance - calculated

	return &ReconciliationResult{
		Number:            account.Number,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Difference:        diff,
		IsReconciled:      diff == 0 && !account.Balance.IsNegative(),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	for offset := 0; ; offset += reconciliationPageSize {
		accounts, err := uc.accountRepo.List(ctx, reconciliationPageSize, offset)
		if err != nil {
			return nil, domain.NewInternalError("failed to list accounts", err)
		}

		for _, account := range accounts {
			result, err := uc.reconcile(ctx, account)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %d: %w", account.Number, err)
			}
			results = append(results, result)
		}

		if len(accounts) < reconciliationPageSize {
			return results, nil
		}
	}
}

// CheckLedgerConsistency verifies that the sum of balances equals the sum of
// opening balances plus every logged movement.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	_, err := uc.ledger.CheckConsistency(ctx)
	return err
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	ledgerErr := uc.CheckLedgerConsistency(ctx)

	report := &ReconciliationReport{
		TotalAccounts:    len(results),
		Discrepancies:    make([]*ReconciliationResult, 0),
		LedgerConsistent: ledgerErr == nil,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
