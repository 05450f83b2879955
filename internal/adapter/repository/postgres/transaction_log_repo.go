package postgres

import (
	"context"
	"fmt"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bankledger/internal/usecase"
)

// TransactionLogRepository implements usecase.TransactionLogRepository.
type TransactionLogRepository struct {
	queries *generated.Queries
}

// NewTransactionLogRepository creates a new TransactionLogRepository.
func NewTransactionLogRepository(db generated.DBTX) *TransactionLogRepository {
	return &TransactionLogRepository{
		queries: generated.New(db),
	}
}

// Append writes a log entry.
func (r *TransactionLogRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionLogEntry) error {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return err
	}

	return mapError(queries.CreateTransactionLogEntry(ctx, generated.CreateTransactionLogEntryParams{
		ID:            entry.ID,
		AccountID:     entry.AccountID,
		AccountNumber: entry.AccountNumber,
		Kind:          string(entry.Kind),
		Amount:        moneyToNumeric(entry.Amount),
		CreatedAt:     timeToPgTimestamptz(entry.CreatedAt),
	}))
}

// ListByAccount returns entries newest first.
func (r *TransactionLogRepository) ListByAccount(ctx context.Context, accountNumber int64, limit, offset int) ([]*domain.TransactionLogEntry, error) {
	rows, err := r.queries.ListTransactionLogByAccount(ctx, generated.ListTransactionLogByAccountParams{
		AccountNumber: accountNumber,
		Limit:         int32(limit),
		Offset:        int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.TransactionLogEntry, 0, len(rows))
	for _, row := range rows {
		amount, err := numericToMoney(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("log entry %s amount: %w", row.ID, err)
		}

		entries = append(entries, &domain.TransactionLogEntry{
			ID:            row.ID,
			AccountID:     row.AccountID,
			AccountNumber: row.AccountNumber,
			Kind:          domain.TransactionKind(row.Kind),
			Amount:        amount,
			CreatedAt:     row.CreatedAt.Time,
		})
	}

	return entries, nil
}

// SumByAccount returns total deposits and withdrawals for one account.
func (r *TransactionLogRepository) SumByAccount(ctx context.Context, accountNumber int64) (domain.Money, domain.Money, error) {
	row, err := r.queries.SumTransactionLogByAccount(ctx, accountNumber)
	if err != nil {
		return 0, 0, err
	}

	deposits, err := numericToMoney(row.Deposits)
	if err != nil {
		return 0, 0, err
	}

	withdrawals, err := numericToMoney(row.Withdrawals)
	if err != nil {
		return 0, 0, err
	}

	return deposits, withdrawals, nil
}
