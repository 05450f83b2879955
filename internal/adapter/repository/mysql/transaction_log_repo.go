package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// TransactionLogRepository implements usecase.TransactionLogRepository.
type TransactionLogRepository struct {
	db *gorm.DB
}

func NewTransactionLogRepository(db *gorm.DB) *TransactionLogRepository {
	return &TransactionLogRepository{db: db}
}

func (r *TransactionLogRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionLogEntry) error {
	db, err := dbFor(ctx, r.db, tx)
	if err != nil {
		return err
	}

	return db.Create(&transactionLogModel{
		ID:            entry.ID,
		AccountID:     entry.AccountID,
		AccountNumber: entry.AccountNumber,
		Kind:          string(entry.Kind),
		Amount:        int64(entry.Amount),
		CreatedAt:     entry.CreatedAt,
	}).Error
}

func (r *TransactionLogRepository) ListByAccount(ctx context.Context, accountNumber int64, limit, offset int) ([]*domain.TransactionLogEntry, error) {
	var models []transactionLogModel
	err := r.db.WithContext(ctx).
		Where("account_number = ?", accountNumber).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.TransactionLogEntry, 0, len(models))
	for i := range models {
		entries = append(entries, modelToLogEntry(&models[i]))
	}

	return entries, nil
}

func (r *TransactionLogRepository) SumByAccount(ctx context.Context, accountNumber int64) (domain.Money, domain.Money, error) {
	var sums struct {
		Deposits    int64
		Withdrawals int64
	}

	err := r.db.WithContext(ctx).
		Model(&transactionLogModel{}).
		Select(
			"COALESCE(SUM(CASE WHEN kind = ? THEN amount ELSE 0 END), 0) AS deposits, "+
				"COALESCE(SUM(CASE WHEN kind = ? THEN amount ELSE 0 END), 0) AS withdrawals",
			string(domain.TransactionDeposit), string(domain.TransactionWithdraw),
		).
		Where("account_number = ?", accountNumber).
		Scan(&sums).Error
	if err != nil {
		return 0, 0, err
	}

	return domain.Money(sums.Deposits), domain.Money(sums.Withdrawals), nil
}
