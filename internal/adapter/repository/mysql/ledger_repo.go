package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/iho/bankledger/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Totals(ctx context.Context) (domain.Money, domain.Money, domain.Money, error) {
	var sums struct {
		Balances int64
		Openings int64
	}

	db := r.db.WithContext(ctx)
	err := db.Model(&accountModel{}).
		Select("COALESCE(SUM(balance), 0) AS balances, COALESCE(SUM(opening_balance), 0) AS openings").
		Scan(&sums).Error
	if err != nil {
		return 0, 0, 0, err
	}

	var movements int64
	err = db.Model(&transactionLogModel{}).
		Select("COALESCE(SUM(CASE WHEN kind = ? THEN -amount ELSE amount END), 0)", string(domain.TransactionWithdraw)).
		Scan(&movements).Error
	if err != nil {
		return 0, 0, 0, err
	}

	return domain.Money(sums.Balances), domain.Money(sums.Openings), domain.Money(movements), nil
}
