package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	db, err := dbFor(ctx, r.db, tx)
	if err != nil {
		return err
	}

	model := accountToModel(account)
	if err := db.Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: number %d", domain.ErrDuplicateAccount, account.Number)
		}
		return err
	}

	*account = *modelToAccount(model)
	return nil
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number int64) (*domain.Account, error) {
	var model accountModel
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&model).Error; err != nil {
		return nil, mapNotFound(err)
	}

	return modelToAccount(&model), nil
}

// GetByNumberForUpdate issues SELECT ... FOR UPDATE inside tx.
func (r *AccountRepository) GetByNumberForUpdate(ctx context.Context, tx usecase.Transaction, number int64) (*domain.Account, error) {
	if tx == nil {
		return nil, errors.New("mysql: row lock requires a transaction")
	}

	db, err := dbFor(ctx, r.db, tx)
	if err != nil {
		return nil, err
	}

	var model accountModel
	err = db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("number = ?", number).
		First(&model).Error
	if err != nil {
		return nil, mapNotFound(err)
	}

	return modelToAccount(&model), nil
}

func (r *AccountRepository) Save(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	db, err := dbFor(ctx, r.db, tx)
	if err != nil {
		return err
	}

	result := db.Model(&accountModel{}).
		Where("number = ?", account.Number).
		Updates(map[string]any{
			"balance":    int64(account.Balance),
			"version":    account.Version,
			"updated_at": account.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	var models []accountModel
	err := r.db.WithContext(ctx).
		Order("number").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(models))
	for i := range models {
		accounts = append(accounts, modelToAccount(&models[i]))
	}

	return accounts, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrRecordNotFound
	}
	return err
}
