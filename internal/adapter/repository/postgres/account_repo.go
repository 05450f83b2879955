package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
	}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return err
	}

	row, err := queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:             account.ID,
		Number:         account.Number,
		OwnerID:        stringPtrToText(account.OwnerID),
		Balance:        moneyToNumeric(account.Balance),
		OpeningBalance: moneyToNumeric(account.OpeningBalance),
		Version:        account.Version,
		CreatedAt:      timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	created, err := rowToAccount(row)
	if err != nil {
		return err
	}
	*account = *created

	return nil
}

// GetByNumber retrieves an account by its number.
func (r *AccountRepository) GetByNumber(ctx context.Context, number int64) (*domain.Account, error) {
	row, err := r.queries.GetAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return rowToAccount(row)
}

// GetByNumberForUpdate retrieves an account with a FOR UPDATE lock held until tx ends.
func (r *AccountRepository) GetByNumberForUpdate(ctx context.Context, tx usecase.Transaction, number int64) (*domain.Account, error) {
	if tx == nil {
		return nil, fmt.Errorf("postgres: row lock requires a transaction")
	}

	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetAccountByNumberForUpdate(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, mapError(err)
	}

	return rowToAccount(row)
}

// Save persists balance, version and updated_at.
func (r *AccountRepository) Save(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return err
	}

	affected, err := queries.UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		Number:    account.Number,
		Balance:   moneyToNumeric(account.Balance),
		Version:   account.Version,
		UpdatedAt: timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// List lists accounts ordered by number.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		account, err := rowToAccount(row)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

func rowToAccount(row generated.Account) (*domain.Account, error) {
	balance, err := numericToMoney(row.Balance)
	if err != nil {
		return nil, fmt.Errorf("account %d balance: %w", row.Number, err)
	}

	opening, err := numericToMoney(row.OpeningBalance)
	if err != nil {
		return nil, fmt.Errorf("account %d opening balance: %w", row.Number, err)
	}

	return &domain.Account{
		ID:             row.ID,
		Number:         row.Number,
		OwnerID:        textToStringPtr(row.OwnerID),
		Balance:        balance,
		OpeningBalance: opening,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}, nil
}
