package postgres

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bankledger/internal/usecase"
)

const (
	pgErrUniqueViolation  = "23505"
	pgErrLockNotAvailable = "55P03"

	accountsNumberConstraint = "accounts_number_key"
)

var (
	// ErrForeignTransaction is returned when a repository receives a
	// transaction that was not started by TxManager.
	ErrForeignTransaction = errors.New("postgres: transaction not created by TxManager")

	// ErrLockTimeout is returned when a row lock could not be acquired in time.
	ErrLockTimeout = errors.New("postgres: lock wait timeout")
)

// queriesFor binds base to tx when one is given.
func queriesFor(base *generated.Queries, tx usecase.Transaction) (*generated.Queries, error) {
	if tx == nil {
		return base, nil
	}

	t, ok := tx.(*Tx)
	if !ok {
		return nil, ErrForeignTransaction
	}

	return base.WithTx(t.PgxTx()), nil
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrUniqueViolation:
		if pgErr.ConstraintName == accountsNumberConstraint || pgErr.TableName == "accounts" {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateAccount, pgErr.Detail)
		}
	case pgErrLockNotAvailable:
		return fmt.Errorf("%w: %v", ErrLockTimeout, err)
	}

	return err
}

// Type conversion helpers.
func moneyToNumeric(m domain.Money) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(int64(m)), Exp: -domain.MoneyScale, Valid: true}
}

func numericToMoney(n pgtype.Numeric) (domain.Money, error) {
	if !n.Valid {
		return 0, nil
	}

	if n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return 0, fmt.Errorf("postgres: non-finite numeric value")
	}

	return domain.MoneyFromDecimal(decimal.NewFromBigInt(n.Int, n.Exp))
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func stringPtrToText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func textToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
