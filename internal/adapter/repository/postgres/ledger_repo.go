package postgres

import (
	"context"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{
		queries: generated.New(db),
	}
}

// Totals returns ledger-wide sums used by the consistency check.
func (r *LedgerRepository) Totals(ctx context.Context) (domain.Money, domain.Money, domain.Money, error) {
	row, err := r.queries.LedgerTotals(ctx)
	if err != nil {
		return 0, 0, 0, err
	}

	balances, err := numericToMoney(row.Balances)
	if err != nil {
		return 0, 0, 0, err
	}

	openings, err := numericToMoney(row.Openings)
	if err != nil {
		return 0, 0, 0, err
	}

	movements, err := numericToMoney(row.Movements)
	if err != nil {
		return 0, 0, 0, err
	}

	return balances, openings, movements, nil
}
