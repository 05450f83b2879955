package dto

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// CreateAccountRequest represents a request to open an account.
// Number and InitialBalance accept JSON numbers or numeric strings.
type CreateAccountRequest struct {
	Number         any     `json:"conta"`
	InitialBalance any     `json:"saldoInicial"`
	OwnerID        *string `json:"user_id,omitempty"`
}

// ToUseCaseInput converts to use case input. fallbackOwner is used when the
// request carries no user_id.
func (r *CreateAccountRequest) ToUseCaseInput(fallbackOwner string) (usecase.CreateAccountInput, error) {
	number, err := domain.ParseAccountNumber(r.Number)
	if err != nil {
		return usecase.CreateAccountInput{}, domain.ErrInvalidAccountNumber.WithCause(err)
	}

	owner := r.OwnerID
	if owner == nil && fallbackOwner != "" {
		owner = &fallbackOwner
	}

	return usecase.CreateAccountInput{
		Number:         number,
		InitialBalance: r.InitialBalance,
		OwnerID:        owner,
	}, nil
}

// MoveFundsRequest represents a deposit or withdrawal body.
type MoveFundsRequest struct {
	Amount any `json:"valor"`
}

// ToUseCaseInput converts to use case input.
func (r *MoveFundsRequest) ToUseCaseInput(number int64) usecase.MoveFundsInput {
	return usecase.MoveFundsInput{Number: number, Amount: r.Amount}
}

// Decode reads a JSON body into dst keeping numbers as json.Number so that
// amounts are never routed through float64.
func Decode(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
