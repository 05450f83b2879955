package handler

import (
	"context"
	"net/http"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.BalanceSnapshot, error)
	Deposit(ctx context.Context, input usecase.MoveFundsInput) (*domain.BalanceSnapshot, error)
	Withdraw(ctx context.Context, input usecase.MoveFundsInput) (*domain.BalanceSnapshot, error)
	Balance(ctx context.Context, number int64) (domain.Money, error)
	History(ctx context.Context, input usecase.HistoryInput) ([]*domain.TransactionLogEntry, error)
}

// CallerFunc returns the authenticated caller's ID, or "" when anonymous.
type CallerFunc func(ctx context.Context) string

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	caller    CallerFunc
}

// NewAccountHandler creates a new AccountHandler. caller may be nil.
func NewAccountHandler(accountUC AccountService, caller CallerFunc) *AccountHandler {
	if caller == nil {
		caller = func(context.Context) string { return "" }
	}
	return &AccountHandler{accountUC: accountUC, caller: caller}
}

// Create opens a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		writeError(w, r, domain.ErrInvalidAccountNumber.WithCause(err))
		return
	}

	input, err := req.ToUseCaseInput(h.caller(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := h.accountUC.CreateAccount(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.BalanceFromSnapshot(snap))
}

// Deposit credits the account in the path.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, domain.ErrInvalidDepositAmount, h.accountUC.Deposit)
}

// Withdraw debits the account in the path.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, domain.ErrInvalidWithdrawAmount, h.accountUC.Withdraw)
}

func (h *AccountHandler) move(
	w http.ResponseWriter,
	r *http.Request,
	invalidAmount *domain.Error,
	op func(context.Context, usecase.MoveFundsInput) (*domain.BalanceSnapshot, error),
) {
	number, err := accountNumberParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req dto.MoveFundsRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		writeError(w, r, invalidAmount.WithCause(err))
		return
	}

	snap, err := op(r.Context(), req.ToUseCaseInput(number))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromSnapshot(snap))
}

// Balance returns the current balance of the account in the path.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	number, err := accountNumberParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	balance, err := h.accountUC.Balance(r.Context(), number)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{Number: number, Balance: balance})
}

// Transactions lists the account's deposits and withdrawals, newest first.
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	number, err := accountNumberParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit, offset := domain.ValidatePagination(
		parseIntQuery(r, "limit", domain.DefaultPageSize),
		parseIntQuery(r, "offset", 0),
	)

	entries, err := h.accountUC.History(r.Context(), usecase.HistoryInput{
		Number: number,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Number:       number,
		Transactions: dto.TransactionsFromDomain(entries),
		Limit:        limit,
		Offset:       offset,
	})
}
