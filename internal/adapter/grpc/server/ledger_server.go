package server

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	grpcerrors "github.com/iho/bankledger/internal/adapter/grpc/errors"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountService defines the behavior needed by LedgerServer.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.BalanceSnapshot, error)
	Deposit(ctx context.Context, input usecase.MoveFundsInput) (*domain.BalanceSnapshot, error)
	Withdraw(ctx context.Context, input usecase.MoveFundsInput) (*domain.BalanceSnapshot, error)
	Balance(ctx context.Context, number int64) (domain.Money, error)
	History(ctx context.Context, input usecase.HistoryInput) ([]*domain.TransactionLogEntry, error)
}

// LedgerServer implements LedgerServiceServer.
type LedgerServer struct {
	accountUC AccountService
	caller    func(ctx context.Context) string
}

// NewLedgerServer creates a new LedgerServer. caller returns the
// authenticated user ID and may be nil.
func NewLedgerServer(accountUC AccountService, caller func(ctx context.Context) string) *LedgerServer {
	if caller == nil {
		caller = func(context.Context) string { return "" }
	}
	return &LedgerServer{accountUC: accountUC, caller: caller}
}

// CreateAccount opens an account. Fields: conta, saldoInicial, user_id.
func (s *LedgerServer) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.AsMap()

	number, err := accountNumber(fields)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	input := usecase.CreateAccountInput{
		Number:         number,
		InitialBalance: fields["saldoInicial"],
	}
	if owner, ok := fields["user_id"].(string); ok && owner != "" {
		input.OwnerID = &owner
	} else if caller := s.caller(ctx); caller != "" {
		input.OwnerID = &caller
	}

	snap, err := s.accountUC.CreateAccount(ctx, input)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return snapshotToStruct(snap)
}

// Deposit credits an account. Fields: conta, valor.
func (s *LedgerServer) Deposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.move(ctx, req, s.accountUC.Deposit)
}

// Withdraw debits an account. Fields: conta, valor.
func (s *LedgerServer) Withdraw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.move(ctx, req, s.accountUC.Withdraw)
}

func (s *LedgerServer) move(
	ctx context.Context,
	req *structpb.Struct,
	op func(context.Context, usecase.MoveFundsInput) (*domain.BalanceSnapshot, error),
) (*structpb.Struct, error) {
	fields := req.AsMap()

	number, err := accountNumber(fields)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	snap, err := op(ctx, usecase.MoveFundsInput{Number: number, Amount: fields["valor"]})
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return snapshotToStruct(snap)
}

// Balance returns {conta, saldo}.
func (s *LedgerServer) Balance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	number, err := accountNumber(req.AsMap())
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	balance, err := s.accountUC.Balance(ctx, number)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return snapshotToStruct(&domain.BalanceSnapshot{Number: number, Balance: balance})
}

// History lists log entries newest first. Fields: conta, limit, offset.
func (s *LedgerServer) History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.AsMap()

	number, err := accountNumber(fields)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	limit, offset := domain.ValidatePagination(intField(fields, "limit"), intField(fields, "offset"))

	entries, err := s.accountUC.History(ctx, usecase.HistoryInput{Number: number, Limit: limit, Offset: offset})
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	items := make([]any, len(entries))
	for i, e := range entries {
		items[i] = map[string]any{
			"id":         e.ID,
			"tipo":       string(e.Kind),
			"valor":      e.Amount.String(),
			"created_at": e.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	}

	out, err := structpb.NewStruct(map[string]any{
		"conta":        float64(number),
		"transactions": items,
	})
	if err != nil {
		return nil, grpcerrors.MapDomainError(domain.NewInternalError("encode history", err))
	}
	return out, nil
}

func accountNumber(fields map[string]any) (int64, error) {
	number, err := domain.ParseAccountNumber(fields["conta"])
	if err != nil {
		return 0, domain.ErrInvalidAccountNumber.WithCause(err)
	}
	return number, nil
}

func intField(fields map[string]any, key string) int {
	if v, ok := fields[key].(float64); ok {
		return int(v)
	}
	return 0
}

// snapshotToStruct renders saldo as a decimal string with two fractional digits.
func snapshotToStruct(snap *domain.BalanceSnapshot) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]any{
		"conta": float64(snap.Number),
		"saldo": snap.Balance.String(),
	})
	if err != nil {
		return nil, grpcerrors.MapDomainError(domain.NewInternalError("encode snapshot", err))
	}
	return out, nil
}
