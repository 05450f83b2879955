package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/domain"
)

// AccountUseCase handles account business logic: opening accounts, moving
// funds in and out and reading balances.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	logRepo     TransactionLogRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     MetricsRecorder
	now         func() time.Time
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	logRepo TransactionLogRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		logRepo:     logRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithMetrics attaches a metrics recorder.
func (uc *AccountUseCase) WithMetrics(m MetricsRecorder) *AccountUseCase {
	uc.metrics = m
	return uc
}

// CreateAccountInput represents input for creating an account.
// InitialBalance accepts strings, numbers or decimals; nil means zero.
type CreateAccountInput struct {
	Number         int64
	InitialBalance any
	OwnerID        *string
}

// MoveFundsInput represents input for a deposit or withdrawal.
type MoveFundsInput struct {
	Number int64
	Amount any
}

// HistoryInput represents input for listing an account's transaction log.
type HistoryInput struct {
	Number int64
	Limit  int
	Offset int
}

// CreateAccount opens an account with an optional initial balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (snap *domain.BalanceSnapshot, err error) {
	defer uc.observe(OpCreateAccount, time.Now(), &err)

	if err := domain.ValidateAccountNumber(input.Number); err != nil {
		return nil, err
	}

	var initial domain.Money
	if input.InitialBalance != nil {
		raw, err := domain.ParseAmount(input.InitialBalance)
		if err != nil {
			return nil, domain.ErrInvalidInitialBalance.WithCause(err)
		}
		// The sign is checked before rounding, so -0.004 is rejected.
		if raw.IsNegative() {
			return nil, domain.ErrInvalidInitialBalance
		}
		initial, err = domain.MoneyFromDecimal(raw)
		if err != nil {
			return nil, domain.ErrInvalidInitialBalance.WithCause(err)
		}
	}

	// Pre-check. A concurrent creator can still win the race; the unique
	// constraint catches that case below.
	if _, err := uc.accountRepo.GetByNumber(ctx, input.Number); err == nil {
		return nil, domain.ErrAccountAlreadyExists
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, uc.fail(ctx, OpCreateAccount, "failed to create account", err)
	}

	now := uc.now()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		Number:         input.Number,
		OwnerID:        input.OwnerID,
		Balance:        initial,
		OpeningBalance: initial,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = uc.txManager.RunAtomically(ctx, func(ctx context.Context, tx Transaction) error {
		if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
			return err
		}

		event := domain.AccountCreatedEvent{
			Number:         account.Number,
			OwnerID:        account.OwnerID,
			OpeningBalance: account.OpeningBalance.String(),
		}
		return uc.emit(ctx, tx, account, domain.EventTypeAccountCreated, event.Payload(), now)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return nil, domain.ErrAccountAlreadyExists.WithCause(err)
		}
		return nil, uc.fail(ctx, OpCreateAccount, "failed to create account", err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("conta", account.Number).
		Str("saldo", account.Balance.String()).
		Msg("account created")

	return account.Snapshot(), nil
}

// Deposit adds a positive amount to the account balance.
func (uc *AccountUseCase) Deposit(ctx context.Context, input MoveFundsInput) (snap *domain.BalanceSnapshot, err error) {
	defer uc.observe(OpDeposit, time.Now(), &err)

	amount, err := positiveAmount(input.Amount, domain.ErrInvalidDepositAmount)
	if err != nil {
		return nil, err
	}

	snap, err = uc.move(ctx, input.Number, amount, domain.TransactionDeposit)
	if err != nil {
		return nil, uc.fail(ctx, OpDeposit, "failed to process deposit", err)
	}

	uc.observeAmount(OpDeposit, amount)
	return snap, nil
}

// Withdraw removes a positive amount from the account balance. The balance
// never goes below zero.
func (uc *AccountUseCase) Withdraw(ctx context.Context, input MoveFundsInput) (snap *domain.BalanceSnapshot, err error) {
	defer uc.observe(OpWithdraw, time.Now(), &err)

	amount, err := positiveAmount(input.Amount, domain.ErrInvalidWithdrawAmount)
	if err != nil {
		return nil, err
	}

	snap, err = uc.move(ctx, input.Number, amount, domain.TransactionWithdraw)
	if err != nil {
		return nil, uc.fail(ctx, OpWithdraw, "failed to process withdrawal", err)
	}

	uc.observeAmount(OpWithdraw, amount)
	return snap, nil
}

// Balance returns the current balance without taking a row lock.
func (uc *AccountUseCase) Balance(ctx context.Context, number int64) (balance domain.Money, err error) {
	defer uc.observe(OpBalance, time.Now(), &err)

	account, err := uc.accountRepo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return 0, domain.ErrAccountNotFound
		}
		return 0, uc.fail(ctx, OpBalance, "failed to query balance", err)
	}

	return account.Balance, nil
}

// History lists the account's transaction log, newest first.
func (uc *AccountUseCase) History(ctx context.Context, input HistoryInput) (entries []*domain.TransactionLogEntry, err error) {
	defer uc.observe(OpHistory, time.Now(), &err)

	if _, err := uc.accountRepo.GetByNumber(ctx, input.Number); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, uc.fail(ctx, OpHistory, "failed to list transactions", err)
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	entries, err = uc.logRepo.ListByAccount(ctx, input.Number, limit, offset)
	if err != nil {
		return nil, uc.fail(ctx, OpHistory, "failed to list transactions", err)
	}

	return entries, nil
}

// move locks the account row, applies the change and writes the log entry in
// one transaction.
func (uc *AccountUseCase) move(
	ctx context.Context,
	number int64,
	amount domain.Money,
	kind domain.TransactionKind,
) (*domain.BalanceSnapshot, error) {
	return Atomically(ctx, uc.txManager, func(ctx context.Context, tx Transaction) (*domain.BalanceSnapshot, error) {
		account, err := uc.accountRepo.GetByNumberForUpdate(ctx, tx, number)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				return nil, domain.ErrAccountNotFound
			}
			return nil, err
		}

		now := uc.now()
		eventType := domain.EventTypeAccountDeposited
		if kind == domain.TransactionWithdraw {
			eventType = domain.EventTypeAccountWithdrawn
			err = account.Debit(amount, now)
		} else {
			err = account.Credit(amount, now)
			if errors.Is(err, domain.ErrAmountOutOfRange) {
				err = domain.ErrInvalidDepositAmount.WithCause(err)
			}
		}
		if err != nil {
			return nil, err
		}

		if err := uc.accountRepo.Save(ctx, tx, account); err != nil {
			return nil, err
		}

		entry := &domain.TransactionLogEntry{
			ID:            uc.idGen.Generate(),
			AccountID:     account.ID,
			AccountNumber: account.Number,
			Kind:          kind,
			Amount:        amount,
			CreatedAt:     now,
		}
		if err := uc.logRepo.Append(ctx, tx, entry); err != nil {
			return nil, err
		}

		event := domain.BalanceChangedEvent{
			EntryID: entry.ID,
			Number:  account.Number,
			Kind:    string(kind),
			Amount:  amount.String(),
			Balance: account.Balance.String(),
			EventAt: now.Format(time.RFC3339Nano),
		}
		if err := uc.emit(ctx, tx, account, eventType, event.Payload(), now); err != nil {
			return nil, err
		}

		return account.Snapshot(), nil
	})
}

func (uc *AccountUseCase) emit(
	ctx context.Context,
	tx Transaction,
	account *domain.Account,
	eventType string,
	payload map[string]any,
	at time.Time,
) error {
	if uc.outboxRepo == nil {
		return nil
	}
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     at,
	})
}

// fail passes ledger errors through and masks everything else as an internal error.
func (uc *AccountUseCase) fail(ctx context.Context, op, message string, err error) error {
	if _, ok := domain.AsError(err); ok {
		return err
	}

	zerolog.Ctx(ctx).Error().Err(err).Str("operation", op).Msg(message)
	return domain.NewInternalError(message, err)
}

func (uc *AccountUseCase) observe(op string, start time.Time, err *error) {
	if uc.metrics == nil {
		return
	}
	var code domain.ErrorCode
	if *err != nil {
		code = domain.CodeOf(*err)
	}
	uc.metrics.ObserveOperation(op, code, time.Since(start))
}

func (uc *AccountUseCase) observeAmount(op string, amount domain.Money) {
	if uc.metrics != nil {
		uc.metrics.ObserveAmount(op, amount)
	}
}

func positiveAmount(v any, invalid *domain.Error) (domain.Money, error) {
	amount, err := domain.ToMinorUnits(v)
	if err != nil {
		return 0, invalid.WithCause(err)
	}
	if !amount.IsPositive() {
		return 0, invalid
	}
	return amount, nil
}
