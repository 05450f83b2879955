package usecase

import (
	"context"
	"fmt"
)

type txContextKey struct{}

// ContextWithTx returns a context carrying the active transaction.
func ContextWithTx(ctx context.Context, tx Transaction) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext returns the transaction started by an enclosing RunAtomically.
func TxFromContext(ctx context.Context) (Transaction, bool) {
	tx, ok := ctx.Value(txContextKey{}).(Transaction)
	return tx, ok && tx != nil
}

// RunInTransaction implements the RunAtomically contract on top of a begin
// function. Transaction managers delegate to it.
//
// A nested call reuses the outer transaction and leaves commit or rollback to
// the outermost call. The outermost call rolls back when fn returns an error
// or panics; a panic is re-raised after the rollback.
func RunInTransaction(
	ctx context.Context,
	begin func(ctx context.Context) (Transaction, error),
	fn func(ctx context.Context, tx Transaction) error,
) (err error) {
	if tx, ok := TxFromContext(ctx); ok {
		return fn(ctx, tx)
	}

	tx, err := begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err = fn(ContextWithTx(ctx, tx), tx); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Atomically runs fn through tm and returns its result.
func Atomically[T any](
	ctx context.Context,
	tm TransactionManager,
	fn func(ctx context.Context, tx Transaction) (T, error),
) (T, error) {
	var result T
	err := tm.RunAtomically(ctx, func(ctx context.Context, tx Transaction) error {
		v, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
