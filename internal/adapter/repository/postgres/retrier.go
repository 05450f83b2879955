package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATEs that abort a transfer transaction but succeed on a clean rerun.
// A lock timeout (55P03) is not retried; it surfaces as ErrLockTimeout.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// Retrier reruns a whole RunAtomically body when Postgres aborts it with a
// deadlock or serialization failure.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
}

// NewRetrier returns a Retrier allowing three reruns within ten seconds.
func NewRetrier() *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		maxElapsedTime:  10 * time.Second,
	}
}

func (r *Retrier) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.maxRetries)), ctx)
}

// Retry runs operation until it succeeds, fails with a non-retryable error
// or the retry budget is spent. The last error is returned as is.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	attempt := 0

	return backoff.Retry(func() error {
		attempt++

		err := operation()
		if err == nil {
			return nil
		}

		code, ok := retryableSQLState(err)
		if !ok {
			return backoff.Permanent(err)
		}

		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("sqlstate", code).
			Int("attempt", attempt).
			Msg("transaction aborted, rerunning")

		return err
	}, r.backOff(ctx))
}

func retryableSQLState(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}

	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure:
		return pgErr.Code, true
	default:
		return pgErr.Code, false
	}
}

func isRetryableError(err error) bool {
	_, ok := retryableSQLState(err)
	return ok
}
