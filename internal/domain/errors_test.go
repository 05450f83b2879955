package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesByCode(t *testing.T) {
	withCause := ErrAccountNotFound.WithCause(ErrRecordNotFound)

	if !errors.Is(withCause, ErrAccountNotFound) {
		t.Fatalf("expected code match")
	}

	if !errors.Is(withCause, ErrRecordNotFound) {
		t.Fatalf("expected cause to be reachable via Unwrap")
	}

	if errors.Is(withCause, ErrInsufficientFunds) {
		t.Fatalf("unexpected match across codes")
	}

	wrapped := fmt.Errorf("handler: %w", ErrInsufficientFunds)
	if !errors.Is(wrapped, ErrInsufficientFunds) {
		t.Fatalf("expected match through fmt wrapping")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(ErrInvalidDepositAmount); got != CodeInvalidDepositAmount {
		t.Fatalf("expected %s, got %s", CodeInvalidDepositAmount, got)
	}

	if got := CodeOf(errors.New("boom")); got != CodeInternalError {
		t.Fatalf("expected %s, got %s", CodeInternalError, got)
	}
}

func TestNewInternalError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError("failed to process deposit", cause)

	if !err.IsInternal() {
		t.Fatalf("expected internal error")
	}

	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected match on ErrInternal")
	}

	if err.Error() != "failed to process deposit: connection reset" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if ErrAccountAlreadyExists.IsInternal() {
		t.Fatalf("business error reported as internal")
	}
}
