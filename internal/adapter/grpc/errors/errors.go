package errors

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/iho/bankledger/internal/domain"
)

// ErrorDomain is reported in every ErrorInfo detail.
const ErrorDomain = "bankledger"

// MapDomainError converts domain errors to appropriate gRPC status codes.
// Business errors carry an ErrorInfo detail whose reason is the ledger code;
// anything else is reported as Internal without its cause.
func MapDomainError(err error) error {
	if err == nil {
		return nil
	}

	if de, ok := domain.AsError(err); ok && !de.IsInternal() {
		return withInfo(codeFor(de.Code), de.Message, de.Code, domain.CategoryBusiness)
	}

	// Context errors (timeouts, cancellations)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "operation timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "operation was canceled")
	}

	return withInfo(codes.Internal, "an internal error occurred", domain.CodeInternalError, "")
}

// MapError is an alias for MapDomainError for backwards compatibility
func MapError(err error) error {
	return MapDomainError(err)
}

// CodeFromStatus extracts the ledger code from an error returned by a
// LedgerService call, or "" when the status has none.
func CodeFromStatus(err error) domain.ErrorCode {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
			return domain.ErrorCode(info.GetReason())
		}
	}
	return ""
}

func codeFor(code domain.ErrorCode) codes.Code {
	switch code {
	case domain.CodeInvalidAccountNumber,
		domain.CodeInvalidInitialBalance,
		domain.CodeInvalidDepositAmount,
		domain.CodeInvalidWithdrawAmount:
		return codes.InvalidArgument
	case domain.CodeAccountAlreadyExists:
		return codes.AlreadyExists
	case domain.CodeAccountNotFound:
		return codes.NotFound
	case domain.CodeInsufficientFunds:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

func withInfo(c codes.Code, msg string, code domain.ErrorCode, category string) error {
	info := &errdetails.ErrorInfo{
		Reason: string(code),
		Domain: ErrorDomain,
	}
	if category != "" {
		info.Metadata = map[string]string{"category": category}
	}

	st, err := status.New(c, msg).WithDetails(info)
	if err != nil {
		return status.Error(c, msg)
	}
	return st.Err()
}
