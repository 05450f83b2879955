package domain

import "errors"

// ErrorCode identifies a ledger failure in a transport independent way.
type ErrorCode string

const (
	CodeInvalidAccountNumber  ErrorCode = "INVALID_ACCOUNT_NUMBER"
	CodeInvalidInitialBalance ErrorCode = "INVALID_INITIAL_BALANCE"
	CodeAccountAlreadyExists  ErrorCode = "ACCOUNT_ALREADY_EXISTS"
	CodeAccountNotFound       ErrorCode = "ACCOUNT_NOT_FOUND"
	CodeInvalidDepositAmount  ErrorCode = "INVALID_DEPOSIT_AMOUNT"
	CodeInvalidWithdrawAmount ErrorCode = "INVALID_WITHDRAW_AMOUNT"
	CodeInsufficientFunds     ErrorCode = "INSUFFICIENT_FUNDS"
	CodeInternalError         ErrorCode = "INTERNAL_ERROR"
)

// CategoryBusiness marks errors that are safe to show to API clients.
const CategoryBusiness = "business"

// Error is the single error type returned by ledger operations.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// IsInternal reports whether the error must be masked from clients.
func (e *Error) IsInternal() bool {
	return e.Code == CodeInternalError
}

var (
	ErrInvalidAccountNumber  = &Error{Code: CodeInvalidAccountNumber, Message: "invalid account number"}
	ErrInvalidInitialBalance = &Error{Code: CodeInvalidInitialBalance, Message: "initial balance cannot be negative"}
	ErrAccountAlreadyExists  = &Error{Code: CodeAccountAlreadyExists, Message: "account already exists"}
	ErrAccountNotFound       = &Error{Code: CodeAccountNotFound, Message: "account not found"}
	ErrInvalidDepositAmount  = &Error{Code: CodeInvalidDepositAmount, Message: "invalid deposit amount"}
	ErrInvalidWithdrawAmount = &Error{Code: CodeInvalidWithdrawAmount, Message: "invalid withdraw amount"}
	ErrInsufficientFunds     = &Error{Code: CodeInsufficientFunds, Message: "insufficient funds"}
	ErrInternal              = &Error{Code: CodeInternalError, Message: "internal error"}
)

// Store level errors. Repositories return these, the service translates them.
var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateAccount = errors.New("duplicate account number")
)

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, cause error) *Error {
	return &Error{Code: CodeInternalError, Message: message, Err: cause}
}

// WithCause returns a copy of e carrying cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: cause}
}

// AsError extracts the ledger error from err, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or CodeInternalError.
func CodeOf(err error) ErrorCode {
	if de, ok := AsError(err); ok {
		return de.Code
	}
	return CodeInternalError
}
