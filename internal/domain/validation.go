package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrMalformedAccountNumber = errors.New("malformed account number")

const maxExactFloatInt = 1 << 53

// Validation constants
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParseAccountNumber converts a loosely typed external value into an account
// number. It does not check positivity; ValidateAccountNumber does.
func ParseAccountNumber(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d", ErrMalformedAccountNumber, x)
		}
		return int64(x), nil
	case float64:
		// From 2^53 on, neighbouring integers share a float64.
		if x != math.Trunc(x) || math.Abs(x) >= maxExactFloatInt {
			return 0, fmt.Errorf("%w: %v", ErrMalformedAccountNumber, x)
		}
		return int64(x), nil
	case json.Number:
		return ParseAccountNumber(string(x))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedAccountNumber, x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrMalformedAccountNumber, v)
	}
}

// ValidateAccountNumber rejects non-positive numbers.
func ValidateAccountNumber(number int64) error {
	if number <= 0 {
		return ErrInvalidAccountNumber
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
