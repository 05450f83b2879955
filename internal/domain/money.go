package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits carried by Money.
const MoneyScale = 2

var (
	ErrMalformedAmount  = errors.New("malformed amount")
	ErrAmountOutOfRange = errors.New("amount out of range")
)

var (
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits = decimal.NewFromInt(math.MinInt64)
)

// Money is an amount expressed in integer minor units (cents).
type Money int64

// ParseAmount converts a loosely typed external value into a decimal.
// Floats are converted through their shortest decimal representation, so
// 0.1 parses as exactly 0.1.
func ParseAmount(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, ErrMalformedAmount
		}
		return *x, nil
	case Money:
		return FromMinorUnits(x), nil
	case string:
		return parseAmountString(x)
	case json.Number:
		return parseAmountString(x.String())
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int8:
		return decimal.NewFromInt(int64(x)), nil
	case int16:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case uint:
		return decimal.NewFromUint64(uint64(x)), nil
	case uint8:
		return decimal.NewFromUint64(uint64(x)), nil
	case uint16:
		return decimal.NewFromUint64(uint64(x)), nil
	case uint32:
		return decimal.NewFromUint64(uint64(x)), nil
	case uint64:
		return decimal.NewFromUint64(x), nil
	case float32:
		return parseAmountFloat(float64(x), 32)
	case float64:
		return parseAmountFloat(x, 64)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrMalformedAmount, v)
	}
}

func parseAmountString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrMalformedAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	return d, nil
}

func parseAmountFloat(f float64, bits int) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedAmount, f)
	}
	if bits == 32 {
		return decimal.NewFromFloat32(float32(f)), nil
	}
	return decimal.NewFromFloat(f), nil
}

// ToMinorUnits parses v and converts it to cents, rounding half away from zero.
func ToMinorUnits(v any) (Money, error) {
	d, err := ParseAmount(v)
	if err != nil {
		return 0, err
	}
	return MoneyFromDecimal(d)
}

// maxIntegerDigits is the widest integer part that can fit in Money.
const maxIntegerDigits = 17

// MoneyFromDecimal rounds d to cents. The magnitude is bounded from the
// coefficient and exponent before any rescaling, so exponents like 1e200000000
// are rejected without materializing the number.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsZero() {
		return 0, nil
	}

	// |d| lies in [10^(magnitude-1), 10^magnitude).
	magnitude := int64(d.NumDigits()) + int64(d.Exponent())
	if magnitude > maxIntegerDigits {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, boundedString(d))
	}
	if magnitude <= -(MoneyScale + 1) {
		// below 0.001, rounds to zero cents
		return 0, nil
	}

	cents := d.Shift(MoneyScale).Round(0)
	if cents.GreaterThan(maxMinorUnits) || cents.LessThan(minMinorUnits) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, d.String())
	}
	return Money(cents.IntPart()), nil
}

func boundedString(d decimal.Decimal) string {
	if e := d.Exponent(); e > 64 || e < -64 {
		return fmt.Sprintf("%se%d", d.Coefficient().String(), e)
	}
	return d.String()
}

// FromMinorUnits returns the exact decimal value of m.
func FromMinorUnits(m Money) decimal.Decimal {
	return decimal.New(int64(m), -MoneyScale)
}

// Normalize rounds v to two fractional digits.
func Normalize(v any) (decimal.Decimal, error) {
	m, err := ToMinorUnits(v)
	if err != nil {
		return decimal.Zero, err
	}
	return FromMinorUnits(m), nil
}

func (m Money) Decimal() decimal.Decimal {
	return FromMinorUnits(m)
}

// String renders m with exactly two fractional digits, e.g. "300.50".
func (m Money) String() string {
	return FromMinorUnits(m).StringFixed(MoneyScale)
}

func (m Money) IsPositive() bool { return m > 0 }

func (m Money) IsNegative() bool { return m < 0 }

// Add returns m+o, failing on int64 overflow.
func (m Money) Add(o Money) (Money, error) {
	if (o > 0 && m > math.MaxInt64-o) || (o < 0 && m < math.MinInt64-o) {
		return 0, ErrAmountOutOfRange
	}
	return m + o, nil
}

// Sub returns m-o, failing on int64 overflow.
func (m Money) Sub(o Money) (Money, error) {
	if o == math.MinInt64 {
		return 0, ErrAmountOutOfRange
	}
	return m.Add(-o)
}

// MarshalJSON emits a bare JSON number with two fractional digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return fmt.Errorf("%w: null", ErrMalformedAmount)
	}
	raw = strings.Trim(raw, `"`)
	v, err := ToMinorUnits(raw)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
