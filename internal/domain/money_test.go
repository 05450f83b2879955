package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Money
	}{
		{"string with cents", "100.50", 10050},
		{"integer", 200, 20000},
		{"float", 50.0, 5000},
		{"float with binary drift", 0.1, 10},
		{"round half up", "10.005", 1001},
		{"round down", "10.004", 1000},
		{"negative rounds away from zero", "-0.005", -1},
		{"json number", json.Number("9999.00"), 999900},
		{"decimal", decimal.RequireFromString("1.239"), 124},
		{"money passthrough", Money(25050), 25050},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinorUnits(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToMinorUnits_Malformed(t *testing.T) {
	for _, in := range []any{"", "abc", "1,50", nil, true, math.NaN(), math.Inf(1), struct{}{}} {
		_, err := ToMinorUnits(in)
		assert.ErrorIs(t, err, ErrMalformedAmount, "input %#v", in)
	}
}

func TestToMinorUnits_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"exponent", "1e30"},
		{"one past max int64", "9223372036854775808"},
		{"negative past min", "-92233720368547758.09"},
		{"huge json exponent", json.Number("1e200000000")},
		{"huge negative exponent", "-4e200000000"},
		{"large float", 1e300},
		{"uint64 max", uint64(math.MaxUint64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan error, 1)
			go func() {
				_, err := ToMinorUnits(tt.in)
				done <- err
			}()

			select {
			case err := <-done:
				assert.ErrorIs(t, err, ErrAmountOutOfRange)
			case <-time.After(2 * time.Second):
				t.Fatalf("ToMinorUnits(%v) did not return", tt.in)
			}
		})
	}
}

func TestToMinorUnits_Bounds(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Money
	}{
		{"max cents", "92233720368547758.07", math.MaxInt64},
		{"min cents", "-92233720368547758.08", math.MinInt64},
		{"tiny exponent rounds to zero", json.Number("1e-200000000"), 0},
		{"sub-mill rounds to zero", "0.0009", 0},
		{"sub-cent rounds down", "0.004", 0},
		{"sub-cent rounds up", "0.0051", 1},
		{"zero with huge exponent", "0e200000000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinorUnits(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.Equal(t, "300.50", FromMinorUnits(30050).StringFixed(2))
	assert.True(t, FromMinorUnits(30050).Equal(decimal.RequireFromString("300.5")))
	assert.Equal(t, "-0.01", FromMinorUnits(-1).StringFixed(2))
}

func TestNormalize_Properties(t *testing.T) {
	inputs := []any{"100.505", "0.1", 0.3, "12345.6789", 7, "-3.335", json.Number("0.005")}

	for _, in := range inputs {
		once, err := Normalize(in)
		require.NoError(t, err)

		twice, err := Normalize(once)
		require.NoError(t, err)
		assert.True(t, once.Equal(twice), "normalize not idempotent for %v", in)

		cents, err := ToMinorUnits(in)
		require.NoError(t, err)
		assert.True(t, FromMinorUnits(cents).Equal(once), "round trip mismatch for %v", in)
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	sum, err := Money(10050).Add(20000)
	require.NoError(t, err)
	assert.Equal(t, Money(30050), sum)

	diff, err := sum.Sub(5000)
	require.NoError(t, err)
	assert.Equal(t, "250.50", diff.String())

	_, err = Money(math.MaxInt64).Add(1)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = Money(0).Sub(math.MinInt64)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestMoney_JSON(t *testing.T) {
	out, err := json.Marshal(BalanceSnapshot{Number: 12345, Balance: 30050})
	require.NoError(t, err)
	assert.JSONEq(t, `{"conta":12345,"saldo":300.50}`, string(out))
	assert.Contains(t, string(out), "300.50")

	var fromNumber, fromString Money
	require.NoError(t, json.Unmarshal([]byte(`250.5`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"250.50"`), &fromString))
	assert.Equal(t, Money(25050), fromNumber)
	assert.Equal(t, fromNumber, fromString)

	var bad Money
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &bad))
}
