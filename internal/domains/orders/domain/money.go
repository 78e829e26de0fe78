package domain

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// CurrencySymbol is the single display currency of the storefront.
const CurrencySymbol = "৳"

// MaxAmount caps every stored amount so that line totals of up to 100 units, summed with
// shipping, stay far inside int64.
const MaxAmount Money = 10_000_000_000_000

var (
	// ErrInvalidAmount indicates an amount that cannot be represented in whole cents.
	ErrInvalidAmount = errors.New("amount must have at most two decimal places")
	// ErrAmountOutOfRange indicates an amount above MaxAmount or a sum that would overflow.
	ErrAmountOutOfRange = errors.New("amount is out of range")
)

var (
	hundred      = decimal.NewFromInt(100)
	maxAmountDec = decimal.NewFromInt(int64(MaxAmount))
)

// Money is an amount in minor currency units (cents). All arithmetic and
// comparisons on order totals happen on this integer representation.
type Money int64

// MoneyFromDecimal converts a decimal amount into cents, rejecting sub-cent precision and
// magnitudes above MaxAmount.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, ErrInvalidAmount
	}
	if cents.Abs().GreaterThan(maxAmountDec) {
		return 0, ErrAmountOutOfRange
	}
	return Money(cents.IntPart()), nil
}

// MustMoney builds Money from a major-unit string such as "12.50". Intended for tests and fixtures.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	m, err := MoneyFromDecimal(d)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String renders the amount with two decimals, e.g. "210.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// add sums two amounts and reports false when the result would overflow.
func (m Money) add(other Money) (Money, bool) {
	sum := m + other
	if (other > 0 && sum < m) || (other < 0 && sum > m) {
		return 0, false
	}
	return sum, true
}

// sub subtracts an amount and reports false when the result would overflow.
func (m Money) sub(other Money) (Money, bool) {
	if other == math.MinInt64 {
		return 0, false
	}
	return m.add(-other)
}

// times multiplies by a count and reports false when the result would overflow.
func (m Money) times(n int) (Money, bool) {
	if m == 0 || n == 0 {
		return 0, true
	}
	product := m * Money(n)
	if product/Money(n) != m {
		return 0, false
	}
	return product, true
}

// Display renders the amount with the storefront currency symbol.
func (m Money) Display() string {
	return CurrencySymbol + m.String()
}
