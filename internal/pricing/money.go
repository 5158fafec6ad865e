package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value stored in minor units (cents).
type Money = int64

// MaxCents bounds every amount the engine handles ($10 trillion). Keeping all values
// this far below int64 leaves headroom for points and sums to stay exact.
const MaxCents Money = 1_000_000_000_000_000

// ErrOutOfRange is returned when an amount or intermediate sum exceeds MaxCents.
var ErrOutOfRange = errors.New("amount out of range")

// OneCent is the smallest representable currency step.
var OneCent = decimal.New(1, -2)

var maxCentsDecimal = decimal.NewFromInt(MaxCents)

// FromDecimal converts a decimal currency amount into cents, rounding half away from zero.
func FromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxCentsDecimal) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d)
	}
	return cents.IntPart(), nil
}

// ToDecimal converts cents back into a decimal currency amount with two places.
func ToDecimal(m Money) decimal.Decimal {
	return decimal.New(m, -2)
}

// Extend multiplies a per-unit decimal price by qty after rounding the unit to cents.
// The unit is rounded first so repeated units never accumulate sub-cent remainders.
func Extend(unit decimal.Decimal, qty int) (Money, error) {
	cents, err := FromDecimal(unit)
	if err != nil {
		return 0, err
	}
	if qty < 0 {
		return 0, fmt.Errorf("%w: quantity %d", ErrOutOfRange, qty)
	}
	if cents != 0 && int64(qty) > MaxCents/abs(cents) {
		return 0, fmt.Errorf("%w: %s x %d", ErrOutOfRange, unit, qty)
	}
	return cents * Money(qty), nil
}

// Add sums amounts, failing once the running total leaves [-MaxCents, MaxCents].
func Add(amounts ...Money) (Money, error) {
	var total Money
	for _, m := range amounts {
		if abs(m) > MaxCents {
			return 0, fmt.Errorf("%w: %d cents", ErrOutOfRange, m)
		}
		total += m
		if abs(total) > MaxCents {
			return 0, fmt.Errorf("%w: sum exceeds %s", ErrOutOfRange, Format(MaxCents))
		}
	}
	return total, nil
}

func abs(m Money) Money {
	if m < 0 {
		return -m
	}
	return m
}

// Format renders cents as a fixed two-place decimal string.
func Format(m Money) string {
	return ToDecimal(m).StringFixed(2)
}

// WithinCent reports whether a and b differ by at most one cent.
func WithinCent(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(OneCent)
}
