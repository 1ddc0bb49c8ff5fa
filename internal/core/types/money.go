// Package types provides the numeric value types shared by the pricing core
// and the persistence layer.
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a billable amount (meters, square meters, appliances, units).
type Quantity = decimal.Decimal

// MoneyPlaces is the number of fractional digits kept on persisted amounts.
const MoneyPlaces int32 = 2

// NewMoney creates a Money value from a float.
// Prefer NewMoneyFromString for values coming from text.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(m Money) Money {
	return m.Round(MoneyPlaces)
}

// Midpoint returns the exact arithmetic mean of lo and hi.
func Midpoint(lo, hi Money) Money {
	return lo.Add(hi).Div(decimal.NewFromInt(2))
}

// Clamp bounds v into [lo, hi]. lo must not exceed hi.
func Clamp(v, lo, hi Money) Money {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// ParseLenient parses a user-typed number. Surrounding spaces are ignored and
// a decimal comma is accepted ("12,5"). The second result is false when the
// input is empty or not a number, in which case zero is returned.
func ParseLenient(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
