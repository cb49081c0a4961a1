// Package core provides money parsing and handling utilities.
//
// Amounts are stored as integer cents. Parsing goes through decimal
// arithmetic so that "12.345" rounds half-up exactly instead of through
// float conversion.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxCents keeps amounts far away from int64 overflow.
const maxCents = int64(1) << 53

// ParseAmount converts a decimal string to Money with half-up rounding to
// cents. It accepts both dot (12.34) and comma (12,34) decimal separators.
// Zero is valid: a zero completion marks a period settled without payment.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,34")  -> 1234
//	ParseAmount("12.345") -> 1235
//	ParseAmount("0")      -> 0
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.IsNegative() || cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// ParseOptionalAmount returns nil for an empty string.
func ParseOptionalAmount(s string) (*Money, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	m, err := ParseAmount(s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimals, e.g. "12.30".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// IsZero reports a zero amount.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Sum adds up amounts.
func Sum(amounts ...Money) Money {
	var total int64
	for _, a := range amounts {
		total += a.Cents
	}
	return Money{Cents: total}
}
