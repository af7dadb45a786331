// Package core provides the budget domain values and money handling.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and unit representations.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var maxCents = decimal.NewFromInt((1<<63 - 1) / 100)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case !unicode.IsDigit(r):
			// Signs, exponents and anything else are rejected
			return 0, ErrInvalidAmount
		}
	}
	if dots > 1 {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	cents := d.Round(2).Shift(2).IntPart()
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// NormalizeAmount parses an amount coming from an external source and
// returns zero Money when the text cannot be parsed. Currency symbols,
// spaces and a decimal comma are tolerated; the sign is preserved.
func NormalizeAmount(s string) Money {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == '€', r == '$', r == '£':
			return -1
		case r == ',':
			return '.'
		}
		return r
	}, s)
	if s == "" {
		return Money{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.Abs().GreaterThan(maxCents) {
		return Money{}
	}
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// MoneyFromUnits converts a float amount (e.g. euros) to Money, rounding to the cent.
func MoneyFromUnits(units float64) Money {
	return Money{Cents: decimal.NewFromFloat(units).Round(2).Shift(2).IntPart()}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Units returns the amount as a float64 for ratios and display.
// Use cents for arithmetic to avoid floating-point drift.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) Neg() Money { return Money{Cents: -m.Cents} }

func (m Money) IsNegative() bool { return m.Cents < 0 }

func (m Money) IsZero() bool { return m.Cents == 0 }

// String renders the amount with two decimals, e.g. "-12.50".
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}
