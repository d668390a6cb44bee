// Package core provides money parsing and handling utilities.
//
// Amounts are stored as signed integer cents. This file converts between
// cents and the decimal dollar strings used by the import and export formats.
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DayLayout is the calendar format used by imports, exports and the command line.
const DayLayout = "2006-01-02"

var (
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidDate   = fmt.Errorf("%w: invalid date, want YYYY-MM-DD", ErrValidation)
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(1 << 62)
)

// ParseCents converts a decimal dollar string to cents using round(value * 100).
//
// An empty (or blank) string is an absent amount and yields 0. The sign is kept,
// so callers decide whether negative values are acceptable.
//
// Examples:
//
//	ParseCents("117.34") -> 11734, nil
//	ParseCents("1.005")  -> 101, nil
//	ParseCents("")       -> 0, nil
//	ParseCents("abc")    -> 0, ErrInvalidAmount
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// FormatCents renders cents as a dollar value with two decimals, e.g. -11734 -> "-117.34".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Dollars returns the dollar value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func Dollars(cents int64) float64 {
	f, _ := decimal.New(cents, -2).Float64()
	return f
}

// ParseDay parses a YYYY-MM-DD day into the unix timestamp of its UTC midnight.
func ParseDay(s string) (int64, error) {
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return 0, ErrInvalidDate
	}
	return t.Unix(), nil
}

// FormatDay renders a unix timestamp as its UTC YYYY-MM-DD day.
func FormatDay(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(DayLayout)
}
