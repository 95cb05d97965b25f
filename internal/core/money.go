// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer minor units so that SQL sums stay exact;
// shopspring/decimal does the parsing and rounding.
package core

import (
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	maxAmount = decimal.New(1, 15)

	// groupedAmount matches thousands-grouped input as Format renders it.
	groupedAmount = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// ParseAmount converts a decimal string to Money with half-up rounding to
// two places.
//
// The decimal separator is a dot. Commas are accepted only as thousands
// separators in well-formed groups, the way Format prints totals. Zero is a
// valid amount; negative values and anything that is not a plain number are
// not.
//
// Examples:
//
//	ParseAmount("12.34")    -> 1234 cents
//	ParseAmount("1,500")    -> 150000 cents
//	ParseAmount("12,34")    -> ErrInvalidAmount
//	ParseAmount("0")        -> 0 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if groupedAmount.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	if s == "" || strings.HasPrefix(s, "+") || strings.ContainsAny(s, "eE,") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() || d.GreaterThanOrEqual(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d), nil
}

// MoneyFromDecimal rounds d to cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// String renders the amount with two decimals ("1500.00"), suitable for form
// values and JSON.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Format renders the amount rounded to whole units with thousands separators
// followed by the currency code, e.g. "1,500 MMK".
func (m Money) Format(currency string) string {
	s := humanize.Comma(m.Decimal().Round(0).IntPart())
	if currency == "" {
		return s
	}
	return s + " " + currency
}
