// Package money provides decimal-precise amount parsing and formatting for
// report line items. It uses shopspring/decimal for arithmetic and go-money
// for ISO-4217 currency metadata.
package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	USD = "USD" // US Dollar
	EUR = "EUR" // Euro
	GBP = "GBP" // British Pound
	CAD = "CAD" // Canadian Dollar
)

// currencySymbols are stripped from raw amounts before parsing.
var currencySymbols = []string{"$", "€", "£", "R$", "¥", "₹", "USD", "EUR", "GBP", "CAD"}

// ParseAmount parses a raw amount string from a report or spreadsheet cell
// into a signed decimal. Accepts currency symbols, thousands separators,
// leading minus signs, and accountant-style parenthesized negatives:
//
//	"$1,250.00" -> 1250.00
//	"(45.20)"   -> -45.20
//	"-112.50"   -> -112.50
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}

	// Thousands separators
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if negative {
		d = d.Neg()
	}
	return d, nil
}

// FormatFixed renders a decimal as the canonical two-decimal string used in
// output records, e.g. 1250 -> "1250.00".
func FormatFixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Symbol returns the display symbol for an ISO-4217 currency code,
// falling back to the code itself when unknown.
func Symbol(code string) string {
	c := gomoney.GetCurrency(strings.ToUpper(code))
	if c == nil {
		return code
	}
	return c.Grapheme
}

// Fraction returns the number of decimal places for a currency code.
// Unknown codes default to 2.
func Fraction(code string) int {
	c := gomoney.GetCurrency(strings.ToUpper(code))
	if c == nil {
		return 2
	}
	return c.Fraction
}

// Display formats an amount with its currency symbol for log and CLI output.
func Display(d decimal.Decimal, code string) string {
	c := gomoney.GetCurrency(strings.ToUpper(code))
	if c == nil {
		return d.StringFixed(2)
	}
	return c.Grapheme + d.StringFixed(int32(c.Fraction))
}
