// Package core provides amount parsing and display formatting.
//
// Amounts are stored as plain float64 values, the same way the persisted
// JSON carries them. Sums are computed with decimals (see summary.go) so
// that totals do not drift when many entries are added together.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySuffix is appended to every displayed amount.
const CurrencySuffix = "원"

var printer = message.NewPrinter(language.Korean)

// ParseAmount converts user input into a positive amount.
//
// Surrounding whitespace and thousands separators ("1,000") are accepted.
// Empty input, non-numbers, NaN/Inf, zero and negative values return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("1000")   -> 1000, nil
//	ParseAmount("1,250.5") -> 1250.5, nil
//	ParseAmount("0")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders a decimal with Korean grouping and up to three fraction
// digits, followed by the currency suffix (e.g. "1,234.5원").
func FormatAmount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(3))) + CurrencySuffix
}

// FormatSigned prefixes the formatted absolute amount with sign ("+" or "-").
func FormatSigned(sign string, d decimal.Decimal) string {
	return sign + FormatAmount(d.Abs())
}
