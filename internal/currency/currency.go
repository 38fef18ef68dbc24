// Package currency formats and parses the rupee amounts shown in allowance
// tables. Amounts are carried as decimals end to end; only display strings
// are produced here.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Glyph is the currency symbol prefixed to every formatted amount.
const Glyph = "₹"

var (
	wholeFormatter    = money.NewFormatter(0, ".", ",", Glyph, "$1")
	fractionFormatter = money.NewFormatter(2, ".", ",", Glyph, "$1")
)

// ErrInvalidAmount is returned when a display string cannot be read back.
var ErrInvalidAmount = errors.New("invalid currency amount")

// Format renders d as "₹1,234,567"-style text grouped in thousands. Whole
// amounts carry no fraction digits; anything else is rounded to paise.
func Format(d decimal.Decimal) string {
	if d.IsInteger() {
		return wholeFormatter.Format(d.IntPart())
	}
	return fractionFormatter.Format(d.Shift(2).Round(0).IntPart())
}

// Parse reads an amount back from its display form, stripping the glyph,
// group separators and surrounding whitespace.
func Parse(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	for _, prefix := range []string{Glyph, "INR", "Rs.", "Rs"} {
		clean = strings.ReplaceAll(clean, prefix, "")
	}
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, " ", "")
	if clean == "" {
		return decimal.Zero, errors.Wrapf(ErrInvalidAmount, "%q", s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrInvalidAmount, "%q", s)
	}
	return d, nil
}

// ParseOrZero is Parse that treats unreadable input as zero. Sorting uses it
// so that a malformed cell sinks instead of failing the whole table.
func ParseOrZero(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Sum adds amounts.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
