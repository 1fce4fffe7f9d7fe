// Package pricing holds the pure money rules of a procurement draft: discount
// expressions, per-line amounts, price variance and document totals.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places kept on monetary outputs.
const MoneyScale = 2

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a user-entered number. Surrounding spaces and thousands
// separators are tolerated. ok is false for anything decimal cannot read.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Money rounds d to MoneyScale.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
