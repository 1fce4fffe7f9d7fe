package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ResolveDiscount turns a discount expression into an amount against base.
//
//	""       -> 0
//	"12.5%"  -> base * 12.5 / 100
//	"150"    -> 150
//
// Anything unparsable resolves to 0 and the result always lies in [0, base].
func ResolveDiscount(expr string, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}

	expr = strings.TrimSpace(expr)
	if expr == "" {
		return decimal.Zero
	}

	var amount decimal.Decimal
	if strings.HasSuffix(expr, "%") {
		pct, ok := ParseAmount(strings.TrimSuffix(expr, "%"))
		if !ok {
			return decimal.Zero
		}
		amount = base.Mul(pct).Div(hundred)
	} else {
		v, ok := ParseAmount(expr)
		if !ok {
			return decimal.Zero
		}
		amount = v
	}

	amount = Money(amount)
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(base) {
		return base
	}
	return amount
}

// IsPercent reports whether expr is written as a percentage.
func IsPercent(expr string) bool {
	return strings.HasSuffix(strings.TrimSpace(expr), "%")
}
