package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultVarianceThreshold is the fraction a unit price may drift from the
// standard cost before a warning is raised.
var DefaultVarianceThreshold = decimal.NewFromFloat(0.15)

// LineAmounts are the derived amounts of one line. Net always equals Gross - Discount.
type LineAmounts struct {
	Gross    decimal.Decimal `json:"gross_amount"`
	Discount decimal.Decimal `json:"discount_amount"`
	Net      decimal.Decimal `json:"net_amount"`
}

// CalculateLine derives gross, discount and net for quantity x unitPrice.
// Negative inputs produce a zero gross.
func CalculateLine(quantity, unitPrice decimal.Decimal, discountExpr string) LineAmounts {
	gross := NonNegative(Money(quantity.Mul(unitPrice)))
	if quantity.IsNegative() || unitPrice.IsNegative() {
		gross = decimal.Zero
	}
	discount := ResolveDiscount(discountExpr, gross)

	return LineAmounts{
		Gross:    gross,
		Discount: discount,
		Net:      gross.Sub(discount),
	}
}

// VarianceWarning is an advisory raised when a unit price drifts from its
// standard cost. It never blocks saving.
type VarianceWarning struct {
	UnitPrice        decimal.Decimal `json:"unit_price"`
	StandardCost     decimal.Decimal `json:"standard_cost"`
	DeviationPercent decimal.Decimal `json:"deviation_percent"`
	ThresholdPercent decimal.Decimal `json:"threshold_percent"`
}

// Above reports whether the price is higher than the standard cost.
func (w VarianceWarning) Above() bool {
	return w.DeviationPercent.IsPositive()
}

func (w VarianceWarning) String() string {
	direction := "below"
	if w.Above() {
		direction = "above"
	}
	return fmt.Sprintf("unit price %s is %s%% %s standard cost %s (threshold %s%%)",
		w.UnitPrice.StringFixed(MoneyScale),
		w.DeviationPercent.Abs().StringFixed(2),
		direction,
		w.StandardCost.StringFixed(MoneyScale),
		w.ThresholdPercent.StringFixed(2),
	)
}

// CheckVariance compares unitPrice with standardCost. threshold is a fraction
// (0.15 means 15%). A nil or non-positive standard cost disables the check.
func CheckVariance(unitPrice decimal.Decimal, standardCost *decimal.Decimal, threshold decimal.Decimal) *VarianceWarning {
	if standardCost == nil || !standardCost.IsPositive() {
		return nil
	}
	if threshold.IsNegative() {
		threshold = decimal.Zero
	}

	deviation := unitPrice.Sub(*standardCost).Div(*standardCost)
	if deviation.Abs().LessThanOrEqual(threshold) {
		return nil
	}

	return &VarianceWarning{
		UnitPrice:        unitPrice,
		StandardCost:     *standardCost,
		DeviationPercent: deviation.Mul(hundred).Round(2),
		ThresholdPercent: threshold.Mul(hundred),
	}
}
