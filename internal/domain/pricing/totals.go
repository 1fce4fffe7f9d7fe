package pricing

import "github.com/shopspring/decimal"

// Totals is the document-level summary of all lines.
type Totals struct {
	Subtotal               decimal.Decimal `json:"subtotal"`
	TotalLineDiscount      decimal.Decimal `json:"total_line_discount"`
	DocumentDiscountAmount decimal.Decimal `json:"document_discount_amount"`
	TaxableBase            decimal.Decimal `json:"taxable_base"`
	TaxAmount              decimal.Decimal `json:"tax_amount"`
	GrandTotal             decimal.Decimal `json:"grand_total"`
	// HomeCurrencyTotal is GrandTotal converted with the document rate.
	// Equal to GrandTotal for single-currency documents.
	HomeCurrencyTotal decimal.Decimal `json:"home_currency_total"`
}

// Aggregate sums line amounts and applies the document discount and tax rate
// (a percentage, 7 meaning 7%). Every output is non-negative.
func Aggregate(lines []LineAmounts, documentDiscountExpr string, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	lineDiscount := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Net)
		lineDiscount = lineDiscount.Add(l.Discount)
	}
	subtotal = NonNegative(subtotal)
	lineDiscount = NonNegative(lineDiscount)

	docDiscount := ResolveDiscount(documentDiscountExpr, subtotal)
	taxable := NonNegative(subtotal.Sub(docDiscount))
	tax := Money(taxable.Mul(NonNegative(taxRate)).Div(hundred))
	grand := taxable.Add(tax)

	return Totals{
		Subtotal:               subtotal,
		TotalLineDiscount:      lineDiscount,
		DocumentDiscountAmount: docDiscount,
		TaxableBase:            taxable,
		TaxAmount:              tax,
		GrandTotal:             grand,
		HomeCurrencyTotal:      grand,
	}
}

// Convert returns a copy of t with HomeCurrencyTotal priced at rate.
// A non-positive rate leaves the grand total unconverted.
func (t Totals) Convert(rate decimal.Decimal) Totals {
	if rate.IsPositive() {
		t.HomeCurrencyTotal = Money(t.GrandTotal.Mul(rate))
	} else {
		t.HomeCurrencyTotal = t.GrandTotal
	}
	return t
}
