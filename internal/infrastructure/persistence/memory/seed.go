package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-drafts/internal/domain/entity"
)

// Seed loads the reference rows the sqlite schema ships with: currencies,
// tax codes and the default THB rates.
func Seed(master *MasterData, rates *Rates) {
	if master != nil {
		vat7, vat0 := decimal.NewFromInt(7), decimal.Zero
		master.Put(
			entity.ReferenceItem{ID: "THB", Kind: entity.RefCurrency, Code: "THB", Name: "Thai Baht", Active: true},
			entity.ReferenceItem{ID: "USD", Kind: entity.RefCurrency, Code: "USD", Name: "US Dollar", Active: true},
			entity.ReferenceItem{ID: "EUR", Kind: entity.RefCurrency, Code: "EUR", Name: "Euro", Active: true},
			entity.ReferenceItem{ID: "SGD", Kind: entity.RefCurrency, Code: "SGD", Name: "Singapore Dollar", Active: true},
			entity.ReferenceItem{ID: "VAT7", Kind: entity.RefTaxCode, Code: "VAT7", Name: "VAT 7%", Rate: &vat7, Active: true},
			entity.ReferenceItem{ID: "VAT0", Kind: entity.RefTaxCode, Code: "VAT0", Name: "VAT exempt", Rate: &vat0, Active: true},
		)
	}
	if rates != nil {
		for _, r := range []struct{ from, rate string }{{"USD", "33.5"}, {"EUR", "38.1"}, {"SGD", "26.4"}} {
			// Inputs are constant and valid.
			_ = rates.Upsert(context.Background(), &entity.ExchangeRate{From: r.from, To: "THB", Rate: decimal.RequireFromString(r.rate)})
		}
	}
}
