package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceKind names a master-data list.
type ReferenceKind string

const (
	RefCostCenter ReferenceKind = "cost_center"
	RefProject    ReferenceKind = "project"
	RefVendor     ReferenceKind = "vendor"
	RefTaxCode    ReferenceKind = "tax_code"
	RefCurrency   ReferenceKind = "currency"
	RefItem       ReferenceKind = "item"
	RefRequester  ReferenceKind = "requester"
)

// ReferenceKinds lists every master-data kind in load order.
var ReferenceKinds = []ReferenceKind{
	RefCostCenter, RefProject, RefVendor, RefTaxCode, RefCurrency, RefItem, RefRequester,
}

// IsValid reports whether k is a known master-data kind.
func (k ReferenceKind) IsValid() bool {
	for _, known := range ReferenceKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ReferenceItem is a read-only master-data row.
type ReferenceItem struct {
	ID           string           `json:"id"`
	Kind         ReferenceKind    `json:"kind"`
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	StandardCost *decimal.Decimal `json:"standard_cost,omitempty"`
	UOM          string           `json:"uom,omitempty"`
	// Rate holds the percentage of a tax code.
	Rate   *decimal.Decimal `json:"rate,omitempty"`
	Active bool             `json:"active"`
}

// ExchangeRate is a stored conversion from one currency to another.
type ExchangeRate struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
}
