package draft

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-drafts/internal/domain/pricing"
)

// Line field names accepted by Store.UpdateField.
const (
	LineFieldItem         = "item"
	LineFieldDescription  = "description"
	LineFieldUOM          = "uom"
	LineFieldVendor       = "vendor"
	LineFieldQuantity     = "quantity"
	LineFieldUnitPrice    = "unitPrice"
	LineFieldDiscount     = "discount"
	LineFieldStandardCost = "standardCost"
)

// LineItem is one editable line. Amounts and Variance are outputs of the
// calculator and are never set by callers.
type LineItem struct {
	ItemID             string
	Description        string
	UOM                string
	VendorID           string
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	DiscountExpression string
	// StandardCost is a snapshot taken when the item was picked. It only
	// drives the variance warning and is not persisted as pricing.
	StandardCost *decimal.Decimal

	Amounts  pricing.LineAmounts
	Variance *pricing.VarianceWarning
}

// IsEmpty reports whether the line carries no item, quantity, price or description.
func (l LineItem) IsEmpty() bool {
	return l.ItemID == "" &&
		l.Quantity.IsZero() &&
		l.UnitPrice.IsZero() &&
		strings.TrimSpace(l.Description) == ""
}

func (l *LineItem) recalculate(threshold decimal.Decimal) {
	l.Amounts = pricing.CalculateLine(l.Quantity, l.UnitPrice, l.DiscountExpression)
	l.Variance = pricing.CheckVariance(l.UnitPrice, l.StandardCost, threshold)
}

func (l LineItem) clone() LineItem {
	if l.StandardCost != nil {
		sc := *l.StandardCost
		l.StandardCost = &sc
	}
	if l.Variance != nil {
		v := *l.Variance
		l.Variance = &v
	}
	return l
}

func affectsAmounts(field string) bool {
	switch field {
	case LineFieldQuantity, LineFieldUnitPrice, LineFieldDiscount, LineFieldStandardCost:
		return true
	}
	return false
}

// ToDecimal coerces a field value into a decimal. Empty strings and nil read as zero.
func ToDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, nil
		}
		return *v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return decimal.Zero, nil
		}
		d, ok := pricing.ParseAmount(v)
		if !ok {
			return decimal.Zero, fmt.Errorf("%q is not a number", v)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported numeric value of type %T", value)
	}
}

// ToString coerces a field value into a string.
func ToString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported text value of type %T", value)
	}
}
