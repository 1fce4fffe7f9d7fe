// Package draft holds the in-memory procurement document being edited: its
// header, its line store and the mapping to and from the wire record.
package draft

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/domain/pricing"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
)

// PlaceholderNumber marks a document whose number is not assigned yet.
const PlaceholderNumber = "(auto)"

// DateLayout is the layout accepted for date fields given as strings.
const DateLayout = "2006-01-02"

// Header field names accepted by Get and Set.
const (
	FieldDocumentNumber = "documentNumber"
	FieldStatus         = "status"
	FieldRequester      = "requester"
	FieldCostCenter     = "costCenter"
	FieldProject        = "project"
	FieldVendor         = "vendor"
	FieldPurpose        = "purpose"
	FieldRemark         = "remark"
	FieldDocumentDate   = "documentDate"
	FieldDueDate        = "dueDate"
	FieldBaseCurrency   = "baseCurrency"
	FieldQuoteCurrency  = "quoteCurrency"
	FieldExchangeRate   = "exchangeRate"
	FieldMulticurrency  = "isMulticurrency"
	FieldDiscount       = "discount"
	FieldTaxRate        = "taxRate"
	FieldTotals         = "totals"
)

// Draft is a document under edit. It is owned by one session at a time.
type Draft struct {
	ID             int64
	Kind           entity.DocumentKind
	DocumentNumber string
	State          workflow.State

	RequesterID  string
	CostCenterID string
	ProjectID    string
	VendorID     string
	Purpose      string
	Remark       string
	DocumentDate *time.Time
	DueDate      *time.Time

	BaseCurrency    string
	QuoteCurrency   string
	ExchangeRate    decimal.Decimal
	IsMulticurrency bool

	DiscountExpression string
	TaxRate            decimal.Decimal
	SourceDocumentID   int64

	Lines  *Store
	Totals pricing.Totals
}

// IsNew reports whether the draft has never been persisted.
func (d *Draft) IsNew() bool {
	return d.ID == 0
}

// HasPlaceholderNumber reports whether a real number still has to be assigned.
func (d *Draft) HasPlaceholderNumber() bool {
	return d.DocumentNumber == "" || d.DocumentNumber == PlaceholderNumber
}

// Recalculate refreshes Totals from the current lines and header.
func (d *Draft) Recalculate() pricing.Totals {
	totals := pricing.Aggregate(d.Lines.Amounts(), d.DiscountExpression, d.TaxRate)
	if d.IsMulticurrency && d.BaseCurrency != d.QuoteCurrency {
		totals = totals.Convert(d.ExchangeRate)
	}
	d.Totals = totals
	return totals
}

// Get returns the value of a header field.
func (d *Draft) Get(field string) (interface{}, error) {
	switch field {
	case FieldDocumentNumber:
		return d.DocumentNumber, nil
	case FieldStatus:
		return d.State, nil
	case FieldRequester:
		return d.RequesterID, nil
	case FieldCostCenter:
		return d.CostCenterID, nil
	case FieldProject:
		return d.ProjectID, nil
	case FieldVendor:
		return d.VendorID, nil
	case FieldPurpose:
		return d.Purpose, nil
	case FieldRemark:
		return d.Remark, nil
	case FieldDocumentDate:
		return d.DocumentDate, nil
	case FieldDueDate:
		return d.DueDate, nil
	case FieldBaseCurrency:
		return d.BaseCurrency, nil
	case FieldQuoteCurrency:
		return d.QuoteCurrency, nil
	case FieldExchangeRate:
		return d.ExchangeRate, nil
	case FieldMulticurrency:
		return d.IsMulticurrency, nil
	case FieldDiscount:
		return d.DiscountExpression, nil
	case FieldTaxRate:
		return d.TaxRate, nil
	case FieldTotals:
		return d.Totals, nil
	}
	return nil, NewValidationError(field, "is not a document field")
}

// Set assigns a header field after coercing value. It applies no side
// effects; derived fields are the caller's responsibility.
func (d *Draft) Set(field string, value interface{}) error {
	switch field {
	case FieldRequester, FieldCostCenter, FieldProject, FieldVendor, FieldPurpose,
		FieldRemark, FieldBaseCurrency, FieldQuoteCurrency, FieldDiscount:
		str, err := ToString(value)
		if err != nil {
			return NewValidationError(field, err.Error())
		}
		d.setString(field, str)
	case FieldDocumentDate, FieldDueDate:
		ts, err := toTime(value)
		if err != nil {
			return NewValidationError(field, err.Error())
		}
		if field == FieldDueDate {
			d.DueDate = ts
		} else {
			d.DocumentDate = ts
		}
	case FieldExchangeRate:
		rate, err := ToDecimal(value)
		if err != nil {
			return NewValidationError(field, err.Error())
		}
		if !rate.IsPositive() {
			return NewValidationError(field, "must be greater than zero")
		}
		d.ExchangeRate = rate
	case FieldTaxRate:
		rate, err := ToDecimal(value)
		if err != nil {
			return NewValidationError(field, err.Error())
		}
		if rate.IsNegative() {
			return NewValidationError(field, "must not be negative")
		}
		d.TaxRate = rate
	case FieldMulticurrency:
		on, ok := value.(bool)
		if !ok {
			return NewValidationError(field, fmt.Sprintf("expects a bool, got %T", value))
		}
		d.IsMulticurrency = on
	case FieldDocumentNumber, FieldStatus, FieldTotals:
		return NewValidationError(field, "is read-only")
	default:
		return NewValidationError(field, "is not a document field")
	}
	return nil
}

func (d *Draft) setString(field, v string) {
	switch field {
	case FieldRequester:
		d.RequesterID = v
	case FieldCostCenter:
		d.CostCenterID = v
	case FieldProject:
		d.ProjectID = v
	case FieldVendor:
		d.VendorID = v
	case FieldPurpose:
		d.Purpose = v
	case FieldRemark:
		d.Remark = v
	case FieldBaseCurrency:
		d.BaseCurrency = strings.ToUpper(strings.TrimSpace(v))
	case FieldQuoteCurrency:
		d.QuoteCurrency = strings.ToUpper(strings.TrimSpace(v))
	case FieldDiscount:
		d.DiscountExpression = strings.TrimSpace(v)
	}
}

// VendorMismatches returns the positions of non-empty lines whose vendor
// differs from the header vendor. Lines without a vendor never mismatch.
func (d *Draft) VendorMismatches() []int {
	if d.VendorID == "" {
		return nil
	}
	var out []int
	for i, l := range d.Lines.Lines() {
		if l.IsEmpty() || l.VendorID == "" {
			continue
		}
		if l.VendorID != d.VendorID {
			out = append(out, i)
		}
	}
	return out
}

func toTime(value interface{}) (*time.Time, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if v.IsZero() {
			return nil, nil
		}
		return &v, nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil, nil
		}
		t := *v
		return &t, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		t, err := time.Parse(DateLayout, strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%q is not a date (%s)", v, DateLayout)
		}
		return &t, nil
	}
	return nil, fmt.Errorf("unsupported date value of type %T", value)
}
