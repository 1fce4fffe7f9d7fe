package draft

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
)

// Defaults are the organization settings applied when a draft is created or
// hydrated. Every fallback value lives here.
type Defaults struct {
	HomeCurrency string
	TaxRate      decimal.Decimal
	DueDays      int
	StoreOptions []StoreOption
}

func (d Defaults) home() string {
	if d.HomeCurrency == "" {
		return entity.DefaultHomeCurrency
	}
	return d.HomeCurrency
}

// NewBlank returns an unsaved draft dated today with the due date DueDays later.
func NewBlank(kind entity.DocumentKind, today time.Time, defaults Defaults) *Draft {
	day := truncateDay(today)
	due := day.AddDate(0, 0, defaults.DueDays)
	home := defaults.home()

	d := &Draft{
		Kind:           kind,
		DocumentNumber: PlaceholderNumber,
		State:          workflow.StateNew,
		DocumentDate:   &day,
		DueDate:        &due,
		BaseCurrency:   home,
		QuoteCurrency:  home,
		ExchangeRate:   decimal.NewFromInt(1),
		TaxRate:        defaults.TaxRate,
		Lines:          NewStore(defaults.StoreOptions...),
	}
	d.Recalculate()
	return d
}

// FromRecord maps a stored record onto a draft. Missing or inconsistent wire
// values are replaced by defaults here and nowhere else.
func FromRecord(rec *entity.DocumentRecord, defaults Defaults) *Draft {
	d := &Draft{
		ID:                 rec.ID,
		Kind:               rec.Kind,
		DocumentNumber:     strings.TrimSpace(rec.DocNo),
		State:              workflow.State(rec.Status),
		RequesterID:        rec.RequesterID,
		CostCenterID:       rec.CostCenterID,
		ProjectID:          rec.ProjectID,
		VendorID:           rec.VendorID,
		Purpose:            rec.Purpose,
		Remark:             rec.Remark,
		DocumentDate:       copyTime(rec.DocDate),
		DueDate:            copyTime(rec.DueDate),
		BaseCurrency:       strings.ToUpper(strings.TrimSpace(rec.CurrencyCode)),
		QuoteCurrency:      strings.ToUpper(strings.TrimSpace(rec.QuoteCurrencyCode)),
		IsMulticurrency:    rec.IsMulticurrency,
		DiscountExpression: strings.TrimSpace(rec.Discount),
		TaxRate:            defaults.TaxRate,
		SourceDocumentID:   rec.SourceDocumentID,
		Lines:              NewStore(defaults.StoreOptions...),
	}

	if d.DocumentNumber == "" {
		d.DocumentNumber = PlaceholderNumber
	}
	if !entity.DocumentStatus(d.State).IsValid() {
		d.State = workflow.StateDraft
	}
	if !d.Kind.IsValid() {
		d.Kind = entity.KindPurchaseRequisition
	}
	if rec.ExchangeRate != nil {
		d.ExchangeRate = *rec.ExchangeRate
	}
	if rec.VATRate != nil && !rec.VATRate.IsNegative() {
		d.TaxRate = *rec.VATRate
	}
	d.EnforceCurrencyInvariants(defaults.home())

	d.Lines.ReplaceAll(LinesFromRecord(rec.Items))
	d.Recalculate()
	return d
}

// LinesFromRecord converts persisted lines into editable lines.
func LinesFromRecord(items []entity.RecordLine) []LineItem {
	lines := make([]LineItem, 0, len(items))
	for _, it := range items {
		line := LineItem{
			ItemID:             it.ItemID,
			Description:        it.Description,
			UOM:                it.UOM,
			VendorID:           it.VendorID,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DiscountExpression: it.Discount,
		}
		if it.StandardCost != nil {
			sc := *it.StandardCost
			line.StandardCost = &sc
		}
		lines = append(lines, line)
	}
	return lines
}

// EnforceCurrencyInvariants pins single-currency drafts to the home currency
// at rate 1 and keeps the rate at 1 whenever both currencies match.
func (d *Draft) EnforceCurrencyInvariants(home string) {
	one := decimal.NewFromInt(1)
	if !d.IsMulticurrency {
		d.BaseCurrency = home
		d.QuoteCurrency = home
		d.ExchangeRate = one
		return
	}
	if d.BaseCurrency == "" {
		d.BaseCurrency = home
	}
	if d.QuoteCurrency == "" {
		d.QuoteCurrency = d.BaseCurrency
	}
	if d.BaseCurrency == d.QuoteCurrency || !d.ExchangeRate.IsPositive() {
		d.ExchangeRate = one
	}
}

// ToPayload serializes the draft for create or update. Empty lines are
// dropped and the remaining lines are renumbered from 1.
func (d *Draft) ToPayload(status entity.DocumentStatus) *entity.DocumentPayload {
	totals := d.Recalculate()
	rate := d.ExchangeRate
	tax := d.TaxRate

	payload := &entity.DocumentPayload{
		DocumentHeader: entity.DocumentHeader{
			Kind:              d.Kind,
			DocNo:             d.DocumentNumber,
			Status:            status,
			RequesterID:       d.RequesterID,
			CostCenterID:      d.CostCenterID,
			ProjectID:         d.ProjectID,
			VendorID:          d.VendorID,
			Purpose:           d.Purpose,
			Remark:            d.Remark,
			DocDate:           copyTime(d.DocumentDate),
			DueDate:           copyTime(d.DueDate),
			CurrencyCode:      d.BaseCurrency,
			QuoteCurrencyCode: d.QuoteCurrency,
			ExchangeRate:      &rate,
			IsMulticurrency:   d.IsMulticurrency,
			Discount:          d.DiscountExpression,
			VATRate:           &tax,
			SourceDocumentID:  d.SourceDocumentID,
			Subtotal:          totals.Subtotal,
			DiscountAmount:    totals.DocumentDiscountAmount,
			TaxAmount:         totals.TaxAmount,
			GrandTotal:        totals.GrandTotal,
		},
	}

	for i, l := range d.Lines.NonEmpty() {
		item := entity.RecordLine{
			LineNo:         i + 1,
			ItemID:         l.ItemID,
			Description:    l.Description,
			UOM:            l.UOM,
			VendorID:       l.VendorID,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			Discount:       l.DiscountExpression,
			DiscountAmount: l.Amounts.Discount,
			NetAmount:      l.Amounts.Net,
		}
		payload.Items = append(payload.Items, item)
	}
	return payload
}

func copyTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	c := *t
	return &c
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
