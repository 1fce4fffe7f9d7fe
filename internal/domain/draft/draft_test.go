package draft

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
)

var testDefaults = Defaults{
	HomeCurrency: "THB",
	TaxRate:      decimal.NewFromInt(7),
	DueDays:      7,
}

func dec(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestNewBlank(t *testing.T) {
	now := time.Date(2026, 3, 30, 15, 4, 5, 0, time.UTC)

	d := NewBlank(entity.KindPurchaseRequisition, now, testDefaults)

	assert.True(t, d.IsNew())
	assert.True(t, d.HasPlaceholderNumber())
	assert.Equal(t, workflow.StateNew, d.State)
	assert.Equal(t, time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC), *d.DocumentDate)
	assert.Equal(t, time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), *d.DueDate)
	assert.Equal(t, "THB", d.BaseCurrency)
	assert.Equal(t, "THB", d.QuoteCurrency)
	assert.Equal(t, "1", d.ExchangeRate.String())
	assert.Equal(t, 1, d.Lines.Len())
}

func TestFromRecord_AppliesDefaults(t *testing.T) {
	rec := &entity.DocumentRecord{
		ID: 9,
		DocumentHeader: entity.DocumentHeader{
			Kind:            entity.KindRequestForQuotation,
			Status:          "weird",
			CurrencyCode:    "usd",
			IsMulticurrency: true,
		},
	}

	d := FromRecord(rec, testDefaults)

	assert.Equal(t, int64(9), d.ID)
	assert.Equal(t, PlaceholderNumber, d.DocumentNumber)
	assert.Equal(t, workflow.StateDraft, d.State)
	assert.Equal(t, "USD", d.BaseCurrency)
	assert.Equal(t, "USD", d.QuoteCurrency)
	assert.Equal(t, "1", d.ExchangeRate.String())
	assert.Equal(t, "7", d.TaxRate.String())
	assert.Equal(t, 1, d.Lines.Len())
}

func TestFromRecord_SingleCurrencyIsPinnedToHome(t *testing.T) {
	rec := &entity.DocumentRecord{
		DocumentHeader: entity.DocumentHeader{
			Kind:              entity.KindPurchaseOrder,
			Status:            entity.StatusPending,
			CurrencyCode:      "USD",
			QuoteCurrencyCode: "EUR",
			ExchangeRate:      dec("0.92"),
		},
	}

	d := FromRecord(rec, testDefaults)

	assert.Equal(t, "THB", d.BaseCurrency)
	assert.Equal(t, "THB", d.QuoteCurrency)
	assert.Equal(t, "1", d.ExchangeRate.String())
}

func TestFromRecord_LinesAndTotals(t *testing.T) {
	rec := &entity.DocumentRecord{
		ID: 1,
		DocumentHeader: entity.DocumentHeader{
			Kind:              entity.KindPurchaseRequisition,
			DocNo:             "PR-2026-0001",
			Status:            entity.StatusDraft,
			CurrencyCode:      "USD",
			QuoteCurrencyCode: "THB",
			ExchangeRate:      dec("33.5"),
			IsMulticurrency:   true,
			VATRate:           dec("7"),
		},
		Items: []entity.RecordLine{
			{LineNo: 1, ItemID: "I-1", Quantity: *dec("3"), UnitPrice: *dec("25000"), Discount: "150"},
			{LineNo: 2, ItemID: "I-2", Quantity: *dec("3"), UnitPrice: *dec("350"), Discount: "50", StandardCost: dec("300")},
		},
	}

	d := FromRecord(rec, testDefaults)

	require.Equal(t, 2, d.Lines.Len())
	assert.Equal(t, "81159.50", d.Totals.GrandTotal.StringFixed(2))
	assert.Equal(t, "2718843.25", d.Totals.HomeCurrencyTotal.StringFixed(2))
	second, _ := d.Lines.At(1)
	require.NotNil(t, second.Variance, "350 against 300 is a 16.67% deviation")
}

func TestToPayload_FiltersEmptyLines(t *testing.T) {
	d := NewBlank(entity.KindPurchaseRequisition, time.Now(), testDefaults)
	d.Lines.Append()
	d.Lines.Append()
	require.NoError(t, d.Lines.UpdateField(1, LineFieldItem, "I-1"))
	require.NoError(t, d.Lines.UpdateField(1, LineFieldQuantity, 2))
	require.NoError(t, d.Lines.UpdateField(1, LineFieldUnitPrice, 10))

	first := d.ToPayload(entity.StatusDraft)
	second := d.ToPayload(entity.StatusDraft)

	require.Len(t, first.Items, 1)
	assert.Equal(t, 1, first.Items[0].LineNo)
	assert.Equal(t, "20.00", first.Items[0].NetAmount.StringFixed(2))
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, 3, d.Lines.Len(), "filtering does not touch the store")
	assert.Equal(t, "21.40", first.GrandTotal.StringFixed(2))
}

func TestDraft_GetSet(t *testing.T) {
	d := NewBlank(entity.KindPurchaseRequisition, time.Now(), testDefaults)

	require.NoError(t, d.Set(FieldPurpose, "laptops"))
	require.NoError(t, d.Set(FieldDueDate, "2026-12-31"))
	require.NoError(t, d.Set(FieldBaseCurrency, " usd "))
	require.NoError(t, d.Set(FieldTaxRate, "10"))
	require.NoError(t, d.Set(FieldMulticurrency, true))

	v, err := d.Get(FieldPurpose)
	require.NoError(t, err)
	assert.Equal(t, "laptops", v)
	assert.Equal(t, "USD", d.BaseCurrency)
	assert.Equal(t, 2026, d.DueDate.Year())
	assert.Equal(t, "10", d.TaxRate.String())

	var verr *ValidationError
	assert.True(t, errors.As(d.Set(FieldDocumentNumber, "X"), &verr))
	assert.True(t, errors.As(d.Set(FieldExchangeRate, "0"), &verr))
	assert.True(t, errors.As(d.Set(FieldDueDate, "31/12/2026"), &verr))
	assert.True(t, errors.As(d.Set(FieldMulticurrency, "yes"), &verr))
	assert.True(t, errors.As(d.Set("nope", 1), &verr))
	_, err = d.Get("nope")
	assert.Error(t, err)
}

func TestValidate_CollectsEveryMissingField(t *testing.T) {
	d := NewBlank(entity.KindPurchaseRequisition, time.Now(), testDefaults)
	d.DueDate = nil

	err := d.Validate(true)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"requester", "costCenter", "purpose", "dueDate", "lines"}, verr.FieldNames())
}

func TestValidate_RelaxedForHold(t *testing.T) {
	d := NewBlank(entity.KindPurchaseRequisition, time.Now(), testDefaults)

	assert.NoError(t, d.Validate(false))
}

func TestValidate_Complete(t *testing.T) {
	d := NewBlank(entity.KindPurchaseRequisition, time.Now(), testDefaults)
	d.RequesterID = "u-1"
	d.CostCenterID = "cc-1"
	d.Purpose = "office supplies"
	require.NoError(t, d.Lines.UpdateField(0, LineFieldDescription, "pens"))

	assert.NoError(t, d.Validate(true))
}

func TestVendorMismatches(t *testing.T) {
	d := NewBlank(entity.KindPurchaseOrder, time.Now(), testDefaults)
	d.Lines.Append()
	d.Lines.Append()
	require.NoError(t, d.Lines.UpdateField(0, LineFieldItem, "A"))
	require.NoError(t, d.Lines.UpdateField(0, LineFieldVendor, "V1"))
	require.NoError(t, d.Lines.UpdateField(1, LineFieldItem, "B"))
	require.NoError(t, d.Lines.UpdateField(1, LineFieldVendor, "V2"))
	require.NoError(t, d.Lines.UpdateField(2, LineFieldVendor, "V3"))

	assert.Nil(t, d.VendorMismatches(), "no header vendor")

	d.VendorID = "V1"
	assert.Equal(t, []int{1}, d.VendorMismatches())
}
