package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentHeader carries the fields shared by stored records and write payloads.
// JSON names follow the server's field naming.
type DocumentHeader struct {
	Kind              DocumentKind     `json:"doc_type"`
	DocNo             string           `json:"doc_no"`
	Status            DocumentStatus   `json:"status"`
	RequesterID       string           `json:"requester_id"`
	CostCenterID      string           `json:"cost_center_id"`
	ProjectID         string           `json:"project_id,omitempty"`
	VendorID          string           `json:"vendor_id,omitempty"`
	Purpose           string           `json:"purpose"`
	Remark            string           `json:"remark,omitempty"`
	DocDate           *time.Time       `json:"doc_date,omitempty"`
	DueDate           *time.Time       `json:"due_date,omitempty"`
	CurrencyCode      string           `json:"currency_code"`
	QuoteCurrencyCode string           `json:"quote_currency_code,omitempty"`
	ExchangeRate      *decimal.Decimal `json:"exchange_rate,omitempty"`
	IsMulticurrency   bool             `json:"is_multicurrency"`
	Discount          string           `json:"discount,omitempty"`
	VATRate           *decimal.Decimal `json:"vat_rate,omitempty"`
	SourceDocumentID  int64            `json:"source_document_id,omitempty"`
	Subtotal          decimal.Decimal  `json:"subtotal"`
	DiscountAmount    decimal.Decimal  `json:"discount_amount"`
	TaxAmount         decimal.Decimal  `json:"vat_amount"`
	GrandTotal        decimal.Decimal  `json:"grand_total"`
}

// RecordLine is one persisted line.
type RecordLine struct {
	LineNo         int              `json:"line_no"`
	ItemID         string           `json:"item_id,omitempty"`
	Description    string           `json:"description,omitempty"`
	UOM            string           `json:"uom,omitempty"`
	VendorID       string           `json:"vendor_id,omitempty"`
	Quantity       decimal.Decimal  `json:"qty"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	Discount       string           `json:"discount,omitempty"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	NetAmount      decimal.Decimal  `json:"net_amount"`
	StandardCost   *decimal.Decimal `json:"standard_cost,omitempty"`
}

// DocumentRecord is a document as returned by the repository.
type DocumentRecord struct {
	ID int64 `json:"id"`
	DocumentHeader
	Items     []RecordLine `json:"items"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// DocumentPayload is the body of a create or update call.
type DocumentPayload struct {
	DocumentHeader
	Items []RecordLine `json:"items"`
}

// DocumentFilter narrows a List call. Zero values match everything.
type DocumentFilter struct {
	Kind   DocumentKind   `form:"kind"`
	Status DocumentStatus `form:"status"`
	Limit  int            `form:"limit"`
	Offset int            `form:"offset"`
}

// ActionResult is the outcome of a workflow action.
type ActionResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Status  DocumentStatus `json:"status,omitempty"`
}
