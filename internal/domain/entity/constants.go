package entity

// DocumentKind identifies a procurement document type.
type DocumentKind string

const (
	KindPurchaseRequisition DocumentKind = "PR"
	KindRequestForQuotation DocumentKind = "RFQ"
	KindVendorQuotation     DocumentKind = "VQ"
	KindPurchaseOrder       DocumentKind = "PO"
	KindGoodsReceipt        DocumentKind = "GR"
	KindQualityControl      DocumentKind = "QC"
)

var sourceKinds = map[DocumentKind]DocumentKind{
	KindRequestForQuotation: KindPurchaseRequisition,
	KindVendorQuotation:     KindRequestForQuotation,
	KindPurchaseOrder:       KindVendorQuotation,
	KindGoodsReceipt:        KindPurchaseOrder,
	KindQualityControl:      KindGoodsReceipt,
}

// IsValid reports whether k is one of the procurement kinds.
func (k DocumentKind) IsValid() bool {
	switch k {
	case KindPurchaseRequisition, KindRequestForQuotation, KindVendorQuotation,
		KindPurchaseOrder, KindGoodsReceipt, KindQualityControl:
		return true
	}
	return false
}

// SourceKind is the upstream document lines are copied from (RFQ <- PR, ...).
// ok is false for a purchase requisition, which starts the chain.
func (k DocumentKind) SourceKind() (DocumentKind, bool) {
	src, ok := sourceKinds[k]
	return src, ok
}

func (k DocumentKind) String() string {
	return string(k)
}

// DocumentStatus is the persisted lifecycle status.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "DRAFT"
	StatusPending   DocumentStatus = "PENDING"
	StatusApproved  DocumentStatus = "APPROVED"
	StatusRejected  DocumentStatus = "REJECTED"
	StatusCancelled DocumentStatus = "CANCELLED"
)

// IsValid reports whether s is a persisted status.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func (s DocumentStatus) String() string {
	return string(s)
}

// Workflow action names recorded in history.
const (
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionSubmit  = "SUBMIT"
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
	ActionCancel  = "CANCEL"
	ActionDelete  = "DELETE"
)

// DefaultHomeCurrency is used when no organization currency is configured.
const DefaultHomeCurrency = "THB"
