package event

// Type identifies the type of domain event
type Type string

const (
	TypeFieldChanged       Type = "draft.field_changed"
	TypeTotalsRecalculated Type = "draft.totals_recalculated"
	TypeVarianceWarning    Type = "draft.variance_warning"
	TypeRateApplied        Type = "currency.rate_applied"
	TypeRateLookupFailed   Type = "currency.rate_lookup_failed"
	TypeDocumentLoaded     Type = "document.loaded"
	TypeDocumentSaved      Type = "document.saved"
	TypeStatusChanged      Type = "document.status_changed"
	TypeDocumentDeleted    Type = "document.deleted"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeFieldChanged,
		TypeTotalsRecalculated,
		TypeVarianceWarning,
		TypeRateApplied,
		TypeRateLookupFailed,
		TypeDocumentLoaded,
		TypeDocumentSaved,
		TypeStatusChanged,
		TypeDocumentDeleted:
		return true
	default:
		return false
	}
}
