package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

// Lifecycle triggers.
const (
	TriggerSaveDraft  Trigger = "SAVE_DRAFT"
	TriggerSaveSubmit Trigger = "SAVE_SUBMIT"
	TriggerSubmit     Trigger = "SUBMIT"
	TriggerApprove    Trigger = "APPROVE"
	TriggerReject     Trigger = "REJECT"
	TriggerCancel     Trigger = "CANCEL"
	TriggerDelete     Trigger = "DELETE"
)

// Currency sync triggers.
const (
	TriggerCurrencyChange   Trigger = "CURRENCY_CHANGE"
	TriggerMulticurrencyOff Trigger = "MULTICURRENCY_OFF"
	TriggerRateLookup       Trigger = "RATE_LOOKUP"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
