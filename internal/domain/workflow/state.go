package workflow

// State is a node in one of the draft state machines: the document lifecycle
// or the currency sync controller.
type State string

// Document lifecycle states. StateNew exists only in memory before the first
// save; StateDeleted is the sink reached by removing a draft.
const (
	StateNew       State = "NEW"
	StateDraft     State = "DRAFT"
	StatePending   State = "PENDING"
	StateApproved  State = "APPROVED"
	StateRejected  State = "REJECTED"
	StateCancelled State = "CANCELLED"
	StateDeleted   State = "DELETED"
)

// Currency sync states.
const (
	StateSameCurrency  State = "SAME_CURRENCY"
	StateCrossCurrency State = "CROSS_CURRENCY"
)

var validStates = map[State]bool{
	StateNew:           true,
	StateDraft:         true,
	StatePending:       true,
	StateApproved:      true,
	StateRejected:      true,
	StateCancelled:     true,
	StateDeleted:       true,
	StateSameCurrency:  true,
	StateCrossCurrency: true,
}

var terminalStates = map[State]bool{
	StateApproved:  true,
	StateRejected:  true,
	StateCancelled: true,
	StateDeleted:   true,
}

// IsTerminal reports whether no lifecycle action is accepted from s.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is known to any machine in this package
func (s State) IsValid() bool {
	return validStates[s]
}
