package workflow

// NewLifecycleBuilder returns a builder preconfigured with the procurement
// document lifecycle:
//
//	NEW -> DRAFT | PENDING (save)
//	DRAFT -> DRAFT | PENDING (save), PENDING (submit), CANCELLED, DELETED
//	PENDING -> DRAFT | PENDING (save), APPROVED, REJECTED, CANCELLED
//
// APPROVED, REJECTED, CANCELLED and DELETED accept nothing.
func NewLifecycleBuilder() StateMachineBuilder {
	b := NewBuilder()

	b.Configure(StateNew).
		Permit(TriggerSaveDraft, StateDraft).
		Permit(TriggerSaveSubmit, StatePending)

	b.Configure(StateDraft).
		PermitReentry(TriggerSaveDraft).
		Permit(TriggerSaveSubmit, StatePending).
		Permit(TriggerSubmit, StatePending).
		Permit(TriggerCancel, StateCancelled).
		Permit(TriggerDelete, StateDeleted)

	b.Configure(StatePending).
		Permit(TriggerSaveDraft, StateDraft).
		PermitReentry(TriggerSaveSubmit).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerCancel, StateCancelled)

	b.Configure(StateApproved)
	b.Configure(StateRejected)
	b.Configure(StateCancelled)
	b.Configure(StateDeleted)

	return b
}

// NewLifecycle builds a lifecycle machine positioned at initial.
func NewLifecycle(initial State) StateMachine {
	return NewLifecycleBuilder().Build(initial)
}

// CanSaveAs reports whether a save may leave a document in target when it is
// currently in from. Only DRAFT and PENDING are save targets; every other
// status is reached through its own workflow action.
func CanSaveAs(from, target State) bool {
	var trigger Trigger
	switch target {
	case StateDraft:
		trigger = TriggerSaveDraft
	case StatePending:
		trigger = TriggerSaveSubmit
	default:
		return false
	}
	if !from.IsValid() {
		return false
	}
	return NewLifecycle(from).CanFire(trigger)
}
