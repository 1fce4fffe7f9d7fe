package workflow

import "context"

// StateMachine tracks the current state and validates transitions.
// Implementations are not safe for concurrent use; callers hold their own lock.
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire reports whether the trigger has any configured transition from the current state.
	// Guards are not evaluated.
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the first target whose guard passes.
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers configured for the current state
	PermittedTriggers() []Trigger
}

// Transition describes one applied state change.
type Transition struct {
	From    State
	To      State
	Trigger Trigger
}
