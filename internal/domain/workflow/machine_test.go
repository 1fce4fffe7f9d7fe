package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateNew, false},
		{StateDraft, false},
		{StatePending, false},
		{StateApproved, true},
		{StateRejected, true},
		{StateCancelled, true},
		{StateDeleted, true},
		{StateSameCurrency, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"lifecycle state", StateDraft, true},
		{"currency state", StateCrossCurrency, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	NewBuilder().Build(State("INVALID"))
}

func TestStateConfiguration_PermitIf_GuardFails(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateDraft).
		PermitIf(TriggerSubmit, StatePending, func(ctx context.Context) bool {
			return false
		})

	machine := builder.Build(StateDraft)

	err := machine.Fire(context.Background(), TriggerSubmit)
	if !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if machine.State() != StateDraft {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateDraft, machine.State())
	}
}

func TestStateMachine_Immutability(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateDraft).Permit(TriggerSubmit, StatePending)

	machine1 := builder.Build(StateDraft)
	machine2 := builder.Build(StateDraft)

	if err := machine1.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine2.State() != StateDraft {
		t.Errorf("machine2 state = %v, want %v", machine2.State(), StateDraft)
	}

	builder.Configure(StateDraft).Permit(TriggerCancel, StateCancelled)
	if machine2.CanFire(TriggerCancel) {
		t.Error("configuration added after Build() leaked into the built machine")
	}
}

func TestStateMachine_OnTransition(t *testing.T) {
	var seen []Transition
	machine := NewLifecycleBuilder().
		OnTransition(func(ctx context.Context, tr Transition) { seen = append(seen, tr) }).
		Build(StateNew)

	ctx := context.Background()
	if err := machine.Fire(ctx, TriggerSaveDraft); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if err := machine.Fire(ctx, TriggerSubmit); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}

	want := []Transition{
		{From: StateNew, To: StateDraft, Trigger: TriggerSaveDraft},
		{From: StateDraft, To: StatePending, Trigger: TriggerSubmit},
	}
	if len(seen) != len(want) {
		t.Fatalf("got %d transitions, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("transition %d = %+v, want %+v", i, seen[i], want[i])
		}
	}
}

func TestLifecycle_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		trigger Trigger
		want    State
		wantErr bool
	}{
		{"new saved on hold", StateNew, TriggerSaveDraft, StateDraft, false},
		{"new saved for approval", StateNew, TriggerSaveSubmit, StatePending, false},
		{"draft resaved", StateDraft, TriggerSaveDraft, StateDraft, false},
		{"draft submitted", StateDraft, TriggerSubmit, StatePending, false},
		{"draft cancelled", StateDraft, TriggerCancel, StateCancelled, false},
		{"draft deleted", StateDraft, TriggerDelete, StateDeleted, false},
		{"pending approved", StatePending, TriggerApprove, StateApproved, false},
		{"pending rejected", StatePending, TriggerReject, StateRejected, false},
		{"pending cancelled", StatePending, TriggerCancel, StateCancelled, false},
		{"pending put on hold", StatePending, TriggerSaveDraft, StateDraft, false},
		{"pending cannot be deleted", StatePending, TriggerDelete, StatePending, true},
		{"draft cannot be approved", StateDraft, TriggerApprove, StateDraft, true},
		{"new cannot be submitted", StateNew, TriggerSubmit, StateNew, true},
		{"approved cannot be cancelled", StateApproved, TriggerCancel, StateApproved, true},
		{"cancelled cannot be cancelled", StateCancelled, TriggerCancel, StateCancelled, true},
		{"rejected cannot be saved", StateRejected, TriggerSaveDraft, StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := NewLifecycle(tt.from)
			err := machine.Fire(context.Background(), tt.trigger)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
				}
			} else if err != nil {
				t.Errorf("Fire() unexpected error: %v", err)
			}
			if machine.State() != tt.want {
				t.Errorf("State() = %v, want %v", machine.State(), tt.want)
			}
		})
	}
}

func TestCanSaveAs(t *testing.T) {
	tests := []struct {
		from, target State
		want         bool
	}{
		{StateNew, StateDraft, true},
		{StateNew, StatePending, true},
		{StateNew, StateCancelled, false},
		{StateNew, StateApproved, false},
		{StateDraft, StatePending, true},
		{StatePending, StateDraft, true},
		{StatePending, StateApproved, false},
		{StatePending, StateRejected, false},
		{StateApproved, StateDraft, false},
		{StateCancelled, StatePending, false},
		{State("BOGUS"), StateDraft, false},
	}
	for _, tt := range tests {
		if got := CanSaveAs(tt.from, tt.target); got != tt.want {
			t.Errorf("CanSaveAs(%s, %s) = %v, want %v", tt.from, tt.target, got, tt.want)
		}
	}
}

func TestLifecycle_PermittedTriggersSorted(t *testing.T) {
	got := NewLifecycle(StatePending).PermittedTriggers()
	want := []Trigger{TriggerApprove, TriggerCancel, TriggerReject, TriggerSaveDraft, TriggerSaveSubmit}
	if len(got) != len(want) {
		t.Fatalf("PermittedTriggers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PermittedTriggers()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCurrencyMachine(t *testing.T) {
	same := true
	needsLookup := true
	guards := CurrencyGuards{
		SameCurrency: func(ctx context.Context) bool { return same },
		NeedsLookup:  func(ctx context.Context) bool { return needsLookup },
	}
	ctx := context.Background()

	m := NewCurrencyMachine(StateSameCurrency, guards)

	if err := m.Fire(ctx, TriggerRateLookup); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("rate lookup in SAME_CURRENCY: error = %v, want %v", err, ErrInvalidTransition)
	}

	same = false
	if err := m.Fire(ctx, TriggerCurrencyChange); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m.State() != StateCrossCurrency {
		t.Fatalf("State() = %v, want %v", m.State(), StateCrossCurrency)
	}

	if err := m.Fire(ctx, TriggerRateLookup); err != nil {
		t.Errorf("rate lookup allowed: unexpected error %v", err)
	}

	needsLookup = false
	if err := m.Fire(ctx, TriggerRateLookup); !errors.Is(err, ErrGuardFailed) {
		t.Errorf("manual rate: error = %v, want %v", err, ErrGuardFailed)
	}

	if err := m.Fire(ctx, TriggerMulticurrencyOff); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m.State() != StateSameCurrency {
		t.Errorf("State() = %v, want %v", m.State(), StateSameCurrency)
	}
}
