package workflow

import "context"

// CurrencyGuards supplies the predicates the currency machine consults.
// They read the controller's pending selection so the machine itself stays
// free of previous-value bookkeeping.
type CurrencyGuards struct {
	// SameCurrency reports whether the pending base and quote are equal.
	SameCurrency GuardFunc
	// NeedsLookup reports whether a rate fetch is warranted: a currency changed,
	// or the rate has not been edited by hand since the last fetch.
	NeedsLookup GuardFunc
}

// NewCurrencyMachine builds the SAME_CURRENCY / CROSS_CURRENCY machine.
// A RATE_LOOKUP fire that fails with ErrGuardFailed means the manual rate is kept.
func NewCurrencyMachine(initial State, guards CurrencyGuards) StateMachine {
	cross := func(g GuardFunc) GuardFunc {
		return func(ctx context.Context) bool { return !g(ctx) }
	}

	b := NewBuilder()

	b.Configure(StateSameCurrency).
		PermitIf(TriggerCurrencyChange, StateSameCurrency, guards.SameCurrency).
		PermitIf(TriggerCurrencyChange, StateCrossCurrency, cross(guards.SameCurrency)).
		PermitReentry(TriggerMulticurrencyOff)

	b.Configure(StateCrossCurrency).
		PermitIf(TriggerCurrencyChange, StateSameCurrency, guards.SameCurrency).
		PermitIf(TriggerCurrencyChange, StateCrossCurrency, cross(guards.SameCurrency)).
		Permit(TriggerMulticurrencyOff, StateSameCurrency).
		PermitIf(TriggerRateLookup, StateCrossCurrency, guards.NeedsLookup)

	return b.Build(initial)
}
