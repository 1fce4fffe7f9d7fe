package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/draft"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
)

// DefaultLookupTimeout bounds a single exchange-rate request.
const DefaultLookupTimeout = 10 * time.Second

// CurrencySnapshot is the currency state of one document at a point in time.
// Version grows with every change; consumers drop snapshots older than the
// last one they applied.
type CurrencySnapshot struct {
	Base          string
	Quote         string
	Rate          decimal.Decimal
	Multicurrency bool
	ManualRate    bool
	State         workflow.State
	Version       uint64
}

// CurrencyOption configures a CurrencySync.
type CurrencyOption func(*CurrencySync)

// WithHomeCurrency sets the currency single-currency documents are pinned to.
func WithHomeCurrency(code string) CurrencyOption {
	return func(c *CurrencySync) {
		if code != "" {
			c.home = strings.ToUpper(code)
		}
	}
}

// WithLookupTimeout bounds each provider call.
func WithLookupTimeout(d time.Duration) CurrencyOption {
	return func(c *CurrencySync) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithApplyHook registers the callback run after every applied change.
// It runs outside the controller's lock.
func WithApplyHook(hook func(CurrencySnapshot)) CurrencyOption {
	return func(c *CurrencySync) {
		c.onApply = hook
	}
}

// WithCurrencyRecorder sets the metrics recorder.
func WithCurrencyRecorder(r Recorder) CurrencyOption {
	return func(c *CurrencySync) {
		if r != nil {
			c.recorder = r
		}
	}
}

// CurrencySync keeps the base currency, quote currency and exchange rate of
// one document consistent. Only the most recently issued rate lookup may
// change the rate, and nothing is applied after Close.
type CurrencySync struct {
	mu       sync.Mutex
	provider port.ExchangeRateProvider
	logger   Logger
	recorder Recorder
	home     string
	timeout  time.Duration
	onApply  func(CurrencySnapshot)

	machine       workflow.StateMachine
	base          string
	quote         string
	rate          decimal.Decimal
	multicurrency bool
	manual        bool
	// changed is set while firing a currency change whose base or quote
	// differs from the previous selection; the lookup guard reads it.
	changed bool
	pending [2]string
	version uint64
	closed  bool
}

// NewCurrencySync starts a controller from the document's stored currency fields.
func NewCurrencySync(provider port.ExchangeRateProvider, logger Logger, base, quote string, rate decimal.Decimal, multicurrency bool, opts ...CurrencyOption) *CurrencySync {
	if logger == nil {
		logger = nopLogger{}
	}
	c := &CurrencySync{
		provider:      provider,
		logger:        logger,
		recorder:      nopRecorder{},
		home:          entity.DefaultHomeCurrency,
		timeout:       DefaultLookupTimeout,
		base:          normalizeCode(base),
		quote:         normalizeCode(quote),
		rate:          rate,
		multicurrency: multicurrency,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.multicurrency || c.base == "" {
		c.base, c.quote = c.pinnedHome()
	}
	if c.quote == "" {
		c.quote = c.base
	}
	initial := workflow.StateCrossCurrency
	if c.base == c.quote {
		initial = workflow.StateSameCurrency
		c.rate = decimal.NewFromInt(1)
	}
	if !c.rate.IsPositive() {
		c.rate = decimal.NewFromInt(1)
	}

	c.machine = workflow.NewCurrencyMachine(initial, workflow.CurrencyGuards{
		SameCurrency: func(ctx context.Context) bool { return c.pending[0] == c.pending[1] },
		NeedsLookup:  func(ctx context.Context) bool { return c.changed || !c.manual },
	})
	return c
}

// Snapshot returns the current currency state.
func (c *CurrencySync) Snapshot() CurrencySnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Rate returns the rate currently in force.
func (c *CurrencySync) Rate() decimal.Decimal {
	return c.Snapshot().Rate
}

// State returns SAME_CURRENCY or CROSS_CURRENCY.
func (c *CurrencySync) State() workflow.State {
	return c.Snapshot().State
}

// SetCurrencies changes the base and quote currency. Entering SAME_CURRENCY
// pins the rate to 1 without a lookup. In CROSS_CURRENCY a lookup is issued
// when a currency changed or the rate was not edited by hand; otherwise the
// manual rate is kept. A failed lookup returns *RateLookupError and keeps the
// previous rate.
func (c *CurrencySync) SetCurrencies(ctx context.Context, base, quote string) error {
	base, quote = normalizeCode(base), normalizeCode(quote)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	if !c.multicurrency {
		c.mu.Unlock()
		return draft.NewValidationError(draft.FieldBaseCurrency, "cannot change while multicurrency is off")
	}
	if base == "" {
		base = c.home
	}
	if quote == "" {
		quote = base
	}

	c.pending = [2]string{base, quote}
	c.changed = base != c.base || quote != c.quote
	if err := c.machine.Fire(ctx, workflow.TriggerCurrencyChange); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("currency change: %w", err)
	}
	c.base, c.quote = base, quote
	c.version++

	if c.machine.State() == workflow.StateSameCurrency {
		c.rate = decimal.NewFromInt(1)
		c.manual = false
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.apply(snap)
		return nil
	}

	return c.lookupLocked(ctx)
}

// SetMulticurrency toggles multicurrency mode. Turning it off resets the
// document to the home currency at rate 1 whatever the prior state.
func (c *CurrencySync) SetMulticurrency(ctx context.Context, on bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}

	c.multicurrency = on
	if !on {
		if err := c.machine.Fire(ctx, workflow.TriggerMulticurrencyOff); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("multicurrency off: %w", err)
		}
		c.base, c.quote = c.pinnedHome()
		c.rate = decimal.NewFromInt(1)
		c.manual = false
	}
	c.version++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.apply(snap)
	return nil
}

// SetRateManually records a user-entered rate. It is only accepted for a
// cross-currency document and it invalidates any lookup still in flight.
func (c *CurrencySync) SetRateManually(rate decimal.Decimal) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	if c.machine.State() != workflow.StateCrossCurrency {
		c.mu.Unlock()
		return draft.NewValidationError(draft.FieldExchangeRate, "is fixed at 1 for a single-currency document")
	}
	if !rate.IsPositive() {
		c.mu.Unlock()
		return draft.NewValidationError(draft.FieldExchangeRate, "must be greater than zero")
	}

	c.rate = rate
	c.manual = true
	c.version++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.apply(snap)
	return nil
}

// Refresh re-fetches the rate for the current pair unless it was edited by hand.
func (c *CurrencySync) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	if c.machine.State() != workflow.StateCrossCurrency {
		c.mu.Unlock()
		return nil
	}
	c.changed = false
	c.version++
	return c.lookupLocked(ctx)
}

// Close stops the controller; results arriving later are discarded.
func (c *CurrencySync) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.version++
}

// lookupLocked is entered with c.mu held and releases it.
func (c *CurrencySync) lookupLocked(ctx context.Context) error {
	if err := c.machine.Fire(ctx, workflow.TriggerRateLookup); err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		if errors.Is(err, workflow.ErrGuardFailed) {
			c.recorder.RateLookup("skipped_manual")
			c.apply(snap)
			return nil
		}
		return fmt.Errorf("rate lookup: %w", err)
	}

	issued := c.version
	from, to := c.base, c.quote
	pre := c.snapshotLocked()
	c.mu.Unlock()
	c.apply(pre)

	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	rate, err := c.provider.GetRate(lookupCtx, from, to)
	cancel()
	if err == nil && !rate.IsPositive() {
		err = fmt.Errorf("provider returned non-positive rate %s", rate.String())
	}

	c.mu.Lock()
	if c.closed || c.version != issued {
		c.mu.Unlock()
		c.recorder.RateLookup("stale")
		c.logger.Info("Discarded stale exchange rate", "from", from, "to", to)
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		c.recorder.RateLookup("error")
		c.logger.Warn("Exchange rate lookup failed, keeping previous rate", "from", from, "to", to, "error", err)
		return &RateLookupError{From: from, To: to, Err: err}
	}

	c.rate = rate
	c.manual = false
	c.version++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.recorder.RateLookup("applied")
	c.apply(snap)
	return nil
}

func (c *CurrencySync) apply(snap CurrencySnapshot) {
	if c.onApply != nil {
		c.onApply(snap)
	}
}

func (c *CurrencySync) snapshotLocked() CurrencySnapshot {
	return CurrencySnapshot{
		Base:          c.base,
		Quote:         c.quote,
		Rate:          c.rate,
		Multicurrency: c.multicurrency,
		ManualRate:    c.manual,
		State:         c.machine.State(),
		Version:       c.version,
	}
}

func (c *CurrencySync) pinnedHome() (string, string) {
	return c.home, c.home
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
