package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/garyjia/procurement-drafts/internal/application/dispatcher"
	"github.com/garyjia/procurement-drafts/internal/domain/draft"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/domain/event"
	"github.com/garyjia/procurement-drafts/internal/domain/pricing"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
)

const (
	payloadRecord = "record"
	fieldLines    = "lines"
	fieldSource   = "sourceDocument"
)

// ConfirmFunc is asked whether to save although the listed lines name a
// vendor other than the header vendor. Returning false aborts the save.
type ConfirmFunc func(ctx context.Context, mismatchedLines []int) bool

// SessionOption configures a DocumentSession.
type SessionOption func(*DocumentSession)

// WithConfirmer sets the vendor mismatch prompt. Without one, saves proceed.
func WithConfirmer(fn ConfirmFunc) SessionOption {
	return func(s *DocumentSession) {
		s.confirm = fn
	}
}

type subscription struct {
	eventType event.Type
	name      string
}

// DocumentSession owns one draft for the duration of an edit. It is safe for
// concurrent use. Subscribers are notified after the session lock is
// released, so callbacks may call back into the session.
type DocumentSession struct {
	id      string
	deps    Dependencies
	cfg     SessionConfig
	confirm ConfirmFunc

	mu              sync.Mutex
	draft           *draft.Draft
	lifecycle       workflow.StateMachine
	currency        *CurrencySync
	currencyVersion uint64
	refs            *ReferenceCache
	pending         []*event.Event
	closed          bool

	busy atomic.Bool

	subsMu sync.Mutex
	subs   []subscription
}

// ID returns the session identifier carried by every event it raises.
func (s *DocumentSession) ID() string {
	return s.id
}

// DocumentID returns the persisted id, 0 while the document is new.
func (s *DocumentSession) DocumentID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.ID
}

// Kind returns the document type being edited.
func (s *DocumentSession) Kind() entity.DocumentKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Kind
}

// State returns the lifecycle state.
func (s *DocumentSession) State() workflow.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.State()
}

// Totals returns the current document totals.
func (s *DocumentSession) Totals() pricing.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Totals
}

// Lines returns copies of every line, empty ones included.
func (s *DocumentSession) Lines() []draft.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Lines.Lines()
}

// Currency returns the state of the currency controller.
func (s *DocumentSession) Currency() CurrencySnapshot {
	return s.currency.Snapshot()
}

// MasterData returns the cached reference list of kind.
func (s *DocumentSession) MasterData(ctx context.Context, kind entity.ReferenceKind) ([]entity.ReferenceItem, error) {
	return s.refs.List(ctx, kind)
}

// Closed reports whether the session stopped accepting changes.
func (s *DocumentSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// GetField returns a header field value.
func (s *DocumentSession) GetField(field string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Get(field)
}

// SetField assigns a header field. Currency fields are routed through the
// currency controller and may trigger a rate lookup; discount and tax rate
// changes recompute the totals.
func (s *DocumentSession) SetField(ctx context.Context, field string, value interface{}) error {
	switch field {
	case draft.FieldBaseCurrency, draft.FieldQuoteCurrency, draft.FieldExchangeRate, draft.FieldMulticurrency:
		return s.setCurrencyField(ctx, field, value)
	}

	s.mu.Lock()
	if err := s.checkEditableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	old, err := s.draft.Get(field)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.draft.Set(field, value); err != nil {
		s.mu.Unlock()
		return err
	}
	current, _ := s.draft.Get(field)
	s.queueLocked(s.fieldEvent(field, current, old))
	if field == draft.FieldDiscount || field == draft.FieldTaxRate {
		s.recalculateLocked()
	}
	events := s.drainLocked()
	s.mu.Unlock()

	s.emit(ctx, events)
	return nil
}

func (s *DocumentSession) setCurrencyField(ctx context.Context, field string, value interface{}) error {
	if err := s.checkEditable(); err != nil {
		return err
	}

	var err error
	switch field {
	case draft.FieldMulticurrency:
		on, ok := value.(bool)
		if !ok {
			return draft.NewValidationError(field, fmt.Sprintf("expects a bool, got %T", value))
		}
		err = s.currency.SetMulticurrency(ctx, on)
	case draft.FieldExchangeRate:
		rate, convErr := draft.ToDecimal(value)
		if convErr != nil {
			return draft.NewValidationError(field, convErr.Error())
		}
		err = s.currency.SetRateManually(rate)
	default:
		code, convErr := draft.ToString(value)
		if convErr != nil {
			return draft.NewValidationError(field, convErr.Error())
		}
		snap := s.currency.Snapshot()
		base, quote := snap.Base, snap.Quote
		if field == draft.FieldBaseCurrency {
			base = code
		} else {
			quote = code
		}
		err = s.currency.SetCurrencies(ctx, base, quote)
	}

	var lookupErr *RateLookupError
	if errors.As(err, &lookupErr) {
		s.emit(ctx, []*event.Event{event.NewEvent(event.TypeRateLookupFailed, s.id, s.DocumentID(), map[string]interface{}{
			event.KeyMessage: UserMessage(err),
		})})
	}
	return err
}

// RefreshRate re-fetches the exchange rate unless it was entered by hand.
func (s *DocumentSession) RefreshRate(ctx context.Context) error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	return s.currency.Refresh(ctx)
}

// onCurrencyApplied copies an applied currency snapshot into the draft.
func (s *DocumentSession) onCurrencyApplied(snap CurrencySnapshot) {
	s.mu.Lock()
	if s.closed || snap.Version <= s.currencyVersion {
		s.mu.Unlock()
		return
	}
	s.currencyVersion = snap.Version

	d := s.draft
	if d.BaseCurrency != snap.Base {
		s.queueLocked(s.fieldEvent(draft.FieldBaseCurrency, snap.Base, d.BaseCurrency))
		d.BaseCurrency = snap.Base
	}
	if d.QuoteCurrency != snap.Quote {
		s.queueLocked(s.fieldEvent(draft.FieldQuoteCurrency, snap.Quote, d.QuoteCurrency))
		d.QuoteCurrency = snap.Quote
	}
	if d.IsMulticurrency != snap.Multicurrency {
		s.queueLocked(s.fieldEvent(draft.FieldMulticurrency, snap.Multicurrency, d.IsMulticurrency))
		d.IsMulticurrency = snap.Multicurrency
	}
	if !d.ExchangeRate.Equal(snap.Rate) {
		s.queueLocked(s.fieldEvent(draft.FieldExchangeRate, snap.Rate, d.ExchangeRate))
		s.queueLocked(event.NewEvent(event.TypeRateApplied, s.id, d.ID, map[string]interface{}{
			event.KeyValue: snap.Rate,
			"from":         snap.Base,
			"to":           snap.Quote,
			"manual":       snap.ManualRate,
		}))
		d.ExchangeRate = snap.Rate
	}
	s.recalculateLocked()
	events := s.drainLocked()
	s.mu.Unlock()

	s.emit(context.Background(), events)
}

// Subscribe calls cb with the new value each time field changes in this
// session. Use draft.FieldTotals to follow recalculated totals.
func (s *DocumentSession) Subscribe(field string, cb func(value interface{})) func() {
	eventType := event.TypeFieldChanged
	if field == draft.FieldTotals {
		eventType = event.TypeTotalsRecalculated
	}
	handler := dispatcher.FieldFilter(field, func(ctx context.Context, evt *event.Event) error {
		if evt.SessionID == s.id {
			cb(evt.Payload[event.KeyValue])
		}
		return nil
	})
	return s.subscribe(eventType, handler)
}

// SubscribeVariance calls cb for every price variance warning raised in this session.
func (s *DocumentSession) SubscribeVariance(cb func(line int, warning pricing.VarianceWarning)) func() {
	return s.subscribe(event.TypeVarianceWarning, func(ctx context.Context, evt *event.Event) error {
		if evt.SessionID != s.id {
			return nil
		}
		if w, ok := evt.Payload[event.KeyValue].(pricing.VarianceWarning); ok {
			cb(int(evt.GetPayloadInt(event.KeyLine)), w)
		}
		return nil
	})
}

func (s *DocumentSession) subscribe(eventType event.Type, handler dispatcher.Handler) func() {
	name := s.deps.Dispatcher.Subscribe(eventType, handler)

	s.subsMu.Lock()
	s.subs = append(s.subs, subscription{eventType: eventType, name: name})
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.deps.Dispatcher.Unsubscribe(eventType, name) })
	}
}

// AddLine appends an empty line.
func (s *DocumentSession) AddLine(ctx context.Context) error {
	return s.mutateLines(ctx, -1, func(st *draft.Store) error {
		st.Append()
		return nil
	})
}

// RemoveLine deletes the line at index; the store never drops below its minimum.
func (s *DocumentSession) RemoveLine(ctx context.Context, index int) error {
	return s.mutateLines(ctx, index, func(st *draft.Store) error {
		return st.RemoveAt(index)
	})
}

// ClearLine empties the line at index in place.
func (s *DocumentSession) ClearLine(ctx context.Context, index int) error {
	return s.mutateLines(ctx, index, func(st *draft.Store) error {
		return st.ClearAt(index)
	})
}

// UpdateLine sets one field of one line and recomputes amounts and totals.
func (s *DocumentSession) UpdateLine(ctx context.Context, index int, field string, value interface{}) error {
	return s.mutateLines(ctx, index, func(st *draft.Store) error {
		return st.UpdateField(index, field, value)
	})
}

// ReplaceLines swaps the whole line set.
func (s *DocumentSession) ReplaceLines(ctx context.Context, lines []draft.LineItem) error {
	return s.mutateLines(ctx, -1, func(st *draft.Store) error {
		st.ReplaceAll(lines)
		return nil
	})
}

// SelectItem fills a line from the item catalog: item id, description, unit
// of measure and a standard cost snapshot. A zero unit price is seeded from
// the standard cost.
func (s *DocumentSession) SelectItem(ctx context.Context, index int, itemID string) error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	item, err := s.refs.Get(ctx, entity.RefItem, itemID)
	if err != nil {
		return &RepositoryError{Op: "load item", Err: err}
	}
	if item == nil {
		return draft.NewValidationError(fmt.Sprintf("lines[%d].%s", index, draft.LineFieldItem), fmt.Sprintf("%q is not a known item", itemID))
	}

	return s.mutateLines(ctx, index, func(st *draft.Store) error {
		line, ok := st.At(index)
		if !ok {
			return draft.NewValidationError(fieldLines, fmt.Sprintf("index %d out of range [0,%d)", index, st.Len()))
		}
		if err := st.UpdateField(index, draft.LineFieldItem, item.ID); err != nil {
			return err
		}
		if line.Description == "" {
			if err := st.UpdateField(index, draft.LineFieldDescription, item.Name); err != nil {
				return err
			}
		}
		if item.UOM != "" {
			if err := st.UpdateField(index, draft.LineFieldUOM, item.UOM); err != nil {
				return err
			}
		}
		if item.StandardCost == nil {
			return st.UpdateField(index, draft.LineFieldStandardCost, nil)
		}
		if line.UnitPrice.IsZero() {
			if err := st.UpdateField(index, draft.LineFieldUnitPrice, *item.StandardCost); err != nil {
				return err
			}
		}
		return st.UpdateField(index, draft.LineFieldStandardCost, *item.StandardCost)
	})
}

func (s *DocumentSession) mutateLines(ctx context.Context, index int, fn func(*draft.Store) error) error {
	s.mu.Lock()
	if err := s.checkEditableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	before := s.draft.Lines.Lines()
	if err := fn(s.draft.Lines); err != nil {
		s.draft.Lines.ReplaceAll(before)
		s.pending = nil
		s.mu.Unlock()
		return err
	}
	s.queueLocked(event.NewEvent(event.TypeFieldChanged, s.id, s.draft.ID, map[string]interface{}{
		event.KeyField: fieldLines,
		event.KeyValue: s.draft.Lines.Len(),
		event.KeyLine:  index,
	}))
	s.recalculateLocked()
	events := s.drainLocked()
	s.mu.Unlock()

	s.emit(ctx, events)
	return nil
}

// SetSourceDocument links the draft to the upstream document (the PR of an
// RFQ, and so on) and copies its lines while the draft has none.
func (s *DocumentSession) SetSourceDocument(ctx context.Context, sourceID int64) (bool, error) {
	s.mu.Lock()
	if err := s.checkEditableLocked(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	old := s.draft.SourceDocumentID
	s.draft.SourceDocumentID = sourceID
	s.queueLocked(s.fieldEvent(fieldSource, sourceID, old))
	events := s.drainLocked()
	s.mu.Unlock()
	s.emit(ctx, events)

	if sourceID == 0 {
		return false, nil
	}
	return s.CascadeFromSource(ctx)
}

// CascadeFromSource copies the source document's lines into the draft. It
// does nothing unless every current line is empty, checked both before the
// fetch and again when it returns, so in-progress edits are never replaced.
func (s *DocumentSession) CascadeFromSource(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if err := s.checkEditableLocked(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	sourceID := s.draft.SourceDocumentID
	kind := s.draft.Kind
	if sourceID == 0 || !s.draft.Lines.AllEmpty() {
		s.mu.Unlock()
		return false, nil
	}
	s.mu.Unlock()

	src, err := s.deps.Documents.GetByID(ctx, sourceID)
	if err != nil {
		return false, &RepositoryError{Op: "load source document", Err: err}
	}
	if want, ok := kind.SourceKind(); ok && src.Kind != want {
		return false, draft.NewValidationError(fieldSource, fmt.Sprintf("must be a %s, got %s", want, src.Kind))
	}

	s.mu.Lock()
	if s.closed || s.draft.SourceDocumentID != sourceID || !s.draft.Lines.AllEmpty() {
		s.mu.Unlock()
		s.deps.Logger.Info("Source lines discarded, draft changed meanwhile", "session_id", s.id, "source_id", sourceID)
		return false, nil
	}
	s.draft.Lines.ReplaceAll(draft.LinesFromRecord(src.Items))
	s.queueLocked(event.NewEvent(event.TypeFieldChanged, s.id, s.draft.ID, map[string]interface{}{
		event.KeyField: fieldLines,
		event.KeyValue: s.draft.Lines.Len(),
		event.KeyLine:  -1,
	}))
	s.recalculateLocked()
	events := s.drainLocked()
	s.mu.Unlock()

	s.emit(ctx, events)
	s.deps.Logger.Info("Copied lines from source document", "session_id", s.id, "source_id", sourceID, "lines", len(src.Items))
	return true, nil
}

// Close ends the session. Later mutations fail with ErrSessionClosed and
// rate lookups still in flight are discarded.
func (s *DocumentSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = nil
	s.mu.Unlock()

	s.currency.Close()

	s.subsMu.Lock()
	subs := s.subs
	s.subs = nil
	s.subsMu.Unlock()
	for _, sub := range subs {
		s.deps.Dispatcher.Unsubscribe(sub.eventType, sub.name)
	}
}

func (s *DocumentSession) checkEditable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkEditableLocked()
}

func (s *DocumentSession) checkEditableLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.busy.Load() {
		return ErrBusy
	}
	if state := s.lifecycle.State(); state.IsTerminal() {
		return &draft.InvalidStateError{Action: "edit", State: state}
	}
	return nil
}

func (s *DocumentSession) onVariance(index int, w pricing.VarianceWarning) {
	s.queueLocked(event.NewEvent(event.TypeVarianceWarning, s.id, s.draft.ID, map[string]interface{}{
		event.KeyLine:    index,
		event.KeyValue:   w,
		event.KeyMessage: w.String(),
	}))
}

func (s *DocumentSession) recalculateLocked() {
	totals := s.draft.Recalculate()
	s.queueLocked(event.NewEvent(event.TypeTotalsRecalculated, s.id, s.draft.ID, map[string]interface{}{
		event.KeyField: draft.FieldTotals,
		event.KeyValue: totals,
	}))
}

func (s *DocumentSession) fieldEvent(field string, value, old interface{}) *event.Event {
	return event.NewEvent(event.TypeFieldChanged, s.id, s.draft.ID, map[string]interface{}{
		event.KeyField:    field,
		event.KeyValue:    value,
		event.KeyOldValue: old,
	})
}

func (s *DocumentSession) queueLocked(evt *event.Event) {
	s.pending = append(s.pending, evt)
}

func (s *DocumentSession) drainLocked() []*event.Event {
	events := s.pending
	s.pending = nil
	return events
}

// emit delivers events synchronously in order. Handler errors are logged
// and never fail the mutation that raised them.
func (s *DocumentSession) emit(ctx context.Context, events []*event.Event) {
	for _, evt := range events {
		if err := s.deps.Dispatcher.Dispatch(ctx, evt); err != nil && !errors.Is(err, dispatcher.ErrClosed) {
			s.deps.Logger.Warn("Event handler failed", "session_id", s.id, "event", evt.Type, "error", err)
		}
	}
}

// publish sends a lifecycle notification without waiting for handlers.
func (s *DocumentSession) publish(ctx context.Context, eventType event.Type, payload map[string]interface{}) {
	s.deps.Dispatcher.DispatchAsync(context.WithoutCancel(ctx), event.NewEvent(eventType, s.id, s.DocumentID(), payload))
}
