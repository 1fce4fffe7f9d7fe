package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-drafts/internal/application/dispatcher"
	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/draft"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/domain/event"
	"github.com/garyjia/procurement-drafts/internal/domain/pricing"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
	"github.com/garyjia/procurement-drafts/pkg/clock"
)

// SessionConfig holds the organization settings every session starts from.
type SessionConfig struct {
	HomeCurrency      string
	DefaultTaxRate    decimal.Decimal
	DueDays           int
	MinLines          int
	VarianceThreshold decimal.Decimal
	LookupTimeout     time.Duration
}

// DefaultSessionConfig returns THB, 7% tax, due in 7 days, one line minimum
// and a 15% variance threshold.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		HomeCurrency:      entity.DefaultHomeCurrency,
		DefaultTaxRate:    decimal.NewFromInt(7),
		DueDays:           7,
		MinLines:          draft.DefaultMinLines,
		VarianceThreshold: pricing.DefaultVarianceThreshold,
		LookupTimeout:     DefaultLookupTimeout,
	}
}

// Dependencies are the collaborators a DocumentService drives.
// MasterData, Dispatcher, Clock, Logger and Recorder are optional.
type Dependencies struct {
	Documents  port.DocumentRepository
	Workflow   port.WorkflowActions
	Rates      port.ExchangeRateProvider
	Sequencer  port.NumberSequencer
	MasterData port.MasterDataLookup
	Dispatcher dispatcher.Dispatcher
	Clock      clock.Clock
	Logger     Logger
	Recorder   Recorder
}

// DocumentService opens editing sessions for procurement documents.
type DocumentService struct {
	deps Dependencies
	cfg  SessionConfig
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(deps Dependencies, cfg SessionConfig) (*DocumentService, error) {
	if deps.Documents == nil {
		return nil, errors.New("document repository is required")
	}
	if deps.Workflow == nil {
		return nil, errors.New("workflow actions are required")
	}
	if deps.Rates == nil {
		return nil, errors.New("exchange rate provider is required")
	}
	if deps.Sequencer == nil {
		return nil, errors.New("number sequencer is required")
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = dispatcher.NewDispatcher()
	}
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if cfg.HomeCurrency == "" {
		cfg.HomeCurrency = entity.DefaultHomeCurrency
	}
	if cfg.MinLines < 1 {
		cfg.MinLines = draft.DefaultMinLines
	}
	if cfg.VarianceThreshold.IsZero() {
		cfg.VarianceThreshold = pricing.DefaultVarianceThreshold
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultLookupTimeout
	}

	return &DocumentService{deps: deps, cfg: cfg}, nil
}

// CreateNew opens a session on a blank, unsaved document of kind.
func (s *DocumentService) CreateNew(ctx context.Context, kind entity.DocumentKind, opts ...SessionOption) (*DocumentSession, error) {
	if !kind.IsValid() {
		return nil, draft.NewValidationError("kind", fmt.Sprintf("%q is not a known document type", kind))
	}

	d := draft.NewBlank(kind, s.deps.Clock.Now(), s.defaults())
	sess := s.newSession(ctx, d, opts)

	s.deps.Logger.Info("Draft created", "session_id", sess.id, "kind", kind)
	return sess, nil
}

// LoadForEdit opens a session on a stored document. When the document has
// no lines but references a source document, the source's lines are copied in.
func (s *DocumentService) LoadForEdit(ctx context.Context, id int64, opts ...SessionOption) (*DocumentSession, error) {
	rec, err := s.deps.Documents.GetByID(ctx, id)
	if err != nil {
		s.deps.Logger.Error("Failed to load document", "id", id, "error", err)
		return nil, &RepositoryError{Op: "load document", Err: err}
	}

	d := draft.FromRecord(rec, s.defaults())
	sess := s.newSession(ctx, d, opts)

	if d.SourceDocumentID != 0 && !d.State.IsTerminal() {
		if _, err := sess.CascadeFromSource(ctx); err != nil {
			s.deps.Logger.Warn("Source document lines not copied", "id", id, "source_id", d.SourceDocumentID, "error", err)
		}
	}

	sess.publish(ctx, event.TypeDocumentLoaded, nil)
	s.deps.Logger.Info("Document loaded for edit", "session_id", sess.id, "id", id, "status", d.State)
	return sess, nil
}

// OnSaved registers handler for documents saved by any session, typically a
// list view refresh. The returned func removes it.
func (s *DocumentService) OnSaved(handler func(ctx context.Context, rec *entity.DocumentRecord)) func() {
	name := s.deps.Dispatcher.Subscribe(event.TypeDocumentSaved, func(ctx context.Context, evt *event.Event) error {
		if rec, ok := evt.Payload[payloadRecord].(*entity.DocumentRecord); ok {
			handler(ctx, rec)
		}
		return nil
	})
	return func() { s.deps.Dispatcher.Unsubscribe(event.TypeDocumentSaved, name) }
}

func (s *DocumentService) defaults() draft.Defaults {
	return draft.Defaults{
		HomeCurrency: s.cfg.HomeCurrency,
		TaxRate:      s.cfg.DefaultTaxRate,
		DueDays:      s.cfg.DueDays,
		StoreOptions: []draft.StoreOption{
			draft.WithMinLines(s.cfg.MinLines),
			draft.WithVarianceThreshold(s.cfg.VarianceThreshold),
		},
	}
}

func (s *DocumentService) newSession(ctx context.Context, d *draft.Draft, opts []SessionOption) *DocumentSession {
	sess := &DocumentSession{
		id:    uuid.NewString(),
		deps:  s.deps,
		cfg:   s.cfg,
		draft: d,
		refs:  NewReferenceCache(s.deps.MasterData),
	}
	sess.lifecycle = workflow.NewLifecycleBuilder().
		OnTransition(sess.onTransition).
		Build(d.State)
	for _, opt := range opts {
		opt(sess)
	}

	d.Lines.SetVarianceSink(sess.onVariance)
	sess.currency = NewCurrencySync(s.deps.Rates, s.deps.Logger,
		d.BaseCurrency, d.QuoteCurrency, d.ExchangeRate, d.IsMulticurrency,
		WithHomeCurrency(s.cfg.HomeCurrency),
		WithLookupTimeout(s.cfg.LookupTimeout),
		WithCurrencyRecorder(s.deps.Recorder),
		WithApplyHook(sess.onCurrencyApplied),
	)
	sess.currencyVersion = sess.currency.Snapshot().Version

	if s.deps.MasterData != nil {
		if err := sess.refs.Preload(ctx); err != nil {
			s.deps.Logger.Warn("Master data preload incomplete", "session_id", sess.id, "error", err)
		}
	}
	return sess
}
