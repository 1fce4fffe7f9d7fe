// Package memory holds map-backed implementations of the persistence ports
// for tests and for running the server without a database file.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
	"github.com/garyjia/procurement-drafts/pkg/clock"
)

// Documents implements port.DocumentRepository and port.WorkflowActions over
// a map, with the same status rules as the sqlite repositories.
type Documents struct {
	mu      sync.RWMutex
	clock   clock.Clock
	nextID  int64
	docs    map[int64]*entity.DocumentRecord
	history []*entity.DocumentHistory
}

// NewDocuments creates an empty store.
func NewDocuments(clk clock.Clock) *Documents {
	if clk == nil {
		clk = clock.System()
	}
	return &Documents{clock: clk, docs: make(map[int64]*entity.DocumentRecord)}
}

func (s *Documents) GetByID(ctx context.Context, id int64) (*entity.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %d: %w", id, port.ErrNotFound)
	}
	return cloneRecord(rec), nil
}

func (s *Documents) Create(ctx context.Context, payload *entity.DocumentPayload) (*entity.DocumentRecord, error) {
	if payload == nil {
		return nil, errors.New("payload is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.docs {
		if d.Kind == payload.Kind && d.DocNo != "" && d.DocNo == payload.DocNo {
			return nil, fmt.Errorf("document number %s already exists: %w", payload.DocNo, port.ErrConflict)
		}
	}

	status := payload.Status
	if status == "" {
		status = entity.StatusDraft
	}
	if !workflow.CanSaveAs(workflow.StateNew, workflow.State(status)) {
		return nil, fmt.Errorf("a new document cannot be created as %s: %w", status, port.ErrConflict)
	}

	s.nextID++
	now := s.clock.Now()
	rec := &entity.DocumentRecord{
		ID:             s.nextID,
		DocumentHeader: payload.DocumentHeader,
		Items:          numberLines(payload.Items),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	rec.Status = status
	s.docs[rec.ID] = rec
	s.record(rec.ID, entity.ActionCreate, "", rec.Status, "")
	return cloneRecord(rec), nil
}

func (s *Documents) Update(ctx context.Context, id int64, payload *entity.DocumentPayload) (*entity.DocumentRecord, error) {
	if payload == nil {
		return nil, errors.New("payload is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %d: %w", id, port.ErrNotFound)
	}
	if rec.Status != entity.StatusDraft && rec.Status != entity.StatusPending {
		return nil, fmt.Errorf("document %d is %s: %w", id, rec.Status, port.ErrConflict)
	}

	previous := rec.Status
	status := payload.Status
	if status == "" {
		status = previous
	}
	if !workflow.CanSaveAs(workflow.State(previous), workflow.State(status)) {
		return nil, fmt.Errorf("document %d cannot be saved from %s as %s: %w", id, previous, status, port.ErrConflict)
	}

	docNo := rec.DocNo
	rec.DocumentHeader = payload.DocumentHeader
	if rec.DocNo == "" {
		rec.DocNo = docNo
	}
	rec.Status = status
	rec.Items = numberLines(payload.Items)
	rec.UpdatedAt = s.clock.Now()
	s.record(id, entity.ActionUpdate, previous, rec.Status, "")
	return cloneRecord(rec), nil
}

func (s *Documents) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.docs[id]
	if !ok {
		return false, nil
	}
	if rec.Status != entity.StatusDraft {
		return false, fmt.Errorf("document %d is %s: %w", id, rec.Status, port.ErrConflict)
	}
	delete(s.docs, id)
	s.record(id, entity.ActionDelete, rec.Status, entity.DocumentStatus(workflow.StateDeleted), "")
	return true, nil
}

func (s *Documents) List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.DocumentRecord
	for _, rec := range s.docs {
		if filter.Kind != "" && rec.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Documents) Submit(ctx context.Context, id int64) (*entity.ActionResult, error) {
	return s.transition(ctx, id, entity.ActionSubmit, workflow.TriggerSubmit, "")
}

func (s *Documents) Approve(ctx context.Context, id int64, remark string) (*entity.ActionResult, error) {
	return s.transition(ctx, id, entity.ActionApprove, workflow.TriggerApprove, remark)
}

func (s *Documents) Reject(ctx context.Context, id int64, reason string) (*entity.ActionResult, error) {
	return s.transition(ctx, id, entity.ActionReject, workflow.TriggerReject, reason)
}

func (s *Documents) Cancel(ctx context.Context, id int64, reason string) (*entity.ActionResult, error) {
	return s.transition(ctx, id, entity.ActionCancel, workflow.TriggerCancel, reason)
}

func (s *Documents) transition(ctx context.Context, id int64, action string, trigger workflow.Trigger, reason string) (*entity.ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %d: %w", id, port.ErrNotFound)
	}
	machine := workflow.NewLifecycle(workflow.State(rec.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return &entity.ActionResult{
			Message: fmt.Sprintf("cannot %s a %s document", strings.ToLower(action), rec.Status),
			Status:  rec.Status,
		}, nil
	}
	previous := rec.Status
	rec.Status = entity.DocumentStatus(machine.State())
	rec.UpdatedAt = s.clock.Now()
	s.record(id, action, previous, rec.Status, reason)
	return &entity.ActionResult{Success: true, Status: rec.Status}, nil
}

// record must be called with s.mu held.
func (s *Documents) record(id int64, action string, from, to entity.DocumentStatus, reason string) {
	s.history = append(s.history, &entity.DocumentHistory{
		ID:             int64(len(s.history) + 1),
		DocumentID:     id,
		Action:         action,
		PreviousStatus: from,
		NewStatus:      to,
		Reason:         reason,
		Timestamp:      s.clock.Now(),
	})
}

// History exposes the audit trail as a port.HistoryRepository.
func (s *Documents) History() port.HistoryRepository {
	return historyView{s}
}

type historyView struct{ s *Documents }

func (h historyView) Create(ctx context.Context, row *entity.DocumentHistory) error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.record(row.DocumentID, row.Action, row.PreviousStatus, row.NewStatus, row.Reason)
	row.ID = int64(len(h.s.history))
	return nil
}

func (h historyView) GetByDocumentID(ctx context.Context, documentID int64) ([]*entity.DocumentHistory, error) {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	var out []*entity.DocumentHistory
	for _, row := range h.s.history {
		if row.DocumentID == documentID {
			c := *row
			out = append(out, &c)
		}
	}
	return out, nil
}

func numberLines(lines []entity.RecordLine) []entity.RecordLine {
	out := make([]entity.RecordLine, len(lines))
	copy(out, lines)
	for i := range out {
		if out[i].LineNo == 0 {
			out[i].LineNo = i + 1
		}
	}
	return out
}

func cloneRecord(rec *entity.DocumentRecord) *entity.DocumentRecord {
	c := *rec
	c.Items = append([]entity.RecordLine(nil), rec.Items...)
	return &c
}

var (
	_ port.DocumentRepository = (*Documents)(nil)
	_ port.WorkflowActions    = (*Documents)(nil)
)
