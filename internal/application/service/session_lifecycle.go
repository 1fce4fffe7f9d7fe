package service

import (
	"context"
	"strings"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/draft"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/domain/event"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
)

// SaveMode selects the status a save lands in.
type SaveMode string

const (
	// SaveModeHold keeps the document in DRAFT with relaxed validation.
	SaveModeHold SaveMode = "hold"
	// SaveModeSubmit saves straight to PENDING and requires every field.
	SaveModeSubmit SaveMode = "submit"
)

func (m SaveMode) params() (workflow.Trigger, entity.DocumentStatus, bool) {
	if m == SaveModeSubmit {
		return workflow.TriggerSaveSubmit, entity.StatusPending, true
	}
	return workflow.TriggerSaveDraft, entity.StatusDraft, false
}

// Validate runs the submission checks and reports every missing field at once.
func (s *DocumentSession) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Validate(true)
}

// Save persists the draft in one repository call. New documents get their
// number from the sequencer first; a sequencer failure aborts the save. On
// success the session is closed and OnSaved listeners are notified. On any
// failure the draft is left as it was and Save may be retried.
func (s *DocumentSession) Save(ctx context.Context, mode SaveMode) (*entity.DocumentRecord, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	trigger, status, strict := mode.params()
	kind := string(s.Kind())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if !s.lifecycle.CanFire(trigger) {
		state := s.lifecycle.State()
		s.mu.Unlock()
		s.deps.Recorder.Save(kind, string(mode), "invalid_state")
		return nil, &draft.InvalidStateError{Action: "save", State: state}
	}
	if err := s.draft.Validate(strict); err != nil {
		s.mu.Unlock()
		s.deps.Recorder.Save(kind, string(mode), "invalid")
		return nil, err
	}
	mismatches := s.draft.VendorMismatches()
	payload := s.draft.ToPayload(status)
	id := s.draft.ID
	needsNumber := s.draft.IsNew() && s.draft.HasPlaceholderNumber()
	s.mu.Unlock()

	if len(mismatches) > 0 {
		s.deps.Logger.Warn("Line vendor differs from header vendor", "session_id", s.id, "lines", mismatches)
		if s.confirm != nil && !s.confirm(ctx, mismatches) {
			s.deps.Recorder.Save(kind, string(mode), "aborted")
			return nil, ErrSaveAborted
		}
	}

	if needsNumber {
		number, err := s.deps.Sequencer.NextNumber(ctx, payload.Kind)
		if err != nil {
			s.deps.Logger.Error("Failed to assign document number", "session_id", s.id, "kind", kind, "error", err)
			s.deps.Recorder.Save(kind, string(mode), "error")
			return nil, &RepositoryError{Op: "assign document number", Err: err}
		}
		payload.DocNo = number
	}

	var (
		rec *entity.DocumentRecord
		err error
	)
	if id == 0 {
		rec, err = s.deps.Documents.Create(ctx, payload)
	} else {
		rec, err = s.deps.Documents.Update(ctx, id, payload)
	}
	if err != nil {
		s.deps.Logger.Error("Failed to save document", "session_id", s.id, "id", id, "error", err)
		s.deps.Recorder.Save(kind, string(mode), "error")
		return nil, &RepositoryError{Op: "save document", Err: err}
	}

	s.mu.Lock()
	from := s.lifecycle.State()
	if err := s.lifecycle.Fire(ctx, trigger); err != nil {
		s.mu.Unlock()
		return nil, &draft.InvalidStateError{Action: "save", State: from}
	}
	s.draft.ID = rec.ID
	s.draft.DocumentNumber = rec.DocNo
	if rec.DocNo == "" {
		s.draft.DocumentNumber = payload.DocNo
	}
	s.draft.State = s.lifecycle.State()
	s.mu.Unlock()

	s.deps.Recorder.Save(kind, string(mode), "ok")
	s.deps.Logger.Info("Document saved", "session_id", s.id, "id", rec.ID, "doc_no", rec.DocNo, "status", rec.Status)

	s.publish(ctx, event.TypeDocumentSaved, map[string]interface{}{
		payloadRecord:      rec,
		event.KeyFromState: string(from),
		event.KeyToState:   string(s.State()),
	})
	s.Close()
	return rec, nil
}

// SubmitForApproval moves a saved DRAFT to PENDING after strict validation.
func (s *DocumentSession) SubmitForApproval(ctx context.Context) error {
	return s.transition(ctx, entity.ActionSubmit, workflow.TriggerSubmit, "", func(ctx context.Context, id int64) (*entity.ActionResult, error) {
		return s.deps.Workflow.Submit(ctx, id)
	})
}

// Approve approves a PENDING document. remark is optional.
func (s *DocumentSession) Approve(ctx context.Context, remark string) error {
	return s.transition(ctx, entity.ActionApprove, workflow.TriggerApprove, "", func(ctx context.Context, id int64) (*entity.ActionResult, error) {
		return s.deps.Workflow.Approve(ctx, id, remark)
	})
}

// Reject rejects a PENDING document. reason is required.
func (s *DocumentSession) Reject(ctx context.Context, reason string) error {
	return s.transition(ctx, entity.ActionReject, workflow.TriggerReject, reason, func(ctx context.Context, id int64) (*entity.ActionResult, error) {
		return s.deps.Workflow.Reject(ctx, id, reason)
	})
}

// Cancel voids a DRAFT or PENDING document. reason is required.
func (s *DocumentSession) Cancel(ctx context.Context, reason string) error {
	return s.transition(ctx, entity.ActionCancel, workflow.TriggerCancel, reason, func(ctx context.Context, id int64) (*entity.ActionResult, error) {
		return s.deps.Workflow.Cancel(ctx, id, reason)
	})
}

// Delete removes a saved DRAFT and closes the session.
func (s *DocumentSession) Delete(ctx context.Context) error {
	err := s.transition(ctx, entity.ActionDelete, workflow.TriggerDelete, "", func(ctx context.Context, id int64) (*entity.ActionResult, error) {
		deleted, err := s.deps.Documents.Delete(ctx, id)
		if err != nil {
			return nil, err
		}
		if !deleted {
			return nil, port.ErrNotFound
		}
		return &entity.ActionResult{Success: true}, nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, event.TypeDocumentDeleted, nil)
	s.Close()
	return nil
}

type actionCall func(ctx context.Context, id int64) (*entity.ActionResult, error)

// transition checks the precondition on the lifecycle machine, calls the
// collaborator and only then moves the local state. reason, when the action
// requires one, must be non-blank.
func (s *DocumentSession) transition(ctx context.Context, action string, trigger workflow.Trigger, reason string, call actionCall) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	label := strings.ToLower(action)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	state := s.lifecycle.State()
	if !s.lifecycle.CanFire(trigger) || s.draft.IsNew() {
		s.mu.Unlock()
		return &draft.InvalidStateError{Action: label, State: state}
	}
	if trigger == workflow.TriggerReject || trigger == workflow.TriggerCancel {
		if strings.TrimSpace(reason) == "" {
			s.mu.Unlock()
			return draft.NewValidationError("reason", "is required to "+label)
		}
	}
	if trigger == workflow.TriggerSubmit {
		if err := s.draft.Validate(true); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	id := s.draft.ID
	s.mu.Unlock()

	res, err := call(ctx, id)
	if err != nil {
		s.deps.Logger.Error("Workflow action failed", "session_id", s.id, "action", action, "id", id, "error", err)
		return &RepositoryError{Op: label + " document", Err: err}
	}
	if res == nil || !res.Success {
		msg := "refused by server"
		if res != nil && res.Message != "" {
			msg = res.Message
		}
		s.deps.Logger.Warn("Workflow action refused", "session_id", s.id, "action", action, "id", id, "message", msg)
		return &RepositoryError{Op: label + " document", Message: msg}
	}

	s.mu.Lock()
	if err := s.lifecycle.Fire(ctx, trigger); err != nil {
		s.mu.Unlock()
		return &draft.InvalidStateError{Action: label, State: state}
	}
	to := s.lifecycle.State()
	s.draft.State = to
	s.mu.Unlock()

	s.deps.Logger.Info("Document status changed", "session_id", s.id, "id", id, "from", state, "to", to)
	s.publish(ctx, event.TypeStatusChanged, map[string]interface{}{
		event.KeyFromState: string(state),
		event.KeyToState:   string(to),
		event.KeyMessage:   res.Message,
	})
	return nil
}

// onTransition runs inside Fire with s.mu held.
func (s *DocumentSession) onTransition(ctx context.Context, t workflow.Transition) {
	s.deps.Recorder.Transition(string(s.draft.Kind), string(t.From), string(t.To))
}
