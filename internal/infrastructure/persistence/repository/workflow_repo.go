package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/procurement-drafts/pkg/clock"
)

// WorkflowRepository runs status transitions against the documents table.
// Transitions are checked on the same lifecycle machine the editing session
// uses, so a refused transition comes back as ActionResult{Success: false}.
type WorkflowRepository struct {
	db      *sqlite.DB
	history port.HistoryRepository
	clock   clock.Clock
	logger  *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *sqlite.DB, history port.HistoryRepository, clk clock.Clock, logger *zap.Logger) *WorkflowRepository {
	if clk == nil {
		clk = clock.System()
	}
	return &WorkflowRepository{db: db, history: history, clock: clk, logger: logger}
}

func (r *WorkflowRepository) Submit(ctx context.Context, id int64) (*entity.ActionResult, error) {
	return r.transition(ctx, id, entity.ActionSubmit, workflow.TriggerSubmit, "")
}

func (r *WorkflowRepository) Approve(ctx context.Context, id int64, remark string) (*entity.ActionResult, error) {
	return r.transition(ctx, id, entity.ActionApprove, workflow.TriggerApprove, remark)
}

func (r *WorkflowRepository) Reject(ctx context.Context, id int64, reason string) (*entity.ActionResult, error) {
	return r.transition(ctx, id, entity.ActionReject, workflow.TriggerReject, reason)
}

func (r *WorkflowRepository) Cancel(ctx context.Context, id int64, reason string) (*entity.ActionResult, error) {
	return r.transition(ctx, id, entity.ActionCancel, workflow.TriggerCancel, reason)
}

func (r *WorkflowRepository) transition(ctx context.Context, id int64, action string, trigger workflow.Trigger, reason string) (*entity.ActionResult, error) {
	var result *entity.ActionResult

	err := r.db.WithTransaction(ctx, func(ctx context.Context) error {
		var current entity.DocumentStatus
		err := r.db.Executor(ctx).QueryRowContext(ctx, `SELECT status FROM documents WHERE id = ?`, id).Scan(&current)
		if err != nil {
			if isNoRows(err) {
				return fmt.Errorf("document %d: %w", id, port.ErrNotFound)
			}
			return fmt.Errorf("failed to read document status: %w", err)
		}

		machine := workflow.NewLifecycle(workflow.State(current))
		if err := machine.Fire(ctx, trigger); err != nil {
			result = &entity.ActionResult{
				Success: false,
				Message: fmt.Sprintf("cannot %s a %s document", strings.ToLower(action), current),
				Status:  current,
			}
			return nil
		}
		next := entity.DocumentStatus(machine.State())

		if _, err := r.db.Executor(ctx).ExecContext(ctx,
			`UPDATE documents SET status = ?, updated_at = ? WHERE id = ?`, next, r.clock.Now(), id); err != nil {
			return fmt.Errorf("failed to update document status: %w", err)
		}
		if err := r.history.Create(ctx, &entity.DocumentHistory{
			DocumentID:     id,
			Action:         action,
			PreviousStatus: current,
			NewStatus:      next,
			Reason:         reason,
		}); err != nil {
			return err
		}
		result = &entity.ActionResult{Success: true, Status: next}
		return nil
	})
	if err != nil {
		r.logger.Error("Workflow transition failed", zap.Int64("id", id), zap.String("action", action), zap.Error(err))
		return nil, err
	}

	if result.Success {
		r.logger.Info("Document status changed", zap.Int64("id", id), zap.String("action", action), zap.String("status", string(result.Status)))
	} else {
		r.logger.Warn("Workflow transition refused", zap.Int64("id", id), zap.String("action", action), zap.String("status", string(result.Status)))
	}
	return result, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

var _ port.WorkflowActions = (*WorkflowRepository)(nil)
