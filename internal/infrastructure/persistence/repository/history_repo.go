package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/procurement-drafts/pkg/clock"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sqlite.DB
	clock  clock.Clock
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sqlite.DB, clk clock.Clock, logger *zap.Logger) *HistoryRepository {
	if clk == nil {
		clk = clock.System()
	}
	return &HistoryRepository{
		db:     db,
		clock:  clk,
		logger: logger,
	}
}

// Create appends a history row. It joins the caller's transaction when ctx carries one.
func (r *HistoryRepository) Create(ctx context.Context, h *entity.DocumentHistory) error {
	if h.Timestamp.IsZero() {
		h.Timestamp = r.clock.Now()
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, `
		INSERT INTO document_history (
			document_id, action, previous_status, new_status, reason, timestamp
		) VALUES (?, ?, ?, ?, ?, ?)
	`,
		h.DocumentID,
		h.Action,
		h.PreviousStatus,
		h.NewStatus,
		h.Reason,
		h.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.Int64("document_id", h.DocumentID), zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	h.ID = id
	return nil
}

// GetByDocumentID returns a document's history, oldest first.
func (r *HistoryRepository) GetByDocumentID(ctx context.Context, documentID int64) ([]*entity.DocumentHistory, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT id, document_id, action, previous_status, new_status, reason, timestamp
		FROM document_history
		WHERE document_id = ?
		ORDER BY id ASC
	`, documentID)
	if err != nil {
		r.logger.Error("Failed to get history by document ID", zap.Int64("document_id", documentID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var records []*entity.DocumentHistory
	for rows.Next() {
		var record entity.DocumentHistory
		err := rows.Scan(
			&record.ID,
			&record.DocumentID,
			&record.Action,
			&record.PreviousStatus,
			&record.NewStatus,
			&record.Reason,
			&record.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

var _ port.HistoryRepository = (*HistoryRepository)(nil)
