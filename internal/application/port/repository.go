package port

import (
	"context"
	"errors"

	"github.com/garyjia/procurement-drafts/internal/domain/entity"
)

var (
	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the stored status forbids the write.
	ErrConflict = errors.New("conflict")
)

// DocumentRepository persists procurement documents. Writes are last-write-wins;
// no version check is performed on Update.
type DocumentRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.DocumentRecord, error)
	Create(ctx context.Context, payload *entity.DocumentPayload) (*entity.DocumentRecord, error)
	Update(ctx context.Context, id int64, payload *entity.DocumentPayload) (*entity.DocumentRecord, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.DocumentRecord, error)
}

// WorkflowActions drives server-side status transitions. A refused
// transition is reported through ActionResult.Success, not an error.
type WorkflowActions interface {
	Submit(ctx context.Context, id int64) (*entity.ActionResult, error)
	Approve(ctx context.Context, id int64, remark string) (*entity.ActionResult, error)
	Reject(ctx context.Context, id int64, reason string) (*entity.ActionResult, error)
	Cancel(ctx context.Context, id int64, reason string) (*entity.ActionResult, error)
}

// HistoryRepository stores the audit trail of status changes.
type HistoryRepository interface {
	Create(ctx context.Context, h *entity.DocumentHistory) error
	GetByDocumentID(ctx context.Context, documentID int64) ([]*entity.DocumentHistory, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
