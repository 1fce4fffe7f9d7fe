package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
)

func TestDocumentRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.documents.Create(ctx, samplePayload(entity.StatusDraft))
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.Equal(t, "PR-2026-0001", rec.DocNo)
	assert.Equal(t, entity.StatusDraft, rec.Status)
	assert.Equal(t, "81159.5", rec.GrandTotal.String())
	require.NotNil(t, rec.VATRate)
	assert.Equal(t, "7", rec.VATRate.String())
	assert.Nil(t, rec.DueDate)
	require.NotNil(t, rec.DocDate)
	assert.True(t, rec.DocDate.Equal(testNow))

	require.Len(t, rec.Items, 2)
	assert.Equal(t, "5%", rec.Items[0].Discount)
	require.NotNil(t, rec.Items[0].StandardCost)
	assert.Equal(t, "4800", rec.Items[0].StandardCost.String())
	assert.Nil(t, rec.Items[1].StandardCost)

	history, err := s.history.GetByDocumentID(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.ActionCreate, history[0].Action)
}

func TestDocumentRepository_GetMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.documents.GetByID(context.Background(), 404)
	assert.True(t, errors.Is(err, port.ErrNotFound))
}

func TestDocumentRepository_UpdateReplacesLines(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec, err := s.documents.Create(ctx, samplePayload(entity.StatusDraft))
	require.NoError(t, err)

	payload := samplePayload(entity.StatusPending)
	payload.DocNo = ""
	payload.Items = payload.Items[:1]
	payload.Purpose = "Chairs only"

	updated, err := s.documents.Update(ctx, rec.ID, payload)
	require.NoError(t, err)

	assert.Equal(t, "PR-2026-0001", updated.DocNo, "blank number keeps the stored one")
	assert.Equal(t, entity.StatusPending, updated.Status)
	assert.Equal(t, "Chairs only", updated.Purpose)
	assert.Len(t, updated.Items, 1)
}

func TestDocumentRepository_UpdateTerminalIsConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec, err := s.documents.Create(ctx, samplePayload(entity.StatusPending))
	require.NoError(t, err)
	_, err = s.workflow.Approve(ctx, rec.ID, "")
	require.NoError(t, err)

	_, err = s.documents.Update(ctx, rec.ID, samplePayload(entity.StatusDraft))
	assert.True(t, errors.Is(err, port.ErrConflict))
}

func TestDocumentRepository_SaveCannotSetWorkflowStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, status := range []entity.DocumentStatus{entity.StatusApproved, entity.StatusRejected, entity.StatusCancelled} {
		p := samplePayload(status)
		p.DocNo = ""
		_, err := s.documents.Create(ctx, p)
		assert.True(t, errors.Is(err, port.ErrConflict), "create as %s: %v", status, err)
	}

	rec, err := s.documents.Create(ctx, samplePayload(entity.StatusPending))
	require.NoError(t, err)

	_, err = s.documents.Update(ctx, rec.ID, samplePayload(entity.StatusApproved))
	assert.True(t, errors.Is(err, port.ErrConflict), "got %v", err)

	stored, err := s.documents.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.Status)

	rows, err := s.history.GetByDocumentID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "only the create is recorded")

	held, err := s.documents.Update(ctx, rec.ID, samplePayload(entity.StatusDraft))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, held.Status)
}

func TestDocumentRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	draftRec, err := s.documents.Create(ctx, samplePayload(entity.StatusDraft))
	require.NoError(t, err)
	pending := samplePayload(entity.StatusPending)
	pending.DocNo = "PR-2026-0002"
	pendingRec, err := s.documents.Create(ctx, pending)
	require.NoError(t, err)

	deleted, err := s.documents.Delete(ctx, draftRec.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = s.documents.GetByID(ctx, draftRec.ID)
	assert.True(t, errors.Is(err, port.ErrNotFound))

	deleted, err = s.documents.Delete(ctx, draftRec.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = s.documents.Delete(ctx, pendingRec.ID)
	assert.True(t, errors.Is(err, port.ErrConflict))

	var lines int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM document_lines WHERE document_id = ?`, draftRec.ID).Scan(&lines))
	assert.Zero(t, lines)
}

func TestDocumentRepository_ListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, status := range []entity.DocumentStatus{entity.StatusDraft, entity.StatusPending, entity.StatusDraft} {
		p := samplePayload(status)
		p.DocNo = p.DocNo + string(rune('a'+i))
		_, err := s.documents.Create(ctx, p)
		require.NoError(t, err)
	}
	rfq := samplePayload(entity.StatusDraft)
	rfq.Kind = entity.KindRequestForQuotation
	_, err := s.documents.Create(ctx, rfq)
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter entity.DocumentFilter
		want   int
	}{
		{name: "all", filter: entity.DocumentFilter{}, want: 4},
		{name: "by_kind", filter: entity.DocumentFilter{Kind: entity.KindPurchaseRequisition}, want: 3},
		{name: "by_status", filter: entity.DocumentFilter{Status: entity.StatusDraft}, want: 3},
		{name: "both", filter: entity.DocumentFilter{Kind: entity.KindPurchaseRequisition, Status: entity.StatusPending}, want: 1},
		{name: "paged", filter: entity.DocumentFilter{Limit: 2, Offset: 3}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := s.documents.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, recs, tt.want)
		})
	}
}

func TestDocumentRepository_FailedCreateRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.documents.Create(ctx, samplePayload(entity.StatusDraft))
	require.NoError(t, err)

	// same kind and number violates the unique index
	_, err = s.documents.Create(ctx, samplePayload(entity.StatusDraft))
	require.Error(t, err)

	var docs, history int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&docs))
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM document_history`).Scan(&history))
	assert.Equal(t, 1, docs)
	assert.Equal(t, 1, history)
}

func TestDocumentRepository_DuplicateNumberIsConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.documents.Create(ctx, samplePayload(entity.StatusDraft))
	require.NoError(t, err)

	_, err = s.documents.Create(ctx, samplePayload(entity.StatusDraft))
	assert.True(t, errors.Is(err, port.ErrConflict), "got %v", err)
}

func TestDocumentRepository_UnnumberedDraftsCoexist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p := samplePayload(entity.StatusDraft)
		p.DocNo = ""
		_, err := s.documents.Create(ctx, p)
		require.NoError(t, err)
	}
}
