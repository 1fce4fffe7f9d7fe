package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-drafts/internal/domain/entity"
)

// Mock repositories
type mockDocumentRepo struct {
	getByIDFunc func(ctx context.Context, id int64) (*entity.DocumentRecord, error)
	createFunc  func(ctx context.Context, payload *entity.DocumentPayload) (*entity.DocumentRecord, error)
	updateFunc  func(ctx context.Context, id int64, payload *entity.DocumentPayload) (*entity.DocumentRecord, error)
	deleteFunc  func(ctx context.Context, id int64) (bool, error)

	mu      sync.Mutex
	created []*entity.DocumentPayload
	updated []*entity.DocumentPayload
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id int64) (*entity.DocumentRecord, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.DocumentRecord{ID: id, DocumentHeader: entity.DocumentHeader{Kind: entity.KindPurchaseRequisition, Status: entity.StatusDraft}}, nil
}

func (m *mockDocumentRepo) Create(ctx context.Context, payload *entity.DocumentPayload) (*entity.DocumentRecord, error) {
	m.mu.Lock()
	m.created = append(m.created, payload)
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, payload)
	}
	return &entity.DocumentRecord{ID: 101, DocumentHeader: payload.DocumentHeader, Items: payload.Items}, nil
}

func (m *mockDocumentRepo) Update(ctx context.Context, id int64, payload *entity.DocumentPayload) (*entity.DocumentRecord, error) {
	m.mu.Lock()
	m.updated = append(m.updated, payload)
	m.mu.Unlock()
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, payload)
	}
	return &entity.DocumentRecord{ID: id, DocumentHeader: payload.DocumentHeader, Items: payload.Items}, nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return true, nil
}

func (m *mockDocumentRepo) List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.DocumentRecord, error) {
	return nil, nil
}

type mockWorkflow struct {
	submitFunc  func(ctx context.Context, id int64) (*entity.ActionResult, error)
	approveFunc func(ctx context.Context, id int64, remark string) (*entity.ActionResult, error)
	rejectFunc  func(ctx context.Context, id int64, reason string) (*entity.ActionResult, error)
	cancelFunc  func(ctx context.Context, id int64, reason string) (*entity.ActionResult, error)
}

func okResult(status entity.DocumentStatus) (*entity.ActionResult, error) {
	return &entity.ActionResult{Success: true, Status: status}, nil
}

func (m *mockWorkflow) Submit(ctx context.Context, id int64) (*entity.ActionResult, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, id)
	}
	return okResult(entity.StatusPending)
}

func (m *mockWorkflow) Approve(ctx context.Context, id int64, remark string) (*entity.ActionResult, error) {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, id, remark)
	}
	return okResult(entity.StatusApproved)
}

func (m *mockWorkflow) Reject(ctx context.Context, id int64, reason string) (*entity.ActionResult, error) {
	if m.rejectFunc != nil {
		return m.rejectFunc(ctx, id, reason)
	}
	return okResult(entity.StatusRejected)
}

func (m *mockWorkflow) Cancel(ctx context.Context, id int64, reason string) (*entity.ActionResult, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id, reason)
	}
	return okResult(entity.StatusCancelled)
}

type mockSequencer struct {
	nextFunc func(ctx context.Context, kind entity.DocumentKind) (string, error)
	calls    int
}

func (m *mockSequencer) NextNumber(ctx context.Context, kind entity.DocumentKind) (string, error) {
	m.calls++
	if m.nextFunc != nil {
		return m.nextFunc(ctx, kind)
	}
	return string(kind) + "-2026-0001", nil
}

type mockRates struct {
	getRateFunc func(ctx context.Context, from, to string) (decimal.Decimal, error)
}

func (m *mockRates) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if m.getRateFunc != nil {
		return m.getRateFunc(ctx, from, to)
	}
	return decimal.RequireFromString("33.5"), nil
}

type mockMasterData struct {
	items map[entity.ReferenceKind][]entity.ReferenceItem
	err   error

	mu    sync.Mutex
	calls map[entity.ReferenceKind]int
}

func (m *mockMasterData) List(ctx context.Context, kind entity.ReferenceKind) ([]entity.ReferenceItem, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[entity.ReferenceKind]int)
	}
	m.calls[kind]++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.items[kind], nil
}

func (m *mockMasterData) GetByID(ctx context.Context, kind entity.ReferenceKind, id string) (*entity.ReferenceItem, error) {
	for _, it := range m.items[kind] {
		if it.ID == id {
			item := it
			return &item, nil
		}
	}
	return nil, nil
}

func (m *mockMasterData) callCount(kind entity.ReferenceKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

type recordingRecorder struct {
	mu          sync.Mutex
	rateLookups []string
	transitions []string
	saves       []string
}

func (r *recordingRecorder) RateLookup(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rateLookups = append(r.rateLookups, result)
}

func (r *recordingRecorder) Transition(kind, from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, kind+":"+from+"->"+to)
}

func (r *recordingRecorder) Save(kind, mode, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, kind+":"+mode+":"+result)
}

func (r *recordingRecorder) lookups() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.rateLookups...)
}
