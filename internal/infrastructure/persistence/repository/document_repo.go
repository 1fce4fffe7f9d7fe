package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/procurement-drafts/pkg/clock"
)

const defaultListLimit = 50

// DocumentRepository stores document headers in `documents` and their lines
// in `document_lines`. Every write also appends a history row.
type DocumentRepository struct {
	db      *sqlite.DB
	history port.HistoryRepository
	clock   clock.Clock
	logger  *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sqlite.DB, history port.HistoryRepository, clk clock.Clock, logger *zap.Logger) *DocumentRepository {
	if clk == nil {
		clk = clock.System()
	}
	return &DocumentRepository{db: db, history: history, clock: clk, logger: logger}
}

const documentColumns = `
	id, kind, doc_no, status, requester_id, cost_center_id, project_id, vendor_id,
	purpose, remark, doc_date, due_date, currency_code, quote_currency_code,
	exchange_rate, is_multicurrency, discount, vat_rate, source_document_id,
	subtotal, discount_amount, vat_amount, grand_total, created_at, updated_at`

// GetByID loads a document with its lines.
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*entity.DocumentRecord, error) {
	row := r.db.Executor(ctx).QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	rec, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get document by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Items = lines
	return rec, nil
}

// Create inserts the header and lines in one transaction.
func (r *DocumentRepository) Create(ctx context.Context, payload *entity.DocumentPayload) (*entity.DocumentRecord, error) {
	if payload == nil {
		return nil, errors.New("payload is required")
	}
	status := payload.Status
	if status == "" {
		status = entity.StatusDraft
	}
	if !workflow.CanSaveAs(workflow.StateNew, workflow.State(status)) {
		return nil, fmt.Errorf("a new document cannot be created as %s: %w", status, port.ErrConflict)
	}

	var id int64
	err := r.db.WithTransaction(ctx, func(ctx context.Context) error {
		now := r.clock.Now()
		h := payload.DocumentHeader
		result, err := r.db.Executor(ctx).ExecContext(ctx, `
			INSERT INTO documents (
				kind, doc_no, status, requester_id, cost_center_id, project_id, vendor_id,
				purpose, remark, doc_date, due_date, currency_code, quote_currency_code,
				exchange_rate, is_multicurrency, discount, vat_rate, source_document_id,
				subtotal, discount_amount, vat_amount, grand_total, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			h.Kind, h.DocNo, status, h.RequesterID, h.CostCenterID, h.ProjectID, h.VendorID,
			h.Purpose, h.Remark, nullTime(h.DocDate), nullTime(h.DueDate), h.CurrencyCode, h.QuoteCurrencyCode,
			nullDecimal(h.ExchangeRate), h.IsMulticurrency, h.Discount, nullDecimal(h.VATRate), h.SourceDocumentID,
			h.Subtotal, h.DiscountAmount, h.TaxAmount, h.GrandTotal, now, now,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("document number %s already exists: %w", h.DocNo, port.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		if err := r.insertLines(ctx, id, payload.Items); err != nil {
			return err
		}
		return r.history.Create(ctx, &entity.DocumentHistory{
			DocumentID: id,
			Action:     entity.ActionCreate,
			NewStatus:  status,
		})
	})
	if err != nil {
		r.logger.Error("Failed to create document", zap.String("kind", string(payload.Kind)), zap.Error(err))
		return nil, err
	}

	r.logger.Info("Document created", zap.Int64("id", id), zap.String("doc_no", payload.DocNo))
	return r.GetByID(ctx, id)
}

// Update replaces the header and all lines. Documents in a terminal status,
// and payloads asking for a status only a workflow action may set, are
// refused with port.ErrConflict. No version check is made.
func (r *DocumentRepository) Update(ctx context.Context, id int64, payload *entity.DocumentPayload) (*entity.DocumentRecord, error) {
	if payload == nil {
		return nil, errors.New("payload is required")
	}

	err := r.db.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := r.currentStatus(ctx, id)
		if err != nil {
			return err
		}
		if current != entity.StatusDraft && current != entity.StatusPending {
			return fmt.Errorf("document %d is %s: %w", id, current, port.ErrConflict)
		}
		status := payload.Status
		if status == "" {
			status = current
		}
		if !workflow.CanSaveAs(workflow.State(current), workflow.State(status)) {
			return fmt.Errorf("document %d cannot be saved from %s as %s: %w", id, current, status, port.ErrConflict)
		}

		h := payload.DocumentHeader
		_, err = r.db.Executor(ctx).ExecContext(ctx, `
			UPDATE documents SET
				doc_no = CASE WHEN ? = '' THEN doc_no ELSE ? END,
				status = ?, requester_id = ?, cost_center_id = ?, project_id = ?, vendor_id = ?,
				purpose = ?, remark = ?, doc_date = ?, due_date = ?, currency_code = ?, quote_currency_code = ?,
				exchange_rate = ?, is_multicurrency = ?, discount = ?, vat_rate = ?, source_document_id = ?,
				subtotal = ?, discount_amount = ?, vat_amount = ?, grand_total = ?, updated_at = ?
			WHERE id = ?
		`,
			h.DocNo, h.DocNo,
			status, h.RequesterID, h.CostCenterID, h.ProjectID, h.VendorID,
			h.Purpose, h.Remark, nullTime(h.DocDate), nullTime(h.DueDate), h.CurrencyCode, h.QuoteCurrencyCode,
			nullDecimal(h.ExchangeRate), h.IsMulticurrency, h.Discount, nullDecimal(h.VATRate), h.SourceDocumentID,
			h.Subtotal, h.DiscountAmount, h.TaxAmount, h.GrandTotal, r.clock.Now(),
			id,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("document number %s already exists: %w", h.DocNo, port.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}
		if _, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM document_lines WHERE document_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear document lines: %w", err)
		}
		if err := r.insertLines(ctx, id, payload.Items); err != nil {
			return err
		}
		return r.history.Create(ctx, &entity.DocumentHistory{
			DocumentID:     id,
			Action:         entity.ActionUpdate,
			PreviousStatus: current,
			NewStatus:      status,
		})
	})
	if err != nil {
		r.logger.Error("Failed to update document", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a DRAFT document. It reports false when the id is unknown.
func (r *DocumentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := r.db.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := r.currentStatus(ctx, id)
		if errors.Is(err, port.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if current != entity.StatusDraft {
			return fmt.Errorf("document %d is %s: %w", id, current, port.ErrConflict)
		}
		if _, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		deleted = true
		return r.history.Create(ctx, &entity.DocumentHistory{
			DocumentID:     id,
			Action:         entity.ActionDelete,
			PreviousStatus: current,
			NewStatus:      entity.DocumentStatus(workflow.StateDeleted),
		})
	})
	if err != nil {
		r.logger.Error("Failed to delete document", zap.Int64("id", id), zap.Error(err))
		return false, err
	}
	return deleted, nil
}

// List returns headers and lines matching filter, newest first.
func (r *DocumentRepository) List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.DocumentRecord, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + documentColumns + ` FROM documents`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var records []*entity.DocumentRecord
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rec := range records {
		if rec.Items, err = r.loadLines(ctx, rec.ID); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (r *DocumentRepository) currentStatus(ctx context.Context, id int64) (entity.DocumentStatus, error) {
	var status entity.DocumentStatus
	err := r.db.Executor(ctx).QueryRowContext(ctx, `SELECT status FROM documents WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("document %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read document status: %w", err)
	}
	return status, nil
}

func (r *DocumentRepository) insertLines(ctx context.Context, documentID int64, lines []entity.RecordLine) error {
	for i, l := range lines {
		lineNo := l.LineNo
		if lineNo == 0 {
			lineNo = i + 1
		}
		_, err := r.db.Executor(ctx).ExecContext(ctx, `
			INSERT INTO document_lines (
				document_id, line_no, item_id, description, uom, vendor_id,
				qty, unit_price, discount, discount_amount, net_amount, standard_cost
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			documentID, lineNo, l.ItemID, l.Description, l.UOM, l.VendorID,
			l.Quantity, l.UnitPrice, l.Discount, l.DiscountAmount, l.NetAmount, nullDecimal(l.StandardCost),
		)
		if err != nil {
			return fmt.Errorf("failed to insert line %d: %w", lineNo, err)
		}
	}
	return nil
}

func (r *DocumentRepository) loadLines(ctx context.Context, documentID int64) ([]entity.RecordLine, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT line_no, item_id, description, uom, vendor_id,
			qty, unit_price, discount, discount_amount, net_amount, standard_cost
		FROM document_lines
		WHERE document_id = ?
		ORDER BY line_no ASC
	`, documentID)
	if err != nil {
		r.logger.Error("Failed to load document lines", zap.Int64("document_id", documentID), zap.Error(err))
		return nil, fmt.Errorf("failed to load document lines: %w", err)
	}
	defer rows.Close()

	lines := []entity.RecordLine{}
	for rows.Next() {
		var (
			l    entity.RecordLine
			cost decimal.NullDecimal
		)
		if err := rows.Scan(
			&l.LineNo, &l.ItemID, &l.Description, &l.UOM, &l.VendorID,
			&l.Quantity, &l.UnitPrice, &l.Discount, &l.DiscountAmount, &l.NetAmount, &cost,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document line: %w", err)
		}
		l.StandardCost = decimalPtr(cost)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*entity.DocumentRecord, error) {
	var (
		rec              entity.DocumentRecord
		docDate, dueDate sql.NullTime
		rate, vat        decimal.NullDecimal
	)
	err := row.Scan(
		&rec.ID, &rec.Kind, &rec.DocNo, &rec.Status, &rec.RequesterID, &rec.CostCenterID, &rec.ProjectID, &rec.VendorID,
		&rec.Purpose, &rec.Remark, &docDate, &dueDate, &rec.CurrencyCode, &rec.QuoteCurrencyCode,
		&rate, &rec.IsMulticurrency, &rec.Discount, &vat, &rec.SourceDocumentID,
		&rec.Subtotal, &rec.DiscountAmount, &rec.TaxAmount, &rec.GrandTotal, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.DocDate = timePtr(docDate)
	rec.DueDate = timePtr(dueDate)
	rec.ExchangeRate = decimalPtr(rate)
	rec.VATRate = decimalPtr(vat)
	return &rec, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

var _ port.DocumentRepository = (*DocumentRepository)(nil)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
