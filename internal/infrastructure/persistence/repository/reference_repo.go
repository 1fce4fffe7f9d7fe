package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/persistence/sqlite"
)

// ReferenceRepository serves master data from reference_items.
type ReferenceRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewReferenceRepository creates a new reference data repository
func NewReferenceRepository(db *sqlite.DB, logger *zap.Logger) *ReferenceRepository {
	return &ReferenceRepository{db: db, logger: logger}
}

// List returns the active rows of kind ordered by code.
func (r *ReferenceRepository) List(ctx context.Context, kind entity.ReferenceKind) ([]entity.ReferenceItem, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}

	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT kind, id, code, name, standard_cost, uom, rate, active
		FROM reference_items
		WHERE kind = ? AND active = 1
		ORDER BY code, id
	`, kind)
	if err != nil {
		r.logger.Error("Failed to list reference items", zap.String("kind", string(kind)), zap.Error(err))
		return nil, fmt.Errorf("failed to list reference items: %w", err)
	}
	defer rows.Close()

	items := []entity.ReferenceItem{}
	for rows.Next() {
		item, err := scanReferenceItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reference item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetByID returns nil, nil for an unknown id.
func (r *ReferenceRepository) GetByID(ctx context.Context, kind entity.ReferenceKind, id string) (*entity.ReferenceItem, error) {
	row := r.db.Executor(ctx).QueryRowContext(ctx, `
		SELECT kind, id, code, name, standard_cost, uom, rate, active
		FROM reference_items
		WHERE kind = ? AND id = ?
	`, kind, id)

	item, err := scanReferenceItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get reference item", zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get reference item: %w", err)
	}
	return item, nil
}

// Upsert stores a master-data row.
func (r *ReferenceRepository) Upsert(ctx context.Context, item entity.ReferenceItem) error {
	if !item.Kind.IsValid() || item.ID == "" {
		return fmt.Errorf("invalid reference item %q/%q", item.Kind, item.ID)
	}
	_, err := r.db.Executor(ctx).ExecContext(ctx, `
		INSERT INTO reference_items (kind, id, code, name, standard_cost, uom, rate, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			code = excluded.code, name = excluded.name, standard_cost = excluded.standard_cost,
			uom = excluded.uom, rate = excluded.rate, active = excluded.active
	`, item.Kind, item.ID, item.Code, item.Name, nullDecimal(item.StandardCost), item.UOM, nullDecimal(item.Rate), item.Active)
	if err != nil {
		r.logger.Error("Failed to upsert reference item", zap.String("kind", string(item.Kind)), zap.String("id", item.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert reference item: %w", err)
	}
	return nil
}

func scanReferenceItem(row rowScanner) (*entity.ReferenceItem, error) {
	var (
		item       entity.ReferenceItem
		cost, rate decimal.NullDecimal
	)
	if err := row.Scan(&item.Kind, &item.ID, &item.Code, &item.Name, &cost, &item.UOM, &rate, &item.Active); err != nil {
		return nil, err
	}
	item.StandardCost = decimalPtr(cost)
	item.Rate = decimalPtr(rate)
	return &item, nil
}

var _ port.MasterDataLookup = (*ReferenceRepository)(nil)
