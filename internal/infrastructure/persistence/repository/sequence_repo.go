package repository

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/procurement-drafts/pkg/clock"
)

// SequenceRepository hands out <PREFIX>-<YYYY>-<NNNN> numbers from the
// document_sequences table. Counters are per kind and calendar year.
type SequenceRepository struct {
	db       *sqlite.DB
	prefixes map[entity.DocumentKind]string
	clock    clock.Clock
	logger   *zap.Logger
}

// NewSequenceRepository creates a sequencer. prefixes overrides the kind code
// used in the number; kinds missing from it use their own code.
func NewSequenceRepository(db *sqlite.DB, prefixes map[string]string, clk clock.Clock, logger *zap.Logger) *SequenceRepository {
	if clk == nil {
		clk = clock.System()
	}
	p := make(map[entity.DocumentKind]string, len(prefixes))
	for k, v := range prefixes {
		p[entity.DocumentKind(strings.ToUpper(k))] = v
	}
	return &SequenceRepository{db: db, prefixes: p, clock: clk, logger: logger}
}

// NextNumber increments and returns the counter for kind in the current year.
func (r *SequenceRepository) NextNumber(ctx context.Context, kind entity.DocumentKind) (string, error) {
	if !kind.IsValid() {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	year := r.clock.Now().Year()

	var next int64
	err := r.db.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := r.db.Executor(ctx).ExecContext(ctx, `
			INSERT INTO document_sequences (kind, year, last_value) VALUES (?, ?, 1)
			ON CONFLICT(kind, year) DO UPDATE SET last_value = last_value + 1
		`, kind, year)
		if err != nil {
			return fmt.Errorf("failed to advance sequence: %w", err)
		}
		return r.db.Executor(ctx).QueryRowContext(ctx,
			`SELECT last_value FROM document_sequences WHERE kind = ? AND year = ?`, kind, year).Scan(&next)
	})
	if err != nil {
		r.logger.Error("Failed to assign document number", zap.String("kind", string(kind)), zap.Error(err))
		return "", err
	}

	return fmt.Sprintf("%s-%04d-%04d", r.prefix(kind), year, next), nil
}

func (r *SequenceRepository) prefix(kind entity.DocumentKind) string {
	if p, ok := r.prefixes[kind]; ok && p != "" {
		return p
	}
	return string(kind)
}

var _ port.NumberSequencer = (*SequenceRepository)(nil)
