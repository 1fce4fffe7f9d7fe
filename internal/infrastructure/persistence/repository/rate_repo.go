package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/procurement-drafts/pkg/clock"
)

const inverseRatePrecision = 10

// RateRepository serves exchange rates from the exchange_rates table.
// A pair missing in one direction is answered from its inverse.
type RateRepository struct {
	db     *sqlite.DB
	clock  clock.Clock
	logger *zap.Logger
}

// NewRateRepository creates a new rate repository
func NewRateRepository(db *sqlite.DB, clk clock.Clock, logger *zap.Logger) *RateRepository {
	if clk == nil {
		clk = clock.System()
	}
	return &RateRepository{db: db, clock: clk, logger: logger}
}

// GetRate returns how many units of to one unit of from buys.
func (r *RateRepository) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	rate, err := r.lookup(ctx, from, to)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.logger.Error("Failed to get exchange rate", zap.String("from", from), zap.String("to", to), zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	inverse, err := r.lookup(ctx, to, from)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("rate %s/%s: %w", from, to, port.ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get exchange rate: %w", err)
	}
	if !inverse.IsPositive() {
		return decimal.Zero, fmt.Errorf("stored rate %s/%s is not positive", to, from)
	}
	return decimal.NewFromInt(1).DivRound(inverse, inverseRatePrecision), nil
}

func (r *RateRepository) lookup(ctx context.Context, from, to string) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT rate FROM exchange_rates WHERE from_currency = ? AND to_currency = ?`, from, to).Scan(&rate)
	return rate, err
}

// Upsert stores or replaces a rate.
func (r *RateRepository) Upsert(ctx context.Context, rate *entity.ExchangeRate) error {
	if rate == nil || !rate.Rate.IsPositive() {
		return errors.New("rate must be positive")
	}
	from, to := strings.ToUpper(rate.From), strings.ToUpper(rate.To)
	if from == "" || to == "" || from == to {
		return fmt.Errorf("invalid currency pair %q/%q", rate.From, rate.To)
	}
	rate.From, rate.To = from, to
	rate.UpdatedAt = r.clock.Now()

	_, err := r.db.Executor(ctx).ExecContext(ctx, `
		INSERT INTO exchange_rates (from_currency, to_currency, rate, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(from_currency, to_currency) DO UPDATE SET rate = excluded.rate, updated_at = excluded.updated_at
	`, from, to, rate.Rate, rate.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert exchange rate", zap.String("from", from), zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to upsert exchange rate: %w", err)
	}
	return nil
}

// List returns every stored rate ordered by pair.
func (r *RateRepository) List(ctx context.Context) ([]*entity.ExchangeRate, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT from_currency, to_currency, rate, updated_at
		FROM exchange_rates
		ORDER BY from_currency, to_currency
	`)
	if err != nil {
		r.logger.Error("Failed to list exchange rates", zap.Error(err))
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []*entity.ExchangeRate
	for rows.Next() {
		var rate entity.ExchangeRate
		if err := rows.Scan(&rate.From, &rate.To, &rate.Rate, &rate.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		rates = append(rates, &rate)
	}
	return rates, rows.Err()
}

var _ port.ExchangeRateStore = (*RateRepository)(nil)
