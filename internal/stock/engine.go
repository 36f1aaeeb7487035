package stock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// maxUpdateAttempts bounds the compare-and-swap loop on units_left.
const maxUpdateAttempts = 3

// Store is the single-row-per-item stock table.
type Store interface {
	// GetStock returns domain.ErrStockNotFound when the item is not tracked.
	GetStock(ctx context.Context, itemID string) (*domain.StockRecord, error)
	// UpdateIfUnits writes update only while units_left still equals expectedUnits.
	UpdateIfUnits(ctx context.Context, itemID string, expectedUnits int, update domain.StockUpdate) (bool, error)
	// UpdateProjection writes projected_end_at only while units_left still equals expectedUnits.
	UpdateProjection(ctx context.Context, itemID string, expectedUnits int, projectedEndAt *time.Time) (bool, error)
	UpsertUnits(ctx context.Context, itemID string, unitsLeft int, updatedAt time.Time) error
	ListItemIDs(ctx context.Context) ([]string, error)
}

// DoseHistory counts consumption events for an item.
type DoseHistory interface {
	CountTakenSince(ctx context.Context, itemID string, since time.Time) (int, error)
}

// ScheduleSource lists the schedules of an item.
type ScheduleSource interface {
	ActiveSchedules(ctx context.Context, itemID string) ([]domain.ScheduleDefinition, error)
}

// Engine keeps units_left and projected_end_at consistent with dose activity.
type Engine struct {
	stock     Store
	doses     DoseHistory
	schedules ScheduleSource
	now       func() time.Time
	log       zerolog.Logger
}

type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(store Store, doses DoseHistory, schedules ScheduleSource, opts ...Option) *Engine {
	e := &Engine{
		stock:     store,
		doses:     doses,
		schedules: schedules,
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DailyRate estimates the item's consumption per day as of now.
func (e *Engine) DailyRate(ctx context.Context, itemID string, now time.Time) (float64, error) {
	taken, err := e.doses.CountTakenSince(ctx, itemID, now.Add(-ConsumptionWindow))
	if err != nil {
		e.log.Warn().Err(err).Str("item_id", itemID).Msg("stock: read dose history failed")
		return 0, fmt.Errorf("%w: dose history for %s: %w", domain.ErrReadFailure, itemID, err)
	}
	if taken > 0 {
		return EstimateDailyConsumption(taken, nil), nil
	}

	schedules, err := e.schedules.ActiveSchedules(ctx, itemID)
	if err != nil {
		e.log.Warn().Err(err).Str("item_id", itemID).Msg("stock: read schedules failed")
		return 0, fmt.Errorf("%w: schedules for %s: %w", domain.ErrReadFailure, itemID, err)
	}

	return EstimateDailyConsumption(0, schedules), nil
}

func (e *Engine) readStock(ctx context.Context, itemID string) (*domain.StockRecord, error) {
	rec, err := e.stock.GetStock(ctx, itemID)
	if errors.Is(err, domain.ErrStockNotFound) {
		return nil, err
	}
	if err != nil {
		e.log.Warn().Err(err).Str("item_id", itemID).Msg("stock: read stock failed")
		return nil, fmt.Errorf("%w: stock for %s: %w", domain.ErrReadFailure, itemID, err)
	}
	return rec, nil
}

// DecrementOnDoseTaken consumes one unit after a dose is taken. Items
// without a stock record are a successful no-op, and stock never drops
// below zero. The write is a compare-and-swap on units_left so two
// concurrent decrements cannot both apply to the same starting value.
func (e *Engine) DecrementOnDoseTaken(ctx context.Context, itemID string) (domain.DecrementResult, error) {
	result := domain.DecrementResult{ItemID: itemID}

	rec, err := e.readStock(ctx, itemID)
	if errors.Is(err, domain.ErrStockNotFound) {
		return result, nil
	}
	if err != nil {
		return result, err
	}
	result.Tracked = true

	// Empty stock is left untouched; the result reports the projection an
	// empty item has, which is now.
	now := e.now()
	if rec.UnitsLeft <= 0 {
		result.UnitsLeft = 0
		result.ProjectedEndAt = &now
		return result, nil
	}

	rate, err := e.DailyRate(ctx, itemID, now)
	if err != nil {
		return result, err
	}
	result.DailyRate = rate

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		next := rec.UnitsLeft - 1
		end := CalculateProjectedEndAt(next, rate, now)

		ok, err := e.stock.UpdateIfUnits(ctx, itemID, rec.UnitsLeft, domain.StockUpdate{
			UnitsLeft:      next,
			ProjectedEndAt: &end,
			UpdatedAt:      now,
		})
		if err != nil {
			e.log.Error().Err(err).Str("item_id", itemID).Int("units_left", next).Msg("stock: write decrement failed")
			return result, fmt.Errorf("%w: decrement %s: %w", domain.ErrWriteFailure, itemID, err)
		}
		if ok {
			result.UnitsLeft = next
			result.ProjectedEndAt = &end
			return result, nil
		}

		e.log.Debug().Str("item_id", itemID).Int("attempt", attempt).Msg("stock: units changed underneath, retrying")
		rec, err = e.readStock(ctx, itemID)
		if errors.Is(err, domain.ErrStockNotFound) {
			return domain.DecrementResult{ItemID: itemID}, nil
		}
		if err != nil {
			return result, err
		}
		if rec.UnitsLeft <= 0 {
			result.UnitsLeft = 0
			result.ProjectedEndAt = &now
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: decrement %s after %d attempts", domain.ErrConflict, itemID, maxUpdateAttempts)
}

// RecalculateProjection re-derives projected_end_at for the current
// units_left, typically after a manual stock edit. units_left is not written.
func (e *Engine) RecalculateProjection(ctx context.Context, itemID string) (domain.ProjectionResult, error) {
	result := domain.ProjectionResult{ItemID: itemID}

	rec, err := e.readStock(ctx, itemID)
	if err != nil {
		return result, err
	}

	now := e.now()
	rate, err := e.DailyRate(ctx, itemID, now)
	if err != nil {
		return result, err
	}
	result.DailyRate = rate

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		end := CalculateProjectedEndAt(rec.UnitsLeft, rate, now)

		ok, err := e.stock.UpdateProjection(ctx, itemID, rec.UnitsLeft, &end)
		if err != nil {
			e.log.Error().Err(err).Str("item_id", itemID).Msg("stock: write projection failed")
			return result, fmt.Errorf("%w: projection %s: %w", domain.ErrWriteFailure, itemID, err)
		}
		if ok {
			result.UnitsLeft = rec.UnitsLeft
			result.ProjectedEndAt = &end
			return result, nil
		}

		rec, err = e.readStock(ctx, itemID)
		if err != nil {
			return result, err
		}
	}

	return result, fmt.Errorf("%w: projection %s after %d attempts", domain.ErrConflict, itemID, maxUpdateAttempts)
}

// SetUnitsLeft records a manual stock edit and refreshes the projection.
// It creates the stock record when the item was not tracked yet.
func (e *Engine) SetUnitsLeft(ctx context.Context, itemID string, unitsLeft int) (domain.ProjectionResult, error) {
	if unitsLeft < 0 {
		return domain.ProjectionResult{ItemID: itemID}, domain.ErrInvalidUnits
	}

	if err := e.stock.UpsertUnits(ctx, itemID, unitsLeft, e.now()); err != nil {
		e.log.Error().Err(err).Str("item_id", itemID).Int("units_left", unitsLeft).Msg("stock: write manual edit failed")
		return domain.ProjectionResult{ItemID: itemID}, fmt.Errorf("%w: set units %s: %w", domain.ErrWriteFailure, itemID, err)
	}

	return e.RecalculateProjection(ctx, itemID)
}

// RecalculateAll refreshes every tracked item with at most concurrency
// refreshes in flight. Individual failures do not stop the batch; they
// are joined into the returned error.
func (e *Engine) RecalculateAll(ctx context.Context, concurrency int) (int, error) {
	ids, err := e.stock.ListItemIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: list stock items: %w", domain.ErrReadFailure, err)
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		mu        sync.Mutex
		refreshed int
		errs      []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range ids {
		g.Go(func() error {
			_, err := e.RecalculateProjection(gctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			refreshed++
			return nil
		})
	}
	_ = g.Wait()

	e.log.Info().Int("items", len(ids)).Int("refreshed", refreshed).Int("failed", len(errs)).Msg("stock: projections refreshed")

	return refreshed, errors.Join(errs...)
}
