// internal/repository/stock_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/leplonghi/horamed-sub006/internal/domain"
)

type StockRepository interface {
	GetStock(ctx context.Context, itemID string) (*domain.StockRecord, error)
	UpdateIfUnits(ctx context.Context, itemID string, expectedUnits int, update domain.StockUpdate) (bool, error)
	UpdateProjection(ctx context.Context, itemID string, expectedUnits int, projectedEndAt *time.Time) (bool, error)
	UpsertUnits(ctx context.Context, itemID string, unitsLeft int, updatedAt time.Time) error
	ListItemIDs(ctx context.Context) ([]string, error)
	ListAll(ctx context.Context) ([]domain.StockRecord, error)
}

type stockRepository struct {
	db *sqlx.DB
}

func NewStockRepository(db *sqlx.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) GetStock(ctx context.Context, itemID string) (*domain.StockRecord, error) {
	query := `
		SELECT item_id, units_left, projected_end_at, updated_at
		FROM stock_records
		WHERE item_id = $1
	`

	var rec domain.StockRecord
	err := r.db.GetContext(ctx, &rec, query, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting stock record: %w", err)
	}

	return &rec, nil
}

// UpdateIfUnits is the compare-and-swap used for decrements: the row only
// changes while units_left still holds the value the caller read.
func (r *stockRepository) UpdateIfUnits(ctx context.Context, itemID string, expectedUnits int, update domain.StockUpdate) (bool, error) {
	query := `
		UPDATE stock_records
		SET units_left = $3, projected_end_at = $4, updated_at = $5
		WHERE item_id = $1 AND units_left = $2
	`

	res, err := r.db.ExecContext(ctx, query, itemID, expectedUnits, update.UnitsLeft, update.ProjectedEndAt, update.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("error updating stock record: %w", err)
	}

	return affectedOne(res)
}

func (r *stockRepository) UpdateProjection(ctx context.Context, itemID string, expectedUnits int, projectedEndAt *time.Time) (bool, error) {
	query := `
		UPDATE stock_records
		SET projected_end_at = $3
		WHERE item_id = $1 AND units_left = $2
	`

	res, err := r.db.ExecContext(ctx, query, itemID, expectedUnits, projectedEndAt)
	if err != nil {
		return false, fmt.Errorf("error updating stock projection: %w", err)
	}

	return affectedOne(res)
}

func (r *stockRepository) UpsertUnits(ctx context.Context, itemID string, unitsLeft int, updatedAt time.Time) error {
	query := `
		INSERT INTO stock_records (item_id, units_left, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id)
		DO UPDATE SET
			units_left = EXCLUDED.units_left,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, itemID, unitsLeft, updatedAt); err != nil {
		return fmt.Errorf("error upserting stock record: %w", err)
	}
	return nil
}

func (r *stockRepository) ListItemIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT item_id FROM stock_records ORDER BY item_id`); err != nil {
		return nil, fmt.Errorf("error listing stock items: %w", err)
	}
	return ids, nil
}

func (r *stockRepository) ListAll(ctx context.Context) ([]domain.StockRecord, error) {
	query := `
		SELECT item_id, units_left, projected_end_at, updated_at
		FROM stock_records
		ORDER BY projected_end_at NULLS LAST, item_id
	`

	var records []domain.StockRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("error listing stock records: %w", err)
	}
	return records, nil
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading affected rows: %w", err)
	}
	return n == 1, nil
}
