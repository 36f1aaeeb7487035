package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/leplonghi/horamed-sub006/internal/domain"
	"github.com/lib/pq"
)

type ScheduleRepository interface {
	ActiveSchedules(ctx context.Context, itemID string) ([]domain.ScheduleDefinition, error)
}

type scheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

type scheduleRow struct {
	ItemID   string         `db:"item_id"`
	Times    pq.StringArray `db:"times"`
	IsActive bool           `db:"is_active"`
}

func (row scheduleRow) toDomain() domain.ScheduleDefinition {
	return domain.ScheduleDefinition{
		ItemID:   row.ItemID,
		Times:    []string(row.Times),
		IsActive: row.IsActive,
	}
}

func (r *scheduleRepository) ActiveSchedules(ctx context.Context, itemID string) ([]domain.ScheduleDefinition, error) {
	query := `
		SELECT item_id, times, is_active
		FROM schedules
		WHERE item_id = $1 AND is_active
	`

	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, itemID); err != nil {
		return nil, fmt.Errorf("error getting schedules: %w", err)
	}

	schedules := make([]domain.ScheduleDefinition, len(rows))
	for i, row := range rows {
		schedules[i] = row.toDomain()
	}
	return schedules, nil
}
