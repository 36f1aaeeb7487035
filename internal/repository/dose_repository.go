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

type DoseRepository interface {
	CountTakenSince(ctx context.Context, itemID string, since time.Time) (int, error)
	ListTakenForUser(ctx context.Context, userID string) ([]domain.DoseInstance, error)
	ListDueSince(ctx context.Context, userID string, since time.Time) ([]domain.DoseInstance, error)
	// Resolve moves a scheduled dose to its final status. takenAt must be
	// set exactly when status is taken.
	Resolve(ctx context.Context, userID, doseID string, status domain.DoseStatus, takenAt *time.Time) (domain.DoseInstance, error)
}

type doseRepository struct {
	db *sqlx.DB
}

func NewDoseRepository(db *sqlx.DB) DoseRepository {
	return &doseRepository{db: db}
}

const doseColumns = `d.id, d.item_id, d.due_at, d.status, d.taken_at, d.delay_minutes`

func (r *doseRepository) CountTakenSince(ctx context.Context, itemID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM dose_instances
		WHERE item_id = $1 AND status = 'taken' AND taken_at >= $2
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, itemID, since); err != nil {
		return 0, fmt.Errorf("error counting taken doses: %w", err)
	}
	return count, nil
}

func (r *doseRepository) ListTakenForUser(ctx context.Context, userID string) ([]domain.DoseInstance, error) {
	query := `
		SELECT ` + doseColumns + `
		FROM dose_instances d
		JOIN items i ON i.id = d.item_id
		WHERE i.user_id = $1 AND d.status = 'taken'
		ORDER BY d.taken_at
	`

	var doses []domain.DoseInstance
	if err := r.db.SelectContext(ctx, &doses, query, userID); err != nil {
		return nil, fmt.Errorf("error listing taken doses: %w", err)
	}
	return doses, nil
}

func (r *doseRepository) ListDueSince(ctx context.Context, userID string, since time.Time) ([]domain.DoseInstance, error) {
	query := `
		SELECT ` + doseColumns + `
		FROM dose_instances d
		JOIN items i ON i.id = d.item_id
		WHERE i.user_id = $1 AND d.due_at >= $2
		ORDER BY d.due_at
	`

	var doses []domain.DoseInstance
	if err := r.db.SelectContext(ctx, &doses, query, userID, since); err != nil {
		return nil, fmt.Errorf("error listing recent doses: %w", err)
	}
	return doses, nil
}

func (r *doseRepository) Resolve(ctx context.Context, userID, doseID string, status domain.DoseStatus, takenAt *time.Time) (domain.DoseInstance, error) {
	// delay_minutes is only populated on the transition to taken.
	query := `
		UPDATE dose_instances d
		SET status = $3,
		    taken_at = $4,
		    delay_minutes = CASE
		        WHEN $4::timestamptz IS NULL THEN NULL
		        ELSE ROUND(EXTRACT(EPOCH FROM ($4::timestamptz - d.due_at)) / 60)::int
		    END
		FROM items i
		WHERE d.id = $1 AND i.id = d.item_id AND i.user_id = $2 AND d.status = 'scheduled'
		RETURNING ` + doseColumns

	var dose domain.DoseInstance
	err := r.db.GetContext(ctx, &dose, query, doseID, userID, string(status), takenAt)
	if err == nil {
		return dose, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return dose, fmt.Errorf("%w: resolve dose: %w", domain.ErrWriteFailure, err)
	}

	// Nothing updated: tell a missing dose apart from one already acted on.
	var current string
	err = r.db.GetContext(ctx, &current, `
		SELECT d.status
		FROM dose_instances d
		JOIN items i ON i.id = d.item_id
		WHERE d.id = $1 AND i.user_id = $2
	`, doseID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return dose, domain.ErrDoseNotFound
	}
	if err != nil {
		return dose, fmt.Errorf("%w: read dose status: %w", domain.ErrReadFailure, err)
	}
	if st, ok := domain.ParseDoseStatus(current); ok && !st.Resolved() {
		return dose, fmt.Errorf("%w: dose %s changed while resolving", domain.ErrConflict, doseID)
	}
	return dose, domain.ErrDoseAlreadyResolved
}
