package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements are applied in order; each is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id)`,

	`CREATE TABLE IF NOT EXISTS stock_records (
		item_id          UUID PRIMARY KEY REFERENCES items(id) ON DELETE CASCADE,
		units_left       INTEGER NOT NULL CHECK (units_left >= 0),
		projected_end_at TIMESTAMPTZ,
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS schedules (
		id        UUID PRIMARY KEY,
		item_id   UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		times     TEXT[] NOT NULL DEFAULT '{}',
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_item ON schedules(item_id) WHERE is_active`,

	`CREATE TABLE IF NOT EXISTS dose_instances (
		id            UUID PRIMARY KEY,
		item_id       UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		due_at        TIMESTAMPTZ NOT NULL,
		status        TEXT NOT NULL DEFAULT 'scheduled'
		              CHECK (status IN ('scheduled', 'taken', 'missed', 'skipped')),
		taken_at      TIMESTAMPTZ,
		delay_minutes INTEGER,
		CHECK ((status = 'taken') = (taken_at IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_doses_item_taken ON dose_instances(item_id, taken_at) WHERE status = 'taken'`,
	`CREATE INDEX IF NOT EXISTS idx_doses_item_due ON dose_instances(item_id, due_at)`,
}

// Migrate creates the tables the engines read and write.
func Migrate(ctx context.Context, db *DB) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		for i, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}
