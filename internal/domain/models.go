// internal/domain/models.go
package domain

import "time"

// StockRecord tracks the remaining units of a single routine item.
type StockRecord struct {
	ItemID         string     `json:"item_id" db:"item_id"`
	UnitsLeft      int        `json:"units_left" db:"units_left"`
	ProjectedEndAt *time.Time `json:"projected_end_at" db:"projected_end_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// StockUpdate holds the fields written back after a projection.
type StockUpdate struct {
	UnitsLeft      int
	ProjectedEndAt *time.Time
	UpdatedAt      time.Time
}

// DecrementResult is returned by a dose-taken decrement.
// Tracked is false when the item has no stock record.
type DecrementResult struct {
	ItemID         string     `json:"item_id"`
	Tracked        bool       `json:"tracked"`
	UnitsLeft      int        `json:"units_left"`
	ProjectedEndAt *time.Time `json:"projected_end_at"`
	DailyRate      float64    `json:"daily_rate"`
}

// ProjectionResult is returned by a projection refresh.
type ProjectionResult struct {
	ItemID         string     `json:"item_id"`
	UnitsLeft      int        `json:"units_left"`
	ProjectedEndAt *time.Time `json:"projected_end_at"`
	DailyRate      float64    `json:"daily_rate"`
}

// DoseInstance is one scheduled occurrence of taking an item.
type DoseInstance struct {
	ID           string     `json:"id" db:"id"`
	ItemID       string     `json:"item_id" db:"item_id"`
	DueAt        time.Time  `json:"due_at" db:"due_at"`
	Status       DoseStatus `json:"status" db:"status"`
	TakenAt      *time.Time `json:"taken_at" db:"taken_at"`
	DelayMinutes *int       `json:"delay_minutes" db:"delay_minutes"`
}

// EventTime is the moment used for weekly and monthly windowing.
func (d DoseInstance) EventTime() time.Time {
	if d.TakenAt != nil {
		return *d.TakenAt
	}
	return d.DueAt
}

// ScheduleDefinition lists the times of day an item is due.
type ScheduleDefinition struct {
	ItemID   string   `json:"item_id" db:"item_id"`
	Times    []string `json:"times" db:"times"`
	IsActive bool     `json:"is_active" db:"is_active"`
}

// DoseResolution is the outcome of a user acting on a dose instance.
type DoseResolution struct {
	Dose       DoseInstance     `json:"dose"`
	Stock      *DecrementResult `json:"stock,omitempty"`
	StockError string           `json:"stock_error,omitempty"`
}
