// Package app wires repositories and engines from configuration. The
// server and the CLI share it so both apply the same calendar settings.
package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/leplonghi/horamed-sub006/internal/adherence"
	"github.com/leplonghi/horamed-sub006/internal/config"
	"github.com/leplonghi/horamed-sub006/internal/repository"
	"github.com/leplonghi/horamed-sub006/internal/stock"
	"github.com/leplonghi/horamed-sub006/pkg/logger"
)

type Engines struct {
	StockRepo repository.StockRepository
	DoseRepo  repository.DoseRepository
	Stock     *stock.Engine
	Progress  *adherence.Engine
}

func NewEngines(db *sqlx.DB, cfg config.AppConfig) (*Engines, error) {
	mode, err := adherence.ParseWindowingMode(cfg.PerfectDayWindow)
	if err != nil {
		return nil, fmt.Errorf("app config: %w", err)
	}

	stockRepo := repository.NewStockRepository(db)
	doseRepo := repository.NewDoseRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	return &Engines{
		StockRepo: stockRepo,
		DoseRepo:  doseRepo,
		Stock: stock.NewEngine(stockRepo, doseRepo, scheduleRepo,
			stock.WithLogger(logger.Component("stock")),
		),
		Progress: adherence.NewEngine(doseRepo,
			adherence.WithLocation(cfg.Location()),
			adherence.WithWeekStart(cfg.FirstWeekday()),
			adherence.WithPerfectDayWindowing(mode),
			adherence.WithLogger(logger.Component("adherence")),
		),
	}, nil
}
