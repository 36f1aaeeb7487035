package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/leplonghi/horamed-sub006/internal/app"
	"github.com/leplonghi/horamed-sub006/internal/cache"
	"github.com/leplonghi/horamed-sub006/internal/config"
	"github.com/leplonghi/horamed-sub006/internal/repository/postgres"
	"github.com/leplonghi/horamed-sub006/internal/service"
	"github.com/leplonghi/horamed-sub006/internal/storage"
	"github.com/leplonghi/horamed-sub006/pkg/logger"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := postgres.OpenURL(c.Context, c.String("db-url"))
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database not initialised")
	}
	return db, nil
}

// configureLogging follows the server's mode so release deployments get
// JSON from the CLI too. Logs go to w to keep stdout for command output.
func configureLogging(cfg *config.Config, w io.Writer) {
	logger.ConfigureWriter(w, cfg.Server.LogLevel, cfg.Server.Mode)
}

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	configureLogging(cfg, os.Stderr)

	cliApp := &cli.App{
		Name:  "horamed",
		Usage: "Maintenance commands for stock projections and adherence progress",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					db, err := dbFrom(c)
					if err != nil {
						return err
					}
					if err := postgres.Migrate(c.Context, db); err != nil {
						return err
					}
					logger.Log.Info().Msg("schema up to date")
					return nil
				},
			},
			{
				Name:  "recalc",
				Usage: "Recalculate projected end dates",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "item", Usage: "Only recalculate this item id"},
					&cli.IntFlag{
						Name:    "concurrency",
						Usage:   "Items recalculated in parallel",
						Value:   cfg.App.RecalcConcurrency,
						EnvVars: []string{"APP_RECALC_CONCURRENCY"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					return runRecalc(c, cfg)
				},
			},
			{
				Name:  "progress",
				Usage: "Print a user's XP state",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "user", Usage: "User id", Required: true},
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					return runProgress(c, cfg)
				},
			},
			{
				Name:  "export",
				Usage: "Upload a CSV of every stock projection to object storage",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.BoolFlag{Name: "list", Usage: "List previous exports instead of uploading"},
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					return runExport(c, cfg)
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func runRecalc(c *cli.Context, cfg *config.Config) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	engines, err := app.NewEngines(db.DB, cfg.App)
	if err != nil {
		return err
	}

	if item := c.String("item"); item != "" {
		if _, err := uuid.Parse(item); err != nil {
			return fmt.Errorf("invalid item id %q: %w", item, err)
		}
		res, err := engines.Stock.RecalculateProjection(c.Context, item)
		if err != nil {
			return err
		}
		return printJSON(res)
	}

	start := time.Now()
	n, err := engines.Stock.RecalculateAll(c.Context, c.Int("concurrency"))
	logger.Log.Info().Int("refreshed", n).Dur("took", time.Since(start)).Msg("recalculation finished")
	return err
}

func runProgress(c *cli.Context, cfg *config.Config) error {
	user := c.String("user")
	if _, err := uuid.Parse(user); err != nil {
		return fmt.Errorf("invalid user id %q: %w", user, err)
	}

	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	engines, err := app.NewEngines(db.DB, cfg.App)
	if err != nil {
		return err
	}

	snap, err := engines.Progress.Compute(c.Context, user)
	if err != nil {
		return err
	}

	// Keep the server's cached copy in line with what was just computed.
	if progressCache, err := cache.NewProgressCache(cfg.Cache); err == nil {
		if err := progressCache.Set(c.Context, snap); err != nil {
			logger.Log.Warn().Err(err).Msg("could not refresh cached progress")
		}
	}

	return printJSON(snap)
}

func runExport(c *cli.Context, cfg *config.Config) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	engines, err := app.NewEngines(db.DB, cfg.App)
	if err != nil {
		return err
	}
	client, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return err
	}

	svc := service.NewStockService(engines.Stock, engines.StockRepo, client, service.StockServiceConfig{
		Concurrency:  cfg.App.RecalcConcurrency,
		ExportPrefix: cfg.Storage.ExportPrefix,
	})
	if c.Bool("list") {
		exports, err := svc.ListExports(c.Context)
		if err != nil {
			return err
		}
		return printJSON(exports)
	}

	key, err := svc.Export(c.Context, time.Now())
	if err != nil {
		return err
	}
	logger.Log.Info().Str("key", key).Msg("export uploaded")
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
