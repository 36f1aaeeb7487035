// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leplonghi/horamed-sub006/internal/api"
	"github.com/leplonghi/horamed-sub006/internal/app"
	"github.com/leplonghi/horamed-sub006/internal/cache"
	"github.com/leplonghi/horamed-sub006/internal/config"
	"github.com/leplonghi/horamed-sub006/internal/repository/postgres"
	"github.com/leplonghi/horamed-sub006/internal/scheduler"
	"github.com/leplonghi/horamed-sub006/internal/service"
	"github.com/leplonghi/horamed-sub006/internal/storage"
	"github.com/leplonghi/horamed-sub006/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Configure(cfg.Server.LogLevel, cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	progressCache, err := cache.NewProgressCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Progress cache unavailable, continuing without it")
		progressCache = cache.NewNoopProgressCache()
	}

	engines, err := app.NewEngines(db.DB, cfg.App)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid application config")
	}

	// Exports are optional; a nil interface disables them.
	var exporter storage.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage unavailable, exports disabled")
		} else {
			exporter = client
		}
	}

	// Initialize services
	progressService := service.NewProgressService(engines.Progress, progressCache)
	if err := progressService.Flush(context.Background()); err != nil {
		logger.Log.Warn().Err(err).Msg("Could not flush progress cache")
	}
	stockService := service.NewStockService(engines.Stock, engines.StockRepo, exporter, service.StockServiceConfig{
		Concurrency:  cfg.App.RecalcConcurrency,
		ExportPrefix: cfg.Storage.ExportPrefix,
	})
	doseService := service.NewDoseService(engines.DoseRepo, engines.Stock, progressService)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(stockService, cfg.Scheduler.RefreshCron, cfg.App.Location(), logger.Component("scheduler"))
		if err := sched.Start(); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		DoseService:     doseService,
		StockService:    stockService,
		ProgressService: progressService,
	}, cfg.Server.AllowedOrigins, time.Duration(cfg.App.DoseActionTimeout)*time.Second)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if sched != nil {
		sched.Stop()
	}

	logger.Log.Info().Msg("Server exiting")
}
