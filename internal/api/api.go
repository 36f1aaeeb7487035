// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/leplonghi/horamed-sub006/internal/api/handlers"
	"github.com/leplonghi/horamed-sub006/internal/api/middleware"
	"github.com/leplonghi/horamed-sub006/internal/service"
)

type Services struct {
	DoseService     *service.DoseService
	StockService    *service.StockService
	ProgressService *service.ProgressService
}

func NewRouter(services *Services, allowedOrigins []string, requestTimeout time.Duration) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Timeout(requestTimeout))
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.DoseService != nil {
			doseHandler := handlers.NewDoseHandler(services.DoseService)
			doseGroup := apiGroup.Group("/users/:user_id/doses/:dose_id")
			{
				doseGroup.POST("/take", doseHandler.Take)
				doseGroup.POST("/skip", doseHandler.Skip)
			}
		}

		if services.StockService != nil {
			stockHandler := handlers.NewStockHandler(services.StockService)
			stockGroup := apiGroup.Group("/items/:item_id/stock")
			{
				stockGroup.PUT("", stockHandler.SetUnits)
				stockGroup.POST("/decrement", stockHandler.Decrement)
				stockGroup.POST("/recalculate", stockHandler.Recalculate)
			}
		}

		if services.ProgressService != nil {
			progressHandler := handlers.NewProgressHandler(services.ProgressService)
			apiGroup.GET("/users/:user_id/progress", progressHandler.Get)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, strings.TrimRight(trimmed, "/"))
		}
	}
	return parsed, allowAll
}
