// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/api/handlers"
	"github.com/andresuchdata/pharmastock/backend-go/internal/api/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Intelligence handlers.IntelligenceService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
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
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "pharmastock-intelligence"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Intelligence != nil {
		h := handlers.NewIntelligenceHandler(services.Intelligence)
		intel := apiGroup.Group("/intelligence")
		{
			intel.GET("/forecast/:drug", h.GetForecast)
			intel.GET("/forecast/:drug/backtest", h.GetBacktest)

			intel.GET("/reorder/suggestions", h.GetReorderSuggestions)
			intel.POST("/reorder/approve", h.ApproveSuggestion)

			intel.GET("/suppliers/ranking", h.GetSupplierRanking)
			intel.POST("/suppliers/select", h.SelectSupplier)

			intel.GET("/expiry", h.GetExpiryOverview)
			intel.GET("/expiry/:drug", h.GetExpiryRisk)

			intel.GET("/anomalies", h.GetAnomalies)
			intel.GET("/abc", h.GetABC)
			intel.GET("/turnover", h.GetTurnover)
			intel.GET("/stock-plans", h.GetStockPlans)
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
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
