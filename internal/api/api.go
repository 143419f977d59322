// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/api/handlers"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/api/middleware"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/insight"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Dashboard        *service.DashboardService
	Session          *service.Session
	Insights         *insight.Coordinator
	DefaultStartDate string
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
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
		if services.Dashboard != nil {
			dashboardHandler := handlers.NewDashboardHandler(services.Dashboard, services.DefaultStartDate)
			dashboardGroup := apiGroup.Group("/dashboard")
			{
				dashboardGroup.GET("", dashboardHandler.GetDashboard)
				dashboardGroup.GET("/stats", dashboardHandler.GetStats)
				dashboardGroup.GET("/rankings", dashboardHandler.GetRankings)
				dashboardGroup.GET("/stock", dashboardHandler.GetStock)
			}
		}

		if services.Session != nil {
			sessionHandler := handlers.NewSessionHandler(services.Session, services.Insights)
			apiGroup.GET("/insights", sessionHandler.GetInsights)

			sessionGroup := apiGroup.Group("/session")
			{
				sessionGroup.GET("", sessionHandler.GetSession)
				sessionGroup.PUT("/view", sessionHandler.SetView)
				sessionGroup.PUT("/date_range", sessionHandler.SetDateRange)
				sessionGroup.PUT("/device", sessionHandler.SetDevice)
				sessionGroup.POST("/refresh", sessionHandler.Refresh)
			}
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
