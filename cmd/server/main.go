// backend-go/cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/api"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/cache"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/config"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/insight"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/mockdata"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/repository"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/service"
	"github.com/andresuchdata/logistics-dash/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Configure(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize data source")
	}
	defer closeRepo()

	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Dashboard cache unavailable, continuing without it")
		dashboardCache = cache.NewNoopDashboardCache()
	}

	// Initialize services
	dashboardService := service.NewDashboardService(repo, dashboardCache, cfg.Dashboard.TopN)
	coordinator := insight.NewCoordinator(newRequester(ctx, cfg.Insight))
	session := service.NewSession(dashboardService, coordinator, cfg.Dashboard.DefaultStartDate)

	if _, err := session.Dashboard(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("Initial dashboard computation failed")
	}

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		Dashboard:        dashboardService,
		Session:          session,
		Insights:         coordinator,
		DefaultStartDate: cfg.Dashboard.DefaultStartDate,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("data_source", cfg.App.DataSource).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func openRepository(cfg *config.Config) (repository.OrderRepository, func(), error) {
	switch cfg.App.DataSource {
	case config.DataSourceMock, "":
		gen := mockdata.New(cfg.App.MockSeed)
		orders := gen.Orders(cfg.App.MockOrderCount, time.Now())
		logger.Log.Info().Int("orders", len(orders)).Msg("Using generated mock data")
		return repository.NewMemoryRepository(orders, gen.Stock()), func() {}, nil
	case config.DataSourcePostgres:
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewOrderRepository(db), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown data source %q", cfg.App.DataSource)
	}
}

func newRequester(ctx context.Context, cfg config.InsightConfig) *insight.Requester {
	var gen insight.Generator
	if cfg.Enabled && cfg.APIKey != "" {
		gemini, err := insight.NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Insight generator unavailable, serving fallback text")
		} else {
			gen = gemini
		}
	} else {
		logger.Log.Info().Msg("Insights disabled or no API key configured")
	}
	return insight.NewRequester(gen, cfg.FallbackText, cfg.RatePerMinute)
}
