package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduboost-lms/analytics-service/internal/auth"
	"github.com/eduboost-lms/analytics-service/internal/cache"
	"github.com/eduboost-lms/analytics-service/internal/config"
	"github.com/eduboost-lms/analytics-service/internal/events"
	"github.com/eduboost-lms/analytics-service/internal/handlers"
	"github.com/eduboost-lms/analytics-service/internal/repositories/postgres"
	"github.com/eduboost-lms/analytics-service/internal/services"
	"github.com/eduboost-lms/analytics-service/internal/utils"
	"github.com/eduboost-lms/analytics-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		// The analytics service recomputes on every request without a cache.
		logger.Warn("Redis unavailable, analytics caching disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, slogLogger)
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Warn("Failed to create event publisher, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(slogLogger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	repo := postgres.NewRepository(db)

	analyticsService := services.NewAnalyticsService(repo, cacheService, cfg.AnalyticsCacheTTL, publisher, slogLogger)
	// Summaries cached by a previous build may not match the current
	// aggregation shapes; drop them before serving.
	if err := analyticsService.InvalidateCache(context.Background()); err != nil {
		logger.Warn("Failed to invalidate analytics cache at startup", "error", err)
	}
	statsService := services.NewStatsService(repo, slogLogger)
	exportService := services.NewReportExportService(analyticsService, publisher, slogLogger)

	verifier := auth.NewCasdoorVerifier(cfg.Casdoor)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	validator := utils.NewValidator()
	handlerManager := handlers.NewHandlerManager(analyticsService, statsService, exportService, verifier, validator, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting analytics service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down analytics service")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
