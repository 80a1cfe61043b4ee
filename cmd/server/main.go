package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/resilink/disruption-engine/internal/cache"
	"github.com/resilink/disruption-engine/internal/config"
	"github.com/resilink/disruption-engine/internal/database"
	"github.com/resilink/disruption-engine/internal/handlers"
	"github.com/resilink/disruption-engine/internal/metrics"
	"github.com/resilink/disruption-engine/internal/narrative"
	"github.com/resilink/disruption-engine/internal/scenario"
	"github.com/resilink/disruption-engine/internal/simulation"
	"github.com/resilink/disruption-engine/internal/strategy"
)

const (
	serviceName = "disruption-engine"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)
	logger.Info("Starting Disruption Engine Service",
		"service", serviceName,
		"version", version,
		"environment", cfg.Environment)

	// Database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := database.RunMigrations(cfg.Database); err != nil {
		logger.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	scenarioRepo := database.NewScenarioRepository(db, logger)
	facilityRepo := database.NewFacilityRepository(db, logger)

	// Scenario read path, optionally cached
	var scenarioRead handlers.ScenarioReader = scenarioRepo
	if cfg.Redis.Enabled {
		redisClient := cache.NewClient(cfg.Redis)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unavailable, serving scenario reads from database", "error", err)
		} else {
			scenarioRead = cache.NewScenarioCache(scenarioRepo, redisClient, cfg.Redis.TTL, logger)
			defer redisClient.Close()
		}
	}

	// Narrative enrichment
	var narrativeGen narrative.Generator = narrative.Disabled{}
	if cfg.Narrative.Enabled {
		narrativeGen = narrative.NewHTTPClient(cfg.Narrative, logger)
		logger.Info("Narrative enrichment enabled", "model", cfg.Narrative.Model)
	}

	// Pipeline components
	generator := scenario.NewGenerator(logger, narrativeGen)
	simulator := simulation.NewSimulator(cfg.Simulation, logger)
	optimizer := strategy.NewOptimizer(cfg.Optimizer, logger)

	// Metrics
	collector := metrics.NewCollector()

	// HTTP surface
	httpHandlers := handlers.NewHTTPHandler(
		cfg,
		logger,
		scenarioRepo,
		scenarioRead,
		facilityRepo,
		generator,
		simulator,
		optimizer,
		collector,
	)

	router := mux.NewRouter()
	router.Use(handlers.CorrelationMiddleware)
	router.Use(handlers.LoggingMiddleware(logger))
	router.Use(handlers.MetricsMiddleware(collector))
	httpHandlers.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "port", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig)
	case err := <-errChan:
		logger.Error("HTTP server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown HTTP server gracefully", "error", err)
	}

	logger.Info("Service shutdown complete")
}

// setupLogging configures structured logging.
func setupLogging(cfg config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	switch cfg.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	handlerOptions := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: cfg.Logging.IncludeSource,
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" || cfg.Environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, handlerOptions)
	} else {
		handler = slog.NewTextHandler(os.Stdout, handlerOptions)
	}

	logger := slog.New(handler).With(
		"service", serviceName,
		"version", version,
		"environment", cfg.Environment,
	)

	slog.SetDefault(logger)
	return logger
}
