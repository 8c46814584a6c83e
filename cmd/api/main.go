// Package main is the entry point for the firstlight API server.
//
// It loads configuration, wires the upstream provider clients, caches,
// scoring engine, and warmup scheduler into the forecast service, mounts
// the HTTP chassis, and serves until an OS signal (SIGINT, SIGTERM)
// triggers a graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firstlight/internal/api"
	"firstlight/internal/cache"
	"firstlight/internal/config"
	"firstlight/internal/forecast"
	"firstlight/internal/metrics"
	"firstlight/internal/points"
	"firstlight/internal/scheduler"
	"firstlight/internal/scoring"
	"firstlight/internal/types"
	"firstlight/internal/upstream"
)

// staleRetention is how long the document store keeps payloads past
// freshness for degraded serving. Beyond a day even the daily sunrise
// tables stop being useful.
const staleRetention = 24 * time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit
// on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("firstlight API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	clock := types.RealClock{}
	collector := metrics.NewCollector()

	// Upstream provider clients share one HTTP client and retry posture.
	httpClient := &http.Client{Timeout: cfg.Upstream.RequestTimeout}
	retry := upstream.RetryPolicy{
		MaxRetries: cfg.Upstream.MaxRetries,
		MinWait:    cfg.Upstream.RetryMinWait,
		MaxWait:    cfg.Upstream.RetryMaxWait,
	}

	openWeather := upstream.NewOpenWeatherClient(httpClient, upstream.OpenWeatherConfig{
		APIKey:  cfg.Upstream.OpenWeatherAPIKey,
		BaseURL: cfg.Upstream.OpenWeatherBaseURL,
		Logger:  logger,
		Clock:   clock,
	}, retry)

	openMeteo := upstream.NewOpenMeteoClient(httpClient, upstream.OpenMeteoConfig{
		BaseURL: cfg.Upstream.OpenMeteoBaseURL,
		AirURL:  cfg.Upstream.OpenMeteoAirURL,
		Logger:  logger,
		Clock:   clock,
	}, retry)

	providers := map[types.ProviderName]types.ForecastProvider{
		openWeather.Name(): openWeather,
		openMeteo.Name():   openMeteo,
	}

	svc := forecast.NewService(
		providers,
		cache.NewStore(clock, staleRetention),
		cache.NewFlightGroup(fetchBudget(cfg.Upstream)),
		cache.NewPredictionCache(clock, cfg.Cache.PredictionTTL),
		points.NewCatalog(),
		scoring.NewEngine(),
		collector,
		cfg.Cache,
		logger,
		clock,
	)

	// Warmup scheduler. When disabled, the cron never starts and cache
	// priming happens only through the manual endpoint.
	sched := scheduler.NewCronScheduler(logger)
	if cfg.Warmup.Enabled {
		runner := scheduler.NewWarmupRunner(svc, sched, logger)
		if err := runner.Register(nil); err != nil {
			return fmt.Errorf("registering warmup triggers: %w", err)
		}
		sched.Start()
		logger.Info("warmup scheduler started")
	}

	srv, err := api.NewServer(cfg, svc, svc, collector.Handler(), logger, clock)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return serveHTTP(srv, sched, cfg, logger)
}

// serveHTTP runs the HTTP server until a shutdown signal or listener
// failure, then drains connections and scheduled jobs.
func serveHTTP(srv *api.Server, sched *scheduler.CronScheduler, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := sched.Stop(ctx); err != nil {
		logger.Error("scheduler shutdown error", "error", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// fetchBudget bounds one detached upstream fetch: every retry attempt at
// the full request timeout plus the maximum backoff between attempts.
func fetchBudget(cfg config.UpstreamConfig) time.Duration {
	attempts := time.Duration(cfg.MaxRetries + 1)
	return cfg.RequestTimeout*attempts + cfg.RetryMaxWait*time.Duration(cfg.MaxRetries)
}

// newLogger creates a structured slog.Logger configured for the given
// log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	})
	return slog.New(handler)
}
