// Package main is the entry point for the peopledesk list API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/klauspost/compress/gzhttp"

	"peopledesk/internal/app"
	"peopledesk/internal/config"
	"peopledesk/internal/export"
	v1 "peopledesk/internal/infrastructure/http/v1"
	"peopledesk/internal/infrastructure/http/v1/middleware"
	"peopledesk/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
		Fields:      map[string]any{"service": cfg.Telemetry.ServiceName, "version": version},
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting peopledesk server", "version", version, "env", cfg.AppEnv)

	// --- Tracing ---
	shutdownTracing, err := app.SetupTracing(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatalw("failed to set up tracing", "error", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warnw("tracing shutdown failed", "error", err)
		}
	}()

	// --- Screens ---
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize screens", "error", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Warnw("failed to close sources", "error", err)
		}
	}()

	var metrics *middleware.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = middleware.NewMetrics()
		application.Service.Hooks().OnAfterLoad(metrics.RecordsHook())
	}

	go func() {
		if err := application.Service.Warm(ctx); err != nil {
			log.Warnw("some screens failed to preload", "error", err)
			return
		}
		log.Infow("screens preloaded", "count", len(application.Service.Screens()))
	}()

	go func() {
		if err := application.WatchData(ctx); err != nil {
			log.Errorw("data watcher stopped", "error", err)
		}
	}()

	// --- Router ---
	router, err := v1.NewRouter(v1.RouterConfig{
		Service:     application.Service,
		Logger:      log,
		Formatter:   export.NewFormatter(cfg.List.Currency),
		CORSOrigins: cfg.HTTP.CORSOrigins,
		RateLimit:   cfg.HTTP.RateLimit,
		Metrics:     metrics,
		Version:     version,
	})
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler:      gzhttp.GzipHandler(router),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  2 * cfg.HTTP.ReadTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("server failed", "error", err)
			stop()
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
