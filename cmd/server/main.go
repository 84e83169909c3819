// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/tomtom215/cinematch/internal/api"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
	"github.com/tomtom215/cinematch/internal/supervisor"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Bool("in_memory", cfg.Data.InMemory).
		Msg("Starting Cinematch with supervisor tree")

	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS is configured with wildcard origin (CORS_ORIGINS=*)")
	}
	if cfg.API.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	if err := seedStore(ctx, cfg, store); err != nil {
		// Fatal skips deferred calls, so close the store first
		if closeErr := store.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing store")
		}
		logging.Fatal().Err(err).Msg("Failed to seed store")
	}

	engine, err := recommend.NewEngine(cfg.ToEngineConfig(), logging.WithComponent("recommend"))
	if err != nil {
		if closeErr := store.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing store")
		}
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	engine.SetDataSource(store)

	// sutureslog needs a slog.Logger; route it through zerolog
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	refit := services.NewRefitService(engine, store, services.RefitConfig{
		FitOnStartup:       cfg.Recommend.FitOnStartup,
		Interval:           cfg.Recommend.FitInterval,
		Timeout:            cfg.Recommend.FitTimeout,
		HistoryLimit:       cfg.Recommend.FitHistory,
		ManualInterval:     cfg.Recommend.ManualFitInterval,
		BreakerMaxFailures: cfg.Recommend.Breaker.MaxFailures,
		BreakerTimeout:     cfg.Recommend.Breaker.OpenTimeout,
	}, logging.WithComponent("refit"))
	tree.AddDataService(refit)

	// In-memory badger has no value log to collect
	if !cfg.Data.InMemory && cfg.Data.GCInterval > 0 {
		tree.AddDataService(services.NewStoreMaintenanceService(
			store, cfg.Data.GCInterval, cfg.Data.GCDiscardRatio, logging.WithComponent("store-maintenance")))
	}

	handler := api.NewHandler(engine, store, refit, api.HandlerOptions{Version: version})
	router := api.NewRouter(handler, api.NewMiddleware(middlewareConfig(cfg)))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

func middlewareConfig(cfg *config.Config) *api.MiddlewareConfig {
	mw := api.DefaultMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.API.CORSOrigins
	mw.RateLimitRequests = cfg.API.RateLimitRequests
	mw.RateLimitWindow = cfg.API.RateLimitWindow
	mw.RateLimitDisabled = cfg.API.RateLimitDisabled
	mw.MaxBodyBytes = cfg.API.MaxBodyBytes
	return mw
}

// openStore opens the badger store described by the data section.
func openStore(cfg *config.Config) (*storage.Store, error) {
	return storage.Open(storage.Options{
		Dir:      cfg.Data.BadgerDir,
		InMemory: cfg.Data.InMemory,
	}, logging.WithComponent("storage"))
}
