// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/partwise/internal/api"
	"github.com/tomtom215/partwise/internal/config"
	"github.com/tomtom215/partwise/internal/database"
	"github.com/tomtom215/partwise/internal/eventprocessor"
	"github.com/tomtom215/partwise/internal/logging"
	"github.com/tomtom215/partwise/internal/recommend"
	"github.com/tomtom215/partwise/internal/supervisor"
	"github.com/tomtom215/partwise/internal/supervisor/services"
)

// checkpointInterval is how often a file-backed DuckDB is checkpointed.
const checkpointInterval = 15 * time.Minute

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

//nolint:gocyclo // sequential wiring
func run() error {
	cfg, err := config.Load()
	if err != nil {
		// logging still has its defaults here
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("db_path", cfg.Database.Path).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("ingest_enabled", cfg.Ingest.Enabled).
		Msg("Starting Partwise")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Storage ===

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.Seed {
		seeded, err := db.SeedCatalog(ctx)
		if err != nil {
			return err
		}
		if seeded {
			logging.Info().Msg("Demo catalog loaded into empty database")
		}
	}

	cacheStore, err := initCache(ctx, &cfg.Cache)
	if err != nil {
		return err
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache store")
		}
	}()

	// === Engine ===

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	resultCache := recommend.NewStoreCache(cacheStore.store, cfg.BreakerConfig(), time.Now, logging.WithComponent("cache"))
	engine, err := recommend.NewEngine(engineCfg, db, db, logging.WithComponent("recommend"),
		recommend.WithCache(resultCache),
		recommend.WithUserDirectory(db),
	)
	if err != nil {
		return err
	}

	// === Ingestion ===

	var (
		ingestor  *eventprocessor.Ingestor
		publisher api.EventPublisher
	)
	if cfg.Ingest.Enabled {
		ingestor, err = eventprocessor.NewIngestor(&cfg.Ingest, db, logging.NewWatermillLogger("ingest"))
		if err != nil {
			return err
		}
		defer func() {
			if err := ingestor.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event transport")
			}
		}()
		publisher = ingestor.Publisher()
	} else {
		logging.Warn().Msg("Event ingestion disabled; POST /api/v1/events will return 503")
	}

	// === HTTP ===

	handler := api.NewHandler(engine, publisher, engineCfg.DefaultLimit)
	handler.AddHealthCheck("database", db)
	if cacheStore.health != nil {
		handler.AddHealthCheck("cache", cacheStore.health)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, api.MiddlewareConfigFromServer(&cfg.Server)),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * cfg.Server.WriteTimeout,
	}

	// === Supervision ===

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + time.Second,
	})

	if cacheStore.maintenance != nil {
		tree.AddDataService(cacheStore.maintenance)
	}
	if cfg.Database.Path != "" && cfg.Database.Path != ":memory:" {
		tree.AddDataService(services.NewPeriodicService(db.Checkpoint, services.PeriodicConfig{
			Name:     "duckdb-checkpoint",
			Interval: checkpointInterval,
			Timeout:  time.Minute,
		}, logging.WithComponent("supervisor")))
	}
	if ingestor != nil {
		tree.AddIngestService(services.NewIngestService(ingestor, 30*time.Second))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	err = <-tree.ServeBackground(ctx)

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Partwise stopped")
	return nil
}
