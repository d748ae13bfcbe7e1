// Package main provides the knwld HTTP server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/knwl-ai/knwld/internal/config"
	"github.com/knwl-ai/knwld/internal/db"
	"github.com/knwl-ai/knwld/internal/httpapi"
	"github.com/knwl-ai/knwld/internal/jobs"
	"github.com/knwl-ai/knwld/internal/knwl"
	"github.com/knwl-ai/knwld/internal/llm"
	"github.com/knwl-ai/knwld/internal/metrics"
	"github.com/knwl-ai/knwld/internal/service"
)

const version = "0.1.0"

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg := config.Load()

	logger := config.NewLogger("knwld", cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("knwld starting",
		"version", version,
		"port", cfg.HTTPPort,
		"surrealdb_url", cfg.SurrealDBURL,
		"llm_provider", cfg.LLMProvider,
		"embed_provider", cfg.EmbedProvider,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = dbClient.Close(context.Background())
	}()

	if *wipeDB || os.Getenv("KNWL_WIPE_DB") == "true" {
		if err := dbClient.WipeData(ctx); err != nil {
			logger.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
		logger.Warn("database wiped")
	}

	if err := dbClient.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	svc, stats, err := buildService(cfg, dbClient, logger)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		os.Exit(1)
	}

	srv := httpapi.New(svc, version, logger, httpapi.WithStats(stats))
	if err := srv.Run(ctx, cfg.HTTPPort); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// buildService wires the graph engine, job store and service layer.
func buildService(cfg config.Config, dbClient *db.Client, logger *slog.Logger) (*service.Service, *metrics.Collector, error) {
	stats := metrics.NewCollector()

	opts := []knwl.EngineOption{knwl.WithMetrics(stats)}

	model, err := llm.NewModel(cfg)
	if err != nil {
		return nil, nil, err
	}
	if model != nil {
		opts = append(opts, knwl.WithModel(model))
		logger.Info("language model initialized", "provider", cfg.LLMProvider, "model", cfg.LLMModel)
	} else {
		logger.Warn("no language model configured, synthesis and extraction disabled")
	}

	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}
	if embedder != nil {
		opts = append(opts, knwl.WithEmbedder(embedder))
		logger.Info("embedder initialized", "provider", cfg.EmbedProvider, "model", embedder.Model())
	} else {
		logger.Warn("no embedder configured, vector search disabled")
	}

	engine := knwl.NewEngine(dbClient, logger, opts...)

	var store jobs.Store
	if cfg.JobStore == "surreal" {
		store = jobs.NewSurrealStore(dbClient)
		logger.Info("using durable job store")
	} else {
		store = jobs.NewMemoryStore()
	}

	return service.New(engine, store, logger), stats, nil
}
