// Package main provides the knwl MCP server on stdio transport.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/knwl-ai/knwld/internal/config"
	"github.com/knwl-ai/knwld/internal/db"
	"github.com/knwl-ai/knwld/internal/jobs"
	"github.com/knwl-ai/knwld/internal/knwl"
	"github.com/knwl-ai/knwld/internal/llm"
	"github.com/knwl-ai/knwld/internal/server"
	"github.com/knwl-ai/knwld/internal/service"
	"github.com/knwl-ai/knwld/internal/tools"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// Dual output: stderr text + file JSON. Stdout carries the MCP
	// protocol and must stay clean.
	logger, cleanup := config.SetupLogger("knwl-mcp", cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("knwl-mcp starting",
		"version", version,
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

	if err := dbClient.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	svc, err := buildService(cfg, dbClient, logger)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		os.Exit(1)
	}

	srv := server.New(version, logger)

	deps := &tools.Dependencies{
		Service: svc,
		Logger:  logger,
	}
	tools.RegisterAll(srv.MCPServer(), deps, version)
	logger.Info("tools registered", "count", 10)

	logger.Info("server ready, awaiting connections")

	// Blocks until disconnect or context cancelled.
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	// Let in-flight jobs settle before dropping the DB connection.
	svc.Drain()
	logger.Info("shutdown complete")
}

// buildService wires the graph engine, job store and service layer.
func buildService(cfg config.Config, dbClient *db.Client, logger *slog.Logger) (*service.Service, error) {
	var opts []knwl.EngineOption

	model, err := llm.NewModel(cfg)
	if err != nil {
		return nil, err
	}
	if model != nil {
		opts = append(opts, knwl.WithModel(model))
	} else {
		logger.Warn("no language model configured, synthesis and extraction disabled")
	}

	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	if embedder != nil {
		opts = append(opts, knwl.WithEmbedder(embedder))
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

	return service.New(engine, store, logger), nil
}
