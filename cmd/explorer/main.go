package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go-data-explorer/internal/api"
	"go-data-explorer/internal/config"
	"go-data-explorer/internal/infrastructure"
	"go-data-explorer/internal/model"
	"go-data-explorer/internal/pipeline"
	"go-data-explorer/internal/store"
	"go-data-explorer/pkg/router"
	"go-data-explorer/pkg/utils"
)

// @title Data Explorer API
// @version 1.0
// @description Load the heart-study dataset, inspect missing values, apply imputation strategies, export and chart the result.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	// Init DB
	if err := os.MkdirAll(filepath.Dir(cfg.Export.SQLitePath), 0755); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := store.InitDB(cfg.Export.SQLitePath); err != nil {
		logger.Error("failed to open database", slog.String("path", cfg.Export.SQLitePath), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	outputs := utils.NewOutputManager(cfg.Export.Dir)
	if err := outputs.EnsureOutputDirExists(); err != nil {
		logger.Error("failed to create export directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metrics := infrastructure.NewMetrics()

	schema := model.HeartStudySchema
	if cfg.Data.Generic {
		schema = nil
	}
	loader := pipeline.NewLoader(schema, logger)
	loader.Client.Timeout = cfg.Data.FetchTimeout
	loader.Retry.MaxRetries = cfg.Data.MaxRetries

	processor := pipeline.NewProcessor(loader, model.Source{URL: cfg.Data.Source},
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(logger),
	)
	exporter := pipeline.NewExportManager(logger)
	exporter.OnDone = metrics.ObserveExport

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view, err := processor.Load(ctx)
	if err != nil {
		logger.Error("initial load aborted", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("dataset ready",
		slog.String("source", cfg.Data.Source),
		slog.Int("rows", view.Stats.TotalRows),
		slog.Int("columns", view.Stats.TotalColumns),
	)

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r, api.Deps{
		Processor: processor,
		Exporter:  exporter,
		Outputs:   outputs,
		Metrics:   metrics,
		Logger:    logger,
	})

	// Start server
	if err := r.Start(ctx, cfg.Server.Addr(), router.ServerOptions{
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
