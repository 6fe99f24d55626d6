package main

import (
	"context"
	"errors"
	"os"

	"gagyebu/internal/backend"
	"gagyebu/internal/cli"
	"gagyebu/internal/ledger"
	applog "gagyebu/internal/log"
	"gagyebu/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentWorker)
	logger.Info("Starting gagyebu-worker")

	cfg := cli.LoadSharedConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	mirror, err := backend.NewFactory(logger.Logger).CreateMirror(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize mirror", "error", err)
		os.Exit(1)
	}
	if cfg.MirrorEnabled() {
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	}

	client, err := cli.OpenAMQP(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	repo := ledger.NewRepository(store.Store)
	w := worker.NewMirrorWorker(repo, mirror)

	runCtx, done := cli.GracefulShutdown(logger, cli.ShutdownTimeout, nil)

	// Catch up on anything published while the worker was down.
	logger.Info("Performing startup resync")
	if err := w.ResyncAll(runCtx); err != nil {
		logger.Error("Startup resync incomplete", "error", err)
	}

	if err := client.ConsumeBucketChanged(runCtx, w.HandleBucketChanged); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker stopped gracefully")
}
