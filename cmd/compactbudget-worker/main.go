package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"compactbudget/internal/amqp"
	"compactbudget/internal/backend"
	"compactbudget/internal/config"
	"compactbudget/internal/core"
	gsheet "compactbudget/internal/export/google"
	applog "compactbudget/internal/log"
	"compactbudget/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting compactbudget-worker")

	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	result, err := factory.CreateStore(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize state store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Store cleanup failed", "error", err)
		}
	}()

	// Google Sheets client is optional; without it the worker idles.
	var sheetsClient *gsheet.Client
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err = gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sheetsClient == nil {
		logger.Info("Skipping export operations - no Google Sheets client available")
		<-ctx.Done()
		logger.Info("Worker stopped")
		return
	}

	policy, err := core.ParseDebtPolicy(cfg.DebtPolicy)
	if err != nil {
		logger.Error("Invalid debt policy", "error", err)
		os.Exit(1)
	}

	exportWorker := worker.NewExportWorker(result.Store, sheetsClient, policy, logger)

	// Export the current month once on startup so a restart never leaves
	// the sheet behind the store.
	if err := exportWorker.ExportCurrentMonth(ctx); err != nil {
		logger.Error("Startup export failed", "error", err)
		// Don't exit - continue with normal operation
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeSnapshotExports(ctx, cfg.ExportBatchSize, exportWorker.HandleExportMessage)
	})
	g.Go(func() error {
		return exportWorker.Run(ctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
