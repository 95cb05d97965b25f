package main

import (
	"context"
	"errors"
	"time"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	memsheet "expensetracker/internal/sheets/memory"
	"expensetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	if err != nil {
		cli.Fatal(cli.SetupLogger("info", "text"), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting ledger-worker")

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	backendCfg.RequireEvents = true

	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}

	var exporter sheets.LedgerExporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			TabPrefix:       cfg.GoogleLedgerSheetPrefix,
		})
		if err != nil {
			_ = res.Cleanup()
			cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		// Without a spreadsheet the worker still consumes events and keeps
		// the ledgers in memory, which is useful for checking the pipeline.
		exporter = memsheet.New(cfg.GoogleLedgerSheetPrefix)
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, exporting to memory")
	}

	ledger := worker.NewLedgerWorker(res.Backend, res.Backend, exporter, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) error {
		return res.Cleanup()
	})

	if err := res.Events.ConsumeExpenseEvents(ctx, ledger.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		_ = res.Cleanup()
		cli.Fatal(logger, "Event consumption failed", err)
	}

	cli.WaitForShutdown(done)
}
