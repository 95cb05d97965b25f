// Package cli holds the start-up and shutdown steps shared by
// cmd/expensetracker and cmd/ledger-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(level, format string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Format:    format,
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development; a missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and runs validate on it
// (Config.Validate or Config.ValidateWorker).
func LoadAndValidateConfig(validate func(*config.Config) error) (*config.Config, error) {
	cfg := config.Load()
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Fatal logs err and exits with status 1.
func Fatal(logger *applog.Logger, msg string, err error) {
	logger.Error(msg, applog.FieldError, err)
	os.Exit(1)
}

// GracefulShutdown returns a context cancelled on SIGINT/SIGTERM. When the
// signal arrives cleanup runs with a context bounded by timeout.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context) error) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer close(done)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			if err := runCleanup(shutdownCtx, cleanup); err != nil {
				logger.Warn("Shutdown finished with errors", applog.FieldError, err)
				return
			}
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

func runCleanup(ctx context.Context, cleanup func(context.Context) error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- cleanup(ctx) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout reached: %w", ctx.Err())
	}
}

// WaitForShutdown blocks until shutdown has finished.
func WaitForShutdown(done <-chan struct{}) {
	<-done
}
