package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig((*config.Config).Validate)
	if err != nil {
		cli.Fatal(cli.SetupLogger("info", "text"), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}

	var publisher services.EventPublisher
	if res.Events != nil {
		publisher = res.Events
	} else if cfg.EventsEnabled() {
		logger.Warn("AMQP configured but unavailable, expense events disabled")
	}

	sessions := session.NewStore(session.Config{
		MaxSessions:  cfg.SessionMax,
		IdleTimeout:  cfg.SessionIdleTimeout,
		SecureCookie: cfg.CookieSecure,
	}, logger)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Accounts:           services.NewAccountService(res.Backend, logger),
		Expenses:           services.NewExpenseService(res.Backend, publisher, logger),
		Sessions:           sessions,
		Health:             res.Backend,
		Logger:             logger,
		Currency:           cfg.Currency,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to build HTTP server", err)
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) error {
		err := srv.Shutdown(ctx)
		sessions.Stop()
		return errors.Join(err, res.Cleanup())
	})

	logger.Info("Starting expense tracker",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", res.Events != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	cli.WaitForShutdown(done)
	logger.Info("Server stopped gracefully")
}
