package backend

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	applog "expensetracker/internal/log"
	"expensetracker/internal/memory"
	"expensetracker/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
	// dialEvents is swapped in tests.
	dialEvents func(url, exchange, queue string) (*amqp.Client, error)
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger:     logger.WithComponent(applog.ComponentBackend),
		dialEvents: amqp.NewClient,
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store   Backend
		closers []func() error
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		closers = append(closers, repo.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	events, err := f.createEvents(ctx, config)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	if events != nil {
		closers = append([]func() error{events.Close}, closers...)
	}

	return &BackendResult{
		Backend: store,
		Events:  events,
		Cleanup: func() error { return closeAll(closers) },
	}, nil
}

func (f *DefaultFactory) createEvents(ctx context.Context, config Config) (*amqp.Client, error) {
	if config.AMQPURL == "" {
		f.logger.InfoContext(ctx, "AMQP not configured, expense events disabled")
		return nil, nil
	}
	client, err := f.dialEvents(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		if config.RequireEvents {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		return nil, nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client, nil
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, c := range closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
