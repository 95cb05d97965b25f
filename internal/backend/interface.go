package backend

import (
	"context"

	"expensetracker/internal/amqp"
	"expensetracker/internal/ports"
)

// Backend is everything a storage implementation provides.
type Backend interface {
	ports.AccountStore
	ports.ExpenseStore
	ports.Pinger
}

// CleanupFunc releases resources held by a BackendResult.
type CleanupFunc func() error

// BackendResult holds the store, the optional event client and a cleanup
// function that closes both.
type BackendResult struct {
	Backend Backend
	// Events is nil when AMQP is not configured or unreachable.
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP; an empty URL disables events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// RequireEvents turns an AMQP connection failure into an error instead
	// of a warning.
	RequireEvents bool
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
