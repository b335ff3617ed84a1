package backend

import (
	"context"

	"fintracker/internal/services"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the ledger service built for a backend plus its cleanup.
type Result struct {
	Service *services.LedgerService
	Cleanup CleanupFunc
}

// Factory creates ledger backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// jsonfile specific
	LedgerPath string

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Type identifies a ledger storage backend.
type Type string

const (
	MemoryBackend   Type = "memory"
	JSONFileBackend Type = "jsonfile"
	SQLiteBackend   Type = "sqlite"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid reports whether the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, JSONFileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
