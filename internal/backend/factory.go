package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintracker/internal/amqp"
	"fintracker/internal/ledger"
	"fintracker/internal/ledger/jsonfile"
	"fintracker/internal/ledger/memory"
	"fintracker/internal/services"
	"fintracker/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend()
	case JSONFileBackend:
		return f.createJSONFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	store := memory.New()
	service := services.NewLedgerService(store, nil)

	f.logger.Info("Initialized memory backend")

	return &Result{
		Service: service,
		Cleanup: service.Close,
	}, nil
}

func (f *DefaultFactory) createJSONFileBackend(config Config) (*Result, error) {
	store, err := jsonfile.Open(config.LedgerPath)
	if err != nil {
		// A corrupt ledger file still yields a usable empty store. Surface
		// the problem loudly but keep serving.
		if !errors.Is(err, ledger.ErrCorruptLedger) {
			return nil, fmt.Errorf("failed to open ledger file: %w", err)
		}
		f.logger.Warn("Ledger file is corrupt, starting from an empty ledger",
			"path", config.LedgerPath,
			"error", err)
	}

	service := services.NewLedgerService(store, nil)

	f.logger.Info("Initialized jsonfile backend", "path", config.LedgerPath)

	return &Result{
		Service: service,
		Cleanup: service.Close,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP client is optional; without it mutations are simply not mirrored.
	var publisher services.Publisher
	if config.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			publisher = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	service := services.NewLedgerService(sqliteRepo, publisher)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &Result{
		Service: service,
		Cleanup: service.Close,
	}, nil
}
