package backend

import (
	"context"
	"fmt"

	"moneytrack/internal/log"
	"moneytrack/internal/storage/memory"
	"moneytrack/internal/storage/postgres"
	"moneytrack/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		store, err := sqlite.Open(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &BackendResult{Store: store, Cleanup: store.Close}, nil

	case PostgresBackend:
		store, err := postgres.Open(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
		return &BackendResult{Store: store, Cleanup: store.Close}, nil

	case MemoryBackend:
		store := memory.New()
		f.logger.Warn("Initialized memory backend, data is lost on restart")
		return &BackendResult{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// Migrate implements Factory.Migrate. The memory backend has no schema.
func (f *DefaultFactory) Migrate(_ context.Context, config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	switch config.Type {
	case SQLiteBackend:
		if err := sqlite.RunMigrations(config.SQLiteDBPath); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	case PostgresBackend:
		if err := postgres.RunMigrations(config.DatabaseURL); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	case MemoryBackend:
		f.logger.Info("Memory backend has no migrations")
		return nil
	}
	f.logger.Info("Migrations applied", "backend", config.Type.String())
	return nil
}
