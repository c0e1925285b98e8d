package backend

import (
	"context"
	"fmt"

	"compactbudget/internal/log"
	"compactbudget/internal/statefile"
	"compactbudget/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*StoreResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileBackend:
		return f.createFileStore(config)
	case SQLiteBackend:
		return f.createSQLiteStore(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileStore(config Config) (*StoreResult, error) {
	store, err := statefile.NewStore(config.StateFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state file store: %w", err)
	}

	f.logger.Info("Initialized file backend", log.FieldPath, config.StateFilePath)

	return &StoreResult{
		Store:   store,
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (*StoreResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", log.FieldPath, config.SQLiteDBPath)

	return &StoreResult{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}
