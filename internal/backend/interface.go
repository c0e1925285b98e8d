package backend

import (
	"context"

	"compactbudget/internal/core"
)

// StateStore loads and saves whole budget states keyed by month. Saves are
// idempotent full-state writes; loading an absent or unreadable month yields
// the default empty state, never an error a caller must branch on.
type StateStore interface {
	LoadState(ctx context.Context, monthKey string) (core.State, error)
	SaveState(ctx context.Context, monthKey string, st core.State) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// StoreResult contains the store instance and optional cleanup function
type StoreResult struct {
	Store   StateStore
	Cleanup CleanupFunc
}

// Factory creates state stores based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
}

// Config holds configuration for store creation
type Config struct {
	Type BackendType

	// File specific
	StateFilePath string

	// SQLite specific
	SQLiteDBPath string
}

// BackendType represents the type of state store backend
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
