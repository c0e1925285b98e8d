package statefile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"compactbudget/internal/core"
)

// Store persists a single current budget state as one JSON document. The
// month key is accepted for interface compatibility but the file always
// holds the latest state; rollover keeps it meaningful across months.
//
// Writes go through a temp file and rename so readers never observe a
// partial document. An unreadable or corrupt file is treated as absent
// data: Load returns the default empty state instead of failing.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates the data directory if needed and returns a store bound
// to the given file path.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// LoadState reads the persisted state. Missing or malformed files yield the
// default state for the requested month, so a fresh store never looks like
// a stale month to the caller's rollover check.
func (s *Store) LoadState(ctx context.Context, monthKey string) (core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := core.MonthKeyTime(monthKey)
	data, err := os.ReadFile(s.path)
	if err != nil {
		return core.DefaultState(ref), nil
	}

	var st core.State
	if err := json.Unmarshal(data, &st); err != nil {
		return core.DefaultState(ref), nil
	}
	st.Normalize(ref)
	return st, nil
}

// SaveState replaces the persisted document wholesale.
func (s *Store) SaveState(ctx context.Context, monthKey string, st core.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
