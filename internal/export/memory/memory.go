package memory

import (
	"context"
	"sync"

	"compactbudget/internal/export"
)

// Writer is an in-memory SnapshotWriter. It records every snapshot it
// receives and keeps the latest per month, which is all tests need to
// assert on export behavior.
type Writer struct {
	mu        sync.Mutex
	snapshots []export.Snapshot
	latest    map[string]export.Snapshot
	failWith  error
}

var _ export.SnapshotWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{latest: make(map[string]export.Snapshot)}
}

// FailWith makes subsequent writes return the given error.
func (w *Writer) FailWith(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failWith = err
}

func (w *Writer) WriteSnapshot(ctx context.Context, snap export.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failWith != nil {
		return w.failWith
	}
	w.snapshots = append(w.snapshots, snap)
	w.latest[snap.MonthKey] = snap
	return nil
}

// Count returns how many snapshots were written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.snapshots)
}

// Latest returns the most recent snapshot for a month.
func (w *Writer) Latest(monthKey string) (export.Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap, ok := w.latest[monthKey]
	return snap, ok
}
