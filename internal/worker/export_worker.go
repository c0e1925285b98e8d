package worker

import (
	"context"
	"fmt"
	"time"

	"compactbudget/internal/amqp"
	"compactbudget/internal/backend"
	"compactbudget/internal/core"
	"compactbudget/internal/export"
	"compactbudget/internal/log"
)

// ExportWorker mirrors budget snapshots to an external writer. It reacts to
// AMQP export messages and also re-exports on a timer so a missed message
// only delays a mirror update instead of losing it.
type ExportWorker struct {
	store  backend.StateStore
	writer export.SnapshotWriter
	policy core.DebtPolicy
	now    func() time.Time
	logger *log.Logger
}

func NewExportWorker(store backend.StateStore, writer export.SnapshotWriter, policy core.DebtPolicy, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		store:  store,
		writer: writer,
		policy: policy,
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleExportMessage processes one AMQP export request. The message only
// names the month; the worker always exports the state as stored right now,
// so stale or duplicated messages are harmless.
func (w *ExportWorker) HandleExportMessage(msg *amqp.SnapshotExportMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return w.exportMonth(ctx, msg.MonthKey)
}

// ExportCurrentMonth exports the month the clock currently falls in.
func (w *ExportWorker) ExportCurrentMonth(ctx context.Context) error {
	return w.exportMonth(ctx, w.now().Format(core.MonthKeyLayout))
}

func (w *ExportWorker) exportMonth(ctx context.Context, monthKey string) error {
	st, err := w.store.LoadState(ctx, monthKey)
	if err != nil {
		return fmt.Errorf("load state for %s: %w", monthKey, err)
	}

	snap := export.BuildSnapshot(monthKey, st, w.policy, w.now())
	if err := w.writer.WriteSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("write snapshot for %s: %w", monthKey, err)
	}

	w.logger.InfoContext(ctx, "Snapshot exported",
		log.FieldMonthKey, monthKey,
		"categories", len(snap.Categories),
		"expenses", len(snap.Expenses))
	return nil
}

// Run consumes export tickers until the context is cancelled. AMQP
// consumption is wired separately by the entrypoint so the worker stays
// usable without a broker.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ExportCurrentMonth(ctx); err != nil {
				w.logger.WarnContext(ctx, "Periodic export failed", log.FieldError, err)
			}
		}
	}
}
