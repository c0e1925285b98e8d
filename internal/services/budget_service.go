package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"compactbudget/internal/backend"
	"compactbudget/internal/core"
	"compactbudget/internal/log"
)

// Publisher is the outbound port for post-mutation export notifications.
// *amqp.Client satisfies it.
type Publisher interface {
	PublishSnapshotExport(ctx context.Context, monthKey string, version int64) error
}

// BudgetService orchestrates budget operations over a StateStore: every
// command loads the state, applies the month rollover, mutates, saves the
// whole state back, then notifies the export pipeline best-effort. A
// mutex serializes commands so read-modify-write cycles never interleave.
type BudgetService struct {
	mu        sync.Mutex
	store     backend.StateStore
	publisher Publisher
	policy    core.DebtPolicy
	strict    bool
	now       func() time.Time
	version   int64
	logger    *log.Logger
}

type Options struct {
	Policy           core.DebtPolicy
	StrictCategories bool
	Publisher        Publisher
	Now              func() time.Time
	Logger           *log.Logger
}

func NewBudgetService(store backend.StateStore, opts Options) *BudgetService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy == "" {
		opts.Policy = core.DebtPolicyMax
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	return &BudgetService{
		store:     store,
		publisher: opts.Publisher,
		policy:    opts.Policy,
		strict:    opts.StrictCategories,
		now:       opts.Now,
		logger:    opts.Logger.WithComponent(log.ComponentBudget),
	}
}

// MonthKey formats the storage key for a point in time.
func MonthKey(t time.Time) string {
	return t.Format(core.MonthKeyLayout)
}

// Load returns the current state with the month rollover applied and
// persisted. Callers get a copy; the live state never escapes the service.
func (s *BudgetService) Load(ctx context.Context) (core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, _, err := s.loadLocked(ctx)
	if err != nil {
		return core.State{}, err
	}
	return st.Clone(), nil
}

// Summary computes the month's totals.
func (s *BudgetService) Summary(ctx context.Context) (core.Totals, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return core.Totals{}, err
	}
	return core.ComputeTotals(st, s.policy), nil
}

// WeeklyPlan computes the week-by-week disposable plan for the month.
func (s *BudgetService) WeeklyPlan(ctx context.Context) ([]core.WeekPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, now, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	return core.ComputeWeeklyPlan(st, now, s.policy), nil
}

// SetEarnings overwrites the month's earnings.
func (s *BudgetService) SetEarnings(ctx context.Context, earnings int64) error {
	if earnings < 0 {
		return fmt.Errorf("%w: earnings %d is negative", core.ErrInvalidInput, earnings)
	}
	return s.mutate(ctx, "set_earnings", func(st *core.State, now time.Time) (bool, error) {
		if st.Earnings == earnings {
			return false, nil
		}
		st.Earnings = earnings
		return true, nil
	})
}

// AddCategory creates a category in a section.
func (s *BudgetService) AddCategory(ctx context.Context, section, name string, budget int64) error {
	sec, err := core.ParseSection(section)
	if err != nil {
		return err
	}
	return s.mutate(ctx, "add_category", func(st *core.State, now time.Time) (bool, error) {
		if err := st.AddCategory(sec, name, budget, s.strict); err != nil {
			return false, err
		}
		return true, nil
	})
}

// SetBudget changes a category's budgeted amount.
func (s *BudgetService) SetBudget(ctx context.Context, section, name string, budget int64) error {
	sec, err := core.ParseSection(section)
	if err != nil {
		return err
	}
	return s.mutate(ctx, "set_budget", func(st *core.State, now time.Time) (bool, error) {
		return st.SetBudget(sec, name, budget)
	})
}

// DeleteCategory removes a category and its ledger entries.
func (s *BudgetService) DeleteCategory(ctx context.Context, section, name string) error {
	sec, err := core.ParseSection(section)
	if err != nil {
		return err
	}
	return s.mutate(ctx, "delete_category", func(st *core.State, now time.Time) (bool, error) {
		if err := st.DeleteCategory(sec, name); err != nil {
			return false, err
		}
		return true, nil
	})
}

// AddExpense appends a ledger entry. A zero amount is accepted and does
// nothing, matching the engine's no-op semantics.
func (s *BudgetService) AddExpense(ctx context.Context, category string, amount int64, date time.Time, note string) error {
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("%w: expense category is empty", core.ErrInvalidInput)
	}
	return s.mutate(ctx, "add_expense", func(st *core.State, now time.Time) (bool, error) {
		if date.IsZero() {
			date = now
		}
		return st.AddExpense(category, amount, date, note), nil
	})
}

// SetCategorySpent adjusts a category's spent total by appending a delta.
func (s *BudgetService) SetCategorySpent(ctx context.Context, category string, total int64) error {
	return s.mutate(ctx, "set_spent", func(st *core.State, now time.Time) (bool, error) {
		if _, ok := st.ActiveCategories()[category]; !ok {
			return false, fmt.Errorf("%w: %s", core.ErrCategoryNotFound, category)
		}
		return st.SetCategorySpent(category, total, now, ""), nil
	})
}

// loadLocked loads the state for the current month and applies the
// rollover, persisting it immediately so a crash between read and the next
// mutation cannot resurrect a cleared ledger. Callers must hold s.mu.
func (s *BudgetService) loadLocked(ctx context.Context) (core.State, time.Time, error) {
	now := s.now()
	key := MonthKey(now)

	st, err := s.store.LoadState(ctx, key)
	if err != nil {
		return core.State{}, now, fmt.Errorf("load state for %s: %w", key, err)
	}
	st.Normalize(now)

	if core.ApplyRollover(&st, now) {
		s.logger.InfoContext(ctx, "Month rollover applied", log.FieldMonthKey, key)
		if err := s.store.SaveState(ctx, key, st); err != nil {
			return core.State{}, now, fmt.Errorf("save rolled-over state for %s: %w", key, err)
		}
		s.publish(ctx, key)
	}
	return st, now, nil
}

func (s *BudgetService) mutate(ctx context.Context, op string, fn func(st *core.State, now time.Time) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, now, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	key := MonthKey(now)

	changed, err := fn(&st, now)
	if err != nil {
		return err
	}
	if !changed {
		s.logger.Debug("No-op command skipped persist", log.FieldOperation, op)
		return nil
	}

	if err := s.store.SaveState(ctx, key, st); err != nil {
		return fmt.Errorf("save state for %s: %w", key, err)
	}
	s.logger.InfoContext(ctx, "State saved", log.FieldOperation, op, log.FieldMonthKey, key)
	s.publish(ctx, key)
	return nil
}

// publish sends an export notification without failing the command: the
// state is already saved locally and the worker re-reads it anyway.
func (s *BudgetService) publish(ctx context.Context, monthKey string) {
	if s.publisher == nil {
		return
	}
	s.version++
	if err := s.publisher.PublishSnapshotExport(ctx, monthKey, s.version); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish export message",
			log.FieldMonthKey, monthKey, log.FieldError, err)
	}
}
