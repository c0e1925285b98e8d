package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"compactbudget/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteRepository persists budget states keyed by month. A save replaces
// the month's rows wholesale inside one transaction, which makes it safely
// repeatable; a load of an absent month yields the default empty state.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadState reads the full state for a month. Rows that fail to decode
// (unknown section, unparseable date) are skipped rather than failing the
// load; malformed persisted data counts as absent data.
func (r *SQLiteRepository) LoadState(ctx context.Context, monthKey string) (core.State, error) {
	ref := core.MonthKeyTime(monthKey)

	var st core.State
	err := r.db.QueryRowContext(ctx,
		`SELECT earnings, last_active_month FROM months WHERE month_key = ?`,
		monthKey,
	).Scan(&st.Earnings, &st.LastActiveMonth)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultState(ref), nil
	}
	if err != nil {
		return core.State{}, fmt.Errorf("load month %s: %w", monthKey, err)
	}
	st.Normalize(ref)

	if err := r.loadCategories(ctx, monthKey, &st); err != nil {
		return core.State{}, err
	}
	if err := r.loadExpenses(ctx, monthKey, &st); err != nil {
		return core.State{}, err
	}
	return st, nil
}

func (r *SQLiteRepository) loadCategories(ctx context.Context, monthKey string, st *core.State) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT section, name, budget FROM categories WHERE month_key = ?`,
		monthKey,
	)
	if err != nil {
		return fmt.Errorf("load categories for %s: %w", monthKey, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			section string
			name    string
			budget  int64
		)
		if err := rows.Scan(&section, &name, &budget); err != nil {
			return fmt.Errorf("scan category row: %w", err)
		}
		sec, err := core.ParseSection(section)
		if err != nil {
			slog.WarnContext(ctx, "Skipping category with unknown section",
				"month_key", monthKey, "section", section, "name", name)
			continue
		}
		st.Categories[sec][name] = budget
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadExpenses(ctx context.Context, monthKey string, st *core.State) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, amount, spent_on, note FROM expenses WHERE month_key = ? ORDER BY position`,
		monthKey,
	)
	if err != nil {
		return fmt.Errorf("load expenses for %s: %w", monthKey, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e       core.Expense
			spentOn string
		)
		if err := rows.Scan(&e.Category, &e.Amount, &spentOn, &e.Note); err != nil {
			return fmt.Errorf("scan expense row: %w", err)
		}
		e.Date, err = time.Parse(dateLayout, spentOn)
		if err != nil {
			slog.WarnContext(ctx, "Skipping expense with unparseable date",
				"month_key", monthKey, "category", e.Category, "spent_on", spentOn)
			continue
		}
		st.Expenses = append(st.Expenses, e)
	}
	return rows.Err()
}

// SaveState replaces the month's rows wholesale in a single transaction.
func (r *SQLiteRepository) SaveState(ctx context.Context, monthKey string, st core.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save for %s: %w", monthKey, err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM expenses WHERE month_key = ?`,
		`DELETE FROM categories WHERE month_key = ?`,
		`DELETE FROM months WHERE month_key = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, monthKey); err != nil {
			return fmt.Errorf("clear month %s: %w", monthKey, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO months (month_key, earnings, last_active_month) VALUES (?, ?, ?)`,
		monthKey, st.Earnings, st.LastActiveMonth,
	); err != nil {
		return fmt.Errorf("insert month %s: %w", monthKey, err)
	}

	for _, sec := range core.Sections {
		for name, budget := range st.Categories[sec] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (month_key, section, name, budget) VALUES (?, ?, ?, ?)`,
				monthKey, string(sec), name, budget,
			); err != nil {
				return fmt.Errorf("insert category %s/%s: %w", sec, name, err)
			}
		}
	}

	for i, e := range st.Expenses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (month_key, position, category, amount, spent_on, note) VALUES (?, ?, ?, ?, ?, ?)`,
			monthKey, i, e.Category, e.Amount, e.Date.Format(dateLayout), e.Note,
		); err != nil {
			return fmt.Errorf("insert expense %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save for %s: %w", monthKey, err)
	}
	return nil
}
