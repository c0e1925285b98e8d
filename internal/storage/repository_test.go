package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"compactbudget/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	st := core.DefaultState(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	st.Earnings = 2500
	if err := st.AddCategory(core.Needs, "Rent", 800, true); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := st.AddCategory(core.Debts, "Loan", 200, true); err != nil {
		t.Fatalf("setup: %v", err)
	}
	st.AddExpense("Rent", 800, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), "landlord")
	st.AddExpense("Loan", -50, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), "")

	if err := repo.SaveState(ctx, "2024-03", st); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	got, err := repo.LoadState(ctx, "2024-03")
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if got.Earnings != 2500 {
		t.Errorf("earnings = %d, want 2500", got.Earnings)
	}
	if got.Categories[core.Needs]["Rent"] != 800 {
		t.Errorf("rent budget = %d, want 800", got.Categories[core.Needs]["Rent"])
	}
	if got.Categories[core.Debts]["Loan"] != 200 {
		t.Errorf("loan budget = %d, want 200", got.Categories[core.Debts]["Loan"])
	}
	if len(got.Expenses) != 2 {
		t.Fatalf("expenses length = %d, want 2", len(got.Expenses))
	}
	// Ledger order survives the round trip.
	if got.Expenses[0].Category != "Rent" || got.Expenses[1].Category != "Loan" {
		t.Errorf("expense order = %q, %q; want Rent, Loan",
			got.Expenses[0].Category, got.Expenses[1].Category)
	}
	if got.Expenses[1].Amount != -50 {
		t.Errorf("correction amount = %d, want -50", got.Expenses[1].Amount)
	}
	if got.Expenses[1].Note != core.DefaultNote {
		t.Errorf("note = %q, want %q", got.Expenses[1].Note, core.DefaultNote)
	}
}

func TestSQLiteRepository_AbsentMonthYieldsDefault(t *testing.T) {
	repo := newTestRepo(t)

	st, err := repo.LoadState(context.Background(), "2030-01")
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if st.Earnings != 0 || len(st.Expenses) != 0 {
		t.Errorf("got %+v, want default empty state", st)
	}
	if st.LastActiveMonth != 1 {
		t.Errorf("LastActiveMonth = %d, want 1 (from month key)", st.LastActiveMonth)
	}
	for _, sec := range core.Sections {
		if st.Categories[sec] == nil {
			t.Errorf("section %q map is nil", sec)
		}
	}
}

func TestSQLiteRepository_SaveIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	st := core.DefaultState(now)
	st.Earnings = 100
	if err := st.AddCategory(core.Wants, "Games", 50, true); err != nil {
		t.Fatalf("setup: %v", err)
	}
	st.AddExpense("Games", 20, now, "")

	if err := repo.SaveState(ctx, "2024-03", st); err != nil {
		t.Fatalf("first SaveState() error = %v", err)
	}
	if err := repo.SaveState(ctx, "2024-03", st); err != nil {
		t.Fatalf("second SaveState() error = %v", err)
	}

	got, err := repo.LoadState(ctx, "2024-03")
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if len(got.Expenses) != 1 {
		t.Errorf("expenses length = %d, want 1 after repeated save", len(got.Expenses))
	}
}

func TestSQLiteRepository_MonthsAreIsolated(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	march := core.DefaultState(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	march.Earnings = 300
	april := core.DefaultState(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))
	april.Earnings = 400

	if err := repo.SaveState(ctx, "2024-03", march); err != nil {
		t.Fatalf("SaveState(march) error = %v", err)
	}
	if err := repo.SaveState(ctx, "2024-04", april); err != nil {
		t.Fatalf("SaveState(april) error = %v", err)
	}

	gotMarch, err := repo.LoadState(ctx, "2024-03")
	if err != nil {
		t.Fatalf("LoadState(march) error = %v", err)
	}
	gotApril, err := repo.LoadState(ctx, "2024-04")
	if err != nil {
		t.Fatalf("LoadState(april) error = %v", err)
	}
	if gotMarch.Earnings != 300 || gotApril.Earnings != 400 {
		t.Errorf("earnings = %d/%d, want 300/400", gotMarch.Earnings, gotApril.Earnings)
	}
}

func TestSQLiteRepository_SkipsMalformedRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	st := core.DefaultState(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	if err := st.AddCategory(core.Needs, "Food", 100, true); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := repo.SaveState(ctx, "2024-03", st); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	// Corrupt rows written outside the repository.
	if _, err := repo.db.Exec(
		`INSERT INTO categories (month_key, section, name, budget) VALUES ('2024-03', 'bogus', 'X', 1)`,
	); err != nil {
		t.Fatalf("inject bad category: %v", err)
	}
	if _, err := repo.db.Exec(
		`INSERT INTO expenses (month_key, position, category, amount, spent_on, note) VALUES ('2024-03', 99, 'Food', 10, 'not-a-date', '')`,
	); err != nil {
		t.Fatalf("inject bad expense: %v", err)
	}

	got, err := repo.LoadState(ctx, "2024-03")
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if got.Categories[core.Needs]["Food"] != 100 {
		t.Errorf("food budget = %d, want 100", got.Categories[core.Needs]["Food"])
	}
	if len(got.Expenses) != 0 {
		t.Errorf("expenses length = %d, want 0 (bad row skipped)", len(got.Expenses))
	}
	total := 0
	for _, sec := range core.Sections {
		total += len(got.Categories[sec])
	}
	if total != 1 {
		t.Errorf("category count = %d, want 1 (bad section skipped)", total)
	}
}
