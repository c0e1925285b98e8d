package core

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		in      string
		want    Section
		wantErr bool
	}{
		{"needs", Needs, false},
		{"wants", Wants, false},
		{"savings", Savings, false},
		{"debts", Debts, false},
		{"Needs", Needs, false},
		{"  WANTS ", Wants, false},
		{"rent", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMonthKeyTime(t *testing.T) {
	got := MonthKeyTime("2024-03")
	if got.Year() != 2024 || got.Month() != time.March {
		t.Errorf("MonthKeyTime(2024-03) = %v, want March 2024", got)
	}
	// Malformed keys fall back to the wall clock.
	if MonthKeyTime("not-a-key").Year() < 2024 {
		t.Error("MonthKeyTime(malformed) did not fall back to the current time")
	}
}

func TestAddCategory(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*State)
		section Section
		cat     string
		budget  int64
		strict  bool
		wantErr error
	}{
		{
			name:    "new category",
			section: Needs,
			cat:     "Rent",
			budget:  800,
		},
		{
			name: "duplicate same section strict",
			setup: func(st *State) {
				_ = st.AddCategory(Needs, "Rent", 800, true)
			},
			section: Needs,
			cat:     "Rent",
			budget:  900,
			strict:  true,
			wantErr: ErrDuplicateCategory,
		},
		{
			name: "duplicate other section strict",
			setup: func(st *State) {
				_ = st.AddCategory(Needs, "Rent", 800, true)
			},
			section: Wants,
			cat:     "Rent",
			budget:  100,
			strict:  true,
			wantErr: ErrDuplicateCategory,
		},
		{
			name:    "empty name",
			section: Needs,
			cat:     "",
			budget:  100,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "negative budget",
			section: Needs,
			cat:     "Rent",
			budget:  -1,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown section",
			section: Section("other"),
			cat:     "Rent",
			budget:  100,
			wantErr: ErrInvalidSection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := DefaultState(date(2024, time.March, 1))
			if tt.setup != nil {
				tt.setup(&st)
			}
			err := st.AddCategory(tt.section, tt.cat, tt.budget, tt.strict)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddCategory() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && st.Categories[tt.section][tt.cat] != tt.budget {
				t.Errorf("budget = %d, want %d", st.Categories[tt.section][tt.cat], tt.budget)
			}
		})
	}
}

func TestAddCategory_LenientOverwrite(t *testing.T) {
	st := DefaultState(date(2024, time.March, 1))
	if err := st.AddCategory(Needs, "Rent", 800, false); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := st.AddCategory(Needs, "Rent", 900, false); err != nil {
		t.Fatalf("overwrite add: %v", err)
	}
	if got := st.Categories[Needs]["Rent"]; got != 900 {
		t.Errorf("budget after overwrite = %d, want 900", got)
	}
}

func TestSetBudget(t *testing.T) {
	st := DefaultState(date(2024, time.March, 1))
	if err := st.AddCategory(Wants, "Games", 100, true); err != nil {
		t.Fatalf("setup: %v", err)
	}

	changed, err := st.SetBudget(Wants, "Games", 150)
	if err != nil || !changed {
		t.Fatalf("SetBudget() = (%v, %v), want (true, nil)", changed, err)
	}

	// Same value again is a no-op.
	changed, err = st.SetBudget(Wants, "Games", 150)
	if err != nil || changed {
		t.Fatalf("SetBudget() repeat = (%v, %v), want (false, nil)", changed, err)
	}

	if _, err := st.SetBudget(Wants, "Missing", 10); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("SetBudget(missing) error = %v, want %v", err, ErrCategoryNotFound)
	}
	if _, err := st.SetBudget(Wants, "Games", -1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SetBudget(negative) error = %v, want %v", err, ErrInvalidInput)
	}
}

func TestAddExpense(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		note     string
		wantAdd  bool
		wantNote string
	}{
		{"positive amount", 42, "groceries", true, "groceries"},
		{"negative correction", -10, "refund", true, "refund"},
		{"zero amount is a no-op", 0, "nothing", false, ""},
		{"empty note defaults", 5, "", true, DefaultNote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := DefaultState(date(2024, time.March, 1))
			added := st.AddExpense("Food", tt.amount, date(2024, time.March, 5), tt.note)
			if added != tt.wantAdd {
				t.Fatalf("AddExpense() = %v, want %v", added, tt.wantAdd)
			}
			if !tt.wantAdd {
				if len(st.Expenses) != 0 {
					t.Fatalf("ledger length = %d, want 0", len(st.Expenses))
				}
				return
			}
			if len(st.Expenses) != 1 {
				t.Fatalf("ledger length = %d, want 1", len(st.Expenses))
			}
			if got := st.Expenses[0].Note; got != tt.wantNote {
				t.Errorf("note = %q, want %q", got, tt.wantNote)
			}
		})
	}
}

func TestSetCategorySpent(t *testing.T) {
	st := DefaultState(date(2024, time.March, 1))
	if err := st.AddCategory(Needs, "Food", 300, true); err != nil {
		t.Fatalf("setup: %v", err)
	}
	when := date(2024, time.March, 10)

	if changed := st.SetCategorySpent("Food", 120, when, ""); !changed {
		t.Fatal("first set should record a delta")
	}
	if got := st.SpentTotal("Food"); got != 120 {
		t.Fatalf("spent = %d, want 120", got)
	}

	// Lower target records a negative delta.
	if changed := st.SetCategorySpent("Food", 90, when, ""); !changed {
		t.Fatal("second set should record a delta")
	}
	if got := st.SpentTotal("Food"); got != 90 {
		t.Fatalf("spent = %d, want 90", got)
	}
	if len(st.Expenses) != 2 {
		t.Fatalf("ledger length = %d, want 2", len(st.Expenses))
	}

	// Matching target is a no-op.
	if changed := st.SetCategorySpent("Food", 90, when, ""); changed {
		t.Error("equal target should not append")
	}
	if len(st.Expenses) != 2 {
		t.Errorf("ledger length = %d, want 2", len(st.Expenses))
	}
}

func TestDeleteCategory_CascadesExpenses(t *testing.T) {
	st := DefaultState(date(2024, time.March, 1))
	if err := st.AddCategory(Wants, "Games", 100, true); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := st.AddCategory(Wants, "Movies", 50, true); err != nil {
		t.Fatalf("setup: %v", err)
	}
	st.AddExpense("Games", 30, date(2024, time.March, 2), "")
	st.AddExpense("Movies", 10, date(2024, time.March, 3), "")
	st.AddExpense("Games", 5, date(2024, time.March, 4), "")

	if err := st.DeleteCategory(Wants, "Games"); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}

	if _, ok := st.Categories[Wants]["Games"]; ok {
		t.Error("category still present after delete")
	}
	if len(st.Expenses) != 1 || st.Expenses[0].Category != "Movies" {
		t.Errorf("ledger after cascade = %+v, want only Movies", st.Expenses)
	}
	if err := st.DeleteCategory(Wants, "Games"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("second delete error = %v, want %v", err, ErrCategoryNotFound)
	}
}

func TestNormalize(t *testing.T) {
	var st State
	st.Normalize(date(2024, time.July, 1))

	if st.Categories == nil {
		t.Fatal("Categories map not initialized")
	}
	for _, s := range Sections {
		if st.Categories[s] == nil {
			t.Errorf("section %q not initialized", s)
		}
	}
	if st.LastActiveMonth != 7 {
		t.Errorf("LastActiveMonth = %d, want 7", st.LastActiveMonth)
	}
}

func TestClone_Isolation(t *testing.T) {
	st := DefaultState(date(2024, time.March, 1))
	_ = st.AddCategory(Needs, "Rent", 800, true)
	st.AddExpense("Rent", 800, date(2024, time.March, 1), "")

	cp := st.Clone()
	cp.Categories[Needs]["Rent"] = 1
	cp.Expenses[0].Amount = 1

	if st.Categories[Needs]["Rent"] != 800 {
		t.Error("clone shares category map with source")
	}
	if st.Expenses[0].Amount != 800 {
		t.Error("clone shares expense slice with source")
	}
}
