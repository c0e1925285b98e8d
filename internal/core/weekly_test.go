package core

import (
	"testing"
	"time"
)

func TestMonthWeeks(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		wantCount int
		wantFirst WeekSpan
		wantLast  WeekSpan
	}{
		{
			// March 2024 starts on a Friday: the first row is clipped
			// to three days.
			name:      "month starting mid-week",
			year:      2024,
			month:     time.March,
			wantCount: 5,
			wantFirst: WeekSpan{Start: date(2024, time.March, 1), End: date(2024, time.March, 3)},
			wantLast:  WeekSpan{Start: date(2024, time.March, 25), End: date(2024, time.March, 31)},
		},
		{
			// April 2024 starts on a Monday and ends mid-row.
			name:      "month starting on monday",
			year:      2024,
			month:     time.April,
			wantCount: 5,
			wantFirst: WeekSpan{Start: date(2024, time.April, 1), End: date(2024, time.April, 7)},
			wantLast:  WeekSpan{Start: date(2024, time.April, 29), End: date(2024, time.April, 30)},
		},
		{
			// February 2021 is exactly four Monday-to-Sunday rows.
			name:      "exact four-week february",
			year:      2021,
			month:     time.February,
			wantCount: 4,
			wantFirst: WeekSpan{Start: date(2021, time.February, 1), End: date(2021, time.February, 7)},
			wantLast:  WeekSpan{Start: date(2021, time.February, 22), End: date(2021, time.February, 28)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weeks := MonthWeeks(tt.year, tt.month)
			if len(weeks) != tt.wantCount {
				t.Fatalf("MonthWeeks() count = %d, want %d", len(weeks), tt.wantCount)
			}
			if weeks[0] != tt.wantFirst {
				t.Errorf("first week = %+v, want %+v", weeks[0], tt.wantFirst)
			}
			if weeks[len(weeks)-1] != tt.wantLast {
				t.Errorf("last week = %+v, want %+v", weeks[len(weeks)-1], tt.wantLast)
			}
		})
	}
}

func TestComputeWeeklyPlan_TruncatingSplit(t *testing.T) {
	// Remaining 20000 with three of five March 2024 weeks left:
	// 20000/3 truncates to 6666, never rounds up.
	st := DefaultState(date(2024, time.March, 1))
	st.Earnings = 20000
	today := date(2024, time.March, 15)

	plan := ComputeWeeklyPlan(st, today, DebtPolicyMax)
	if len(plan) != 5 {
		t.Fatalf("plan length = %d, want 5", len(plan))
	}

	wantStatus := []WeekStatus{WeekLocked, WeekLocked, WeekActive, WeekUpcoming, WeekUpcoming}
	wantBudget := []int64{0, 0, 6666, 6666, 6666}
	for i, w := range plan {
		if w.Status != wantStatus[i] {
			t.Errorf("week %d status = %q, want %q", i, w.Status, wantStatus[i])
		}
		if w.Budget != wantBudget[i] {
			t.Errorf("week %d budget = %d, want %d", i, w.Budget, wantBudget[i])
		}
	}
}

func TestComputeWeeklyPlan_NonPositiveRemaining(t *testing.T) {
	st := DefaultState(date(2024, time.March, 1))
	st.Earnings = 100
	_ = st.AddCategory(Needs, "Rent", 0, true)
	st.AddExpense("Rent", 500, date(2024, time.March, 2), "")

	plan := ComputeWeeklyPlan(st, date(2024, time.March, 15), DebtPolicyMax)
	for i, w := range plan {
		if w.Budget != 0 {
			t.Errorf("week %d budget = %d, want 0 when overspent", i, w.Budget)
		}
	}
}

func TestComputeWeeklyPlan_WeekSpentWantsOnly(t *testing.T) {
	st := DefaultState(date(2024, time.March, 1))
	st.Earnings = 5000
	_ = st.AddCategory(Wants, "Games", 200, true)
	_ = st.AddCategory(Needs, "Rent", 800, true)

	// Week index 2 of March 2024 runs the 11th through the 17th.
	st.AddExpense("Games", 40, date(2024, time.March, 12), "")
	st.AddExpense("Games", 25, date(2024, time.March, 16), "")
	st.AddExpense("Rent", 800, date(2024, time.March, 13), "")
	st.AddExpense("Games", 10, date(2024, time.March, 20), "")

	plan := ComputeWeeklyPlan(st, date(2024, time.March, 15), DebtPolicyMax)
	if got := plan[2].Spent; got != 65 {
		t.Errorf("active week spent = %d, want 65 (wants only)", got)
	}
	if got := plan[3].Spent; got != 10 {
		t.Errorf("next week spent = %d, want 10", got)
	}
}

func TestComputeWeeklyPlan_LastWeekActive(t *testing.T) {
	st := DefaultState(date(2024, time.March, 1))
	st.Earnings = 999

	plan := ComputeWeeklyPlan(st, date(2024, time.March, 30), DebtPolicyMax)
	last := plan[len(plan)-1]
	if last.Status != WeekActive {
		t.Fatalf("last week status = %q, want %q", last.Status, WeekActive)
	}
	// One week remaining: the whole pot lands on it.
	if last.Budget != 999 {
		t.Errorf("last week budget = %d, want 999", last.Budget)
	}
}
