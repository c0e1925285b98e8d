package core

import "time"

const (
	WeekLocked   WeekStatus = "locked"
	WeekActive   WeekStatus = "active"
	WeekUpcoming WeekStatus = "upcoming"
)

type (
	// WeekStatus marks a week's position relative to today.
	WeekStatus string

	// WeekSpan is one row of the month grid, clipped to the month's days.
	// Boundary weeks shared with a neighboring month are included but
	// cover only this month's days.
	WeekSpan struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}

	// WeekPlan is the per-week view of the disposable budget: a flat
	// equal split of the remaining funds over the weeks left, plus the
	// discretionary spend already recorded inside the week's range.
	WeekPlan struct {
		Index  int        `json:"index"`
		Start  time.Time  `json:"start"`
		End    time.Time  `json:"end"`
		Budget int64      `json:"budget"`
		Spent  int64      `json:"spent"`
		Status WeekStatus `json:"status"`
	}
)

// MonthWeeks partitions a month into Monday-first calendar-grid rows.
func MonthWeeks(year int, month time.Month) []WeekSpan {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	// Back up to the Monday of the grid row containing the 1st.
	offset := (int(first.Weekday()) + 6) % 7
	rowStart := first.AddDate(0, 0, -offset)

	var weeks []WeekSpan
	for !rowStart.After(last) {
		start := rowStart
		if start.Before(first) {
			start = first
		}
		end := rowStart.AddDate(0, 0, 6)
		if end.After(last) {
			end = last
		}
		weeks = append(weeks, WeekSpan{Start: start, End: end})
		rowStart = rowStart.AddDate(0, 0, 7)
	}
	return weeks
}

// ComputeWeeklyPlan derives the weekly disposable plan for the month of
// today from the state's remaining funds.
//
// The weekly figure is remaining divided by the weeks left, truncated to
// whole currency units, never negative. Past weeks are locked and show no
// figure; the allocator does not shrink future weeks when the current one
// overspends, it simply re-splits the updated remaining on the next read.
// Per-week spend counts only wants-section expenses dated inside the week.
func ComputeWeeklyPlan(st State, today time.Time, policy DebtPolicy) []WeekPlan {
	remaining := ComputeTotals(st, policy).Remaining
	weeks := MonthWeeks(today.Year(), today.Month())
	day := dateOnly(today)

	currentIdx := -1
	for i, w := range weeks {
		if !day.Before(w.Start) && !day.After(w.End) {
			currentIdx = i
			break
		}
	}

	var weeksRemaining int
	switch {
	case currentIdx >= 0:
		weeksRemaining = len(weeks) - currentIdx
		if weeksRemaining < 1 {
			weeksRemaining = 1
		}
	case today.Day() > 15:
		// Today is outside the displayed month's grid and late in its
		// own month: treat the month as over.
		weeksRemaining = 0
	default:
		weeksRemaining = len(weeks)
	}

	var weekly int64
	if weeksRemaining > 0 && remaining > 0 {
		weekly = remaining / int64(weeksRemaining)
	}

	wants := st.Categories[Wants]
	plan := make([]WeekPlan, 0, len(weeks))
	for i, w := range weeks {
		var spent int64
		for _, e := range st.Expenses {
			if _, ok := wants[e.Category]; !ok {
				continue
			}
			d := dateOnly(e.Date)
			if !d.Before(w.Start) && !d.After(w.End) {
				spent += e.Amount
			}
		}

		status := WeekUpcoming
		budget := weekly
		switch {
		case w.End.Before(day):
			status = WeekLocked
			budget = 0
		case i == currentIdx:
			status = WeekActive
		}

		plan = append(plan, WeekPlan{
			Index:  i,
			Start:  w.Start,
			End:    w.End,
			Budget: budget,
			Spent:  spent,
			Status: status,
		})
	}
	return plan
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
