package export

import (
	"context"
	"sort"
	"time"

	"compactbudget/internal/core"
)

// SnapshotWriter is the outbound port for mirroring a month's budget to an
// external surface (a spreadsheet in production, memory in tests).
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, snap Snapshot) error
}

// CategoryRow is one category line of a snapshot.
type CategoryRow struct {
	Section core.Section `json:"section"`
	Name    string       `json:"name"`
	Budget  int64        `json:"budget"`
	Spent   int64        `json:"spent"`
}

// Snapshot is a complete read-only view of one month's budget: derived
// totals, per-category lines, and the raw ledger.
type Snapshot struct {
	MonthKey    string         `json:"month_key"`
	GeneratedAt time.Time      `json:"generated_at"`
	Totals      core.Totals    `json:"totals"`
	Categories  []CategoryRow  `json:"categories"`
	Expenses    []core.Expense `json:"expenses"`
}

// BuildSnapshot derives an export snapshot from a state. Category rows are
// ordered by section, then name, so repeated exports of the same state
// produce identical output.
func BuildSnapshot(monthKey string, st core.State, policy core.DebtPolicy, now time.Time) Snapshot {
	snap := Snapshot{
		MonthKey:    monthKey,
		GeneratedAt: now,
		Totals:      core.ComputeTotals(st, policy),
		Expenses:    append([]core.Expense(nil), st.Expenses...),
	}

	for _, sec := range core.Sections {
		names := make([]string, 0, len(st.Categories[sec]))
		for name := range st.Categories[sec] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			snap.Categories = append(snap.Categories, CategoryRow{
				Section: sec,
				Name:    name,
				Budget:  st.Categories[sec][name],
				Spent:   st.SpentTotal(name),
			})
		}
	}
	return snap
}
