package core

import "time"

// ApplyRollover clears the expense ledger when the calendar month has
// changed since the state was last active. Earnings and category budgets
// survive the rollover. Returns true when the state was modified.
func ApplyRollover(st *State, now time.Time) bool {
	month := int(now.Month())
	if st.LastActiveMonth == month {
		return false
	}
	st.Expenses = nil
	st.LastActiveMonth = month
	return true
}
