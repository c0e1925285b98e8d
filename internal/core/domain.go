package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Needs   Section = "needs"
	Wants   Section = "wants"
	Savings Section = "savings"
	Debts   Section = "debts"
)

// Sections lists every section in canonical order.
var Sections = []Section{Needs, Wants, Savings, Debts}

// DefaultNote is recorded on expenses created without an explicit note.
const DefaultNote = "Manual"

type (
	// Section is one of the four top-level budget groupings.
	Section string

	// Expense is a signed transaction recorded against a category name.
	// The category is a loose reference: deleting a category does not
	// retroactively validate expenses, it cascades their removal instead.
	Expense struct {
		Category string    `json:"category"`
		Amount   int64     `json:"amount"`
		Date     time.Time `json:"date"`
		Note     string    `json:"note"`
	}

	// State is the full budget state for one month: earnings, the four
	// section maps of category name to budgeted amount, the expense
	// ledger, and the month marker used by the rollover policy.
	//
	// State is a plain value transformed by the methods below; the
	// service layer owns the single live instance and persists it after
	// each mutation.
	State struct {
		Earnings        int64                        `json:"earnings"`
		Categories      map[Section]map[string]int64 `json:"categories"`
		Expenses        []Expense                    `json:"expenses"`
		LastActiveMonth int                          `json:"last_active_month"`
	}
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidSection    = errors.New("invalid section")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrCategoryNotFound  = errors.New("category not found")
)

// ParseSection validates a section name. Casing and surrounding whitespace
// are forgiven at this boundary.
func ParseSection(s string) (Section, error) {
	sec := Section(strings.ToLower(strings.TrimSpace(s)))
	switch sec {
	case Needs, Wants, Savings, Debts:
		return sec, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSection, s)
	}
}

// MonthKeyLayout is the format of the storage key naming one month of state.
const MonthKeyLayout = "2006-01"

// DefaultState returns the empty state for the month of now: zero earnings,
// no categories, no expenses.
func DefaultState(now time.Time) State {
	return State{
		Categories:      emptySections(),
		LastActiveMonth: int(now.Month()),
	}
}

// MonthKeyTime resolves a storage key to a point inside that month. Stores
// use it so absent months default to the month they were asked for rather
// than the wall clock, which may disagree with the caller's clock. A
// malformed key falls back to the current time.
func MonthKeyTime(key string) time.Time {
	t, err := time.Parse(MonthKeyLayout, key)
	if err != nil {
		return time.Now()
	}
	return t
}

func emptySections() map[Section]map[string]int64 {
	m := make(map[Section]map[string]int64, len(Sections))
	for _, s := range Sections {
		m[s] = map[string]int64{}
	}
	return m
}

// Normalize fills in section maps that a decoded or zero-valued state is
// missing, so callers never see a nil map. Malformed persisted data is
// treated as absent data, not a fatal condition.
func (st *State) Normalize(now time.Time) {
	if st.Categories == nil {
		st.Categories = emptySections()
	}
	for _, s := range Sections {
		if st.Categories[s] == nil {
			st.Categories[s] = map[string]int64{}
		}
	}
	if st.LastActiveMonth < 1 || st.LastActiveMonth > 12 {
		st.LastActiveMonth = int(now.Month())
	}
}

// Clone returns a deep copy so callers can hand out state without aliasing
// the live maps and ledger.
func (st State) Clone() State {
	out := st
	out.Categories = make(map[Section]map[string]int64, len(st.Categories))
	for sec, cats := range st.Categories {
		m := make(map[string]int64, len(cats))
		for name, budget := range cats {
			m[name] = budget
		}
		out.Categories[sec] = m
	}
	out.Expenses = append([]Expense(nil), st.Expenses...)
	return out
}

// AddCategory creates a category in the given section. The name must be
// non-empty after trimming and the budget non-negative. When strict is
// true an existing name in ANY section is rejected — expenses reference
// categories by bare name, so two sections sharing a name would conflate
// their spent totals. Otherwise the prior budget is silently overwritten.
func (st *State) AddCategory(section Section, name string, budget int64, strict bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name is empty", ErrInvalidInput)
	}
	if budget < 0 {
		return fmt.Errorf("%w: budget %d is negative", ErrInvalidInput, budget)
	}
	cats, ok := st.Categories[section]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSection, section)
	}
	if strict {
		for _, sec := range Sections {
			if _, exists := st.Categories[sec][name]; exists {
				return fmt.Errorf("%w: %q already exists in %s", ErrDuplicateCategory, name, sec)
			}
		}
	}
	cats[name] = budget
	return nil
}

// SetBudget overwrites a category's budgeted amount. Returns false without
// touching the state when the new value equals the current one, so callers
// can skip the persist-and-publish step entirely.
func (st *State) SetBudget(section Section, name string, budget int64) (bool, error) {
	if budget < 0 {
		return false, fmt.Errorf("%w: budget %d is negative", ErrInvalidInput, budget)
	}
	cats, ok := st.Categories[section]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidSection, section)
	}
	current, exists := cats[name]
	if !exists {
		return false, fmt.Errorf("%w: %s/%s", ErrCategoryNotFound, section, name)
	}
	if current == budget {
		return false, nil
	}
	cats[name] = budget
	return true, nil
}

// DeleteCategory removes a category and physically discards every ledger
// entry referencing its name, across all sections. The cascade means no
// orphan rows survive a delete; orphan filtering in the totals engine only
// matters for ledgers mutated outside this path.
func (st *State) DeleteCategory(section Section, name string) error {
	cats, ok := st.Categories[section]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSection, section)
	}
	if _, exists := cats[name]; !exists {
		return fmt.Errorf("%w: %s/%s", ErrCategoryNotFound, section, name)
	}
	delete(cats, name)
	st.removeExpensesByCategory(name)
	return nil
}

func (st *State) removeExpensesByCategory(name string) {
	kept := st.Expenses[:0]
	for _, e := range st.Expenses {
		if e.Category != name {
			kept = append(kept, e)
		}
	}
	st.Expenses = kept
}

// AddExpense appends a ledger entry. A zero amount is an explicit no-op,
// not an error; negative amounts are corrections. Returns whether an entry
// was appended.
func (st *State) AddExpense(category string, amount int64, date time.Time, note string) bool {
	if amount == 0 {
		return false
	}
	if note == "" {
		note = DefaultNote
	}
	st.Expenses = append(st.Expenses, Expense{
		Category: category,
		Amount:   amount,
		Date:     date,
		Note:     note,
	})
	return true
}

// SpentTotal sums every ledger entry recorded against the category name,
// orphans included. The totals engine applies orphan filtering separately;
// the raw sum here is what the delta helper below must work from.
func (st State) SpentTotal(category string) int64 {
	var total int64
	for _, e := range st.Expenses {
		if e.Category == category {
			total += e.Amount
		}
	}
	return total
}

// SetCategorySpent adjusts a category's spent total to the desired value by
// appending a single signed delta entry. Ledger entries are never edited in
// place. Returns whether the ledger changed.
func (st *State) SetCategorySpent(category string, desiredTotal int64, date time.Time, note string) bool {
	delta := desiredTotal - st.SpentTotal(category)
	return st.AddExpense(category, delta, date, note)
}

// ActiveCategories returns the union of category names across all four
// sections in their current state.
func (st State) ActiveCategories() map[string]struct{} {
	active := make(map[string]struct{})
	for _, sec := range Sections {
		for name := range st.Categories[sec] {
			active[name] = struct{}{}
		}
	}
	return active
}
