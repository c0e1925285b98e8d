package core

import "fmt"

const (
	// DebtPolicyMax reserves max(spent, budgeted) per debt category:
	// unpaid debt stays reserved, overpayment is not penalized twice.
	DebtPolicyMax DebtPolicy = "max"
	// DebtPolicyFull reserves the full budgeted amount regardless of
	// payment status.
	DebtPolicyFull DebtPolicy = "full"
)

type (
	// DebtPolicy selects how debt categories reserve against remaining
	// funds.
	DebtPolicy string

	// Totals is the derived summary for a state.
	Totals struct {
		Earnings      int64 `json:"earnings"`
		TotalSpent    int64 `json:"total_spent"`
		Remaining     int64 `json:"remaining"`
		TotalBudgeted int64 `json:"total_budgeted"`
	}
)

// ParseDebtPolicy validates a policy name, defaulting empty to DebtPolicyMax.
func ParseDebtPolicy(s string) (DebtPolicy, error) {
	switch DebtPolicy(s) {
	case "":
		return DebtPolicyMax, nil
	case DebtPolicyMax, DebtPolicyFull:
		return DebtPolicy(s), nil
	default:
		return "", fmt.Errorf("%w: debt policy %q", ErrInvalidInput, s)
	}
}

// ComputeTotals derives earnings/spent/remaining/budgeted from the state.
//
// Only expenses whose category currently exists in some section count; dead
// ledger rows left behind by out-of-band category removal are ignored here
// and nowhere else. Debt categories contribute their actual payments to
// TotalSpent but reserve against Remaining per the policy. The computation
// is repeated from scratch on every call: the dataset is tens to low
// hundreds of rows and a fresh pass is always correct.
func ComputeTotals(st State, policy DebtPolicy) Totals {
	active := st.ActiveCategories()
	debtCats := st.Categories[Debts]

	var spentNonDebt int64
	debtSpent := make(map[string]int64, len(debtCats))
	for _, e := range st.Expenses {
		if _, ok := active[e.Category]; !ok {
			continue
		}
		if _, isDebt := debtCats[e.Category]; isDebt {
			debtSpent[e.Category] += e.Amount
		} else {
			spentNonDebt += e.Amount
		}
	}

	var debtSpentTotal, debtDeduction int64
	for name, budget := range debtCats {
		spent := debtSpent[name]
		debtSpentTotal += spent
		switch policy {
		case DebtPolicyFull:
			debtDeduction += budget
		default:
			if spent > budget {
				debtDeduction += spent
			} else {
				debtDeduction += budget
			}
		}
	}

	var totalBudgeted int64
	for _, sec := range Sections {
		for _, budget := range st.Categories[sec] {
			totalBudgeted += budget
		}
	}

	return Totals{
		Earnings:      st.Earnings,
		TotalSpent:    spentNonDebt + debtSpentTotal,
		Remaining:     st.Earnings - spentNonDebt - debtDeduction,
		TotalBudgeted: totalBudgeted,
	}
}
