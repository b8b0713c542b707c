// Package metrics computes derived spending figures from the current expense
// list and budget. Everything here is pure and synchronous: no state, no
// persistence, recomputed on every change.
package metrics

import (
	"math"
	"time"

	"tripledger/internal/models"
)

// nearBudgetThreshold is the usage percentage at which the near-budget
// warning starts. The warning stops applying once the budget is fully used.
const nearBudgetThreshold = 80

// Summary holds the derived figures for one scope.
type Summary struct {
	TotalSpent            float64 `json:"total_spent"`
	RemainingBudget       float64 `json:"remaining_budget"`
	BudgetUsagePercentage int     `json:"budget_usage_percentage"`
	IsOverBudget          bool    `json:"is_over_budget"`
	IsNearBudget          bool    `json:"is_near_budget"`
	HasBudget             bool    `json:"has_budget"`
}

// CategoryTotal is one row of the per-category breakdown.
type CategoryTotal struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// TotalSpent returns the exact sum of all expense amounts.
func TotalSpent(expenses []models.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// Summarize computes the full summary for an expense list and an optional
// budget. With no budget set, usage is 0 and the over/near flags stay false;
// "no budget" disables alert logic entirely rather than behaving like a zero
// budget.
func Summarize(expenses []models.Expense, budget *models.Budget) Summary {
	s := Summary{TotalSpent: TotalSpent(expenses)}

	if budget == nil {
		return s
	}

	s.HasBudget = true
	s.RemainingBudget = budget.Amount - s.TotalSpent
	if budget.Amount > 0 {
		s.BudgetUsagePercentage = int(math.Round(s.TotalSpent / budget.Amount * 100))
	}
	s.IsOverBudget = s.RemainingBudget < 0
	s.IsNearBudget = s.BudgetUsagePercentage >= nearBudgetThreshold && s.BudgetUsagePercentage < 100

	return s
}

// DaysUntil returns the number of whole days from now until the travel date,
// rounding partial days up so "tomorrow morning" still counts as one day away.
// A date in the past returns 0.
func DaysUntil(travelDate, now time.Time) int {
	if !travelDate.After(now) {
		return 0
	}
	return int(math.Ceil(travelDate.Sub(now).Hours() / 24))
}

// CategoryBreakdown groups expenses by category and computes each group's
// share of the total. Rows are sorted by summed amount descending; ties keep
// first-seen order. An empty expense list yields an empty (non-nil) slice.
func CategoryBreakdown(expenses []models.Expense) []CategoryTotal {
	totals := make(map[string]float64)
	order := make([]string, 0)

	for _, e := range expenses {
		if _, seen := totals[e.Category]; !seen {
			order = append(order, e.Category)
		}
		totals[e.Category] += e.Amount
	}

	grand := TotalSpent(expenses)
	rows := make([]CategoryTotal, 0, len(order))
	for _, category := range order {
		row := CategoryTotal{Category: category, Amount: totals[category]}
		if grand > 0 {
			row.Percentage = math.Round(totals[category]/grand*1000) / 10
		}
		rows = append(rows, row)
	}

	// Insertion sort keeps the first-seen order stable for equal amounts.
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].Amount > rows[j-1].Amount; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}

	return rows
}
