package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tripledger/internal/models"
)

func TestTotalSpent(t *testing.T) {
	assert.Equal(t, 0.0, TotalSpent(nil))
	assert.Equal(t, 1050.0, TotalSpent([]models.Expense{
		{Category: "flights", Amount: 450},
		{Category: "hotels", Amount: 600},
	}))
}

func TestSummarizeNoBudget(t *testing.T) {
	s := Summarize([]models.Expense{{Category: "food", Amount: 120}}, nil)

	assert.Equal(t, 120.0, s.TotalSpent)
	assert.False(t, s.HasBudget)
	assert.Equal(t, 0, s.BudgetUsagePercentage)
	assert.False(t, s.IsOverBudget)
	assert.False(t, s.IsNearBudget)
}

func TestSummarizeUnderBudget(t *testing.T) {
	s := Summarize([]models.Expense{{Category: "flights", Amount: 450}}, &models.Budget{Amount: 1000})

	assert.True(t, s.HasBudget)
	assert.Equal(t, 450.0, s.TotalSpent)
	assert.Equal(t, 550.0, s.RemainingBudget)
	assert.Equal(t, 45, s.BudgetUsagePercentage)
	assert.False(t, s.IsOverBudget)
	assert.False(t, s.IsNearBudget)
}

func TestSummarizeNearBudget(t *testing.T) {
	s := Summarize([]models.Expense{{Category: "hotels", Amount: 850}}, &models.Budget{Amount: 1000})

	assert.Equal(t, 85, s.BudgetUsagePercentage)
	assert.True(t, s.IsNearBudget)
	assert.False(t, s.IsOverBudget)
}

func TestSummarizeOverBudget(t *testing.T) {
	s := Summarize([]models.Expense{
		{Category: "flights", Amount: 450},
		{Category: "hotels", Amount: 600},
	}, &models.Budget{Amount: 1000})

	assert.Equal(t, -50.0, s.RemainingBudget)
	assert.Equal(t, 105, s.BudgetUsagePercentage)
	assert.True(t, s.IsOverBudget)
	assert.False(t, s.IsNearBudget, "over budget must not also read as near budget")
}

func TestSummarizeExactlyAtBudget(t *testing.T) {
	s := Summarize([]models.Expense{{Category: "tours", Amount: 1000}}, &models.Budget{Amount: 1000})

	assert.Equal(t, 100, s.BudgetUsagePercentage)
	assert.Equal(t, 0.0, s.RemainingBudget)
	assert.False(t, s.IsOverBudget)
	assert.False(t, s.IsNearBudget)
}

func TestCategoryBreakdownEmpty(t *testing.T) {
	rows := CategoryBreakdown(nil)

	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestCategoryBreakdownGroupsAndSorts(t *testing.T) {
	rows := CategoryBreakdown([]models.Expense{
		{Category: "food", Amount: 100},
		{Category: "flights", Amount: 500},
		{Category: "food", Amount: 150},
		{Category: "tours", Amount: 250},
	})

	assert.Len(t, rows, 3)
	assert.Equal(t, "flights", rows[0].Category)
	assert.Equal(t, 500.0, rows[0].Amount)
	assert.Equal(t, "food", rows[1].Category)
	assert.Equal(t, 250.0, rows[1].Amount)
	assert.Equal(t, "tours", rows[2].Category)
	assert.Equal(t, 50.0, rows[0].Percentage)
	assert.Equal(t, 25.0, rows[1].Percentage)
}

func TestCategoryBreakdownTiesKeepFirstSeenOrder(t *testing.T) {
	rows := CategoryBreakdown([]models.Expense{
		{Category: "b", Amount: 100},
		{Category: "a", Amount: 100},
	})

	assert.Equal(t, "b", rows[0].Category)
	assert.Equal(t, "a", rows[1].Category)
}

func TestCategoryBreakdownRoundsToOneDecimal(t *testing.T) {
	rows := CategoryBreakdown([]models.Expense{
		{Category: "big", Amount: 999},
		{Category: "tiny", Amount: 1},
	})

	assert.Equal(t, 99.9, rows[0].Percentage)
	assert.Equal(t, 0.1, rows[1].Percentage)
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(now.Add(-time.Hour), now))
	assert.Equal(t, 0, DaysUntil(now, now))
	assert.Equal(t, 1, DaysUntil(now.Add(6*time.Hour), now), "partial days round up")
	assert.Equal(t, 7, DaysUntil(now.AddDate(0, 0, 7), now))
}
