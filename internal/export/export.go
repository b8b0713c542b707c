// Package export produces one-shot, read-only exports of a ledger snapshot:
// a plain-text summary for download and a multi-sheet spreadsheet. There is
// no import path; exports never round-trip.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "tripledger/internal/errors"
	"tripledger/internal/ledger"
	"tripledger/internal/metrics"
)

// Service renders ledger snapshots into export formats.
type Service struct{}

// NewService creates a new export Service.
func NewService() *Service {
	return &Service{}
}

// Snapshot renders a plain-text export of the ledger: budget, expenses,
// total spent, remaining budget, and the export timestamp.
func (s *Service) Snapshot(snap ledger.Snapshot, at time.Time) []byte {
	summary := metrics.Summarize(snap.Expenses, snap.Budget)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Travel Expense Snapshot\n")
	fmt.Fprintf(&buf, "Exported: %s\n\n", at.Format(time.RFC3339))

	if snap.Budget != nil {
		fmt.Fprintf(&buf, "Budget: %.2f\n", snap.Budget.Amount)
	} else {
		fmt.Fprintf(&buf, "Budget: not set\n")
	}
	fmt.Fprintf(&buf, "Total spent: %.2f\n", summary.TotalSpent)
	if summary.HasBudget {
		fmt.Fprintf(&buf, "Remaining budget: %.2f\n", summary.RemainingBudget)
	}
	fmt.Fprintf(&buf, "\nExpenses (%d):\n", len(snap.Expenses))
	for _, e := range snap.Expenses {
		fmt.Fprintf(&buf, "  %s  %-24s %10.2f\n",
			e.CreatedAt.Format("2006-01-02"), e.Category, e.Amount)
	}

	return buf.Bytes()
}

// Workbook renders a spreadsheet with three sheets: expense detail, summary
// metrics, and the per-category breakdown with percentages.
func (s *Service) Workbook(snap ledger.Snapshot) ([]byte, error) {
	summary := metrics.Summarize(snap.Expenses, snap.Budget)
	breakdown := metrics.CategoryBreakdown(snap.Expenses)

	f := excelize.NewFile()
	defer f.Close()

	const (
		expensesSheet   = "Expenses"
		summarySheet    = "Summary"
		categoriesSheet = "Categories"
	)

	if err := f.SetSheetName("Sheet1", expensesSheet); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := f.NewSheet(categoriesSheet); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.writeExpenses(f, expensesSheet, snap); err != nil {
		return nil, err
	}
	if err := s.writeSummary(f, summarySheet, snap, summary); err != nil {
		return nil, err
	}
	if err := s.writeCategories(f, categoriesSheet, breakdown); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}

func (s *Service) writeExpenses(f *excelize.File, sheet string, snap ledger.Snapshot) error {
	rows := [][]interface{}{{"Category", "Amount", "Created", "Updated"}}
	for _, e := range snap.Expenses {
		rows = append(rows, []interface{}{
			e.Category,
			e.Amount,
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	return writeRows(f, sheet, rows)
}

func (s *Service) writeSummary(f *excelize.File, sheet string, snap ledger.Snapshot, summary metrics.Summary) error {
	budget := interface{}("not set")
	if snap.Budget != nil {
		budget = snap.Budget.Amount
	}
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Budget", budget},
		{"Total spent", summary.TotalSpent},
		{"Remaining budget", summary.RemainingBudget},
		{"Budget usage %", summary.BudgetUsagePercentage},
		{"Over budget", summary.IsOverBudget},
		{"Near budget", summary.IsNearBudget},
	}
	return writeRows(f, sheet, rows)
}

func (s *Service) writeCategories(f *excelize.File, sheet string, breakdown []metrics.CategoryTotal) error {
	rows := [][]interface{}{{"Category", "Amount", "Share %"}}
	for _, row := range breakdown {
		rows = append(rows, []interface{}{row.Category, row.Amount, FormatShare(row.Amount, row.Percentage)})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// FormatShare renders a category's percentage. Categories with spending that
// rounds below 0.1% display as "<0.1" rather than "0.0".
func FormatShare(amount, pct float64) string {
	if amount > 0 && pct < 0.1 {
		return "<0.1"
	}
	return fmt.Sprintf("%.1f", pct)
}
