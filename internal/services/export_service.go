package services

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook.
const (
	SheetExpenses = "Expenses"
	SheetIncomes  = "Incomes"
	SheetSummary  = "Summary"
)

const exportDateLayout = "2006-01-02"

// ExportServiceProvider defines the interface for spreadsheet exports.
type ExportServiceProvider interface {
	ExportWorkbook(ctx context.Context, userID int64, w io.Writer) error
}

// ExportService renders a user's ledger as an XLSX workbook.
type ExportService struct {
	expenses ExpenseServiceProvider
	incomes  IncomeServiceProvider
}

// NewExportService creates a new ExportService.
func NewExportService(expenses ExpenseServiceProvider, incomes IncomeServiceProvider) *ExportService {
	return &ExportService{expenses: expenses, incomes: incomes}
}

// ExportWorkbook writes the caller's expenses, incomes and summary to w.
func (s *ExportService) ExportWorkbook(ctx context.Context, userID int64, w io.Writer) error {
	expenses, err := s.expenses.ListExpenses(ctx, userID)
	if err != nil {
		return err
	}
	incomes, err := s.incomes.ListIncomes(ctx, userID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetExpenses); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetIncomes, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	rows := [][]interface{}{{"Date", "Category", "Payment Mode", "Amount", "Description"}}
	for _, e := range expenses {
		category := UnknownCategory
		if e.Category != nil {
			category = e.Category.Name
		}
		description := ""
		if e.Description != nil {
			description = *e.Description
		}
		rows = append(rows, []interface{}{
			e.Date.Format(exportDateLayout), category, e.PaymentMode, amountOrZero(e.Amount).InexactFloat64(), description,
		})
	}
	if err := writeRows(f, SheetExpenses, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"Date", "Source", "Amount"}}
	for _, i := range incomes {
		rows = append(rows, []interface{}{i.Date.Format(exportDateLayout), i.Source, amountOrZero(i.Amount).InexactFloat64()})
	}
	if err := writeRows(f, SheetIncomes, rows); err != nil {
		return err
	}

	summary := Summarize(expenses, incomes)
	rows = [][]interface{}{
		{"Total Income", summary.TotalIncome},
		{"Total Expense", summary.TotalExpense},
		{"Balance", summary.Balance},
		{},
		{"Category", "Spent"},
	}
	for _, c := range summary.CategoryWise {
		rows = append(rows, []interface{}{c.Name, c.Value})
	}
	if err := writeRows(f, SheetSummary, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
