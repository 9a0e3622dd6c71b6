package services

import (
	"context"
	"strings"

	"github.com/isdelr/finance-tracker-be/internal/models"
	"github.com/shopspring/decimal"
)

// UnknownCategory labels expenses whose category could not be resolved.
const UnknownCategory = "Unknown"

// StatsServiceProvider defines the interface for the summary endpoint.
type StatsServiceProvider interface {
	Summary(ctx context.Context, userID int64) (models.StatsSummary, error)
}

// StatsService derives summaries from the live ledger. Nothing is cached.
type StatsService struct {
	expenses ExpenseServiceProvider
	incomes  IncomeServiceProvider
}

// NewStatsService creates a new StatsService.
func NewStatsService(expenses ExpenseServiceProvider, incomes IncomeServiceProvider) *StatsService {
	return &StatsService{expenses: expenses, incomes: incomes}
}

// Summary loads the user's expenses and incomes and aggregates them.
func (s *StatsService) Summary(ctx context.Context, userID int64) (models.StatsSummary, error) {
	expenses, err := s.expenses.ListExpenses(ctx, userID)
	if err != nil {
		return models.StatsSummary{}, err
	}
	incomes, err := s.incomes.ListIncomes(ctx, userID)
	if err != nil {
		return models.StatsSummary{}, err
	}
	return Summarize(expenses, incomes), nil
}

// Summarize totals expenses and incomes, computes the balance and groups
// expenses by category name. Unparseable amounts count as zero. Groups
// appear in order of first occurrence.
func Summarize(expenses []models.Expense, incomes []models.Income) models.StatsSummary {
	totalExpense := decimal.Zero
	byCategory := map[string]decimal.Decimal{}
	order := []string{}

	for _, e := range expenses {
		amount := amountOrZero(e.Amount)
		totalExpense = totalExpense.Add(amount)

		name := UnknownCategory
		if e.Category != nil && e.Category.Name != "" {
			name = e.Category.Name
		}
		if _, seen := byCategory[name]; !seen {
			order = append(order, name)
		}
		byCategory[name] = byCategory[name].Add(amount)
	}

	totalIncome := decimal.Zero
	for _, i := range incomes {
		totalIncome = totalIncome.Add(amountOrZero(i.Amount))
	}

	categoryWise := make([]models.CategoryTotal, 0, len(order))
	for _, name := range order {
		categoryWise = append(categoryWise, models.CategoryTotal{
			Name:  name,
			Value: byCategory[name].InexactFloat64(),
		})
	}

	return models.StatsSummary{
		TotalIncome:  totalIncome.StringFixed(2),
		TotalExpense: totalExpense.StringFixed(2),
		Balance:      totalIncome.Sub(totalExpense).StringFixed(2),
		CategoryWise: categoryWise,
	}
}

// amountOrZero reads a stored amount. Anything that is not a whole plain
// decimal counts as zero, including numeric prefixes such as "12abc".
func amountOrZero(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if !plainAmount.MatchString(strings.TrimPrefix(s, "-")) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
