package services

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/isdelr/finance-tracker-be/internal/models"
	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string { return &s }

func withCategory(in models.ExpenseInput, raw string) models.ExpenseInput {
	in.CategoryID = models.FlexString(raw)
	return in
}

func (s *LedgerSuite) expenseInput(amount string, date string, categoryID int64, mode string) models.ExpenseInput {
	return models.ExpenseInput{
		Amount:      models.FlexString(amount),
		Date:        date,
		CategoryID:  models.FlexString(strconv.FormatInt(categoryID, 10)),
		PaymentMode: mode,
	}
}

func (s *LedgerSuite) TestSeedDefaultsIsIdempotent() {
	inserted, err := s.categories.SeedDefaults(s.ctx)
	s.Require().NoError(err)
	s.Zero(inserted, "defaults were already seeded in SetupTest")

	var count int
	s.Require().NoError(s.db.QueryRow("SELECT COUNT(*) FROM categories WHERE user_id IS NULL").Scan(&count))
	s.Equal(len(models.DefaultCategories), count)
}

func (s *LedgerSuite) TestListCategoriesShowsDefaultsAndOwnOnly() {
	alice := s.register("alice")
	bob := s.register("bob")

	own, err := s.categories.CreateCategory(s.ctx, alice.ID, models.CategoryInput{Name: " Pets ", Type: models.CategoryTypeExpense})
	s.Require().NoError(err)
	s.Equal("Pets", own.Name)
	s.False(own.IsDefault)
	s.Require().NotNil(own.UserID)
	s.Equal(alice.ID, *own.UserID)

	_, err = s.categories.CreateCategory(s.ctx, bob.ID, models.CategoryInput{Name: "Gym", Type: models.CategoryTypeExpense})
	s.Require().NoError(err)

	list, err := s.categories.ListCategories(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Len(list, len(models.DefaultCategories)+1)

	names := map[string]bool{}
	for _, c := range list {
		names[c.Name] = true
		if c.UserID == nil {
			s.True(c.IsDefault)
		}
	}
	s.True(names["Pets"])
	s.False(names["Gym"], "other users' categories must not leak")
	s.True(names["Food"])
}

func (s *LedgerSuite) TestCreateCategoryValidation() {
	user := s.register("alice")

	_, err := s.categories.CreateCategory(s.ctx, user.ID, models.CategoryInput{Name: "", Type: models.CategoryTypeIncome})
	var verr *ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal("Name is required", verr.Message)

	_, err = s.categories.CreateCategory(s.ctx, user.ID, models.CategoryInput{Name: "Bonus", Type: "transfer"})
	s.Require().True(errors.As(err, &verr))
	s.Equal("type", verr.Field)
	s.Equal("Type must be one of expense, income", verr.Message)
}

func (s *LedgerSuite) TestDeleteCategory() {
	alice := s.register("alice")
	bob := s.register("bob")

	own, err := s.categories.CreateCategory(s.ctx, alice.ID, models.CategoryInput{Name: "Pets", Type: models.CategoryTypeExpense})
	s.Require().NoError(err)

	// Bob cannot remove Alice's category, nobody can remove a default.
	s.NoError(s.categories.DeleteCategory(s.ctx, own.ID, bob.ID))
	food := s.defaultCategory("Food", models.CategoryTypeExpense)
	s.NoError(s.categories.DeleteCategory(s.ctx, food.ID, alice.ID))

	_, err = s.categories.GetVisibleCategory(s.ctx, own.ID, alice.ID)
	s.NoError(err)
	_, err = s.categories.GetVisibleCategory(s.ctx, food.ID, alice.ID)
	s.NoError(err)

	s.Require().NoError(s.categories.DeleteCategory(s.ctx, own.ID, alice.ID))
	_, err = s.categories.GetVisibleCategory(s.ctx, own.ID, alice.ID)
	s.ErrorIs(err, ErrNotFound)

	s.Equal([]string{"category.created", "category.deleted"}, s.notifier.actions())
}

func (s *LedgerSuite) TestDeleteCategoryInUse() {
	user := s.register("alice")
	own, err := s.categories.CreateCategory(s.ctx, user.ID, models.CategoryInput{Name: "Pets", Type: models.CategoryTypeExpense})
	s.Require().NoError(err)

	_, err = s.expenses.CreateExpense(s.ctx, user.ID, s.expenseInput("12", "2024-03-01", own.ID, "Cash"))
	s.Require().NoError(err)

	s.ErrorIs(s.categories.DeleteCategory(s.ctx, own.ID, user.ID), ErrCategoryInUse)
}

func (s *LedgerSuite) TestCreateAndListExpenses() {
	user := s.register("alice")
	food := s.defaultCategory("Food", models.CategoryTypeExpense)
	travel := s.defaultCategory("Travel", models.CategoryTypeExpense)

	input := s.expenseInput("12.50", "2024-03-01", food.ID, "UPI")
	input.Description = strPtr("  lunch ")
	created, err := s.expenses.CreateExpense(s.ctx, user.ID, input)
	s.Require().NoError(err)
	s.NotZero(created.ID)
	s.Equal("12.50", created.Amount)
	s.Equal("2024-03-01", created.Date.Format("2006-01-02"))
	s.Require().NotNil(created.Description)
	s.Equal("lunch", *created.Description)
	s.Require().NotNil(created.Category)
	s.Equal("Food", created.Category.Name)

	_, err = s.expenses.CreateExpense(s.ctx, user.ID, s.expenseInput("40", "2024-03-05T10:00:00Z", travel.ID, "Card"))
	s.Require().NoError(err)

	list, err := s.expenses.ListExpenses(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("40", list[0].Amount, "newest expense first")
	s.Equal("Travel", list[0].Category.Name)
	s.Equal("12.50", list[1].Amount)
	s.Nil(list[0].Description)
	s.Equal("lunch", *list[1].Description)
}

func (s *LedgerSuite) TestCreateExpenseValidation() {
	user := s.register("alice")
	food := s.defaultCategory("Food", models.CategoryTypeExpense)

	tests := []struct {
		name    string
		input   models.ExpenseInput
		field   string
		message string
	}{
		{"missing amount", s.expenseInput("", "2024-03-01", food.ID, "Cash"), "amount", "Amount is required"},
		{"negative amount", s.expenseInput("-5", "2024-03-01", food.ID, "Cash"), "amount", "Amount must be a positive number"},
		{"zero amount", s.expenseInput("0", "2024-03-01", food.ID, "Cash"), "amount", "Amount must be a positive number"},
		{"text amount", s.expenseInput("ten", "2024-03-01", food.ID, "Cash"), "amount", "Amount must be a positive number"},
		{"bad date", s.expenseInput("5", "yesterday", food.ID, "Cash"), "date", "Date must be a valid date"},
		{"bad mode", s.expenseInput("5", "2024-03-01", food.ID, "Cheque"), "paymentMode", "Payment mode must be one of Cash, Card, UPI, Bank Transfer"},
		{"exponent amount", s.expenseInput("1e5000000", "2024-03-01", food.ID, "Cash"), "amount", "Amount must be a positive number"},
		{"too many digits", s.expenseInput(strings.Repeat("9", 40), "2024-03-01", food.ID, "Cash"), "amount", "Amount must be a positive number"},
		{"too many decimals", s.expenseInput("1.23456", "2024-03-01", food.ID, "Cash"), "amount", "Amount must be a positive number"},
		{"signed amount", s.expenseInput("+5", "2024-03-01", food.ID, "Cash"), "amount", "Amount must be a positive number"},
		{"text category", withCategory(s.expenseInput("5", "2024-03-01", 0, "Cash"), "abc"), "categoryId", "Category must be a numeric id"},
		{"fractional category", withCategory(s.expenseInput("5", "2024-03-01", 0, "Cash"), "3.0"), "categoryId", "Category must be a numeric id"},
		{"overflowing category", withCategory(s.expenseInput("5", "2024-03-01", 0, "Cash"), "99999999999999999999"), "categoryId", "Category must be a numeric id"},
		{"unknown category", s.expenseInput("5", "2024-03-01", 9999, "Cash"), "categoryId", "Category does not exist"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.expenses.CreateExpense(s.ctx, user.ID, tt.input)
			var verr *ValidationError
			s.Require().True(errors.As(err, &verr), "expected validation error, got %v", err)
			s.Equal(tt.field, verr.Field)
			s.Equal(tt.message, verr.Message)
		})
	}

	list, err := s.expenses.ListExpenses(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *LedgerSuite) TestCreateExpenseRejectsForeignCategory() {
	alice := s.register("alice")
	bob := s.register("bob")
	bobs, err := s.categories.CreateCategory(s.ctx, bob.ID, models.CategoryInput{Name: "Gym", Type: models.CategoryTypeExpense})
	s.Require().NoError(err)

	_, err = s.expenses.CreateExpense(s.ctx, alice.ID, s.expenseInput("5", "2024-03-01", bobs.ID, "Cash"))
	var verr *ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal("categoryId", verr.Field)
}

func (s *LedgerSuite) TestExpensesAreIsolatedPerUser() {
	alice := s.register("alice")
	bob := s.register("bob")
	food := s.defaultCategory("Food", models.CategoryTypeExpense)

	expense, err := s.expenses.CreateExpense(s.ctx, alice.ID, s.expenseInput("5", "2024-03-01", food.ID, "Cash"))
	s.Require().NoError(err)

	bobs, err := s.expenses.ListExpenses(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Empty(bobs)

	// Deleting someone else's expense is a silent no-op.
	s.Require().NoError(s.expenses.DeleteExpense(s.ctx, expense.ID, bob.ID))
	alices, err := s.expenses.ListExpenses(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Len(alices, 1)

	s.Require().NoError(s.expenses.DeleteExpense(s.ctx, expense.ID, alice.ID))
	alices, err = s.expenses.ListExpenses(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Empty(alices)

	s.Equal([]string{"expense.created", "expense.deleted"}, s.notifier.actions())
}

func (s *LedgerSuite) TestIncomes() {
	alice := s.register("alice")
	bob := s.register("bob")

	_, err := s.incomes.CreateIncome(s.ctx, alice.ID, models.IncomeInput{Amount: "1000", Date: "2024-01-31", Source: "Salary"})
	s.Require().NoError(err)
	latest, err := s.incomes.CreateIncome(s.ctx, alice.ID, models.IncomeInput{Amount: "250.5", Date: "2024-02-15", Source: " Freelancing "})
	s.Require().NoError(err)
	s.Equal("Freelancing", latest.Source)
	s.Equal("250.5", latest.Amount)

	_, err = s.incomes.CreateIncome(s.ctx, alice.ID, models.IncomeInput{Amount: "10", Date: "2024-02-15", Source: ""})
	var verr *ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal("Source is required", verr.Message)

	list, err := s.incomes.ListIncomes(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(latest.ID, list[0].ID)

	bobs, err := s.incomes.ListIncomes(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Empty(bobs)

	s.Require().NoError(s.incomes.DeleteIncome(s.ctx, latest.ID, bob.ID))
	s.Require().NoError(s.incomes.DeleteIncome(s.ctx, latest.ID, alice.ID))
	list, err = s.incomes.ListIncomes(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *LedgerSuite) TestSummaryFromLedger() {
	user := s.register("alice")
	food := s.defaultCategory("Food", models.CategoryTypeExpense)
	travel := s.defaultCategory("Travel", models.CategoryTypeExpense)

	for _, in := range []models.ExpenseInput{
		s.expenseInput("10", "2024-03-01", food.ID, "Cash"),
		s.expenseInput("20", "2024-03-02", food.ID, "Card"),
		s.expenseInput("15.25", "2024-03-03", travel.ID, "UPI"),
	} {
		_, err := s.expenses.CreateExpense(s.ctx, user.ID, in)
		s.Require().NoError(err)
	}
	_, err := s.incomes.CreateIncome(s.ctx, user.ID, models.IncomeInput{Amount: "100", Date: "2024-03-01", Source: "Salary"})
	s.Require().NoError(err)

	summary, err := s.stats.Summary(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("100.00", summary.TotalIncome)
	s.Equal("45.25", summary.TotalExpense)
	s.Equal("54.75", summary.Balance)
	s.ElementsMatch([]models.CategoryTotal{{Name: "Food", Value: 30}, {Name: "Travel", Value: 15.25}}, summary.CategoryWise)

	empty, err := s.stats.Summary(s.ctx, s.register("bob").ID)
	s.Require().NoError(err)
	s.Equal("0.00", empty.Balance)
	s.Empty(empty.CategoryWise)
}

func (s *LedgerSuite) TestExportWorkbook() {
	user := s.register("alice")
	food := s.defaultCategory("Food", models.CategoryTypeExpense)

	_, err := s.expenses.CreateExpense(s.ctx, user.ID, s.expenseInput("12.5", "2024-03-01", food.ID, "Cash"))
	s.Require().NoError(err)
	_, err = s.incomes.CreateIncome(s.ctx, user.ID, models.IncomeInput{Amount: "100", Date: "2024-03-01", Source: "Salary"})
	s.Require().NoError(err)

	var buf bytes.Buffer
	s.Require().NoError(s.export.ExportWorkbook(s.ctx, user.ID, &buf))

	f, err := excelize.OpenReader(&buf)
	s.Require().NoError(err)
	defer f.Close()

	s.Equal([]string{SheetExpenses, SheetIncomes, SheetSummary}, f.GetSheetList())

	expenses, err := f.GetRows(SheetExpenses)
	s.Require().NoError(err)
	s.Require().Len(expenses, 2)
	s.Equal([]string{"2024-03-01", "Food", "Cash", "12.5"}, expenses[1][:4])

	summary, err := f.GetRows(SheetSummary)
	s.Require().NoError(err)
	s.Equal([]string{"Balance", "87.50"}, summary[2])
}
