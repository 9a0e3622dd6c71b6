package models

// Category kinds.
const (
	CategoryTypeExpense = "expense"
	CategoryTypeIncome  = "income"
)

// Category labels expenses (and describes incomes). A nil UserID marks a
// global default visible to every user.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	IsDefault bool   `json:"isDefault"`
	UserID    *int64 `json:"userId"`
}

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=64"`
	Type string `json:"type" validate:"required,oneof=expense income"`
}

// DefaultCategories are seeded once as global defaults.
var DefaultCategories = []Category{
	{Name: "Food", Type: CategoryTypeExpense, IsDefault: true},
	{Name: "Travel", Type: CategoryTypeExpense, IsDefault: true},
	{Name: "Rent", Type: CategoryTypeExpense, IsDefault: true},
	{Name: "Education", Type: CategoryTypeExpense, IsDefault: true},
	{Name: "Medical", Type: CategoryTypeExpense, IsDefault: true},
	{Name: "Entertainment", Type: CategoryTypeExpense, IsDefault: true},
	{Name: "Other", Type: CategoryTypeExpense, IsDefault: true},
	{Name: "Salary", Type: CategoryTypeIncome, IsDefault: true},
	{Name: "Pocket Money", Type: CategoryTypeIncome, IsDefault: true},
	{Name: "Freelancing", Type: CategoryTypeIncome, IsDefault: true},
	{Name: "Other", Type: CategoryTypeIncome, IsDefault: true},
}
