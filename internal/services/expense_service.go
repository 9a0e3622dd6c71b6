package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/isdelr/finance-tracker-be/internal/models"
	ws "github.com/isdelr/finance-tracker-be/internal/websocket"
)

// ExpenseServiceProvider defines the interface for expense services.
type ExpenseServiceProvider interface {
	ListExpenses(ctx context.Context, userID int64) ([]models.Expense, error)
	CreateExpense(ctx context.Context, userID int64, input models.ExpenseInput) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id, userID int64) error
}

// ExpenseService provides business logic for expense management.
type ExpenseService struct {
	db         *sql.DB
	categories CategoryServiceProvider
	notifier   Notifier
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(db *sql.DB, categories CategoryServiceProvider, notifier Notifier) *ExpenseService {
	return &ExpenseService{db: db, categories: categories, notifier: orNop(notifier)}
}

// ListExpenses returns the user's expenses joined with their category, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID int64) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.user_id, e.amount, e.date, e.category_id, e.payment_mode, e.description,
		       c.id, c.name, c.type, c.is_default, c.user_id
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = ?
		ORDER BY e.date DESC, e.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var (
			e           models.Expense
			description sql.NullString
			catID       sql.NullInt64
			catName     sql.NullString
			catType     sql.NullString
			catDefault  sql.NullBool
			catUserID   sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Date, &e.CategoryID, &e.PaymentMode, &description,
			&catID, &catName, &catType, &catDefault, &catUserID); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if description.Valid {
			e.Description = &description.String
		}
		if catID.Valid {
			e.Category = &models.Category{
				ID:        catID.Int64,
				Name:      catName.String,
				Type:      catType.String,
				IsDefault: catDefault.Bool,
			}
			if catUserID.Valid {
				e.Category.UserID = &catUserID.Int64
			}
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CreateExpense validates input and stores it with userID as owner.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID int64, input models.ExpenseInput) (*models.Expense, error) {
	input.PaymentMode = strings.TrimSpace(input.PaymentMode)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// Tags already guarantee these parse.
	amount, _ := parseAmount(string(input.Amount))
	date, _ := parseDate(input.Date)
	categoryID, err := strconv.ParseInt(string(input.CategoryID), 10, 64)
	if err != nil {
		return nil, &ValidationError{Field: "categoryId", Message: "Category must be a numeric id"}
	}

	category, err := s.categories.GetVisibleCategory(ctx, categoryID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &ValidationError{Field: "categoryId", Message: "Category does not exist"}
		}
		return nil, err
	}

	var description *string
	if input.Description != nil {
		if d := strings.TrimSpace(*input.Description); d != "" {
			description = &d
		}
	}

	expense := &models.Expense{
		UserID:      userID,
		Amount:      formatAmount(amount),
		Date:        date,
		CategoryID:  categoryID,
		PaymentMode: input.PaymentMode,
		Description: description,
		Category:    category,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO expenses (user_id, amount, date, category_id, payment_mode, description)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		expense.UserID, expense.Amount, expense.Date, expense.CategoryID, expense.PaymentMode, expense.Description,
	).Scan(&expense.ID)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	s.notifier.Notify(userID, ws.ActionExpenseCreated, expense)
	return expense, nil
}

// DeleteExpense removes an expense owned by userID. Unknown IDs and other
// users' expenses are silently ignored.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.notifier.Notify(userID, ws.ActionExpenseDeleted, ws.Deleted{ID: id})
	}
	return nil
}
