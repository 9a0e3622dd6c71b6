package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/isdelr/finance-tracker-be/internal/models"
	ws "github.com/isdelr/finance-tracker-be/internal/websocket"
)

// IncomeServiceProvider defines the interface for income services.
type IncomeServiceProvider interface {
	ListIncomes(ctx context.Context, userID int64) ([]models.Income, error)
	CreateIncome(ctx context.Context, userID int64, input models.IncomeInput) (*models.Income, error)
	DeleteIncome(ctx context.Context, id, userID int64) error
}

// IncomeService provides business logic for income management.
type IncomeService struct {
	db       *sql.DB
	notifier Notifier
}

// NewIncomeService creates a new IncomeService.
func NewIncomeService(db *sql.DB, notifier Notifier) *IncomeService {
	return &IncomeService{db: db, notifier: orNop(notifier)}
}

// ListIncomes returns the user's incomes, newest first.
func (s *IncomeService) ListIncomes(ctx context.Context, userID int64) ([]models.Income, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, amount, date, source FROM incomes WHERE user_id = ? ORDER BY date DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	incomes := []models.Income{}
	for rows.Next() {
		var i models.Income
		if err := rows.Scan(&i.ID, &i.UserID, &i.Amount, &i.Date, &i.Source); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, i)
	}
	return incomes, rows.Err()
}

// CreateIncome validates input and stores it with userID as owner.
func (s *IncomeService) CreateIncome(ctx context.Context, userID int64, input models.IncomeInput) (*models.Income, error) {
	input.Source = strings.TrimSpace(input.Source)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	amount, _ := parseAmount(string(input.Amount))
	date, _ := parseDate(input.Date)

	income := &models.Income{
		UserID: userID,
		Amount: formatAmount(amount),
		Date:   date,
		Source: input.Source,
	}
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO incomes (user_id, amount, date, source) VALUES (?, ?, ?, ?) RETURNING id",
		income.UserID, income.Amount, income.Date, income.Source,
	).Scan(&income.ID)
	if err != nil {
		return nil, fmt.Errorf("insert income: %w", err)
	}

	s.notifier.Notify(userID, ws.ActionIncomeCreated, income)
	return income, nil
}

// DeleteIncome removes an income owned by userID. Unknown IDs and other
// users' incomes are silently ignored.
func (s *IncomeService) DeleteIncome(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM incomes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.notifier.Notify(userID, ws.ActionIncomeDeleted, ws.Deleted{ID: id})
	}
	return nil
}
