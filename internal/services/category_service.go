package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/finance-tracker-be/internal/database"
	"github.com/isdelr/finance-tracker-be/internal/models"
	ws "github.com/isdelr/finance-tracker-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// CategoryServiceProvider defines the interface for category services.
type CategoryServiceProvider interface {
	ListCategories(ctx context.Context, userID int64) ([]models.Category, error)
	CreateCategory(ctx context.Context, userID int64, input models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id, userID int64) error
	GetVisibleCategory(ctx context.Context, id, userID int64) (*models.Category, error)
	SeedDefaults(ctx context.Context) (int, error)
}

// CategoryService provides business logic for category management.
type CategoryService struct {
	db       *sql.DB
	notifier Notifier
}

// NewCategoryService creates a new CategoryService. A nil notifier disables push updates.
func NewCategoryService(db *sql.DB, notifier Notifier) *CategoryService {
	return &CategoryService{db: db, notifier: orNop(notifier)}
}

const categoryColumns = "id, name, type, is_default, user_id"

// ListCategories returns the global defaults plus the categories owned by userID.
func (s *CategoryService) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id IS NULL OR user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory stores a category owned by userID.
func (s *CategoryService) CreateCategory(ctx context.Context, userID int64, input models.CategoryInput) (*models.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	category := &models.Category{Name: input.Name, Type: input.Type, UserID: &userID}
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO categories (name, type, is_default, user_id) VALUES (?, ?, 0, ?) RETURNING id",
		category.Name, category.Type, userID,
	).Scan(&category.ID)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	s.notifier.Notify(userID, ws.ActionCategoryCreated, category)
	return category, nil
}

// DeleteCategory removes a category owned by userID. Defaults, other users'
// categories and unknown IDs are left alone without error.
func (s *CategoryService) DeleteCategory(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("delete category %d: %w", id, err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		s.notifier.Notify(userID, ws.ActionCategoryDeleted, ws.Deleted{ID: id})
	}
	return nil
}

// GetVisibleCategory returns category id if it is a global default or owned
// by userID, and ErrNotFound otherwise.
func (s *CategoryService) GetVisibleCategory(ctx context.Context, id, userID int64) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ? AND (user_id IS NULL OR user_id = ?)", id, userID)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// SeedDefaults inserts the default categories unless global defaults already
// exist. It returns the number of rows inserted, so a second call yields 0.
func (s *CategoryService) SeedDefaults(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE user_id IS NULL AND is_default = 1").Scan(&existing); err != nil {
		return 0, fmt.Errorf("count default categories: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	for _, c := range models.DefaultCategories {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO categories (name, type, is_default, user_id) VALUES (?, ?, 1, NULL)", c.Name, c.Type); err != nil {
			return 0, fmt.Errorf("insert default category %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	log.Info().Int("count", len(models.DefaultCategories)).Msg("Seeded default categories")
	return len(models.DefaultCategories), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (models.Category, error) {
	var (
		c      models.Category
		userID sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Type, &c.IsDefault, &userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("scan category: %w", err)
	}
	if userID.Valid {
		c.UserID = &userID.Int64
	}
	return c, nil
}
