package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/finance-tracker-be/internal/models"
)

// SessionServiceProvider defines the interface for server-side sessions.
type SessionServiceProvider interface {
	CreateSession(ctx context.Context, userID int64) (models.Session, error)
	ResolveSession(ctx context.Context, sessionID string) (*models.User, error)
	DestroySession(ctx context.Context, sessionID string) error
	PruneExpired(ctx context.Context) (int64, error)
}

// SessionService stores sessions in the same database as the ledger.
type SessionService struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSessionService creates a new SessionService issuing sessions valid for ttl.
func NewSessionService(db *sql.DB, ttl time.Duration) *SessionService {
	return &SessionService{db: db, ttl: ttl, now: time.Now}
}

// CreateSession opens a new session for userID.
func (s *SessionService) CreateSession(ctx context.Context, userID int64) (models.Session, error) {
	now := s.now().UTC()
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)",
		session.ID, session.UserID, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// ResolveSession returns the owner of a live session. Missing and expired
// sessions both yield ErrUnauthenticated.
func (s *SessionService) ResolveSession(ctx context.Context, sessionID string) (*models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ? AND s.expires_at > ?`,
		sessionID, s.now().UTC(),
	)
	if err := row.Scan(&user.ID, &user.Username, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return &user, nil
}

// DestroySession deletes a session; destroying an unknown session is not an error.
func (s *SessionService) DestroySession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PruneExpired removes every expired session and reports how many went.
func (s *SessionService) PruneExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return res.RowsAffected()
}
