package services

import (
	"errors"
	"strings"
	"time"

	"github.com/isdelr/finance-tracker-be/internal/models"
)

const sessionTTL = time.Hour

func (s *LedgerSuite) TestRegisterCreatesUserWithoutExposingPassword() {
	user, err := s.users.Register(s.ctx, models.RegisterInput{Username: "  alice ", Password: "secret"})
	s.Require().NoError(err)
	s.NotZero(user.ID)
	s.Equal("alice", user.Username)
	s.Empty(user.PasswordHash)

	var stored string
	s.Require().NoError(s.db.QueryRow("SELECT password FROM users WHERE id = ?", user.ID).Scan(&stored))
	s.NotEqual("secret", stored)
	s.Contains(stored, ".")
}

func (s *LedgerSuite) TestRegisterDuplicateUsername() {
	s.register("bob")

	_, err := s.users.Register(s.ctx, models.RegisterInput{Username: "bob", Password: "other"})
	s.ErrorIs(err, ErrConflict)
}

func (s *LedgerSuite) TestRegisterValidation() {
	_, err := s.users.Register(s.ctx, models.RegisterInput{Username: " ", Password: "x"})
	var verr *ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal("username", verr.Field)
	s.Equal("Username is required", verr.Message)

	_, err = s.users.Register(s.ctx, models.RegisterInput{Username: "carol", Password: ""})
	s.Require().True(errors.As(err, &verr))
	s.Equal("password", verr.Field)

	_, err = s.users.Register(s.ctx, models.RegisterInput{Username: strings.Repeat("a", 65), Password: "x"})
	s.Require().True(errors.As(err, &verr))
	s.Equal("Username must be at most 64 characters", verr.Message)
}

func (s *LedgerSuite) TestAuthenticate() {
	registered := s.register("dave")

	user, err := s.users.Authenticate(s.ctx, "dave", "pw-dave")
	s.Require().NoError(err)
	s.Equal(registered.ID, user.ID)
	s.Empty(user.PasswordHash)

	_, err = s.users.Authenticate(s.ctx, "dave", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.users.Authenticate(s.ctx, "nobody", "pw-dave")
	s.ErrorIs(err, ErrInvalidCredentials, "unknown users look like wrong passwords")
}

func (s *LedgerSuite) TestGetUserByID() {
	registered := s.register("erin")

	user, err := s.users.GetUserByID(s.ctx, registered.ID)
	s.Require().NoError(err)
	s.Equal("erin", user.Username)

	_, err = s.users.GetUserByID(s.ctx, registered.ID+100)
	s.ErrorIs(err, ErrNotFound)
}

func (s *LedgerSuite) TestSessionLifecycle() {
	user := s.register("frank")

	session, err := s.sessions.CreateSession(s.ctx, user.ID)
	s.Require().NoError(err)
	s.NotEmpty(session.ID)
	s.WithinDuration(time.Now().Add(sessionTTL), session.ExpiresAt, 5*time.Second)

	resolved, err := s.sessions.ResolveSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(user.ID, resolved.ID)

	s.Require().NoError(s.sessions.DestroySession(s.ctx, session.ID))
	_, err = s.sessions.ResolveSession(s.ctx, session.ID)
	s.ErrorIs(err, ErrUnauthenticated)

	s.NoError(s.sessions.DestroySession(s.ctx, "never-existed"))
}

func (s *LedgerSuite) TestExpiredSessionsAreRejectedAndPruned() {
	user := s.register("gina")

	start := time.Now()
	s.sessions.now = func() time.Time { return start }
	expired, err := s.sessions.CreateSession(s.ctx, user.ID)
	s.Require().NoError(err)

	s.sessions.now = func() time.Time { return start.Add(30 * time.Minute) }
	live, err := s.sessions.CreateSession(s.ctx, user.ID)
	s.Require().NoError(err)

	s.sessions.now = func() time.Time { return start.Add(sessionTTL + time.Minute) }
	_, err = s.sessions.ResolveSession(s.ctx, expired.ID)
	s.ErrorIs(err, ErrUnauthenticated)

	_, err = s.sessions.ResolveSession(s.ctx, live.ID)
	s.NoError(err)

	pruned, err := s.sessions.PruneExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), pruned)
}
