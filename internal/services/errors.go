package services

import (
	"errors"

	"github.com/isdelr/finance-tracker-be/internal/auth"
)

var (
	// ErrConflict is returned when registering a username that is taken.
	ErrConflict = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthenticated is returned when no live session backs a request.
	ErrUnauthenticated = auth.ErrUnauthenticated
	// ErrCategoryInUse is returned when deleting a category expenses still reference.
	ErrCategoryInUse = errors.New("category is used by existing expenses")
	// ErrNotFound is returned when a record does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports the first invalid field of an input payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
