package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/finance-tracker-be/internal/models"
	"github.com/rs/zerolog/log"
)

// SessionCookieName is the cookie carrying the signed session reference.
const SessionCookieName = "ledger.sid"

// ErrUnauthenticated is returned when a request carries no usable session.
var ErrUnauthenticated = errors.New("not authenticated")

// Claims defines the signed cookie payload. RegisteredClaims.ID holds the
// server-side session ID; the session row stays the source of truth.
type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Signer signs and verifies session cookies with an HMAC secret.
type Signer struct {
	key []byte
}

// NewSigner creates a Signer for the given secret.
func NewSigner(secret string) *Signer {
	return &Signer{key: []byte(secret)}
}

// Sign creates the cookie value referencing session.
func (s *Signer) Sign(session models.Session) (string, error) {
	claims := &Claims{
		UserID: session.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   strconv.FormatInt(session.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Parse validates a cookie value and returns its claims.
func (s *Signer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}

// SessionResolver maps a session ID to its owner. Unknown, expired or
// revoked sessions must yield an error.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (*models.User, error)
}

type contextKey string

const (
	userKey      = contextKey("user")
	sessionIDKey = contextKey("sessionID")
)

// WithUser returns a context carrying the authenticated user and session.
func WithUser(ctx context.Context, user *models.User, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// CurrentUser returns the authenticated user stored by Middleware.
func CurrentUser(ctx context.Context) (*models.User, error) {
	user, ok := ctx.Value(userKey).(*models.User)
	if !ok || user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// SessionID returns the current session ID, or "" outside the guard.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// Middleware is the guard in front of every protected route.
func Middleware(signer *Signer, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				Unauthorized(w)
				return
			}

			claims, err := signer.Parse(tokenStr)
			if err != nil {
				log.Debug().Err(err).Msg("Rejected session cookie")
				Unauthorized(w)
				return
			}

			user, err := resolver.ResolveSession(r.Context(), claims.ID)
			if err != nil || user.ID != claims.UserID {
				Unauthorized(w)
				return
			}

			ctx := WithUser(r.Context(), user, claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest reads the session token from the Authorization header
// or, failing that, from the session cookie.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && token != "" {
			return token
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Unauthorized writes the uniform 401 body; it never says why.
func Unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "Not authenticated"})
}

// SetSessionCookie attaches the signed session reference to the response.
func SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
