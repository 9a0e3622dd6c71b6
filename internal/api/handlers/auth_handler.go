package handlers

import (
	"net/http"

	"github.com/isdelr/finance-tracker-be/internal/auth"
	"github.com/isdelr/finance-tracker-be/internal/models"
	"github.com/isdelr/finance-tracker-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// AuthHandler handles registration, login and session lifecycle.
type AuthHandler struct {
	users         services.UserServiceProvider
	sessions      services.SessionServiceProvider
	signer        *auth.Signer
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies should be set
// whenever the API is served over HTTPS.
func NewAuthHandler(users services.UserServiceProvider, sessions services.SessionServiceProvider, signer *auth.Signer, secureCookies bool) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, signer: signer, secureCookies: secureCookies}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload models.RegisterInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.users.Register(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Int64("user_id", user.ID).Msg("User registered")

	if !h.startSession(w, r, user) {
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed authentication attempt")
		writeError(w, r, err)
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout destroys the caller's session, if any, and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		if claims, err := h.signer.Parse(token); err == nil {
			if err := h.sessions.DestroySession(r.Context(), claims.ID); err != nil {
				writeError(w, r, err)
				return
			}
		}
	}

	auth.ClearSessionCookie(w, h.secureCookies)
	writeMessage(w, http.StatusOK, "Logged out")
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User) bool {
	session, err := h.sessions.CreateSession(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return false
	}

	token, err := h.signer.Sign(session)
	if err != nil {
		writeError(w, r, err)
		return false
	}

	auth.SetSessionCookie(w, token, session.ExpiresAt, h.secureCookies)
	return true
}
