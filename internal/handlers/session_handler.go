package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// SessionHandler handles login, logout and the current identity
type SessionHandler struct {
	session SessionService
	logger  arbor.ILogger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(session SessionService, logger arbor.ILogger) *SessionHandler {
	return &SessionHandler{
		session: session,
		logger:  logger,
	}
}

type loginRequest struct {
	Email string `json:"email"`
}

// LoginHandler names the current user
// POST /api/session/login {"email": "..."}
func (h *SessionHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.session.Login(r.Context(), req.Email)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user": user,
	})
}

// LogoutHandler clears the current user
// POST /api/session/logout
func (h *SessionHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if err := h.session.Logout(r.Context()); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteSuccess(w, "Logged out")
}

// CurrentUserHandler returns the current user or null
// GET /api/session
func (h *SessionHandler) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	user, err := h.session.CurrentUser()
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user": user,
	})
}
