package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/task-manager/internal/domain"
	"github.com/msomdec/task-manager/internal/metrics"
	"github.com/msomdec/task-manager/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth    *service.AuthService
	metrics *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler. m may be nil.
func NewAuthHandler(auth *service.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: m}
}

// HandleRegister processes a JSON registration request.
// POST /auth/register
// Request:  {"email":"...","password":"...","firstName":"...","lastName":"..."}
// Response: 201 {"token":"...","userId":1,"email":"...","firstName":"...","lastName":"..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.metrics.AuthEvent("register", outcomeOf(err))
		writeServiceError(w, "register user", err)
		return
	}
	h.metrics.AuthEvent("register", "success")

	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

// HandleLogin processes a JSON login request.
// POST /auth/login
// Request:  {"email":"...","password":"..."}
// Response: 200, same shape as register
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.AuthEvent("login", outcomeOf(err))
		writeServiceError(w, "login user", err)
		return
	}
	h.metrics.AuthEvent("login", "success")

	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

// HandleLogout revokes the caller's token.
// POST /auth/logout
// Response: 204 No Content
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.auth.Logout(r.Context(), id); err != nil {
		h.metrics.AuthEvent("logout", "error")
		writeServiceError(w, "logout user", err)
		return
	}
	h.metrics.AuthEvent("logout", "success")

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the currently authenticated user.
// GET /auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	user, err := h.auth.GetUser(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeUnauthorized(w)
			return
		}
		slog.Error("get current user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// outcomeOf classifies an auth failure for the auth events counter.
func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "rejected"
	default:
		return "error"
	}
}
