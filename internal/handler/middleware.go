package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/msomdec/task-manager/internal/domain"
	"github.com/msomdec/task-manager/internal/metrics"
	"github.com/msomdec/task-manager/internal/service"
)

type contextKey string

const identityContextKey contextKey = "identity"

// authCookieName is the cookie the browser UI carries its token in.
const authCookieName = "auth_token"

// IdentityFromContext extracts the verified caller identity from the request
// context. The second return value is false if the request is unauthenticated.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(domain.Identity)
	return id, ok
}

// RequireAuth is middleware that protects routes requiring authentication.
// It reads a bearer token from the Authorization header, falling back to the
// auth_token cookie, verifies it and injects the identity into the request
// context. Returns 401 for unauthenticated requests.
func RequireAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := authenticateRequest(r, auth)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthenticated) {
				slog.Error("verify token", "error", err)
				writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
				return
			}
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth is middleware that attempts to authenticate but does not block
// unauthenticated requests.
func OptionalAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := authenticateRequest(r, auth); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), identityContextKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

func authenticateRequest(r *http.Request, auth *service.AuthService) (domain.Identity, error) {
	token, ok := tokenFromRequest(r)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return auth.VerifyToken(r.Context(), token)
}

// tokenFromRequest returns the bearer token if an Authorization header is
// present, otherwise the auth cookie value. A malformed header is not
// retried against the cookie.
func tokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}
	cookie, err := r.Cookie(authCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// SecurityHeaders sets conservative response headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler. It forwards
// Flush so that SSE responses keep streaming through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Observe logs each request and records it in m. It must wrap the mux
// directly so that the matched route pattern is visible after dispatch.
func Observe(logger *slog.Logger, m *metrics.Metrics, next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		latency := time.Since(start)
		status := rec.statusCode()
		m.ObserveRequest(r.Method, routeOf(r), status, latency)
		logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("latency", latency.String()),
		)
	})
}

// routeOf strips the method from the matched mux pattern, leaving the path
// template used as the route label.
func routeOf(r *http.Request) string {
	pattern := r.Pattern
	if _, path, found := strings.Cut(pattern, " "); found {
		return path
	}
	return pattern
}
