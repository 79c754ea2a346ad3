package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/task-manager/internal/metrics"
	"github.com/msomdec/task-manager/internal/service"
)

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Auth         *service.AuthService
	Tasks        *service.TaskService
	DB           Pinger
	Metrics      *metrics.Metrics // optional
	Logger       *slog.Logger     // optional, defaults to slog.Default()
	CookieSecure bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, deps Deps) {
	authHandler := NewAuthHandler(deps.Auth, deps.Metrics)
	taskHandler := NewTaskHandler(deps.Tasks)
	uiHandler := NewUIHandler(deps.Auth, deps.Tasks, deps.Metrics, deps.CookieSecure)

	requireAuth := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(deps.Auth, h)
	}
	optionalAuth := func(h http.HandlerFunc) http.Handler {
		return OptionalAuth(deps.Auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz(deps.DB))
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	// JSON API
	mux.HandleFunc("POST /auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /auth/login", authHandler.HandleLogin)
	mux.Handle("POST /auth/logout", requireAuth(authHandler.HandleLogout))
	mux.Handle("GET /auth/me", requireAuth(authHandler.HandleMe))

	mux.Handle("GET /tasks", requireAuth(taskHandler.HandleList))
	mux.Handle("POST /tasks", requireAuth(taskHandler.HandleCreate))
	mux.Handle("GET /tasks/{id}", requireAuth(taskHandler.HandleGet))
	mux.Handle("PUT /tasks/{id}", requireAuth(taskHandler.HandleUpdate))
	mux.Handle("DELETE /tasks/{id}", requireAuth(taskHandler.HandleDelete))

	// Browser UI
	mux.Handle("GET /{$}", optionalAuth(uiHandler.HandleIndex))
	mux.HandleFunc("POST /ui/login", uiHandler.HandleLogin)
	mux.HandleFunc("POST /ui/register", uiHandler.HandleRegister)
	mux.Handle("POST /ui/logout", optionalAuth(uiHandler.HandleLogout))
	mux.Handle("POST /ui/tasks", requireAuth(uiHandler.HandleCreateTask))
	mux.Handle("GET /ui/tasks/{id}", requireAuth(uiHandler.HandleShowTask))
	mux.Handle("GET /ui/tasks/{id}/edit", requireAuth(uiHandler.HandleEditTask))
	mux.Handle("POST /ui/tasks/{id}", requireAuth(uiHandler.HandleUpdateTask))
	mux.Handle("POST /ui/tasks/{id}/toggle", requireAuth(uiHandler.HandleToggleTask))
	mux.Handle("DELETE /ui/tasks/{id}", requireAuth(uiHandler.HandleDeleteTask))
}

// NewRouter builds the complete server handler: routes wrapped in request
// observation and security headers.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)
	return SecurityHeaders(Observe(deps.Logger, deps.Metrics, mux))
}
