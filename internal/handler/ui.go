package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/msomdec/task-manager/internal/domain"
	"github.com/msomdec/task-manager/internal/metrics"
	"github.com/msomdec/task-manager/internal/service"
	"github.com/msomdec/task-manager/internal/view"
	datastar "github.com/starfederation/datastar-go/datastar"
)

// UIHandler serves the browser client. Pages are plain form posts; task
// mutations arrive through datastar and are answered with SSE element patches.
type UIHandler struct {
	auth         *service.AuthService
	tasks        *service.TaskService
	metrics      *metrics.Metrics
	cookieSecure bool
}

// NewUIHandler creates a new UIHandler.
func NewUIHandler(auth *service.AuthService, tasks *service.TaskService, m *metrics.Metrics, cookieSecure bool) *UIHandler {
	return &UIHandler{auth: auth, tasks: tasks, metrics: m, cookieSecure: cookieSecure}
}

// HandleIndex renders the dashboard for a signed-in user and the sign-in
// page for everyone else.
func (h *UIHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		view.AuthPage(view.AuthForms{}).Render(r.Context(), w)
		return
	}

	tasks, err := h.tasks.List(r.Context(), id)
	if err != nil {
		slog.Error("list tasks for dashboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view.DashboardPage(id.Name, tasks).Render(r.Context(), w)
}

// HandleLogin processes the sign-in form.
func (h *UIHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	email := r.FormValue("email")

	res, err := h.auth.Login(r.Context(), email, r.FormValue("password"))
	if err != nil {
		h.metrics.AuthEvent("login", outcomeOf(err))
		if errors.Is(err, domain.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusUnauthorized)
			view.AuthPage(view.AuthForms{LoginEmail: email, LoginError: "Invalid email or password."}).Render(r.Context(), w)
			return
		}
		slog.Error("login user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.metrics.AuthEvent("login", "success")

	h.setAuthCookie(w, res.Token, res.ExpiresAt)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleRegister processes the sign-up form and signs the new user in.
func (h *UIHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := view.RegisterForm{
		Email:     r.FormValue("email"),
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
	}

	res, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:     form.Email,
		Password:  r.FormValue("password"),
		FirstName: form.FirstName,
		LastName:  form.LastName,
	})
	if err != nil {
		h.metrics.AuthEvent("register", outcomeOf(err))
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			form.Errors = verr.Fields
			w.WriteHeader(http.StatusBadRequest)
			view.AuthPage(view.AuthForms{Register: form}).Render(r.Context(), w)
		case errors.Is(err, domain.ErrInvalidInput):
			w.WriteHeader(http.StatusBadRequest)
			view.AuthPage(view.AuthForms{Register: form, RegisterError: "Please check your details and try again."}).Render(r.Context(), w)
		case errors.Is(err, domain.ErrDuplicateEmail):
			w.WriteHeader(http.StatusConflict)
			view.AuthPage(view.AuthForms{Register: form, RegisterError: "An account with that email already exists."}).Render(r.Context(), w)
		default:
			slog.Error("register user", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}
	h.metrics.AuthEvent("register", "success")

	h.setAuthCookie(w, res.Token, res.ExpiresAt)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout revokes the cookie's token, if any, and clears the cookie.
func (h *UIHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if id, ok := IdentityFromContext(r.Context()); ok {
		if err := h.auth.Logout(r.Context(), id); err != nil {
			h.metrics.AuthEvent("logout", "error")
			slog.Error("logout user", "error", err)
		} else {
			h.metrics.AuthEvent("logout", "success")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleCreateTask adds a task from the dashboard form and patches the list.
func (h *UIHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := view.TaskForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		DueDate:     strings.TrimSpace(r.FormValue("due_date")),
	}

	_, err := h.createTask(r, id, form)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		form.Errors = verr.Fields
		sse := datastar.NewSSE(w, r)
		sse.PatchElementTempl(view.TaskFormFragment(form), datastar.WithModeReplace())
		return
	}
	if err != nil {
		slog.Error("create task from ui", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tasks, err := h.tasks.List(r.Context(), id)
	if err != nil {
		slog.Error("list tasks after create", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.TaskList(tasks))
	sse.PatchElementTempl(view.TaskFormFragment(view.TaskForm{}), datastar.WithModeReplace())
}

func (h *UIHandler) createTask(r *http.Request, id domain.Identity, form view.TaskForm) (*domain.Task, error) {
	due, err := parseDueDate(&form.DueDate)
	if err != nil {
		return nil, err
	}
	return h.tasks.Create(r.Context(), id, service.TaskInput{
		Title:       form.Title,
		Description: form.Description,
		DueDate:     due,
	})
}

// HandleToggleTask flips a task's completion flag and patches its row.
func (h *UIHandler) HandleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), id, taskID)
	if err == nil {
		task, err = h.tasks.Update(r.Context(), id, taskID, service.TaskInput{
			Title:       task.Title,
			Description: task.Description,
			IsCompleted: !task.IsCompleted,
			DueDate:     task.DueDate,
		})
	}
	if errors.Is(err, domain.ErrNotFound) {
		sse := datastar.NewSSE(w, r)
		sse.RemoveElementByID(view.TaskItemID(taskID))
		return
	}
	if err != nil {
		slog.Error("toggle task", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.TaskItem(*task))
}

// HandleShowTask patches a task's plain row, used to cancel an edit.
func (h *UIHandler) HandleShowTask(w http.ResponseWriter, r *http.Request) {
	h.patchTaskRow(w, r, false)
}

// HandleEditTask swaps a task's row for its inline edit form.
func (h *UIHandler) HandleEditTask(w http.ResponseWriter, r *http.Request) {
	h.patchTaskRow(w, r, true)
}

func (h *UIHandler) patchTaskRow(w http.ResponseWriter, r *http.Request, editing bool) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), id, taskID)
	if errors.Is(err, domain.ErrNotFound) {
		sse := datastar.NewSSE(w, r)
		sse.RemoveElementByID(view.TaskItemID(taskID))
		return
	}
	if err != nil {
		slog.Error("get task for ui", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if editing {
		sse.PatchElementTempl(view.TaskEditFragment(task.ID, view.TaskFormFromTask(*task)), datastar.WithModeReplace())
		return
	}
	sse.PatchElementTempl(view.TaskItem(*task), datastar.WithModeReplace())
}

// HandleUpdateTask saves the inline edit form. The completion flag is kept
// as it is; only the toggle changes it.
func (h *UIHandler) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := view.TaskForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		DueDate:     strings.TrimSpace(r.FormValue("due_date")),
	}

	task, err := h.updateTask(r, id, taskID, form)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		form.Errors = verr.Fields
		sse := datastar.NewSSE(w, r)
		sse.PatchElementTempl(view.TaskEditFragment(taskID, form), datastar.WithModeReplace())
	case errors.Is(err, domain.ErrNotFound):
		sse := datastar.NewSSE(w, r)
		sse.RemoveElementByID(view.TaskItemID(taskID))
	case err != nil:
		slog.Error("update task from ui", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	default:
		sse := datastar.NewSSE(w, r)
		sse.PatchElementTempl(view.TaskItem(*task), datastar.WithModeReplace())
	}
}

func (h *UIHandler) updateTask(r *http.Request, id domain.Identity, taskID int64, form view.TaskForm) (*domain.Task, error) {
	due, err := parseDueDate(&form.DueDate)
	if err != nil {
		return nil, err
	}
	current, err := h.tasks.Get(r.Context(), id, taskID)
	if err != nil {
		return nil, err
	}
	return h.tasks.Update(r.Context(), id, taskID, service.TaskInput{
		Title:       form.Title,
		Description: form.Description,
		IsCompleted: current.IsCompleted,
		DueDate:     due,
	})
}

// HandleDeleteTask removes a task and re-renders the list.
func (h *UIHandler) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), id, taskID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Error("delete task", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tasks, err := h.tasks.List(r.Context(), id)
	if err != nil {
		slog.Error("list tasks after delete", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.TaskList(tasks))
}

func (h *UIHandler) setAuthCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   max(int(time.Until(expiresAt).Seconds()), 1),
	})
}
