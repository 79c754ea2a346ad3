package handler

import (
	"net/http"
	"strconv"

	"github.com/msomdec/task-manager/internal/service"
)

// TaskHandler serves the task REST endpoints. Every route is mounted behind
// RequireAuth; the verified identity is taken from the request context and
// handed to the service explicitly.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// HandleList returns the caller's tasks, newest first.
// GET /tasks
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	tasks, err := h.tasks.List(r.Context(), id)
	if err != nil {
		writeServiceError(w, "list tasks", err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

// HandleGet returns a single task.
// GET /tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), id, taskID)
	if err != nil {
		writeServiceError(w, "get task", err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleCreate creates a task owned by the caller.
// POST /tasks
// Request:  {"title":"...","description":"...","dueDate":"2025-01-31"|null}
// Response: 201 task
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req taskRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, "create task", err)
		return
	}

	task, err := h.tasks.Create(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, "create task", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskDTO(task))
}

// HandleUpdate replaces the mutable fields of a task.
// PUT /tasks/{id}
// Request:  {"title":"...","description":"...","isCompleted":true,"dueDate":null}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, "update task", err)
		return
	}

	task, err := h.tasks.Update(r.Context(), id, taskID, in)
	if err != nil {
		writeServiceError(w, "update task", err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleDelete removes a task.
// DELETE /tasks/{id}
// Response: 204 No Content
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), id, taskID); err != nil {
		writeServiceError(w, "delete task", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// taskIDFromPath parses the {id} path value. A malformed id is answered
// exactly like a missing task.
func taskIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || taskID <= 0 {
		writeError(w, http.StatusNotFound, "Task not found")
		return 0, false
	}
	return taskID, true
}
