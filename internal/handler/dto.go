package handler

import (
	"time"

	"github.com/msomdec/task-manager/internal/domain"
	"github.com/msomdec/task-manager/internal/service"
)

// TaskDTO is the JSON representation of a task.
type TaskDTO struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	IsCompleted bool    `json:"isCompleted"`
	CreatedAt   string  `json:"createdAt"`
	DueDate     *string `json:"dueDate"`
	UserID      int64   `json:"userId"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	dto := TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UserID:      t.UserID,
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC().Format(time.RFC3339)
		dto.DueDate = &due
	}
	return dto
}

func toTaskDTOs(tasks []domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = toTaskDTO(&tasks[i])
	}
	return dtos
}

// taskRequest is the body of POST /tasks and PUT /tasks/{id}.
type taskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	IsCompleted bool    `json:"isCompleted"`
	DueDate     *string `json:"dueDate"`
}

func (req taskRequest) toInput() (service.TaskInput, error) {
	in := service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return in, err
	}
	in.DueDate = due
	return in, nil
}

// parseDueDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date, as
// sent by an HTML date input. Nil or empty means no due date.
func parseDueDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, *s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &domain.ValidationError{Fields: map[string]string{
		"dueDate": "must be an RFC 3339 timestamp or a YYYY-MM-DD date",
	}}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	UserID    int64  `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func toAuthResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
		UserID:    res.User.ID,
		Email:     res.User.Email,
		FirstName: res.User.FirstName,
		LastName:  res.User.LastName,
	}
}

// UserDTO is the JSON representation of the current user.
type UserDTO struct {
	UserID    int64  `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
