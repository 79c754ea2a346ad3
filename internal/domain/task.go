package domain

import (
	"context"
	"time"
)

// Task is a to-do item owned by exactly one user for its whole lifetime.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	IsCompleted bool
	DueDate     *time.Time
	CreatedAt   time.Time
}

// TaskRepository defines persistence operations for tasks. Every lookup and
// mutation is keyed by the owning user as well as the task ID, so a task
// owned by someone else is reported as ErrNotFound.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByIDForUser(ctx context.Context, id, userID int64) (*Task, error)
	ListByUser(ctx context.Context, userID int64) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id, userID int64) error
}
