package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/msomdec/task-manager/internal/domain"
)

// TaskInput carries the caller-editable fields of a task. IsCompleted is
// ignored on create.
type TaskInput struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=1000"`
	IsCompleted bool       `json:"isCompleted"`
	DueDate     *time.Time `json:"dueDate"`
}

// TaskService exposes tasks only to the user who owns them. A task owned by
// someone else is indistinguishable from one that does not exist.
type TaskService struct {
	tasks    domain.TaskRepository
	validate *validator.Validate
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks, validate: newValidator()}
}

// List returns the caller's tasks, newest first.
func (s *TaskService) List(ctx context.Context, id domain.Identity) ([]domain.Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns one of the caller's tasks.
func (s *TaskService) Get(ctx context.Context, id domain.Identity, taskID int64) (*domain.Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByIDForUser(ctx, taskID, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// Create stores a new, not yet completed task owned by the caller.
func (s *TaskService) Create(ctx context.Context, id domain.Identity, in TaskInput) (*domain.Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	task := &domain.Task{
		UserID:      id.UserID,
		Title:       in.Title,
		Description: in.Description,
		IsCompleted: false,
		DueDate:     in.DueDate,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Update replaces the title, description, completion flag and due date of
// one of the caller's tasks. Concurrent updates are last-write-wins.
func (s *TaskService) Update(ctx context.Context, id domain.Identity, taskID int64, in TaskInput) (*domain.Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByIDForUser(ctx, taskID, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	task.Title = in.Title
	task.Description = in.Description
	task.IsCompleted = in.IsCompleted
	task.DueDate = in.DueDate

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes one of the caller's tasks.
func (s *TaskService) Delete(ctx context.Context, id domain.Identity, taskID int64) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID, id.UserID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func requireIdentity(id domain.Identity) error {
	if id.UserID <= 0 {
		return domain.ErrUnauthenticated
	}
	return nil
}
