package store

import (
	"context"
	"errors"

	"taskmanager/app/models"
)

// ErrNotFound is returned when a record does not exist or belongs to
// another owner.
var ErrNotFound = errors.New("record not found")

// Store persists tasks and subtasks. Every operation is scoped to an
// owner and atomic per record. Lists are ordered newest first.
type Store interface {
	CreateTask(ctx context.Context, task *models.Task) error
	ListTasks(ctx context.Context, owner string) ([]models.Task, error)
	GetTask(ctx context.Context, owner, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, owner, id string, update models.TaskUpdate) (*models.Task, error)
	// DeleteTask removes the task only. Its subtasks are left in place.
	DeleteTask(ctx context.Context, owner, id string) error

	CreateSubtask(ctx context.Context, subtask *models.Subtask) error
	// ListSubtasks returns the owner's subtasks, restricted to one parent
	// when taskID is not empty.
	ListSubtasks(ctx context.Context, owner, taskID string) ([]models.Subtask, error)
	GetSubtask(ctx context.Context, owner, id string) (*models.Subtask, error)
	UpdateSubtaskStatus(ctx context.Context, owner, id string, status models.Status) (*models.Subtask, error)
	DeleteSubtask(ctx context.Context, owner, id string) error

	// Migrate creates the schema, indexes or constraints the backend needs.
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}
