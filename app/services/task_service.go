package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskmanager/app/models"
	"taskmanager/app/store"
)

// TaskInput is the payload for creating a task. Empty priority and
// status take their defaults.
type TaskInput struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

// TaskPatch carries optional changes to a task.
type TaskPatch struct {
	Title    *string `json:"title"`
	Priority *string `json:"priority"`
	Status   *string `json:"status"`
}

// TaskService handles task-related operations.
type TaskService struct {
	store store.Store
	now   func() time.Time
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(s store.Store) *TaskService {
	return &TaskService{store: s, now: time.Now}
}

// ListTasks retrieves the owner's tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, owner string) ([]models.Task, error) {
	if owner == "" {
		return nil, invalid("owner is required")
	}
	return s.store.ListTasks(ctx, owner)
}

// GetTask retrieves a single task by its ID.
func (s *TaskService) GetTask(ctx context.Context, owner, id string) (*models.Task, error) {
	if owner == "" {
		return nil, invalid("owner is required")
	}
	return s.store.GetTask(ctx, owner, id)
}

// CreateTask adds a new task owned by owner.
func (s *TaskService) CreateTask(ctx context.Context, owner string, in TaskInput) (*models.Task, error) {
	if owner == "" {
		return nil, invalid("owner is required")
	}
	if in.Title == "" {
		return nil, invalid("title is required")
	}

	priority := models.PriorityMedium
	if in.Priority != "" {
		p, err := models.ParsePriority(in.Priority)
		if err != nil {
			return nil, invalid(err.Error())
		}
		priority = p
	}
	status := models.StatusPending
	if in.Status != "" {
		st, err := models.ParseStatus(in.Status)
		if err != nil {
			return nil, invalid(err.Error())
		}
		status = st
	}

	now := s.now().UTC()
	task := &models.Task{
		ID:        uuid.New().String(),
		Owner:     owner,
		Title:     in.Title,
		Priority:  priority,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// UpdateTask changes a task's priority and/or status. Titles are fixed
// at creation.
func (s *TaskService) UpdateTask(ctx context.Context, owner, id string, patch TaskPatch) (*models.Task, error) {
	if owner == "" {
		return nil, invalid("owner is required")
	}
	if patch.Title != nil {
		return nil, invalid("title cannot be changed after creation")
	}

	var update models.TaskUpdate
	if patch.Priority != nil {
		p, err := models.ParsePriority(*patch.Priority)
		if err != nil {
			return nil, invalid(err.Error())
		}
		update.Priority = &p
	}
	if patch.Status != nil {
		st, err := models.ParseStatus(*patch.Status)
		if err != nil {
			return nil, invalid(err.Error())
		}
		update.Status = &st
	}
	if update.Empty() {
		return nil, invalid("nothing to update: set priority or status")
	}

	return s.store.UpdateTask(ctx, owner, id, update)
}

// DeleteTask deletes a task. Its subtasks are not deleted.
func (s *TaskService) DeleteTask(ctx context.Context, owner, id string) error {
	if owner == "" {
		return invalid("owner is required")
	}
	return s.store.DeleteTask(ctx, owner, id)
}
