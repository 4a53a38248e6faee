package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskmanager/app/models"
	"taskmanager/app/store"
)

// SubtaskInput is the payload for creating a subtask.
type SubtaskInput struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

// SubtaskPatch carries optional changes to a subtask.
type SubtaskPatch struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

// SubtaskService manages subtasks on behalf of their owner.
type SubtaskService struct {
	store store.Store
	now   func() time.Time
}

// NewSubtaskService creates a new SubtaskService.
func NewSubtaskService(s store.Store) *SubtaskService {
	return &SubtaskService{store: s, now: time.Now}
}

// ListSubtasks returns all of owner's subtasks, or those whose task_id is
// taskID. Subtasks of deleted tasks are still listed.
func (s *SubtaskService) ListSubtasks(ctx context.Context, owner, taskID string) ([]models.Subtask, error) {
	if owner == "" {
		return nil, invalid("owner is required")
	}
	return s.store.ListSubtasks(ctx, owner, taskID)
}

// ListTaskSubtasks returns the subtasks of an existing task.
func (s *SubtaskService) ListTaskSubtasks(ctx context.Context, owner, taskID string) ([]models.Subtask, error) {
	if owner == "" {
		return nil, invalid("owner is required")
	}
	if _, err := s.store.GetTask(ctx, owner, taskID); err != nil {
		return nil, err
	}
	return s.store.ListSubtasks(ctx, owner, taskID)
}

// CreateSubtask adds a subtask under taskID. The parent must belong to owner.
func (s *SubtaskService) CreateSubtask(ctx context.Context, owner, taskID string, in SubtaskInput) (*models.Subtask, error) {
	if owner == "" {
		return nil, invalid("owner is required")
	}
	if in.Title == "" {
		return nil, invalid("title is required")
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
	subtask := &models.Subtask{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Owner:     owner,
		Title:     in.Title,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSubtask(ctx, subtask); err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}
	return subtask, nil
}

// AcceptSuggestion saves suggestion verbatim as a pending subtask of
// taskID and returns candidates without the first copy of suggestion.
func (s *SubtaskService) AcceptSuggestion(ctx context.Context, owner, taskID, suggestion string, candidates models.CandidateSet) (*models.Subtask, models.CandidateSet, error) {
	if suggestion == "" {
		return nil, candidates, invalid("title is required")
	}
	subtask, err := s.CreateSubtask(ctx, owner, taskID, SubtaskInput{
		Title:  suggestion,
		Status: string(models.StatusPending),
	})
	if err != nil {
		return nil, candidates, err
	}
	return subtask, candidates.Remove(suggestion), nil
}

// UpdateSubtask changes a subtask's status.
func (s *SubtaskService) UpdateSubtask(ctx context.Context, owner, id string, patch SubtaskPatch) (*models.Subtask, error) {
	if owner == "" {
		return nil, invalid("owner is required")
	}
	if patch.Title != nil {
		return nil, invalid("title cannot be changed after creation")
	}
	if patch.Status == nil {
		return nil, invalid("nothing to update: set status")
	}
	status, err := models.ParseStatus(*patch.Status)
	if err != nil {
		return nil, invalid(err.Error())
	}
	return s.store.UpdateSubtaskStatus(ctx, owner, id, status)
}

// DeleteSubtask removes a subtask by its ID.
func (s *SubtaskService) DeleteSubtask(ctx context.Context, owner, id string) error {
	if owner == "" {
		return invalid("owner is required")
	}
	return s.store.DeleteSubtask(ctx, owner, id)
}
