package models

import (
	"fmt"
	"time"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Status of a task or subtask.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// ParsePriority returns the Priority named by s.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority %q: must be one of low, medium, high", s)
}

// ParseStatus returns the Status named by s.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusInProgress, StatusDone:
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q: must be one of pending, in-progress, done", s)
}

// Task is a user-owned unit of work.
type Task struct {
	ID        string    `json:"id"`
	Owner     string    `json:"user_id"`
	Title     string    `json:"title"`
	Priority  Priority  `json:"priority"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskUpdate carries the mutable fields of a task. Nil fields are left unchanged.
type TaskUpdate struct {
	Priority *Priority
	Status   *Status
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Priority == nil && u.Status == nil
}
