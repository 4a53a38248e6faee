package models

import "time"

// Subtask is a smaller unit of work belonging to exactly one Task.
// Owner is a copy of the parent task's owner.
type Subtask struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Owner     string    `json:"user_id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
