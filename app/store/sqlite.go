package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskmanager/app/models"
)

// SQLiteStore keeps tasks and subtasks in two tables. subtasks.task_id is
// not a foreign key, so deleting a task leaves its subtasks behind.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store on top of an open database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Migrate creates the necessary tables
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			title TEXT NOT NULL,
			priority TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS subtasks (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			owner TEXT NOT NULL,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks(owner, created_at);
		CREATE INDEX IF NOT EXISTS idx_subtasks_owner ON subtasks(owner, created_at);
		CREATE INDEX IF NOT EXISTS idx_subtasks_task ON subtasks(task_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// CreateTask inserts a new task row.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *models.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, owner, title, priority, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.Owner, task.Title, string(task.Priority), string(task.Status),
		task.CreatedAt.UTC(), task.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// ListTasks retrieves the owner's tasks, newest first.
func (s *SQLiteStore) ListTasks(ctx context.Context, owner string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, title, priority, status, created_at, updated_at
		FROM tasks WHERE owner = ?
		ORDER BY created_at DESC, rowid DESC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a single task by its ID.
func (s *SQLiteStore) GetTask(ctx context.Context, owner, id string) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner, title, priority, status, created_at, updated_at
		FROM tasks WHERE id = ? AND owner = ?
	`, id, owner)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return task, err
}

// UpdateTask sets the task's priority and/or status.
func (s *SQLiteStore) UpdateTask(ctx context.Context, owner, id string, update models.TaskUpdate) (*models.Task, error) {
	var priority, status sql.NullString
	if update.Priority != nil {
		priority = sql.NullString{String: string(*update.Priority), Valid: true}
	}
	if update.Status != nil {
		status = sql.NullString{String: string(*update.Status), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			priority = COALESCE(?, priority),
			status = COALESCE(?, status),
			updated_at = ?
		WHERE id = ? AND owner = ?
	`, priority, status, time.Now().UTC(), id, owner)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, owner, id)
}

// DeleteTask removes the task row. Subtask rows are left in place.
func (s *SQLiteStore) DeleteTask(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(res)
}

// CreateSubtask inserts the subtask only if its parent exists with the
// same owner.
func (s *SQLiteStore) CreateSubtask(ctx context.Context, subtask *models.Subtask) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO subtasks (id, task_id, owner, title, status, created_at, updated_at)
		SELECT ?, t.id, t.owner, ?, ?, ?, ?
		FROM tasks t WHERE t.id = ? AND t.owner = ?
	`, subtask.ID, subtask.Title, string(subtask.Status),
		subtask.CreatedAt.UTC(), subtask.UpdatedAt.UTC(), subtask.TaskID, subtask.Owner)
	if err != nil {
		return fmt.Errorf("insert subtask: %w", err)
	}
	return requireAffected(res)
}

// ListSubtasks retrieves the owner's subtasks, newest first. An empty
// taskID lists all of them.
func (s *SQLiteStore) ListSubtasks(ctx context.Context, owner, taskID string) ([]models.Subtask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, owner, title, status, created_at, updated_at
		FROM subtasks WHERE owner = ? AND (? = '' OR task_id = ?)
		ORDER BY created_at DESC, rowid DESC
	`, owner, taskID, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subtasks := []models.Subtask{}
	for rows.Next() {
		subtask, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, *subtask)
	}
	return subtasks, rows.Err()
}

// GetSubtask retrieves a single subtask by its ID.
func (s *SQLiteStore) GetSubtask(ctx context.Context, owner, id string) (*models.Subtask, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, task_id, owner, title, status, created_at, updated_at
		FROM subtasks WHERE id = ? AND owner = ?
	`, id, owner)
	subtask, err := scanSubtask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return subtask, err
}

// UpdateSubtaskStatus sets a subtask's status.
func (s *SQLiteStore) UpdateSubtaskStatus(ctx context.Context, owner, id string, status models.Status) (*models.Subtask, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subtasks SET status = ?, updated_at = ? WHERE id = ? AND owner = ?
	`, string(status), time.Now().UTC(), id, owner)
	if err != nil {
		return nil, fmt.Errorf("update subtask: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetSubtask(ctx, owner, id)
}

// DeleteSubtask removes a subtask row.
func (s *SQLiteStore) DeleteSubtask(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete subtask: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	var task models.Task
	var priority, status string
	if err := row.Scan(&task.ID, &task.Owner, &task.Title, &priority, &status, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	task.Priority = models.Priority(priority)
	task.Status = models.Status(status)
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}

func scanSubtask(row scanner) (*models.Subtask, error) {
	var subtask models.Subtask
	var status string
	if err := row.Scan(&subtask.ID, &subtask.TaskID, &subtask.Owner, &subtask.Title, &status, &subtask.CreatedAt, &subtask.UpdatedAt); err != nil {
		return nil, err
	}
	subtask.Status = models.Status(status)
	subtask.CreatedAt = subtask.CreatedAt.UTC()
	subtask.UpdatedAt = subtask.UpdatedAt.UTC()
	return &subtask, nil
}
