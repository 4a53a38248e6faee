package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"taskmanager/app/models"
)

const (
	taskReturn = "RETURN t.id AS id, t.owner AS owner, t.title AS title, t.priority AS priority, " +
		"t.status AS status, t.created_at AS created_at, t.updated_at AS updated_at"
	subtaskReturn = "RETURN s.id AS id, s.task_id AS task_id, s.owner AS owner, s.title AS title, " +
		"s.status AS status, s.created_at AS created_at, s.updated_at AS updated_at"
)

// Neo4jStore keeps tasks as (:Task) nodes and subtasks as
// (:Subtask)-[:SUBTASK_OF]->(:Task).
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore creates a store on top of an initialized driver.
func NewNeo4jStore(driver neo4j.DriverWithContext, database string) *Neo4jStore {
	return &Neo4jStore{driver: driver, database: database}
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

// Migrate creates uniqueness constraints and owner indexes.
func (s *Neo4jStore) Migrate(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	statements := []string{
		"CREATE CONSTRAINT task_id IF NOT EXISTS FOR (t:Task) REQUIRE t.id IS UNIQUE",
		"CREATE CONSTRAINT subtask_id IF NOT EXISTS FOR (s:Subtask) REQUIRE s.id IS UNIQUE",
		"CREATE INDEX task_owner IF NOT EXISTS FOR (t:Task) ON (t.owner)",
		"CREATE INDEX subtask_owner IF NOT EXISTS FOR (s:Subtask) ON (s.owner)",
	}
	for _, stmt := range statements {
		// schema statements cannot share a transaction with each other
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, stmt, nil)
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("neo4j migrate %q: %w", stmt, err)
		}
	}
	return nil
}

// Close closes the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// CreateTask adds a new task node.
func (s *Neo4jStore) CreateTask(ctx context.Context, task *models.Task) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"CREATE (t:Task {id: $id, owner: $owner, title: $title, priority: $priority, "+
				"status: $status, created_at: $created_at, updated_at: $updated_at})",
			map[string]any{
				"id":         task.ID,
				"owner":      task.Owner,
				"title":      task.Title,
				"priority":   string(task.Priority),
				"status":     string(task.Status),
				"created_at": task.CreatedAt,
				"updated_at": task.UpdatedAt,
			},
		)
		return nil, err
	})
	return err
}

// ListTasks retrieves the owner's tasks, newest first.
func (s *Neo4jStore) ListTasks(ctx context.Context, owner string) ([]models.Task, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {owner: $owner}) "+taskReturn+" ORDER BY t.created_at DESC",
			map[string]any{"owner": owner},
		)
		if err != nil {
			return nil, err
		}

		tasks := []models.Task{}
		for res.Next(ctx) {
			task, err := taskFromRecord(res.Record())
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, *task)
		}
		return tasks, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Task), nil
}

// GetTask retrieves a single task by its ID.
func (s *Neo4jStore) GetTask(ctx context.Context, owner, id string) (*models.Task, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $id, owner: $owner}) "+taskReturn,
			map[string]any{"id": id, "owner": owner},
		)
		if err != nil {
			return nil, err
		}
		return singleTask(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Task), nil
}

// UpdateTask sets the task's priority and/or status.
func (s *Neo4jStore) UpdateTask(ctx context.Context, owner, id string, update models.TaskUpdate) (*models.Task, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	params := map[string]any{
		"id":         id,
		"owner":      owner,
		"priority":   nil,
		"status":     nil,
		"updated_at": time.Now().UTC(),
	}
	if update.Priority != nil {
		params["priority"] = string(*update.Priority)
	}
	if update.Status != nil {
		params["status"] = string(*update.Status)
	}

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $id, owner: $owner}) "+
				"SET t.priority = coalesce($priority, t.priority), "+
				"t.status = coalesce($status, t.status), "+
				"t.updated_at = $updated_at "+taskReturn,
			params,
		)
		if err != nil {
			return nil, err
		}
		return singleTask(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Task), nil
}

// DeleteTask deletes the task node and its relationships. Subtask nodes
// survive with their task_id property intact.
func (s *Neo4jStore) DeleteTask(ctx context.Context, owner, id string) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $id, owner: $owner}) DETACH DELETE t",
			map[string]any{"id": id, "owner": owner},
		)
		if err != nil {
			return nil, err
		}
		return nil, requireDeleted(ctx, res)
	})
	return err
}

// CreateSubtask adds a subtask node linked to its parent. The parent must
// exist with the same owner.
func (s *Neo4jStore) CreateSubtask(ctx context.Context, subtask *models.Subtask) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $task_id, owner: $owner}) "+
				"CREATE (s:Subtask {id: $id, task_id: $task_id, owner: $owner, title: $title, "+
				"status: $status, created_at: $created_at, updated_at: $updated_at})-[:SUBTASK_OF]->(t) "+
				"RETURN s.id AS id",
			map[string]any{
				"id":         subtask.ID,
				"task_id":    subtask.TaskID,
				"owner":      subtask.Owner,
				"title":      subtask.Title,
				"status":     string(subtask.Status),
				"created_at": subtask.CreatedAt,
				"updated_at": subtask.UpdatedAt,
			},
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, ErrNotFound
		}
		return nil, nil
	})
	return err
}

// ListSubtasks retrieves the owner's subtasks, newest first.
func (s *Neo4jStore) ListSubtasks(ctx context.Context, owner, taskID string) ([]models.Subtask, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Subtask {owner: $owner}) "+
				"WHERE $task_id = '' OR s.task_id = $task_id "+
				subtaskReturn+" ORDER BY s.created_at DESC",
			map[string]any{"owner": owner, "task_id": taskID},
		)
		if err != nil {
			return nil, err
		}

		subtasks := []models.Subtask{}
		for res.Next(ctx) {
			subtask, err := subtaskFromRecord(res.Record())
			if err != nil {
				return nil, err
			}
			subtasks = append(subtasks, *subtask)
		}
		return subtasks, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Subtask), nil
}

// GetSubtask retrieves a single subtask by its ID.
func (s *Neo4jStore) GetSubtask(ctx context.Context, owner, id string) (*models.Subtask, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Subtask {id: $id, owner: $owner}) "+subtaskReturn,
			map[string]any{"id": id, "owner": owner},
		)
		if err != nil {
			return nil, err
		}
		return singleSubtask(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Subtask), nil
}

// UpdateSubtaskStatus sets a subtask's status.
func (s *Neo4jStore) UpdateSubtaskStatus(ctx context.Context, owner, id string, status models.Status) (*models.Subtask, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Subtask {id: $id, owner: $owner}) "+
				"SET s.status = $status, s.updated_at = $updated_at "+subtaskReturn,
			map[string]any{
				"id":         id,
				"owner":      owner,
				"status":     string(status),
				"updated_at": time.Now().UTC(),
			},
		)
		if err != nil {
			return nil, err
		}
		return singleSubtask(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Subtask), nil
}

// DeleteSubtask deletes a subtask node and its relationship.
func (s *Neo4jStore) DeleteSubtask(ctx context.Context, owner, id string) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Subtask {id: $id, owner: $owner}) DETACH DELETE s",
			map[string]any{"id": id, "owner": owner},
		)
		if err != nil {
			return nil, err
		}
		return nil, requireDeleted(ctx, res)
	})
	return err
}

func requireDeleted(ctx context.Context, res neo4j.ResultWithContext) error {
	summary, err := res.Consume(ctx)
	if err != nil {
		return err
	}
	if summary.Counters().NodesDeleted() == 0 {
		return ErrNotFound
	}
	return nil
}

func singleTask(ctx context.Context, res neo4j.ResultWithContext) (*models.Task, error) {
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return taskFromRecord(res.Record())
}

func singleSubtask(ctx context.Context, res neo4j.ResultWithContext) (*models.Subtask, error) {
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return subtaskFromRecord(res.Record())
}

// recordReader collects the first type error while reading a record.
type recordReader struct {
	record *neo4j.Record
	err    error
}

func (r *recordReader) str(key string) string {
	v, ok := r.record.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok && r.err == nil {
		r.err = fmt.Errorf("field %s: expected string, got %T", key, v)
	}
	return s
}

func (r *recordReader) time(key string) time.Time {
	v, ok := r.record.Get(key)
	if !ok || v == nil {
		return time.Time{}
	}
	t, ok := v.(time.Time)
	if !ok && r.err == nil {
		r.err = fmt.Errorf("field %s: expected datetime, got %T", key, v)
	}
	return t.UTC()
}

func taskFromRecord(record *neo4j.Record) (*models.Task, error) {
	r := &recordReader{record: record}
	task := &models.Task{
		ID:        r.str("id"),
		Owner:     r.str("owner"),
		Title:     r.str("title"),
		Priority:  models.Priority(r.str("priority")),
		Status:    models.Status(r.str("status")),
		CreatedAt: r.time("created_at"),
		UpdatedAt: r.time("updated_at"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return task, nil
}

func subtaskFromRecord(record *neo4j.Record) (*models.Subtask, error) {
	r := &recordReader{record: record}
	subtask := &models.Subtask{
		ID:        r.str("id"),
		TaskID:    r.str("task_id"),
		Owner:     r.str("owner"),
		Title:     r.str("title"),
		Status:    models.Status(r.str("status")),
		CreatedAt: r.time("created_at"),
		UpdatedAt: r.time("updated_at"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return subtask, nil
}
