package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"taskmanager/app/auth"
	"taskmanager/app/models"
	"taskmanager/app/services"
)

// TaskController handles HTTP requests for tasks and subtasks.
type TaskController struct {
	Tasks    *services.TaskService
	Subtasks *services.SubtaskService
	Logger   *slog.Logger
}

// NewTaskController creates a new TaskController.
func NewTaskController(tasks *services.TaskService, subtasks *services.SubtaskService, logger *slog.Logger) *TaskController {
	return &TaskController{Tasks: tasks, Subtasks: subtasks, Logger: logger}
}

// GetTasks handles GET /tasks.
func (c *TaskController) GetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.Tasks.ListTasks(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, c.Logger, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask handles POST /tasks.
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in services.TaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := c.Tasks.CreateTask(r.Context(), auth.UserID(r.Context()), in)
	if err != nil {
		writeServiceError(w, c.Logger, err, "task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// GetTaskByID handles GET /tasks/{taskID}.
func (c *TaskController) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	task, err := c.Tasks.GetTask(r.Context(), auth.UserID(r.Context()), taskID)
	if err != nil {
		writeServiceError(w, c.Logger, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTask handles PUT /tasks/{taskID}.
func (c *TaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	var patch services.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := c.Tasks.UpdateTask(r.Context(), auth.UserID(r.Context()), taskID, patch)
	if err != nil {
		writeServiceError(w, c.Logger, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{taskID}. Subtasks are kept.
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	if err := c.Tasks.DeleteTask(r.Context(), auth.UserID(r.Context()), taskID); err != nil {
		writeServiceError(w, c.Logger, err, "task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTaskSubtasks handles GET /tasks/{taskID}/subtasks.
func (c *TaskController) GetTaskSubtasks(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	subtasks, err := c.Subtasks.ListTaskSubtasks(r.Context(), auth.UserID(r.Context()), taskID)
	if err != nil {
		writeServiceError(w, c.Logger, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, subtasks)
}

// CreateSubtask handles POST /tasks/{taskID}/subtasks.
func (c *TaskController) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	var in services.SubtaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	subtask, err := c.Subtasks.CreateSubtask(r.Context(), auth.UserID(r.Context()), taskID, in)
	if err != nil {
		writeServiceError(w, c.Logger, err, "task")
		return
	}
	writeJSON(w, http.StatusCreated, subtask)
}

type acceptRequest struct {
	Title      string              `json:"title"`
	Candidates models.CandidateSet `json:"candidates"`
}

type acceptResponse struct {
	Subtask    *models.Subtask     `json:"subtask"`
	Candidates models.CandidateSet `json:"candidates"`
}

// AcceptSuggestion handles POST /tasks/{taskID}/suggestions/accept.
func (c *TaskController) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	var req acceptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	subtask, remaining, err := c.Subtasks.AcceptSuggestion(r.Context(), auth.UserID(r.Context()), taskID, req.Title, req.Candidates)
	if err != nil {
		writeServiceError(w, c.Logger, err, "task")
		return
	}
	if remaining == nil {
		remaining = models.CandidateSet{}
	}
	writeJSON(w, http.StatusCreated, acceptResponse{Subtask: subtask, Candidates: remaining})
}

// GetSubtasks handles GET /subtasks with an optional task_id filter.
func (c *TaskController) GetSubtasks(w http.ResponseWriter, r *http.Request) {
	subtasks, err := c.Subtasks.ListSubtasks(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("task_id"))
	if err != nil {
		writeServiceError(w, c.Logger, err, "subtask")
		return
	}
	writeJSON(w, http.StatusOK, subtasks)
}

// UpdateSubtask handles PUT /subtasks/{subtaskID}.
func (c *TaskController) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	subtaskID := mux.Vars(r)["subtaskID"]
	var patch services.SubtaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	subtask, err := c.Subtasks.UpdateSubtask(r.Context(), auth.UserID(r.Context()), subtaskID, patch)
	if err != nil {
		writeServiceError(w, c.Logger, err, "subtask")
		return
	}
	writeJSON(w, http.StatusOK, subtask)
}

// DeleteSubtask handles DELETE /subtasks/{subtaskID}.
func (c *TaskController) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	subtaskID := mux.Vars(r)["subtaskID"]
	if err := c.Subtasks.DeleteSubtask(r.Context(), auth.UserID(r.Context()), subtaskID); err != nil {
		writeServiceError(w, c.Logger, err, "subtask")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
