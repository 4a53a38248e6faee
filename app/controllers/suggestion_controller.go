package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"taskmanager/app/llm"
	"taskmanager/app/services"
)

// SuggestionController serves AI subtask suggestions.
type SuggestionController struct {
	Service *services.SuggestionService
	Logger  *slog.Logger
}

// NewSuggestionController creates a new SuggestionController.
func NewSuggestionController(service *services.SuggestionService, logger *slog.Logger) *SuggestionController {
	return &SuggestionController{Service: service, Logger: logger}
}

type generateRequest struct {
	TaskTitle string `json:"taskTitle"`
}

type generateResponse struct {
	Subtasks []string `json:"subtasks"`
}

// GenerateSubtasks handles POST /functions/v1/generate-subtasks.
func (c *SuggestionController) GenerateSubtasks(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	subtasks, err := c.Service.Generate(r.Context(), req.TaskTitle)
	if err != nil {
		status, msg := suggestionErrorResponse(err)
		if status >= http.StatusInternalServerError {
			c.Logger.Error("generate subtasks failed", "status", status, "error", err)
		}
		WriteError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Subtasks: subtasks})
}

// suggestionErrorResponse picks the status and message for a Generate
// failure. Upstream failures keep the provider's status code.
func suggestionErrorResponse(err error) (int, string) {
	var (
		validation *services.ValidationError
		upstream   *llm.UpstreamError
		transport  *llm.TransportError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Msg
	case errors.Is(err, services.ErrMissingCredential):
		return http.StatusInternalServerError, err.Error()
	case errors.As(err, &upstream):
		return upstream.StatusCode, upstream.Error()
	case errors.As(err, &transport):
		return http.StatusInternalServerError, "Failed to reach the language model API"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
