package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"taskmanager/app/services"
)

// request bodies are small JSON documents
const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes the {"error": msg} body used by every endpoint.
func WriteError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v)
}

// writeServiceError maps task and subtask service errors to responses.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, what string) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		WriteError(w, http.StatusBadRequest, validation.Msg)
	case errors.Is(err, services.ErrNotFound):
		WriteError(w, http.StatusNotFound, what+" not found")
	default:
		logger.Error("request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
