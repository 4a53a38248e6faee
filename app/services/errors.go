package services

import (
	"errors"

	"taskmanager/app/store"
)

// ValidationError reports bad caller input. It is never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

var (
	// ErrTitleRequired is returned by Generate for an empty task title.
	ErrTitleRequired = &ValidationError{Msg: "taskTitle is required"}

	// ErrMissingCredential is a deployment error: no LLM API key configured.
	ErrMissingCredential = errors.New("OpenAI API key not configured. Set OPENAI_API_KEY (or llm.api_key) in the service configuration")

	// ErrNotFound aliases the store error so callers need not import store.
	ErrNotFound = store.ErrNotFound
)
