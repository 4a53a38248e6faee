package services

import (
	"context"
	"log/slog"

	"taskmanager/app/config"
	"taskmanager/app/llm"
	"taskmanager/app/models"
)

const systemPrompt = "You are a helpful assistant that breaks down big tasks into simple, clear subtasks. " +
	"Given a main task title, return a list of 5 to 7 clear, short subtasks needed to complete it. " +
	"The subtasks should be practical and written in plain language. " +
	"Return them as a plain JSON array of strings. Do not include any extra text or explanations."

// sampling temperature is fixed and not exposed to callers
const temperature = 1

// Completer sends one chat request and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, req llm.ChatRequest) (string, error)
}

// SuggestionService turns a task title into candidate subtask titles.
// It holds no mutable state and is safe for concurrent use.
type SuggestionService struct {
	completer Completer
	apiKey    string
	model     string
	maxTokens int
	logger    *slog.Logger
}

// NewSuggestionService creates a service calling completer with the model
// settings from cfg. An empty cfg.APIKey makes every call fail with
// ErrMissingCredential.
func NewSuggestionService(cfg config.LLMConfig, completer Completer, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{
		completer: completer,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

// Generate returns 5-7 suggested subtasks for taskTitle, or the model's raw
// reply as a single suggestion when it is not a JSON array.
func (s *SuggestionService) Generate(ctx context.Context, taskTitle string) ([]string, error) {
	suggestions, err := s.Suggest(ctx, taskTitle)
	if err != nil {
		return nil, err
	}
	return suggestions.Items, nil
}

// Suggest is Generate that also reports whether the fallback was taken.
func (s *SuggestionService) Suggest(ctx context.Context, taskTitle string) (models.Suggestions, error) {
	if taskTitle == "" {
		return models.Suggestions{}, ErrTitleRequired
	}
	if s.apiKey == "" {
		s.logger.Error("language model API key not configured")
		return models.Suggestions{}, ErrMissingCredential
	}

	s.logger.Info("generating subtasks", "task_title", taskTitle, "model", s.model)

	content, err := s.completer.Complete(ctx, llm.ChatRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Generate subtasks for: " + taskTitle},
		},
		Temperature:         temperature,
		MaxCompletionTokens: s.maxTokens,
	})
	if err != nil {
		s.logger.Error("language model request failed", "error", err)
		return models.Suggestions{}, err
	}

	suggestions := models.ParseSuggestions(content)
	if suggestions.Fallback {
		s.logger.Warn("language model reply is not a JSON array, returning raw text", "length", len(content))
	}
	s.logger.Info("generated subtasks", "count", len(suggestions.Items))
	return suggestions, nil
}
