package services

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"testing"

	"taskmanager/app/config"
	"taskmanager/app/llm"
	"taskmanager/app/logs"
)

// mockCompleter records calls and answers with CompleteFunc.
type mockCompleter struct {
	mu           sync.Mutex
	calls        int
	requests     []llm.ChatRequest
	CompleteFunc func(ctx context.Context, req llm.ChatRequest) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return `["step"]`, nil
}

func (m *mockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func replying(content string) *mockCompleter {
	return &mockCompleter{CompleteFunc: func(context.Context, llm.ChatRequest) (string, error) {
		return content, nil
	}}
}

var testLLMConfig = config.LLMConfig{APIKey: "sk-test", Model: "gpt-test", MaxTokens: 2048}

func newTestSuggestionService(cfg config.LLMConfig, completer Completer) *SuggestionService {
	return NewSuggestionService(cfg, completer, logs.Discard())
}

func TestGeneratePassesArrayThrough(t *testing.T) {
	completer := replying(`["Book venue","Send invitations","Order cake","Buy decorations","Plan menu"]`)
	svc := newTestSuggestionService(testLLMConfig, completer)

	got, err := svc.Generate(context.Background(), "Plan birthday party")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	want := []string{"Book venue", "Send invitations", "Order cake", "Buy decorations", "Plan menu"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %q, want %q", got, want)
	}
	if completer.Calls() != 1 {
		t.Errorf("calls = %d, want 1", completer.Calls())
	}
}

func TestGenerateBuildsPrompt(t *testing.T) {
	completer := replying(`["a"]`)
	svc := newTestSuggestionService(testLLMConfig, completer)

	if _, err := svc.Generate(context.Background(), "Plan birthday party"); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	req := completer.requests[0]
	if req.Model != "gpt-test" {
		t.Errorf("Model = %q", req.Model)
	}
	if req.Temperature != 1 {
		t.Errorf("Temperature = %v, want 1", req.Temperature)
	}
	if req.MaxCompletionTokens != 2048 {
		t.Errorf("MaxCompletionTokens = %d, want 2048", req.MaxCompletionTokens)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("Messages = %d, want 2", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || !strings.Contains(req.Messages[0].Content, "5 to 7") ||
		!strings.Contains(req.Messages[0].Content, "JSON array of strings") {
		t.Errorf("system message = %+v", req.Messages[0])
	}
	if req.Messages[1].Role != "user" || req.Messages[1].Content != "Generate subtasks for: Plan birthday party" {
		t.Errorf("user message = %+v", req.Messages[1])
	}
}

func TestGenerateFallsBackToRawText(t *testing.T) {
	raw := "Sure! Here are some steps..."
	svc := newTestSuggestionService(testLLMConfig, replying(raw))

	got, err := svc.Suggest(context.Background(), "Plan birthday party")
	if err != nil {
		t.Fatalf("Suggest() error: %v", err)
	}
	if !reflect.DeepEqual(got.Items, []string{raw}) {
		t.Errorf("Items = %q, want [%q]", got.Items, raw)
	}
	if !got.Fallback {
		t.Error("Fallback = false, want true")
	}
}

func TestGenerateRejectsEmptyTitle(t *testing.T) {
	completer := replying(`["a"]`)
	svc := newTestSuggestionService(testLLMConfig, completer)

	_, err := svc.Generate(context.Background(), "")
	if !errors.Is(err, ErrTitleRequired) {
		t.Errorf("error = %v, want ErrTitleRequired", err)
	}
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("error %v is not a ValidationError", err)
	}
	if completer.Calls() != 0 {
		t.Errorf("calls = %d, want 0", completer.Calls())
	}
}

func TestGenerateRequiresCredential(t *testing.T) {
	completer := replying(`["a"]`)
	cfg := testLLMConfig
	cfg.APIKey = ""
	svc := newTestSuggestionService(cfg, completer)

	_, err := svc.Generate(context.Background(), "Plan birthday party")
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("error = %v, want ErrMissingCredential", err)
	}
	if completer.Calls() != 0 {
		t.Errorf("calls = %d, want 0", completer.Calls())
	}
}

func TestGeneratePropagatesUpstreamErrors(t *testing.T) {
	upstream := &llm.UpstreamError{StatusCode: http.StatusTooManyRequests, Status: "Too Many Requests"}
	transport := &llm.TransportError{Err: errors.New("connection refused")}

	for _, want := range []error{upstream, transport, llm.ErrEmptyCompletion} {
		completer := &mockCompleter{CompleteFunc: func(context.Context, llm.ChatRequest) (string, error) {
			return "", want
		}}
		svc := newTestSuggestionService(testLLMConfig, completer)

		got, err := svc.Generate(context.Background(), "Plan birthday party")
		if !errors.Is(err, want) {
			t.Errorf("error = %v, want %v", err, want)
		}
		if got != nil {
			t.Errorf("result = %q, want nil on error", got)
		}
		if completer.Calls() != 1 {
			t.Errorf("calls = %d, want exactly 1 (no retry)", completer.Calls())
		}
	}
}

func TestGenerateNeverReturnsEmpty(t *testing.T) {
	for _, reply := range []string{"[]", "", "null", `{"a":1}`, `["x"]`} {
		svc := newTestSuggestionService(testLLMConfig, replying(reply))
		got, err := svc.Generate(context.Background(), "title")
		if err != nil {
			t.Fatalf("Generate(%q) error: %v", reply, err)
		}
		if len(got) == 0 {
			t.Errorf("Generate() with reply %q returned empty result", reply)
		}
	}
}

func TestGenerateConcurrent(t *testing.T) {
	completer := &mockCompleter{CompleteFunc: func(_ context.Context, req llm.ChatRequest) (string, error) {
		return `["` + req.Messages[1].Content + `"]`, nil
	}}
	svc := newTestSuggestionService(testLLMConfig, completer)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			got, err := svc.Generate(context.Background(), title)
			if err != nil {
				errs <- err
				return
			}
			if len(got) != 1 || got[0] != "Generate subtasks for: "+title {
				errs <- errors.New("mismatched result " + strings.Join(got, ","))
			}
		}(strings.Repeat("t", i+1))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if completer.Calls() != 20 {
		t.Errorf("calls = %d, want 20", completer.Calls())
	}
}
