package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskmanager/app/config"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 30 * time.Second
	// upstream error bodies are kept for logging only
	maxErrorBody = 4 << 10
)

// ErrEmptyCompletion is returned when a 2xx reply carries no choices.
var ErrEmptyCompletion = errors.New("language model returned no choices")

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the chat-completions request body.
type ChatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Temperature         float64   `json:"temperature"`
	MaxCompletionTokens int       `json:"max_completion_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// UpstreamError reports a non-success reply from the language model API.
type UpstreamError struct {
	StatusCode int
	Status     string
	// Detail is the provider's error message or raw body, best effort.
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("language model API error: %d %s", e.StatusCode, e.Status)
}

// TransportError reports a failure to reach the language model API or to
// read its reply.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "language model API unreachable: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to an OpenAI-compatible chat-completions endpoint.
// It sends exactly one HTTP request per call and never retries.
type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewClient creates a client from cfg. The API key may be empty; callers
// are expected to check for it before issuing requests.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	transport, err := newTransport(cfg.Proxy)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{Transport: transport},
	}, nil
}

// Complete sends req and returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		upstream := &UpstreamError{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Detail:     string(respBody),
		}
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			upstream.Detail = apiErr.Error.Message
		}
		return "", upstream
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("read response body: %w", err)}
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return chat.Choices[0].Message.Content, nil
}

// statusText is the reason phrase the backend sent, or the standard text
// for the code when it sent none.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}
