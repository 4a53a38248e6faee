package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"taskmanager/app/auth"
	"taskmanager/app/config"
	"taskmanager/app/logs"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Addr:            "127.0.0.1:0",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Store:  config.StoreConfig{Driver: config.DriverSQLite},
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "server.db")},
		LLM:    config.LLMConfig{Model: "gpt-test", MaxTokens: 2048, Timeout: time.Second},
		Auth:   config.AuthConfig{JWTSecret: "server-secret", TokenTTL: time.Hour},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := New(context.Background(), cfg, logs.Discard())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { app.Close(context.Background()) })
	return app
}

func TestNewWiresHandler(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", w.Code)
	}

	token, err := app.auth.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	app.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET /tasks status = %d, body %s", w.Code, w.Body)
	}
}

func TestNewRequiresJWTSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWTSecret = ""
	if _, err := New(context.Background(), cfg, logs.Discard()); !errors.Is(err, auth.ErrNoSecret) {
		t.Errorf("error = %v, want ErrNoSecret", err)
	}
}

func TestNewRejectsBadProxy(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Proxy = "gopher://proxy:70"
	if _, err := New(context.Background(), cfg, logs.Discard()); err == nil {
		t.Error("expected error for unsupported proxy scheme")
	}
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "postgres"
	if _, err := OpenStore(context.Background(), cfg); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET %s error: %v", url, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
