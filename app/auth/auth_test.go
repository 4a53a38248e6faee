package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskmanager/app/config"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	a, err := New(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return a
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New(config.AuthConfig{}); !errors.Is(err, ErrNoSecret) {
		t.Errorf("error = %v, want ErrNoSecret", err)
	}
}

func TestIssueAndAuthenticate(t *testing.T) {
	a := newTestAuthenticator(t)

	token, err := a.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	session, err := a.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if session.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", session.UserID)
	}
	if session.TokenID == "" {
		t.Error("TokenID is empty")
	}
}

func TestIssueRequiresUser(t *testing.T) {
	a := newTestAuthenticator(t)
	if _, err := a.Issue(""); err == nil {
		t.Error("expected error for empty user id")
	}
}

func TestAuthenticateRejects(t *testing.T) {
	a := newTestAuthenticator(t)
	other, err := New(config.AuthConfig{JWTSecret: "other-secret"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	foreign, _ := other.Issue("user-1")

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte("test-secret"))

	noTokenID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrNoToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"wrong secret", foreign, ErrInvalidToken},
		{"no subject", noSubject, ErrInvalidToken},
		{"no expiry", noExpiry, ErrInvalidToken},
		{"no token id", noTokenID, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Authenticate(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAuthenticateExpired(t *testing.T) {
	a := newTestAuthenticator(t)
	token, err := a.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := a.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestSignOut(t *testing.T) {
	a := newTestAuthenticator(t)
	token, _ := a.Issue("user-1")
	other, _ := a.Issue("user-1")

	session, err := a.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	a.SignOut(session)

	if _, err := a.Authenticate(token); !errors.Is(err, ErrSignedOut) {
		t.Errorf("error = %v, want ErrSignedOut", err)
	}
	if _, err := a.Authenticate(other); err != nil {
		t.Errorf("other token rejected: %v", err)
	}
}

func TestSignOutPrunesExpired(t *testing.T) {
	a := newTestAuthenticator(t)
	a.SignOut(Session{TokenID: "old", ExpiresAt: time.Now().Add(-time.Minute)})
	a.SignOut(Session{TokenID: "new", ExpiresAt: time.Now().Add(time.Minute)})

	if _, ok := a.revoked["old"]; ok {
		t.Error("expired revocation not pruned")
	}
	if _, ok := a.revoked["new"]; !ok {
		t.Error("live revocation missing")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		if got := BearerToken(r); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	a := newTestAuthenticator(t)
	token, _ := a.Issue("user-42")

	var gotUser string
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
		if gotUser != "user-42" {
			t.Errorf("user = %q, want user-42", gotUser)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
	})
}
