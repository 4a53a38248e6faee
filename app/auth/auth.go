package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskmanager/app/config"
)

var (
	ErrNoSecret     = errors.New("auth.jwt_secret is not configured")
	ErrNoToken      = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrSignedOut    = errors.New("session has been signed out")
)

// Session identifies the user behind a request.
type Session struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// Authenticator verifies HS256 bearer tokens and tracks signed-out ones.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // token id -> expiry
}

// New creates an Authenticator from cfg.
func New(cfg config.AuthConfig) (*Authenticator, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrNoSecret
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		secret:  []byte(cfg.JWTSecret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}, nil
}

// Issue mints a token for userID valid for the configured TTL.
func (a *Authenticator) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Authenticate returns the session carried by token.
func (a *Authenticator) Authenticate(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Session{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	// sign-out revokes by jti
	if claims.ID == "" {
		return Session{}, fmt.Errorf("%w: no token id", ErrInvalidToken)
	}

	session := Session{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	a.mu.Lock()
	_, revoked := a.revoked[session.TokenID]
	a.mu.Unlock()
	if revoked {
		return Session{}, ErrSignedOut
	}
	return session, nil
}

// SignOut rejects the session's token until it expires.
func (a *Authenticator) SignOut(session Session) {
	if session.TokenID == "" {
		return
	}
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()
	for id, exp := range a.revoked {
		if exp.Before(now) {
			delete(a.revoked, id)
		}
	}
	a.revoked[session.TokenID] = session.ExpiresAt
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware rejects requests without a valid session and stores the
// session in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := a.Authenticate(BearerToken(r))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

type sessionKey struct{}

// WithSession returns a context carrying session.
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// FromContext returns the session stored by Middleware.
func FromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(Session)
	return session, ok
}

// UserID returns the current user id, or "" outside an authenticated request.
func UserID(ctx context.Context) string {
	session, _ := FromContext(ctx)
	return session.UserID
}
