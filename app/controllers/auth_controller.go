package controllers

import (
	"net/http"
	"time"

	"taskmanager/app/auth"
)

// AuthController serves the current session and sign-out.
type AuthController struct {
	Auth *auth.Authenticator
}

// NewAuthController creates a new AuthController.
func NewAuthController(authn *auth.Authenticator) *AuthController {
	return &AuthController{Auth: authn}
}

type sessionResponse struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GetSession handles GET /auth/session.
func (c *AuthController) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, auth.ErrNoToken.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{UserID: session.UserID, ExpiresAt: session.ExpiresAt})
}

// SignOut handles POST /auth/signout.
func (c *AuthController) SignOut(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, auth.ErrNoToken.Error())
		return
	}
	c.Auth.SignOut(session)
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
