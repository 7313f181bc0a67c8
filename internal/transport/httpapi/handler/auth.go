package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/glowdesk/walletd/internal/credstore"
)

// LoginService proxies a login attempt to the upstream service.
type LoginService interface {
	Login(ctx context.Context, email, password string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	login LoginService
	creds *credstore.Store
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(login LoginService, creds *credstore.Store) *AuthHandler {
	return &AuthHandler{login: login, creds: creds}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the upstream session token back to the client.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// Login handles POST /api/v1/auth/login. On success the credential store
// is seeded and the token echoed back for the client to reuse.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	if err := h.login.Login(r.Context(), req.Email, req.Password); err != nil {
		respondAppError(w, err)
		return
	}

	token, ok := h.creds.Token()
	if !ok {
		respondError(w, "login did not produce a usable session", http.StatusBadGateway)
		return
	}

	resp := LoginResponse{Token: token}
	if exp, ok := h.creds.ExpiresAt(); ok {
		resp.ExpiresAt = exp.Format(time.RFC3339)
	}
	respondJSON(w, resp, http.StatusOK)
}
