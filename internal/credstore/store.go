// Package credstore holds the bearer credential for upstream glowdesk API
// calls. The token is opaque to this service except for a best-effort local
// read of its JWT expiry claim, which lets callers skip a round trip that is
// guaranteed to come back 401.
package credstore

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store is a concurrency-safe holder for one bearer credential.
type Store struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time // zero when the token carries no readable exp claim
}

// New creates an empty credential store
func New() *Store {
	return &Store{}
}

// Set stores a bearer token, replacing any previous one. If the token is a
// JWT with a readable exp claim the expiry is recorded for local checks;
// signature verification is the upstream service's job, not ours.
func (s *Store) Set(token string) {
	var expiresAt time.Time

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Time
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
}

// Token returns the stored credential. ok is false when no credential is
// stored or its exp claim is already in the past.
func (s *Store) Token() (token string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", false
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return "", false
	}
	return s.token, true
}

// ExpiresAt returns the token expiry, if one was readable.
func (s *Store) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt, !s.expiresAt.IsZero()
}

// Clear drops the stored credential. Called when an authenticated request
// comes back 401: the session is gone regardless of what we think expiry is.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}
