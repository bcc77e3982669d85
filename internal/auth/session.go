package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	driftline_errors "driftline/pkg/errors"
)

// Claims carried in the backend-issued session token.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Session holds the JWT the backend issued for this client. Verification is
// the backend's job; the client only decodes claims and refuses to present
// an expired token.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims Claims
}

func NewSession() *Session {
	return &Session{}
}

// SetToken installs a freshly issued token, replacing any previous one.
func (s *Session) SetToken(token string) error {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return fmt.Errorf("decode session token: %w", err)
	}
	if claims.UserID == "" {
		return fmt.Errorf("decode session token: %w", driftline_errors.ErrInvalidInput)
	}

	s.mu.Lock()
	s.token = token
	s.claims = claims
	s.mu.Unlock()
	return nil
}

// Token returns the bearer token, or ErrSessionExpired when it is past its
// expiry.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", driftline_errors.ErrUnauthorized
	}
	if exp := s.claims.ExpiresAt; exp != nil && time.Now().After(exp.Time) {
		return "", driftline_errors.ErrSessionExpired
	}
	return s.token, nil
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims.UserID
}

func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims.Name
}

// Clear drops the session.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.claims = Claims{}
	s.mu.Unlock()
}
