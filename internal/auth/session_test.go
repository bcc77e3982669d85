package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	driftline_errors "driftline/pkg/errors"
)

func signedToken(t *testing.T, userID, name string, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSessionSetTokenAndClaims(t *testing.T) {
	s := NewSession()
	raw := signedToken(t, "u1", "alice", time.Now().Add(time.Hour))

	require.NoError(t, s.SetToken(raw))
	assert.Equal(t, "u1", s.UserID())
	assert.Equal(t, "alice", s.Name())

	got, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestSessionEmptyTokenIsUnauthorized(t *testing.T) {
	s := NewSession()
	_, err := s.Token()
	assert.ErrorIs(t, err, driftline_errors.ErrUnauthorized)
}

func TestSessionExpiredToken(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetToken(signedToken(t, "u1", "alice", time.Now().Add(-time.Minute))))

	_, err := s.Token()
	assert.ErrorIs(t, err, driftline_errors.ErrSessionExpired)
}

func TestSessionRejectsGarbage(t *testing.T) {
	s := NewSession()
	assert.Error(t, s.SetToken("not a jwt"))
	assert.Error(t, s.SetToken(signedToken(t, "", "noone", time.Now().Add(time.Hour))))
}

func TestSessionClear(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetToken(signedToken(t, "u1", "alice", time.Now().Add(time.Hour))))

	s.Clear()
	_, err := s.Token()
	assert.ErrorIs(t, err, driftline_errors.ErrUnauthorized)
	assert.Empty(t, s.UserID())
}
