package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftline/internal/auth"
	"driftline/internal/domain"
	"driftline/internal/transport/httpdto"
	driftline_errors "driftline/pkg/errors"
)

func testToken(t *testing.T, userID string) string {
	t.Helper()
	claims := auth.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func authedClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	session := auth.NewSession()
	require.NoError(t, session.SetToken(testToken(t, "u1")))
	return NewClient(baseURL, session)
}

func writeSuccess(t *testing.T, w http.ResponseWriter, status int, data interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	}))
}

func TestLoginInstallsSessionToken(t *testing.T) {
	token := testToken(t, "u42")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/auth/login", r.URL.Path)

		var req httpdto.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.c", req.Email)

		writeSuccess(t, w, http.StatusOK, httpdto.AuthResponse{Token: token})
	}))
	defer srv.Close()

	session := auth.NewSession()
	client := NewClient(srv.URL, session)
	require.NoError(t, client.Login(context.Background(), "a@b.c", "password"))
	assert.Equal(t, "u42", session.UserID())
}

func TestMessagesListSendsBearerAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "c1", r.URL.Query().Get("chat_id"))
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer ")

		writeSuccess(t, w, http.StatusOK, httpdto.MessageListResponse{
			Messages: []domain.Message{{ID: "m1", ChatID: "c1"}},
		})
	}))
	defer srv.Close()

	client := authedClient(t, srv.URL)
	msgs, err := client.Messages().ListByChat(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}

func TestUpdateReactionsPatchesTokenList(t *testing.T) {
	var got httpdto.PatchMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/messages/m1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeSuccess(t, w, http.StatusOK, domain.Message{ID: "m1"})
	}))
	defer srv.Close()

	client := authedClient(t, srv.URL)
	err := client.Messages().UpdateReactions(context.Background(), "m1", []string{"m1-u1-heart"})
	require.NoError(t, err)

	require.NotNil(t, got.Reactions)
	assert.Equal(t, []string{"m1-u1-heart"}, *got.Reactions)
	assert.Nil(t, got.Content)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, driftline_errors.ErrNotFound},
		{http.StatusUnauthorized, driftline_errors.ErrUnauthorized},
		{http.StatusForbidden, driftline_errors.ErrForbidden},
		{http.StatusConflict, driftline_errors.ErrAlreadyExists},
		{http.StatusBadRequest, driftline_errors.ErrInvalidInput},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "nope"})
		}))

		client := authedClient(t, srv.URL)
		_, err := client.Messages().GetByID(context.Background(), "m1")
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		srv.Close()
	}
}

func TestExpiredSessionFailsBeforeRequest(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	session := auth.NewSession()
	claims := auth.Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	require.NoError(t, session.SetToken(token))

	client := NewClient(srv.URL, session)
	_, err = client.Messages().GetByID(context.Background(), "m1")
	assert.ErrorIs(t, err, driftline_errors.ErrSessionExpired)
	assert.False(t, hit)
}
