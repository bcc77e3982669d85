package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"driftline/internal/auth"
	"driftline/internal/transport/httpdto"
	driftline_errors "driftline/pkg/errors"
)

// Client talks to the hosted document API over HTTP/JSON, presenting the
// session bearer token on every call. It implements the repository
// interfaces the rest of the client library consumes.
type Client struct {
	baseURL string
	http    *http.Client
	session *auth.Session
}

func NewClient(baseURL string, session *auth.Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
}

// Register creates an account and installs the issued session token.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	var out httpdto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/register", httpdto.RegisterRequest{
		Name: name, Email: email, Password: password,
	}, &out, false)
	if err != nil {
		return err
	}
	return c.session.SetToken(out.Token)
}

// Login authenticates and installs the issued session token.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out httpdto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", httpdto.LoginRequest{
		Email: email, Password: password,
	}, &out, false)
	if err != nil {
		return err
	}
	return c.session.SetToken(out.Token)
}

// do issues one API call. Responses use the standard success/error envelope;
// non-2xx statuses map onto the shared sentinel errors.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		token, err := c.session.Token()
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %w", method, path, statusError(resp.StatusCode, resp.Body))
	}
	if out == nil {
		return nil
	}

	envelope := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func statusError(status int, body io.Reader) error {
	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(body).Decode(&envelope)

	var base error
	switch status {
	case http.StatusNotFound:
		base = driftline_errors.ErrNotFound
	case http.StatusUnauthorized:
		base = driftline_errors.ErrUnauthorized
	case http.StatusForbidden:
		base = driftline_errors.ErrForbidden
	case http.StatusConflict:
		base = driftline_errors.ErrAlreadyExists
	case http.StatusBadRequest:
		base = driftline_errors.ErrInvalidInput
	default:
		base = fmt.Errorf("unexpected status %d", status)
	}
	if envelope.Error != "" {
		return fmt.Errorf("%w: %s", base, envelope.Error)
	}
	return base
}

func queryPath(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
