package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User mirrors the server's user representation.
type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// APIClient calls the userauth HTTP API.
type APIClient struct {
	baseURL string
	http    *http.Client
}

// NewAPIClient returns a client for the server at baseURL. timeout bounds
// every request.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *APIClient) Register(ctx context.Context, userName, email string, password []byte) (*User, error) {
	body := map[string]string{"username": userName, "email": email, "password": string(password)}
	var u User
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login returns a session token.
func (c *APIClient) Login(ctx context.Context, userName string, password []byte) (string, error) {
	body := map[string]string{"username": userName, "password": string(password)}
	var tr tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &tr); err != nil {
		return "", err
	}
	return tr.Token, nil
}

// Refresh exchanges a still-valid token for a new one.
func (c *APIClient) Refresh(ctx context.Context, token string) (string, error) {
	var tr tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", map[string]string{"token": token}, &tr); err != nil {
		return "", err
	}
	return tr.Token, nil
}

func (c *APIClient) Profile(ctx context.Context, token string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/user/profile", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Ping checks the server's health endpoint.
func (c *APIClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *APIClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var er errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&er)
	msg := er.Error
	if msg == "" {
		msg = resp.Status
	}

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		sentinel = ErrForbidden
	case resp.StatusCode == http.StatusConflict:
		sentinel = ErrAlreadyExists
	case resp.StatusCode == http.StatusBadRequest:
		sentinel = ErrBadRequest
	case resp.StatusCode == http.StatusServiceUnavailable:
		sentinel = ErrUnavailable
	default:
		sentinel = ErrServer
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
