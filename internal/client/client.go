// Package client is a Go client for the user-admin HTTP API. Auth actions
// report their outcome through a Notifier and return a Result instead of
// failing loudly; the session they establish is tracked in a SessionState.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// DefaultBaseURL is used when neither Config.BaseURL nor AUTH_URL is set.
const DefaultBaseURL = "http://localhost:3000"

// Config configures a Client.
type Config struct {
	// BaseURL of the API. Defaults to $AUTH_URL, then DefaultBaseURL.
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Notifier   Notifier
}

// Error is returned for failed API calls. Status is 0 for transport failures.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Result is the outcome of an auth action: exactly one of Data and Error is set.
type Result[T any] struct {
	Data  T
	Error *Error
}

// OK reports whether the action succeeded.
func (r Result[T]) OK() bool { return r.Error == nil }

// AuthData is returned by sign-up and sign-in.
type AuthData struct {
	Token   string          `json:"token"`
	User    *domain.User    `json:"user"`
	Session *domain.Session `json:"session"`
}

type Client struct {
	baseURL string
	hc      *http.Client
	notify  Notifier
	state   *SessionState

	mu    sync.RWMutex
	token string
}

func New(cfg Config) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = BaseURLFromEnv()
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	n := cfg.Notifier
	if n == nil {
		n = NotifierFunc(func(Notification) {})
	}

	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		hc:      hc,
		notify:  n,
		state:   NewSessionState(),
		token:   cfg.Token,
	}
}

// BaseURLFromEnv returns $AUTH_URL or DefaultBaseURL.
func BaseURLFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("AUTH_URL")); v != "" {
		return v
	}
	return DefaultBaseURL
}

// Session returns the client's session state.
func (c *Client) Session() *SessionState { return c.state }

// Token returns the current session token, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// SignUpEmail registers an account and signs it in.
func (c *Client) SignUpEmail(ctx context.Context, name, email, password string) Result[*AuthData] {
	return c.authenticate(ctx, "/api/auth/sign-up/email",
		map[string]string{"name": name, "email": email, "password": password},
		"Account created successfully!", "Failed to register")
}

// SignInEmail signs in with an email/password pair.
func (c *Client) SignInEmail(ctx context.Context, email, password string) Result[*AuthData] {
	return c.authenticate(ctx, "/api/auth/sign-in/email",
		map[string]string{"email": email, "password": password},
		"Logged in successfully!", "Failed to login")
}

func (c *Client) authenticate(ctx context.Context, path string, body any, okMsg, failMsg string) Result[*AuthData] {
	c.state.Reset()

	var data AuthData
	if err := c.do(ctx, http.MethodPost, path, body, &data); err != nil {
		apiErr := asError(err, failMsg)
		c.state.Resolve(nil, nil)
		c.notify.Notify(failure(apiErr.Message))
		return Result[*AuthData]{Error: apiErr}
	}

	c.setToken(data.Token)
	c.state.Resolve(data.Session, nil)
	c.notify.Notify(success(okMsg))
	return Result[*AuthData]{Data: &data}
}

// SignOut revokes the current session. The local token is dropped whatever
// the outcome.
func (c *Client) SignOut(ctx context.Context) Result[struct{}] {
	err := c.do(ctx, http.MethodPost, "/api/auth/sign-out", nil, nil)
	c.setToken("")
	c.state.Resolve(nil, nil)

	if err != nil {
		apiErr := asError(err, "Failed to logout")
		c.notify.Notify(failure("Failed to logout"))
		return Result[struct{}]{Error: apiErr}
	}
	c.notify.Notify(success("Logged out successfully"))
	return Result[struct{}]{}
}

// RefreshSession asks the server for the current session and settles the
// session state with the answer.
func (c *Client) RefreshSession(ctx context.Context) (*domain.Session, error) {
	var sess *domain.Session
	if err := c.do(ctx, http.MethodGet, "/api/auth/get-session", nil, &sess); err != nil {
		c.state.Resolve(nil, err)
		return nil, err
	}
	c.state.Resolve(sess, nil)
	return sess, nil
}

// UserSummary mirrors an entry of GET /api/users.
type UserSummary struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Image        *string     `json:"image"`
	Role         domain.Role `json:"role"`
	CreatedAt    time.Time   `json:"createdAt"`
	LastActiveAt *time.Time  `json:"lastActiveAt,omitempty"`
}

// CreateUserRequest is the body of POST /api/users/users.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// DeleteUserResult mirrors the response of DELETE /api/users/{id}/user.
type DeleteUserResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DeletedUserID string `json:"deletedUserId"`
}

func (c *Client) ListUsers(ctx context.Context) ([]UserSummary, error) {
	var out []UserSummary
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*UserSummary, error) {
	var out UserSummary
	if err := c.do(ctx, http.MethodPost, "/api/users/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) (*DeleteUserResult, error) {
	var out DeleteUserResult
	if err := c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id)+"/user", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, id string, role string) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id)+"/role", map[string]string{"role": role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UserActivity(ctx context.Context, id string) ([]domain.AuditEvent, error) {
	var out struct {
		Events []domain.AuditEvent `json:"events"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id)+"/activity", nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var envelope struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &envelope) != nil || envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: envelope.Error}
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

// asError converts err into an *Error, using fallback when it carries no
// message of its own.
func asError(err error, fallback string) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			apiErr.Message = fallback
		}
		return apiErr
	}
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return &Error{Message: msg}
}
