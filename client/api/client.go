// Package api is the HTTP client for the planner server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	domain "github.com/example/daily-planner/domain/task"
)

// Draft is the client-supplied portion of a task sent on create. It mirrors
// the server's input schema exactly; the server rejects unknown fields.
type Draft struct {
	Date        string        `json:"date"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Time        string        `json:"time"`
	Reminder    bool          `json:"reminder"`
	Status      domain.Status `json:"status"`
	Reason      string        `json:"reason"`
}

// Payload is a full task submitted for update.
type Payload struct {
	ID string `json:"id"`
	Draft
}

// DraftOf extracts the client-mutable fields of a stored task.
func DraftOf(t domain.Task) Draft {
	return Draft{
		Date:        t.Date,
		Title:       t.Title,
		Description: t.Description,
		Time:        t.Time,
		Reminder:    t.Reminder,
		Status:      t.Status,
		Reason:      t.Reason,
	}
}

// Tokens is the login/refresh response.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Client talks to the planner HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the given base URL. The token may be empty for
// the public auth endpoints.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken replaces the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/register", body, nil)
}

// Login exchanges credentials for tokens and stores the access token on the
// client.
func (c *Client) Login(ctx context.Context, email, password string) (*Tokens, error) {
	body := map[string]string{"email": email, "password": password}
	var tokens Tokens
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &tokens); err != nil {
		return nil, err
	}
	c.token = tokens.AccessToken
	return &tokens, nil
}

// ListTasks fetches the caller's tasks for one calendar date.
func (c *Client) ListTasks(ctx context.Context, date string) ([]domain.Task, error) {
	var tasks []domain.Task
	path := "/api/v1/task?date=" + url.QueryEscape(date)
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask stores a new task and returns it with its assigned id.
func (c *Client) CreateTask(ctx context.Context, draft Draft) (*domain.Task, error) {
	var created domain.Task
	if err := c.do(ctx, http.MethodPost, "/api/v1/task", draft, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask replaces a task's mutable fields and returns the stored result.
func (c *Client) UpdateTask(ctx context.Context, payload Payload) (*domain.Task, error) {
	var updated domain.Task
	if err := c.do(ctx, http.MethodPut, "/api/v1/task", payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask removes a task by id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	body := map[string]string{"id": id}
	return c.do(ctx, http.MethodDelete, "/api/v1/task", body, nil)
}

// do sends one request and decodes the response. Transport failures are
// returned as-is (the caller treats them as "offline"); HTTP failures are
// returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			apiErr.Code = errBody.Error
			apiErr.Message = errBody.Message
		}
		return apiErr
	}

	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
