// Package api is the HTTP client for the task server. Calls run through a
// circuit breaker; transport errors and server-side failures trip it, while
// client-side errors (validation, permission) pass through as APIErrors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/durmussoy/TaskManagementSystem/models"
)

// ErrUnauthorized is returned on any 401; the agent reacts by clearing its
// session and forcing a re-login.
var ErrUnauthorized = errors.New("unauthorized: token missing or expired")

type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

type CreateTaskRequest struct {
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	DueDateTime      time.Time        `json:"dueDateTime"`
	ReminderDateTime *time.Time       `json:"reminderDateTime,omitempty"`
	Status           string           `json:"status,omitempty"`
	SubTasks         []models.SubTask `json:"subTasks,omitempty"`
	AssignedTo       string           `json:"assignedTo,omitempty"`
}

type UpdateTaskRequest struct {
	Title            *string            `json:"title,omitempty"`
	Description      *string            `json:"description,omitempty"`
	Status           *models.TaskStatus `json:"status,omitempty"`
	DueDateTime      *time.Time         `json:"dueDateTime,omitempty"`
	SubTasks         *[]models.SubTask  `json:"subTasks,omitempty"`
	ReminderDateTime *time.Time         `json:"reminderDateTime,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	token      string
}

func NewClient(baseURL string, breaker *gobreaker.CircuitBreaker) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker:    breaker,
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Register(ctx context.Context, username, password, name string) error {
	body := map[string]string{"username": username, "password": password, "name": name}
	return c.do(ctx, http.MethodPost, "/api/users/register", body, nil)
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/login", body, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]models.TaskView, error) {
	var tasks []models.TaskView
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*models.TaskView, error) {
	var task models.TaskView
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*models.TaskView, error) {
	var task models.TaskView
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

type rawResponse struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
		}
		return &rawResponse{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		return err
	}

	resp := result.(*rawResponse)
	if resp.status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.status >= 400 {
		return &APIError{Status: resp.status, Message: errorMessage(resp.body)}
	}
	if out != nil {
		if err := json.Unmarshal(resp.body, out); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}
	return nil
}

func errorMessage(body []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err == nil && m.Message != "" {
		return m.Message
	}
	return "Server error"
}
