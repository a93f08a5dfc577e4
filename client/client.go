package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Project is the project shape returned by the project endpoints.
type Project struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	StartingDate *time.Time `json:"startingDate"`
}

// Task is the flat task shape returned by the task endpoints.
type Task struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"dueDate"`
	EndDate        *time.Time `json:"endDate"`
	ProjectID      string     `json:"projectId"`
	AssignedUserID *string    `json:"assignedUserId"`
}

// HistoryEntry is one immutable record of a single field change on a task.
type HistoryEntry struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"taskId"`
	ModifiedBy string    `json:"modifiedBy"`
	FieldName  string    `json:"fieldName"`
	OldValue   *string   `json:"oldValue"`
	NewValue   *string   `json:"newValue"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// User is a directory entry from the user list endpoint.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse is the identity returned by register and login.
type AuthResponse struct {
	Token    *string `json:"token"`
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
}

// Client is a thin typed wrapper over the REST API. It owns URL construction
// and error decoding; business logic lives with the callers.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *SessionStore
}

// New creates a Client. All non-auth requests carry the session's identity
// header via the transport.
func New(baseURL string, sessions *SessionStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: newIdentityTransport(sessions, nil),
			Timeout:   30 * time.Second,
		},
		sessions: sessions,
	}
}

// Sessions exposes the session store backing this client.
func (c *Client) Sessions() *SessionStore {
	return c.sessions
}

// RegisterInput is the register request body.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and stores the returned identity as the
// current session.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", input, &out); err != nil {
		return nil, err
	}
	if err := c.storeSession(out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginInput is the login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and stores the returned identity as the current
// session.
func (c *Client) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", input, &out); err != nil {
		return nil, err
	}
	if err := c.storeSession(out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout clears the stored session.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// ListUsers returns all registered users.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser returns a single user by ID.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/users/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjects returns all projects.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProjectsForMember returns the projects the given user belongs to.
func (c *Client) ProjectsForMember(ctx context.Context, userID string) ([]Project, error) {
	var out []Project
	if err := c.do(ctx, http.MethodGet, "/projects/member/"+userID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject returns a single project.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProjectInput is the create-project request body. Dates travel in
// date-only form.
type CreateProjectInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	StartingDate string `json:"startingDate,omitempty"`
}

// CreateProject creates a project; the caller becomes its admin.
func (c *Client) CreateProject(ctx context.Context, input CreateProjectInput) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodPost, "/projects", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProjectInput carries the project fields to change; nil fields are
// left untouched.
type UpdateProjectInput struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	StartingDate *string `json:"startingDate,omitempty"`
}

// UpdateProject updates a project's fields.
func (c *Client) UpdateProject(ctx context.Context, id string, input UpdateProjectInput) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+id, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+id, nil, nil)
}

// InviteMemberInput is the invite request body.
type InviteMemberInput struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InviteMember adds a user to the project by email.
func (c *Client) InviteMember(ctx context.Context, projectID string, input InviteMemberInput) error {
	return c.do(ctx, http.MethodPost, "/projects/"+projectID+"/invite", input, nil)
}

// ListMembers returns the project's member list.
func (c *Client) ListMembers(ctx context.Context, projectID string) ([]Member, error) {
	var out []Member
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/members", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMemberRole changes a member's role within the project.
func (c *Client) UpdateMemberRole(ctx context.Context, projectID, userID, role string) error {
	body := struct {
		Role string `json:"role"`
	}{Role: role}
	return c.do(ctx, http.MethodPut, "/projects/"+projectID+"/members/"+userID+"/role", body, nil)
}

// RemoveMember removes a member from the project.
func (c *Client) RemoveMember(ctx context.Context, projectID, userID string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+projectID+"/members/"+userID, nil, nil)
}

// ListTasks returns all tasks.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var out []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TasksForProject returns a project's tasks.
func (c *Client) TasksForProject(ctx context.Context, projectID string) ([]Task, error) {
	var out []Task
	if err := c.do(ctx, http.MethodGet, "/tasks/project/"+projectID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTaskInput is the create-task request body.
type CreateTaskInput struct {
	ProjectID   string `json:"projectId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

// CreateTask creates a task under a project.
func (c *Client) CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPost, "/tasks", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTaskInput is the full replacement body for a task's editable fields.
// Dates travel in date-only form; empty means unset.
type UpdateTaskInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

// UpdateTask replaces a task's editable fields.
func (c *Client) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil)
}

// AssignTask assigns a task to a project member.
func (c *Client) AssignTask(ctx context.Context, taskID, projectID, userID string) (*Task, error) {
	body := struct {
		ProjectID string `json:"projectId"`
		UserID    string `json:"userId"`
	}{ProjectID: projectID, UserID: userID}

	var out Task
	if err := c.do(ctx, http.MethodPost, "/tasks/"+taskID+"/assign", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TaskHistory returns a task's change log, newest first.
func (c *Client) TaskHistory(ctx context.Context, taskID string) ([]HistoryEntry, error) {
	var out []HistoryEntry
	if err := c.do(ctx, http.MethodGet, "/tasks/"+taskID+"/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) storeSession(auth AuthResponse) error {
	return c.sessions.Set(Session{
		UserID:   auth.UserID,
		Username: auth.Username,
		Email:    auth.Email,
		Token:    auth.Token,
	})
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
