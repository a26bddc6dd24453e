package client

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

	"github.com/loftlab/huddle/pkg/assistant"
	"github.com/loftlab/huddle/pkg/events"
	"github.com/loftlab/huddle/pkg/types"
)

// Client wraps the huddle HTTP API for easy CLI usage. All methods target
// a single server; workspace scoping is per call.
type Client struct {
	baseURL string
	actorID string
	http    *http.Client
}

// APIError is a non-2xx response decoded from the server's error payload
type APIError struct {
	Status  int
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewClient creates a client for the API at baseURL. actorID attributes
// mutations to a user and may be empty.
func NewClient(baseURL, actorID string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		actorID: actorID,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ---- workspaces ----

func (c *Client) CreateWorkspace(ctx context.Context, name string) (*types.Workspace, error) {
	var ws types.Workspace
	err := c.do(ctx, http.MethodPost, "/v1/workspaces", map[string]string{"name": name}, &ws)
	return &ws, err
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]*types.Workspace, error) {
	var workspaces []*types.Workspace
	err := c.do(ctx, http.MethodGet, "/v1/workspaces", nil, &workspaces)
	return workspaces, err
}

func (c *Client) GetWorkspace(ctx context.Context, id string) (*types.Workspace, error) {
	var ws types.Workspace
	err := c.do(ctx, http.MethodGet, "/v1/workspaces/"+url.PathEscape(id), nil, &ws)
	return &ws, err
}

func (c *Client) DeleteWorkspace(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/workspaces/"+url.PathEscape(id), nil, nil)
}

// ---- tasks ----

func (c *Client) CreateTask(ctx context.Context, workspaceID string, task *types.Task) (*types.Task, error) {
	var created types.Task
	err := c.do(ctx, http.MethodPost, c.wsPath(workspaceID, "tasks"), task, &created)
	return &created, err
}

func (c *Client) ListTasks(ctx context.Context, workspaceID string) ([]*types.Task, error) {
	var tasks []*types.Task
	err := c.do(ctx, http.MethodGet, c.wsPath(workspaceID, "tasks"), nil, &tasks)
	return tasks, err
}

func (c *Client) GetTask(ctx context.Context, workspaceID, id string) (*types.Task, error) {
	var task types.Task
	err := c.do(ctx, http.MethodGet, c.wsPath(workspaceID, "tasks", id), nil, &task)
	return &task, err
}

func (c *Client) UpdateTask(ctx context.Context, workspaceID, id string, patch *types.TaskPatch) (*types.Task, error) {
	var updated types.Task
	err := c.do(ctx, http.MethodPatch, c.wsPath(workspaceID, "tasks", id), patch, &updated)
	return &updated, err
}

func (c *Client) DeleteTask(ctx context.Context, workspaceID, id string) error {
	return c.do(ctx, http.MethodDelete, c.wsPath(workspaceID, "tasks", id), nil, nil)
}

// ---- projects ----

func (c *Client) CreateProject(ctx context.Context, workspaceID string, project *types.Project) (*types.Project, error) {
	var created types.Project
	err := c.do(ctx, http.MethodPost, c.wsPath(workspaceID, "projects"), project, &created)
	return &created, err
}

func (c *Client) ListProjects(ctx context.Context, workspaceID string) ([]*types.Project, error) {
	var projects []*types.Project
	err := c.do(ctx, http.MethodGet, c.wsPath(workspaceID, "projects"), nil, &projects)
	return projects, err
}

func (c *Client) GetProject(ctx context.Context, workspaceID, id string) (*types.Project, error) {
	var project types.Project
	err := c.do(ctx, http.MethodGet, c.wsPath(workspaceID, "projects", id), nil, &project)
	return &project, err
}

func (c *Client) UpdateProject(ctx context.Context, workspaceID, id string, patch *types.ProjectPatch) (*types.Project, error) {
	var updated types.Project
	err := c.do(ctx, http.MethodPatch, c.wsPath(workspaceID, "projects", id), patch, &updated)
	return &updated, err
}

func (c *Client) DeleteProject(ctx context.Context, workspaceID, id string) error {
	return c.do(ctx, http.MethodDelete, c.wsPath(workspaceID, "projects", id), nil, nil)
}

// ---- members ----

func (c *Client) ListMembers(ctx context.Context, workspaceID string) ([]*types.Member, error) {
	var members []*types.Member
	err := c.do(ctx, http.MethodGet, c.wsPath(workspaceID, "members"), nil, &members)
	return members, err
}

func (c *Client) PutMember(ctx context.Context, member *types.Member) (*types.Member, error) {
	var saved types.Member
	err := c.do(ctx, http.MethodPut, c.wsPath(member.WorkspaceID, "members", member.UserID), member, &saved)
	return &saved, err
}

func (c *Client) DeleteMember(ctx context.Context, workspaceID, userID string) error {
	return c.do(ctx, http.MethodDelete, c.wsPath(workspaceID, "members", userID), nil, nil)
}

// ---- notifications ----

func (c *Client) ListNotifications(ctx context.Context, workspaceID string) ([]*types.Notification, error) {
	var notifications []*types.Notification
	err := c.do(ctx, http.MethodGet, c.wsPath(workspaceID, "notifications"), nil, &notifications)
	return notifications, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, workspaceID, id string) error {
	return c.do(ctx, http.MethodPost, c.wsPath(workspaceID, "notifications", id)+"/read", nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context, workspaceID string) error {
	return c.do(ctx, http.MethodPost, c.wsPath(workspaceID, "notifications")+"/read-all", nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, workspaceID, id string) error {
	return c.do(ctx, http.MethodDelete, c.wsPath(workspaceID, "notifications", id), nil, nil)
}

func (c *Client) ClearNotifications(ctx context.Context, workspaceID string) error {
	return c.do(ctx, http.MethodDelete, c.wsPath(workspaceID, "notifications"), nil, nil)
}

// ---- invites ----

// InviteView is an invite plus the effective status computed by the server
type InviteView struct {
	*types.Invite
	EffectiveStatus string `json:"effectiveStatus"`
}

func (c *Client) CreateInvite(ctx context.Context, workspaceID, email string, role types.MemberRole) (*types.Invite, error) {
	var inv types.Invite
	body := map[string]any{"email": email, "role": role}
	err := c.do(ctx, http.MethodPost, c.wsPath(workspaceID, "invites"), body, &inv)
	return &inv, err
}

func (c *Client) ListInvites(ctx context.Context, workspaceID string) ([]InviteView, error) {
	var invites []InviteView
	err := c.do(ctx, http.MethodGet, c.wsPath(workspaceID, "invites"), nil, &invites)
	return invites, err
}

func (c *Client) AcceptInvite(ctx context.Context, workspaceID, token, userID, email, name string) (*types.Member, error) {
	var member types.Member
	body := map[string]string{"userId": userID, "email": email, "name": name}
	err := c.do(ctx, http.MethodPost, c.wsPath(workspaceID, "invites", token)+"/accept", body, &member)
	return &member, err
}

func (c *Client) RevokeInvite(ctx context.Context, workspaceID, token string) error {
	return c.do(ctx, http.MethodPost, c.wsPath(workspaceID, "invites", token)+"/revoke", nil, nil)
}

// ---- assistant ----

func (c *Client) Ask(ctx context.Context, workspaceID, prompt string) ([]assistant.Outcome, error) {
	var resp struct {
		Outcomes []assistant.Outcome `json:"outcomes"`
	}
	body := map[string]string{"prompt": prompt}
	err := c.do(ctx, http.MethodPost, c.wsPath(workspaceID, "assistant"), body, &resp)
	return resp.Outcomes, err
}

func (c *Client) RunIntents(ctx context.Context, workspaceID string, intents []assistant.Intent) ([]assistant.Outcome, error) {
	var resp struct {
		Outcomes []assistant.Outcome `json:"outcomes"`
	}
	body := map[string]any{"intents": intents}
	err := c.do(ctx, http.MethodPost, c.wsPath(workspaceID, "assistant"), body, &resp)
	return resp.Outcomes, err
}

// ---- events ----

// PollEvents blocks up to timeout waiting for change events in the
// workspace. An empty slice means the poll timed out.
func (c *Client) PollEvents(ctx context.Context, workspaceID string, timeout time.Duration) ([]*events.Event, error) {
	var resp struct {
		Events []*events.Event `json:"events"`
	}
	path := c.wsPath(workspaceID, "events") + "?timeout=" + url.QueryEscape(timeout.String())
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return resp.Events, err
}

func (c *Client) wsPath(workspaceID string, parts ...string) string {
	segments := []string{"/v1/workspaces", url.PathEscape(workspaceID)}
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}
	return strings.Join(segments, "/")
}

func (c *Client) do(ctx context.Context, method, path string, body, into any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
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
	if c.actorID != "" {
		req.Header.Set("X-Huddle-User", c.actorID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Code: "error"}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = resp.Status
		}
		return apiErr
	}
	if into == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
