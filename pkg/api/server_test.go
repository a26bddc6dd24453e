package api

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/loftlab/huddle/pkg/assistant"
	"github.com/loftlab/huddle/pkg/client"
	"github.com/loftlab/huddle/pkg/events"
	"github.com/loftlab/huddle/pkg/storage"
	"github.com/loftlab/huddle/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	broker := events.NewBroker()
	broker.Start()
	t.Cleanup(broker.Stop)

	store, err := storage.NewBoltStore(t.TempDir(), broker)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	server := NewServer(ServerConfig{Store: store, Broker: broker})
	t.Cleanup(server.Close)

	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)
	return srv
}

func TestWorkspaceLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	c := client.NewClient(srv.URL, "u-owner")
	ctx := context.Background()

	ws, err := c.CreateWorkspace(ctx, "engineering")
	require.NoError(t, err)
	assert.NotEmpty(t, ws.ID)
	assert.Equal(t, "u-owner", ws.CreatedBy)

	got, err := c.GetWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "engineering", got.Name)

	list, err := c.ListWorkspaces(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, c.DeleteWorkspace(ctx, ws.ID))

	_, err = c.GetWorkspace(ctx, ws.ID)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestCreateWorkspaceRequiresName(t *testing.T) {
	srv := newTestServer(t)
	c := client.NewClient(srv.URL, "u-owner")

	_, err := c.CreateWorkspace(context.Background(), "")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "bad_request", apiErr.Code)
}

func TestTaskCRUDOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	c := client.NewClient(srv.URL, "u-alice")
	ctx := context.Background()

	ws, err := c.CreateWorkspace(ctx, "tasks")
	require.NoError(t, err)

	created, err := c.CreateTask(ctx, ws.ID, &types.Task{
		Title:    "write docs",
		Priority: types.PriorityHigh,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, types.TaskStatusTodo, created.Status)
	assert.Equal(t, "u-alice", created.CreatedBy)

	got, err := c.GetTask(ctx, ws.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "write docs", got.Title)

	// the update goes through the cache-backed pipeline
	waitListed(t, c, ws.ID, created.ID)
	status := types.TaskStatusInProgress
	updated, err := c.UpdateTask(ctx, ws.ID, created.ID, &types.TaskPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusInProgress, updated.Status)
	assert.Equal(t, "write docs", updated.Title)

	require.NoError(t, c.DeleteTask(ctx, ws.ID, created.ID))
	_, err = c.GetTask(ctx, ws.ID, created.ID)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestCreateScopedToRouteWorkspace(t *testing.T) {
	srv := newTestServer(t)
	c := client.NewClient(srv.URL, "u-alice")
	ctx := context.Background()

	home, err := c.CreateWorkspace(ctx, "home")
	require.NoError(t, err)
	other, err := c.CreateWorkspace(ctx, "other")
	require.NoError(t, err)

	// a body claiming a foreign workspace must not cross the tenant boundary
	created, err := c.CreateTask(ctx, home.ID, &types.Task{
		Title:       "stay home",
		WorkspaceID: other.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, home.ID, created.WorkspaceID)
	waitListed(t, c, home.ID, created.ID)

	foreign, err := c.ListTasks(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, foreign)

	project, err := c.CreateProject(ctx, home.ID, &types.Project{
		Title:       "stay home too",
		WorkspaceID: other.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, home.ID, project.WorkspaceID)

	foreignProjects, err := c.ListProjects(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, foreignProjects)
}

func TestTaskValidationOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	c := client.NewClient(srv.URL, "u-alice")
	ctx := context.Background()

	ws, err := c.CreateWorkspace(ctx, "strict")
	require.NoError(t, err)

	_, err = c.CreateTask(ctx, ws.ID, &types.Task{
		Title:   "",
		Status:  "bogus",
		DueDate: "not-a-date",
	})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, "validation_failed", apiErr.Code)
	assert.Len(t, apiErr.Errors, 3, "every violation is reported")
}

func TestUnknownWorkspaceOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	c := client.NewClient(srv.URL, "u-alice")

	_, err := c.ListTasks(context.Background(), "no-such-workspace")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestInviteFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	owner := client.NewClient(srv.URL, "u-owner")
	ctx := context.Background()

	ws, err := owner.CreateWorkspace(ctx, "team")
	require.NoError(t, err)

	inv, err := owner.CreateInvite(ctx, ws.ID, "new@example.com", types.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, types.InviteStatusPending, inv.Status)

	views, err := owner.ListInvites(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "PENDING", views[0].EffectiveStatus)

	member, err := owner.AcceptInvite(ctx, ws.ID, inv.Token, "u-new", "new@example.com", "New Person")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, member.Role)
	assert.Equal(t, types.MemberStatusActive, member.Status)

	// a second accept conflicts
	_, err = owner.AcceptInvite(ctx, ws.ID, inv.Token, "u-other", "new@example.com", "")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)
	assert.Equal(t, "invite_consumed", apiErr.Code)

	// acceptance leaves a broadcast notification behind
	members, err := owner.ListMembers(ctx, ws.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	notifications, err := owner.ListNotifications(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, types.NotificationInviteAccepted, notifications[0].Type)
}

func TestInviteIdentityMismatchOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	c := client.NewClient(srv.URL, "u-owner")
	ctx := context.Background()

	ws, err := c.CreateWorkspace(ctx, "picky")
	require.NoError(t, err)
	inv, err := c.CreateInvite(ctx, ws.ID, "right@example.com", "")
	require.NoError(t, err)

	_, err = c.AcceptInvite(ctx, ws.ID, inv.Token, "u-x", "wrong@example.com", "")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)

	_, err = c.AcceptInvite(ctx, ws.ID, "bogus-token", "u-x", "right@example.com", "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestInviteRevokeOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	c := client.NewClient(srv.URL, "u-owner")
	ctx := context.Background()

	ws, err := c.CreateWorkspace(ctx, "revocable")
	require.NoError(t, err)
	inv, err := c.CreateInvite(ctx, ws.ID, "gone@example.com", "")
	require.NoError(t, err)

	require.NoError(t, c.RevokeInvite(ctx, ws.ID, inv.Token))

	_, err = c.AcceptInvite(ctx, ws.ID, inv.Token, "u-x", "gone@example.com", "")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)

	assert.Error(t, c.RevokeInvite(ctx, ws.ID, "bogus-token"))
}

func TestMemberManagementOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	c := client.NewClient(srv.URL, "u-owner")
	ctx := context.Background()

	ws, err := c.CreateWorkspace(ctx, "people")
	require.NoError(t, err)

	member, err := c.PutMember(ctx, &types.Member{
		UserID:      "u-bob",
		WorkspaceID: ws.ID,
		Email:       "bob@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, types.RoleMember, member.Role, "role defaults")
	assert.Equal(t, types.MemberStatusActive, member.Status)
	assert.False(t, member.JoinedAt.IsZero())

	members, err := c.ListMembers(ctx, ws.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	require.NoError(t, c.DeleteMember(ctx, ws.ID, "u-bob"))
	members, err = c.ListMembers(ctx, ws.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestNotificationInboxOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	alice := client.NewClient(srv.URL, "u-alice")
	bob := client.NewClient(srv.URL, "u-bob")
	ctx := context.Background()

	ws, err := alice.CreateWorkspace(ctx, "inbox")
	require.NoError(t, err)

	// assigning bob produces a notification addressed to him
	_, err = alice.PutMember(ctx, &types.Member{
		UserID: "u-bob", WorkspaceID: ws.ID, Email: "bob@example.com",
	})
	require.NoError(t, err)
	task, err := alice.CreateTask(ctx, ws.ID, &types.Task{
		Title:       "review the design",
		AssigneeIDs: []string{"u-bob"},
	})
	require.NoError(t, err)

	notifications, err := bob.ListNotifications(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, types.NotificationTaskCreated, notifications[0].Type)

	// a status-only update produces exactly one status_changed notification
	waitListed(t, alice, ws.ID, task.ID)
	status := types.TaskStatusInProgress
	_, err = alice.UpdateTask(ctx, ws.ID, task.ID, &types.TaskPatch{Status: &status})
	require.NoError(t, err)

	notifications, err = bob.ListNotifications(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	statusChanged := 0
	for _, n := range notifications {
		if n.Type == types.NotificationTaskStatusChanged {
			statusChanged++
		}
	}
	assert.Equal(t, 1, statusChanged)

	require.NoError(t, bob.MarkNotificationRead(ctx, ws.ID, notifications[0].ID))
	notifications, err = bob.ListNotifications(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Contains(t, notifications[0].ReadBy, "u-bob")

	require.NoError(t, bob.ClearNotifications(ctx, ws.ID))
	notifications, err = bob.ListNotifications(ctx, ws.ID)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestAssistantIntentsOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	c := client.NewClient(srv.URL, "u-alice")
	ctx := context.Background()

	ws, err := c.CreateWorkspace(ctx, "assisted")
	require.NoError(t, err)

	outcomes, err := c.RunIntents(ctx, ws.ID, []assistant.Intent{{
		Action: assistant.ActionCreateTask,
		Title:  "from the assistant",
	}})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Empty(t, outcomes[0].Error)
	assert.NotEmpty(t, outcomes[0].EntityID)

	// no collaborator configured: free-form prompts are unavailable
	_, err = c.Ask(ctx, ws.ID, "do something")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 502, apiErr.Status)
}

func TestEventsLongPollOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	c := client.NewClient(srv.URL, "u-alice")
	ctx := context.Background()

	ws, err := c.CreateWorkspace(ctx, "watched")
	require.NoError(t, err)

	type pollResult struct {
		events []*events.Event
		err    error
	}
	resultCh := make(chan pollResult, 1)
	go func() {
		evts, err := c.PollEvents(ctx, ws.ID, 10*time.Second)
		resultCh <- pollResult{evts, err}
	}()

	// give the poll a moment to connect, then trigger a change
	time.Sleep(100 * time.Millisecond)
	_, err = c.CreateTask(ctx, ws.ID, &types.Task{Title: "wake the poller"})
	require.NoError(t, err)

	select {
	case result := <-resultCh:
		require.NoError(t, result.err)
		require.NotEmpty(t, result.events)
		assert.Equal(t, ws.ID, result.events[0].WorkspaceID)
		assert.Equal(t, types.CollectionTasks, result.events[0].Collection)
	case <-time.After(5 * time.Second):
		t.Fatal("long poll did not return after the mutation")
	}
}

// waitListed blocks until the workspace runtime's task cache has the task
func waitListed(t *testing.T, c *client.Client, workspaceID, taskID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		tasks, err := c.ListTasks(context.Background(), workspaceID)
		if err != nil {
			return false
		}
		for _, task := range tasks {
			if task.ID == taskID {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}
