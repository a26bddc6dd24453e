package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestTaskPatchApplyTo(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	original := &Task{
		ID:          "t1",
		WorkspaceID: "ws-1",
		Title:       "original",
		Description: "untouched",
		Status:      TaskStatusTodo,
		AssigneeIDs: []string{"u1"},
		DueDate:     "2026-04-10",
	}

	status := TaskStatusInProgress
	merged := (&TaskPatch{
		Title:  strptr("patched"),
		Status: &status,
	}).ApplyTo(original, now)

	// present fields overlay, absent fields survive
	assert.Equal(t, "patched", merged.Title)
	assert.Equal(t, TaskStatusInProgress, merged.Status)
	assert.Equal(t, "untouched", merged.Description)
	assert.Equal(t, []string{"u1"}, merged.AssigneeIDs)
	assert.Equal(t, now, merged.UpdatedAt)

	// the input task is never modified
	assert.Equal(t, "original", original.Title)
	assert.Equal(t, TaskStatusTodo, original.Status)
}

func TestTaskPatchClearAssignees(t *testing.T) {
	now := time.Now()
	original := &Task{ID: "t1", Title: "x", AssigneeIDs: []string{"u1", "u2"}}

	// a present-but-empty slice clears; a nil pointer leaves alone
	empty := []string{}
	cleared := (&TaskPatch{AssigneeIDs: &empty}).ApplyTo(original, now)
	assert.Empty(t, cleared.AssigneeIDs)
	assert.NotNil(t, cleared.AssigneeIDs)

	untouched := (&TaskPatch{Title: strptr("y")}).ApplyTo(original, now)
	assert.Equal(t, []string{"u1", "u2"}, untouched.AssigneeIDs)
}

func TestTaskPatchApplyToCopiesAssignees(t *testing.T) {
	original := &Task{ID: "t1", Title: "x"}
	assignees := []string{"u1"}
	merged := (&TaskPatch{AssigneeIDs: &assignees}).ApplyTo(original, time.Now())

	assignees[0] = "mutated"
	assert.Equal(t, []string{"u1"}, merged.AssigneeIDs)
}

func TestTaskPatchFields(t *testing.T) {
	status := TaskStatusDone
	assignees := []string{"u1"}
	patch := &TaskPatch{
		Title:       strptr("t"),
		Status:      &status,
		AssigneeIDs: &assignees,
	}

	fields := patch.Fields()
	assert.Equal(t, map[string]any{
		"title":       "t",
		"status":      TaskStatusDone,
		"assigneeIds": []string{"u1"},
	}, fields)

	// absent fields never appear, even as zero values
	_, present := fields["description"]
	assert.False(t, present)
}

func TestTaskPatchEmpty(t *testing.T) {
	assert.True(t, (*TaskPatch)(nil).Empty())
	assert.True(t, (&TaskPatch{}).Empty())
	assert.False(t, (&TaskPatch{Title: strptr("")}).Empty(), "present empty string is a change")
}

func TestProjectPatchApplyTo(t *testing.T) {
	now := time.Now()
	original := &Project{ID: "p1", Title: "roadmap", Status: ProjectStatusPlanning}

	status := ProjectStatusActive
	merged := (&ProjectPatch{Status: &status, AssigneeID: strptr("u1")}).ApplyTo(original, now)

	assert.Equal(t, ProjectStatusActive, merged.Status)
	assert.Equal(t, "u1", merged.AssigneeID)
	assert.Equal(t, "roadmap", merged.Title)
	assert.Equal(t, ProjectStatusPlanning, original.Status)
}

func TestTaskClone(t *testing.T) {
	task := &Task{ID: "t1", AssigneeIDs: []string{"u1"}}
	clone := task.Clone()

	clone.AssigneeIDs[0] = "mutated"
	assert.Equal(t, []string{"u1"}, task.AssigneeIDs, "assignee slice is deep-copied")

	var nilTask *Task
	assert.Nil(t, nilTask.Clone())
}

func TestNotificationVisibility(t *testing.T) {
	broadcast := &Notification{ID: "n1", Recipients: nil}
	assert.True(t, broadcast.VisibleTo("anyone"))

	targeted := &Notification{ID: "n2", Recipients: []string{"u1"}}
	assert.True(t, targeted.VisibleTo("u1"))
	assert.False(t, targeted.VisibleTo("u2"))

	// empty but non-nil recipients means visible to no one
	hidden := &Notification{ID: "n3", Recipients: []string{}}
	assert.False(t, hidden.VisibleTo("u1"))
}

func TestNotificationIsReadBy(t *testing.T) {
	n := &Notification{ID: "n1", ReadBy: []string{"u1"}}
	assert.True(t, n.IsReadBy("u1"))
	assert.False(t, n.IsReadBy("u2"))

	unread := &Notification{ID: "n2"}
	require.False(t, unread.IsReadBy("u1"))
}

func TestInviteExpired(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	fresh := &Invite{ExpiresAt: now.Add(time.Minute)}
	stale := &Invite{ExpiresAt: now.Add(-time.Minute)}

	assert.False(t, fresh.Expired(now))
	assert.True(t, stale.Expired(now))
	assert.False(t, (&Invite{ExpiresAt: now}).Expired(now), "boundary is not expired")
}
