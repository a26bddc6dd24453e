package notify

import (
	"testing"

	"github.com/loftlab/huddle/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseTask() *types.Task {
	return &types.Task{
		ID:          "t1",
		WorkspaceID: "ws-1",
		Title:       "ship it",
		Description: "release checklist",
		Status:      types.TaskStatusTodo,
		Priority:    types.PriorityMedium,
		AssigneeIDs: []string{"u1"},
		DueDate:     "2026-04-01",
	}
}

func TestClassifyTaskUpdate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*types.Task)
		wantType types.NotificationType
	}{
		{
			name:     "assignee change",
			mutate:   func(task *types.Task) { task.AssigneeIDs = []string{"u2"} },
			wantType: types.NotificationTaskAssigned,
		},
		{
			name:     "status change",
			mutate:   func(task *types.Task) { task.Status = types.TaskStatusDone },
			wantType: types.NotificationTaskStatusChanged,
		},
		{
			name:     "due date change",
			mutate:   func(task *types.Task) { task.DueDate = "2026-05-01" },
			wantType: types.NotificationTaskDueDateChanged,
		},
		{
			name:     "priority change",
			mutate:   func(task *types.Task) { task.Priority = types.PriorityUrgent },
			wantType: types.NotificationTaskPriorityChanged,
		},
		{
			name:     "title change",
			mutate:   func(task *types.Task) { task.Title = "ship it now" },
			wantType: types.NotificationTaskEdited,
		},
		{
			name:     "description change",
			mutate:   func(task *types.Task) { task.Description = "revised" },
			wantType: types.NotificationTaskEdited,
		},
		{
			name:     "project move",
			mutate:   func(task *types.Task) { task.ProjectID = "p2" },
			wantType: types.NotificationTaskUpdated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := baseTask()
			after := baseTask()
			tt.mutate(after)

			change, ok := ClassifyTaskUpdate(before, after)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, change.Type)
			assert.NotEmpty(t, change.Title)
			assert.NotEmpty(t, change.Message)
			assert.NotEmpty(t, change.Channel)
		})
	}
}

func TestClassifyTaskUpdatePriorityOrder(t *testing.T) {
	// when several fields change at once, the highest-priority rule wins
	before := baseTask()
	after := baseTask()
	after.AssigneeIDs = []string{"u2"}
	after.Status = types.TaskStatusDone
	after.Priority = types.PriorityUrgent
	after.Title = "everything changed"

	change, ok := ClassifyTaskUpdate(before, after)
	require.True(t, ok)
	assert.Equal(t, types.NotificationTaskAssigned, change.Type)

	// without the assignee change, status wins next
	after.AssigneeIDs = before.AssigneeIDs
	change, ok = ClassifyTaskUpdate(before, after)
	require.True(t, ok)
	assert.Equal(t, types.NotificationTaskStatusChanged, change.Type)
}

func TestClassifyTaskUpdateAssigneeOrderIrrelevant(t *testing.T) {
	before := baseTask()
	before.AssigneeIDs = []string{"u1", "u2"}
	after := baseTask()
	after.AssigneeIDs = []string{"u2", "u1"}

	_, ok := ClassifyTaskUpdate(before, after)
	assert.False(t, ok, "reordered assignee set is not a change")
}

func TestClassifyTaskUpdateNoChange(t *testing.T) {
	before := baseTask()
	after := baseTask()

	_, ok := ClassifyTaskUpdate(before, after)
	assert.False(t, ok)
}

func TestClassifyTaskUpdateDueDateCleared(t *testing.T) {
	before := baseTask()
	after := baseTask()
	after.DueDate = ""

	change, ok := ClassifyTaskUpdate(before, after)
	require.True(t, ok)
	assert.Equal(t, types.NotificationTaskDueDateChanged, change.Type)
	assert.Contains(t, change.Message, "no longer has a due date")
}

func TestClassifyProjectUpdate(t *testing.T) {
	before := &types.Project{Title: "roadmap", Status: types.ProjectStatusPlanning}
	after := &types.Project{Title: "roadmap", Status: types.ProjectStatusActive}

	change, ok := ClassifyProjectUpdate(before, after)
	require.True(t, ok)
	assert.Equal(t, types.NotificationProjectUpdated, change.Type)
	assert.Equal(t, "Project status changed", change.Title)

	// lead change outranks status change
	after.AssigneeID = "u9"
	change, ok = ClassifyProjectUpdate(before, after)
	require.True(t, ok)
	assert.Equal(t, "Project lead changed", change.Title)
}
