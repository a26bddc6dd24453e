package notify

import (
	"fmt"

	"github.com/loftlab/huddle/pkg/types"
)

// Change is one classified update: the notification type plus the rendered
// in-app title/message and the external channel message.
type Change struct {
	Type    types.NotificationType
	Title   string
	Message string
	Channel string
}

// ClassifyTaskUpdate maps a before/after task pair to at most one change.
// Several fields may change in one update; the first matching rule wins so
// the user gets one coherent message instead of one per field. Rules are
// checked in fixed priority order: assignees, status, due date, priority,
// title/description, anything else. An update that only refreshed the
// housekeeping timestamp classifies to nothing.
func ClassifyTaskUpdate(before, after *types.Task) (Change, bool) {
	switch {
	case !sameStringSet(before.AssigneeIDs, after.AssigneeIDs):
		return Change{
			Type:    types.NotificationTaskAssigned,
			Title:   "Task reassigned",
			Message: fmt.Sprintf("%q is now assigned to %d member(s)", after.Title, len(after.AssigneeIDs)),
			Channel: fmt.Sprintf("Task %q was reassigned", after.Title),
		}, true
	case before.Status != after.Status:
		return Change{
			Type:    types.NotificationTaskStatusChanged,
			Title:   "Task status changed",
			Message: fmt.Sprintf("%q moved from %s to %s", after.Title, before.Status, after.Status),
			Channel: fmt.Sprintf("Task %q moved to %s", after.Title, after.Status),
		}, true
	case before.DueDate != after.DueDate:
		return Change{
			Type:    types.NotificationTaskDueDateChanged,
			Title:   "Task due date changed",
			Message: dueDateMessage(after.Title, after.DueDate),
			Channel: dueDateMessage(after.Title, after.DueDate),
		}, true
	case before.Priority != after.Priority:
		return Change{
			Type:    types.NotificationTaskPriorityChanged,
			Title:   "Task priority changed",
			Message: fmt.Sprintf("%q is now %s priority", after.Title, after.Priority),
			Channel: fmt.Sprintf("Task %q is now %s priority", after.Title, after.Priority),
		}, true
	case before.Title != after.Title || before.Description != after.Description:
		return Change{
			Type:    types.NotificationTaskEdited,
			Title:   "Task edited",
			Message: fmt.Sprintf("%q was edited", after.Title),
			Channel: fmt.Sprintf("Task %q was edited", after.Title),
		}, true
	case before.ProjectID != after.ProjectID || before.StartDate != after.StartDate:
		return Change{
			Type:    types.NotificationTaskUpdated,
			Title:   "Task updated",
			Message: fmt.Sprintf("%q was updated", after.Title),
			Channel: fmt.Sprintf("Task %q was updated", after.Title),
		}, true
	}
	return Change{}, false
}

// ClassifyProjectUpdate mirrors ClassifyTaskUpdate for projects, with the
// single-assignee lead in place of the assignee set.
func ClassifyProjectUpdate(before, after *types.Project) (Change, bool) {
	switch {
	case before.AssigneeID != after.AssigneeID:
		return Change{
			Type:    types.NotificationProjectUpdated,
			Title:   "Project lead changed",
			Message: fmt.Sprintf("%q has a new project lead", after.Title),
			Channel: fmt.Sprintf("Project %q has a new lead", after.Title),
		}, true
	case before.Status != after.Status:
		return Change{
			Type:    types.NotificationProjectUpdated,
			Title:   "Project status changed",
			Message: fmt.Sprintf("%q moved from %s to %s", after.Title, before.Status, after.Status),
			Channel: fmt.Sprintf("Project %q moved to %s", after.Title, after.Status),
		}, true
	case before.DueDate != after.DueDate:
		return Change{
			Type:    types.NotificationProjectUpdated,
			Title:   "Project due date changed",
			Message: dueDateMessage(after.Title, after.DueDate),
			Channel: dueDateMessage(after.Title, after.DueDate),
		}, true
	case before.Priority != after.Priority:
		return Change{
			Type:    types.NotificationProjectUpdated,
			Title:   "Project priority changed",
			Message: fmt.Sprintf("%q is now %s priority", after.Title, after.Priority),
			Channel: fmt.Sprintf("Project %q is now %s priority", after.Title, after.Priority),
		}, true
	case before.Title != after.Title || before.Description != after.Description:
		return Change{
			Type:    types.NotificationProjectUpdated,
			Title:   "Project edited",
			Message: fmt.Sprintf("%q was edited", after.Title),
			Channel: fmt.Sprintf("Project %q was edited", after.Title),
		}, true
	case before.StartDate != after.StartDate:
		return Change{
			Type:    types.NotificationProjectUpdated,
			Title:   "Project updated",
			Message: fmt.Sprintf("%q was updated", after.Title),
			Channel: fmt.Sprintf("Project %q was updated", after.Title),
		}, true
	}
	return Change{}, false
}

func dueDateMessage(title, dueDate string) string {
	if dueDate == "" {
		return fmt.Sprintf("%q no longer has a due date", title)
	}
	return fmt.Sprintf("%q is now due %s", title, dueDate)
}

// sameStringSet compares two slices as sets
func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, s := range a {
		set[s]++
	}
	for _, s := range b {
		set[s]--
		if set[s] < 0 {
			return false
		}
	}
	return true
}
