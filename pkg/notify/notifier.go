package notify

import (
	"fmt"

	"github.com/loftlab/huddle/pkg/log"
	"github.com/loftlab/huddle/pkg/storage"
	"github.com/loftlab/huddle/pkg/types"
	"github.com/rs/zerolog"
)

// MutationNotifier turns successful entity mutations into notifications:
// it classifies the change, resolves recipients and channel addresses from
// the workspace member list, and hands the result to the fanout. It
// satisfies the pipeline's Notifier interface.
//
// Every failure here is contained: a member-list read error or a dispatch
// problem is logged, and the mutation that triggered it never notices.
type MutationNotifier struct {
	fanout *Fanout
	store  storage.Store
	logger zerolog.Logger
}

// NewMutationNotifier creates a notifier over the fanout
func NewMutationNotifier(fanout *Fanout, store storage.Store) *MutationNotifier {
	return &MutationNotifier{
		fanout: fanout,
		store:  store,
		logger: log.WithComponent("notify"),
	}
}

func (n *MutationNotifier) members(workspaceID string) []*types.Member {
	members, err := n.store.ListMembers(workspaceID)
	if err != nil {
		n.logger.Warn().Err(err).Str("workspace_id", workspaceID).Msg("could not list members for recipient resolution")
		return nil
	}
	return members
}

// TaskCreated notifies the task's assignees (or the admins when unassigned)
func (n *MutationNotifier) TaskCreated(task *types.Task, actorID string) {
	members := n.members(task.WorkspaceID)
	notification := &types.Notification{
		Title:      "New task",
		Message:    fmt.Sprintf("%q was created", task.Title),
		Type:       types.NotificationTaskCreated,
		Recipients: ResolveInApp(task.AssigneeIDs, members),
	}
	addresses := ResolveChannelAddresses(task.AssigneeIDs, members, actorID)
	n.fanout.Dispatch(task.WorkspaceID, notification, addresses, fmt.Sprintf("New task: %q", task.Title))
}

// TaskUpdated classifies the change and produces at most one notification
func (n *MutationNotifier) TaskUpdated(before, after *types.Task, actorID string) {
	change, ok := ClassifyTaskUpdate(before, after)
	if !ok {
		return
	}
	members := n.members(after.WorkspaceID)
	notification := &types.Notification{
		Title:      change.Title,
		Message:    change.Message,
		Type:       change.Type,
		Recipients: ResolveInApp(after.AssigneeIDs, members),
	}
	addresses := ResolveChannelAddresses(after.AssigneeIDs, members, actorID)
	n.fanout.Dispatch(after.WorkspaceID, notification, addresses, change.Channel)
}

// TaskDeleted notifies the task's former assignees
func (n *MutationNotifier) TaskDeleted(task *types.Task, actorID string) {
	members := n.members(task.WorkspaceID)
	notification := &types.Notification{
		Title:      "Task deleted",
		Message:    fmt.Sprintf("%q was deleted", task.Title),
		Type:       types.NotificationTaskDeleted,
		Recipients: ResolveInApp(task.AssigneeIDs, members),
	}
	addresses := ResolveChannelAddresses(task.AssigneeIDs, members, actorID)
	n.fanout.Dispatch(task.WorkspaceID, notification, addresses, fmt.Sprintf("Task %q was deleted", task.Title))
}

// ProjectCreated notifies the project lead (or the admins when unset)
func (n *MutationNotifier) ProjectCreated(project *types.Project, actorID string) {
	members := n.members(project.WorkspaceID)
	notification := &types.Notification{
		Title:      "New project",
		Message:    fmt.Sprintf("%q was created", project.Title),
		Type:       types.NotificationProjectCreated,
		Recipients: ResolveInApp(projectAssignees(project), members),
	}
	addresses := ResolveChannelAddresses(projectAssignees(project), members, actorID)
	n.fanout.Dispatch(project.WorkspaceID, notification, addresses, fmt.Sprintf("New project: %q", project.Title))
}

// ProjectUpdated classifies the change and produces at most one notification
func (n *MutationNotifier) ProjectUpdated(before, after *types.Project, actorID string) {
	change, ok := ClassifyProjectUpdate(before, after)
	if !ok {
		return
	}
	members := n.members(after.WorkspaceID)
	notification := &types.Notification{
		Title:      change.Title,
		Message:    change.Message,
		Type:       change.Type,
		Recipients: ResolveInApp(projectAssignees(after), members),
	}
	addresses := ResolveChannelAddresses(projectAssignees(after), members, actorID)
	n.fanout.Dispatch(after.WorkspaceID, notification, addresses, change.Channel)
}

// ProjectDeleted notifies the project's former lead
func (n *MutationNotifier) ProjectDeleted(project *types.Project, actorID string) {
	members := n.members(project.WorkspaceID)
	notification := &types.Notification{
		Title:      "Project deleted",
		Message:    fmt.Sprintf("%q was deleted", project.Title),
		Type:       types.NotificationProjectDeleted,
		Recipients: ResolveInApp(projectAssignees(project), members),
	}
	addresses := ResolveChannelAddresses(projectAssignees(project), members, actorID)
	n.fanout.Dispatch(project.WorkspaceID, notification, addresses, fmt.Sprintf("Project %q was deleted", project.Title))
}

func projectAssignees(p *types.Project) []string {
	if p.AssigneeID == "" {
		return nil
	}
	return []string{p.AssigneeID}
}
