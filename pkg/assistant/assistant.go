package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/loftlab/huddle/pkg/log"
	"github.com/loftlab/huddle/pkg/pipeline"
	"github.com/loftlab/huddle/pkg/sync"
	"github.com/loftlab/huddle/pkg/types"
	"github.com/rs/zerolog"
)

// Action enumerates the operations the assistant can carry out
type Action string

const (
	ActionCreateTask    Action = "create_task"
	ActionUpdateTask    Action = "update_task"
	ActionAssignTask    Action = "assign_task"
	ActionCompleteTask  Action = "complete_task"
	ActionDeleteTask    Action = "delete_task"
	ActionCreateProject Action = "create_project"
)

// Intent is one structured operation extracted from a natural-language
// request. References (TaskRef, ProjectRef, Assignees) may be entity IDs or
// human names; the executor resolves them against the active workspace.
type Intent struct {
	Action      Action   `json:"action"`
	TaskRef     string   `json:"taskRef,omitempty"`
	ProjectRef  string   `json:"projectRef,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
	Assignees   []string `json:"assignees,omitempty"`
}

// Outcome reports how one intent fared. Intents fail independently: an
// error here never aborts the rest of the batch.
type Outcome struct {
	Intent   Intent `json:"intent"`
	EntityID string `json:"entityId,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Collaborator turns a free-form request into structured intents. The
// implementation is external (typically a hosted language model); the
// assistant only executes what comes back.
type Collaborator interface {
	Interpret(ctx context.Context, prompt string, ws Workspace) ([]Intent, error)
}

// Workspace is the context snapshot handed to the collaborator so it can
// ground its answer in real entity names.
type Workspace struct {
	Tasks    []*types.Task    `json:"tasks"`
	Projects []*types.Project `json:"projects"`
	Members  []*types.Member  `json:"members"`
}

// Assistant executes structured intents through the mutation pipeline,
// resolving human references to entity IDs along the way.
type Assistant struct {
	pipeline     *pipeline.Pipeline
	session      *sync.Session
	collaborator Collaborator
	logger       zerolog.Logger
}

// New creates an assistant. collaborator may be nil if only Execute is used.
func New(p *pipeline.Pipeline, session *sync.Session, collaborator Collaborator) *Assistant {
	return &Assistant{
		pipeline:     p,
		session:      session,
		collaborator: collaborator,
		logger:       log.WithComponent("assistant"),
	}
}

// Handle interprets a free-form request and executes the resulting intents.
func (a *Assistant) Handle(ctx context.Context, prompt, actorID string) ([]Outcome, error) {
	if a.collaborator == nil {
		return nil, fmt.Errorf("no collaborator configured")
	}
	ws := Workspace{
		Tasks:    a.session.Tasks.Cache().Snapshot(),
		Projects: a.session.Projects.Cache().Snapshot(),
		Members:  a.session.Members.Cache().Snapshot(),
	}
	intents, err := a.collaborator.Interpret(ctx, prompt, ws)
	if err != nil {
		return nil, fmt.Errorf("interpret request: %w", err)
	}
	return a.Execute(intents, actorID), nil
}

// Execute runs each intent in order and reports a per-intent outcome.
func (a *Assistant) Execute(intents []Intent, actorID string) []Outcome {
	outcomes := make([]Outcome, 0, len(intents))
	for _, intent := range intents {
		outcome := a.execute(intent, actorID)
		if outcome.Error != "" {
			a.logger.Warn().
				Str("action", string(intent.Action)).
				Str("error", outcome.Error).
				Msg("intent failed")
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (a *Assistant) execute(intent Intent, actorID string) Outcome {
	outcome := Outcome{Intent: intent}
	var err error
	switch intent.Action {
	case ActionCreateTask:
		err = a.createTask(intent, actorID, &outcome)
	case ActionUpdateTask:
		err = a.updateTask(intent, actorID, &outcome)
	case ActionAssignTask:
		err = a.assignTask(intent, actorID, &outcome)
	case ActionCompleteTask:
		err = a.completeTask(intent, actorID, &outcome)
	case ActionDeleteTask:
		err = a.deleteTask(intent, actorID, &outcome)
	case ActionCreateProject:
		err = a.createProject(intent, actorID, &outcome)
	default:
		err = fmt.Errorf("unknown action %q", intent.Action)
	}
	if err != nil {
		outcome.Error = err.Error()
	}
	return outcome
}

func (a *Assistant) createTask(intent Intent, actorID string, outcome *Outcome) error {
	task := &types.Task{
		Title:       intent.Title,
		Description: intent.Description,
		Status:      types.TaskStatus(intent.Status),
		Priority:    types.Priority(intent.Priority),
		DueDate:     intent.DueDate,
	}
	if intent.ProjectRef != "" {
		project, err := a.resolveProject(intent.ProjectRef)
		if err != nil {
			return err
		}
		task.ProjectID = project.ID
	}
	if len(intent.Assignees) > 0 {
		ids, err := a.resolveMembers(intent.Assignees)
		if err != nil {
			return err
		}
		task.AssigneeIDs = ids
	}
	created, err := a.pipeline.CreateTask(task, actorID)
	if err != nil {
		return err
	}
	outcome.EntityID = created.ID
	outcome.Summary = fmt.Sprintf("created task %q", created.Title)
	return nil
}

func (a *Assistant) updateTask(intent Intent, actorID string, outcome *Outcome) error {
	task, err := a.resolveTask(intent.TaskRef)
	if err != nil {
		return err
	}
	patch := &types.TaskPatch{}
	if intent.Title != "" {
		patch.Title = &intent.Title
	}
	if intent.Description != "" {
		patch.Description = &intent.Description
	}
	if intent.Status != "" {
		status := types.TaskStatus(intent.Status)
		patch.Status = &status
	}
	if intent.Priority != "" {
		priority := types.Priority(intent.Priority)
		patch.Priority = &priority
	}
	if intent.DueDate != "" {
		patch.DueDate = &intent.DueDate
	}
	if len(intent.Assignees) > 0 {
		ids, err := a.resolveMembers(intent.Assignees)
		if err != nil {
			return err
		}
		patch.AssigneeIDs = &ids
	}
	if patch.Empty() {
		return fmt.Errorf("no changes requested for task %q", task.Title)
	}
	updated, err := a.pipeline.UpdateTask(task.ID, patch, actorID)
	if err != nil {
		return err
	}
	outcome.EntityID = updated.ID
	outcome.Summary = fmt.Sprintf("updated task %q", updated.Title)
	return nil
}

func (a *Assistant) assignTask(intent Intent, actorID string, outcome *Outcome) error {
	task, err := a.resolveTask(intent.TaskRef)
	if err != nil {
		return err
	}
	if len(intent.Assignees) == 0 {
		return fmt.Errorf("no assignees given for task %q", task.Title)
	}
	ids, err := a.resolveMembers(intent.Assignees)
	if err != nil {
		return err
	}
	patch := &types.TaskPatch{AssigneeIDs: &ids}
	updated, err := a.pipeline.UpdateTask(task.ID, patch, actorID)
	if err != nil {
		return err
	}
	outcome.EntityID = updated.ID
	outcome.Summary = fmt.Sprintf("assigned task %q to %d member(s)", updated.Title, len(ids))
	return nil
}

func (a *Assistant) completeTask(intent Intent, actorID string, outcome *Outcome) error {
	task, err := a.resolveTask(intent.TaskRef)
	if err != nil {
		return err
	}
	status := types.TaskStatusDone
	updated, err := a.pipeline.UpdateTask(task.ID, &types.TaskPatch{Status: &status}, actorID)
	if err != nil {
		return err
	}
	outcome.EntityID = updated.ID
	outcome.Summary = fmt.Sprintf("completed task %q", updated.Title)
	return nil
}

func (a *Assistant) deleteTask(intent Intent, actorID string, outcome *Outcome) error {
	task, err := a.resolveTask(intent.TaskRef)
	if err != nil {
		return err
	}
	if err := a.pipeline.DeleteTask(task.ID, actorID); err != nil {
		return err
	}
	outcome.EntityID = task.ID
	outcome.Summary = fmt.Sprintf("deleted task %q", task.Title)
	return nil
}

func (a *Assistant) createProject(intent Intent, actorID string, outcome *Outcome) error {
	project := &types.Project{
		Title:       intent.Title,
		Description: intent.Description,
		Status:      types.ProjectStatus(intent.Status),
		DueDate:     intent.DueDate,
	}
	if len(intent.Assignees) > 0 {
		ids, err := a.resolveMembers(intent.Assignees)
		if err != nil {
			return err
		}
		project.AssigneeID = ids[0]
	}
	created, err := a.pipeline.CreateProject(project, actorID)
	if err != nil {
		return err
	}
	outcome.EntityID = created.ID
	outcome.Summary = fmt.Sprintf("created project %q", created.Title)
	return nil
}

// resolveTask matches ref against task IDs first, then titles
// (case-insensitive). An ambiguous title match is an error rather than a
// guess.
func (a *Assistant) resolveTask(ref string) (*types.Task, error) {
	if ref == "" {
		return nil, fmt.Errorf("task reference is required")
	}
	if task, ok := a.session.Tasks.Cache().Get(ref); ok {
		return task, nil
	}
	var matches []*types.Task
	for _, task := range a.session.Tasks.Cache().Snapshot() {
		if strings.EqualFold(task.Title, ref) {
			matches = append(matches, task)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%d tasks match %q, be more specific", len(matches), ref)
	}
}

func (a *Assistant) resolveProject(ref string) (*types.Project, error) {
	if project, ok := a.session.Projects.Cache().Get(ref); ok {
		return project, nil
	}
	var matches []*types.Project
	for _, project := range a.session.Projects.Cache().Snapshot() {
		if strings.EqualFold(project.Title, ref) {
			matches = append(matches, project)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no project matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%d projects match %q, be more specific", len(matches), ref)
	}
}

// resolveMembers maps each reference (user ID, email, or display name) to a
// member user ID. Every reference must resolve.
func (a *Assistant) resolveMembers(refs []string) ([]string, error) {
	members := a.session.Members.Cache().Snapshot()
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		member, err := resolveMember(ref, members)
		if err != nil {
			return nil, err
		}
		ids = append(ids, member.UserID)
	}
	return ids, nil
}

func resolveMember(ref string, members []*types.Member) (*types.Member, error) {
	for _, m := range members {
		if m.UserID == ref {
			return m, nil
		}
	}
	var matches []*types.Member
	for _, m := range members {
		if strings.EqualFold(m.Email, ref) || strings.EqualFold(m.Name, ref) {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no member matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%d members match %q, be more specific", len(matches), ref)
	}
}
