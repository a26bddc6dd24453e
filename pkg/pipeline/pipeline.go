package pipeline

import (
	"time"

	"github.com/loftlab/huddle/pkg/log"
	"github.com/loftlab/huddle/pkg/metrics"
	"github.com/loftlab/huddle/pkg/storage"
	"github.com/loftlab/huddle/pkg/sync"
	"github.com/loftlab/huddle/pkg/types"
	"github.com/loftlab/huddle/pkg/validate"
	"github.com/rs/zerolog"
)

// Notifier receives successful mutations so recipients can be resolved and
// notifications fanned out. Implementations must contain their own failures;
// the pipeline never inspects a notifier result and a notification problem
// never fails a mutation.
type Notifier interface {
	TaskCreated(task *types.Task, actorID string)
	TaskUpdated(before, after *types.Task, actorID string)
	TaskDeleted(task *types.Task, actorID string)
	ProjectCreated(project *types.Project, actorID string)
	ProjectUpdated(before, after *types.Project, actorID string)
	ProjectDeleted(project *types.Project, actorID string)
}

// NopNotifier discards all mutation notifications
type NopNotifier struct{}

func (NopNotifier) TaskCreated(*types.Task, string)                       {}
func (NopNotifier) TaskUpdated(*types.Task, *types.Task, string)          {}
func (NopNotifier) TaskDeleted(*types.Task, string)                       {}
func (NopNotifier) ProjectCreated(*types.Project, string)                 {}
func (NopNotifier) ProjectUpdated(*types.Project, *types.Project, string) {}
func (NopNotifier) ProjectDeleted(*types.Project, string)                 {}

// Pipeline applies task and project mutations. Updates are optimistic:
// the local cache is patched before the store write and restored to the
// pre-mutation snapshot if the write fails. Creates and deletes touch the
// cache only through the authoritative snapshot that follows the write.
type Pipeline struct {
	store    storage.Store
	session  *sync.Session
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPipeline creates a pipeline over the session's caches. notifier may be
// nil when no notifications are wanted.
func NewPipeline(store storage.Store, session *sync.Session, notifier Notifier) *Pipeline {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Pipeline{
		store:    store,
		session:  session,
		notifier: notifier,
		logger:   log.WithComponent("pipeline"),
		now:      time.Now,
	}
}

// Task operations

// CreateTask validates and persists a new task. Creation is not optimistic:
// there is no local id before the store assigns one, so nothing is written
// to the cache and there is nothing to roll back on failure. The returned
// task carries the server-assigned id and timestamps.
func (p *Pipeline) CreateTask(task *types.Task, actorID string) (*types.Task, error) {
	created := task.Clone()
	if created.WorkspaceID == "" {
		created.WorkspaceID = p.session.WorkspaceID()
	}
	if created.Status == "" {
		created.Status = types.TaskStatusTodo
	}
	if created.CreatedBy == "" {
		created.CreatedBy = actorID
	}

	if res := validate.Task(created); !res.Valid {
		metrics.MutationsTotal.WithLabelValues("task", "create", "invalid").Inc()
		return nil, &ValidationError{Errors: res.Errors}
	}

	if err := p.store.CreateTask(created); err != nil {
		metrics.MutationsTotal.WithLabelValues("task", "create", "error").Inc()
		return nil, &PersistenceError{Op: "create task", Err: err}
	}

	metrics.MutationsTotal.WithLabelValues("task", "create", "ok").Inc()
	p.logger.Info().Str("task_id", created.ID).Str("workspace_id", created.WorkspaceID).Msg("task created")
	p.notifier.TaskCreated(created, actorID)
	return created, nil
}

// UpdateTask applies a patch to a cached task. The merged view is validated,
// the patch is applied to the cache immediately, and the store write follows.
// On a failed write the cache entry is restored to the exact pre-mutation
// snapshot before the error is returned.
func (p *Pipeline) UpdateTask(id string, patch *types.TaskPatch, actorID string) (*types.Task, error) {
	cache := p.session.Tasks.Cache()

	// Snapshot first: rollback restores this exact value
	snapshot, ok := cache.Get(id)
	if !ok {
		metrics.MutationsTotal.WithLabelValues("task", "update", "not_found").Inc()
		return nil, &NotFoundError{Kind: "task", ID: id}
	}

	merged := patch.ApplyTo(snapshot, p.now().UTC())
	if res := validate.Task(merged); !res.Valid {
		metrics.MutationsTotal.WithLabelValues("task", "update", "invalid").Inc()
		return nil, &ValidationError{Errors: res.Errors}
	}

	// Optimistic: local view first, store second
	cache.Put(merged)

	updated, err := p.store.UpdateTask(snapshot.WorkspaceID, id, patch.Fields())
	if err != nil {
		cache.Put(snapshot)
		metrics.RollbacksTotal.WithLabelValues("task").Inc()
		metrics.MutationsTotal.WithLabelValues("task", "update", "error").Inc()
		p.logger.Warn().Err(err).Str("task_id", id).Msg("task update rolled back")
		return nil, &PersistenceError{Op: "update task", Err: err}
	}

	metrics.MutationsTotal.WithLabelValues("task", "update", "ok").Inc()
	p.notifier.TaskUpdated(snapshot, updated, actorID)
	return updated, nil
}

// DeleteTask removes a task. Deletion is irreversible, so it is not applied
// to the cache optimistically; the authoritative snapshot that follows the
// store delete removes the entry.
func (p *Pipeline) DeleteTask(id string, actorID string) error {
	cache := p.session.Tasks.Cache()

	task, ok := cache.Get(id)
	if !ok {
		metrics.MutationsTotal.WithLabelValues("task", "delete", "not_found").Inc()
		return &NotFoundError{Kind: "task", ID: id}
	}

	if err := p.store.DeleteTask(task.WorkspaceID, id); err != nil {
		metrics.MutationsTotal.WithLabelValues("task", "delete", "error").Inc()
		return &PersistenceError{Op: "delete task", Err: err}
	}

	metrics.MutationsTotal.WithLabelValues("task", "delete", "ok").Inc()
	p.logger.Info().Str("task_id", id).Msg("task deleted")
	p.notifier.TaskDeleted(task, actorID)
	return nil
}

// Project operations

// CreateProject validates and persists a new project. Same non-optimistic
// semantics as CreateTask.
func (p *Pipeline) CreateProject(project *types.Project, actorID string) (*types.Project, error) {
	created := project.Clone()
	if created.WorkspaceID == "" {
		created.WorkspaceID = p.session.WorkspaceID()
	}
	if created.Status == "" {
		created.Status = types.ProjectStatusPlanning
	}
	if created.CreatedBy == "" {
		created.CreatedBy = actorID
	}

	if res := validate.Project(created); !res.Valid {
		metrics.MutationsTotal.WithLabelValues("project", "create", "invalid").Inc()
		return nil, &ValidationError{Errors: res.Errors}
	}

	if err := p.store.CreateProject(created); err != nil {
		metrics.MutationsTotal.WithLabelValues("project", "create", "error").Inc()
		return nil, &PersistenceError{Op: "create project", Err: err}
	}

	metrics.MutationsTotal.WithLabelValues("project", "create", "ok").Inc()
	p.logger.Info().Str("project_id", created.ID).Str("workspace_id", created.WorkspaceID).Msg("project created")
	p.notifier.ProjectCreated(created, actorID)
	return created, nil
}

// UpdateProject applies a patch to a cached project with the same
// optimistic-then-rollback semantics as UpdateTask.
func (p *Pipeline) UpdateProject(id string, patch *types.ProjectPatch, actorID string) (*types.Project, error) {
	cache := p.session.Projects.Cache()

	snapshot, ok := cache.Get(id)
	if !ok {
		metrics.MutationsTotal.WithLabelValues("project", "update", "not_found").Inc()
		return nil, &NotFoundError{Kind: "project", ID: id}
	}

	merged := patch.ApplyTo(snapshot, p.now().UTC())
	if res := validate.Project(merged); !res.Valid {
		metrics.MutationsTotal.WithLabelValues("project", "update", "invalid").Inc()
		return nil, &ValidationError{Errors: res.Errors}
	}

	cache.Put(merged)

	updated, err := p.store.UpdateProject(snapshot.WorkspaceID, id, patch.Fields())
	if err != nil {
		cache.Put(snapshot)
		metrics.RollbacksTotal.WithLabelValues("project").Inc()
		metrics.MutationsTotal.WithLabelValues("project", "update", "error").Inc()
		p.logger.Warn().Err(err).Str("project_id", id).Msg("project update rolled back")
		return nil, &PersistenceError{Op: "update project", Err: err}
	}

	metrics.MutationsTotal.WithLabelValues("project", "update", "ok").Inc()
	p.notifier.ProjectUpdated(snapshot, updated, actorID)
	return updated, nil
}

// DeleteProject removes a project without touching the cache first
func (p *Pipeline) DeleteProject(id string, actorID string) error {
	cache := p.session.Projects.Cache()

	project, ok := cache.Get(id)
	if !ok {
		metrics.MutationsTotal.WithLabelValues("project", "delete", "not_found").Inc()
		return &NotFoundError{Kind: "project", ID: id}
	}

	if err := p.store.DeleteProject(project.WorkspaceID, id); err != nil {
		metrics.MutationsTotal.WithLabelValues("project", "delete", "error").Inc()
		return &PersistenceError{Op: "delete project", Err: err}
	}

	metrics.MutationsTotal.WithLabelValues("project", "delete", "ok").Inc()
	p.logger.Info().Str("project_id", id).Msg("project deleted")
	p.notifier.ProjectDeleted(project, actorID)
	return nil
}
