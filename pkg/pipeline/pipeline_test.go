package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/loftlab/huddle/pkg/events"
	"github.com/loftlab/huddle/pkg/storage"
	"github.com/loftlab/huddle/pkg/sync"
	"github.com/loftlab/huddle/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore wraps a real store and fails selected writes so rollback
// behavior can be observed.
type failingStore struct {
	storage.Store
	updateTaskErr    error
	updateProjectErr error
}

func (f *failingStore) UpdateTask(workspaceID, id string, fields map[string]any) (*types.Task, error) {
	if f.updateTaskErr != nil {
		return nil, f.updateTaskErr
	}
	return f.Store.UpdateTask(workspaceID, id, fields)
}

func (f *failingStore) UpdateProject(workspaceID, id string, fields map[string]any) (*types.Project, error) {
	if f.updateProjectErr != nil {
		return nil, f.updateProjectErr
	}
	return f.Store.UpdateProject(workspaceID, id, fields)
}

// recordingNotifier captures which mutations reached the notifier
type recordingNotifier struct {
	NopNotifier
	created []string
	updated []string
	deleted []string
}

func (r *recordingNotifier) TaskCreated(task *types.Task, actorID string) {
	r.created = append(r.created, task.ID)
}

func (r *recordingNotifier) TaskUpdated(before, after *types.Task, actorID string) {
	r.updated = append(r.updated, after.ID)
}

func (r *recordingNotifier) TaskDeleted(task *types.Task, actorID string) {
	r.deleted = append(r.deleted, task.ID)
}

type fixture struct {
	store    *failingStore
	session  *sync.Session
	notifier *recordingNotifier
	pipeline *Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	broker := events.NewBroker()
	broker.Start()
	t.Cleanup(broker.Stop)

	bolt, err := storage.NewBoltStore(t.TempDir(), broker)
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })

	store := &failingStore{Store: bolt}
	session := sync.NewSession(store, broker)
	t.Cleanup(session.Close)

	require.NoError(t, bolt.CreateWorkspace(&types.Workspace{ID: "ws-1", Name: "test"}))
	require.NoError(t, session.SetWorkspace("ws-1"))

	notifier := &recordingNotifier{}
	return &fixture{
		store:    store,
		session:  session,
		notifier: notifier,
		pipeline: NewPipeline(store, session, notifier),
	}
}

func strptr(s string) *string { return &s }

func TestCreateTaskDefaults(t *testing.T) {
	f := newFixture(t)

	created, err := f.pipeline.CreateTask(&types.Task{Title: "new task"}, "u1")
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ws-1", created.WorkspaceID)
	assert.Equal(t, types.TaskStatusTodo, created.Status)
	assert.Equal(t, "u1", created.CreatedBy)
	assert.Equal(t, []string{created.ID}, f.notifier.created)

	stored, err := f.store.GetTask("ws-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new task", stored.Title)
}

func TestCreateTaskValidationRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.pipeline.CreateTask(&types.Task{Title: ""}, "u1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors)

	// nothing persisted, nothing notified
	tasks, err := f.store.ListTasks("ws-1")
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Empty(t, f.notifier.created)
}

func TestUpdateTaskOptimistic(t *testing.T) {
	f := newFixture(t)

	created, err := f.pipeline.CreateTask(&types.Task{Title: "before"}, "u1")
	require.NoError(t, err)
	waitCached(t, f.session, created.ID)

	updated, err := f.pipeline.UpdateTask(created.ID, &types.TaskPatch{Title: strptr("after")}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)

	cached, ok := f.session.Tasks.Cache().Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "after", cached.Title)
	assert.Equal(t, []string{created.ID}, f.notifier.updated)
}

func TestUpdateTaskRollsBackCacheOnStoreFailure(t *testing.T) {
	f := newFixture(t)

	created, err := f.pipeline.CreateTask(&types.Task{
		Title:       "stable",
		Description: "original description",
		Priority:    types.PriorityHigh,
		AssigneeIDs: []string{"u1", "u2"},
	}, "u1")
	require.NoError(t, err)
	waitCached(t, f.session, created.ID)

	snapshot, ok := f.session.Tasks.Cache().Get(created.ID)
	require.True(t, ok)

	f.store.updateTaskErr = errors.New("disk full")
	_, err = f.pipeline.UpdateTask(created.ID, &types.TaskPatch{
		Title:       strptr("doomed"),
		Description: strptr("doomed description"),
	}, "u1")

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)

	// the cache entry is restored to the exact pre-mutation value
	restored, ok := f.session.Tasks.Cache().Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, snapshot, restored)
	assert.Empty(t, f.notifier.updated)
}

func TestUpdateTaskInvalidPatchLeavesCacheUntouched(t *testing.T) {
	f := newFixture(t)

	created, err := f.pipeline.CreateTask(&types.Task{Title: "valid"}, "u1")
	require.NoError(t, err)
	waitCached(t, f.session, created.ID)

	_, err = f.pipeline.UpdateTask(created.ID, &types.TaskPatch{Title: strptr("")}, "u1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// validation happens before the cache write
	cached, ok := f.session.Tasks.Cache().Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "valid", cached.Title)
}

func TestUpdateTaskNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.pipeline.UpdateTask("missing", &types.TaskPatch{Title: strptr("x")}, "u1")
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "task", nferr.Kind)
	assert.Equal(t, "missing", nferr.ID)
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)

	created, err := f.pipeline.CreateTask(&types.Task{Title: "short lived"}, "u1")
	require.NoError(t, err)
	waitCached(t, f.session, created.ID)

	require.NoError(t, f.pipeline.DeleteTask(created.ID, "u1"))
	assert.Equal(t, []string{created.ID}, f.notifier.deleted)

	_, err = f.store.GetTask("ws-1", created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	var nferr *NotFoundError
	assert.ErrorAs(t, f.pipeline.DeleteTask(created.ID, "u1"), &nferr)
}

func TestCreateProjectDefaults(t *testing.T) {
	f := newFixture(t)

	created, err := f.pipeline.CreateProject(&types.Project{Title: "roadmap"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ws-1", created.WorkspaceID)
	assert.Equal(t, types.ProjectStatusPlanning, created.Status)
	assert.Equal(t, "u1", created.CreatedBy)
}

func TestUpdateProjectRollsBackCacheOnStoreFailure(t *testing.T) {
	f := newFixture(t)

	created, err := f.pipeline.CreateProject(&types.Project{Title: "stable"}, "u1")
	require.NoError(t, err)
	waitProjectCached(t, f.session, created.ID)

	snapshot, ok := f.session.Projects.Cache().Get(created.ID)
	require.True(t, ok)

	f.store.updateProjectErr = errors.New("disk full")
	_, err = f.pipeline.UpdateProject(created.ID, &types.ProjectPatch{Title: strptr("doomed")}, "u1")

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)

	restored, ok := f.session.Projects.Cache().Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, snapshot, restored)
}

// waitCached blocks until the task syncer has picked up the created task.
// Creation is not optimistic, so the entry only appears after the change
// event triggers a refresh.
func waitCached(t *testing.T, session *sync.Session, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := session.Tasks.Cache().Get(id)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func waitProjectCached(t *testing.T, session *sync.Session, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := session.Projects.Cache().Get(id)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}
