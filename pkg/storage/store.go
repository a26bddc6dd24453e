package storage

import (
	"errors"

	"github.com/loftlab/huddle/pkg/types"
)

// ErrNotFound is returned when a requested document does not exist.
// Callers match it with errors.Is.
var ErrNotFound = errors.New("not found")

// Store defines the document-store contract the core depends on. The bolt
// implementation is the embedded authoritative store; tests substitute fakes.
//
// List operations return collections ordered by creation time descending,
// ties broken by id. Update operations take a field map produced by a patch's
// Fields() method so absent fields never reach the write.
type Store interface {
	// Workspaces
	CreateWorkspace(ws *types.Workspace) error
	GetWorkspace(id string) (*types.Workspace, error)
	ListWorkspaces() ([]*types.Workspace, error)
	DeleteWorkspace(id string) error

	// Tasks
	CreateTask(task *types.Task) error
	GetTask(workspaceID, id string) (*types.Task, error)
	ListTasks(workspaceID string) ([]*types.Task, error)
	UpdateTask(workspaceID, id string, fields map[string]any) (*types.Task, error)
	DeleteTask(workspaceID, id string) error

	// Projects
	CreateProject(project *types.Project) error
	GetProject(workspaceID, id string) (*types.Project, error)
	ListProjects(workspaceID string) ([]*types.Project, error)
	UpdateProject(workspaceID, id string, fields map[string]any) (*types.Project, error)
	DeleteProject(workspaceID, id string) error

	// Members
	PutMember(member *types.Member) error
	GetMember(workspaceID, userID string) (*types.Member, error)
	ListMembers(workspaceID string) ([]*types.Member, error)
	DeleteMember(workspaceID, userID string) error

	// Notifications
	CreateNotification(n *types.Notification) error
	GetNotification(workspaceID, id string) (*types.Notification, error)
	ListNotifications(workspaceID string) ([]*types.Notification, error)
	PutNotification(n *types.Notification) error
	DeleteNotification(workspaceID, id string) error

	// Invites
	CreateInvite(invite *types.Invite) error
	GetInvite(workspaceID, token string) (*types.Invite, error)
	ListInvites(workspaceID string) ([]*types.Invite, error)
	PutInvite(invite *types.Invite) error
	DeleteInvite(workspaceID, token string) error

	// Atomically runs fn inside a single all-or-nothing transaction. Reads
	// performed through the Txn observe writes made earlier in the same fn.
	// Used by invite acceptance, which must flip the invite and upsert the
	// member as one unit, and by read-acknowledgement, which must not lose
	// a concurrent writer's ReadBy append.
	Atomically(fn func(tx Txn) error) error

	// Utility
	Close() error
}

// Txn is the narrow read-then-conditionally-write surface available inside
// an atomic transaction.
type Txn interface {
	GetInvite(workspaceID, token string) (*types.Invite, error)
	PutInvite(invite *types.Invite) error
	GetMember(workspaceID, userID string) (*types.Member, error)
	PutMember(member *types.Member) error
	GetNotification(workspaceID, id string) (*types.Notification, error)
	PutNotification(n *types.Notification) error
}
