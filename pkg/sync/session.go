package sync

import (
	"fmt"
	gosync "sync"

	"github.com/loftlab/huddle/pkg/events"
	"github.com/loftlab/huddle/pkg/storage"
	"github.com/loftlab/huddle/pkg/types"
)

// Session bundles one client's live view of a workspace: a syncer and cache
// per collection. SetWorkspace switches every collection over atomically
// from the caller's perspective, dropping the old workspace's subscriptions
// before the new ones are established.
type Session struct {
	Tasks         *Syncer[*types.Task]
	Projects      *Syncer[*types.Project]
	Members       *Syncer[*types.Member]
	Notifications *Syncer[*types.Notification]
	Invites       *Syncer[*types.Invite]

	mu          gosync.Mutex
	workspaceID string
	unsubs      []func()
}

// NewSession creates a session over the given store and change broker. No
// workspace is active until SetWorkspace is called.
func NewSession(store storage.Store, broker *events.Broker) *Session {
	return &Session{
		Tasks: NewSyncer(types.CollectionTasks, broker,
			NewCache(func(t *types.Task) string { return t.ID }, (*types.Task).Clone),
			store.ListTasks),
		Projects: NewSyncer(types.CollectionProjects, broker,
			NewCache(func(p *types.Project) string { return p.ID }, (*types.Project).Clone),
			store.ListProjects),
		Members: NewSyncer(types.CollectionMembers, broker,
			NewCache(func(m *types.Member) string { return m.UserID }, (*types.Member).Clone),
			store.ListMembers),
		Notifications: NewSyncer(types.CollectionNotifications, broker,
			NewCache(func(n *types.Notification) string { return n.ID }, (*types.Notification).Clone),
			store.ListNotifications),
		Invites: NewSyncer(types.CollectionInvites, broker,
			NewCache(func(i *types.Invite) string { return i.Token }, (*types.Invite).Clone),
			store.ListInvites),
	}
}

// WorkspaceID returns the currently active workspace, or empty
func (s *Session) WorkspaceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workspaceID
}

// SetWorkspace switches the session to workspaceID. Passing the empty string
// deactivates the session and clears every cache.
func (s *Session) SetWorkspace(workspaceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.workspaceID = ""

	if workspaceID == "" {
		return nil
	}

	type activation struct {
		name string
		fn   func() (func(), error)
	}
	activations := []activation{
		{"tasks", func() (func(), error) { return s.Tasks.Subscribe(workspaceID, nil) }},
		{"projects", func() (func(), error) { return s.Projects.Subscribe(workspaceID, nil) }},
		{"members", func() (func(), error) { return s.Members.Subscribe(workspaceID, nil) }},
		{"notifications", func() (func(), error) { return s.Notifications.Subscribe(workspaceID, nil) }},
		{"invites", func() (func(), error) { return s.Invites.Subscribe(workspaceID, nil) }},
	}

	for _, a := range activations {
		unsub, err := a.fn()
		if err != nil {
			for _, u := range s.unsubs {
				u()
			}
			s.unsubs = nil
			return fmt.Errorf("activate %s sync: %w", a.name, err)
		}
		s.unsubs = append(s.unsubs, unsub)
	}

	s.workspaceID = workspaceID
	return nil
}

// Close deactivates the session
func (s *Session) Close() {
	_ = s.SetWorkspace("")
}
