package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/loftlab/huddle/pkg/events"
	"github.com/loftlab/huddle/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketWorkspaces    = []byte("workspaces")
	bucketTasks         = []byte("tasks")
	bucketProjects      = []byte("projects")
	bucketMembers       = []byte("members")
	bucketNotifications = []byte("notifications")
	bucketInvites       = []byte("invites")
)

// BoltStore implements Store using BoltDB. Documents are stored as JSON in
// one bucket per collection, keyed by "workspaceID/documentID" so a single
// prefix scan yields one workspace's slice of a collection.
//
// Every committed mutation is published to the change broker after the
// transaction closes, which is what drives collection syncers.
type BoltStore struct {
	db     *bolt.DB
	broker *events.Broker
}

// NewBoltStore creates a new BoltDB-backed store. The broker may be nil when
// no one needs change events (for example one-shot CLI commands).
func NewBoltStore(dataDir string, broker *events.Broker) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "huddle.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketWorkspaces,
			bucketTasks,
			bucketProjects,
			bucketMembers,
			bucketNotifications,
			bucketInvites,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, broker: broker}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func docKey(workspaceID, id string) []byte {
	return []byte(workspaceID + "/" + id)
}

func (s *BoltStore) publish(eventType events.EventType, workspaceID string, collection types.Collection, entityID string) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(&events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		WorkspaceID: workspaceID,
		Collection:  collection,
		EntityID:    entityID,
	})
}

// put marshals doc and stores it under bucket/key inside tx
func put(tx *bolt.Tx, bucket []byte, key []byte, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return tx.Bucket(bucket).Put(key, data)
}

// get reads bucket/key into doc; ErrNotFound when the key is absent
func get(tx *bolt.Tx, bucket []byte, key []byte, doc any) error {
	data := tx.Bucket(bucket).Get(key)
	if data == nil {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	return json.Unmarshal(data, doc)
}

// scan visits every document under the workspace prefix in bucket
func scan(tx *bolt.Tx, bucket []byte, workspaceID string, visit func(v []byte) error) error {
	prefix := []byte(workspaceID + "/")
	c := tx.Bucket(bucket).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if err := visit(v); err != nil {
			return err
		}
	}
	return nil
}

// mergeFields overlays a patch field map onto the stored JSON document.
// The field values are normalized through a JSON round-trip first so typed
// values (TaskStatus, slices) merge the same way they would serialize.
func mergeFields(stored []byte, fields map[string]any) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(stored, &doc); err != nil {
		return nil, err
	}

	normalized, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var patch map[string]any
	if err := json.Unmarshal(normalized, &patch); err != nil {
		return nil, err
	}

	for k, v := range patch {
		doc[k] = v
	}
	doc["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)

	return json.Marshal(doc)
}

// Workspace operations

func (s *BoltStore) CreateWorkspace(ws *types.Workspace) error {
	if ws.ID == "" {
		ws.ID = uuid.NewString()
	}
	if ws.CreatedAt.IsZero() {
		ws.CreatedAt = time.Now().UTC()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketWorkspaces, []byte(ws.ID), ws)
	})
}

func (s *BoltStore) GetWorkspace(id string) (*types.Workspace, error) {
	var ws types.Workspace
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, bucketWorkspaces, []byte(id), &ws)
	})
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (s *BoltStore) ListWorkspaces() ([]*types.Workspace, error) {
	var workspaces []*types.Workspace
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWorkspaces).ForEach(func(k, v []byte) error {
			var ws types.Workspace
			if err := json.Unmarshal(v, &ws); err != nil {
				return err
			}
			workspaces = append(workspaces, &ws)
			return nil
		})
	})
	return workspaces, err
}

func (s *BoltStore) DeleteWorkspace(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWorkspaces).Delete([]byte(id))
	})
}

// Task operations

func (s *BoltStore) CreateTask(task *types.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	err := s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketTasks, docKey(task.WorkspaceID, task.ID), task)
	})
	if err != nil {
		return err
	}
	s.publish(events.EventCreated, task.WorkspaceID, types.CollectionTasks, task.ID)
	return nil
}

func (s *BoltStore) GetTask(workspaceID, id string) (*types.Task, error) {
	var task types.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, bucketTasks, docKey(workspaceID, id), &task)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *BoltStore) ListTasks(workspaceID string) ([]*types.Task, error) {
	var tasks []*types.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		return scan(tx, bucketTasks, workspaceID, func(v []byte) error {
			var task types.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}
			tasks = append(tasks, &task)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (s *BoltStore) UpdateTask(workspaceID, id string, fields map[string]any) (*types.Task, error) {
	var updated types.Task
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		key := docKey(workspaceID, id)
		stored := b.Get(key)
		if stored == nil {
			return fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		merged, err := mergeFields(stored, fields)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(merged, &updated); err != nil {
			return err
		}
		return b.Put(key, merged)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.EventUpdated, workspaceID, types.CollectionTasks, id)
	return &updated, nil
}

func (s *BoltStore) DeleteTask(workspaceID, id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		key := docKey(workspaceID, id)
		if b.Get(key) == nil {
			return fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		return b.Delete(key)
	})
	if err != nil {
		return err
	}
	s.publish(events.EventDeleted, workspaceID, types.CollectionTasks, id)
	return nil
}

// Project operations

func (s *BoltStore) CreateProject(project *types.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	err := s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketProjects, docKey(project.WorkspaceID, project.ID), project)
	})
	if err != nil {
		return err
	}
	s.publish(events.EventCreated, project.WorkspaceID, types.CollectionProjects, project.ID)
	return nil
}

func (s *BoltStore) GetProject(workspaceID, id string) (*types.Project, error) {
	var project types.Project
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, bucketProjects, docKey(workspaceID, id), &project)
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *BoltStore) ListProjects(workspaceID string) ([]*types.Project, error) {
	var projects []*types.Project
	err := s.db.View(func(tx *bolt.Tx) error {
		return scan(tx, bucketProjects, workspaceID, func(v []byte) error {
			var project types.Project
			if err := json.Unmarshal(v, &project); err != nil {
				return err
			}
			projects = append(projects, &project)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.After(projects[j].CreatedAt)
		}
		return projects[i].ID < projects[j].ID
	})
	return projects, nil
}

func (s *BoltStore) UpdateProject(workspaceID, id string, fields map[string]any) (*types.Project, error) {
	var updated types.Project
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects)
		key := docKey(workspaceID, id)
		stored := b.Get(key)
		if stored == nil {
			return fmt.Errorf("%w: project %s", ErrNotFound, id)
		}
		merged, err := mergeFields(stored, fields)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(merged, &updated); err != nil {
			return err
		}
		return b.Put(key, merged)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.EventUpdated, workspaceID, types.CollectionProjects, id)
	return &updated, nil
}

func (s *BoltStore) DeleteProject(workspaceID, id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects)
		key := docKey(workspaceID, id)
		if b.Get(key) == nil {
			return fmt.Errorf("%w: project %s", ErrNotFound, id)
		}
		return b.Delete(key)
	})
	if err != nil {
		return err
	}
	s.publish(events.EventDeleted, workspaceID, types.CollectionProjects, id)
	return nil
}

// Member operations

func (s *BoltStore) PutMember(member *types.Member) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketMembers, docKey(member.WorkspaceID, member.UserID), member)
	})
	if err != nil {
		return err
	}
	s.publish(events.EventUpdated, member.WorkspaceID, types.CollectionMembers, member.UserID)
	return nil
}

func (s *BoltStore) GetMember(workspaceID, userID string) (*types.Member, error) {
	var member types.Member
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, bucketMembers, docKey(workspaceID, userID), &member)
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *BoltStore) ListMembers(workspaceID string) ([]*types.Member, error) {
	var members []*types.Member
	err := s.db.View(func(tx *bolt.Tx) error {
		return scan(tx, bucketMembers, workspaceID, func(v []byte) error {
			var member types.Member
			if err := json.Unmarshal(v, &member); err != nil {
				return err
			}
			members = append(members, &member)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].JoinedAt.After(members[j].JoinedAt)
		}
		return members[i].UserID < members[j].UserID
	})
	return members, nil
}

func (s *BoltStore) DeleteMember(workspaceID, userID string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMembers).Delete(docKey(workspaceID, userID))
	})
	if err != nil {
		return err
	}
	s.publish(events.EventDeleted, workspaceID, types.CollectionMembers, userID)
	return nil
}

// Notification operations

func (s *BoltStore) CreateNotification(n *types.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketNotifications, docKey(n.WorkspaceID, n.ID), n)
	})
	if err != nil {
		return err
	}
	s.publish(events.EventCreated, n.WorkspaceID, types.CollectionNotifications, n.ID)
	return nil
}

func (s *BoltStore) GetNotification(workspaceID, id string) (*types.Notification, error) {
	var n types.Notification
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, bucketNotifications, docKey(workspaceID, id), &n)
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *BoltStore) ListNotifications(workspaceID string) ([]*types.Notification, error) {
	var notifications []*types.Notification
	err := s.db.View(func(tx *bolt.Tx) error {
		return scan(tx, bucketNotifications, workspaceID, func(v []byte) error {
			var n types.Notification
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			notifications = append(notifications, &n)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(notifications, func(i, j int) bool {
		if !notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
		}
		return notifications[i].ID < notifications[j].ID
	})
	return notifications, nil
}

func (s *BoltStore) PutNotification(n *types.Notification) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotifications)
		key := docKey(n.WorkspaceID, n.ID)
		if b.Get(key) == nil {
			return fmt.Errorf("%w: notification %s", ErrNotFound, n.ID)
		}
		return put(tx, bucketNotifications, key, n)
	})
	if err != nil {
		return err
	}
	s.publish(events.EventUpdated, n.WorkspaceID, types.CollectionNotifications, n.ID)
	return nil
}

func (s *BoltStore) DeleteNotification(workspaceID, id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotifications)
		key := docKey(workspaceID, id)
		if b.Get(key) == nil {
			return fmt.Errorf("%w: notification %s", ErrNotFound, id)
		}
		return b.Delete(key)
	})
	if err != nil {
		return err
	}
	s.publish(events.EventDeleted, workspaceID, types.CollectionNotifications, id)
	return nil
}

// Invite operations

func (s *BoltStore) CreateInvite(invite *types.Invite) error {
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now().UTC()
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketInvites, docKey(invite.WorkspaceID, invite.Token), invite)
	})
	if err != nil {
		return err
	}
	s.publish(events.EventCreated, invite.WorkspaceID, types.CollectionInvites, invite.Token)
	return nil
}

func (s *BoltStore) GetInvite(workspaceID, token string) (*types.Invite, error) {
	var invite types.Invite
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, bucketInvites, docKey(workspaceID, token), &invite)
	})
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (s *BoltStore) ListInvites(workspaceID string) ([]*types.Invite, error) {
	var invites []*types.Invite
	err := s.db.View(func(tx *bolt.Tx) error {
		return scan(tx, bucketInvites, workspaceID, func(v []byte) error {
			var invite types.Invite
			if err := json.Unmarshal(v, &invite); err != nil {
				return err
			}
			invites = append(invites, &invite)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(invites, func(i, j int) bool {
		if !invites[i].CreatedAt.Equal(invites[j].CreatedAt) {
			return invites[i].CreatedAt.After(invites[j].CreatedAt)
		}
		return invites[i].Token < invites[j].Token
	})
	return invites, nil
}

func (s *BoltStore) PutInvite(invite *types.Invite) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketInvites)
		key := docKey(invite.WorkspaceID, invite.Token)
		if b.Get(key) == nil {
			return fmt.Errorf("%w: invite %s", ErrNotFound, invite.Token)
		}
		return put(tx, bucketInvites, key, invite)
	})
	if err != nil {
		return err
	}
	s.publish(events.EventUpdated, invite.WorkspaceID, types.CollectionInvites, invite.Token)
	return nil
}

func (s *BoltStore) DeleteInvite(workspaceID, token string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInvites).Delete(docKey(workspaceID, token))
	})
	if err != nil {
		return err
	}
	s.publish(events.EventDeleted, workspaceID, types.CollectionInvites, token)
	return nil
}

// Atomic transactions

// boltTxn adapts a single bolt write transaction to the Txn interface.
// Change events are buffered and only published once the transaction commits.
type boltTxn struct {
	tx      *bolt.Tx
	pending []*events.Event
}

func (t *boltTxn) GetInvite(workspaceID, token string) (*types.Invite, error) {
	var invite types.Invite
	if err := get(t.tx, bucketInvites, docKey(workspaceID, token), &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}

func (t *boltTxn) PutInvite(invite *types.Invite) error {
	if err := put(t.tx, bucketInvites, docKey(invite.WorkspaceID, invite.Token), invite); err != nil {
		return err
	}
	t.pending = append(t.pending, &events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventUpdated,
		WorkspaceID: invite.WorkspaceID,
		Collection:  types.CollectionInvites,
		EntityID:    invite.Token,
	})
	return nil
}

func (t *boltTxn) GetMember(workspaceID, userID string) (*types.Member, error) {
	var member types.Member
	if err := get(t.tx, bucketMembers, docKey(workspaceID, userID), &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (t *boltTxn) PutMember(member *types.Member) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	if err := put(t.tx, bucketMembers, docKey(member.WorkspaceID, member.UserID), member); err != nil {
		return err
	}
	t.pending = append(t.pending, &events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventUpdated,
		WorkspaceID: member.WorkspaceID,
		Collection:  types.CollectionMembers,
		EntityID:    member.UserID,
	})
	return nil
}

func (t *boltTxn) GetNotification(workspaceID, id string) (*types.Notification, error) {
	var n types.Notification
	if err := get(t.tx, bucketNotifications, docKey(workspaceID, id), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (t *boltTxn) PutNotification(n *types.Notification) error {
	if err := put(t.tx, bucketNotifications, docKey(n.WorkspaceID, n.ID), n); err != nil {
		return err
	}
	t.pending = append(t.pending, &events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventUpdated,
		WorkspaceID: n.WorkspaceID,
		Collection:  types.CollectionNotifications,
		EntityID:    n.ID,
	})
	return nil
}

// Atomically runs fn inside one bolt write transaction. Bolt serializes
// write transactions, so two concurrent invite acceptances observe each
// other's committed state and cannot both pass their preconditions.
func (s *BoltStore) Atomically(fn func(tx Txn) error) error {
	var pending []*events.Event
	err := s.db.Update(func(tx *bolt.Tx) error {
		txn := &boltTxn{tx: tx}
		if err := fn(txn); err != nil {
			return err
		}
		pending = txn.pending
		return nil
	})
	if err != nil {
		return err
	}
	if s.broker != nil {
		for _, e := range pending {
			s.broker.Publish(e)
		}
	}
	return nil
}
