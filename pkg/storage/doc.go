/*
Package storage provides BoltDB-backed persistence for huddle's workspace data.

The storage package implements the Store interface using BoltDB as the
underlying database, giving every write full ACID semantics from a single
embedded file. It is the sole authority for workspaces, tasks, projects,
members, notifications, and invites; everything else in huddle (session
caches, optimistic overlays) is a disposable view over this store.

# Architecture

	┌──────────────────── STORAGE LAYER ───────────────────────┐
	│                                                            │
	│  Store interface                                           │
	│       │                                                    │
	│  ┌────▼──────────────────────────────────────┐            │
	│  │             BoltStore                      │            │
	│  │  huddle.db (single file, single writer)   │            │
	│  │                                            │            │
	│  │  Buckets:                                  │            │
	│  │    workspaces     key: id                  │            │
	│  │    tasks          key: workspace/id        │            │
	│  │    projects       key: workspace/id        │            │
	│  │    members        key: workspace/userId    │            │
	│  │    notifications  key: workspace/id        │            │
	│  │    invites        key: workspace/token     │            │
	│  └────┬──────────────────────────────────────┘            │
	│       │ after successful commit                            │
	│       ▼                                                    │
	│  events.Broker (change events)                             │
	│                                                            │
	└────────────────────────────────────────────────────────────┘

# Write Semantics

Creates assign IDs and timestamps; documents are stored as JSON. Updates
take a field map produced by a patch's Fields() method, so a field the
caller never set can never be written: the stored document is read, the
present fields merged over it, and the result written back in one
transaction. BoltDB serializes write transactions, which makes each
update atomic against concurrent writers without any locking here.

Change events publish only after the enclosing transaction commits. A
subscriber that re-reads on an event is therefore guaranteed to see the
write that triggered it.

# Atomic Transactions

Atomically runs a function against a transactional view (Txn) covering
invites and members. Invite acceptance uses it to flip the invite to
ACCEPTED and upsert the member as one unit: both land or neither does,
and concurrent acceptances of the same token serialize behind bolt's
single writer. Events buffered during the function publish only on
commit.

# Usage

	store, err := storage.NewBoltStore(dataDir, broker)
	if err != nil {
		return err
	}
	defer store.Close()

	task := &types.Task{WorkspaceID: ws.ID, Title: "Ship it"}
	if err := store.CreateTask(task); err != nil {
		return err
	}

	// partial update: only status changes
	updated, err := store.UpdateTask(ws.ID, task.ID, map[string]any{
		"status": "done",
	})

# Ordering

List operations return documents ordered by creation time descending,
ties broken by ID, so every reader observes the same stable order.

# Limitations

Single-process access: BoltDB locks the database file, so exactly one
huddle server owns a data directory at a time. This is by construction
the deployment model here, not an accident.

# See Also

  - pkg/events for the change events published on commit
  - pkg/types for the stored document shapes
  - pkg/invite for the Atomically-based accept flow
*/
package storage
