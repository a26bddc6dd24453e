/*
Package sync keeps in-memory collection caches consistent with the store.

A Syncer subscribes one collection in one workspace to the change broker.
Whenever a relevant change event arrives it re-reads the entire collection
from the store and swaps the cache wholesale, then delivers the fresh
snapshot to the subscriber's callback. A Session bundles the five syncers
a client needs and switches them between workspaces as a unit.

# Architecture

	┌──────────────────── SESSION ─────────────────────────────┐
	│                                                            │
	│  SetWorkspace(id)                                          │
	│       │                                                    │
	│       ├──▶ Syncer[Task] ───────▶ Cache[Task]              │
	│       ├──▶ Syncer[Project] ────▶ Cache[Project]           │
	│       ├──▶ Syncer[Member] ─────▶ Cache[Member]            │
	│       ├──▶ Syncer[Notification]▶ Cache[Notification]      │
	│       └──▶ Syncer[Invite] ─────▶ Cache[Invite]            │
	│                                                            │
	│  broker event ──▶ filter (workspace, collection)           │
	│                ──▶ drain queued events (coalesce)          │
	│                ──▶ store.List (full re-read)               │
	│                ──▶ cache.ReplaceAll + onSnapshot           │
	│                                                            │
	└────────────────────────────────────────────────────────────┘

# Full Replacement

Snapshots fully replace cache contents; there is no incremental patching.
Events say only that something changed, so correctness never depends on
seeing every event: a missed or coalesced event is repaired by the next
re-read. The initial snapshot on subscribe delivers synchronously, so a
caller holds current data the moment Subscribe returns.

# Subscription Lifecycle

A syncer runs at most one subscription. Subscribing again drops the
previous subscription and clears the cache first, so data from the old
workspace is never visible under the new one, even for a moment. The
returned cancel function is idempotent and waits for the run loop to
stop, which guarantees no snapshot delivery after cancellation returns.

# Cache Discipline

Cache hands out clones on Get and Snapshot, never interior pointers. Put
replaces an existing entry only; it is how the mutation pipeline overlays
an optimistic result (and restores the pre-mutation clone on rollback)
without waiting for a full refresh.

# See Also

  - pkg/events for the change events this package consumes
  - pkg/pipeline for the optimistic overlay on top of these caches
*/
package sync
