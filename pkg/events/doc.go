/*
Package events provides the in-memory change broker behind huddle's sync.

Every committed write to the store publishes a change event through the
broker. Collection syncers subscribe to learn that their data went stale;
the API server subscribes to feed long-polling clients. Events carry
identity, not payloads: a subscriber that cares re-reads the store.

# Architecture

	┌──────────────────── CHANGE BROKER ───────────────────────┐
	│                                                            │
	│  BoltStore commit                                          │
	│       │ Publish (non-blocking)                             │
	│       ▼                                                    │
	│  Event Channel (buffer: 100)                               │
	│       │                                                    │
	│  Broadcast Loop                                            │
	│       │                                                    │
	│       ├──▶ Syncer[Task] subscriber    (buffer: 50)        │
	│       ├──▶ Syncer[Project] subscriber (buffer: 50)        │
	│       ├──▶ ... one per active collection                  │
	│       └──▶ API long-poll subscribers  (buffer: 50)        │
	│                                                            │
	└────────────────────────────────────────────────────────────┘

# Event Semantics

An Event records that one document changed:

	Type        created | updated | deleted
	WorkspaceID the workspace the document lives in
	Collection  tasks | projects | members | notifications | invites
	EntityID    the document's ID (task ID, invite token, user ID)

Events are invalidation signals. Consumers must not reconstruct state from
them: the store is the source of truth, and a consumer that missed an event
(buffer overflow, late subscription) recovers fully on its next re-read.
This is what makes dropping events under pressure safe.

# Usage

Subscribe, filter, and always unsubscribe:

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	for event := range sub {
		if event.WorkspaceID != workspaceID {
			continue
		}
		refresh()
	}

Publishing never blocks. If a subscriber's buffer is full the event is
dropped for that subscriber only; everyone else still receives it.

# Delivery Guarantees

Best effort, at-most-once per subscriber, in publish order. There is no
persistence, replay, or acknowledgment. The syncers in pkg/sync coalesce
bursts by draining their queue before each re-read, so a dropped event is
indistinguishable from a coalesced one.

# See Also

  - pkg/storage for where events are published
  - pkg/sync for the collection syncers consuming them
  - pkg/api for the long-poll change feed
*/
package events
