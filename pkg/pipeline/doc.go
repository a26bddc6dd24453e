/*
Package pipeline implements huddle's optimistic mutation flow.

Every task and project mutation passes through the same gate: validate the
would-be result, show it to the local session immediately, persist it, and
roll the session back bit-for-bit if persistence fails. The UI built on
the session caches therefore feels instant while the store remains the
only authority.

# Update Flow

	UpdateTask(id, patch, actor)
	    │
	    ├─ 1. snapshot  := cache.Get(id)          clone, kept for rollback
	    ├─ 2. merged    := patch.ApplyTo(snapshot) overlay present fields
	    ├─ 3. validate  merged                     reject → ValidationError
	    ├─ 4. cache.Put(merged)                    optimistic, UI updates now
	    ├─ 5. store.UpdateTask(patch.Fields())     absent fields never sent
	    │        │
	    │        ├─ ok   → notifier fires with (snapshot, updated)
	    │        └─ fail → cache.Put(snapshot)     exact pre-mutation state
	    │                  → PersistenceError
	    └─ background: store's change event re-syncs the cache anyway

The rollback restores the clone taken in step 1, not a reconstruction, so
a failed mutation leaves the session exactly where it started. Creates
and deletes skip the optimistic overlay: the store round-trip assigns IDs
and the change event lands fast enough.

# Validation

Validation runs on the merged result, not the patch, so a patch that is
individually harmless but produces an invalid document (clearing a due
date ordering, blanking a title) is rejected before anything is shown or
written. All violations report together in ValidationError.Errors.

# Errors

	ValidationError   the merged entity broke a rule; nothing happened
	NotFoundError     the target is not in the active session
	PersistenceError  the store write failed; the session was rolled back

# Notifier

The Notifier interface decouples fanout from mutation. pkg/notify's
MutationNotifier implements it; NopNotifier serves tests. Notifier
failures are the notifier's problem: nothing it does can fail a mutation
that already persisted.

# See Also

  - pkg/sync for the session caches this pipeline overlays
  - pkg/validate for the rules applied in step 3
  - pkg/notify for what happens after a successful mutation
*/
package pipeline
