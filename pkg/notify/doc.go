/*
Package notify turns committed mutations into notifications people see.

Three stages run after every successful task or project mutation:
classify what changed, resolve who should hear about it, and dispatch an
in-app notification (always) plus a chat message (when addresses exist).
The package also houses the Center, the read/unread inbox over persisted
notifications.

# Classification

ClassifyTaskUpdate compares the before and after documents and reports
the single most significant change, checked in fixed priority order:

	assignees → status → due date → priority → title/description → other

One mutation yields at most one notification even when several fields
changed together. A diff in none of the watched fields yields nothing.

# Recipient Resolution

In-app recipients are the task's assignees; a task with no assignees
falls back to the workspace's ACTIVE admins and owners, so nothing
disappears unseen. Chat addresses come from assignee chat IDs plus the
acting user's own, with members lacking a chat ID silently skipped.
Resolution never returns nil: "no recipients" is an explicit empty list,
distinct from the nil that means visible-to-all.

# Dispatch Isolation

Fanout persists the in-app notification first, then attempts one batched
chat delivery with a bounded timeout. Failures at either stage are logged
and counted but never propagate: the mutation already committed, and a
broken webhook must not make a successful edit look failed. Partial chat
delivery (some addresses failed) counts separately from total failure.

# Center

Center serves the notification inbox over the session cache: listing
filtered by visibility, idempotent read marks that only ever grow,
delete, and clear. Deleting a notification the store no longer has just
removes it locally; someone else got there first and that is fine.

# See Also

  - pkg/pipeline for the mutations that feed this package
  - pkg/messenger for the chat transport behind Fanout
*/
package notify
