/*
Package types defines the core data structures used throughout huddle.

This package contains the domain model: workspaces, tasks, projects,
members, notifications, and invites, plus the patch types that describe
partial updates. It has no dependencies on other huddle packages so that
every layer (storage, sync, pipeline, API, CLI) can share these shapes
without import cycles.

# Core Types

	Workspace     the unit of isolation; everything below is scoped to one
	Task          work item with status, priority, dates, multiple assignees
	Project       grouping with a single lead assignee
	Member        a user's membership: role, status, chat address
	Notification  an in-app message with recipient visibility and read marks
	Invite        a token-keyed invitation with TTL and state machine

# Patches

TaskPatch and ProjectPatch model "the fields the caller actually set"
with pointer fields: a nil pointer means absent, a non-nil pointer to the
zero value means "set it to empty". This distinction is what keeps a
partial update from clobbering fields the caller never mentioned, and it
survives JSON because absent fields decode to nil pointers.

	patch := &types.TaskPatch{Status: &done}
	merged := patch.ApplyTo(task, time.Now())   // clone + overlay
	fields := patch.Fields()                    // wire-named, present only

# Notification Visibility

Recipients draws a deliberate line between nil and empty: nil means
visible to every member, an empty slice means visible to no one. ReadBy
only ever grows; marking read twice is a no-op.

# Clone Semantics

Task, Project, Notification, and Invite expose Clone() deep copies. The
sync caches hand out clones so no two components ever share a mutable
document, and the mutation pipeline snapshots via Clone before applying
an optimistic update.

# Dates

StartDate and DueDate are calendar dates, stored as "2006-01-02" strings.
They are compared lexically (valid ISO dates order correctly as strings)
and validated by pkg/validate, not here.

# See Also

  - pkg/validate for the rules these types must satisfy before persisting
  - pkg/storage for how they are keyed and stored
*/
package types
