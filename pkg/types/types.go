package types

import (
	"time"
)

// Workspace is the tenant boundary. Every entity, membership, notification
// and invite belongs to exactly one workspace.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Collection identifies one synced entity collection within a workspace
type Collection string

const (
	CollectionTasks         Collection = "tasks"
	CollectionProjects      Collection = "projects"
	CollectionMembers       Collection = "members"
	CollectionNotifications Collection = "notifications"
	CollectionInvites       Collection = "invites"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "backlog"
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusDone       TaskStatus = "done"
)

// Priority represents task/project priority
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Task represents a unit of work within a workspace.
// StartDate and DueDate are ISO calendar dates ("2006-01-02"); empty means unset.
type Task struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspaceId"`
	ProjectID   string     `json:"projectId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority,omitempty"`
	AssigneeIDs []string   `json:"assigneeIds,omitempty"`
	StartDate   string     `json:"startDate,omitempty"`
	DueDate     string     `json:"dueDate,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy. The mutation pipeline snapshots entities
// before an optimistic patch so rollback can restore the exact value.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	if t.AssigneeIDs != nil {
		cp.AssigneeIDs = append([]string(nil), t.AssigneeIDs...)
	}
	return &cp
}

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// Project groups tasks within a workspace. Unlike tasks, a project has at
// most one assignee (the project lead).
type Project struct {
	ID          string        `json:"id"`
	WorkspaceID string        `json:"workspaceId"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Priority    Priority      `json:"priority,omitempty"`
	AssigneeID  string        `json:"assigneeId,omitempty"`
	StartDate   string        `json:"startDate,omitempty"`
	DueDate     string        `json:"dueDate,omitempty"`
	CreatedBy   string        `json:"createdBy,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Clone returns a deep copy
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// MemberRole defines a member's role within a workspace
type MemberRole string

const (
	RoleOwner  MemberRole = "OWNER"
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
	RoleGuest  MemberRole = "GUEST"
)

// Administrative reports whether the role carries workspace-management
// permission and the administrative notification fallback.
func (r MemberRole) Administrative() bool {
	return r == RoleOwner || r == RoleAdmin
}

// MemberStatus represents whether a membership is active
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "ACTIVE"
	MemberStatusInactive MemberStatus = "INACTIVE"
)

// Member maps a user identity to a role within one workspace. ChatID is the
// member's external messaging address; empty means no channel configured.
type Member struct {
	UserID      string       `json:"userId"`
	WorkspaceID string       `json:"workspaceId"`
	Name        string       `json:"name,omitempty"`
	Email       string       `json:"email"`
	Role        MemberRole   `json:"role"`
	Status      MemberStatus `json:"status"`
	ChatID      string       `json:"chatId,omitempty"`
	JoinedAt    time.Time    `json:"joinedAt"`
}

// Clone returns a deep copy
func (m *Member) Clone() *Member {
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}

// NotificationType tags the event that triggered a notification
type NotificationType string

const (
	NotificationTaskCreated         NotificationType = "task.created"
	NotificationTaskAssigned        NotificationType = "task.assigned"
	NotificationTaskStatusChanged   NotificationType = "task.status_changed"
	NotificationTaskDueDateChanged  NotificationType = "task.due_date_changed"
	NotificationTaskPriorityChanged NotificationType = "task.priority_changed"
	NotificationTaskEdited          NotificationType = "task.edited"
	NotificationTaskUpdated         NotificationType = "task.updated"
	NotificationTaskDeleted         NotificationType = "task.deleted"
	NotificationProjectCreated      NotificationType = "project.created"
	NotificationProjectUpdated      NotificationType = "project.updated"
	NotificationProjectDeleted      NotificationType = "project.deleted"
	NotificationInviteAccepted      NotificationType = "invite.accepted"
)

// Notification is an immutable in-app record. Recipients nil means visible
// to all workspace members; a non-nil empty slice means no one, which is a
// distinct state and must survive serialization. ReadBy only ever grows.
type Notification struct {
	ID          string           `json:"id"`
	WorkspaceID string           `json:"workspaceId"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Type        NotificationType `json:"type"`
	Recipients  []string         `json:"recipients"`
	ReadBy      []string         `json:"readBy"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// VisibleTo reports whether the notification should be shown to userID
func (n *Notification) VisibleTo(userID string) bool {
	if n.Recipients == nil {
		return true
	}
	for _, r := range n.Recipients {
		if r == userID {
			return true
		}
	}
	return false
}

// IsReadBy reports whether userID already acknowledged the notification
func (n *Notification) IsReadBy(userID string) bool {
	for _, r := range n.ReadBy {
		if r == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (n *Notification) Clone() *Notification {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Recipients != nil {
		cp.Recipients = append([]string{}, n.Recipients...)
	}
	if n.ReadBy != nil {
		cp.ReadBy = append([]string{}, n.ReadBy...)
	}
	return &cp
}

// InviteStatus represents the stored state of a workspace invite.
// Expiry is never stored: a PENDING invite past its ExpiresAt is treated
// as expired wherever it is read.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "PENDING"
	InviteStatusAccepted InviteStatus = "ACCEPTED"
	InviteStatusRevoked  InviteStatus = "REVOKED"
)

// Invite is a time-limited, identity-bound workspace invitation. The token
// doubles as the lookup key.
type Invite struct {
	Token       string       `json:"token"`
	WorkspaceID string       `json:"workspaceId"`
	Email       string       `json:"email"`
	Role        MemberRole   `json:"role"`
	Status      InviteStatus `json:"status"`
	InvitedBy   string       `json:"invitedBy,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

// Expired reports whether the invite's TTL has elapsed at the given time,
// regardless of stored status.
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Clone returns a deep copy
func (i *Invite) Clone() *Invite {
	if i == nil {
		return nil
	}
	cp := *i
	return &cp
}
