package invite

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/loftlab/huddle/pkg/log"
	"github.com/loftlab/huddle/pkg/metrics"
	"github.com/loftlab/huddle/pkg/notify"
	"github.com/loftlab/huddle/pkg/storage"
	"github.com/loftlab/huddle/pkg/types"
	"github.com/rs/zerolog"
)

// TTL is how long an invite stays acceptable after creation
const TTL = 7 * 24 * time.Hour

// Accept precondition failures. Each carries a distinct user-facing message
// because the caller renders different guidance for each. They are checked
// in fixed order: existence, status, expiry, identity.
var (
	// ErrNotFound indicates the token does not exist in this workspace
	ErrNotFound = errors.New("invite not found")
	// ErrAlreadyConsumed indicates the invite was already accepted or revoked
	ErrAlreadyConsumed = errors.New("invite has already been used or revoked")
	// ErrExpired indicates the invite's TTL elapsed before acceptance
	ErrExpired = errors.New("invite has expired")
	// ErrIdentityMismatch indicates the accepting user's email does not match
	ErrIdentityMismatch = errors.New("invite was issued to a different email address")
)

// AcceptingUser identifies the user attempting to accept an invite
type AcceptingUser struct {
	UserID string
	Email  string
	Name   string
}

// Lifecycle manages workspace invitations: create, revoke, accept. Accept
// runs inside the store's atomic transaction so the invite flip and the
// member upsert commit together or not at all.
type Lifecycle struct {
	store  storage.Store
	fanout *notify.Fanout
	now    func() time.Time
	token  func() string
	logger zerolog.Logger
}

// NewLifecycle creates a lifecycle over the store. fanout may be nil when
// acceptance should not produce a notification.
func NewLifecycle(store storage.Store, fanout *notify.Fanout) *Lifecycle {
	return &Lifecycle{
		store:  store,
		fanout: fanout,
		now:    time.Now,
		token:  uuid.NewString,
		logger: log.WithComponent("invite"),
	}
}

// Create issues a PENDING invite bound to email with a fresh unique token
// and a fixed TTL.
func (l *Lifecycle) Create(workspaceID, email string, role types.MemberRole, invitedBy string) (*types.Invite, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("invite email is required")
	}
	if role == "" {
		role = types.RoleMember
	}

	now := l.now().UTC()
	inv := &types.Invite{
		Token:       l.token(),
		WorkspaceID: workspaceID,
		Email:       email,
		Role:        role,
		Status:      types.InviteStatusPending,
		InvitedBy:   invitedBy,
		CreatedAt:   now,
		ExpiresAt:   now.Add(TTL),
	}
	if err := l.store.CreateInvite(inv); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	l.logger.Info().
		Str("workspace_id", workspaceID).
		Str("email", email).
		Str("role", string(role)).
		Msg("invite created")
	return inv, nil
}

// Revoke transitions a PENDING invite to REVOKED. Revoking an invite in any
// other state is a no-op; revoking an unknown token returns ErrNotFound.
func (l *Lifecycle) Revoke(workspaceID, token string) error {
	err := l.store.Atomically(func(tx storage.Txn) error {
		inv, err := tx.GetInvite(workspaceID, token)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("read invite: %w", err)
		}
		if inv.Status != types.InviteStatusPending {
			return nil
		}
		inv.Status = types.InviteStatusRevoked
		return tx.PutInvite(inv)
	})
	if err != nil {
		return err
	}
	l.logger.Info().Str("workspace_id", workspaceID).Msg("invite revoked")
	return nil
}

// Accept atomically consumes the invite and upserts the member. Each
// precondition aborts the whole operation with its distinct error:
//
//  1. the token exists in the workspace
//  2. the stored status is PENDING
//  3. the TTL has not elapsed (expiry is evaluated here, never stored)
//  4. the invite email matches the accepting user's, case-insensitively
//
// Because the transaction serializes against other acceptances of the same
// token, a concurrent second accept observes ACCEPTED at precondition 2 and
// fails with ErrAlreadyConsumed.
func (l *Lifecycle) Accept(workspaceID, token string, user AcceptingUser) (*types.Member, error) {
	var member *types.Member
	err := l.store.Atomically(func(tx storage.Txn) error {
		inv, err := tx.GetInvite(workspaceID, token)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("read invite: %w", err)
		}
		if inv.Status != types.InviteStatusPending {
			return ErrAlreadyConsumed
		}
		if inv.Expired(l.now()) {
			return ErrExpired
		}
		if !strings.EqualFold(strings.TrimSpace(inv.Email), strings.TrimSpace(user.Email)) {
			return ErrIdentityMismatch
		}

		member = &types.Member{
			UserID:      user.UserID,
			WorkspaceID: workspaceID,
			Name:        user.Name,
			Email:       user.Email,
			Role:        inv.Role,
			Status:      types.MemberStatusActive,
		}
		// Preserve fields an existing membership already carries
		if existing, err := tx.GetMember(workspaceID, user.UserID); err == nil {
			member.ChatID = existing.ChatID
			member.JoinedAt = existing.JoinedAt
			if member.Name == "" {
				member.Name = existing.Name
			}
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("read member: %w", err)
		}

		if err := tx.PutMember(member); err != nil {
			return fmt.Errorf("write member: %w", err)
		}
		inv.Status = types.InviteStatusAccepted
		if err := tx.PutInvite(inv); err != nil {
			return fmt.Errorf("write invite: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.InviteAcceptsTotal.WithLabelValues(acceptOutcome(err)).Inc()
		return nil, err
	}

	metrics.InviteAcceptsTotal.WithLabelValues("ok").Inc()
	l.logger.Info().
		Str("workspace_id", workspaceID).
		Str("user_id", user.UserID).
		Str("role", string(member.Role)).
		Msg("invite accepted")

	if l.fanout != nil {
		l.fanout.Dispatch(workspaceID, &types.Notification{
			Title:   "Member joined",
			Message: fmt.Sprintf("%s joined the workspace", memberDisplayName(member)),
			Type:    types.NotificationInviteAccepted,
			// nil recipients: visible to every member
		}, nil, "")
	}
	return member, nil
}

// List returns the workspace's invites, newest first
func (l *Lifecycle) List(workspaceID string) ([]*types.Invite, error) {
	invites, err := l.store.ListInvites(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

// EffectiveStatus is the status a reader should display: PENDING past its
// TTL reads as expired even though the stored status never changes.
func EffectiveStatus(inv *types.Invite, now time.Time) string {
	if inv.Status == types.InviteStatusPending && inv.Expired(now) {
		return "EXPIRED"
	}
	return string(inv.Status)
}

func acceptOutcome(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyConsumed):
		return "already_consumed"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrIdentityMismatch):
		return "identity_mismatch"
	default:
		return "error"
	}
}

func memberDisplayName(m *types.Member) string {
	if m.Name != "" {
		return m.Name
	}
	return m.Email
}
