package notify

import (
	"testing"

	"github.com/loftlab/huddle/pkg/types"
	"github.com/stretchr/testify/assert"
)

func member(userID string, role types.MemberRole, status types.MemberStatus, chatID string) *types.Member {
	return &types.Member{
		UserID:      userID,
		WorkspaceID: "ws-1",
		Email:       userID + "@example.com",
		Role:        role,
		Status:      status,
		ChatID:      chatID,
	}
}

func TestResolveInApp(t *testing.T) {
	members := []*types.Member{
		member("owner", types.RoleOwner, types.MemberStatusActive, ""),
		member("admin", types.RoleAdmin, types.MemberStatusActive, ""),
		member("admin-gone", types.RoleAdmin, types.MemberStatusInactive, ""),
		member("plain", types.RoleMember, types.MemberStatusActive, ""),
	}

	tests := []struct {
		name      string
		assignees []string
		want      []string
	}{
		{
			name:      "explicit assignees win",
			assignees: []string{"plain", "admin"},
			want:      []string{"plain", "admin"},
		},
		{
			name:      "assignees deduplicated order stable",
			assignees: []string{"plain", "plain", "admin", "plain"},
			want:      []string{"plain", "admin"},
		},
		{
			name:      "no assignees falls back to active admins",
			assignees: nil,
			want:      []string{"owner", "admin"},
		},
		{
			name:      "assignee need not be a member",
			assignees: []string{"external-user"},
			want:      []string{"external-user"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveInApp(tt.assignees, members)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveInAppEmptyResolutionBroadcasts(t *testing.T) {
	// no assignees and no active admins: nil means every member may see it
	members := []*types.Member{
		member("u1", types.RoleMember, types.MemberStatusActive, ""),
		member("u2", types.RoleAdmin, types.MemberStatusInactive, ""),
	}
	assert.Nil(t, ResolveInApp(nil, members))
	assert.Nil(t, ResolveInApp(nil, nil))

	n := &types.Notification{Recipients: ResolveInApp(nil, members)}
	assert.True(t, n.VisibleTo("u1"))
}

func TestResolveChannelAddresses(t *testing.T) {
	members := []*types.Member{
		member("u1", types.RoleMember, types.MemberStatusActive, "chat-u1"),
		member("u2", types.RoleMember, types.MemberStatusActive, ""),
		member("actor", types.RoleAdmin, types.MemberStatusActive, "chat-actor"),
	}

	tests := []struct {
		name      string
		assignees []string
		actor     string
		want      []string
	}{
		{
			name:      "assignees with addresses plus actor confirmation",
			assignees: []string{"u1", "u2"},
			actor:     "actor",
			want:      []string{"chat-u1", "chat-actor"},
		},
		{
			name:      "actor among assignees not added twice",
			assignees: []string{"u1", "actor"},
			actor:     "actor",
			want:      []string{"chat-u1", "chat-actor"},
		},
		{
			name:      "members without chat id skipped",
			assignees: []string{"u2"},
			actor:     "",
			want:      []string{},
		},
		{
			name:      "unknown actor ignored",
			assignees: []string{"u1"},
			actor:     "ghost",
			want:      []string{"chat-u1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveChannelAddresses(tt.assignees, members, tt.actor)
			assert.Equal(t, tt.want, got)
		})
	}
}
