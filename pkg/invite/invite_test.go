package invite

import (
	gosync "sync"
	"testing"
	"time"

	"github.com/loftlab/huddle/pkg/storage"
	"github.com/loftlab/huddle/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLifecycle(t *testing.T) (*Lifecycle, *storage.BoltStore) {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewLifecycle(store, nil), store
}

func TestCreateInvite(t *testing.T) {
	lc, _ := newLifecycle(t)

	inv, err := lc.Create("ws-1", "  New@Example.com  ", "", "u-owner")
	require.NoError(t, err)

	assert.NotEmpty(t, inv.Token)
	assert.Equal(t, "New@Example.com", inv.Email)
	assert.Equal(t, types.RoleMember, inv.Role, "role defaults to member")
	assert.Equal(t, types.InviteStatusPending, inv.Status)
	assert.Equal(t, "u-owner", inv.InvitedBy)
	assert.Equal(t, inv.CreatedAt.Add(TTL), inv.ExpiresAt)

	_, err = lc.Create("ws-1", "   ", types.RoleAdmin, "u-owner")
	assert.Error(t, err)
}

func TestAcceptInvite(t *testing.T) {
	lc, store := newLifecycle(t)

	inv, err := lc.Create("ws-1", "new@example.com", types.RoleAdmin, "u-owner")
	require.NoError(t, err)

	member, err := lc.Accept("ws-1", inv.Token, AcceptingUser{
		UserID: "u-new",
		Email:  "NEW@EXAMPLE.COM", // email match is case-insensitive
		Name:   "New Person",
	})
	require.NoError(t, err)

	assert.Equal(t, "u-new", member.UserID)
	assert.Equal(t, types.RoleAdmin, member.Role, "member gets the invited role")
	assert.Equal(t, types.MemberStatusActive, member.Status)

	stored, err := store.GetInvite("ws-1", inv.Token)
	require.NoError(t, err)
	assert.Equal(t, types.InviteStatusAccepted, stored.Status)

	persisted, err := store.GetMember("ws-1", "u-new")
	require.NoError(t, err)
	assert.Equal(t, "New Person", persisted.Name)
}

func TestAcceptPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, lc *Lifecycle, store *storage.BoltStore) string
		user    AcceptingUser
		wantErr error
	}{
		{
			name: "unknown token",
			setup: func(t *testing.T, lc *Lifecycle, store *storage.BoltStore) string {
				return "no-such-token"
			},
			user:    AcceptingUser{UserID: "u1", Email: "a@b.com"},
			wantErr: ErrNotFound,
		},
		{
			name: "already accepted",
			setup: func(t *testing.T, lc *Lifecycle, store *storage.BoltStore) string {
				inv, err := lc.Create("ws-1", "a@b.com", "", "o")
				require.NoError(t, err)
				_, err = lc.Accept("ws-1", inv.Token, AcceptingUser{UserID: "u1", Email: "a@b.com"})
				require.NoError(t, err)
				return inv.Token
			},
			user:    AcceptingUser{UserID: "u2", Email: "a@b.com"},
			wantErr: ErrAlreadyConsumed,
		},
		{
			name: "revoked",
			setup: func(t *testing.T, lc *Lifecycle, store *storage.BoltStore) string {
				inv, err := lc.Create("ws-1", "a@b.com", "", "o")
				require.NoError(t, err)
				require.NoError(t, lc.Revoke("ws-1", inv.Token))
				return inv.Token
			},
			user:    AcceptingUser{UserID: "u1", Email: "a@b.com"},
			wantErr: ErrAlreadyConsumed,
		},
		{
			name: "expired",
			setup: func(t *testing.T, lc *Lifecycle, store *storage.BoltStore) string {
				inv, err := lc.Create("ws-1", "a@b.com", "", "o")
				require.NoError(t, err)
				lc.now = func() time.Time { return time.Now().Add(TTL + time.Hour) }
				return inv.Token
			},
			user:    AcceptingUser{UserID: "u1", Email: "a@b.com"},
			wantErr: ErrExpired,
		},
		{
			name: "identity mismatch",
			setup: func(t *testing.T, lc *Lifecycle, store *storage.BoltStore) string {
				inv, err := lc.Create("ws-1", "a@b.com", "", "o")
				require.NoError(t, err)
				return inv.Token
			},
			user:    AcceptingUser{UserID: "u1", Email: "someone-else@b.com"},
			wantErr: ErrIdentityMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc, store := newLifecycle(t)
			token := tt.setup(t, lc, store)

			_, err := lc.Accept("ws-1", token, tt.user)
			assert.ErrorIs(t, err, tt.wantErr)

			// a failed accept never creates a membership
			_, err = store.GetMember("ws-1", tt.user.UserID)
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

// expired-but-wrong-email must report expiry: preconditions are ordered
func TestAcceptExpiryCheckedBeforeIdentity(t *testing.T) {
	lc, _ := newLifecycle(t)

	inv, err := lc.Create("ws-1", "a@b.com", "", "o")
	require.NoError(t, err)
	lc.now = func() time.Time { return time.Now().Add(TTL + time.Hour) }

	_, err = lc.Accept("ws-1", inv.Token, AcceptingUser{UserID: "u1", Email: "wrong@b.com"})
	assert.ErrorIs(t, err, ErrExpired)
}

func TestAcceptConcurrentSingleWinner(t *testing.T) {
	lc, _ := newLifecycle(t)

	inv, err := lc.Create("ws-1", "a@b.com", "", "o")
	require.NoError(t, err)

	const attempts = 8
	errs := make([]error, attempts)
	var wg gosync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = lc.Accept("ws-1", inv.Token, AcceptingUser{
				UserID: "u1",
				Email:  "a@b.com",
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyConsumed)
		}
	}
	assert.Equal(t, 1, winners, "exactly one accept wins")
}

func TestAcceptPreservesExistingMembership(t *testing.T) {
	lc, store := newLifecycle(t)

	joined := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.PutMember(&types.Member{
		UserID:      "u1",
		WorkspaceID: "ws-1",
		Name:        "Original Name",
		Email:       "a@b.com",
		Role:        types.RoleMember,
		Status:      types.MemberStatusInactive,
		ChatID:      "chat-u1",
		JoinedAt:    joined,
	}))

	inv, err := lc.Create("ws-1", "a@b.com", types.RoleAdmin, "o")
	require.NoError(t, err)

	member, err := lc.Accept("ws-1", inv.Token, AcceptingUser{UserID: "u1", Email: "a@b.com"})
	require.NoError(t, err)

	// role and status come from the invite, identity details survive
	assert.Equal(t, types.RoleAdmin, member.Role)
	assert.Equal(t, types.MemberStatusActive, member.Status)
	assert.Equal(t, "chat-u1", member.ChatID)
	assert.Equal(t, joined, member.JoinedAt)
	assert.Equal(t, "Original Name", member.Name, "empty accepting name keeps the stored one")
}

func TestRevoke(t *testing.T) {
	lc, store := newLifecycle(t)

	inv, err := lc.Create("ws-1", "a@b.com", "", "o")
	require.NoError(t, err)

	require.NoError(t, lc.Revoke("ws-1", inv.Token))
	stored, err := store.GetInvite("ws-1", inv.Token)
	require.NoError(t, err)
	assert.Equal(t, types.InviteStatusRevoked, stored.Status)

	// revoking again is a no-op, unknown tokens are not
	assert.NoError(t, lc.Revoke("ws-1", inv.Token))
	assert.ErrorIs(t, lc.Revoke("ws-1", "no-such-token"), ErrNotFound)
}

func TestRevokeDoesNotTouchAccepted(t *testing.T) {
	lc, store := newLifecycle(t)

	inv, err := lc.Create("ws-1", "a@b.com", "", "o")
	require.NoError(t, err)
	_, err = lc.Accept("ws-1", inv.Token, AcceptingUser{UserID: "u1", Email: "a@b.com"})
	require.NoError(t, err)

	require.NoError(t, lc.Revoke("ws-1", inv.Token))
	stored, err := store.GetInvite("ws-1", inv.Token)
	require.NoError(t, err)
	assert.Equal(t, types.InviteStatusAccepted, stored.Status)
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		inv  *types.Invite
		want string
	}{
		{
			name: "pending within ttl",
			inv:  &types.Invite{Status: types.InviteStatusPending, ExpiresAt: now.Add(time.Hour)},
			want: "PENDING",
		},
		{
			name: "pending past ttl reads expired",
			inv:  &types.Invite{Status: types.InviteStatusPending, ExpiresAt: now.Add(-time.Hour)},
			want: "EXPIRED",
		},
		{
			name: "accepted never reads expired",
			inv:  &types.Invite{Status: types.InviteStatusAccepted, ExpiresAt: now.Add(-time.Hour)},
			want: "ACCEPTED",
		},
		{
			name: "revoked stays revoked",
			inv:  &types.Invite{Status: types.InviteStatusRevoked, ExpiresAt: now.Add(-time.Hour)},
			want: "REVOKED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveStatus(tt.inv, now))
		})
	}
}
