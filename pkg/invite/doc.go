/*
Package invite manages workspace invitations end to end.

An invite is a token-keyed, email-bound offer to join a workspace with a
given role. It moves through a small state machine:

	PENDING ──accept──▶ ACCEPTED   (terminal)
	PENDING ──revoke──▶ REVOKED    (terminal)
	PENDING ──7 days──▶ expired    (computed, never stored)

Expiry is lazy: the stored status stays PENDING and readers compute
"expired" from ExpiresAt at look time. EffectiveStatus is the display
helper for that.

# Acceptance

Accept runs inside the store's atomic transaction and checks its
preconditions in a fixed order, each with its own error:

	1. token exists in the workspace        ErrNotFound
	2. status is PENDING                    ErrAlreadyConsumed
	3. TTL has not elapsed                  ErrExpired
	4. email matches, case-insensitively    ErrIdentityMismatch

When all four hold, the member upsert and the invite flip commit as one
unit. Two clients racing on the same token serialize in the store: one
wins, the other observes ACCEPTED at step 2. An existing membership is
upgraded in place, keeping its chat address and join date.

# See Also

  - pkg/storage for the Atomically primitive acceptance runs in
  - pkg/notify for the member-joined notification on acceptance
*/
package invite
