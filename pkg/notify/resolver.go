package notify

import (
	"github.com/loftlab/huddle/pkg/types"
)

// ResolveInApp computes the user ids that must see an in-app notification
// about an entity. Explicit assignees win; with no assignee the ACTIVE
// administrators (OWNER/ADMIN) are notified instead. The returned slice is
// deduplicated and order-stable.
//
// When neither tier yields anyone, nil is returned: a notification with nil
// Recipients is visible to every member, which is the right reading of an
// entity no one in particular owns.
func ResolveInApp(assigneeIDs []string, members []*types.Member) []string {
	recipients := dedup(assigneeIDs)
	if len(recipients) > 0 {
		return recipients
	}

	for _, m := range members {
		if m.Role.Administrative() && m.Status == types.MemberStatusActive {
			recipients = append(recipients, m.UserID)
		}
	}
	if recipients = dedup(recipients); len(recipients) == 0 {
		return nil
	}
	return recipients
}

// ResolveChannelAddresses collects the external channel addresses for a
// change: every assignee with a configured address, plus the acting user's
// own address when the actor is not among the assignees (the actor gets a
// confirmation). Members without an address are silently skipped.
func ResolveChannelAddresses(assigneeIDs []string, members []*types.Member, actingUserID string) []string {
	byID := make(map[string]*types.Member, len(members))
	for _, m := range members {
		byID[m.UserID] = m
	}

	addresses := []string{}
	actorAssigned := false
	for _, id := range assigneeIDs {
		if id == actingUserID {
			actorAssigned = true
		}
		if m, ok := byID[id]; ok && m.ChatID != "" {
			addresses = append(addresses, m.ChatID)
		}
	}
	if actingUserID != "" && !actorAssigned {
		if m, ok := byID[actingUserID]; ok && m.ChatID != "" {
			addresses = append(addresses, m.ChatID)
		}
	}
	return dedup(addresses)
}

func dedup(in []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
