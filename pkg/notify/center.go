package notify

import (
	"errors"
	"fmt"

	"github.com/loftlab/huddle/pkg/log"
	"github.com/loftlab/huddle/pkg/storage"
	"github.com/loftlab/huddle/pkg/sync"
	"github.com/loftlab/huddle/pkg/types"
	"github.com/rs/zerolog"
)

// Center exposes the notification inbox operations: list, acknowledge,
// delete, clear. Acknowledgement only ever grows a notification's ReadBy
// set; nothing else may mutate a stored notification.
type Center struct {
	store  storage.Store
	cache  *sync.Cache[*types.Notification]
	logger zerolog.Logger
}

// NewCenter creates a notification center. cache may be nil when no live
// session is attached; it is only needed for local-only removals.
func NewCenter(store storage.Store, cache *sync.Cache[*types.Notification]) *Center {
	return &Center{
		store:  store,
		cache:  cache,
		logger: log.WithComponent("notify.center"),
	}
}

// List returns the workspace's notifications visible to userID, newest
// first. An empty userID lists everything.
func (c *Center) List(workspaceID, userID string) ([]*types.Notification, error) {
	all, err := c.store.ListNotifications(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if userID == "" {
		return all, nil
	}
	visible := []*types.Notification{}
	for _, n := range all {
		if n.VisibleTo(userID) {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

// MarkRead records that userID acknowledged the notification. Idempotent.
func (c *Center) MarkRead(workspaceID, notificationID, userID string) error {
	if err := c.markRead(workspaceID, notificationID, userID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// markRead appends userID to ReadBy inside one write transaction. The set
// only ever grows: a concurrent acknowledgement by another member commits
// before or after this one, never underneath it.
func (c *Center) markRead(workspaceID, notificationID, userID string) error {
	return c.store.Atomically(func(tx storage.Txn) error {
		n, err := tx.GetNotification(workspaceID, notificationID)
		if err != nil {
			return err
		}
		if n.IsReadBy(userID) {
			return nil
		}
		n.ReadBy = append(n.ReadBy, userID)
		return tx.PutNotification(n)
	})
}

// MarkAllRead acknowledges every notification visible to userID
func (c *Center) MarkAllRead(workspaceID, userID string) error {
	visible, err := c.List(workspaceID, userID)
	if err != nil {
		return err
	}
	for _, n := range visible {
		if n.IsReadBy(userID) {
			continue
		}
		if err := c.markRead(workspaceID, n.ID, userID); err != nil {
			return fmt.Errorf("mark all read: %w", err)
		}
	}
	return nil
}

// Delete removes a notification. Deleting one the store no longer has is a
// local-only removal: the cached copy is dropped and no error is returned,
// since the user's intent (make it go away) is already satisfied.
func (c *Center) Delete(workspaceID, notificationID string) error {
	err := c.store.DeleteNotification(workspaceID, notificationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			if c.cache != nil {
				c.cache.Remove(notificationID)
			}
			c.logger.Debug().Str("notification_id", notificationID).Msg("notification absent remotely, removed locally")
			return nil
		}
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// Clear deletes every notification in the workspace
func (c *Center) Clear(workspaceID string) error {
	all, err := c.store.ListNotifications(workspaceID)
	if err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	for _, n := range all {
		if err := c.Delete(workspaceID, n.ID); err != nil {
			return err
		}
	}
	return nil
}
