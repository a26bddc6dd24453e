package sync

import (
	"fmt"
	gosync "sync"

	"github.com/loftlab/huddle/pkg/events"
	"github.com/loftlab/huddle/pkg/log"
	"github.com/loftlab/huddle/pkg/metrics"
	"github.com/loftlab/huddle/pkg/types"
	"github.com/rs/zerolog"
)

// SnapshotFunc receives a full replacement snapshot of the subscribed
// collection. Implementations must replace their entire view, not patch it.
type SnapshotFunc[T any] func(items []T)

// Syncer keeps a Cache consistent with the store for one collection of one
// workspace at a time. It listens for change events on the broker; any event
// for the active (workspace, collection) pair triggers a full re-read and a
// full snapshot delivery. Events are only invalidation signals, so several
// store writes may coalesce into a single snapshot. The latest state is
// always delivered eventually.
type Syncer[T any] struct {
	collection types.Collection
	list       func(workspaceID string) ([]T, error)
	broker     *events.Broker
	cache      *Cache[T]
	logger     zerolog.Logger

	mu     gosync.Mutex
	active *subscription
}

type subscription struct {
	workspaceID string
	sub         events.Subscriber
	stopCh      chan struct{}
	done        chan struct{}
	stopOnce    gosync.Once
}

// NewSyncer creates a syncer for one collection. list reads the full ordered
// collection from the store.
func NewSyncer[T any](collection types.Collection, broker *events.Broker, cache *Cache[T], list func(workspaceID string) ([]T, error)) *Syncer[T] {
	return &Syncer[T]{
		collection: collection,
		list:       list,
		broker:     broker,
		cache:      cache,
		logger:     log.WithComponent("sync." + string(collection)),
	}
}

// Cache returns the local view this syncer maintains
func (s *Syncer[T]) Cache() *Cache[T] {
	return s.cache
}

// Subscribe activates syncing for workspaceID and returns an unsubscribe
// function. Any previously active subscription is dropped first, so
// snapshots never leak across workspaces. An empty workspaceID only drops
// the previous subscription and clears the cache.
//
// The initial snapshot is delivered synchronously before Subscribe returns;
// later snapshots arrive on the syncer's goroutine. onSnapshot may be nil
// for callers that only need the cache kept current.
//
// The returned unsubscribe function is idempotent and safe to call
// concurrently with an ongoing workspace switch.
func (s *Syncer[T]) Subscribe(workspaceID string, onSnapshot SnapshotFunc[T]) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop the previous workspace before touching the new one
	s.dropActiveLocked()
	s.cache.Clear()

	if workspaceID == "" {
		if onSnapshot != nil {
			onSnapshot(nil)
		}
		return func() {}, nil
	}

	items, err := s.list(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("initial snapshot for %s/%s: %w", workspaceID, s.collection, err)
	}
	s.cache.ReplaceAll(items)
	if onSnapshot != nil {
		onSnapshot(items)
	}
	metrics.SnapshotsDelivered.WithLabelValues(string(s.collection)).Inc()

	active := &subscription{
		workspaceID: workspaceID,
		sub:         s.broker.Subscribe(),
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
	}
	s.active = active

	go s.run(active, onSnapshot)

	unsubscribe := func() {
		active.stopOnce.Do(func() {
			close(active.stopCh)
		})
		<-active.done

		s.mu.Lock()
		if s.active == active {
			s.active = nil
			s.cache.Clear()
		}
		s.mu.Unlock()
	}
	return unsubscribe, nil
}

// dropActiveLocked stops the current subscription, if any. Caller holds s.mu.
func (s *Syncer[T]) dropActiveLocked() {
	if s.active == nil {
		return
	}
	active := s.active
	s.active = nil
	active.stopOnce.Do(func() {
		close(active.stopCh)
	})
	<-active.done
}

func (s *Syncer[T]) run(sub *subscription, onSnapshot SnapshotFunc[T]) {
	defer close(sub.done)
	defer s.broker.Unsubscribe(sub.sub)

	for {
		select {
		case event, ok := <-sub.sub:
			if !ok {
				return
			}
			if !s.relevant(sub.workspaceID, event) {
				continue
			}
			// Coalesce any queued events into one re-read
			s.drain(sub)
			s.refresh(sub, onSnapshot)
		case <-sub.stopCh:
			return
		}
	}
}

func (s *Syncer[T]) relevant(workspaceID string, event *events.Event) bool {
	return event != nil && event.WorkspaceID == workspaceID && event.Collection == s.collection
}

func (s *Syncer[T]) drain(sub *subscription) {
	for {
		select {
		case <-sub.sub:
		default:
			return
		}
	}
}

func (s *Syncer[T]) refresh(sub *subscription, onSnapshot SnapshotFunc[T]) {
	items, err := s.list(sub.workspaceID)
	if err != nil {
		// Keep the previous view; the next event retries
		s.logger.Error().Err(err).Str("workspace_id", sub.workspaceID).Msg("snapshot refresh failed")
		return
	}

	select {
	case <-sub.stopCh:
		// Unsubscribed while reading; do not deliver a late snapshot
		return
	default:
	}

	s.cache.ReplaceAll(items)
	if onSnapshot != nil {
		onSnapshot(items)
	}
	metrics.SnapshotsDelivered.WithLabelValues(string(s.collection)).Inc()
}
