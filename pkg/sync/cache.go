package sync

import (
	"sync"
)

// Cache is the local, advisory view of one collection within the active
// workspace. It is written from exactly two places: snapshot replacement by
// the syncer, and scoped optimistic patch/restore by the mutation pipeline.
// The authoritative state always lives in the store; the next snapshot wins.
type Cache[T any] struct {
	mu    sync.RWMutex
	key   func(T) string
	clone func(T) T
	items []T
	index map[string]int
}

// NewCache creates a cache. key extracts the entity id; clone deep-copies an
// entity so callers never share memory with the cache.
func NewCache[T any](key func(T) string, clone func(T) T) *Cache[T] {
	return &Cache[T]{
		key:   key,
		clone: clone,
		index: make(map[string]int),
	}
}

// ReplaceAll swaps in a full snapshot. The previous contents are discarded
// entirely, never merged.
func (c *Cache[T]) ReplaceAll(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make([]T, len(items))
	c.index = make(map[string]int, len(items))
	for i, item := range items {
		c.items[i] = c.clone(item)
		c.index[c.key(item)] = i
	}
}

// Clear empties the cache
func (c *Cache[T]) Clear() {
	c.ReplaceAll(nil)
}

// Get returns a copy of the entity with the given id
func (c *Cache[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.clone(c.items[i]), true
}

// Put replaces the cached entity with the same id, keeping its position.
// Returns false if the id is not cached; optimistic updates only ever touch
// entities that already exist locally.
func (c *Cache[T]) Put(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[c.key(item)]
	if !ok {
		return false
	}
	c.items[i] = c.clone(item)
	return true
}

// Remove drops the entity with the given id. Returns false if absent.
func (c *Cache[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.key(c.items[j])] = j
	}
	return true
}

// Snapshot returns a copy of the full cached collection in order
func (c *Cache[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = c.clone(item)
	}
	return out
}

// Len returns the number of cached entities
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
