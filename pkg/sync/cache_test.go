package sync

import (
	"testing"

	"github.com/loftlab/huddle/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskCache() *Cache[*types.Task] {
	return NewCache(
		func(t *types.Task) string { return t.ID },
		func(t *types.Task) *types.Task { return t.Clone() },
	)
}

func TestCacheReplaceAll(t *testing.T) {
	cache := newTaskCache()
	cache.ReplaceAll([]*types.Task{
		{ID: "t1", Title: "one"},
		{ID: "t2", Title: "two"},
	})
	assert.Equal(t, 2, cache.Len())

	// full replacement discards entries not in the new snapshot
	cache.ReplaceAll([]*types.Task{{ID: "t3", Title: "three"}})
	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("t1")
	assert.False(t, ok)
	got, ok := cache.Get("t3")
	require.True(t, ok)
	assert.Equal(t, "three", got.Title)
}

func TestCacheGetReturnsCopy(t *testing.T) {
	cache := newTaskCache()
	cache.ReplaceAll([]*types.Task{{ID: "t1", Title: "original", AssigneeIDs: []string{"u1"}}})

	got, ok := cache.Get("t1")
	require.True(t, ok)
	got.Title = "mutated"
	got.AssigneeIDs[0] = "u2"

	again, _ := cache.Get("t1")
	assert.Equal(t, "original", again.Title)
	assert.Equal(t, []string{"u1"}, again.AssigneeIDs)
}

func TestCachePut(t *testing.T) {
	cache := newTaskCache()
	cache.ReplaceAll([]*types.Task{
		{ID: "t1", Title: "one"},
		{ID: "t2", Title: "two"},
	})

	// Put replaces in place, keeping order
	assert.True(t, cache.Put(&types.Task{ID: "t1", Title: "one patched"}))
	snapshot := cache.Snapshot()
	assert.Equal(t, "one patched", snapshot[0].Title)
	assert.Equal(t, "two", snapshot[1].Title)

	// Put never inserts
	assert.False(t, cache.Put(&types.Task{ID: "t9", Title: "stranger"}))
	assert.Equal(t, 2, cache.Len())
}

func TestCacheRemove(t *testing.T) {
	cache := newTaskCache()
	cache.ReplaceAll([]*types.Task{
		{ID: "t1"}, {ID: "t2"}, {ID: "t3"},
	})

	assert.True(t, cache.Remove("t2"))
	assert.False(t, cache.Remove("t2"))

	// index stays consistent after the shift
	got, ok := cache.Get("t3")
	require.True(t, ok)
	assert.Equal(t, "t3", got.ID)
	assert.Equal(t, []string{"t1", "t3"}, ids(cache.Snapshot()))
}

func ids(tasks []*types.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}
