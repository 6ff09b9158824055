package sync

import (
	"slices"
	"sync"
)

// ShardedMutex provides fine-grained locking using sharded mutexes.
// Instead of a single global lock, operations are distributed across N shards
// based on a hash of the resource key, reducing contention under concurrent load.
type ShardedMutex struct {
	shards [32]sync.Mutex
}

// NewShardedMutex creates a new ShardedMutex with 32 shards.
func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

// LockMany acquires the shards for every key in ascending shard order and
// returns the function that releases them. Keys sharing a shard lock it once,
// so callers may pass overlapping or duplicate keys without self-deadlock.
// Two goroutines locking any mix of keys can never wait on each other in a cycle.
func (m *ShardedMutex) LockMany(keys ...string) (unlock func()) {
	shards := m.shardsFor(keys)
	for _, s := range shards {
		m.shards[s].Lock()
	}
	return func() {
		for i := len(shards) - 1; i >= 0; i-- {
			m.shards[shards[i]].Unlock()
		}
	}
}

// shardsFor returns the distinct shard indexes for keys, sorted ascending.
func (m *ShardedMutex) shardsFor(keys []string) []int {
	if len(keys) == 0 {
		return []int{0}
	}
	shards := make([]int, 0, len(keys))
	for _, k := range keys {
		shards = append(shards, m.shardFor(k))
	}
	slices.Sort(shards)
	return slices.Compact(shards)
}

// shardFor returns the shard index for the given key.
func (m *ShardedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(hashString(key) % uint32(len(m.shards)))
}

// hashString provides a simple hash for shard selection.
// Uses djb2-style hashing for good distribution.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
