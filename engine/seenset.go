package engine

import (
	"hash/fnv"
	"sync"
)

const defaultShardCount = 32

// ShardedSet is the per-site dedup set: a lock-striped set of URL
// paths, generalized from a single-mutex set into shards so insertion
// doesn't serialize every fetch behind one lock under high
// parallelism. The contract is atomic test-and-insert: Insert reports
// whether the key was newly admitted.
//
// Keyed by URL path only, not the full URL: two URLs that share a
// path but differ by query string collide and the second is dropped.
// This is a known, intentional limitation, not a bug.
type ShardedSet struct {
	shards []*seenShard
}

type seenShard struct {
	mu sync.Mutex
	m  map[string]struct{}
}

func NewShardedSet(shardCount int) *ShardedSet {
	if shardCount < 1 {
		shardCount = defaultShardCount
	}
	shards := make([]*seenShard, shardCount)
	for i := range shards {
		shards[i] = &seenShard{m: make(map[string]struct{})}
	}
	return &ShardedSet{shards: shards}
}

func (s *ShardedSet) shardFor(key string) *seenShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Insert reports true if key was not previously present (and is now),
// false if it was already present.
func (s *ShardedSet) Insert(key string) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.m[key]; ok {
		return false
	}
	sh.m[key] = struct{}{}
	return true
}

func (s *ShardedSet) Size() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.m)
		sh.mu.Unlock()
	}
	return total
}
