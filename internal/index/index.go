// Package index implements a concurrent path-to-skeleton map, sharded by
// an FNV hash of the key, mirroring the bucketed-lock design of
// lci's internal/core.ShardedTrigramStorage (a trigram-hash -> postings map)
// applied instead to a path -> FileSkeleton map. Per-shard locking lets many
// readers and the single writer (the scanner/watcher) proceed without a
// single global mutex serializing every snapshot against every update.
package index

import (
	"hash/fnv"
	"sync"

	"github.com/ramigb/semantic-skeletonizer/internal/skeleton"
)

const shardCount = 16

type shard struct {
	mu      sync.RWMutex
	entries map[string]skeleton.FileSkeleton
}

// Index is a concurrent path -> FileSkeleton map. The zero value is not
// usable; construct with New.
type Index struct {
	shards [shardCount]*shard
}

// New creates an empty Index.
func New() *Index {
	idx := &Index{}
	for i := range idx.shards {
		idx.shards[i] = &shard{entries: make(map[string]skeleton.FileSkeleton)}
	}
	return idx
}

func (idx *Index) shardFor(path string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return idx.shards[h.Sum32()%shardCount]
}

// Set inserts or wholesale-replaces the skeleton for path.
func (idx *Index) Set(path string, fs skeleton.FileSkeleton) {
	s := idx.shardFor(path)
	s.mu.Lock()
	s.entries[path] = fs
	s.mu.Unlock()
}

// Get returns the skeleton for path and whether it was present.
func (idx *Index) Get(path string) (skeleton.FileSkeleton, bool) {
	s := idx.shardFor(path)
	s.mu.RLock()
	defer s.mu.RUnlock()
	fs, ok := s.entries[path]
	return fs, ok
}

// Delete removes path from the index, if present. Not used by the sweep or
// watcher today — there is no delete-on-removal in the current contract —
// but kept so a future handler for remove/rename events (a documented
// gap) has a correct primitive to call.
func (idx *Index) Delete(path string) {
	s := idx.shardFor(path)
	s.mu.Lock()
	delete(s.entries, path)
	s.mu.Unlock()
}

// Len returns the number of indexed paths.
func (idx *Index) Len() int {
	total := 0
	for _, s := range idx.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Empty reports whether the index has no entries.
func (idx *Index) Empty() bool {
	return idx.Len() == 0
}

// Snapshot returns a point-in-time-per-shard copy of every (path, skeleton)
// pair. Entries from different shards may reflect writes at slightly
// different instants, but each individual entry is never torn — strict
// cross-key consistency is not required here.
func (idx *Index) Snapshot() map[string]skeleton.FileSkeleton {
	out := make(map[string]skeleton.FileSkeleton, idx.Len())
	for _, s := range idx.shards {
		s.mu.RLock()
		for path, fs := range s.entries {
			out[path] = fs
		}
		s.mu.RUnlock()
	}
	return out
}

// Paths returns every indexed path. Order is unspecified and may differ
// across calls — callers building resources/list must not depend on a
// stable ordering.
func (idx *Index) Paths() []string {
	paths := make([]string, 0, idx.Len())
	for _, s := range idx.shards {
		s.mu.RLock()
		for path := range s.entries {
			paths = append(paths, path)
		}
		s.mu.RUnlock()
	}
	return paths
}
