// Package contentcache defines the content-addressed cache contract used
// by the table parameter search (spec §4.7.3 "Cache per crop-hash to
// avoid recomputation") and, optionally, LLM enhancement results. The
// core never depends on a particular backing store (spec §6 "Persisted
// state: none required by the core. Optional on-disk caches are opaque to
// the core"); concrete stores live behind this interface in sibling
// packages such as contentcache/s3cache.
package contentcache

import (
	"context"
	"sync"
)

// Store is a content-addressed, mutex-guarded read-through cache (spec
// §5 "Table extraction cache: keyed by crop content-hash, globally
// shared with mutex-guarded read-through").
type Store interface {
	// Get returns the cached value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores value under key.
	Put(ctx context.Context, key string, value []byte) error
}

// Memory is an in-process Store, the default when no external cache is
// configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}
