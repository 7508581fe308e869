package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// EvictionPolicy selects which entries the memory adapter removes first when
// the memory budget would be exceeded.
type EvictionPolicy string

const (
	// EvictLRU removes the entry with the oldest LastAccessed first.
	EvictLRU EvictionPolicy = "lru"
	// EvictLFU removes the entry with the lowest AccessCount first.
	EvictLFU EvictionPolicy = "lfu"
	// EvictTTL removes the entry with the oldest Timestamp first.
	EvictTTL EvictionPolicy = "ttl"
)

// DefaultMaxMemory is the default memory budget for the memory adapter.
const DefaultMaxMemory = 10 << 20 // 10 MiB

// entryOverhead approximates per-entry bookkeeping cost beyond key and value
// bytes.
const entryOverhead = 64

// MemoryConfig configures the memory adapter.
type MemoryConfig struct {
	// MaxMemory is the memory budget in bytes. Default: DefaultMaxMemory.
	MaxMemory int64

	// Eviction selects the eviction policy. Default: EvictLRU.
	Eviction EvictionPolicy
}

// MemoryAdapter is an in-process cache backed by a key to Entry map with a
// memory budget and configurable eviction.
type MemoryAdapter struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	memory   int64
	config   MemoryConfig
	counters counters
}

// NewMemoryAdapter creates a memory adapter with the given configuration.
func NewMemoryAdapter(config MemoryConfig) *MemoryAdapter {
	if config.MaxMemory <= 0 {
		config.MaxMemory = DefaultMaxMemory
	}
	if config.Eviction == "" {
		config.Eviction = EvictLRU
	}

	return &MemoryAdapter{
		entries: make(map[string]*Entry),
		config:  config,
	}
}

// Name returns "memory".
func (m *MemoryAdapter) Name() string { return "memory" }

// Get retrieves a value. Expired entries are removed and counted as misses
// before the access metadata is touched.
func (m *MemoryAdapter) Get(_ context.Context, key string) ([]byte, bool) {
	now := time.Now()

	m.mu.Lock()
	entry, ok := m.entries[key]
	if !ok {
		m.mu.Unlock()
		m.counters.misses.Add(1)
		return nil, false
	}
	if entry.Expired(now) {
		m.removeLocked(key, entry)
		m.mu.Unlock()
		m.counters.misses.Add(1)
		return nil, false
	}

	entry.AccessCount++
	entry.LastAccessed = now
	value := entry.Value
	m.mu.Unlock()

	m.counters.hits.Add(1)
	return value, true
}

// Set stores a value, evicting entries per the configured policy when the
// memory budget would be exceeded.
func (m *MemoryAdapter) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	size := entrySize(key, value)
	if size > m.config.MaxMemory {
		return ErrValueTooLarge
	}

	now := time.Now()
	entry := &Entry{
		Value:        value,
		Timestamp:    now,
		TTL:          ttl,
		LastAccessed: now,
	}

	m.mu.Lock()
	if old, ok := m.entries[key]; ok {
		m.removeLocked(key, old)
	}
	if m.memory+size > m.config.MaxMemory {
		m.evictLocked(m.config.MaxMemory - size)
	}
	m.entries[key] = entry
	m.memory += size
	m.mu.Unlock()

	m.counters.sets.Add(1)
	return nil
}

// Delete removes a value, reporting whether it was present.
func (m *MemoryAdapter) Delete(_ context.Context, key string) bool {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok {
		m.removeLocked(key, entry)
	}
	m.mu.Unlock()

	if ok {
		m.counters.deletes.Add(1)
	}
	return ok
}

// Clear removes all values. Counters are retained; gauges reset.
func (m *MemoryAdapter) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]*Entry)
	m.memory = 0
	m.mu.Unlock()
	return nil
}

// Keys lists the currently stored keys.
func (m *MemoryAdapter) Keys(_ context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

// Has reports whether a live entry exists.
func (m *MemoryAdapter) Has(_ context.Context, key string) bool {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	return ok && !entry.Expired(now)
}

// Stats returns a snapshot of the adapter's statistics.
func (m *MemoryAdapter) Stats() Stats {
	m.mu.Lock()
	size := int64(len(m.entries))
	memory := m.memory
	m.mu.Unlock()

	return m.counters.snapshot(size, memory)
}

// removeLocked deletes an entry and adjusts the memory gauge. Caller holds
// the lock.
func (m *MemoryAdapter) removeLocked(key string, entry *Entry) {
	delete(m.entries, key)
	m.memory -= entrySize(key, entry.Value)
	if m.memory < 0 {
		m.memory = 0
	}
}

// evictLocked removes entries per the configured policy until the memory
// gauge is at or below target. Caller holds the lock.
func (m *MemoryAdapter) evictLocked(target int64) {
	type candidate struct {
		key   string
		entry *Entry
	}

	candidates := make([]candidate, 0, len(m.entries))
	for k, e := range m.entries {
		candidates = append(candidates, candidate{key: k, entry: e})
	}

	switch m.config.Eviction {
	case EvictLFU:
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].entry.AccessCount < candidates[j].entry.AccessCount
		})
	case EvictTTL:
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].entry.Timestamp.Before(candidates[j].entry.Timestamp)
		})
	default: // EvictLRU
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].entry.LastAccessed.Before(candidates[j].entry.LastAccessed)
		})
	}

	for _, c := range candidates {
		if m.memory <= target {
			break
		}
		m.removeLocked(c.key, c.entry)
		m.counters.evictions.Add(1)
	}
}

func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value) + entryOverhead)
}

// Ensure MemoryAdapter implements Adapter
var _ Adapter = (*MemoryAdapter)(nil)
