package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// Adapter is the contract implemented by every cache provider.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get never errors; it returns (nil, false) on miss, expiry, or
//   any I/O failure. Set/Clear report failures; callers treat the cache as
//   best-effort and must not let adapter errors affect correctness.
// - Stats: every operation updates the adapter's running statistics.
type Adapter interface {
	// Name identifies the adapter (e.g. "memory", "file").
	Name() string

	// Get retrieves a cached value, bumping its access metadata.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL. TTL<=0 stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value, reporting whether it was present.
	Delete(ctx context.Context, key string) bool

	// Clear removes all values.
	Clear(ctx context.Context) error

	// Keys lists the currently stored keys, order unspecified.
	Keys(ctx context.Context) []string

	// Has reports whether a live (non-expired) entry exists without
	// touching access metadata or hit/miss counters.
	Has(ctx context.Context, key string) bool

	// Stats returns a snapshot of the adapter's statistics.
	Stats() Stats
}

// Stats is a snapshot of an adapter's running statistics. The counters are
// monotonically increasing; the gauges reflect current state and never go
// negative.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Sets      int64 `json:"sets"`
	Deletes   int64 `json:"deletes"`
	Evictions int64 `json:"evictions"`

	// Size is the current number of live entries.
	Size int64 `json:"size"`

	// Memory is the estimated current memory footprint in bytes.
	Memory int64 `json:"memory"`
}

// counters tracks the monotonic half of Stats with atomics so adapters can
// update them outside their main lock.
type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64
}

// snapshot builds a Stats from the counters plus caller-supplied gauges,
// clamping the gauges at zero.
func (c *counters) snapshot(size, memory int64) Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Deletes:   c.deletes.Load(),
		Evictions: c.evictions.Load(),
		Size:      max(size, 0),
		Memory:    max(memory, 0),
	}
}
