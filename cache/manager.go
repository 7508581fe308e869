package cache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jonwraymond/cmdops/resilience"
)

// MaxPatternLength caps invalidation patterns before regexp compilation is
// attempted; longer patterns are matched as literal substrings.
const MaxPatternLength = 256

// Manager fans cache operations out across an ordered list of providers.
//
// Contract:
// - Reads scan providers in configured order; the first hit wins. No
//   cross-provider promotion is performed.
// - Writes, deletes and clears broadcast to every provider independently;
//   a failing provider never blocks the others (best-effort, not
//   transactional).
// - Concurrency: safe for concurrent use.
type Manager struct {
	providers []Adapter
	breakers  map[string]*resilience.CircuitBreaker
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithProviderBreakers wraps every provider's writes in a circuit breaker
// so a persistently failing adapter is skipped until it recovers.
func WithProviderBreakers(config resilience.CircuitBreakerConfig) ManagerOption {
	return func(m *Manager) {
		m.breakers = make(map[string]*resilience.CircuitBreaker, len(m.providers))
		for _, p := range m.providers {
			m.breakers[p.Name()] = resilience.NewCircuitBreaker(config)
		}
	}
}

// NewManager creates a manager over the given providers. Provider order is
// significant: reads return the first hit.
func NewManager(providers []Adapter, opts ...ManagerOption) (*Manager, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	for _, p := range providers {
		if p == nil {
			return nil, ErrNilAdapter
		}
	}

	m := &Manager{providers: providers}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Get scans providers in order and returns the first hit.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool) {
	for _, p := range m.providers {
		if m.skip(p) {
			continue
		}
		if value, ok := p.Get(ctx, key); ok {
			return value, true
		}
	}
	return nil, false
}

// Set broadcasts the value to every provider. Per-provider failures are
// collected and returned joined; callers treat the result as advisory.
func (m *Manager) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var errs []error
	for _, p := range m.providers {
		if err := m.guarded(ctx, p, func(ctx context.Context) error {
			return p.Set(ctx, key, value, ttl)
		}); err != nil {
			errs = append(errs, fmt.Errorf("provider %s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Delete removes the key from every provider, reporting whether any
// provider held it.
func (m *Manager) Delete(ctx context.Context, key string) bool {
	deleted := false
	for _, p := range m.providers {
		if p.Delete(ctx, key) {
			deleted = true
		}
	}
	return deleted
}

// Clear clears every provider, returning joined per-provider failures.
func (m *Manager) Clear(ctx context.Context) error {
	var errs []error
	for _, p := range m.providers {
		if err := m.guarded(ctx, p, p.Clear); err != nil {
			errs = append(errs, fmt.Errorf("provider %s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Has reports whether any provider holds a live entry for the key.
func (m *Manager) Has(ctx context.Context, key string) bool {
	for _, p := range m.providers {
		if p.Has(ctx, key) {
			return true
		}
	}
	return false
}

// Keys returns the union of all providers' keys.
func (m *Manager) Keys(ctx context.Context) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, p := range m.providers {
		for _, k := range p.Keys(ctx) {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Invalidate deletes every key matching pattern from every provider and
// returns the number of deletions. The pattern is compiled as a regular
// expression; when compilation fails or the pattern exceeds
// MaxPatternLength it is matched as a literal substring instead, so a
// malformed pattern never propagates to the caller.
func (m *Manager) Invalidate(ctx context.Context, pattern string) int {
	matches := compileMatcher(pattern)

	removed := 0
	for _, p := range m.providers {
		for _, key := range p.Keys(ctx) {
			if matches(key) && p.Delete(ctx, key) {
				removed++
			}
		}
	}
	return removed
}

// Stats returns a per-provider statistics snapshot keyed by adapter name.
func (m *Manager) Stats() map[string]Stats {
	stats := make(map[string]Stats, len(m.providers))
	for _, p := range m.providers {
		stats[p.Name()] = p.Stats()
	}
	return stats
}

// guarded runs op through the provider's circuit breaker when breakers are
// configured.
func (m *Manager) guarded(ctx context.Context, p Adapter, op func(context.Context) error) error {
	if cb, ok := m.breakers[p.Name()]; ok {
		return cb.Execute(ctx, op)
	}
	return op(ctx)
}

// skip reports whether reads should bypass a provider whose breaker is open.
func (m *Manager) skip(p Adapter) bool {
	cb, ok := m.breakers[p.Name()]
	return ok && cb.State() == resilience.StateOpen
}

func compileMatcher(pattern string) func(string) bool {
	if len(pattern) > MaxPatternLength {
		return func(key string) bool { return strings.Contains(key, pattern) }
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return func(key string) bool { return strings.Contains(key, pattern) }
	}
	return re.MatchString
}
