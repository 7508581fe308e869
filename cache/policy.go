package cache

import (
	"strings"
	"time"
)

// Policy configures result caching behavior.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, caching is disabled by default.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// AllowSideEffects permits caching results of commands tagged as
	// side-effecting (write, deploy, etc.)
	AllowSideEffects bool
}

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 5 minutes, MaxTTL: 1 hour, AllowSideEffects: false
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL:       5 * time.Minute,
		MaxTTL:           1 * time.Hour,
		AllowSideEffects: false,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}

// SkipRule determines whether to skip caching for a command.
// Returns true if caching should be skipped.
type SkipRule func(name string, tags []string) bool

// SideEffectTags mark commands whose results must not be served from cache.
var SideEffectTags = []string{"write", "mutation", "delete", "danger", "deploy"}

// DefaultSkipRule skips caching for commands with side-effect tags.
// Tag matching is case-insensitive.
func DefaultSkipRule(_ string, tags []string) bool {
	for _, tag := range tags {
		tagLower := strings.ToLower(tag)
		for _, unsafe := range SideEffectTags {
			if tagLower == unsafe {
				return true
			}
		}
	}
	return false
}
