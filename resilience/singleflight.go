package resilience

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Group coalesces concurrent executions that share a key: while one
// execution for a key is in flight, later callers wait for its result
// instead of executing again.
type Group struct {
	sf singleflight.Group
}

// NewGroup creates a new single-flight group.
func NewGroup() *Group {
	return &Group{}
}

// Do runs op once per key among concurrent callers. The second return value
// reports whether the result was shared from another caller's execution.
func (g *Group) Do(ctx context.Context, key string, op func(context.Context) (any, error)) (any, bool, error) {
	result, err, shared := g.sf.Do(key, func() (any, error) {
		return op(ctx)
	})
	return result, shared, err
}

// Forget drops the in-flight record for a key so the next call executes
// fresh.
func (g *Group) Forget(key string) {
	g.sf.Forget(key)
}
