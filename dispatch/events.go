package dispatch

import "context"

// Observer receives dispatch lifecycle notifications.
//
// Contract:
// - Concurrency: methods may be called concurrently.
// - Isolation: a panicking or slow observer must not affect the dispatch
//   result; notifications are best-effort.
type Observer interface {
	// CommandRegistered fires when a handler is registered through the
	// dispatcher.
	CommandRegistered(name string)

	// CommandExecuted fires after a dispatch completes, successful or not.
	CommandExecuted(ctx context.Context, name string, result *Result)

	// CommandFailed fires when a handler returns an error or panics.
	CommandFailed(ctx context.Context, name string, err error)

	// CacheHit fires when a dispatch is served from cache.
	CacheHit(ctx context.Context, name string, key string)
}

// observerSet fans notifications out to observers, isolating panics.
type observerSet struct {
	observers []Observer
}

func (s *observerSet) registered(name string) {
	for _, o := range s.observers {
		notify(func() { o.CommandRegistered(name) })
	}
}

func (s *observerSet) executed(ctx context.Context, name string, result *Result) {
	for _, o := range s.observers {
		notify(func() { o.CommandExecuted(ctx, name, result) })
	}
}

func (s *observerSet) failed(ctx context.Context, name string, err error) {
	for _, o := range s.observers {
		notify(func() { o.CommandFailed(ctx, name, err) })
	}
}

func (s *observerSet) cacheHit(ctx context.Context, name, key string) {
	for _, o := range s.observers {
		notify(func() { o.CacheHit(ctx, name, key) })
	}
}

func notify(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
