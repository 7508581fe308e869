package dispatch

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds command handlers indexed by name and alias.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Uniqueness: a name or alias registers at most once; collisions fail the
//   whole registration.
// - Unregister removes the name and all its aliases atomically.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	aliases  map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		aliases:  make(map[string]string),
	}
}

// Register adds a handler under its name and aliases. Any collision with an
// existing name or alias rejects the whole registration.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return &CommandError{
			Code:    CodeDuplicateCommand,
			Message: "cannot register nil handler",
			Err:     ErrNilHandler,
		}
	}
	name := h.Name()
	if name == "" {
		return &CommandError{
			Code:    CodeDuplicateCommand,
			Message: "cannot register handler without a name",
			Err:     ErrNilHandler,
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.takenLocked(name) {
		return &CommandError{
			Code:    CodeDuplicateCommand,
			Message: fmt.Sprintf("command %q is already registered", name),
			Err:     ErrDuplicateCommand,
		}
	}
	for _, alias := range h.Aliases() {
		if alias == name || r.takenLocked(alias) {
			return &CommandError{
				Code:    CodeDuplicateCommand,
				Message: fmt.Sprintf("alias %q is already registered", alias),
				Err:     ErrDuplicateCommand,
			}
		}
	}

	r.handlers[name] = h
	for _, alias := range h.Aliases() {
		r.aliases[alias] = name
	}
	return nil
}

// Unregister removes the named handler and all its aliases, reporting
// whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handlers[name]
	if !ok {
		return false
	}
	delete(r.handlers, name)
	for _, alias := range h.Aliases() {
		delete(r.aliases, alias)
	}
	return true
}

// Resolve finds a handler by name or alias.
func (r *Registry) Resolve(nameOrAlias string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if h, ok := r.handlers[nameOrAlias]; ok {
		return h, true
	}
	if name, ok := r.aliases[nameOrAlias]; ok {
		return r.handlers[name], true
	}
	return nil, false
}

// Names returns the registered primary names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

func (r *Registry) takenLocked(name string) bool {
	if _, ok := r.handlers[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}
