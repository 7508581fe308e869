package permission

import (
	"sort"
	"sync"
)

// Store holds the permission rule set.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Ordering: Rules returns enabled and disabled rules sorted by priority
//   descending; ties keep insertion order.
type Store struct {
	mu    sync.RWMutex
	rules []Rule
	byID  map[string]int
}

// NewStore creates an empty rule store.
func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Add validates and inserts a rule. Duplicate IDs are an error, not an
// overwrite.
func (s *Store) Add(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[rule.ID]; exists {
		return ErrDuplicateRule
	}
	s.byID[rule.ID] = len(s.rules)
	s.rules = append(s.rules, rule)
	return nil
}

// Remove deletes a rule by ID, reporting whether it was present.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return false
	}
	s.rules = append(s.rules[:idx], s.rules[idx+1:]...)
	delete(s.byID, id)
	for i := idx; i < len(s.rules); i++ {
		s.byID[s.rules[i].ID] = i
	}
	return true
}

// SetEnabled toggles a rule, reporting whether it was present.
func (s *Store) SetEnabled(id string, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return false
	}
	s.rules[idx].Enabled = enabled
	return true
}

// Get returns a rule by ID.
func (s *Store) Get(id string) (Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return Rule{}, false
	}
	return s.rules[idx], true
}

// Rules returns a copy of all rules sorted by priority descending.
func (s *Store) Rules() []Rule {
	s.mu.RLock()
	rules := make([]Rule, len(s.rules))
	copy(rules, s.rules)
	s.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules
}

// Len returns the number of stored rules.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}
