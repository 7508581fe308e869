package dispatch

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryCapacity is the per-session history bound.
const DefaultHistoryCapacity = 100

// HistoryEntry records one dispatched command.
type HistoryEntry struct {
	ID        string        `json:"id"`
	Session   string        `json:"session"`
	Command   string        `json:"command"`
	Raw       string        `json:"raw"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	CacheHit  bool          `json:"cache_hit"`
	Error     string        `json:"error,omitempty"`
}

// History keeps a bounded per-session FIFO of dispatched commands.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Bounded: each session retains at most the configured capacity; the
//   oldest entries drop first.
type History struct {
	mu       sync.Mutex
	capacity int
	sessions map[string][]HistoryEntry
}

// NewHistory creates a history with the given per-session capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		capacity: capacity,
		sessions: make(map[string][]HistoryEntry),
	}
}

// Append records an entry for a session, assigning its ID and timestamp.
func (h *History) Append(session string, entry HistoryEntry) HistoryEntry {
	entry.ID = uuid.NewString()
	entry.Session = session
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entries := append(h.sessions[session], entry)
	if len(entries) > h.capacity {
		entries = entries[len(entries)-h.capacity:]
	}
	h.sessions[session] = entries
	return entry
}

// Entries returns a copy of a session's history, oldest first.
func (h *History) Entries(session string) []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := h.sessions[session]
	out := make([]HistoryEntry, len(entries))
	copy(out, entries)
	return out
}

// ClearSession drops a session's history, reporting whether it existed.
func (h *History) ClearSession(session string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.sessions[session]
	delete(h.sessions, session)
	return ok
}

// Sessions returns the sessions with recorded history.
func (h *History) Sessions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, 0, len(h.sessions))
	for s := range h.sessions {
		out = append(out, s)
	}
	return out
}
