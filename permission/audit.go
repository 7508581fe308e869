package permission

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAuditCapacity is the default audit ring buffer size.
const DefaultAuditCapacity = 1000

// AuditEntry is an immutable record of one permission check.
type AuditEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Principal string    `json:"principal"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Scope     Scope     `json:"scope"`
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason"`
	RuleID    string    `json:"rule_id,omitempty"`
}

// AuditLog is a bounded ring buffer of audit entries; when full, the
// oldest entries drop first.
type AuditLog struct {
	mu       sync.Mutex
	entries  []AuditEntry
	start    int
	count    int
	capacity int
}

// NewAuditLog creates an audit log with the given capacity.
func NewAuditLog(capacity int) *AuditLog {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditLog{
		entries:  make([]AuditEntry, capacity),
		capacity: capacity,
	}
}

// Record appends an entry, assigning its ID and timestamp.
func (l *AuditLog) Record(entry AuditEntry) {
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := (l.start + l.count) % l.capacity
	l.entries[idx] = entry
	if l.count < l.capacity {
		l.count++
	} else {
		l.start = (l.start + 1) % l.capacity
	}
}

// Entries returns a copy of the recorded entries, oldest first.
func (l *AuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]AuditEntry, l.count)
	for i := 0; i < l.count; i++ {
		out[i] = l.entries[(l.start+i)%l.capacity]
	}
	return out
}

// Len returns the number of retained entries.
func (l *AuditLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
