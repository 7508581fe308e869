package cache

import (
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilAdapter    = errors.New("cache: adapter is nil")
	ErrInvalidKey    = errors.New("cache: key is invalid")
	ErrKeyTooLong    = errors.New("cache: key exceeds max length")
	ErrValueTooLarge = errors.New("cache: value exceeds memory budget")
	ErrNoProviders   = errors.New("cache: manager has no providers")
	ErrEmptyKeyName  = errors.New("cache: key input has no command name")
)

// Entry is the stored representation of a cached value.
type Entry struct {
	// Value is the serialized cached payload.
	Value []byte `json:"value"`

	// Timestamp is when the entry was created.
	Timestamp time.Time `json:"timestamp"`

	// TTL is the entry lifetime. Zero means no expiry.
	TTL time.Duration `json:"ttl,omitempty"`

	// AccessCount is incremented on every Get hit.
	AccessCount int64 `json:"access_count"`

	// LastAccessed is updated on every Get hit.
	LastAccessed time.Time `json:"last_accessed"`
}

// Expired reports whether the entry's TTL has elapsed at the given time.
func (e *Entry) Expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.Timestamp) > e.TTL
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
