package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"sort"
	"strconv"
)

// KeyInput carries the invocation fields that determine a cache key. Two
// invocations with equal fields map to the same key; any differing field,
// including the principal and working directory, produces a distinct key.
type KeyInput struct {
	// Name is the command name. Required.
	Name string

	// Subcommand is the matched subcommand verb, or empty.
	Subcommand string

	// Arguments are the positional arguments in input order.
	Arguments []string

	// Options maps option names to their coerced values.
	Options map[string]any

	// WorkDir is the working directory the command runs against.
	WorkDir string

	// Principal partitions cached results by caller.
	Principal string
}

// Keyer generates deterministic cache keys from an invocation.
//
// Contract:
// - Determinism: equal inputs must produce the same key, regardless of
//   option map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key for the invocation.
	Key(input KeyInput) (string, error)
}

// DefaultKeyer hashes invocation fields with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a key of the form invoke:<name>:<hash>, where hash is the
// first 8 bytes of a SHA-256 over the invocation fields. Fields are fed to
// the hash in a fixed order with a separator after each one, and variable
// sections are length-prefixed, so adjacent fields cannot run together.
func (k *DefaultKeyer) Key(input KeyInput) (string, error) {
	if input.Name == "" {
		return "", ErrEmptyKeyName
	}

	h := sha256.New()
	writeField(h, input.Name)
	writeField(h, input.Subcommand)

	writeField(h, strconv.Itoa(len(input.Arguments)))
	for _, arg := range input.Arguments {
		writeField(h, arg)
	}

	if err := writeOptions(h, input.Options); err != nil {
		return "", err
	}

	writeField(h, input.WorkDir)
	writeField(h, input.Principal)

	sum := h.Sum(nil)
	return "invoke:" + input.Name + ":" + hex.EncodeToString(sum[:8]), nil
}

// writeField hashes one field followed by a unit separator.
func writeField(h hash.Hash, s string) {
	h.Write([]byte(s))
	h.Write([]byte{0x1f})
}

// writeOptions hashes the option set sorted by name so that map insertion
// order is invisible to the key.
func writeOptions(h hash.Hash, options map[string]any) error {
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)

	writeField(h, strconv.Itoa(len(names)))
	for _, name := range names {
		writeField(h, name)
		if err := writeValue(h, options[name]); err != nil {
			return fmt.Errorf("cache: option %q: %w", name, err)
		}
	}
	return nil
}

// writeValue hashes one option value. Nested maps recurse with sorted keys,
// slices recurse in order; scalars go through their JSON encoding.
func writeValue(h hash.Hash, v any) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		writeField(h, "{")
		for _, k := range keys {
			writeField(h, k)
			if err := writeValue(h, val[k]); err != nil {
				return err
			}
		}
		writeField(h, "}")
	case []any:
		writeField(h, "[")
		for _, item := range val {
			if err := writeValue(h, item); err != nil {
				return err
			}
		}
		writeField(h, "]")
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		h.Write(data)
		h.Write([]byte{0x1f})
	}
	return nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
