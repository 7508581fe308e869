package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileConfig configures the file adapter.
type FileConfig struct {
	// Dir is the directory holding one file per key. Required.
	Dir string

	// FileMode is the permission for written cache files. Default: 0o644.
	FileMode os.FileMode
}

// fileEntry wraps Entry with the original key. Filenames are sanitized, so
// the key must be stored inside the record for Keys to report it.
type fileEntry struct {
	Key string `json:"key"`
	Entry
}

// FileAdapter stores one JSON-serialized Entry per key on disk. Access
// metadata is written back on every hit so access statistics survive a
// process restart.
type FileAdapter struct {
	dir      string
	mode     os.FileMode
	mu       sync.Mutex
	counters counters
}

// NewFileAdapter creates a file adapter rooted at config.Dir, creating the
// directory if needed.
func NewFileAdapter(config FileConfig) (*FileAdapter, error) {
	if config.FileMode == 0 {
		config.FileMode = 0o644
	}
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, err
	}

	return &FileAdapter{
		dir:  config.Dir,
		mode: config.FileMode,
	}, nil
}

// Name returns "file".
func (f *FileAdapter) Name() string { return "file" }

// Get retrieves a value. Missing or corrupt files are misses; a hit bumps
// the entry's access metadata and re-persists it best-effort.
func (f *FileAdapter) Get(_ context.Context, key string) ([]byte, bool) {
	path := f.pathFor(key)

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		f.counters.misses.Add(1)
		return nil, false
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt file: treat as a miss and drop it.
		_ = os.Remove(path)
		f.counters.misses.Add(1)
		return nil, false
	}

	now := time.Now()
	if entry.Expired(now) {
		_ = os.Remove(path)
		f.counters.misses.Add(1)
		return nil, false
	}

	entry.Key = key
	entry.AccessCount++
	entry.LastAccessed = now
	if updated, err := json.Marshal(&entry); err == nil {
		_ = os.WriteFile(path, updated, f.mode)
	}

	f.counters.hits.Add(1)
	return entry.Value, true
}

// Set stores a value as a serialized Entry.
func (f *FileAdapter) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	now := time.Now()
	entry := fileEntry{
		Key: key,
		Entry: Entry{
			Value:        value,
			Timestamp:    now,
			TTL:          ttl,
			LastAccessed: now,
		},
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.WriteFile(f.pathFor(key), data, f.mode); err != nil {
		return err
	}
	f.counters.sets.Add(1)
	return nil
}

// Delete removes a value, reporting whether it was present.
func (f *FileAdapter) Delete(_ context.Context, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.pathFor(key)); err != nil {
		return false
	}
	f.counters.deletes.Add(1)
	return true
}

// Clear removes every cache file in the directory.
func (f *FileAdapter) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	files, err := os.ReadDir(f.dir)
	if err != nil {
		return err
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), entryExt) {
			continue
		}
		_ = os.Remove(filepath.Join(f.dir, file.Name()))
	}
	return nil
}

// Keys lists the original keys of the currently stored entries, read from
// the serialized records. Records predating the stored key fall back to
// their sanitized filename.
func (f *FileAdapter) Keys(_ context.Context) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	files, err := os.ReadDir(f.dir)
	if err != nil {
		return nil
	}
	var keys []string
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), entryExt) {
			continue
		}
		var entry fileEntry
		data, err := os.ReadFile(filepath.Join(f.dir, file.Name()))
		if err != nil || json.Unmarshal(data, &entry) != nil {
			continue
		}
		if entry.Key != "" {
			keys = append(keys, entry.Key)
		} else {
			keys = append(keys, strings.TrimSuffix(file.Name(), entryExt))
		}
	}
	return keys
}

// Has reports whether a live entry exists, without bumping access metadata.
func (f *FileAdapter) Has(_ context.Context, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.pathFor(key))
	if err != nil {
		return false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return false
	}
	return !entry.Expired(time.Now())
}

// Stats returns a snapshot; the gauges are computed from the directory.
func (f *FileAdapter) Stats() Stats {
	f.mu.Lock()
	var size, memory int64
	if files, err := os.ReadDir(f.dir); err == nil {
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), entryExt) {
				continue
			}
			size++
			if info, err := file.Info(); err == nil {
				memory += info.Size()
			}
		}
	}
	f.mu.Unlock()

	return f.counters.snapshot(size, memory)
}

const entryExt = ".json"

// pathFor derives the file path for a key, replacing every character
// outside [A-Za-z0-9_-] with an underscore.
func (f *FileAdapter) pathFor(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+entryExt)
}

func sanitizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, c := range key {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Ensure FileAdapter implements Adapter
var _ Adapter = (*FileAdapter)(nil)
