// Package hashcache tracks content hashes and note-to-node mappings so the
// sync pipeline can skip unchanged files and correlate notes on disk with
// graph node ids across runs.
package hashcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/leefowlercu/pkmgraph/internal/pkmerrors"
)

// Entry is a single cached hash record.
type Entry struct {
	Hash      string            `json:"hash"`
	UpdatedAt time.Time         `json:"updated_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Stats summarizes the cache's current contents.
type Stats struct {
	TotalCachedItems int       `json:"total_cached_items"`
	TotalMappedNotes int       `json:"total_mapped_notes"`
	CacheFile        string    `json:"cache_file"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Tracker manages the hash cache and the note-path-to-node-id mapping. Both
// are persisted as JSON maps, rewritten atomically on every update. A
// Tracker is safe for concurrent use.
type Tracker struct {
	mu sync.Mutex

	cacheFile   string
	mappingFile string

	cache   map[string]Entry
	mapping map[string]string
}

// Hash returns the SHA-256 hex digest of content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// New creates a Tracker backed by cacheFile and a sibling note_mapping.json
// in the same directory. Existing contents are loaded; a missing or
// corrupt file starts the tracker empty rather than failing, matching the
// self-healing behavior of a cache (it can always be rebuilt by a full
// rescan).
func New(cacheFile string) (*Tracker, error) {
	mappingFile := filepath.Join(filepath.Dir(cacheFile), "note_mapping.json")

	t := &Tracker{
		cacheFile:   cacheFile,
		mappingFile: mappingFile,
		cache:       make(map[string]Entry),
		mapping:     make(map[string]string),
	}

	if err := loadJSON(cacheFile, &t.cache); err != nil {
		return nil, pkmerrors.Wrap(pkmerrors.KindIO, "hashcache.New", "failed to load hash cache", err)
	}
	if err := loadJSON(mappingFile, &t.mapping); err != nil {
		return nil, pkmerrors.Wrap(pkmerrors.KindIO, "hashcache.New", "failed to load note mapping", err)
	}

	return t, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		// A corrupt cache is not fatal; start fresh rather than fail init.
		return nil
	}
	return nil
}

func writeAtomic(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory; %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache; %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file; %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename into place; %w", err)
	}
	return nil
}

// HasChanged reports whether content's hash differs from the cached hash
// for key. A missing cache entry counts as changed.
func (t *Tracker) HasChanged(key string, content []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.cache[key]
	if !ok {
		return true
	}
	return entry.Hash != Hash(content)
}

// Get returns the cached entry for key, if any.
func (t *Tracker) Get(key string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.cache[key]
	return entry, ok
}

// Update records hash and metadata for key and persists the cache.
func (t *Tracker) Update(key, hash string, metadata map[string]string) error {
	t.mu.Lock()
	t.cache[key] = Entry{Hash: hash, UpdatedAt: time.Now(), Metadata: metadata}
	snapshot := t.cache
	t.mu.Unlock()

	if err := writeAtomic(t.cacheFile, snapshot); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "hashcache.Update", "failed to persist hash cache", err)
	}
	return nil
}

// NoteID returns the node id mapped to path, if any.
func (t *Tracker) NoteID(path string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.mapping[path]
	return id, ok
}

// SetNoteID maps path to id and persists the mapping.
func (t *Tracker) SetNoteID(path, id string) error {
	t.mu.Lock()
	t.mapping[path] = id
	snapshot := t.mapping
	t.mu.Unlock()

	if err := writeAtomic(t.mappingFile, snapshot); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "hashcache.SetNoteID", "failed to persist note mapping", err)
	}
	return nil
}

// RemoveNoteID drops path from the mapping, if present, and persists.
func (t *Tracker) RemoveNoteID(path string) error {
	t.mu.Lock()
	_, existed := t.mapping[path]
	if existed {
		delete(t.mapping, path)
	}
	snapshot := t.mapping
	t.mu.Unlock()

	if !existed {
		return nil
	}
	if err := writeAtomic(t.mappingFile, snapshot); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "hashcache.RemoveNoteID", "failed to persist note mapping", err)
	}
	return nil
}

// CleanupStale removes cache and mapping entries whose key is not present
// in validKeys, persisting both files if anything changed.
func (t *Tracker) CleanupStale(validKeys map[string]struct{}) error {
	t.mu.Lock()
	cacheChanged := false
	for key := range t.cache {
		if _, ok := validKeys[key]; !ok {
			delete(t.cache, key)
			cacheChanged = true
		}
	}
	mappingChanged := false
	for key := range t.mapping {
		if _, ok := validKeys[key]; !ok {
			delete(t.mapping, key)
			mappingChanged = true
		}
	}
	cacheSnapshot := t.cache
	mappingSnapshot := t.mapping
	t.mu.Unlock()

	if cacheChanged {
		if err := writeAtomic(t.cacheFile, cacheSnapshot); err != nil {
			return pkmerrors.Wrap(pkmerrors.KindIO, "hashcache.CleanupStale", "failed to persist hash cache", err)
		}
	}
	if mappingChanged {
		if err := writeAtomic(t.mappingFile, mappingSnapshot); err != nil {
			return pkmerrors.Wrap(pkmerrors.KindIO, "hashcache.CleanupStale", "failed to persist note mapping", err)
		}
	}
	return nil
}

// Clear empties both the cache and the mapping, and persists both.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	t.cache = make(map[string]Entry)
	t.mapping = make(map[string]string)
	t.mu.Unlock()

	if err := writeAtomic(t.cacheFile, t.cache); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "hashcache.Clear", "failed to persist hash cache", err)
	}
	if err := writeAtomic(t.mappingFile, t.mapping); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "hashcache.Clear", "failed to persist note mapping", err)
	}
	return nil
}

// Stats reports cache/mapping sizes and the most recent update time.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var last time.Time
	for _, entry := range t.cache {
		if entry.UpdatedAt.After(last) {
			last = entry.UpdatedAt
		}
	}

	return Stats{
		TotalCachedItems: len(t.cache),
		TotalMappedNotes: len(t.mapping),
		CacheFile:        t.cacheFile,
		LastUpdated:      last,
	}
}
