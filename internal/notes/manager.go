package notes

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leefowlercu/pkmgraph/internal/hashcache"
	"github.com/leefowlercu/pkmgraph/internal/markdown"
	"github.com/leefowlercu/pkmgraph/internal/pkmerrors"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\w\s-]`)
	filenameSeparators  = regexp.MustCompile(`[-\s]+`)
)

// ScanStats reports how many notes were reused from cache versus
// re-parsed during Init/Scan, for telemetry.
type ScanStats struct {
	CacheHits int
	Reparses  int
}

// Manager owns the notes directory: category folders, the note index, and
// the create/update/related operations.
type Manager struct {
	mu sync.RWMutex

	root        string
	hashTracker *hashcache.Tracker

	index      map[string]*Note // absolute path -> Note
	titleIndex map[string]string // title -> absolute path, for wiki-link rewriting
}

// New creates a Manager rooted at root, backed by tracker for change
// detection and note/id mapping.
func New(root string, tracker *hashcache.Tracker) *Manager {
	return &Manager{
		root:        root,
		hashTracker: tracker,
		index:       make(map[string]*Note),
		titleIndex:  make(map[string]string),
	}
}

// Init creates category subdirectories and README placeholders, then
// scans the directory for existing notes.
func (m *Manager) Init() (ScanStats, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return ScanStats{}, pkmerrors.Wrap(pkmerrors.KindIO, "notes.Init", "failed to create notes directory", err)
	}

	for _, cf := range categoryFolders {
		dir := filepath.Join(m.root, cf.Folder)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ScanStats{}, pkmerrors.Wrap(pkmerrors.KindIO, "notes.Init", "failed to create category directory", err)
		}

		readmePath := filepath.Join(dir, "README.md")
		if _, err := os.Stat(readmePath); os.IsNotExist(err) {
			if err := writeCategoryReadme(readmePath, cf.Category); err != nil {
				return ScanStats{}, err
			}
		}
	}

	return m.Scan()
}

func writeCategoryReadme(path, category string) error {
	desc := categoryDescriptions[category]
	if desc == "" {
		desc = "Notes in this category."
	}

	content := fmt.Sprintf(
		"# %s\n\nThis folder contains notes categorized as \"%s\".\n\n## About This Category\n\n%s\n\n## Notes in this folder\n\n*Notes will be automatically listed here*\n",
		category, category, desc,
	)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "notes.writeCategoryReadme", "failed to write category README", err)
	}
	return nil
}

var noteExtensions = map[string]bool{".md": true, ".markdown": true, ".txt": true}

// Scan walks the notes root, reusing cached metadata for unchanged files
// and fully re-parsing everything else, then drops stale hash-cache and
// mapping entries for files no longer present.
func (m *Manager) Scan() (ScanStats, error) {
	var stats ScanStats
	validPaths := make(map[string]struct{})

	m.mu.Lock()
	defer m.mu.Unlock()

	err := filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !noteExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if filepath.Base(path) == "README.md" {
			return nil
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		validPaths[abs] = struct{}{}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		if !m.hashTracker.HasChanged(abs, content) {
			if entry, ok := m.hashTracker.Get(abs); ok {
				note := noteFromCache(abs, content, entry)
				m.index[abs] = note
				m.titleIndex[note.Title] = abs
				stats.CacheHits++
				return nil
			}
		}

		parsed, _ := markdown.Parse(path, content)
		info, statErr := os.Stat(path)
		var modTime time.Time
		if statErr == nil {
			modTime = info.ModTime()
		}

		note := &Note{
			Path:        abs,
			Title:       parsed.Title,
			Content:     parsed.Content,
			Category:    parsed.Category,
			Tags:        parsed.Tags,
			CreatedAt:   modTime,
			UpdatedAt:   modTime,
			Metadata:    parsed.Metadata,
			ContentHash: hashcache.Hash(content),
		}
		m.index[abs] = note
		m.titleIndex[note.Title] = abs

		_ = m.hashTracker.Update(abs, note.ContentHash, map[string]string{
			"title":      note.Title,
			"category":   note.Category,
			"updated_at": note.UpdatedAt.Format(time.RFC3339),
		})
		stats.Reparses++
		return nil
	})
	if err != nil {
		return stats, pkmerrors.Wrap(pkmerrors.KindIO, "notes.Scan", "failed to walk notes directory", err)
	}

	for path, note := range m.index {
		if _, ok := validPaths[path]; !ok {
			delete(m.index, path)
			if m.titleIndex[note.Title] == path {
				delete(m.titleIndex, note.Title)
			}
		}
	}

	if err := m.hashTracker.CleanupStale(validPaths); err != nil {
		return stats, err
	}

	return stats, nil
}

// RescanOne re-parses a single path unconditionally and refreshes its
// index entry and hash-cache record, for callers (the file watcher) that
// already know this specific path changed rather than needing a full
// directory walk.
func (m *Manager) RescanOne(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "notes.RescanOne", "failed to resolve path", err)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "notes.RescanOne", "failed to read note", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	parsed, _ := markdown.Parse(abs, content)
	info, statErr := os.Stat(abs)
	var modTime time.Time
	if statErr == nil {
		modTime = info.ModTime()
	}

	note := &Note{
		Path:        abs,
		Title:       parsed.Title,
		Content:     parsed.Content,
		Category:    parsed.Category,
		Tags:        parsed.Tags,
		CreatedAt:   modTime,
		UpdatedAt:   modTime,
		Metadata:    parsed.Metadata,
		ContentHash: hashcache.Hash(content),
	}
	m.index[abs] = note
	m.titleIndex[note.Title] = abs

	return m.hashTracker.Update(abs, note.ContentHash, map[string]string{
		"title":      note.Title,
		"category":   note.Category,
		"updated_at": note.UpdatedAt.Format(time.RFC3339),
	})
}

func noteFromCache(path string, content []byte, entry hashcache.Entry) *Note {
	title := entry.Metadata["title"]
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	category := entry.Metadata["category"]
	if category == "" {
		category = defaultCategory
	}
	updatedAt, _ := time.Parse(time.RFC3339, entry.Metadata["updated_at"])

	return &Note{
		Path:        path,
		Title:       title,
		Content:     string(content),
		Category:    category,
		UpdatedAt:   updatedAt,
		ContentHash: entry.Hash,
	}
}

// Create builds a new note file under the category folder, writes it
// atomically, and registers it in the index.
func (m *Manager) Create(title, body, category string, tags []string) (*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	folder := folderFor(category)
	dir := filepath.Join(m.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkmerrors.Wrap(pkmerrors.KindIO, "notes.Create", "failed to create category directory", err)
	}

	path := m.uniqueFilename(dir, title)

	now := time.Now()
	sortedTags := append([]string(nil), tags...)
	sort.Strings(sortedTags)

	frontMatter := map[string]any{
		"title":    title,
		"category": category,
		"tags":     sortedTags,
		"created":  now.Format(time.RFC3339),
		"updated":  now.Format(time.RFC3339),
	}
	yamlBytes, err := yaml.Marshal(frontMatter)
	if err != nil {
		return nil, pkmerrors.Wrap(pkmerrors.KindIO, "notes.Create", "failed to marshal front-matter", err)
	}

	content := fmt.Sprintf("# %s\n\n%s", title, body)
	content = m.rewriteWikiLinks(content, path)
	fileContent := fmt.Sprintf("---\n%s---\n\n%s", string(yamlBytes), content)

	if err := writeAtomic(path, []byte(fileContent)); err != nil {
		return nil, err
	}

	note := &Note{
		Path:        path,
		Title:       title,
		Content:     content,
		Category:    category,
		Tags:        sortedTags,
		CreatedAt:   now,
		UpdatedAt:   now,
		Metadata:    frontMatter,
		ContentHash: hashcache.Hash([]byte(fileContent)),
	}
	m.index[path] = note
	m.titleIndex[title] = path

	_ = m.hashTracker.Update(path, note.ContentHash, map[string]string{
		"title":      title,
		"category":   category,
		"updated_at": now.Format(time.RFC3339),
	})

	return note, nil
}

// Update appends an "## Update - <timestamp>" section to an existing
// note, no-op if that exact section already exists.
func (m *Manager) Update(path, additionalText string) (*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, pkmerrors.Wrap(pkmerrors.KindIO, "notes.Update", "failed to resolve path", err)
	}

	note, ok := m.index[abs]
	if !ok {
		return nil, pkmerrors.New(pkmerrors.KindInvariant, "notes.Update", fmt.Sprintf("note not found: %s", path))
	}

	current, err := os.ReadFile(abs)
	if err != nil {
		return nil, pkmerrors.Wrap(pkmerrors.KindIO, "notes.Update", "failed to read note", err)
	}

	section := fmt.Sprintf("## Update - %s\n\n%s", time.Now().Format("2006-01-02 15:04"), additionalText)
	if strings.Contains(string(current), section) {
		return note, nil
	}

	newContent := string(current) + "\n\n" + section
	newContent, now := m.rewriteUpdatedAt(newContent)
	newContent = m.rewriteWikiLinks(newContent, abs)

	if err := writeAtomic(abs, []byte(newContent)); err != nil {
		return nil, err
	}

	note.Content = newContent
	note.UpdatedAt = now
	note.ContentHash = hashcache.Hash([]byte(newContent))

	_ = m.hashTracker.Update(abs, note.ContentHash, map[string]string{
		"title":      note.Title,
		"category":   note.Category,
		"updated_at": now.Format(time.RFC3339),
	})

	return note, nil
}

func (m *Manager) rewriteUpdatedAt(content string) (string, time.Time) {
	now := time.Now()
	if !strings.HasPrefix(content, "---") {
		return content, now
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return content, now
	}

	var metadata map[string]any
	if err := yaml.Unmarshal([]byte(parts[1]), &metadata); err != nil || metadata == nil {
		return content, now
	}
	metadata["updated"] = now.Format(time.RFC3339)

	data, err := yaml.Marshal(metadata)
	if err != nil {
		return content, now
	}

	return fmt.Sprintf("---\n%s---\n%s", string(data), parts[2]), now
}

func (m *Manager) uniqueFilename(dir, title string) string {
	safe := unsafeFilenameChars.ReplaceAllString(title, "")
	safe = strings.TrimSpace(safe)
	safe = filenameSeparators.ReplaceAllString(safe, "-")

	path := filepath.Join(dir, safe+".md")
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-%d.md", safe, n))
	}
}

func writeAtomic(path string, content []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "notes.writeAtomic", "failed to write temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return pkmerrors.Wrap(pkmerrors.KindIO, "notes.writeAtomic", "failed to rename into place", err)
	}
	return nil
}
