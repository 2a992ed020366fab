// Package notes owns the user-facing notes directory: category folders,
// the create/update file operations, wiki-link rewriting, and the
// related-notes heuristic used by the note-action decider.
package notes

import (
	"time"
)

// Note is a single on-disk note as seen by the notes manager, independent
// of its position in the knowledge graph.
type Note struct {
	Path        string
	Title       string
	Content     string
	Category    string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Metadata    map[string]any
	ContentHash string
}

// categoryFolders maps a display category name to its folder name under
// the notes root. Order-independent; iterated in Init via a fixed slice
// so READMEs are created deterministically.
var categoryFolders = []struct {
	Category string
	Folder   string
}{
	{"Ideas to Develop", "ideas"},
	{"Personal", "personal"},
	{"Research", "research"},
	{"Reading List", "reading-list"},
	{"Projects", "projects"},
	{"Learning", "learning"},
	{"Quick Notes", "quick-notes"},
	{"Web Content", "web-content"},
}

var categoryDescriptions = map[string]string{
	"Ideas to Develop": "Incomplete thoughts, concepts, and ideas that need further development and exploration.",
	"Personal":         "Personal reflections, experiences, and private thoughts.",
	"Research":         "Academic or professional research content, studies, and findings.",
	"Reading List":     "Articles, books, and content to read later, along with summaries and notes.",
	"Projects":         "Project-related notes, planning documents, and progress updates.",
	"Learning":         "Educational content, course notes, and learning materials.",
	"Quick Notes":      "Brief thoughts, reminders, and quick captures.",
	"Web Content":      "Content captured from the web, with source attribution.",
}

func folderFor(category string) string {
	for _, cf := range categoryFolders {
		if cf.Category == category {
			return cf.Folder
		}
	}
	return "quick-notes"
}

const defaultCategory = "Quick Notes"
