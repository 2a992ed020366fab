package notes

import (
	"path/filepath"
	"regexp"
	"strings"
)

var wikiLinkPattern = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// rewriteWikiLinks resolves bare [[Target]] references (no "/") against
// the title index, trying progressively looser matching strategies, and
// rewrites matches to the relative path (without extension) of the
// resolved note, as seen from fromPath's directory. Links that already
// contain "/" are treated as path-based references and rewritten only if
// they resolve to an existing note; anything that resolves to nothing is
// left untouched so it still surfaces as a broken link once the graph
// processes the note.
func (m *Manager) rewriteWikiLinks(content, fromPath string) string {
	return wikiLinkPattern.ReplaceAllStringFunc(content, func(match string) string {
		inner := strings.TrimSuffix(strings.TrimPrefix(match, "[["), "]]")

		target := inner
		display := ""
		if idx := strings.Index(inner, "|"); idx >= 0 {
			target = inner[:idx]
			display = inner[idx+1:]
		}

		path, ok := m.resolveLinkTarget(target)
		if !ok {
			return match
		}

		rel := relativeLinkPath(fromPath, path)

		if display != "" {
			return "[[" + rel + "|" + display + "]]"
		}
		return "[[" + rel + "]]"
	})
}

// resolveLinkTarget resolves a wiki-link target to an absolute note path.
// A target containing a path separator uses only the path-based match
// (dir/name -> dir/name.md relative to the notes root); any other target
// tries exact title match, case-insensitive title match, substring match,
// and separator-normalized match (-,_ -> space).
// ResolveLinkTarget exposes resolveLinkTarget to other packages (the graph's
// wiki-link resolution pass) without duplicating the matching strategies.
func (m *Manager) ResolveLinkTarget(target string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolveLinkTarget(target)
}

func (m *Manager) resolveLinkTarget(target string) (string, bool) {
	if strings.ContainsAny(target, "/\\") {
		return m.resolvePathTarget(target)
	}

	if path, ok := m.titleIndex[target]; ok {
		return path, true
	}

	lowerTarget := strings.ToLower(target)
	var substringCandidate, normalizedCandidate string
	normTarget := normalizeTitle(target)

	for title, path := range m.titleIndex {
		if strings.ToLower(title) == lowerTarget {
			return path, true
		}
		if substringCandidate == "" && (strings.Contains(lowerTarget, strings.ToLower(title)) || strings.Contains(strings.ToLower(title), lowerTarget)) {
			substringCandidate = path
		}
		if normalizedCandidate == "" && normalizeTitle(title) == normTarget {
			normalizedCandidate = path
		}
	}

	if substringCandidate != "" {
		return substringCandidate, true
	}
	if normalizedCandidate != "" {
		return normalizedCandidate, true
	}

	return "", false
}

func (m *Manager) resolvePathTarget(target string) (string, bool) {
	candidate := target
	if filepath.Ext(candidate) == "" {
		candidate += ".md"
	}
	path := filepath.Join(m.root, candidate)
	if _, ok := m.index[path]; ok {
		return path, true
	}
	return "", false
}

func relativeLinkPath(fromPath, toPath string) string {
	rel, err := filepath.Rel(filepath.Dir(fromPath), toPath)
	if err != nil {
		rel = toPath
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func normalizeTitle(s string) string {
	s = strings.ToLower(s)
	replacer := strings.NewReplacer("-", " ", "_", " ")
	s = replacer.Replace(s)
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
