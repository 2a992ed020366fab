package markdown

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
	"gopkg.in/yaml.v3"
)

var (
	wikiLinkPattern = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	headingPattern  = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	tagPattern      = regexp.MustCompile(`#([a-zA-Z0-9_-]+)`)
)

// relationshipPattern returns the case-insensitive `<keyword>::[[target]]`
// regex for a relation type.
func relationshipPattern(rt RelationType) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + relationKeywords[rt] + `::\s*\[\[([^\]]+)\]\]`)
}

var relationshipPatterns = buildRelationshipPatterns()

func buildRelationshipPatterns() map[RelationType]*regexp.Regexp {
	patterns := make(map[RelationType]*regexp.Regexp, len(relationKeywords))
	for rt := range relationKeywords {
		patterns[rt] = relationshipPattern(rt)
	}
	return patterns
}

// keywordFilter is a single Aho-Corasick automaton over every relation
// keyword, used to skip running all nine relationship regexes against
// notes that mention none of them.
var keywordFilter = buildKeywordFilter()

func buildKeywordFilter() *ahocorasick.Automaton {
	keywords := make([]string, 0, len(relationKeywords))
	for _, kw := range relationKeywords {
		keywords = append(keywords, kw)
	}
	automaton, err := ahocorasick.NewBuilder().
		AddStrings(keywords).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		// Keyword set is fixed at compile time; a build failure here means a
		// programmer error, not a runtime condition.
		panic(fmt.Sprintf("markdown: failed to build relation keyword filter: %v", err))
	}
	return automaton
}

// ParseWarning is a non-fatal condition noticed while parsing; callers
// typically log it and continue with the degraded result.
type ParseWarning struct {
	Message string
}

// Parse converts a note's raw bytes into a ParsedNote. content has already
// been read from path (or synthesized); Parse does no I/O itself.
func Parse(path string, content []byte) (*ParsedNote, []ParseWarning) {
	var warnings []ParseWarning

	metadata, body, warn := splitFrontMatter(string(content))
	if warn != nil {
		warnings = append(warnings, *warn)
	}

	title := extractTitle(body, metadata, path)
	category := extractCategory(metadata, path)
	tags := extractTags(body, metadata)
	wikiLinks := parseWikiLinks(body)
	relationships := parseRelationships(body, title)
	parent, children := extractHierarchy(metadata, relationships)

	hash, id := computeID(title, body, category, tags)

	note := &ParsedNote{
		Content:       body,
		Metadata:      metadata,
		WikiLinks:     wikiLinks,
		Relationships: relationships,
		Tags:          tags,
		Title:         title,
		Category:      category,
		Parent:        parent,
		Children:      children,
		ContentHash:   hash,
		ID:            id,
	}

	return note, warnings
}

func splitFrontMatter(content string) (map[string]any, string, *ParseWarning) {
	if !strings.HasPrefix(content, "---") {
		return map[string]any{}, content, nil
	}

	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return map[string]any{}, content, nil
	}

	var metadata map[string]any
	if err := yaml.Unmarshal([]byte(parts[1]), &metadata); err != nil {
		return map[string]any{}, content, &ParseWarning{
			Message: fmt.Sprintf("invalid YAML front-matter: %v", err),
		}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	return metadata, strings.TrimSpace(parts[2]), nil
}

func extractTitle(body string, metadata map[string]any, path string) string {
	if v, ok := metadata["title"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	if match := headingPattern.FindStringSubmatch(body); match != nil && match[1] == "#" {
		return strings.TrimSpace(match[2])
	}

	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func extractCategory(metadata map[string]any, path string) string {
	if v, ok := metadata["category"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	normalized := filepath.ToSlash(path)
	for folder, category := range categoryFolders {
		if strings.Contains(normalized, folder) {
			return category
		}
	}

	return defaultCategory
}

func extractTags(body string, metadata map[string]any) []string {
	set := make(map[string]struct{})

	if v, ok := metadata["tags"]; ok {
		switch t := v.(type) {
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					set[s] = struct{}{}
				}
			}
		case string:
			for _, s := range strings.Split(t, ",") {
				set[strings.TrimSpace(s)] = struct{}{}
			}
		}
	}

	for _, match := range tagPattern.FindAllStringSubmatch(body, -1) {
		set[match[1]] = struct{}{}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// ParseWikiLinks re-extracts wiki-links from a note body already held
// in-memory (e.g. a graph node's stored content), without requiring the
// original file on disk.
func ParseWikiLinks(body string) []WikiLink {
	return parseWikiLinks(body)
}

// ParseRelationships re-extracts typed relationships from a note body
// already held in-memory, addressed by sourceTitle as Parse does.
func ParseRelationships(body, sourceTitle string) []Relationship {
	return parseRelationships(body, sourceTitle)
}

func parseWikiLinks(body string) []WikiLink {
	var links []WikiLink

	for _, match := range wikiLinkPattern.FindAllStringSubmatchIndex(body, -1) {
		start, end := match[0], match[1]
		linkText := body[match[2]:match[3]]

		target := linkText
		display := linkText
		if idx := strings.Index(linkText, "|"); idx >= 0 {
			target = strings.TrimSpace(linkText[:idx])
			display = strings.TrimSpace(linkText[idx+1:])
		}

		lineNumber := strings.Count(body[:start], "\n") + 1

		ctxStart := max(0, start-50)
		ctxEnd := min(len(body), end+50)
		context := strings.ReplaceAll(body[ctxStart:ctxEnd], "\n", " ")

		links = append(links, WikiLink{
			Target:     target,
			Display:    display,
			LineNumber: lineNumber,
			Context:    context,
		})
	}

	return links
}

func parseRelationships(body, sourceTitle string) []Relationship {
	var relationships []Relationship

	hits := keywordFilter.FindAllOverlapping([]byte(strings.ToLower(body)))
	if len(hits) == 0 {
		return nil
	}

	for rt, pattern := range relationshipPatterns {
		for _, match := range pattern.FindAllStringSubmatch(body, -1) {
			relationships = append(relationships, Relationship{
				SourceTitle:  sourceTitle,
				TargetTitle:  strings.TrimSpace(match[1]),
				RelationType: rt,
			})
		}
	}

	return relationships
}

func extractHierarchy(metadata map[string]any, relationships []Relationship) (string, []string) {
	var parent string
	var children []string

	if v, ok := metadata["parent"]; ok {
		if s, ok := v.(string); ok {
			parent = s
		}
	}
	if v, ok := metadata["children"]; ok {
		switch c := v.(type) {
		case []any:
			for _, item := range c {
				if s, ok := item.(string); ok {
					children = append(children, s)
				}
			}
		case string:
			for _, s := range strings.Split(c, ",") {
				children = append(children, strings.TrimSpace(s))
			}
		}
	}

	for _, rel := range relationships {
		switch rel.RelationType {
		case RelationParentOf:
			children = append(children, rel.TargetTitle)
		case RelationChildOf:
			parent = rel.TargetTitle
		}
	}

	return parent, children
}
