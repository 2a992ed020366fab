package markdown

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leefowlercu/pkmgraph/internal/pkmerrors"
)

// WriteRelationships round-trips relationships into a note's front-matter
// `parent`/`children` keys, preserving every other front-matter key
// verbatim, and rewrites the file in place.
func WriteRelationships(path string, relationships []Relationship) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "markdown.WriteRelationships", "failed to read note", err)
	}

	metadata, body, warn := splitFrontMatter(string(raw))
	if warn != nil {
		metadata = map[string]any{}
	}

	children, _ := metadata["children"].([]any)
	childSet := make(map[string]struct{}, len(children))
	for _, c := range children {
		if s, ok := c.(string); ok {
			childSet[s] = struct{}{}
		}
	}

	for _, rel := range relationships {
		switch rel.RelationType {
		case RelationParentOf:
			if _, ok := childSet[rel.TargetTitle]; !ok {
				children = append(children, rel.TargetTitle)
				childSet[rel.TargetTitle] = struct{}{}
			}
		case RelationChildOf:
			metadata["parent"] = rel.TargetTitle
		}
	}
	if len(children) > 0 {
		metadata["children"] = children
	}

	data, err := yaml.Marshal(metadata)
	if err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "markdown.WriteRelationships", "failed to marshal front-matter", err)
	}

	newContent := fmt.Sprintf("---\n%s---\n\n%s", string(data), strings.TrimSpace(body))

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(newContent), 0o644); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "markdown.WriteRelationships", "failed to write temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return pkmerrors.Wrap(pkmerrors.KindIO, "markdown.WriteRelationships", "failed to rename into place", err)
	}

	return nil
}
