package graph

import (
	"time"

	"github.com/leefowlercu/pkmgraph/internal/markdown"
)

// resolveWikiLinks walks every node's stored content, re-extracting its
// wiki-links and typed relationships, and adds edges for whatever
// resolves. It is idempotent: re-running it after unrelated additions
// only adds newly-resolvable edges, since addEdgeLocked replaces by
// (source, target, relation) tuple rather than duplicating.
func (g *Graph) resolveWikiLinks() (resolved, broken int) {
	g.mu.RLock()
	nodes := make([]*Node, 0, len(g.nodesByID))
	for _, n := range g.nodesByID {
		nodes = append(nodes, n)
	}
	g.mu.RUnlock()

	for _, n := range nodes {
		for _, link := range markdown.ParseWikiLinks(n.Content) {
			targetID, ok := g.resolveWikiLinkTarget(link.Target)
			if !ok {
				broken++
				g.logger.Debug("broken wiki-link", "source", n.Title, "target", link.Target)
				continue
			}

			g.mu.Lock()
			g.addEdgeLocked(&Edge{
				SourceID:     n.ID,
				TargetID:     targetID,
				RelationType: "wiki_link",
				Metadata: map[string]any{
					"display":     link.Display,
					"line_number": link.LineNumber,
					"context":     link.Context,
				},
				Weight:    1.0,
				CreatedAt: time.Now(),
			})
			g.mu.Unlock()
			resolved++
		}

		for _, rel := range markdown.ParseRelationships(n.Content, n.Title) {
			targetID, ok := g.titleLookup(rel.TargetTitle)
			if !ok {
				continue
			}
			g.mu.Lock()
			g.addEdgeLocked(&Edge{
				SourceID:     n.ID,
				TargetID:     targetID,
				RelationType: string(rel.RelationType),
				Weight:       1.0,
				CreatedAt:    time.Now(),
			})
			g.mu.Unlock()
		}
	}

	return resolved, broken
}

func (g *Graph) titleLookup(title string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.titleToID[title]
	return id, ok
}

// resolveWikiLinkTarget resolves a wiki-link target to a node id. It
// defers to the notes manager's title/path matching strategies to find
// the target's file path, then maps that path to a node id via the hash
// tracker's note mapping (the same mapping every node registers itself
// into when added).
func (g *Graph) resolveWikiLinkTarget(target string) (string, bool) {
	if id, ok := g.titleLookup(target); ok {
		return id, true
	}

	path, ok := g.notesMgr.ResolveLinkTarget(target)
	if !ok {
		return "", false
	}
	return g.tracker.NoteID(path)
}
