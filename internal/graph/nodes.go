package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/leefowlercu/pkmgraph/internal/markdown"
	"github.com/leefowlercu/pkmgraph/internal/pkmerrors"
	"github.com/leefowlercu/pkmgraph/internal/providers"
)

// AddNoteFromContent parses title/body/category/tags directly (as opposed
// to reading them from a file on disk) and adds the resulting node to the
// graph, embedding its content into the vector collection. filePath is
// optional; when empty a synthetic "<title>.md" path is used, matching
// content generated by an external collaborator rather than scanned from
// the notes directory.
func (g *Graph) AddNoteFromContent(ctx context.Context, title, body, category string, tags []string, filePath string) (string, error) {
	if filePath == "" {
		filePath = title + ".md"
	}

	now := time.Now()
	parsed := &markdown.ParsedNote{
		Content: body,
		Metadata: map[string]any{
			"title":    title,
			"category": category,
			"tags":     tags,
			"created":  now.Format(time.RFC3339),
			"updated":  now.Format(time.RFC3339),
		},
		Tags:     tags,
		Title:    title,
		Category: category,
	}

	id, err := g.addNoteFromParsed(ctx, filePath, parsed)
	if err != nil {
		return "", err
	}

	resolved, broken := g.resolveWikiLinks()
	g.logger.Debug("wiki-link resolution after add", "resolved", resolved, "broken", broken)

	if err := g.saveGraph(); err != nil {
		return "", err
	}
	return id, nil
}

// addNoteFromParsed builds a Node from parsed content, registers it in
// every index, embeds it into the vector collection, and records the
// file-path -> id mapping. It does not run the wiki-link resolution pass;
// callers batching multiple additions should run that once at the end.
func (g *Graph) addNoteFromParsed(ctx context.Context, filePath string, parsed *markdown.ParsedNote) (string, error) {
	contentHash := parsed.ContentHash
	var id string
	if contentHash != "" {
		id = "note_" + contentHash
	}
	if id == "" {
		// Content hash wasn't precomputed (content added directly rather
		// than parsed from a file); derive it the same way C2 does.
		full := fmt.Sprintf("%s|%s|%s|%v", parsed.Title, parsed.Content, parsed.Category, parsed.Tags)
		contentHash = hashString(full)
		id = "note_" + contentHash
	}

	now := time.Now()
	n := &Node{
		ID:          id,
		Title:       parsed.Title,
		Content:     parsed.Content,
		Category:    parsed.Category,
		Tags:        parsed.Tags,
		Metadata:    parsed.Metadata,
		ContentHash: contentHash,
		CreatedAt:   now,
		UpdatedAt:   now,
		FilePath:    filePath,
		ParentID:    parsed.Parent,
		ChildrenIDs: parsed.Children,
	}

	g.mu.Lock()
	g.addNodeLocked(n)
	g.mu.Unlock()

	if err := g.embedNode(ctx, n); err != nil {
		g.logger.Warn("failed to embed note", "id", id, "error", err)
	}

	if err := g.tracker.SetNoteID(filePath, id); err != nil {
		return "", err
	}

	return id, nil
}

// embedNode computes and stores the vector for a node's content. Per the
// error-handling design, an embedding failure degrades the node (it simply
// won't surface in semantic search) rather than failing the add.
func (g *Graph) embedNode(ctx context.Context, n *Node) error {
	if g.embedder == nil || g.vectors == nil {
		return nil
	}

	result, err := g.embedder.Embed(ctx, providers.EmbeddingsRequest{
		Content:     n.Content,
		ChunkID:     n.ID,
		ContentHash: n.ContentHash,
	})
	if err != nil {
		return pkmerrors.Wrap(pkmerrors.KindEmbedding, "graph.embedNode", "failed to embed note content", err)
	}

	item := vectorEntryFromNode(n, result.Embedding)
	if err := g.vectors.Add(g.collection, item); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "graph.embedNode", "failed to store note embedding", err)
	}
	return nil
}
