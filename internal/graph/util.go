package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/leefowlercu/pkmgraph/internal/markdown"
	"github.com/leefowlercu/pkmgraph/internal/notes"
	"github.com/leefowlercu/pkmgraph/internal/vectorstore"
)

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}

// noteToParsedNote adapts a notes-manager Note (C4's on-disk view) into
// the markdown.ParsedNote shape addNoteFromParsed expects, for sync paths
// that already went through the notes manager rather than a direct
// markdown.Parse call.
func noteToParsedNote(n *notes.Note) *markdown.ParsedNote {
	return &markdown.ParsedNote{
		Content:     n.Content,
		Metadata:    n.Metadata,
		Tags:        n.Tags,
		Title:       n.Title,
		Category:    n.Category,
		ContentHash: n.ContentHash,
	}
}

// vectorEntryFromNode builds the vector-store item for a node, carrying
// the metadata fields spec.md requires alongside the embedding.
func vectorEntryFromNode(n *Node, embedding []float32) vectorstore.Item {
	return vectorstore.Item{
		ID:        n.ID,
		Document:  n.Content,
		Embedding: embedding,
		Metadata: map[string]any{
			"title":       n.Title,
			"category":    n.Category,
			"tags":        strings.Join(n.Tags, ", "),
			"content_hash": n.ContentHash,
			"file_path":   n.FilePath,
			"created_at":  n.CreatedAt,
			"updated_at":  n.UpdatedAt,
		},
	}
}
