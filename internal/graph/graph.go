package graph

import (
	"context"
	"log/slog"
	"sync"

	"github.com/leefowlercu/pkmgraph/internal/config"
	"github.com/leefowlercu/pkmgraph/internal/embeddings"
	"github.com/leefowlercu/pkmgraph/internal/hashcache"
	"github.com/leefowlercu/pkmgraph/internal/markdown"
	"github.com/leefowlercu/pkmgraph/internal/notes"
	"github.com/leefowlercu/pkmgraph/internal/pkmerrors"
	"github.com/leefowlercu/pkmgraph/internal/providers"
	"github.com/leefowlercu/pkmgraph/internal/vectorstore"
)

// Graph is the single-writer domain over the knowledge base: in-memory
// nodes, edges, and their derived indexes, plus the stores it coordinates
// (link cache, hash tracker, notes manager, embeddings provider, vector
// store). Mutations take the write lock; queries take the read lock.
type Graph struct {
	mu sync.RWMutex

	nodesByID map[string]*Node
	edgesByID map[string]*Edge // keyed by edgeKey(source, target, relation)

	titleToID       map[string]string   // first writer wins
	titleCollisions map[string][]string // additional ids sharing a title, beyond the first

	categoryIndex  map[string]map[string]struct{}
	tagIndex       map[string]map[string]struct{}
	hierarchyIndex map[string]map[string]struct{}

	links *markdown.LinkCache

	notesDir         string
	knowledgeBaseDir string

	tracker    *hashcache.Tracker
	notesMgr   *notes.Manager
	embedder   providers.EmbeddingsProvider
	vectors    *vectorstore.Store
	collection string

	search config.SearchConfig

	logger *slog.Logger
}

// New constructs a Graph over the given stores. It performs no I/O; call
// Init to load the snapshot and reconcile against the notes directory.
func New(
	notesDir, knowledgeBaseDir string,
	tracker *hashcache.Tracker,
	notesMgr *notes.Manager,
	embedder providers.EmbeddingsProvider,
	vectors *vectorstore.Store,
	search config.SearchConfig,
	logger *slog.Logger,
) *Graph {
	if logger == nil {
		logger = slog.Default()
	}

	return &Graph{
		nodesByID:        make(map[string]*Node),
		edgesByID:        make(map[string]*Edge),
		titleToID:        make(map[string]string),
		titleCollisions:  make(map[string][]string),
		categoryIndex:    make(map[string]map[string]struct{}),
		tagIndex:         make(map[string]map[string]struct{}),
		hierarchyIndex:   make(map[string]map[string]struct{}),
		links:            markdown.NewLinkCache(),
		notesDir:         notesDir,
		knowledgeBaseDir: knowledgeBaseDir,
		tracker:          tracker,
		notesMgr:         notesMgr,
		embedder:         embedder,
		vectors:          vectors,
		search:           search,
		logger:           logger,
	}
}

// Init loads the persisted snapshot (tolerantly), opens the vector
// collection for the configured embedding provider/model, and reconciles
// the graph against the notes directory: any note present in the notes
// manager's index but missing a graph node is added, after which the
// wiki-link resolution pass runs once over everything.
func (g *Graph) Init(ctx context.Context) error {
	g.collection = embeddings.CollectionName(g.embedder.Name(), g.embedder.ModelName())
	if err := g.vectors.OpenOrCreateCollection(g.collection, g.embedder.Dimensions()); err != nil {
		return err
	}

	g.loadGraph()

	for _, note := range g.notesMgr.All() {
		if _, known := g.nodeIDForPath(note.Path); known {
			continue
		}
		if _, err := g.addNoteFromParsed(ctx, note.Path, noteToParsedNote(note)); err != nil {
			g.logger.Warn("failed to add note during graph init", "path", note.Path, "error", err)
		}
	}

	resolved, broken := g.resolveWikiLinks()
	g.logger.Info("wiki-link resolution complete", "resolved", resolved, "broken", broken)

	return g.saveGraph()
}

// nodeIDForPath resolves a note's file path to a node id via the hash
// tracker's note mapping.
func (g *Graph) nodeIDForPath(path string) (string, bool) {
	return g.tracker.NoteID(path)
}

// FindTitleCollisions returns every title with more than one node id,
// mapping title to the full set of colliding ids (including the one
// title_to_id currently resolves to).
func (g *Graph) FindTitleCollisions() map[string][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[string][]string, len(g.titleCollisions))
	for title, extra := range g.titleCollisions {
		first := g.titleToID[title]
		out[title] = append([]string{first}, extra...)
	}
	return out
}

func (g *Graph) nodeByIDLocked(id string) (*Node, bool) {
	n, ok := g.nodesByID[id]
	return n, ok
}

// addNodeLocked inserts node into every index. Caller holds the write lock.
func (g *Graph) addNodeLocked(n *Node) {
	g.nodesByID[n.ID] = n

	if existing, ok := g.titleToID[n.Title]; ok && existing != n.ID {
		g.titleCollisions[n.Title] = append(g.titleCollisions[n.Title], n.ID)
		g.logger.Warn("title collision", "title", n.Title, "existing_id", existing, "new_id", n.ID)
	} else if !ok {
		g.titleToID[n.Title] = n.ID
	}

	if g.categoryIndex[n.Category] == nil {
		g.categoryIndex[n.Category] = make(map[string]struct{})
	}
	g.categoryIndex[n.Category][n.ID] = struct{}{}

	for _, tag := range n.Tags {
		if g.tagIndex[tag] == nil {
			g.tagIndex[tag] = make(map[string]struct{})
		}
		g.tagIndex[tag][n.ID] = struct{}{}
	}

	if n.ParentID != "" {
		if g.hierarchyIndex[n.ParentID] == nil {
			g.hierarchyIndex[n.ParentID] = make(map[string]struct{})
		}
		g.hierarchyIndex[n.ParentID][n.ID] = struct{}{}
	}
}

// removeNodeLocked deletes id from every index and prunes empty sets.
// Caller holds the write lock.
func (g *Graph) removeNodeLocked(id string) {
	n, ok := g.nodesByID[id]
	if !ok {
		return
	}
	delete(g.nodesByID, id)

	if g.titleToID[n.Title] == id {
		delete(g.titleToID, n.Title)
		if rest := g.titleCollisions[n.Title]; len(rest) > 0 {
			g.titleToID[n.Title] = rest[0]
			g.titleCollisions[n.Title] = rest[1:]
			if len(g.titleCollisions[n.Title]) == 0 {
				delete(g.titleCollisions, n.Title)
			}
		}
	} else {
		g.titleCollisions[n.Title] = removeString(g.titleCollisions[n.Title], id)
		if len(g.titleCollisions[n.Title]) == 0 {
			delete(g.titleCollisions, n.Title)
		}
	}

	if set := g.categoryIndex[n.Category]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(g.categoryIndex, n.Category)
		}
	}
	for _, tag := range n.Tags {
		if set := g.tagIndex[tag]; set != nil {
			delete(set, id)
			if len(set) == 0 {
				delete(g.tagIndex, tag)
			}
		}
	}
	if n.ParentID != "" {
		if set := g.hierarchyIndex[n.ParentID]; set != nil {
			delete(set, id)
			if len(set) == 0 {
				delete(g.hierarchyIndex, n.ParentID)
			}
		}
	}

	for key, edge := range g.edgesByID {
		if edge.SourceID == id || edge.TargetID == id {
			delete(g.edgesByID, key)
		}
	}
	g.links.RemoveNode(id)
}

func removeString(ss []string, s string) []string {
	out := ss[:0]
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// addEdgeLocked inserts or replaces the edge for its (source, target,
// relation) tuple. Caller holds the write lock.
func (g *Graph) addEdgeLocked(e *Edge) {
	g.edgesByID[edgeKey(e.SourceID, e.TargetID, e.RelationType)] = e
	g.links.Add(e.SourceID, e.TargetID, markdown.LinkMetadata{
		"relation_type": e.RelationType,
	})
}

// RemoveNode deletes a node and all incident edges, and removes its
// vector, hash-cache, and note-mapping entries. It is exported for the
// sync pipeline (C8), which drives removal from filesystem events.
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	n, ok := g.nodesByID[id]
	if !ok {
		g.mu.Unlock()
		return nil
	}
	g.removeNodeLocked(id)
	g.mu.Unlock()

	if err := g.vectors.Delete(g.collection, []string{id}); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindVectorStore, "graph.RemoveNode", "failed to delete vector", err)
	}
	if n.FilePath != "" {
		_ = g.tracker.RemoveNoteID(n.FilePath)
	}
	return nil
}
