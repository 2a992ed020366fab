package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/leefowlercu/pkmgraph/internal/pkmerrors"
)

const snapshotFileName = "enhanced_graph.json"

type snapshotMetadata struct {
	SavedAt    time.Time `json:"saved_at"`
	TotalNodes int       `json:"total_nodes"`
	TotalEdges int       `json:"total_edges"`
}

type snapshot struct {
	Nodes    []*Node          `json:"nodes"`
	Edges    []*Edge          `json:"edges"`
	Metadata snapshotMetadata `json:"metadata"`
}

func (g *Graph) snapshotPath() string {
	return filepath.Join(g.knowledgeBaseDir, snapshotFileName)
}

// saveGraph atomically serializes every node and edge to enhanced_graph.json.
// The write-temp-then-rename happens outside the graph's write lock; only
// the in-memory copy is taken while holding it.
func (g *Graph) saveGraph() error {
	g.mu.RLock()
	snap := snapshot{
		Nodes: make([]*Node, 0, len(g.nodesByID)),
		Edges: make([]*Edge, 0, len(g.edgesByID)),
		Metadata: snapshotMetadata{
			SavedAt:    time.Now(),
			TotalNodes: len(g.nodesByID),
			TotalEdges: len(g.edgesByID),
		},
	}
	for _, n := range g.nodesByID {
		snap.Nodes = append(snap.Nodes, n)
	}
	for _, e := range g.edgesByID {
		snap.Edges = append(snap.Edges, e)
	}
	g.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "graph.saveGraph", "failed to marshal snapshot", err)
	}

	if err := os.MkdirAll(g.knowledgeBaseDir, 0o755); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "graph.saveGraph", "failed to create knowledge base directory", err)
	}

	path := g.snapshotPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return pkmerrors.Wrap(pkmerrors.KindIO, "graph.saveGraph", "failed to write temp snapshot", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return pkmerrors.Wrap(pkmerrors.KindIO, "graph.saveGraph", "failed to rename snapshot into place", err)
	}
	return nil
}

// loadGraph is tolerant: a missing file leaves the graph empty, and a
// malformed or schema-mismatched file logs a warning and starts empty
// rather than failing initialization or crashing the service.
func (g *Graph) loadGraph() {
	data, err := os.ReadFile(g.snapshotPath())
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.Warn("failed to read graph snapshot, starting empty", "error", err)
		}
		return
	}
	if len(data) == 0 {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		g.logger.Warn("graph snapshot is malformed, starting empty", "error", err)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, n := range snap.Nodes {
		if n == nil || n.ID == "" {
			continue
		}
		g.addNodeLocked(n)
	}
	for _, e := range snap.Edges {
		if e == nil || e.SourceID == "" || e.TargetID == "" {
			continue
		}
		g.addEdgeLocked(e)
	}

	g.logger.Info("loaded graph snapshot", "nodes", len(g.nodesByID), "edges", len(g.edgesByID))
}
