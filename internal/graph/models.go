// Package graph owns the in-memory knowledge graph: nodes, edges, and the
// four derived indexes (title, category, tag, hierarchy) that every other
// query in the system is built on. It is the single writer domain described
// by the concurrency model; callers serialize through its RWMutex rather
// than through the stores it owns directly.
package graph

import "time"

// Node is the graph's representation of a single note. Content is kept
// in-memory for semantic chunking and grep-style search; Get* projections
// that feed visualization drop it for efficiency.
type Node struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	Metadata    map[string]any `json:"metadata"`
	ContentHash string         `json:"content_hash"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	FilePath    string         `json:"file_path"`
	ParentID    string         `json:"parent_id,omitempty"`
	ChildrenIDs []string       `json:"children_ids,omitempty"`
}

// Edge is a typed, weighted relationship between two nodes. The tuple
// (SourceID, TargetID, RelationType) is its identity; at most one edge
// exists per tuple.
type Edge struct {
	SourceID     string         `json:"source_id"`
	TargetID     string         `json:"target_id"`
	RelationType string         `json:"relation_type"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Weight       float64        `json:"weight"`
	CreatedAt    time.Time      `json:"created_at"`
}

func edgeKey(sourceID, targetID, relationType string) string {
	return sourceID + "\x00" + targetID + "\x00" + relationType
}

// SearchResult is a single semantic-search hit.
type SearchResult struct {
	NodeID     string         `json:"node_id"`
	Content    string         `json:"content"`
	Category   string         `json:"category"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata"`
}

// FileMatch is one note's worth of grep/content-search hits.
type FileMatch struct {
	NodeID       string      `json:"node_id"`
	Title        string      `json:"title"`
	Category     string      `json:"category"`
	FilePath     string      `json:"file_path"`
	ContentHash  string      `json:"content_hash"`
	Tags         []string    `json:"tags"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Matches      []LineMatch `json:"matches"`
	TotalMatches int         `json:"total_matches"`
}

// LineMatch is a single matched line within a file, with surrounding
// context and a ">>>" marker on the hit line.
type LineMatch struct {
	LineNumber int    `json:"line_number"`
	LineText   string `json:"line_content"`
	Context    string `json:"context"`
}

// BacklinkEntry describes a node linking into another node.
type BacklinkEntry struct {
	NodeID       string         `json:"node_id"`
	Title        string         `json:"title"`
	RelationType string         `json:"relation_type"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Hierarchy is a recursive parent/children projection rooted at a node.
type Hierarchy struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Category string      `json:"category"`
	Children []Hierarchy `json:"children"`
}

// BrokenLink is an edge whose target id no longer resolves to a node.
type BrokenLink struct {
	SourceID     string         `json:"source_id"`
	SourceTitle  string         `json:"source_title"`
	TargetID     string         `json:"target_id"`
	RelationType string         `json:"relation_type"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// GraphData is the visualization projection: nodes without body content,
// all edges, and summary stats.
type GraphData struct {
	Nodes []GraphDataNode `json:"nodes"`
	Edges []GraphDataEdge `json:"edges"`
	Stats GraphStats      `json:"stats"`
}

// GraphDataNode is a Node stripped of Content for the visualization view.
type GraphDataNode struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	FilePath    string         `json:"file_path"`
	ContentHash string         `json:"content_hash"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Metadata    map[string]any `json:"metadata"`
}

// GraphDataEdge is the visualization projection of an Edge.
type GraphDataEdge struct {
	Source       string         `json:"source"`
	Target       string         `json:"target"`
	Weight       float64        `json:"weight"`
	RelationType string         `json:"relation_type"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// GraphStats summarizes node/edge counts for the visualization view.
type GraphStats struct {
	TotalNodes int      `json:"total_nodes"`
	TotalEdges int      `json:"total_edges"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

// UnifiedResult is one hit from the unified search/ranking layer, merged
// and de-duplicated across its semantic, grep, title, and tag sub-queries.
type UnifiedResult struct {
	Content         string         `json:"content,omitempty"`
	Title           string         `json:"title"`
	Category        string         `json:"category"`
	SourceType      string         `json:"source_type"`
	RelevanceScore  float64        `json:"relevance_score"`
	NodeID          string         `json:"node_id"`
	FilePath        string         `json:"file_path,omitempty"`
	LineNumber      int            `json:"line_number,omitempty"`
	Context         string         `json:"context,omitempty"`
	Snippet         string         `json:"snippet"`
	ChunkIndex      int            `json:"chunk_index,omitempty"`
	TotalChunks     int            `json:"total_chunks,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

const (
	sourceTypeSemantic = "semantic"
	sourceTypeGrep     = "grep"
	sourceTypeTitle    = "title"
	sourceTypeTag      = "tag"
)

// ChangesDetected classifies every file seen by a sync pass.
type ChangesDetected struct {
	NewFiles      int  `json:"new_files"`
	ModifiedFiles int  `json:"modified_files"`
	DeletedFiles  int  `json:"deleted_files"`
	UnchangedFiles int `json:"unchanged_files"`
	TotalChanges  int  `json:"total_changes"`
	ForceRebuild  bool `json:"force_rebuild"`
}

// CleanupResults reports vector/hash-cache reaping done at the end of a
// full sync.
type CleanupResults struct {
	OrphanedVectorsRemoved int `json:"orphaned_vectors_removed"`
	StaleHashEntriesRemoved int `json:"stale_hash_entries_removed"`
}

// SyncReport is the structured result of an on-demand sync pass.
type SyncReport struct {
	// RunID uniquely identifies this sync pass across its log lines, so a
	// concurrent watcher-triggered sync and an operator-triggered sync
	// don't interleave into one unreadable trace.
	RunID                 string           `json:"run_id"`
	SyncCompleted         bool             `json:"sync_completed"`
	ProcessingTimeSeconds float64          `json:"processing_time_seconds"`
	Timestamp             time.Time        `json:"timestamp"`
	VaultFilesFound       int              `json:"vault_files_found"`
	GraphNodesBefore      int              `json:"graph_nodes_before"`
	ChangesDetected       ChangesDetected  `json:"changes_detected"`
	ActionsTaken          []string         `json:"actions_taken"`
	GraphNodesAfter       int              `json:"graph_nodes_after"`
	GraphEdgesAfter       int              `json:"graph_edges_after"`
	Errors                []string         `json:"errors"`
	Warnings              []string         `json:"warnings"`
	CleanupResults        *CleanupResults  `json:"cleanup_results,omitempty"`
}

// Statistics is the richer counts/histograms projection returned by
// GetStatistics.
type Statistics struct {
	TotalNodes         int            `json:"total_nodes"`
	TotalEdges         int            `json:"total_edges"`
	Categories         map[string]int `json:"categories"`
	Tags               map[string]int `json:"tags"`
	RelationshipTypes  map[string]int `json:"relationship_types"`
	Orphans            int            `json:"orphans"`
	BrokenLinks        int            `json:"broken_links"`
	HierarchyDepth     int            `json:"hierarchy_depth"`
}
