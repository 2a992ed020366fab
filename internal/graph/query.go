package graph

// NodeByTitle returns the node registered under an exact title match, the
// same lookup wiki-link resolution uses internally. Title collisions keep
// the first writer; FindTitleCollisions surfaces the rest.
func (g *Graph) NodeByTitle(title string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.titleToID[title]
	if !ok {
		return nil, false
	}
	return g.nodeByIDLocked(id)
}

// GetBacklinks returns every node that links to id, via the link cache.
func (g *Graph) GetBacklinks(id string) []BacklinkEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []BacklinkEntry
	for sourceID := range g.links.Incoming(id) {
		source, ok := g.nodesByID[sourceID]
		if !ok {
			continue
		}
		entry := BacklinkEntry{NodeID: sourceID, Title: source.Title}
		if md, ok := g.links.Metadata(sourceID, id); ok {
			entry.RelationType = md["relation_type"]
		}
		out = append(out, entry)
	}
	return out
}

// GetOutgoing returns every node id links to, via the link cache.
func (g *Graph) GetOutgoing(id string) []BacklinkEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []BacklinkEntry
	for targetID := range g.links.Outgoing(id) {
		target, ok := g.nodesByID[targetID]
		if !ok {
			continue
		}
		entry := BacklinkEntry{NodeID: targetID, Title: target.Title}
		if md, ok := g.links.Metadata(id, targetID); ok {
			entry.RelationType = md["relation_type"]
		}
		out = append(out, entry)
	}
	return out
}

// GetNodesByCategory returns every node in category.
func (g *Graph) GetNodesByCategory(category string) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := g.categoryIndex[category]
	out := make([]*Node, 0, len(ids))
	for id := range ids {
		if n, ok := g.nodesByID[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// GetNodesByTag returns every node tagged with tag.
func (g *Graph) GetNodesByTag(tag string) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := g.tagIndex[tag]
	out := make([]*Node, 0, len(ids))
	for id := range ids {
		if n, ok := g.nodesByID[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// GetHierarchy recursively expands the children of parentID. It is
// cycle-safe: a node already visited on the current path is not
// re-expanded.
func (g *Graph) GetHierarchy(parentID string) (Hierarchy, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hierarchyLocked(parentID, make(map[string]struct{}))
}

func (g *Graph) hierarchyLocked(id string, visited map[string]struct{}) (Hierarchy, bool) {
	n, ok := g.nodesByID[id]
	if !ok {
		return Hierarchy{}, false
	}
	if _, seen := visited[id]; seen {
		return Hierarchy{ID: id, Title: n.Title, Category: n.Category}, true
	}
	visited[id] = struct{}{}

	h := Hierarchy{ID: id, Title: n.Title, Category: n.Category}
	for childID := range g.hierarchyIndex[id] {
		if child, ok := g.hierarchyLocked(childID, visited); ok {
			h.Children = append(h.Children, child)
		}
	}
	return h, true
}

// FindOrphans returns every node with no incoming links.
func (g *Graph) FindOrphans() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []*Node
	for id, n := range g.nodesByID {
		if len(g.links.Incoming(id)) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// FindBrokenLinks returns every edge whose target id is not a known node.
func (g *Graph) FindBrokenLinks() []BrokenLink {
	g.mu.RLock()
	defer g.mu.RUnlock()

	validIDs := make(map[string]struct{}, len(g.nodesByID))
	for id := range g.nodesByID {
		validIDs[id] = struct{}{}
	}

	var out []BrokenLink
	for _, b := range g.links.Broken(validIDs) {
		title := "Unknown"
		if source, ok := g.nodesByID[b.Source]; ok {
			title = source.Title
		}
		relType := ""
		if md, ok := g.links.Metadata(b.Source, b.Target); ok {
			relType = md["relation_type"]
		}
		out = append(out, BrokenLink{
			SourceID:     b.Source,
			SourceTitle:  title,
			TargetID:     b.Target,
			RelationType: relType,
		})
	}
	return out
}

// GetGraphData returns the visualization projection: nodes without body
// content, every edge, and summary stats.
func (g *Graph) GetGraphData() GraphData {
	g.mu.RLock()
	defer g.mu.RUnlock()

	data := GraphData{
		Nodes: make([]GraphDataNode, 0, len(g.nodesByID)),
		Edges: make([]GraphDataEdge, 0, len(g.edgesByID)),
	}
	for _, n := range g.nodesByID {
		data.Nodes = append(data.Nodes, GraphDataNode{
			ID:          n.ID,
			Title:       n.Title,
			Category:    n.Category,
			Tags:        n.Tags,
			FilePath:    n.FilePath,
			ContentHash: n.ContentHash,
			CreatedAt:   n.CreatedAt,
			UpdatedAt:   n.UpdatedAt,
			Metadata:    n.Metadata,
		})
	}
	for _, e := range g.edgesByID {
		data.Edges = append(data.Edges, GraphDataEdge{
			Source:       e.SourceID,
			Target:       e.TargetID,
			Weight:       e.Weight,
			RelationType: e.RelationType,
			Metadata:     e.Metadata,
		})
	}

	data.Stats = GraphStats{
		TotalNodes: len(data.Nodes),
		TotalEdges: len(data.Edges),
		Categories: keys(g.categoryIndex),
		Tags:       keys(g.tagIndex),
	}
	return data
}

// GetStatistics returns counts and histograms over categories, tags, and
// relation types, plus orphan/broken-link counts and hierarchy depth.
func (g *Graph) GetStatistics() Statistics {
	categories := make(map[string]int)
	tags := make(map[string]int)
	relTypes := make(map[string]int)

	g.mu.RLock()
	for cat, ids := range g.categoryIndex {
		categories[cat] = len(ids)
	}
	for tag, ids := range g.tagIndex {
		tags[tag] = len(ids)
	}
	for _, e := range g.edgesByID {
		relTypes[e.RelationType]++
	}
	totalNodes := len(g.nodesByID)
	totalEdges := len(g.edgesByID)
	g.mu.RUnlock()

	return Statistics{
		TotalNodes:        totalNodes,
		TotalEdges:        totalEdges,
		Categories:        categories,
		Tags:              tags,
		RelationshipTypes: relTypes,
		Orphans:           len(g.FindOrphans()),
		BrokenLinks:       len(g.FindBrokenLinks()),
		HierarchyDepth:    g.hierarchyDepth(),
	}
}

func (g *Graph) hierarchyDepth() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var roots []string
	for id, n := range g.nodesByID {
		if n.ParentID == "" {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 {
		return 0
	}

	max := 0
	for _, root := range roots {
		if d := g.depthLocked(root, make(map[string]struct{})); d > max {
			max = d
		}
	}
	return max
}

func (g *Graph) depthLocked(id string, visited map[string]struct{}) int {
	if _, seen := visited[id]; seen {
		return 0
	}
	visited[id] = struct{}{}

	children := g.hierarchyIndex[id]
	if len(children) == 0 {
		return 1
	}
	max := 0
	for childID := range children {
		visitedCopy := make(map[string]struct{}, len(visited))
		for k := range visited {
			visitedCopy[k] = struct{}{}
		}
		if d := g.depthLocked(childID, visitedCopy); d > max {
			max = d
		}
	}
	return 1 + max
}

func keys(m map[string]map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
