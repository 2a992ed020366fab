package markdown

import "sync"

// LinkMetadata describes a single source->target link.
type LinkMetadata map[string]string

type linkKey struct {
	source string
	target string
}

// LinkCache is a pure in-memory bidirectional link index providing O(1)
// amortized backlink queries. It holds no knowledge of node content; the
// graph (C7) is responsible for deciding what counts as a node id.
type LinkCache struct {
	mu       sync.RWMutex
	outgoing map[string]map[string]struct{}
	incoming map[string]map[string]struct{}
	metadata map[linkKey]LinkMetadata
}

// NewLinkCache creates an empty LinkCache.
func NewLinkCache() *LinkCache {
	return &LinkCache{
		outgoing: make(map[string]map[string]struct{}),
		incoming: make(map[string]map[string]struct{}),
		metadata: make(map[linkKey]LinkMetadata),
	}
}

// Add records a link from source to target, with optional metadata.
func (c *LinkCache) Add(source, target string, metadata LinkMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.outgoing[source] == nil {
		c.outgoing[source] = make(map[string]struct{})
	}
	c.outgoing[source][target] = struct{}{}

	if c.incoming[target] == nil {
		c.incoming[target] = make(map[string]struct{})
	}
	c.incoming[target][source] = struct{}{}

	if metadata != nil {
		c.metadata[linkKey{source, target}] = metadata
	}
}

// Outgoing returns the set of ids source links to.
func (c *LinkCache) Outgoing(source string) map[string]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySet(c.outgoing[source])
}

// Incoming returns the set of ids that link to target (backlinks).
func (c *LinkCache) Incoming(target string) map[string]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySet(c.incoming[target])
}

// Metadata returns the metadata recorded for a specific source->target
// link, if any.
func (c *LinkCache) Metadata(source, target string) (LinkMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	md, ok := c.metadata[linkKey{source, target}]
	return md, ok
}

// RemoveNode deletes every link into or out of id, along with its
// metadata entries.
func (c *LinkCache) RemoveNode(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for target := range c.outgoing[id] {
		delete(c.incoming[target], id)
		delete(c.metadata, linkKey{id, target})
	}
	delete(c.outgoing, id)

	for source := range c.incoming[id] {
		delete(c.outgoing[source], id)
		delete(c.metadata, linkKey{source, id})
	}
	delete(c.incoming, id)
}

// Orphans returns the set of ids with no incoming links, among all ids
// that appear as either a source or a target.
func (c *LinkCache) Orphans() map[string]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := make(map[string]struct{})
	for id := range c.outgoing {
		all[id] = struct{}{}
	}
	for id := range c.incoming {
		all[id] = struct{}{}
	}

	orphans := make(map[string]struct{})
	for id := range all {
		if len(c.incoming[id]) == 0 {
			orphans[id] = struct{}{}
		}
	}
	return orphans
}

// BrokenLink is an outgoing link whose target is not a known node id.
type BrokenLink struct {
	Source string
	Target string
}

// Broken returns every outgoing link whose target is not in validIDs.
func (c *LinkCache) Broken(validIDs map[string]struct{}) []BrokenLink {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var broken []BrokenLink
	for source, targets := range c.outgoing {
		for target := range targets {
			if _, ok := validIDs[target]; !ok {
				broken = append(broken, BrokenLink{Source: source, Target: target})
			}
		}
	}
	return broken
}

func copySet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
