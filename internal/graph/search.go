package graph

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/leefowlercu/pkmgraph/internal/providers"
)

// SearchSemantic embeds query, queries the vector collection, and maps
// hits back to nodes.
func (g *Graph) SearchSemantic(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if g.embedder == nil || g.vectors == nil {
		return nil, nil
	}

	result, err := g.embedder.Embed(ctx, providers.EmbeddingsRequest{Content: query})
	if err != nil {
		// Semantic search degrades to empty on embedding failure; other
		// unified-search sub-queries still run.
		g.logger.Warn("semantic search embedding failed", "error", err)
		return nil, nil
	}

	matches, err := g.vectors.Query(g.collection, result.Embedding, k)
	if err != nil {
		g.logger.Warn("semantic search query failed", "error", err)
		return nil, nil
	}

	out := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		category := ""
		if c, ok := m.Metadata["category"].(string); ok {
			category = c
		}
		out = append(out, SearchResult{
			NodeID:     m.ID,
			Content:    m.Document,
			Category:   category,
			Similarity: m.Similarity,
			Metadata:   m.Metadata,
		})
	}
	return out, nil
}

const maxMatchesPerFile = 5

// SearchContent scans every node's stored content line by line for query,
// as a regex by default, falling back to a literal substring search if
// query does not compile as a regex. Results are capped at 5 matches per
// file and k files, ranked by total matches descending.
func (g *Graph) SearchContent(query string, caseSensitive bool, k int) []FileMatch {
	matcher := newContentMatcher(query, caseSensitive)

	g.mu.RLock()
	nodes := make([]*Node, 0, len(g.nodesByID))
	for _, n := range g.nodesByID {
		nodes = append(nodes, n)
	}
	g.mu.RUnlock()

	var results []FileMatch
	for _, n := range nodes {
		lines := strings.Split(n.Content, "\n")
		var matches []LineMatch
		for i, line := range lines {
			if !matcher(line) {
				continue
			}
			matches = append(matches, LineMatch{
				LineNumber: i + 1,
				LineText:   strings.TrimSpace(line),
				Context:    lineContext(lines, i, 2),
			})
			if len(matches) >= maxMatchesPerFile {
				break
			}
		}
		if len(matches) == 0 {
			continue
		}
		results = append(results, FileMatch{
			NodeID:       n.ID,
			Title:        n.Title,
			Category:     n.Category,
			FilePath:     n.FilePath,
			ContentHash:  n.ContentHash,
			Tags:         n.Tags,
			UpdatedAt:    n.UpdatedAt,
			Matches:      matches,
			TotalMatches: len(matches),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalMatches > results[j].TotalMatches
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// newContentMatcher returns a per-line predicate for query. When query
// compiles as a regex it is used directly; a query with no regex
// metacharacters is instead matched with a single-pattern Aho-Corasick
// automaton, which is faster than backtracking regexp for plain substring
// search. An invalid regex falls back to a literal (QuoteMeta'd) search.
func newContentMatcher(query string, caseSensitive bool) func(line string) bool {
	if query == regexp.QuoteMeta(query) {
		needle := query
		if !caseSensitive {
			needle = strings.ToLower(needle)
		}
		automaton, err := ahocorasick.NewBuilder().
			AddStrings([]string{needle}).
			SetMatchKind(ahocorasick.LeftmostLongest).
			Build()
		if err == nil {
			return func(line string) bool {
				haystack := line
				if !caseSensitive {
					haystack = strings.ToLower(haystack)
				}
				return len(automaton.FindAllOverlapping([]byte(haystack))) > 0
			}
		}
	}

	flags := ""
	if !caseSensitive {
		flags = "(?i)"
	}
	pattern, err := regexp.Compile(flags + query)
	if err != nil {
		pattern = regexp.MustCompile(flags + regexp.QuoteMeta(query))
	}
	return pattern.MatchString
}

// lineContext returns a window of `radius` lines on either side of index,
// each numbered, with a ">>>" marker on the matched line.
func lineContext(lines []string, index, radius int) string {
	start := max(0, index-radius)
	end := min(len(lines), index+radius+1)

	var b strings.Builder
	for i := start; i < end; i++ {
		prefix := "    "
		if i == index {
			prefix = ">>> "
		}
		fmt.Fprintf(&b, "%s%d: %s\n", prefix, i+1, lines[i])
	}
	return strings.TrimRight(b.String(), "\n")
}
