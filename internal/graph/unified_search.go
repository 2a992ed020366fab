package graph

import (
	"context"
	"sort"
	"strings"

	"github.com/orsinium-labs/stopwords"
)

var snippetStopwords = stopwords.MustGet("en")

// UnifiedSearchOptions toggles which sub-queries unified search runs and
// tunes the semantic sub-query's acceptance threshold.
type UnifiedSearchOptions struct {
	IncludeSemantic   bool
	IncludeGrep       bool
	IncludeTitle      bool
	IncludeTag        bool
	SemanticThreshold float64
}

// UnifiedSearch runs the enabled sub-queries, merges their hits keyed by
// (node id, source type) keeping the highest-scoring entry per key, and
// returns the top k by relevance descending.
func (g *Graph) UnifiedSearch(ctx context.Context, query string, k int, opts UnifiedSearchOptions) ([]UnifiedResult, error) {
	var results []UnifiedResult

	if opts.IncludeSemantic {
		hits, err := g.SearchSemantic(ctx, query, k)
		if err != nil {
			return nil, err
		}
		threshold := opts.SemanticThreshold
		for _, hit := range hits {
			if hit.Similarity < threshold {
				continue
			}
			results = append(results, UnifiedResult{
				Content:        hit.Content,
				Title:          titleOf(hit.Metadata),
				Category:       hit.Category,
				SourceType:     sourceTypeSemantic,
				RelevanceScore: hit.Similarity,
				NodeID:         hit.NodeID,
				Snippet:        bestSentenceSnippet(hit.Content, query),
				Metadata:       hit.Metadata,
			})
		}
	}

	if opts.IncludeGrep {
		limit := k / 2
		if limit < 1 {
			limit = 1
		}
		for _, fm := range g.SearchContent(query, g.search.CaseSensitiveGrep, limit) {
			relevance := min(1.0, float64(fm.TotalMatches)*0.1+0.5)
			for _, m := range fm.Matches {
				results = append(results, UnifiedResult{
					Title:          fm.Title,
					Category:       fm.Category,
					SourceType:     sourceTypeGrep,
					RelevanceScore: relevance,
					NodeID:         fm.NodeID,
					FilePath:       fm.FilePath,
					LineNumber:     m.LineNumber,
					Context:        m.Context,
					Snippet:        centeredSnippet(m.LineText, query, 200),
				})
			}
		}
	}

	if opts.IncludeTitle {
		lowerQuery := strings.ToLower(query)
		g.mu.RLock()
		nodes := make([]*Node, 0, len(g.nodesByID))
		for _, n := range g.nodesByID {
			nodes = append(nodes, n)
		}
		g.mu.RUnlock()

		for _, n := range nodes {
			lowerTitle := strings.ToLower(n.Title)
			var relevance float64
			switch {
			case lowerTitle == lowerQuery:
				relevance = 1.0
			case strings.HasPrefix(lowerTitle, lowerQuery):
				relevance = 0.9
			case strings.Contains(lowerTitle, lowerQuery):
				relevance = 0.7
			default:
				continue
			}
			results = append(results, UnifiedResult{
				Title:          n.Title,
				Category:       n.Category,
				SourceType:     sourceTypeTitle,
				RelevanceScore: relevance,
				NodeID:         n.ID,
				Snippet:        truncate(n.Title, 200),
			})
		}
	}

	if opts.IncludeTag {
		stripped := strings.ToLower(strings.TrimPrefix(query, "#"))

		g.mu.RLock()
		type tagHit struct {
			tag   string
			nodes map[string]struct{}
		}
		var hits []tagHit
		for tag, ids := range g.tagIndex {
			if strings.Contains(strings.ToLower(tag), stripped) {
				hits = append(hits, tagHit{tag: tag, nodes: ids})
			}
		}
		var tagged []UnifiedResult
		for _, hit := range hits {
			relevance := 0.8
			if strings.ToLower(hit.tag) == stripped {
				relevance = 1.0
			}
			for id := range hit.nodes {
				n, ok := g.nodesByID[id]
				if !ok {
					continue
				}
				tagged = append(tagged, UnifiedResult{
					Title:          n.Title,
					Category:       n.Category,
					SourceType:     sourceTypeTag,
					RelevanceScore: relevance,
					NodeID:         n.ID,
					Snippet:        "Tagged with: #" + hit.tag,
				})
			}
		}
		g.mu.RUnlock()
		results = append(results, tagged...)
	}

	return mergeUnifiedResults(results, k), nil
}

// mergeUnifiedResults de-duplicates by (node id, source type), keeping the
// highest-scoring entry per key, then sorts descending by relevance and
// truncates to k.
func mergeUnifiedResults(results []UnifiedResult, k int) []UnifiedResult {
	type key struct {
		nodeID     string
		sourceType string
	}
	best := make(map[key]UnifiedResult, len(results))
	for _, r := range results {
		kk := key{r.NodeID, r.SourceType}
		if existing, ok := best[kk]; !ok || r.RelevanceScore > existing.RelevanceScore {
			best[kk] = r
		}
	}

	merged := make([]UnifiedResult, 0, len(best))
	for _, r := range best {
		merged = append(merged, r)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})
	if k > 0 && len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

func titleOf(metadata map[string]any) string {
	if t, ok := metadata["title"].(string); ok {
		return t
	}
	return ""
}

// bestSentenceSnippet returns the sentence in content with the most
// word-overlap against query, truncated to 200 chars with an ellipsis.
func bestSentenceSnippet(content, query string) string {
	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return truncate(content, 200)
	}

	queryWords := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if snippetStopwords.Contains(w) {
			continue
		}
		queryWords[w] = struct{}{}
	}

	best := sentences[0]
	bestScore := -1
	for _, s := range sentences {
		score := 0
		for _, w := range strings.Fields(strings.ToLower(s)) {
			if _, ok := queryWords[w]; ok {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = s
		}
	}
	return truncate(strings.TrimSpace(best), 200)
}

func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// centeredSnippet returns a window of max chars around the first
// occurrence of query in line, with ellipses at truncated ends.
func centeredSnippet(line, query string, max int) string {
	if len(line) <= max {
		return line
	}

	idx := strings.Index(strings.ToLower(line), strings.ToLower(query))
	if idx < 0 {
		return truncate(line, max)
	}

	half := max / 2
	start := idx - half
	if start < 0 {
		start = 0
	}
	end := start + max
	if end > len(line) {
		end = len(line)
		start = max(0, end-max)
	}

	snippet := line[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(line) {
		snippet = snippet + "..."
	}
	return snippet
}
