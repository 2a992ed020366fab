package notes

import (
	"regexp"
	"sort"
	"strings"

	"github.com/orsinium-labs/stopwords"
)

var wordPattern = regexp.MustCompile(`\w+`)

var englishStopwords = stopwords.MustGet("en")

// RelatedNote pairs a candidate note with its overlap score against a
// query, highest score first.
type RelatedNote struct {
	Note  *Note
	Score float64
}

// Related scores every indexed note (optionally restricted to category)
// against content by Jaccard overlap of their \w+ token sets and returns
// the top limit matches with nonzero overlap. The decide-action
// heuristic reads the top score directly as a Jaccard coefficient, see
// DESIGN.md's Open Question decision on related-notes scoring.
func (m *Manager) Related(content, category string, limit int) []RelatedNote {
	m.mu.RLock()
	defer m.mu.RUnlock()

	queryWords := tokenize(content)
	if len(queryWords) == 0 {
		return nil
	}

	var scored []RelatedNote
	for _, note := range m.index {
		if category != "" && note.Category != category {
			continue
		}
		score := jaccard(queryWords, tokenize(note.Title+" "+note.Content))
		if score > 0 {
			scored = append(scored, RelatedNote{Note: note, Score: score})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Note.Title < scored[j].Note.Title
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// tokenize lowercases and splits s into \w+ tokens, dropping English
// stopwords so overlap scoring reflects content words rather than
// "the"/"and"/"of" noise common to every note.
func tokenize(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(s), -1) {
		if englishStopwords.Contains(w) {
			continue
		}
		words[w] = struct{}{}
	}
	return words
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
