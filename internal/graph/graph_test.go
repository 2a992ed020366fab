package graph

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/pkmgraph/internal/config"
	"github.com/leefowlercu/pkmgraph/internal/hashcache"
	"github.com/leefowlercu/pkmgraph/internal/notes"
	"github.com/leefowlercu/pkmgraph/internal/providers"
	"github.com/leefowlercu/pkmgraph/internal/vectorstore"
)

// stubEmbedder implements providers.EmbeddingsProvider with a small fixed
// dimensionality so tests can exercise the embedding path without a real
// provider.
type stubEmbedder struct{}

func (s *stubEmbedder) Name() string                      { return "stub" }
func (s *stubEmbedder) Type() providers.ProviderType       { return providers.ProviderTypeEmbeddings }
func (s *stubEmbedder) Available() bool                   { return true }
func (s *stubEmbedder) RateLimit() providers.RateLimitConfig { return providers.RateLimitConfig{} }
func (s *stubEmbedder) ModelName() string                 { return "stub-model" }
func (s *stubEmbedder) Dimensions() int                   { return 4 }
func (s *stubEmbedder) MaxTokens() int                    { return 8000 }
func (s *stubEmbedder) Embed(ctx context.Context, req providers.EmbeddingsRequest) (*providers.EmbeddingsResult, error) {
	return &providers.EmbeddingsResult{Embedding: []float32{0.1, 0.2, 0.3, 0.4}}, nil
}
func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]providers.EmbeddingsBatchResult, error) {
	return nil, nil
}

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	root := t.TempDir()

	tracker, err := hashcache.New(filepath.Join(root, ".cache", "hashes.json"))
	if err != nil {
		t.Fatalf("hashcache.New() error = %v", err)
	}

	notesMgr := notes.New(filepath.Join(root, "notes"), tracker)
	if _, err := notesMgr.Init(); err != nil {
		t.Fatalf("notes.Init() error = %v", err)
	}

	vectors, err := vectorstore.Open(filepath.Join(root, "vectors.db"))
	if err != nil {
		t.Fatalf("vectorstore.Open() error = %v", err)
	}
	t.Cleanup(func() { vectors.Close() })

	g := New(
		filepath.Join(root, "notes"),
		filepath.Join(root, "knowledge"),
		tracker,
		notesMgr,
		&stubEmbedder{},
		vectors,
		config.SearchConfig{SemanticThreshold: 0.5, CaseSensitiveGrep: false, DefaultResultLimit: 10},
		slog.Default(),
	)
	if err := g.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return g
}

func TestAddNoteFromContent_RegistersInAllIndexes(t *testing.T) {
	g := newTestGraph(t)

	id, err := g.AddNoteFromContent(context.Background(), "Machine Learning", "Notes on [[Python]] and ML.", "Research", []string{"ml", "ai"}, "")
	if err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty node id")
	}

	byCategory := g.GetNodesByCategory("Research")
	if len(byCategory) != 1 || byCategory[0].ID != id {
		t.Errorf("GetNodesByCategory(Research) = %v, want node %s", byCategory, id)
	}

	byTag := g.GetNodesByTag("ml")
	if len(byTag) != 1 || byTag[0].ID != id {
		t.Errorf("GetNodesByTag(ml) = %v, want node %s", byTag, id)
	}
}

func TestAddNoteFromContent_TitleCollisionDisambiguatesByPath(t *testing.T) {
	g := newTestGraph(t)

	first, err := g.AddNoteFromContent(context.Background(), "Duplicate", "first body", "Quick Notes", nil, "a.md")
	if err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}
	second, err := g.AddNoteFromContent(context.Background(), "Duplicate", "second body", "Quick Notes", nil, "b.md")
	if err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ids for distinct paths, got %s twice", first)
	}

	collisions := g.FindTitleCollisions()
	ids, ok := collisions["Duplicate"]
	if !ok || len(ids) != 2 {
		t.Errorf("FindTitleCollisions()[Duplicate] = %v, want 2 ids", ids)
	}
}

func TestNodeByTitle_ExactMatchAndMiss(t *testing.T) {
	g := newTestGraph(t)

	id, err := g.AddNoteFromContent(context.Background(), "Machine Learning", "Notes on ML.", "Research", nil, "")
	if err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}

	node, ok := g.NodeByTitle("Machine Learning")
	if !ok {
		t.Fatal("NodeByTitle() = not found, want a hit")
	}
	if node.ID != id {
		t.Errorf("NodeByTitle().ID = %s, want %s", node.ID, id)
	}

	if _, ok := g.NodeByTitle("machine learning"); ok {
		t.Error("NodeByTitle() matched case-insensitively, want exact-match only")
	}
	if _, ok := g.NodeByTitle("Nonexistent"); ok {
		t.Error("NodeByTitle() found a node for a title that was never added")
	}
}

func TestResolveWikiLinks_ResolvesAndCountsBroken(t *testing.T) {
	g := newTestGraph(t)

	targetID, err := g.AddNoteFromContent(context.Background(), "Python", "A language.", "Learning", nil, "")
	if err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}
	sourceID, err := g.AddNoteFromContent(context.Background(), "ML Notes", "See [[Python]] and [[Nonexistent]].", "Learning", nil, "")
	if err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}

	backlinks := g.GetBacklinks(targetID)
	if len(backlinks) != 1 || backlinks[0].NodeID != sourceID {
		t.Errorf("GetBacklinks(%s) = %v, want one entry from %s", targetID, backlinks, sourceID)
	}

	broken := g.FindBrokenLinks()
	if len(broken) == 0 {
		t.Error("expected at least one broken link for [[Nonexistent]]")
	}
}

func TestFindOrphans_ExcludesLinkedNodes(t *testing.T) {
	g := newTestGraph(t)

	_, err := g.AddNoteFromContent(context.Background(), "Target", "body", "Quick Notes", nil, "")
	if err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}
	_, err = g.AddNoteFromContent(context.Background(), "Source", "links to [[Target]]", "Quick Notes", nil, "")
	if err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}

	orphans := g.FindOrphans()
	for _, n := range orphans {
		if n.Title == "Target" {
			t.Error("Target should not be an orphan after being linked")
		}
	}
}

func TestSaveAndLoadGraph_RoundTrips(t *testing.T) {
	g := newTestGraph(t)

	id, err := g.AddNoteFromContent(context.Background(), "Persisted", "some content", "Quick Notes", []string{"durable"}, "")
	if err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}

	reloaded := &Graph{}
	*reloaded = *g
	reloaded.nodesByID = make(map[string]*Node)
	reloaded.edgesByID = make(map[string]*Edge)
	reloaded.titleToID = make(map[string]string)
	reloaded.titleCollisions = make(map[string][]string)
	reloaded.categoryIndex = make(map[string]map[string]struct{})
	reloaded.tagIndex = make(map[string]map[string]struct{})
	reloaded.hierarchyIndex = make(map[string]map[string]struct{})

	reloaded.loadGraph()

	if _, ok := reloaded.nodeByIDLocked(id); !ok {
		t.Errorf("expected node %s to survive a save/load round trip", id)
	}
}

func TestUnifiedSearch_TitleSubQueryScoring(t *testing.T) {
	g := newTestGraph(t)

	if _, err := g.AddNoteFromContent(context.Background(), "Intro to Machine Learning", "body", "Research", []string{"ML"}, ""); err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}

	results, err := g.UnifiedSearch(context.Background(), "machine learning", 10, UnifiedSearchOptions{
		IncludeTitle: true,
	})
	if err != nil {
		t.Fatalf("UnifiedSearch() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one title hit, got %d", len(results))
	}
	if results[0].RelevanceScore != 0.7 {
		t.Errorf("expected substring-match relevance 0.7, got %v", results[0].RelevanceScore)
	}
}

func TestUnifiedSearch_TagSubQueryExactMatch(t *testing.T) {
	g := newTestGraph(t)

	if _, err := g.AddNoteFromContent(context.Background(), "Tagged Note", "body", "Research", []string{"ML"}, ""); err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}

	results, err := g.UnifiedSearch(context.Background(), "#ML", 10, UnifiedSearchOptions{
		IncludeTag: true,
	})
	if err != nil {
		t.Fatalf("UnifiedSearch() error = %v", err)
	}
	if len(results) != 1 || results[0].RelevanceScore != 1.0 {
		t.Fatalf("expected one exact tag hit with relevance 1.0, got %v", results)
	}
}

func TestGetHierarchy_HandlesCycles(t *testing.T) {
	g := &Graph{
		nodesByID:      map[string]*Node{"a": {ID: "a", Title: "A"}, "b": {ID: "b", Title: "B"}},
		hierarchyIndex: map[string]map[string]struct{}{"a": {"b": struct{}{}}, "b": {"a": struct{}{}}},
		logger:         slog.Default(),
	}

	h, ok := g.GetHierarchy("a")
	if !ok {
		t.Fatal("expected hierarchy to resolve for node a")
	}
	if len(h.Children) != 1 || h.Children[0].ID != "b" {
		t.Fatalf("expected one child b, got %v", h.Children)
	}
}
