package decide

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/pkmgraph/internal/config"
	"github.com/leefowlercu/pkmgraph/internal/graph"
	"github.com/leefowlercu/pkmgraph/internal/hashcache"
	"github.com/leefowlercu/pkmgraph/internal/notes"
	"github.com/leefowlercu/pkmgraph/internal/providers"
	"github.com/leefowlercu/pkmgraph/internal/vectorstore"
)

type stubEmbedder struct{}

func (s *stubEmbedder) Name() string                         { return "stub" }
func (s *stubEmbedder) Type() providers.ProviderType         { return providers.ProviderTypeEmbeddings }
func (s *stubEmbedder) Available() bool                      { return true }
func (s *stubEmbedder) RateLimit() providers.RateLimitConfig { return providers.RateLimitConfig{} }
func (s *stubEmbedder) ModelName() string                    { return "stub-model" }
func (s *stubEmbedder) Dimensions() int                      { return 4 }
func (s *stubEmbedder) MaxTokens() int                       { return 8000 }
func (s *stubEmbedder) Embed(ctx context.Context, req providers.EmbeddingsRequest) (*providers.EmbeddingsResult, error) {
	return &providers.EmbeddingsResult{Embedding: []float32{0.1, 0.2, 0.3, 0.4}}, nil
}
func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]providers.EmbeddingsBatchResult, error) {
	return nil, nil
}

func newTestGraph(t *testing.T) *graph.Graph {
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

	g := graph.New(
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

func TestJaccardSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"the quick brown fox", "the quick brown fox", 1.0},
		{"apples oranges", "bananas grapes", 0.0},
		{"", "", 0.0},
	}
	for _, tc := range cases {
		if got := jaccardSimilarity(tc.a, tc.b); got != tc.want {
			t.Errorf("jaccardSimilarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestHeuristicDecision_NoRelatedNotesCreates(t *testing.T) {
	d := heuristicDecision("brand new standalone content", nil)
	if d.Action != "create" {
		t.Errorf("Action = %q, want create", d.Action)
	}
}

func TestHeuristicDecision_HighJaccardUpdates(t *testing.T) {
	related := []RelatedNote{{Title: "Existing", Context: "the quick brown fox jumps", SourceType: "semantic"}}
	d := heuristicDecision("the quick brown fox jumps", related)
	if d.Action != "update" {
		t.Errorf("Action = %q, want update", d.Action)
	}
	if d.RecommendedNote == nil || d.RecommendedNote.Title != "Existing" {
		t.Errorf("RecommendedNote = %v, want Existing", d.RecommendedNote)
	}
}

func TestHeuristicDecision_ShortContentWithRelatedUpdates(t *testing.T) {
	related := []RelatedNote{{Title: "Existing", Context: "totally unrelated words here", SourceType: "grep"}}
	d := heuristicDecision("a short unrelated note", related)
	if d.Action != "update" {
		t.Errorf("Action = %q, want update for short content", d.Action)
	}
}

func TestHeuristicDecision_LongDistinctContentCreates(t *testing.T) {
	longContent := ""
	for i := 0; i < 60; i++ {
		longContent += "word "
	}
	related := []RelatedNote{{Title: "Existing", Context: "completely different topic entirely", SourceType: "grep"}}
	d := heuristicDecision(longContent, related)
	if d.Action != "create" {
		t.Errorf("Action = %q, want create for long distinct content", d.Action)
	}
}

func TestDecide_NoRelatedNotesFallsBackToCreate(t *testing.T) {
	g := newTestGraph(t)

	decision, err := Decide(context.Background(), g, "completely new topic never seen before", "Research", nil)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if decision.Action != "create" {
		t.Errorf("Action = %q, want create", decision.Action)
	}
}

func TestDecide_RelatedNoteUpdates(t *testing.T) {
	g := newTestGraph(t)

	body := "Python is a dynamically typed interpreted programming language used widely."
	if _, err := g.AddNoteFromContent(context.Background(), "Python", body, "Technical", nil, ""); err != nil {
		t.Fatalf("AddNoteFromContent() error = %v", err)
	}

	decision, err := Decide(context.Background(), g, body, "Technical", nil)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if decision.Action != "update" {
		t.Errorf("Action = %q, want update", decision.Action)
	}
}

// erroringLLMDecider always fails, exercising the fall-back-to-heuristic path.
type erroringLLMDecider struct{}

func (erroringLLMDecider) Decide(ctx context.Context, content, category string, related []RelatedNote) (*Decision, error) {
	return nil, errFakeLLM
}

var errFakeLLM = &fakeErr{"llm unavailable"}

type fakeErr struct{ msg string }

func (e *fakeErr) Error() string { return e.msg }

func TestDecide_LLMErrorFallsBackToHeuristic(t *testing.T) {
	g := newTestGraph(t)

	decision, err := Decide(context.Background(), g, "completely new topic never seen before", "Research", erroringLLMDecider{})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if decision.Action != "create" {
		t.Errorf("Action = %q, want create (heuristic fallback)", decision.Action)
	}
}

func TestParseDecision_ExtractsJSONFromSurroundingProse(t *testing.T) {
	text := "Here is my answer:\n" + `{"action":"create","confidence":0.8,"reasoning":["new topic"],"recommended_note":null,"alternatives":[]}` + "\nHope that helps."

	d, err := parseDecision(text)
	if err != nil {
		t.Fatalf("parseDecision() error = %v", err)
	}
	if d.Action != "create" {
		t.Errorf("Action = %q, want create", d.Action)
	}
}

func TestParseDecision_RejectsInvalidAction(t *testing.T) {
	_, err := parseDecision(`{"action":"delete","confidence":0.5,"reasoning":[],"alternatives":[]}`)
	if err == nil {
		t.Error("expected error for invalid action")
	}
}

func TestParseDecision_RejectsMalformedJSON(t *testing.T) {
	_, err := parseDecision("not json at all")
	if err == nil {
		t.Error("expected error for malformed JSON")
	}
}
