package vectorstore

import (
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func vec(vals ...float32) []float32 {
	return vals
}

func TestOpenOrCreateCollection_IsIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.OpenOrCreateCollection("notes_v1", 4); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := s.OpenOrCreateCollection("notes_v1", 4); err != nil {
		t.Fatalf("second create (idempotent) failed: %v", err)
	}
}

func TestOpenOrCreateCollection_RejectsDimensionMismatch(t *testing.T) {
	s := newTestStore(t)

	if err := s.OpenOrCreateCollection("notes_v1", 4); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.OpenOrCreateCollection("notes_v1", 8); err == nil {
		t.Error("expected error for mismatched dimensions on existing collection")
	}
}

func TestAddAndGet_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	if err := s.OpenOrCreateCollection("notes_v1", 3); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	item := Item{
		ID:        "note_abc123",
		Document:  "graph notes about markdown parsing",
		Embedding: vec(0.1, 0.2, 0.3),
		Metadata:  map[string]any{"category": "Reference"},
	}
	if err := s.Add("notes_v1", item); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	records, err := s.Get("notes_v1", []string{"note_abc123"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Document != item.Document {
		t.Errorf("Document = %q, want %q", records[0].Document, item.Document)
	}
	if records[0].Metadata["category"] != "Reference" {
		t.Errorf("Metadata[category] = %v, want Reference", records[0].Metadata["category"])
	}
}

func TestAdd_ReplacesExistingID(t *testing.T) {
	s := newTestStore(t)
	if err := s.OpenOrCreateCollection("notes_v1", 2); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.Add("notes_v1", Item{ID: "n1", Document: "first version", Embedding: vec(1, 0)}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := s.Add("notes_v1", Item{ID: "n1", Document: "second version", Embedding: vec(0, 1)}); err != nil {
		t.Fatalf("replace add failed: %v", err)
	}

	records, err := s.Get("notes_v1", []string{"n1"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after replace, got %d", len(records))
	}
	if records[0].Document != "second version" {
		t.Errorf("Document = %q, want %q", records[0].Document, "second version")
	}
}

func TestDelete_RemovesRecord(t *testing.T) {
	s := newTestStore(t)
	if err := s.OpenOrCreateCollection("notes_v1", 2); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Add("notes_v1", Item{ID: "n1", Document: "doc", Embedding: vec(1, 0)}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := s.Delete("notes_v1", []string{"n1"}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	records, err := s.Get("notes_v1", []string{"n1"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected record to be deleted, got %d", len(records))
	}
}

func TestQuery_ReturnsNearestNeighborsBySimilarity(t *testing.T) {
	s := newTestStore(t)
	if err := s.OpenOrCreateCollection("notes_v1", 2); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	items := []Item{
		{ID: "close", Document: "close match", Embedding: vec(1, 0)},
		{ID: "far", Document: "far match", Embedding: vec(0, 1)},
	}
	if err := s.AddBatch("notes_v1", items); err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}

	results, err := s.Query("notes_v1", vec(0.9, 0.1), 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "close" {
		t.Errorf("expected closest match first, got %q", results[0].ID)
	}
	if results[0].Similarity <= results[1].Similarity {
		t.Errorf("expected first result to have higher similarity than second")
	}
}

func TestQuery_RejectsDimensionMismatch(t *testing.T) {
	s := newTestStore(t)
	if err := s.OpenOrCreateCollection("notes_v1", 3); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := s.Query("notes_v1", vec(1, 0), 5)
	if err == nil {
		t.Error("expected error for mismatched query embedding dimensions")
	}
}

func TestAddBatch_RejectsUnknownCollection(t *testing.T) {
	s := newTestStore(t)

	err := s.AddBatch("missing", []Item{{ID: "n1", Embedding: vec(1, 0)}})
	if err == nil {
		t.Error("expected error for unknown collection")
	}
}
