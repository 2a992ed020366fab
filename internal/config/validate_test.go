package config

import "testing"

func TestValidate_ValidConfig_ReturnsNil(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Notes.Directory = "/tmp/vault"

	if err := Validate(&cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil for valid config", err)
	}
}

func TestValidate_EmptyNotesDirectory_ReturnsError(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Notes.Directory = ""

	err := Validate(&cfg)
	if err == nil {
		t.Error("Validate() expected error for empty notes.directory")
	}
	if !IsValidationError(err) {
		t.Errorf("expected validation error, got %T", err)
	}
}

func TestValidate_InvalidChunkOverlap_ReturnsError(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"overlap equals size", 500, 500},
		{"overlap exceeds size", 500, 600},
		{"negative overlap", 500, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Notes.Directory = "/tmp/vault"
			cfg.Search.ChunkSize = tt.size
			cfg.Search.ChunkOverlap = tt.overlap

			if err := Validate(&cfg); err == nil {
				t.Errorf("Validate() expected error for chunk_size=%d chunk_overlap=%d", tt.size, tt.overlap)
			}
		})
	}
}

func TestValidate_InvalidEmbeddingsProvider_ReturnsError(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Notes.Directory = "/tmp/vault"
	cfg.Embeddings.Enabled = true
	cfg.Embeddings.Provider = "bogus"

	err := Validate(&cfg)
	if err == nil {
		t.Error("Validate() expected error for unrecognized embeddings provider")
	}
}

func TestValidate_EmbeddingsDisabled_SkipsProviderChecks(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Notes.Directory = "/tmp/vault"
	cfg.Embeddings.Enabled = false
	cfg.Embeddings.Provider = ""
	cfg.Embeddings.Model = ""

	if err := Validate(&cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil when embeddings disabled", err)
	}
}

func TestValidate_InvalidSemanticThreshold_ReturnsError(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Notes.Directory = "/tmp/vault"
	cfg.Search.SemanticThreshold = 1.5

	if err := Validate(&cfg); err == nil {
		t.Error("Validate() expected error for out-of-range semantic_threshold")
	}
}

func TestValidationErrors_Error_FormatsMultipleErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "also bad"},
	}

	if msg := errs.Error(); msg == "" {
		t.Fatal("expected non-empty error message")
	}
}
