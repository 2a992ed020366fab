package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServer_Healthz(t *testing.T) {
	hm := NewHealthManager()
	srv := NewServer(hm, ServerConfig{Port: 0, Bind: "127.0.0.1"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want %d", w.Code, http.StatusOK)
	}

	var response LivezResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "alive" {
		t.Errorf("GET /healthz status = %q, want %q", response.Status, "alive")
	}
}

func TestServer_Readyz_Healthy(t *testing.T) {
	hm := NewHealthManager()
	srv := NewServer(hm, ServerConfig{Port: 0, Bind: "127.0.0.1"})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /readyz status = %d, want %d", w.Code, http.StatusOK)
	}

	var response HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("GET /readyz Status = %q, want %q", response.Status, "healthy")
	}
	if !response.Ready {
		t.Error("GET /readyz Ready = false, want true")
	}
}

func TestServer_Readyz_Degraded(t *testing.T) {
	hm := NewHealthManager()
	hm.UpdateComponent("watcher", ComponentHealth{
		Status:      ComponentStatusFailed,
		Error:       "test failure",
		LastChecked: time.Now(),
	})

	srv := NewServer(hm, ServerConfig{Port: 0, Bind: "127.0.0.1"})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /readyz status = %d, want %d", w.Code, http.StatusOK)
	}

	var response HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "degraded" {
		t.Errorf("GET /readyz Status = %q, want %q", response.Status, "degraded")
	}
	if len(response.Components) != 1 {
		t.Errorf("GET /readyz Components has %d entries, want 1", len(response.Components))
	}
}

func TestServer_Rebuild_NoHandler(t *testing.T) {
	hm := NewHealthManager()
	srv := NewServer(hm, ServerConfig{Port: 0, Bind: "127.0.0.1"})

	req := httptest.NewRequest(http.MethodPost, "/rebuild", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("POST /rebuild without handler status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var response RebuildResult
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Error != "rebuild not available" {
		t.Errorf("response error = %q, want %q", response.Error, "rebuild not available")
	}
}

func TestServer_Rebuild_Success(t *testing.T) {
	hm := NewHealthManager()
	srv := NewServer(hm, ServerConfig{Port: 0, Bind: "127.0.0.1"})

	srv.SetRebuildFunc(func(ctx context.Context, full bool) (*RebuildResult, error) {
		if !full {
			t.Error("expected full=true to be passed through")
		}
		return &RebuildResult{Status: "ok", Nodes: 4, Edges: 2, Duration: "10ms"}, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/rebuild?full=true", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("POST /rebuild status = %d, want %d", w.Code, http.StatusOK)
	}

	var response RebuildResult
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Nodes != 4 {
		t.Errorf("response nodes = %d, want 4", response.Nodes)
	}
}

func TestServer_Search_NoHandler(t *testing.T) {
	hm := NewHealthManager()
	srv := NewServer(hm, ServerConfig{Port: 0, Bind: "127.0.0.1"})

	req := httptest.NewRequest(http.MethodGet, "/search?q=test", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /search without handler status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestServer_Search_MissingQuery(t *testing.T) {
	hm := NewHealthManager()
	srv := NewServer(hm, ServerConfig{Port: 0, Bind: "127.0.0.1"})
	srv.SetSearchFunc(func(ctx context.Context, query string, limit int) ([]SearchResult, error) {
		return nil, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("GET /search without q status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestServer_Search_Success(t *testing.T) {
	hm := NewHealthManager()
	srv := NewServer(hm, ServerConfig{Port: 0, Bind: "127.0.0.1"})

	srv.SetSearchFunc(func(ctx context.Context, query string, limit int) ([]SearchResult, error) {
		if query != "generics" {
			t.Errorf("query = %q, want %q", query, "generics")
		}
		return []SearchResult{{Title: "Go Generics", Category: "Technical", SourceType: "semantic", RelevanceScore: 0.9}}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/search?q=generics&limit=5", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /search status = %d, want %d", w.Code, http.StatusOK)
	}

	var results []SearchResult
	if err := json.NewDecoder(w.Body).Decode(&results); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Go Generics" {
		t.Errorf("results = %+v, want one result titled %q", results, "Go Generics")
	}
}

func TestServer_Stats_NoHandler(t *testing.T) {
	hm := NewHealthManager()
	srv := NewServer(hm, ServerConfig{Port: 0, Bind: "127.0.0.1"})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /stats without handler status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestServer_Stats_Success(t *testing.T) {
	hm := NewHealthManager()
	srv := NewServer(hm, ServerConfig{Port: 0, Bind: "127.0.0.1"})

	srv.SetStatsFunc(func(ctx context.Context) (any, error) {
		return map[string]int{"total_nodes": 7}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /stats status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]int
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["total_nodes"] != 7 {
		t.Errorf("total_nodes = %d, want 7", response["total_nodes"])
	}
}
