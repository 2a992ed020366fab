package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Port int
	Bind string
}

// RebuildResult contains the result of a rebuild operation.
type RebuildResult struct {
	Status   string `json:"status"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// RebuildFunc triggers a full graph sync.
type RebuildFunc func(ctx context.Context, full bool) (*RebuildResult, error)

// SearchResult is one row of a /search response.
type SearchResult struct {
	Title          string  `json:"title"`
	Category       string  `json:"category"`
	SourceType     string  `json:"source_type"`
	RelevanceScore float64 `json:"relevance_score"`
	Snippet        string  `json:"snippet,omitempty"`
	FilePath       string  `json:"file_path,omitempty"`
}

// SearchFunc runs a unified search against the graph.
type SearchFunc func(ctx context.Context, query string, limit int) ([]SearchResult, error)

// StatsFunc returns graph statistics as a JSON-serializable value.
type StatsFunc func(ctx context.Context) (any, error)

// Server is the HTTP server for daemon health, rebuild, search, and stats
// endpoints. It is safe for concurrent use.
type Server struct {
	mu          sync.RWMutex
	health      *HealthManager
	config      ServerConfig
	server      *http.Server
	router      *chi.Mux
	rebuildFunc RebuildFunc
	searchFunc  SearchFunc
	statsFunc   StatsFunc
}

// NewServer creates a new HTTP server with the given health manager and config.
func NewServer(health *HealthManager, config ServerConfig) *Server {
	s := &Server{
		health: health,
		config: config,
		router: chi.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)
	s.router.Post("/rebuild", s.handleRebuild)
	s.router.Get("/search", s.handleSearch)
	s.router.Get("/stats", s.handleStats)
}

// SetRebuildFunc sets the function to call when rebuild is requested.
func (s *Server) SetRebuildFunc(fn RebuildFunc) {
	s.rebuildFunc = fn
}

// SetSearchFunc sets the function to call when search is requested.
func (s *Server) SetSearchFunc(fn SearchFunc) {
	s.searchFunc = fn
}

// SetStatsFunc sets the function to call when stats is requested.
func (s *Server) SetStatsFunc(fn StatsFunc) {
	s.statsFunc = fn
}

// Handler returns the HTTP handler for testing purposes.
func (s *Server) Handler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.router
}

// LivezResponse is the response format for /healthz endpoint.
type LivezResponse struct {
	Status string `json:"status"`
}

// handleHealthz handles the /healthz endpoint (liveness probe).
// Returns 200 OK if the daemon process is alive.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	response := LivezResponse{
		Status: "alive",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleReadyz handles the /readyz endpoint (readiness probe).
// Returns 200 OK with health status for both healthy and degraded states.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := s.health.Status()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// handleRebuild handles the /rebuild endpoint, triggering a graph sync.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.rebuildFunc == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(RebuildResult{
			Status: "error",
			Error:  "rebuild not available",
		})
		return
	}

	full := r.URL.Query().Get("full") == "true"

	// Execute rebuild with a dedicated context so it completes even if the
	// client disconnects.
	rebuildCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	result, err := s.rebuildFunc(rebuildCtx, full)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(RebuildResult{
			Status: "error",
			Error:  err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// handleSearch handles the /search endpoint.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.searchFunc == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "search not available")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSONError(w, http.StatusBadRequest, "missing query parameter \"q\"")
		return
	}

	limit := 10
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		var parsed int
		if _, err := fmt.Sscanf(limitParam, "%d", &parsed); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := s.searchFunc(r.Context(), query, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(results)
}

// handleStats handles the /stats endpoint.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.statsFunc == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "stats not available")
		return
	}

	stats, err := s.statsFunc(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// Start starts the HTTP server and blocks until it's stopped.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)

	s.mu.Lock()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}
	server := s.server
	s.mu.Unlock()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error; %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	server := s.server
	s.mu.RUnlock()

	if server == nil {
		return nil
	}

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server; %w", err)
	}

	return nil
}
