// Package server is the HTTP boundary in front of the resolver. It owns the
// end-to-end timeout; the resolver itself never watches the clock beyond its
// per-call budgets.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clipfinder/internal/models"
	"clipfinder/shared/monitoring"
)

// Resolver is the pipeline entry point the transport layer consumes.
type Resolver interface {
	Resolve(ctx context.Context, query string) models.ResolutionResult
}

// maxConcurrentResolutions bounds in-flight pipelines. A timed-out pipeline
// keeps running until its own calls unwind, still holding its slot, so
// abandoned work cannot pile up unbounded.
const maxConcurrentResolutions = 8

type Server struct {
	resolver Resolver
	monitor  *monitoring.Monitor
	timeout  time.Duration
	slots    chan struct{}
}

func New(resolver Resolver, monitor *monitoring.Monitor, timeout time.Duration) *Server {
	return &Server{
		resolver: resolver,
		monitor:  monitor,
		timeout:  timeout,
		slots:    make(chan struct{}, maxConcurrentResolutions),
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/health", s.handleHealth)
	return withCORS(mux)
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		writeError(w, http.StatusServiceUnavailable, "resolver is saturated, try again")
		return
	}

	start := time.Now()
	resultCh := make(chan models.ResolutionResult, 1)
	go func() {
		defer func() { <-s.slots }()
		resultCh <- s.resolver.Resolve(ctx, query)
	}()

	select {
	case result := <-resultCh:
		s.record(result, time.Since(start))
		writeJSON(w, http.StatusOK, result)
	case <-ctx.Done():
		s.monitor.RecordFailure("timed out", time.Since(start))
		writeError(w, http.StatusGatewayTimeout, fmt.Sprintf("search timed out after %v", s.timeout))
	}
}

func (s *Server) record(result models.ResolutionResult, duration time.Duration) {
	if result.Success && len(result.Clips) > 0 {
		s.monitor.RecordResolved(result.Clips[0].Source, duration)
		return
	}
	reason := result.Error
	if reason == "" {
		reason = "no clip resolved"
	}
	s.monitor.RecordFailure(reason, duration)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if !s.monitor.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"ok":     s.monitor.IsHealthy(),
		"status": s.monitor.Summary(),
	})
}

// withCORS mirrors the permissive policy the browser frontend relied on.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
