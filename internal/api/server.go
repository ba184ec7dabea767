// Package api provides a read-only HTTP API for observing a simulation run.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hivesim/internal/engine"
	"github.com/talgya/hivesim/internal/world"
)

// SeriesSource supplies per-year metric series.
type SeriesSource interface {
	Series() map[string][]float64
}

// Server serves the run state over HTTP.
type Server struct {
	Sim   *engine.Simulation
	Stats SeriesSource
	Port  int

	// SitesPerMinute caps grid dumps per client. Zero means 60.
	SitesPerMinute int

	srv *http.Server
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	perMinute := s.SitesPerMinute
	if perMinute == 0 {
		perMinute = 60
	}
	sitesLimiter := NewRateLimiter(perMinute, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/sites", RateLimitMiddleware(sitesLimiter, s.handleSites))
	mux.HandleFunc("/api/v1/sites/start", RateLimitMiddleware(sitesLimiter, s.handleStartSites))
	mux.HandleFunc("/api/v1/site", s.handleSiteDetail)
	mux.HandleFunc("/api/v1/stats/history", s.handleStatsHistory)

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Status())
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	records := s.Sim.Records()
	if r.URL.Query().Get("domestic") == "true" {
		filtered := records[:0:0]
		for _, rec := range records {
			if rec.Domestic {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	writeJSON(w, map[string]any{
		"header":  world.SiteRecordHeader,
		"records": records,
	})
}

func (s *Server) handleStartSites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"header":  world.SiteRecordHeader,
		"records": s.Sim.StartRecords(),
	})
}

// handleSiteDetail serves GET /api/v1/site?x=..&y=.. with the site's record,
// the state of each colony and the average live strength of its four
// cardinal neighbours.
func (s *Server) handleSiteDetail(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		http.Error(w, "x and y must be integers", http.StatusBadRequest)
		return
	}
	g := s.Sim.Grid()
	if x < 0 || y < 0 || x >= g.EdgeLength() || y >= g.EdgeLength() {
		http.Error(w, "site out of range", http.StatusNotFound)
		return
	}
	site := g.At(x, y)
	hives := site.Hives()
	states := make([]world.HiveState, len(hives))
	for i, h := range hives {
		states[i] = h.State()
	}
	neighbors, err := world.NeighborsAvgStrength(s.Sim.Records(), x, y)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"record":                 site.Record(),
		"colonies":               states,
		"neighbors_avg_strength": neighbors,
	})
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	series := s.Stats.Series()
	if name := r.URL.Query().Get("metric"); name != "" {
		values, ok := series[name]
		if !ok {
			http.Error(w, "unknown metric", http.StatusNotFound)
			return
		}
		series = map[string][]float64{name: values}
	}
	writeJSON(w, series)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}
