package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hivesim/internal/config"
	"github.com/talgya/hivesim/internal/engine"
	"github.com/talgya/hivesim/internal/stats"
	"github.com/talgya/hivesim/internal/world"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	p := config.Baseline()
	p["edge_length"] = "4"
	p["sim_length"] = "2"
	p["number_queen_breeders"] = "1"
	p["drone_participation_distance"] = "2"
	cfg, err := config.Build(p)
	require.NoError(t, err)

	c := stats.NewCollector()
	sim, err := engine.NewSimulation(cfg, c)
	require.NoError(t, err)
	require.NoError(t, sim.Run(context.Background()))
	return &Server{Sim: sim, Stats: c}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestStatus(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s.Handler(), "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var st engine.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 2, st.Year)
	assert.Equal(t, 16, st.Sites)
	assert.Equal(t, s.Sim.RunID, st.RunID)
}

func TestSites(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s.Handler(), "/api/v1/sites")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Header  []string           `json:"header"`
		Records []world.SiteRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, world.SiteRecordHeader, body.Header)
	assert.Len(t, body.Records, 16)

	rec = get(t, s.Handler(), "/api/v1/sites?domestic=true")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, r := range body.Records {
		assert.True(t, r.Domestic)
	}
}

func TestSiteDetail(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	tests := []struct {
		target string
		code   int
	}{
		{"/api/v1/site?x=1&y=2", http.StatusOK},
		{"/api/v1/site?x=a&y=2", http.StatusBadRequest},
		{"/api/v1/site?x=4&y=0", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.target, func(t *testing.T) {
			assert.Equal(t, tc.code, get(t, h, tc.target).Code)
		})
	}
}

func TestSiteDetailNeighbors(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s.Handler(), "/api/v1/site?x=0&y=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Record    world.SiteRecord  `json:"record"`
		Colonies  []world.HiveState `json:"colonies"`
		Neighbors float64           `json:"neighbors_avg_strength"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Record.X)
	assert.Equal(t, 3, body.Record.Y)
	assert.Len(t, body.Colonies, body.Record.TotalColonies)

	want, err := world.NeighborsAvgStrength(s.Sim.Records(), 0, 3)
	require.NoError(t, err)
	assert.InDelta(t, want, body.Neighbors, 1e-12)
}

func TestStatsHistory(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	var series map[string][]float64
	rec := get(t, h, "/api/v1/stats/history")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	assert.Len(t, series, len(stats.Metrics()))
	assert.Len(t, series["feral_live_hives"], 3, "founding year plus two simulated years")

	var one map[string][]float64
	rec = get(t, h, "/api/v1/stats/history?metric=domestic_swarms")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Len(t, one, 1)
	assert.Contains(t, one, "domestic_swarms")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/stats/history?metric=nope").Code)
}

func TestReadOnly(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSitesRateLimited(t *testing.T) {
	s := newTestServer(t)
	s.SitesPerMinute = 2
	h := s.Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/api/v1/sites").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/api/v1/sites/start").Code)
	rec := get(t, h, "/api/v1/sites")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, get(t, h, "/api/v1/status").Code)
}
