package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hivesim/internal/config"
	"github.com/talgya/hivesim/internal/stats"
	"github.com/talgya/hivesim/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Build(config.Baseline())
	require.NoError(t, err)
	return cfg
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)
	cfg := testConfig(t)

	require.NoError(t, db.CreateRun("run-1", cfg))
	r, err := db.LoadRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, r.Status)
	assert.Equal(t, cfg.Seed, r.Seed)
	assert.Equal(t, cfg.SimLength, r.SimLength)

	props, err := r.Properties()
	require.NoError(t, err)
	assert.Equal(t, cfg.Props["edge_length"], props["edge_length"])

	require.NoError(t, db.FinishRun("run-1", 3, StatusInterrupted))
	r, err = db.LoadRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, r.YearsCompleted)
	assert.Equal(t, StatusInterrupted, r.Status)

	assert.Error(t, db.CreateRun("run-1", cfg), "duplicate run id")
}

func TestSiteRecordsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	records := []world.SiteRecord{
		{X: 0, Y: 0, Domestic: true, QueenBreeder: true, TotalColonies: 20, LiveColonies: 18, DeadColonies: 2,
			AvgLiveStrength: 0.61, MaxLiveStrength: 0.7, MinLiveStrength: 0.5},
		{X: 0, Y: 1, TotalColonies: 1, DeadColonies: 1},
	}

	require.NoError(t, db.SaveSiteRecords("r", PhaseStart, records))
	got, err := db.LoadSiteRecords("r", PhaseStart)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	require.NoError(t, db.SaveSiteRecords("r", PhaseStart, records[:1]))
	got, err = db.LoadSiteRecords("r", PhaseStart)
	require.NoError(t, err)
	assert.Len(t, got, 1, "saving a phase replaces it")

	got, err = db.LoadSiteRecords("r", PhaseEnd)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestYearStatsSeries(t *testing.T) {
	db := openTestDB(t)
	history := []stats.Year{
		{Index: 0, Requeened: 2, Feral: stats.Population{Live: 10}},
		{Index: 1, Requeened: 5, Feral: stats.Population{Live: 7}},
	}

	require.NoError(t, db.SaveYearStats("r", history))
	series, err := db.LoadSeries("r")
	require.NoError(t, err)

	assert.Len(t, series, len(stats.Metrics()))
	assert.Equal(t, []float64{2, 5}, series["domestic_hives_requeened"])
	assert.Equal(t, []float64{10, 7}, series["feral_live_hives"])
}

func TestSaveRunState(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.CreateRun("r", testConfig(t)))

	records := []world.SiteRecord{{X: 1, Y: 1, TotalColonies: 1, LiveColonies: 1}}
	history := []stats.Year{{Index: 0}, {Index: 1}}
	require.NoError(t, db.SaveRunState("r", 1, records, history, StatusFinished))

	r, err := db.LoadRun("r")
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, r.Status)
	assert.Equal(t, 1, r.YearsCompleted)

	got, err := db.LoadSiteRecords("r", PhaseEnd)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}
