package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hivesim/internal/config"
	"github.com/talgya/hivesim/internal/stats"
)

func buildConfig(t *testing.T, overrides map[string]string) config.Config {
	t.Helper()
	p := config.Baseline()
	p["drone_participation_distance"] = "2"
	for k, v := range overrides {
		p[k] = v
	}
	cfg, err := config.Build(p)
	require.NoError(t, err)
	return cfg
}

func run(t *testing.T, cfg config.Config) (*Simulation, *stats.Collector) {
	t.Helper()
	c := stats.NewCollector()
	sim, err := NewSimulation(cfg, c)
	require.NoError(t, err)
	require.NoError(t, sim.Run(context.Background()))
	return sim, c
}

func TestRunCompletesAllYears(t *testing.T) {
	cfg := buildConfig(t, nil)
	sim, c := run(t, cfg)

	assert.Equal(t, cfg.SimLength, sim.Year())
	assert.Equal(t, cfg.SimLength+1, c.YearsCompleted(), "founding year plus every simulated year")
	assert.Len(t, sim.StartRecords(), cfg.EdgeLength*cfg.EdgeLength)

	st := sim.Status()
	assert.False(t, st.Running)
	assert.Equal(t, cfg.SimLength, st.Year)
	assert.Equal(t, cfg.Seed, st.Seed)
	assert.NotEmpty(t, st.RunID)
}

func TestFoundingPopulationIsYearZero(t *testing.T) {
	cfg := buildConfig(t, map[string]string{"sim_length": "2"})
	c := stats.NewCollector()
	sim, err := NewSimulation(cfg, c)
	require.NoError(t, err)

	history := c.History()
	require.Len(t, history, 1)
	founding := history[0]
	assert.Equal(t, 0, founding.Index)
	assert.Equal(t, 1, c.Current().Index)

	live, created := 0, 0
	for _, r := range sim.StartRecords() {
		live += r.LiveColonies
		created += r.TotalColonies
	}
	assert.Equal(t, created, founding.Domestic.Created+founding.Feral.Created)
	assert.Equal(t, live, founding.Domestic.Live+founding.Feral.Live)
	assert.Zero(t, founding.Domestic.Dead+founding.Feral.Dead)
	assert.Zero(t, founding.Domestic.Swarms+founding.Feral.Swarms)
	assert.Zero(t, founding.Requeened)

	require.NoError(t, sim.Run(context.Background()))
	history = c.History()
	require.Len(t, history, 3)
	assert.Equal(t, founding, history[0])
	for i, y := range history {
		assert.Equal(t, i, y.Index)
	}
	for _, values := range c.Series() {
		assert.Len(t, values, 3)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	cfg := buildConfig(t, nil)
	a, ca := run(t, cfg)
	b, cb := run(t, cfg)

	assert.Equal(t, a.StartRecords(), b.StartRecords())
	assert.Equal(t, a.Records(), b.Records())
	assert.Equal(t, ca.History(), cb.History())
}

func TestRunIndependentOfThreadCount(t *testing.T) {
	one, c1 := run(t, buildConfig(t, map[string]string{"threads": "1"}))
	many, c7 := run(t, buildConfig(t, map[string]string{"threads": "7"}))

	assert.Equal(t, one.Records(), many.Records())
	assert.Equal(t, c1.Series(), c7.Series())
}

func TestSwarmAccountingHoldsEveryYear(t *testing.T) {
	cfg := buildConfig(t, map[string]string{
		"domestic_prob_swarm": "0.9",
		"feral_prob_swarm":    "0.9",
		"sim_length":          "6",
	})
	_, c := run(t, cfg)

	history := c.History()
	require.Len(t, history, 7)
	for _, y := range history {
		for _, p := range []stats.Population{y.Domestic, y.Feral} {
			assert.Equal(t, p.Swarms, p.SwarmsFoundSite+p.SwarmsNoSite, "year %d", y.Index)
		}
	}
}

func TestBreedersNeverAllDie(t *testing.T) {
	cfg := buildConfig(t, map[string]string{
		"survivalprob.F":           "0",
		"queen_breeder_hive_count": "2",
		"sim_length":               "4",
	})
	sim, _ := run(t, cfg)

	living := 0
	for _, b := range sim.Grid().QueenBreeders() {
		living += b.Record().LiveColonies
	}
	assert.Positive(t, living)
}

// The expected values below were recorded from seeded runs. Any change to
// the order of random draws in initialization, winter, replacement or
// swarming shows up here.
func TestTwoByTwoAllDomestic(t *testing.T) {
	type siteWant struct {
		live, dead int
		strength   float64
	}
	tests := []struct {
		seed  string
		sites []siteWant // row-major; (1,1) is the queen breeder for both seeds
		year  stats.Population
	}{
		{
			seed: "42",
			sites: []siteWant{
				{1, 0, 0.5878738472934979},
				{1, 0, 0.6317975962148399},
				{1, 0, 0.6215554512141119},
				{1, 0, 0.5767989552194178},
			},
			year: stats.Population{Live: 4, EndOfWinterLive: 4},
		},
		{
			seed: "5",
			sites: []siteWant{
				{1, 0, 0.5620849435665712},
				{1, 0, 0.5528063936514814},
				{1, 0, 0.5435747599021543},
				{1, 0, 0.5630047574052539},
			},
			year: stats.Population{
				Created:         1,
				Live:            4,
				KilledByWinter:  1,
				Swarms:          2,
				SwarmsNoSite:    2,
				EndOfWinterLive: 3,
				EndOfWinterDead: 1,
			},
		},
	}
	for _, tc := range tests {
		t.Run("seed="+tc.seed, func(t *testing.T) {
			cfg := buildConfig(t, map[string]string{
				"seed":                         tc.seed,
				"edge_length":                  "2",
				"sim_length":                   "1",
				"prob_domestic":                "1",
				"number_queen_breeders":        "1",
				"queen_breeder_hive_count":     "1",
				"number_of_hives_distribution": config.DistLinear,
				"number_of_hives_min":          "1",
				"number_of_hives_max":          "1",
			})
			sim, c := run(t, cfg)

			records := sim.Records()
			require.Len(t, records, len(tc.sites))
			for i, r := range records {
				want := tc.sites[i]
				assert.True(t, r.Domestic)
				assert.Equal(t, i == 3, r.QueenBreeder, "site (%d,%d)", r.X, r.Y)
				assert.Equal(t, 1, r.TotalColonies)
				assert.Equal(t, want.live, r.LiveColonies, "site (%d,%d)", r.X, r.Y)
				assert.Equal(t, want.dead, r.DeadColonies, "site (%d,%d)", r.X, r.Y)
				assert.InDelta(t, want.strength, r.AvgLiveStrength, 1e-12, "site (%d,%d)", r.X, r.Y)
			}

			history := c.History()
			require.Len(t, history, 2)
			founding := history[0]
			assert.Equal(t, 4, founding.Domestic.Created)
			assert.Equal(t, 4, founding.Domestic.Live)
			assert.Zero(t, founding.Feral)

			y := history[1]
			assert.Equal(t, tc.year.Created, y.Domestic.Created)
			assert.Equal(t, tc.year.Live, y.Domestic.Live)
			assert.Equal(t, tc.year.Dead, y.Domestic.Dead)
			assert.Equal(t, tc.year.KilledByWinter, y.Domestic.KilledByWinter)
			assert.Equal(t, tc.year.DiedOfOldAge, y.Domestic.DiedOfOldAge)
			assert.Equal(t, tc.year.MatingFlightFailures, y.Domestic.MatingFlightFailures)
			assert.Equal(t, tc.year.Swarms, y.Domestic.Swarms)
			assert.Equal(t, tc.year.SwarmsNoSite, y.Domestic.SwarmsNoSite)
			assert.Equal(t, tc.year.SwarmsFoundSite, y.Domestic.SwarmsFoundSite)
			assert.Equal(t, tc.year.EndOfWinterLive, y.Domestic.EndOfWinterLive)
			assert.Equal(t, tc.year.EndOfWinterDead, y.Domestic.EndOfWinterDead)
			assert.Zero(t, y.Requeened, "no colony reaches min_requeen_age in one year")
			assert.Zero(t, y.Feral.Created)
		})
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	cfg := buildConfig(t, nil)
	sim, err := NewSimulation(cfg, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sim.Year())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "winter", PhaseWinter.String())
	assert.Equal(t, "summer", PhaseSummer.String())
	assert.Equal(t, "unknown", Phase(9).String())
}
