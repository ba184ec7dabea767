// Package engine ties the grid and the statistics collector together and
// runs the yearly phases.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/hivesim/internal/config"
	"github.com/talgya/hivesim/internal/entropy"
	"github.com/talgya/hivesim/internal/world"
)

// Statistics receives hive events and per-site snapshots at the end of each
// winter and summer.
type Statistics interface {
	world.Sink
	HivesAtEndOfWinter(s *world.Site)
	HivesAtEndOfSummer(s *world.Site)
	EndOfWinter()
	EndOfSummer() error
}

// Simulation holds the grid and the year counter.
type Simulation struct {
	RunID string

	cfg   config.Config
	grid  *world.Grid
	stats Statistics
	rng   *rand.Rand

	startRecords []world.SiteRecord

	mu      sync.RWMutex
	year    int
	running bool
	report  YearReport
}

// YearReport tallies the grid at the end of a year. Year 0 is the state
// right after initialization.
type YearReport struct {
	Year          int `json:"year"`
	DomesticLive  int `json:"domestic_live"`
	DomesticDead  int `json:"domestic_dead"`
	FeralLive     int `json:"feral_live"`
	FeralDead     int `json:"feral_dead"`
	DomesticSites int `json:"domestic_sites"`
}

// Status is a point-in-time view of the run for observers.
type Status struct {
	RunID     string     `json:"run_id"`
	Seed      int64      `json:"seed"`
	Year      int        `json:"year"`
	SimLength int        `json:"sim_length"`
	Running   bool       `json:"running"`
	Sites     int        `json:"sites"`
	Last      YearReport `json:"last_year"`
}

// NewSimulation builds and initializes the grid from cfg. Every event,
// including the founding colonies, goes to st. The founding population is
// closed as its own statistics year before the first simulated year starts.
func NewSimulation(cfg config.Config, st Statistics) (*Simulation, error) {
	if st == nil {
		st = nopStatistics{}
	}
	rng := entropy.NewStream(cfg.Seed + entropy.GridStreamOffset)
	grid := world.NewGrid(cfg, rng, st)
	grid.Initialize(rng)

	for _, site := range grid.Sites() {
		st.HivesAtEndOfSummer(site)
	}
	if err := st.EndOfSummer(); err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}

	s := &Simulation{
		RunID: uuid.NewString(),
		cfg:   cfg,
		grid:  grid,
		stats: st,
		rng:   rng,
	}
	s.startRecords = s.Records()
	s.report = s.tally()
	return s, nil
}

// Grid returns the simulated grid.
func (s *Simulation) Grid() *world.Grid { return s.grid }

// StartRecords returns the site records taken right after initialization.
func (s *Simulation) StartRecords() []world.SiteRecord { return s.startRecords }

// Records returns the current record of every site in row-major order.
func (s *Simulation) Records() []world.SiteRecord {
	sites := s.grid.Sites()
	out := make([]world.SiteRecord, len(sites))
	for i, site := range sites {
		out[i] = site.Record()
	}
	return out
}

// Year returns the number of completed years.
func (s *Simulation) Year() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.year
}

// Status returns a snapshot for observers.
func (s *Simulation) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		RunID:     s.RunID,
		Seed:      s.cfg.Seed,
		Year:      s.year,
		SimLength: s.cfg.SimLength,
		Running:   s.running,
		Sites:     len(s.grid.Sites()),
		Last:      s.report,
	}
}

// RunYear advances the simulation by one year: winter, domestic
// replacement, swarming, then the end-of-summer snapshot. Simulated years
// are numbered from 1; year 0 is the founding population.
func (s *Simulation) RunYear(ctx context.Context) error {
	start := time.Now()
	year := s.Year() + 1
	sites := s.grid.Sites()

	slog.Debug("phase", "year", year, "phase", PhaseWinter)
	for _, site := range sites {
		site.OverWinter()
	}
	for _, site := range sites {
		s.stats.HivesAtEndOfWinter(site)
	}
	s.stats.EndOfWinter()

	slog.Debug("phase", "year", year, "phase", PhaseReplace)
	if err := s.replaceDomestic(ctx, sites); err != nil {
		return s.fail(year, PhaseReplace, err)
	}

	slog.Debug("phase", "year", year, "phase", PhaseSwarm)
	for _, site := range sites {
		if err := site.SwarmLiveHives(); err != nil {
			return s.fail(year, PhaseSwarm, err)
		}
	}
	for _, site := range sites {
		if err := site.ReplaceDeadHives(); err != nil {
			return s.fail(year, PhaseSwarm, err)
		}
	}

	slog.Debug("phase", "year", year, "phase", PhaseSummer)
	for _, site := range sites {
		s.stats.HivesAtEndOfSummer(site)
	}
	if err := s.stats.EndOfSummer(); err != nil {
		return s.fail(year, PhaseSummer, err)
	}

	report := s.tally()
	report.Year = year
	s.mu.Lock()
	s.year++
	s.report = report
	s.mu.Unlock()

	slog.Info("yearly report",
		"year", year,
		"domestic_sites", humanize.Comma(int64(report.DomesticSites)),
		"domestic_live", humanize.Comma(int64(report.DomesticLive)),
		"domestic_dead", humanize.Comma(int64(report.DomesticDead)),
		"feral_live", humanize.Comma(int64(report.FeralLive)),
		"feral_dead", humanize.Comma(int64(report.FeralDead)),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// replaceDomestic plans every site's replacements in parallel, then commits
// them once all workers finish. Sites are dealt round-robin to workers.
// Planning only reads committed colonies, so the outcome does not depend on
// the number of workers.
func (s *Simulation) replaceDomestic(ctx context.Context, sites []*world.Site) error {
	workers := s.cfg.Threads
	if workers > len(sites) {
		workers = len(sites)
	}
	if workers < 1 {
		workers = 1
	}

	plans := make([][]*world.Hive, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := w; i < len(sites); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				next, changed, err := sites[i].PlanDomesticReplacements()
				if err != nil {
					return err
				}
				if changed {
					plans[i] = next
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, next := range plans {
		if next != nil {
			sites[i].CommitHives(next)
		}
	}
	return nil
}

func (s *Simulation) fail(year int, phase Phase, err error) error {
	slog.Error("simulation aborted", "year", year, "phase", phase, "error", err)
	return fmt.Errorf("year %d, %s phase: %w", year, phase, err)
}

func (s *Simulation) tally() YearReport {
	var r YearReport
	for _, site := range s.grid.Sites() {
		rec := site.Record()
		if rec.Domestic {
			r.DomesticSites++
			r.DomesticLive += rec.LiveColonies
			r.DomesticDead += rec.DeadColonies
		} else {
			r.FeralLive += rec.LiveColonies
			r.FeralDead += rec.DeadColonies
		}
	}
	return r
}

type nopStatistics struct{ world.NopSink }

func (nopStatistics) HivesAtEndOfWinter(*world.Site) {}
func (nopStatistics) HivesAtEndOfSummer(*world.Site) {}
func (nopStatistics) EndOfWinter()                   {}
func (nopStatistics) EndOfSummer() error             { return nil }
