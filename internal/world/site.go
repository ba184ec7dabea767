package world

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/talgya/hivesim/internal/config"
	"github.com/talgya/hivesim/internal/entropy"
)

// ErrSwarmState is returned when a colony selected to swarm refuses to.
var ErrSwarmState = errors.New("colony selected to swarm could not swarm")

// Site is one cell of the grid. Its domestic and queen-breeder flags are
// fixed once initialized; its colony list changes only through CommitHives.
type Site struct {
	X, Y int

	grid *Grid
	rng  *rand.Rand

	domestic     bool
	queenBreeder bool
	initialized  bool

	mu    sync.RWMutex
	hives []*Hive
}

func newSite(g *Grid, x, y int, rng *rand.Rand) *Site {
	return &Site{X: x, Y: y, grid: g, rng: rng}
}

func (s *Site) String() string { return fmt.Sprintf("(%d,%d)", s.X, s.Y) }

// Domestic reports whether the site is kept by a beekeeper.
func (s *Site) Domestic() bool { return s.domestic }

// QueenBreeder reports whether the site sells mated queens.
func (s *Site) QueenBreeder() bool { return s.queenBreeder }

// Hives returns a snapshot of the colony list.
func (s *Site) Hives() []*Hive {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Hive(nil), s.hives...)
}

// CommitHives replaces the colony list.
func (s *Site) CommitHives(hives []*Hive) {
	s.mu.Lock()
	s.hives = hives
	s.mu.Unlock()
}

// Initialize decides whether the site is domestic and populates it. A site
// that is already initialized is left unchanged.
func (s *Site) Initialize() {
	if s.initialized {
		slog.Warn("site already initialized", "site", s.String())
		return
	}
	cfg := s.grid.cfg
	p := s.grid.landscape.Adjust(cfg.ProbDomestic, s.X, s.Y)
	s.domestic = s.rng.Float64() < p

	count := 1
	if s.domestic {
		count = s.domesticHiveCount()
	}
	s.populate(count)
}

// initializeAsBreeder makes the site a domestic queen breeder with the
// configured number of colonies.
func (s *Site) initializeAsBreeder() {
	s.domestic = true
	s.queenBreeder = true
	s.populate(s.grid.cfg.QueenBreederHiveCount)
}

func (s *Site) populate(count int) {
	cfg := s.grid.cfg
	g0 := cfg.G0Feral
	if s.domestic {
		g0 = cfg.G0Domestic
	}
	inherit := s.grid.inherit

	hives := make([]*Hive, 0, count)
	for i := 0; i < count; i++ {
		queen := inherit.InitialGene(g0, s.rng)
		drones := make([]float64, entropy.IntBetween(s.rng, cfg.MinDrones, cfg.MaxDrones))
		for j := range drones {
			drones[j] = inherit.InitialGene(g0, s.rng)
		}
		hives = append(hives, newHive(s, queen, drones, entropy.Derive(s.rng)))
	}
	if count == 0 {
		slog.Debug("site initialized with no colonies", "site", s.String())
	}
	s.CommitHives(hives)
	s.initialized = true
}

// domesticHiveCount draws a colony count from the configured distribution.
func (s *Site) domesticHiveCount() int {
	d := s.grid.cfg.HiveCount
	if d.Kind == config.DistLinear {
		return entropy.IntBetween(s.rng, d.Min, d.Max)
	}
	mult := 25.0
	switch r := s.rng.Float64(); {
	case r < d.M0:
		mult = 2
	case r < d.M0+d.M1:
		mult = 10
	}
	return int(math.Round(mult*math.Abs(s.rng.NormFloat64()))) + 1
}

// OverWinter runs every colony through winter.
func (s *Site) OverWinter() {
	for _, h := range s.Hives() {
		h.OverWinter()
	}
}

// PlanDomesticReplacements works out the site's colony list after dead
// colonies are replaced and eligible colonies requeened, each with a newly
// purchased mated queen. Nothing is committed; changed is false when the
// list is identical. Feral sites never change here.
func (s *Site) PlanDomesticReplacements() (next []*Hive, changed bool, err error) {
	current := s.Hives()
	if !s.domestic {
		return current, false, nil
	}
	next = make([]*Hive, len(current))
	for i, h := range current {
		requeen := false
		if !h.Dead() {
			requeen = h.Requeen()
			if !requeen {
				next[i] = h
				continue
			}
		}
		bought, err := s.grid.PurchaseMatedQueen(s, s.rng)
		if err != nil {
			return nil, false, fmt.Errorf("site %s: %w", s, err)
		}
		if requeen {
			s.grid.sink.ColonyRequeened()
		}
		next[i] = bought
		changed = true
	}
	return next, changed, nil
}

// SwarmLiveHives gives each eligible colony a chance to swarm toward a
// vacant feral colony within swarm_distance. The parent swarms whether or
// not a destination is found.
func (s *Site) SwarmLiveHives() error {
	cfg := s.grid.cfg
	prob := cfg.FeralProbSwarm
	if s.domestic {
		prob = cfg.DomesticProbSwarm
	}
	sink := s.grid.sink

	for _, h := range s.Hives() {
		if !h.CanSwarm() || s.rng.Float64() >= prob {
			continue
		}
		sink.SwarmAttempted(s.domestic)
		dest := s.FindNearbyFeralDeadHive(s.rng)
		var destSite *Site
		if dest != nil {
			destSite = dest.site
		}
		swarm, ok, err := h.Swarm(destSite)
		if err != nil {
			return fmt.Errorf("site %s: %w", s, err)
		}
		if !ok {
			return fmt.Errorf("site %s: %w", s, ErrSwarmState)
		}
		if dest == nil {
			sink.SwarmFoundNoSite(s.domestic)
			continue
		}
		if err := dest.ReceiveSwarm(swarm); err != nil {
			return fmt.Errorf("site %s: swarm to %s: %w", s, destSite, err)
		}
		sink.SwarmFoundSite(s.domestic)
	}
	return nil
}

// ReplaceDeadHives fills each dead colony of a feral site with a swarm from
// a neighbouring colony that is able to swarm. Domestic sites are skipped.
func (s *Site) ReplaceDeadHives() error {
	if s.domestic {
		return nil
	}
	sink := s.grid.sink
	neighbors := s.grid.NeighborsOf(s, s.grid.cfg.SwarmDistance)

	for _, h := range s.Hives() {
		if !h.Dead() {
			continue
		}
	search:
		for _, nb := range neighbors {
			for _, donor := range nb.Hives() {
				swarm, ok, err := donor.Swarm(s)
				if err != nil {
					return fmt.Errorf("site %s: %w", s, err)
				}
				if !ok {
					continue
				}
				sink.SwarmAttempted(nb.domestic)
				if err := h.ReceiveSwarm(swarm); err != nil {
					return fmt.Errorf("site %s: %w", s, err)
				}
				sink.SwarmFoundSite(nb.domestic)
				break search
			}
		}
	}
	return nil
}

// FindNearbyFeralDeadHive picks, uniformly, a dead colony at a feral site
// within swarm_distance. Returns nil when there is none.
func (s *Site) FindNearbyFeralDeadHive(rng *rand.Rand) *Hive {
	var candidates []*Hive
	for _, nb := range s.grid.NeighborsOf(s, s.grid.cfg.SwarmDistance) {
		if nb.domestic {
			continue
		}
		for _, h := range nb.Hives() {
			if h.Dead() {
				candidates = append(candidates, h)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rng.Intn(len(candidates))]
}

// MatingFlight flies a queen from this site. Directions are tried in a random
// order; in each, the queen lands mating_flight_distance away and mates with
// drones from living colonies within drone_participation_distance of the
// landing site. The flyer's own colony never contributes. Returns nil when
// no direction yields drones.
func (s *Site) MatingFlight(flyer *Hive, rng *rand.Rand) []float64 {
	cfg := s.grid.cfg
	var pool []float64
	for _, d := range RandomDirectionOrder(rng) {
		landing := s.grid.SiteInDirection(s, d, cfg.MatingFlightDistance)
		pool = landing.droneSources(flyer, cfg.DroneParticipationDistance)
		if len(pool) > 0 {
			break
		}
	}
	if len(pool) == 0 {
		return nil
	}
	drones := make([]float64, entropy.IntBetween(rng, cfg.MinDrones, cfg.MaxDrones))
	for i := range drones {
		drones[i] = pool[rng.Intn(len(pool))]
	}
	return drones
}

// droneSources collects the queen genes of living colonies at this site and
// within radius of it, excluding the flyer.
func (s *Site) droneSources(flyer *Hive, radius int) []float64 {
	sites := append([]*Site{s}, s.grid.NeighborsOf(s, radius)...)
	var pool []float64
	for _, site := range sites {
		for _, h := range site.Hives() {
			if h == flyer {
				continue
			}
			st := h.State()
			if st.Dead {
				continue
			}
			pool = append(pool, st.QueenGene)
		}
	}
	return pool
}
