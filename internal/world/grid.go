// Package world holds the toroidal grid of sites and the colonies on them.
package world

import (
	"log/slog"
	"math/rand"
	"sync"

	"github.com/talgya/hivesim/internal/config"
	"github.com/talgya/hivesim/internal/entropy"
	"github.com/talgya/hivesim/internal/genetics"
)

// Grid is an N×N torus of sites. Coordinates wrap in both axes.
type Grid struct {
	edge  int
	sites [][]*Site
	list  []*Site

	cfg       config.Config
	inherit   *genetics.InheritanceModel
	landscape *Landscape
	sink      Sink

	// breederMu serializes the last-living-breeder check with the death it
	// guards, and protects queenBreeders.
	breederMu     sync.Mutex
	queenBreeders []*Site
}

// NewGrid builds an uninitialized grid. Each site's stream is derived from
// rng in row-major order. A nil sink discards events.
func NewGrid(cfg config.Config, rng *rand.Rand, sink Sink) *Grid {
	if sink == nil {
		sink = NopSink{}
	}
	g := &Grid{
		edge:      cfg.EdgeLength,
		cfg:       cfg,
		inherit:   genetics.NewInheritanceModel(cfg.InheritanceMode, cfg.StdDevG, cfg.MaxG),
		landscape: NewLandscape(cfg.Seed, cfg.EdgeLength, cfg.DomesticClustering, cfg.DomesticClusteringScale),
		sink:      sink,
	}
	g.sites = make([][]*Site, g.edge)
	for x := 0; x < g.edge; x++ {
		g.sites[x] = make([]*Site, g.edge)
		for y := 0; y < g.edge; y++ {
			s := newSite(g, x, y, entropy.Derive(rng))
			g.sites[x][y] = s
			g.list = append(g.list, s)
		}
	}
	return g
}

// EdgeLength returns N.
func (g *Grid) EdgeLength() int { return g.edge }

// Sites returns every site in row-major order.
func (g *Grid) Sites() []*Site { return g.list }

// At returns the site at (x, y) after wrapping.
func (g *Grid) At(x, y int) *Site {
	return g.sites[g.wrap(x)][g.wrap(y)]
}

// Offset returns the site reached by moving (dx, dy) from s.
func (g *Grid) Offset(s *Site, dx, dy int) *Site {
	return g.At(s.X+dx, s.Y+dy)
}

func (g *Grid) wrap(i int) int {
	return ((i % g.edge) + g.edge) % g.edge
}

// SiteInDirection returns the site distance steps from s in direction d.
func (g *Grid) SiteInDirection(s *Site, d Direction, distance int) *Site {
	switch d {
	case North:
		return g.Offset(s, distance, 0)
	case South:
		return g.Offset(s, -distance, 0)
	case East:
		return g.Offset(s, 0, distance)
	default:
		return g.Offset(s, 0, -distance)
	}
}

// NeighborsOf returns the sites within Manhattan distance radius of s,
// excluding s itself. On small grids offsets can wrap onto the same site;
// each site appears once, in first-seen order.
func (g *Grid) NeighborsOf(s *Site, radius int) []*Site {
	var out []*Site
	seen := map[*Site]bool{s: true}
	for dx := -radius; dx <= radius; dx++ {
		span := radius - abs(dx)
		for dy := -span; dy <= span; dy++ {
			n := g.Offset(s, dx, dy)
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// QueenBreeders returns the queen-breeder sites.
func (g *Grid) QueenBreeders() []*Site {
	g.breederMu.Lock()
	defer g.breederMu.Unlock()
	return append([]*Site(nil), g.queenBreeders...)
}

// Initialize designates queen breeders and populates every site. With a
// fixed breeder count, that many distinct sites are drawn from rng and made
// breeders before the rest are initialized normally. With "all", every
// domestic site becomes a breeder.
func (g *Grid) Initialize(rng *rand.Rand) {
	cfg := g.cfg
	if !cfg.AllQueenBreeders && cfg.QueenBreeders > 0 {
		if cfg.ProbDomestic == 0 {
			slog.Warn("queen breeders requested but prob_domestic is zero")
		}
		pool := append([]*Site(nil), g.list...)
		for i := 0; i < cfg.QueenBreeders && len(pool) > 0; i++ {
			idx := rng.Intn(len(pool))
			s := pool[idx]
			pool = append(pool[:idx], pool[idx+1:]...)
			s.initializeAsBreeder()
			g.queenBreeders = append(g.queenBreeders, s)
		}
	}
	for _, s := range g.list {
		if !s.initialized {
			s.Initialize()
		}
	}
	if cfg.AllQueenBreeders {
		for _, s := range g.list {
			if s.domestic {
				s.queenBreeder = true
				g.queenBreeders = append(g.queenBreeders, s)
			}
		}
	}

	domestic := 0
	for _, s := range g.list {
		if s.domestic {
			domestic++
		}
	}
	slog.Info("grid initialized",
		"sites", len(g.list), "domestic", domestic, "queen_breeders", len(g.queenBreeders))
}

// killUnlessLastBreeder marks h dead unless it is the only living colony
// across all queen-breeder sites. Reports whether h died.
func (g *Grid) killUnlessLastBreeder(h *Hive) bool {
	if !h.site.queenBreeder {
		h.markDead()
		return true
	}
	g.breederMu.Lock()
	defer g.breederMu.Unlock()
	living := 0
	for _, b := range g.queenBreeders {
		for _, bh := range b.Hives() {
			if !bh.Dead() {
				living++
			}
		}
	}
	if living <= 1 {
		slog.Debug("sparing last living queen-breeder colony", "site", h.site.String())
		return false
	}
	h.markDead()
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
