package stats

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/hivesim/internal/world"
)

// ErrSwarmAccounting means the swarms recorded in a year do not equal the
// swarms that found a site plus those that did not.
var ErrSwarmAccounting = errors.New("swarm accounting mismatch")

// Collector records hive events and end-of-season snapshots. It implements
// world.Sink and is safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	current Year
	history []Year
}

var _ world.Sink = (*Collector)(nil)

// NewCollector returns a collector positioned at year 0.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) bump(domestic bool, f func(p *Population)) {
	c.mu.Lock()
	f(c.current.population(domestic))
	c.mu.Unlock()
}

func (c *Collector) ColonyCreated(domestic bool) {
	c.bump(domestic, func(p *Population) { p.Created++ })
}

func (c *Collector) DiedOfOldAge(domestic bool) {
	c.bump(domestic, func(p *Population) { p.DiedOfOldAge++ })
}

func (c *Collector) FailedWinter(domestic bool) {
	c.bump(domestic, func(p *Population) { p.KilledByWinter++ })
}

func (c *Collector) MatingFlightFailed(domestic bool) {
	c.bump(domestic, func(p *Population) { p.MatingFlightFailures++ })
}

func (c *Collector) SwarmAttempted(domestic bool) {
	c.bump(domestic, func(p *Population) { p.Swarms++ })
}

func (c *Collector) SwarmFoundSite(domestic bool) {
	c.bump(domestic, func(p *Population) { p.SwarmsFoundSite++ })
}

func (c *Collector) SwarmFoundNoSite(domestic bool) {
	c.bump(domestic, func(p *Population) { p.SwarmsNoSite++ })
}

func (c *Collector) ColonyRequeened() {
	c.mu.Lock()
	c.current.Requeened++
	c.mu.Unlock()
}

// HivesAtEndOfWinter counts the site's living and dead colonies.
func (c *Collector) HivesAtEndOfWinter(s *world.Site) {
	states := hiveStates(s)
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.current.population(s.Domestic())
	for _, st := range states {
		if st.Dead {
			p.EndOfWinterDead++
		} else {
			p.EndOfWinterLive++
		}
	}
}

// HivesAtEndOfSummer counts the site's colonies and accumulates queen, hive
// strength and drone ranges over the living ones.
func (c *Collector) HivesAtEndOfSummer(s *world.Site) {
	states := hiveStates(s)
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.current.population(s.Domestic())
	for _, st := range states {
		if st.Dead {
			p.Dead++
			continue
		}
		p.Live++
		p.QueenStrength.observe(st.QueenGene)
		p.HiveStrength.observe(st.Strength)
		p.Drones.observe(float64(st.DroneCount))
	}
}

func hiveStates(s *world.Site) []world.HiveState {
	hives := s.Hives()
	out := make([]world.HiveState, len(hives))
	for i, h := range hives {
		out[i] = h.State()
	}
	return out
}

// EndOfWinter marks the end of the winter snapshot.
func (c *Collector) EndOfWinter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	slog.Debug("end of winter",
		"year", c.current.Index,
		"domestic_live", c.current.Domestic.EndOfWinterLive,
		"feral_live", c.current.Feral.EndOfWinterLive)
}

// EndOfSummer validates swarm accounting and closes the year. On a mismatch
// the year stays open and ErrSwarmAccounting is returned.
func (c *Collector) EndOfSummer() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, side := range []struct {
		name string
		p    Population
	}{{"domestic", c.current.Domestic}, {"feral", c.current.Feral}} {
		if side.p.Swarms != side.p.SwarmsFoundSite+side.p.SwarmsNoSite {
			return fmt.Errorf("%w: year %d, %s swarms (%d) != found site (%d) + no site (%d)",
				ErrSwarmAccounting, c.current.Index, side.name,
				side.p.Swarms, side.p.SwarmsFoundSite, side.p.SwarmsNoSite)
		}
	}
	c.history = append(c.history, c.current)
	c.current = Year{Index: c.current.Index + 1}
	return nil
}

// YearsCompleted returns the number of closed years.
func (c *Collector) YearsCompleted() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}

// Current returns a copy of the open year.
func (c *Collector) Current() Year {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// History returns a copy of every closed year.
func (c *Collector) History() []Year {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Year(nil), c.history...)
}

// Series returns every registered metric as a per-year series.
func (c *Collector) Series() map[string][]float64 {
	history := c.History()
	out := make(map[string][]float64, len(metrics))
	for _, m := range metrics {
		values := make([]float64, len(history))
		for i, y := range history {
			values[i] = m.Value(y)
		}
		out[m.Name] = values
	}
	return out
}
