package world

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/talgya/hivesim/internal/entropy"
	"github.com/talgya/hivesim/internal/genetics"
)

var (
	// ErrDeadColony is returned when a dead colony is asked to breed.
	ErrDeadColony = errors.New("colony is dead")
	// ErrNotVacant is returned when a swarm is sent to a living colony.
	ErrNotVacant = errors.New("colony is not vacant")
)

// Hive is one colony: a queen gene, the drone genes she mated with, an age,
// and life flags. All state is guarded by mu.
type Hive struct {
	site *Site
	rng  *rand.Rand

	mu         sync.Mutex
	queenGene  float64
	droneGenes []float64
	age        int
	dead       bool
	canBreed   bool
}

// HiveState is a point-in-time copy of a hive.
type HiveState struct {
	QueenGene  float64 `json:"queen_gene"`
	DroneCount int     `json:"drone_count"`
	Strength   float64 `json:"strength"`
	Age        int     `json:"age"`
	Dead       bool    `json:"dead"`
	CanBreed   bool    `json:"can_breed"`
}

// newHive creates a living colony of age zero at site.
func newHive(site *Site, queen float64, drones []float64, rng *rand.Rand) *Hive {
	h := &Hive{
		site:       site,
		rng:        rng,
		queenGene:  queen,
		droneGenes: drones,
	}
	site.grid.sink.ColonyCreated(site.domestic)
	return h
}

// Site returns the site the hive belongs to.
func (h *Hive) Site() *Site { return h.site }

// State returns a copy of the hive's current state.
func (h *Hive) State() HiveState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return HiveState{
		QueenGene:  h.queenGene,
		DroneCount: len(h.droneGenes),
		Strength:   genetics.HiveStrength(h.queenGene, h.droneGenes),
		Age:        h.age,
		Dead:       h.dead,
		CanBreed:   h.canBreed,
	}
}

// Dead reports whether the colony has died.
func (h *Hive) Dead() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dead
}

// CanSwarm reports whether the colony is alive and has survived a winter
// since it last swarmed or was founded.
func (h *Hive) CanSwarm() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.dead && h.canBreed
}

// Strength is the mean of queen and drone genes over all pairings.
func (h *Hive) Strength() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return genetics.HiveStrength(h.queenGene, h.droneGenes)
}

// QueenGene returns the queen's gene.
func (h *Hive) QueenGene() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queenGene
}

// ChildQueen breeds a daughter queen from this colony's queen and one of
// its drones, drawing from rng.
func (h *Hive) ChildQueen(rng *rand.Rand) (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dead {
		return 0, ErrDeadColony
	}
	return h.site.grid.inherit.ChildQueenFromDrones(h.queenGene, h.droneGenes, rng)
}

type deathCause uint8

const (
	survived deathCause = iota
	oldAge
	failedWinter
)

// OverWinter ages the colony or kills it. Colonies at max_hive_age die of old
// age; the rest survive with the configured survival probability. The last
// living colony across all queen-breeder sites is never killed.
func (h *Hive) OverWinter() {
	g := h.site.grid

	h.mu.Lock()
	if h.dead {
		h.mu.Unlock()
		return
	}
	cause := survived
	if h.age >= g.cfg.MaxHiveAge {
		cause = oldAge
	} else {
		fed := h.site.domestic || g.cfg.FeralUsesDomesticSurvival
		p := g.cfg.Survival.Probability(genetics.HiveStrength(h.queenGene, h.droneGenes), fed)
		if h.rng.Float64() >= p {
			cause = failedWinter
		}
	}
	if cause == survived {
		h.age++
		h.canBreed = true
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	if !g.killUnlessLastBreeder(h) {
		return
	}
	if cause == oldAge {
		g.sink.DiedOfOldAge(h.site.domestic)
	} else {
		g.sink.FailedWinter(h.site.domestic)
	}
}

func (h *Hive) markDead() {
	h.mu.Lock()
	h.dead = true
	h.mu.Unlock()
}

// Requeen decides whether a beekeeper replaces this colony's queen this
// year. Only colonies at least min_requeen_age old are eligible.
func (h *Hive) Requeen() bool {
	g := h.site.grid
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dead || h.age < g.cfg.MinRequeenAge {
		return false
	}
	return h.rng.Float64() < g.cfg.RequeenProbability
}

// Swarm splits the colony. When dest is non-nil a new colony carrying the
// current queen and drones is created there and returned. Either way the
// parent raises a child queen who then makes a fresh mating flight from the
// parent's site; if no drones are found the parent dies. The parent cannot
// swarm again until it survives another winter.
//
// swarmed is false, with no changes made, when the colony cannot swarm.
func (h *Hive) Swarm(dest *Site) (swarm *Hive, swarmed bool, err error) {
	g := h.site.grid

	h.mu.Lock()
	if h.dead || !h.canBreed {
		h.mu.Unlock()
		return nil, false, nil
	}
	queen := h.queenGene
	drones := append([]float64(nil), h.droneGenes...)
	child, err := g.inherit.ChildQueenFromDrones(queen, drones, h.rng)
	if err != nil {
		h.mu.Unlock()
		return nil, false, err
	}
	if dest != nil {
		swarm = newHive(dest, queen, drones, entropy.Derive(h.rng))
	}
	h.queenGene = child
	h.canBreed = false
	h.mu.Unlock()

	mated := h.site.MatingFlight(h, h.rng)

	h.mu.Lock()
	if mated == nil {
		h.dead = true
	} else {
		h.droneGenes = mated
	}
	h.mu.Unlock()
	if mated == nil {
		g.sink.MatingFlightFailed(h.site.domestic)
	}
	return swarm, true, nil
}

// ReceiveSwarm moves an arriving swarm into this dead colony.
func (h *Hive) ReceiveSwarm(swarm *Hive) error {
	swarm.mu.Lock()
	queen, drones, age := swarm.queenGene, swarm.droneGenes, swarm.age
	swarm.mu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.dead {
		return ErrNotVacant
	}
	h.queenGene = queen
	h.droneGenes = drones
	h.age = age
	h.dead = false
	h.canBreed = false
	return nil
}
