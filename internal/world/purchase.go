package world

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/talgya/hivesim/internal/entropy"
)

var (
	// ErrNoLivingBreeder means no queen-breeder site has a living colony.
	// The run cannot continue.
	ErrNoLivingBreeder = errors.New("no living queen-breeder colony")
	// ErrNoMatedQueen means every living breeder colony was tried and none
	// of their daughters found drones.
	ErrNoMatedQueen = errors.New("no queen-breeder daughter could be mated")
)

// PurchaseMatedQueen buys a mated queen for target. A breeder site and one
// of its colonies are picked at random; from there breeder colonies are
// scanned in order, wrapping, until a living one is found. That colony
// breeds a daughter queen who makes a mating flight from the breeder site.
// All draws come from rng, which belongs to the purchasing site.
func (g *Grid) PurchaseMatedQueen(target *Site, rng *rand.Rand) (*Hive, error) {
	breeders := g.QueenBreeders()
	if len(breeders) == 0 {
		return nil, fmt.Errorf("%w: no queen breeders configured", ErrNoLivingBreeder)
	}

	var flat []*Hive
	offsets := make([]int, len(breeders)+1)
	for i, b := range breeders {
		offsets[i] = len(flat)
		flat = append(flat, b.Hives()...)
	}
	offsets[len(breeders)] = len(flat)
	if len(flat) == 0 {
		return nil, fmt.Errorf("%w: breeder sites hold no colonies", ErrNoLivingBreeder)
	}

	bi := rng.Intn(len(breeders))
	start := offsets[bi]
	if n := offsets[bi+1] - offsets[bi]; n > 0 {
		start += rng.Intn(n)
	}

	tried := 0
	for i := 0; i < len(flat); i++ {
		source := flat[(start+i)%len(flat)]
		queen, err := source.ChildQueen(rng)
		if errors.Is(err, ErrDeadColony) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tried++
		drones := source.site.MatingFlight(source, rng)
		if drones == nil {
			g.sink.MatingFlightFailed(true)
			continue
		}
		return newHive(target, queen, drones, entropy.Derive(rng)), nil
	}
	if tried == 0 {
		return nil, fmt.Errorf("%w: all %d breeder colonies are dead", ErrNoLivingBreeder, len(flat))
	}
	return nil, fmt.Errorf("%w: tried %d colonies", ErrNoMatedQueen, tried)
}
