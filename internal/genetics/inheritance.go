// Package genetics provides the gene inheritance model.
// A gene is a single survival propensity in [0, maxStrength]; offspring are
// drawn from a normal distribution around a combination of the parents.
package genetics

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/talgya/hivesim/internal/entropy"
)

// Mode selects how the parents' genes are combined into the child's mean.
type Mode uint8

const (
	OneParent Mode = iota // Mean is one parent's gene, chosen at random
	Average               // Mean is the average of both parents
)

// ErrNoDrones is returned when a queen must be bred from an empty drone set.
var ErrNoDrones = errors.New("no drone genes to breed from")

// ParseMode maps a configuration value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ONE_PARENT":
		return OneParent, nil
	case "AVERAGE", "AVG_OF_PARENTS":
		return Average, nil
	default:
		return 0, fmt.Errorf("unknown inheritance mode %q (want ONE_PARENT or AVERAGE)", s)
	}
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case OneParent:
		return "ONE_PARENT"
	case Average:
		return "AVERAGE"
	default:
		return "UNKNOWN"
	}
}

// InheritanceModel combines parental genes with Gaussian drift.
// It holds configuration only and is safe for concurrent use.
type InheritanceModel struct {
	Mode        Mode
	StdDev      float64
	MaxStrength float64
}

// NewInheritanceModel creates a model with the given parameters.
func NewInheritanceModel(mode Mode, stddev, maxStrength float64) *InheritanceModel {
	return &InheritanceModel{Mode: mode, StdDev: stddev, MaxStrength: maxStrength}
}

// ChildGene draws a child gene from two parents. The result is always
// clamped to [0, MaxStrength].
func (m *InheritanceModel) ChildGene(a, b float64, rng *rand.Rand) float64 {
	var mean float64
	if m.Mode == OneParent {
		if rng.Intn(2) == 0 {
			mean = a
		} else {
			mean = b
		}
	} else {
		mean = (a + b) / 2
	}
	return entropy.Clamp(mean+m.StdDev*rng.NormFloat64(), 0, m.MaxStrength)
}

// ChildQueenFromDrones picks one drone uniformly and breeds a child queen
// from it and the queen.
func (m *InheritanceModel) ChildQueenFromDrones(queen float64, drones []float64, rng *rand.Rand) (float64, error) {
	if len(drones) == 0 {
		return 0, ErrNoDrones
	}
	drone := drones[rng.Intn(len(drones))]
	return m.ChildGene(queen, drone, rng), nil
}

// InitialGene draws a founding gene around g0 with the model's drift.
func (m *InheritanceModel) InitialGene(g0 float64, rng *rand.Rand) float64 {
	return entropy.Clamp(g0+m.StdDev*rng.NormFloat64(), 0, m.MaxStrength)
}

// HiveStrength is the aggregate gene strength of a hive, assuming every
// drone is equally likely to father a worker.
func HiveStrength(queen float64, drones []float64) float64 {
	if len(drones) == 0 {
		return 0
	}
	total := 0.0
	for _, d := range drones {
		total += queen + d
	}
	return total / float64(2*len(drones))
}
