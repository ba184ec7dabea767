// Package survival maps a hive's aggregate gene strength to the probability
// that it survives a winter.
//
// Two models are built in ("linear" and "sigmoid"). Both apply the same
// feeding adjustment to fed hives:
//
//	p += F * (1 - p)
//
// F = 0 means feeding has no effect; F = 1 guarantees a fed hive survives.
// Further models can be added with Register.
package survival

import (
	"fmt"
	"math"
)

// Model is a pure function of hive health and feeding.
type Model interface {
	Probability(health float64, fed bool) float64
}

// Params supplies model parameters by property name.
type Params interface {
	FloatDefault(name string, def float64) (float64, error)
}

// Property names and defaults.
const (
	PropF = "survivalprob.F"
	PropM = "survivalprob.M"
	PropA = "survivalprob.A"

	DefaultF = 0.5
	DefaultM = 20.0
	DefaultA = -2.0
)

// Feeding holds the feeding factor shared by every model.
type Feeding struct {
	F float64
}

// NewFeeding reads and validates survivalprob.F.
func NewFeeding(p Params) (Feeding, error) {
	f, err := p.FloatDefault(PropF, DefaultF)
	if err != nil {
		return Feeding{}, err
	}
	if f < 0 || f > 1 {
		return Feeding{}, fmt.Errorf("%s must be in [0..1], got %v", PropF, f)
	}
	return Feeding{F: f}, nil
}

// Adjust moves p toward 1 by the feeding factor.
func (fd Feeding) Adjust(p float64) float64 {
	return p + fd.F*(1.0-p)
}

// Linear uses the hive health directly as the survival probability.
type Linear struct {
	Feeding
}

// Probability implements Model.
func (m Linear) Probability(health float64, fed bool) float64 {
	if fed {
		return m.Adjust(health)
	}
	return health
}

// Sigmoid maps health through 1 / (1 + e^-(M*h + A)).
// M controls steepness; A shifts the curve.
type Sigmoid struct {
	Feeding
	M float64
	A float64
}

// Probability implements Model.
func (m Sigmoid) Probability(health float64, fed bool) float64 {
	p := 1 / (1 + math.Exp(-(m.M*health + m.A)))
	if fed {
		p = m.Adjust(p)
	}
	return p
}

func newLinear(p Params) (Model, error) {
	fd, err := NewFeeding(p)
	if err != nil {
		return nil, err
	}
	return Linear{Feeding: fd}, nil
}

func newSigmoid(p Params) (Model, error) {
	fd, err := NewFeeding(p)
	if err != nil {
		return nil, err
	}
	mv, err := p.FloatDefault(PropM, DefaultM)
	if err != nil {
		return nil, err
	}
	av, err := p.FloatDefault(PropA, DefaultA)
	if err != nil {
		return nil, err
	}
	return Sigmoid{Feeding: fd, M: mv, A: av}, nil
}
