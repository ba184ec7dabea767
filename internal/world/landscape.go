// Landscape shapes where domestic sites appear, using layered simplex noise
// sampled on a 4-D torus so the field wraps with the grid.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hivesim/internal/entropy"
)

// Landscape is a smooth, wrapping field over the grid. A nil Landscape
// leaves probabilities untouched.
type Landscape struct {
	noise     opensimplex.Noise
	edge      int
	amplitude float64
	scale     float64
}

// NewLandscape returns nil when amplitude is zero.
func NewLandscape(seed int64, edge int, amplitude, scale float64) *Landscape {
	if amplitude == 0 || edge <= 0 {
		return nil
	}
	return &Landscape{
		noise:     opensimplex.NewNormalized(seed + entropy.LandscapeStreamOffset),
		edge:      edge,
		amplitude: amplitude,
		scale:     scale,
	}
}

// Value returns the field at (x, y), in [0, 1].
func (l *Landscape) Value(x, y int) float64 {
	// Each axis maps to a circle; one site step moves about scale units.
	n := float64(l.edge)
	radius := n * l.scale / (2 * math.Pi)
	a := 2 * math.Pi * float64(x) / n
	b := 2 * math.Pi * float64(y) / n
	return octaveNoise4(l.noise,
		radius*math.Cos(a), radius*math.Sin(a),
		radius*math.Cos(b), radius*math.Sin(b),
		3, 1.0, 0.5)
}

// Adjust shifts a base probability by the field at (x, y).
func (l *Landscape) Adjust(p float64, x, y int) float64 {
	if l == nil {
		return p
	}
	return entropy.Clamp(p+l.amplitude*(2*l.Value(x, y)-1), 0, 1)
}

// octaveNoise4 sums octaves of normalized noise; the result stays in [0, 1].
func octaveNoise4(noise opensimplex.Noise, x, y, z, w float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval4(x*frequency, y*frequency, z*frequency, w*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
