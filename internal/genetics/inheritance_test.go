package genetics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "ONE_PARENT", want: OneParent},
		{in: "average", want: Average},
		{in: " AVERAGE ", want: Average},
		{in: "BOTH", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMode(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestChildGeneWithinBounds(t *testing.T) {
	for _, mode := range []Mode{OneParent, Average} {
		m := NewInheritanceModel(mode, 0.5, 0.9)
		for seed := int64(0); seed < 20; seed++ {
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 500; i++ {
				a, b := rng.Float64(), rng.Float64()
				g := m.ChildGene(a, b, rng)
				assert.GreaterOrEqual(t, g, 0.0)
				assert.LessOrEqual(t, g, 0.9)
			}
		}
	}
}

func TestChildGeneZeroDrift(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	avg := NewInheritanceModel(Average, 0, 1)
	assert.InDelta(t, 0.5, avg.ChildGene(0.2, 0.8, rng), 1e-12)

	one := NewInheritanceModel(OneParent, 0, 1)
	for i := 0; i < 50; i++ {
		g := one.ChildGene(0.2, 0.8, rng)
		assert.True(t, g == 0.2 || g == 0.8, "got %v", g)
	}
}

func TestChildQueenFromDrones(t *testing.T) {
	m := NewInheritanceModel(Average, 0, 1)
	rng := rand.New(rand.NewSource(9))

	g, err := m.ChildQueenFromDrones(0.4, []float64{0.6}, rng)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, g, 1e-12)

	_, err = m.ChildQueenFromDrones(0.4, nil, rng)
	assert.ErrorIs(t, err, ErrNoDrones)
}

func TestHiveStrength(t *testing.T) {
	tests := []struct {
		name   string
		queen  float64
		drones []float64
		want   float64
	}{
		{name: "single drone", queen: 0.6, drones: []float64{0.2}, want: 0.4},
		{name: "many drones", queen: 0.5, drones: []float64{0.1, 0.3, 0.5, 0.9}, want: (4*0.5 + 1.8) / 8},
		{name: "no drones", queen: 0.5, drones: nil, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, HiveStrength(tc.queen, tc.drones), 1e-12)
		})
	}
}
