package survival

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params map[string]float64

func (p params) FloatDefault(name string, def float64) (float64, error) {
	if v, ok := p[name]; ok {
		return v, nil
	}
	return def, nil
}

func TestLinearFeedingBoundaries(t *testing.T) {
	full, err := New("linear", params{PropF: 1.0})
	require.NoError(t, err)
	none, err := New("linear", params{PropF: 0.0})
	require.NoError(t, err)

	for _, h := range []float64{0.01, 0.2, 0.5, 0.99} {
		assert.Equal(t, 1.0, full.Probability(h, true), "F=1 guarantees survival")
		assert.Equal(t, h, none.Probability(h, true), "F=0 is raw health")
		assert.Equal(t, h, full.Probability(h, false), "unfed hives ignore F")
	}
}

func TestLinearDefaultHalfway(t *testing.T) {
	m, err := New("linear", params{})
	require.NoError(t, err)
	assert.InDelta(t, 0.65, m.Probability(0.3, true), 1e-12)
}

func TestSigmoid(t *testing.T) {
	m, err := New("sigmoid", params{PropF: 0.0})
	require.NoError(t, err)

	// Defaults M=20, A=-2: p(0.1) = 1/(1+e^0) = 0.5.
	assert.InDelta(t, 0.5, m.Probability(0.1, false), 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(-8)), m.Probability(0.5, true), 1e-12)

	fed, err := New("sigmoid", params{PropF: 0.5, PropM: 10, PropA: 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, fed.Probability(0, true), 1e-12)
}

func TestFeedingOutOfRange(t *testing.T) {
	_, err := New("linear", params{PropF: 1.5})
	assert.Error(t, err)
}

func TestUnknownModel(t *testing.T) {
	_, err := New("cubic", params{})
	assert.ErrorIs(t, err, ErrUnknownModel)
}

type constantModel struct{ p float64 }

func (c constantModel) Probability(float64, bool) float64 { return c.p }

func TestRegisterCustomModel(t *testing.T) {
	t.Cleanup(func() { unregisterForTests("constant") })

	require.NoError(t, Register("constant", func(p Params) (Model, error) {
		return constantModel{p: 0.25}, nil
	}))
	assert.ErrorIs(t, Register("constant", func(Params) (Model, error) { return nil, nil }), ErrModelExists)
	assert.Contains(t, Names(), "constant")

	m, err := New("constant", params{})
	require.NoError(t, err)
	assert.Equal(t, 0.25, m.Probability(0.9, true))
}
