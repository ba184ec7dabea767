package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIsDeterministic(t *testing.T) {
	a := Derive(NewStream(42))
	b := Derive(NewStream(42))
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Int63(), b.Int63())
	}
}

func TestDeriveIndependentOfSibling(t *testing.T) {
	parent := NewStream(7)
	first := Derive(parent)
	second := Derive(parent)
	assert.NotEqual(t, first.Int63(), second.Int63())
}

func TestSeedNonNegative(t *testing.T) {
	for i := 0; i < 50; i++ {
		assert.GreaterOrEqual(t, Seed(), int64(0))
	}
}

func TestIntBetween(t *testing.T) {
	rng := NewStream(1)
	for i := 0; i < 1000; i++ {
		v := IntBetween(rng, 3, 6)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 6)
	}
	assert.Equal(t, 5, IntBetween(rng, 5, 5))
	assert.Equal(t, 5, IntBetween(rng, 5, 2))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.3, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.7, 0, 1))
	assert.Equal(t, 0.4, Clamp(0.4, 0, 1))
}
