// Package entropy provides the deterministic random streams used by the
// simulation and a crypto/rand fallback for picking a seed.
//
// Every site and every hive owns its own stream, derived exactly once from a
// parent stream. No two entities ever draw from the same stream, so a run is
// reproducible from its seed regardless of how work is scheduled.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand"
)

// Offsets applied to the run seed for independent top-level streams.
const (
	GridStreamOffset      = 0
	LandscapeStreamOffset = 100
)

// NewStream creates a deterministic stream from a seed.
func NewStream(seed int64) *mrand.Rand {
	return mrand.New(mrand.NewSource(seed))
}

// Derive creates an independent child stream seeded from the parent.
// Draws exactly one value from the parent.
func Derive(parent *mrand.Rand) *mrand.Rand {
	return NewStream(parent.Int63())
}

// Seed returns a fresh non-negative seed from crypto/rand. Used when the
// configuration leaves the seed blank; the caller records the value so the
// run can be repeated.
func Seed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed rather than abort.
		slog.Warn("crypto/rand unavailable, using fixed seed", "error", err)
		return 1
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}

// IntBetween returns a uniform integer in [lo, hi]. Returns lo when hi < lo.
func IntBetween(rng *mrand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return rng.Intn(1+hi-lo) + lo
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
