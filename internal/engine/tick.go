package engine

import (
	"context"
	"log/slog"
	"time"
)

// Phase names one stage of a simulated year.
type Phase uint8

const (
	PhaseWinter  Phase = iota // every colony over-winters
	PhaseReplace              // beekeepers replace dead colonies and requeen
	PhaseSwarm                // colonies swarm; feral sites refill
	PhaseSummer               // end-of-summer accounting
)

var phaseNames = [...]string{"winter", "replace", "swarm", "summer"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Run advances the simulation until sim_length years have completed. The
// context is checked between years; a cancelled run returns ctx.Err() with
// every completed year intact.
func (s *Simulation) Run(ctx context.Context) error {
	s.setRunning(true)
	defer s.setRunning(false)

	start := time.Now()
	slog.Info("simulation started", "run", s.RunID, "seed", s.cfg.Seed, "years", s.cfg.SimLength)

	for s.Year() < s.cfg.SimLength {
		if err := ctx.Err(); err != nil {
			slog.Info("simulation interrupted", "year", s.Year())
			return err
		}
		if err := s.RunYear(ctx); err != nil {
			return err
		}
	}

	slog.Info("simulation finished", "years", s.Year(), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *Simulation) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}
