package config

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/talgya/hivesim/internal/entropy"
	"github.com/talgya/hivesim/internal/genetics"
	"github.com/talgya/hivesim/internal/survival"
)

// Hive count distributions for domestic sites.
const (
	DistThreeWayNorm = "three-way-norm"
	DistLinear       = "linear"
)

// Optional property defaults.
const (
	DefaultThreads         = 20
	DefaultClusteringScale = 0.15
	DefaultDBPath          = "data/hivesim.db"
)

// HiveCountDistribution describes how many hives a domestic site keeps.
type HiveCountDistribution struct {
	Kind       string
	M0, M1, M2 float64 // three-way-norm mixture weights
	Min, Max   int     // linear bounds
}

// Config is the validated, typed simulation configuration.
type Config struct {
	EdgeLength int
	SimLength  int
	Seed       int64

	ProbDomestic          float64
	QueenBreeders         int
	AllQueenBreeders      bool
	QueenBreederHiveCount int
	HiveCount             HiveCountDistribution

	MinDrones                  int
	MaxDrones                  int
	MatingFlightDistance       int
	DroneParticipationDistance int
	SwarmDistance              int

	MaxHiveAge         int
	MinRequeenAge      int
	RequeenProbability float64
	DomesticProbSwarm  float64
	FeralProbSwarm     float64

	InheritanceMode genetics.Mode
	StdDevG         float64
	MaxG            float64
	G0Feral         float64
	G0Domestic      float64

	SurvivalModelName         string
	Survival                  survival.Model
	FeralUsesDomesticSurvival bool

	Threads int

	DomesticClustering      float64
	DomesticClusteringScale float64

	DBPath    string
	ServePort int
	LogLevel  slog.Level

	// Props is the full property set, including any generated seed.
	Props Properties
}

// Build validates properties and produces a Config. Every required property
// must be present; a missing or malformed one is returned as an error naming
// the property.
func Build(p Properties) (Config, error) {
	b := builder{p: p}
	c := Config{Props: p}

	c.EdgeLength = b.intMin("edge_length", 1)
	c.SimLength = b.intMin("sim_length", 0)
	c.Seed = b.seed()

	c.ProbDomestic = b.prob("prob_domestic")
	c.QueenBreeders, c.AllQueenBreeders = b.queenBreeders()
	c.QueenBreederHiveCount = b.intMin("queen_breeder_hive_count", 0)
	c.HiveCount = b.hiveCount()

	c.MinDrones = b.intMin("min_drones", 1)
	c.MaxDrones = b.intMin("max_drones", c.MinDrones)
	c.MatingFlightDistance = b.intMin("mating_flight_distance", 0)
	c.DroneParticipationDistance = b.intMin("drone_participation_distance", 0)
	c.SwarmDistance = b.intMin("swarm_distance", 0)

	c.MaxHiveAge = b.intMin("max_hive_age", 1)
	c.MinRequeenAge = b.intMin("min_requeen_age", 0)
	c.RequeenProbability = b.prob("requeen_probability")
	c.DomesticProbSwarm = b.prob("domestic_prob_swarm")
	c.FeralProbSwarm = b.prob("feral_prob_swarm")

	c.InheritanceMode = b.mode()
	c.StdDevG = b.floatMin("stddev_g", 0)
	c.MaxG = b.floatMin("max_g", 0)
	c.G0Feral = b.floatRange("g0_feral", 0, c.MaxG)
	c.G0Domestic = c.G0Feral
	if p.Has("g0_domestic") {
		c.G0Domestic = b.floatRange("g0_domestic", 0, c.MaxG)
	}

	c.SurvivalModelName, c.Survival = b.survival()
	c.FeralUsesDomesticSurvival = b.boolDefault("feral_uses_domestic_survival_model", false)

	c.Threads = b.intDefaultMin("threads", DefaultThreads, 1)

	c.DomesticClustering = b.floatDefault("domestic_clustering", 0)
	if b.err == nil && (c.DomesticClustering < 0 || c.DomesticClustering > 1) {
		b.fail(fmt.Errorf("%w: 'domestic_clustering' must be in [0..1], got %v", ErrOutOfRange, c.DomesticClustering))
	}
	c.DomesticClusteringScale = b.floatDefault("domestic_clustering_scale", DefaultClusteringScale)

	c.DBPath = p.StringDefault("db_path", DefaultDBPath)
	c.ServePort = b.intDefaultMin("serve_port", 0, 0)
	c.LogLevel = b.logLevel()

	if b.err == nil && !c.AllQueenBreeders {
		if c.QueenBreeders > c.EdgeLength*c.EdgeLength {
			b.fail(fmt.Errorf("%w: 'number_queen_breeders' (%d) exceeds the number of sites (%d)",
				ErrOutOfRange, c.QueenBreeders, c.EdgeLength*c.EdgeLength))
		} else if c.QueenBreeders > 0 && c.QueenBreederHiveCount == 0 {
			b.fail(fmt.Errorf("%w: 'queen_breeder_hive_count' must be at least 1 when there are queen breeders", ErrOutOfRange))
		}
	}

	if b.err != nil {
		return Config{}, b.err
	}
	return c, nil
}

// builder collects the first error so Build reads as a flat list.
type builder struct {
	p   Properties
	err error
}

func (b *builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *builder) intMin(name string, lo int) int {
	if b.err != nil {
		return 0
	}
	v, err := b.p.Int(name)
	if err != nil {
		b.fail(err)
		return 0
	}
	if v < lo {
		b.fail(fmt.Errorf("%w: '%s' must be >= %d, got %d", ErrOutOfRange, name, lo, v))
	}
	return v
}

func (b *builder) intDefaultMin(name string, def, lo int) int {
	if b.err != nil {
		return 0
	}
	v, err := b.p.IntDefault(name, def)
	if err != nil {
		b.fail(err)
		return 0
	}
	if v < lo {
		b.fail(fmt.Errorf("%w: '%s' must be >= %d, got %d", ErrOutOfRange, name, lo, v))
	}
	return v
}

func (b *builder) prob(name string) float64 {
	if b.err != nil {
		return 0
	}
	v, err := b.p.Probability(name)
	b.fail(err)
	return v
}

func (b *builder) floatMin(name string, lo float64) float64 {
	if b.err != nil {
		return 0
	}
	v, err := b.p.Float(name)
	if err != nil {
		b.fail(err)
		return 0
	}
	if v < lo {
		b.fail(fmt.Errorf("%w: '%s' must be >= %v, got %v", ErrOutOfRange, name, lo, v))
	}
	return v
}

func (b *builder) floatRange(name string, lo, hi float64) float64 {
	v := b.floatMin(name, lo)
	if b.err == nil && v > hi {
		b.fail(fmt.Errorf("%w: '%s' must be <= %v, got %v", ErrOutOfRange, name, hi, v))
	}
	return v
}

func (b *builder) floatDefault(name string, def float64) float64 {
	if b.err != nil {
		return 0
	}
	v, err := b.p.FloatDefault(name, def)
	b.fail(err)
	return v
}

func (b *builder) boolDefault(name string, def bool) bool {
	if b.err != nil {
		return false
	}
	v, err := b.p.BoolDefault(name, def)
	b.fail(err)
	return v
}

// seed parses the seed, or draws one and records it in the properties.
func (b *builder) seed() int64 {
	if b.err != nil {
		return 0
	}
	if !b.p.Has("seed") {
		s := entropy.Seed()
		b.p["seed"] = strconv.FormatInt(s, 10)
		slog.Info("no seed specified, generated one", "seed", s)
		return s
	}
	s, err := strconv.ParseInt(strings.TrimSpace(b.p["seed"]), 10, 64)
	if err != nil {
		b.fail(fmt.Errorf("%w: 'seed' is not an integer: %q", ErrMalformed, b.p["seed"]))
	}
	return s
}

func (b *builder) queenBreeders() (int, bool) {
	if b.err != nil {
		return 0, false
	}
	n, all, err := b.p.IntOrAll("number_queen_breeders")
	if err != nil {
		b.fail(err)
		return 0, false
	}
	if n < 0 {
		b.fail(fmt.Errorf("%w: 'number_queen_breeders' must be >= 0 or 'all', got %d", ErrOutOfRange, n))
	}
	return n, all
}

func (b *builder) hiveCount() HiveCountDistribution {
	if b.err != nil {
		return HiveCountDistribution{}
	}
	kind, err := b.p.String("number_of_hives_distribution")
	if err != nil {
		b.fail(err)
		return HiveCountDistribution{}
	}
	d := HiveCountDistribution{Kind: kind}
	switch kind {
	case DistThreeWayNorm:
		d.M0 = b.prob("number_of_hives_m0")
		d.M1 = b.prob("number_of_hives_m1")
		d.M2 = b.prob("number_of_hives_m2")
		if b.err == nil && math.Abs(d.M0+d.M1+d.M2-1.0) > 1e-9 {
			b.fail(fmt.Errorf("%w: in the 'three-way-norm' distribution m0+m1+m2 must equal 1.0, got %v",
				ErrOutOfRange, d.M0+d.M1+d.M2))
		}
	case DistLinear:
		d.Min = b.intMin("number_of_hives_min", 0)
		d.Max = b.intMin("number_of_hives_max", d.Min)
	default:
		b.fail(fmt.Errorf("%w: 'number_of_hives_distribution' %q is not supported (want %s or %s)",
			ErrMalformed, kind, DistThreeWayNorm, DistLinear))
	}
	return d
}

func (b *builder) mode() genetics.Mode {
	if b.err != nil {
		return 0
	}
	s, err := b.p.String("inheritance_mode")
	if err != nil {
		b.fail(err)
		return 0
	}
	m, err := genetics.ParseMode(s)
	if err != nil {
		b.fail(fmt.Errorf("%w: 'inheritance_mode': %v", ErrMalformed, err))
	}
	return m
}

func (b *builder) survival() (string, survival.Model) {
	if b.err != nil {
		return "", nil
	}
	name, err := b.p.String("survivalprob.model")
	if err != nil {
		b.fail(err)
		return "", nil
	}
	m, err := survival.New(name, b.p)
	if err != nil {
		b.fail(fmt.Errorf("%w: 'survivalprob.model': %w", ErrMalformed, err))
		return "", nil
	}
	return name, m
}

func (b *builder) logLevel() slog.Level {
	if b.err != nil {
		return slog.LevelInfo
	}
	var lvl slog.Level
	s := b.p.StringDefault("logging", "info")
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		b.fail(fmt.Errorf("%w: 'logging' must be debug, info, warn or error, got %q", ErrMalformed, s))
	}
	return lvl
}
