// Package stats collects per-year colony statistics, split between domestic
// and feral sites.
package stats

// Range accumulates a total with its extremes.
type Range struct {
	Total float64 `json:"total"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	n     int
}

func (r *Range) observe(v float64) {
	if r.n == 0 || v < r.Min {
		r.Min = v
	}
	if r.n == 0 || v > r.Max {
		r.Max = v
	}
	r.Total += v
	r.n++
}

// Population holds one year's counters for either domestic or feral sites.
// Strength and drone ranges cover living colonies at the end of summer.
type Population struct {
	Created              int `json:"created"`
	Dead                 int `json:"dead"`
	Live                 int `json:"live"`
	KilledByWinter       int `json:"killed_by_winter"`
	DiedOfOldAge         int `json:"died_of_old_age"`
	MatingFlightFailures int `json:"mating_flight_failures"`
	Swarms               int `json:"swarms"`
	SwarmsNoSite         int `json:"swarms_no_site"`
	SwarmsFoundSite      int `json:"swarms_found_site"`
	EndOfWinterDead      int `json:"eow_dead"`
	EndOfWinterLive      int `json:"eow_live"`

	QueenStrength Range `json:"queen_strength"`
	HiveStrength  Range `json:"hive_strength"`
	Drones        Range `json:"drones"`
}

// Average divides a total by the live colony count. Zero when none lived.
func (p Population) Average(r Range) float64 {
	if p.Live == 0 {
		return 0
	}
	return r.Total / float64(p.Live)
}

// Year is one simulated year's statistics.
type Year struct {
	Index     int        `json:"year"`
	Domestic  Population `json:"domestic"`
	Feral     Population `json:"feral"`
	Requeened int        `json:"requeened"`
}

func (y *Year) population(domestic bool) *Population {
	if domestic {
		return &y.Domestic
	}
	return &y.Feral
}
