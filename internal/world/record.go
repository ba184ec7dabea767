package world

import (
	"errors"
	"fmt"
	"math"
)

// ErrIncompleteRecords is returned when a record set does not cover a full
// square grid.
var ErrIncompleteRecords = errors.New("site records do not cover the grid")

// SiteRecordHeader names the SiteRecord columns in output order.
var SiteRecordHeader = []string{
	"x", "y", "domestic", "queen_breeder",
	"total_colonies", "live_colonies", "dead_colonies",
	"avg_live_strength", "max_live_strength", "min_live_strength",
}

// SiteRecord is the per-site summary written at the start and end of a run.
// Strength fields are zero when no colony is alive.
type SiteRecord struct {
	X               int     `json:"x" db:"x"`
	Y               int     `json:"y" db:"y"`
	Domestic        bool    `json:"domestic" db:"domestic"`
	QueenBreeder    bool    `json:"queen_breeder" db:"queen_breeder"`
	TotalColonies   int     `json:"total_colonies" db:"total_colonies"`
	LiveColonies    int     `json:"live_colonies" db:"live_colonies"`
	DeadColonies    int     `json:"dead_colonies" db:"dead_colonies"`
	AvgLiveStrength float64 `json:"avg_live_strength" db:"avg_live_strength"`
	MaxLiveStrength float64 `json:"max_live_strength" db:"max_live_strength"`
	MinLiveStrength float64 `json:"min_live_strength" db:"min_live_strength"`
}

// Fields renders the record in SiteRecordHeader order.
func (r SiteRecord) Fields() []string {
	return []string{
		fmt.Sprint(r.X), fmt.Sprint(r.Y),
		fmt.Sprint(r.Domestic), fmt.Sprint(r.QueenBreeder),
		fmt.Sprint(r.TotalColonies), fmt.Sprint(r.LiveColonies), fmt.Sprint(r.DeadColonies),
		fmt.Sprint(r.AvgLiveStrength), fmt.Sprint(r.MaxLiveStrength), fmt.Sprint(r.MinLiveStrength),
	}
}

// Record summarises the site's current colonies.
func (s *Site) Record() SiteRecord {
	r := SiteRecord{
		X:            s.X,
		Y:            s.Y,
		Domestic:     s.domestic,
		QueenBreeder: s.queenBreeder,
	}
	sum := 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, h := range s.Hives() {
		st := h.State()
		r.TotalColonies++
		if st.Dead {
			r.DeadColonies++
			continue
		}
		r.LiveColonies++
		sum += st.Strength
		lo = math.Min(lo, st.Strength)
		hi = math.Max(hi, st.Strength)
	}
	if r.LiveColonies > 0 {
		r.AvgLiveStrength = sum / float64(r.LiveColonies)
		r.MaxLiveStrength = hi
		r.MinLiveStrength = lo
	}
	return r
}

// NeighborsAvgStrength averages AvgLiveStrength over the four cardinal
// neighbours of (x, y), wrapping at the edges. A neighbour with no living
// colony counts as zero. records must cover a full grid, in any order.
func NeighborsAvgStrength(records []SiteRecord, x, y int) (float64, error) {
	edge := 0
	for _, r := range records {
		if r.X+1 > edge {
			edge = r.X + 1
		}
	}
	if edge == 0 || len(records) != edge*edge {
		return 0, fmt.Errorf("%w: %d records", ErrIncompleteRecords, len(records))
	}
	byPos := make([]*SiteRecord, edge*edge)
	for i := range records {
		r := &records[i]
		if r.X < 0 || r.Y < 0 || r.X >= edge || r.Y >= edge || byPos[r.X*edge+r.Y] != nil {
			return 0, fmt.Errorf("%w: unexpected site (%d,%d)", ErrIncompleteRecords, r.X, r.Y)
		}
		byPos[r.X*edge+r.Y] = r
	}
	wrap := func(i int) int { return ((i % edge) + edge) % edge }

	total := 0.0
	for _, d := range [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}} {
		total += byPos[wrap(x+d[0])*edge+wrap(y+d[1])].AvgLiveStrength
	}
	return total / 4, nil
}
