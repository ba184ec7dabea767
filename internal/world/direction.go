package world

import "math/rand"

// Direction is a cardinal direction on the grid.
// N and S move along the first axis (x), E and W along the second (y).
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

// String returns the single-letter name of the direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	default:
		return "?"
	}
}

// directionOrders holds all 24 orderings of the four directions.
var directionOrders = permuteDirections()

func permuteDirections() [][4]Direction {
	all := [4]Direction{North, East, South, West}
	var out [][4]Direction
	var walk func(prefix []Direction, used [4]bool)
	walk = func(prefix []Direction, used [4]bool) {
		if len(prefix) == 4 {
			out = append(out, [4]Direction{prefix[0], prefix[1], prefix[2], prefix[3]})
			return
		}
		for i, d := range all {
			if used[i] {
				continue
			}
			used[i] = true
			walk(append(prefix, d), used)
			used[i] = false
		}
	}
	walk(make([]Direction, 0, 4), [4]bool{})
	return out
}

// RandomDirectionOrder returns one of the 24 orderings, chosen uniformly.
func RandomDirectionOrder(rng *rand.Rand) [4]Direction {
	return directionOrders[rng.Intn(len(directionOrders))]
}
