package stats

// Metric names one per-year series and how to read it from a Year.
type Metric struct {
	Name  string
	Value func(Year) float64
}

var metrics = buildMetrics()

// Metrics returns every registered series in a stable order.
func Metrics() []Metric {
	return append([]Metric(nil), metrics...)
}

// Lookup finds a metric by name.
func Lookup(name string) (Metric, bool) {
	for _, m := range metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

func buildMetrics() []Metric {
	var out []Metric
	for _, side := range []struct {
		prefix string
		pick   func(Year) Population
	}{
		{"domestic", func(y Year) Population { return y.Domestic }},
		{"feral", func(y Year) Population { return y.Feral }},
	} {
		pick := side.pick
		count := func(name string, f func(Population) int) {
			out = append(out, Metric{
				Name:  side.prefix + "_" + name,
				Value: func(y Year) float64 { return float64(f(pick(y))) },
			})
		}
		ranged := func(name string, f func(Population) Range) {
			out = append(out,
				Metric{
					Name: side.prefix + "_avg_" + name,
					Value: func(y Year) float64 {
						p := pick(y)
						return p.Average(f(p))
					},
				},
				Metric{Name: side.prefix + "_min_" + name, Value: func(y Year) float64 { return f(pick(y)).Min }},
				Metric{Name: side.prefix + "_max_" + name, Value: func(y Year) float64 { return f(pick(y)).Max }},
			)
		}

		count("hives_created", func(p Population) int { return p.Created })
		count("dead_hives", func(p Population) int { return p.Dead })
		count("live_hives", func(p Population) int { return p.Live })
		count("killed_by_winter", func(p Population) int { return p.KilledByWinter })
		count("died_of_old_age", func(p Population) int { return p.DiedOfOldAge })
		count("mating_flight_failures", func(p Population) int { return p.MatingFlightFailures })
		count("swarms", func(p Population) int { return p.Swarms })
		count("swarms_no_site", func(p Population) int { return p.SwarmsNoSite })
		count("swarms_found_site", func(p Population) int { return p.SwarmsFoundSite })
		count("eow_dead_hives", func(p Population) int { return p.EndOfWinterDead })
		count("eow_live_hives", func(p Population) int { return p.EndOfWinterLive })
		ranged("queen_strength", func(p Population) Range { return p.QueenStrength })
		ranged("hive_strength", func(p Population) Range { return p.HiveStrength })
		ranged("drones", func(p Population) Range { return p.Drones })
	}
	out = append(out, Metric{
		Name:  "domestic_hives_requeened",
		Value: func(y Year) float64 { return float64(y.Requeened) },
	})
	return out
}
