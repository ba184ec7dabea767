package config

// Baseline returns a small, complete property set. Experiments override
// individual values on the command line; tests start from it.
func Baseline() Properties {
	return Properties{
		"edge_length":                        "10",
		"sim_length":                         "5",
		"seed":                               "42",
		"prob_domestic":                      "0.3",
		"number_queen_breeders":              "2",
		"queen_breeder_hive_count":           "20",
		"number_of_hives_distribution":       DistThreeWayNorm,
		"number_of_hives_m0":                 "0.8",
		"number_of_hives_m1":                 "0.15",
		"number_of_hives_m2":                 "0.05",
		"min_drones":                         "10",
		"max_drones":                         "20",
		"mating_flight_distance":             "2",
		"drone_participation_distance":       "1",
		"swarm_distance":                     "2",
		"max_hive_age":                       "5",
		"min_requeen_age":                    "2",
		"requeen_probability":                "0.5",
		"domestic_prob_swarm":                "0.3",
		"feral_prob_swarm":                   "0.6",
		"inheritance_mode":                   "AVERAGE",
		"stddev_g":                           "0.05",
		"max_g":                              "1.0",
		"g0_feral":                           "0.6",
		"survivalprob.model":                 "linear",
		"survivalprob.F":                     "0.5",
		"feral_uses_domestic_survival_model": "false",
		"threads":                            "4",
	}
}

// Clone returns an independent copy.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
