package neighborhood

import "math"

// Stats holds the aggregates for one (measure, k) selection.
type Stats struct {
	Sum   float64 // proportion mode: sum of the group column
	Total float64 // population within the radius
	Mean  float64 // weighted mode: population-weighted mean
	Std   float64 // weighted mode: population-weighted std deviation
}

// aggregate computes statistics over every location within radius.
// Selection is by distance predicate, not first-N-by-pointer, so all
// locations tied at the boundary distance are included.
//
// In weighted mode the variance is the population-weighted mean of
// squared deviations (biased, no Bessel correction). A selection with
// zero total weight has undefined weighted statistics; those surface as
// NaN rather than a division error.
func aggregate(dist []int, radius int, group, pop []float64, proportion bool) Stats {
	var s Stats

	if proportion {
		for i, d := range dist {
			if d <= radius {
				s.Sum += group[i]
				s.Total += pop[i]
			}
		}
		return s
	}

	var wsum, wvsum float64
	for i, d := range dist {
		if d <= radius {
			wsum += pop[i]
			wvsum += pop[i] * group[i]
		}
	}
	s.Total = wsum
	if wsum == 0 {
		s.Mean = math.NaN()
		s.Std = math.NaN()
		return s
	}

	mean := wvsum / wsum
	var devsum float64
	for i, d := range dist {
		if d <= radius {
			dev := group[i] - mean
			devsum += pop[i] * dev * dev
		}
	}

	s.Mean = mean
	s.Std = math.Sqrt(devsum / wsum)
	return s
}
