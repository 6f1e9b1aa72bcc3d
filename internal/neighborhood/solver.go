package neighborhood

import "github.com/rotisserie/eris"

// ErrInsufficientPopulation is returned when a requested k exceeds the
// total population reachable by exhausting the entire reference set.
var ErrInsufficientPopulation = eris.New("neighborhood: insufficient population")

// solveRadii finds, for each ascending k, the minimal radius whose
// cumulative population reaches k. The accumulator and position carry
// over between successive k values, so the walk never rewinds and the
// returned radii are non-decreasing.
func solveRadii(idx *distanceIndex, pop []float64, popName string, ks []int) ([]int, error) {
	radii := make([]int, len(ks))
	var acc float64
	pos := 0

	for i, k := range ks {
		for acc < float64(k) {
			if pos >= len(idx.order) {
				return nil, eris.Wrapf(ErrInsufficientPopulation,
					"column %q holds %.0f total, k=%d requested", popName, acc, k)
			}
			acc += pop[idx.order[pos]]
			pos++
		}
		radii[i] = idx.dist[idx.order[pos-1]]
	}

	return radii, nil
}
