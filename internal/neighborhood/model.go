// Package neighborhood computes the local geographic context of query
// points against a reference dataset of populated locations: for each
// point and each population threshold k it solves the smallest radius
// whose cumulative population reaches k, then aggregates group
// attributes over the locations inside that radius.
package neighborhood

import (
	"sort"

	"github.com/rotisserie/eris"
)

// ErrInvalidConfig marks configuration errors detected before any
// per-point work begins.
var ErrInvalidConfig = eris.New("neighborhood: invalid configuration")

// Point is one query location. ID is a caller-supplied label carried
// through to error messages.
type Point struct {
	ID    string
	North float64
	East  float64
}

// Reference is the immutable reference dataset: coordinates plus named
// population and group value columns. It is loaded once and shared,
// read-only, by all concurrent point computations.
type Reference struct {
	North []float64
	East  []float64

	cols map[string][]float64
}

// NewReference creates a reference dataset from coordinate slices.
func NewReference(north, east []float64) (*Reference, error) {
	if len(north) != len(east) {
		return nil, eris.Errorf("neighborhood: %d north values but %d east values", len(north), len(east))
	}
	return &Reference{
		North: north,
		East:  east,
		cols:  make(map[string][]float64),
	}, nil
}

// Len returns the number of reference locations.
func (r *Reference) Len() int { return len(r.North) }

// AddColumn attaches a named value column (population or group).
func (r *Reference) AddColumn(name string, vals []float64) error {
	if len(vals) != r.Len() {
		return eris.Errorf("neighborhood: column %q has %d values, want %d", name, len(vals), r.Len())
	}
	if _, ok := r.cols[name]; ok {
		return eris.Errorf("neighborhood: column %q already added", name)
	}
	r.cols[name] = vals
	return nil
}

// Column returns a named value column.
func (r *Reference) Column(name string) ([]float64, bool) {
	v, ok := r.cols[name]
	return v, ok
}

// Spec configures one context computation: which group columns to
// aggregate, which population column(s) bind them, per-group proportion
// flags, and the shared k thresholds.
//
// Populations is either a single shared column for all groups, or one
// column per group, positionally aligned with Groups.
type Spec struct {
	Groups      []string `json:"groups"`
	Populations []string `json:"populations"`
	Proportions []bool   `json:"proportions"`
	KValues     []int    `json:"k_values"`
}

// measure is one resolved (group, population, proportion) triple with
// its value columns bound once at validation time.
type measure struct {
	group      string
	popName    string
	proportion bool
	groupVals  []float64
	popVals    []float64
}

// plan is a validated Spec bound to a reference dataset.
type plan struct {
	measures []measure
	ks       []int // sorted ascending, de-duplicated
	single   bool  // one shared population column
}

// resolve validates the spec against the reference dataset and binds
// every column accessor. All configuration errors surface here, before
// any per-point work.
func (s *Spec) resolve(ref *Reference) (*plan, error) {
	if len(s.Groups) == 0 {
		return nil, eris.Wrap(ErrInvalidConfig, "no group columns")
	}
	if len(s.Populations) == 0 {
		return nil, eris.Wrap(ErrInvalidConfig, "no population column")
	}
	single := len(s.Populations) == 1
	if !single && len(s.Populations) != len(s.Groups) {
		return nil, eris.Wrapf(ErrInvalidConfig, "%d population columns for %d groups", len(s.Populations), len(s.Groups))
	}
	if len(s.Proportions) != len(s.Groups) {
		return nil, eris.Wrapf(ErrInvalidConfig, "%d proportion flags for %d groups", len(s.Proportions), len(s.Groups))
	}
	if len(s.KValues) == 0 {
		return nil, eris.Wrap(ErrInvalidConfig, "no k thresholds")
	}
	for _, k := range s.KValues {
		if k <= 0 {
			return nil, eris.Wrapf(ErrInvalidConfig, "k threshold %d is not positive", k)
		}
	}

	p := &plan{
		ks:     sortedUniqueInts(s.KValues),
		single: single,
	}

	for i, g := range s.Groups {
		popName := s.Populations[0]
		if !single {
			popName = s.Populations[i]
		}
		groupVals, ok := ref.Column(g)
		if !ok {
			return nil, eris.Wrapf(ErrInvalidConfig, "group column %q not in reference dataset", g)
		}
		popVals, ok := ref.Column(popName)
		if !ok {
			return nil, eris.Wrapf(ErrInvalidConfig, "population column %q not in reference dataset", popName)
		}
		p.measures = append(p.measures, measure{
			group:      g,
			popName:    popName,
			proportion: s.Proportions[i],
			groupVals:  groupVals,
			popVals:    popVals,
		})
	}

	return p, nil
}

// ValueColumns returns the union of population and group column names,
// in first-seen order.
func (s *Spec) ValueColumns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, c := range append(append([]string(nil), s.Populations...), s.Groups...) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	return cols
}

func sortedUniqueInts(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[i-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
