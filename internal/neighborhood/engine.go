package neighborhood

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine runs the per-point context pipeline over a validated spec.
// Points are independent: each task reads only the immutable reference
// dataset and writes only its own row, so they run concurrently.
type Engine struct {
	ref         *Reference
	plan        *plan
	concurrency int
}

// NewEngine validates the spec against the reference dataset and
// returns a ready engine. Concurrency below 1 is treated as 1.
func NewEngine(ref *Reference, spec *Spec, concurrency int) (*Engine, error) {
	p, err := spec.resolve(ref)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{ref: ref, plan: p, concurrency: concurrency}, nil
}

// KValues returns the sorted, de-duplicated thresholds the engine
// evaluates.
func (e *Engine) KValues() []int {
	return append([]int(nil), e.plan.ks...)
}

// Run computes one context row per point. Output row order matches
// input point order regardless of scheduling. Any failure aborts the
// whole run; no partial result is returned.
func (e *Engine) Run(ctx context.Context, points []Point) (*Builder, error) {
	b := newBuilder(e.plan, len(points))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, pt := range points {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, err := e.computeRow(pt)
			if err != nil {
				return eris.Wrapf(err, "neighborhood: point %s", pt.ID)
			}
			b.setRow(i, row)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.finish()
	zap.L().Debug("neighborhood: run complete",
		zap.Int("points", len(points)),
		zap.Int("locations", e.ref.Len()),
		zap.Ints("k_values", e.plan.ks),
	)
	return b, nil
}

// computeRow runs the full pipeline for one point: distance index,
// one radius solve per distinct population column, then one aggregation
// per (measure, k).
func (e *Engine) computeRow(p Point) (Row, error) {
	idx := buildDistanceIndex(p, e.ref)

	radiiByPop := make(map[string][]int)
	for _, m := range e.plan.measures {
		if _, ok := radiiByPop[m.popName]; ok {
			continue
		}
		radii, err := solveRadii(idx, m.popVals, m.popName, e.plan.ks)
		if err != nil {
			return Row{}, err
		}
		radiiByPop[m.popName] = radii
	}

	row := Row{values: make(map[string]float64)}
	for _, m := range e.plan.measures {
		radii := radiiByPop[m.popName]
		for i, k := range e.plan.ks {
			radius := radii[i]
			st := aggregate(idx.dist, radius, m.groupVals, m.popVals, m.proportion)

			row.values[e.plan.radiusCol(m, k)] = float64(radius)
			row.values[e.plan.totalCol(m, k)] = st.Total
			if m.proportion {
				row.values[e.plan.groupCol(m, k)] = st.Sum
			} else {
				row.values[e.plan.meanCol(m, k)] = st.Mean
				row.values[e.plan.stdCol(m, k)] = st.Std
			}
		}
	}
	return row, nil
}
