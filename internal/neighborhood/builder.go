package neighborhood

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sells-group/geocontext/internal/table"
)

// Row holds one point's computed context values keyed by output column.
type Row struct {
	values map[string]float64
}

// Builder accumulates one Row per point, then derives the proportion
// columns in a finishing pass once every row exists.
type Builder struct {
	plan     *plan
	rows     []Row
	finished bool
}

func newBuilder(p *plan, numPoints int) *Builder {
	return &Builder{
		plan: p,
		rows: make([]Row, numPoints),
	}
}

func (b *Builder) setRow(i int, r Row) {
	b.rows[i] = r
}

// finish derives mean_<group>_k<k> = group sum / total population for
// every proportion-mode group. This is a distinct second pass over the
// whole materialized row set: it re-derives the headline proportion from
// the already-computed sum and total columns. A zero total yields NaN.
func (b *Builder) finish() {
	for _, r := range b.rows {
		for _, m := range b.plan.measures {
			if !m.proportion {
				continue
			}
			for _, k := range b.plan.ks {
				sum := r.values[b.plan.groupCol(m, k)]
				total := r.values[b.plan.totalCol(m, k)]
				mean := math.NaN()
				if total != 0 {
					mean = sum / total
				}
				r.values[b.plan.meanCol(m, k)] = mean
			}
		}
	}
	b.finished = true
}

// Columns returns the context column names in a stable order.
func (b *Builder) Columns() []string {
	var cols []string
	seen := make(map[string]bool)
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}

	for _, k := range b.plan.ks {
		for _, m := range b.plan.measures {
			add(b.plan.radiusCol(m, k))
			add(b.plan.totalCol(m, k))
			if m.proportion {
				add(b.plan.groupCol(m, k))
			} else {
				add(b.plan.meanCol(m, k))
				add(b.plan.stdCol(m, k))
			}
		}
	}
	if b.finished {
		for _, k := range b.plan.ks {
			for _, m := range b.plan.measures {
				if m.proportion {
					add(b.plan.meanCol(m, k))
				}
			}
		}
	}
	return cols
}

// Value returns one computed value by row index and column name.
func (b *Builder) Value(row int, col string) (float64, bool) {
	v, ok := b.rows[row].values[col]
	return v, ok
}

// NumRows returns the number of accumulated rows.
func (b *Builder) NumRows() int { return len(b.rows) }

// AppendTo adds every context column to the given points table, one
// value per point, in row order.
func (b *Builder) AppendTo(t *table.Table) error {
	for _, col := range b.Columns() {
		values := make([]string, len(b.rows))
		for i, r := range b.rows {
			values[i] = formatValue(r.values[col])
		}
		if err := t.AddColumn(col, values); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Column naming per output contract: radius_k<k>/total_k<k> when one
// population column is shared, radius_<group>_k<k>/total_<group>_k<k>
// when each group carries its own.

func (p *plan) radiusCol(m measure, k int) string {
	if p.single {
		return fmt.Sprintf("radius_k%d", k)
	}
	return fmt.Sprintf("radius_%s_k%d", m.group, k)
}

func (p *plan) totalCol(m measure, k int) string {
	if p.single {
		return fmt.Sprintf("total_k%d", k)
	}
	return fmt.Sprintf("total_%s_k%d", m.group, k)
}

func (p *plan) groupCol(m measure, k int) string {
	return fmt.Sprintf("group_%s_k%d", m.group, k)
}

func (p *plan) meanCol(m measure, k int) string {
	return fmt.Sprintf("mean_%s_k%d", m.group, k)
}

func (p *plan) stdCol(m measure, k int) string {
	return fmt.Sprintf("std_%s_k%d", m.group, k)
}
