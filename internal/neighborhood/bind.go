package neighborhood

import (
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geocontext/internal/table"
)

// PointsFromTable reads query points from a table using the given
// coordinate column names. Point IDs are row positions.
func PointsFromTable(t *table.Table, northCol, eastCol string) ([]Point, error) {
	north, err := t.FloatColumn(northCol)
	if err != nil {
		return nil, eris.Wrap(err, "neighborhood: points north column")
	}
	east, err := t.FloatColumn(eastCol)
	if err != nil {
		return nil, eris.Wrap(err, "neighborhood: points east column")
	}

	points := make([]Point, len(north))
	for i := range north {
		points[i] = Point{ID: strconv.Itoa(i), North: north[i], East: east[i]}
	}
	return points, nil
}

// ReferenceFromTable reads the reference dataset from a table: the
// coordinate columns plus every named value column.
func ReferenceFromTable(t *table.Table, northCol, eastCol string, valueCols []string) (*Reference, error) {
	north, err := t.FloatColumn(northCol)
	if err != nil {
		return nil, eris.Wrap(err, "neighborhood: locations north column")
	}
	east, err := t.FloatColumn(eastCol)
	if err != nil {
		return nil, eris.Wrap(err, "neighborhood: locations east column")
	}

	ref, err := NewReference(north, east)
	if err != nil {
		return nil, err
	}
	for _, col := range valueCols {
		vals, err := t.FloatColumn(col)
		if err != nil {
			return nil, eris.Wrap(err, "neighborhood: reference value column")
		}
		if err := ref.AddColumn(col, vals); err != nil {
			return nil, err
		}
	}
	return ref, nil
}
