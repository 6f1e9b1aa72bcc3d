package table

import (
	"fmt"
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
)

// ReadShapefile reads a point shapefile into a table. The point geometry
// is exposed as "North" (Y) and "East" (X) columns, followed by the DBF
// attribute fields. DBF fields whose names collide with the coordinate
// columns are skipped. Non-point shapes are rejected.
func ReadShapefile(path string) (*Table, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "table: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	// The reader swallows a missing attribute file and reports zero
	// fields, which would silently drop every value column.
	dbfPath := strings.TrimSuffix(path, ".shp") + ".dbf"
	if _, err := os.Stat(dbfPath); err != nil {
		return nil, eris.Wrapf(err, "table: shapefile attributes %s", dbfPath)
	}

	fields := reader.Fields()
	columns := []string{"North", "East"}
	fieldCols := make([]int, 0, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, "North") || strings.EqualFold(name, "East") {
			continue
		}
		columns = append(columns, name)
		fieldCols = append(fieldCols, i)
	}

	t := New(columns)
	for reader.Next() {
		n, shape := reader.Shape()
		if shape == nil {
			continue
		}
		point, ok := shape.(*shp.Point)
		if !ok {
			return nil, eris.Errorf("table: shapefile record %d is %T, want point", n, shape)
		}

		row := make([]string, 0, len(columns))
		row = append(row,
			fmt.Sprintf("%g", point.Y),
			fmt.Sprintf("%g", point.X),
		)
		for _, i := range fieldCols {
			row = append(row, strings.TrimSpace(reader.Attribute(i)))
		}
		if err := t.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}
