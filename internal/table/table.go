// Package table provides an ordered, column-name-addressed in-memory table
// with readers for CSV, XLSX, and point shapefiles.
package table

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Table holds rows of string cells addressed by column name.
// Column lookup is case-insensitive; column order is preserved.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates an empty table with the given columns.
func New(columns []string) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.index[normalize(c)] = i
	}
	return t
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.rows) }

// ColumnIndex returns the index of a named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	idx, ok := t.index[normalize(name)]
	if !ok {
		return -1
	}
	return idx
}

// HasColumn reports whether a named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// AppendRow adds one data row. The row must match the column count.
func (t *Table) AppendRow(row []string) error {
	if len(row) != len(t.columns) {
		return eris.Errorf("table: row has %d cells, want %d", len(row), len(t.columns))
	}
	t.rows = append(t.rows, row)
	return nil
}

// Row returns one data row by index.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// Cell returns the cell at (row, named column), empty string if the
// column is absent.
func (t *Table) Cell(row int, name string) string {
	idx := t.ColumnIndex(name)
	if idx < 0 || idx >= len(t.rows[row]) {
		return ""
	}
	return t.rows[row][idx]
}

// FloatColumn parses a whole named column as float64.
func (t *Table) FloatColumn(name string) ([]float64, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, eris.Errorf("table: column %q not found", name)
	}
	vals := make([]float64, len(t.rows))
	for i, row := range t.rows {
		f, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "table: column %q row %d", name, i)
		}
		vals[i] = f
	}
	return vals, nil
}

// AddColumn appends a new column with one value per existing row.
func (t *Table) AddColumn(name string, values []string) error {
	if t.HasColumn(name) {
		return eris.Errorf("table: column %q already exists", name)
	}
	if len(values) != len(t.rows) {
		return eris.Errorf("table: column %q has %d values, want %d", name, len(values), len(t.rows))
	}
	t.index[normalize(name)] = len(t.columns)
	t.columns = append(t.columns, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], values[i])
	}
	return nil
}
