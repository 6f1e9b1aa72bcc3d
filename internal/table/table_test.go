package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableColumns(t *testing.T) {
	tbl := New([]string{"North", "East", "Pop"})

	assert.Equal(t, []string{"North", "East", "Pop"}, tbl.Columns())
	assert.Equal(t, 0, tbl.ColumnIndex("North"))
	assert.Equal(t, 2, tbl.ColumnIndex("pop"))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
	assert.True(t, tbl.HasColumn(" East "))
	assert.False(t, tbl.HasColumn("west"))
}

func TestAppendRow(t *testing.T) {
	tbl := New([]string{"a", "b"})

	require.NoError(t, tbl.AppendRow([]string{"1", "2"}))
	assert.Equal(t, 1, tbl.NumRows())
	assert.Equal(t, "2", tbl.Cell(0, "b"))

	err := tbl.AppendRow([]string{"1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 cells, want 2")
}

func TestFloatColumn(t *testing.T) {
	tbl := New([]string{"v"})
	require.NoError(t, tbl.AppendRow([]string{" 1.5"}))
	require.NoError(t, tbl.AppendRow([]string{"-2"}))

	vals, err := tbl.FloatColumn("v")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2}, vals)

	_, err = tbl.FloatColumn("missing")
	require.Error(t, err)
}

func TestFloatColumnBadCell(t *testing.T) {
	tbl := New([]string{"v"})
	require.NoError(t, tbl.AppendRow([]string{"abc"}))

	_, err := tbl.FloatColumn("v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "v" row 0`)
}

func TestAddColumn(t *testing.T) {
	tbl := New([]string{"a"})
	require.NoError(t, tbl.AppendRow([]string{"1"}))
	require.NoError(t, tbl.AppendRow([]string{"2"}))

	require.NoError(t, tbl.AddColumn("b", []string{"x", "y"}))
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
	assert.Equal(t, "y", tbl.Cell(1, "b"))

	err := tbl.AddColumn("b", []string{"p", "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	err = tbl.AddColumn("c", []string{"only one"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 values, want 2")
}

func TestParseCSV(t *testing.T) {
	in := "North,East,Pop\n1,2,100\n3,4,200\n"
	tbl, err := parseCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "200", tbl.Cell(1, "Pop"))

	pops, err := tbl.FloatColumn("Pop")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200}, pops)
}

func TestCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out.csv"

	tbl := New([]string{"a", "b"})
	require.NoError(t, tbl.AppendRow([]string{"1", "hello, world"}))
	require.NoError(t, WriteCSV(tbl, path))

	got, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Columns())
	assert.Equal(t, "hello, world", got.Cell(0, "b"))
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(t.TempDir() + "/nope.csv")
	require.Error(t, err)
}
