package neighborhood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustReference(t *testing.T, north, east []float64, cols map[string][]float64) *Reference {
	t.Helper()
	ref, err := NewReference(north, east)
	require.NoError(t, err)
	for name, vals := range cols {
		require.NoError(t, ref.AddColumn(name, vals))
	}
	return ref
}

func TestBuildDistanceIndexTruncation(t *testing.T) {
	// 3-4-5 triangle gives exactly 5; 2.9 straight north truncates to 2.
	ref := mustReference(t,
		[]float64{3, 2.9, 0},
		[]float64{4, 0, 0},
		nil,
	)

	idx := buildDistanceIndex(Point{North: 0, East: 0}, ref)

	assert.Equal(t, []int{5, 2, 0}, idx.dist)
	assert.Equal(t, []int{2, 1, 0}, idx.order)
}

func TestBuildDistanceIndexStableTies(t *testing.T) {
	// All four locations truncate to distance 1; order must preserve
	// original reference order.
	ref := mustReference(t,
		[]float64{1, 1.2, 1.4, 1.9},
		[]float64{0, 0, 0, 0},
		nil,
	)

	idx := buildDistanceIndex(Point{North: 0, East: 0}, ref)

	assert.Equal(t, []int{1, 1, 1, 1}, idx.dist)
	assert.Equal(t, []int{0, 1, 2, 3}, idx.order)
}

func TestBuildDistanceIndexDoesNotMutateReference(t *testing.T) {
	north := []float64{1, 2}
	east := []float64{3, 4}
	ref := mustReference(t, north, east, nil)

	_ = buildDistanceIndex(Point{North: 10, East: 10}, ref)

	assert.Equal(t, []float64{1, 2}, ref.North)
	assert.Equal(t, []float64{3, 4}, ref.East)
}
