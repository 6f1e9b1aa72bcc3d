package neighborhood

import (
	"sort"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// distanceIndex is one point's private, disposable view of the reference
// set: a distance per location and an ascending ordering. The reference
// dataset itself is never touched.
type distanceIndex struct {
	dist  []int // truncated distance per location, original order
	order []int // location indices sorted ascending by distance
}

// buildDistanceIndex computes the Euclidean distance from the point to
// every reference location, truncated toward zero to an integer. The
// truncation groups locations tied at a radius boundary and must stay
// exact. Ordering ties break by original reference order.
func buildDistanceIndex(p Point, ref *Reference) *distanceIndex {
	n := ref.Len()
	idx := &distanceIndex{
		dist:  make([]int, n),
		order: make([]int, n),
	}

	from := geom.Coord{p.East, p.North}
	for i := 0; i < n; i++ {
		idx.dist[i] = int(xy.Distance(from, geom.Coord{ref.East[i], ref.North[i]}))
		idx.order[i] = i
	}

	sort.SliceStable(idx.order, func(a, b int) bool {
		return idx.dist[idx.order[a]] < idx.dist[idx.order[b]]
	})

	return idx
}
