package mapinfo

import "github.com/mitchelldurbincs/tactician/internal/game/core"

// Unreachable is the distance reported for tiles with no walkable path to the target
const Unreachable = -1

// DistanceMap holds 4-directional hop counts from every reachable tile to a
// single target tile.
type DistanceMap struct {
	target core.Coordinate
	width  int
	height int
	dist   []int
	sorted []core.Coordinate
}

// newDistanceMap runs a single-source BFS from target over walkable tiles.
// The target always has distance 0, even when it is not walkable itself.
func newDistanceMap(b *core.Board, target core.Coordinate) *DistanceMap {
	dm := &DistanceMap{
		target: target,
		width:  b.W,
		height: b.H,
		dist:   make([]int, b.W*b.H),
	}
	for i := range dm.dist {
		dm.dist[i] = Unreachable
	}

	dm.dist[target.ToIndex(b.W)] = 0
	dm.sorted = append(dm.sorted, target)

	// BFS visits tiles in non-decreasing distance, so the fringe doubles as
	// the sorted tile list.
	for i := 0; i < len(dm.sorted); i++ {
		cur := dm.sorted[i]
		d := dm.dist[cur.ToIndex(b.W)]
		for _, next := range cur.Neighbors() {
			if !b.Contains(next) {
				continue
			}
			idx := next.ToIndex(b.W)
			if dm.dist[idx] != Unreachable || !b.T[idx].Walkable {
				continue
			}
			dm.dist[idx] = d + 1
			dm.sorted = append(dm.sorted, next)
		}
	}
	return dm
}

// Target returns the tile this map measures distance to
func (dm *DistanceMap) Target() core.Coordinate { return dm.target }

// Distance returns the hop count from c to the target, or Unreachable
func (dm *DistanceMap) Distance(c core.Coordinate) int {
	if !c.IsValid(dm.width, dm.height) {
		return Unreachable
	}
	return dm.dist[c.ToIndex(dm.width)]
}

// Reachable reports whether c has an entry in the map
func (dm *DistanceMap) Reachable(c core.Coordinate) bool {
	return dm.Distance(c) != Unreachable
}

// SortedTiles returns every reachable tile in ascending distance order.
// The slice is shared; callers must not modify it.
func (dm *DistanceMap) SortedTiles() []core.Coordinate {
	return dm.sorted
}

// Len returns the number of reachable tiles including the target
func (dm *DistanceMap) Len() int {
	return len(dm.sorted)
}
