package mapinfo

import "github.com/mitchelldurbincs/tactician/internal/game/core"

// computeSectors flood fills every walkable tile of the board and writes the
// resulting sector ids into the tiles. It scans x-major (x outer, y inner) and
// expands neighbors in core.NeighborOffsets order so ids are reproducible for
// identical boards. Returns the number of sectors found.
func computeSectors(b *core.Board) int {
	b.ResetSectors()

	fringe := make([]core.Coordinate, 0, b.W*b.H)
	sector := 0

	for x := 0; x < b.W; x++ {
		for y := 0; y < b.H; y++ {
			start := &b.T[b.Idx(x, y)]
			if start.Sector != 0 || !start.Walkable {
				continue
			}

			sector++
			fringe = fringe[:0]
			fringe = append(fringe, core.Coordinate{X: x, Y: y})
			start.Sector = sector

			for i := 0; i < len(fringe); i++ {
				for _, next := range fringe[i].Neighbors() {
					if !b.Contains(next) {
						continue
					}
					t := &b.T[next.ToIndex(b.W)]
					if t.Walkable && t.Sector == 0 {
						t.Sector = sector
						fringe = append(fringe, next)
					}
				}
			}
		}
	}
	return sector
}
