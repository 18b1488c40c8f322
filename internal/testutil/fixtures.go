package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
)

// ParseTerrain builds terrain from ASCII rows, one string per row (y), one rune per column (x).
//
//	.  walkable, buildable
//	~  walkable, not buildable
//	#  blocked
//	$  1x1 resource deposit (blocked)
func ParseTerrain(rows ...string) core.TerrainData {
	td := core.TerrainData{Height: len(rows)}
	if len(rows) > 0 {
		td.Width = len(rows[0])
	}
	n := td.Width * td.Height
	td.Walkable = make([]bool, n)
	td.Buildable = make([]bool, n)

	for y, row := range rows {
		for x, r := range row {
			if x >= td.Width {
				break
			}
			i := y*td.Width + x
			switch r {
			case '.':
				td.Walkable[i] = true
				td.Buildable[i] = true
			case '~':
				td.Walkable[i] = true
			case '$':
				td.Resources = append(td.Resources, core.ResourceDeposit{
					Origin: core.Coordinate{X: x, Y: y},
					Width:  1,
					Height: 1,
				})
			}
		}
	}
	return td
}

// OpenTerrain returns a fully walkable and buildable w x h terrain
func OpenTerrain(w, h int) core.TerrainData {
	row := strings.Repeat(".", w)
	rows := make([]string, h)
	for i := range rows {
		rows[i] = row
	}
	return ParseTerrain(rows...)
}

// MustBoard builds a board from ASCII rows with the default depot clearance
func MustBoard(t *testing.T, rows ...string) *core.Board {
	t.Helper()
	b, err := core.NewBoard(ParseTerrain(rows...), core.DefaultDepotClearance)
	require.NoError(t, err)
	return b
}

// Pos returns the world position at the centre of tile (x, y)
func Pos(x, y int) core.Position {
	return core.Coordinate{X: x, Y: y}.Center()
}
