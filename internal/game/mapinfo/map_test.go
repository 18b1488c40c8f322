package mapinfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/testutil"
)

func newTestMap(t *testing.T, rows ...string) *Map {
	t.Helper()
	m, err := NewFromTerrain(testutil.ParseTerrain(rows...), core.DefaultDepotClearance, Options{Logger: testutil.NopLogger()})
	require.NoError(t, err)
	return m
}

var splitGrid = []string{
	"..#..",
	"..#..",
	"#####",
	".....",
}

func TestConnectivity_Sectors(t *testing.T) {
	m := newTestMap(t, splitGrid...)

	assert.Equal(t, 3, m.SectorCount())

	tests := []struct {
		name     string
		tile     core.Coordinate
		expected int
	}{
		{"top left region", core.Coordinate{X: 1, Y: 1}, 1},
		{"bottom row scanned before right region", core.Coordinate{X: 4, Y: 3}, 2},
		{"top right region", core.Coordinate{X: 3, Y: 0}, 3},
		{"wall", core.Coordinate{X: 2, Y: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sector, err := m.SectorOf(tt.tile)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sector)
		})
	}
}

func TestConnectivity_AreConnected(t *testing.T) {
	m := newTestMap(t, splitGrid...)

	ok, err := m.AreConnected(core.Coordinate{X: 0, Y: 0}, core.Coordinate{X: 1, Y: 1})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.AreConnected(core.Coordinate{X: 0, Y: 0}, core.Coordinate{X: 4, Y: 1})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.AreConnected(core.Coordinate{X: 2, Y: 0}, core.Coordinate{X: 2, Y: 0})
	require.NoError(t, err)
	assert.False(t, ok, "unwalkable tiles are not connected to themselves")

	_, err = m.AreConnected(core.Coordinate{X: 0, Y: 0}, core.Coordinate{X: 5, Y: 0})
	assert.ErrorIs(t, err, core.ErrInvalidCoordinates)

	ok, err = m.AreConnectedPos(testutil.Pos(0, 3), testutil.Pos(4, 3))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConnectivity_MatchesReachability(t *testing.T) {
	m := newTestMap(t,
		"..#...~.",
		".##.#...",
		"...#..#.",
		"#.##.###",
		"..~...#.",
	)

	var walkable []core.Coordinate
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			c := core.Coordinate{X: x, Y: y}
			w, err := m.IsWalkable(c)
			require.NoError(t, err)
			if w {
				walkable = append(walkable, c)
			}
		}
	}

	for _, a := range walkable {
		for _, b := range walkable {
			connected, err := m.AreConnected(a, b)
			require.NoError(t, err)
			dist, err := m.GroundDistance(a, b)
			require.NoError(t, err)
			assert.Equal(t, connected, dist != Unreachable, "tiles %s and %s", a, b)
		}
	}
}

func TestConnectivity_Deterministic(t *testing.T) {
	rows := []string{
		".#..#.",
		".#..#.",
		"...##.",
		"##....",
	}
	a := newTestMap(t, rows...)
	b := newTestMap(t, rows...)

	require.Equal(t, a.SectorCount(), b.SectorCount())
	for i := range a.Board().T {
		assert.Equal(t, a.Board().T[i].Sector, b.Board().T[i].Sector)
	}

	a.RecomputeConnectivity()
	for i := range a.Board().T {
		assert.Equal(t, a.Board().T[i].Sector, b.Board().T[i].Sector)
	}
}

func TestGroundDistance_OpenGrid(t *testing.T) {
	m := newTestMap(t, "...", "...", "...")

	tests := []struct {
		name     string
		from, to core.Coordinate
		expected int
	}{
		{"same tile", core.Coordinate{X: 1, Y: 1}, core.Coordinate{X: 1, Y: 1}, 0},
		{"corners sharing an edge", core.Coordinate{X: 0, Y: 0}, core.Coordinate{X: 2, Y: 0}, 2},
		{"opposite corners", core.Coordinate{X: 0, Y: 0}, core.Coordinate{X: 2, Y: 2}, 4},
		{"centre to corner", core.Coordinate{X: 1, Y: 1}, core.Coordinate{X: 0, Y: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := m.GroundDistance(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestGroundDistance_Detour(t *testing.T) {
	m := newTestMap(t,
		"...",
		"##.",
		"...",
	)
	d, err := m.GroundDistance(core.Coordinate{X: 0, Y: 0}, core.Coordinate{X: 0, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, d)

	d, err = m.GroundDistancePos(testutil.Pos(0, 0), testutil.Pos(0, 2))
	require.NoError(t, err)
	assert.Equal(t, 6, d)
}

func TestGroundDistance_Unreachable(t *testing.T) {
	m := newTestMap(t, splitGrid...)

	d, err := m.GroundDistance(core.Coordinate{X: 0, Y: 0}, core.Coordinate{X: 4, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, Unreachable, d)

	d, err = m.GroundDistance(core.Coordinate{X: 2, Y: 2}, core.Coordinate{X: 0, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, Unreachable, d, "wall tile has no entry")
}

func TestGroundDistance_UnwalkableTarget(t *testing.T) {
	m := newTestMap(t, ".#.")

	target := core.Coordinate{X: 1, Y: 0}
	dm, err := m.DistanceMap(target)
	require.NoError(t, err)
	assert.Equal(t, 0, dm.Distance(target))
	assert.Equal(t, 1, dm.Distance(core.Coordinate{X: 0, Y: 0}))
	assert.Equal(t, 1, dm.Distance(core.Coordinate{X: 2, Y: 0}))
	assert.Equal(t, 3, dm.Len())
}

func TestGroundDistance_InvalidCoordinates(t *testing.T) {
	m := newTestMap(t, "...")

	_, err := m.DistanceMap(core.Coordinate{X: -1, Y: 0})
	assert.ErrorIs(t, err, core.ErrInvalidCoordinates)

	_, err = m.GroundDistance(core.Coordinate{X: 3, Y: 0}, core.Coordinate{X: 0, Y: 0})
	assert.ErrorIs(t, err, core.ErrInvalidCoordinates)

	_, err = m.GroundDistance(core.Coordinate{X: 0, Y: 0}, core.Coordinate{X: 0, Y: 1})
	assert.ErrorIs(t, err, core.ErrInvalidCoordinates)

	_, err = m.SectorOf(core.Coordinate{X: 0, Y: -1})
	assert.ErrorIs(t, err, core.ErrInvalidCoordinates)

	_, err = m.ClosestTilesTo(core.Coordinate{X: 9, Y: 9})
	assert.ErrorIs(t, err, core.ErrInvalidCoordinates)
}

func TestDistanceCache_FullFlush(t *testing.T) {
	m := newTestMap(t, strings.Repeat(".", 60))

	for x := 0; x < DefaultCacheCapacity; x++ {
		_, err := m.DistanceMap(core.Coordinate{X: x, Y: 0})
		require.NoError(t, err)
	}
	assert.Equal(t, DefaultCacheCapacity, m.CacheLen())

	_, err := m.DistanceMap(core.Coordinate{X: DefaultCacheCapacity, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, m.CacheLen(), "the 51st target flushes everything else")

	stats := m.CacheStats()
	assert.Equal(t, DefaultCacheCapacity+1, stats.Misses)
	assert.Equal(t, 0, stats.Hits)
	assert.Equal(t, 1, stats.Flushes)
	assert.Equal(t, 1, stats.Size)

	dm, err := m.DistanceMap(core.Coordinate{X: DefaultCacheCapacity, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, core.Coordinate{X: DefaultCacheCapacity, Y: 0}, dm.Target())
	assert.Equal(t, 1, m.CacheStats().Hits)

	_, err = m.DistanceMap(core.Coordinate{X: 0, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, 2, m.CacheLen())
}

func TestDistanceCache_CustomCapacity(t *testing.T) {
	m, err := NewFromTerrain(testutil.OpenTerrain(5, 1), 0, Options{CacheCapacity: 2, Logger: testutil.NopLogger()})
	require.NoError(t, err)

	for x := 0; x < 3; x++ {
		_, err := m.GroundDistance(core.Coordinate{X: 4, Y: 0}, core.Coordinate{X: x, Y: 0})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, m.CacheLen())
	assert.Equal(t, 1, m.CacheStats().Flushes)
}

func TestDistanceCache_ClearedOnRecompute(t *testing.T) {
	m := newTestMap(t, "...")
	_, err := m.DistanceMap(core.Coordinate{X: 0, Y: 0})
	require.NoError(t, err)
	require.Equal(t, 1, m.CacheLen())

	m.RecomputeConnectivity()
	assert.Equal(t, 0, m.CacheLen())
}

func TestClosestTilesTo_Order(t *testing.T) {
	m := newTestMap(t, "...", "...", "...")
	center := core.Coordinate{X: 1, Y: 1}

	tiles, err := m.ClosestTilesTo(center)
	require.NoError(t, err)
	require.Len(t, tiles, 9)

	assert.Equal(t, center, tiles[0])
	assert.Equal(t, []core.Coordinate{
		{X: 2, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 2}, {X: 1, Y: 0},
	}, tiles[1:5])

	prev := 0
	for _, c := range tiles {
		d, err := m.GroundDistance(c, center)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
}

func TestUpdate_StampsVisibleTiles(t *testing.T) {
	m := newTestMap(t, "...")

	m.Update(10, func(core.Coordinate) bool { return true })
	m.Update(20, func(c core.Coordinate) bool { return c.X != 1 })
	m.Update(30, nil)

	for x, expected := range []int{20, 10, 20} {
		seen, err := m.Board().LastSeen(core.Coordinate{X: x, Y: 0})
		require.NoError(t, err)
		assert.Equal(t, expected, seen)
	}
}

func TestLeastRecentlySeen(t *testing.T) {
	t.Run("picks the stalest tile", func(t *testing.T) {
		m := newTestMap(t, "...")
		m.Update(10, func(core.Coordinate) bool { return true })
		m.Update(20, func(c core.Coordinate) bool { return c.X != 1 })

		pos, ok, err := m.LeastRecentlySeen(testutil.Pos(0, 0), testutil.Pos(2, 0))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, testutil.Pos(1, 0), pos)
	})

	t.Run("ties go to the closest tile", func(t *testing.T) {
		m := newTestMap(t, "...")
		pos, ok, err := m.LeastRecentlySeen(testutil.Pos(2, 0), testutil.Pos(0, 0))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, testutil.Pos(2, 0), pos)
	})

	t.Run("anchor in another sector", func(t *testing.T) {
		m := newTestMap(t, "..#..")
		_, ok, err := m.LeastRecentlySeen(testutil.Pos(0, 0), testutil.Pos(4, 0))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("off the map", func(t *testing.T) {
		m := newTestMap(t, "...")
		_, _, err := m.LeastRecentlySeen(core.Position{X: -40, Y: 0}, testutil.Pos(0, 0))
		assert.ErrorIs(t, err, core.ErrInvalidCoordinates)
	})
}

func TestMap_Buildability(t *testing.T) {
	m := newTestMap(t,
		"........",
		"...$....",
		"........",
		"........",
		"........",
		"......~.",
	)

	ok, err := m.IsBuildable(core.Coordinate{X: 3, Y: 1})
	require.NoError(t, err)
	assert.False(t, ok, "resource tile")

	ok, err = m.IsDepotBuildable(core.Coordinate{X: 6, Y: 4})
	require.NoError(t, err)
	assert.False(t, ok, "within three tiles of the resource")

	ok, err = m.IsDepotBuildable(core.Coordinate{X: 7, Y: 4})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.IsBuildableForFootprint(core.Coordinate{X: 6, Y: 4}, 2, 2, false)
	require.NoError(t, err)
	assert.False(t, ok, "covers an unbuildable tile")

	ok, err = m.IsBuildableForFootprint(core.Coordinate{X: 0, Y: 4}, 2, 2, false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.IsBuildableForFootprint(core.Coordinate{X: 0, Y: 4}, 2, 2, true)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, m.ContainsPosition(core.Position{X: 255, Y: 191}))
	assert.False(t, m.ContainsPosition(core.Position{X: 256, Y: 0}))
}

func TestNewFromTerrain_Invalid(t *testing.T) {
	_, err := NewFromTerrain(core.TerrainData{Width: 2, Height: 2}, 3, Options{})
	assert.ErrorIs(t, err, core.ErrInvalidTerrain)
}
