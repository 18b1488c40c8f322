package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/mapinfo"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
	"github.com/mitchelldurbincs/tactician/internal/testutil"
)

func newTestMap(t *testing.T, terrain core.TerrainData) *mapinfo.Map {
	t.Helper()
	m, err := mapinfo.NewFromTerrain(terrain, core.DefaultDepotClearance, mapinfo.Options{Logger: testutil.NopLogger()})
	require.NoError(t, err)
	return m
}

func newTestWorld(t *testing.T, terrain core.TerrainData, opts WorldOptions) *World {
	t.Helper()
	m := newTestMap(t, terrain)
	enemy := testutil.Pos(terrain.Width-1, terrain.Height-1)
	return NewWorld(m, units.DefaultCatalog(), testutil.Pos(0, 0), enemy, opts, testutil.NopLogger())
}

func TestWorld_MovesInStraightLine(t *testing.T) {
	w := newTestWorld(t, testutil.OpenTerrain(10, 3), DefaultWorldOptions())
	id := w.SpawnFriendly("Terran_Marine", testutil.Pos(0, 1))
	target := testutil.Pos(5, 1)
	w.Command(id, target)

	for i := 0; i < 19; i++ {
		w.Advance()
	}
	u, ok := w.Unit(id)
	require.True(t, ok)
	assert.NotEqual(t, target, u.Position)

	w.Advance()
	u, _ = w.Unit(id)
	assert.Equal(t, target, u.Position)
	assert.Equal(t, 20, w.Tick())

	got, ok := w.Target(id)
	require.True(t, ok)
	assert.Equal(t, target, got)
}

func TestWorld_GroundUnitsWalkAroundWalls(t *testing.T) {
	terrain := testutil.ParseTerrain(
		".....",
		".###.",
		".....",
	)
	w := newTestWorld(t, terrain, DefaultWorldOptions())
	m := w.terrain
	id := w.SpawnFriendly("Terran_Marine", testutil.Pos(0, 1))
	target := testutil.Pos(4, 1)
	w.Command(id, target)

	arrived := false
	for i := 0; i < 60 && !arrived; i++ {
		w.Advance()
		u, ok := w.Unit(id)
		require.True(t, ok)
		walkable, err := m.IsWalkable(u.Position.Tile())
		require.NoError(t, err)
		require.True(t, walkable, "tick %d: unit on blocked tile %s", w.Tick(), u.Position.Tile())
		arrived = u.Position == target
	}
	assert.True(t, arrived)
}

func TestWorld_FlyersIgnoreWalls(t *testing.T) {
	terrain := testutil.ParseTerrain(
		".....",
		".###.",
		".....",
	)
	w := newTestWorld(t, terrain, DefaultWorldOptions())
	id := w.SpawnFriendly("Terran_Wraith", testutil.Pos(0, 1))
	w.Command(id, testutil.Pos(4, 1))

	w.Advance()
	w.Advance()
	w.Advance()
	u, _ := w.Unit(id)
	assert.Equal(t, core.Position{X: 40, Y: 48}, u.Position)
}

func TestWorld_Combat(t *testing.T) {
	w := newTestWorld(t, testutil.OpenTerrain(10, 6), DefaultWorldOptions())
	marine := w.SpawnFriendly("Terran_Marine", testutil.Pos(1, 1))
	ling := w.SpawnEnemy("Zerg_Zergling", testutil.Pos(3, 1))
	victim := w.SpawnFriendly("Zerg_Zergling", testutil.Pos(1, 4))
	w.SpawnEnemy("Terran_Marine", testutil.Pos(3, 4))

	w.Advance()
	enemies := w.Enemies()
	require.Len(t, enemies, 2, "both enemies are in sight")
	assert.Equal(t, ling, enemies[0].ID)
	assert.Equal(t, 39, enemies[0].HitPoints)

	for i := 0; i < 39; i++ {
		w.Advance()
	}

	u, ok := w.Unit(marine)
	require.True(t, ok)
	assert.Equal(t, 40, u.HitPoints, "zergling cannot reach the marine")

	_, ok = w.Unit(victim)
	assert.False(t, ok, "dead units are gone")
	for _, e := range w.Enemies() {
		assert.NotEqual(t, ling, e.ID)
	}
	assert.Len(t, w.Hostile(), 1)
	assert.Len(t, w.Friendly(), 1)
}

func TestWorld_OwnershipChecks(t *testing.T) {
	w := newTestWorld(t, testutil.OpenTerrain(6, 6), DefaultWorldOptions())
	enemy := w.SpawnEnemy("Zerg_Zergling", testutil.Pos(5, 5))

	_, ok := w.Unit(enemy)
	assert.False(t, ok, "enemy units are not ours")
	_, ok = w.Unit(99)
	assert.False(t, ok)

	w.Command(enemy, testutil.Pos(0, 0))
	_, ok = w.Target(enemy)
	assert.False(t, ok, "enemy units cannot be commanded")
}

func TestWorld_VisibilityAndEnemyDiscovery(t *testing.T) {
	opts := DefaultWorldOptions()
	opts.SightRange = 2
	w := newTestWorld(t, testutil.OpenTerrain(20, 5), opts)
	scout := w.SpawnFriendly("Terran_Vulture", testutil.Pos(1, 1))

	assert.False(t, w.Visible(core.Coordinate{X: 1, Y: 1}), "nothing is seen before the first tick")

	w.Advance()
	assert.True(t, w.Visible(core.Coordinate{X: 3, Y: 3}))
	assert.True(t, w.Visible(core.Coordinate{X: 0, Y: 0}))
	assert.False(t, w.Visible(core.Coordinate{X: 4, Y: 1}))
	assert.False(t, w.Visible(core.Coordinate{X: -1, Y: 0}))

	_, found := w.EnemyStart()
	assert.False(t, found)

	start, _ := w.EnemyStart()
	w.Command(scout, start)
	for i := 0; i < 100; i++ {
		w.Advance()
	}
	pos, found := w.EnemyStart()
	assert.True(t, found)
	assert.Equal(t, testutil.Pos(19, 4), pos)
}

func TestWorld_Release(t *testing.T) {
	w := newTestWorld(t, testutil.OpenTerrain(10, 3), DefaultWorldOptions())
	id := w.SpawnFriendly("Terran_Marine", testutil.Pos(0, 1))
	w.Command(id, testutil.Pos(9, 1))
	w.Advance()

	w.Release(id, "main")
	_, ok := w.Target(id)
	assert.False(t, ok)

	before, _ := w.Unit(id)
	w.Advance()
	after, _ := w.Unit(id)
	assert.Equal(t, before.Position, after.Position)
}
