package mapgen

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/common"
	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/mapinfo"
)

// MapConfig holds configuration for terrain generation
type MapConfig struct {
	Width  int
	Height int

	WallRatio          int     // 1 wall vein per N tiles
	MinWallLength      int     // shortest vein in tiles
	MaxWallLengthRatio float64 // longest vein as a fraction of the width
	ResourceClusters   int     // extra deposits beyond the one at each start
	RoughRatio         int     // 1 walkable-but-unbuildable tile per N tiles
	StartClearance     int     // radius around each start kept open
}

// DefaultMapConfig returns a sensible default configuration
func DefaultMapConfig(w, h int) MapConfig {
	return MapConfig{
		Width:              w,
		Height:             h,
		WallRatio:          40,
		MinWallLength:      3,
		MaxWallLengthRatio: 0.3,
		ResourceClusters:   4,
		RoughRatio:         25,
		StartClearance:     4,
	}
}

// Layout is a generated map plus the two start locations
type Layout struct {
	Terrain    core.TerrainData
	HomeStart  core.Coordinate
	EnemyStart core.Coordinate
}

// Generator handles terrain generation with deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewGenerator creates a new map generator
func NewGenerator(config MapConfig, rng *rand.Rand, logger zerolog.Logger) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
		logger: logger.With().Str("component", "mapgen").Logger(),
	}
}

// Generate builds terrain with the home start on the west edge and the enemy
// start on the east edge. The two starts are always ground connected.
func (g *Generator) Generate() (*Layout, error) {
	w, h := g.config.Width, g.config.Height
	minSide := 2*g.config.StartClearance + 3
	if w < minSide || h < 3 {
		return nil, fmt.Errorf("%w: %dx%d is too small for clearance %d",
			core.ErrInvalidTerrain, w, h, g.config.StartClearance)
	}

	grid := newGrid(w, h)
	layout := &Layout{
		HomeStart:  core.Coordinate{X: g.config.StartClearance, Y: h / 2},
		EnemyStart: core.Coordinate{X: w - 1 - g.config.StartClearance, Y: h / 2},
	}

	walls := g.placeWalls(grid, layout)
	rough := g.placeRough(grid, layout)
	deposits := g.placeResources(grid, layout)
	carved, err := g.ensureConnected(grid, layout)
	if err != nil {
		return nil, err
	}

	layout.Terrain = grid.terrain()
	g.logger.Info().
		Int("width", w).
		Int("height", h).
		Int("wall_tiles", walls).
		Int("rough_tiles", rough).
		Int("deposits", deposits).
		Int("carved_tiles", carved).
		Msg("Terrain generated")
	return layout, nil
}

// grid is the mutable terrain while generating
type grid struct {
	w, h      int
	walkable  []bool
	buildable []bool
	resources []core.ResourceDeposit
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, walkable: make([]bool, w*h), buildable: make([]bool, w*h)}
	for i := range g.walkable {
		g.walkable[i] = true
		g.buildable[i] = true
	}
	return g
}

func (g *grid) inBounds(c core.Coordinate) bool { return c.IsValid(g.w, g.h) }
func (g *grid) idx(c core.Coordinate) int       { return c.ToIndex(g.w) }

func (g *grid) block(c core.Coordinate) {
	g.walkable[g.idx(c)] = false
	g.buildable[g.idx(c)] = false
}

func (g *grid) terrain() core.TerrainData {
	return core.TerrainData{
		Width:     g.w,
		Height:    g.h,
		Walkable:  append([]bool(nil), g.walkable...),
		Buildable: append([]bool(nil), g.buildable...),
		Resources: append([]core.ResourceDeposit(nil), g.resources...),
	}
}

func (g *Generator) nearStart(c core.Coordinate, layout *Layout) bool {
	r := g.config.StartClearance
	return common.ChebyshevDistance(c, layout.HomeStart) <= r ||
		common.ChebyshevDistance(c, layout.EnemyStart) <= r
}

func (g *Generator) randomTile() core.Coordinate {
	return core.Coordinate{X: g.rng.Intn(g.config.Width), Y: g.rng.Intn(g.config.Height)}
}

// placeWalls lays random-walk veins of blocked tiles
func (g *Generator) placeWalls(gr *grid, layout *Layout) int {
	if g.config.WallRatio <= 0 {
		return 0
	}
	veins := (gr.w * gr.h) / g.config.WallRatio
	maxLen := max(g.config.MinWallLength, int(float64(gr.w)*g.config.MaxWallLengthRatio))

	placed := 0
	for v := 0; v < veins; v++ {
		length := g.config.MinWallLength
		if maxLen > length {
			length += g.rng.Intn(maxLen - length + 1)
		}
		cur := g.randomTile()
		for step := 0; step < length; step++ {
			if gr.inBounds(cur) && !g.nearStart(cur, layout) && gr.walkable[gr.idx(cur)] {
				gr.block(cur)
				placed++
			}
			off := core.NeighborOffsets[g.rng.Intn(len(core.NeighborOffsets))]
			next := cur.Add(off)
			if !gr.inBounds(next) {
				break
			}
			cur = next
		}
	}
	return placed
}

// placeRough marks scattered walkable tiles as unbuildable
func (g *Generator) placeRough(gr *grid, layout *Layout) int {
	if g.config.RoughRatio <= 0 {
		return 0
	}
	want := (gr.w * gr.h) / g.config.RoughRatio
	placed := 0
	for attempts := 0; placed < want && attempts < want*10; attempts++ {
		c := g.randomTile()
		i := gr.idx(c)
		if !gr.walkable[i] || !gr.buildable[i] || g.nearStart(c, layout) {
			continue
		}
		gr.buildable[i] = false
		placed++
	}
	return placed
}

// placeResources puts a 2x2 deposit beside each start, then scatters more
func (g *Generator) placeResources(gr *grid, layout *Layout) int {
	placed := 0
	for _, start := range []core.Coordinate{layout.HomeStart, layout.EnemyStart} {
		origin := core.Coordinate{X: start.X - 1, Y: common.Clamp(start.Y-3, 0, gr.h-2)}
		if g.addDeposit(gr, origin, layout, true) {
			placed++
		}
	}

	for attempts := 0; placed < 2+g.config.ResourceClusters && attempts < g.config.ResourceClusters*20; attempts++ {
		if g.addDeposit(gr, g.randomTile(), layout, false) {
			placed++
		}
	}
	return placed
}

func (g *Generator) addDeposit(gr *grid, origin core.Coordinate, layout *Layout, atStart bool) bool {
	const size = 2
	for x := origin.X; x < origin.X+size; x++ {
		for y := origin.Y; y < origin.Y+size; y++ {
			c := core.Coordinate{X: x, Y: y}
			if !gr.inBounds(c) || !gr.walkable[gr.idx(c)] {
				return false
			}
			if c == layout.HomeStart || c == layout.EnemyStart {
				return false
			}
			if !atStart && g.nearStart(c, layout) {
				return false
			}
		}
	}
	for x := origin.X; x < origin.X+size; x++ {
		for y := origin.Y; y < origin.Y+size; y++ {
			gr.block(core.Coordinate{X: x, Y: y})
		}
	}
	gr.resources = append(gr.resources, core.ResourceDeposit{Origin: origin, Width: size, Height: size})
	return true
}

// ensureConnected carves a corridor between the starts when walls split them.
// The corridor is a shortest path that treats walls as open and deposits as
// solid.
func (g *Generator) ensureConnected(gr *grid, layout *Layout) (int, error) {
	connected, err := g.startsConnected(gr, layout)
	if err != nil || connected {
		return 0, err
	}

	deposit := make([]bool, gr.w*gr.h)
	for _, r := range gr.resources {
		for x := r.Origin.X; x < r.Origin.X+r.Width; x++ {
			for y := r.Origin.Y; y < r.Origin.Y+r.Height; y++ {
				deposit[gr.idx(core.Coordinate{X: x, Y: y})] = true
			}
		}
	}

	parent := make([]int, gr.w*gr.h)
	for i := range parent {
		parent[i] = -1
	}
	from, to := gr.idx(layout.HomeStart), gr.idx(layout.EnemyStart)
	parent[from] = from
	queue := []core.Coordinate{layout.HomeStart}
	for len(queue) > 0 && parent[to] == -1 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range cur.Neighbors() {
			if !gr.inBounds(n) {
				continue
			}
			i := gr.idx(n)
			if deposit[i] || parent[i] != -1 {
				continue
			}
			parent[i] = gr.idx(cur)
			queue = append(queue, n)
		}
	}
	if parent[to] == -1 {
		return 0, fmt.Errorf("%w: deposits separate the start locations", core.ErrInvalidTerrain)
	}

	carved := 0
	for i := to; ; i = parent[i] {
		if !gr.walkable[i] {
			gr.walkable[i] = true
			carved++
		}
		if i == from {
			break
		}
	}
	return carved, nil
}

func (g *Generator) startsConnected(gr *grid, layout *Layout) (bool, error) {
	m, err := mapinfo.NewFromTerrain(gr.terrain(), 0, mapinfo.Options{Logger: zerolog.Nop()})
	if err != nil {
		return false, err
	}
	return m.AreConnected(layout.HomeStart, layout.EnemyStart)
}
