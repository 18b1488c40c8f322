package mapinfo

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
)

// Options configures a Map
type Options struct {
	// CacheCapacity is the number of distance maps kept before a full flush.
	// Zero selects DefaultCacheCapacity.
	CacheCapacity int
	Logger        zerolog.Logger
}

// VisibilityFunc reports whether a tile is observed this tick
type VisibilityFunc func(core.Coordinate) bool

// Map is the read side of the spatial index: tile attributes, sector
// connectivity and cached ground distances. It is not safe for concurrent use;
// the tick driver owns it.
type Map struct {
	board   *core.Board
	sectors int
	cache   *distanceCache
	logger  zerolog.Logger
}

// New indexes a board. The connectivity pass runs immediately.
func New(board *core.Board, opts Options) *Map {
	logger := opts.Logger.With().Str("component", "map").Logger()
	m := &Map{
		board:  board,
		cache:  newDistanceCache(opts.CacheCapacity, logger),
		logger: logger,
	}
	m.RecomputeConnectivity()
	return m
}

// NewFromTerrain builds the board from raw terrain and indexes it
func NewFromTerrain(terrain core.TerrainData, clearance int, opts Options) (*Map, error) {
	board, err := core.NewBoard(terrain, clearance)
	if err != nil {
		return nil, fmt.Errorf("failed to build board: %w", err)
	}
	return New(board, opts), nil
}

// RecomputeConnectivity reruns the flood fill. Call it after any change to tile
// walkability; cached distance maps are dropped as well.
func (m *Map) RecomputeConnectivity() {
	m.sectors = computeSectors(m.board)
	m.cache.clear()
	m.logger.Debug().
		Int("width", m.board.W).
		Int("height", m.board.H).
		Int("sectors", m.sectors).
		Msg("Computed map connectivity")
}

func (m *Map) Board() *core.Board { return m.board }
func (m *Map) Width() int         { return m.board.W }
func (m *Map) Height() int        { return m.board.H }

// SectorCount returns the number of connected regions
func (m *Map) SectorCount() int { return m.sectors }

func (m *Map) IsWalkable(c core.Coordinate) (bool, error)       { return m.board.IsWalkable(c) }
func (m *Map) IsBuildable(c core.Coordinate) (bool, error)      { return m.board.IsBuildable(c) }
func (m *Map) IsDepotBuildable(c core.Coordinate) (bool, error) { return m.board.IsDepotBuildable(c) }

// IsBuildableForFootprint see core.Board.IsBuildableForFootprint
func (m *Map) IsBuildableForFootprint(origin core.Coordinate, w, h int, requiresDepot bool) (bool, error) {
	return m.board.IsBuildableForFootprint(origin, w, h, requiresDepot)
}

// ContainsPosition reports whether a world position lies on the map
func (m *Map) ContainsPosition(p core.Position) bool {
	return m.board.ContainsPosition(p)
}

// SectorOf returns the connected region of a tile; 0 for unwalkable tiles
func (m *Map) SectorOf(c core.Coordinate) (int, error) {
	t, err := m.board.Tile(c)
	if err != nil {
		return 0, err
	}
	return t.Sector, nil
}

// AreConnected reports whether a walkable path exists between two tiles.
// Unwalkable tiles are never connected, not even to themselves.
func (m *Map) AreConnected(a, b core.Coordinate) (bool, error) {
	sa, err := m.SectorOf(a)
	if err != nil {
		return false, err
	}
	sb, err := m.SectorOf(b)
	if err != nil {
		return false, err
	}
	return sa != 0 && sa == sb, nil
}

// AreConnectedPos is AreConnected for world positions
func (m *Map) AreConnectedPos(a, b core.Position) (bool, error) {
	return m.AreConnected(a.Tile(), b.Tile())
}

// DistanceMap returns the cached distance field to target, computing it on a miss
func (m *Map) DistanceMap(target core.Coordinate) (*DistanceMap, error) {
	if !m.board.Contains(target) {
		return nil, fmt.Errorf("%w: distance map target %s", core.ErrInvalidCoordinates, target)
	}
	return m.cache.get(m.board, target), nil
}

// GroundDistance returns the walking hop count from one tile to another, or
// Unreachable when no path exists
func (m *Map) GroundDistance(from, to core.Coordinate) (int, error) {
	if !m.board.Contains(from) {
		return Unreachable, fmt.Errorf("%w: ground distance source %s", core.ErrInvalidCoordinates, from)
	}
	dm, err := m.DistanceMap(to)
	if err != nil {
		return Unreachable, err
	}
	return dm.Distance(from), nil
}

// GroundDistancePos is GroundDistance between the tiles holding two world positions
func (m *Map) GroundDistancePos(src, dst core.Position) (int, error) {
	return m.GroundDistance(src.Tile(), dst.Tile())
}

// ClosestTilesTo returns every tile reachable from c ordered by walking distance
func (m *Map) ClosestTilesTo(c core.Coordinate) ([]core.Coordinate, error) {
	dm, err := m.DistanceMap(c)
	if err != nil {
		return nil, err
	}
	return dm.SortedTiles(), nil
}

// CacheStats returns distance map cache counters
func (m *Map) CacheStats() CacheStats {
	return m.cache.snapshot()
}

// CacheLen returns the number of cached distance maps
func (m *Map) CacheLen() int {
	return m.cache.len()
}

// Update stamps the current tick on every tile the visibility function reports as observed
func (m *Map) Update(tick int, visible VisibilityFunc) {
	if visible == nil {
		return
	}
	for i := range m.board.T {
		x, y := m.board.XY(i)
		if visible(core.Coordinate{X: x, Y: y}) {
			m.board.T[i].LastSeen = tick
		}
	}
}

// LeastRecentlySeen walks the tiles reachable from `from` in distance order and
// returns the centre of the one observed longest ago, ignoring tiles that are
// not connected to anchor. ok is false when no candidate tile exists.
func (m *Map) LeastRecentlySeen(from, anchor core.Position) (pos core.Position, ok bool, err error) {
	tiles, err := m.ClosestTilesTo(from.Tile())
	if err != nil {
		return core.Position{}, false, err
	}
	anchorSector, err := m.SectorOf(anchor.Tile())
	if err != nil {
		return core.Position{}, false, err
	}

	minSeen := math.MaxInt
	var best core.Coordinate
	for _, tile := range tiles {
		t := &m.board.T[tile.ToIndex(m.board.W)]
		if anchorSector == 0 || t.Sector != anchorSector {
			continue
		}
		if t.LastSeen < minSeen {
			minSeen = t.LastSeen
			best = tile
			ok = true
		}
	}
	if !ok {
		return core.Position{}, false, nil
	}
	return best.Center(), true, nil
}
