package core

import "fmt"

// DefaultDepotClearance is how many tiles around a resource deposit are
// closed to resource depots.
const DefaultDepotClearance = 3

// Tile holds the static attributes of a single cell.
// Sector: 0 means unassigned or unwalkable; 1..N are connected regions.
type Tile struct {
	Walkable       bool
	Buildable      bool
	DepotBuildable bool
	LastSeen       int
	Sector         int
}

// ResourceDeposit is the footprint of a static resource container in tiles
type ResourceDeposit struct {
	Origin        Coordinate
	Width, Height int
}

// TerrainData is the raw per-tile map input. Walkable and Buildable are row-major
// and must have Width*Height entries.
type TerrainData struct {
	Width, Height int
	Walkable      []bool
	Buildable     []bool
	Resources     []ResourceDeposit
}

type Board struct {
	W, H int
	T    []Tile // length = W*H (row-major)
}

// NewBoard builds the tile grid from terrain data. Tiles covered by a resource
// deposit become unbuildable, and every tile within clearance of one loses
// depot buildability.
func NewBoard(terrain TerrainData, clearance int) (*Board, error) {
	n := terrain.Width * terrain.Height
	if terrain.Width <= 0 || terrain.Height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidTerrain, terrain.Width, terrain.Height)
	}
	if len(terrain.Walkable) != n || len(terrain.Buildable) != n {
		return nil, fmt.Errorf("%w: expected %d tiles, got walkable=%d buildable=%d",
			ErrInvalidTerrain, n, len(terrain.Walkable), len(terrain.Buildable))
	}
	if clearance < 0 {
		return nil, fmt.Errorf("%w: negative depot clearance %d", ErrInvalidTerrain, clearance)
	}

	b := &Board{W: terrain.Width, H: terrain.Height, T: make([]Tile, n)}
	for i := range b.T {
		b.T[i].Walkable = terrain.Walkable[i]
		b.T[i].Buildable = terrain.Buildable[i]
		b.T[i].DepotBuildable = terrain.Buildable[i]
	}

	for _, res := range terrain.Resources {
		for x := res.Origin.X; x < res.Origin.X+res.Width; x++ {
			for y := res.Origin.Y; y < res.Origin.Y+res.Height; y++ {
				if !b.InBounds(x, y) {
					continue
				}
				b.T[b.Idx(x, y)].Buildable = false
				b.clearDepotAround(x, y, clearance)
			}
		}
	}
	return b, nil
}

func (b *Board) clearDepotAround(x, y, clearance int) {
	for rx := -clearance; rx <= clearance; rx++ {
		for ry := -clearance; ry <= clearance; ry++ {
			if b.InBounds(x+rx, y+ry) {
				b.T[b.Idx(x+rx, y+ry)].DepotBuildable = false
			}
		}
	}
}

func (b *Board) Idx(x, y int) int      { return y*b.W + x }
func (b *Board) XY(idx int) (int, int) { return idx % b.W, idx / b.W }

// InBounds checks if coordinates are within board boundaries
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.W && y >= 0 && y < b.H
}

// Contains checks if a coordinate is on the board
func (b *Board) Contains(c Coordinate) bool {
	return b.InBounds(c.X, c.Y)
}

// ContainsPosition checks if a world position lies on the board
func (b *Board) ContainsPosition(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && b.Contains(p.Tile())
}

// Tile returns the tile at c or ErrInvalidCoordinates
func (b *Board) Tile(c Coordinate) (*Tile, error) {
	if !b.Contains(c) {
		return nil, fmt.Errorf("%w: %s outside %dx%d", ErrInvalidCoordinates, c, b.W, b.H)
	}
	return &b.T[c.ToIndex(b.W)], nil
}

func (b *Board) IsWalkable(c Coordinate) (bool, error) {
	t, err := b.Tile(c)
	if err != nil {
		return false, err
	}
	return t.Walkable, nil
}

func (b *Board) IsBuildable(c Coordinate) (bool, error) {
	t, err := b.Tile(c)
	if err != nil {
		return false, err
	}
	return t.Buildable, nil
}

func (b *Board) IsDepotBuildable(c Coordinate) (bool, error) {
	t, err := b.Tile(c)
	if err != nil {
		return false, err
	}
	return t.DepotBuildable, nil
}

// LastSeen returns the last tick the tile was observed
func (b *Board) LastSeen(c Coordinate) (int, error) {
	t, err := b.Tile(c)
	if err != nil {
		return 0, err
	}
	return t.LastSeen, nil
}

// MarkSeen records that the tile was observed at tick
func (b *Board) MarkSeen(c Coordinate, tick int) error {
	t, err := b.Tile(c)
	if err != nil {
		return err
	}
	t.LastSeen = tick
	return nil
}

// IsBuildableForFootprint reports whether every tile of the w x h footprint
// anchored at origin is buildable, and depot-buildable when requiresDepot is set.
// An invalid origin is an error; a footprint hanging off the board is not buildable.
func (b *Board) IsBuildableForFootprint(origin Coordinate, w, h int, requiresDepot bool) (bool, error) {
	if !b.Contains(origin) {
		return false, fmt.Errorf("%w: footprint origin %s", ErrInvalidCoordinates, origin)
	}
	if w <= 0 || h <= 0 {
		return false, nil
	}
	for x := origin.X; x < origin.X+w; x++ {
		for y := origin.Y; y < origin.Y+h; y++ {
			if !b.InBounds(x, y) {
				return false, nil
			}
			t := &b.T[b.Idx(x, y)]
			if !t.Buildable || (requiresDepot && !t.DepotBuildable) {
				return false, nil
			}
		}
	}
	return true, nil
}

// ResetSectors clears every sector assignment ahead of a connectivity pass
func (b *Board) ResetSectors() {
	for i := range b.T {
		b.T[i].Sector = 0
	}
}
