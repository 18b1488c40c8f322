package core

import (
	"fmt"
	"math"
)

// TileSize is the width of one tile in world (position) units.
const TileSize = 32

// Coordinate is a tile position on the board
type Coordinate struct {
	X, Y int
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// FromIndex creates a coordinate from a board array index using row-major ordering
func FromIndex(idx, width int) Coordinate {
	return Coordinate{
		X: idx % width,
		Y: idx / width,
	}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

// ToIndex converts the coordinate to a board array index using row-major ordering
func (c Coordinate) ToIndex(width int) int {
	return c.Y*width + c.X
}

// DistanceTo calculates the Manhattan distance to another coordinate
func (c Coordinate) DistanceTo(other Coordinate) int {
	dx := c.X - other.X
	dy := c.Y - other.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// NeighborOffsets is the fixed expansion order used by every flood fill and
// BFS over the board: +x, -x, +y, -y. Sector ids and distance map tile order
// depend on it.
var NeighborOffsets = [4]Coordinate{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
}

// Neighbors returns the four orthogonal neighbors in NeighborOffsets order
func (c Coordinate) Neighbors() [4]Coordinate {
	var out [4]Coordinate
	for i, off := range NeighborOffsets {
		out[i] = c.Add(off)
	}
	return out
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X + other.X,
		Y: c.Y + other.Y,
	}
}

// Center returns the world position at the middle of the tile
func (c Coordinate) Center() Position {
	return Position{X: c.X*TileSize + TileSize/2, Y: c.Y*TileSize + TileSize/2}
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Position is a point in world space. One tile spans TileSize units.
type Position struct {
	X, Y int
}

// NewPosition creates a world position
func NewPosition(x, y int) Position {
	return Position{X: x, Y: y}
}

// Tile returns the tile containing the position
func (p Position) Tile() Coordinate {
	return Coordinate{X: floorDiv(p.X, TileSize), Y: floorDiv(p.Y, TileSize)}
}

// DistanceTo returns the straight-line distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// IsZero reports whether the position is the origin
func (p Position) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

func (p Position) String() string {
	return fmt.Sprintf("[%d,%d]", p.X, p.Y)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
