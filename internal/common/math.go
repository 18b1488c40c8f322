package common

import "github.com/mitchelldurbincs/tactician/internal/game/core"

// Abs returns the absolute value of an integer
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Sign returns -1, 0 or 1
func Sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// ChebyshevDistance is the king-move distance between two tiles
func ChebyshevDistance(a, b core.Coordinate) int {
	return max(Abs(a.X-b.X), Abs(a.Y-b.Y))
}

// StepToward moves from toward to by at most step world units per axis,
// stopping on it
func StepToward(from, to core.Position, step int) core.Position {
	dx, dy := to.X-from.X, to.Y-from.Y
	if Abs(dx) <= step && Abs(dy) <= step {
		return to
	}
	return core.Position{
		X: from.X + Sign(dx)*min(Abs(dx), step),
		Y: from.Y + Sign(dy)*min(Abs(dy), step),
	}
}
