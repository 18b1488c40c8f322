package units

import (
	"sort"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
)

// ID is a stable handle for a unit owned by the simulation. Squads and lookup
// tables hold IDs, never the unit data itself.
type ID int

// Unit is a read-only snapshot of a live unit for the current tick
type Unit struct {
	ID        ID
	Type      string
	Position  core.Position
	HitPoints int
	Completed bool
	Exists    bool
}

// Alive reports whether the unit still exists with positive hit points
func (u Unit) Alive() bool {
	return u.Exists && u.HitPoints > 0
}

// Source exposes the simulation's units to the tactical core. Lookups for
// units that died since the last tick must report ok=false rather than fail.
type Source interface {
	// Tick is the current simulation frame
	Tick() int
	// Unit returns the current snapshot of one of our units
	Unit(id ID) (Unit, bool)
	// Enemies returns the last known state of every enemy unit
	Enemies() []Unit
}

// InRadius returns the units whose position lies within radius of center
func InRadius(list []Unit, center core.Position, radius int) []Unit {
	var out []Unit
	for _, u := range list {
		if u.Position.DistanceTo(center) <= float64(radius) {
			out = append(out, u)
		}
	}
	return out
}

// AnyInRadius reports whether any unit lies within radius of center
func AnyInRadius(list []Unit, center core.Position, radius int) bool {
	for _, u := range list {
		if u.Position.DistanceTo(center) <= float64(radius) {
			return true
		}
	}
	return false
}

// SortIDs orders ids ascending in place and returns them
func SortIDs(ids []ID) []ID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
