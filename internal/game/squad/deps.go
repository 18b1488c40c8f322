package squad

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/combat"
	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/events"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
)

var ErrMissingDependency = errors.New("missing squad dependency")

// Terrain is the part of the map index squads query
type Terrain interface {
	GroundDistancePos(src, dst core.Position) (int, error)
	ContainsPosition(p core.Position) bool
}

// Locations knows the fixed points of the match
type Locations interface {
	HomeBase() core.Position
	// EnemyStart is false until the enemy base has been found
	EnemyStart() (core.Position, bool)
}

// RetreatOverride lets a higher-level strategy veto a retreat
type RetreatOverride interface {
	SuppressRetreat(s *Squad) bool
}

// RetreatOverrideFunc adapts a plain function to RetreatOverride
type RetreatOverrideFunc func(s *Squad) bool

func (f RetreatOverrideFunc) SuppressRetreat(s *Squad) bool { return f(s) }

// StaticLocations is a fixed Locations
type StaticLocations struct {
	Home       core.Position
	Enemy      core.Position
	EnemyKnown bool
}

func (l StaticLocations) HomeBase() core.Position { return l.Home }

func (l StaticLocations) EnemyStart() (core.Position, bool) { return l.Enemy, l.EnemyKnown }

// Dependencies are the collaborators shared by every squad of a registry.
// Simulator, Locations, Override, Executors and Publisher are optional.
type Dependencies struct {
	Terrain   Terrain
	Units     units.Source
	Catalog   *units.Catalog
	Simulator combat.Simulator
	Locations Locations
	Override  RetreatOverride
	Executors ExecutorFactory
	Publisher events.Publisher
	Tactics   Tactics
	// Session stamps published events
	Session string
	Logger  zerolog.Logger
}

func (d *Dependencies) validate() error {
	switch {
	case d.Terrain == nil:
		return fmt.Errorf("%w: terrain", ErrMissingDependency)
	case d.Units == nil:
		return fmt.Errorf("%w: unit source", ErrMissingDependency)
	case d.Catalog == nil:
		return fmt.Errorf("%w: unit catalog", ErrMissingDependency)
	}
	if d.Locations == nil {
		d.Locations = StaticLocations{}
	}
	if d.Executors == nil {
		d.Executors = func(string, units.Role) Executor { return NopExecutor{} }
	}
	if d.Publisher == nil {
		d.Publisher = events.Discard
	}
	return nil
}
