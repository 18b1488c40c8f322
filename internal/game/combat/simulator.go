package combat

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
)

// Simulator predicts the outcome of the fight around a point. A negative
// score means our side is expected to lose.
type Simulator interface {
	Simulate(center core.Position, radius int) float64
}

// SimulatorFunc adapts a plain function to Simulator
type SimulatorFunc func(center core.Position, radius int) float64

func (f SimulatorFunc) Simulate(center core.Position, radius int) float64 {
	return f(center, radius)
}

// Forces lists both armies for the estimator
type Forces interface {
	Friendly() []units.Unit
	Enemies() []units.Unit
}

// Estimator scores a fight by comparing the summed strength of each side
// inside the radius. It is a stand-in for a real combat simulation.
type Estimator struct {
	forces  Forces
	catalog *units.Catalog
	logger  zerolog.Logger
}

func NewEstimator(forces Forces, catalog *units.Catalog, logger zerolog.Logger) *Estimator {
	return &Estimator{
		forces:  forces,
		catalog: catalog,
		logger:  logger.With().Str("component", "combat_estimator").Logger(),
	}
}

// Simulate returns (ours - theirs) / (ours + theirs), in [-1, 1].
// Zero when neither side has anything armed in range.
func (e *Estimator) Simulate(center core.Position, radius int) float64 {
	ours := e.strength(e.forces.Friendly(), center, radius)
	theirs := e.strength(e.forces.Enemies(), center, radius)

	score := 0.0
	if total := ours + theirs; total > 0 {
		score = (ours - theirs) / total
	}

	e.logger.Debug().
		Str("center", center.String()).
		Int("radius", radius).
		Float64("friendly", ours).
		Float64("enemy", theirs).
		Float64("score", score).
		Msg("Estimated fight")
	return score
}

func (e *Estimator) strength(list []units.Unit, center core.Position, radius int) float64 {
	total := 0.0
	for _, u := range units.InRadius(list, center, radius) {
		if !u.Alive() || !u.Completed {
			continue
		}
		total += UnitStrength(e.catalog, u)
	}
	return total
}

// UnitStrength weighs hit points by reach. Unknown and unarmed types count for nothing.
func UnitStrength(catalog *units.Catalog, u units.Unit) float64 {
	t, ok := catalog.Lookup(u.Type)
	if !ok || !t.CanAttack() || t.Building {
		return 0
	}
	reach := t.GroundRange
	if t.AirRange > reach {
		reach = t.AirRange
	}
	return float64(u.HitPoints) * (1 + float64(reach)/float64(core.TileSize*4))
}
