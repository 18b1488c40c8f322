package game

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/squad"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
)

// Commander moves units in the simulation
type Commander interface {
	Command(id units.ID, pos core.Position)
	Unit(id units.ID) (units.Unit, bool)
}

// MoveExecutor turns squad orders into move commands for one role. Detectors
// shadow the squad's front unit instead of heading for the target.
type MoveExecutor struct {
	commander Commander
	role      units.Role
	ids       []units.ID
	front     units.ID
	hasFront  bool
	logger    zerolog.Logger
}

// NewMoveExecutorFactory returns a factory that commands units through c
func NewMoveExecutorFactory(c Commander, logger zerolog.Logger) squad.ExecutorFactory {
	return func(squadName string, role units.Role) squad.Executor {
		return &MoveExecutor{
			commander: c,
			role:      role,
			logger: logger.With().
				Str("component", "executor").
				Str("squad", squadName).
				Str("role", role.String()).
				Logger(),
		}
	}
}

func (e *MoveExecutor) SetUnits(ids []units.ID) {
	e.ids = ids
}

func (e *MoveExecutor) SetFrontUnit(id units.ID) {
	e.front = id
	e.hasFront = true
}

func (e *MoveExecutor) Execute(order squad.Order) {
	defer func() { e.hasFront = false }()

	switch order.Type {
	case squad.OrderAttack, squad.OrderDefend, squad.OrderRegroup, squad.OrderDrop:
	default:
		return
	}

	dest := order.Position
	if e.role == units.RoleDetector && e.hasFront {
		if u, ok := e.commander.Unit(e.front); ok {
			dest = u.Position
		}
	}
	e.moveAll(dest)

	if len(e.ids) > 0 {
		e.logger.Debug().
			Int("units", len(e.ids)).
			Str("order", order.Type.String()).
			Str("destination", dest.String()).
			Msg("Executing order")
	}
}

func (e *MoveExecutor) Regroup(pos core.Position) {
	e.hasFront = false
	e.moveAll(pos)
	if len(e.ids) > 0 {
		e.logger.Debug().
			Int("units", len(e.ids)).
			Str("destination", pos.String()).
			Msg("Regrouping")
	}
}

func (e *MoveExecutor) moveAll(pos core.Position) {
	for _, id := range e.ids {
		e.commander.Command(id, pos)
	}
}
