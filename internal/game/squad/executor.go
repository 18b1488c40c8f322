package squad

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
)

// Executor micromanages the members of one combat role. The squad hands it
// its units every tick, then either the standing order or a regroup point.
type Executor interface {
	SetUnits(ids []units.ID)
	Execute(order Order)
	Regroup(pos core.Position)
}

// FrontAware executors are told which member leads the squad toward its target
type FrontAware interface {
	SetFrontUnit(id units.ID)
}

// ExecutorFactory builds the executor for one role of a squad
type ExecutorFactory func(squadName string, role units.Role) Executor

// NopExecutor ignores every command
type NopExecutor struct{}

func (NopExecutor) SetUnits([]units.ID)   {}
func (NopExecutor) Execute(Order)         {}
func (NopExecutor) Regroup(core.Position) {}

// LoggingExecutor records commands in the debug log instead of acting on them
type LoggingExecutor struct {
	logger zerolog.Logger
	ids    []units.ID
}

// NewLoggingExecutorFactory returns a factory whose executors log to logger
func NewLoggingExecutorFactory(logger zerolog.Logger) ExecutorFactory {
	return func(squadName string, role units.Role) Executor {
		return &LoggingExecutor{
			logger: logger.With().
				Str("component", "executor").
				Str("squad", squadName).
				Str("role", role.String()).
				Logger(),
		}
	}
}

func (e *LoggingExecutor) SetUnits(ids []units.ID) {
	e.ids = ids
}

func (e *LoggingExecutor) Execute(order Order) {
	if len(e.ids) == 0 {
		return
	}
	e.logger.Debug().
		Int("units", len(e.ids)).
		Str("order", order.Type.String()).
		Int("x", order.Position.X).
		Int("y", order.Position.Y).
		Msg("Executing order")
}

func (e *LoggingExecutor) Regroup(pos core.Position) {
	if len(e.ids) == 0 {
		return
	}
	e.logger.Debug().
		Int("units", len(e.ids)).
		Int("x", pos.X).
		Int("y", pos.Y).
		Msg("Regrouping")
}
