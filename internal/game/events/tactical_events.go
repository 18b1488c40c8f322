package events

import (
	"time"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
)

// Event type constants
const (
	TypeSessionStarted      = "session.started"
	TypeSquadCreated        = "squad.created"
	TypeSquadRemoved        = "squad.removed"
	TypeUnitAssigned        = "unit.assigned"
	TypeUnitReleased        = "unit.released"
	TypeRegroupDecision     = "squad.decision"
	TypeSquadStateChanged   = "squad.state_changed"
	TypeMembershipViolation = "squad.violation"
	TypeTickOverBudget      = "tick.over_budget"
	TypePhaseChanged        = "session.phase_changed"
)

// SessionStartedEvent is published when an engine starts driving a map
type SessionStartedEvent struct {
	BaseEvent
	MapWidth  int
	MapHeight int
	Sectors   int
}

func NewSessionStartedEvent(session string, width, height, sectors int) *SessionStartedEvent {
	return &SessionStartedEvent{
		BaseEvent: newBase(TypeSessionStarted, session, 0),
		MapWidth:  width,
		MapHeight: height,
		Sectors:   sectors,
	}
}

// SquadCreatedEvent is published when the registry creates a squad
type SquadCreatedEvent struct {
	BaseEvent
	Squad    string
	Priority int
	Order    string
}

func NewSquadCreatedEvent(session string, tick int, squad string, priority int, order string) *SquadCreatedEvent {
	return &SquadCreatedEvent{
		BaseEvent: newBase(TypeSquadCreated, session, tick),
		Squad:     squad,
		Priority:  priority,
		Order:     order,
	}
}

// SquadRemovedEvent is published after a squad is emptied and deleted
type SquadRemovedEvent struct {
	BaseEvent
	Squad    string
	Released int
}

func NewSquadRemovedEvent(session string, tick int, squad string, released int) *SquadRemovedEvent {
	return &SquadRemovedEvent{
		BaseEvent: newBase(TypeSquadRemoved, session, tick),
		Squad:     squad,
		Released:  released,
	}
}

// UnitAssignedEvent is published when a unit joins a squad. From is empty
// when the unit was not in a squad before.
type UnitAssignedEvent struct {
	BaseEvent
	UnitID int
	Squad  string
	From   string
}

func NewUnitAssignedEvent(session string, tick, unitID int, squad, from string) *UnitAssignedEvent {
	return &UnitAssignedEvent{
		BaseEvent: newBase(TypeUnitAssigned, session, tick),
		UnitID:    unitID,
		Squad:     squad,
		From:      from,
	}
}

// UnitReleasedEvent is published when a squad hands a unit back to its owner
type UnitReleasedEvent struct {
	BaseEvent
	UnitID int
	Squad  string
}

func NewUnitReleasedEvent(session string, tick, unitID int, squad string) *UnitReleasedEvent {
	return &UnitReleasedEvent{
		BaseEvent: newBase(TypeUnitReleased, session, tick),
		UnitID:    unitID,
		Squad:     squad,
	}
}

// RegroupDecisionEvent records the outcome of a squad's attack/retreat evaluation
type RegroupDecisionEvent struct {
	BaseEvent
	Squad   string
	Retreat bool
	Score   float64
	Reason  string
	// Held is true when hysteresis kept the previous decision
	Held         bool
	RegroupPoint core.Position
}

func NewRegroupDecisionEvent(session string, tick int, squad string, retreat bool, score float64, reason string, held bool, point core.Position) *RegroupDecisionEvent {
	return &RegroupDecisionEvent{
		BaseEvent:    newBase(TypeRegroupDecision, session, tick),
		Squad:        squad,
		Retreat:      retreat,
		Score:        score,
		Reason:       reason,
		Held:         held,
		RegroupPoint: point,
	}
}

// SquadStateChangedEvent is published on every squad state transition
type SquadStateChangedEvent struct {
	BaseEvent
	Squad string
	From  string
	To    string
}

func NewSquadStateChangedEvent(session string, tick int, squad, from, to string) *SquadStateChangedEvent {
	return &SquadStateChangedEvent{
		BaseEvent: newBase(TypeSquadStateChanged, session, tick),
		Squad:     squad,
		From:      from,
		To:        to,
	}
}

// MembershipViolationEvent reports a unit found in more than one squad
type MembershipViolationEvent struct {
	BaseEvent
	UnitID int
	Squads []string
}

func NewMembershipViolationEvent(session string, tick, unitID int, squads []string) *MembershipViolationEvent {
	return &MembershipViolationEvent{
		BaseEvent: newBase(TypeMembershipViolation, session, tick),
		UnitID:    unitID,
		Squads:    squads,
	}
}

// TickOverBudgetEvent is published when a tick takes longer than its budget
type TickOverBudgetEvent struct {
	BaseEvent
	Duration time.Duration
	Budget   time.Duration
}

func NewTickOverBudgetEvent(session string, tick int, duration, budget time.Duration) *TickOverBudgetEvent {
	return &TickOverBudgetEvent{
		BaseEvent: newBase(TypeTickOverBudget, session, tick),
		Duration:  duration,
		Budget:    budget,
	}
}

// PhaseChangedEvent is published on every session lifecycle transition
type PhaseChangedEvent struct {
	BaseEvent
	From   string
	To     string
	Reason string
}

func NewPhaseChangedEvent(session string, tick int, from, to, reason string) *PhaseChangedEvent {
	return &PhaseChangedEvent{
		BaseEvent: newBase(TypePhaseChanged, session, tick),
		From:      from,
		To:        to,
		Reason:    reason,
	}
}
