package squad

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/events"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
)

// ReleaseFunc hands a unit back to whoever owned it before it joined squadName
type ReleaseFunc func(id units.ID, squadName string)

// Squad is a named group of units following one standing order. Squads only
// hold unit IDs; the live units belong to the simulation.
type Squad struct {
	name     string
	priority int
	order    Order

	members   map[units.ID]struct{}
	nearEnemy map[units.ID]bool
	executors map[units.Role]Executor

	state           State
	regroupPosition core.Position
	reason          Reason

	// hysteresis
	lastSwitchTick    int
	lastSwitchRetreat bool

	deps   *Dependencies
	logger zerolog.Logger
}

func newSquad(name string, order Order, priority int, deps *Dependencies) *Squad {
	s := &Squad{
		name:      name,
		priority:  priority,
		order:     order,
		members:   make(map[units.ID]struct{}),
		nearEnemy: make(map[units.ID]bool),
		executors: make(map[units.Role]Executor, len(units.Roles)),
		state:     stateFor(order, false),
		deps:      deps,
		logger:    deps.Logger.With().Str("component", "squad").Str("squad", name).Logger(),
	}
	for _, role := range units.Roles {
		s.executors[role] = deps.Executors(name, role)
	}
	return s
}

func (s *Squad) Name() string  { return s.name }
func (s *Squad) Priority() int { return s.priority }
func (s *Squad) Order() Order  { return s.order }
func (s *Squad) State() State  { return s.state }

// Reason explains the most recent regroup decision
func (s *Squad) Reason() Reason { return s.reason }

// RegroupPosition is the last computed regroup point
func (s *Squad) RegroupPosition() core.Position { return s.regroupPosition }

// SetOrder replaces the standing order; it takes effect on the next Update
func (s *Squad) SetOrder(order Order) {
	s.order = order
}

// SetPriority changes the squad's claim on units. Existing members stay.
func (s *Squad) SetPriority(priority int) {
	s.priority = priority
}

// AddUnit makes id a member. It does not check other squads; use
// Registry.AssignUnit to move units between squads.
func (s *Squad) AddUnit(id units.ID) {
	s.members[id] = struct{}{}
}

// RemoveUnit drops id without releasing it. Returns false if it was not a member.
func (s *Squad) RemoveUnit(id units.ID) bool {
	if _, ok := s.members[id]; !ok {
		return false
	}
	delete(s.members, id)
	delete(s.nearEnemy, id)
	return true
}

func (s *Squad) Contains(id units.ID) bool {
	_, ok := s.members[id]
	return ok
}

func (s *Squad) Len() int      { return len(s.members) }
func (s *Squad) IsEmpty() bool { return len(s.members) == 0 }

// Units returns the member IDs in ascending order
func (s *Squad) Units() []units.ID {
	ids := make([]units.ID, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	return units.SortIDs(ids)
}

// NearEnemy reports whether the member had an enemy close by on the last update
func (s *Squad) NearEnemy(id units.ID) bool {
	return s.nearEnemy[id]
}

// Clear releases every member through release (if non-nil) and empties the
// squad. Returns the number of released units.
func (s *Squad) Clear(release ReleaseFunc) int {
	ids := s.Units()
	for _, id := range ids {
		if release != nil {
			release(id, s.name)
		}
	}
	s.members = make(map[units.ID]struct{})
	s.nearEnemy = make(map[units.ID]bool)
	for _, role := range units.Roles {
		s.executors[role].SetUnits(nil)
	}
	return len(ids)
}

// Center is the average position of the members the unit source still knows about
func (s *Squad) Center() (core.Position, bool) {
	var sumX, sumY, n int
	for _, id := range s.Units() {
		u, ok := s.deps.Units.Unit(id)
		if !ok {
			continue
		}
		sumX += u.Position.X
		sumY += u.Position.Y
		n++
	}
	if n == 0 {
		return core.Position{}, false
	}
	return core.Position{X: sumX / n, Y: sumY / n}, true
}

// UnitsNear returns the members within radius of p, ascending by ID
func (s *Squad) UnitsNear(p core.Position, radius int) []units.ID {
	var out []units.ID
	for _, id := range s.Units() {
		u, ok := s.deps.Units.Unit(id)
		if ok && u.Position.DistanceTo(p) <= float64(radius) {
			out = append(out, id)
		}
	}
	return out
}

// Update runs one tick: refresh membership, tag members near enemies,
// classify them by role, decide whether to regroup and dispatch the executors.
func (s *Squad) Update() {
	tick := s.deps.Units.Tick()

	members := s.refreshMembers()
	s.tagNearEnemy(members)

	buckets := s.classify(members)
	for _, role := range units.Roles {
		s.executors[role].SetUnits(buckets[role])
	}

	front, hasFront := s.frontUnit(members)

	regroup := false
	if s.order.Type == OrderAttack {
		regroup = s.needsToRegroup(tick, members, front, hasFront)
	} else {
		s.reason = Reason{Code: ReasonNotAttacking}
	}

	if regroup {
		s.regroupPosition = s.calcRegroupPosition(members)
		for _, role := range units.Roles {
			s.executors[role].Regroup(s.regroupPosition)
		}
	} else {
		for _, role := range units.Roles {
			ex := s.executors[role]
			if fa, ok := ex.(FrontAware); ok && role == units.RoleDetector && hasFront {
				fa.SetFrontUnit(front.ID)
			}
			ex.Execute(s.order)
		}
	}

	if s.order.Type == OrderAttack {
		s.deps.Publisher.Publish(events.NewRegroupDecisionEvent(
			s.deps.Session, tick, s.name, regroup, s.reason.Score, s.reason.String(), s.reason.Held, s.regroupPosition))
	}
	s.setState(tick, stateFor(s.order, regroup))
}

func (s *Squad) refreshMembers() []units.Unit {
	ids := s.Units()
	live := make([]units.Unit, 0, len(ids))
	for _, id := range ids {
		u, ok := s.deps.Units.Unit(id)

		var drop string
		switch {
		case !ok:
			drop = "missing"
		case !u.Alive():
			drop = "dead"
		case !u.Completed:
			drop = "incomplete"
		case !s.deps.Terrain.ContainsPosition(u.Position):
			drop = "off map"
		case !s.deps.Catalog.Known(u.Type):
			drop = "unknown type"
		}

		if drop != "" {
			s.RemoveUnit(id)
			s.logger.Debug().
				Int("unit_id", int(id)).
				Str("reason", drop).
				Msg("Dropped squad member")
			continue
		}
		live = append(live, u)
	}
	return live
}

func (s *Squad) tagNearEnemy(members []units.Unit) {
	var enemies []units.Unit
	for _, e := range s.deps.Units.Enemies() {
		if e.Alive() {
			enemies = append(enemies, e)
		}
	}

	s.nearEnemy = make(map[units.ID]bool, len(members))
	for _, u := range members {
		s.nearEnemy[u.ID] = units.AnyInRadius(enemies, u.Position, s.deps.Tactics.NearEnemyRadius)
	}
}

func (s *Squad) classify(members []units.Unit) map[units.Role][]units.ID {
	buckets := make(map[units.Role][]units.ID, len(units.Roles))
	for _, u := range members {
		t, _ := s.deps.Catalog.Lookup(u.Type)
		role := units.Classify(t, s.deps.Tactics.ShortRangeThreshold)
		if role == units.RoleNone {
			continue
		}
		buckets[role] = append(buckets[role], u.ID)
	}
	return buckets
}

// frontUnit picks the member closest to the order target by ground distance.
// When no member has a path it falls back to straight-line distance to the
// enemy start, or to the order target while the enemy start is unknown.
func (s *Squad) frontUnit(members []units.Unit) (units.Unit, bool) {
	var candidates []units.Unit
	for _, u := range members {
		if t, ok := s.deps.Catalog.Lookup(u.Type); ok && t.IgnoreForFront {
			continue
		}
		candidates = append(candidates, u)
	}
	if len(candidates) == 0 {
		return units.Unit{}, false
	}

	var best units.Unit
	bestDist := -1
	for _, u := range candidates {
		d, err := s.deps.Terrain.GroundDistancePos(u.Position, s.order.Position)
		if err != nil || d < 0 {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = u, d
		}
	}
	if bestDist >= 0 {
		return best, true
	}

	target := s.order.Position
	if p, ok := s.deps.Locations.EnemyStart(); ok {
		target = p
	}
	bestStraight := math.MaxFloat64
	for _, u := range candidates {
		if d := u.Position.DistanceTo(target); d < bestStraight {
			best, bestStraight = u, d
		}
	}
	return best, true
}

func (s *Squad) needsToRegroup(tick int, members []units.Unit, front units.Unit, hasFront bool) bool {
	switch {
	case len(members) == 0:
		s.reason = Reason{Code: ReasonEmpty}
		return false
	case !s.deps.Tactics.UseCombatSimulation || s.deps.Simulator == nil:
		s.reason = Reason{Code: ReasonSimulationDisabled}
		return false
	case !hasFront:
		s.reason = Reason{Code: ReasonNoFront}
		return false
	case !s.threatened(members):
		s.reason = Reason{Code: ReasonNoThreat}
		return false
	}

	score := s.deps.Simulator.Simulate(front.Position, s.deps.Tactics.CombatRegroupRadius)
	wanted := score < 0
	code := ReasonWinning
	if wanted {
		code = ReasonLosing
		// The override wins over the hysteresis window and leaves it untouched.
		if s.deps.Override != nil && s.deps.Override.SuppressRetreat(s) {
			s.reason = Reason{Code: ReasonSuppressed, Score: score}
			return false
		}
	}

	retreat, held := s.applyHysteresis(tick, wanted)
	s.reason = Reason{Code: code, Score: score, Retreat: retreat, Held: held}
	return retreat
}

// applyHysteresis accepts a flip of the attack/retreat decision only when the
// last accepted flip is at least RetreatSwitchTicks old. The window starts at
// tick 0, so no flip is accepted before RetreatSwitchTicks.
func (s *Squad) applyHysteresis(tick int, wanted bool) (retreat, held bool) {
	if wanted == s.lastSwitchRetreat {
		return wanted, false
	}
	if tick-s.lastSwitchTick < s.deps.Tactics.RetreatSwitchTicks {
		return s.lastSwitchRetreat, true
	}
	s.lastSwitchTick = tick
	s.lastSwitchRetreat = wanted
	return wanted, false
}

// threatened reports whether any completed, armed enemy of a known type has a
// member within its attack range plus the range buffer
func (s *Squad) threatened(members []units.Unit) bool {
	for _, e := range s.deps.Units.Enemies() {
		if !e.Completed || !e.Alive() {
			continue
		}
		et, ok := s.deps.Catalog.Lookup(e.Type)
		if !ok || !et.CanAttack() {
			continue
		}
		for _, u := range members {
			reach := s.deps.Catalog.AttackRange(e.Type, u.Type) + s.deps.Tactics.RangeBuffer
			if e.Position.DistanceTo(u.Position) <= float64(reach) {
				return true
			}
		}
	}
	return false
}

// calcRegroupPosition returns the position of the member closest to the order
// target that is not near an enemy, or the home base when every member is engaged.
func (s *Squad) calcRegroupPosition(members []units.Unit) core.Position {
	var best core.Position
	bestDist := math.MaxFloat64
	found := false
	for _, u := range members {
		if s.nearEnemy[u.ID] {
			continue
		}
		if d := u.Position.DistanceTo(s.order.Position); d < bestDist {
			best, bestDist, found = u.Position, d, true
		}
	}
	if !found {
		return s.deps.Locations.HomeBase()
	}
	return best
}

func (s *Squad) setState(tick int, next State) {
	if next == s.state {
		return
	}
	prev := s.state
	s.state = next
	s.logger.Info().
		Int("tick", tick).
		Str("from", prev.String()).
		Str("to", next.String()).
		Str("reason", s.reason.String()).
		Msg("Squad state changed")
	s.deps.Publisher.Publish(events.NewSquadStateChangedEvent(s.deps.Session, tick, s.name, prev.String(), next.String()))
}

// sortSquads orders squads by name
func sortSquads(list []*Squad) {
	sort.Slice(list, func(i, j int) bool { return list[i].name < list[j].name })
}
