package squad

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/events"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
)

// Violation is a unit found in more than one squad
type Violation struct {
	Unit   units.ID
	Squads []string
}

// Registry owns every squad and decides which squad a unit belongs to.
// It is driven from a single goroutine once per tick.
type Registry struct {
	squads  map[string]*Squad
	deps    *Dependencies
	release ReleaseFunc
	logger  zerolog.Logger
}

// NewRegistry validates deps and returns an empty registry. release is called
// whenever a squad gives a unit up; it may be nil.
func NewRegistry(deps Dependencies, release ReleaseFunc) (*Registry, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Registry{
		squads:  make(map[string]*Squad),
		deps:    &deps,
		release: release,
		logger:  deps.Logger.With().Str("component", "squad_registry").Logger(),
	}, nil
}

// Tactics returns the thresholds shared by every squad
func (r *Registry) Tactics() Tactics { return r.deps.Tactics }

// SetTactics replaces the thresholds for every squad from the next update on
func (r *Registry) SetTactics(t Tactics) {
	r.deps.Tactics = t
	r.logger.Info().
		Bool("use_combat_simulation", t.UseCombatSimulation).
		Int("near_enemy_radius", t.NearEnemyRadius).
		Int("retreat_switch_ticks", t.RetreatSwitchTicks).
		Msg("Tactics updated")
}

func (r *Registry) tick() int { return r.deps.Units.Tick() }

// CreateSquad adds a new empty squad
func (r *Registry) CreateSquad(name string, order Order, priority int) (*Squad, error) {
	if _, exists := r.squads[name]; exists {
		return nil, fmt.Errorf("%w: %q", core.ErrDuplicateSquad, name)
	}
	s := newSquad(name, order, priority, r.deps)
	r.squads[name] = s

	r.logger.Info().
		Str("squad", name).
		Int("priority", priority).
		Str("order", order.Type.String()).
		Msg("Squad created")
	r.deps.Publisher.Publish(events.NewSquadCreatedEvent(r.deps.Session, r.tick(), name, priority, order.Type.String()))
	return s, nil
}

// RemoveSquad releases every member and deletes the squad
func (r *Registry) RemoveSquad(name string) error {
	s, ok := r.squads[name]
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrSquadNotFound, name)
	}
	released := s.Clear(r.releaseUnit)
	delete(r.squads, name)

	r.logger.Info().
		Str("squad", name).
		Int("released", released).
		Msg("Squad removed")
	r.deps.Publisher.Publish(events.NewSquadRemovedEvent(r.deps.Session, r.tick(), name, released))
	return nil
}

// ClearAll removes every squad, releasing all members
func (r *Registry) ClearAll() {
	for _, s := range r.Squads() {
		// cannot fail: name comes from the map
		_ = r.RemoveSquad(s.name)
	}
}

// CanAssign reports whether AssignUnit would move id into the named squad
func (r *Registry) CanAssign(id units.ID, name string) (bool, error) {
	target, ok := r.squads[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", core.ErrSquadNotFound, name)
	}
	if target.Contains(id) {
		return false, nil
	}
	current, assigned := r.SquadOf(id)
	return !assigned || current.priority < target.priority, nil
}

// AssignUnit moves id into the named squad if its current squad, if any, has
// strictly lower priority. Every other squad holding the unit releases it,
// which also repairs a unit left in more than one squad. Returns whether the
// unit moved; a blocked assignment is not an error.
func (r *Registry) AssignUnit(id units.ID, name string) (bool, error) {
	ok, err := r.CanAssign(id, name)
	if err != nil || !ok {
		return false, err
	}

	from := ""
	for _, s := range r.Squads() {
		if s.name == name || !s.Contains(id) {
			continue
		}
		if from == "" {
			from = s.name
		}
		s.RemoveUnit(id)
		r.releaseUnit(id, s.name)
	}
	r.squads[name].AddUnit(id)

	r.logger.Debug().
		Int("unit_id", int(id)).
		Str("squad", name).
		Str("from", from).
		Msg("Unit assigned")
	r.deps.Publisher.Publish(events.NewUnitAssignedEvent(r.deps.Session, r.tick(), int(id), name, from))
	return true, nil
}

func (r *Registry) releaseUnit(id units.ID, squadName string) {
	if r.release != nil {
		r.release(id, squadName)
	}
	r.deps.Publisher.Publish(events.NewUnitReleasedEvent(r.deps.Session, r.tick(), int(id), squadName))
}

// UpdateAll updates every squad in name order, then reports units that are
// members of more than one squad. Violations are logged, never repaired.
func (r *Registry) UpdateAll() []Violation {
	for _, s := range r.Squads() {
		s.Update()
	}
	return r.verifyMembership()
}

func (r *Registry) verifyMembership() []Violation {
	owners := make(map[units.ID][]string)
	for _, s := range r.Squads() {
		for id := range s.members {
			owners[id] = append(owners[id], s.name)
		}
	}

	var violations []Violation
	for id, names := range owners {
		if len(names) > 1 {
			violations = append(violations, Violation{Unit: id, Squads: names})
		}
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].Unit < violations[j].Unit })

	tick := r.tick()
	for _, v := range violations {
		r.logger.Warn().
			Int("tick", tick).
			Int("unit_id", int(v.Unit)).
			Strs("squads", v.Squads).
			Msg("Unit is a member of more than one squad")
		r.deps.Publisher.Publish(events.NewMembershipViolationEvent(r.deps.Session, tick, int(v.Unit), v.Squads))
	}
	return violations
}

// Squads returns every squad ordered by name
func (r *Registry) Squads() []*Squad {
	list := make([]*Squad, 0, len(r.squads))
	for _, s := range r.squads {
		list = append(list, s)
	}
	sortSquads(list)
	return list
}

func (r *Registry) Squad(name string) (*Squad, bool) {
	s, ok := r.squads[name]
	return s, ok
}

func (r *Registry) SquadExists(name string) bool {
	_, ok := r.squads[name]
	return ok
}

// SquadOf returns the squad holding id. If the membership invariant is broken
// the first squad by name wins.
func (r *Registry) SquadOf(id units.ID) (*Squad, bool) {
	for _, s := range r.Squads() {
		if s.Contains(id) {
			return s, true
		}
	}
	return nil, false
}

func (r *Registry) Len() int { return len(r.squads) }
