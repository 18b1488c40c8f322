package game

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/common"
	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/mapinfo"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
)

// WorldOptions tunes the skirmish simulation
type WorldOptions struct {
	// SightRange is how many tiles around a friendly unit are observed
	SightRange int
	// Speed is how far a unit moves per tick in world units
	Speed int
	// Damage is dealt per tick by every armed unit to its closest target in range
	Damage int
	// HitPoints is given to every spawned unit
	HitPoints int
}

// DefaultWorldOptions returns the options used by the demo skirmish
func DefaultWorldOptions() WorldOptions {
	return WorldOptions{
		SightRange: 7,
		Speed:      8,
		Damage:     1,
		HitPoints:  40,
	}
}

type side int

const (
	friendly side = iota
	hostile
)

type actor struct {
	unit   units.Unit
	side   side
	target *core.Position
}

// World is a small deterministic two-army simulation. It plays the part of
// the game client: it owns the units, moves them along ground distance maps,
// resolves damage, and reports what our side can see. It is driven from the
// engine goroutine only.
type World struct {
	tick    int
	nextID  units.ID
	actors  map[units.ID]*actor
	known   map[units.ID]units.Unit
	visible []bool

	terrain    *mapinfo.Map
	catalog    *units.Catalog
	opts       WorldOptions
	home       core.Position
	enemyStart core.Position
	enemyFound bool
	logger     zerolog.Logger
}

// NewWorld creates an empty world on the indexed map
func NewWorld(terrain *mapinfo.Map, catalog *units.Catalog, home, enemyStart core.Position, opts WorldOptions, logger zerolog.Logger) *World {
	return &World{
		nextID:     1,
		actors:     make(map[units.ID]*actor),
		known:      make(map[units.ID]units.Unit),
		visible:    make([]bool, terrain.Width()*terrain.Height()),
		terrain:    terrain,
		catalog:    catalog,
		opts:       opts,
		home:       home,
		enemyStart: enemyStart,
		logger:     logger.With().Str("component", "world").Logger(),
	}
}

func (w *World) Tick() int { return w.tick }

// Unit returns one of our units. Dead units are gone.
func (w *World) Unit(id units.ID) (units.Unit, bool) {
	a, ok := w.actors[id]
	if !ok || a.side != friendly {
		return units.Unit{}, false
	}
	return a.unit, true
}

// Enemies returns the last known state of every enemy we have seen
func (w *World) Enemies() []units.Unit {
	out := make([]units.Unit, 0, len(w.known))
	for _, u := range w.known {
		out = append(out, u)
	}
	sortUnits(out)
	return out
}

// Friendly returns every living unit on our side
func (w *World) Friendly() []units.Unit {
	return w.livingOn(friendly)
}

// Hostile returns every living enemy unit, seen or not
func (w *World) Hostile() []units.Unit {
	return w.livingOn(hostile)
}

func (w *World) livingOn(s side) []units.Unit {
	var out []units.Unit
	for _, a := range w.actors {
		if a.side == s {
			out = append(out, a.unit)
		}
	}
	sortUnits(out)
	return out
}

func (w *World) HomeBase() core.Position { return w.home }

// EnemyStart is reported once a friendly unit has seen the enemy start tile
func (w *World) EnemyStart() (core.Position, bool) {
	return w.enemyStart, w.enemyFound
}

// SpawnFriendly adds a completed unit on our side and returns its id
func (w *World) SpawnFriendly(typ string, pos core.Position) units.ID {
	return w.spawn(friendly, typ, pos)
}

// SpawnEnemy adds a completed enemy unit and returns its id
func (w *World) SpawnEnemy(typ string, pos core.Position) units.ID {
	return w.spawn(hostile, typ, pos)
}

func (w *World) spawn(s side, typ string, pos core.Position) units.ID {
	id := w.nextID
	w.nextID++
	w.actors[id] = &actor{
		side: s,
		unit: units.Unit{
			ID:        id,
			Type:      typ,
			Position:  pos,
			HitPoints: w.opts.HitPoints,
			Completed: true,
			Exists:    true,
		},
	}
	return id
}

// Command sends one of our units toward pos
func (w *World) Command(id units.ID, pos core.Position) {
	if a, ok := w.actors[id]; ok && a.side == friendly {
		p := pos
		a.target = &p
	}
}

// Release stops a unit; it holds its ground until commanded again
func (w *World) Release(id units.ID, squad string) {
	if a, ok := w.actors[id]; ok {
		a.target = nil
		w.logger.Debug().Int("unit_id", int(id)).Str("squad", squad).Msg("Unit released")
	}
}

// Target returns where a unit was last commanded to go
func (w *World) Target(id units.ID) (core.Position, bool) {
	a, ok := w.actors[id]
	if !ok || a.target == nil {
		return core.Position{}, false
	}
	return *a.target, true
}

// Advance moves the world forward one tick: movement, then damage, then
// what our side can see
func (w *World) Advance() {
	w.tick++
	w.move()
	w.fight()
	w.observe()
}

func (w *World) move() {
	for _, id := range w.ids() {
		a := w.actors[id]
		if a.target == nil {
			continue
		}
		a.unit.Position = w.nextPosition(a.unit, *a.target)
	}
}

// nextPosition walks down the ground distance field toward target. Flyers go
// straight. Units with no path stay put.
func (w *World) nextPosition(u units.Unit, target core.Position) core.Position {
	if t, ok := w.catalog.Lookup(u.Type); ok && t.Flyer {
		return common.StepToward(u.Position, target, w.opts.Speed)
	}

	here := u.Position.Tile()
	if here == target.Tile() {
		return common.StepToward(u.Position, target, w.opts.Speed)
	}
	dm, err := w.terrain.DistanceMap(target.Tile())
	if err != nil {
		return u.Position
	}
	best, bestDist := here, dm.Distance(here)
	for _, n := range here.Neighbors() {
		d := dm.Distance(n)
		if d == mapinfo.Unreachable {
			continue
		}
		if bestDist == mapinfo.Unreachable || d < bestDist {
			best, bestDist = n, d
		}
	}
	if best == here {
		return u.Position
	}
	return common.StepToward(u.Position, best.Center(), w.opts.Speed)
}

func (w *World) fight() {
	damage := make(map[units.ID]int)
	for _, id := range w.ids() {
		a := w.actors[id]
		if targetID, ok := w.closestTarget(a); ok {
			damage[targetID] += w.opts.Damage
		}
	}

	for id, dmg := range damage {
		a := w.actors[id]
		a.unit.HitPoints -= dmg
		if a.unit.HitPoints > 0 {
			continue
		}
		delete(w.actors, id)
		delete(w.known, id)
		w.logger.Debug().
			Int("tick", w.tick).
			Int("unit_id", int(id)).
			Str("type", a.unit.Type).
			Bool("friendly", a.side == friendly).
			Msg("Unit destroyed")
	}
}

func (w *World) closestTarget(a *actor) (units.ID, bool) {
	t, ok := w.catalog.Lookup(a.unit.Type)
	if !ok || !t.CanAttack() {
		return 0, false
	}

	var best units.ID
	bestDist := -1.0
	for _, id := range w.ids() {
		other := w.actors[id]
		if other.side == a.side {
			continue
		}
		r := w.catalog.AttackRange(a.unit.Type, other.unit.Type)
		d := a.unit.Position.DistanceTo(other.unit.Position)
		if r <= 0 || d > float64(r) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, bestDist >= 0
}

func (w *World) observe() {
	for i := range w.visible {
		w.visible[i] = false
	}
	width, height := w.terrain.Width(), w.terrain.Height()
	r := w.opts.SightRange

	for _, u := range w.Friendly() {
		c := u.Position.Tile()
		for x := max(0, c.X-r); x <= min(width-1, c.X+r); x++ {
			for y := max(0, c.Y-r); y <= min(height-1, c.Y+r); y++ {
				w.visible[y*width+x] = true
			}
		}
	}

	for _, u := range w.Hostile() {
		if w.Visible(u.Position.Tile()) {
			w.known[u.ID] = u
		}
	}

	if !w.enemyFound && w.Visible(w.enemyStart.Tile()) {
		w.enemyFound = true
		w.logger.Info().
			Int("tick", w.tick).
			Str("position", w.enemyStart.String()).
			Msg("Enemy start located")
	}
}

// Visible reports whether our side observed the tile on the last tick
func (w *World) Visible(c core.Coordinate) bool {
	if !c.IsValid(w.terrain.Width(), w.terrain.Height()) {
		return false
	}
	return w.visible[c.ToIndex(w.terrain.Width())]
}

func (w *World) ids() []units.ID {
	ids := make([]units.ID, 0, len(w.actors))
	for id := range w.actors {
		ids = append(ids, id)
	}
	return units.SortIDs(ids)
}

func sortUnits(list []units.Unit) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}
