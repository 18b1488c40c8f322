package testutil

import (
	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
)

// NewUnit returns a completed, living unit snapshot
func NewUnit(id units.ID, typ string, pos core.Position) units.Unit {
	return units.Unit{
		ID:        id,
		Type:      typ,
		Position:  pos,
		HitPoints: 40,
		Completed: true,
		Exists:    true,
	}
}

// FakeSource is an in-memory units.Source driven directly by tests
type FakeSource struct {
	tick    int
	own     map[units.ID]units.Unit
	enemies []units.Unit
}

func NewFakeSource() *FakeSource {
	return &FakeSource{own: make(map[units.ID]units.Unit)}
}

func (s *FakeSource) Tick() int { return s.tick }

func (s *FakeSource) Unit(id units.ID) (units.Unit, bool) {
	u, ok := s.own[id]
	return u, ok
}

func (s *FakeSource) Enemies() []units.Unit { return s.enemies }

func (s *FakeSource) SetTick(tick int) { s.tick = tick }
func (s *FakeSource) Advance(n int)    { s.tick += n }

// Add registers or replaces one of our units
func (s *FakeSource) Add(u units.Unit) {
	s.own[u.ID] = u
}

// Spawn adds a completed unit of the given type at pos
func (s *FakeSource) Spawn(id units.ID, typ string, pos core.Position) {
	s.Add(NewUnit(id, typ, pos))
}

// Move relocates one of our units
func (s *FakeSource) Move(id units.ID, pos core.Position) {
	if u, ok := s.own[id]; ok {
		u.Position = pos
		s.own[id] = u
	}
}

// Kill drops hit points to zero but keeps the unit visible
func (s *FakeSource) Kill(id units.ID) {
	if u, ok := s.own[id]; ok {
		u.HitPoints = 0
		s.own[id] = u
	}
}

// Remove makes a unit disappear from the source
func (s *FakeSource) Remove(id units.ID) {
	delete(s.own, id)
}

// AddEnemy appends an enemy snapshot
func (s *FakeSource) AddEnemy(u units.Unit) {
	s.enemies = append(s.enemies, u)
}

// ClearEnemies forgets every enemy
func (s *FakeSource) ClearEnemies() {
	s.enemies = nil
}
