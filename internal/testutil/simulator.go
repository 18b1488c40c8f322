package testutil

import "github.com/mitchelldurbincs/tactician/internal/game/core"

// SimCall records one combat simulation request
type SimCall struct {
	Center core.Position
	Radius int
}

// ScriptedSimulator returns Score for every simulation and records the calls.
// Change Score between ticks to script a fight.
type ScriptedSimulator struct {
	Score float64
	Calls []SimCall
}

func (s *ScriptedSimulator) Simulate(center core.Position, radius int) float64 {
	s.Calls = append(s.Calls, SimCall{Center: center, Radius: radius})
	return s.Score
}
