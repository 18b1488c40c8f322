package squad

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/events"
	"github.com/mitchelldurbincs/tactician/internal/game/mapinfo"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
	"github.com/mitchelldurbincs/tactician/internal/testutil"
)

type recordingExecutor struct {
	squad     string
	role      units.Role
	ids       []units.ID
	executed  []Order
	regrouped []core.Position
	fronts    []units.ID
	trace     *[]string
}

func (e *recordingExecutor) SetUnits(ids []units.ID) {
	e.ids = ids
	if e.trace != nil && e.role == units.RoleMelee {
		*e.trace = append(*e.trace, e.squad)
	}
}

func (e *recordingExecutor) Execute(order Order)       { e.executed = append(e.executed, order) }
func (e *recordingExecutor) Regroup(pos core.Position) { e.regrouped = append(e.regrouped, pos) }
func (e *recordingExecutor) SetFrontUnit(id units.ID)  { e.fronts = append(e.fronts, id) }

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.events = append(p.events, e)
}

func (p *recordingPublisher) ofType(eventType string) []events.Event {
	var out []events.Event
	for _, e := range p.events {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type releaseCall struct {
	id    units.ID
	squad string
}

type harness struct {
	source    *testutil.FakeSource
	sim       *testutil.ScriptedSimulator
	terrain   *mapinfo.Map
	locations *StaticLocations
	publisher *recordingPublisher
	executors map[string]map[units.Role]*recordingExecutor
	trace     []string
	released  []releaseCall
	logs      *bytes.Buffer
	registry  *Registry
}

var openField = []string{
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
}

func newHarness(t *testing.T, rows []string, mutate func(*Dependencies)) *harness {
	t.Helper()

	terrain, err := mapinfo.NewFromTerrain(testutil.ParseTerrain(rows...), core.DefaultDepotClearance, mapinfo.Options{Logger: testutil.NopLogger()})
	require.NoError(t, err)

	logger, buf := testutil.BufferLogger()
	h := &harness{
		source:    testutil.NewFakeSource(),
		sim:       &testutil.ScriptedSimulator{},
		terrain:   terrain,
		locations: &StaticLocations{Home: testutil.Pos(0, 0)},
		publisher: &recordingPublisher{},
		executors: make(map[string]map[units.Role]*recordingExecutor),
		logs:      buf,
	}

	deps := Dependencies{
		Terrain:   terrain,
		Units:     h.source,
		Catalog:   units.DefaultCatalog(),
		Simulator: h.sim,
		Locations: h.locations,
		Publisher: h.publisher,
		Tactics:   DefaultTactics(),
		Session:   "test-session",
		Logger:    logger,
		Executors: func(squadName string, role units.Role) Executor {
			if h.executors[squadName] == nil {
				h.executors[squadName] = make(map[units.Role]*recordingExecutor)
			}
			ex := &recordingExecutor{squad: squadName, role: role, trace: &h.trace}
			h.executors[squadName][role] = ex
			return ex
		},
	}
	if mutate != nil {
		mutate(&deps)
	}

	h.registry, err = NewRegistry(deps, func(id units.ID, squadName string) {
		h.released = append(h.released, releaseCall{id: id, squad: squadName})
	})
	require.NoError(t, err)
	return h
}

func (h *harness) squad(t *testing.T, name string, order Order, priority int, members ...units.ID) *Squad {
	t.Helper()
	s, err := h.registry.CreateSquad(name, order, priority)
	require.NoError(t, err)
	for _, id := range members {
		moved, err := h.registry.AssignUnit(id, name)
		require.NoError(t, err)
		require.True(t, moved)
	}
	return s
}

func (h *harness) executor(name string, role units.Role) *recordingExecutor {
	return h.executors[name][role]
}
