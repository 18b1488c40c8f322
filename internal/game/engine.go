package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/combat"
	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/events"
	"github.com/mitchelldurbincs/tactician/internal/game/mapinfo"
	"github.com/mitchelldurbincs/tactician/internal/game/squad"
	"github.com/mitchelldurbincs/tactician/internal/game/states"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
	"github.com/mitchelldurbincs/tactician/internal/monitoring"
)

// ErrNotRunning is returned by Step outside PhaseRunning
var ErrNotRunning = errors.New("session is not running")

// pausePoll is how often a paused Run with no tick interval checks for resume
const pausePoll = 10 * time.Millisecond

// EngineConfig holds everything needed to start a session
type EngineConfig struct {
	Terrain    core.TerrainData
	HomeStart  core.Position
	EnemyStart core.Position

	DepotClearance int
	CacheCapacity  int
	// Catalog defaults to units.DefaultCatalog
	Catalog *units.Catalog
	World   WorldOptions
	// Tactics is used as given; start from squad.DefaultTactics
	Tactics squad.Tactics
	// Override may veto squad retreats; optional
	Override squad.RetreatOverride

	TickBudget    time.Duration
	AlertCooldown time.Duration

	// SessionID defaults to a random UUID
	SessionID string
	// Bus defaults to a new event bus
	Bus    *events.EventBus
	Logger zerolog.Logger
}

// Engine drives one tactical session: every tick it advances the world,
// stamps what was seen on the map, and updates every squad.
type Engine struct {
	session  string
	terrain  *mapinfo.Map
	world    *World
	registry *squad.Registry
	monitor  *monitoring.TickMonitor
	bus      *events.EventBus
	phase    *states.Machine
	logger   zerolog.Logger

	mu      sync.Mutex
	pending *squad.Tactics
}

// NewEngine indexes the terrain and wires the squad registry to a fresh world
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = units.DefaultCatalog()
	}
	if cfg.Bus == nil {
		cfg.Bus = events.NewEventBus(cfg.Logger)
	}
	if cfg.TickBudget <= 0 {
		cfg.TickBudget = monitoring.DefaultTickBudget
	}
	logger := cfg.Logger.With().
		Str("component", "engine").
		Str("session_id", cfg.SessionID).
		Logger()

	terrain, err := mapinfo.NewFromTerrain(cfg.Terrain, cfg.DepotClearance, mapinfo.Options{
		CacheCapacity: cfg.CacheCapacity,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("indexing terrain: %w", err)
	}
	if !terrain.ContainsPosition(cfg.HomeStart) || !terrain.ContainsPosition(cfg.EnemyStart) {
		return nil, fmt.Errorf("%w: start locations %s and %s must be on the map",
			core.ErrInvalidCoordinates, cfg.HomeStart, cfg.EnemyStart)
	}

	world := NewWorld(terrain, cfg.Catalog, cfg.HomeStart, cfg.EnemyStart, cfg.World, cfg.Logger)
	registry, err := squad.NewRegistry(squad.Dependencies{
		Terrain:   terrain,
		Units:     world,
		Catalog:   cfg.Catalog,
		Simulator: combat.NewEstimator(world, cfg.Catalog, cfg.Logger),
		Locations: world,
		Override:  cfg.Override,
		Executors: NewMoveExecutorFactory(world, cfg.Logger),
		Publisher: cfg.Bus,
		Tactics:   cfg.Tactics,
		Session:   cfg.SessionID,
		Logger:    cfg.Logger,
	}, world.Release)
	if err != nil {
		return nil, fmt.Errorf("creating squad registry: %w", err)
	}

	e := &Engine{
		session:  cfg.SessionID,
		terrain:  terrain,
		world:    world,
		registry: registry,
		monitor:  monitoring.NewTickMonitor(cfg.TickBudget, cfg.AlertCooldown, cfg.Logger),
		bus:      cfg.Bus,
		phase:    states.NewMachine(cfg.SessionID, cfg.Bus, cfg.Logger),
		logger:   logger,
	}

	e.bus.Publish(events.NewSessionStartedEvent(e.session, terrain.Width(), terrain.Height(), terrain.SectorCount()))
	e.logger.Info().
		Int("width", terrain.Width()).
		Int("height", terrain.Height()).
		Int("sectors", terrain.SectorCount()).
		Dur("tick_budget", cfg.TickBudget).
		Msg("Engine created successfully")
	return e, nil
}

func (e *Engine) SessionID() string                { return e.session }
func (e *Engine) Map() *mapinfo.Map                { return e.terrain }
func (e *Engine) World() *World                    { return e.world }
func (e *Engine) Registry() *squad.Registry        { return e.registry }
func (e *Engine) Monitor() *monitoring.TickMonitor { return e.monitor }
func (e *Engine) Bus() *events.EventBus            { return e.bus }
func (e *Engine) Phase() states.Phase              { return e.phase.Current() }

// SetTactics queues new thresholds; they take effect at the start of the next
// tick. Safe to call from any goroutine.
func (e *Engine) SetTactics(t squad.Tactics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = &t
}

func (e *Engine) applyPendingTactics() {
	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	if pending != nil {
		e.registry.SetTactics(*pending)
	}
}

// Start moves the session into PhaseRunning
func (e *Engine) Start() error {
	return e.phase.TransitionTo(states.PhaseRunning, e.world.Tick(), "squads ready")
}

func (e *Engine) Pause(reason string) error {
	return e.phase.TransitionTo(states.PhasePaused, e.world.Tick(), reason)
}

func (e *Engine) Resume(reason string) error {
	return e.phase.TransitionTo(states.PhaseRunning, e.world.Tick(), reason)
}

// Stop ends the session. Stopping an ended session is a no-op.
func (e *Engine) Stop(reason string) error {
	if e.phase.Current().IsTerminal() {
		return nil
	}
	if err := e.phase.TransitionTo(states.PhaseEnded, e.world.Tick(), reason); err != nil {
		return err
	}
	m := e.monitor.Metrics()
	e.logger.Info().
		Int("ticks", m.Ticks).
		Int("over_budget", m.OverBudget).
		Dur("mean", m.Mean).
		Dur("peak", m.Peak).
		Str("reason", reason).
		Msg("Session ended")
	return nil
}

// Step runs one tick
func (e *Engine) Step() error {
	if p := e.phase.Current(); !p.CanTick() {
		return fmt.Errorf("%w: phase %s", ErrNotRunning, p)
	}
	e.applyPendingTactics()

	start := time.Now()
	e.world.Advance()
	tick := e.world.Tick()
	mark := time.Now()
	e.monitor.RecordComponent("world", mark.Sub(start))

	e.terrain.Update(tick, e.world.Visible)
	now := time.Now()
	e.monitor.RecordComponent("map", now.Sub(mark))
	mark = now

	violations := e.registry.UpdateAll()
	now = time.Now()
	e.monitor.RecordComponent("squads", now.Sub(mark))

	elapsed := now.Sub(start)
	if e.monitor.Record(tick, elapsed) {
		e.bus.Publish(events.NewTickOverBudgetEvent(e.session, tick, elapsed, e.monitor.Budget()))
	}
	if len(violations) > 0 {
		e.logger.Debug().Int("tick", tick).Int("violations", len(violations)).Msg("Membership violations this tick")
	}
	return nil
}

// Run steps until maxTicks ticks have run (maxTicks <= 0 runs until ctx is
// done). A positive interval paces ticks on a ticker. Paused sessions wait.
func (e *Engine) Run(ctx context.Context, maxTicks int, interval time.Duration) error {
	if e.phase.Current() == states.PhaseInitializing {
		if err := e.Start(); err != nil {
			return err
		}
	}

	var pace <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		pace = ticker.C
	}

	for steps := 0; maxTicks <= 0 || steps < maxTicks; {
		wait := pace
		if wait == nil && e.phase.Current() == states.PhasePaused {
			wait = time.After(pausePoll)
		}
		if wait != nil {
			select {
			case <-ctx.Done():
				_ = e.Stop("context cancelled")
				return ctx.Err()
			case <-wait:
			}
		} else if err := ctx.Err(); err != nil {
			_ = e.Stop("context cancelled")
			return err
		}

		err := e.Step()
		switch {
		case err == nil:
			steps++
		case errors.Is(err, ErrNotRunning):
			if e.phase.Current().IsTerminal() {
				return nil
			}
		default:
			_ = e.phase.TransitionTo(states.PhaseError, e.world.Tick(), err.Error())
			return err
		}
	}
	return e.Stop("tick limit reached")
}
