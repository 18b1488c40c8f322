package states

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/events"
)

// ErrInvalidTransition is returned for a transition the current phase does not allow
var ErrInvalidTransition = errors.New("invalid phase transition")

// Transition represents a phase transition in the history
type Transition struct {
	From      Phase
	To        Phase
	Tick      int
	Timestamp time.Time
	Reason    string
}

// Machine tracks the session lifecycle. Transitions may come from the tick
// goroutine or from a signal handler, so it is guarded.
type Machine struct {
	mu             sync.RWMutex
	current        Phase
	history        []Transition
	maxHistorySize int
	session        string
	publisher      events.Publisher
	logger         zerolog.Logger
	now            func() time.Time
}

// NewMachine creates a machine in PhaseInitializing. publisher may be nil.
func NewMachine(session string, publisher events.Publisher, logger zerolog.Logger) *Machine {
	if publisher == nil {
		publisher = events.Discard
	}
	return &Machine{
		current:        PhaseInitializing,
		history:        make([]Transition, 0, 8),
		maxHistorySize: 100,
		session:        session,
		publisher:      publisher,
		logger:         logger.With().Str("component", "session_phase").Logger(),
		now:            time.Now,
	}
}

// Current returns the current phase
func (m *Machine) Current() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.current
}

// TransitionTo moves to target if the current phase allows it
func (m *Machine) TransitionTo(target Phase, tick int, reason string) error {
	m.mu.Lock()
	from := m.current
	if !from.CanTransitionTo(target) {
		m.mu.Unlock()
		return fmt.Errorf("%w: from %s to %s", ErrInvalidTransition, from, target)
	}

	m.current = target
	m.addToHistory(Transition{
		From:      from,
		To:        target,
		Tick:      tick,
		Timestamp: m.now(),
		Reason:    reason,
	})
	m.mu.Unlock()

	// Publish outside the lock; handlers may read the phase
	m.publisher.Publish(events.NewPhaseChangedEvent(m.session, tick, from.String(), target.String(), reason))
	m.logger.Info().
		Str("from_phase", from.String()).
		Str("to_phase", target.String()).
		Int("tick", tick).
		Str("reason", reason).
		Msg("Phase transition completed")
	return nil
}

// addToHistory adds a transition to the history, maintaining max size
func (m *Machine) addToHistory(t Transition) {
	m.history = append(m.history, t)
	if len(m.history) > m.maxHistorySize {
		m.history = m.history[len(m.history)-m.maxHistorySize:]
	}
}

// History returns a copy of the transition history
func (m *Machine) History() []Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make([]Transition, len(m.history))
	copy(history, m.history)
	return history
}

// CanTransitionTo checks if a transition to the target phase is allowed
func (m *Machine) CanTransitionTo(target Phase) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.current.CanTransitionTo(target)
}
