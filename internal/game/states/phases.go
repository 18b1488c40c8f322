package states

import "fmt"

// Phase is the lifecycle phase of a tactical session
type Phase int

const (
	// PhaseInitializing - map indexed, squads being created
	PhaseInitializing Phase = iota

	// PhaseRunning - ticks are processed
	PhaseRunning

	// PhasePaused - ticks are skipped until resumed
	PhasePaused

	// PhaseEnded - final state
	PhaseEnded

	// PhaseError - a tick failed; the session cannot continue
	PhaseError
)

// String returns the string representation of a Phase
func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "Initializing"
	case PhaseRunning:
		return "Running"
	case PhasePaused:
		return "Paused"
	case PhaseEnded:
		return "Ended"
	case PhaseError:
		return "Error"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the phase represents a terminal state
func (p Phase) IsTerminal() bool {
	return p == PhaseEnded || p == PhaseError
}

// CanTick returns true if the engine processes ticks in this phase
func (p Phase) CanTick() bool {
	return p == PhaseRunning
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p Phase) AllowedTransitions() []Phase {
	switch p {
	case PhaseInitializing:
		return []Phase{PhaseRunning, PhaseError}
	case PhaseRunning:
		return []Phase{PhasePaused, PhaseEnded, PhaseError}
	case PhasePaused:
		return []Phase{PhaseRunning, PhaseEnded, PhaseError}
	default:
		return []Phase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p Phase) CanTransitionTo(target Phase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase is the inverse of String. Unknown names parse as PhaseError.
func ParsePhase(s string) Phase {
	for p := PhaseInitializing; p <= PhaseError; p++ {
		if p.String() == s {
			return p
		}
	}
	return PhaseError
}
