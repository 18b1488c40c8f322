package squad

import "fmt"

// State is what a squad is doing this tick
type State int

const (
	// Holding covers every order other than Attack
	Holding State = iota
	Attacking
	Regrouping
)

func (s State) String() string {
	switch s {
	case Holding:
		return "holding"
	case Attacking:
		return "attacking"
	case Regrouping:
		return "regrouping"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func stateFor(order Order, regrouping bool) State {
	switch {
	case order.Type != OrderAttack:
		return Holding
	case regrouping:
		return Regrouping
	default:
		return Attacking
	}
}
