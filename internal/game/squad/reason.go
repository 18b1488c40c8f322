package squad

import "fmt"

// ReasonCode names the branch that produced a regroup decision
type ReasonCode string

const (
	ReasonNotAttacking       ReasonCode = "not attacking"
	ReasonEmpty              ReasonCode = "empty squad"
	ReasonSimulationDisabled ReasonCode = "combat simulation disabled"
	ReasonNoFront            ReasonCode = "no front unit"
	ReasonNoThreat           ReasonCode = "no enemy in range"
	ReasonWinning            ReasonCode = "simulation favourable"
	ReasonLosing             ReasonCode = "simulation unfavourable"
	ReasonSuppressed         ReasonCode = "retreat suppressed"
)

// Reason is the structured outcome of the last regroup decision.
// Held means hysteresis kept the previous decision instead of the wanted one.
type Reason struct {
	Code    ReasonCode
	Score   float64
	Retreat bool
	Held    bool
}

func (r Reason) String() string {
	switch r.Code {
	case ReasonWinning, ReasonLosing, ReasonSuppressed:
		s := fmt.Sprintf("%s (score %.3f)", r.Code, r.Score)
		if r.Held {
			s += ", held by hysteresis"
		}
		return s
	case "":
		return "none"
	default:
		return string(r.Code)
	}
}
