package history

import (
	"github.com/mitchelldurbincs/tactician/internal/game/events"
)

// Kind tells decision records from state change records
type Kind string

const (
	KindDecision    Kind = "decision"
	KindStateChange Kind = "state_change"
)

// Record is one entry in a squad's decision history
type Record struct {
	Kind    Kind   `json:"kind"`
	Session string `json:"session_id"`
	Tick    int    `json:"tick"`
	Squad   string `json:"squad"`

	// Decision fields
	Retreat  bool    `json:"retreat,omitempty"`
	Held     bool    `json:"held,omitempty"`
	Score    float64 `json:"score,omitempty"`
	Reason   string  `json:"reason,omitempty"`
	RegroupX int     `json:"regroup_x,omitempty"`
	RegroupY int     `json:"regroup_y,omitempty"`

	// State change fields
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// FromEvent converts squad events into records. Other events are skipped.
func FromEvent(e events.Event) (Record, bool) {
	switch ev := e.(type) {
	case *events.RegroupDecisionEvent:
		return Record{
			Kind:     KindDecision,
			Session:  ev.SessionID(),
			Tick:     ev.Tick(),
			Squad:    ev.Squad,
			Retreat:  ev.Retreat,
			Held:     ev.Held,
			Score:    ev.Score,
			Reason:   ev.Reason,
			RegroupX: ev.RegroupPoint.X,
			RegroupY: ev.RegroupPoint.Y,
		}, true
	case *events.SquadStateChangedEvent:
		return Record{
			Kind:    KindStateChange,
			Session: ev.SessionID(),
			Tick:    ev.Tick(),
			Squad:   ev.Squad,
			From:    ev.From,
			To:      ev.To,
		}, true
	default:
		return Record{}, false
	}
}
