package squad

import (
	"fmt"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
)

// OrderType is the kind of standing order a squad follows
type OrderType int

const (
	OrderNone OrderType = iota
	OrderIdle
	OrderAttack
	OrderDefend
	OrderRegroup
	OrderDrop
)

func (t OrderType) String() string {
	switch t {
	case OrderNone:
		return "none"
	case OrderIdle:
		return "idle"
	case OrderAttack:
		return "attack"
	case OrderDefend:
		return "defend"
	case OrderRegroup:
		return "regroup"
	case OrderDrop:
		return "drop"
	default:
		return fmt.Sprintf("OrderType(%d)", int(t))
	}
}

// Order is a squad's standing instruction. Status is a free-form label for observers.
type Order struct {
	Type     OrderType
	Position core.Position
	Radius   int
	Status   string
}

func NewOrder(t OrderType, pos core.Position, radius int, status string) Order {
	return Order{Type: t, Position: pos, Radius: radius, Status: status}
}

func (o Order) String() string {
	return fmt.Sprintf("%s %s r=%d", o.Type, o.Position, o.Radius)
}
