package units

import "fmt"

// DefaultShortRange is the ground weapon range at or below which a unit fights as melee
const DefaultShortRange = 32

// Role is the combat role a squad member is dispatched under
type Role int

const (
	RoleNone Role = iota
	RoleMelee
	RoleRanged
	RoleDetector
	RoleTransport
	RoleSiege
	RoleHealer
)

// Roles lists every dispatchable role in dispatch order
var Roles = []Role{RoleMelee, RoleRanged, RoleSiege, RoleHealer, RoleTransport, RoleDetector}

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleMelee:
		return "melee"
	case RoleRanged:
		return "ranged"
	case RoleDetector:
		return "detector"
	case RoleTransport:
		return "transport"
	case RoleSiege:
		return "siege"
	case RoleHealer:
		return "healer"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Classify assigns a unit type to exactly one role. Precedence: healer, siege,
// mobile detector, transport, ranged, melee. Types without a ground weapon that
// match none of the special roles get RoleNone.
func Classify(t Type, shortRange int) Role {
	switch {
	case t.Healer:
		return RoleHealer
	case t.Siege:
		return RoleSiege
	case t.Detector && !t.Building:
		return RoleDetector
	case t.Transport:
		return RoleTransport
	case t.ForceRanged || (t.HasGroundWeapon && t.GroundRange > shortRange):
		return RoleRanged
	case t.HasGroundWeapon:
		return RoleMelee
	default:
		return RoleNone
	}
}
