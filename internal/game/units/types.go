package units

// Type describes the static attributes of a unit type. Ranges are in world units.
type Type struct {
	Name            string
	HasGroundWeapon bool
	GroundRange     int
	HasAirWeapon    bool
	AirRange        int

	Flyer     bool
	Detector  bool
	Building  bool
	Worker    bool
	Transport bool
	Siege     bool
	Healer    bool

	// ForceRanged marks types whose damage does not come from a regular ground
	// weapon but which must still be handled as ranged.
	ForceRanged bool
	// IgnoreForFront excludes the type when picking the squad member closest
	// to the target (spotters that hover behind the army).
	IgnoreForFront bool
}

// CanAttack reports whether the type has any weapon
func (t Type) CanAttack() bool {
	return t.HasGroundWeapon || t.HasAirWeapon || t.ForceRanged
}

// Catalog maps type names to their attributes
type Catalog struct {
	types map[string]Type
}

// NewCatalog creates a catalog from the given types
func NewCatalog(types ...Type) *Catalog {
	c := &Catalog{types: make(map[string]Type, len(types))}
	for _, t := range types {
		c.Register(t)
	}
	return c
}

// Register adds or replaces a type
func (c *Catalog) Register(t Type) {
	c.types[t.Name] = t
}

// Lookup returns the attributes for a type name
func (c *Catalog) Lookup(name string) (Type, bool) {
	t, ok := c.types[name]
	return t, ok
}

// Known reports whether the catalog recognises the type name
func (c *Catalog) Known(name string) bool {
	_, ok := c.types[name]
	return ok
}

// Len returns the number of registered types
func (c *Catalog) Len() int {
	return len(c.types)
}

// AttackRange returns how far a unit of type attacker can hit a unit of type
// target: the air weapon range against flyers, the ground weapon range otherwise.
// Zero when either type is unknown or the attacker has no suitable weapon.
func (c *Catalog) AttackRange(attacker, target string) int {
	a, ok := c.Lookup(attacker)
	if !ok {
		return 0
	}
	t, ok := c.Lookup(target)
	if !ok {
		return 0
	}
	if t.Flyer {
		if !a.HasAirWeapon {
			return 0
		}
		return a.AirRange
	}
	if !a.HasGroundWeapon {
		return 0
	}
	return a.GroundRange
}

const tile = 32

// DefaultCatalog returns the built-in unit types
func DefaultCatalog() *Catalog {
	return NewCatalog(
		// Terran
		Type{Name: "Terran_SCV", Worker: true, HasGroundWeapon: true, GroundRange: 10},
		Type{Name: "Terran_Marine", HasGroundWeapon: true, GroundRange: 4 * tile, HasAirWeapon: true, AirRange: 4 * tile},
		Type{Name: "Terran_Firebat", HasGroundWeapon: true, GroundRange: tile},
		Type{Name: "Terran_Medic", Healer: true},
		Type{Name: "Terran_Vulture", HasGroundWeapon: true, GroundRange: 5 * tile},
		Type{Name: "Terran_Goliath", HasGroundWeapon: true, GroundRange: 6 * tile, HasAirWeapon: true, AirRange: 5 * tile},
		Type{Name: "Terran_Siege_Tank_Tank_Mode", Siege: true, HasGroundWeapon: true, GroundRange: 7 * tile},
		Type{Name: "Terran_Siege_Tank_Siege_Mode", Siege: true, HasGroundWeapon: true, GroundRange: 12 * tile},
		Type{Name: "Terran_Wraith", Flyer: true, HasGroundWeapon: true, GroundRange: 5 * tile, HasAirWeapon: true, AirRange: 5 * tile},
		Type{Name: "Terran_Dropship", Flyer: true, Transport: true},
		Type{Name: "Terran_Science_Vessel", Flyer: true, Detector: true, IgnoreForFront: true},
		Type{Name: "Terran_Missile_Turret", Building: true, Detector: true, HasAirWeapon: true, AirRange: 7 * tile},
		Type{Name: "Terran_Bunker", Building: true},

		// Protoss
		Type{Name: "Protoss_Probe", Worker: true, HasGroundWeapon: true, GroundRange: tile},
		Type{Name: "Protoss_Zealot", HasGroundWeapon: true, GroundRange: 15},
		Type{Name: "Protoss_Dragoon", HasGroundWeapon: true, GroundRange: 4 * tile, HasAirWeapon: true, AirRange: 4 * tile},
		Type{Name: "Protoss_Dark_Templar", HasGroundWeapon: true, GroundRange: 15},
		Type{Name: "Protoss_Reaver", ForceRanged: true},
		Type{Name: "Protoss_Shuttle", Flyer: true, Transport: true},
		Type{Name: "Protoss_Observer", Flyer: true, Detector: true, IgnoreForFront: true},
		Type{Name: "Protoss_Photon_Cannon", Building: true, Detector: true, HasGroundWeapon: true, GroundRange: 7 * tile, HasAirWeapon: true, AirRange: 7 * tile},

		// Zerg
		Type{Name: "Zerg_Drone", Worker: true, HasGroundWeapon: true, GroundRange: tile},
		Type{Name: "Zerg_Zergling", HasGroundWeapon: true, GroundRange: 15},
		Type{Name: "Zerg_Hydralisk", HasGroundWeapon: true, GroundRange: 4 * tile, HasAirWeapon: true, AirRange: 4 * tile},
		Type{Name: "Zerg_Ultralisk", HasGroundWeapon: true, GroundRange: 25},
		Type{Name: "Zerg_Mutalisk", Flyer: true, HasGroundWeapon: true, GroundRange: 3 * tile, HasAirWeapon: true, AirRange: 3 * tile},
		Type{Name: "Zerg_Scourge", Flyer: true, HasAirWeapon: true, AirRange: 3, ForceRanged: true},
		Type{Name: "Zerg_Overlord", Flyer: true, Detector: true, IgnoreForFront: true},
		Type{Name: "Zerg_Sunken_Colony", Building: true, HasGroundWeapon: true, GroundRange: 7 * tile},
	)
}
