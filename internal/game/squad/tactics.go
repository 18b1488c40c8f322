package squad

// Tactics holds the tunable thresholds of the squad engine. Distances are in
// world units, windows in ticks.
type Tactics struct {
	UseCombatSimulation bool
	// NearEnemyRadius tags members with an enemy this close
	NearEnemyRadius int
	// RangeBuffer is added to an enemy's attack range when deciding whether a fight is on
	RangeBuffer int
	// RetreatSwitchTicks is the minimum gap between accepted attack/retreat flips
	RetreatSwitchTicks int
	// CombatRegroupRadius is the radius passed to the combat simulator
	CombatRegroupRadius int
	// ShortRangeThreshold separates melee from ranged ground weapons
	ShortRangeThreshold int
}

func DefaultTactics() Tactics {
	return Tactics{
		UseCombatSimulation: true,
		NearEnemyRadius:     400,
		RangeBuffer:         128,
		RetreatSwitchTicks:  100,
		CombatRegroupRadius: 300,
		ShortRangeThreshold: 32,
	}
}
