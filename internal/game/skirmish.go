package game

import (
	"fmt"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/squad"
	"github.com/mitchelldurbincs/tactician/internal/game/units"
)

// Squad names used by the demo skirmish
const (
	DefenseSquad = "defense"
	MainSquad    = "main"
)

var (
	friendlyRoster = []string{
		"Terran_Marine",
		"Terran_Marine",
		"Terran_Firebat",
		"Terran_Medic",
		"Terran_Siege_Tank_Tank_Mode",
		"Terran_Marine",
		"Terran_Science_Vessel",
		"Terran_Vulture",
	}
	enemyRoster = []string{
		"Zerg_Zergling",
		"Zerg_Zergling",
		"Zerg_Hydralisk",
		"Zerg_Zergling",
		"Zerg_Sunken_Colony",
	}
)

// SkirmishConfig sizes the demo armies
type SkirmishConfig struct {
	SquadSize  int
	EnemyCount int
	// Defenders is how many friendly units stay home in the defense squad
	Defenders int
}

// DefaultSkirmishConfig returns the default demo armies
func DefaultSkirmishConfig() SkirmishConfig {
	return SkirmishConfig{SquadSize: 8, EnemyCount: 10, Defenders: 2}
}

// SetupSkirmish spawns both armies around their starts and creates the demo
// squads: a defense squad holding home and a higher priority main squad
// attacking the enemy start. Every friendly unit first joins defense; all but
// the first Defenders are then pulled into main.
func SetupSkirmish(e *Engine, cfg SkirmishConfig) error {
	w := e.World()
	reg := e.Registry()

	friendlies, err := spawnAround(e, w.HomeBase(), friendlyRoster, cfg.SquadSize, w.SpawnFriendly)
	if err != nil {
		return fmt.Errorf("spawning friendly army: %w", err)
	}
	enemyStart, _ := w.EnemyStart()
	if _, err := spawnAround(e, enemyStart, enemyRoster, cfg.EnemyCount, w.SpawnEnemy); err != nil {
		return fmt.Errorf("spawning enemy army: %w", err)
	}

	if _, err := reg.CreateSquad(DefenseSquad, squad.NewOrder(squad.OrderDefend, w.HomeBase(), 400, "holding home"), 1); err != nil {
		return err
	}
	if _, err := reg.CreateSquad(MainSquad, squad.NewOrder(squad.OrderAttack, enemyStart, 800, "attacking enemy start"), 2); err != nil {
		return err
	}

	for i, id := range friendlies {
		if _, err := reg.AssignUnit(id, DefenseSquad); err != nil {
			return err
		}
		if i < cfg.Defenders {
			continue
		}
		if _, err := reg.AssignUnit(id, MainSquad); err != nil {
			return err
		}
	}
	return nil
}

// spawnAround places count units from roster on the walkable tiles closest to
// center, in ground distance order, skipping the center tile itself
func spawnAround(e *Engine, center core.Position, roster []string, count int, spawn func(string, core.Position) units.ID) ([]units.ID, error) {
	tiles, err := e.Map().ClosestTilesTo(center.Tile())
	if err != nil {
		return nil, err
	}
	if len(tiles) > 0 && tiles[0] == center.Tile() {
		tiles = tiles[1:]
	}
	if len(tiles) < count {
		return nil, fmt.Errorf("only %d free tiles around %s for %d units", len(tiles), center, count)
	}

	ids := make([]units.ID, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, spawn(roster[i%len(roster)], tiles[i].Center()))
	}
	return ids, nil
}
