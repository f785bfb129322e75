package schemas

// Ship categories as they appear on the fleet page, in page order.
const (
	ShipLightFighter   = "light_fighter"
	ShipHeavyFighter   = "heavy_fighter"
	ShipCruiser        = "cruiser"
	ShipBattleship     = "battleship"
	ShipBattlecruiser  = "battlecruiser"
	ShipBomber         = "bomber"
	ShipDestroyer      = "destroyer"
	ShipDeathstar      = "deathstar"
	ShipReaper         = "reaper"
	ShipPathfinder     = "pathfinder"
	ShipSmallCargo     = "small_cargo_ship"
	ShipLargeCargo     = "large_cargo_ship"
	ShipColonyShip     = "colony_ship"
	ShipRecycler       = "recycler"
	ShipEspionageProbe = "espionage_probe"
)

// BattleShips lists the #battleships entries in page order.
var BattleShips = []string{
	ShipLightFighter, ShipHeavyFighter, ShipCruiser, ShipBattleship, ShipBattlecruiser,
	ShipBomber, ShipDestroyer, ShipDeathstar, ShipReaper, ShipPathfinder,
}

// CivilShips lists the #civilships entries in page order.
var CivilShips = []string{
	ShipSmallCargo, ShipLargeCargo, ShipColonyShip, ShipRecycler, ShipEspionageProbe,
}

// Fleet maps a ship category to the number of ships stationed. A nil Fleet
// is an empty one.
type Fleet map[string]int

// Total returns the number of ships across all categories.
func (f Fleet) Total() int {
	total := 0
	for _, n := range f {
		total += n
	}
	return total
}

// IsZero reports whether there is nothing worth protecting.
func (f Fleet) IsZero() bool { return f.Total() == 0 }
