package engine

const (
	MinPlayers = 3
	MaxPlayers = 10
	Rounds     = 3
)

// Rules holds the optional rule flags of a table.
type Rules struct {
	WithoutDeadlocks bool `json:"without_deadlocks"` // deadlock tiles cannot be built
	SkipLoosers      bool `json:"skip_loosers"`      // players with broken tools get no gold
}

// GameConfig holds configuration for creating a new game.
type GameConfig struct {
	Rules   Rules
	Catalog Catalog // zero value means DefaultCatalog
}

func DefaultConfig() GameConfig {
	return GameConfig{
		Catalog: DefaultCatalog(),
	}
}

// roleSplit maps the player count to the number of bad and good role cards.
var roleSplit = map[int][2]int{
	3:  {1, 3},
	4:  {1, 4},
	5:  {2, 4},
	6:  {2, 5},
	7:  {3, 5},
	8:  {3, 6},
	9:  {3, 7},
	10: {4, 7},
}

func handSize(players int) int {
	switch {
	case players <= 5:
		return 6
	case players <= 7:
		return 5
	default:
		return 4
	}
}

// badShare is the gold each saboteur takes when the deck runs out.
func badShare(bads int) int {
	switch {
	case bads <= 0:
		return 0
	case bads == 1:
		return 4
	case bads <= 3:
		return 3
	default:
		return 2
	}
}

// goodPayouts caps the number of nuggets handed out when gold is found.
func goodPayouts(players int) int {
	return min(players, 9)
}
