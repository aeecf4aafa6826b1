package world

// BuildingID is a stable integer handle assigned at placement time. Zero is
// never a valid id.
type BuildingID uint32

// Player indexes into the game's player list.
type Player int8

const NoOwner Player = -1

type Tile struct {
	X int
	Y int
}

// Building is the world-side record of a placed building. Economy state
// (inventory, construction) lives in the dedicated stores keyed by ID.
type Building struct {
	ID     BuildingID
	Type   string
	Anchor Tile
	Player Player
}

// Unit is a spawn record only; movement and behavior are out of scope.
type Unit struct {
	Type       string
	Pos        Tile
	Player     Player
	Selectable bool
}

// Footprint returns the tiles a building of size w x h occupies, anchored at
// its north-west corner, in row-major order. Tiles may fall outside the map;
// callers bounds-check.
func Footprint(anchor Tile, w, h int) []Tile {
	out := make([]Tile, 0, w*h)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			out = append(out, Tile{X: anchor.X + dx, Y: anchor.Y + dy})
		}
	}
	return out
}
