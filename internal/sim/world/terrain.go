package world

// Ground type palette. The renderer maps these to texture atlas entries; the
// simulation only cares about passability and the construction-site marker.
const (
	GroundGrass uint8 = iota
	GroundSand
	GroundEarth
	GroundRock
	GroundWater
	GroundConstructionSite
)

// TerrainContext bundles the shared terrain buffers handed to the leveling
// functions. The buffers are owned by the map subsystem; nothing here copies
// or caches them. Changed is invoked at most once per mutating call, so the
// renderer knows a re-upload is due; it may be nil.
type TerrainContext struct {
	Width  int
	Height int

	GroundType   []uint8
	GroundHeight []uint8

	Changed func()
}

func NewTerrainContext(width, height int) *TerrainContext {
	return &TerrainContext{
		Width:        width,
		Height:       height,
		GroundType:   make([]uint8, width*height),
		GroundHeight: make([]uint8, width*height),
	}
}

func (tc *TerrainContext) InBounds(t Tile) bool {
	return t.X >= 0 && t.X < tc.Width && t.Y >= 0 && t.Y < tc.Height
}

// Index packs a tile into its flat array offset. Only valid for in-bounds
// tiles.
func (tc *TerrainContext) Index(t Tile) int {
	return t.Y*tc.Width + t.X
}

// Passable reports whether units can stand on the tile. Out-of-bounds tiles
// are impassable.
func (tc *TerrainContext) Passable(t Tile) bool {
	if !tc.InBounds(t) {
		return false
	}
	switch tc.GroundType[tc.Index(t)] {
	case GroundWater, GroundRock:
		return false
	}
	return true
}

func (tc *TerrainContext) notifyChanged() {
	if tc.Changed != nil {
		tc.Changed()
	}
}
