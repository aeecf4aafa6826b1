package world

import "math"

// TerritoryMap holds per-tile ownership derived from building placement.
// It is rebuilt wholesale on structural change (building added or removed),
// never patched incrementally and never touched mid-tick.
type TerritoryMap struct {
	width  int
	height int
	owner  []Player
	dist   []float64

	version uint64
}

func NewTerritoryMap(width, height int) *TerritoryMap {
	tm := &TerritoryMap{
		width:  width,
		height: height,
		owner:  make([]Player, width*height),
		dist:   make([]float64, width*height),
	}
	tm.reset()
	return tm
}

func (tm *TerritoryMap) reset() {
	for i := range tm.owner {
		tm.owner[i] = NoOwner
		tm.dist[i] = math.Inf(1)
	}
}

// Version increments on every rebuild; overlays use it to notice staleness.
func (tm *TerritoryMap) Version() uint64 { return tm.version }

// Rebuild recomputes the whole grid from the given buildings, visited in
// slice order. Each building claims every tile within its type's radius that
// is strictly closer to it than to any previously processed building. On
// exactly equal distance the earlier building keeps the tile; that is the
// behavior the game shipped with, an iteration-order artifact rather than a
// designed tie-break rule.
func (tm *TerritoryMap) Rebuild(buildings []*Building, radiusFor func(buildingType string) int) {
	tm.reset()
	tm.version++
	for _, b := range buildings {
		r := radiusFor(b.Type)
		if r <= 0 {
			continue
		}
		tm.claim(b, r)
	}
}

func (tm *TerritoryMap) claim(b *Building, radius int) {
	rsq := float64(radius) * float64(radius)
	for y := b.Anchor.Y - radius; y <= b.Anchor.Y+radius; y++ {
		if y < 0 || y >= tm.height {
			continue
		}
		for x := b.Anchor.X - radius; x <= b.Anchor.X+radius; x++ {
			if x < 0 || x >= tm.width {
				continue
			}
			dx := float64(x - b.Anchor.X)
			dy := float64(y - b.Anchor.Y)
			dsq := dx*dx + dy*dy
			if dsq > rsq {
				continue
			}
			i := y*tm.width + x
			d := math.Sqrt(dsq)
			if d < tm.dist[i] {
				tm.owner[i] = b.Player
				tm.dist[i] = d
			}
		}
	}
}

// Owner returns the tile's owner, NoOwner for unclaimed or out-of-bounds
// tiles.
func (tm *TerritoryMap) Owner(x, y int) Player {
	if x < 0 || x >= tm.width || y < 0 || y >= tm.height {
		return NoOwner
	}
	return tm.owner[y*tm.width+x]
}

func (tm *TerritoryMap) IsOwnedBy(x, y int, p Player) bool {
	return tm.Owner(x, y) == p
}

// OwnedTileCount reports how many tiles a player holds.
func (tm *TerritoryMap) OwnedTileCount(p Player) int {
	n := 0
	for _, o := range tm.owner {
		if o == p {
			n++
		}
	}
	return n
}
