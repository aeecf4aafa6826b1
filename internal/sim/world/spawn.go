package world

// spawnForCompleted fires once when a building's construction reaches the
// terminal phase and runs the per-type unit spawn policy: scan expanding
// square rings around the anchor, in row-major order within each ring
// perimeter, placing one unit per free tile. Requesting more units than the
// rings can hold is not an error; the excess is simply not spawned.
func (w *World) spawnForCompleted(st *ConstructionState) {
	b := w.buildings[st.Building]
	if b == nil {
		return
	}
	def, ok := w.cats.Buildings.Defs[b.Type]
	if !ok || def.Spawn == nil || def.Spawn.Count <= 0 {
		return
	}

	remaining := def.Spawn.Count
	maxRadius := w.tun.SpawnRingMaxRadius
	for r := 1; r <= maxRadius && remaining > 0; r++ {
		for _, t := range ringTiles(b.Anchor, r) {
			if remaining == 0 {
				break
			}
			if !w.tileFree(t) {
				continue
			}
			w.placeUnit(&Unit{
				Type:       def.Spawn.Unit,
				Pos:        t,
				Player:     b.Player,
				Selectable: def.Spawn.Selectable,
			})
			remaining--
		}
	}
}

// ringTiles lists the perimeter of the square ring at the given radius in
// row-major order (top row, then side pairs per row, then bottom row).
func ringTiles(center Tile, radius int) []Tile {
	out := make([]Tile, 0, 8*radius)
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			dx := x - center.X
			if dx < 0 {
				dx = -dx
			}
			dy := y - center.Y
			if dy < 0 {
				dy = -dy
			}
			if dx != radius && dy != radius {
				continue
			}
			out = append(out, Tile{X: x, Y: y})
		}
	}
	return out
}

func (w *World) tileFree(t Tile) bool {
	if !w.terrain.Passable(t) {
		return false
	}
	idx := w.terrain.Index(t)
	if _, occupied := w.buildingAt[idx]; occupied {
		return false
	}
	return !w.unitAt[idx]
}

func (w *World) placeUnit(u *Unit) {
	w.units = append(w.units, u)
	w.unitAt[w.terrain.Index(u.Pos)] = true
}
