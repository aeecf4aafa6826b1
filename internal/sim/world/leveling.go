package world

import "math"

// TerrainSnapshot records the pre-construction ground under a building so
// leveling can interpolate toward a flat target and cancellation can put
// everything back exactly. Immutable once captured.
type TerrainSnapshot struct {
	Target uint8
	Tiles  []SnapshotTile
}

// SnapshotTile holds one captured tile. Footprint distinguishes building
// tiles (which also get the construction-site ground type) from neighbor
// tiles that are only height-blended.
type SnapshotTile struct {
	Index      int
	GroundType uint8
	Height     uint8
	Footprint  bool
}

var cardinal = []Tile{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

// CaptureTerrain records (type, height) for every in-bounds footprint tile
// plus its cardinal neighbors, deduplicated, and computes the leveling target
// as the rounded mean height over the whole captured set. Out-of-bounds
// tiles are skipped entirely.
func CaptureTerrain(tc *TerrainContext, anchor Tile, w, h int) *TerrainSnapshot {
	snap := &TerrainSnapshot{}
	seen := map[int]bool{}

	add := func(t Tile, footprint bool) {
		if !tc.InBounds(t) {
			return
		}
		idx := tc.Index(t)
		if seen[idx] {
			return
		}
		seen[idx] = true
		snap.Tiles = append(snap.Tiles, SnapshotTile{
			Index:      idx,
			GroundType: tc.GroundType[idx],
			Height:     tc.GroundHeight[idx],
			Footprint:  footprint,
		})
	}

	footprint := Footprint(anchor, w, h)
	for _, t := range footprint {
		add(t, true)
	}
	for _, t := range footprint {
		for _, d := range cardinal {
			add(Tile{X: t.X + d.X, Y: t.Y + d.Y}, false)
		}
	}

	if len(snap.Tiles) > 0 {
		sum := 0
		for _, st := range snap.Tiles {
			sum += int(st.Height)
		}
		snap.Target = uint8(math.Round(float64(sum) / float64(len(snap.Tiles))))
	}
	return snap
}

// Apply blends every captured tile's height toward the target at the given
// progress and marks footprint tiles as construction site once progress is
// past zero. Heights interpolate in the uint8 domain with rounding. Returns
// whether any tile actually changed; re-applying the same progress is a
// no-op.
func (snap *TerrainSnapshot) Apply(tc *TerrainContext, progress float64) bool {
	if snap == nil {
		return false
	}
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}

	changed := false
	for _, st := range snap.Tiles {
		want := lerpHeight(st.Height, snap.Target, progress)
		if tc.GroundHeight[st.Index] != want {
			tc.GroundHeight[st.Index] = want
			changed = true
		}
		if st.Footprint && progress > 0 && tc.GroundType[st.Index] != GroundConstructionSite {
			tc.GroundType[st.Index] = GroundConstructionSite
			changed = true
		}
	}
	if changed {
		tc.notifyChanged()
	}
	return changed
}

// Restore reverts every captured tile to its recorded original ground type
// and height. Returns false (no change) for a nil snapshot or when the
// terrain already matches.
func (snap *TerrainSnapshot) Restore(tc *TerrainContext) bool {
	if snap == nil {
		return false
	}
	changed := false
	for _, st := range snap.Tiles {
		if tc.GroundHeight[st.Index] != st.Height {
			tc.GroundHeight[st.Index] = st.Height
			changed = true
		}
		if tc.GroundType[st.Index] != st.GroundType {
			tc.GroundType[st.Index] = st.GroundType
			changed = true
		}
	}
	if changed {
		tc.notifyChanged()
	}
	return changed
}

func lerpHeight(from, to uint8, progress float64) uint8 {
	v := float64(from) + (float64(to)-float64(from))*progress
	return uint8(math.Round(v))
}
