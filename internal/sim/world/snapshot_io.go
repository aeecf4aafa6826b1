package world

import (
	"fmt"

	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/persistence/snapshot"
	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/sim/catalogs"
	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/sim/tuning"
)

// ExportSnapshot captures the whole world as plain data. Terrain buffers are
// copied so a snapshot written off-thread cannot observe later mutation.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Header:       snapshot.Header{Version: 1, Tick: w.tick},
		MapWidth:     w.terrain.Width,
		MapHeight:    w.terrain.Height,
		GroundType:   append([]uint8(nil), w.terrain.GroundType...),
		GroundHeight: append([]uint8(nil), w.terrain.GroundHeight...),
		NextBuilding: uint32(w.nextBuilding),
	}

	for _, b := range w.Buildings() {
		snap.Buildings = append(snap.Buildings, snapshot.BuildingV1{
			ID: uint32(b.ID), Type: b.Type, X: b.Anchor.X, Y: b.Anchor.Y, Player: int(b.Player),
		})
		if st := w.construction.Get(b.ID); st != nil {
			cv := snapshot.ConstructionV1{
				Building:         uint32(st.Building),
				Elapsed:          st.Elapsed,
				Total:            st.Total,
				Phase:            int(st.Phase),
				Progress:         st.Progress,
				TerrainFinalized: st.TerrainFinalized,
			}
			if st.Terrain != nil {
				tv := &snapshot.TerrainSnapV1{Target: st.Terrain.Target}
				for _, t := range st.Terrain.Tiles {
					tv.Tiles = append(tv.Tiles, snapshot.TerrainTileV1{
						Index: t.Index, GroundType: t.GroundType, Height: t.Height, Footprint: t.Footprint,
					})
				}
				cv.Terrain = tv
			}
			snap.Construction = append(snap.Construction, cv)
		}
	}

	for _, rec := range w.inventories.ExportAll() {
		iv := snapshot.InventoryV1{Building: uint32(rec.Building), Type: rec.Type}
		for _, s := range rec.Inputs {
			iv.Inputs = append(iv.Inputs, snapshot.SlotV1(s))
		}
		for _, s := range rec.Outputs {
			iv.Outputs = append(iv.Outputs, snapshot.SlotV1(s))
		}
		snap.Inventories = append(snap.Inventories, iv)
	}

	for _, u := range w.units {
		snap.Units = append(snap.Units, snapshot.UnitV1{
			Type: u.Type, X: u.Pos.X, Y: u.Pos.Y, Player: int(u.Player), Selectable: u.Selectable,
		})
	}
	return snap
}

// NewFromSnapshot reconstructs a world from exported state. Territory is
// rebuilt from the building list rather than restored.
func NewFromSnapshot(snap snapshot.SnapshotV1, cats *catalogs.Catalogs, tun tuning.Tuning) (*World, error) {
	if snap.MapWidth <= 0 || snap.MapHeight <= 0 {
		return nil, fmt.Errorf("snapshot: bad map size %dx%d", snap.MapWidth, snap.MapHeight)
	}
	n := snap.MapWidth * snap.MapHeight
	if len(snap.GroundType) != n || len(snap.GroundHeight) != n {
		return nil, fmt.Errorf("snapshot: terrain arrays do not match map size")
	}

	tc := NewTerrainContext(snap.MapWidth, snap.MapHeight)
	copy(tc.GroundType, snap.GroundType)
	copy(tc.GroundHeight, snap.GroundHeight)

	w := New(cats, tun, tc)
	w.tick = snap.Header.Tick
	w.nextBuilding = BuildingID(snap.NextBuilding)

	for _, bv := range snap.Buildings {
		def, ok := cats.Buildings.Defs[bv.Type]
		if !ok {
			return nil, fmt.Errorf("snapshot: building %d: %w: %s", bv.ID, ErrUnknownBuildingType, bv.Type)
		}
		b := &Building{
			ID:     BuildingID(bv.ID),
			Type:   bv.Type,
			Anchor: Tile{X: bv.X, Y: bv.Y},
			Player: Player(bv.Player),
		}
		w.buildings[b.ID] = b
		w.order = append(w.order, b.ID)
		for _, t := range Footprint(b.Anchor, def.Width, def.Height) {
			if tc.InBounds(t) {
				w.buildingAt[tc.Index(t)] = b.ID
			}
		}
	}

	for _, cv := range snap.Construction {
		b := w.buildings[BuildingID(cv.Building)]
		if b == nil {
			return nil, fmt.Errorf("snapshot: construction state for missing building %d", cv.Building)
		}
		def := cats.Buildings.Defs[b.Type]
		st := &ConstructionState{
			Building:         b.ID,
			Anchor:           b.Anchor,
			Width:            def.Width,
			Height:           def.Height,
			Elapsed:          cv.Elapsed,
			Total:            cv.Total,
			Phase:            Phase(cv.Phase),
			Progress:         cv.Progress,
			TerrainFinalized: cv.TerrainFinalized,
		}
		if cv.Terrain != nil {
			ts := &TerrainSnapshot{Target: cv.Terrain.Target}
			for _, t := range cv.Terrain.Tiles {
				ts.Tiles = append(ts.Tiles, SnapshotTile{
					Index: t.Index, GroundType: t.GroundType, Height: t.Height, Footprint: t.Footprint,
				})
			}
			st.Terrain = ts
		}
		w.construction.Add(st)
	}

	for _, iv := range snap.Inventories {
		rec := InventoryRecord{Building: BuildingID(iv.Building), Type: iv.Type}
		for _, s := range iv.Inputs {
			rec.Inputs = append(rec.Inputs, SlotRecord(s))
		}
		for _, s := range iv.Outputs {
			rec.Outputs = append(rec.Outputs, SlotRecord(s))
		}
		if err := w.inventories.Restore(rec); err != nil {
			return nil, err
		}
	}

	for _, uv := range snap.Units {
		w.placeUnit(&Unit{
			Type:       uv.Type,
			Pos:        Tile{X: uv.X, Y: uv.Y},
			Player:     Player(uv.Player),
			Selectable: uv.Selectable,
		})
	}

	w.rebuildTerritory()
	return w, nil
}
