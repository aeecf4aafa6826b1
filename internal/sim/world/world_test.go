package world

import (
	"errors"
	"reflect"
	"testing"
)

func TestWorld_AddBuildingUnknownType(t *testing.T) {
	w := newTestWorld(t)
	if _, err := w.AddBuilding("CASTLE", Tile{X: 10, Y: 10}, 0); !errors.Is(err, ErrUnknownBuildingType) {
		t.Fatalf("err=%v want ErrUnknownBuildingType", err)
	}
}

func TestWorld_AddBuildingBlockedTerrain(t *testing.T) {
	w := newTestWorld(t)
	tc := w.Terrain()
	tc.GroundType[tc.Index(Tile{X: 11, Y: 10})] = GroundWater

	// 2x2 footprint at (10,10) includes the water tile.
	if _, err := w.AddBuilding("WOODCUTTER", Tile{X: 10, Y: 10}, 0); !errors.Is(err, ErrPlacementBlocked) {
		t.Fatalf("err=%v want ErrPlacementBlocked", err)
	}
	if _, err := w.AddBuilding("WOODCUTTER", Tile{X: 63, Y: 63}, 0); !errors.Is(err, ErrPlacementBlocked) {
		t.Fatalf("off-map err=%v want ErrPlacementBlocked", err)
	}
}

func TestWorld_AddBuildingOverlapBlocked(t *testing.T) {
	w := newTestWorld(t)
	mustAdd(t, w, "WOODCUTTER", Tile{X: 10, Y: 10}, 0)
	if _, err := w.AddBuilding("WOODCUTTER", Tile{X: 11, Y: 11}, 0); !errors.Is(err, ErrPlacementBlocked) {
		t.Fatalf("err=%v want ErrPlacementBlocked", err)
	}
}

func TestWorld_TerritoryPlacementGate(t *testing.T) {
	w := newTestWorld(t)

	// The player's first building goes anywhere.
	mustAdd(t, w, "WOODCUTTER", Tile{X: 10, Y: 10}, 0)

	// Second building inside own territory is fine.
	mustAdd(t, w, "SAWMILL", Tile{X: 15, Y: 15}, 0)

	// Far outside any claim: denied.
	if _, err := w.AddBuilding("SAWMILL", Tile{X: 50, Y: 50}, 0); !errors.Is(err, ErrPlacementDenied) {
		t.Fatalf("err=%v want ErrPlacementDenied", err)
	}

	// Another player may not build on claimed ground, even as their first
	// building.
	if _, err := w.AddBuilding("WOODCUTTER", Tile{X: 12, Y: 12}, 1); !errors.Is(err, ErrPlacementDenied) {
		t.Fatalf("err=%v want ErrPlacementDenied on foreign territory", err)
	}

	// Unclaimed ground is open for their first building.
	mustAdd(t, w, "WOODCUTTER", Tile{X: 50, Y: 50}, 1)
}

func TestWorld_ExpandAtTerritoryEdge(t *testing.T) {
	w := newTestWorld(t)
	mustAdd(t, w, "WOODCUTTER", Tile{X: 20, Y: 20}, 0)

	// Default radius 12: (20,8) is owned, (20,7) is unclaimed but adjacent to
	// it, so a footprint starting there may still be placed.
	if w.Territory().Owner(20, 7) != NoOwner {
		t.Fatalf("tile 20,7 unexpectedly claimed")
	}
	mustAdd(t, w, "SAWMILL", Tile{X: 20, Y: 6}, 0)
}

func TestWorld_RemoveRestoresTerrainMidConstruction(t *testing.T) {
	w := newTestWorld(t)
	tc := w.Terrain()
	tc.GroundHeight[tc.Index(Tile{X: 10, Y: 10})] = 30
	tc.GroundHeight[tc.Index(Tile{X: 12, Y: 11})] = 2

	origType := append([]uint8(nil), tc.GroundType...)
	origHeight := append([]uint8(nil), tc.GroundHeight...)

	id := mustAdd(t, w, "BARRACK", Tile{X: 10, Y: 10}, 0)
	// 500 ticks total, leveling runs from tick 50 to 200.
	for i := 0; i < 120; i++ {
		w.Step()
	}
	if reflect.DeepEqual(origHeight, tc.GroundHeight) {
		t.Fatalf("leveling did not modify terrain")
	}

	if err := w.RemoveBuilding(id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !reflect.DeepEqual(origType, tc.GroundType) {
		t.Fatalf("ground types not restored")
	}
	if !reflect.DeepEqual(origHeight, tc.GroundHeight) {
		t.Fatalf("ground heights not restored")
	}
	if w.Building(id) != nil || w.Inventories().Get(id) != nil || w.Construction().Get(id) != nil {
		t.Fatalf("building state survived removal")
	}
}

func TestWorld_RemoveDuringPoles(t *testing.T) {
	w := newTestWorld(t)
	id := mustAdd(t, w, "BARRACK", Tile{X: 10, Y: 10}, 0)
	w.Step() // still in poles, nothing captured
	if err := w.RemoveBuilding(id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := w.RemoveBuilding(id); !errors.Is(err, ErrNoBuilding) {
		t.Fatalf("double remove err=%v want ErrNoBuilding", err)
	}
}

func TestWorld_CompletedBuildingLeavesTerrainLeveled(t *testing.T) {
	w := newTestWorld(t)
	tc := w.Terrain()
	tc.GroundHeight[tc.Index(Tile{X: 10, Y: 10})] = 30

	id := mustAdd(t, w, "WOODCUTTER", Tile{X: 10, Y: 10}, 0)
	finishConstruction(t, w, id)

	st := w.Construction().Get(id)
	if st == nil || !st.TerrainFinalized {
		t.Fatalf("completed building missing finalized terrain")
	}
	target := st.Terrain.Target
	if err := w.RemoveBuilding(id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Tearing down a finished building does not undo the earthworks.
	if got := tc.GroundHeight[tc.Index(Tile{X: 10, Y: 10})]; got != target {
		t.Fatalf("height=%d want leveled target %d", got, target)
	}
}

func TestWorld_ProductionOnCadence(t *testing.T) {
	w := newTestWorld(t)
	inv := w.Inventories()
	id := mustAdd(t, w, "WOODCUTTER", Tile{X: 10, Y: 10}, 0)

	// Nothing is produced while under construction.
	for i := 0; i < 100; i++ {
		w.Step()
	}
	if got := inv.OutputAmount(id, "LOG"); got != 0 {
		t.Fatalf("produced %d logs before completion", got)
	}

	finishConstruction(t, w, id)
	base := inv.OutputAmount(id, "LOG")
	interval := testTuning().ProductionIntervalTicks
	for i := 0; i < interval; i++ {
		w.Step()
	}
	if got := inv.OutputAmount(id, "LOG"); got != base+1 {
		t.Fatalf("logs=%d want %d after one production interval", got, base+1)
	}

	// Output caps at the slot capacity, then stalls.
	for i := 0; i < interval*20; i++ {
		w.Step()
	}
	if got := inv.OutputAmount(id, "LOG"); got != 8 {
		t.Fatalf("logs=%d want full slot 8", got)
	}
}

func TestWorld_ProductionChainConsumesInputs(t *testing.T) {
	w := newTestWorld(t)
	inv := w.Inventories()

	mill := mustAdd(t, w, "MILL", Tile{X: 10, Y: 10}, 0)
	finishConstruction(t, w, mill)
	if _, err := inv.DepositInput(mill, "GRAIN", 3); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	interval := testTuning().ProductionIntervalTicks
	for i := 0; i < interval*10; i++ {
		w.Step()
	}
	if got := inv.InputAmount(mill, "GRAIN"); got != 0 {
		t.Fatalf("grain=%d want 0 after chain drained it", got)
	}
	if got := inv.OutputAmount(mill, "FLOUR"); got != 3 {
		t.Fatalf("flour=%d want 3", got)
	}
}

func TestWorld_SnapshotRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	cats := testCatalogs(t)
	tun := testTuning()

	wood := mustAdd(t, w, "WOODCUTTER", Tile{X: 10, Y: 10}, 0)
	finishConstruction(t, w, wood)
	for i := 0; i < 3*tun.ProductionIntervalTicks; i++ {
		w.Step()
	}
	mustAdd(t, w, "BARRACK", Tile{X: 16, Y: 16}, 0)
	for i := 0; i < 120; i++ { // barrack mid-leveling, terrain captured
		w.Step()
	}

	snap := w.ExportSnapshot()
	restored, err := NewFromSnapshot(snap, cats, tun)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !reflect.DeepEqual(snap, restored.ExportSnapshot()) {
		t.Fatalf("restored world exports a different snapshot")
	}
	if restored.Territory().Owner(10, 10) != 0 {
		t.Fatalf("territory not rebuilt on restore")
	}

	// Both worlds must evolve identically from here.
	for i := 0; i < 600; i++ {
		w.Step()
		restored.Step()
	}
	if !reflect.DeepEqual(w.ExportSnapshot(), restored.ExportSnapshot()) {
		t.Fatalf("restored world diverged after stepping")
	}
}

func TestWorld_SnapshotRejectsBadDimensions(t *testing.T) {
	w := newTestWorld(t)
	snap := w.ExportSnapshot()
	snap.GroundType = snap.GroundType[:10]
	if _, err := NewFromSnapshot(snap, testCatalogs(t), testTuning()); err == nil {
		t.Fatalf("mismatched terrain arrays accepted")
	}
}
