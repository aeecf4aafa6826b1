package world

import (
	"testing"

	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/sim/catalogs"
	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/sim/tuning"
)

func testCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func testTuning() tuning.Tuning {
	var tun tuning.Tuning
	tun.ApplyDefaults()
	return tun
}

// flatTerrain builds a grass map at uniform height 10.
func flatTerrain(width, height int) *TerrainContext {
	tc := NewTerrainContext(width, height)
	for i := range tc.GroundHeight {
		tc.GroundHeight[i] = 10
	}
	return tc
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return New(testCatalogs(t), testTuning(), flatTerrain(64, 64))
}

func mustAdd(t *testing.T, w *World, buildingType string, anchor Tile, p Player) BuildingID {
	t.Helper()
	id, err := w.AddBuilding(buildingType, anchor, p)
	if err != nil {
		t.Fatalf("add %s at %d,%d: %v", buildingType, anchor.X, anchor.Y, err)
	}
	return id
}

// finishConstruction steps the world until the building completes.
func finishConstruction(t *testing.T, w *World, id BuildingID) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if w.Completed(id) {
			return
		}
		w.Step()
	}
	t.Fatalf("building %d never completed", id)
}
