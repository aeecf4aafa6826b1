package world

import "testing"

func TestRingTiles_RowMajorPerimeter(t *testing.T) {
	got := ringTiles(Tile{X: 5, Y: 5}, 1)
	want := []Tile{
		{4, 4}, {5, 4}, {6, 4},
		{4, 5}, {6, 5},
		{4, 6}, {5, 6}, {6, 6},
	}
	if len(got) != len(want) {
		t.Fatalf("ring size=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ring[%d]=%v want %v", i, got[i], want[i])
		}
	}

	if n := len(ringTiles(Tile{X: 5, Y: 5}, 3)); n != 24 {
		t.Fatalf("radius 3 ring size=%d want 24", n)
	}
}

func TestSpawn_BarrackSpawnsOneSoldier(t *testing.T) {
	w := newTestWorld(t)
	id := mustAdd(t, w, "BARRACK", Tile{X: 10, Y: 10}, 0)
	finishConstruction(t, w, id)

	units := w.Units()
	if len(units) != 1 {
		t.Fatalf("units=%d want 1", len(units))
	}
	u := units[0]
	if u.Type != "SOLDIER" || !u.Selectable || u.Player != 0 {
		t.Fatalf("unexpected unit %+v", u)
	}
	// First free ring-1 tile around the anchor, scanning row-major.
	if u.Pos != (Tile{X: 9, Y: 9}) {
		t.Fatalf("spawned at %v, want 9,9", u.Pos)
	}
}

func TestSpawn_SkipsBlockedRing(t *testing.T) {
	w := newTestWorld(t)
	tc := w.Terrain()

	// Drown every ring-1 tile that the 3x3 footprint does not already cover,
	// forcing the spawn out to ring 2.
	for _, pos := range []Tile{{9, 9}, {10, 9}, {11, 9}, {9, 10}, {9, 11}} {
		tc.GroundType[tc.Index(pos)] = GroundWater
	}

	id := mustAdd(t, w, "BARRACK", Tile{X: 10, Y: 10}, 0)
	finishConstruction(t, w, id)

	units := w.Units()
	if len(units) != 1 {
		t.Fatalf("units=%d want 1", len(units))
	}
	if units[0].Pos != (Tile{X: 8, Y: 8}) {
		t.Fatalf("spawned at %v, want first ring-2 tile 8,8", units[0].Pos)
	}
}

func TestSpawn_WarehouseSpawnsFourCarriers(t *testing.T) {
	w := newTestWorld(t)
	id := mustAdd(t, w, "WAREHOUSE", Tile{X: 20, Y: 20}, 0)
	finishConstruction(t, w, id)

	units := w.Units()
	if len(units) != 4 {
		t.Fatalf("units=%d want 4", len(units))
	}
	seen := map[Tile]bool{}
	for _, u := range units {
		if u.Type != "CARRIER" {
			t.Fatalf("unit type=%s want CARRIER", u.Type)
		}
		if u.Selectable {
			t.Fatalf("carriers are not selectable")
		}
		if seen[u.Pos] {
			t.Fatalf("two units on tile %v", u.Pos)
		}
		seen[u.Pos] = true
	}
}

func TestSpawn_ExcessUnitsDropped(t *testing.T) {
	w := newTestWorld(t)
	tc := w.Terrain()

	anchor := Tile{X: 20, Y: 20}
	// Leave exactly two free tiles inside the spawn rings, everything else
	// within reach is water.
	free := map[Tile]bool{{19, 19}: true, {22, 23}: true}
	for r := 1; r <= testTuning().SpawnRingMaxRadius; r++ {
		for _, pos := range ringTiles(anchor, r) {
			inFootprint := pos.X >= 20 && pos.X <= 22 && pos.Y >= 20 && pos.Y <= 22
			if !inFootprint && !free[pos] {
				tc.GroundType[tc.Index(pos)] = GroundWater
			}
		}
	}

	id := mustAdd(t, w, "WAREHOUSE", anchor, 0)
	finishConstruction(t, w, id)

	units := w.Units()
	if len(units) != 2 {
		t.Fatalf("units=%d want 2 (spawn request exceeds free tiles)", len(units))
	}
	for _, u := range units {
		if !free[u.Pos] {
			t.Fatalf("unit on unexpected tile %v", u.Pos)
		}
	}
}

func TestSpawn_GuardTowerNoInventoryStillSpawns(t *testing.T) {
	w := newTestWorld(t)
	id := mustAdd(t, w, "GUARD_TOWER", Tile{X: 30, Y: 30}, 1)
	finishConstruction(t, w, id)

	units := w.Units()
	if len(units) != 2 {
		t.Fatalf("units=%d want 2", len(units))
	}
	for _, u := range units {
		if u.Type != "SOLDIER" || u.Player != 1 {
			t.Fatalf("unexpected unit %+v", u)
		}
	}
}
