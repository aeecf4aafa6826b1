package snapshot

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func sampleSnapshot(tick uint64) SnapshotV1 {
	return SnapshotV1{
		Header:       Header{Version: 1, Tick: tick},
		MapWidth:     4,
		MapHeight:    4,
		GroundType:   make([]uint8, 16),
		GroundHeight: []uint8{10, 10, 10, 10, 10, 11, 11, 10, 10, 11, 11, 10, 10, 10, 10, 10},
		NextBuilding: 2,
		Buildings: []BuildingV1{
			{ID: 1, Type: "WOODCUTTER", X: 1, Y: 1, Player: 0},
		},
		Construction: []ConstructionV1{
			{
				Building: 1, Elapsed: 60, Total: 200, Phase: 1, Progress: 0.5,
				Terrain: &TerrainSnapV1{
					Target: 10,
					Tiles:  []TerrainTileV1{{Index: 5, Height: 11, Footprint: true}},
				},
			},
		},
		Inventories: []InventoryV1{
			{
				Building: 1, Type: "WOODCUTTER",
				Outputs: []SlotV1{{Material: "LOG", Current: 3, Max: 8, Reserved: 1}},
			},
		},
		Units: []UnitV1{
			{Type: "CARRIER", X: 0, Y: 0, Player: 0},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snap := sampleSnapshot(1500)

	p, err := Write(dir, snap)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(p) != "snapshot-000000001500.json.zst" {
		t.Fatalf("unexpected file name %s", filepath.Base(p))
	}

	got, err := Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(snap, got) {
		t.Fatalf("round trip mismatch\nwrote %+v\nread  %+v", snap, got)
	}
}

func TestRead_RejectsUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	snap := sampleSnapshot(10)
	snap.Header.Version = 99
	p, err := Write(dir, snap)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Read(p); err == nil || !strings.Contains(err.Error(), "unsupported version") {
		t.Fatalf("err=%v want unsupported version", err)
	}
}

func TestRead_RejectsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "snapshot-000000000001.json.zst")
	if err := os.WriteFile(p, []byte("not zstd at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Read(p); err == nil {
		t.Fatalf("garbage file accepted")
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()

	got, err := Latest(dir)
	if err != nil || got != "" {
		t.Fatalf("empty dir: %q, %v", got, err)
	}
	got, err = Latest(filepath.Join(dir, "missing"))
	if err != nil || got != "" {
		t.Fatalf("missing dir: %q, %v", got, err)
	}

	for _, tick := range []uint64{300, 3000, 600} {
		if _, err := Write(dir, sampleSnapshot(tick)); err != nil {
			t.Fatalf("write tick %d: %v", tick, err)
		}
	}
	// Stray files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray: %v", err)
	}

	got, err = Latest(dir)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if filepath.Base(got) != "snapshot-000000003000.json.zst" {
		t.Fatalf("latest=%s want tick 3000", filepath.Base(got))
	}

	snap, err := Read(got)
	if err != nil {
		t.Fatalf("read latest: %v", err)
	}
	if snap.Header.Tick != 3000 {
		t.Fatalf("tick=%d want 3000", snap.Header.Tick)
	}
}
