package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	Tick    uint64 `json:"tick"`
}

// SnapshotV1 is the complete world state as plain data. Territory is absent
// on purpose: it is derived state and is rebuilt after import.
type SnapshotV1 struct {
	Header Header `json:"header"`

	MapWidth  int `json:"map_width"`
	MapHeight int `json:"map_height"`

	GroundType   []uint8 `json:"ground_type"`
	GroundHeight []uint8 `json:"ground_height"`

	NextBuilding uint32 `json:"next_building"`

	Buildings    []BuildingV1     `json:"buildings,omitempty"`
	Construction []ConstructionV1 `json:"construction,omitempty"`
	Inventories  []InventoryV1    `json:"inventories,omitempty"`
	Units        []UnitV1         `json:"units,omitempty"`
}

type BuildingV1 struct {
	ID     uint32 `json:"id"`
	Type   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Player int    `json:"player"`
}

type ConstructionV1 struct {
	Building         uint32         `json:"building"`
	Elapsed          float64        `json:"elapsed"`
	Total            float64        `json:"total"`
	Phase            int            `json:"phase"`
	Progress         float64        `json:"progress"`
	TerrainFinalized bool           `json:"terrain_finalized,omitempty"`
	Terrain          *TerrainSnapV1 `json:"terrain,omitempty"`
}

type TerrainSnapV1 struct {
	Target uint8           `json:"target"`
	Tiles  []TerrainTileV1 `json:"tiles"`
}

type TerrainTileV1 struct {
	Index      int   `json:"index"`
	GroundType uint8 `json:"ground_type"`
	Height     uint8 `json:"height"`
	Footprint  bool  `json:"footprint,omitempty"`
}

type InventoryV1 struct {
	Building uint32   `json:"building"`
	Type     string   `json:"type"`
	Inputs   []SlotV1 `json:"inputs,omitempty"`
	Outputs  []SlotV1 `json:"outputs,omitempty"`
}

type SlotV1 struct {
	Material string `json:"material"`
	Current  int    `json:"current"`
	Max      int    `json:"max"`
	Reserved int    `json:"reserved,omitempty"`
}

type UnitV1 struct {
	Type       string `json:"type"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Player     int    `json:"player"`
	Selectable bool   `json:"selectable,omitempty"`
}

func path(dir string, tick uint64) string {
	return filepath.Join(dir, fmt.Sprintf("snapshot-%012d.json.zst", tick))
}

// Write stores the snapshot as zstd-compressed JSON under dir.
func Write(dir string, snap SnapshotV1) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p := path(dir, snap.Header.Tick)
	f, err := os.Create(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return "", err
	}
	bw := bufio.NewWriterSize(enc, 128*1024)
	if err := json.NewEncoder(bw).Encode(snap); err != nil {
		_ = enc.Close()
		return "", err
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return p, f.Sync()
}

// Read loads one snapshot file.
func Read(p string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(p)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	if err := json.NewDecoder(bufio.NewReader(dec)).Decode(&snap); err != nil {
		return snap, fmt.Errorf("snapshot %s: %w", filepath.Base(p), err)
	}
	if snap.Header.Version != 1 {
		return snap, fmt.Errorf("snapshot %s: unsupported version %d", filepath.Base(p), snap.Header.Version)
	}
	return snap, nil
}

// Latest returns the path of the newest snapshot in dir, or "" when none
// exist.
func Latest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), "snapshot-") && strings.HasSuffix(e.Name(), ".json.zst") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}
