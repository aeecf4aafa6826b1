package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Materials MaterialCatalog
	Buildings BuildingCatalog
	Chains    ChainCatalog
}

type MaterialCatalog struct {
	Palette       []string
	Index         map[string]uint16
	PaletteDigest string
}

type BuildingCatalog struct {
	Defs   map[string]BuildingDef
	Digest string
}

// BuildingDef is the static per-type configuration. Width/Height span the
// footprint rectangle from the anchor tile toward +x/+y.
type BuildingDef struct {
	ID                string     `json:"id"`
	Width             int        `json:"width"`
	Height            int        `json:"height"`
	ConstructionTicks int        `json:"construction_ticks"`
	TerritoryRadius   int        `json:"territory_radius,omitempty"`
	InputSlots        []SlotDef  `json:"input_slots,omitempty"`
	OutputSlots       []SlotDef  `json:"output_slots,omitempty"`
	Spawn             *SpawnDef  `json:"spawn,omitempty"`
}

type SlotDef struct {
	Material string `json:"material"`
	Capacity int    `json:"capacity"`
}

type SpawnDef struct {
	Unit       string `json:"unit"`
	Count      int    `json:"count"`
	Selectable bool   `json:"selectable,omitempty"`
}

type ChainCatalog struct {
	ByBuilding map[string]ChainDef
	Digest     string
}

// ChainDef is one production rule: every input is consumed at quantity 1 per
// cycle; Output may be empty for pure consumers.
type ChainDef struct {
	Building string   `json:"building"`
	Inputs   []string `json:"inputs"`
	Output   string   `json:"output,omitempty"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadMaterials(filepath.Join(configDir, "materials.json"), &c.Materials); err != nil {
		return nil, err
	}
	if err := loadBuildings(filepath.Join(configDir, "buildings.json"), &c.Buildings); err != nil {
		return nil, err
	}
	if err := loadChains(filepath.Join(configDir, "chains.json"), &c.Chains); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadMaterials(path string, out *MaterialCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("materials.json: %w", err)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("materials.json: empty id")
		}
		if seen[id] {
			return fmt.Errorf("materials.json: duplicate id %q", id)
		}
		seen[id] = true
	}
	sort.Strings(ids)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadBuildings(path string, out *BuildingCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []BuildingDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("buildings.json: %w", err)
	}
	out.Defs = map[string]BuildingDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("buildings.json: empty id")
		}
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("buildings.json: duplicate id %q", d.ID)
		}
		if d.Width <= 0 || d.Height <= 0 {
			return fmt.Errorf("buildings.json: %s: footprint %dx%d", d.ID, d.Width, d.Height)
		}
		if d.ConstructionTicks <= 0 {
			return fmt.Errorf("buildings.json: %s: construction_ticks must be positive", d.ID)
		}
		out.Defs[d.ID] = d
	}
	return nil
}

func loadChains(path string, out *ChainCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		// Chains are optional: a map with no producers is legal.
		if os.IsNotExist(err) {
			out.Digest = sha256Hex(nil)
			out.ByBuilding = map[string]ChainDef{}
			return nil
		}
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ChainDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("chains.json: %w", err)
	}
	out.ByBuilding = map[string]ChainDef{}
	for _, d := range defs {
		if d.Building == "" {
			return fmt.Errorf("chains.json: empty building")
		}
		if _, dup := out.ByBuilding[d.Building]; dup {
			return fmt.Errorf("chains.json: duplicate building %q", d.Building)
		}
		out.ByBuilding[d.Building] = d
	}
	return nil
}

// validate cross-checks the three catalogs so configuration mismatches fail
// at load time instead of surfacing as fatal errors mid-simulation.
func (c *Catalogs) validate() error {
	for id, d := range c.Buildings.Defs {
		seen := map[string]bool{}
		for _, s := range d.InputSlots {
			if err := c.checkSlot(id, "input", s, seen); err != nil {
				return err
			}
		}
		seen = map[string]bool{}
		for _, s := range d.OutputSlots {
			if err := c.checkSlot(id, "output", s, seen); err != nil {
				return err
			}
		}
	}
	for b, chain := range c.Chains.ByBuilding {
		def, ok := c.Buildings.Defs[b]
		if !ok {
			return fmt.Errorf("chains.json: %s: unknown building", b)
		}
		for _, in := range chain.Inputs {
			if !hasSlot(def.InputSlots, in) {
				return fmt.Errorf("chains.json: %s: input %s has no input slot", b, in)
			}
		}
		if chain.Output != "" && !hasSlot(def.OutputSlots, chain.Output) {
			return fmt.Errorf("chains.json: %s: output %s has no output slot", b, chain.Output)
		}
	}
	return nil
}

func (c *Catalogs) checkSlot(building, kind string, s SlotDef, seen map[string]bool) error {
	if _, ok := c.Materials.Index[s.Material]; !ok {
		return fmt.Errorf("buildings.json: %s: unknown %s material %q", building, kind, s.Material)
	}
	if seen[s.Material] {
		return fmt.Errorf("buildings.json: %s: duplicate %s slot %s", building, kind, s.Material)
	}
	if s.Capacity <= 0 {
		return fmt.Errorf("buildings.json: %s: %s slot %s capacity %d", building, kind, s.Material, s.Capacity)
	}
	seen[s.Material] = true
	return nil
}

func hasSlot(slots []SlotDef, material string) bool {
	for _, s := range slots {
		if s.Material == material {
			return true
		}
	}
	return false
}
