package protocol

const Version = "1.0"

const (
	TypeWelcome = "WELCOME"
	TypeTick    = "TICK"
)

// WelcomeMsg is sent once per observer connection.
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	MapWidth  int `json:"map_width"`
	MapHeight int `json:"map_height"`

	TickRateHz      int    `json:"tick_rate_hz"`
	MaterialsDigest string `json:"materials_digest"`
	BuildingsDigest string `json:"buildings_digest"`
}

// TickMsg carries one tick's observable changes. Terrain patches are packed
// tile indexes into the row-major ground arrays.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	Buildings        []BuildingState   `json:"buildings,omitempty"`
	InventoryChanges []InventoryChange `json:"inventory_changes,omitempty"`
	TerrainPatches   []TerrainPatch    `json:"terrain_patches,omitempty"`
	TerritoryVersion uint64            `json:"territory_version"`
	Units            int               `json:"units"`
}

type BuildingState struct {
	ID       uint32  `json:"id"`
	Type     string  `json:"building_type"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Player   int     `json:"player"`
	Phase    string  `json:"phase"`
	Progress float64 `json:"progress"`
}

type InventoryChange struct {
	Building uint32 `json:"building"`
	Material string `json:"material"`
	Kind     string `json:"kind"`
	Previous int    `json:"previous"`
	New      int    `json:"new"`
}

type TerrainPatch struct {
	Index      int   `json:"index"`
	GroundType uint8 `json:"ground_type"`
	Height     uint8 `json:"height"`
}
