package protocol

import (
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func validate(t *testing.T, schemaPath string, msg any) error {
	t.Helper()
	sch, err := jsonschema.Compile(schemaPath)
	if err != nil {
		t.Fatalf("compile %s: %v", schemaPath, err)
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return sch.Validate(doc)
}

func TestWelcomeMatchesSchema(t *testing.T) {
	msg := WelcomeMsg{
		Type:            TypeWelcome,
		ProtocolVersion: Version,
		MapWidth:        256,
		MapHeight:       256,
		TickRateHz:      10,
		MaterialsDigest: "3d3f28b8f18d8e2b0f6c8f7d9f1f0a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f",
		BuildingsDigest: "9f1f0a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f3d3f28b8f18d8e2b0f6c8f7d",
	}
	if err := validate(t, "../../schemas/welcome.schema.json", msg); err != nil {
		t.Fatalf("welcome rejected: %v", err)
	}

	bad := msg
	bad.Type = "HELLO"
	if err := validate(t, "../../schemas/welcome.schema.json", bad); err == nil {
		t.Fatalf("wrong type accepted")
	}
}

func TestTickMatchesSchema(t *testing.T) {
	msg := TickMsg{
		Type:             TypeTick,
		ProtocolVersion:  Version,
		Tick:             1234,
		TerritoryVersion: 7,
		Units:            3,
		Buildings: []BuildingState{
			{ID: 1, Type: "SAWMILL", X: 10, Y: 12, Player: 0, Phase: "CONSTRUCTION_RISING", Progress: 0.4},
			{ID: 2, Type: "WOODCUTTER", X: 30, Y: 5, Player: 1, Phase: "COMPLETED", Progress: 1},
		},
		InventoryChanges: []InventoryChange{
			{Building: 1, Material: "LOG", Kind: "input", Previous: 2, New: 3},
		},
		TerrainPatches: []TerrainPatch{
			{Index: 2570, GroundType: 5, Height: 11},
		},
	}
	if err := validate(t, "../../schemas/tick.schema.json", msg); err != nil {
		t.Fatalf("tick rejected: %v", err)
	}

	// A minimal tick with no change lists is still valid.
	minimal := TickMsg{Type: TypeTick, ProtocolVersion: Version, Tick: 0}
	if err := validate(t, "../../schemas/tick.schema.json", minimal); err != nil {
		t.Fatalf("minimal tick rejected: %v", err)
	}

	bad := msg
	bad.Buildings = []BuildingState{{ID: 1, Type: "SAWMILL", Phase: "DIGGING", Progress: 0.4}}
	if err := validate(t, "../../schemas/tick.schema.json", bad); err == nil {
		t.Fatalf("unknown phase accepted")
	}
}

func TestIsKnownCode(t *testing.T) {
	for _, code := range []string{"", ErrBadRequest, ErrUnknownType, ErrBlocked, ErrTerritory, ErrNoInventory, ErrNoSlot, ErrInternal} {
		if !IsKnownCode(code) {
			t.Fatalf("code %q not recognized", code)
		}
	}
	if IsKnownCode("E_NOPE") {
		t.Fatalf("unknown code accepted")
	}
}
