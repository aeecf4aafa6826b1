package world

import (
	"fmt"
	"sort"
)

// Plain serialized shapes for inventories. The wire/storage format around
// them is the persistence layer's concern; these only define what must
// round-trip.

type SlotRecord struct {
	Material string `json:"material"`
	Current  int    `json:"current"`
	Max      int    `json:"max"`
	Reserved int    `json:"reserved,omitempty"`
}

type InventoryRecord struct {
	Building BuildingID   `json:"building"`
	Type     string       `json:"type"`
	Inputs   []SlotRecord `json:"inputs,omitempty"`
	Outputs  []SlotRecord `json:"outputs,omitempty"`
}

func slotRecords(slots []*Slot) []SlotRecord {
	out := make([]SlotRecord, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotRecord{Material: s.Material, Current: s.Current, Max: s.Max, Reserved: s.Reserved})
	}
	return out
}

func slotsFromRecords(recs []SlotRecord) ([]*Slot, error) {
	out := make([]*Slot, 0, len(recs))
	for _, r := range recs {
		if r.Current < 0 || r.Max <= 0 || r.Current > r.Max || r.Reserved < 0 || r.Reserved > r.Current {
			return nil, fmt.Errorf("slot %s: bad amounts current=%d max=%d reserved=%d", r.Material, r.Current, r.Max, r.Reserved)
		}
		out = append(out, &Slot{Material: r.Material, Current: r.Current, Max: r.Max, Reserved: r.Reserved})
	}
	return out, nil
}

// Export returns the building's inventory as a plain record; ok is false when
// the building has no inventory.
func (m *InventoryManager) Export(id BuildingID) (InventoryRecord, bool) {
	inv := m.byID[id]
	if inv == nil {
		return InventoryRecord{}, false
	}
	return InventoryRecord{
		Building: id,
		Type:     inv.Type,
		Inputs:   slotRecords(inv.Inputs),
		Outputs:  slotRecords(inv.Outputs),
	}, true
}

// ExportAll returns every inventory in ascending building-id order.
func (m *InventoryManager) ExportAll() []InventoryRecord {
	ids := make([]BuildingID, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]InventoryRecord, 0, len(ids))
	for _, id := range ids {
		rec, _ := m.Export(id)
		out = append(out, rec)
	}
	return out
}

// Restore reconstructs an inventory from a serialized record, replacing any
// existing inventory for the building. Reserved amounts survive the round
// trip so in-flight pickups stay claimed across a load.
func (m *InventoryManager) Restore(rec InventoryRecord) error {
	if rec.Building == 0 {
		return fmt.Errorf("restore inventory: zero building id")
	}
	inputs, err := slotsFromRecords(rec.Inputs)
	if err != nil {
		return fmt.Errorf("restore inventory %d: %w", rec.Building, err)
	}
	outputs, err := slotsFromRecords(rec.Outputs)
	if err != nil {
		return fmt.Errorf("restore inventory %d: %w", rec.Building, err)
	}
	m.byID[rec.Building] = &Inventory{
		Building: rec.Building,
		Type:     rec.Type,
		Inputs:   inputs,
		Outputs:  outputs,
	}
	return nil
}
