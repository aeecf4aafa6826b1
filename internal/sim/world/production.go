package world

import "github.com/PiotrTrzpil/Settlers.ts-sub004/internal/sim/catalogs"

// Production cycle helpers. The production tick drives these once per
// completed building per cycle; the manager never auto-throttles, so callers
// check CanStoreOutput before committing a cycle.

func (m *InventoryManager) chainFor(id BuildingID) (catalogs.ChainDef, bool) {
	inv := m.byID[id]
	if inv == nil {
		return catalogs.ChainDef{}, false
	}
	chain, ok := m.cats.Chains.ByBuilding[inv.Type]
	return chain, ok
}

// CanStartProduction reports whether the building has a configured chain and
// at least one unit of every required input.
func (m *InventoryManager) CanStartProduction(id BuildingID) bool {
	chain, ok := m.chainFor(id)
	if !ok {
		return false
	}
	for _, material := range chain.Inputs {
		if m.InputAmount(id, material) < 1 {
			return false
		}
	}
	return true
}

// ConsumeProductionInputs withdraws exactly one unit of every chain input.
// It consumes nothing and reports false when any input is missing.
func (m *InventoryManager) ConsumeProductionInputs(id BuildingID) bool {
	if !m.CanStartProduction(id) {
		return false
	}
	chain, _ := m.chainFor(id)
	for _, material := range chain.Inputs {
		// Slots were verified non-empty above; a failure here means the
		// catalog validation let a mismatch through.
		if _, err := m.WithdrawInput(id, material, 1); err != nil {
			return false
		}
	}
	return true
}

// CanStoreOutput reports whether one produced unit would fit. Chains without
// an output material always have room.
func (m *InventoryManager) CanStoreOutput(id BuildingID) bool {
	chain, ok := m.chainFor(id)
	if !ok {
		return false
	}
	if chain.Output == "" {
		return true
	}
	inv := m.byID[id]
	s := inv.output(chain.Output)
	if s == nil {
		return false
	}
	return s.Current < s.Max
}

// ProduceOutput deposits one unit of the chain's output material and reports
// whether the unit was stored. Chains without an output report false.
func (m *InventoryManager) ProduceOutput(id BuildingID) bool {
	chain, ok := m.chainFor(id)
	if !ok || chain.Output == "" {
		return false
	}
	overflow, err := m.DepositOutput(id, chain.Output, 1)
	if err != nil {
		return false
	}
	return overflow == 0
}
