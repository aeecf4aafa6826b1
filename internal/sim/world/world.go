package world

import (
	"fmt"

	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/sim/catalogs"
	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/sim/tuning"
)

// Placement rejection reasons. These are expected outcomes of player input,
// distinct from the contract-violation sentinels in errors.go.
var (
	ErrUnknownBuildingType = fmt.Errorf("unknown building type")
	ErrPlacementBlocked    = fmt.Errorf("placement blocked")
	ErrPlacementDenied     = fmt.Errorf("placement outside player territory")
)

// World is the single-threaded settlement simulation: terrain, buildings,
// inventories, construction, units and territory. All state must be accessed
// only from the simulation goroutine.
type World struct {
	cats *catalogs.Catalogs
	tun  tuning.Tuning

	tick uint64

	terrain *TerrainContext

	buildings    map[BuildingID]*Building
	order        []BuildingID
	nextBuilding BuildingID
	buildingAt   map[int]BuildingID

	inventories  *InventoryManager
	construction *ConstructionStore
	territory    *TerritoryMap

	units  []*Unit
	unitAt map[int]bool
}

func New(cats *catalogs.Catalogs, tun tuning.Tuning, terrain *TerrainContext) *World {
	w := &World{
		cats:         cats,
		tun:          tun,
		terrain:      terrain,
		buildings:    map[BuildingID]*Building{},
		buildingAt:   map[int]BuildingID{},
		inventories:  NewInventoryManager(cats),
		construction: NewConstructionStore(tun.PhaseFractions),
		territory:    NewTerritoryMap(terrain.Width, terrain.Height),
		unitAt:       map[int]bool{},
	}
	w.construction.OnComplete = w.spawnForCompleted
	return w
}

func (w *World) CurrentTick() uint64 { return w.tick }
func (w *World) Terrain() *TerrainContext { return w.terrain }
func (w *World) Inventories() *InventoryManager { return w.inventories }
func (w *World) Construction() *ConstructionStore { return w.construction }
func (w *World) Territory() *TerritoryMap { return w.territory }
func (w *World) Units() []*Unit { return w.units }
func (w *World) Building(id BuildingID) *Building { return w.buildings[id] }

// Buildings returns the building list in insertion order; this is also the
// order territory rebuild and the construction updater use.
func (w *World) Buildings() []*Building {
	out := make([]*Building, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.buildings[id])
	}
	return out
}

func (w *World) territoryRadiusFor(buildingType string) int {
	def, ok := w.cats.Buildings.Defs[buildingType]
	if ok && def.TerritoryRadius > 0 {
		return def.TerritoryRadius
	}
	return w.tun.DefaultTerritoryRadius
}

func (w *World) rebuildTerritory() {
	w.territory.Rebuild(w.Buildings(), w.territoryRadiusFor)
}

// AddBuilding validates placement, creates the building with its inventory
// and construction state, and rebuilds territory. The footprint must be in
// bounds, on passable unoccupied ground, and inside the player's territory
// reach (the player's first building is unconstrained).
func (w *World) AddBuilding(buildingType string, anchor Tile, p Player) (BuildingID, error) {
	def, ok := w.cats.Buildings.Defs[buildingType]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownBuildingType, buildingType)
	}

	footprint := Footprint(anchor, def.Width, def.Height)
	for _, t := range footprint {
		if !w.terrain.Passable(t) {
			return 0, fmt.Errorf("%w: tile %d,%d", ErrPlacementBlocked, t.X, t.Y)
		}
		if _, occupied := w.buildingAt[w.terrain.Index(t)]; occupied {
			return 0, fmt.Errorf("%w: tile %d,%d occupied", ErrPlacementBlocked, t.X, t.Y)
		}
	}
	if err := w.checkTerritory(footprint, p); err != nil {
		return 0, err
	}

	w.nextBuilding++
	id := w.nextBuilding
	b := &Building{ID: id, Type: buildingType, Anchor: anchor, Player: p}
	w.buildings[id] = b
	w.order = append(w.order, id)
	for _, t := range footprint {
		w.buildingAt[w.terrain.Index(t)] = id
	}

	w.inventories.Create(id, buildingType)
	w.construction.Add(&ConstructionState{
		Building: id,
		Anchor:   anchor,
		Width:    def.Width,
		Height:   def.Height,
		Total:    float64(def.ConstructionTicks),
	})

	w.rebuildTerritory()
	return id, nil
}

// checkTerritory enforces the placement gate: never inside another player's
// tiles; after the first building, at least one footprint tile must be owned
// by the player, or be unclaimed and adjacent to a tile the player owns.
func (w *World) checkTerritory(footprint []Tile, p Player) error {
	for _, t := range footprint {
		owner := w.territory.Owner(t.X, t.Y)
		if owner != NoOwner && owner != p {
			return fmt.Errorf("%w: tile %d,%d owned by player %d", ErrPlacementDenied, t.X, t.Y, owner)
		}
	}
	if !w.playerHasBuilding(p) {
		return nil
	}
	for _, t := range footprint {
		if w.territory.IsOwnedBy(t.X, t.Y, p) {
			return nil
		}
		for _, d := range cardinal {
			if w.territory.IsOwnedBy(t.X+d.X, t.Y+d.Y, p) {
				return nil
			}
		}
	}
	return ErrPlacementDenied
}

func (w *World) playerHasBuilding(p Player) bool {
	for _, b := range w.buildings {
		if b.Player == p {
			return true
		}
	}
	return false
}

// RemoveBuilding tears a building down. A building still under construction
// has its captured terrain restored before the state is discarded.
func (w *World) RemoveBuilding(id BuildingID) error {
	b := w.buildings[id]
	if b == nil {
		return fmt.Errorf("remove building %d: %w", id, ErrNoBuilding)
	}
	if st := w.construction.Remove(id); st != nil && st.Phase != PhaseCompleted {
		st.Terrain.Restore(w.terrain)
	}
	w.inventories.Remove(id)

	def := w.cats.Buildings.Defs[b.Type]
	for _, t := range Footprint(b.Anchor, def.Width, def.Height) {
		if w.terrain.InBounds(t) {
			delete(w.buildingAt, w.terrain.Index(t))
		}
	}
	delete(w.buildings, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}

	w.rebuildTerritory()
	return nil
}

// Completed reports whether the building finished construction.
func (w *World) Completed(id BuildingID) bool {
	st := w.construction.Get(id)
	return st != nil && st.Phase == PhaseCompleted
}

// Step advances the simulation by one tick: construction first, then the
// production pass on its own cadence. Territory is never touched here.
func (w *World) Step() {
	w.tick++
	w.construction.AdvanceAll(1, w.terrain)

	interval := uint64(w.tun.ProductionIntervalTicks)
	if interval > 0 && w.tick%interval == 0 {
		w.productionPass()
	}
}

// productionPass runs one cycle for every completed producer, in building
// insertion order. A building produces only when all inputs are present and
// the output has room; a full slot stalls the cycle rather than voiding the
// produce.
func (w *World) productionPass() {
	for _, id := range w.order {
		if !w.Completed(id) {
			continue
		}
		if !w.inventories.CanStartProduction(id) || !w.inventories.CanStoreOutput(id) {
			continue
		}
		if !w.inventories.ConsumeProductionInputs(id) {
			continue
		}
		w.inventories.ProduceOutput(id)
	}
}
