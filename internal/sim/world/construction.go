package world

// Construction phases, in timeline order. Completed is terminal.
type Phase int

const (
	PhasePoles Phase = iota
	PhaseTerrainLeveling
	PhaseConstructionRising
	PhaseCompletedRising
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhasePoles:
		return "POLES"
	case PhaseTerrainLeveling:
		return "TERRAIN_LEVELING"
	case PhaseConstructionRising:
		return "CONSTRUCTION_RISING"
	case PhaseCompletedRising:
		return "COMPLETED_RISING"
	case PhaseCompleted:
		return "COMPLETED"
	}
	return "UNKNOWN"
}

// ConstructionState tracks one building from groundbreaking to completion.
type ConstructionState struct {
	Building BuildingID
	Anchor   Tile
	Width    int
	Height   int

	Elapsed  float64
	Total    float64
	Phase    Phase
	Progress float64

	Terrain          *TerrainSnapshot
	TerrainFinalized bool
}

// ConstructionStore owns every in-progress construction state and advances
// them in insertion order. Completed states stay in the store (frozen) until
// the building is removed; the updater skips them.
type ConstructionStore struct {
	fractions []float64

	byID  map[BuildingID]*ConstructionState
	order []BuildingID

	// Fired exactly once per building, on the tick its phase first reaches
	// Completed. The world wires the unit-spawn policy here.
	OnComplete func(*ConstructionState)
}

func NewConstructionStore(phaseFractions []float64) *ConstructionStore {
	fr := make([]float64, len(phaseFractions))
	copy(fr, phaseFractions)
	return &ConstructionStore{
		fractions: fr,
		byID:      map[BuildingID]*ConstructionState{},
	}
}

func (cs *ConstructionStore) Add(st *ConstructionState) {
	if _, ok := cs.byID[st.Building]; ok {
		return
	}
	cs.byID[st.Building] = st
	cs.order = append(cs.order, st.Building)
}

func (cs *ConstructionStore) Get(id BuildingID) *ConstructionState {
	return cs.byID[id]
}

// Remove drops the state and returns it so the caller can restore terrain
// for a building cancelled mid-construction. Not restoring before discarding
// leaves the ground permanently modified.
func (cs *ConstructionStore) Remove(id BuildingID) *ConstructionState {
	st := cs.byID[id]
	if st == nil {
		return nil
	}
	delete(cs.byID, id)
	for i, o := range cs.order {
		if o == id {
			cs.order = append(cs.order[:i], cs.order[i+1:]...)
			break
		}
	}
	return st
}

// AdvanceAll runs one construction tick for every building, in insertion
// order. tc may be nil, in which case terrain side effects are skipped.
func (cs *ConstructionStore) AdvanceAll(dt float64, tc *TerrainContext) {
	for _, id := range cs.order {
		cs.Advance(cs.byID[id], dt, tc)
	}
}

// Advance moves one state forward by dt seconds and applies the phase side
// effects: snapshot capture on entering TerrainLeveling, per-tick leveling
// while inside it, a one-shot finalize at progress 1.0 when the phase is
// left (or skipped over entirely), and the completion hook when the terminal
// phase is reached.
func (cs *ConstructionStore) Advance(st *ConstructionState, dt float64, tc *TerrainContext) {
	if st == nil || st.Phase == PhaseCompleted {
		return
	}

	st.Elapsed += dt
	frac := st.Elapsed / st.Total
	if frac > 1 {
		frac = 1
	}
	st.Phase, st.Progress = cs.phaseAt(frac)

	if tc != nil {
		if st.Phase == PhaseTerrainLeveling {
			if st.Terrain == nil {
				st.Terrain = CaptureTerrain(tc, st.Anchor, st.Width, st.Height)
			}
			st.Terrain.Apply(tc, st.Progress)
		} else if st.Phase > PhaseTerrainLeveling && !st.TerrainFinalized {
			// A large dt can step over the whole leveling window; the ground
			// must still end up exactly at the target height.
			if st.Terrain == nil {
				st.Terrain = CaptureTerrain(tc, st.Anchor, st.Width, st.Height)
			}
			st.Terrain.Apply(tc, 1)
			st.TerrainFinalized = true
		}
	}

	if st.Phase == PhaseCompleted && cs.OnComplete != nil {
		cs.OnComplete(st)
	}
}

// phaseAt maps an elapsed fraction to the phase whose cumulative window
// contains it, with the linear position inside that window. A phase with
// fraction zero is effectively skipped.
func (cs *ConstructionStore) phaseAt(frac float64) (Phase, float64) {
	if frac >= 1 {
		return PhaseCompleted, 1
	}
	cum := 0.0
	for i, f := range cs.fractions {
		if frac < cum+f {
			p := (frac - cum) / f
			if p < 0 {
				p = 0
			} else if p > 1 {
				p = 1
			}
			return Phase(i), p
		}
		cum += f
	}
	// Fractions should sum to 1; guard against float drift.
	return Phase(len(cs.fractions) - 1), 1
}
