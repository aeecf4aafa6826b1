package world

import "errors"

// Expected runtime conditions (full slot, nothing to withdraw, unknown
// building on a read-only query) are plain return values, never errors.
// These sentinels mark caller contract violations: the configuration tables
// and the call site disagree, which is an upstream bug that must surface.
var (
	ErrNoBuilding  = errors.New("no such building")
	ErrNoInventory = errors.New("building has no inventory")
	ErrNoSlot      = errors.New("building has no slot for material")
)
