package protocol

const (
	// Placement validation.
	ErrBadRequest     = "E_BAD_REQUEST"
	ErrUnknownType    = "E_UNKNOWN_TYPE"
	ErrBlocked        = "E_BLOCKED"
	ErrTerritory      = "E_TERRITORY"

	// Economy.
	ErrNoInventory = "E_NO_INVENTORY"
	ErrNoSlot      = "E_NO_SLOT"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:  {},
	ErrUnknownType: {},
	ErrBlocked:     {},
	ErrTerritory:   {},
	ErrNoInventory: {},
	ErrNoSlot:      {},
	ErrInternal:    {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
