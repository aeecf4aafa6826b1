package world

import (
	"fmt"
	"sort"

	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/sim/catalogs"
)

type SlotKind string

const (
	SlotInput  SlotKind = "input"
	SlotOutput SlotKind = "output"
)

// InventoryChange describes one net change to a slot's current amount.
type InventoryChange struct {
	Building BuildingID
	Material string
	Kind     SlotKind
	Previous int
	New      int
}

type InventoryListener func(InventoryChange)

// Inventory holds a building's material slots. Slot order follows the
// building catalog entry; at most one slot per material per list.
type Inventory struct {
	Building BuildingID
	Type     string
	Inputs   []*Slot
	Outputs  []*Slot
}

func (inv *Inventory) input(material string) *Slot {
	for _, s := range inv.Inputs {
		if s.Material == material {
			return s
		}
	}
	return nil
}

func (inv *Inventory) output(material string) *Slot {
	for _, s := range inv.Outputs {
		if s.Material == material {
			return s
		}
	}
	return nil
}

type listenerEntry struct {
	id int
	fn InventoryListener
}

// InventoryManager owns every building inventory, keyed by building id, plus
// the static production chain table and the change listener list. It is
// accessed only from the simulation goroutine.
type InventoryManager struct {
	cats *catalogs.Catalogs
	byID map[BuildingID]*Inventory

	listeners    []listenerEntry
	nextListener int
}

func NewInventoryManager(cats *catalogs.Catalogs) *InventoryManager {
	return &InventoryManager{
		cats: cats,
		byID: map[BuildingID]*Inventory{},
	}
}

// Create builds the inventory for a newly placed building from its catalog
// entry. Types with no slots get no inventory; Create reports whether one was
// made.
func (m *InventoryManager) Create(id BuildingID, buildingType string) bool {
	def, ok := m.cats.Buildings.Defs[buildingType]
	if !ok || (len(def.InputSlots) == 0 && len(def.OutputSlots) == 0) {
		return false
	}
	inv := &Inventory{Building: id, Type: buildingType}
	for _, sd := range def.InputSlots {
		inv.Inputs = append(inv.Inputs, &Slot{Material: sd.Material, Max: sd.Capacity})
	}
	for _, sd := range def.OutputSlots {
		inv.Outputs = append(inv.Outputs, &Slot{Material: sd.Material, Max: sd.Capacity})
	}
	m.byID[id] = inv
	return true
}

func (m *InventoryManager) Remove(id BuildingID) {
	delete(m.byID, id)
}

func (m *InventoryManager) Get(id BuildingID) *Inventory {
	return m.byID[id]
}

// Subscribe registers a change listener and returns its handle. Listeners
// fire synchronously, in registration order, only on net amount changes.
func (m *InventoryManager) Subscribe(fn InventoryListener) int {
	m.nextListener++
	m.listeners = append(m.listeners, listenerEntry{id: m.nextListener, fn: fn})
	return m.nextListener
}

func (m *InventoryManager) Unsubscribe(handle int) {
	for i, e := range m.listeners {
		if e.id == handle {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}

func (m *InventoryManager) notify(id BuildingID, s *Slot, kind SlotKind, prev int) {
	if s.Current == prev {
		return
	}
	ev := InventoryChange{
		Building: id,
		Material: s.Material,
		Kind:     kind,
		Previous: prev,
		New:      s.Current,
	}
	for _, e := range m.listeners {
		e.fn(ev)
	}
}

// mutableSlot resolves a slot for a mutating operation. A missing inventory
// or undeclared material is a contract violation, not a quantity problem.
func (m *InventoryManager) mutableSlot(id BuildingID, material string, kind SlotKind) (*Slot, error) {
	inv := m.byID[id]
	if inv == nil {
		return nil, fmt.Errorf("inventory %s %s for building %d: %w", kind, material, id, ErrNoInventory)
	}
	var s *Slot
	if kind == SlotInput {
		s = inv.input(material)
	} else {
		s = inv.output(material)
	}
	if s == nil {
		return nil, fmt.Errorf("building %d (%s) %s %s: %w", id, inv.Type, kind, material, ErrNoSlot)
	}
	return s, nil
}

// DepositInput adds material to an input slot and returns the overflow that
// did not fit.
func (m *InventoryManager) DepositInput(id BuildingID, material string, amount int) (overflow int, err error) {
	s, err := m.mutableSlot(id, material, SlotInput)
	if err != nil {
		return 0, err
	}
	prev := s.Current
	overflow = s.Deposit(amount)
	m.notify(id, s, SlotInput, prev)
	return overflow, nil
}

func (m *InventoryManager) WithdrawInput(id BuildingID, material string, amount int) (withdrawn int, err error) {
	s, err := m.mutableSlot(id, material, SlotInput)
	if err != nil {
		return 0, err
	}
	prev := s.Current
	withdrawn = s.Withdraw(amount)
	m.notify(id, s, SlotInput, prev)
	return withdrawn, nil
}

func (m *InventoryManager) DepositOutput(id BuildingID, material string, amount int) (overflow int, err error) {
	s, err := m.mutableSlot(id, material, SlotOutput)
	if err != nil {
		return 0, err
	}
	prev := s.Current
	overflow = s.Deposit(amount)
	m.notify(id, s, SlotOutput, prev)
	return overflow, nil
}

func (m *InventoryManager) WithdrawOutput(id BuildingID, material string, amount int) (withdrawn int, err error) {
	s, err := m.mutableSlot(id, material, SlotOutput)
	if err != nil {
		return 0, err
	}
	prev := s.Current
	withdrawn = s.Withdraw(amount)
	m.notify(id, s, SlotOutput, prev)
	return withdrawn, nil
}

// ReserveOutput claims up to amount of unreserved output material for one
// claimant. Reservations do not change the current amount, so no listener
// fires.
func (m *InventoryManager) ReserveOutput(id BuildingID, material string, amount int) (reserved int, err error) {
	s, err := m.mutableSlot(id, material, SlotOutput)
	if err != nil {
		return 0, err
	}
	return s.Reserve(amount), nil
}

func (m *InventoryManager) ReleaseOutputReservation(id BuildingID, material string, amount int) (released int, err error) {
	s, err := m.mutableSlot(id, material, SlotOutput)
	if err != nil {
		return 0, err
	}
	return s.ReleaseReservation(amount), nil
}

func (m *InventoryManager) WithdrawReservedOutput(id BuildingID, material string, amount int) (withdrawn int, err error) {
	s, err := m.mutableSlot(id, material, SlotOutput)
	if err != nil {
		return 0, err
	}
	prev := s.Current
	withdrawn = s.WithdrawReserved(amount)
	m.notify(id, s, SlotOutput, prev)
	return withdrawn, nil
}

// Speculative queries. All of them return zero/false when the building or
// slot does not exist; they are safe to call with any id.

func (m *InventoryManager) CanAcceptInput(id BuildingID, material string) bool {
	return m.InputSpace(id, material) > 0
}

func (m *InventoryManager) InputSpace(id BuildingID, material string) int {
	inv := m.byID[id]
	if inv == nil {
		return 0
	}
	s := inv.input(material)
	if s == nil {
		return 0
	}
	return s.Max - s.Current
}

func (m *InventoryManager) InputAmount(id BuildingID, material string) int {
	inv := m.byID[id]
	if inv == nil {
		return 0
	}
	s := inv.input(material)
	if s == nil {
		return 0
	}
	return s.Current
}

func (m *InventoryManager) OutputAmount(id BuildingID, material string) int {
	inv := m.byID[id]
	if inv == nil {
		return 0
	}
	s := inv.output(material)
	if s == nil {
		return 0
	}
	return s.Current
}

func (m *InventoryManager) UnreservedOutputAmount(id BuildingID, material string) int {
	inv := m.byID[id]
	if inv == nil {
		return 0
	}
	s := inv.output(material)
	if s == nil {
		return 0
	}
	return s.Unreserved()
}

func (m *InventoryManager) CanProvideOutput(id BuildingID, material string) bool {
	return m.UnreservedOutputAmount(id, material) > 0
}

// BuildingsWithOutput lists buildings holding unreserved material of the
// given type, in ascending id order so transport callers iterate
// deterministically.
func (m *InventoryManager) BuildingsWithOutput(material string) []BuildingID {
	var out []BuildingID
	for id, inv := range m.byID {
		s := inv.output(material)
		if s != nil && s.Unreserved() > 0 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BuildingsNeedingInput lists buildings with free space in an input slot of
// the given material, in ascending id order.
func (m *InventoryManager) BuildingsNeedingInput(material string) []BuildingID {
	var out []BuildingID
	for id, inv := range m.byID {
		s := inv.input(material)
		if s != nil && s.Current < s.Max {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
