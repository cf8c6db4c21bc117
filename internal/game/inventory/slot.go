package inventory

import (
	"fmt"
	"slices"
)

// Slot identifies where an equipped item is worn or held.
type Slot string

const (
	// SlotNone marks an item that occupies no slot when equipped.
	SlotNone     Slot = ""
	SlotMainHand Slot = "main_hand"
	SlotOffHand  Slot = "off_hand"
	SlotBody     Slot = "body"
	SlotHead     Slot = "head"
	SlotHands    Slot = "hands"
	SlotFeet     Slot = "feet"
	SlotCloak    Slot = "cloak"
	SlotNeck     Slot = "neck"
	SlotRing     Slot = "ring"
)

// slotCapacity is how many items each slot holds at once.
var slotCapacity = map[Slot]int{
	SlotMainHand: 1,
	SlotOffHand:  1,
	SlotBody:     1,
	SlotHead:     1,
	SlotHands:    1,
	SlotFeet:     1,
	SlotCloak:    1,
	SlotNeck:     1,
	SlotRing:     2,
}

// slotDisplayNames maps every slot identifier to its human-readable label.
var slotDisplayNames = map[Slot]string{
	SlotMainHand: "Main Hand",
	SlotOffHand:  "Off Hand",
	SlotBody:     "Body",
	SlotHead:     "Head",
	SlotHands:    "Hands",
	SlotFeet:     "Feet",
	SlotCloak:    "Cloak",
	SlotNeck:     "Neck",
	SlotRing:     "Ring",
}

// Valid reports whether s is a known, capacity-limited slot.
func (s Slot) Valid() bool {
	_, ok := slotCapacity[s]
	return ok
}

// DisplayName returns the human-readable label for s, or s itself if unknown.
func (s Slot) DisplayName() string {
	if label, ok := slotDisplayNames[s]; ok {
		return label
	}
	return string(s)
}

// Capacity returns how many items s holds at once. SlotNone is unlimited (-1).
func (s Slot) Capacity() int {
	if s == SlotNone {
		return -1
	}
	return slotCapacity[s]
}

// Slots tracks which item instances occupy each slot of one unit.
//
// Slots is not safe for concurrent use.
type Slots struct {
	held map[Slot][]string
}

// NewSlots returns an empty slot table.
func NewSlots() *Slots {
	return &Slots{held: make(map[Slot][]string)}
}

// Occupy records instanceID in slot.
//
// Postcondition: Returns an error without side effects when slot is full or unknown.
// SlotNone is never full and is not tracked.
func (s *Slots) Occupy(slot Slot, instanceID string) error {
	if slot == SlotNone {
		return nil
	}
	if !slot.Valid() {
		return fmt.Errorf("unknown slot %q", slot)
	}
	if len(s.held[slot]) >= slot.Capacity() {
		return fmt.Errorf("%s slot is full", slot.DisplayName())
	}
	s.held[slot] = append(s.held[slot], instanceID)
	return nil
}

// Release frees whatever slot instanceID occupies. It is a no-op if none.
func (s *Slots) Release(instanceID string) {
	for slot, ids := range s.held {
		if i := slices.Index(ids, instanceID); i >= 0 {
			s.held[slot] = slices.Delete(ids, i, i+1)
			return
		}
	}
}

// Held returns the instance IDs occupying slot.
func (s *Slots) Held(slot Slot) []string {
	return slices.Clone(s.held[slot])
}
