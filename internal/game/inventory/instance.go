package inventory

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

// Item is a concrete instance of an ItemDef. It is the modifier source attached to a
// unit when equipped.
type Item struct {
	InstanceID string
	Def        *ItemDef
	mods       stat.ModList
}

// NewItem creates a fresh instance of def with a random instance ID.
//
// Precondition: def passed Validate.
func NewItem(def *ItemDef) (*Item, error) {
	return RestoreItem(uuid.New().String(), def)
}

// RestoreItem recreates a persisted instance.
//
// Precondition: instanceID must be non-empty; def passed Validate.
func RestoreItem(instanceID string, def *ItemDef) (*Item, error) {
	if instanceID == "" {
		return nil, fmt.Errorf("inventory: instance ID must not be empty")
	}
	mods, err := def.ModList()
	if err != nil {
		return nil, fmt.Errorf("inventory: item %q: %w", def.ID, err)
	}
	return &Item{InstanceID: instanceID, Def: def, mods: mods}, nil
}

// SourceID returns the instance ID.
func (it *Item) SourceID() string { return it.InstanceID }

// Modifiers returns the modifiers granted while the item is equipped. It is nil for
// items that grant none.
func (it *Item) Modifiers() stat.ModList { return it.mods }

// String returns "Name (short-id)".
func (it *Item) String() string {
	short := it.InstanceID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s (%s)", it.Def.Name, short)
}
