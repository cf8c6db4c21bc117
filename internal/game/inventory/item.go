// Package inventory defines item definitions loaded from content files and the item
// instances that are attached to units as modifier sources.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

// Kind constants for ItemDef.Kind.
const (
	KindWeapon   = "weapon"
	KindArmor    = "armor"
	KindShield   = "shield"
	KindRing     = "ring"
	KindWondrous = "wondrous"
	KindGear     = "gear"
)

// validKinds is the set of valid ItemDef kinds.
var validKinds = map[string]bool{
	KindWeapon:   true,
	KindArmor:    true,
	KindShield:   true,
	KindRing:     true,
	KindWondrous: true,
	KindGear:     true,
}

// ModifierDef is the content-file form of a stat modifier.
type ModifierDef struct {
	Stat  string  `yaml:"stat"`
	Kind  string  `yaml:"kind"`
	Value float64 `yaml:"value"`
}

// ItemDef defines the static properties of an item loaded from YAML.
type ItemDef struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Kind        string        `yaml:"kind"`
	Slot        Slot          `yaml:"slot"`
	Weight      float64       `yaml:"weight"`
	Cost        int           `yaml:"cost"`
	Damage      string        `yaml:"damage"`
	DamageType  string        `yaml:"damage_type"`
	Modifiers   []ModifierDef `yaml:"modifiers"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("Kind must be one of weapon, armor, shield, ring, wondrous, gear; got %q", d.Kind))
	}
	if d.Slot != SlotNone && !d.Slot.Valid() {
		errs = append(errs, fmt.Errorf("Slot %q is not a known slot", d.Slot))
	}
	if d.Weight < 0 {
		errs = append(errs, errors.New("Weight must be >= 0"))
	}
	if d.Cost < 0 {
		errs = append(errs, errors.New("Cost must be >= 0"))
	}
	if d.Kind == KindWeapon {
		if _, err := dice.Parse(d.Damage); err != nil {
			errs = append(errs, fmt.Errorf("Damage is required when Kind is weapon: %w", err))
		}
	}
	if _, err := d.ModList(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// ModList compiles the definition's modifiers.
//
// Postcondition: Returns nil (not an empty list) when the item grants no modifiers.
func (d *ItemDef) ModList() (stat.ModList, error) {
	if len(d.Modifiers) == 0 {
		return nil, nil
	}
	out := make(stat.ModList, 0, len(d.Modifiers))
	for i, m := range d.Modifiers {
		id, err := stat.Parse(m.Stat)
		if err != nil {
			return nil, fmt.Errorf("modifier %d: %w", i, err)
		}
		kind, err := stat.ParseKind(m.Kind)
		if err != nil {
			return nil, fmt.Errorf("modifier %d: %w", i, err)
		}
		out = append(out, stat.Modifier{Target: id, Kind: kind, Value: m.Value})
	}
	return out, nil
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as an
// ItemDef, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*ItemDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var d ItemDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		items = append(items, &d)
	}
	return items, nil
}
