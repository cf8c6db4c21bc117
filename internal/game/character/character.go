// Package character defines the player character model, its pure creation logic and the
// translation of a character into a live stat unit.
package character

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
	"github.com/cory-johannsen/charsheet/internal/game/stat"
	"github.com/cory-johannsen/charsheet/internal/game/unit"
)

// Character is a character's persistent state. It holds authored values only: totals are
// never stored and are rebuilt by the engine when the character is brought into play.
//
// ID is set by the persistence layer; zero indicates an unsaved character.
type Character struct {
	ID int64

	Name       string
	PlayerName string
	Race       string // race ID
	Class      string // class ID
	Background string // background ID
	Alignment  ruleset.Alignment
	Level      int
	Experience int
	Health     int

	Bases         map[stat.ID]float64
	Proficiencies map[stat.ID]stat.Proficiency
	// Equipment lists the item instances attached when the character was saved, in
	// attachment order.
	Equipment []EquippedItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EquippedItem records one attached item instance.
type EquippedItem struct {
	InstanceID string
	ItemID     string
}

// ProficiencyBonus returns the level-derived proficiency bonus.
func (c *Character) ProficiencyBonus() int {
	return stat.ProficiencyBonus(max(1, c.Level))
}

// NewUnit builds the live unit for c, seeds every Total from its Base and runs the
// engine's initial pass so derived stats include their governing modifiers.
//
// Precondition: id must be non-empty; c.Bases must be non-nil.
// Postcondition: Returns a consistent unit with no sources attached, or an error.
func NewUnit(c *Character, id string, engine *unit.Engine) (*unit.Unit, error) {
	u, err := unit.NewFromGraph(id, c.Name, c.Bases, stat.DefaultGraph())
	if err != nil {
		return nil, err
	}
	for sid, p := range c.Proficiencies {
		u.SetProficiency(sid, p)
	}
	if err := engine.Initialize(u); err != nil {
		return nil, fmt.Errorf("initializing %q: %w", c.Name, err)
	}
	return u, nil
}

// FromTemplate returns the unsaved character described by an enemy template.
//
// Precondition: t passed Validate.
func FromTemplate(t *ruleset.EnemyTemplate) *Character {
	c := &Character{
		Name:          t.Name,
		Level:         t.Level,
		Health:        t.MaxHealth,
		Alignment:     ruleset.Neutral,
		Bases:         t.Bases(),
		Proficiencies: make(map[stat.ID]stat.Proficiency),
	}
	for _, id := range t.SkillProficiencies() {
		c.Proficiencies[id] = stat.Proficient
	}
	return c
}

// AbilityName returns the three-letter display label for an ability.
func AbilityName(id stat.ID) string {
	if !id.IsAbility() {
		return fmt.Sprintf("<%s>", id.Key())
	}
	return [...]string{"STR", "DEX", "CON", "INT", "WIS", "CHA"}[id]
}
