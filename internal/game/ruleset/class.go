package ruleset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

// ClassFeature describes a single class feature gained at a specific level.
type ClassFeature struct {
	Name        string `yaml:"name"`
	Level       int    `yaml:"level"`
	Description string `yaml:"description"`
}

// Class defines a playable character class for character creation.
//
// Precondition: ID and Name must be non-empty and HitDie one of 6, 8, 10, 12 after
// loading.
type Class struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	HitDie       int            `yaml:"hit_die"`
	SavingThrows []string       `yaml:"saving_throws"`
	Features     []ClassFeature `yaml:"features"`
}

var hitDice = []int{6, 8, 10, 12}

// Validate reports every problem with c.
func (c *Class) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("class id must not be empty"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("class name must not be empty"))
	}
	if !slices.Contains(hitDice, c.HitDie) {
		errs = append(errs, fmt.Errorf("class %q: hit_die must be one of %v, got %d", c.ID, hitDice, c.HitDie))
	}
	for _, key := range c.SavingThrows {
		id, err := stat.Parse(key)
		if err != nil || !id.IsAbility() {
			errs = append(errs, fmt.Errorf("class %q: saving throw %q is not an ability", c.ID, key))
		}
	}
	return errors.Join(errs...)
}

// SaveProficiencies returns the abilities whose saving throws the class is proficient in.
//
// Precondition: c passed Validate.
func (c *Class) SaveProficiencies() []stat.ID {
	out := make([]stat.ID, 0, len(c.SavingThrows))
	for _, key := range c.SavingThrows {
		if id, err := stat.Parse(key); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// StartingHealth returns the level 1 maximum health: the full hit die plus the
// Constitution modifier, never below 1.
func (c *Class) StartingHealth(constitution float64) int {
	return max(1, c.HitDie+stat.AbilityModifier(constitution))
}

// LoadClasses reads all .yaml files in dir and parses each as a Class.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed classes (may be empty slice) or a non-nil error.
func LoadClasses(dir string) ([]*Class, error) {
	return loadDir[Class](dir, "class")
}
