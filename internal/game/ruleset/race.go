package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

// Race defines a playable race for character creation.
//
// Precondition: ID and Name must be non-empty and Speed positive after loading.
type Race struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Speed       int            `yaml:"speed"`
	DarkVision  int            `yaml:"dark_vision"`
	Abilities   map[string]int `yaml:"ability_bonuses"`
	Traits      []string       `yaml:"traits"`
}

// Validate reports every problem with r.
func (r *Race) Validate() error {
	var errs []error
	if r.ID == "" {
		errs = append(errs, errors.New("race id must not be empty"))
	}
	if r.Name == "" {
		errs = append(errs, errors.New("race name must not be empty"))
	}
	if r.Speed <= 0 {
		errs = append(errs, fmt.Errorf("race %q: speed must be > 0, got %d", r.ID, r.Speed))
	}
	if r.DarkVision < 0 {
		errs = append(errs, fmt.Errorf("race %q: dark_vision must be >= 0, got %d", r.ID, r.DarkVision))
	}
	if _, err := parseAbilities(r.Abilities); err != nil {
		errs = append(errs, fmt.Errorf("race %q: %w", r.ID, err))
	}
	return errors.Join(errs...)
}

// AbilityBonuses returns the race's ability score increases keyed by stat.
//
// Precondition: r passed Validate.
func (r *Race) AbilityBonuses() map[stat.ID]int {
	m, _ := parseAbilities(r.Abilities)
	return m
}

// LoadRaces reads all .yaml files in dir and parses each as a Race.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed races (may be empty slice) or a non-nil error.
func LoadRaces(dir string) ([]*Race, error) {
	return loadDir[Race](dir, "race")
}

// parseAbilities converts a content-file ability map to stat identifiers, rejecting
// anything that is not one of the six abilities.
func parseAbilities(m map[string]int) (map[stat.ID]int, error) {
	out := make(map[stat.ID]int, len(m))
	for key, v := range m {
		id, err := stat.Parse(key)
		if err != nil {
			return nil, err
		}
		if !id.IsAbility() {
			return nil, fmt.Errorf("%s is not an ability", key)
		}
		out[id] = v
	}
	return out, nil
}
