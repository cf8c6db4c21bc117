package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

// Background defines a character background granting skill proficiencies.
type Background struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Skills      []string `yaml:"skill_proficiencies"`
}

// Validate reports every problem with b.
func (b *Background) Validate() error {
	var errs []error
	if b.ID == "" {
		errs = append(errs, errors.New("background id must not be empty"))
	}
	if b.Name == "" {
		errs = append(errs, errors.New("background name must not be empty"))
	}
	for _, key := range b.Skills {
		id, err := stat.Parse(key)
		if err != nil || !id.IsSkill() {
			errs = append(errs, fmt.Errorf("background %q: %q is not a skill", b.ID, key))
		}
	}
	return errors.Join(errs...)
}

// SkillProficiencies returns the skills the background grants.
//
// Precondition: b passed Validate.
func (b *Background) SkillProficiencies() []stat.ID {
	out := make([]stat.ID, 0, len(b.Skills))
	for _, key := range b.Skills {
		if id, err := stat.Parse(key); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// LoadBackgrounds reads all .yaml files in dir and parses each as a Background.
func LoadBackgrounds(dir string) ([]*Background, error) {
	return loadDir[Background](dir, "background")
}
