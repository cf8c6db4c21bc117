package ruleset

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

// EnemyTemplate defines a reusable enemy stat block loaded from YAML.
type EnemyTemplate struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Level       int            `yaml:"level"`
	Abilities   map[string]int `yaml:"abilities"`
	// ArmorClass is the armor base; the Dexterity modifier is added on top.
	ArmorClass int `yaml:"ac"`
	MaxHealth  int `yaml:"max_health"`
	Speed      int `yaml:"speed"`
	DarkVision int `yaml:"dark_vision"`
	// Skills lists skill proficiencies by stat key.
	Skills []string `yaml:"skills"`
	// Equipment lists item definition IDs spawned and equipped on every instance.
	Equipment []string `yaml:"equipment"`
	// SpawnHook names a Lua function run after the instance is built. Empty means none.
	SpawnHook string `yaml:"on_spawn"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1, MaxHealth >= 1,
// ArmorClass >= 0, Speed >= 0, every ability key is an ability and every skill key is a
// skill; returns an error on the first violation otherwise.
func (t *EnemyTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("enemy template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("enemy template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("enemy template %q: level must be >= 1", t.ID)
	}
	if t.MaxHealth < 1 {
		return fmt.Errorf("enemy template %q: max_health must be >= 1", t.ID)
	}
	if t.ArmorClass < 0 || t.Speed < 0 || t.DarkVision < 0 {
		return fmt.Errorf("enemy template %q: ac, speed and dark_vision must be >= 0", t.ID)
	}
	if _, err := parseAbilities(t.Abilities); err != nil {
		return fmt.Errorf("enemy template %q: %w", t.ID, err)
	}
	for _, key := range t.Skills {
		id, err := stat.Parse(key)
		if err != nil || !id.IsSkill() {
			return fmt.Errorf("enemy template %q: %q is not a skill", t.ID, key)
		}
	}
	return nil
}

// Bases returns the authored base value of every stat the template sets. Abilities the
// template omits default to 10.
//
// Precondition: t passed Validate.
func (t *EnemyTemplate) Bases() map[stat.ID]float64 {
	out := make(map[stat.ID]float64, stat.Count)
	for _, id := range stat.Abilities() {
		out[id] = 10
	}
	abilities, _ := parseAbilities(t.Abilities)
	for id, v := range abilities {
		out[id] = float64(v)
	}
	out[stat.ArmorClass] = float64(t.ArmorClass)
	out[stat.MaxHealth] = float64(t.MaxHealth)
	out[stat.Speed] = float64(t.Speed)
	out[stat.DarkVision] = float64(t.DarkVision)
	return out
}

// SkillProficiencies returns the skills the template is proficient in.
//
// Precondition: t passed Validate.
func (t *EnemyTemplate) SkillProficiencies() []stat.ID {
	out := make([]stat.ID, 0, len(t.Skills))
	for _, key := range t.Skills {
		if id, err := stat.Parse(key); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// LoadEnemyFromBytes parses a single enemy template from raw YAML bytes.
//
// Postcondition: Returns a validated *EnemyTemplate, or an error.
func LoadEnemyFromBytes(data []byte) (*EnemyTemplate, error) {
	var tmpl EnemyTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing enemy template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadEnemies reads all .yaml files in dir and parses each as an EnemyTemplate.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate failure.
func LoadEnemies(dir string) ([]*EnemyTemplate, error) {
	return loadDir[EnemyTemplate](dir, "enemy")
}
