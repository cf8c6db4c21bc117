package character

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

// BaseArmorClass is the unarmored armor class before the Dexterity modifier.
const BaseArmorClass = 10

// Spec is the player's choices at character creation.
type Spec struct {
	Name       string
	PlayerName string
	Race       string
	Class      string
	Background string
	Alignment  ruleset.Alignment
	// Level defaults to 1 when zero.
	Level int
	// Abilities holds the rolled or assigned score for every ability, before racial
	// bonuses.
	Abilities map[stat.ID]int
}

// AbilitiesFromScores assigns scores to the six abilities in declaration order.
//
// Precondition: len(scores) == 6.
func AbilitiesFromScores(scores []int) (map[stat.ID]int, error) {
	abilities := stat.Abilities()
	if len(scores) != len(abilities) {
		return nil, fmt.Errorf("need %d ability scores, got %d", len(abilities), len(scores))
	}
	out := make(map[stat.ID]int, len(abilities))
	for i, id := range abilities {
		out[id] = scores[i]
	}
	return out, nil
}

// Build constructs a new Character. Racial ability bonuses are folded into the ability
// bases, the race sets Speed and DarkVision, and MaxHealth is the class hit die plus the
// final Constitution modifier (minimum 1). The class grants saving throw proficiencies
// and the background grants skill proficiencies.
//
// Precondition: race, class and background must be non-nil and valid.
// Postcondition: Returns a Character ready for persistence, or a non-nil error.
func Build(spec Spec, race *ruleset.Race, class *ruleset.Class, background *ruleset.Background) (*Character, error) {
	if spec.Name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if race == nil {
		return nil, errors.New("race must not be nil")
	}
	if class == nil {
		return nil, errors.New("class must not be nil")
	}
	if background == nil {
		return nil, errors.New("background must not be nil")
	}
	if spec.Level < 0 || spec.Level > 20 {
		return nil, fmt.Errorf("level must be in [1, 20], got %d", spec.Level)
	}

	bases := make(map[stat.ID]float64, stat.Count)
	bonuses := race.AbilityBonuses()
	for _, id := range stat.Abilities() {
		score, ok := spec.Abilities[id]
		if !ok {
			return nil, fmt.Errorf("missing ability score for %s", id.Key())
		}
		if score < 1 || score > 30 {
			return nil, fmt.Errorf("%s score must be in [1, 30], got %d", id.Key(), score)
		}
		bases[id] = float64(score + bonuses[id])
	}
	bases[stat.ArmorClass] = BaseArmorClass
	bases[stat.Speed] = float64(race.Speed)
	bases[stat.DarkVision] = float64(race.DarkVision)
	maxHealth := class.StartingHealth(bases[stat.Constitution])
	bases[stat.MaxHealth] = float64(maxHealth)

	profs := make(map[stat.ID]stat.Proficiency)
	for _, id := range class.SaveProficiencies() {
		profs[id] = stat.Proficient
	}
	for _, id := range background.SkillProficiencies() {
		profs[id] = stat.Proficient
	}

	level := spec.Level
	if level == 0 {
		level = 1
	}
	return &Character{
		Name:          spec.Name,
		PlayerName:    spec.PlayerName,
		Race:          race.ID,
		Class:         class.ID,
		Background:    background.ID,
		Alignment:     spec.Alignment,
		Level:         level,
		Health:        maxHealth,
		Bases:         bases,
		Proficiencies: profs,
	}, nil
}
