package stat

import "fmt"

// Proficiency is the training level attached to an ability save or skill. Aggregation
// ignores it; the roll system reads it.
type Proficiency uint8

const (
	// NotProficient is the default training level.
	NotProficient Proficiency = iota
	// Proficient adds the proficiency bonus once.
	Proficient
	// Expert adds the proficiency bonus twice.
	Expert
)

var proficiencyNames = [...]string{NotProficient: "none", Proficient: "proficient", Expert: "expert"}

// String returns the content-file spelling of p.
func (p Proficiency) String() string {
	if int(p) < len(proficiencyNames) {
		return proficiencyNames[p]
	}
	return fmt.Sprintf("proficiency(%d)", uint8(p))
}

// ParseProficiency resolves "none", "proficient" or "expert". The empty string is "none".
func ParseProficiency(s string) (Proficiency, error) {
	if s == "" {
		return NotProficient, nil
	}
	for i, name := range proficiencyNames {
		if s == name {
			return Proficiency(i), nil
		}
	}
	return NotProficient, fmt.Errorf("stat: unknown proficiency %q", s)
}

// Multiplier returns how many times the proficiency bonus applies.
func (p Proficiency) Multiplier() int {
	switch p {
	case Proficient:
		return 1
	case Expert:
		return 2
	default:
		return 0
	}
}

// ProficiencyBonus returns the level-derived bonus: 2 + (level-1)/4.
//
// Precondition: level >= 1.
func ProficiencyBonus(level int) int {
	return 2 + (level-1)/4
}
