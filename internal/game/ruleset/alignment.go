package ruleset

import (
	"fmt"
	"strings"
)

// Alignment is a character's moral and ethical outlook.
type Alignment uint8

const (
	LawfulGood Alignment = iota
	LawfulNeutral
	LawfulEvil
	NeutralGood
	Neutral
	NeutralEvil
	ChaoticGood
	ChaoticNeutral
	ChaoticEvil
)

var alignmentNames = [...]string{
	LawfulGood:     "lawful_good",
	LawfulNeutral:  "lawful_neutral",
	LawfulEvil:     "lawful_evil",
	NeutralGood:    "neutral_good",
	Neutral:        "neutral",
	NeutralEvil:    "neutral_evil",
	ChaoticGood:    "chaotic_good",
	ChaoticNeutral: "chaotic_neutral",
	ChaoticEvil:    "chaotic_evil",
}

// String returns the snake_case spelling used in commands and persistence.
func (a Alignment) String() string {
	if int(a) < len(alignmentNames) {
		return alignmentNames[a]
	}
	return fmt.Sprintf("alignment(%d)", uint8(a))
}

// Label returns the display form, e.g. "Lawful Good".
func (a Alignment) Label() string {
	words := strings.Split(a.String(), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ParseAlignment resolves a snake_case alignment name. The empty string is Neutral.
func ParseAlignment(s string) (Alignment, error) {
	if s == "" {
		return Neutral, nil
	}
	for i, name := range alignmentNames {
		if strings.EqualFold(s, name) {
			return Alignment(i), nil
		}
	}
	return Neutral, fmt.Errorf("unknown alignment %q", s)
}

// Alignments returns every alignment in declaration order.
func Alignments() []Alignment {
	out := make([]Alignment, len(alignmentNames))
	for i := range alignmentNames {
		out[i] = Alignment(i)
	}
	return out
}
