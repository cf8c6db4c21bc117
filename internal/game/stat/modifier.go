package stat

import (
	"fmt"
	"strings"
)

// Kind selects how a modifier combines with the others targeting the same stat.
type Kind uint8

const (
	// Add contributes its value to a flat sum.
	Add Kind = iota
	// Mult contributes its value to a percentage sum applied once: ×(1 + ΣMult).
	Mult
	// Replace overrides the total outright; the last one in iteration order wins.
	Replace
	// BestOf sets a floor: the total is never lower than the highest BestOf value.
	BestOf
)

var kindNames = [...]string{Add: "add", Mult: "mult", Replace: "replace", BestOf: "best_of"}

// String returns the content-file spelling of k.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind resolves "add", "mult", "replace" or "best_of" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("stat: unknown modifier kind %q", s)
}

// Modifier is a typed bonus or penalty targeting one stat. Modifiers are owned by the
// source that carries them and are never mutated by aggregation.
type Modifier struct {
	Target ID
	Value  float64
	Kind   Kind
}

// String renders the modifier the way the character sheet shows it.
func (m Modifier) String() string {
	switch m.Kind {
	case Mult:
		return fmt.Sprintf("%s %+g%%", m.Target, m.Value*100)
	case Replace:
		return fmt.Sprintf("%s = %g", m.Target, m.Value)
	case BestOf:
		return fmt.Sprintf("%s at least %g", m.Target, m.Value)
	default:
		return fmt.Sprintf("%s %+g", m.Target, m.Value)
	}
}

// ModList is the ordered modifier list carried by one source.
type ModList []Modifier

// Targets returns the distinct targets in first-seen order.
func (l ModList) Targets() []ID {
	var seen [Count]bool
	var out []ID
	for _, m := range l {
		if !m.Target.Valid() || seen[m.Target] {
			continue
		}
		seen[m.Target] = true
		out = append(out, m.Target)
	}
	return out
}

// For returns the modifiers in l targeting id, preserving order.
func (l ModList) For(id ID) ModList {
	var out ModList
	for _, m := range l {
		if m.Target == id {
			out = append(out, m)
		}
	}
	return out
}

// Summary is the per-kind reduction of a modifier collection.
type Summary struct {
	// Replace is the value of the last Replace modifier, or nil.
	Replace *float64
	// BestOf is the highest BestOf value, or nil.
	BestOf *float64
	// Add is the sum of Add values.
	Add float64
	// Mult is the sum of Mult values.
	Mult float64
}

// Summarize partitions mods by kind.
//
// The last Replace in iteration order wins. This is a provisional tie-break: sources
// carry no timestamp or priority to order competing overrides.
func Summarize(mods []Modifier) Summary {
	var sum Summary
	for _, m := range mods {
		v := m.Value
		switch m.Kind {
		case Add:
			sum.Add += v
		case Mult:
			sum.Mult += v
		case Replace:
			sum.Replace = &v
		case BestOf:
			if sum.BestOf == nil || v > *sum.BestOf {
				sum.BestOf = &v
			}
		}
	}
	return sum
}
