// Package stat defines the stat identifiers, the Stat value node, typed modifiers and the
// aggregation rules that turn a base value plus modifiers into an effective total.
package stat

import "fmt"

// ID addresses one tracked attribute without holding a reference to its storage.
type ID uint8

// Abilities.
const (
	Strength ID = iota
	Dexterity
	Constitution
	Intelligence
	Wisdom
	Charisma
)

// Skills.
const (
	Athletics ID = iota + Charisma + 1
	Acrobatics
	SleightOfHand
	Stealth
	Arcana
	History
	Investigation
	Nature
	Religion
	AnimalHandling
	Insight
	Medicine
	Perception
	Survival
	Deception
	Intimidation
	Performance
	Persuasion
)

// Derived and racial stats.
const (
	ArmorClass ID = iota + Persuasion + 1
	MaxHealth
	DarkVision
	Speed

	// Count is the number of identifiers. It is not a valid ID.
	Count
)

// info is the per-identifier metadata table. Every ID in [0, Count) must have an entry.
var info = [Count]struct {
	key   string
	label string
}{
	Strength:       {"strength", "Strength"},
	Dexterity:      {"dexterity", "Dexterity"},
	Constitution:   {"constitution", "Constitution"},
	Intelligence:   {"intelligence", "Intelligence"},
	Wisdom:         {"wisdom", "Wisdom"},
	Charisma:       {"charisma", "Charisma"},
	Athletics:      {"athletics", "Athletics"},
	Acrobatics:     {"acrobatics", "Acrobatics"},
	SleightOfHand:  {"sleight_of_hand", "Sleight of Hand"},
	Stealth:        {"stealth", "Stealth"},
	Arcana:         {"arcana", "Arcana"},
	History:        {"history", "History"},
	Investigation:  {"investigation", "Investigation"},
	Nature:         {"nature", "Nature"},
	Religion:       {"religion", "Religion"},
	AnimalHandling: {"animal_handling", "Animal Handling"},
	Insight:        {"insight", "Insight"},
	Medicine:       {"medicine", "Medicine"},
	Perception:     {"perception", "Perception"},
	Survival:       {"survival", "Survival"},
	Deception:      {"deception", "Deception"},
	Intimidation:   {"intimidation", "Intimidation"},
	Performance:    {"performance", "Performance"},
	Persuasion:     {"persuasion", "Persuasion"},
	ArmorClass:     {"armor_class", "Armor Class"},
	MaxHealth:      {"max_health", "Max Health"},
	DarkVision:     {"dark_vision", "Darkvision"},
	Speed:          {"speed", "Speed"},
}

var byKey = make(map[string]ID, Count)

func init() {
	for i := range Count {
		e := info[i]
		if e.key == "" || e.label == "" {
			panic(fmt.Sprintf("stat: identifier %d has no metadata entry", i))
		}
		if _, dup := byKey[e.key]; dup {
			panic(fmt.Sprintf("stat: duplicate key %q", e.key))
		}
		byKey[e.key] = i
	}
}

// Valid reports whether id is one of the enumerated identifiers.
func (id ID) Valid() bool { return id < Count }

// Key returns the snake_case identifier used in content files and persistence.
func (id ID) Key() string {
	if !id.Valid() {
		return fmt.Sprintf("stat(%d)", uint8(id))
	}
	return info[id].key
}

// String returns the display label.
func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("stat(%d)", uint8(id))
	}
	return info[id].label
}

// IsAbility reports whether id is one of the six ability scores.
func (id ID) IsAbility() bool { return id <= Charisma }

// IsSkill reports whether id is one of the eighteen skills.
func (id ID) IsSkill() bool { return id >= Athletics && id <= Persuasion }

// Parse resolves a snake_case key such as "sleight_of_hand" to its ID.
//
// Postcondition: Returns a valid ID or a non-nil error naming the unknown key.
func Parse(key string) (ID, error) {
	id, ok := byKey[key]
	if !ok {
		return Count, fmt.Errorf("stat: unknown stat %q", key)
	}
	return id, nil
}

// All returns every identifier in declaration order.
func All() []ID {
	out := make([]ID, 0, Count)
	for i := range Count {
		out = append(out, i)
	}
	return out
}

// Abilities returns the six ability identifiers in declaration order.
func Abilities() []ID {
	return []ID{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}
}

// Skills returns the eighteen skill identifiers in declaration order.
func Skills() []ID {
	out := make([]ID, 0, Persuasion-Athletics+1)
	for id := Athletics; id <= Persuasion; id++ {
		out = append(out, id)
	}
	return out
}
