package stat

import (
	"errors"
	"fmt"
	"slices"
)

// ErrCycle is returned when a dependency graph contains a cycle.
var ErrCycle = errors.New("stat: dependency cycle")

// governedBy maps a derived stat to the ability whose modifier it receives as baseline.
var governedBy = map[ID]ID{
	Athletics:      Strength,
	Acrobatics:     Dexterity,
	SleightOfHand:  Dexterity,
	Stealth:        Dexterity,
	Arcana:         Intelligence,
	History:        Intelligence,
	Investigation:  Intelligence,
	Nature:         Intelligence,
	Religion:       Intelligence,
	AnimalHandling: Wisdom,
	Insight:        Wisdom,
	Medicine:       Wisdom,
	Perception:     Wisdom,
	Survival:       Wisdom,
	Deception:      Charisma,
	Intimidation:   Charisma,
	Performance:    Charisma,
	Persuasion:     Charisma,
	// Unarmored AC is 10 + Dexterity modifier.
	ArmorClass: Dexterity,
}

// GoverningAbility returns the ability whose modifier feeds id's aggregation.
//
// Postcondition: ok is false for abilities, MaxHealth, DarkVision and Speed.
func GoverningAbility(id ID) (ID, bool) {
	a, ok := governedBy[id]
	return a, ok
}

// Graph is an adjacency list: each stat maps to the stats recomputed after its total
// changes.
type Graph map[ID][]ID

// DefaultGraph returns the rules graph: each ability points at the stats it governs.
func DefaultGraph() Graph {
	return Graph{
		Strength:     {Athletics},
		Dexterity:    {Acrobatics, SleightOfHand, Stealth, ArmorClass},
		Intelligence: {Arcana, History, Investigation, Nature, Religion},
		Wisdom:       {AnimalHandling, Insight, Medicine, Perception, Survival},
		Charisma:     {Deception, Intimidation, Performance, Persuasion},
	}
}

// Dependents returns a copy of id's outgoing edges.
func (g Graph) Dependents(id ID) []ID {
	return slices.Clone(g[id])
}

// Order returns every ID in [0, Count) in a topological order of g. Ties are broken by
// declaration order so the result is deterministic.
//
// Postcondition: Returns ErrCycle (wrapped) if g is not acyclic.
func (g Graph) Order() ([]ID, error) {
	var indegree [Count]int
	for from, deps := range g {
		if !from.Valid() {
			return nil, fmt.Errorf("stat: graph references invalid stat %d", uint8(from))
		}
		for _, to := range deps {
			if !to.Valid() {
				return nil, fmt.Errorf("stat: %s depends on invalid stat %d", from, uint8(to))
			}
			indegree[to]++
		}
	}

	var ready []ID
	for id := range Count {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]ID, 0, Count)
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, to := range g[id] {
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}
	if len(order) != int(Count) {
		var stuck []string
		for id := range Count {
			if indegree[id] > 0 {
				stuck = append(stuck, id.Key())
			}
		}
		return nil, fmt.Errorf("%w through %v", ErrCycle, stuck)
	}
	return order, nil
}

// Validate reports whether g is a well-formed acyclic graph.
func (g Graph) Validate() error {
	_, err := g.Order()
	return err
}
