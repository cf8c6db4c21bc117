package stat

import "math"

// Stat is one node of the dependency graph.
//
// Base is authored at character creation or editing. Total is written only by Aggregate.
// Dependents lists the stats whose aggregation reads this stat's Total.
type Stat struct {
	Base       float64
	Total      float64
	Dependents []ID
}

// New returns a Stat whose Total equals base.
func New(base float64, dependents ...ID) *Stat {
	deps := make([]ID, len(dependents))
	copy(deps, dependents)
	return &Stat{Base: base, Total: base, Dependents: deps}
}

// Aggregate recomputes Total from Base and the partitioned modifier contributions.
//
// replace and bestOf are nil when no modifier of that kind targets the stat. baseline is
// the value injected by the governing stat (0 when there is none).
//
// Postcondition: Total is replaced only when the new value differs bit-for-bit from the
// previous one; the return value reports whether it did.
func (s *Stat) Aggregate(replace, bestOf *float64, addSum, multSum, baseline float64) bool {
	var next float64
	if replace != nil {
		next = *replace
	} else {
		next = (s.Base + addSum + baseline) * (1 + multSum)
		if bestOf != nil && *bestOf > next {
			next = *bestOf
		}
	}
	if math.Float64bits(next) == math.Float64bits(s.Total) {
		return false
	}
	s.Total = next
	return true
}

// Apply is Aggregate fed from a Summary.
func (s *Stat) Apply(sum Summary, baseline float64) bool {
	return s.Aggregate(sum.Replace, sum.BestOf, sum.Add, sum.Mult, baseline)
}

// AbilityModifier returns the tabletop bonus for an ability total: floor((total-10)/2).
//
// Postcondition: AbilityModifier(10) == 0, AbilityModifier(9) == -1.
func AbilityModifier(total float64) int {
	return int(math.Floor((total - 10) / 2))
}
