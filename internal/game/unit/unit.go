// Package unit holds a unit's stat table and attached modifier sources, and the Engine
// that keeps derived totals consistent as sources come and go.
package unit

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

var (
	// ErrStatNotFound is returned when a unit has no storage for a stat identifier. It
	// indicates a malformed unit and must not be recovered from.
	ErrStatNotFound = errors.New("unit: stat not found")
	// ErrSourceAttached is returned when a source is equipped twice on the same unit.
	ErrSourceAttached = errors.New("unit: source already attached")
	// ErrSourceNotAttached is returned when detaching a source the unit does not carry.
	ErrSourceNotAttached = errors.New("unit: source not attached")
)

// Source is an attachable entity, such as an equipped item, carrying modifiers.
//
// A nil ModList is valid and contributes nothing.
type Source interface {
	SourceID() string
	Modifiers() stat.ModList
}

// Unit owns one Stat per tracked attribute and the ordered list of attached sources.
//
// The set of stats is fixed at construction. A Unit is not safe for concurrent use;
// callers serialize all operations on it.
type Unit struct {
	ID   string
	Name string

	stats         [stat.Count]*stat.Stat
	proficiencies [stat.Count]stat.Proficiency
	sources       []Source
}

// New builds a Unit from an explicit stat table. Identifiers absent from stats have no
// storage on the unit.
//
// Precondition: id must be non-empty.
func New(id, name string, stats map[stat.ID]*stat.Stat) *Unit {
	u := &Unit{ID: id, Name: name}
	for sid, s := range stats {
		if sid.Valid() {
			u.stats[sid] = s
		}
	}
	return u
}

// NewFromGraph builds a Unit holding every stat, with bases taken from bases (missing
// entries default to 0) and dependents taken from g.
//
// Precondition: id must be non-empty.
// Postcondition: Returns a complete Unit, or an error if g is not acyclic.
func NewFromGraph(id, name string, bases map[stat.ID]float64, g stat.Graph) (*Unit, error) {
	if id == "" {
		return nil, errors.New("unit: id must not be empty")
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("building unit %q: %w", id, err)
	}
	u := &Unit{ID: id, Name: name}
	for _, sid := range stat.All() {
		u.stats[sid] = stat.New(bases[sid], g.Dependents(sid)...)
	}
	return u, nil
}

// Stat returns the storage for id.
//
// Postcondition: Returns ErrStatNotFound (wrapped) if the unit has no such stat.
func (u *Unit) Stat(id stat.ID) (*stat.Stat, error) {
	if !id.Valid() || u.stats[id] == nil {
		return nil, fmt.Errorf("%w: %s on unit %q", ErrStatNotFound, id.Key(), u.ID)
	}
	return u.stats[id], nil
}

// Total returns the effective value of id.
func (u *Unit) Total(id stat.ID) (float64, error) {
	s, err := u.Stat(id)
	if err != nil {
		return 0, err
	}
	return s.Total, nil
}

// AbilityModifier returns the derived modifier of an ability's current total.
func (u *Unit) AbilityModifier(ability stat.ID) (int, error) {
	total, err := u.Total(ability)
	if err != nil {
		return 0, err
	}
	return stat.AbilityModifier(total), nil
}

// Proficiency returns the training level recorded for id.
func (u *Unit) Proficiency(id stat.ID) stat.Proficiency {
	if !id.Valid() {
		return stat.NotProficient
	}
	return u.proficiencies[id]
}

// SetProficiency records the training level for id. It does not affect totals.
func (u *Unit) SetProficiency(id stat.ID, p stat.Proficiency) {
	if id.Valid() {
		u.proficiencies[id] = p
	}
}

// Has reports whether the unit carries storage for id.
func (u *Unit) Has(id stat.ID) bool {
	return id.Valid() && u.stats[id] != nil
}

// Graph returns the dependency edges declared by the unit's stats.
func (u *Unit) Graph() stat.Graph {
	g := make(stat.Graph)
	for id, s := range u.stats {
		if s != nil && len(s.Dependents) > 0 {
			g[stat.ID(id)] = s.Dependents
		}
	}
	return g
}

// Sources returns the attached sources in attachment order.
func (u *Unit) Sources() []Source {
	out := make([]Source, len(u.sources))
	copy(out, u.sources)
	return out
}

// Attached reports whether a source with sourceID is attached.
func (u *Unit) Attached(sourceID string) bool {
	return u.indexOf(sourceID) >= 0
}

func (u *Unit) indexOf(sourceID string) int {
	for i, s := range u.sources {
		if s.SourceID() == sourceID {
			return i
		}
	}
	return -1
}

func (u *Unit) attach(src Source) error {
	if u.Attached(src.SourceID()) {
		return fmt.Errorf("%w: %q on unit %q", ErrSourceAttached, src.SourceID(), u.ID)
	}
	u.sources = append(u.sources, src)
	return nil
}

func (u *Unit) detach(sourceID string) (Source, error) {
	i := u.indexOf(sourceID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q on unit %q", ErrSourceNotAttached, sourceID, u.ID)
	}
	src := u.sources[i]
	u.sources = append(u.sources[:i], u.sources[i+1:]...)
	return src, nil
}

// gather collects the modifiers targeting id from every attached source, in attachment
// order and then list order.
func (u *Unit) gather(id stat.ID) []stat.Modifier {
	var out []stat.Modifier
	for _, src := range u.sources {
		for _, m := range src.Modifiers() {
			if m.Target == id {
				out = append(out, m)
			}
		}
	}
	return out
}
