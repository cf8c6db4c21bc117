package ruleset

import (
	"maps"
	"slices"
)

// Registry provides lookup of rules content by ID.
type Registry struct {
	races       map[string]*Race
	classes     map[string]*Class
	backgrounds map[string]*Background
	enemies     map[string]*EnemyTemplate
}

// NewRegistry returns an empty Registry.
//
// Postcondition: Returns a non-nil *Registry ready to accept registrations.
func NewRegistry() *Registry {
	return &Registry{
		races:       make(map[string]*Race),
		classes:     make(map[string]*Class),
		backgrounds: make(map[string]*Background),
		enemies:     make(map[string]*EnemyTemplate),
	}
}

// RegisterRace adds a Race to the registry.
//
// Precondition: r must be non-nil with a non-empty ID.
// Postcondition: if called multiple times with the same ID, the last call wins.
func (reg *Registry) RegisterRace(r *Race) {
	if r == nil || r.ID == "" {
		panic("Registry.RegisterRace: precondition violated: race must be non-nil with an ID")
	}
	reg.races[r.ID] = r
}

// RegisterClass adds a Class to the registry.
//
// Precondition: c must be non-nil with a non-empty ID.
func (reg *Registry) RegisterClass(c *Class) {
	if c == nil || c.ID == "" {
		panic("Registry.RegisterClass: precondition violated: class must be non-nil with an ID")
	}
	reg.classes[c.ID] = c
}

// RegisterBackground adds a Background to the registry.
//
// Precondition: b must be non-nil with a non-empty ID.
func (reg *Registry) RegisterBackground(b *Background) {
	if b == nil || b.ID == "" {
		panic("Registry.RegisterBackground: precondition violated: background must be non-nil with an ID")
	}
	reg.backgrounds[b.ID] = b
}

// RegisterEnemy adds an EnemyTemplate to the registry.
//
// Precondition: t must be non-nil with a non-empty ID.
func (reg *Registry) RegisterEnemy(t *EnemyTemplate) {
	if t == nil || t.ID == "" {
		panic("Registry.RegisterEnemy: precondition violated: template must be non-nil with an ID")
	}
	reg.enemies[t.ID] = t
}

// Race returns the Race for id, if registered.
func (reg *Registry) Race(id string) (*Race, bool) {
	r, ok := reg.races[id]
	return r, ok
}

// Class returns the Class for id, if registered.
func (reg *Registry) Class(id string) (*Class, bool) {
	c, ok := reg.classes[id]
	return c, ok
}

// Background returns the Background for id, if registered.
func (reg *Registry) Background(id string) (*Background, bool) {
	b, ok := reg.backgrounds[id]
	return b, ok
}

// Enemy returns the EnemyTemplate for id, if registered.
func (reg *Registry) Enemy(id string) (*EnemyTemplate, bool) {
	t, ok := reg.enemies[id]
	return t, ok
}

// RaceIDs returns the registered race IDs in sorted order.
func (reg *Registry) RaceIDs() []string { return slices.Sorted(maps.Keys(reg.races)) }

// ClassIDs returns the registered class IDs in sorted order.
func (reg *Registry) ClassIDs() []string { return slices.Sorted(maps.Keys(reg.classes)) }

// BackgroundIDs returns the registered background IDs in sorted order.
func (reg *Registry) BackgroundIDs() []string { return slices.Sorted(maps.Keys(reg.backgrounds)) }

// EnemyIDs returns the registered enemy template IDs in sorted order.
func (reg *Registry) EnemyIDs() []string { return slices.Sorted(maps.Keys(reg.enemies)) }
