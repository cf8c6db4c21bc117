// Package gameserver owns the live world of units and item instances and serializes
// every intent against it through a single dispatcher goroutine.
package gameserver

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
	"github.com/cory-johannsen/charsheet/internal/game/stat"
	"github.com/cory-johannsen/charsheet/internal/game/unit"
	"github.com/cory-johannsen/charsheet/internal/scripting"
)

var (
	// ErrUnitNotFound is returned when a unit reference matches no live unit.
	ErrUnitNotFound = errors.New("unit not found")
	// ErrItemNotFound is returned when an item reference matches no instance in scope.
	ErrItemNotFound = errors.New("item not found")
	// ErrAmbiguous is returned when a reference prefix matches more than one candidate.
	ErrAmbiguous = errors.New("reference is ambiguous")
	// ErrNotACharacter is returned when persisting a unit spawned from an enemy template.
	ErrNotACharacter = errors.New("enemies cannot be saved")
	// ErrAlreadyLoaded is returned when restoring a saved character that is already live.
	ErrAlreadyLoaded = errors.New("character already loaded")
)

// Content is the static, read-only rules and item data the world is built from.
type Content struct {
	Rules *ruleset.Registry
	Items *inventory.Registry
}

// entry is one live unit and the bookkeeping around it.
type entry struct {
	unit   *unit.Unit
	record *character.Character
	enemy  bool
	slots  *inventory.Slots
	// equipped mirrors the unit's sources in attachment order.
	equipped []*inventory.Item
}

// UnitSummary is a one-line description of a live unit.
type UnitSummary struct {
	ID    string
	Name  string
	Enemy bool
	// SavedID is the persisted character ID, zero if never saved.
	SavedID int64
}

// World holds every live unit and unequipped item instance.
//
// World is not safe for concurrent use. Every method must run on the dispatcher
// goroutine; Lua hooks call back into it synchronously from there.
type World struct {
	rules   *ruleset.Registry
	items   *inventory.Registry
	engine  *unit.Engine
	roller  *dice.Roller
	scripts *scripting.Manager
	logger  *zap.Logger

	units map[string]*entry
	order []string
	loose map[string]*inventory.Item
}

// NewWorld creates an empty world. When scripts is non-nil its engine callbacks are
// bound to this world.
//
// Precondition: content.Rules, content.Items, engine, roller and logger must be non-nil.
func NewWorld(content Content, engine *unit.Engine, roller *dice.Roller, scripts *scripting.Manager, logger *zap.Logger) *World {
	if content.Rules == nil || content.Items == nil {
		panic("gameserver.NewWorld: content registries must not be nil")
	}
	if engine == nil || roller == nil || logger == nil {
		panic("gameserver.NewWorld: engine, roller and logger must not be nil")
	}
	w := &World{
		rules:   content.Rules,
		items:   content.Items,
		engine:  engine,
		roller:  roller,
		scripts: scripts,
		logger:  logger,
		units:   make(map[string]*entry),
		loose:   make(map[string]*inventory.Item),
	}
	if scripts != nil {
		scripts.SpawnItem = func(defID string) (string, error) {
			it, err := w.SpawnItem(defID)
			if err != nil {
				return "", err
			}
			return it.InstanceID, nil
		}
		scripts.EquipItem = w.Equip
		scripts.StatTotal = w.statTotal
	}
	return w
}

// Rules returns the rules registry.
func (w *World) Rules() *ruleset.Registry { return w.rules }

// Items returns the item definition registry.
func (w *World) Items() *inventory.Registry { return w.items }

// RollAbilities rolls a fresh set of six ability scores.
func (w *World) RollAbilities() []int { return w.roller.AbilityScores() }

// CreateCharacter builds a character from spec and brings it into play.
//
// Precondition: spec.Race, spec.Class and spec.Background name registered content.
// Postcondition: Returns the new unit ID, or an error with no unit added.
func (w *World) CreateCharacter(spec character.Spec) (string, error) {
	race, ok := w.rules.Race(spec.Race)
	if !ok {
		return "", fmt.Errorf("unknown race %q (choose from %s)", spec.Race, strings.Join(w.rules.RaceIDs(), ", "))
	}
	class, ok := w.rules.Class(spec.Class)
	if !ok {
		return "", fmt.Errorf("unknown class %q (choose from %s)", spec.Class, strings.Join(w.rules.ClassIDs(), ", "))
	}
	bg, ok := w.rules.Background(spec.Background)
	if !ok {
		return "", fmt.Errorf("unknown background %q (choose from %s)", spec.Background, strings.Join(w.rules.BackgroundIDs(), ", "))
	}
	c, err := character.Build(spec, race, class, bg)
	if err != nil {
		return "", err
	}
	e, err := w.add(c, false)
	if err != nil {
		return "", err
	}
	w.logger.Info("character created",
		zap.String("unit", e.unit.ID),
		zap.String("name", c.Name),
		zap.String("race", c.Race),
		zap.String("class", c.Class),
	)
	return e.unit.ID, nil
}

// add builds and registers the live unit for c.
func (w *World) add(c *character.Character, enemy bool) (*entry, error) {
	u, err := character.NewUnit(c, uuid.NewString(), w.engine)
	if err != nil {
		return nil, err
	}
	e := &entry{unit: u, record: c, enemy: enemy, slots: inventory.NewSlots()}
	w.units[u.ID] = e
	w.order = append(w.order, u.ID)
	return e, nil
}

// SpawnItem creates an unequipped instance of the item definition defID.
func (w *World) SpawnItem(defID string) (*inventory.Item, error) {
	def, ok := w.items.Item(defID)
	if !ok {
		return nil, fmt.Errorf("%w: no item definition %q", ErrItemNotFound, defID)
	}
	it, err := inventory.NewItem(def)
	if err != nil {
		return nil, err
	}
	w.loose[it.InstanceID] = it
	w.logger.Debug("item spawned", zap.String("item", def.ID), zap.String("instance", it.InstanceID))
	return it, nil
}

// Equip attaches the unequipped item itemRef to unitRef, enforcing slot capacity.
//
// Postcondition: On a slot or attachment error nothing changes. A cascade error after
// attachment leaves the item equipped and is returned.
func (w *World) Equip(unitRef, itemRef string) error {
	e, err := w.resolveUnit(unitRef)
	if err != nil {
		return err
	}
	it, err := resolveItem(itemRef, slices.Collect(maps.Values(w.loose)))
	if err != nil {
		return err
	}
	return w.attach(e, it)
}

func (w *World) attach(e *entry, it *inventory.Item) error {
	if err := e.slots.Occupy(it.Def.Slot, it.InstanceID); err != nil {
		return fmt.Errorf("equipping %s on %s: %w", it, e.unit.Name, err)
	}
	err := w.engine.Equip(e.unit, it)
	if !e.unit.Attached(it.SourceID()) {
		e.slots.Release(it.InstanceID)
		return err
	}
	delete(w.loose, it.InstanceID)
	e.equipped = append(e.equipped, it)
	return err
}

// Unequip detaches the equipped item itemRef from unitRef and returns it to the pool
// of unequipped items.
func (w *World) Unequip(unitRef, itemRef string) error {
	e, err := w.resolveUnit(unitRef)
	if err != nil {
		return err
	}
	it, err := resolveItem(itemRef, e.equipped)
	if err != nil {
		return err
	}
	err = w.engine.Unequip(e.unit, it)
	if e.unit.Attached(it.SourceID()) {
		return err
	}
	e.slots.Release(it.InstanceID)
	e.equipped = slices.DeleteFunc(e.equipped, func(x *inventory.Item) bool { return x == it })
	w.loose[it.InstanceID] = it
	return err
}

// SpawnEnemy builds a unit from an enemy template, equips the template's equipment
// and runs its spawn hook. A failing hook is logged and does not undo the spawn.
//
// Postcondition: Returns the new unit ID, or an error with no unit added.
func (w *World) SpawnEnemy(templateID string) (string, error) {
	tmpl, ok := w.rules.Enemy(templateID)
	if !ok {
		return "", fmt.Errorf("unknown enemy %q (choose from %s)", templateID, strings.Join(w.rules.EnemyIDs(), ", "))
	}
	for _, defID := range tmpl.Equipment {
		if _, ok := w.items.Item(defID); !ok {
			return "", fmt.Errorf("enemy %q: %w: no item definition %q", templateID, ErrItemNotFound, defID)
		}
	}

	e, err := w.add(character.FromTemplate(tmpl), true)
	if err != nil {
		return "", err
	}
	for _, defID := range tmpl.Equipment {
		it, err := w.SpawnItem(defID)
		if err != nil {
			return e.unit.ID, err
		}
		if err := w.attach(e, it); err != nil {
			return e.unit.ID, err
		}
	}
	if tmpl.SpawnHook != "" && w.scripts != nil {
		if _, err := w.scripts.CallHook(tmpl.SpawnHook, lua.LString(e.unit.ID)); err != nil {
			w.logger.Warn("spawn hook failed",
				zap.String("enemy", tmpl.ID),
				zap.String("unit", e.unit.ID),
				zap.Error(err),
			)
		}
	}
	w.logger.Info("enemy spawned", zap.String("enemy", tmpl.ID), zap.String("unit", e.unit.ID))
	return e.unit.ID, nil
}

// SetBase edits the authored base value of statKey on unitRef and recomputes it.
func (w *World) SetBase(unitRef, statKey string, value float64) error {
	e, err := w.resolveUnit(unitRef)
	if err != nil {
		return err
	}
	id, err := stat.Parse(statKey)
	if err != nil {
		return err
	}
	if err := w.engine.SetBase(e.unit, id, value); err != nil {
		return err
	}
	e.record.Bases[id] = value
	e.record.UpdatedAt = time.Now()
	return nil
}

// Units lists every live unit in creation order.
func (w *World) Units() []UnitSummary {
	out := make([]UnitSummary, 0, len(w.order))
	for _, id := range w.order {
		e := w.units[id]
		out = append(out, UnitSummary{ID: id, Name: e.unit.Name, Enemy: e.enemy, SavedID: e.record.ID})
	}
	return out
}

// LooseItems lists the unequipped item instances ordered by name then instance ID.
func (w *World) LooseItems() []*inventory.Item {
	out := slices.Collect(maps.Values(w.loose))
	slices.SortFunc(out, func(a, b *inventory.Item) int {
		if c := strings.Compare(a.Def.Name, b.Def.Name); c != 0 {
			return c
		}
		return strings.Compare(a.InstanceID, b.InstanceID)
	})
	return out
}

// Record returns a copy of the persistent record of the character unitRef with its
// current equipment filled in. The copy shares nothing with the world.
func (w *World) Record(unitRef string) (string, *character.Character, error) {
	e, err := w.resolveUnit(unitRef)
	if err != nil {
		return "", nil, err
	}
	if e.enemy {
		return "", nil, fmt.Errorf("%s: %w", e.unit.Name, ErrNotACharacter)
	}
	rec := *e.record
	rec.Bases = maps.Clone(e.record.Bases)
	rec.Proficiencies = maps.Clone(e.record.Proficiencies)
	rec.Equipment = make([]character.EquippedItem, 0, len(e.equipped))
	for _, it := range e.equipped {
		rec.Equipment = append(rec.Equipment, character.EquippedItem{InstanceID: it.InstanceID, ItemID: it.Def.ID})
	}
	return e.unit.ID, &rec, nil
}

// MarkSaved records the persistence identity assigned to unitID's character.
func (w *World) MarkSaved(unitID string, saved *character.Character) error {
	e, ok := w.units[unitID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnitNotFound, unitID)
	}
	e.record.ID = saved.ID
	e.record.CreatedAt = saved.CreatedAt
	e.record.UpdatedAt = saved.UpdatedAt
	return nil
}

// Restore brings a persisted character into play and re-equips its items through the
// engine so every total is recomputed rather than read back.
//
// Postcondition: Returns the new unit ID, or an error with no unit added.
func (w *World) Restore(c *character.Character) (string, error) {
	for _, id := range w.order {
		if c.ID != 0 && w.units[id].record.ID == c.ID {
			return "", fmt.Errorf("%s: %w as %s", c.Name, ErrAlreadyLoaded, id)
		}
	}
	items := make([]*inventory.Item, 0, len(c.Equipment))
	for _, eq := range c.Equipment {
		def, ok := w.items.Item(eq.ItemID)
		if !ok {
			return "", fmt.Errorf("restoring %s: %w: no item definition %q", c.Name, ErrItemNotFound, eq.ItemID)
		}
		if w.instanceLive(eq.InstanceID) {
			return "", fmt.Errorf("restoring %s: item instance %q is already live", c.Name, eq.InstanceID)
		}
		it, err := inventory.RestoreItem(eq.InstanceID, def)
		if err != nil {
			return "", err
		}
		items = append(items, it)
	}

	equipment := c.Equipment
	c.Equipment = nil
	e, err := w.add(c, false)
	if err != nil {
		return "", err
	}
	var errs []error
	for _, it := range items {
		if err := w.attach(e, it); err != nil {
			errs = append(errs, err)
		}
	}
	w.logger.Info("character restored",
		zap.String("unit", e.unit.ID),
		zap.Int64("character_id", c.ID),
		zap.Int("equipment", len(equipment)),
	)
	return e.unit.ID, errors.Join(errs...)
}

func (w *World) instanceLive(instanceID string) bool {
	if _, ok := w.loose[instanceID]; ok {
		return true
	}
	for _, e := range w.units {
		if e.unit.Attached(instanceID) {
			return true
		}
	}
	return false
}

// statTotal backs engine.stat.total for scripts. It takes an exact unit ID.
func (w *World) statTotal(unitID, statKey string) (float64, error) {
	e, ok := w.units[unitID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnitNotFound, unitID)
	}
	id, err := stat.Parse(statKey)
	if err != nil {
		return 0, err
	}
	return e.unit.Total(id)
}

// resolveUnit finds a unit by exact ID, case-insensitive name or unique ID prefix.
func (w *World) resolveUnit(ref string) (*entry, error) {
	if e, ok := w.units[ref]; ok {
		return e, nil
	}
	var byName, byPrefix []*entry
	for _, id := range w.order {
		e := w.units[id]
		if strings.EqualFold(e.unit.Name, ref) {
			byName = append(byName, e)
		}
		if ref != "" && strings.HasPrefix(id, ref) {
			byPrefix = append(byPrefix, e)
		}
	}
	for _, matches := range [][]*entry{byName, byPrefix} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return nil, fmt.Errorf("%w: %q matches %d units", ErrAmbiguous, ref, len(matches))
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnitNotFound, ref)
}

// resolveItem finds an item among candidates by exact instance ID, unique instance ID
// prefix or unique definition ID.
func resolveItem(ref string, candidates []*inventory.Item) (*inventory.Item, error) {
	var byPrefix, byDef []*inventory.Item
	for _, it := range candidates {
		if it.InstanceID == ref {
			return it, nil
		}
		if ref != "" && strings.HasPrefix(it.InstanceID, ref) {
			byPrefix = append(byPrefix, it)
		}
		if it.Def.ID == ref {
			byDef = append(byDef, it)
		}
	}
	for _, matches := range [][]*inventory.Item{byPrefix, byDef} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return nil, fmt.Errorf("%w: %q matches %d items", ErrAmbiguous, ref, len(matches))
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrItemNotFound, ref)
}
