package gameserver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

// ErrNoStorage is returned by Save, Load and Saved when no CharacterStore is configured.
var ErrNoStorage = errors.New("character storage is not configured")

// CharacterStore persists character records.
type CharacterStore interface {
	Save(ctx context.Context, c *character.Character) error
	GetByID(ctx context.Context, id int64) (*character.Character, error)
	List(ctx context.Context) ([]*character.Character, error)
}

// ItemView describes one unequipped item instance.
type ItemView struct {
	InstanceID string
	ItemID     string
	Name       string
	Slot       inventory.Slot
}

// GameService is the intent surface used by frontends. Every method that touches the
// world goes through the Dispatcher; storage I/O happens on the caller's goroutine.
type GameService struct {
	d      *Dispatcher
	store  CharacterStore
	logger *zap.Logger
}

// NewGameService creates a GameService. store may be nil to run without persistence.
//
// Precondition: d and logger must be non-nil.
func NewGameService(d *Dispatcher, store CharacterStore, logger *zap.Logger) *GameService {
	if d == nil || logger == nil {
		panic("gameserver.NewGameService: dispatcher and logger must not be nil")
	}
	return &GameService{d: d, store: store, logger: logger}
}

// HasStorage reports whether Save and Load are available.
func (s *GameService) HasStorage() bool { return s.store != nil }

// CreateCharacter builds a character and returns its unit ID.
func (s *GameService) CreateCharacter(ctx context.Context, spec character.Spec) (string, error) {
	var id string
	err := s.d.Do(ctx, func(w *World) error {
		var err error
		id, err = w.CreateCharacter(spec)
		return err
	})
	return id, err
}

// RollAbilities rolls six ability scores with 4d6 keep highest 3.
func (s *GameService) RollAbilities(ctx context.Context) ([]int, error) {
	var scores []int
	err := s.d.Do(ctx, func(w *World) error {
		scores = w.RollAbilities()
		return nil
	})
	return scores, err
}

// SpawnItem creates an unequipped instance of defID and returns its instance ID.
func (s *GameService) SpawnItem(ctx context.Context, defID string) (ItemView, error) {
	var view ItemView
	err := s.d.Do(ctx, func(w *World) error {
		it, err := w.SpawnItem(defID)
		if err != nil {
			return err
		}
		view = itemView(it)
		return nil
	})
	return view, err
}

// Equip attaches an unequipped item to a unit.
func (s *GameService) Equip(ctx context.Context, unitRef, itemRef string) error {
	return s.d.Do(ctx, func(w *World) error { return w.Equip(unitRef, itemRef) })
}

// Unequip detaches an equipped item from a unit.
func (s *GameService) Unequip(ctx context.Context, unitRef, itemRef string) error {
	return s.d.Do(ctx, func(w *World) error { return w.Unequip(unitRef, itemRef) })
}

// SpawnEnemy builds an enemy from a template and returns its unit ID.
func (s *GameService) SpawnEnemy(ctx context.Context, templateID string) (string, error) {
	var id string
	err := s.d.Do(ctx, func(w *World) error {
		var err error
		id, err = w.SpawnEnemy(templateID)
		return err
	})
	return id, err
}

// SetBase edits one stat's base value.
func (s *GameService) SetBase(ctx context.Context, unitRef, statKey string, value float64) error {
	return s.d.Do(ctx, func(w *World) error { return w.SetBase(unitRef, statKey, value) })
}

// Snapshot returns the sheet of one unit.
func (s *GameService) Snapshot(ctx context.Context, unitRef string) (Sheet, error) {
	var sh Sheet
	err := s.d.Do(ctx, func(w *World) error {
		var err error
		sh, err = w.Snapshot(unitRef)
		return err
	})
	return sh, err
}

// Units lists the live units.
func (s *GameService) Units(ctx context.Context) ([]UnitSummary, error) {
	var out []UnitSummary
	err := s.d.Do(ctx, func(w *World) error {
		out = w.Units()
		return nil
	})
	return out, err
}

// LooseItems lists the unequipped item instances.
func (s *GameService) LooseItems(ctx context.Context) ([]ItemView, error) {
	var out []ItemView
	err := s.d.Do(ctx, func(w *World) error {
		for _, it := range w.LooseItems() {
			out = append(out, itemView(it))
		}
		return nil
	})
	return out, err
}

// Catalog returns the registered item definitions and rules content IDs. Content is
// read-only after startup so no dispatch is needed.
func (s *GameService) Catalog() ([]*inventory.ItemDef, *ruleset.Registry) {
	return s.d.world.Items().AllItems(), s.d.world.Rules()
}

// Save persists the character unitRef and returns its storage ID. The record is
// copied on the dispatcher goroutine and written from the caller's goroutine, so a
// slow database never stalls other intents.
func (s *GameService) Save(ctx context.Context, unitRef string) (int64, error) {
	if s.store == nil {
		return 0, ErrNoStorage
	}
	var unitID string
	var rec *character.Character
	if err := s.d.Do(ctx, func(w *World) error {
		var err error
		unitID, rec, err = w.Record(unitRef)
		return err
	}); err != nil {
		return 0, err
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return 0, fmt.Errorf("saving %s: %w", rec.Name, err)
	}
	if err := s.d.Do(ctx, func(w *World) error { return w.MarkSaved(unitID, rec) }); err != nil {
		return rec.ID, err
	}
	s.logger.Info("character saved", zap.String("unit", unitID), zap.Int64("character_id", rec.ID))
	return rec.ID, nil
}

// Load restores the saved character id into play and returns its unit ID.
func (s *GameService) Load(ctx context.Context, id int64) (string, error) {
	if s.store == nil {
		return "", ErrNoStorage
	}
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("loading character %d: %w", id, err)
	}
	var unitID string
	err = s.d.Do(ctx, func(w *World) error {
		var err error
		unitID, err = w.Restore(c)
		return err
	})
	return unitID, err
}

// Saved lists the persisted characters.
func (s *GameService) Saved(ctx context.Context) ([]*character.Character, error) {
	if s.store == nil {
		return nil, ErrNoStorage
	}
	return s.store.List(ctx)
}

func itemView(it *inventory.Item) ItemView {
	return ItemView{InstanceID: it.InstanceID, ItemID: it.Def.ID, Name: it.Def.Name, Slot: it.Def.Slot}
}
