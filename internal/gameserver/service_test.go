package gameserver_test

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/stat"
	"github.com/cory-johannsen/charsheet/internal/gameserver"
)

// memStore is an in-memory CharacterStore that copies on every boundary.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*character.Character
}

func newMemStore() *memStore { return &memStore{rows: make(map[int64]*character.Character)} }

func cloneCharacter(c *character.Character) *character.Character {
	out := *c
	out.Bases = maps.Clone(c.Bases)
	out.Proficiencies = maps.Clone(c.Proficiencies)
	out.Equipment = append([]character.EquippedItem(nil), c.Equipment...)
	return &out
}

func (m *memStore) Save(_ context.Context, c *character.Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if c.ID == 0 {
		m.nextID++
		c.ID = m.nextID
		c.CreatedAt = now
	} else if _, ok := m.rows[c.ID]; !ok {
		return fmt.Errorf("character %d not found", c.ID)
	}
	c.UpdatedAt = now
	m.rows[c.ID] = cloneCharacter(c)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*character.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("character %d not found", id)
	}
	return cloneCharacter(c), nil
}

func (m *memStore) List(_ context.Context) ([]*character.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*character.Character, 0, len(m.rows))
	for _, c := range m.rows {
		out = append(out, cloneCharacter(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func newTestService(t *testing.T, store gameserver.CharacterStore) *gameserver.GameService {
	t.Helper()
	logger := zaptest.NewLogger(t)
	d := startDispatcher(t, logger)
	return gameserver.NewGameService(d, store, logger)
}

func TestGameService_NoStorage(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	assert.False(t, svc.HasStorage())

	id, err := svc.CreateCharacter(ctx, fighterSpec("Brannoc"))
	require.NoError(t, err)
	_, err = svc.Save(ctx, id)
	assert.ErrorIs(t, err, gameserver.ErrNoStorage)
	_, err = svc.Load(ctx, 1)
	assert.ErrorIs(t, err, gameserver.ErrNoStorage)
	_, err = svc.Saved(ctx)
	assert.ErrorIs(t, err, gameserver.ErrNoStorage)
}

func TestGameService_EquipFlow(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	id, err := svc.CreateCharacter(ctx, fighterSpec("Brannoc"))
	require.NoError(t, err)
	item, err := svc.SpawnItem(ctx, "gauntlets_of_ogre_power")
	require.NoError(t, err)
	assert.Equal(t, "gauntlets_of_ogre_power", item.ItemID)

	loose, err := svc.LooseItems(ctx)
	require.NoError(t, err)
	require.Len(t, loose, 1)

	require.NoError(t, svc.Equip(ctx, "Brannoc", item.InstanceID))
	sh, err := svc.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 19.0, sh.Abilities[stat.Strength].Total)

	require.NoError(t, svc.Unequip(ctx, id, item.InstanceID))
	sh, err = svc.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 16.0, sh.Abilities[stat.Strength].Total)

	require.NoError(t, svc.SetBase(ctx, id, "dexterity", 20))
	sh, err = svc.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 15.0, sh.ArmorClass)

	units, err := svc.Units(ctx)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Brannoc", units[0].Name)

	scores, err := svc.RollAbilities(ctx)
	require.NoError(t, err)
	assert.Len(t, scores, 6)

	items, rules := svc.Catalog()
	assert.NotEmpty(t, items)
	assert.NotEmpty(t, rules.RaceIDs())
}

func TestGameService_SaveLoadRoundTrip(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	id, err := svc.CreateCharacter(ctx, fighterSpec("Brannoc"))
	require.NoError(t, err)
	ring, err := svc.SpawnItem(ctx, "ring_of_protection")
	require.NoError(t, err)
	require.NoError(t, svc.Equip(ctx, id, ring.InstanceID))
	want, err := svc.Snapshot(ctx, id)
	require.NoError(t, err)

	savedID, err := svc.Save(ctx, id)
	require.NoError(t, err)
	assert.NotZero(t, savedID)

	// Saving again updates the same row.
	again, err := svc.Save(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, savedID, again)

	_, err = svc.Load(ctx, savedID)
	assert.ErrorIs(t, err, gameserver.ErrAlreadyLoaded)

	saved, err := svc.Saved(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Len(t, saved[0].Equipment, 1)
	assert.Equal(t, "ring_of_protection", saved[0].Equipment[0].ItemID)

	// A fresh process loads the same record and recomputes identical totals.
	fresh := newTestService(t, store)
	unitID, err := fresh.Load(ctx, savedID)
	require.NoError(t, err)
	got, err := fresh.Snapshot(ctx, unitID)
	require.NoError(t, err)
	assert.Equal(t, want.Abilities, got.Abilities)
	assert.Equal(t, want.Skills, got.Skills)
	assert.Equal(t, want.ArmorClass, got.ArmorClass)
	assert.Equal(t, savedID, got.SavedID)
}

func TestGameService_SaveEnemyRejected(t *testing.T) {
	svc := newTestService(t, newMemStore())
	ctx := context.Background()
	orc, err := svc.SpawnEnemy(ctx, "orc")
	require.NoError(t, err)
	_, err = svc.Save(ctx, orc)
	assert.ErrorIs(t, err, gameserver.ErrNotACharacter)
}

func TestGameService_LoadMissing(t *testing.T) {
	svc := newTestService(t, newMemStore())
	_, err := svc.Load(context.Background(), 99)
	assert.Error(t, err)
}
