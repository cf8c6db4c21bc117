package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
	"github.com/cory-johannsen/charsheet/internal/game/stat"
	"github.com/cory-johannsen/charsheet/internal/storage/postgres"
	"github.com/cory-johannsen/charsheet/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func setupRepo(t *testing.T) *postgres.CharacterRepository {
	t.Helper()
	pc := testutil.NewPostgresContainer(t)
	return postgres.NewCharacterRepository(pc.Pool.DB())
}

func makeTestCharacter(name string) *character.Character {
	bases := map[stat.ID]float64{
		stat.ArmorClass: 10, stat.MaxHealth: 9, stat.Speed: 30, stat.DarkVision: 60,
	}
	for _, id := range stat.Abilities() {
		bases[id] = 10
	}
	bases[stat.Dexterity] = 18
	return &character.Character{
		Name:       name,
		PlayerName: "sam",
		Race:       "wood_elf",
		Class:      "rogue",
		Background: "urchin",
		Alignment:  ruleset.ChaoticGood,
		Level:      3,
		Health:     9,
		Bases:      bases,
		Proficiencies: map[stat.ID]stat.Proficiency{
			stat.Stealth:   stat.Expert,
			stat.Dexterity: stat.Proficient,
		},
		Equipment: []character.EquippedItem{
			{InstanceID: uniqueName("inst-a"), ItemID: "cloak_of_elvenkind"},
			{InstanceID: uniqueName("inst-b"), ItemID: "ring_of_protection"},
		},
	}
}

func TestCharacterRepository_SaveAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	c := makeTestCharacter("Vex")
	require.NoError(t, repo.Save(ctx, c))
	assert.Greater(t, c.ID, int64(0))
	assert.False(t, c.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vex", got.Name)
	assert.Equal(t, ruleset.ChaoticGood, got.Alignment)
	assert.Equal(t, 3, got.Level)
	assert.Equal(t, c.Bases, got.Bases)
	assert.Equal(t, c.Proficiencies, got.Proficiencies)
	assert.Equal(t, c.Equipment, got.Equipment, "equipment keeps attachment order")
}

func TestCharacterRepository_UpdateReplacesChildren(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	c := makeTestCharacter("Vex")
	require.NoError(t, repo.Save(ctx, c))
	id := c.ID

	c.Bases[stat.Strength] = 15
	c.Proficiencies = map[stat.ID]stat.Proficiency{stat.Athletics: stat.Proficient}
	c.Equipment = c.Equipment[1:]
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, id, c.ID)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.Bases[stat.Strength])
	assert.Equal(t, map[stat.ID]stat.Proficiency{stat.Athletics: stat.Proficient}, got.Proficiencies)
	require.Len(t, got.Equipment, 1)
	assert.Equal(t, "ring_of_protection", got.Equipment[0].ItemID)
}

func TestCharacterRepository_DuplicateNameError(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, makeTestCharacter("Zara")))
	err := repo.Save(ctx, makeTestCharacter("Zara"))
	assert.ErrorIs(t, err, postgres.ErrCharacterNameTaken)
}

func TestCharacterRepository_NotFound(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 999999)
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)

	ghost := makeTestCharacter("Ghost")
	ghost.ID = 999999
	assert.ErrorIs(t, repo.Save(ctx, ghost), postgres.ErrCharacterNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 999999), postgres.ErrCharacterNotFound)
}

func TestCharacterRepository_ListAndDelete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	b := makeTestCharacter("Bram")
	a := makeTestCharacter("Aria")
	require.NoError(t, repo.Save(ctx, b))
	require.NoError(t, repo.Save(ctx, a))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Aria", list[0].Name)
	assert.Nil(t, list[0].Bases, "List does not load children")

	require.NoError(t, repo.Delete(ctx, a.ID))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// Property: saved base values round-trip bit-exactly.
func TestCharacterRepository_BasesRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	rapid.Check(t, func(rt *rapid.T) {
		c := makeTestCharacter(uniqueName("p"))
		for _, id := range stat.All() {
			c.Bases[id] = rapid.Float64Range(-100, 100).Draw(rt, id.Key())
		}
		c.Equipment = nil
		if err := repo.Save(ctx, c); err != nil {
			rt.Fatal(err)
		}
		got, err := repo.GetByID(ctx, c.ID)
		if err != nil {
			rt.Fatal(err)
		}
		for id, want := range c.Bases {
			if got.Bases[id] != want {
				rt.Fatalf("%s: got %v want %v", id.Key(), got.Bases[id], want)
			}
		}
	})
}
