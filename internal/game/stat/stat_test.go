package stat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

func mod(target stat.ID, kind stat.Kind, v float64) stat.Modifier {
	return stat.Modifier{Target: target, Kind: kind, Value: v}
}

func TestNew_TotalEqualsBase(t *testing.T) {
	s := stat.New(14, stat.Athletics)
	assert.Equal(t, 14.0, s.Base)
	assert.Equal(t, 14.0, s.Total)
	assert.Equal(t, []stat.ID{stat.Athletics}, s.Dependents)
}

func TestAggregate_AddAndMultCompose(t *testing.T) {
	s := stat.New(10)
	sum := stat.Summarize([]stat.Modifier{
		mod(stat.Strength, stat.Add, 2),
		mod(stat.Strength, stat.Add, 3),
		mod(stat.Strength, stat.Mult, 0.1),
		mod(stat.Strength, stat.Mult, 0.1),
	})
	changed := s.Apply(sum, 0)
	assert.True(t, changed)
	// (10 + 2 + 3) * 1.2
	assert.Equal(t, 18.0, s.Total)
	assert.Equal(t, 10.0, s.Base, "aggregation must never touch Base")
}

func TestAggregate_BaselineIsAddedBeforeMult(t *testing.T) {
	s := stat.New(2)
	changed := s.Aggregate(nil, nil, 0, 0.5, 2)
	assert.True(t, changed)
	assert.Equal(t, 6.0, s.Total)
}

func TestAggregate_BestOfIsAFloor(t *testing.T) {
	s := stat.New(12)
	sum := stat.Summarize([]stat.Modifier{
		mod(stat.ArmorClass, stat.BestOf, 15),
		mod(stat.ArmorClass, stat.BestOf, 9),
	})
	assert.True(t, s.Apply(sum, 0))
	assert.Equal(t, 15.0, s.Total)
}

func TestAggregate_BestOfNeverLowers(t *testing.T) {
	s := stat.New(12)
	sum := stat.Summarize([]stat.Modifier{mod(stat.ArmorClass, stat.BestOf, 5)})
	assert.False(t, s.Apply(sum, 0))
	assert.Equal(t, 12.0, s.Total)
}

func TestAggregate_LastReplaceWins(t *testing.T) {
	s := stat.New(10)
	sum := stat.Summarize([]stat.Modifier{
		mod(stat.Strength, stat.Replace, 19),
		mod(stat.Strength, stat.Add, 4),
		mod(stat.Strength, stat.Replace, 21),
		mod(stat.Strength, stat.BestOf, 30),
	})
	require.NotNil(t, sum.Replace)
	assert.True(t, s.Apply(sum, 3))
	assert.Equal(t, 21.0, s.Total)
}

func TestAggregate_UnchangedLeavesTotal(t *testing.T) {
	s := stat.New(10)
	assert.False(t, s.Aggregate(nil, nil, 0, 0, 0))
	assert.Equal(t, 10.0, s.Total)
}

func TestAbilityModifier(t *testing.T) {
	cases := map[float64]int{
		1: -5, 8: -1, 9: -1, 10: 0, 11: 0, 12: 1, 15: 2, 18: 4, 20: 5, 30: 10,
	}
	for total, want := range cases {
		assert.Equal(t, want, stat.AbilityModifier(total), "total=%v", total)
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := stat.Summarize(nil)
	assert.Nil(t, sum.Replace)
	assert.Nil(t, sum.BestOf)
	assert.Zero(t, sum.Add)
	assert.Zero(t, sum.Mult)
}

func TestModList_TargetsDistinctInOrder(t *testing.T) {
	l := stat.ModList{
		mod(stat.Intelligence, stat.Add, 10),
		mod(stat.Strength, stat.Add, 5),
		mod(stat.Intelligence, stat.Mult, 0.5),
	}
	assert.Equal(t, []stat.ID{stat.Intelligence, stat.Strength}, l.Targets())
	assert.Len(t, l.For(stat.Intelligence), 2)
	assert.Empty(t, l.For(stat.Wisdom))
}

func TestModList_NilHasNoTargets(t *testing.T) {
	var l stat.ModList
	assert.Empty(t, l.Targets())
}

func TestParseKind(t *testing.T) {
	for _, k := range []stat.Kind{stat.Add, stat.Mult, stat.Replace, stat.BestOf} {
		got, err := stat.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := stat.ParseKind("divide")
	assert.Error(t, err)
}

// Property: a Replace anywhere in the list decides the total regardless of other kinds.
func TestPropertyReplaceDominates(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.Float64Range(-50, 50).Draw(rt, "base")
		baseline := rapid.Float64Range(-5, 5).Draw(rt, "baseline")
		kinds := []stat.Kind{stat.Add, stat.Mult, stat.BestOf, stat.Replace}
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		mods := make([]stat.Modifier, 0, n+1)
		for i := 0; i < n; i++ {
			k := rapid.SampledFrom(kinds).Draw(rt, "kind")
			v := rapid.Float64Range(-100, 100).Draw(rt, "value")
			mods = append(mods, mod(stat.Wisdom, k, v))
		}
		last := rapid.Float64Range(-100, 100).Draw(rt, "replace")
		mods = append(mods, mod(stat.Wisdom, stat.Replace, last))
		// Trailing non-Replace entries must not matter either.
		mods = append(mods, mod(stat.Wisdom, stat.Add, 7), mod(stat.Wisdom, stat.BestOf, 1000))

		s := stat.New(base)
		s.Apply(stat.Summarize(mods), baseline)
		if s.Total != last {
			rt.Fatalf("total %v, want last replace %v", s.Total, last)
		}
	})
}

// Property: BestOf never lowers the computed total and the result is at least every offer.
func TestPropertyBestOfFloor(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.Float64Range(-50, 50).Draw(rt, "base")
		add := rapid.Float64Range(-20, 20).Draw(rt, "add")
		offers := rapid.SliceOfN(rapid.Float64Range(-100, 100), 1, 5).Draw(rt, "offers")

		plain := stat.New(base)
		plain.Aggregate(nil, nil, add, 0, 0)

		mods := []stat.Modifier{mod(stat.Speed, stat.Add, add)}
		for _, o := range offers {
			mods = append(mods, mod(stat.Speed, stat.BestOf, o))
		}
		floored := stat.New(base)
		floored.Apply(stat.Summarize(mods), 0)

		assert.GreaterOrEqual(rt, floored.Total, plain.Total)
		for _, o := range offers {
			assert.GreaterOrEqual(rt, floored.Total, o)
		}
	})
}

// Property: aggregating twice with the same inputs reports no change the second time.
func TestPropertyAggregateIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.Float64Range(-50, 50).Draw(rt, "base")
		add := rapid.Float64Range(-20, 20).Draw(rt, "add")
		mult := rapid.Float64Range(-1, 2).Draw(rt, "mult")
		baseline := float64(rapid.IntRange(-5, 5).Draw(rt, "baseline"))

		s := stat.New(base)
		s.Aggregate(nil, nil, add, mult, baseline)
		first := s.Total
		if s.Aggregate(nil, nil, add, mult, baseline) {
			rt.Fatalf("second aggregation reported a change")
		}
		if s.Total != first {
			rt.Fatalf("total drifted from %v to %v", first, s.Total)
		}
	})
}
