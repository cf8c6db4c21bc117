package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/scripting"
)

func TestNewSandboxedState_UnsafeLibsNil(t *testing.T) {
	L := scripting.NewSandboxedState()
	require.NotNil(t, L)
	defer L.Close()
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_SafeLibsAvailable(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	err := L.DoString(`
		local x = math.floor(7 / 2)
		assert(x == 3, "math.floor failed")
		local s = string.upper("dex")
		assert(s == "DEX", "string.upper failed")
		local t = {}
		table.insert(t, 1)
		assert(#t == 1, "table.insert failed")
	`)
	assert.NoError(t, err)
}

func TestLimited_InfiniteLoopErrors(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	err := scripting.Limited(L, 10, func() error { return L.DoString(`while true do end`) })
	assert.Error(t, err)
}

func TestLimited_BudgetIsPerCall(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	require.NoError(t, L.DoString(`function step() local x = 0 for i = 1, 10 do x = x + i end return x end`))
	// Each call fits the budget on its own even though together they would not.
	for i := 0; i < 50; i++ {
		err := scripting.Limited(L, 500, func() error {
			return L.CallByParam(lua.P{Fn: L.GetGlobal("step"), NRet: 1, Protect: true})
		})
		require.NoError(t, err, "call %d", i)
		assert.Equal(t, lua.LNumber(55), L.Get(-1))
		L.Pop(1)
	}
}

func TestLimited_StateUsableAfterExhaustion(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	require.Error(t, scripting.Limited(L, 10, func() error { return L.DoString(`while true do end`) }))
	assert.NoError(t, scripting.Limited(L, 0, func() error { return L.DoString(`local y = 2 * 2`) }))
}

// Property: an unbounded loop always fails for any positive limit.
func TestProperty_InstructionLimitAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 5_000).Draw(rt, "limit")
		L := scripting.NewSandboxedState()
		defer L.Close()
		err := scripting.Limited(L, limit, func() error { return L.DoString(`while true do end`) })
		if err == nil {
			rt.Fatalf("expected error with limit %d", limit)
		}
	})
}
