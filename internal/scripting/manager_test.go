package scripting_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewRoller(dice.NewSeededSource(1), logger)
	return scripting.NewManager(roller, logger, 0), logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

// runScript loads src and calls hook with args.
func runScript(t testing.TB, mgr *scripting.Manager, src, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	require.NoError(t, mgr.Load(writeTempLua(t, "script.lua", src)))
	ret, err := mgr.CallHook(hook, args...)
	require.NoError(t, err)
	return ret
}

func TestManager_Load_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function add(a, b)
			return a + b
		end
	`, "add", lua.LNumber(3), lua.LNumber(4))
	assert.Equal(t, lua.LNumber(7), ret)
	assert.True(t, mgr.HasHook("add"))
	assert.False(t, mgr.HasHook("missing"))
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `-- no functions`, "nonexistent_hook")
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_NotLoaded_LogsInfo(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret, err := mgr.CallHook("goblin_spawn")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: no scripts loaded").Len())
	assert.False(t, mgr.HasHook("goblin_spawn"))
}

func TestManager_CallHook_RuntimeError_LogsWarnAndReturns(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional")
		end
	`)))
	ret, err := mgr.CallHook("bad_hook")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_hook")
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestManager_CallHook_RunawayHookIsStopped(t *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	mgr := scripting.NewManager(dice.NewRoller(dice.NewSeededSource(1), logger), logger, 1_000)
	require.NoError(t, mgr.Load(writeTempLua(t, "spin.lua", `
		function spin() while true do end end
		function ok() return 1 end
	`)))
	_, err := mgr.CallHook("spin")
	require.Error(t, err)
	ret, err := mgr.CallHook("ok")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(1), ret)
}

func TestManager_Load_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`function get_val() return base_val end`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte(`not lua`), 0644))
	require.NoError(t, mgr.Load(dir))
	ret, err := mgr.CallHook("get_val")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(10), ret)
}

func TestManager_Load_InvalidLua_KeepsPreviousState(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "good.lua", `function still_here() return true end`)))
	assert.Error(t, mgr.Load(writeTempLua(t, "bad.lua", `this is not valid lua @@@@`)))
	ret, err := mgr.CallHook("still_here")
	require.NoError(t, err)
	assert.Equal(t, lua.LTrue, ret)
}

func TestManager_Load_MissingDir(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load(filepath.Join(t.TempDir(), "nope")))
}

func TestManager_Close_ReleasesState(t *testing.T) {
	mgr, _ := newTestManager(t)
	runScript(t, mgr, `function get_x() return 1 end`, "get_x")
	mgr.Close()
	ret, err := mgr.CallHook("get_x")
	assert.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestNewManager_PanicsOnNilArgs(t *testing.T) {
	logger := zap.NewNop()
	assert.Panics(t, func() { scripting.NewManager(nil, logger, 0) })
	assert.Panics(t, func() { scripting.NewManager(dice.NewRoller(dice.NewSeededSource(1), logger), nil, 0) })
}

func TestEngineLog_AllLevels(t *testing.T) {
	mgr, logs := newTestManager(t)
	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d", 1)
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")
	assert.Equal(t, 1, logs.FilterMessage("d 1").FilterLevelExact(zap.DebugLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("i").FilterLevelExact(zap.InfoLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("w").FilterLevelExact(zap.WarnLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("e").FilterLevelExact(zap.ErrorLevel).Len())
}

func TestEngineDice_Roll(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `function do_roll() return engine.dice.roll("1d6") end`, "do_roll")
	n, ok := ret.(lua.LNumber)
	require.True(t, ok, "expected LNumber, got %T", ret)
	assert.GreaterOrEqual(t, int(n), 1)
	assert.LessOrEqual(t, int(n), 6)
}

func TestEngineDice_Roll_BadExpressionErrors(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "d.lua", `function do_roll() return engine.dice.roll("2x6") end`)))
	_, err := mgr.CallHook("do_roll")
	assert.Error(t, err)
}

func TestEngineCallbacks_NilReturnNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function probe()
			local a = engine.item.spawn("dagger")
			local b = engine.unit.equip("u1", "i1")
			local c = engine.stat.total("u1", "strength")
			return a == nil and b == nil and c == nil
		end
	`, "probe")
	assert.Equal(t, lua.LTrue, ret)
}

func TestEngineCallbacks_SpawnEquipTotal(t *testing.T) {
	mgr, _ := newTestManager(t)
	var spawned, equipped []string
	mgr.SpawnItem = func(defID string) (string, error) {
		spawned = append(spawned, defID)
		return "inst-" + defID, nil
	}
	mgr.EquipItem = func(unitID, instanceID string) error {
		equipped = append(equipped, unitID+":"+instanceID)
		return nil
	}
	mgr.StatTotal = func(unitID, key string) (float64, error) {
		if key == "armor_class" {
			return 14, nil
		}
		return 0, errors.New("unknown stat")
	}
	ret := runScript(t, mgr, `
		function captain_spawn(unit_id)
			local ring = engine.item.spawn("ring_of_protection")
			engine.unit.equip(unit_id, ring)
			return engine.stat.total(unit_id, "armor_class")
		end
	`, "captain_spawn", lua.LString("captain-1"))
	assert.Equal(t, lua.LNumber(14), ret)
	assert.Equal(t, []string{"ring_of_protection"}, spawned)
	assert.Equal(t, []string{"captain-1:inst-ring_of_protection"}, equipped)
}

func TestEngineCallbacks_ErrorsRaise(t *testing.T) {
	mgr, logs := newTestManager(t)
	mgr.EquipItem = func(unitID, instanceID string) error { return errors.New("slot ring is full") }
	require.NoError(t, mgr.Load(writeTempLua(t, "e.lua", `function try() engine.unit.equip("u", "i") end`)))
	_, err := mgr.CallHook("try")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot ring is full")
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestContent_EnemyScriptsLoad(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("../../content/scripts"))
	assert.True(t, mgr.HasHook("goblin_spawn"))
	assert.True(t, mgr.HasHook("captain_spawn"))
}

// Property: calling any hook name on a loaded or unloaded manager never panics.
func TestProperty_CallHookNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		if rapid.Bool().Draw(rt, "load") {
			require.NoError(rt, mgr.Load(writeTempLua(t, "h.lua", `function h(x) return x end`)))
		} else {
			mgr.Close()
		}
		hook := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "hook")
		mgr.CallHook(hook, lua.LNumber(1)) //nolint:errcheck
	})
}
