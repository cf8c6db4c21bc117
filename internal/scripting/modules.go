package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RegisterModules installs the engine global with its log, dice, item, unit and
// stat tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine is a global table in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"debug": m.logAt(zap.DebugLevel),
		"info":  m.logAt(zap.InfoLevel),
		"warn":  m.logAt(zap.WarnLevel),
		"error": m.logAt(zap.ErrorLevel),
	}))
	L.SetField(engine, "dice", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"roll": m.luaRoll,
	}))
	L.SetField(engine, "item", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"spawn": m.luaSpawnItem,
	}))
	L.SetField(engine, "unit", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"equip": m.luaEquip,
	}))
	L.SetField(engine, "stat", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"total": m.luaStatTotal,
	}))
	L.SetGlobal("engine", engine)
}

// logAt joins every argument with tostring semantics and logs it at level.
func (m *Manager) logAt(level zapcore.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		if ce := m.logger.Check(level, strings.Join(parts, " ")); ce != nil {
			ce.Write(zap.String("source", "lua"))
		}
		return 0
	}
}

// engine.dice.roll(expr) -> total
func (m *Manager) luaRoll(L *lua.LState) int {
	res, err := m.roller.RollExpr(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	L.Push(lua.LNumber(res.Total()))
	return 1
}

// engine.item.spawn(def_id) -> instance_id
func (m *Manager) luaSpawnItem(L *lua.LState) int {
	defID := L.CheckString(1)
	if m.SpawnItem == nil {
		L.Push(lua.LNil)
		return 1
	}
	id, err := m.SpawnItem(defID)
	if err != nil {
		L.RaiseError("engine.item.spawn(%q): %s", defID, err.Error())
		return 0
	}
	L.Push(lua.LString(id))
	return 1
}

// engine.unit.equip(unit_id, instance_id) -> true
func (m *Manager) luaEquip(L *lua.LState) int {
	unitID := L.CheckString(1)
	instanceID := L.CheckString(2)
	if m.EquipItem == nil {
		L.Push(lua.LNil)
		return 1
	}
	if err := m.EquipItem(unitID, instanceID); err != nil {
		L.RaiseError("engine.unit.equip(%q, %q): %s", unitID, instanceID, err.Error())
		return 0
	}
	L.Push(lua.LTrue)
	return 1
}

// engine.stat.total(unit_id, stat_key) -> number
func (m *Manager) luaStatTotal(L *lua.LState) int {
	unitID := L.CheckString(1)
	key := L.CheckString(2)
	if m.StatTotal == nil {
		L.Push(lua.LNil)
		return 1
	}
	v, err := m.StatTotal(unitID, key)
	if err != nil {
		L.RaiseError("engine.stat.total(%q, %q): %s", unitID, key, err.Error())
		return 0
	}
	L.Push(lua.LNumber(v))
	return 1
}
