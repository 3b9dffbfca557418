package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RegisterModules registers the engine.combat, engine.dice and engine.log
// tables into L. Every function resolves against the Bindings of the call in
// progress; outside a call they return nil.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetGlobal("engine", engine)

	combat := L.NewTable()
	L.SetField(engine, "combat", combat)
	L.SetField(combat, "get", L.NewFunction(m.luaGet))
	L.SetField(combat, "damage", L.NewFunction(m.luaDamage))
	L.SetField(combat, "heal", L.NewFunction(m.luaHeal))
	L.SetField(combat, "apply_effect", L.NewFunction(m.luaApplyEffect))

	dice := L.NewTable()
	L.SetField(engine, "dice", dice)
	L.SetField(dice, "roll", L.NewFunction(m.luaRoll))

	log := L.NewTable()
	L.SetField(engine, "log", log)
	L.SetField(log, "announce", L.NewFunction(m.luaAnnounce))
	L.SetField(log, "info", L.NewFunction(m.luaLogAt(zap.InfoLevel)))
	L.SetField(log, "debug", L.NewFunction(m.luaLogAt(zap.DebugLevel)))
	L.SetField(log, "warn", L.NewFunction(m.luaLogAt(zap.WarnLevel)))
}

// engine.combat.get(id) -> table|nil
func (m *Manager) luaGet(L *lua.LState) int {
	if m.current == nil {
		L.Push(lua.LNil)
		return 1
	}
	info, ok := m.current.Combatant(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	t.RawSetString("id", lua.LString(info.ID))
	t.RawSetString("name", lua.LString(info.Name))
	t.RawSetString("hp", lua.LNumber(info.HP))
	t.RawSetString("max_hp", lua.LNumber(info.MaxHP))
	t.RawSetString("armor", lua.LNumber(info.Armor))
	t.RawSetString("alive", lua.LBool(info.Alive))
	effects := L.NewTable()
	for _, e := range info.Effects {
		effects.Append(lua.LString(e))
	}
	t.RawSetString("effects", effects)
	L.Push(t)
	return 1
}

// engine.combat.damage(actor, target, amount) -> dealt
func (m *Manager) luaDamage(L *lua.LState) int {
	if m.current == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	dealt, err := m.current.Damage(L.CheckString(1), L.CheckString(2), L.CheckInt(3))
	if err != nil {
		L.RaiseError("damage: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(dealt))
	return 1
}

// engine.combat.heal(actor, target, amount) -> healed
func (m *Manager) luaHeal(L *lua.LState) int {
	if m.current == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	healed, err := m.current.Heal(L.CheckString(1), L.CheckString(2), L.CheckInt(3))
	if err != nil {
		L.RaiseError("heal: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(healed))
	return 1
}

// engine.combat.apply_effect(actor, target, effect, duration, params)
func (m *Manager) luaApplyEffect(L *lua.LState) int {
	if m.current == nil {
		return 0
	}
	params := make(map[string]float64)
	if t, ok := L.Get(5).(*lua.LTable); ok {
		t.ForEach(func(k, v lua.LValue) {
			if n, ok := v.(lua.LNumber); ok {
				params[k.String()] = float64(n)
			}
		})
	}
	if err := m.current.ApplyEffect(L.CheckString(1), L.CheckString(2), L.CheckString(3), L.CheckInt(4), params); err != nil {
		L.RaiseError("apply_effect: %s", err.Error())
	}
	return 0
}

// engine.dice.roll(expr) -> total
func (m *Manager) luaRoll(L *lua.LState) int {
	if m.current == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	total, err := m.current.Roll(L.CheckString(1))
	if err != nil {
		L.RaiseError("roll: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(total))
	return 1
}

// engine.log.announce(actor, target, msg)
func (m *Manager) luaAnnounce(L *lua.LState) int {
	if m.current != nil {
		m.current.Announce(L.CheckString(1), L.CheckString(2), L.CheckString(3))
	}
	return 0
}

func (m *Manager) luaLogAt(level zapcore.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		if ce := m.logger.Check(level, L.CheckString(1)); ce != nil {
			ce.Write(zap.String("source", "lua"))
		}
		return 0
	}
}
