package scripting_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/blightfall/internal/scripting"
)

type fakeBindings struct {
	hp        map[string]int
	effects   []string
	announced []string
	rolls     []string
}

func newFake() *fakeBindings {
	return &fakeBindings{hp: map[string]int{"ann": 40, "bob": 100}}
}

func (f *fakeBindings) Combatant(id string) (scripting.CombatantInfo, bool) {
	hp, ok := f.hp[id]
	if !ok {
		return scripting.CombatantInfo{}, false
	}
	return scripting.CombatantInfo{ID: id, Name: id, HP: hp, MaxHP: 100, Alive: hp > 0}, true
}

func (f *fakeBindings) Damage(_, target string, base int) (int, error) {
	if _, ok := f.hp[target]; !ok {
		return 0, errors.New("no such target")
	}
	dealt := min(base, f.hp[target])
	f.hp[target] -= dealt
	return dealt, nil
}

func (f *fakeBindings) Heal(_, target string, amount int) (int, error) {
	healed := min(amount, 100-f.hp[target])
	f.hp[target] += healed
	return healed, nil
}

func (f *fakeBindings) ApplyEffect(_, target, effect string, duration int, params map[string]float64) error {
	f.effects = append(f.effects, target+":"+effect)
	return nil
}

func (f *fakeBindings) Roll(expr string) (int, error) {
	f.rolls = append(f.rolls, expr)
	return 4, nil
}

func (f *fakeBindings) Announce(_, _, msg string) {
	f.announced = append(f.announced, msg)
}

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return scripting.NewManager(zap.New(core)), logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func TestManager_CallAbility_UsesBindings(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "a.lua", `
		function drain(actor, target, params)
			local dealt = engine.combat.damage(actor, target, params.damage)
			engine.combat.heal(actor, actor, dealt)
			engine.combat.apply_effect(actor, target, "weakened", 2, { damage_reduction = 10 })
			engine.log.announce(actor, target, "drained " .. dealt)
			return dealt > 0
		end
	`), 0))
	assert.True(t, mgr.HasHook("drain"))
	assert.False(t, mgr.HasHook("nope"))

	b := newFake()
	ok, err := mgr.CallAbility("drain", b, "ann", "bob", map[string]float64{"damage": 30})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 70, b.hp["bob"])
	assert.Equal(t, 70, b.hp["ann"])
	assert.Equal(t, []string{"bob:weakened"}, b.effects)
	assert.Equal(t, []string{"drained 30"}, b.announced)
}

func TestManager_CallAbility_UndefinedHookIsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.CallAbility("x", newFake(), "ann", "bob", nil)
	assert.Error(t, err, "no VM loaded")

	require.NoError(t, mgr.Load(writeTempLua(t, "empty.lua", `-- nothing`), 0))
	_, err = mgr.CallAbility("x", newFake(), "ann", "bob", nil)
	assert.Error(t, err)
}

func TestManager_CallAbility_RuntimeErrorWarnsAndFails(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "bad.lua", `
		function bad(actor, target, params)
			engine.combat.damage(actor, "ghost", 5)
			return true
		end
	`), 0))
	ok, err := mgr.CallAbility("bad", newFake(), "ann", "bob", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestManager_InstructionBudgetIsPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "loop.lua", `
		function busy(actor, target, params)
			local n = 0
			for i = 1, 200 do n = n + i end
			return n > 0
		end
		function spin() while true do end end
	`), 5_000))
	for i := 0; i < 50; i++ {
		ok, err := mgr.CallAbility("busy", newFake(), "ann", "bob", nil)
		require.NoError(t, err)
		require.True(t, ok, "call %d", i)
	}
	ok, err := mgr.CallAbility("spin", newFake(), "ann", "bob", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_LoadFailureKeepsPreviousVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "ok.lua", `function keep() return true end`), 0))
	assert.Error(t, mgr.Load(writeTempLua(t, "broken.lua", `function (`), 0))
	assert.True(t, mgr.HasHook("keep"))
	mgr.Close()
	assert.False(t, mgr.HasHook("keep"))
}

func TestManager_EngineLog(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "log.lua", `
		function chatty() engine.log.info("hello from lua"); return true end
	`), 0))
	_, err := mgr.CallAbility("chatty", newFake(), "ann", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("hello from lua").Len())
}

func TestManager_RealContentScripts(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("../../content/scripts/abilities", 0))
	b := newFake()
	ok, err := mgr.CallAbility("soul_siphon", b, "ann", "bob", map[string]float64{"damage": 24})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 76, b.hp["bob"])
	assert.Equal(t, 52, b.hp["ann"])

	ok, err = mgr.CallAbility("hex", b, "ann", "bob", map[string]float64{"damage_reduction": 25, "duration": 2})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"bob:weakened"}, b.effects)
}
