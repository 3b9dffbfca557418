package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// CombatantInfo is a snapshot of a combatant passed to Lua callbacks.
type CombatantInfo struct {
	ID      string
	Name    string
	HP      int
	MaxHP   int
	Armor   int
	Alive   bool
	Effects []string
}

// Bindings are the game operations a script may perform during one call.
// Implementations are supplied by the caller for the duration of the call.
type Bindings interface {
	Combatant(id string) (CombatantInfo, bool)
	// Damage deals base damage from actorID to targetID through the normal
	// mitigation path and returns the hp actually removed.
	Damage(actorID, targetID string, base int) (int, error)
	// Heal restores up to amount hp and returns the hp actually restored.
	Heal(actorID, targetID string, amount int) (int, error)
	ApplyEffect(actorID, targetID, effect string, duration int, params map[string]float64) error
	Roll(expr string) (int, error)
	Announce(actorID, targetID, msg string)
}

// Manager owns one sandboxed LState holding every ability script.
//
// The LState is single-threaded, so calls are serialised by mu. Rooms that
// resolve concurrently queue on scripted abilities only.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	cancel    func()
	instLimit int
	current   Bindings
	logger    *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Load creates a fresh sandboxed VM, registers the engine.* modules, then
// executes every *.lua file in scriptDir in lexicographic order. A previous
// VM is closed once the new one loads successfully.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: returns an error on Lua load failure and keeps the old VM.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.cancel()
		m.state.Close()
	}
	m.state, m.cancel, m.instLimit = L, cancel, instLimit
	return nil
}

// HasHook reports whether a global Lua function named hook is defined.
func (m *Manager) HasHook(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return false
	}
	return m.state.GetGlobal(hook).Type() == lua.LTFunction
}

// CallAbility runs hook(actorID, targetID, params) with b bound to the
// engine.* modules and reports whether the script returned a truthy value.
// Each call gets its own instruction budget. Lua runtime errors are logged at
// Warn level and reported as an unsuccessful ability, never propagated.
//
// Postcondition: returns an error only when no VM is loaded or hook is undefined.
func (m *Manager) CallAbility(hook string, b Bindings, actorID, targetID string, params map[string]float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		return false, fmt.Errorf("scripting: no scripts loaded for hook %q", hook)
	}
	L := m.state
	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return false, fmt.Errorf("scripting: hook %q is not defined", hook)
	}

	m.current = b
	defer func() { m.current = nil }()
	m.cancel()
	m.cancel = Arm(L, m.instLimit)

	args := L.NewTable()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args.RawSetString(k, lua.LNumber(params[k]))
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(actorID), lua.LString(targetID), args); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.String("actor", actorID),
			zap.Error(err),
		)
		L.SetTop(0)
		return false, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret), nil
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.cancel()
		m.state.Close()
		m.state = nil
	}
}
