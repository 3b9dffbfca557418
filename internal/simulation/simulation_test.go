package simulation_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/combat"
	"github.com/cory-johannsen/blightfall/internal/game/dice"
	"github.com/cory-johannsen/blightfall/internal/game/effect"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
	"github.com/cory-johannsen/blightfall/internal/game/ruleset"
	"github.com/cory-johannsen/blightfall/internal/scripting"
	"github.com/cory-johannsen/blightfall/internal/simulation"
	"github.com/cory-johannsen/blightfall/internal/storage/postgres"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

type recordingArchiver struct {
	rounds []int
	err    error
}

func (r *recordingArchiver) Archive(_ context.Context, _ string, res combat.RoundResult) error {
	if r.err != nil {
		return r.err
	}
	r.rounds = append(r.rounds, res.Round)
	return nil
}

func newEngine(t *testing.T, newSource combat.SourceFactory) (*combat.Engine, *ruleset.Rules) {
	t.Helper()
	cat, err := ability.LoadDirectory("../../content/abilities")
	require.NoError(t, err)
	rules, err := ruleset.Load("../../content/races", "../../content/classes")
	require.NoError(t, err)
	require.NoError(t, rules.Validate(cat))
	reg := combat.NewRegistry()
	require.NoError(t, combat.RegisterDefaults(reg, cat))
	scripts := scripting.NewManager(zaptest.NewLogger(t))
	require.NoError(t, scripts.Load("../../content/scripts/abilities", 100_000))
	t.Cleanup(scripts.Close)
	store, err := balance.NewStore(balance.Default())
	require.NoError(t, err)
	deps := combat.Deps{
		Registry: reg,
		Catalog:  cat,
		Effects:  effect.DefaultRegistry(),
		Balance:  store,
		Scripts:  scripts,
		Logger:   zaptest.NewLogger(t),
	}
	return combat.NewEngine(deps, newSource), rules
}

func fixed(val int) combat.SourceFactory {
	return func() dice.Source { return fixedSrc{val: val} }
}

func duel(monsterHP int, rounds int) *simulation.Scenario {
	s := &simulation.Scenario{
		Name:    "duel",
		Room:    "duel",
		Monster: simulation.MonsterSpec{Name: "the Blight", HP: monsterHP},
		Players: []simulation.PlayerSpec{{ID: "ann", Name: "Ann", Race: "human", Class: "warrior"}},
	}
	for i := 0; i < rounds; i++ {
		s.Rounds = append(s.Rounds, simulation.RoundScript{Actions: []combat.Action{
			{ActorID: "ann", AbilityID: "attack", TargetID: entity.MonsterID},
		}})
	}
	return s
}

func TestLoadScenario_Shipped(t *testing.T) {
	s, err := simulation.LoadScenario("../../content/scenarios/ashfall_crossing.yaml")
	require.NoError(t, err)
	assert.Equal(t, "ashfall", s.Room)
	require.Len(t, s.Players, 4)
	assert.True(t, s.Players[2].Corrupted)
	require.NotEmpty(t, s.Rounds)
	assert.Equal(t, "shieldWall", s.Rounds[0].Actions[0].AbilityID)
	assert.Equal(t, entity.MonsterID, s.Rounds[0].Actions[1].TargetID)
}

func TestLoadScenario_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown field": "name: x\nroom: r\nmonster: {hp: 10}\nplayers: [{id: a, race: human, class: warrior}]\nbogus: 1\n",
		"no players":    "name: x\nroom: r\nmonster: {hp: 10}\n",
		"no monster hp": "name: x\nroom: r\nplayers: [{id: a, race: human, class: warrior}]\n",
		"unknown actor": "name: x\nroom: r\nmonster: {hp: 10}\nplayers: [{id: a, race: human, class: warrior}]\nrounds:\n  - actions: [{actor: z, ability: attack}]\n",
		"duplicate id":  "name: x\nroom: r\nmonster: {hp: 10}\nplayers: [{id: a, race: human, class: warrior}, {id: a, race: elf, class: priest}]\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "s.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := simulation.LoadScenario(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadScenario_GeneratesRoomID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\nmonster: {hp: 10}\nplayers: [{id: a, race: human, class: warrior}]\n"), 0o644))
	a, err := simulation.LoadScenario(path)
	require.NoError(t, err)
	b, err := simulation.LoadScenario(path)
	require.NoError(t, err)
	assert.NotEmpty(t, a.Room)
	assert.NotEqual(t, a.Room, b.Room)
	assert.Equal(t, "the Blight", a.Monster.Name)
}

func TestBuildArena_AppliesOverrides(t *testing.T) {
	_, rules := newEngine(t, fixed(0))
	s := &simulation.Scenario{
		Room:    "r",
		Monster: simulation.MonsterSpec{Name: "the Blight", HP: 50},
		Players: []simulation.PlayerSpec{
			{ID: "ann", Race: "human", Class: "warrior", HP: 40, Corrupted: true},
		},
	}
	arena, err := s.BuildArena(rules)
	require.NoError(t, err)
	ann, ok := arena.Player("ann")
	require.True(t, ok)
	assert.Equal(t, "ann", ann.Name)
	assert.Equal(t, 40, ann.HP)
	assert.True(t, ann.Corrupted)
	assert.Equal(t, 50, arena.Monster.MaxHP)

	s.Players[0].Race = "gnome"
	_, err = s.BuildArena(rules)
	assert.Error(t, err)
}

func TestRun_StopsWhenMonsterSlain(t *testing.T) {
	engine, rules := newEngine(t, fixed(999_999))
	arch := &recordingArchiver{}
	r := simulation.NewRunner(engine, rules, arch, 20, zaptest.NewLogger(t))

	rep, err := r.Run(context.Background(), duel(1, 3))
	require.NoError(t, err)
	assert.Equal(t, simulation.OutcomeMonsterSlain, rep.Outcome)
	assert.Len(t, rep.Rounds, 1)
	assert.Equal(t, []int{1}, arch.rounds)
	assert.Equal(t, []string{"ann"}, rep.Survivors)
	assert.Contains(t, rep.Public, "the Blight has been slain!")
	assert.Empty(t, engine.RoomIDs(), "room must be released")
}

func TestRun_RespectsRoundCap(t *testing.T) {
	engine, rules := newEngine(t, fixed(999_999))
	r := simulation.NewRunner(engine, rules, nil, 2, zaptest.NewLogger(t))

	rep, err := r.Run(context.Background(), duel(10_000, 5))
	require.NoError(t, err)
	assert.Equal(t, simulation.OutcomeRoundsElapsed, rep.Outcome)
	assert.Len(t, rep.Rounds, 2)
	assert.Equal(t, 2, rep.Rounds[1].Round)
}

func TestRun_ArchiveFailureStopsRun(t *testing.T) {
	engine, rules := newEngine(t, fixed(999_999))
	boom := errors.New("disk full")
	r := simulation.NewRunner(engine, rules, &recordingArchiver{err: boom}, 20, zaptest.NewLogger(t))

	rep, err := r.Run(context.Background(), duel(10_000, 3))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, rep.Rounds, 1)
}

func TestRun_CancelledContext(t *testing.T) {
	engine, rules := newEngine(t, fixed(999_999))
	r := simulation.NewRunner(engine, rules, nil, 20, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, duel(10_000, 3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ShippedScenarioKeepsRolesPrivate(t *testing.T) {
	s, err := simulation.LoadScenario("../../content/scenarios/ashfall_crossing.yaml")
	require.NoError(t, err)
	engine, rules := newEngine(t, func() dice.Source { return dice.NewSeededSource(7) })
	r := simulation.NewRunner(engine, rules, nil, 20, zaptest.NewLogger(t))

	rep, err := r.Run(context.Background(), s)
	require.NoError(t, err)
	require.NotEmpty(t, rep.Rounds)
	assert.NotEqual(t, simulation.OutcomeUnresolved, rep.Outcome)
	require.Len(t, rep.Views, 4)
	verdict := "The moonlight shows you that Cara is corrupted."
	assert.Contains(t, rep.Views["bob"], verdict)
	assert.NotContains(t, rep.Views["ann"], verdict)
	assert.NotContains(t, rep.Public, verdict)
	for id, view := range rep.Views {
		assert.GreaterOrEqual(t, len(view), 1, "player %s must see the public log", id)
	}

	var buf bytes.Buffer
	require.NoError(t, simulation.WriteReport(&buf, s, rep))
	assert.Contains(t, buf.String(), "== Ashfall Crossing (ashfall) ==")
	assert.Contains(t, buf.String(), "-- view of cara --")
}

type fakeStore struct{ saved []postgres.RoundRecord }

func (f *fakeStore) Save(_ context.Context, rec postgres.RoundRecord) (postgres.RoundRecord, error) {
	f.saved = append(f.saved, rec)
	return rec, nil
}

func TestStoreArchiver_MapsRoundResult(t *testing.T) {
	store := &fakeStore{}
	a := simulation.NewStoreArchiver(store)
	require.NoError(t, a.Archive(context.Background(), "ashfall", combat.RoundResult{
		Round: 3, MonsterTarget: "bob", Comeback: true,
	}))
	require.Len(t, store.saved, 1)
	assert.Equal(t, postgres.RoundRecord{RoomID: "ashfall", Round: 3, MonsterTarget: "bob", Comeback: true}, store.saved[0])
}
