package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/combat"
	"github.com/cory-johannsen/blightfall/internal/game/combatlog"
	"github.com/cory-johannsen/blightfall/internal/game/comeback"
	"github.com/cory-johannsen/blightfall/internal/game/coordination"
	"github.com/cory-johannsen/blightfall/internal/game/corruption"
	"github.com/cory-johannsen/blightfall/internal/game/dice"
	"github.com/cory-johannsen/blightfall/internal/game/effect"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
	"github.com/cory-johannsen/blightfall/internal/game/threat"
)

// fixedSrc always returns val (clamped to n-1). val 0 makes every chance
// check with p > 0 succeed.
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func player(id string, hp int) *entity.Player {
	return &entity.Player{ID: id, Name: id, Alive: hp > 0, HP: hp, MaxHP: 100, DamageMod: 1}
}

func newSystems(t *testing.T, bal *balance.Balance, src dice.Source, players ...*entity.Player) *combat.Systems {
	t.Helper()
	arena, err := entity.NewArena(players, &entity.Monster{Name: "the Blight", HP: 300, MaxHP: 300, Alive: true})
	require.NoError(t, err)
	return &combat.Systems{
		Arena:      arena,
		Log:        combatlog.New(),
		Effects:    effect.NewManager(effect.DefaultRegistry()),
		Threat:     threat.New(bal.Threat),
		Corruption: corruption.NewTracker(bal.Corruption),
		Comeback:   comeback.Evaluate(arena, bal.Comeback),
		Balance:    bal,
		Roller:     dice.NewLoggedRoller(src, zaptest.NewLogger(t)),
		Logger:     zaptest.NewLogger(t),
	}
}

func ctxFor(sys *combat.Systems, actorID, targetID string, a *ability.Ability) *combat.Context {
	actor, _ := sys.Arena.Player(actorID)
	return &combat.Context{Systems: sys, Actor: actor, TargetID: targetID, Ability: a}
}

func withBonus(c *combat.Context, pct float64, partners ...string) *combat.Context {
	c.Coordination = coordination.Info{Active: pct > 0, BonusPercent: pct, Partners: partners}
	return c
}

func attackDef(typ string, params map[string]float64) *ability.Ability {
	return &ability.Ability{Type: typ, Name: typ, Category: ability.CategoryAttack, Target: ability.TargetSingle, Params: params}
}

func countType(entries []combatlog.Entry, typ combatlog.Type) int {
	n := 0
	for _, e := range entries {
		if e.Type == typ {
			n++
		}
	}
	return n
}
