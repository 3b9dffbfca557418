package comeback_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/comeback"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

func cfg() balance.ComebackConfig {
	return balance.ComebackConfig{Enabled: true, ThresholdPercent: 50, DamageBonusPercent: 20, HealingBonusPercent: 15, ArmorBonus: 2}
}

func players(good, corrupted int) []*entity.Player {
	var out []*entity.Player
	for i := 0; i < good+corrupted; i++ {
		out = append(out, &entity.Player{ID: fmt.Sprintf("p%d", i), Alive: true, HP: 10, MaxHP: 10, Corrupted: i >= good})
	}
	return out
}

func TestEvaluate_ActiveAtThreshold(t *testing.T) {
	ps := players(2, 2)
	a, err := entity.NewArena(ps, nil)
	require.NoError(t, err)
	s := comeback.Evaluate(a, cfg())
	assert.True(t, s.Active)
	assert.Equal(t, 50.0, s.Ratio)
	assert.Equal(t, 20.0, s.DamageBonus(ps[0]))
	assert.Equal(t, 15.0, s.HealingBonus(ps[0]))
	assert.Equal(t, 2, s.ArmorBonus(ps[0]))
	assert.Equal(t, 0.0, s.DamageBonus(ps[3]), "corrupted players never benefit")
	assert.Equal(t, 0, s.ArmorBonus(ps[3]))
}

func TestEvaluate_IgnoresDead(t *testing.T) {
	ps := players(3, 1)
	ps[0].TakeDamage(10)
	a, err := entity.NewArena(ps, nil)
	require.NoError(t, err)
	s := comeback.Evaluate(a, cfg())
	assert.InDelta(t, 66.67, s.Ratio, 0.01)
	assert.False(t, s.Active)
}

func TestPropertyComeback_NeverForCorruptedAndInactiveAboveThreshold(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		good := rapid.IntRange(0, 8).Draw(rt, "good")
		bad := rapid.IntRange(0, 8).Draw(rt, "bad")
		c := cfg()
		c.ThresholdPercent = rapid.Float64Range(0, 100).Draw(rt, "threshold")
		ps := players(good, bad)
		a, err := entity.NewArena(ps, nil)
		require.NoError(rt, err)
		s := comeback.Evaluate(a, c)
		if good+bad > 0 && float64(good)/float64(good+bad)*100 > c.ThresholdPercent {
			assert.False(rt, s.Active)
		}
		for _, p := range ps {
			if p.Corrupted {
				assert.Zero(rt, s.DamageBonus(p))
				assert.Zero(rt, s.HealingBonus(p))
				assert.Zero(rt, s.ArmorBonus(p))
			}
		}
	})
}
