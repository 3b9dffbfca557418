package coordination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/coordination"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

func cfg() balance.CoordinationConfig {
	return balance.CoordinationConfig{Enabled: true, BonusPercentPerParticipant: 25, MaxParticipants: 2}
}

func TestCalculate_GroupsByTargetAndCategory(t *testing.T) {
	subs := []coordination.Submission{
		{ActorID: "a", ActorName: "A", TargetID: entity.MonsterID, Category: ability.CategoryAttack},
		{ActorID: "b", ActorName: "B", TargetID: entity.MonsterID, Category: ability.CategoryAttack},
		{ActorID: "c", ActorName: "C", TargetID: entity.MonsterID, Category: ability.CategoryAttack},
		{ActorID: "d", ActorName: "D", TargetID: entity.MonsterID, Category: ability.CategoryAttack},
		{ActorID: "e", ActorName: "E", TargetID: entity.MonsterID, Category: ability.CategoryHeal},
		{ActorID: "f", ActorName: "F", TargetID: "a", Category: ability.CategoryAttack},
	}
	got := coordination.Calculate(subs, cfg())

	assert.True(t, got["a"].Active)
	assert.Equal(t, 3, got["a"].Count())
	assert.Equal(t, 50.0, got["a"].BonusPercent, "capped at max_participants")
	assert.Equal(t, []string{"A", "C", "D"}, got["b"].Partners)
	assert.False(t, got["e"].Active)
	assert.False(t, got["f"].Active)
	assert.Equal(t, 0.0, got["f"].BonusPercent)
	assert.Contains(t, got["a"].Describe(), "B, C, D")
	assert.Empty(t, got["f"].Describe())
}

func TestCalculate_Disabled(t *testing.T) {
	c := cfg()
	c.Enabled = false
	got := coordination.Calculate([]coordination.Submission{
		{ActorID: "a", TargetID: "x", Category: ability.CategoryAttack},
		{ActorID: "b", TargetID: "x", Category: ability.CategoryAttack},
	}, c)
	assert.False(t, got["a"].Active)
}

func TestPropertyBonus_PureFunctionOfOthers(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := balance.CoordinationConfig{
			Enabled:                    true,
			BonusPercentPerParticipant: rapid.Float64Range(0, 100).Draw(rt, "pct"),
			MaxParticipants:            rapid.IntRange(0, 6).Draw(rt, "max"),
		}
		assert.Equal(rt, 0.0, coordination.Bonus(0, c))

		size := rapid.IntRange(1, 8).Draw(rt, "size")
		subs := make([]coordination.Submission, size)
		for i := range subs {
			subs[i] = coordination.Submission{ActorID: string(rune('a' + i)), TargetID: "t", Category: ability.CategoryHeal}
		}
		for _, info := range coordination.Calculate(subs, c) {
			assert.Equal(rt, coordination.Bonus(size-1, c), info.BonusPercent)
		}
	})
}
