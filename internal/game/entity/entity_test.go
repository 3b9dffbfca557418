package entity_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

func newPlayer(id string, hp int) *entity.Player {
	return &entity.Player{ID: id, Name: id, Alive: hp > 0, HP: hp, MaxHP: 100, DamageMod: 1}
}

func TestPlayer_TakeDamage_FloorsAtZeroAndKills(t *testing.T) {
	p := newPlayer("p1", 30)
	dealt := p.TakeDamage(50)
	assert.Equal(t, 30, dealt)
	assert.Equal(t, 0, p.HP)
	assert.False(t, p.Alive)
	assert.Equal(t, 30, p.Stats.DamageTaken)
}

func TestPlayer_TakeDamage_DeadIsVoid(t *testing.T) {
	p := newPlayer("p1", 0)
	assert.Equal(t, 0, p.TakeDamage(10))
}

func TestPlayer_Heal_ClampsToMax(t *testing.T) {
	p := newPlayer("p1", 90)
	assert.Equal(t, 10, p.Heal(25))
	assert.Equal(t, 100, p.HP)
	assert.Equal(t, 0, p.Heal(5))
}

func TestPlayer_Revive(t *testing.T) {
	p := newPlayer("p1", 10)
	p.TakeDamage(10)
	p.Revive(0)
	assert.True(t, p.Alive)
	assert.Equal(t, 1, p.HP)
	assert.Equal(t, 1, p.Stats.TimesRevived)
}

func TestPlayer_Cooldowns(t *testing.T) {
	p := newPlayer("p1", 10)
	p.StartCooldown("fireball", 2)
	assert.Equal(t, 2, p.Cooldown("fireball"))
	p.TickCooldowns()
	assert.Equal(t, 1, p.Cooldown("fireball"))
	p.TickCooldowns()
	assert.Equal(t, 0, p.Cooldown("fireball"))
}

func TestArena_RejectsMonsterIDAndDuplicates(t *testing.T) {
	_, err := entity.NewArena([]*entity.Player{newPlayer(entity.MonsterID, 10)}, nil)
	assert.Error(t, err)
	_, err = entity.NewArena([]*entity.Player{newPlayer("a", 10), newPlayer("a", 10)}, nil)
	assert.Error(t, err)
}

func TestArena_Check_DetectsThreatOnDeadPlayer(t *testing.T) {
	dead := newPlayer("dead", 0)
	m := &entity.Monster{HP: 10, MaxHP: 10, Alive: true, Threat: map[string]float64{"dead": 3}}
	a, err := entity.NewArena([]*entity.Player{dead}, m)
	require.NoError(t, err)
	err = a.Check()
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrInvariant))
}

func TestPropertyPlayer_HPStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := newPlayer("p", rapid.IntRange(1, 100).Draw(rt, "hp"))
		ops := rapid.SliceOfN(rapid.IntRange(-60, 60), 1, 30).Draw(rt, "ops")
		for _, op := range ops {
			if op < 0 {
				p.TakeDamage(-op)
			} else {
				p.Heal(op)
			}
			if err := p.Check(); err != nil {
				rt.Fatalf("invariant broken: %v", err)
			}
		}
	})
}
