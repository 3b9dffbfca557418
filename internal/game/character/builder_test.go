package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/blightfall/internal/game/character"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
	"github.com/cory-johannsen/blightfall/internal/game/ruleset"
)

func makeRace(hp, armor int, dmg float64, abilities ...string) *ruleset.Race {
	return &ruleset.Race{ID: "test_race", Name: "Test Race", HPBonus: hp, ArmorBonus: armor, DamageMod: dmg, Abilities: abilities}
}

func makeClass(hp, armor int, dmg float64, abilities ...string) *ruleset.Class {
	return &ruleset.Class{ID: "test_class", Name: "Test Class", BaseHP: hp, BaseArmor: armor, DamageMod: dmg, Abilities: abilities}
}

func TestBuild_CombinesRaceAndClass(t *testing.T) {
	p, err := character.Build("p1", "Hero", makeRace(15, 1, 1.1, "bloodRage", "attack"), makeClass(100, 2, 1.2, "attack", "heal"))
	require.NoError(t, err)

	assert.Equal(t, 115, p.MaxHP)
	assert.Equal(t, 115, p.HP)
	assert.Equal(t, 3, p.Armor)
	assert.InDelta(t, 1.32, p.DamageMod, 1e-9)
	assert.Equal(t, []string{"attack", "heal", "bloodRage"}, p.Abilities)
	assert.True(t, p.Alive)
	assert.False(t, p.Corrupted)
	assert.NoError(t, p.Check())
}

func TestBuild_ZeroModifiersAreNeutral(t *testing.T) {
	p, err := character.Build("p1", "Hero", makeRace(0, 0, 0), makeClass(50, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.DamageMod)
}

func TestBuild_Errors(t *testing.T) {
	_, err := character.Build("", "Hero", makeRace(0, 0, 1), makeClass(10, 0, 1))
	assert.Error(t, err)
	_, err = character.Build(entity.MonsterID, "Hero", makeRace(0, 0, 1), makeClass(10, 0, 1))
	assert.Error(t, err)
	_, err = character.Build("p1", "", makeRace(0, 0, 1), makeClass(10, 0, 1))
	assert.Error(t, err)
	_, err = character.Build("p1", "Hero", nil, makeClass(10, 0, 1))
	assert.Error(t, err)
	_, err = character.Build("p1", "Hero", makeRace(0, 0, 1), nil)
	assert.Error(t, err)
}

func TestBuildFromRules_UnknownIDs(t *testing.T) {
	rules, err := ruleset.NewRules([]*ruleset.Race{makeRace(0, 0, 1)}, []*ruleset.Class{makeClass(10, 0, 1)})
	require.NoError(t, err)
	_, err = character.BuildFromRules(rules, "p1", "Hero", "nope", "test_class")
	assert.Error(t, err)
	p, err := character.BuildFromRules(rules, "p1", "Hero", "test_race", "test_class")
	require.NoError(t, err)
	assert.Equal(t, "test_race", p.Race)
}

func TestPropertyBuild_HPNeverBelowOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.IntRange(1, 200).Draw(rt, "base")
		bonus := rapid.IntRange(-300, 50).Draw(rt, "bonus")
		p, err := character.Build("p1", "Hero", makeRace(bonus, 0, 1), makeClass(base, 0, 1))
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, p.MaxHP, 1)
		assert.Equal(rt, p.MaxHP, p.HP)
	})
}
