package ability_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
)

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	a := &ability.Ability{Type: "attack", Category: ability.CategoryAttack, Target: ability.TargetSingle}
	_, err := ability.NewCatalog([]*ability.Ability{a, a})
	assert.Error(t, err)
}

func TestAbility_Validate(t *testing.T) {
	bad := &ability.Ability{Type: "x", Category: "dance", Target: "everyone", Cooldown: -1,
		Params: map[string]float64{"damage": -3}}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
	assert.Contains(t, err.Error(), "unknown target")
	assert.Contains(t, err.Error(), "cooldown")
	assert.Contains(t, err.Error(), "param damage")
}

func TestAbility_ParamOr(t *testing.T) {
	a := &ability.Ability{Params: map[string]float64{"damage": 10}}
	assert.Equal(t, 10.0, a.ParamOr("damage", 3))
	assert.Equal(t, 3.0, a.ParamOr("healing", 3))
	assert.False(t, a.Has("healing"))
}

func TestLoadDirectory_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "attacks.yaml"), []byte(`
abilities:
  - type: twinStrike
    name: Twin Strike
    category: attack
    target: single
    cooldown: 1
    params:
      hit_count: 2
      damage_per_hit: 12
`), 0o644))

	cat, err := ability.LoadDirectory(dir)
	require.NoError(t, err)
	a, ok := cat.Get("twinStrike")
	require.True(t, ok)
	assert.Equal(t, ability.CategoryAttack, a.Category)
	assert.Equal(t, 2.0, a.Param(ability.ParamHitCount))
	assert.Equal(t, 1, a.Cooldown)
}

func TestLoadDirectory_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`
abilities:
  - type: x
    category: attack
    target: single
    bogus: 1
`), 0o644))
	_, err := ability.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_RealContent(t *testing.T) {
	cat, err := ability.LoadDirectory("../../../content/abilities")
	require.NoError(t, err)
	for _, typ := range []string{"attack", "twinStrike", "meteorShower", "heal", "shieldWall", "shadowstep", "undying"} {
		_, ok := cat.Get(typ)
		assert.True(t, ok, "ability %q must be present", typ)
	}
}
