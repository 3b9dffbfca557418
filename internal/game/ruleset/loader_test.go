package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/ruleset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadRaces_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "orc.yaml"), `
id: orc
name: Orc
article: an
hp_bonus: 15
damage_mod: 1.1
abilities:
  - bloodRage
`)
	races, err := ruleset.LoadRaces(dir)
	require.NoError(t, err)
	require.Len(t, races, 1)
	r := races[0]
	assert.Equal(t, "an Orc", r.DisplayName())
	assert.Equal(t, 15, r.HPBonus)
	assert.InDelta(t, 1.1, r.Multiplier(), 1e-9)
	assert.Equal(t, []string{"bloodRage"}, r.Abilities)
}

func TestLoadClasses_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bard.yaml"), "id: bard\nname: Bard\nbase_hp: 80\nlute: true\n")
	_, err := ruleset.LoadClasses(dir)
	assert.Error(t, err)
}

func TestNewRules_RejectsDuplicatesAndBadClasses(t *testing.T) {
	_, err := ruleset.NewRules(
		[]*ruleset.Race{{ID: "elf", Name: "Elf"}, {ID: "elf", Name: "Elf"}},
		[]*ruleset.Class{{ID: "monk", Name: "Monk"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate race")
	assert.Contains(t, err.Error(), "base_hp")
}

func TestMultiplier_ZeroIsNeutral(t *testing.T) {
	assert.Equal(t, 1.0, (&ruleset.Class{}).Multiplier())
	assert.Equal(t, 1.0, (&ruleset.Race{}).Multiplier())
}

func TestLoad_RealContentReferencesKnownAbilities(t *testing.T) {
	rules, err := ruleset.Load("../../../content/races", "../../../content/classes")
	require.NoError(t, err)
	cat, err := ability.LoadDirectory("../../../content/abilities")
	require.NoError(t, err)
	require.NoError(t, rules.Validate(cat))

	_, ok := rules.Race("revenant")
	assert.True(t, ok)
	_, ok = rules.Class("warrior")
	assert.True(t, ok)
	assert.NotEmpty(t, rules.Classes())
}

func TestValidate_UnknownAbility(t *testing.T) {
	rules, err := ruleset.NewRules(nil, []*ruleset.Class{{ID: "monk", Name: "Monk", BaseHP: 80, Abilities: []string{"palmStrike"}}})
	require.NoError(t, err)
	cat, err := ability.NewCatalog(nil)
	require.NoError(t, err)
	assert.ErrorContains(t, rules.Validate(cat), "palmStrike")
}
