package effect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/blightfall/internal/game/effect"
)

func TestRegistry_RejectsDuplicate(t *testing.T) {
	reg := effect.NewRegistry()
	require.NoError(t, reg.Register(&effect.Def{ID: "burn", Refreshable: true}))
	assert.Error(t, reg.Register(&effect.Def{ID: "burn"}))
}

func TestDef_Validate(t *testing.T) {
	err := (&effect.Def{
		ID: "odd", Stackable: true, Refreshable: true,
		Modifiers: []effect.Modifier{{Channel: "luck", Kind: "ratio"}},
		Periodic:  &effect.Periodic{Kind: "drain"},
	}).Validate()
	require.Error(t, err)
	for _, want := range []string{"mutually exclusive", "unknown channel", "unknown kind", "periodic"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadDirectory_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fx.yaml"), []byte(`
effects:
  - id: chilled
    name: Chilled
    refreshable: true
    modifiers:
      - {channel: damageDealt, kind: percent, param: slow, scale: -1}
`), 0o644))
	reg, err := effect.LoadDirectory(dir)
	require.NoError(t, err)
	d, ok := reg.Get("chilled")
	require.True(t, ok)
	assert.Equal(t, -20.0, d.Modifiers[0].Amount(map[string]float64{"slow": 20}))
}

func TestLoadDirectory_RealContentMatchesBuiltins(t *testing.T) {
	reg, err := effect.LoadDirectory("../../../content/effects")
	require.NoError(t, err)
	builtin := effect.DefaultRegistry()
	require.Len(t, reg.All(), len(builtin.All()))
	for _, want := range builtin.All() {
		got, ok := reg.Get(want.ID)
		require.True(t, ok, want.ID)
		assert.Equal(t, want.Stackable, got.Stackable, want.ID)
		assert.Equal(t, want.Refreshable, got.Refreshable, want.ID)
		assert.Equal(t, want.Untargetable, got.Untargetable, want.ID)
		assert.Equal(t, want.Modifiers, got.Modifiers, want.ID)
		assert.Equal(t, want.Periodic, got.Periodic, want.ID)
	}
}
