package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/blightfall/internal/game/dice"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total())
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	assert.Panics(t, func() { _ = dice.RollResult{Dice: []int{4}}.String() })
}

func TestParse(t *testing.T) {
	tests := []struct {
		in                     string
		count, sides, modifier int
	}{
		{"d6", 1, 6, 0},
		{"2d6", 2, 6, 0},
		{"1d8+2", 1, 8, 2},
		{"3D4-1", 3, 4, -1},
		{"5", 0, 0, 5},
	}
	for _, tt := range tests {
		e, err := dice.Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.count, e.Count, tt.in)
		assert.Equal(t, tt.sides, e.Sides, tt.in)
		assert.Equal(t, tt.modifier, e.Modifier, tt.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "d", "0d6", "2d1", "xd6", "2d6+z", "abc"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, in)
	}
}

func TestChance_Bounds(t *testing.T) {
	src := fixedSrc{val: 0}
	assert.False(t, dice.Chance(src, 0))
	assert.True(t, dice.Chance(src, 1))
	assert.True(t, dice.Chance(src, 0.01))
	assert.False(t, dice.Chance(fixedSrc{val: 999_999}, 0.99))
}

func TestRoller_CheckAndPick(t *testing.T) {
	r := dice.NewLoggedRoller(fixedSrc{val: 2}, zaptest.NewLogger(t))
	assert.Equal(t, 2, r.Pick("target", 5))
	assert.Equal(t, -1, r.Pick("target", 0))
	assert.True(t, r.Check("always", 1))
}

func TestSeededSource_Reproducible(t *testing.T) {
	a, b := dice.NewSeededSource(42), dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestPropertyRoll_TotalMatchesDice(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		res, err := dice.Roll(dice.Expression{Raw: "x", Count: count, Sides: sides}, src)
		require.NoError(rt, err)
		require.Len(rt, res.Dice, count)
		for _, d := range res.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, sides)
		}
	})
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 200; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
	assert.Panics(t, func() { src.Intn(0) })
}

func TestRoll_RejectsMalformed(t *testing.T) {
	_, err := dice.Roll(dice.Expression{Raw: "2d1", Count: 2, Sides: 1}, fixedSrc{})
	assert.Error(t, err)
	_, err = dice.Roll(dice.Expression{Raw: "d6", Count: 1, Sides: 6}, nil)
	assert.Error(t, err)
}

func TestRollExpr_FlatModifier(t *testing.T) {
	res, err := dice.RollExpr("5", fixedSrc{})
	require.NoError(t, err)
	assert.Empty(t, res.Dice)
	assert.Equal(t, 5, res.Total())
}
