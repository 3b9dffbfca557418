package combat

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

// protectTargets resolves the players a protective ability covers.
func (c *Context) protectTargets() []*entity.Player {
	switch c.Ability.Target {
	case ability.TargetSelf:
		return []*entity.Player{c.Actor}
	case ability.TargetMulti:
		return c.Arena.Living()
	}
	if t := c.targetPlayer(); t != nil && t.Alive {
		return []*entity.Player{t}
	}
	return nil
}

func (c *Context) protect(targets []*entity.Player, dur int, params map[string]float64) (bool, error) {
	if len(targets) == 0 {
		return c.refusePrivately(fmt.Sprintf("%s needs a living player to protect.", c.Ability.Name))
	}
	for _, t := range targets {
		if _, err := c.applyEffect(c.Actor, t.ID, t.Name, string(c.Ability.Effect), dur, params); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Shield grants the ability's effect with its armor param scaled by the
// coordination bonus.
func Shield(c *Context) (bool, error) {
	params := effectParams(c.Ability)
	scale := 1 + c.Coordination.BonusPercent/100
	params[ability.ParamArmor] = c.Ability.Param(ability.ParamArmor) * scale
	return c.protect(c.protectTargets(), duration(c.Ability), params)
}

// Stealth grants the ability's effect with its duration scaled by the
// coordination bonus.
func Stealth(c *Context) (bool, error) {
	scale := 1 + c.Coordination.BonusPercent/100
	dur := int(math.Floor(float64(duration(c.Ability)) * scale))
	return c.protect(c.protectTargets(), dur, effectParams(c.Ability))
}
