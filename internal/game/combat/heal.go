package combat

import (
	"fmt"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/combatlog"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

// healOne heals target under the configured corrupted-target policy and
// returns the hp restored. A refused or wasted heal returns 0 with a log entry.
func (c *Context) healOne(target *entity.Player, raw float64) (int, error) {
	if target.Corrupted && c.Balance.Heal.CorruptedPolicy == balance.HealPolicyLegacy {
		c.Log.Public(combatlog.TypeRefused, c.Actor.ID, target.ID,
			fmt.Sprintf("%s fails to take hold on %s.", c.label(), target.Name),
			map[string]any{"ability": c.Ability.Type})
		return 0, nil
	}
	if target.HP >= target.MaxHP {
		c.Log.Public(combatlog.TypeRefused, c.Actor.ID, target.ID,
			fmt.Sprintf("%s is already at full health.", target.Name),
			map[string]any{"ability": c.Ability.Type})
		return 0, nil
	}
	healed, err := c.HealPlayer(c.Actor, target, raw)
	if err != nil {
		return 0, err
	}
	if healed == 0 {
		c.Log.Public(combatlog.TypeRefused, c.Actor.ID, target.ID,
			fmt.Sprintf("%s has no effect on %s.", c.label(), target.Name),
			map[string]any{"ability": c.Ability.Type})
		return 0, nil
	}
	c.Log.Public(combatlog.TypeHeal, c.Actor.ID, target.ID,
		fmt.Sprintf("%s restores %d hp to %s.", c.label(), healed, target.Name),
		map[string]any{"healing": healed, "hp": target.HP})
	if target.Corrupted {
		c.rollDetection(target)
	}
	return healed, nil
}

// rollDetection gives a heal of a corrupted player its chance to expose them.
func (c *Context) rollDetection(target *entity.Player) {
	if !c.Roller.Check("heal detection", c.Balance.Heal.DetectionChance) {
		return
	}
	c.Corruption.MarkDetected(target.ID)
	c.Log.Public(combatlog.TypeDetection, c.Actor.ID, target.ID,
		fmt.Sprintf("Dark veins spread beneath %s's healed wounds. %s is corrupted!", target.Name, target.Name),
		map[string]any{"detected": target.ID})
	if c.Detection != nil {
		c.Detection.RoleDetected(c.Actor.ID, target.ID, c.Log.Round())
	}
}

func (c *Context) healingRaw() float64 {
	return c.Ability.Param(ability.ParamHealing) *
		c.Balance.OutcomeMultiplier(c.Coordination.BonusPercent, c.Comeback.HealingBonus(c.Actor))
}

// Heal restores hp to one living player, or to the actor for self abilities.
func Heal(c *Context) (bool, error) {
	target := c.Actor
	if c.Ability.Target != ability.TargetSelf {
		target = c.targetPlayer()
	}
	if target == nil || !target.Alive {
		return c.refusePrivately(fmt.Sprintf("%s needs a living player to heal.", c.Ability.Name))
	}
	healed, err := c.healOne(target, c.healingRaw())
	if err != nil || healed == 0 {
		return false, err
	}
	return true, c.addThreat(0, 0, healed)
}

// MultiHeal heals every living player, the caster included. It fails only
// when nobody received any healing.
func MultiHeal(c *Context) (bool, error) {
	raw := c.healingRaw()
	total := 0
	for _, p := range c.Arena.Living() {
		healed, err := c.healOne(p, raw)
		if err != nil {
			return false, err
		}
		total += healed
	}
	if total == 0 {
		return c.refuse(combatlog.TypeRefused, fmt.Sprintf("%s heals nobody.", c.label()))
	}
	return true, c.addThreat(0, 0, total)
}
