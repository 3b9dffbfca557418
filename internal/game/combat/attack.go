package combat

import (
	"fmt"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/combatlog"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

// checkStrikeTarget refuses strikes against the dead, the hidden and the actor.
// It returns ok == true when the strike may proceed.
func (c *Context) checkStrikeTarget() (ok bool) {
	if c.TargetID == entity.MonsterID {
		if c.Arena.Monster == nil || !c.Arena.Monster.Alive {
			c.refuse(combatlog.TypeRefused, fmt.Sprintf("%s has no monster to strike.", c.label()))
			return false
		}
		return true
	}
	target := c.targetPlayer()
	switch {
	case target == nil:
		c.refusePrivately(fmt.Sprintf("%s has no valid target.", c.Ability.Name))
		return false
	case target.ID == c.Actor.ID:
		c.refusePrivately(fmt.Sprintf("You cannot turn %s on yourself.", c.Ability.Name))
		return false
	case !target.Alive:
		c.refuse(combatlog.TypeRefused, fmt.Sprintf("%s strikes at the corpse of %s.", c.label(), target.Name))
		return false
	case c.Effects.Untargetable(target.ID):
		c.refuse(combatlog.TypeMiss, fmt.Sprintf("%s misses; %s cannot be seen.", c.label(), target.Name))
		return false
	}
	return true
}

// strike applies one damage application of base to the current target.
func (c *Context) strike(base, coordinationPct float64) (Hit, error) {
	raw, err := c.OutgoingDamage(base, coordinationPct)
	if err != nil {
		return Hit{}, err
	}
	if c.TargetID == entity.MonsterID {
		return c.DamageMonster(c.Actor.ID, raw, c.label())
	}
	return c.DamagePlayer(c.Actor.ID, c.targetPlayer(), raw, c.label())
}

// afterStrike attributes threat for a total damage figure and rolls the
// conversion a corrupted attacker earns by hurting someone.
func (c *Context) afterStrike(total int) error {
	toMonster := 0
	if c.TargetID == entity.MonsterID {
		toMonster = total
	}
	if err := c.addThreat(toMonster, total, 0); err != nil {
		return err
	}
	if !c.Actor.Corrupted || total == 0 {
		return nil
	}
	if c.TargetID == entity.MonsterID {
		c.Corruption.AttemptIncidental(c.Arena, c.Actor, c.Balance.Corruption.MonsterAttackModifier, c.Roller, c.Log)
		return nil
	}
	c.Corruption.Attempt(c.Arena, c.Actor, c.targetPlayer(), 1, c.Roller, c.Log)
	return nil
}

// targetAlive reports whether the current target still stands.
func (c *Context) targetAlive() bool {
	if c.TargetID == entity.MonsterID {
		return c.Arena.Monster != nil && c.Arena.Monster.Alive
	}
	t := c.targetPlayer()
	return t != nil && t.Alive
}

// BasicAttack deals the ability's damage to one target.
func BasicAttack(c *Context) (bool, error) {
	if !c.checkStrikeTarget() {
		return false, nil
	}
	hit, err := c.strike(c.Ability.Param(ability.ParamDamage), c.Coordination.BonusPercent)
	if err != nil {
		return false, err
	}
	return true, c.afterStrike(hit.Dealt)
}

// MultiHit lands hit_count separate blows of damage_per_hit (or damage) on
// one target and stops as soon as the target dies. Threat is attributed once
// for the total.
func MultiHit(c *Context) (bool, error) {
	if !c.checkStrikeTarget() {
		return false, nil
	}
	hits := int(c.Ability.ParamOr(ability.ParamHitCount, 1))
	per := c.Ability.ParamOr(ability.ParamDamagePerHit, c.Ability.Param(ability.ParamDamage))
	total, landed := 0, 0
	for i := 0; i < hits && c.targetAlive(); i++ {
		hit, err := c.strike(per, c.Coordination.BonusPercent)
		if err != nil {
			return false, err
		}
		total += hit.Dealt
		landed++
	}
	c.Log.Public(combatlog.TypeInfo, c.Actor.ID, c.TargetID,
		fmt.Sprintf("%s lands %d of %d hits for %d total damage.", c.label(), landed, hits, total),
		map[string]any{"hits": landed, "total": total})
	return true, c.afterStrike(total)
}

// AreaAttack hits every other living, visible player and, unless
// include_monster is 0, the monster. The coordination bonus is split evenly
// across the targets.
func AreaAttack(c *Context) (bool, error) {
	var targets []string
	for _, p := range c.Arena.Living() {
		if p.ID != c.Actor.ID && !c.Effects.Untargetable(p.ID) {
			targets = append(targets, p.ID)
		}
	}
	if c.Ability.ParamOr(ability.ParamIncludeMonster, 1) != 0 && c.Arena.Monster != nil && c.Arena.Monster.Alive {
		targets = append(targets, entity.MonsterID)
	}
	if len(targets) == 0 {
		return c.refuse(combatlog.TypeMiss, fmt.Sprintf("%s finds no targets.", c.label()))
	}

	share := c.Coordination.BonusPercent / float64(len(targets))
	base := c.Ability.Param(ability.ParamDamage)
	total, toMonster, landed := 0, 0, 0
	for _, id := range targets {
		raw, err := c.OutgoingDamage(base, share)
		if err != nil {
			return false, err
		}
		var hit Hit
		if id == entity.MonsterID {
			hit, err = c.DamageMonster(c.Actor.ID, raw, c.label())
			toMonster += hit.Dealt
		} else {
			p, _ := c.Arena.Player(id)
			hit, err = c.DamagePlayer(c.Actor.ID, p, raw, c.label())
		}
		if err != nil {
			return false, err
		}
		total += hit.Dealt
		landed++
	}
	c.Log.Public(combatlog.TypeInfo, c.Actor.ID, "",
		fmt.Sprintf("%s strikes %d targets for %d total damage.", c.label(), landed, total),
		map[string]any{"hits": landed, "total": total})
	if err := c.addThreat(toMonster, total, 0); err != nil {
		return false, err
	}
	if c.Actor.Corrupted && total > 0 {
		c.Corruption.AttemptIncidental(c.Arena, c.Actor, c.Balance.Corruption.AOEModifier, c.Roller, c.Log)
	}
	return true, nil
}

// EffectStrike deals the ability's damage, then applies its effect tag
// (vulnerability or damage over time) to the target if it survived.
func EffectStrike(c *Context) (bool, error) {
	if !c.checkStrikeTarget() {
		return false, nil
	}
	hit, err := c.strike(c.Ability.Param(ability.ParamDamage), c.Coordination.BonusPercent)
	if err != nil {
		return false, err
	}
	if c.targetAlive() && c.Ability.Effect != ability.EffectNone {
		if _, err := c.applyEffect(c.Actor, c.TargetID, c.entityName(c.TargetID), string(c.Ability.Effect),
			duration(c.Ability), effectParams(c.Ability, ability.ParamDamage)); err != nil {
			return false, err
		}
	}
	return true, c.afterStrike(hit.Dealt)
}

// RecklessStrike costs the actor self_damage_factor of the ability's damage
// before swinging. The cost never drops the actor below 1 hp and is paid
// even when the swing misses.
func RecklessStrike(c *Context) (bool, error) {
	base := c.Ability.Param(ability.ParamDamage)
	c.payBlood(int(base * c.Ability.Param(ability.ParamSelfDamageFactor)))
	if !c.checkStrikeTarget() {
		return false, nil
	}
	hit, err := c.strike(base, c.Coordination.BonusPercent)
	if err != nil {
		return false, err
	}
	return true, c.afterStrike(hit.Dealt)
}

// payBlood removes up to cost hp from the actor, leaving at least 1.
func (c *Context) payBlood(cost int) int {
	if cost > c.Actor.HP-1 {
		cost = c.Actor.HP - 1
	}
	if cost <= 0 {
		return 0
	}
	paid := c.Actor.TakeDamage(cost)
	c.Log.Public(combatlog.TypeDamage, c.Actor.ID, c.Actor.ID,
		fmt.Sprintf("%s pays %d hp to use %s.", c.Actor.Name, paid, c.Ability.Name),
		map[string]any{"damage": paid, "dealt": paid, "hp": c.Actor.HP, "self": true})
	return paid
}
