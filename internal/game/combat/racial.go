package combat

import (
	"fmt"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/combatlog"
	"github.com/cory-johannsen/blightfall/internal/game/effect"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

// SelfBuff pays the ability's self_damage, then applies its effect to the
// actor.
func SelfBuff(c *Context) (bool, error) {
	if cost := int(c.Ability.Param(ability.ParamSelfDamage)); cost > 0 {
		if c.Actor.HP <= 1 {
			return c.refusePrivately(fmt.Sprintf("You are too weak to use %s.", c.Ability.Name))
		}
		c.payBlood(cost)
	}
	params := effectParams(c.Ability, ability.ParamSelfDamage)
	if _, err := c.applyEffect(c.Actor, c.Actor.ID, c.Actor.Name, string(c.Ability.Effect), duration(c.Ability), params); err != nil {
		return false, err
	}
	return true, nil
}

// Passive refuses a direct use of an always-on ability.
func Passive(c *Context) (bool, error) {
	return c.refusePrivately(fmt.Sprintf("%s is always active and cannot be used.", c.Ability.Name))
}

// ApplyPassives gives every player the permanent effects of the passive
// abilities they own. Each owner is told privately.
//
// Postcondition: returns an error wrapping effect.ErrUnknownEffect when a
// passive ability names an undefined effect.
func ApplyPassives(arena *entity.Arena, cat *ability.Catalog, effects *effect.Manager, log *combatlog.Log) error {
	for _, p := range arena.Players() {
		for _, id := range p.Abilities {
			a, ok := cat.Get(id)
			if !ok || !a.Passive || a.Effect == ability.EffectNone {
				continue
			}
			if effects.Has(p.ID, string(a.Effect)) {
				continue
			}
			if _, err := effects.Apply(p.ID, effect.Application{
				Type:       string(a.Effect),
				Duration:   effect.Permanent,
				Params:     effectParams(a),
				SourceID:   p.ID,
				SourceName: p.Name,
			}); err != nil {
				return fmt.Errorf("passive %q for %q: %w", a.Type, p.ID, err)
			}
			log.Private(combatlog.TypeEffect, p.ID, p.ID,
				fmt.Sprintf("%s is with you.", a.Name),
				map[string]any{"effect": string(a.Effect), "passive": true}, p.ID)
		}
	}
	return nil
}
