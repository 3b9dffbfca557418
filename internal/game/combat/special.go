package combat

import (
	"fmt"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/combatlog"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
	"github.com/cory-johannsen/blightfall/internal/scripting"
)

// ScriptRunner runs Lua-scripted abilities. *scripting.Manager satisfies it.
type ScriptRunner interface {
	HasHook(hook string) bool
	CallAbility(hook string, b scripting.Bindings, actorID, targetID string, params map[string]float64) (bool, error)
}

// Moonsight privately tells the actor whether the target is corrupted.
// Everyone else only sees that the actor used it.
func Moonsight(c *Context) (bool, error) {
	target := c.targetPlayer()
	if target == nil || !target.Alive || target.ID == c.Actor.ID {
		return c.refusePrivately("Moonsight needs another living player.")
	}
	c.Log.Public(combatlog.TypeInfo, c.Actor.ID, "",
		fmt.Sprintf("%s's eyes shine with pale moonlight.", c.Actor.Name), nil)
	verdict := "is not corrupted"
	if target.Corrupted {
		verdict = "is corrupted"
	}
	c.Log.Private(combatlog.TypeInfo, c.Actor.ID, target.ID,
		fmt.Sprintf("The moonlight shows you that %s %s.", target.Name, verdict),
		map[string]any{"corrupted": target.Corrupted}, c.Actor.ID)
	return true, nil
}

// Scripted hands the ability to its Lua hook. A false return from the script
// without any log entry of its own is reported as a fizzle.
func Scripted(c *Context) (bool, error) {
	if c.Scripts == nil {
		return false, fmt.Errorf("%w: ability %q needs script %q but no scripts are loaded",
			ErrConfiguration, c.Ability.Type, c.Ability.Script)
	}
	b := &scriptBindings{ctx: c}
	mark := c.Log.Len()
	ok, err := c.Scripts.CallAbility(c.Ability.Script, b, c.Actor.ID, c.TargetID, c.Ability.Params)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if b.err != nil {
		return false, b.err
	}
	if b.damage > 0 || b.healing > 0 {
		if err := c.addThreat(b.toMonster, b.damage, b.healing); err != nil {
			return false, err
		}
	}
	if !ok && c.Log.Len() == mark {
		return c.refuse(combatlog.TypeRefused, fmt.Sprintf("%s fizzles.", c.label()))
	}
	return ok, nil
}

// scriptBindings exposes one handler invocation to a Lua hook. Invariant
// errors are kept in err and surfaced after the script returns, so a script
// cannot swallow them.
type scriptBindings struct {
	ctx       *Context
	err       error
	damage    int
	toMonster int
	healing   int
}

func (b *scriptBindings) Combatant(id string) (scripting.CombatantInfo, bool) {
	s := b.ctx.Systems
	var effects []string
	for _, in := range s.Effects.Instances(id) {
		effects = append(effects, in.Type)
	}
	if id == entity.MonsterID {
		m := s.Arena.Monster
		if m == nil {
			return scripting.CombatantInfo{}, false
		}
		return scripting.CombatantInfo{ID: id, Name: m.Name, HP: m.HP, MaxHP: m.MaxHP, Alive: m.Alive, Effects: effects}, true
	}
	p, ok := s.Arena.Player(id)
	if !ok {
		return scripting.CombatantInfo{}, false
	}
	return scripting.CombatantInfo{ID: p.ID, Name: p.Name, HP: p.HP, MaxHP: p.MaxHP, Armor: p.Armor, Alive: p.Alive, Effects: effects}, true
}

func (b *scriptBindings) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return err
}

func (b *scriptBindings) Damage(actorID, targetID string, base int) (int, error) {
	c := b.ctx
	if actorID != c.Actor.ID {
		return 0, fmt.Errorf("script may only act as %q", c.Actor.ID)
	}
	if base <= 0 {
		return 0, nil
	}
	raw, err := c.OutgoingDamage(float64(base), c.Coordination.BonusPercent)
	if err != nil {
		return 0, b.fail(err)
	}
	var hit Hit
	if targetID == entity.MonsterID {
		hit, err = c.DamageMonster(actorID, raw, c.label())
		b.toMonster += hit.Dealt
	} else {
		p, ok := c.Arena.Player(targetID)
		if !ok || !p.Alive || c.Effects.Untargetable(p.ID) {
			return 0, nil
		}
		hit, err = c.DamagePlayer(actorID, p, raw, c.label())
	}
	if err != nil {
		return 0, b.fail(err)
	}
	b.damage += hit.Dealt
	return hit.Dealt, nil
}

func (b *scriptBindings) Heal(actorID, targetID string, amount int) (int, error) {
	c := b.ctx
	if actorID != c.Actor.ID {
		return 0, fmt.Errorf("script may only act as %q", c.Actor.ID)
	}
	p, ok := c.Arena.Player(targetID)
	if !ok || !p.Alive || amount <= 0 {
		return 0, nil
	}
	raw := float64(amount) * c.Balance.OutcomeMultiplier(0, c.Comeback.HealingBonus(c.Actor))
	healed, err := c.HealPlayer(c.Actor, p, raw)
	if err != nil {
		return 0, b.fail(err)
	}
	if healed > 0 {
		c.Log.Public(combatlog.TypeHeal, actorID, targetID,
			fmt.Sprintf("%s restores %d hp to %s.", c.label(), healed, p.Name),
			map[string]any{"healing": healed, "hp": p.HP})
	}
	b.healing += healed
	return healed, nil
}

func (b *scriptBindings) ApplyEffect(actorID, targetID, typ string, dur int, params map[string]float64) error {
	c := b.ctx
	if actorID != c.Actor.ID {
		return fmt.Errorf("script may only act as %q", c.Actor.ID)
	}
	if targetID != entity.MonsterID {
		if p, ok := c.Arena.Player(targetID); !ok || !p.Alive {
			return fmt.Errorf("no living target %q", targetID)
		}
	}
	if _, err := c.applyEffect(c.Actor, targetID, c.entityName(targetID), typ, dur, params); err != nil {
		return b.fail(err)
	}
	return nil
}

func (b *scriptBindings) Roll(expr string) (int, error) {
	res, err := b.ctx.Roller.RollExpr(expr)
	if err != nil {
		return 0, err
	}
	return res.Total(), nil
}

func (b *scriptBindings) Announce(actorID, targetID, msg string) {
	b.ctx.Log.Public(combatlog.TypeInfo, actorID, targetID, msg,
		map[string]any{"ability": b.ctx.Ability.Type})
}

// scriptHook reports whether a is resolved by Lua.
func scriptHook(a *ability.Ability) bool { return a.Script != "" }
