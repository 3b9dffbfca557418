package combat

import (
	"fmt"
	"maps"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/combatlog"
	"github.com/cory-johannsen/blightfall/internal/game/comeback"
	"github.com/cory-johannsen/blightfall/internal/game/coordination"
	"github.com/cory-johannsen/blightfall/internal/game/corruption"
	"github.com/cory-johannsen/blightfall/internal/game/dice"
	"github.com/cory-johannsen/blightfall/internal/game/effect"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
	"github.com/cory-johannsen/blightfall/internal/game/threat"
)

// Systems are the room-owned services every handler composes. One Systems
// value lives for exactly one round.
type Systems struct {
	Arena      *entity.Arena
	Log        *combatlog.Log
	Effects    *effect.Manager
	Threat     *threat.Accumulator
	Corruption *corruption.Tracker
	Comeback   comeback.State
	Balance    *balance.Balance
	Roller     *dice.Roller
	Detection  DetectionHook
	Scripts    ScriptRunner
	Logger     *zap.Logger
}

// Context is the input to one handler invocation.
type Context struct {
	*Systems
	Actor        *entity.Player
	TargetID     string
	Ability      *ability.Ability
	Coordination coordination.Info
}

// Hit is the outcome of one damage application.
type Hit struct {
	// Damage is the amount after every modifier and armor.
	Damage int
	// Dealt is the hp actually removed.
	Dealt   int
	Killed  bool
	Revived bool
}

func (c *Context) refuse(typ combatlog.Type, msg string) (bool, error) {
	c.Log.Public(typ, c.Actor.ID, c.TargetID, msg, map[string]any{"ability": c.Ability.Type})
	return false, nil
}

// refusePrivately explains a refusal to the actor alone.
func (c *Context) refusePrivately(msg string) (bool, error) {
	c.Log.Private(combatlog.TypeRefused, c.Actor.ID, c.TargetID, msg,
		map[string]any{"ability": c.Ability.Type}, c.Actor.ID)
	return false, nil
}

func (c *Context) label() string {
	return fmt.Sprintf("%s's %s", c.Actor.Name, c.Ability.Name)
}

// targetPlayer resolves TargetID to a player, or nil for the monster or an
// unknown id.
func (c *Context) targetPlayer() *entity.Player {
	if c.TargetID == entity.MonsterID {
		return nil
	}
	p, _ := c.Arena.Player(c.TargetID)
	return p
}

// OutgoingDamage scales base by the actor's race and class modifier, the
// damageDealt channel and the composed coordination and comeback bonus.
func (c *Context) OutgoingDamage(base, coordinationPct float64) (float64, error) {
	mod := c.Actor.DamageMod
	if mod == 0 {
		mod = 1
	}
	v, err := c.Effects.CalculateModifiedValue(c.Actor.ID, effect.ChannelDamageDealt, base*mod)
	if err != nil {
		return 0, fmt.Errorf("outgoing damage for %q: %w", c.Actor.ID, err)
	}
	return v * c.Balance.OutcomeMultiplier(coordinationPct, c.Comeback.DamageBonus(c.Actor)), nil
}

// EffectiveArmor returns p's armor after effects and the comeback bonus.
func (s *Systems) EffectiveArmor(p *entity.Player) (float64, error) {
	armor, err := s.Effects.CalculateModifiedValue(p.ID, effect.ChannelArmor, float64(p.Armor))
	if err != nil {
		return 0, fmt.Errorf("armor for %q: %w", p.ID, err)
	}
	return armor + float64(s.Comeback.ArmorBonus(p)), nil
}

// actorArmor is the whole-number armor value fed to the threat formula.
func (c *Context) actorArmor() (int, error) {
	a, err := c.EffectiveArmor(c.Actor)
	if err != nil {
		return 0, err
	}
	return int(a), nil
}

// addThreat credits the actor on the monster's threat table.
func (c *Context) addThreat(toMonster, total, healing int) error {
	armor, err := c.actorArmor()
	if err != nil {
		return err
	}
	_, err = c.Threat.AddThreat(c.Arena.Monster, c.Actor.ID, toMonster, total, healing, armor)
	return err
}

// mitigate applies a positive raw amount's flooring rule: never below 1.
func mitigate(raw float64) int {
	if raw <= 0 {
		return 0
	}
	n := int(math.Floor(raw))
	if n < 1 {
		n = 1
	}
	return n
}

// DamagePlayer runs raw outgoing damage through target's damageTaken channel
// and armor, removes the hp and logs the hit. A killing blow is answered by a
// death-preventing effect if the target carries one; otherwise the target
// dies and loses every effect.
//
// Precondition: target is alive.
func (s *Systems) DamagePlayer(attackerID string, target *entity.Player, raw float64, source string) (Hit, error) {
	taken, err := s.Effects.CalculateModifiedValue(target.ID, effect.ChannelDamageTaken, raw)
	if err != nil {
		return Hit{}, fmt.Errorf("damage taken by %q: %w", target.ID, err)
	}
	armor, err := s.EffectiveArmor(target)
	if err != nil {
		return Hit{}, err
	}
	hit := Hit{Damage: mitigate(taken * (1 - s.Balance.ArmorReduction(armor)))}
	hit.Dealt = target.TakeDamage(hit.Damage)
	if attacker, ok := s.Arena.Player(attackerID); ok {
		attacker.Stats.DamageDealt += hit.Dealt
	}
	s.Log.Public(combatlog.TypeDamage, attackerID, target.ID,
		fmt.Sprintf("%s takes %d damage from %s.", target.Name, hit.Dealt, source),
		map[string]any{"damage": hit.Damage, "dealt": hit.Dealt, "hp": target.HP})
	if hit.Dealt > 0 && target.Alive {
		s.Effects.Erode(target, s.Log)
	}
	if !target.Alive {
		hit.Killed = true
		if s.Effects.PreventDeath(target, s.Log) {
			hit.Revived = true
			return hit, nil
		}
		s.Effects.Clear(target.ID)
		s.Log.Public(combatlog.TypeDeath, attackerID, target.ID,
			fmt.Sprintf("%s has fallen.", target.Name), nil)
	}
	return hit, nil
}

// DamageMonster applies raw damage to the monster through its damageTaken
// channel. The monster carries no armor.
func (s *Systems) DamageMonster(attackerID string, raw float64, source string) (Hit, error) {
	m := s.Arena.Monster
	if m == nil || !m.Alive {
		return Hit{}, nil
	}
	taken, err := s.Effects.CalculateModifiedValue(entity.MonsterID, effect.ChannelDamageTaken, raw)
	if err != nil {
		return Hit{}, fmt.Errorf("damage taken by monster: %w", err)
	}
	hit := Hit{Damage: mitigate(taken)}
	hit.Dealt = m.TakeDamage(hit.Damage)
	if attacker, ok := s.Arena.Player(attackerID); ok {
		attacker.Stats.DamageDealt += hit.Dealt
	}
	s.Log.Public(combatlog.TypeDamage, attackerID, entity.MonsterID,
		fmt.Sprintf("%s takes %d damage from %s.", m.Name, hit.Dealt, source),
		map[string]any{"damage": hit.Damage, "dealt": hit.Dealt, "hp": m.HP})
	if !m.Alive {
		hit.Killed = true
		s.Effects.Clear(entity.MonsterID)
		s.Log.Public(combatlog.TypeDeath, attackerID, entity.MonsterID,
			fmt.Sprintf("%s has been slain!", m.Name), nil)
	}
	return hit, nil
}

// HealPlayer restores raw healing scaled by target's healingReceived channel
// and returns the hp actually restored. Self-heals and heals of others are
// counted separately.
func (s *Systems) HealPlayer(healer, target *entity.Player, raw float64) (int, error) {
	v, err := s.Effects.CalculateModifiedValue(target.ID, effect.ChannelHealingReceived, raw)
	if err != nil {
		return 0, fmt.Errorf("healing received by %q: %w", target.ID, err)
	}
	healed := target.Heal(int(math.Floor(v)))
	if healed == 0 {
		return 0, nil
	}
	if healer.ID == target.ID {
		healer.Stats.SelfHeal += healed
	} else {
		healer.Stats.HealingDone += healed
	}
	return healed, nil
}

// applyEffect applies typ to ownerID and logs the outcome publicly.
func (s *Systems) applyEffect(actor *entity.Player, ownerID, ownerName, typ string, duration int, params map[string]float64) (effect.Outcome, error) {
	out, err := s.Effects.Apply(ownerID, effect.Application{
		Type:       typ,
		Duration:   duration,
		Params:     params,
		SourceID:   actor.ID,
		SourceName: actor.Name,
	})
	if err != nil {
		return out, err
	}
	name := typ
	if def, ok := s.Effects.Definitions().Get(typ); ok && def.Name != "" {
		name = def.Name
	}
	var msg string
	switch out {
	case effect.Ignored:
		msg = fmt.Sprintf("%s is already %s.", ownerName, name)
	case effect.Refreshed:
		msg = fmt.Sprintf("%s's %s is renewed.", ownerName, name)
	default:
		msg = fmt.Sprintf("%s is now %s.", ownerName, name)
	}
	s.Log.Public(combatlog.TypeEffect, actor.ID, ownerID, msg,
		map[string]any{"effect": typ, "duration": duration, "outcome": out.String()})
	return out, nil
}

// effectParams copies the ability params that describe the applied effect,
// dropping the keys consumed by the handler itself.
func effectParams(a *ability.Ability, drop ...string) map[string]float64 {
	out := maps.Clone(a.Params)
	if out == nil {
		out = make(map[string]float64)
	}
	for _, k := range append(drop, ability.ParamDuration) {
		delete(out, k)
	}
	return out
}

// duration reads the ability's duration param, defaulting to one round.
func duration(a *ability.Ability) int {
	d := int(a.ParamOr(ability.ParamDuration, 1))
	if d < 1 {
		d = 1
	}
	return d
}

// entityName returns the display name for a player id or the monster.
func (s *Systems) entityName(id string) string {
	if id == entity.MonsterID {
		if s.Arena.Monster != nil {
			return s.Arena.Monster.Name
		}
		return "the monster"
	}
	if p, ok := s.Arena.Player(id); ok {
		return p.Name
	}
	return id
}
