package combat

import (
	"github.com/cory-johannsen/blightfall/internal/game/ability"
)

// rule binds one handler to every not-yet-claimed ability matching when.
type rule struct {
	name    string
	when    func(*ability.Ability) bool
	handler Handler
}

func isDoT(e ability.Effect) bool {
	return e == ability.EffectPoison || e == ability.EffectBleed || e == ability.EffectBurn
}

// defaultRules lists the archetypes in priority order. An ability is claimed
// by the first rule it matches.
var defaultRules = []rule{
	{"scripted", scriptHook, Scripted},
	{"passive", func(a *ability.Ability) bool { return a.Passive }, Passive},
	{"moonsight", func(a *ability.Ability) bool { return a.Type == "moonsight" }, Moonsight},
	{"reckless", func(a *ability.Ability) bool {
		return a.Category == ability.CategoryAttack && a.Has(ability.ParamSelfDamageFactor)
	}, RecklessStrike},
	{"multi-hit", func(a *ability.Ability) bool {
		return a.Category == ability.CategoryAttack && a.Has(ability.ParamHitCount)
	}, MultiHit},
	{"area", func(a *ability.Ability) bool {
		return a.Category == ability.CategoryAttack && a.Target == ability.TargetMulti
	}, AreaAttack},
	{"vulnerability", func(a *ability.Ability) bool {
		return a.Category == ability.CategoryAttack && a.Effect == ability.EffectVulnerable
	}, EffectStrike},
	{"damage over time", func(a *ability.Ability) bool {
		return a.Category == ability.CategoryAttack && isDoT(a.Effect)
	}, EffectStrike},
	{"attack", func(a *ability.Ability) bool { return a.Category == ability.CategoryAttack }, BasicAttack},
	{"multi heal", func(a *ability.Ability) bool {
		return a.Category == ability.CategoryHeal && a.Target == ability.TargetMulti
	}, MultiHeal},
	{"heal", func(a *ability.Ability) bool { return a.Category == ability.CategoryHeal }, Heal},
	{"stealth", func(a *ability.Ability) bool {
		return a.Category == ability.CategoryDefense && a.Effect == ability.EffectInvisible
	}, Stealth},
	{"shield", func(a *ability.Ability) bool {
		return a.Category == ability.CategoryDefense && a.Effect != ability.EffectNone
	}, Shield},
	{"self buff", func(a *ability.Ability) bool {
		return a.Target == ability.TargetSelf && a.Effect != ability.EffectNone
	}, SelfBuff},
}

// RegisterDefaults binds the standard archetype handlers to every ability in
// cat that reg does not already handle, so explicitly registered types win.
// It then validates that nothing is left without a handler.
//
// Postcondition: returns an error wrapping ErrConfiguration for an ability no
// rule matches.
func RegisterDefaults(reg *Registry, cat *ability.Catalog) error {
	var unclaimed []*ability.Ability
	for _, a := range cat.All() {
		if !reg.Has(a.Type) {
			unclaimed = append(unclaimed, a)
		}
	}
	for _, r := range defaultRules {
		pred := r.when
		if _, err := reg.RegisterWhere(unclaimed, func(a *ability.Ability) bool {
			return !reg.Has(a.Type) && pred(a)
		}, r.handler); err != nil {
			return err
		}
	}
	return reg.Validate(cat)
}
