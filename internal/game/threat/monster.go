package threat

import (
	"fmt"

	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/dice"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

// ChooseTarget picks the monster's victim: the highest-threat player that
// eligible accepts, else a uniformly random eligible living player. It
// returns nil when nobody qualifies.
func ChooseTarget(arena *entity.Arena, eligible func(*entity.Player) bool, r *dice.Roller) *entity.Player {
	for _, e := range Ranked(arena.Monster) {
		if p, ok := arena.Player(e.PlayerID); ok && p.Alive && eligible(p) {
			return p
		}
	}
	var pool []*entity.Player
	for _, p := range arena.Living() {
		if eligible(p) {
			pool = append(pool, p)
		}
	}
	if i := r.Pick("monster target", len(pool)); i >= 0 {
		return pool[i]
	}
	return nil
}

// MonsterDamage rolls one monster attack: base damage, the damage dice, and
// damage_per_age for every round the monster has lived. Monster fields
// override the balance defaults when set.
func MonsterDamage(cfg balance.MonsterConfig, m *entity.Monster, r *dice.Roller) (int, error) {
	base := m.BaseDamage
	if base == 0 {
		base = cfg.BaseDamage
	}
	expr := m.DamageDice
	if expr == "" {
		expr = cfg.DamageDice
	}
	total := base + m.Age*cfg.DamagePerAge
	if expr != "" {
		res, err := r.RollExpr(expr)
		if err != nil {
			return 0, fmt.Errorf("rolling monster damage: %w", err)
		}
		total += res.Total()
	}
	if total < 0 {
		total = 0
	}
	return total, nil
}
