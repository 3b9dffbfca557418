package combat

import (
	"sort"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
)

// Action is one submitted (actor, ability, target) triple. TargetID may be
// entity.MonsterID; it is ignored by self and multi-target abilities.
type Action struct {
	ActorID   string `yaml:"actor" json:"actor_id"`
	AbilityID string `yaml:"ability" json:"ability_id"`
	TargetID  string `yaml:"target" json:"target_id"`
}

// categoryOrder is the fixed resolution order within a round.
var categoryOrder = map[ability.Category]int{
	ability.CategoryDefense: 0,
	ability.CategoryAttack:  1,
	ability.CategoryHeal:    2,
	ability.CategorySpecial: 3,
	ability.CategoryRacial:  4,
}

// queued is a validated action waiting for dispatch.
type queued struct {
	Action
	seq     int
	ability *ability.Ability
}

// sortByCategory orders q by category (defense, attack, heal, special,
// racial) and keeps submission order within a category.
func sortByCategory(q []queued) {
	sort.SliceStable(q, func(i, j int) bool {
		return categoryOrder[q[i].ability.Category] < categoryOrder[q[j].ability.Category]
	})
}
