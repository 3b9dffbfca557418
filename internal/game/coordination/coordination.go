// Package coordination rewards players who pick the same target and
// category of ability in the same round.
package coordination

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/balance"
)

// Submission is the slice of a submitted action the calculator groups on.
type Submission struct {
	ActorID   string
	ActorName string
	TargetID  string
	Category  ability.Category
}

// Info is one actor's coordination state for a round.
type Info struct {
	Active       bool
	BonusPercent float64
	// Partners names the other actors in the group, in submission order.
	Partners []string
}

// Count returns the number of coordinating partners.
func (i Info) Count() int { return len(i.Partners) }

// Describe renders the private message shown to the actor.
func (i Info) Describe() string {
	if !i.Active {
		return ""
	}
	return fmt.Sprintf("Coordinated with %s: +%g%% effectiveness.", strings.Join(i.Partners, ", "), i.BonusPercent)
}

// Bonus returns the percent bonus for an actor with others coordinating partners.
//
// Postcondition: Bonus(0, cfg) == 0.
func Bonus(others int, cfg balance.CoordinationConfig) float64 {
	if others <= 0 || !cfg.Enabled {
		return 0
	}
	if cfg.MaxParticipants > 0 && others > cfg.MaxParticipants {
		others = cfg.MaxParticipants
	}
	return float64(others) * cfg.BonusPercentPerParticipant
}

type groupKey struct {
	target   string
	category ability.Category
}

// Calculate groups subs by (target, category) and returns the Info of every
// actor, keyed by actor id. Actors in singleton groups get an inactive Info.
func Calculate(subs []Submission, cfg balance.CoordinationConfig) map[string]Info {
	groups := make(map[groupKey][]Submission)
	for _, s := range subs {
		k := groupKey{target: s.TargetID, category: s.Category}
		groups[k] = append(groups[k], s)
	}
	out := make(map[string]Info, len(subs))
	for _, s := range subs {
		group := groups[groupKey{target: s.TargetID, category: s.Category}]
		var partners []string
		for _, o := range group {
			if o.ActorID != s.ActorID {
				partners = append(partners, o.ActorName)
			}
		}
		bonus := Bonus(len(partners), cfg)
		out[s.ActorID] = Info{Active: bonus > 0, BonusPercent: bonus, Partners: partners}
	}
	return out
}
