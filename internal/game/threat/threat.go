// Package threat tallies per-player aggro against the monster and decides
// whom the monster attacks.
package threat

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

// Accumulator applies the configured threat weights to a monster's table.
type Accumulator struct {
	cfg balance.ThreatConfig
}

// New creates an Accumulator for cfg.
func New(cfg balance.ThreatConfig) *Accumulator {
	return &Accumulator{cfg: cfg}
}

// Score computes the threat contribution of one action.
//
//	damageToMonster × monster_damage_weight × (1 + armor × armor_multiplier)
//	+ totalDamage × total_damage_weight + healing × healing_weight
//
// Postcondition: negative inputs return an error wrapping entity.ErrInvariant.
func (a *Accumulator) Score(damageToMonster, totalDamage, healing, armor int) (float64, error) {
	if damageToMonster < 0 || totalDamage < 0 || healing < 0 || armor < 0 {
		return 0, fmt.Errorf("%w: negative threat input (monster=%d total=%d heal=%d armor=%d)",
			entity.ErrInvariant, damageToMonster, totalDamage, healing, armor)
	}
	s := float64(damageToMonster)*a.cfg.MonsterDamageWeight*(1+float64(armor)*a.cfg.ArmorMultiplier) +
		float64(totalDamage)*a.cfg.TotalDamageWeight +
		float64(healing)*a.cfg.HealingWeight
	return s, nil
}

// AddThreat adds one action's contribution to m's table for actorID and
// returns the actor's new score. A zero contribution leaves the table untouched.
func (a *Accumulator) AddThreat(m *entity.Monster, actorID string, damageToMonster, totalDamage, healing, armor int) (float64, error) {
	s, err := a.Score(damageToMonster, totalDamage, healing, armor)
	if err != nil {
		return 0, err
	}
	if m == nil || !m.Alive {
		return 0, nil
	}
	if m.Threat == nil {
		m.Threat = make(map[string]float64)
	}
	if s > 0 {
		m.Threat[actorID] += s
	}
	return m.Threat[actorID], nil
}

// Decay removes decay_rate of every score.
func (a *Accumulator) Decay(m *entity.Monster) {
	if m == nil {
		return
	}
	keep := 1 - a.cfg.DecayRate
	for id, s := range m.Threat {
		m.Threat[id] = s * keep
	}
}

// Prune drops table entries for players that are no longer alive.
func Prune(m *entity.Monster, arena *entity.Arena) {
	if m == nil {
		return
	}
	for id := range m.Threat {
		if p, ok := arena.Player(id); !ok || !p.Alive {
			delete(m.Threat, id)
		}
	}
}

// Entry is one row of a ranked threat table.
type Entry struct {
	PlayerID string
	Score    float64
}

// Ranked returns the table ordered by descending score, ties broken by the
// lexicographically lowest player id.
func Ranked(m *entity.Monster) []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, 0, len(m.Threat))
	for id, s := range m.Threat {
		out = append(out, Entry{PlayerID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// Focus returns the player with the highest score.
func Focus(m *entity.Monster) (string, bool) {
	r := Ranked(m)
	if len(r) == 0 {
		return "", false
	}
	return r[0].PlayerID, true
}
