// Package comeback boosts the good faction when it falls numerically behind.
package comeback

import (
	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

// State is the comeback evaluation for one round.
type State struct {
	Active bool
	// Ratio is living good players over living players, in percent.
	Ratio float64
	cfg   balance.ComebackConfig
}

// Evaluate computes the state for the next round from the living players.
// With nobody alive the ratio is 100 and comeback stays inactive.
func Evaluate(arena *entity.Arena, cfg balance.ComebackConfig) State {
	living := arena.Living()
	ratio := 100.0
	if len(living) > 0 {
		good := 0
		for _, p := range living {
			if !p.Corrupted {
				good++
			}
		}
		ratio = float64(good) / float64(len(living)) * 100
	}
	return State{
		Active: cfg.Enabled && len(living) > 0 && ratio <= cfg.ThresholdPercent,
		Ratio:  ratio,
		cfg:    cfg,
	}
}

func (s State) eligible(p *entity.Player) bool {
	return s.Active && p != nil && !p.Corrupted
}

// DamageBonus returns the percent damage bonus for p.
func (s State) DamageBonus(p *entity.Player) float64 {
	if !s.eligible(p) {
		return 0
	}
	return s.cfg.DamageBonusPercent
}

// HealingBonus returns the percent healing bonus for p.
func (s State) HealingBonus(p *entity.Player) float64 {
	if !s.eligible(p) {
		return 0
	}
	return s.cfg.HealingBonusPercent
}

// ArmorBonus returns the absolute armor bonus for p.
func (s State) ArmorBonus(p *entity.Player) int {
	if !s.eligible(p) {
		return 0
	}
	return s.cfg.ArmorBonus
}
