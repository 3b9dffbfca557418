// Package corruption decides when the hidden corrupted role spreads.
//
// Conversions are silent: the only log entry is a private one addressed to
// the newly corrupted player.
package corruption

import (
	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/combatlog"
	"github.com/cory-johannsen/blightfall/internal/game/dice"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

// Limits are the hard caps that block a conversion outright.
type Limits struct {
	RoundCapReached bool
	ActorCapReached bool
	ActorOnCooldown bool
}

// Any reports whether any limit is hit.
func (l Limits) Any() bool {
	return l.RoundCapReached || l.ActorCapReached || l.ActorOnCooldown
}

// CalculateConversionChance returns the probability that a qualifying
// interaction converts its target:
//
//	min(max_chance, base_chance + corrupted/total × scaling_factor) × modifier
//
// Postcondition: returns exactly 0 when any limit is hit, when the interaction
// was recently detected and detection blocks corruption, or when totalPlayers <= 0.
func CalculateConversionChance(corruptedCount, totalPlayers int, modifier float64, limits Limits, recentlyDetected bool, cfg balance.CorruptionConfig) float64 {
	if limits.Any() {
		return 0
	}
	if recentlyDetected && cfg.DetectionBlocksCorruption {
		return 0
	}
	if totalPlayers <= 0 || modifier <= 0 {
		return 0
	}
	chance := cfg.BaseChance + float64(corruptedCount)/float64(totalPlayers)*cfg.ScalingFactor
	if chance > cfg.MaxChance {
		chance = cfg.MaxChance
	}
	return chance * modifier
}

// Tracker holds one room's conversion counters and detection memory.
// Caps of zero are unlimited.
type Tracker struct {
	cfg         balance.CorruptionConfig
	round       int
	thisRound   int
	perActor    map[string]int
	lastByActor map[string]int
	detectedAt  map[string]int
}

// NewTracker creates an empty Tracker.
func NewTracker(cfg balance.CorruptionConfig) *Tracker {
	return &Tracker{
		cfg:         cfg,
		perActor:    make(map[string]int),
		lastByActor: make(map[string]int),
		detectedAt:  make(map[string]int),
	}
}

// BeginRound resets the per-round counter and adopts the round's balance.
func (t *Tracker) BeginRound(round int, cfg balance.CorruptionConfig) {
	t.round = round
	t.thisRound = 0
	t.cfg = cfg
}

// Limits returns the caps currently blocking actorID.
func (t *Tracker) Limits(actorID string) Limits {
	var l Limits
	if t.cfg.MaxPerRound > 0 && t.thisRound >= t.cfg.MaxPerRound {
		l.RoundCapReached = true
	}
	if t.cfg.MaxPerActor > 0 && t.perActor[actorID] >= t.cfg.MaxPerActor {
		l.ActorCapReached = true
	}
	if last, ok := t.lastByActor[actorID]; ok && t.round-last <= t.cfg.ActorCooldownRounds {
		l.ActorOnCooldown = true
	}
	return l
}

// MarkDetected records that id's role was revealed this round.
func (t *Tracker) MarkDetected(id string) {
	t.detectedAt[id] = t.round
}

// RecentlyDetected reports whether id was revealed within detection_memory_rounds.
func (t *Tracker) RecentlyDetected(id string) bool {
	at, ok := t.detectedAt[id]
	return ok && t.round-at <= t.cfg.DetectionMemoryRounds
}

// Conversions returns how many players actorID has converted.
func (t *Tracker) Conversions(actorID string) int { return t.perActor[actorID] }

// Attempt rolls a conversion of target by a corrupted actor at the given
// modifier. Non-qualifying pairs (uncorrupted actor, dead or already
// corrupted target, self-targeting) never roll. It reports whether target
// was converted.
func (t *Tracker) Attempt(arena *entity.Arena, actor, target *entity.Player, modifier float64, r *dice.Roller, log *combatlog.Log) bool {
	if actor == nil || target == nil || !actor.Corrupted || target.Corrupted || !target.Alive || actor.ID == target.ID {
		return false
	}
	detected := t.RecentlyDetected(actor.ID) || t.RecentlyDetected(target.ID)
	chance := CalculateConversionChance(arena.CorruptedCount(), len(arena.Living()), modifier, t.Limits(actor.ID), detected, t.cfg)
	if !r.Check("conversion", chance) {
		return false
	}
	target.Corrupted = true
	actor.Stats.Corruptions++
	t.thisRound++
	t.perActor[actor.ID]++
	t.lastByActor[actor.ID] = t.round
	log.Private(combatlog.TypeCorruption, "", target.ID,
		"A cold whisper settles in your mind. You are now corrupted.",
		nil, target.ID)
	return true
}

// AttemptIncidental rolls a conversion against a random living, uncorrupted
// player other than actor, as happens when a corrupted player damages the
// monster or hits several players at once.
func (t *Tracker) AttemptIncidental(arena *entity.Arena, actor *entity.Player, modifier float64, r *dice.Roller, log *combatlog.Log) (*entity.Player, bool) {
	if actor == nil || !actor.Corrupted {
		return nil, false
	}
	var pool []*entity.Player
	for _, p := range arena.Living() {
		if !p.Corrupted && p.ID != actor.ID {
			pool = append(pool, p)
		}
	}
	i := r.Pick("incidental conversion target", len(pool))
	if i < 0 {
		return nil, false
	}
	target := pool[i]
	return target, t.Attempt(arena, actor, target, modifier, r, log)
}
