// Package balance holds the numeric constants behind every resolution
// formula. A Balance is validated once and then treated as immutable; rooms
// read it through a Store snapshot taken at the start of each round.
package balance

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/blightfall/internal/game/dice"
)

// Composition selects how coordination and comeback percentages combine when
// both apply to the same outcome.
type Composition string

const (
	// CompositionAdditive yields 1 + (coord + comeback)/100.
	CompositionAdditive Composition = "additive"
	// CompositionMultiplicative yields (1 + coord/100) × (1 + comeback/100).
	CompositionMultiplicative Composition = "multiplicative"
)

// HealPolicy decides what happens when a corrupted player is healed.
type HealPolicy string

const (
	// HealPolicyLegacy refuses to heal corrupted targets.
	HealPolicyLegacy HealPolicy = "legacy"
	// HealPolicyAntiDetection always heals and rolls for detection instead.
	HealPolicyAntiDetection HealPolicy = "anti_detection"
)

// CombatConfig holds damage-reduction constants.
type CombatConfig struct {
	// ArmorReductionPerPoint is the fraction of incoming damage each armor point removes.
	ArmorReductionPerPoint float64 `yaml:"armor_reduction_per_point"`
	// MaxArmorReduction caps the total fraction removed by armor.
	MaxArmorReduction float64 `yaml:"max_armor_reduction"`
}

// HealConfig holds corrupted-target healing policy.
type HealConfig struct {
	CorruptedPolicy HealPolicy `yaml:"corrupted_policy"`
	// DetectionChance is the probability in [0,1] that healing a corrupted
	// player reveals them under the anti-detection policy.
	DetectionChance float64 `yaml:"detection_chance"`
}

// ThreatConfig holds the aggro weights.
type ThreatConfig struct {
	MonsterDamageWeight float64 `yaml:"monster_damage_weight"`
	ArmorMultiplier     float64 `yaml:"armor_multiplier"`
	TotalDamageWeight   float64 `yaml:"total_damage_weight"`
	HealingWeight       float64 `yaml:"healing_weight"`
	// DecayRate is the fraction of every score removed at the end of a round.
	DecayRate float64 `yaml:"decay_rate"`
}

// CoordinationConfig holds the coordination bonus constants.
type CoordinationConfig struct {
	Enabled                    bool    `yaml:"enabled"`
	BonusPercentPerParticipant float64 `yaml:"bonus_percent_per_participant"`
	MaxParticipants            int     `yaml:"max_participants"`
}

// ComebackConfig holds the catch-up thresholds and bonuses.
type ComebackConfig struct {
	Enabled bool `yaml:"enabled"`
	// ThresholdPercent activates comeback when living good / living total,
	// as a percentage, is at or below it.
	ThresholdPercent    float64 `yaml:"threshold_percent"`
	DamageBonusPercent  float64 `yaml:"damage_bonus_percent"`
	HealingBonusPercent float64 `yaml:"healing_bonus_percent"`
	ArmorBonus          int     `yaml:"armor_bonus"`
}

// CorruptionConfig holds conversion probabilities and limits.
type CorruptionConfig struct {
	BaseChance                float64 `yaml:"base_chance"`
	ScalingFactor             float64 `yaml:"scaling_factor"`
	MaxChance                 float64 `yaml:"max_chance"`
	MaxPerRound               int     `yaml:"max_per_round"`
	MaxPerActor               int     `yaml:"max_per_actor"`
	ActorCooldownRounds       int     `yaml:"actor_cooldown_rounds"`
	MonsterAttackModifier     float64 `yaml:"monster_attack_modifier"`
	AOEModifier               float64 `yaml:"aoe_modifier"`
	DetectionBlocksCorruption bool    `yaml:"detection_blocks_corruption"`
	DetectionMemoryRounds     int     `yaml:"detection_memory_rounds"`
}

// MonsterConfig holds the monster's attack profile.
type MonsterConfig struct {
	BaseDamage int    `yaml:"base_damage"`
	DamageDice string `yaml:"damage_dice"`
	// DamagePerAge is added to every attack for each round the monster has lived.
	DamagePerAge int `yaml:"damage_per_age"`
}

// Balance is the complete set of tunables consumed by round resolution.
type Balance struct {
	BonusComposition Composition        `yaml:"bonus_composition"`
	Combat           CombatConfig       `yaml:"combat"`
	Heal             HealConfig         `yaml:"heal"`
	Threat           ThreatConfig       `yaml:"threat"`
	Coordination     CoordinationConfig `yaml:"coordination"`
	Comeback         ComebackConfig     `yaml:"comeback"`
	Corruption       CorruptionConfig   `yaml:"corruption"`
	Monster          MonsterConfig      `yaml:"monster"`
}

// Default returns the stock tuning.
func Default() *Balance {
	return &Balance{
		BonusComposition: CompositionAdditive,
		Combat: CombatConfig{
			ArmorReductionPerPoint: 0.1,
			MaxArmorReduction:      0.75,
		},
		Heal: HealConfig{
			CorruptedPolicy: HealPolicyAntiDetection,
			DetectionChance: 0.05,
		},
		Threat: ThreatConfig{
			MonsterDamageWeight: 1.0,
			ArmorMultiplier:     0.1,
			TotalDamageWeight:   0.25,
			HealingWeight:       0.5,
			DecayRate:           0.1,
		},
		Coordination: CoordinationConfig{
			Enabled:                    true,
			BonusPercentPerParticipant: 25,
			MaxParticipants:            3,
		},
		Comeback: ComebackConfig{
			Enabled:             true,
			ThresholdPercent:    50,
			DamageBonusPercent:  20,
			HealingBonusPercent: 20,
			ArmorBonus:          2,
		},
		Corruption: CorruptionConfig{
			BaseChance:                0.1,
			ScalingFactor:             0.3,
			MaxChance:                 0.5,
			MaxPerRound:               1,
			MaxPerActor:               2,
			ActorCooldownRounds:       2,
			MonsterAttackModifier:     0.5,
			AOEModifier:               0.5,
			DetectionBlocksCorruption: true,
			DetectionMemoryRounds:     2,
		},
		Monster: MonsterConfig{
			BaseDamage:   10,
			DamageDice:   "1d6",
			DamagePerAge: 2,
		},
	}
}

// Validate checks every constant and reports all problems at once.
//
// Postcondition: returns nil iff b is safe to hand to a room.
func (b *Balance) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	prob := func(name string, v float64) {
		if v < 0 || v > 1 {
			add("%s must be in [0, 1], got %g", name, v)
		}
	}
	nonNeg := func(name string, v float64) {
		if v < 0 {
			add("%s must be >= 0, got %g", name, v)
		}
	}

	switch b.BonusComposition {
	case CompositionAdditive, CompositionMultiplicative:
	default:
		add("bonus_composition must be %q or %q, got %q", CompositionAdditive, CompositionMultiplicative, b.BonusComposition)
	}

	nonNeg("combat.armor_reduction_per_point", b.Combat.ArmorReductionPerPoint)
	prob("combat.max_armor_reduction", b.Combat.MaxArmorReduction)

	switch b.Heal.CorruptedPolicy {
	case HealPolicyLegacy, HealPolicyAntiDetection:
	default:
		add("heal.corrupted_policy must be %q or %q, got %q", HealPolicyLegacy, HealPolicyAntiDetection, b.Heal.CorruptedPolicy)
	}
	prob("heal.detection_chance", b.Heal.DetectionChance)

	nonNeg("threat.monster_damage_weight", b.Threat.MonsterDamageWeight)
	nonNeg("threat.armor_multiplier", b.Threat.ArmorMultiplier)
	nonNeg("threat.total_damage_weight", b.Threat.TotalDamageWeight)
	nonNeg("threat.healing_weight", b.Threat.HealingWeight)
	prob("threat.decay_rate", b.Threat.DecayRate)

	nonNeg("coordination.bonus_percent_per_participant", b.Coordination.BonusPercentPerParticipant)
	if b.Coordination.MaxParticipants < 0 {
		add("coordination.max_participants must be >= 0, got %d", b.Coordination.MaxParticipants)
	}

	if b.Comeback.ThresholdPercent < 0 || b.Comeback.ThresholdPercent > 100 {
		add("comeback.threshold_percent must be in [0, 100], got %g", b.Comeback.ThresholdPercent)
	}
	nonNeg("comeback.damage_bonus_percent", b.Comeback.DamageBonusPercent)
	nonNeg("comeback.healing_bonus_percent", b.Comeback.HealingBonusPercent)
	if b.Comeback.ArmorBonus < 0 {
		add("comeback.armor_bonus must be >= 0, got %d", b.Comeback.ArmorBonus)
	}

	c := b.Corruption
	prob("corruption.base_chance", c.BaseChance)
	nonNeg("corruption.scaling_factor", c.ScalingFactor)
	prob("corruption.max_chance", c.MaxChance)
	prob("corruption.monster_attack_modifier", c.MonsterAttackModifier)
	prob("corruption.aoe_modifier", c.AOEModifier)
	for name, v := range map[string]int{
		"corruption.max_per_round":           c.MaxPerRound,
		"corruption.max_per_actor":           c.MaxPerActor,
		"corruption.actor_cooldown_rounds":   c.ActorCooldownRounds,
		"corruption.detection_memory_rounds": c.DetectionMemoryRounds,
	} {
		if v < 0 {
			add("%s must be >= 0, got %d", name, v)
		}
	}

	if b.Monster.BaseDamage < 0 {
		add("monster.base_damage must be >= 0, got %d", b.Monster.BaseDamage)
	}
	if b.Monster.DamagePerAge < 0 {
		add("monster.damage_per_age must be >= 0, got %d", b.Monster.DamagePerAge)
	}
	if b.Monster.DamageDice != "" {
		if _, err := dice.Parse(b.Monster.DamageDice); err != nil {
			add("monster.damage_dice: %w", err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return fmt.Errorf("invalid balance: %w", errors.Join(errs...))
}

// OutcomeMultiplier combines a coordination and a comeback percentage under
// the configured composition.
func (b *Balance) OutcomeMultiplier(coordinationPct, comebackPct float64) float64 {
	if b.BonusComposition == CompositionMultiplicative {
		return (1 + coordinationPct/100) * (1 + comebackPct/100)
	}
	return 1 + (coordinationPct+comebackPct)/100
}

// ArmorReduction returns the fraction of damage removed by armor points.
func (b *Balance) ArmorReduction(armor float64) float64 {
	if armor <= 0 {
		return 0
	}
	r := armor * b.Combat.ArmorReductionPerPoint
	if r > b.Combat.MaxArmorReduction {
		r = b.Combat.MaxArmorReduction
	}
	return r
}

// LoadFile reads and validates a balance YAML file. Omitted keys keep their
// Default values.
func LoadFile(path string) (*Balance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading balance %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates balance YAML.
func Parse(data []byte) (*Balance, error) {
	b := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(b); err != nil {
		return nil, fmt.Errorf("parsing balance: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}
