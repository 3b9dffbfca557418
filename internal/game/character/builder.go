// Package character builds combat-ready players from a race and class.
package character

import (
	"errors"
	"slices"

	"github.com/cory-johannsen/blightfall/internal/game/entity"
	"github.com/cory-johannsen/blightfall/internal/game/ruleset"
)

// Build constructs a living Player from an id, name, race and class.
// MaxHP = max(1, class base_hp + race hp_bonus); armor is summed likewise and
// the damage modifier is race × class. Class abilities come first, followed
// by racial abilities not already granted.
//
// Precondition: id and name must be non-empty; race and class must be non-nil.
// Postcondition: Returns a Player at full health, or a non-nil error.
func Build(id, name string, race *ruleset.Race, class *ruleset.Class) (*entity.Player, error) {
	if id == "" {
		return nil, errors.New("player id must not be empty")
	}
	if id == entity.MonsterID {
		return nil, errors.New("player id is reserved for the monster")
	}
	if name == "" {
		return nil, errors.New("player name must not be empty")
	}
	if race == nil {
		return nil, errors.New("race must not be nil")
	}
	if class == nil {
		return nil, errors.New("class must not be nil")
	}

	maxHP := class.BaseHP + race.HPBonus
	if maxHP < 1 {
		maxHP = 1
	}
	armor := class.BaseArmor + race.ArmorBonus
	if armor < 0 {
		armor = 0
	}

	abilities := slices.Clone(class.Abilities)
	for _, a := range race.Abilities {
		if !slices.Contains(abilities, a) {
			abilities = append(abilities, a)
		}
	}

	return &entity.Player{
		ID:        id,
		Name:      name,
		Alive:     true,
		HP:        maxHP,
		MaxHP:     maxHP,
		Armor:     armor,
		Race:      race.ID,
		Class:     class.ID,
		DamageMod: race.Multiplier() * class.Multiplier(),
		Abilities: abilities,
		Cooldowns: make(map[string]int),
	}, nil
}

// BuildFromRules looks raceID and classID up in rules and calls Build.
func BuildFromRules(rules *ruleset.Rules, id, name, raceID, classID string) (*entity.Player, error) {
	race, ok := rules.Race(raceID)
	if !ok {
		return nil, errors.New("unknown race " + raceID)
	}
	class, ok := rules.Class(classID)
	if !ok {
		return nil, errors.New("unknown class " + classID)
	}
	return Build(id, name, race, class)
}
