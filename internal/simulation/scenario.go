// Package simulation drives scripted rooms through the combat engine.
package simulation

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/blightfall/internal/game/character"
	"github.com/cory-johannsen/blightfall/internal/game/combat"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
	"github.com/cory-johannsen/blightfall/internal/game/ruleset"
)

// PlayerSpec describes one participant of a scenario.
type PlayerSpec struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Race      string `yaml:"race"`
	Class     string `yaml:"class"`
	Corrupted bool   `yaml:"corrupted"`
	// HP overrides the built max hp when non-zero.
	HP int `yaml:"hp"`
}

// MonsterSpec describes the room's monster.
type MonsterSpec struct {
	Name string `yaml:"name"`
	HP   int    `yaml:"hp"`
}

// RoundScript is the batch of actions submitted for one round.
type RoundScript struct {
	Actions []combat.Action `yaml:"actions"`
}

// Scenario is a self-contained scripted game.
type Scenario struct {
	Name    string        `yaml:"name"`
	Room    string        `yaml:"room"`
	Monster MonsterSpec   `yaml:"monster"`
	Players []PlayerSpec  `yaml:"players"`
	Rounds  []RoundScript `yaml:"rounds"`
}

// Validate checks the scenario's static shape.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Room == "" {
		errs = append(errs, errors.New("room must not be empty"))
	}
	if s.Monster.HP < 1 {
		errs = append(errs, fmt.Errorf("monster hp must be >= 1, got %d", s.Monster.HP))
	}
	if len(s.Players) == 0 {
		errs = append(errs, errors.New("at least one player is required"))
	}
	seen := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("duplicate player id %q", p.ID))
		}
		seen[p.ID] = true
	}
	for i, r := range s.Rounds {
		for _, a := range r.Actions {
			if !seen[a.ActorID] {
				errs = append(errs, fmt.Errorf("round %d: unknown actor %q", i+1, a.ActorID))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return nil
}

// LoadScenario parses and validates a scenario file.
//
// Postcondition: Returns a valid Scenario or a non-nil error.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	if s.Monster.Name == "" {
		s.Monster.Name = "the Blight"
	}
	if s.Room == "" {
		s.Room = uuid.NewString()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// BuildArena creates the scenario's players from rules and seats them with
// a fresh monster.
//
// Precondition: rules must be non-nil.
func (s *Scenario) BuildArena(rules *ruleset.Rules) (*entity.Arena, error) {
	players := make([]*entity.Player, 0, len(s.Players))
	for _, spec := range s.Players {
		name := spec.Name
		if name == "" {
			name = spec.ID
		}
		p, err := character.BuildFromRules(rules, spec.ID, name, spec.Race, spec.Class)
		if err != nil {
			return nil, fmt.Errorf("building player %q: %w", spec.ID, err)
		}
		if spec.HP > 0 {
			p.MaxHP, p.HP = spec.HP, spec.HP
		}
		p.Corrupted = spec.Corrupted
		players = append(players, p)
	}
	monster := &entity.Monster{Name: s.Monster.Name, HP: s.Monster.HP, MaxHP: s.Monster.HP, Alive: true}
	return entity.NewArena(players, monster)
}
