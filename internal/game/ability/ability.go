// Package ability holds the immutable ability definitions that round
// resolution dispatches on.
package ability

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups abilities by intent. It also fixes resolution order.
type Category string

const (
	CategoryAttack  Category = "attack"
	CategoryHeal    Category = "heal"
	CategoryDefense Category = "defense"
	CategorySpecial Category = "special"
	CategoryRacial  Category = "racial"
)

// Target is the shape of an ability's target set.
type Target string

const (
	TargetSelf   Target = "self"
	TargetSingle Target = "single"
	TargetMulti  Target = "multi"
)

// Effect tags the status effect an ability applies, if any.
type Effect string

const (
	EffectNone       Effect = ""
	EffectPoison     Effect = "poison"
	EffectBleed      Effect = "bleed"
	EffectBurn       Effect = "burn"
	EffectVulnerable Effect = "vulnerable"
	EffectShielded   Effect = "shielded"
	EffectInvisible  Effect = "invisible"
	EffectEnraged    Effect = "enraged"
	EffectWeakened   Effect = "weakened"
	EffectUndying    Effect = "undying"
	EffectStoneArmor Effect = "stone_armor"
	EffectRegen      Effect = "regeneration"
)

// Well-known parameter keys.
const (
	ParamDamage           = "damage"
	ParamDamagePerHit     = "damage_per_hit"
	ParamHitCount         = "hit_count"
	ParamHealing          = "healing"
	ParamDuration         = "duration"
	ParamArmor            = "armor"
	ParamDamagePerTurn    = "damage_per_turn"
	ParamHealPerTurn      = "heal_per_turn"
	ParamDamageIncrease   = "damage_increase"
	ParamSelfDamageFactor = "self_damage_factor"
	ParamSelfDamage       = "self_damage"
	ParamIncludeMonster   = "include_monster"
	ParamResurrectHP      = "resurrect_hp"
	ParamUses             = "uses"
)

// Ability is one immutable ability definition. Type is the dispatch key.
type Ability struct {
	Type        string             `yaml:"type"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Category    Category           `yaml:"category"`
	Target      Target             `yaml:"target"`
	Effect      Effect             `yaml:"effect"`
	Params      map[string]float64 `yaml:"params"`
	Cooldown    int                `yaml:"cooldown"`
	// Passive abilities are applied at player creation and are never submitted.
	Passive bool `yaml:"passive"`
	// Script names a Lua hook that resolves the ability instead of a built-in handler.
	Script string `yaml:"script"`
}

// Param returns the named parameter or 0.
func (a *Ability) Param(key string) float64 {
	return a.Params[key]
}

// ParamOr returns the named parameter or def when absent.
func (a *Ability) ParamOr(key string, def float64) float64 {
	if v, ok := a.Params[key]; ok {
		return v
	}
	return def
}

// Has reports whether the parameter is present.
func (a *Ability) Has(key string) bool {
	_, ok := a.Params[key]
	return ok
}

// Validate checks the definition's static invariants.
func (a *Ability) Validate() error {
	var errs []string
	if a.Type == "" {
		errs = append(errs, "type must not be empty")
	}
	switch a.Category {
	case CategoryAttack, CategoryHeal, CategoryDefense, CategorySpecial, CategoryRacial:
	default:
		errs = append(errs, fmt.Sprintf("unknown category %q", a.Category))
	}
	switch a.Target {
	case TargetSelf, TargetSingle, TargetMulti:
	default:
		errs = append(errs, fmt.Sprintf("unknown target %q", a.Target))
	}
	if a.Cooldown < 0 {
		errs = append(errs, "cooldown must be >= 0")
	}
	for k, v := range a.Params {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("param %s must be >= 0, got %g", k, v))
		}
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("ability %q: %s", a.Type, strings.Join(errs, "; "))
	}
	return nil
}

// Catalog is the read-only set of abilities known to a room.
type Catalog struct {
	byType map[string]*Ability
}

// NewCatalog validates defs and indexes them by type.
//
// Postcondition: returns a Catalog or an error on invalid or duplicate definitions.
func NewCatalog(defs []*Ability) (*Catalog, error) {
	c := &Catalog{byType: make(map[string]*Ability, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byType[d.Type]; dup {
			return nil, fmt.Errorf("duplicate ability type %q", d.Type)
		}
		c.byType[d.Type] = d
	}
	return c, nil
}

// Get returns the ability for typ.
func (c *Catalog) Get(typ string) (*Ability, bool) {
	a, ok := c.byType[typ]
	return a, ok
}

// Known reports whether typ is defined.
func (c *Catalog) Known(typ string) bool {
	_, ok := c.byType[typ]
	return ok
}

// All returns every ability sorted by type.
func (c *Catalog) All() []*Ability {
	out := make([]*Ability, 0, len(c.byType))
	for _, a := range c.byType {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Len returns the number of abilities.
func (c *Catalog) Len() int { return len(c.byType) }

type abilityFile struct {
	Abilities []*Ability `yaml:"abilities"`
}

// LoadFile parses a YAML file holding an `abilities:` list.
func LoadFile(path string) ([]*Ability, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	var f abilityFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	return f.Abilities, nil
}

// LoadDirectory reads every *.yaml file in dir and builds a Catalog.
func LoadDirectory(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ability dir %q: %w", dir, err)
	}
	var defs []*Ability
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		abilities, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, abilities...)
	}
	return NewCatalog(defs)
}
