// Package effect owns every status effect active in a room: application with
// stack/refresh rules, per-round ticking, cures, and modified-value queries.
package effect

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

// ErrUnknownEffect is returned when an effect type has no definition.
// It wraps entity.ErrInvariant: the ability data and effect table disagree.
var ErrUnknownEffect = fmt.Errorf("%w: unknown effect type", entity.ErrInvariant)

// Channel names a value that effects may modify.
type Channel string

const (
	ChannelArmor           Channel = "armor"
	ChannelDamageDealt     Channel = "damageDealt"
	ChannelDamageTaken     Channel = "damageTaken"
	ChannelHealingReceived Channel = "healingReceived"
)

// ModifierKind selects flat addition or percentage scaling.
type ModifierKind string

const (
	KindFlat    ModifierKind = "flat"
	KindPercent ModifierKind = "percent"
)

// Modifier adjusts one channel. When Param is set the amount is read from the
// instance's params and multiplied by Scale (1 when zero); otherwise Value is
// used as-is.
type Modifier struct {
	Channel Channel      `yaml:"channel"`
	Kind    ModifierKind `yaml:"kind"`
	Param   string       `yaml:"param"`
	Scale   float64      `yaml:"scale"`
	Value   float64      `yaml:"value"`
}

// Amount resolves the modifier against an instance's params.
func (m Modifier) Amount(params map[string]float64) float64 {
	if m.Param == "" {
		return m.Value
	}
	scale := m.Scale
	if scale == 0 {
		scale = 1
	}
	return params[m.Param] * scale
}

// PeriodicKind is the per-round component of an effect.
type PeriodicKind string

const (
	PeriodicDamage PeriodicKind = "damage"
	PeriodicHeal   PeriodicKind = "heal"
)

// Periodic applies Param from the instance's params every tick.
type Periodic struct {
	Kind  PeriodicKind `yaml:"kind"`
	Param string       `yaml:"param"`
}

// Def is the static definition of an effect type.
type Def struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Stackable types add an independent instance per application.
	Stackable bool `yaml:"stackable"`
	// Refreshable types reset duration to max(current, incoming). Types that
	// are neither ignore re-application.
	Refreshable bool       `yaml:"refreshable"`
	Modifiers   []Modifier `yaml:"modifiers"`
	Periodic    *Periodic  `yaml:"periodic"`
	// Untargetable owners cannot be picked by single-target attacks and are
	// skipped by area attacks.
	Untargetable bool `yaml:"untargetable"`
	// PreventsDeath owners are revived at resurrect_hp instead of dying while
	// the instance has uses left.
	PreventsDeath bool `yaml:"prevents_death"`
	// ErodesOnHit lowers the armor param by one on every damaging hit.
	ErodesOnHit bool `yaml:"erodes_on_hit"`
}

// Validate checks the definition's static invariants.
func (d *Def) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if d.Stackable && d.Refreshable {
		errs = append(errs, "stackable and refreshable are mutually exclusive")
	}
	for i, m := range d.Modifiers {
		switch m.Channel {
		case ChannelArmor, ChannelDamageDealt, ChannelDamageTaken, ChannelHealingReceived:
		default:
			errs = append(errs, fmt.Sprintf("modifier %d: unknown channel %q", i, m.Channel))
		}
		if m.Kind != KindFlat && m.Kind != KindPercent {
			errs = append(errs, fmt.Sprintf("modifier %d: unknown kind %q", i, m.Kind))
		}
	}
	if p := d.Periodic; p != nil {
		if p.Kind != PeriodicDamage && p.Kind != PeriodicHeal {
			errs = append(errs, fmt.Sprintf("periodic: unknown kind %q", p.Kind))
		}
		if p.Param == "" {
			errs = append(errs, "periodic: param must not be empty")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("effect %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Registry holds all known effect definitions keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register validates def and adds it.
//
// Postcondition: returns an error on an invalid or duplicate definition.
func (r *Registry) Register(def *Def) error {
	if def == nil {
		return errors.New("effect def must not be nil")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	if _, dup := r.defs[def.ID]; dup {
		return fmt.Errorf("duplicate effect type %q", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every definition sorted by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DefaultRegistry returns the built-in effect table.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range defaultDefs() {
		if err := r.Register(d); err != nil {
			panic("effect: invalid built-in definition: " + err.Error())
		}
	}
	return r
}

func defaultDefs() []*Def {
	return []*Def{
		{ID: "poison", Name: "Poisoned", Stackable: true,
			Periodic: &Periodic{Kind: PeriodicDamage, Param: "damage_per_turn"}},
		{ID: "bleed", Name: "Bleeding", Stackable: true,
			Periodic: &Periodic{Kind: PeriodicDamage, Param: "damage_per_turn"}},
		{ID: "burn", Name: "Burning", Refreshable: true,
			Periodic: &Periodic{Kind: PeriodicDamage, Param: "damage_per_turn"}},
		{ID: "regeneration", Name: "Regenerating", Refreshable: true,
			Periodic: &Periodic{Kind: PeriodicHeal, Param: "heal_per_turn"}},
		{ID: "vulnerable", Name: "Vulnerable", Refreshable: true,
			Modifiers: []Modifier{{Channel: ChannelDamageTaken, Kind: KindPercent, Param: "damage_increase"}}},
		{ID: "shielded", Name: "Shielded", Refreshable: true,
			Modifiers: []Modifier{{Channel: ChannelArmor, Kind: KindFlat, Param: "armor"}}},
		{ID: "invisible", Name: "Invisible", Refreshable: true, Untargetable: true},
		{ID: "enraged", Name: "Enraged", Refreshable: true,
			Modifiers: []Modifier{{Channel: ChannelDamageDealt, Kind: KindPercent, Param: "damage_increase"}}},
		{ID: "weakened", Name: "Weakened", Refreshable: true,
			Modifiers: []Modifier{{Channel: ChannelDamageDealt, Kind: KindPercent, Param: "damage_reduction", Scale: -1}}},
		{ID: "undying", Name: "Undying", PreventsDeath: true},
		{ID: "stone_armor", Name: "Stone Armor", ErodesOnHit: true,
			Modifiers: []Modifier{{Channel: ChannelArmor, Kind: KindFlat, Param: "armor"}}},
	}
}

type defFile struct {
	Effects []*Def `yaml:"effects"`
}

// LoadDirectory reads every *.yaml file in dir holding an `effects:` list and
// returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var f defFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, d := range f.Effects {
			if err := reg.Register(d); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return reg, nil
}
