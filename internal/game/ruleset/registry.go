package ruleset

import (
	"errors"
	"fmt"
	"sort"
)

// AbilityLookup reports whether an ability id is defined.
type AbilityLookup interface {
	Known(id string) bool
}

// Rules indexes races and classes by id.
type Rules struct {
	races   map[string]*Race
	classes map[string]*Class
}

// NewRules indexes races and classes and rejects duplicate or incomplete entries.
//
// Postcondition: returns a Rules or an error naming every problem.
func NewRules(races []*Race, classes []*Class) (*Rules, error) {
	r := &Rules{races: make(map[string]*Race), classes: make(map[string]*Class)}
	var errs []error
	for _, race := range races {
		switch {
		case race.ID == "" || race.Name == "":
			errs = append(errs, fmt.Errorf("race %q: id and name are required", race.ID))
		case r.races[race.ID] != nil:
			errs = append(errs, fmt.Errorf("duplicate race %q", race.ID))
		default:
			r.races[race.ID] = race
		}
	}
	for _, c := range classes {
		switch {
		case c.ID == "" || c.Name == "":
			errs = append(errs, fmt.Errorf("class %q: id and name are required", c.ID))
		case c.BaseHP <= 0:
			errs = append(errs, fmt.Errorf("class %q: base_hp must be positive", c.ID))
		case r.classes[c.ID] != nil:
			errs = append(errs, fmt.Errorf("duplicate class %q", c.ID))
		default:
			r.classes[c.ID] = c
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Load reads races from raceDir and classes from classDir.
func Load(raceDir, classDir string) (*Rules, error) {
	races, err := LoadRaces(raceDir)
	if err != nil {
		return nil, err
	}
	classes, err := LoadClasses(classDir)
	if err != nil {
		return nil, err
	}
	return NewRules(races, classes)
}

// Race returns the race for id, if registered.
func (r *Rules) Race(id string) (*Race, bool) {
	race, ok := r.races[id]
	return race, ok
}

// Class returns the class for id, if registered.
func (r *Rules) Class(id string) (*Class, bool) {
	c, ok := r.classes[id]
	return c, ok
}

// Races returns every race sorted by id.
func (r *Rules) Races() []*Race {
	out := make([]*Race, 0, len(r.races))
	for _, race := range r.races {
		out = append(out, race)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Classes returns every class sorted by id.
func (r *Rules) Classes() []*Class {
	out := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate checks that every ability named by a race or class is defined.
func (r *Rules) Validate(abilities AbilityLookup) error {
	var errs []error
	for _, race := range r.Races() {
		for _, id := range race.Abilities {
			if !abilities.Known(id) {
				errs = append(errs, fmt.Errorf("race %q grants unknown ability %q", race.ID, id))
			}
		}
	}
	for _, c := range r.Classes() {
		for _, id := range c.Abilities {
			if !abilities.Known(id) {
				errs = append(errs, fmt.Errorf("class %q grants unknown ability %q", c.ID, id))
			}
		}
	}
	return errors.Join(errs...)
}
