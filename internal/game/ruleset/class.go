package ruleset

import "fmt"

// Class defines a playable class.
//
// Precondition: ID, Name and a positive BaseHP must be set after loading.
type Class struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	BaseHP      int     `yaml:"base_hp"`
	BaseArmor   int     `yaml:"base_armor"`
	DamageMod   float64 `yaml:"damage_mod"`
	// Abilities are unlocked from the first round.
	Abilities []string `yaml:"abilities"`
}

// Multiplier returns DamageMod with the zero value read as neutral.
func (c *Class) Multiplier() float64 {
	if c.DamageMod == 0 {
		return 1
	}
	return c.DamageMod
}

// LoadClasses reads all .yaml files in dir and parses each as a Class.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed classes (may be empty slice) or a non-nil error.
func LoadClasses(dir string) ([]*Class, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	classes := make([]*Class, 0, len(files))
	for _, path := range files {
		var c Class
		if err := decodeFile(path, &c); err != nil {
			return nil, fmt.Errorf("parsing class file %s: %w", path, err)
		}
		classes = append(classes, &c)
	}
	return classes, nil
}
