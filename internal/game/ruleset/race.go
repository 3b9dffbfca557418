// Package ruleset loads the race and class tables players choose from.
package ruleset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Race defines a playable race.
//
// Precondition: ID and Name must be non-empty after loading.
type Race struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Article     string `yaml:"article"`
	Description string `yaml:"description"`
	HPBonus     int    `yaml:"hp_bonus"`
	ArmorBonus  int    `yaml:"armor_bonus"`
	// DamageMod multiplies outgoing damage; zero is read as 1.
	DamageMod float64 `yaml:"damage_mod"`
	// Abilities are racial abilities granted on top of the class list.
	Abilities []string `yaml:"abilities"`
}

// DisplayName returns the race name with its grammatical article.
// If Article is empty, returns Name alone.
//
// Precondition: Name must be non-empty.
// Postcondition: Returns a non-empty string.
func (r *Race) DisplayName() string {
	if r.Article == "" {
		return r.Name
	}
	return r.Article + " " + r.Name
}

// Multiplier returns DamageMod with the zero value read as neutral.
func (r *Race) Multiplier() float64 {
	if r.DamageMod == 0 {
		return 1
	}
	return r.DamageMod
}

// LoadRaces reads all .yaml files in dir and parses each as a Race.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed races (may be empty slice) or a non-nil error.
func LoadRaces(dir string) ([]*Race, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	races := make([]*Race, 0, len(files))
	for _, path := range files {
		var r Race
		if err := decodeFile(path, &r); err != nil {
			return nil, fmt.Errorf("parsing race file %s: %w", path, err)
		}
		races = append(races, &r)
	}
	return races, nil
}

func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
