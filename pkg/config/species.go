// pkg/config/species.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cyohn55/RTS/pkg/entity"
)

// SpeciesFile is the YAML stat sheet for selectable species
type SpeciesFile struct {
	Species []SpeciesDef `yaml:"species"`
}

// SpeciesDef is one species entry in the YAML stat sheet
type SpeciesDef struct {
	Key      string  `yaml:"key"`
	Name     string  `yaml:"name"`
	MaxHP    int     `yaml:"max_hp"`
	Damage   int     `yaml:"damage"`
	Speed    float64 `yaml:"speed"`
	Movement string  `yaml:"movement"`
}

// LoadSpecies reads a YAML species stat sheet and converts it to entity
// stats. An invalid species definition is a configuration error and is
// rejected here, before anything enters the simulation.
func LoadSpecies(path string) ([]entity.SpeciesStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read species file: %w", err)
	}

	var file SpeciesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse species file: %w", err)
	}

	return convertSpecies(file.Species)
}

func convertSpecies(defs []SpeciesDef) ([]entity.SpeciesStats, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("species file defines no species")
	}

	seen := make(map[string]bool, len(defs))
	stats := make([]entity.SpeciesStats, 0, len(defs))
	for _, def := range defs {
		if def.Key == "" {
			return nil, fmt.Errorf("species entry %q has no key", def.Name)
		}
		if seen[def.Key] {
			return nil, fmt.Errorf("duplicate species key %q", def.Key)
		}
		seen[def.Key] = true

		if def.MaxHP <= 0 || def.Damage <= 0 || def.Speed <= 0 {
			return nil, fmt.Errorf("species %q has non-positive stats (hp=%d dmg=%d speed=%f)",
				def.Key, def.MaxHP, def.Damage, def.Speed)
		}

		movement, err := entity.MovementClassFromString(def.Movement)
		if err != nil {
			return nil, fmt.Errorf("species %q: %w", def.Key, err)
		}

		stats = append(stats, entity.SpeciesStats{
			Key:      def.Key,
			Name:     def.Name,
			MaxHP:    def.MaxHP,
			Damage:   def.Damage,
			Speed:    def.Speed,
			Movement: movement,
		})
	}
	return stats, nil
}
