// pkg/entity/species.go
package entity

import "fmt"

// MovementClass selects the movement-linked animation a species drives:
// walkers have no phase, hoppers advance a hop phase, fliers a wing phase.
type MovementClass int

const (
	Walker MovementClass = iota
	Hopper
	Flier
)

// MovementClassFromString parses a movement class name
func MovementClassFromString(s string) (MovementClass, error) {
	switch s {
	case "walker":
		return Walker, nil
	case "hopper":
		return Hopper, nil
	case "flier":
		return Flier, nil
	default:
		return Walker, fmt.Errorf("unknown movement class: %q", s)
	}
}

// String returns the movement class name
func (m MovementClass) String() string {
	switch m {
	case Hopper:
		return "hopper"
	case Flier:
		return "flier"
	default:
		return "walker"
	}
}

// SpeciesStats contains the base statistics for one of the 12 selectable
// species. Archetype stats (Base/Queen/King/Unit) are derived from these.
type SpeciesStats struct {
	Key      string
	Name     string
	MaxHP    int
	Damage   int
	Speed    float64 // world units per second
	Movement MovementClass
}

// DefaultSpecies returns the built-in stat sheet for all 12 species. A YAML
// stat sheet loaded through pkg/config takes precedence when provided.
func DefaultSpecies() []SpeciesStats {
	return []SpeciesStats{
		{Key: "ant", Name: "Ant", MaxHP: 80, Damage: 10, Speed: 9, Movement: Walker},
		{Key: "beetle", Name: "Beetle", MaxHP: 150, Damage: 15, Speed: 6, Movement: Walker},
		{Key: "mantis", Name: "Mantis", MaxHP: 100, Damage: 25, Speed: 8, Movement: Walker},
		{Key: "scorpion", Name: "Scorpion", MaxHP: 130, Damage: 20, Speed: 7, Movement: Walker},
		{Key: "spider", Name: "Spider", MaxHP: 90, Damage: 18, Speed: 10, Movement: Walker},
		{Key: "roach", Name: "Roach", MaxHP: 110, Damage: 8, Speed: 11, Movement: Walker},
		{Key: "grasshopper", Name: "Grasshopper", MaxHP: 70, Damage: 14, Speed: 13, Movement: Hopper},
		{Key: "cricket", Name: "Cricket", MaxHP: 60, Damage: 12, Speed: 12, Movement: Hopper},
		{Key: "flea", Name: "Flea", MaxHP: 40, Damage: 8, Speed: 15, Movement: Hopper},
		{Key: "bee", Name: "Bee", MaxHP: 65, Damage: 16, Speed: 12, Movement: Flier},
		{Key: "wasp", Name: "Wasp", MaxHP: 75, Damage: 22, Speed: 11, Movement: Flier},
		{Key: "dragonfly", Name: "Dragonfly", MaxHP: 85, Damage: 18, Speed: 14, Movement: Flier},
	}
}

// SpeciesIndex builds a lookup table keyed by species key
func SpeciesIndex(list []SpeciesStats) map[string]SpeciesStats {
	index := make(map[string]SpeciesStats, len(list))
	for _, s := range list {
		index[s.Key] = s
	}
	return index
}
