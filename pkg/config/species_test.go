// pkg/config/species_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cyohn55/RTS/pkg/entity"
)

func writeSpeciesFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "species.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSpecies_ValidSheet(t *testing.T) {
	path := writeSpeciesFile(t, `
species:
  - key: ant
    name: Ant
    max_hp: 80
    damage: 10
    speed: 9
    movement: walker
  - key: bee
    name: Bee
    max_hp: 65
    damage: 16
    speed: 12
    movement: flier
`)

	stats, err := LoadSpecies(path)
	if err != nil {
		t.Fatalf("LoadSpecies failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("loaded %d species, want 2", len(stats))
	}

	index := entity.SpeciesIndex(stats)
	bee, ok := index["bee"]
	if !ok {
		t.Fatal("bee not loaded")
	}
	if bee.Movement != entity.Flier {
		t.Errorf("bee movement = %v, want flier", bee.Movement)
	}
	if bee.MaxHP != 65 || bee.Damage != 16 || bee.Speed != 12 {
		t.Errorf("bee stats mismatch: %+v", bee)
	}
}

func TestLoadSpecies_RejectsInvalidSheets(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{
			"unknown movement class",
			"species:\n  - key: ant\n    max_hp: 10\n    damage: 1\n    speed: 1\n    movement: swimmer\n",
		},
		{
			"missing key",
			"species:\n  - name: Nameless\n    max_hp: 10\n    damage: 1\n    speed: 1\n    movement: walker\n",
		},
		{
			"duplicate key",
			"species:\n  - key: ant\n    max_hp: 10\n    damage: 1\n    speed: 1\n    movement: walker\n  - key: ant\n    max_hp: 10\n    damage: 1\n    speed: 1\n    movement: walker\n",
		},
		{
			"non-positive stats",
			"species:\n  - key: ant\n    max_hp: 0\n    damage: 1\n    speed: 1\n    movement: walker\n",
		},
		{
			"empty sheet",
			"species: []\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSpeciesFile(t, tc.contents)
			if _, err := LoadSpecies(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadSpecies_MissingFile(t *testing.T) {
	if _, err := LoadSpecies("/nonexistent/species.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
