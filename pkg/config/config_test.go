// pkg/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_IsComplete(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Players) != 2 {
		t.Fatalf("default config has %d players, want 2", len(cfg.Players))
	}
	for _, p := range cfg.Players {
		if len(p.Species) != 3 {
			t.Errorf("player %q has %d species, want exactly 3", p.Name, len(p.Species))
		}
		if len(p.BasePositions) != len(p.Species) {
			t.Errorf("player %q base positions (%d) not 1:1 with species (%d)",
				p.Name, len(p.BasePositions), len(p.Species))
		}
	}

	if cfg.TickRate <= 0 {
		t.Error("default tick rate must be positive")
	}
	if cfg.Separation.MinSpacing <= cfg.Separation.MeleeExemption {
		t.Error("melee exemption must be tighter than min spacing")
	}
	if cfg.Combat.CooldownMillis != 1500 {
		t.Errorf("attack cooldown = %d, want 1500", cfg.Combat.CooldownMillis)
	}
	if len(cfg.Gates) != 2 {
		t.Errorf("default config has %d gates, want 2", len(cfg.Gates))
	}
}

func TestLoadConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	original := DefaultConfig()
	original.TickRate = 30
	original.Production.UnitCap = 7

	if err := SaveConfig(original, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.TickRate != 30 {
		t.Errorf("TickRate = %d, want 30", loaded.TickRate)
	}
	if loaded.Production.UnitCap != 7 {
		t.Errorf("UnitCap = %d, want 7", loaded.Production.UnitCap)
	}
	if len(loaded.Players) != len(original.Players) {
		t.Errorf("loaded %d players, want %d", len(loaded.Players), len(original.Players))
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.json"); err == nil {
		t.Error("expected error for missing file")
	}

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
