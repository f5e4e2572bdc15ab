// pkg/config/env_config_test.go
package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RTS_SERVER_ADDR", "RTS_SERVER_PORT", "RTS_MAX_CLIENTS",
		"RTS_READ_TIMEOUT", "RTS_WRITE_TIMEOUT", "RTS_UPDATE_RATE",
		"RTS_WORLD_SIZE", "RTS_DATABASE_URL",
	} {
		original := os.Getenv(key)
		os.Unsetenv(key)
		t.Cleanup(func() {
			if original != "" {
				os.Setenv(key, original)
			}
		})
	}
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() failed: %v", err)
	}
	if cfg.ServerAddr != "localhost" {
		t.Errorf("ServerAddr = %q, want localhost", cfg.ServerAddr)
	}
	if cfg.ServerPort != 4566 {
		t.Errorf("ServerPort = %d, want 4566", cfg.ServerPort)
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want 30s", cfg.ReadTimeout)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty by default", cfg.DatabaseURL)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	os.Setenv("RTS_SERVER_ADDR", "192.168.1.100")
	os.Setenv("RTS_SERVER_PORT", "8080")
	os.Setenv("RTS_MAX_CLIENTS", "64")
	os.Setenv("RTS_READ_TIMEOUT", "45s")
	os.Setenv("RTS_UPDATE_RATE", "30")
	os.Setenv("RTS_WORLD_SIZE", "500")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() failed: %v", err)
	}
	if cfg.ServerAddr != "192.168.1.100" {
		t.Errorf("ServerAddr = %q, want 192.168.1.100", cfg.ServerAddr)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.MaxClients != 64 {
		t.Errorf("MaxClients = %d, want 64", cfg.MaxClients)
	}
	if cfg.ReadTimeout != 45*time.Second {
		t.Errorf("ReadTimeout = %v, want 45s", cfg.ReadTimeout)
	}
	if cfg.UpdateRate != 30 {
		t.Errorf("UpdateRate = %d, want 30", cfg.UpdateRate)
	}
	if cfg.WorldSize != 500 {
		t.Errorf("WorldSize = %f, want 500", cfg.WorldSize)
	}
}

func TestLoadConfigFromEnv_InvalidValues(t *testing.T) {
	clearEnv(t)
	os.Setenv("RTS_SERVER_PORT", "not-a-number")
	if _, err := LoadConfigFromEnv(); err == nil {
		t.Error("expected error for non-numeric port")
	}
	os.Unsetenv("RTS_SERVER_PORT")

	os.Setenv("RTS_READ_TIMEOUT", "soon")
	if _, err := LoadConfigFromEnv(); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidateEnvironmentConfig(t *testing.T) {
	valid := func() *EnvironmentConfig {
		return &EnvironmentConfig{
			ServerAddr:   "localhost",
			ServerPort:   4566,
			MaxClients:   32,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			UpdateRate:   20,
			WorldSize:    200,
		}
	}

	tests := []struct {
		name        string
		mutate      func(*EnvironmentConfig)
		expectError bool
	}{
		{"valid config", func(c *EnvironmentConfig) {}, false},
		{"empty server addr", func(c *EnvironmentConfig) { c.ServerAddr = "" }, true},
		{"port out of range", func(c *EnvironmentConfig) { c.ServerPort = 70000 }, true},
		{"zero max clients", func(c *EnvironmentConfig) { c.MaxClients = 0 }, true},
		{"negative timeout", func(c *EnvironmentConfig) { c.ReadTimeout = -1 }, true},
		{"zero update rate", func(c *EnvironmentConfig) { c.UpdateRate = 0 }, true},
		{"zero world size", func(c *EnvironmentConfig) { c.WorldSize = 0 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := ValidateEnvironmentConfig(cfg)
			if tc.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tc.expectError && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
