// pkg/config/env_config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvironmentConfig holds deployment-level settings sourced from environment
// variables. Game rules live in GameConfig; this covers the server process.
type EnvironmentConfig struct {
	ServerAddr   string
	ServerPort   int
	MaxClients   int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	UpdateRate   int
	WorldSize    float64

	// Circuit breaker configuration
	CircuitBreakerMaxRequests         int
	CircuitBreakerInterval            time.Duration
	CircuitBreakerTimeout             time.Duration
	CircuitBreakerMaxConsecutiveFails int

	// Resource management configuration
	MaxMemoryMB           int64
	MaxGoroutines         int64
	ShutdownTimeout       time.Duration
	ResourceCheckInterval time.Duration

	// Optional Postgres connection string for the match-history store.
	// Empty disables persistence.
	DatabaseURL string
}

// LoadConfigFromEnv builds an EnvironmentConfig from RTS_* environment
// variables, falling back to safe defaults for anything unset.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	cfg := &EnvironmentConfig{
		ServerAddr:                        getEnvString("RTS_SERVER_ADDR", "localhost"),
		MaxMemoryMB:                       500,
		MaxGoroutines:                     1000,
		CircuitBreakerMaxRequests:         3,
		CircuitBreakerMaxConsecutiveFails: 5,
		CircuitBreakerInterval:            60 * time.Second,
		CircuitBreakerTimeout:             30 * time.Second,
		ShutdownTimeout:                   30 * time.Second,
		ResourceCheckInterval:             10 * time.Second,
		DatabaseURL:                       os.Getenv("RTS_DATABASE_URL"),
	}

	var err error
	if cfg.ServerPort, err = getEnvInt("RTS_SERVER_PORT", 4566); err != nil {
		return nil, err
	}
	if cfg.MaxClients, err = getEnvInt("RTS_MAX_CLIENTS", 32); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = getEnvDuration("RTS_READ_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = getEnvDuration("RTS_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.UpdateRate, err = getEnvInt("RTS_UPDATE_RATE", 20); err != nil {
		return nil, err
	}
	if cfg.WorldSize, err = getEnvFloat("RTS_WORLD_SIZE", 200); err != nil {
		return nil, err
	}

	if err := ValidateEnvironmentConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateEnvironmentConfig rejects configurations that cannot run
func ValidateEnvironmentConfig(cfg *EnvironmentConfig) error {
	if cfg.ServerAddr == "" {
		return fmt.Errorf("invalid ServerAddr: must not be empty")
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return fmt.Errorf("invalid ServerPort: %d (must be 1-65535)", cfg.ServerPort)
	}
	if cfg.MaxClients <= 0 {
		return fmt.Errorf("invalid MaxClients: %d (must be positive)", cfg.MaxClients)
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 {
		return fmt.Errorf("invalid timeouts: read=%v write=%v (must be positive)",
			cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.UpdateRate <= 0 {
		return fmt.Errorf("invalid UpdateRate: %d (must be positive)", cfg.UpdateRate)
	}
	if cfg.WorldSize <= 0 {
		return fmt.Errorf("invalid WorldSize: %f (must be positive)", cfg.WorldSize)
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
