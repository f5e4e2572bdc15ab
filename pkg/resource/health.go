package resource

import (
	"context"
	"fmt"
)

// HealthCheck reports degraded health when memory or goroutine usage
// approaches configured limits.
type HealthCheck struct {
	manager *Manager
}

// NewHealthCheck creates a health check backed by a resource manager
func NewHealthCheck(manager *Manager) *HealthCheck {
	return &HealthCheck{manager: manager}
}

// Name returns the name of the health check
func (hc *HealthCheck) Name() string {
	return "resource"
}

// Check verifies resource usage is within acceptable bounds
func (hc *HealthCheck) Check(ctx context.Context) error {
	if err := hc.manager.CheckMemoryUsage(); err != nil {
		return fmt.Errorf("memory check failed: %w", err)
	}

	stats := hc.manager.GetStats()
	threshold := stats.MaxGoroutines * 80 / 100
	if stats.GoroutineCount > threshold {
		return fmt.Errorf("goroutine count %d exceeds 80%% of limit %d",
			stats.GoroutineCount, stats.MaxGoroutines)
	}

	return nil
}
