// Package resource tracks process-level resources (memory, goroutines) for
// the battle server, bounding them and enabling graceful shutdown.
package resource

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cyohn55/RTS/pkg/config"
	"github.com/cyohn55/RTS/pkg/logging"
)

// Manager bounds memory and goroutine usage and waits for tracked work to
// drain during shutdown.
type Manager struct {
	maxMemoryMB     int64
	maxGoroutines   int64
	shutdownTimeout time.Duration
	checkInterval   time.Duration

	goroutineCount int64
	memoryUsageMB  int64

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.RWMutex
	running bool
	logger  *logging.Logger
}

// NewManager creates a resource manager from environment configuration
func NewManager(cfg *config.EnvironmentConfig) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		maxMemoryMB:     cfg.MaxMemoryMB,
		maxGoroutines:   cfg.MaxGoroutines,
		shutdownTimeout: cfg.ShutdownTimeout,
		checkInterval:   cfg.ResourceCheckInterval,
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
		logger:          logging.NewLogger(),
	}
}

// Start begins the resource monitoring loop
func (rm *Manager) Start() error {
	rm.mu.Lock()
	if rm.running {
		rm.mu.Unlock()
		return fmt.Errorf("resource manager already running")
	}
	rm.running = true
	rm.mu.Unlock()

	go rm.monitoringLoop()

	rm.logger.Info(rm.ctx, "resource manager started",
		"max_memory_mb", rm.maxMemoryMB,
		"max_goroutines", rm.maxGoroutines,
		"check_interval", rm.checkInterval,
	)

	return nil
}

// StartGoroutine starts a tracked goroutine, refusing if the limit would be
// exceeded. Panics in the goroutine are recovered and logged.
func (rm *Manager) StartGoroutine(ctx context.Context, name string, fn func(context.Context)) error {
	current := atomic.LoadInt64(&rm.goroutineCount)
	if current >= rm.maxGoroutines {
		rm.logger.Warn(ctx, "goroutine limit exceeded",
			"current", current,
			"limit", rm.maxGoroutines,
			"name", name,
		)
		return fmt.Errorf("goroutine limit exceeded: %d/%d", current, rm.maxGoroutines)
	}

	atomic.AddInt64(&rm.goroutineCount, 1)

	go func() {
		defer atomic.AddInt64(&rm.goroutineCount, -1)
		defer func() {
			if r := recover(); r != nil {
				rm.logger.Error(ctx, "goroutine panic",
					fmt.Errorf("panic: %v", r),
					"name", name,
				)
			}
		}()

		fn(ctx)
	}()

	return nil
}

// CheckMemoryUsage samples current memory usage and compares it to the limit
func (rm *Manager) CheckMemoryUsage() error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	currentMB := int64(m.Alloc / 1024 / 1024)
	atomic.StoreInt64(&rm.memoryUsageMB, currentMB)

	if currentMB > rm.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, rm.maxMemoryMB)
	}

	return nil
}

// GetGoroutineCount returns the current number of tracked goroutines
func (rm *Manager) GetGoroutineCount() int64 {
	return atomic.LoadInt64(&rm.goroutineCount)
}

// GetMemoryUsage returns the most recently sampled memory usage in MB
func (rm *Manager) GetMemoryUsage() int64 {
	return atomic.LoadInt64(&rm.memoryUsageMB)
}

// Stats contains resource usage statistics
type Stats struct {
	GoroutineCount int64 `json:"goroutine_count"`
	MaxGoroutines  int64 `json:"max_goroutines"`
	MemoryUsageMB  int64 `json:"memory_usage_mb"`
	MaxMemoryMB    int64 `json:"max_memory_mb"`
}

// GetStats returns current resource usage statistics
func (rm *Manager) GetStats() Stats {
	return Stats{
		GoroutineCount: rm.GetGoroutineCount(),
		MaxGoroutines:  rm.maxGoroutines,
		MemoryUsageMB:  rm.GetMemoryUsage(),
		MaxMemoryMB:    rm.maxMemoryMB,
	}
}

// Shutdown stops monitoring and waits for tracked goroutines to finish,
// bounded by the configured shutdown timeout.
func (rm *Manager) Shutdown(ctx context.Context) error {
	rm.mu.Lock()
	if !rm.running {
		rm.mu.Unlock()
		return nil
	}
	rm.running = false
	rm.mu.Unlock()

	rm.logger.Info(ctx, "shutting down resource manager")
	rm.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, rm.shutdownTimeout)
	defer cancel()

	select {
	case <-rm.done:
	case <-shutdownCtx.Done():
		rm.logger.Warn(ctx, "resource monitoring loop did not stop gracefully")
	}

	return rm.waitForGoroutines(shutdownCtx)
}

// waitForGoroutines waits for all tracked goroutines to finish or timeout
func (rm *Manager) waitForGoroutines(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		count := rm.GetGoroutineCount()
		if count == 0 {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			remaining := rm.GetGoroutineCount()
			rm.logger.Warn(ctx, "shutdown timeout exceeded with goroutines still running",
				"remaining", remaining,
			)
			return fmt.Errorf("shutdown timeout: %d goroutines still running", remaining)
		}
	}
}

// monitoringLoop runs periodic resource checks
func (rm *Manager) monitoringLoop() {
	defer close(rm.done)

	ticker := time.NewTicker(rm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := rm.CheckMemoryUsage(); err != nil {
				rm.logger.Error(rm.ctx, "memory limit exceeded", err,
					"current_mb", rm.GetMemoryUsage(),
					"limit_mb", rm.maxMemoryMB,
				)
			}
		case <-rm.ctx.Done():
			return
		}
	}
}
