package resource

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cyohn55/RTS/pkg/config"
)

func testConfig() *config.EnvironmentConfig {
	return &config.EnvironmentConfig{
		MaxMemoryMB:           4096,
		MaxGoroutines:         4,
		ShutdownTimeout:       2 * time.Second,
		ResourceCheckInterval: 50 * time.Millisecond,
	}
}

func TestStartGoroutine_TracksCount(t *testing.T) {
	rm := NewManager(testConfig())

	release := make(chan struct{})
	started := make(chan struct{})
	err := rm.StartGoroutine(context.Background(), "worker", func(ctx context.Context) {
		close(started)
		<-release
	})
	if err != nil {
		t.Fatalf("StartGoroutine() error = %v", err)
	}

	<-started
	if got := rm.GetGoroutineCount(); got != 1 {
		t.Errorf("GetGoroutineCount() = %d, want 1", got)
	}

	close(release)
	waitForCount(t, rm, 0)
}

func TestStartGoroutine_EnforcesLimit(t *testing.T) {
	rm := NewManager(testConfig())

	release := make(chan struct{})
	for i := 0; i < 4; i++ {
		err := rm.StartGoroutine(context.Background(), "worker", func(ctx context.Context) {
			<-release
		})
		if err != nil {
			t.Fatalf("StartGoroutine() #%d error = %v", i, err)
		}
	}

	if err := rm.StartGoroutine(context.Background(), "extra", func(ctx context.Context) {}); err == nil {
		t.Error("StartGoroutine() should fail when limit reached")
	}

	close(release)
	waitForCount(t, rm, 0)
}

func TestStartGoroutine_RecoversPanic(t *testing.T) {
	rm := NewManager(testConfig())

	err := rm.StartGoroutine(context.Background(), "panicker", func(ctx context.Context) {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("StartGoroutine() error = %v", err)
	}

	// Count must still drop back to zero after the panic is recovered.
	waitForCount(t, rm, 0)
}

func TestCheckMemoryUsage(t *testing.T) {
	rm := NewManager(testConfig())
	if err := rm.CheckMemoryUsage(); err != nil {
		t.Errorf("CheckMemoryUsage() error = %v, want nil under generous limit", err)
	}
	if rm.GetMemoryUsage() < 0 {
		t.Errorf("GetMemoryUsage() = %d, want >= 0", rm.GetMemoryUsage())
	}

	rm.maxMemoryMB = 0
	if err := rm.CheckMemoryUsage(); rm.GetMemoryUsage() > 0 && err == nil {
		t.Error("CheckMemoryUsage() should fail when usage exceeds limit")
	}
}

func TestShutdown_WaitsForGoroutines(t *testing.T) {
	rm := NewManager(testConfig())
	if err := rm.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	var finished atomic.Bool
	err := rm.StartGoroutine(context.Background(), "slow", func(ctx context.Context) {
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	})
	if err != nil {
		t.Fatalf("StartGoroutine() error = %v", err)
	}

	if err := rm.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if !finished.Load() {
		t.Error("Shutdown() returned before tracked goroutine finished")
	}
}

func TestShutdown_TimesOut(t *testing.T) {
	cfg := testConfig()
	cfg.ShutdownTimeout = 200 * time.Millisecond
	rm := NewManager(cfg)
	if err := rm.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	release := make(chan struct{})
	defer close(release)
	if err := rm.StartGoroutine(context.Background(), "stuck", func(ctx context.Context) {
		<-release
	}); err != nil {
		t.Fatalf("StartGoroutine() error = %v", err)
	}

	if err := rm.Shutdown(context.Background()); err == nil {
		t.Error("Shutdown() should report goroutines still running")
	}
}

func TestHealthCheck(t *testing.T) {
	rm := NewManager(testConfig())
	hc := NewHealthCheck(rm)

	if hc.Name() != "resource" {
		t.Errorf("Name() = %q, want %q", hc.Name(), "resource")
	}
	if err := hc.Check(context.Background()); err != nil {
		t.Errorf("Check() error = %v, want nil with no load", err)
	}

	release := make(chan struct{})
	for i := 0; i < 4; i++ {
		if err := rm.StartGoroutine(context.Background(), "worker", func(ctx context.Context) {
			<-release
		}); err != nil {
			t.Fatalf("StartGoroutine() error = %v", err)
		}
	}
	if err := hc.Check(context.Background()); err == nil {
		t.Error("Check() should fail when goroutine usage exceeds 80% of limit")
	}

	close(release)
	waitForCount(t, rm, 0)
}

func waitForCount(t *testing.T, rm *Manager, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rm.GetGoroutineCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("goroutine count = %d, want %d", rm.GetGoroutineCount(), want)
}
