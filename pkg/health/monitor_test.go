package health

import (
	"context"
	"sync"
	"testing"
	"time"
)

// flakyChecker fails or succeeds on command
type flakyChecker struct {
	mu      sync.Mutex
	healthy bool
}

func (c *flakyChecker) set(healthy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = healthy
}

func (c *flakyChecker) Check(ctx context.Context) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Result{Healthy: c.healthy, CheckedAt: time.Now()}
}

func (c *flakyChecker) Type() CheckType { return CheckTypeTCP }

func TestMonitorTransitions(t *testing.T) {
	config := Config{
		Interval: time.Hour, // probe manually
		Timeout:  time.Second,
		Retries:  2,
	}

	var mu sync.Mutex
	transitions := make(map[string]bool)

	monitor := NewMonitor(config, func(id string, healthy bool, result Result) {
		mu.Lock()
		defer mu.Unlock()
		transitions[id] = healthy
	})

	checker := &flakyChecker{healthy: true}
	monitor.SetTargets([]Target{{ID: "n0", Checker: checker}})

	// Healthy probes cause no transition
	monitor.probeAll()
	mu.Lock()
	if len(transitions) != 0 {
		t.Error("No transition expected while healthy")
	}
	mu.Unlock()

	// Two consecutive failures cross the retry threshold
	checker.set(false)
	monitor.probeAll()
	monitor.probeAll()

	mu.Lock()
	healthy, ok := transitions["n0"]
	mu.Unlock()
	if !ok || healthy {
		t.Error("Expected an unhealthy transition for n0")
	}

	status, ok := monitor.StatusOf("n0")
	if !ok || status.Healthy {
		t.Error("StatusOf should report n0 unhealthy")
	}

	// Recovery transitions back
	checker.set(true)
	monitor.probeAll()
	mu.Lock()
	healthy = transitions["n0"]
	mu.Unlock()
	if !healthy {
		t.Error("Expected a healthy transition after recovery")
	}
}

func TestMonitorSetTargetsDropsStale(t *testing.T) {
	monitor := NewMonitor(DefaultConfig(), nil)

	monitor.SetTargets([]Target{{ID: "n0", Checker: &flakyChecker{healthy: true}}})
	if _, ok := monitor.StatusOf("n0"); !ok {
		t.Fatal("n0 should be tracked")
	}

	monitor.SetTargets(nil)
	if _, ok := monitor.StatusOf("n0"); ok {
		t.Error("n0 should be dropped after target replacement")
	}
}
