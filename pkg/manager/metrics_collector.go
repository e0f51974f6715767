package manager

import (
	"time"

	"github.com/cuemby/burrow/pkg/metrics"
)

// MetricsCollector collects metrics from the manager
type MetricsCollector struct {
	manager *Manager
	stopCh  chan struct{}
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(mgr *Manager) *MetricsCollector {
	return &MetricsCollector{
		manager: mgr,
		stopCh:  make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *MetricsCollector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *MetricsCollector) Stop() {
	close(c.stopCh)
}

func (c *MetricsCollector) collect() {
	c.collectInstanceMetrics()
	c.collectResourceMetrics()
	c.collectRaftMetrics()
}

func (c *MetricsCollector) collectInstanceMetrics() {
	instances, err := c.manager.ListInstances()
	if err != nil {
		return
	}

	statusCounts := make(map[string]int)
	for _, instance := range instances {
		statusCounts[string(instance.Status)]++
	}

	for status, count := range statusCounts {
		metrics.InstancesTotal.WithLabelValues(status).Set(float64(count))
	}
}

func (c *MetricsCollector) collectResourceMetrics() {
	resources, err := c.manager.ListResources()
	if err != nil {
		return
	}

	metrics.ResourcesTotal.Set(float64(len(resources)))
}

func (c *MetricsCollector) collectRaftMetrics() {
	if c.manager.IsLeader() {
		metrics.RaftLeader.Set(1)
	} else {
		metrics.RaftLeader.Set(0)
	}
}
