package controller

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/manager"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/statemodel"
	"github.com/cuemby/burrow/pkg/strategy"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultInterval is the time between reconciliation cycles
const DefaultInterval = 10 * time.Second

// Controller drives the rebalance pipeline: on every cycle it expires stale
// instances, snapshots cluster state, and recomputes each resource's ideal
// state, persisting the result when it changed.
type Controller struct {
	manager  *manager.Manager
	strategy *strategy.AutoRebalanceStrategy
	interval time.Duration
	logger   zerolog.Logger
	mu       sync.Mutex
	stopCh   chan struct{}
}

// NewController creates a new controller
func NewController(mgr *manager.Manager) *Controller {
	return &Controller{
		manager:  mgr,
		strategy: strategy.NewAutoRebalanceStrategy(),
		interval: DefaultInterval,
		logger:   log.WithComponent("controller"),
		stopCh:   make(chan struct{}),
	}
}

// SetInterval overrides the reconciliation interval; call before Start
func (c *Controller) SetInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Start begins the reconciliation loop
func (c *Controller) Start() {
	go c.run()
}

// Stop stops the controller
func (c *Controller) Stop() {
	close(c.stopCh)
}

// run is the main reconciliation loop
func (c *Controller) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info().Msg("Controller started")

	for {
		select {
		case <-ticker.C:
			if err := c.Reconcile(); err != nil {
				// Log error but continue
				c.logger.Error().Err(err).Msg("Reconciliation cycle failed")
			}
		case <-c.stopCh:
			c.logger.Info().Msg("Controller stopped")
			return
		}
	}
}

// Reconcile performs one reconciliation cycle. Followers skip the cycle;
// only the Raft leader computes and persists placements.
func (c *Controller) Reconcile() error {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.ReconciliationDuration)
		metrics.ReconciliationCyclesTotal.Inc()
	}()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.manager.IsLeader() {
		c.logger.Debug().Msg("Not leader; skipping reconciliation")
		return nil
	}

	marked, err := c.manager.MarkStaleInstancesDown()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to expire stale instances")
	}
	for _, id := range marked {
		c.logger.Warn().Str("instance_id", id).Msg("Instance missed heartbeats, marked down")
	}

	snapshot, err := c.manager.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot cluster state: %w", err)
	}

	resources, err := c.manager.ListResources()
	if err != nil {
		return fmt.Errorf("failed to list resources: %w", err)
	}

	for _, resource := range resources {
		if err := c.reconcileResource(resource, snapshot); err != nil {
			c.logger.Error().
				Err(err).
				Str("resource", resource.Name).
				Msg("Failed to rebalance resource")
			metrics.RebalancesTotal.WithLabelValues("error").Inc()
			continue
		}
	}

	return nil
}

// reconcileResource recomputes one resource's ideal state and persists it
// when the assignment changed
func (c *Controller) reconcileResource(resource *types.Resource, snapshot *types.ClusterSnapshot) error {
	currentIdeal, err := c.manager.GetIdealState(resource.Name)
	if err != nil {
		currentIdeal = initialIdealState(resource)
	}

	timer := metrics.NewTimer()
	newIdeal, err := c.strategy.ComputeNewIdealState(resource.Name, currentIdeal, snapshot.CurrentState, snapshot)
	timer.ObserveDuration(metrics.RebalanceDuration)
	if err != nil {
		return err
	}

	placed := 0
	for _, instances := range newIdeal.ListFields {
		placed += len(instances)
	}
	metrics.ReplicasPlaced.WithLabelValues(resource.Name).Set(float64(placed))
	if expected, ok := expectedSlots(newIdeal, snapshot); ok {
		dropped := expected - placed
		if dropped < 0 {
			dropped = 0
		}
		metrics.ReplicasDropped.WithLabelValues(resource.Name).Set(float64(dropped))
	}

	if assignmentsEqual(currentIdeal.ListFields, newIdeal.ListFields) {
		c.logger.Debug().Str("resource", resource.Name).Msg("Assignment unchanged")
		metrics.RebalancesTotal.WithLabelValues("unchanged").Inc()
		return nil
	}

	if err := c.manager.SaveIdealState(newIdeal); err != nil {
		return fmt.Errorf("failed to save ideal state: %w", err)
	}

	metrics.RebalancesTotal.WithLabelValues("rebalanced").Inc()
	c.manager.PublishEvent(events.EventResourceRebalanced, "Resource rebalanced", map[string]string{
		"resource": resource.Name,
	})
	c.logger.Info().
		Str("resource", resource.Name).
		Int("partitions", newIdeal.NumPartitions).
		Int("replicas_placed", placed).
		Int("live_instances", len(snapshot.LiveInstances)).
		Msg("Persisted new ideal state")

	return nil
}

// initialIdealState seeds the first ideal state for a resource that has
// never been rebalanced
func initialIdealState(resource *types.Resource) *types.IdealState {
	return &types.IdealState{
		Resource:                 resource.Name,
		Mode:                     types.RebalanceModeAuto,
		StateModel:               resource.StateModel,
		Replicas:                 resource.Replicas,
		MaxPartitionsPerInstance: resource.MaxPartitionsPerInstance,
		NumPartitions:            resource.NumPartitions,
		ListFields:               make(map[string][]string),
		MapFields:                make(map[string]map[string]string),
	}
}

// expectedSlots derives how many replica slots the assignment should fill
// when nothing binds, for the dropped-replicas gauge
func expectedSlots(is *types.IdealState, snapshot *types.ClusterSnapshot) (int, bool) {
	def, ok := snapshot.StateModels[is.StateModel]
	if !ok {
		return 0, false
	}
	replicas := len(snapshot.LiveInstances)
	if is.Replicas != statemodel.CountEveryLiveInstance {
		n, err := strconv.Atoi(is.Replicas)
		if err != nil {
			return 0, false
		}
		replicas = n
	}
	counts := statemodel.ResolveStateCounts(def, len(snapshot.LiveInstances), replicas)
	return counts.TotalReplicas() * is.NumPartitions, true
}

// assignmentsEqual compares two list-field sets
func assignmentsEqual(a, b map[string][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for partition, la := range a {
		lb, ok := b[partition]
		if !ok || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if la[i] != lb[i] {
				return false
			}
		}
	}
	return true
}
