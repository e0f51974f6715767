package strategy

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/placement"
	"github.com/cuemby/burrow/pkg/rebalance"
	"github.com/cuemby/burrow/pkg/statemodel"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/rs/zerolog"
)

// AutoRebalanceStrategy computes a resource's new ideal state from the
// cluster snapshot. It adapts snapshot data into the placement algorithm's
// inputs and wraps the output back into an ideal state record.
type AutoRebalanceStrategy struct {
	scheme placement.Scheme
	logger zerolog.Logger
}

// NewAutoRebalanceStrategy creates a strategy using the default placement scheme
func NewAutoRebalanceStrategy() *AutoRebalanceStrategy {
	return NewAutoRebalanceStrategyWithScheme(placement.NewDefaultScheme())
}

// NewAutoRebalanceStrategyWithScheme creates a strategy using a custom scheme
func NewAutoRebalanceStrategyWithScheme(scheme placement.Scheme) *AutoRebalanceStrategy {
	return &AutoRebalanceStrategy{
		scheme: scheme,
		logger: log.WithComponent("strategy"),
	}
}

// ComputeNewIdealState computes a fresh ideal state for the resource. The
// returned record inherits the current ideal state's scalar fields, switches
// mode to auto, and replaces the list fields with the algorithm's output.
// Map fields are not carried over; in auto mode replica states are derived
// downstream from the list fields.
func (s *AutoRebalanceStrategy) ComputeNewIdealState(
	resourceName string,
	currentIdealState *types.IdealState,
	currentStateOutput *types.CurrentStateOutput,
	snapshot *types.ClusterSnapshot,
) (*types.IdealState, error) {
	def, ok := snapshot.StateModels[currentIdealState.StateModel]
	if !ok {
		return nil, fmt.Errorf("state model %q not found for resource %s", currentIdealState.StateModel, resourceName)
	}

	replicas := resolveReplicaCount(currentIdealState.Replicas, len(snapshot.LiveInstances))
	stateCounts := statemodel.ResolveStateCounts(def, len(snapshot.LiveInstances), replicas)

	partitions := partitionList(resourceName, currentIdealState)
	allInstances := snapshot.InstanceIDs()
	currentMapping := mergeCurrentMapping(resourceName, currentStateOutput, stateCounts, snapshot.LiveInstances)

	spec := rebalance.Spec{
		Resource:                 resourceName,
		Partitions:               partitions,
		StateCounts:              stateCounts,
		MaxPartitionsPerInstance: currentIdealState.MaxPartitionsPerInstance,
		Scheme:                   s.scheme,
	}
	assignment := rebalance.Compute(spec, allInstances, snapshot.LiveInstances, currentMapping)

	newIdealState := &types.IdealState{
		Resource:                 resourceName,
		Mode:                     types.RebalanceModeAuto,
		StateModel:               currentIdealState.StateModel,
		Replicas:                 currentIdealState.Replicas,
		MaxPartitionsPerInstance: currentIdealState.MaxPartitionsPerInstance,
		NumPartitions:            currentIdealState.NumPartitions,
		ListFields:               assignment.ListFields,
		MapFields:                make(map[string]map[string]string),
		UpdatedAt:                time.Now(),
	}

	s.logger.Debug().
		Str("resource", resourceName).
		Int("partitions", len(partitions)).
		Int("replicas", replicas).
		Msg("Computed new ideal state")

	return newIdealState, nil
}

// resolveReplicaCount turns the resource-level replica specifier into a
// number. "N" means full replication: one replica per live instance.
func resolveReplicaCount(spec string, liveCount int) int {
	if spec == statemodel.CountEveryLiveInstance {
		return liveCount
	}
	n, err := strconv.Atoi(spec)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// partitionList returns the resource's ordered partition names, generated
// from the ideal state's partition count. Partition names already present in
// the ideal state's list fields are not consulted.
func partitionList(resourceName string, is *types.IdealState) []string {
	if is.NumPartitions <= 0 {
		return nil
	}
	res := types.Resource{Name: resourceName, NumPartitions: is.NumPartitions}
	return res.Partitions()
}

// mergeCurrentMapping merges reported current states with pending transitions
// into the partition/instance/state view the algorithm consumes. Pending
// values win when both exist for the same (partition, instance). States not
// present in the resolved state counts are filtered out.
//
// Only live instances contribute: a dead or disabled instance's persisted
// reports are stale, and keeping them would pin its replicas to an instance
// that can no longer serve them instead of letting them orphan and re-place.
func mergeCurrentMapping(
	resourceName string,
	output *types.CurrentStateOutput,
	stateCounts *statemodel.StateCount,
	liveInstances []string,
) map[string]map[string]string {
	merged := make(map[string]map[string]string)
	if output == nil {
		return merged
	}

	known := make(map[string]bool, len(liveInstances))
	for _, id := range liveInstances {
		known[id] = true
	}

	apply := func(states map[string]map[string]string) {
		for partition, byInstance := range states {
			for instanceID, state := range byInstance {
				if !known[instanceID] {
					continue
				}
				m, ok := merged[partition]
				if !ok {
					m = make(map[string]string)
					merged[partition] = m
				}
				m[instanceID] = state
			}
		}
	}

	// Pending transitions overwrite reported states, then the merged view is
	// filtered to states the resolved model knows about.
	apply(output.CurrentStateMap(resourceName))
	apply(output.PendingStateMap(resourceName))

	for partition, byInstance := range merged {
		for instanceID, state := range byInstance {
			if _, ok := stateCounts.Get(state); !ok {
				delete(byInstance, instanceID)
			}
		}
		if len(byInstance) == 0 {
			delete(merged, partition)
		}
	}

	return merged
}
