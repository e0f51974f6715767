/*
Package placement defines the pluggable preferred-location scheme.

A Scheme decides, for every (partition, replica) pair, which instance the
replica would ideally live on. The rebalance algorithm treats that choice as
the target of stability: replicas already at their preferred location stay
put, and displaced replicas migrate back when capacity allows. The scheme is
consulted over the full instance list, live or not, so preferred homes do
not churn while instances bounce.

# Architecture

	┌─────────────────── PREFERRED PLAN ───────────────────┐
	│                                                       │
	│  (partitionIdx, replicaIdx,                           │
	│   numPartitions, numReplicas, allInstances)           │
	│                      │                                │
	│                      ▼                                │
	│  ┌─────────────────────────────────────┐             │
	│  │         Scheme.GetLocation          │             │
	│  │  - Pure and deterministic           │             │
	│  │  - Must return an id from           │             │
	│  │    allInstances                     │             │
	│  └───────────────┬─────────────────────┘             │
	│                  │                                    │
	│       ┌──────────┴──────────┐                        │
	│       ▼                     ▼                        │
	│  ┌──────────┐        ┌──────────────┐               │
	│  │ Default  │        │   Custom     │               │
	│  │ Scheme   │        │  (rack/zone  │               │
	│  │ (modulo) │        │   aware...)  │               │
	│  └──────────┘        └──────────────┘               │
	└───────────────────────────────────────────────────────┘

# Contract

GetLocation must be:

  - Pure: no side effects, no reads of mutable state during a computation
  - Deterministic: the same arguments always produce the same id
  - Closed: the returned id must be present in allInstances

The rebalance algorithm calls the scheme once per replica slot per
computation. A scheme that violates determinism breaks the controller's
convergence guarantee (two controllers computing the same snapshot would
disagree), so schemes must never consult clocks, random sources, or state
that changes between invocations.

The Init hook runs once before a scheme is used. It exists for schemes that
rank instances using cluster state; they capture a ClusterAccessor there.
DefaultScheme's Init is a no-op.

# Default Scheme

DefaultScheme spreads replicas with modular arithmetic. Three regimes keep
replicas of one partition on distinct instances whether there are more
instances than partitions, exactly as many, or fewer:

	n = len(allInstances), p = numPartitions

	n > p:   index = (partitionIdx + replicaIdx*p) % n
	n == p:  index = ((partitionIdx + replicaIdx*p) % n + replicaIdx) % n
	n < p:   index = (partitionIdx + replicaIdx) % n

Worked example, 3 partitions x 2 replicas on 3 instances (n == p regime):

	partition 0: replica 0 -> n0, replica 1 -> n1
	partition 1: replica 0 -> n1, replica 1 -> n2
	partition 2: replica 0 -> n2, replica 1 -> n0

Each instance is the preferred home of exactly two replicas, and no
partition repeats an instance. In the n > p regime the replicaIdx*p stride
usually separates replicas but can collide when n divides the stride; the
rebalance algorithm's canAdd predicate still guarantees anti-affinity in
the final output regardless.

# Usage

Using the default scheme:

	scheme := placement.NewDefaultScheme()
	id := scheme.GetLocation(0, 1, 3, 2, []string{"n0", "n1", "n2"})
	// id == "n1"

Implementing a custom scheme:

	// RackAwareScheme prefers spreading replicas across racks.
	type RackAwareScheme struct {
		racks map[string]string // instance id -> rack
	}

	func (s *RackAwareScheme) Init(accessor placement.ClusterAccessor) {
		instances, err := accessor.ListInstances()
		if err != nil {
			return
		}
		s.racks = make(map[string]string, len(instances))
		for _, inst := range instances {
			s.racks[inst.ID] = inst.Tags["rack"]
		}
	}

	func (s *RackAwareScheme) GetLocation(partitionIdx, replicaIdx,
		numPartitions, numReplicas int, allInstances []string) string {
		// Derive a deterministic rack-spread choice from the arguments
		// and the rack map captured at Init time.
		...
	}

Wiring a custom scheme into the driver:

	strategy.NewAutoRebalanceStrategyWithScheme(&RackAwareScheme{})

# Design Patterns

Capability set over inheritance:
  - The scheme is a pure function plus an optional initialization hook
  - Schemes that need no cluster handles ignore the accessor entirely

Liveness-blind planning:
  - The preferred plan covers dead instances on purpose; when an instance
    returns, its replicas migrate home instead of reshuffling the cluster

# Troubleshooting

Replicas never return to a recovered instance:

 1. Confirm the instance id is present in allInstances when the scheme runs
 2. Check that donors are actually over capacity; the promote pass only
    moves replicas off overloaded instances

Scheme returns ids the cluster does not know:

 1. The rebalance pass logs "Placement scheme returned unknown instance"
    and leaves the replica unassigned; fix the scheme's index arithmetic

# Performance Characteristics

GetLocation is three integer operations and a slice index. The rebalance
pipeline calls it partitions x replicas times per computation; for a
64-partition, 3-replica resource that is 192 calls, far below profiling
noise. Custom schemes should stay in the same cost class: the scheme runs
inside every reconciliation cycle on the leader.

# Best Practices

Do:
  - Capture cluster state once in Init and treat it as immutable
  - Derive every choice from the call arguments plus Init-time data
  - Return ids from allInstances and nothing else

Don't:
  - Read clocks, random sources, or live cluster state in GetLocation
  - Assume allInstances is sorted; use it positionally as given
  - Encode liveness into the scheme (the algorithm handles liveness)

# See Also

  - pkg/rebalance for how the preferred plan anchors stability
  - pkg/strategy for scheme selection per controller
*/
package placement
