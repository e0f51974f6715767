/*
Package strategy adapts cluster snapshots into placement computations.

AutoRebalanceStrategy is the driver between the controller and the
rebalance algorithm: it resolves the resource's state model into concrete
replica counts, merges reported current states with pending transitions,
sanitizes the merged view, runs the computation, and wraps the output into
a new ideal state record.

# Architecture

	┌────────────────── STRATEGY DRIVER ─────────────────────┐
	│                                                         │
	│  Inputs: resourceName, currentIdealState,               │
	│          currentStateOutput, ClusterSnapshot            │
	│                        │                                │
	│                        ▼                                │
	│  ┌───────────────────────────────────────┐             │
	│  │ 1. Resolve replica count              │             │
	│  │    "N" -> len(liveInstances)          │             │
	│  └─────────────────┬─────────────────────┘             │
	│                    ▼                                    │
	│  ┌───────────────────────────────────────┐             │
	│  │ 2. Resolve state counts               │             │
	│  │    statemodel.ResolveStateCounts      │             │
	│  │    (missing model -> error, skip)     │             │
	│  └─────────────────┬─────────────────────┘             │
	│                    ▼                                    │
	│  ┌───────────────────────────────────────┐             │
	│  │ 3. Merge current mapping              │             │
	│  │    current + pending (pending wins)   │             │
	│  │    live instances only                │             │
	│  │    filter out-of-model states         │             │
	│  └─────────────────┬─────────────────────┘             │
	│                    ▼                                    │
	│  ┌───────────────────────────────────────┐             │
	│  │ 4. rebalance.Compute                  │             │
	│  └─────────────────┬─────────────────────┘             │
	│                    ▼                                    │
	│  ┌───────────────────────────────────────┐             │
	│  │ 5. Wrap into IdealState               │             │
	│  │    scalars inherited, mode = auto     │             │
	│  │    list fields replaced               │             │
	│  │    map fields left empty              │             │
	│  └───────────────────────────────────────┘             │
	└─────────────────────────────────────────────────────────┘

# Merge Semantics

The algorithm consumes one partition/instance/state view. The driver builds
it from two report layers:

 1. Current states: what participants last acknowledged
 2. Pending states: transitions issued but not yet acknowledged

Pending values overwrite current values for the same (partition, instance),
because the controller must plan against where replicas are going, not
where they were. After the merge, two filters apply:

  - Live instances only: a dead or disabled instance's persisted reports
    are stale, and keeping them would pin its replicas to an instance that
    can no longer serve them instead of letting them orphan and re-place
  - In-model states only: an instance transitioning to a state outside the
    resolved StateCount (for example OFFLINE) drops out of the mapping
    entirely, freeing its replica slot

The filter order matters: merge first, filter second, so a pending
out-of-model transition removes the entry rather than resurrecting the
stale current value underneath it.

# Output Contract

The returned ideal state:

  - Inherits the current ideal state's scalar fields (state model, replica
    specifier, partition count, per-instance cap)
  - Switches mode to auto
  - Replaces list fields with the algorithm's output
  - Leaves map fields empty: in auto mode replica states are derived
    downstream from list order and the state model

A missing state model definition is the one hard error: the driver returns
it and the controller skips the resource for the cycle, leaving the stored
ideal state untouched.

# Usage

Default scheme:

	s := strategy.NewAutoRebalanceStrategy()
	newIS, err := s.ComputeNewIdealState("db", currentIS, currentOutput, snapshot)
	if err != nil {
		return err // e.g. state model not registered
	}

Custom placement scheme:

	s := strategy.NewAutoRebalanceStrategyWithScheme(&RackAwareScheme{})

Full replication resources:

	// Resource.Replicas == "N": the driver resolves it against the live
	// set before state-count resolution, so every live instance gets one
	// replica of each partition.

# Integration Points

This package integrates with:

  - pkg/controller: calls ComputeNewIdealState once per resource per cycle
  - pkg/rebalance: the computation this package feeds
  - pkg/statemodel: replica count resolution
  - pkg/placement: scheme selection
  - pkg/types: snapshot and ideal state shapes

# Design Patterns

Thin driver, fat algorithm:
  - All placement intelligence lives in pkg/rebalance; this package only
    adapts shapes and applies input hygiene, which keeps the algorithm
    testable against raw inputs

Sanitize at the boundary:
  - The algorithm requires currentMapping ids drawn from allInstances;
    the driver guarantees it by construction, so the algorithm never
    defends against unknown ids

# Troubleshooting

Resource never gets an ideal state:

 1. Check controller logs for "state model ... not found"; register the
    model or fix the resource's StateModel field

Replicas pinned to a dead instance:

 1. Should not happen through this driver (live-only merge); if observed,
    verify the caller passes the same snapshot for live set and reports

Assignment ignores an in-flight transition:

 1. Confirm the pending state was reported (CurrentState.Pending) and the
    target state is part of the resolved model

# Performance Characteristics

The driver adds two linear passes over the reports (merge and filter) on
top of the computation itself; both are O(occurrences). Snapshot data is
read-only throughout, and the returned ideal state shares no storage with
the inputs, so a caller may persist it while computing the next resource.

# Best Practices

Do:
  - Reuse one strategy instance across cycles; it is stateless apart from
    the scheme
  - Pass the same snapshot to every resource in a cycle for a consistent
    view

Don't:
  - Mutate the snapshot between resources mid-cycle
  - Interpret an error as fatal; skip the resource and let the next cycle
    retry

# See Also

  - pkg/rebalance for the placement passes
  - pkg/controller for when computations run and how outputs persist
  - pkg/statemodel for specifier resolution
*/
package strategy
