/*
Package statemodel resolves state model definitions into concrete replica
counts.

A state model names the roles replicas of a partition can hold (for example
MASTER/SLAVE or ONLINE/OFFLINE) in priority order, with a per-state count
specifier. ResolveStateCounts turns a definition plus the current
live-instance count and replica budget into a StateCount, the ordered
state-to-count mapping the placement algorithm consumes.

# Architecture

	┌──────────────── STATE COUNT RESOLUTION ────────────────┐
	│                                                         │
	│  StateModelDefinition          liveCount, totalReplicas │
	│  ┌───────────────────┐                 │                │
	│  │ MASTER  count="1" │                 │                │
	│  │ SLAVE   count="R" │◄────────────────┘                │
	│  │ (priority order)  │                                  │
	│  └─────────┬─────────┘                                  │
	│            ▼                                            │
	│  ┌───────────────────────────────────┐                 │
	│  │        ResolveStateCounts          │                 │
	│  │  "N" -> liveCount                  │                 │
	│  │  "R" -> deferred remainder         │                 │
	│  │  "3" -> recorded if positive       │                 │
	│  │  else -> state omitted             │                 │
	│  └─────────┬─────────────────────────┘                 │
	│            ▼                                            │
	│  ┌───────────────────────────────────┐                 │
	│  │  StateCount (ordered)              │                 │
	│  │  MASTER -> 1                       │                 │
	│  │  SLAVE  -> 2                       │                 │
	│  └─────────┬─────────────────────────┘                 │
	│            ▼                                            │
	│  replicaIdx 0 -> MASTER                                 │
	│  replicaIdx 1 -> SLAVE                                  │
	│  replicaIdx 2 -> SLAVE                                  │
	└─────────────────────────────────────────────────────────┘

# Count Specifiers

Each state in a definition carries a CountSpec string:

  - Numeric ("1", "2", ...): that many replicas, recorded when positive
  - "N": one replica per live instance (full replication states)
  - "R": the remainder of the replica budget after all numeric states;
    at most one state per model may use it, and only the first is honored

Resolution walks the priority list once. Numeric counts subtract from a
running remainder; "R" is deferred and assigned whatever is left, provided
the leftover is positive. Specifiers that fail to parse, and non-positive
numeric counts, silently omit the state: the state simply contributes zero
replicas, mirroring how an operator typo should degrade rather than halt
rebalancing.

# Ordering Contract

The ordering of a StateCount is significant and is part of its contract.
Replica indices are carved out of the counts in priority order:

	counts:  MASTER -> 1, SLAVE -> 2
	index 0: MASTER      (first count[MASTER] indices)
	index 1: SLAVE       (next count[SLAVE] indices)
	index 2: SLAVE

Index 0 always carries the highest priority state, which is why list-field
emission downstream can recover states from positions alone. Two
StateCounts with the same entries in different orders describe different
assignments.

# Core Components

StateCount:
  - Ordered mapping of state name to positive count
  - Set appends or overwrites in place; Get, States, Len accessors
  - TotalReplicas sums the counts (replica slots per partition)
  - StateForReplica maps an index to its state
  - ReplicaStateMap materializes the full index-to-state table

ResolveStateCounts:
  - One-pass resolution of a definition against live count and budget

# Usage

Resolving the built-in MasterSlave model for 3 replicas:

	def := &types.StateModelDefinition{
		Name: "MasterSlave",
		States: []types.StateSpec{
			{Name: "MASTER", CountSpec: "1"},
			{Name: "SLAVE", CountSpec: "R"},
		},
	}

	counts := statemodel.ResolveStateCounts(def, liveCount, 3)
	counts.TotalReplicas()        // 3
	counts.StateForReplica(0)     // "MASTER", true
	counts.StateForReplica(2)     // "SLAVE", true

Building a StateCount by hand (tests, simulations):

	counts := statemodel.NewStateCount()
	counts.Set("LEADER", 1)
	counts.Set("STANDBY", 2)

# Built-in Models

pkg/manager registers three definitions on bootstrap:

  - MasterSlave: MASTER count 1, SLAVE count R
  - LeaderStandby: LEADER count 1, STANDBY count R
  - OnlineOffline: ONLINE count R

Custom models are registered through the admin API or burrow apply with a
StateModel manifest.

# Edge Cases

  - Remainder fully consumed: numeric states that use up the budget leave
    the "R" state omitted (zero replicas)
  - Multiple "R" states: only the first in priority order is honored
  - Empty resolution: a model whose specifiers all fail yields a StateCount
    with TotalReplicas 0, which produces an empty assignment downstream

# Troubleshooting

A state never appears in assignments:

 1. Check the specifier parses as a positive integer, "N", or "R"
 2. Check the numeric states did not consume the whole budget before the
    "R" state's turn

Replica counts differ from the resource's Replicas field:

 1. "N" states scale with the live set, not the configured replica number
 2. The resource-level "N" specifier is resolved by pkg/strategy before
    this package runs

# Performance Characteristics

Resolution is a single pass over the priority list with integer parsing;
StateCount accessors are O(1) map lookups plus an O(states) walk for
StateForReplica. The controller resolves once per resource per cycle, so
none of this is hot. ReplicaStateMap materializes the full table and is
meant for emission-style consumers, not per-replica queries in a loop.

# Best Practices

Do:
  - List states in strict priority order; index 0 is the highest role
  - Use "R" for the elastic tail state (SLAVE, STANDBY, ONLINE)
  - Keep exactly one "R" state per model

Don't:
  - Rely on a state with specifier "0" appearing anywhere; it is omitted
  - Reuse a StateCount across computations with different live counts
    when the model contains "N"

# See Also

  - pkg/types for StateModelDefinition and StateSpec
  - pkg/rebalance for how replica indices map to emitted states
  - pkg/manager for the built-in model registry
*/
package statemodel
