/*
Package rebalance computes partition replica placements for Burrow clusters.

Compute is a pure function from a cluster snapshot to a new assignment. It is
the core of the controller: every reconciliation cycle funnels into it, and
everything else in the repository exists to feed it inputs or persist its
output. The computation balances several goals that must hold at once across
arbitrary cluster transitions: even load, placement stability, anti-affinity,
per-instance capacity caps, and byte-for-byte determinism.

# Architecture

One invocation runs a fixed pipeline over per-call working records:

	┌──────────────────── PLACEMENT PIPELINE ─────────────────────┐
	│                                                              │
	│  Inputs: Spec, allInstances, liveInstances, currentMapping   │
	│                           │                                  │
	│                           ▼                                  │
	│  ┌────────────────────────────────────────────┐             │
	│  │  1. Setup                                   │             │
	│  │  - Build a node record per known instance   │             │
	│  │  - Distribute capacity over live instances  │             │
	│  │    (floor + remainder, optional cap)        │             │
	│  └──────────────────┬─────────────────────────┘             │
	│                     ▼                                        │
	│  ┌────────────────────────────────────────────┐             │
	│  │  2. Preferred plan                          │             │
	│  │  - PlacementScheme over ALL instances       │             │
	│  │  - Ignores liveness (stability anchor)      │             │
	│  └──────────────────┬─────────────────────────┘             │
	│                     ▼                                        │
	│  ┌────────────────────────────────────────────┐             │
	│  │  3. Classification of currentMapping        │             │
	│  │  - Pass A: occurrences at preferred homes   │             │
	│  │  - Pass B: occurrences placed elsewhere     │             │
	│  │  - Leftover replicas: orphan set            │             │
	│  └──────────────────┬─────────────────────────┘             │
	│                     ▼                                        │
	│  ┌────────────────────────────────────────────┐             │
	│  │  4. Transformation passes                   │             │
	│  │  - Promote: non-preferred back home         │             │
	│  │  - Place orphans: circular scan from hash   │             │
	│  │  - Drain: move excess off overfull nodes    │             │
	│  └──────────────────┬─────────────────────────┘             │
	│                     ▼                                        │
	│  ┌────────────────────────────────────────────┐             │
	│  │  5. Emission                                │             │
	│  │  - Map fields: partition -> instance->state │             │
	│  │  - List fields: partition -> ordered ids    │             │
	│  └────────────────────────────────────────────┘             │
	└──────────────────────────────────────────────────────────────┘

# Core Components

Spec:
  - Resource name, ordered partition list, resolved StateCounts
  - MaxPartitionsPerInstance cap (0 or negative means unlimited)
  - Optional placement Scheme (nil selects the default scheme)

replica:
  - Value record identifying (partition, replicaIndex)
  - Canonical string "partition|index" used for hashing
  - Orders by (partition, index) with numeric index comparison

node:
  - Per-invocation working record for one instance
  - capacity is the fixed target for the round
  - currentlyAssigned is the only field the passes mutate
  - preferred and nonPreferred hold the replicas placed so far

canAdd predicate:
  - Instance must be alive
  - currentlyAssigned must be below capacity
  - Instance must not already host any replica of the partition

# Capacity Model

Total replica slots are numReplicas x len(partitions). Capacity is spread
over live instances in caller-supplied order:

	floor     = totalSlots / liveCount
	remainder = totalSlots % liveCount

	instance[0..remainder-1] capacity = floor + 1
	instance[remainder..]    capacity = floor

When MaxPartitionsPerInstance is positive, each capacity is additionally
capped by it. Capacities over live instances sum to totalSlots exactly
unless the cap binds; capped clusters drop the slots that no instance can
legally accept.

Instances in allInstances but not in liveInstances get capacity 0 and are
never alive, so they appear in the preferred plan (keeping the plan stable
while instances bounce) but can never receive placements.

# Placement Goals

Even load:
  - Floor + remainder capacity keeps per-instance counts within 1
  - The drain pass enforces the target after classification

Stability:
  - Replicas at their preferred instance are never moved
  - A replica placed elsewhere moves only when its donor is over capacity
  - Orphan scan start points derive from a stable hash, so the same orphan
    lands on the same instance across invocations

Anti-affinity:
  - canAdd rejects a second replica of the same partition on one instance
  - Holds at every intermediate step, not just at the end

Determinism:
  - Partitions iterate in caller order
  - Instance maps inside currentMapping are walked in allInstances order
  - The orphan set is sorted; the non-preferred queue keeps insertion order
  - The scan-start hash is the 31-multiplier string hash, identical on
    every platform
  - Two controllers computing the same inputs emit the same output

# Classification Semantics

Replicas of one partition are interchangeable. An occurrence in
currentMapping claims the first unclaimed replica index that fits, which
may differ from the index the instance served before. Feeding an assignment
back through Compute therefore reindexes once and then reaches a fixpoint;
the instance sets never change during reclassification, only the index
bookkeeping. The convergence tests in rebalance_test.go pin this behavior.

# Failure Modes

The computation never returns an error. All degraded outcomes are soft:

  - Empty live set: an empty assignment is returned immediately
  - Unplaceable orphan: the replica is omitted from the output and a
    warning is logged
  - Undrainable overfull instance: the instance keeps its excess, a warning
    is logged, and the output still includes the excess replicas
  - Scheme returns an unknown instance id: the replica is left unassigned
    and a warning is logged

Callers distinguish clean success from degraded success only by log output;
the returned assignment is always well formed.

# Usage

Computing an assignment:

	counts := statemodel.NewStateCount()
	counts.Set("MASTER", 1)
	counts.Set("SLAVE", 2)

	spec := rebalance.Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1", "db_2"},
		StateCounts: counts,
	}

	assignment := rebalance.Compute(spec,
		[]string{"n0", "n1", "n2"},  // all known instances
		[]string{"n0", "n1"},        // live subset
		currentMapping)

	for partition, instances := range assignment.ListFields {
		fmt.Println(partition, instances)
	}

Reacting to instance loss:

	// The caller removes the dead instance from liveInstances and drops
	// its occurrences from currentMapping. Its replicas orphan and are
	// re-placed on the survivors.
	assignment := rebalance.Compute(spec, all, liveWithoutDead, projected)

# Concurrency

The computation is single-threaded per invocation and mutates only its own
working records. Inputs are treated as read-only and are never aliased into
the output. Multiple invocations may run in parallel on disjoint inputs
with no shared state and no locking.

There are no suspension points, no I/O, and no timers. A host that needs
cancellation simply discards the return value; the computation is bounded
and fast.

# Performance Characteristics

Worst-case complexity per invocation:

  - Preferred plan: O(partitions x replicas)
  - Classification: O(occurrences x replicas)
  - Promote: O(nonPreferred)
  - Orphan placement: O(orphans x liveInstances)
  - Drain: O(excess x liveInstances)
  - Overall: O(replicas x partitions x liveInstances)

For a typical resource (64 partitions, 3 replicas, 20 live instances) a
computation completes in well under a millisecond. Memory is bounded by one
node record per instance plus one replica record per slot, all released
when the call returns.

# Troubleshooting

Partition lists shorter than the replica count:

 1. Check for "Unable to place replica" warnings; the cluster may not have
    enough legal slots (MaxPartitionsPerInstance too low, or fewer live
    instances than replicas per partition)
 2. Remember the algorithm is greedy, not optimal: rare configurations
    admit a feasible assignment the greedy scan misses

Uneven distribution:

 1. Verify the caller supplies liveInstances in a stable order; the
    remainder distribution follows that order
 2. Check for "remains over capacity after drain" warnings

Unexpected movement between cycles:

 1. Confirm allInstances is stable; the preferred plan is a function of the
    full instance list, and membership churn there moves preferred homes
 2. Confirm currentMapping reflects the previous output (missing
    occurrences re-orphan their replicas)

# Worked Example

Three partitions, MASTER/SLAVE (one each), three live instances. The
default scheme's preferred plan in the n == p regime:

	db_0: replica 0 -> n0, replica 1 -> n1
	db_1: replica 0 -> n1, replica 1 -> n2
	db_2: replica 0 -> n2, replica 1 -> n0

From an empty mapping, all six replicas are orphans; the hash scan fills
each instance to its capacity of two. Now n1 dies. The driver projects its
occurrences out of the mapping, the two replicas it held orphan, and the
survivors (capacity three each) absorb them:

	before: n0: 2 replicas   n1: 2 replicas   n2: 2 replicas
	after:  n0: 3 replicas                    n2: 3 replicas

Every partition still has two replicas on two distinct instances. When n1
returns, capacities drop back to two and the drain and promote passes
migrate replicas home over the following cycle.

# Monitoring

The algorithm itself only logs; the controller translates its outputs into
metrics worth alerting on:

  - burrow_replicas_dropped above zero: the warning paths fired, some
    partition is under-replicated
  - burrow_rebalances_total{outcome="rebalanced"} rate: sustained movement
    means membership churn or an unstable input ordering
  - Warn-level log messages from component=rebalance enumerate exactly
    which replica or instance degraded

# Best Practices

Do:
  - Keep liveInstances and allInstances in a stable, sorted order
  - Project dead instances' occurrences out of currentMapping before
    calling (pkg/strategy does this for you)
  - Resolve StateCounts once per computation and reuse the Spec

Don't:
  - Mutate the returned assignment's maps in place while persisting
  - Call with currentMapping ids outside allInstances (contract breach)
  - Expect optimal placement; the passes are greedy by design

# See Also

  - pkg/placement for the preferred-location scheme contract
  - pkg/statemodel for replica counts and state derivation
  - pkg/strategy for the snapshot-to-assignment driver
  - pkg/controller for the loop that invokes the pipeline
*/
package rebalance
