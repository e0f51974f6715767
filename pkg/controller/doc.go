/*
Package controller runs the rebalance loop.

The controller is reactive plumbing around the placement pipeline: on a
fixed interval it expires instances with stale heartbeats, snapshots
cluster state through the manager, and recomputes every resource's ideal
state with the auto-rebalance strategy. A computed assignment is persisted
only when it differs from the stored one, so a stable cluster produces no
writes.

# Architecture

	┌──────────────────── CONTROLLER LOOP ───────────────────┐
	│                  (every 10 seconds)                     │
	└───────────────────────┬────────────────────────────────┘
	                        │
	                        ▼
	              ┌──────────────────┐   not leader
	              │  IsLeader check  ├──────────────► skip cycle
	              └────────┬─────────┘
	                       ▼
	┌────────────────────────────────────────────────────────┐
	│  1. MarkStaleInstancesDown (heartbeat TTL)              │
	│  2. Snapshot cluster state (instances, models, reports) │
	│  3. For each resource:                                  │
	│     • Load current ideal state (or seed an empty one)   │
	│     • strategy.ComputeNewIdealState(...)                │
	│     • Compare list fields with the stored assignment    │
	│     • Persist + publish event only when changed         │
	└────────────────────────────────────────────────────────┘

# Leadership Gating

Only the Raft leader reconciles. Follower controllers tick but skip the
cycle, staying warm for failover; the moment a follower wins an election
its next tick starts computing. Skipped cycles are logged at debug level
and still count in the cycle metrics, which makes a cluster where nobody
reconciles visible on a dashboard.

# Persist-on-Change

The controller compares the computed list fields against the stored ideal
state and writes only on difference. This matters for two reasons:

  - Raft traffic: persisting runs a log append and fsync on every voter;
    a stable 100-resource cluster would otherwise commit 100 no-op writes
    per cycle
  - Observability: the resource.rebalanced event and the "Persisted new
    ideal state" log line fire only on real movement, so the event stream
    reads as a change journal

Map fields are not compared; in auto mode they are always empty and the
list fields fully determine the assignment.

# Statelessness

The loop keeps no state between cycles. All decisions are made from the
snapshot read at the start of the cycle, which makes the controller
resilient to restarts and trivial to test: a crashed controller that
restarts (or a follower that takes over) reaches the same conclusions from
the same store contents.

# Metrics

Each cycle and each resource computation feeds pkg/metrics:

  - burrow_reconciliation_cycles_total, burrow_reconciliation_duration_seconds
  - burrow_rebalance_duration_seconds per resource computation
  - burrow_rebalances_total{outcome="rebalanced|unchanged|error"}
  - burrow_replicas_placed{resource} and burrow_replicas_dropped{resource},
    where dropped is the shortfall against the expected slot count when
    nothing binds

# Usage

Running the controller:

	ctrl := controller.NewController(mgr)
	ctrl.SetInterval(10 * time.Second) // before Start
	ctrl.Start()
	defer ctrl.Stop()

Driving a single cycle (tests, CLI tooling):

	if err := ctrl.Reconcile(); err != nil {
		log.Errorf("reconcile failed", err)
	}

# Error Handling

A failing resource does not abort the cycle: the error is logged, the
error outcome is counted, and the loop moves to the next resource. Cycle
level failures (snapshot or resource listing errors) abort the cycle and
are retried on the next tick. The loop itself never exits on error; only
Stop ends it.

# Interval Tuning

The 10 second default balances reaction time against load:

  - Failover latency: an instance death is noticed within TTL + interval
  - For large clusters (hundreds of resources), raising the interval
    reduces steady-state snapshot work
  - For tests, call Reconcile directly instead of shrinking the interval

# Integration Points

This package integrates with:

  - pkg/manager: leadership checks, snapshots, stale-instance expiry,
    ideal-state persistence, event publishing
  - pkg/strategy: the per-resource computation
  - pkg/statemodel: expected-slot derivation for the dropped gauge
  - pkg/metrics: cycle and outcome instrumentation

# Troubleshooting

Nothing rebalances:

 1. Check burrow_raft_is_leader on each controller; exactly one must be 1
 2. Check resources exist (burrow resource ls) and their state models are
    registered

Assignments flap between two layouts:

 1. Confirm instance ids are stable; the snapshot orders instances by id
    and churn there moves capacities
 2. Look for instances oscillating around the heartbeat TTL

Replicas dropped (burrow_replicas_dropped > 0):

 1. The cluster lacks legal slots: raise MaxPartitionsPerInstance, add
    instances, or lower the replica count

# Performance Characteristics

Per cycle with R resources, I instances, P partitions per resource:

  - Snapshot: one store scan, O(I + reports)
  - Per resource: one ideal-state read, one computation
    (O(replicas x P x I)), one comparison, at most one write
  - Steady state (nothing changed): zero writes, zero Raft traffic beyond
    heartbeats

A 100-resource, 20-instance cluster completes a no-op cycle in a few
milliseconds; the ticker interval, not the work, dominates wall time.

# Failure Detection Walkthrough

An instance dies at t=0 with a 30s heartbeat TTL and a 10s interval:

	t=0        instance stops heartbeating
	t<=30s     still inside the TTL, cycles see it live, nothing moves
	t=30..40s  first cycle past the TTL: MarkStaleInstancesDown flips it,
	           the snapshot excludes it, its reports project out, its
	           replicas orphan and re-place on the survivors
	t=30..40s  the new ideal state persists, resource.rebalanced fires

Worst-case reaction is TTL + interval; tighten either for faster failover
at the cost of more false positives (TTL) or more snapshot work
(interval).

# Best Practices

Do:
  - Run the controller on every Raft voter; followers cost one leadership
    check per tick and give instant failover
  - Alert on burrow_replicas_dropped, not on rebalance counts; movement
    is normal, shortfall is not
  - Use Reconcile directly in tests instead of shrinking the interval

Don't:
  - Run two controller processes against one data directory
  - Treat resource.rebalanced events as a complete history (the event
    broker drops under pressure; the store is the source of truth)

# See Also

  - pkg/strategy for what one resource computation does
  - pkg/rebalance for the placement algorithm itself
  - pkg/manager for leadership and snapshot mechanics
*/
package controller
