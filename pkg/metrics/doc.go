/*
Package metrics exposes Prometheus metrics for the Burrow controller.

Metrics cover the cluster view (instances by status, resource count), the
placement pipeline (replicas placed and dropped per resource, rebalance
durations and outcomes), the reconciliation loop, and Raft leadership. All
metrics are registered at package init and served through the standard
promhttp handler.

# Architecture

	┌──────────────────── METRICS SYSTEM ───────────────────┐
	│                                                        │
	│  Sources                                               │
	│  ┌────────────┐ ┌────────────┐ ┌─────────────────┐   │
	│  │ controller │ │  manager   │ │ MetricsCollector │   │
	│  │ (timers,   │ │ (Raft      │ │ (15s gauge       │   │
	│  │  outcomes) │ │  commits)  │ │  refresh)        │   │
	│  └─────┬──────┘ └─────┬──────┘ └────────┬────────┘   │
	│        │              │                 │             │
	│        └──────────────┼─────────────────┘             │
	│                       ▼                               │
	│  ┌──────────────────────────────────────┐            │
	│  │     Prometheus default registry       │            │
	│  │     (MustRegister at init)            │            │
	│  └──────────────────┬───────────────────┘            │
	│                     ▼                                 │
	│  ┌──────────────────────────────────────┐            │
	│  │  GET /metrics (pkg/api, promhttp)     │            │
	│  └──────────────────────────────────────┘            │
	└────────────────────────────────────────────────────────┘

# Metric Catalog

Cluster state (gauges, refreshed by the manager's collector):

	burrow_instances_total{status}      instances by live/down/unknown
	burrow_resources_total              managed resource count
	burrow_raft_is_leader               1 on the leader, 0 elsewhere

Placement pipeline:

	burrow_replicas_placed{resource}    replicas in the last assignment
	burrow_replicas_dropped{resource}   slots left unfilled last cycle
	burrow_rebalance_duration_seconds   per-resource computation time
	burrow_rebalances_total{outcome}    rebalanced / unchanged / error

Reconciliation loop:

	burrow_reconciliation_duration_seconds   full cycle time
	burrow_reconciliation_cycles_total       cycles run (leader or not)

Raft:

	burrow_raft_commit_duration_seconds      Apply round-trip time

# Timer

Timer is a small helper for recording operation durations into histograms:

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RebalanceDuration)

	// labeled variant
	timer.ObserveDurationVec(someHistogramVec, "db")

	// raw elapsed time
	elapsed := timer.Duration()

# Usage

Serving metrics (pkg/api wires this automatically):

	http.Handle("/metrics", metrics.Handler())

Recording an outcome:

	metrics.RebalancesTotal.WithLabelValues("rebalanced").Inc()
	metrics.ReplicasPlaced.WithLabelValues("db").Set(float64(placed))

# Collector

The background gauge collector lives in pkg/manager (MetricsCollector),
which owns the cluster state the gauges report; this package stays free of
dependencies on the rest of the tree so any package may record metrics
without cycles.

# Alerting Suggestions

No leader:

	max(burrow_raft_is_leader) == 0 for 1m
	Action: check controller quorum and Raft logs

Reconciliation stalled:

	rate(burrow_reconciliation_cycles_total[5m]) == 0
	Action: controller loop stopped; check process and logs

Capacity pressure:

	sum(burrow_replicas_dropped) > 0
	Action: add instances, raise per-instance caps, or shrink replica
	counts; dropped slots mean under-replicated partitions

Error outcomes:

	rate(burrow_rebalances_total{outcome="error"}[5m]) > 0
	Action: check controller logs for per-resource failures (usually a
	missing state model)

# Design Patterns

Register at init:
  - All metrics register in this package's init; importing any package
    that imports metrics makes the full catalog visible on /metrics, and
    double registration is impossible

Gauges for last-known, counters for flow:
  - Placement gauges describe the latest assignment; outcome counters
    accumulate history for rate queries

# Troubleshooting

Metric absent from /metrics:

 1. Labeled vectors appear only after their first WithLabelValues call;
    plain gauges and histograms appear immediately

Instance gauge counts look stale:

 1. The collector refreshes every 15 seconds; transient states shorter
    than that are invisible by design

# Best Practices

Do:
  - Use Timer with defer for any operation worth a histogram
  - Label by resource only; labeling by partition or instance would blow
    up cardinality on large clusters
  - Scrape every controller; follower metrics reveal failover readiness

Don't:
  - Register package-local metrics outside init (double registration
    panics)
  - Derive alerts from gauge absence; scrape failures look identical

# See Also

  - pkg/manager for the gauge collector
  - pkg/controller for pipeline instrumentation points
  - Prometheus client: https://github.com/prometheus/client_golang
*/
package metrics
