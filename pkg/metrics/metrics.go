package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cluster metrics
	InstancesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_instances_total",
			Help: "Total number of instances by status",
		},
		[]string{"status"},
	)

	ResourcesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_resources_total",
			Help: "Total number of managed resources",
		},
	)

	// Placement metrics
	ReplicasPlaced = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_replicas_placed",
			Help: "Number of replicas placed in the last computed assignment, by resource",
		},
		[]string{"resource"},
	)

	ReplicasDropped = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_replicas_dropped",
			Help: "Replica slots left unfilled in the last computed assignment, by resource",
		},
		[]string{"resource"},
	)

	RebalanceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "burrow_rebalance_duration_seconds",
			Help:    "Time taken to compute one resource assignment in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RebalancesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_rebalances_total",
			Help: "Total number of rebalance computations by outcome",
		},
		[]string{"outcome"},
	)

	// Controller loop metrics
	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "burrow_reconciliation_duration_seconds",
			Help:    "Time taken for a full reconciliation cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_reconciliation_cycles_total",
			Help: "Total number of reconciliation cycles",
		},
	)

	// Raft metrics
	RaftLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_raft_is_leader",
			Help: "Whether this node is the Raft leader (1 = leader, 0 = follower)",
		},
	)

	RaftCommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "burrow_raft_commit_duration_seconds",
			Help:    "Time taken to commit a Raft log entry in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(InstancesTotal)
	prometheus.MustRegister(ResourcesTotal)
	prometheus.MustRegister(ReplicasPlaced)
	prometheus.MustRegister(ReplicasDropped)
	prometheus.MustRegister(RebalanceDuration)
	prometheus.MustRegister(RebalancesTotal)
	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(ReconciliationCyclesTotal)
	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftCommitDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
