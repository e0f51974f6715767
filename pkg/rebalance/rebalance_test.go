package rebalance

import (
	"io"
	"os"
	"reflect"
	"testing"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/placement"
	"github.com/cuemby/burrow/pkg/statemodel"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: log.ErrorLevel, JSONOutput: true, Output: io.Discard})
	os.Exit(m.Run())
}

func masterSlaveCounts(slaves int) *statemodel.StateCount {
	sc := statemodel.NewStateCount()
	sc.Set("MASTER", 1)
	sc.Set("SLAVE", slaves)
	return sc
}

func onlineCounts(n int) *statemodel.StateCount {
	sc := statemodel.NewStateCount()
	sc.Set("ONLINE", n)
	return sc
}

// mappingOf projects an assignment's map fields into the currentMapping
// shape, the way a participant fleet reporting exactly the assignment would
func mappingOf(a *types.ResourceAssignment) map[string]map[string]string {
	mapping := make(map[string]map[string]string, len(a.MapFields))
	for partition, byInstance := range a.MapFields {
		m := make(map[string]string, len(byInstance))
		for id, state := range byInstance {
			m[id] = state
		}
		mapping[partition] = m
	}
	return mapping
}

// instanceCounts tallies replicas per instance across all list fields
func instanceCounts(a *types.ResourceAssignment) map[string]int {
	counts := make(map[string]int)
	for _, instances := range a.ListFields {
		for _, id := range instances {
			counts[id]++
		}
	}
	return counts
}

// assertAntiAffinity checks that no instance appears twice in any
// partition's list
func assertAntiAffinity(t *testing.T, a *types.ResourceAssignment) {
	t.Helper()
	for partition, instances := range a.ListFields {
		seen := make(map[string]bool)
		for _, id := range instances {
			assert.False(t, seen[id], "instance %s appears twice for partition %s", id, partition)
			seen[id] = true
		}
	}
}

func TestComputeEmptyLiveSet(t *testing.T) {
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1"},
		StateCounts: masterSlaveCounts(2),
	}
	mapping := map[string]map[string]string{
		"db_0": {"n0": "MASTER"},
	}

	assignment := Compute(spec, []string{"n0", "n1"}, nil, mapping)

	assert.Empty(t, assignment.ListFields)
	assert.Empty(t, assignment.MapFields)
}

func TestComputeFreshCluster(t *testing.T) {
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1", "db_2"},
		StateCounts: masterSlaveCounts(1),
	}
	nodes := []string{"n0", "n1", "n2"}

	assignment := Compute(spec, nodes, nodes, nil)

	assertAntiAffinity(t, assignment)
	for _, partition := range spec.Partitions {
		assert.Len(t, assignment.ListFields[partition], 2, "partition %s", partition)

		// One MASTER and one SLAVE per partition
		states := make(map[string]int)
		for _, state := range assignment.MapFields[partition] {
			states[state]++
		}
		assert.Equal(t, map[string]int{"MASTER": 1, "SLAVE": 1}, states, "partition %s", partition)
	}

	// Six replicas over three instances: two each
	counts := instanceCounts(assignment)
	require.Len(t, counts, 3)
	for id, count := range counts {
		assert.Equal(t, 2, count, "instance %s", id)
	}
}

func TestComputeDeterminism(t *testing.T) {
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1", "db_2", "db_3"},
		StateCounts: masterSlaveCounts(2),
	}
	all := []string{"n0", "n1", "n2", "n3", "n4"}
	live := []string{"n0", "n1", "n3", "n4"}
	mapping := map[string]map[string]string{
		"db_0": {"n0": "MASTER", "n1": "SLAVE", "n2": "SLAVE"},
		"db_2": {"n3": "SLAVE"},
	}

	first := Compute(spec, all, live, mapping)
	for i := 0; i < 5; i++ {
		again := Compute(spec, all, live, mapping)
		require.True(t, reflect.DeepEqual(first, again), "run %d diverged", i)
	}
}

func TestComputeStabilityAtPreferredPlacement(t *testing.T) {
	// A mapping that already matches the preferred plan must come back
	// unchanged, replica for replica.
	partitions := []string{"db_0", "db_1", "db_2"}
	nodes := []string{"n0", "n1", "n2"}
	scheme := placement.NewDefaultScheme()
	counts := masterSlaveCounts(1)

	mapping := make(map[string]map[string]string)
	wantLists := make(map[string][]string)
	for i, partition := range partitions {
		mapping[partition] = make(map[string]string)
		for j := 0; j < 2; j++ {
			id := scheme.GetLocation(i, j, len(partitions), 2, nodes)
			state, _ := counts.StateForReplica(j)
			mapping[partition][id] = state
			wantLists[partition] = append(wantLists[partition], id)
		}
	}

	spec := Spec{Resource: "db", Partitions: partitions, StateCounts: counts}
	assignment := Compute(spec, nodes, nodes, mapping)

	assert.Equal(t, wantLists, assignment.ListFields)
	assert.Equal(t, mapping, mappingOf(assignment))
}

func TestComputeConvergesToFixpoint(t *testing.T) {
	// Feeding an assignment back reclassifies replica indices once; after
	// that the computation is a fixpoint.
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1", "db_2"},
		StateCounts: masterSlaveCounts(1),
	}
	nodes := []string{"n0", "n1", "n2"}

	first := Compute(spec, nodes, nodes, nil)
	second := Compute(spec, nodes, nodes, mappingOf(first))
	third := Compute(spec, nodes, nodes, mappingOf(second))

	assert.Equal(t, second.ListFields, third.ListFields)
	assert.Equal(t, second.MapFields, third.MapFields)

	// Reclassification never moves replicas between instances
	assert.Equal(t, instanceCounts(first), instanceCounts(second))
}

func TestComputeNodeLoss(t *testing.T) {
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1", "db_2"},
		StateCounts: masterSlaveCounts(1),
	}
	all := []string{"n0", "n1", "n2"}

	before := Compute(spec, all, all, nil)
	stable := Compute(spec, all, all, mappingOf(before))

	// n2 dies. Its reports die with it (the driver projects the mapping to
	// live instances), so its replicas orphan and must land on n0/n1.
	mapping := mappingOf(stable)
	for partition := range mapping {
		delete(mapping[partition], "n2")
	}
	after := Compute(spec, all, []string{"n0", "n1"}, mapping)

	assertAntiAffinity(t, after)
	counts := instanceCounts(after)
	assert.NotContains(t, counts, "n2")
	for _, partition := range spec.Partitions {
		assert.Len(t, after.ListFields[partition], 2, "partition %s", partition)
		assert.NotContains(t, after.MapFields[partition], "n2")
	}
	assert.Equal(t, 3, counts["n0"])
	assert.Equal(t, 3, counts["n1"])
}

func TestComputeNodeAddition(t *testing.T) {
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1", "db_2"},
		StateCounts: masterSlaveCounts(1),
	}
	all := []string{"n0", "n1", "n2"}

	before := Compute(spec, all, all, nil)
	stable := Compute(spec, all, all, mappingOf(before))

	// n3 joins; load spreads to 2/2/1/1
	grown := []string{"n0", "n1", "n2", "n3"}
	after := Compute(spec, grown, grown, mappingOf(stable))

	assertAntiAffinity(t, after)
	total := 0
	for id, count := range instanceCounts(after) {
		assert.GreaterOrEqual(t, count, 1, "instance %s", id)
		assert.LessOrEqual(t, count, 2, "instance %s", id)
		total += count
	}
	assert.Equal(t, 6, total)
}

func TestComputeMaxPartitionsPerInstance(t *testing.T) {
	// Six replica slots but only three permitted placements: one per
	// instance, the rest dropped.
	spec := Spec{
		Resource:                 "db",
		Partitions:               []string{"db_0", "db_1", "db_2"},
		StateCounts:              masterSlaveCounts(1),
		MaxPartitionsPerInstance: 1,
	}
	nodes := []string{"n0", "n1", "n2"}

	assignment := Compute(spec, nodes, nodes, nil)

	assertAntiAffinity(t, assignment)
	counts := instanceCounts(assignment)
	total := 0
	for id, count := range counts {
		assert.Equal(t, 1, count, "instance %s", id)
		total += count
	}
	assert.Equal(t, 3, total)
	for _, partition := range spec.Partitions {
		assert.LessOrEqual(t, len(assignment.ListFields[partition]), 2)
	}
}

func TestComputeCapacitySteadyState(t *testing.T) {
	// Capacity does not bind: every slot is filled.
	spec := Spec{
		Resource:                 "db",
		Partitions:               []string{"db_0", "db_1", "db_2", "db_3"},
		StateCounts:              masterSlaveCounts(1),
		MaxPartitionsPerInstance: 2,
	}
	nodes := []string{"n0", "n1", "n2", "n3"}

	assignment := Compute(spec, nodes, nodes, nil)

	for _, partition := range spec.Partitions {
		assert.Len(t, assignment.ListFields[partition], 2, "partition %s", partition)
	}
}

func TestComputeLoadBalance(t *testing.T) {
	// 5 partitions x 3 replicas over 4 instances: 15 slots, counts must be
	// 3 or 4 everywhere.
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1", "db_2", "db_3", "db_4"},
		StateCounts: masterSlaveCounts(2),
	}
	nodes := []string{"n0", "n1", "n2", "n3"}

	assignment := Compute(spec, nodes, nodes, nil)

	assertAntiAffinity(t, assignment)
	min, max := 1<<30, 0
	for _, count := range instanceCounts(assignment) {
		if count < min {
			min = count
		}
		if count > max {
			max = count
		}
	}
	assert.LessOrEqual(t, max-min, 1)
}

func TestComputeLiveOnlyPlacement(t *testing.T) {
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1"},
		StateCounts: masterSlaveCounts(1),
	}
	all := []string{"n0", "n1", "n2"}
	live := []string{"n0", "n1"}
	mapping := map[string]map[string]string{
		"db_0": {"n2": "MASTER"},
		"db_1": {"n2": "SLAVE", "n0": "MASTER"},
	}

	assignment := Compute(spec, all, live, mapping)

	assert.NotContains(t, instanceCounts(assignment), "n2")
	for partition := range assignment.MapFields {
		assert.NotContains(t, assignment.MapFields[partition], "n2")
	}
}

func TestComputePromotesToPreferred(t *testing.T) {
	// All three partitions piled on n0; their preferred homes are free, so
	// the promote pass moves them without touching the orphan machinery.
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1", "db_2"},
		StateCounts: onlineCounts(1),
	}
	nodes := []string{"n0", "n1", "n2"}
	mapping := map[string]map[string]string{
		"db_0": {"n0": "ONLINE"},
		"db_1": {"n0": "ONLINE"},
		"db_2": {"n0": "ONLINE"},
	}

	assignment := Compute(spec, nodes, nodes, mapping)

	assert.Equal(t, []string{"n0"}, assignment.ListFields["db_0"])
	assert.Equal(t, []string{"n1"}, assignment.ListFields["db_1"])
	assert.Equal(t, []string{"n2"}, assignment.ListFields["db_2"])
}

func TestComputeDrainsWhenPreferredDead(t *testing.T) {
	// db_0's preferred instance n0 is down and n1 is overfull, so the drain
	// pass must hand db_0 to n2 even though n2 is not preferred for it.
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1"},
		StateCounts: onlineCounts(1),
	}
	all := []string{"n0", "n1", "n2"}
	live := []string{"n1", "n2"}
	mapping := map[string]map[string]string{
		"db_0": {"n1": "ONLINE"},
		"db_1": {"n1": "ONLINE"},
	}

	assignment := Compute(spec, all, live, mapping)

	assertAntiAffinity(t, assignment)
	assert.Equal(t, []string{"n1"}, assignment.ListFields["db_1"])
	assert.Equal(t, []string{"n2"}, assignment.ListFields["db_0"])
}

func TestComputeUnplaceableReplicaDropped(t *testing.T) {
	// Two replicas, one live instance: anti-affinity drops the second slot.
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0"},
		StateCounts: masterSlaveCounts(1),
	}
	nodes := []string{"n0"}

	assignment := Compute(spec, nodes, nodes, nil)

	assert.Len(t, assignment.ListFields["db_0"], 1)
	assert.Len(t, assignment.MapFields["db_0"], 1)
}

func TestCanAdd(t *testing.T) {
	r0 := replica{partition: "db_0", index: 0}
	r1 := replica{partition: "db_0", index: 1}
	other := replica{partition: "db_1", index: 0}

	tests := []struct {
		name     string
		node     *node
		replica  replica
		expected bool
	}{
		{
			name:     "alive with room",
			node:     &node{id: "n0", isAlive: true, capacity: 2},
			replica:  r0,
			expected: true,
		},
		{
			name:     "not alive",
			node:     &node{id: "n0", capacity: 2},
			replica:  r0,
			expected: false,
		},
		{
			name:     "at capacity",
			node:     &node{id: "n0", isAlive: true, capacity: 1, currentlyAssigned: 1},
			replica:  r0,
			expected: false,
		},
		{
			name:     "already hosts the partition",
			node:     &node{id: "n0", isAlive: true, capacity: 4, preferred: []replica{r0}},
			replica:  r1,
			expected: false,
		},
		{
			name:     "hosts it as non-preferred",
			node:     &node{id: "n0", isAlive: true, capacity: 4, nonPreferred: []replica{r0}},
			replica:  r1,
			expected: false,
		},
		{
			name:     "different partition is fine",
			node:     &node{id: "n0", isAlive: true, capacity: 4, preferred: []replica{r0}},
			replica:  other,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.node.canAdd(tt.replica))
		})
	}
}

func TestCapacityDistribution(t *testing.T) {
	// 7 slots over 3 live instances: 3, 2, 2 in live-list order.
	spec := Spec{
		Resource:    "db",
		Partitions:  []string{"db_0", "db_1", "db_2", "db_3", "db_4", "db_5", "db_6"},
		StateCounts: onlineCounts(1),
	}
	live := []string{"n0", "n1", "n2"}

	c := newComputation(spec, live, live, log.WithComponent("test"))

	assert.Equal(t, 3, c.nodes["n0"].capacity)
	assert.Equal(t, 2, c.nodes["n1"].capacity)
	assert.Equal(t, 2, c.nodes["n2"].capacity)
}

func TestReplicaOrdering(t *testing.T) {
	a := replica{partition: "db_0", index: 2}
	b := replica{partition: "db_0", index: 10}
	c := replica{partition: "db_1", index: 0}

	assert.True(t, a.less(b), "index comparison is numeric, not lexical")
	assert.True(t, a.less(c))
	assert.False(t, c.less(a))
	assert.Equal(t, "db_0|2", a.key())
}

func TestStringHash(t *testing.T) {
	assert.Equal(t, int32(0), stringHash(""))
	assert.Equal(t, int32('a'), stringHash("a"))
	assert.Equal(t, int32(31*'a'+'b'), stringHash("ab"))

	// Stable across calls
	assert.Equal(t, stringHash("db_0|1"), stringHash("db_0|1"))
}

func TestStartIndexRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		r := replica{partition: "db", index: i}
		idx := startIndex(r, 7)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 7)
	}
}
