package statemodel

import (
	"strconv"

	"github.com/cuemby/burrow/pkg/types"
)

// Count specifiers understood by ResolveStateCounts beyond plain integers.
const (
	// CountEveryLiveInstance assigns one replica of the state per live instance.
	CountEveryLiveInstance = "N"
	// CountRemainder assigns whatever replica budget the numeric states leave
	// over. At most one state per model may use it.
	CountRemainder = "R"
)

// StateCount is an ordered mapping of state name to required replica count.
// Order carries state priority (highest first) and is part of the contract:
// replica index ranges are carved out of the ordered counts, so two
// StateCounts with the same entries in different orders describe different
// assignments.
type StateCount struct {
	entries []entry
	index   map[string]int
}

type entry struct {
	state string
	count int
}

// NewStateCount returns an empty StateCount
func NewStateCount() *StateCount {
	return &StateCount{index: make(map[string]int)}
}

// Set appends a state with its count, or overwrites the count if the state is
// already present (keeping its original position)
func (sc *StateCount) Set(state string, count int) {
	if i, ok := sc.index[state]; ok {
		sc.entries[i].count = count
		return
	}
	sc.index[state] = len(sc.entries)
	sc.entries = append(sc.entries, entry{state: state, count: count})
}

// Get returns the count for a state and whether the state is present
func (sc *StateCount) Get(state string) (int, bool) {
	i, ok := sc.index[state]
	if !ok {
		return 0, false
	}
	return sc.entries[i].count, true
}

// States returns the state names in priority order
func (sc *StateCount) States() []string {
	names := make([]string, len(sc.entries))
	for i, e := range sc.entries {
		names[i] = e.state
	}
	return names
}

// Len returns the number of states
func (sc *StateCount) Len() int {
	return len(sc.entries)
}

// TotalReplicas returns the sum of all counts, i.e. the number of replica
// slots per partition
func (sc *StateCount) TotalReplicas() int {
	total := 0
	for _, e := range sc.entries {
		total += e.count
	}
	return total
}

// StateForReplica maps a replica index to its state by walking the ordered
// counts: the first count[s0] indices get state s0, the next count[s1] get
// s1, and so on. Returns false if the index is out of range.
func (sc *StateCount) StateForReplica(replicaIdx int) (string, bool) {
	if replicaIdx < 0 {
		return "", false
	}
	for _, e := range sc.entries {
		if replicaIdx < e.count {
			return e.state, true
		}
		replicaIdx -= e.count
	}
	return "", false
}

// ReplicaStateMap returns the full replica index to state mapping
func (sc *StateCount) ReplicaStateMap() map[int]string {
	m := make(map[int]string, sc.TotalReplicas())
	idx := 0
	for _, e := range sc.entries {
		for i := 0; i < e.count; i++ {
			m[idx] = e.state
			idx++
		}
	}
	return m
}

// ResolveStateCounts resolves a state model definition into concrete per-state
// counts given the current live-instance count and the total replica budget.
//
// States are walked in priority order. A "N" specifier resolves to the live
// instance count. A "R" specifier is deferred and later receives the replica
// budget left over after all numeric states; only the first "R" state is
// honored. Numeric specifiers are recorded when positive. Specifiers that
// parse to nothing useful drop the state from the result.
func ResolveStateCounts(def *types.StateModelDefinition, liveInstanceCount, totalReplicas int) *StateCount {
	sc := NewStateCount()
	remainder := totalReplicas
	remainderState := ""

	for _, spec := range def.States {
		switch spec.CountSpec {
		case CountEveryLiveInstance:
			sc.Set(spec.Name, liveInstanceCount)
		case CountRemainder:
			if remainderState == "" {
				remainderState = spec.Name
			}
		default:
			n, err := strconv.Atoi(spec.CountSpec)
			if err != nil || n <= 0 {
				// Unparseable or non-positive specifier: the state
				// contributes no replicas.
				continue
			}
			sc.Set(spec.Name, n)
			remainder -= n
		}
	}

	if remainderState != "" && remainder > 0 {
		sc.Set(remainderState, remainder)
	}

	return sc
}
