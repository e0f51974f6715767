package statemodel

import (
	"testing"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func definition(states ...types.StateSpec) *types.StateModelDefinition {
	return &types.StateModelDefinition{
		Name:         "test",
		InitialState: "OFFLINE",
		States:       states,
	}
}

func TestResolveStateCounts(t *testing.T) {
	tests := []struct {
		name          string
		def           *types.StateModelDefinition
		liveCount     int
		totalReplicas int
		wantStates    []string
		wantCounts    map[string]int
	}{
		{
			name: "numeric plus remainder",
			def: definition(
				types.StateSpec{Name: "MASTER", CountSpec: "1"},
				types.StateSpec{Name: "SLAVE", CountSpec: "R"},
			),
			liveCount:     5,
			totalReplicas: 3,
			wantStates:    []string{"MASTER", "SLAVE"},
			wantCounts:    map[string]int{"MASTER": 1, "SLAVE": 2},
		},
		{
			name: "every live instance",
			def: definition(
				types.StateSpec{Name: "ONLINE", CountSpec: "N"},
			),
			liveCount:     4,
			totalReplicas: 4,
			wantStates:    []string{"ONLINE"},
			wantCounts:    map[string]int{"ONLINE": 4},
		},
		{
			name: "remainder only",
			def: definition(
				types.StateSpec{Name: "ONLINE", CountSpec: "R"},
			),
			liveCount:     2,
			totalReplicas: 3,
			wantStates:    []string{"ONLINE"},
			wantCounts:    map[string]int{"ONLINE": 3},
		},
		{
			name: "invalid specifier omits the state",
			def: definition(
				types.StateSpec{Name: "MASTER", CountSpec: "one"},
				types.StateSpec{Name: "SLAVE", CountSpec: "2"},
			),
			liveCount:     3,
			totalReplicas: 3,
			wantStates:    []string{"SLAVE"},
			wantCounts:    map[string]int{"SLAVE": 2},
		},
		{
			name: "non-positive count omits the state",
			def: definition(
				types.StateSpec{Name: "MASTER", CountSpec: "0"},
				types.StateSpec{Name: "SLAVE", CountSpec: "-1"},
				types.StateSpec{Name: "OBSERVER", CountSpec: "2"},
			),
			liveCount:     3,
			totalReplicas: 3,
			wantStates:    []string{"OBSERVER"},
			wantCounts:    map[string]int{"OBSERVER": 2},
		},
		{
			name: "remainder consumed by numeric states",
			def: definition(
				types.StateSpec{Name: "MASTER", CountSpec: "3"},
				types.StateSpec{Name: "SLAVE", CountSpec: "R"},
			),
			liveCount:     3,
			totalReplicas: 3,
			wantStates:    []string{"MASTER"},
			wantCounts:    map[string]int{"MASTER": 3},
		},
		{
			name: "only the first remainder state is honored",
			def: definition(
				types.StateSpec{Name: "MASTER", CountSpec: "1"},
				types.StateSpec{Name: "SLAVE", CountSpec: "R"},
				types.StateSpec{Name: "OBSERVER", CountSpec: "R"},
			),
			liveCount:     3,
			totalReplicas: 4,
			wantStates:    []string{"MASTER", "SLAVE"},
			wantCounts:    map[string]int{"MASTER": 1, "SLAVE": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := ResolveStateCounts(tt.def, tt.liveCount, tt.totalReplicas)

			assert.Equal(t, tt.wantStates, sc.States(), "priority order must be preserved")
			for state, want := range tt.wantCounts {
				got, ok := sc.Get(state)
				require.True(t, ok, "state %s missing", state)
				assert.Equal(t, want, got, "state %s", state)
			}
		})
	}
}

func TestStateCountTotalReplicas(t *testing.T) {
	sc := NewStateCount()
	assert.Equal(t, 0, sc.TotalReplicas())

	sc.Set("MASTER", 1)
	sc.Set("SLAVE", 2)
	assert.Equal(t, 3, sc.TotalReplicas())

	// Overwriting keeps position and replaces the count
	sc.Set("MASTER", 2)
	assert.Equal(t, 4, sc.TotalReplicas())
	assert.Equal(t, []string{"MASTER", "SLAVE"}, sc.States())
}

func TestStateForReplica(t *testing.T) {
	sc := NewStateCount()
	sc.Set("MASTER", 1)
	sc.Set("SLAVE", 2)

	tests := []struct {
		idx       int
		wantState string
		wantOK    bool
	}{
		{0, "MASTER", true},
		{1, "SLAVE", true},
		{2, "SLAVE", true},
		{3, "", false},
		{-1, "", false},
	}

	for _, tt := range tests {
		state, ok := sc.StateForReplica(tt.idx)
		assert.Equal(t, tt.wantOK, ok, "index %d", tt.idx)
		assert.Equal(t, tt.wantState, state, "index %d", tt.idx)
	}
}

func TestReplicaStateMap(t *testing.T) {
	sc := NewStateCount()
	sc.Set("LEADER", 1)
	sc.Set("STANDBY", 2)

	assert.Equal(t, map[int]string{
		0: "LEADER",
		1: "STANDBY",
		2: "STANDBY",
	}, sc.ReplicaStateMap())
}
