package controller

import (
	"io"
	"os"
	"testing"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: log.ErrorLevel, JSONOutput: true, Output: io.Discard})
	os.Exit(m.Run())
}

func TestAssignmentsEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     map[string][]string
		expected bool
	}{
		{
			name:     "both empty",
			a:        map[string][]string{},
			b:        map[string][]string{},
			expected: true,
		},
		{
			name:     "identical",
			a:        map[string][]string{"db_0": {"n0", "n1"}},
			b:        map[string][]string{"db_0": {"n0", "n1"}},
			expected: true,
		},
		{
			name:     "different order matters",
			a:        map[string][]string{"db_0": {"n0", "n1"}},
			b:        map[string][]string{"db_0": {"n1", "n0"}},
			expected: false,
		},
		{
			name:     "missing partition",
			a:        map[string][]string{"db_0": {"n0"}},
			b:        map[string][]string{"db_1": {"n0"}},
			expected: false,
		},
		{
			name:     "different lengths",
			a:        map[string][]string{"db_0": {"n0"}},
			b:        map[string][]string{"db_0": {"n0", "n1"}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, assignmentsEqual(tt.a, tt.b))
		})
	}
}

func TestInitialIdealState(t *testing.T) {
	resource := &types.Resource{
		Name:                     "db",
		StateModel:               "MasterSlave",
		NumPartitions:            4,
		Replicas:                 "2",
		MaxPartitionsPerInstance: 3,
	}

	is := initialIdealState(resource)

	assert.Equal(t, "db", is.Resource)
	assert.Equal(t, types.RebalanceModeAuto, is.Mode)
	assert.Equal(t, "MasterSlave", is.StateModel)
	assert.Equal(t, "2", is.Replicas)
	assert.Equal(t, 4, is.NumPartitions)
	assert.Equal(t, 3, is.MaxPartitionsPerInstance)
	assert.Empty(t, is.ListFields)
}

func TestExpectedSlots(t *testing.T) {
	snapshot := &types.ClusterSnapshot{
		LiveInstances: []string{"n0", "n1", "n2"},
		StateModels: map[string]*types.StateModelDefinition{
			"MasterSlave": {
				Name: "MasterSlave",
				States: []types.StateSpec{
					{Name: "MASTER", CountSpec: "1"},
					{Name: "SLAVE", CountSpec: "R"},
				},
			},
		},
	}

	is := &types.IdealState{
		Resource:      "db",
		StateModel:    "MasterSlave",
		Replicas:      "2",
		NumPartitions: 4,
	}
	slots, ok := expectedSlots(is, snapshot)
	require.True(t, ok)
	assert.Equal(t, 8, slots)

	// Full replication: one replica per live instance
	is.Replicas = "N"
	slots, ok = expectedSlots(is, snapshot)
	require.True(t, ok)
	assert.Equal(t, 12, slots)

	// Unknown state model
	is.StateModel = "Nope"
	_, ok = expectedSlots(is, snapshot)
	assert.False(t, ok)

	// Unparseable replica specifier
	is.StateModel = "MasterSlave"
	is.Replicas = "many"
	_, ok = expectedSlots(is, snapshot)
	assert.False(t, ok)
}
