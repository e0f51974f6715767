package strategy

import (
	"io"
	"os"
	"testing"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/statemodel"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: log.ErrorLevel, JSONOutput: true, Output: io.Discard})
	os.Exit(m.Run())
}

func masterSlaveModel() *types.StateModelDefinition {
	return &types.StateModelDefinition{
		Name:         "MasterSlave",
		InitialState: "OFFLINE",
		States: []types.StateSpec{
			{Name: "MASTER", CountSpec: "1"},
			{Name: "SLAVE", CountSpec: "R"},
		},
	}
}

func testSnapshot(live []string) *types.ClusterSnapshot {
	instances := make([]*types.Instance, 0, len(live))
	for _, id := range live {
		instances = append(instances, &types.Instance{ID: id, Enabled: true, Status: types.InstanceStatusLive})
	}
	return &types.ClusterSnapshot{
		LiveInstances: live,
		Instances:     instances,
		StateModels:   map[string]*types.StateModelDefinition{"MasterSlave": masterSlaveModel()},
		CurrentState:  types.NewCurrentStateOutput(),
	}
}

func idealState(partitions int, replicas string) *types.IdealState {
	return &types.IdealState{
		Resource:      "db",
		Mode:          types.RebalanceModeAuto,
		StateModel:    "MasterSlave",
		Replicas:      replicas,
		NumPartitions: partitions,
		ListFields:    make(map[string][]string),
		MapFields:     make(map[string]map[string]string),
	}
}

func TestComputeNewIdealStateFreshCluster(t *testing.T) {
	s := NewAutoRebalanceStrategy()
	snapshot := testSnapshot([]string{"n0", "n1", "n2"})

	newIS, err := s.ComputeNewIdealState("db", idealState(3, "2"), types.NewCurrentStateOutput(), snapshot)
	require.NoError(t, err)

	assert.Equal(t, types.RebalanceModeAuto, newIS.Mode)
	assert.Equal(t, "MasterSlave", newIS.StateModel)
	assert.Equal(t, "2", newIS.Replicas)
	assert.Empty(t, newIS.MapFields, "auto mode carries list fields only")

	require.Len(t, newIS.ListFields, 3)
	for partition, instances := range newIS.ListFields {
		assert.Len(t, instances, 2, "partition %s", partition)
	}
}

func TestComputeNewIdealStateMissingStateModel(t *testing.T) {
	s := NewAutoRebalanceStrategy()
	snapshot := testSnapshot([]string{"n0"})
	is := idealState(1, "1")
	is.StateModel = "Nope"

	_, err := s.ComputeNewIdealState("db", is, types.NewCurrentStateOutput(), snapshot)
	assert.Error(t, err)
}

func TestComputeNewIdealStateEmptyLiveSet(t *testing.T) {
	s := NewAutoRebalanceStrategy()
	snapshot := testSnapshot(nil)

	newIS, err := s.ComputeNewIdealState("db", idealState(2, "2"), types.NewCurrentStateOutput(), snapshot)
	require.NoError(t, err)

	assert.Empty(t, newIS.ListFields)
}

func TestComputeNewIdealStateFullReplication(t *testing.T) {
	// Replicas "N" means one replica per live instance.
	s := NewAutoRebalanceStrategy()
	snapshot := testSnapshot([]string{"n0", "n1", "n2"})

	newIS, err := s.ComputeNewIdealState("db", idealState(2, "N"), types.NewCurrentStateOutput(), snapshot)
	require.NoError(t, err)

	for partition, instances := range newIS.ListFields {
		assert.Len(t, instances, 3, "partition %s", partition)
	}
}

func TestResolveReplicaCount(t *testing.T) {
	assert.Equal(t, 5, resolveReplicaCount("N", 5))
	assert.Equal(t, 3, resolveReplicaCount("3", 5))
	assert.Equal(t, 0, resolveReplicaCount("garbage", 5))
	assert.Equal(t, 0, resolveReplicaCount("-1", 5))
}

func TestMergeCurrentMapping(t *testing.T) {
	counts := statemodel.NewStateCount()
	counts.Set("MASTER", 1)
	counts.Set("SLAVE", 1)

	output := types.NewCurrentStateOutput()
	output.SetCurrentState("db", "db_0", "n0", "MASTER")
	output.SetCurrentState("db", "db_0", "n1", "SLAVE")
	output.SetCurrentState("db", "db_1", "n0", "SLAVE")
	output.SetCurrentState("db", "db_1", "ghost", "MASTER") // not live; report is stale
	// n1 is transitioning away from db_1; pending wins, then the
	// out-of-model state filters the entry out entirely
	output.SetCurrentState("db", "db_1", "n1", "MASTER")
	output.SetPendingState("db", "db_1", "n1", "OFFLINE")
	// n2 is transitioning into db_0
	output.SetPendingState("db", "db_0", "n2", "SLAVE")

	merged := mergeCurrentMapping("db", output, counts, []string{"n0", "n1", "n2"})

	assert.Equal(t, map[string]map[string]string{
		"db_0": {"n0": "MASTER", "n1": "SLAVE", "n2": "SLAVE"},
		"db_1": {"n0": "SLAVE"},
	}, merged)
}

func TestMergeCurrentMappingNilOutput(t *testing.T) {
	counts := statemodel.NewStateCount()
	counts.Set("ONLINE", 1)

	merged := mergeCurrentMapping("db", nil, counts, []string{"n0"})
	assert.Empty(t, merged)
}
