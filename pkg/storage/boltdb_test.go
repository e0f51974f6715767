package storage

import (
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInstanceRoundTrip(t *testing.T) {
	store := newTestStore(t)

	instance := &types.Instance{
		ID:            "n0",
		Address:       "10.0.0.5:7000",
		Enabled:       true,
		Status:        types.InstanceStatusLive,
		LastHeartbeat: time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.CreateInstance(instance))

	got, err := store.GetInstance("n0")
	require.NoError(t, err)
	assert.Equal(t, instance.ID, got.ID)
	assert.Equal(t, instance.Address, got.Address)
	assert.True(t, got.Enabled)

	// Upsert through UpdateInstance
	got.Status = types.InstanceStatusDown
	require.NoError(t, store.UpdateInstance(got))
	again, err := store.GetInstance("n0")
	require.NoError(t, err)
	assert.Equal(t, types.InstanceStatusDown, again.Status)

	require.NoError(t, store.DeleteInstance("n0"))
	_, err = store.GetInstance("n0")
	assert.Error(t, err)
}

func TestGetInstanceNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetInstance("missing")
	assert.Error(t, err)
}

func TestResourceRoundTrip(t *testing.T) {
	store := newTestStore(t)

	resource := &types.Resource{
		Name:          "db",
		StateModel:    "MasterSlave",
		NumPartitions: 8,
		Replicas:      "3",
	}
	require.NoError(t, store.CreateResource(resource))

	got, err := store.GetResource("db")
	require.NoError(t, err)
	assert.Equal(t, 8, got.NumPartitions)
	assert.Equal(t, "3", got.Replicas)

	resources, err := store.ListResources()
	require.NoError(t, err)
	assert.Len(t, resources, 1)

	require.NoError(t, store.DeleteResource("db"))
	resources, err = store.ListResources()
	require.NoError(t, err)
	assert.Empty(t, resources)
}

func TestStateModelRoundTrip(t *testing.T) {
	store := newTestStore(t)

	def := &types.StateModelDefinition{
		Name:         "MasterSlave",
		InitialState: "OFFLINE",
		States: []types.StateSpec{
			{Name: "MASTER", CountSpec: "1"},
			{Name: "SLAVE", CountSpec: "R"},
		},
	}
	require.NoError(t, store.CreateStateModel(def))

	got, err := store.GetStateModel("MasterSlave")
	require.NoError(t, err)
	require.Len(t, got.States, 2)
	assert.Equal(t, "MASTER", got.States[0].Name, "state order must survive the round trip")
	assert.Equal(t, "R", got.States[1].CountSpec)
}

func TestIdealStateRoundTrip(t *testing.T) {
	store := newTestStore(t)

	is := &types.IdealState{
		Resource:      "db",
		Mode:          types.RebalanceModeAuto,
		StateModel:    "MasterSlave",
		Replicas:      "2",
		NumPartitions: 2,
		ListFields: map[string][]string{
			"db_0": {"n0", "n1"},
			"db_1": {"n1", "n2"},
		},
		MapFields: map[string]map[string]string{},
	}
	require.NoError(t, store.SaveIdealState(is))

	got, err := store.GetIdealState("db")
	require.NoError(t, err)
	assert.Equal(t, is.ListFields, got.ListFields)
	assert.Equal(t, types.RebalanceModeAuto, got.Mode)

	states, err := store.ListIdealStates()
	require.NoError(t, err)
	assert.Len(t, states, 1)
}

func TestCurrentStateByInstance(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveCurrentState(&types.CurrentState{
		InstanceID:      "n0",
		Resource:        "db",
		PartitionStates: map[string]string{"db_0": "MASTER"},
	}))
	require.NoError(t, store.SaveCurrentState(&types.CurrentState{
		InstanceID:      "n0",
		Resource:        "cache",
		PartitionStates: map[string]string{"cache_0": "ONLINE"},
	}))
	require.NoError(t, store.SaveCurrentState(&types.CurrentState{
		InstanceID:      "n1",
		Resource:        "db",
		PartitionStates: map[string]string{"db_0": "SLAVE"},
	}))

	got, err := store.GetCurrentState("n0", "db")
	require.NoError(t, err)
	assert.Equal(t, "MASTER", got.PartitionStates["db_0"])

	byResource, err := store.ListCurrentStatesByResource("db")
	require.NoError(t, err)
	assert.Len(t, byResource, 2)

	// Removing an instance removes all of its reports but nobody else's
	require.NoError(t, store.DeleteCurrentStatesByInstance("n0"))
	all, err := store.ListCurrentStates()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "n1", all[0].InstanceID)
}
