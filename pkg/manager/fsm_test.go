package manager

import (
	"encoding/json"
	"testing"

	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/hashicorp/raft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyCommand(t *testing.T, fsm *BurrowFSM, op string, payload interface{}) interface{} {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	cmdData, err := json.Marshal(Command{Op: op, Data: data})
	require.NoError(t, err)
	return fsm.Apply(&raft.Log{Data: cmdData})
}

func newTestFSM(t *testing.T) (*BurrowFSM, storage.Store) {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewBurrowFSM(store), store
}

func TestFSMInstanceCommands(t *testing.T) {
	fsm, store := newTestFSM(t)

	instance := &types.Instance{ID: "n0", Enabled: true, Status: types.InstanceStatusLive}
	assert.Nil(t, applyCommand(t, fsm, "create_instance", instance))

	got, err := store.GetInstance("n0")
	require.NoError(t, err)
	assert.True(t, got.Enabled)

	// Deleting an instance also drops its current-state reports
	assert.Nil(t, applyCommand(t, fsm, "save_current_state", &types.CurrentState{
		InstanceID:      "n0",
		Resource:        "db",
		PartitionStates: map[string]string{"db_0": "MASTER"},
	}))
	assert.Nil(t, applyCommand(t, fsm, "delete_instance", "n0"))

	_, err = store.GetInstance("n0")
	assert.Error(t, err)
	states, err := store.ListCurrentStates()
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestFSMResourceCommands(t *testing.T) {
	fsm, store := newTestFSM(t)

	resource := &types.Resource{Name: "db", StateModel: "MasterSlave", NumPartitions: 4, Replicas: "2"}
	assert.Nil(t, applyCommand(t, fsm, "create_resource", resource))
	assert.Nil(t, applyCommand(t, fsm, "save_ideal_state", &types.IdealState{
		Resource:   "db",
		Mode:       types.RebalanceModeAuto,
		ListFields: map[string][]string{"db_0": {"n0"}},
	}))

	// Deleting the resource drops the ideal state with it
	assert.Nil(t, applyCommand(t, fsm, "delete_resource", "db"))
	_, err := store.GetResource("db")
	assert.Error(t, err)
	_, err = store.GetIdealState("db")
	assert.Error(t, err)
}

func TestFSMUnknownCommand(t *testing.T) {
	fsm, _ := newTestFSM(t)

	result := applyCommand(t, fsm, "explode", "boom")
	err, ok := result.(error)
	require.True(t, ok)
	assert.Contains(t, err.Error(), "unknown command")
}
