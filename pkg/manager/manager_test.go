package manager

import (
	"io"
	"os"
	"testing"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/statemodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: log.ErrorLevel, JSONOutput: true, Output: io.Discard})
	os.Exit(m.Run())
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(&Config{
		NodeID:   "controller-test",
		BindAddr: "127.0.0.1:0",
		DataDir:  t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Shutdown() })
	return mgr
}

func TestDefaultStateModels(t *testing.T) {
	defs := DefaultStateModels()
	require.Len(t, defs, 3)

	names := make(map[string]bool)
	for _, def := range defs {
		names[def.Name] = true
	}
	assert.True(t, names["MasterSlave"])
	assert.True(t, names["LeaderStandby"])
	assert.True(t, names["OnlineOffline"])

	// MasterSlave with 3 replicas resolves to one master, two slaves
	for _, def := range defs {
		if def.Name != "MasterSlave" {
			continue
		}
		counts := statemodel.ResolveStateCounts(def, 5, 3)
		master, _ := counts.Get("MASTER")
		slave, _ := counts.Get("SLAVE")
		assert.Equal(t, 1, master)
		assert.Equal(t, 2, slave)
	}
}

func TestManagerWithoutRaft(t *testing.T) {
	mgr := newTestManager(t)

	// No raft: the node is not leader and mutations fail cleanly
	assert.False(t, mgr.IsLeader())
	assert.Empty(t, mgr.LeaderAddr())
	assert.Error(t, mgr.Apply(Command{Op: "create_resource"}))

	// Reads still work against the empty store
	resources, err := mgr.ListResources()
	require.NoError(t, err)
	assert.Empty(t, resources)
}

func TestSnapshotEmptyCluster(t *testing.T) {
	mgr := newTestManager(t)

	snapshot, err := mgr.Snapshot()
	require.NoError(t, err)

	assert.Empty(t, snapshot.LiveInstances)
	assert.Empty(t, snapshot.Instances)
	assert.Empty(t, snapshot.StateModels)
	assert.NotNil(t, snapshot.CurrentState)
}
