package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourcePartitions(t *testing.T) {
	resource := &Resource{Name: "db", NumPartitions: 3}

	assert.Equal(t, "db_0", resource.PartitionName(0))
	assert.Equal(t, "db_12", resource.PartitionName(12))
	assert.Equal(t, []string{"db_0", "db_1", "db_2"}, resource.Partitions())
}

func TestIdealStateClone(t *testing.T) {
	is := &IdealState{
		Resource: "db",
		Mode:     RebalanceModeAuto,
		ListFields: map[string][]string{
			"db_0": {"n0", "n1"},
		},
		MapFields: map[string]map[string]string{
			"db_0": {"n0": "MASTER"},
		},
	}

	clone := is.Clone()
	clone.ListFields["db_0"][0] = "changed"
	clone.MapFields["db_0"]["n0"] = "SLAVE"

	assert.Equal(t, "n0", is.ListFields["db_0"][0], "clone must not alias list fields")
	assert.Equal(t, "MASTER", is.MapFields["db_0"]["n0"], "clone must not alias map fields")
}

func TestCurrentStateOutput(t *testing.T) {
	output := NewCurrentStateOutput()
	output.SetCurrentState("db", "db_0", "n0", "MASTER")
	output.SetPendingState("db", "db_0", "n1", "SLAVE")

	assert.Equal(t, "MASTER", output.CurrentStateMap("db")["db_0"]["n0"])
	assert.Equal(t, "SLAVE", output.PendingStateMap("db")["db_0"]["n1"])
	assert.Nil(t, output.CurrentStateMap("other"))
}

func TestCurrentStateKey(t *testing.T) {
	cs := &CurrentState{InstanceID: "n0", Resource: "db"}
	assert.Equal(t, "n0/db", cs.Key())
}
