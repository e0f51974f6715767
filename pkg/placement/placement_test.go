package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchemeFormula(t *testing.T) {
	scheme := NewDefaultScheme()

	tests := []struct {
		name          string
		partitionIdx  int
		replicaIdx    int
		numPartitions int
		numReplicas   int
		instances     []string
		want          string
	}{
		{
			name:          "more instances than partitions",
			partitionIdx:  1,
			replicaIdx:    1,
			numPartitions: 2,
			numReplicas:   2,
			instances:     []string{"n0", "n1", "n2", "n3", "n4"},
			// (1 + 1*2) % 5 = 3
			want: "n3",
		},
		{
			name:          "equal instances and partitions",
			partitionIdx:  2,
			replicaIdx:    1,
			numPartitions: 3,
			numReplicas:   2,
			instances:     []string{"n0", "n1", "n2"},
			// ((2 + 1*3) % 3 + 1) % 3 = 0
			want: "n0",
		},
		{
			name:          "fewer instances than partitions",
			partitionIdx:  4,
			replicaIdx:    1,
			numPartitions: 5,
			numReplicas:   2,
			instances:     []string{"n0", "n1"},
			// (4 + 1) % 2 = 1
			want: "n1",
		},
		{
			name:          "first replica lands on the partition index",
			partitionIdx:  1,
			replicaIdx:    0,
			numPartitions: 3,
			numReplicas:   2,
			instances:     []string{"n0", "n1", "n2"},
			want:          "n1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scheme.GetLocation(tt.partitionIdx, tt.replicaIdx, tt.numPartitions, tt.numReplicas, tt.instances)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultSchemeDeterministic(t *testing.T) {
	scheme := NewDefaultScheme()
	instances := []string{"n0", "n1", "n2", "n3"}

	for partition := 0; partition < 6; partition++ {
		for replica := 0; replica < 3; replica++ {
			first := scheme.GetLocation(partition, replica, 6, 3, instances)
			second := scheme.GetLocation(partition, replica, 6, 3, instances)
			assert.Equal(t, first, second)
			assert.Contains(t, instances, first)
		}
	}
}

func TestDefaultSchemeSpreadsReplicasAtParity(t *testing.T) {
	// With as many instances as partitions, the replica offset keeps the
	// replicas of one partition on distinct instances.
	scheme := NewDefaultScheme()
	instances := []string{"n0", "n1", "n2"}

	for partition := 0; partition < 3; partition++ {
		seen := make(map[string]bool)
		for replica := 0; replica < 2; replica++ {
			id := scheme.GetLocation(partition, replica, 3, 2, instances)
			assert.False(t, seen[id], "partition %d replica %d collides", partition, replica)
			seen[id] = true
		}
	}
}

func TestDefaultSchemeInitIsNoOp(t *testing.T) {
	scheme := NewDefaultScheme()
	assert.NotPanics(t, func() { scheme.Init(nil) })
}
