package placement

import (
	"github.com/cuemby/burrow/pkg/types"
)

// ClusterAccessor gives a placement scheme read access to cluster state.
// Schemes that only need their arguments can ignore it.
type ClusterAccessor interface {
	ListInstances() ([]*types.Instance, error)
}

// Scheme maps a replica to its preferred instance. Implementations must be
// pure and deterministic in their arguments and must return an id present in
// allInstances. Liveness is deliberately not an input: the preferred plan is
// computed over every known instance so that placements stay stable while
// instances bounce.
type Scheme interface {
	// Init is called once before the scheme is used. Schemes that need
	// cluster handles capture them here.
	Init(accessor ClusterAccessor)

	// GetLocation returns the preferred instance for replica replicaIdx of
	// partition partitionIdx.
	GetLocation(partitionIdx, replicaIdx, numPartitions, numReplicas int, allInstances []string) string
}

// DefaultScheme spreads replicas of a partition across instances using
// modular arithmetic. Three regimes keep replicas of the same partition on
// distinct instances whether there are more instances than partitions, the
// same number, or fewer.
type DefaultScheme struct{}

// NewDefaultScheme returns the default placement scheme
func NewDefaultScheme() *DefaultScheme {
	return &DefaultScheme{}
}

// Init is a no-op; the default scheme needs no cluster handles
func (s *DefaultScheme) Init(ClusterAccessor) {}

// GetLocation implements Scheme
func (s *DefaultScheme) GetLocation(partitionIdx, replicaIdx, numPartitions, numReplicas int, allInstances []string) string {
	n := len(allInstances)
	var index int
	switch {
	case n > numPartitions:
		index = (partitionIdx + replicaIdx*numPartitions) % n
	case n == numPartitions:
		index = ((partitionIdx+replicaIdx*numPartitions)%n + replicaIdx) % n
	default:
		index = (partitionIdx + replicaIdx) % n
	}
	return allInstances[index]
}
