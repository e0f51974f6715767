package rebalance

import (
	"sort"
	"strconv"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/placement"
	"github.com/cuemby/burrow/pkg/statemodel"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/rs/zerolog"
)

// Spec describes one placement computation. Partitions is ordered; the order
// is the partition index space handed to the placement scheme. StateCounts
// must already be resolved (no symbolic specifiers).
type Spec struct {
	Resource    string
	Partitions  []string
	StateCounts *statemodel.StateCount
	// MaxPartitionsPerInstance caps the per-instance capacity when positive.
	MaxPartitionsPerInstance int
	// Scheme picks preferred locations. Nil means the default scheme.
	Scheme placement.Scheme
}

// Compute produces a new assignment of partition replicas to live instances.
//
// The computation is greedy and runs in three passes over the classified
// current mapping: promote non-preferred replicas back to their preferred
// instance, place orphaned replicas, then drain instances that are over
// capacity. It never fails; degraded outcomes (unplaceable replicas,
// undrainable instances) are logged and the returned assignment is always
// well formed.
//
// allInstances must be a superset of liveInstances, and the instance ids in
// currentMapping must be drawn from allInstances. Both lists are walked in
// the order supplied by the caller, which makes the output a deterministic
// function of the inputs.
func Compute(spec Spec, allInstances, liveInstances []string, currentMapping map[string]map[string]string) *types.ResourceAssignment {
	logger := log.WithComponent("rebalance")
	assignment := types.NewResourceAssignment(spec.Resource)

	if len(liveInstances) == 0 {
		logger.Warn().
			Str("resource", spec.Resource).
			Msg("No live instances; returning empty assignment")
		return assignment
	}

	c := newComputation(spec, allInstances, liveInstances, logger)
	c.assignPreferred()
	c.classifyCurrent(currentMapping)
	c.promoteNonPreferred()
	c.placeOrphans()
	c.drainOverfull()
	c.emit(assignment)

	logger.Debug().
		Str("resource", spec.Resource).
		Int("partitions", len(spec.Partitions)).
		Int("replicas_per_partition", c.numReplicas).
		Int("live_instances", len(liveInstances)).
		Msg("Computed partition assignment")

	return assignment
}

// replica identifies one copy of a partition. Replicas order lexicographically
// by (partition, index) with numeric index comparison. This matches ordering
// by the canonical "partition|index" string only for indices below ten and
// partition names none of which is a prefix of another ("db_1|0" sorts after
// "db_10|0" as a string, before it as a tuple).
type replica struct {
	partition string
	index     int
}

func (r replica) key() string {
	return r.partition + "|" + strconv.Itoa(r.index)
}

func (r replica) less(o replica) bool {
	if r.partition != o.partition {
		return r.partition < o.partition
	}
	return r.index < o.index
}

// node is the per-computation working record for one instance. capacity is
// the fixed target for this round; only currentlyAssigned changes while the
// passes run.
type node struct {
	id                string
	isAlive           bool
	capacity          int
	currentlyAssigned int
	preferred         []replica
	nonPreferred      []replica
}

// canAdd reports whether the node can accept the replica: it must be alive,
// under capacity, and not already hosting any replica of the same partition.
func (n *node) canAdd(r replica) bool {
	if !n.isAlive {
		return false
	}
	if n.currentlyAssigned >= n.capacity {
		return false
	}
	return !n.hasPartition(r.partition)
}

func (n *node) hasPartition(partition string) bool {
	for _, r := range n.preferred {
		if r.partition == partition {
			return true
		}
	}
	for _, r := range n.nonPreferred {
		if r.partition == partition {
			return true
		}
	}
	return false
}

func (n *node) hasPreferredPartition(partition string) bool {
	for _, r := range n.preferred {
		if r.partition == partition {
			return true
		}
	}
	return false
}

func (n *node) removeNonPreferred(r replica) {
	for i, cur := range n.nonPreferred {
		if cur == r {
			n.nonPreferred = append(n.nonPreferred[:i], n.nonPreferred[i+1:]...)
			return
		}
	}
}

// replicaQueue is an insertion-ordered replica to node mapping with removal
type replicaQueue struct {
	order []replica
	nodes map[replica]*node
}

func newReplicaQueue() *replicaQueue {
	return &replicaQueue{nodes: make(map[replica]*node)}
}

func (q *replicaQueue) add(r replica, n *node) {
	if _, ok := q.nodes[r]; ok {
		return
	}
	q.order = append(q.order, r)
	q.nodes[r] = n
}

func (q *replicaQueue) has(r replica) bool {
	_, ok := q.nodes[r]
	return ok
}

func (q *replicaQueue) remove(r replica) {
	delete(q.nodes, r)
}

type computation struct {
	spec          Spec
	logger        zerolog.Logger
	allInstances  []string
	liveInstances []string
	numReplicas   int

	nodes     map[string]*node
	liveNodes []*node // liveInstances order

	// preferredAssignment covers every replica and ignores liveness
	preferredAssignment map[replica]*node

	existingPreferred    *replicaQueue
	existingNonPreferred *replicaQueue
	orphans              []replica
}

func newComputation(spec Spec, allInstances, liveInstances []string, logger zerolog.Logger) *computation {
	c := &computation{
		spec:                 spec,
		logger:               logger,
		allInstances:         allInstances,
		liveInstances:        liveInstances,
		numReplicas:          spec.StateCounts.TotalReplicas(),
		nodes:                make(map[string]*node, len(allInstances)),
		preferredAssignment:  make(map[replica]*node),
		existingPreferred:    newReplicaQueue(),
		existingNonPreferred: newReplicaQueue(),
	}

	for _, id := range allInstances {
		c.nodes[id] = &node{id: id}
	}

	// Distribute capacity over live instances: floor for everyone, one extra
	// for the first remainder instances in caller order, optionally capped.
	totalSlots := c.numReplicas * len(spec.Partitions)
	floor := totalSlots / len(liveInstances)
	remainder := totalSlots % len(liveInstances)

	for i, id := range liveInstances {
		n := c.nodes[id]
		n.isAlive = true
		n.capacity = floor
		if i < remainder {
			n.capacity++
		}
		if spec.MaxPartitionsPerInstance > 0 && n.capacity > spec.MaxPartitionsPerInstance {
			n.capacity = spec.MaxPartitionsPerInstance
		}
		c.liveNodes = append(c.liveNodes, n)
	}

	return c
}

// assignPreferred computes the preferred location of every replica over the
// full instance list, live or not
func (c *computation) assignPreferred() {
	scheme := c.spec.Scheme
	if scheme == nil {
		scheme = placement.NewDefaultScheme()
	}
	numPartitions := len(c.spec.Partitions)
	for partitionIdx, partition := range c.spec.Partitions {
		for replicaIdx := 0; replicaIdx < c.numReplicas; replicaIdx++ {
			id := scheme.GetLocation(partitionIdx, replicaIdx, numPartitions, c.numReplicas, c.allInstances)
			n, ok := c.nodes[id]
			if !ok {
				c.logger.Warn().
					Str("resource", c.spec.Resource).
					Str("partition", partition).
					Str("instance_id", id).
					Msg("Placement scheme returned unknown instance; replica left unassigned")
				continue
			}
			c.preferredAssignment[replica{partition: partition, index: replicaIdx}] = n
		}
	}
}

// classifyCurrent splits the current mapping into replicas already at their
// preferred instance and replicas placed elsewhere, then derives the orphan
// set. Replicas of a partition are interchangeable: an occurrence claims the
// first unclaimed replica index that fits, which may differ from the index
// the instance served before.
func (c *computation) classifyCurrent(currentMapping map[string]map[string]string) {
	// First pass: occurrences sitting at a preferred location. Instance maps
	// are walked in allInstances order to keep classification deterministic.
	for _, partition := range c.spec.Partitions {
		instanceStates := currentMapping[partition]
		if len(instanceStates) == 0 {
			continue
		}
		for _, instanceID := range c.allInstances {
			if _, ok := instanceStates[instanceID]; !ok {
				continue
			}
			n := c.nodes[instanceID]
			n.currentlyAssigned++
			if n.hasPreferredPartition(partition) {
				continue
			}
			for idx := 0; idx < c.numReplicas; idx++ {
				r := replica{partition: partition, index: idx}
				pref, ok := c.preferredAssignment[r]
				if !ok || pref.id != instanceID || c.existingPreferred.has(r) {
					continue
				}
				c.existingPreferred.add(r, n)
				n.preferred = append(n.preferred, r)
				break
			}
		}
	}

	// Second pass: remaining occurrences become non-preferred placements.
	for _, partition := range c.spec.Partitions {
		instanceStates := currentMapping[partition]
		if len(instanceStates) == 0 {
			continue
		}
		for _, instanceID := range c.allInstances {
			if _, ok := instanceStates[instanceID]; !ok {
				continue
			}
			n := c.nodes[instanceID]
			if n.hasPreferredPartition(partition) {
				continue
			}
			for idx := 0; idx < c.numReplicas; idx++ {
				r := replica{partition: partition, index: idx}
				pref, ok := c.preferredAssignment[r]
				if !ok {
					continue
				}
				if pref.id != instanceID && !c.existingPreferred.has(r) && !c.existingNonPreferred.has(r) {
					c.existingNonPreferred.add(r, n)
					n.nonPreferred = append(n.nonPreferred, r)
					break
				}
			}
		}
	}

	// Everything not classified is orphaned.
	for r := range c.preferredAssignment {
		if !c.existingPreferred.has(r) && !c.existingNonPreferred.has(r) {
			c.orphans = append(c.orphans, r)
		}
	}
	sort.Slice(c.orphans, func(i, j int) bool { return c.orphans[i].less(c.orphans[j]) })
}

// promoteNonPreferred moves replicas from overfull instances back to their
// preferred instance when it has room
func (c *computation) promoteNonPreferred() {
	for _, r := range c.existingNonPreferred.order {
		donor, ok := c.existingNonPreferred.nodes[r]
		if !ok {
			continue
		}
		receiver := c.preferredAssignment[r]
		if donor.currentlyAssigned > donor.capacity &&
			receiver.currentlyAssigned < receiver.capacity &&
			receiver.canAdd(r) {
			donor.currentlyAssigned--
			receiver.currentlyAssigned++
			donor.removeNonPreferred(r)
			receiver.preferred = append(receiver.preferred, r)
			c.existingNonPreferred.remove(r)
		}
	}
}

// placeOrphans assigns replicas with no current placement. Each orphan scans
// the live instances circularly from a start index derived from its hash, so
// placements are both stable and well distributed.
func (c *computation) placeOrphans() {
	remaining := c.orphans[:0]
	for _, r := range c.orphans {
		placed := false
		start := startIndex(r, len(c.liveNodes))
		for i := 0; i < len(c.liveNodes); i++ {
			n := c.liveNodes[(start+i)%len(c.liveNodes)]
			if n.currentlyAssigned < n.capacity && n.canAdd(r) {
				n.nonPreferred = append(n.nonPreferred, r)
				n.currentlyAssigned++
				placed = true
				break
			}
		}
		if !placed {
			remaining = append(remaining, r)
			c.logger.Warn().
				Str("resource", c.spec.Resource).
				Str("replica", r.key()).
				Msg("Unable to place replica; no live instance can accept it")
		}
	}
	c.orphans = remaining
}

// drainOverfull hands replicas off instances that ended up above their
// capacity target. Only non-preferred replicas move, in canonical order so
// the result is deterministic. Receivers are gated on canAdd alone.
func (c *computation) drainOverfull() {
	for _, donor := range c.liveNodes {
		if donor.currentlyAssigned <= donor.capacity {
			continue
		}

		candidates := append([]replica(nil), donor.nonPreferred...)
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].less(candidates[j]) })

		for _, r := range candidates {
			if donor.currentlyAssigned <= donor.capacity {
				break
			}
			start := startIndex(r, len(c.liveNodes))
			for i := 0; i < len(c.liveNodes); i++ {
				receiver := c.liveNodes[(start+i)%len(c.liveNodes)]
				if receiver.canAdd(r) {
					donor.removeNonPreferred(r)
					donor.currentlyAssigned--
					receiver.nonPreferred = append(receiver.nonPreferred, r)
					receiver.currentlyAssigned++
					break
				}
			}
		}

		if donor.currentlyAssigned > donor.capacity {
			c.logger.Warn().
				Str("resource", c.spec.Resource).
				Str("instance_id", donor.id).
				Int("assigned", donor.currentlyAssigned).
				Int("capacity", donor.capacity).
				Msg("Instance remains over capacity after drain")
		}
	}
}

// emit writes the final placement into the assignment's map and list fields.
// The list field for a partition has one entry per replica actually placed,
// ordered by replica index then live-instance order.
func (c *computation) emit(assignment *types.ResourceAssignment) {
	for _, partition := range c.spec.Partitions {
		assignment.MapFields[partition] = make(map[string]string)
		assignment.ListFields[partition] = []string{}
	}

	for _, n := range c.liveNodes {
		for _, r := range n.preferred {
			if state, ok := c.spec.StateCounts.StateForReplica(r.index); ok {
				assignment.MapFields[r.partition][n.id] = state
			}
		}
		for _, r := range n.nonPreferred {
			if state, ok := c.spec.StateCounts.StateForReplica(r.index); ok {
				assignment.MapFields[r.partition][n.id] = state
			}
		}
	}

	for replicaIdx := 0; replicaIdx < c.numReplicas; replicaIdx++ {
		for _, n := range c.liveNodes {
			for _, r := range n.preferred {
				if r.index == replicaIdx {
					assignment.ListFields[r.partition] = append(assignment.ListFields[r.partition], n.id)
				}
			}
			for _, r := range n.nonPreferred {
				if r.index == replicaIdx {
					assignment.ListFields[r.partition] = append(assignment.ListFields[r.partition], n.id)
				}
			}
		}
	}
}

// startIndex derives a stable scan starting point from the replica's
// canonical string. The hash is the classic 31-multiplier string hash,
// identical on every platform.
func startIndex(r replica, liveCount int) int {
	return int(uint32(stringHash(r.key()))&0x7FFFFFFF) % liveCount
}

func stringHash(s string) int32 {
	var h int32
	for i := 0; i < len(s); i++ {
		h = 31*h + int32(s[i])
	}
	return h
}
