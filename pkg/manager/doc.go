/*
Package manager owns Burrow's replicated cluster state.

The Manager wraps a Raft-backed finite state machine over the BoltDB store.
Every mutation (instance registration, heartbeats, resource definitions,
computed ideal states, reported current states) is submitted as a Command
through Raft, so all controller replicas apply the same changes in the same
order and any of them can take over as leader. Reads are served from the
local store.

# Architecture

	┌──────────────────── MANAGER ───────────────────────────┐
	│                                                         │
	│  Mutations                        Reads                 │
	│  ┌──────────────┐        ┌──────────────────┐          │
	│  │ Apply(cmd)   │        │ ListInstances()  │          │
	│  └──────┬───────┘        │ GetIdealState()  │          │
	│         │                │ Snapshot()       │          │
	│         ▼                └────────┬─────────┘          │
	│  ┌──────────────┐                 │                    │
	│  │  Raft log    │                 │                    │
	│  │  (replicated │                 │                    │
	│  │   to peers)  │                 │                    │
	│  └──────┬───────┘                 │                    │
	│         ▼                         ▼                    │
	│  ┌──────────────┐        ┌──────────────────┐          │
	│  │  BurrowFSM   │───────►│    BoltStore     │          │
	│  │  Apply/      │        │   burrow.db      │          │
	│  │  Snapshot/   │        └──────────────────┘          │
	│  │  Restore     │                                      │
	│  └──────────────┘                                      │
	│                                                         │
	│  Sidecars: events.Broker, MetricsCollector              │
	└─────────────────────────────────────────────────────────┘

# FSM Commands

The Raft log carries JSON Commands with an op name and payload:

	create_instance / update_instance / delete_instance
	create_resource / update_resource / delete_resource
	create_state_model / delete_state_model
	save_ideal_state / delete_ideal_state
	save_current_state

delete_instance also removes the instance's current-state reports, and
delete_resource removes the resource's ideal state, keeping referential
hygiene inside single log entries.

BurrowFSM.Snapshot serializes the full store contents for Raft log
compaction; Restore replays a snapshot into the store when a replica
rejoins or bootstraps from a peer.

# Leadership

Exactly one controller computes placements at a time. The controller loop
checks IsLeader before each reconciliation pass; followers stay warm and
simply skip the pass. Leadership comes from Raft elections with timeouts
tightened from the library defaults (500ms heartbeat/election, 250ms
leader lease): the controller runs on a LAN and a stalled leader stalls
every rebalance.

Cluster membership:

  - Bootstrap: first controller, single-node configuration
  - Join: start Raft without bootstrapping, wait to be added
  - AddVoter: run on the leader to admit a joining controller
  - RemoveServer: retire a controller from the configuration

# Liveness Tracking

Instances heartbeat through Heartbeat(id), which stamps LastHeartbeat and
restores live status. Two mechanisms take instances out of the live set:

  - MarkStaleInstancesDown: called by the controller each cycle; any live
    instance whose heartbeat is older than the TTL (default 30s) is marked
    down and an instance.down event is published
  - Health probes: cmd/burrow's optional TCP monitor marks instances down
    when their serving port stops answering, even while heartbeats continue

Disabled instances stay registered and heartbeating but never enter the
live set, which drains their replicas on the next rebalance.

# Snapshot Assembly

Snapshot() builds the read-only ClusterSnapshot the rebalance pipeline
consumes:

 1. All instances, sorted by id (stable capacity distribution)
 2. The live subset: enabled, live status, heartbeat within TTL
 3. State model definitions, keyed by name
 4. The merged current-state output from all persisted reports

The sorted ordering is load-bearing: the placement algorithm distributes
the capacity remainder in list order, so an unstable order would shuffle
capacities between passes and defeat assignment stability.

# Usage

Bootstrapping the first controller:

	mgr, err := manager.NewManager(&manager.Config{
		NodeID:   "controller-1",
		BindAddr: "10.0.0.1:7100",
		DataDir:  "/var/lib/burrow",
	})
	if err != nil {
		return err
	}
	defer mgr.Shutdown()

	if err := mgr.Bootstrap(); err != nil {
		return err
	}
	if err := mgr.EnsureDefaultStateModels(); err != nil {
		return err
	}

Joining a second controller:

	// on controller-2
	mgr.Join()

	// on the current leader
	mgr.AddVoter("controller-2", "10.0.0.2:7100")

Mutating state:

	mgr.RegisterInstance(&types.Instance{ID: "n0", Enabled: true})
	mgr.Heartbeat("n0")
	mgr.CreateResource(&types.Resource{
		Name: "db", StateModel: "MasterSlave",
		NumPartitions: 8, Replicas: "3",
	})

Reading state:

	snapshot, err := mgr.Snapshot()
	is, err := mgr.GetIdealState("db")

# Default State Models

EnsureDefaultStateModels registers three definitions when missing:

  - MasterSlave: MASTER count 1, SLAVE count R
  - LeaderStandby: LEADER count 1, STANDBY count R
  - OnlineOffline: ONLINE count R

# Integration Points

This package integrates with:

  - pkg/storage: the FSM's backing store
  - pkg/controller: calls Snapshot, MarkStaleInstancesDown, SaveIdealState
  - pkg/api: every admin endpoint delegates here
  - pkg/events: lifecycle events published via the owned broker
  - pkg/metrics: Apply timings and the MetricsCollector gauges

# Design Patterns

Command sourcing:
  - State changes are data (JSON commands), not method calls, so the Raft
    log fully determines store contents and replicas cannot diverge

Read-your-local-writes:
  - Reads skip Raft for latency; on a follower they may trail the leader
    by an election timeout, which is acceptable for every current consumer
    (the controller only computes on the leader)

Sidecar collector:
  - MetricsCollector lives in this package rather than pkg/metrics so the
    dependency arrow keeps pointing manager -> metrics

# Failure Modes

  - Apply on a non-leader: returns an error; callers surface it (the API
    returns it to the client, which should retry against the leader)
  - Apply timeout: 5s bound per command; a partitioned leader fails fast
  - FSM apply errors: returned through the Raft future and logged

# Troubleshooting

"raft not initialized":

 1. Neither Bootstrap nor Join ran; the manager only serves reads

No leader elected:

 1. Check quorum: a majority of voters must be reachable
 2. Inspect GetRaftStats() output for term churn and last contact

Instance stuck down after recovery:

 1. The instance must heartbeat again to return to the live set; down
    status does not expire on its own

# Performance Characteristics

Apply latency:
  - One Raft round trip plus an fsync on each voter; single-digit
    milliseconds on a LAN, bounded by the 5s command timeout
  - Heartbeats dominate write volume: N instances at a 10s period is
    N/10 commands per second, comfortably inside BoltDB's single-writer
    budget for realistic fleets

Snapshot assembly:
  - Full store scan per reconciliation cycle: O(instances + models +
    reports); hundreds of microseconds at controller scale
  - Raft log compaction snapshots serialize the entire store; size is
    proportional to cluster state, not history

Memory:
  - The manager holds no caches; every read hits BoltDB's mmap, so
    resident memory tracks the database's hot pages

# Monitoring

Watch these signals per controller:

  - burrow_raft_is_leader: exactly one controller at 1; zero everywhere
    means no quorum
  - burrow_raft_commit_duration_seconds: rising p99 means a slow or
    partitioned voter
  - burrow_instances_total{status="down"}: growing counts mean heartbeat
    loss, probe failures, or a dead fleet
  - instance.down events carry the instance id for alert enrichment

# Best Practices

Do:
  - Give each controller a unique, stable NodeID; Raft identity follows it
  - Keep the data directory on local disk (BoltDB and Raft both fsync)
  - Run three or five controllers; even counts waste a voter
  - Route mutations to the leader (the API returns Raft errors otherwise)

Don't:
  - Share a data directory between processes; the store holds a file lock
  - Mutate the store directly in production code; only the FSM writes
  - Tune Raft timeouts below the defaults here without LAN-grade latency

# See Also

  - pkg/controller for the loop that drives rebalancing on the leader
  - pkg/storage for bucket layout and the write path
  - Hashicorp Raft: https://github.com/hashicorp/raft
*/
package manager
