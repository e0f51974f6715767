/*
Package types defines the core data structures used throughout Burrow.

This package contains all fundamental types that represent Burrow's domain
model: instances, resources, state models, ideal states, current-state
reports, and the snapshot types the controller hands to the placement
pipeline. These types are used by every other package for state management,
API payloads, and placement logic.

# Architecture

The types package is the foundation of Burrow's data model. It defines:

  - Cluster topology (instances and their liveness)
  - Resource specifications (partitions, replicas, state models)
  - Placement records (ideal states, assignments)
  - Participant reports (current states, pending transitions)
  - The read-only snapshot consumed by the rebalance pipeline

All types are designed to be:
  - Serializable (JSON for storage and the admin API)
  - Self-documenting (clear field names and comments)
  - Dependency-free (stdlib only, importable from anywhere)

# Core Types

Cluster Topology:
  - Instance: a cluster member that can host partition replicas
  - InstanceStatus: live, down, unknown

Resource Management:
  - Resource: a partitioned, replicated workload definition
  - StateModelDefinition: ordered replica states with count specifiers
  - StateSpec: one state in a model's priority list

Placement:
  - IdealState: the persisted target assignment (list + map fields)
  - RebalanceMode: auto (controller-owned) or manual (operator-owned)
  - ResourceAssignment: the raw output of one placement computation

Participant Reports:
  - CurrentState: one instance's replica states for one resource, plus
    the transitions issued to it that it has not yet acknowledged
  - CurrentStateOutput: the aggregated resource/partition/instance view

Pipeline Input:
  - ClusterSnapshot: live set, full instance list, state models, and the
    merged current-state output, all read-only

# Ideal State Fields

An IdealState carries two parallel field collections per partition:

	ListFields["db_0"] = ["n2", "n1"]          // one entry per replica slot
	MapFields["db_0"]  = {"n2": "MASTER",      // instance -> state
	                      "n1": "SLAVE"}

In auto mode only the list fields are authoritative: replica states are
derived downstream from list order and the state model, so the controller
persists ideal states with empty map fields. The list ordering is stable so
consumers can detect anti-affinity violations by position.

# Usage

Defining a resource:

	resource := &types.Resource{
		Name:          "db",
		StateModel:    "MasterSlave",
		NumPartitions: 8,
		Replicas:      "3",   // or "N" for one replica per live instance
	}

	resource.PartitionName(0)  // "db_0"
	resource.Partitions()      // ["db_0", ..., "db_7"]

Registering an instance:

	instance := &types.Instance{
		ID:      "n0",
		Address: "10.0.0.5:7000",
		Enabled: true,
		Tags:    map[string]string{"rack": "r1"},
	}

Reporting current state:

	cs := &types.CurrentState{
		InstanceID:      "n0",
		Resource:        "db",
		PartitionStates: map[string]string{"db_0": "MASTER"},
		Pending:         map[string]string{"db_3": "SLAVE"},
	}

Building the aggregated view:

	output := types.NewCurrentStateOutput()
	output.SetCurrentState("db", "db_0", "n0", "MASTER")
	output.SetPendingState("db", "db_3", "n0", "SLAVE")

# Conventions

Enumeration Pattern:

	All enums use typed string constants for safety and clarity:
	  type InstanceStatus string
	  const (
	      InstanceStatusLive InstanceStatus = "live"
	      InstanceStatusDown InstanceStatus = "down"
	  )

Optional Fields:

	Optional configuration uses zero values:
	  - MaxPartitionsPerInstance <= 0 means unlimited
	  - Empty Tags map means no placement hints

Deep Copies:

	IdealState.Clone returns a copy that shares no map or slice storage
	with the original, for callers that mutate a working copy before
	persisting.

# Validation

Key validation rules, enforced by the admin API and the manager:

Resources:
  - Name must be non-empty and unique
  - NumPartitions must be positive
  - StateModel must reference a registered definition

Instances:
  - ID must be non-empty and unique (generated when omitted)
  - Disabled instances never enter the live set, even when heartbeating

Current States:
  - InstanceID and Resource must both be set
  - Stale reports from non-live instances are filtered by the driver, not
    rejected at write time

# Thread Safety

All types in this package are:
  - Read-safe: concurrent reads from multiple goroutines are fine
  - Write-unsafe: mutations must be synchronized by callers

The storage layer (pkg/storage) and manager (pkg/manager) own all
synchronization for persisted state. The rebalance pipeline treats snapshot
types as immutable and never aliases them into outputs.

# Serialization

All types are JSON-serializable. BoltDB stores them as JSON (human-readable
and debuggable with any bolt browser), and the admin API serves the same
encoding, so a record read from the store matches what the API returns
byte for byte.

# Performance Considerations

Memory layout:
  - Records are small and flat; lists and maps are allocated lazily by
    their builders (NewCurrentStateOutput, NewResourceAssignment)
  - Clone is a deep copy; use it only when a mutable working copy is
    actually needed

Serialization cost:
  - JSON round trips dominate storage latency, not CPU; records are tens
    to hundreds of bytes
  - Field names are stable API: renaming a field changes the store format
    and the admin API at once, so treat renames as migrations

# See Also

  - pkg/storage for the persistence layer
  - pkg/manager for lifecycle and snapshot assembly
  - pkg/rebalance for how assignments are computed from snapshots
  - pkg/statemodel for count-specifier resolution
*/
package types
