/*
Package storage provides persistent cluster state storage for Burrow.

The Store interface covers all persisted entities: instances, resources,
state model definitions, ideal states, and the current states reported by
participants. BoltStore is the only implementation; records are stored as
JSON in per-entity BoltDB buckets under <data-dir>/burrow.db.

# Architecture

	┌──────────────────── STORAGE LAYER ────────────────────┐
	│                                                        │
	│  ┌──────────────────────────────────────────┐         │
	│  │             Store interface               │         │
	│  │  - Instances:    CRUD + List              │         │
	│  │  - Resources:    CRUD + List              │         │
	│  │  - StateModels:  Create/Get/List/Delete   │         │
	│  │  - IdealStates:  Save/Get/List/Delete     │         │
	│  │  - CurrentStates: Save/Get/List/DeleteBy  │         │
	│  └──────────────────┬───────────────────────┘         │
	│                     │                                  │
	│  ┌──────────────────▼───────────────────────┐         │
	│  │              BoltStore                    │         │
	│  │  - Single file: <data-dir>/burrow.db      │         │
	│  │  - JSON-encoded records                   │         │
	│  │  - One bucket per entity type             │         │
	│  └──────────────────┬───────────────────────┘         │
	│                     │                                  │
	│  ┌──────────────────▼───────────────────────┐         │
	│  │              BoltDB buckets               │         │
	│  │  instances       key: instance id         │         │
	│  │  resources       key: resource name       │         │
	│  │  state_models    key: model name           │         │
	│  │  ideal_states    key: resource name       │         │
	│  │  current_states  key: instance/resource   │         │
	│  └──────────────────────────────────────────┘         │
	└────────────────────────────────────────────────────────┘

# Write Path

On a replicated controller, writes do not hit the Store directly. They go
through the Raft FSM in pkg/manager:

	CLI / API -> Manager.Apply(Command) -> Raft log -> BurrowFSM -> Store

Every controller replica applies the same committed commands in the same
order, so each replica's burrow.db converges to identical contents. Reads
are served from the local store without touching Raft.

Direct Store writes are reserved for the FSM itself (Apply and Restore)
and for tests.

# Key Layout

Most buckets key records by their natural unique name. Current states are
the exception: one participant reports per resource, so records are keyed
"<instance>/<resource>" to keep reports for different resources separate
and to allow prefix deletion when an instance leaves:

	current_states:
	  n0/db     -> {"InstanceID":"n0","Resource":"db",...}
	  n0/cache  -> {"InstanceID":"n0","Resource":"cache",...}
	  n1/db     -> {"InstanceID":"n1","Resource":"db",...}

DeleteCurrentStatesByInstance("n0") removes every "n0/" record in one
transaction.

# Core Components

Store:
  - The interface all consumers depend on; swapping the backing engine
    means implementing these methods and nothing else

BoltStore:
  - NewBoltStore(dataDir) opens or creates burrow.db and ensures buckets
  - Get methods return wrapped "not found" errors when the key is absent
  - Update methods are upserts (Create and Update share semantics)
  - Close releases the file lock

# Usage

Opening a store:

	store, err := storage.NewBoltStore("/var/lib/burrow")
	if err != nil {
		return err
	}
	defer store.Close()

Round-tripping a record:

	resource := &types.Resource{
		Name:          "db",
		StateModel:    "MasterSlave",
		NumPartitions: 8,
		Replicas:      "3",
	}
	if err := store.CreateResource(resource); err != nil {
		return err
	}

	got, err := store.GetResource("db")
	if err != nil {
		return err  // wrapped "resource not found: db" when absent
	}

Listing:

	resources, err := store.ListResources()
	states, err := store.ListCurrentStatesByResource("db")

# Consistency Model

  - Single-writer: BoltDB serializes update transactions; concurrent
    readers proceed against a consistent snapshot (MVCC)
  - Durability: every Update commits to disk before returning
  - Atomicity: multi-record operations (prefix deletes) run inside one
    transaction and are all-or-nothing

Existence checks are done with Get and an error test; there is no separate
Has method, keeping the interface small.

# Performance Characteristics

  - Reads: microseconds for point lookups, linear scans for List
  - Writes: dominated by fsync, roughly single-digit milliseconds
  - ListCurrentStatesByResource scans all current states and filters;
    acceptable at controller scale (hundreds of instances), revisit if a
    deployment reaches tens of thousands of reports
  - File growth: BoltDB never shrinks its file; deleted pages are reused

The controller's write rate is low (heartbeats plus occasional ideal-state
persists), so BoltDB's single-writer model is never the bottleneck.

# Troubleshooting

"failed to open database":

 1. Another process holds the file lock; only one controller process may
    own a data directory
 2. Check directory permissions (the store creates burrow.db mode 0600)

Record missing after a restart:

 1. Confirm the write went through Manager.Apply, not a follower's local
    store; followers reject direct mutations
 2. Check the Raft log applied cleanly (manager logs FSM errors)

Database file grows without bound:

 1. Expected to plateau: BoltDB reuses freed pages; sustained growth means
    sustained new keys, check for leaked current-state reports from
    instances that never get removed

# Best Practices

Do:
  - Open one store per process and share it; BoltStore is safe for
    concurrent use
  - Check Get errors for the not-found case instead of pre-checking
    existence
  - Keep data directories on local disk; network filesystems break the
    locking assumptions

Don't:
  - Hold results of List calls across mutations and expect freshness
  - Write through the store directly when a manager is running; the FSM
    owns the write path

# See Also

  - pkg/manager for the Raft FSM that owns the write path
  - pkg/types for the persisted record shapes
  - BoltDB documentation: https://github.com/etcd-io/bbolt
*/
package storage
