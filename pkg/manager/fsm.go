package manager

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/hashicorp/raft"
)

// BurrowFSM implements the Raft finite state machine for Burrow's cluster
// state. It applies committed log entries to the store and handles snapshots.
type BurrowFSM struct {
	mu    sync.RWMutex
	store storage.Store
}

// NewBurrowFSM creates a new FSM instance
func NewBurrowFSM(store storage.Store) *BurrowFSM {
	return &BurrowFSM{
		store: store,
	}
}

// Command represents a state change operation in the Raft log
type Command struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

// Apply applies a Raft log entry to the FSM
// This is called by Raft when a log entry is committed
func (f *BurrowFSM) Apply(log *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal command: %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch cmd.Op {
	// Instance operations
	case "create_instance":
		var instance types.Instance
		if err := json.Unmarshal(cmd.Data, &instance); err != nil {
			return err
		}
		return f.store.CreateInstance(&instance)

	case "update_instance":
		var instance types.Instance
		if err := json.Unmarshal(cmd.Data, &instance); err != nil {
			return err
		}
		return f.store.UpdateInstance(&instance)

	case "delete_instance":
		var instanceID string
		if err := json.Unmarshal(cmd.Data, &instanceID); err != nil {
			return err
		}
		if err := f.store.DeleteCurrentStatesByInstance(instanceID); err != nil {
			return err
		}
		return f.store.DeleteInstance(instanceID)

	// Resource operations
	case "create_resource":
		var resource types.Resource
		if err := json.Unmarshal(cmd.Data, &resource); err != nil {
			return err
		}
		return f.store.CreateResource(&resource)

	case "update_resource":
		var resource types.Resource
		if err := json.Unmarshal(cmd.Data, &resource); err != nil {
			return err
		}
		return f.store.UpdateResource(&resource)

	case "delete_resource":
		var name string
		if err := json.Unmarshal(cmd.Data, &name); err != nil {
			return err
		}
		if err := f.store.DeleteIdealState(name); err != nil {
			return err
		}
		return f.store.DeleteResource(name)

	// State model operations
	case "create_state_model":
		var def types.StateModelDefinition
		if err := json.Unmarshal(cmd.Data, &def); err != nil {
			return err
		}
		return f.store.CreateStateModel(&def)

	case "delete_state_model":
		var name string
		if err := json.Unmarshal(cmd.Data, &name); err != nil {
			return err
		}
		return f.store.DeleteStateModel(name)

	// Ideal state operations
	case "save_ideal_state":
		var is types.IdealState
		if err := json.Unmarshal(cmd.Data, &is); err != nil {
			return err
		}
		return f.store.SaveIdealState(&is)

	case "delete_ideal_state":
		var resource string
		if err := json.Unmarshal(cmd.Data, &resource); err != nil {
			return err
		}
		return f.store.DeleteIdealState(resource)

	// Current state operations
	case "save_current_state":
		var cs types.CurrentState
		if err := json.Unmarshal(cmd.Data, &cs); err != nil {
			return err
		}
		return f.store.SaveCurrentState(&cs)

	default:
		return fmt.Errorf("unknown command: %s", cmd.Op)
	}
}

// Snapshot creates a point-in-time snapshot of the FSM
// This is called periodically by Raft to compact the log
func (f *BurrowFSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	instances, err := f.store.ListInstances()
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %v", err)
	}

	resources, err := f.store.ListResources()
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %v", err)
	}

	stateModels, err := f.store.ListStateModels()
	if err != nil {
		return nil, fmt.Errorf("failed to list state models: %v", err)
	}

	idealStates, err := f.store.ListIdealStates()
	if err != nil {
		return nil, fmt.Errorf("failed to list ideal states: %v", err)
	}

	currentStates, err := f.store.ListCurrentStates()
	if err != nil {
		return nil, fmt.Errorf("failed to list current states: %v", err)
	}

	snapshot := &BurrowSnapshot{
		Instances:     instances,
		Resources:     resources,
		StateModels:   stateModels,
		IdealStates:   idealStates,
		CurrentStates: currentStates,
	}

	return snapshot, nil
}

// Restore restores the FSM from a snapshot
// This is called when a node restarts or joins the cluster
func (f *BurrowFSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var snapshot BurrowSnapshot
	if err := json.NewDecoder(rc).Decode(&snapshot); err != nil {
		return fmt.Errorf("failed to decode snapshot: %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, instance := range snapshot.Instances {
		if err := f.store.CreateInstance(instance); err != nil {
			return fmt.Errorf("failed to restore instance: %v", err)
		}
	}

	for _, resource := range snapshot.Resources {
		if err := f.store.CreateResource(resource); err != nil {
			return fmt.Errorf("failed to restore resource: %v", err)
		}
	}

	for _, def := range snapshot.StateModels {
		if err := f.store.CreateStateModel(def); err != nil {
			return fmt.Errorf("failed to restore state model: %v", err)
		}
	}

	for _, is := range snapshot.IdealStates {
		if err := f.store.SaveIdealState(is); err != nil {
			return fmt.Errorf("failed to restore ideal state: %v", err)
		}
	}

	for _, cs := range snapshot.CurrentStates {
		if err := f.store.SaveCurrentState(cs); err != nil {
			return fmt.Errorf("failed to restore current state: %v", err)
		}
	}

	return nil
}

// BurrowSnapshot represents a point-in-time snapshot of cluster state
type BurrowSnapshot struct {
	Instances     []*types.Instance
	Resources     []*types.Resource
	StateModels   []*types.StateModelDefinition
	IdealStates   []*types.IdealState
	CurrentStates []*types.CurrentState
}

// Persist writes the snapshot to the given SnapshotSink
func (s *BurrowSnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		// Encode snapshot as JSON
		if err := json.NewEncoder(sink).Encode(s); err != nil {
			return err
		}
		return sink.Close()
	}()

	if err != nil {
		sink.Cancel()
	}

	return err
}

// Release releases the snapshot resources
func (s *BurrowSnapshot) Release() {}
