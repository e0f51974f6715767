package storage

import (
	"github.com/cuemby/burrow/pkg/types"
)

// Store defines the interface for cluster state storage
// This is implemented by BoltDB-backed storage
type Store interface {
	// Instances
	CreateInstance(instance *types.Instance) error
	GetInstance(id string) (*types.Instance, error)
	ListInstances() ([]*types.Instance, error)
	UpdateInstance(instance *types.Instance) error
	DeleteInstance(id string) error

	// Resources
	CreateResource(resource *types.Resource) error
	GetResource(name string) (*types.Resource, error)
	ListResources() ([]*types.Resource, error)
	UpdateResource(resource *types.Resource) error
	DeleteResource(name string) error

	// State model definitions
	CreateStateModel(def *types.StateModelDefinition) error
	GetStateModel(name string) (*types.StateModelDefinition, error)
	ListStateModels() ([]*types.StateModelDefinition, error)
	DeleteStateModel(name string) error

	// Ideal states
	SaveIdealState(is *types.IdealState) error
	GetIdealState(resource string) (*types.IdealState, error)
	ListIdealStates() ([]*types.IdealState, error)
	DeleteIdealState(resource string) error

	// Current states (reported by participants)
	SaveCurrentState(cs *types.CurrentState) error
	GetCurrentState(instanceID, resource string) (*types.CurrentState, error)
	ListCurrentStates() ([]*types.CurrentState, error)
	ListCurrentStatesByResource(resource string) ([]*types.CurrentState, error)
	DeleteCurrentStatesByInstance(instanceID string) error

	// Utility
	Close() error
}
