package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cuemby/burrow/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketInstances     = []byte("instances")
	bucketResources     = []byte("resources")
	bucketStateModels   = []byte("state_models")
	bucketIdealStates   = []byte("ideal_states")
	bucketCurrentStates = []byte("current_states")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "burrow.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketInstances,
			bucketResources,
			bucketStateModels,
			bucketIdealStates,
			bucketCurrentStates,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Instance operations
func (s *BoltStore) CreateInstance(instance *types.Instance) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketInstances)
		data, err := json.Marshal(instance)
		if err != nil {
			return err
		}
		return b.Put([]byte(instance.ID), data)
	})
}

func (s *BoltStore) GetInstance(id string) (*types.Instance, error) {
	var instance types.Instance
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketInstances)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("instance not found: %s", id)
		}
		return json.Unmarshal(data, &instance)
	})
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (s *BoltStore) ListInstances() ([]*types.Instance, error) {
	var instances []*types.Instance
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketInstances)
		return b.ForEach(func(k, v []byte) error {
			var instance types.Instance
			if err := json.Unmarshal(v, &instance); err != nil {
				return err
			}
			instances = append(instances, &instance)
			return nil
		})
	})
	return instances, err
}

func (s *BoltStore) UpdateInstance(instance *types.Instance) error {
	return s.CreateInstance(instance) // Same as create (upsert)
}

func (s *BoltStore) DeleteInstance(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketInstances)
		return b.Delete([]byte(id))
	})
}

// Resource operations
func (s *BoltStore) CreateResource(resource *types.Resource) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResources)
		data, err := json.Marshal(resource)
		if err != nil {
			return err
		}
		return b.Put([]byte(resource.Name), data)
	})
}

func (s *BoltStore) GetResource(name string) (*types.Resource, error) {
	var resource types.Resource
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResources)
		data := b.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("resource not found: %s", name)
		}
		return json.Unmarshal(data, &resource)
	})
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (s *BoltStore) ListResources() ([]*types.Resource, error) {
	var resources []*types.Resource
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResources)
		return b.ForEach(func(k, v []byte) error {
			var resource types.Resource
			if err := json.Unmarshal(v, &resource); err != nil {
				return err
			}
			resources = append(resources, &resource)
			return nil
		})
	})
	return resources, err
}

func (s *BoltStore) UpdateResource(resource *types.Resource) error {
	return s.CreateResource(resource)
}

func (s *BoltStore) DeleteResource(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResources)
		return b.Delete([]byte(name))
	})
}

// State model operations
func (s *BoltStore) CreateStateModel(def *types.StateModelDefinition) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketStateModels)
		data, err := json.Marshal(def)
		if err != nil {
			return err
		}
		return b.Put([]byte(def.Name), data)
	})
}

func (s *BoltStore) GetStateModel(name string) (*types.StateModelDefinition, error) {
	var def types.StateModelDefinition
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketStateModels)
		data := b.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("state model not found: %s", name)
		}
		return json.Unmarshal(data, &def)
	})
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *BoltStore) ListStateModels() ([]*types.StateModelDefinition, error) {
	var defs []*types.StateModelDefinition
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketStateModels)
		return b.ForEach(func(k, v []byte) error {
			var def types.StateModelDefinition
			if err := json.Unmarshal(v, &def); err != nil {
				return err
			}
			defs = append(defs, &def)
			return nil
		})
	})
	return defs, err
}

func (s *BoltStore) DeleteStateModel(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketStateModels)
		return b.Delete([]byte(name))
	})
}

// Ideal state operations
func (s *BoltStore) SaveIdealState(is *types.IdealState) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketIdealStates)
		data, err := json.Marshal(is)
		if err != nil {
			return err
		}
		return b.Put([]byte(is.Resource), data)
	})
}

func (s *BoltStore) GetIdealState(resource string) (*types.IdealState, error) {
	var is types.IdealState
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketIdealStates)
		data := b.Get([]byte(resource))
		if data == nil {
			return fmt.Errorf("ideal state not found: %s", resource)
		}
		return json.Unmarshal(data, &is)
	})
	if err != nil {
		return nil, err
	}
	return &is, nil
}

func (s *BoltStore) ListIdealStates() ([]*types.IdealState, error) {
	var states []*types.IdealState
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketIdealStates)
		return b.ForEach(func(k, v []byte) error {
			var is types.IdealState
			if err := json.Unmarshal(v, &is); err != nil {
				return err
			}
			states = append(states, &is)
			return nil
		})
	})
	return states, err
}

func (s *BoltStore) DeleteIdealState(resource string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketIdealStates)
		return b.Delete([]byte(resource))
	})
}

// Current state operations. Keys are "<instance>/<resource>" so one
// participant's reports for different resources stay separate records.
func (s *BoltStore) SaveCurrentState(cs *types.CurrentState) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCurrentStates)
		data, err := json.Marshal(cs)
		if err != nil {
			return err
		}
		return b.Put([]byte(cs.Key()), data)
	})
}

func (s *BoltStore) GetCurrentState(instanceID, resource string) (*types.CurrentState, error) {
	var cs types.CurrentState
	key := instanceID + "/" + resource
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCurrentStates)
		data := b.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("current state not found: %s", key)
		}
		return json.Unmarshal(data, &cs)
	})
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (s *BoltStore) ListCurrentStates() ([]*types.CurrentState, error) {
	var states []*types.CurrentState
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCurrentStates)
		return b.ForEach(func(k, v []byte) error {
			var cs types.CurrentState
			if err := json.Unmarshal(v, &cs); err != nil {
				return err
			}
			states = append(states, &cs)
			return nil
		})
	})
	return states, err
}

func (s *BoltStore) ListCurrentStatesByResource(resource string) ([]*types.CurrentState, error) {
	all, err := s.ListCurrentStates()
	if err != nil {
		return nil, err
	}
	var states []*types.CurrentState
	for _, cs := range all {
		if cs.Resource == resource {
			states = append(states, cs)
		}
	}
	return states, nil
}

func (s *BoltStore) DeleteCurrentStatesByInstance(instanceID string) error {
	prefix := instanceID + "/"
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCurrentStates)
		var keys [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if strings.HasPrefix(string(k), prefix) {
				keys = append(keys, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
