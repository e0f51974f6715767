package manager

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/google/uuid"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
	"github.com/rs/zerolog"
)

// DefaultHeartbeatTTL is how long an instance may go without heartbeating
// before it is excluded from the live set.
const DefaultHeartbeatTTL = 30 * time.Second

// Manager owns Burrow's replicated cluster state. All mutations go through
// Raft so every controller replica applies them in the same order; reads are
// served from the local store.
type Manager struct {
	nodeID   string
	bindAddr string
	dataDir  string

	heartbeatTTL time.Duration

	raft        *raft.Raft
	fsm         *BurrowFSM
	store       storage.Store
	eventBroker *events.Broker
	logger      zerolog.Logger
}

// Config holds configuration for creating a Manager
type Config struct {
	NodeID       string
	BindAddr     string
	DataDir      string
	HeartbeatTTL time.Duration
}

// NewManager creates a new Manager instance
func NewManager(cfg *Config) (*Manager, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	fsm := NewBurrowFSM(store)

	eventBroker := events.NewBroker()
	eventBroker.Start()

	ttl := cfg.HeartbeatTTL
	if ttl <= 0 {
		ttl = DefaultHeartbeatTTL
	}

	m := &Manager{
		nodeID:       cfg.NodeID,
		bindAddr:     cfg.BindAddr,
		dataDir:      cfg.DataDir,
		heartbeatTTL: ttl,
		fsm:          fsm,
		store:        store,
		eventBroker:  eventBroker,
		logger:       log.WithComponent("manager"),
	}

	return m, nil
}

// raftConfig returns the tuned Raft configuration shared by Bootstrap and Join.
// Timeouts are tightened from the library defaults: the controller runs on a
// LAN and a stalled leader stalls every rebalance.
func (m *Manager) raftConfig() *raft.Config {
	config := raft.DefaultConfig()
	config.LocalID = raft.ServerID(m.nodeID)
	config.HeartbeatTimeout = 500 * time.Millisecond
	config.ElectionTimeout = 500 * time.Millisecond
	config.CommitTimeout = 50 * time.Millisecond
	config.LeaderLeaseTimeout = 250 * time.Millisecond
	return config
}

// setupRaft wires transport, snapshot store, and BoltDB log/stable stores
func (m *Manager) setupRaft() error {
	addr, err := net.ResolveTCPAddr("tcp", m.bindAddr)
	if err != nil {
		return fmt.Errorf("failed to resolve bind address: %w", err)
	}

	transport, err := raft.NewTCPTransport(m.bindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	snapshotStore, err := raft.NewFileSnapshotStore(m.dataDir, 2, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(m.dataDir, "raft-log.db"))
	if err != nil {
		return fmt.Errorf("failed to create log store: %w", err)
	}

	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(m.dataDir, "raft-stable.db"))
	if err != nil {
		return fmt.Errorf("failed to create stable store: %w", err)
	}

	r, err := raft.NewRaft(m.raftConfig(), m.fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return fmt.Errorf("failed to create raft: %w", err)
	}

	m.raft = r
	return nil
}

// Bootstrap initializes a new single-node Raft cluster
func (m *Manager) Bootstrap() error {
	if err := m.setupRaft(); err != nil {
		return err
	}

	configuration := raft.Configuration{
		Servers: []raft.Server{
			{
				ID:      raft.ServerID(m.nodeID),
				Address: raft.ServerAddress(m.bindAddr),
			},
		},
	}

	future := m.raft.BootstrapCluster(configuration)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to bootstrap cluster: %w", err)
	}

	m.logger.Info().Str("node_id", m.nodeID).Msg("Bootstrapped controller cluster")
	return nil
}

// Join starts Raft without bootstrapping. The current leader must add this
// node with AddVoter (burrow controller add) for it to participate.
func (m *Manager) Join() error {
	if err := m.setupRaft(); err != nil {
		return err
	}
	m.logger.Info().Str("node_id", m.nodeID).Msg("Waiting to be added to controller cluster")
	return nil
}

// AddVoter adds a new controller node to the Raft cluster
func (m *Manager) AddVoter(nodeID, address string) error {
	if m.raft == nil {
		return fmt.Errorf("raft not initialized")
	}
	future := m.raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(address), 0, 10*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to add voter: %w", err)
	}
	return nil
}

// RemoveServer removes a controller node from the Raft cluster
func (m *Manager) RemoveServer(nodeID string) error {
	if m.raft == nil {
		return fmt.Errorf("raft not initialized")
	}
	future := m.raft.RemoveServer(raft.ServerID(nodeID), 0, 10*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to remove server: %w", err)
	}
	return nil
}

// IsLeader returns whether this node is the Raft leader
func (m *Manager) IsLeader() bool {
	if m.raft == nil {
		return false
	}
	return m.raft.State() == raft.Leader
}

// LeaderAddr returns the current leader's address
func (m *Manager) LeaderAddr() string {
	if m.raft == nil {
		return ""
	}
	addr, _ := m.raft.LeaderWithID()
	return string(addr)
}

// GetRaftStats returns Raft runtime statistics
func (m *Manager) GetRaftStats() map[string]string {
	if m.raft == nil {
		return nil
	}
	return m.raft.Stats()
}

// GetEventBroker returns the manager's event broker
func (m *Manager) GetEventBroker() *events.Broker {
	return m.eventBroker
}

// PublishEvent publishes a cluster event
func (m *Manager) PublishEvent(eventType events.EventType, message string, metadata map[string]string) {
	m.eventBroker.Publish(&events.Event{
		ID:       uuid.New().String(),
		Type:     eventType,
		Message:  message,
		Metadata: metadata,
	})
}

// Apply submits a command through Raft and waits for it to commit
func (m *Manager) Apply(cmd Command) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RaftCommitDuration)

	if m.raft == nil {
		return fmt.Errorf("raft not initialized")
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	future := m.raft.Apply(data, 5*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to apply command: %w", err)
	}

	// Check if apply returned an error
	if resp := future.Response(); resp != nil {
		if err, ok := resp.(error); ok && err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) apply(op string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return m.Apply(Command{Op: op, Data: data})
}

// RegisterInstance adds a participant instance to the cluster
func (m *Manager) RegisterInstance(instance *types.Instance) error {
	if instance.ID == "" {
		instance.ID = uuid.New().String()
	}
	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = time.Now()
	}
	instance.Status = types.InstanceStatusLive
	instance.LastHeartbeat = time.Now()

	if err := m.apply("create_instance", instance); err != nil {
		return err
	}

	m.PublishEvent(events.EventInstanceJoined, "Instance joined the cluster", map[string]string{
		"instance_id": instance.ID,
	})
	return nil
}

// UpdateInstance updates an instance record
func (m *Manager) UpdateInstance(instance *types.Instance) error {
	return m.apply("update_instance", instance)
}

// RemoveInstance removes an instance and its reported states
func (m *Manager) RemoveInstance(id string) error {
	if err := m.apply("delete_instance", id); err != nil {
		return err
	}
	m.PublishEvent(events.EventInstanceLeft, "Instance left the cluster", map[string]string{
		"instance_id": id,
	})
	return nil
}

// Heartbeat records a liveness signal from an instance
func (m *Manager) Heartbeat(instanceID string) error {
	instance, err := m.store.GetInstance(instanceID)
	if err != nil {
		return err
	}
	instance.LastHeartbeat = time.Now()
	instance.Status = types.InstanceStatusLive
	return m.apply("update_instance", instance)
}

// CreateResource registers a partitioned resource
func (m *Manager) CreateResource(resource *types.Resource) error {
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = time.Now()
	}
	resource.UpdatedAt = time.Now()
	if err := m.apply("create_resource", resource); err != nil {
		return err
	}
	m.PublishEvent(events.EventResourceCreated, "Resource created", map[string]string{
		"resource": resource.Name,
	})
	return nil
}

// UpdateResource updates a resource definition
func (m *Manager) UpdateResource(resource *types.Resource) error {
	resource.UpdatedAt = time.Now()
	return m.apply("update_resource", resource)
}

// DeleteResource removes a resource and its ideal state
func (m *Manager) DeleteResource(name string) error {
	if err := m.apply("delete_resource", name); err != nil {
		return err
	}
	m.PublishEvent(events.EventResourceDeleted, "Resource deleted", map[string]string{
		"resource": name,
	})
	return nil
}

// CreateStateModel registers a state model definition
func (m *Manager) CreateStateModel(def *types.StateModelDefinition) error {
	return m.apply("create_state_model", def)
}

// SaveIdealState persists a computed ideal state
func (m *Manager) SaveIdealState(is *types.IdealState) error {
	return m.apply("save_ideal_state", is)
}

// ReportCurrentState records an instance's replica states for a resource
func (m *Manager) ReportCurrentState(cs *types.CurrentState) error {
	cs.UpdatedAt = time.Now()
	return m.apply("save_current_state", cs)
}

// Read operations are served from the local store.

func (m *Manager) GetInstance(id string) (*types.Instance, error) { return m.store.GetInstance(id) }
func (m *Manager) ListInstances() ([]*types.Instance, error)      { return m.store.ListInstances() }
func (m *Manager) GetResource(name string) (*types.Resource, error) {
	return m.store.GetResource(name)
}
func (m *Manager) ListResources() ([]*types.Resource, error) { return m.store.ListResources() }
func (m *Manager) GetStateModel(name string) (*types.StateModelDefinition, error) {
	return m.store.GetStateModel(name)
}
func (m *Manager) ListStateModels() ([]*types.StateModelDefinition, error) {
	return m.store.ListStateModels()
}
func (m *Manager) GetIdealState(resource string) (*types.IdealState, error) {
	return m.store.GetIdealState(resource)
}
func (m *Manager) ListIdealStates() ([]*types.IdealState, error) { return m.store.ListIdealStates() }

// MarkStaleInstancesDown flags instances whose heartbeat has expired. It
// returns the ids it transitioned so the caller can log or publish them.
func (m *Manager) MarkStaleInstancesDown() ([]string, error) {
	instances, err := m.store.ListInstances()
	if err != nil {
		return nil, err
	}

	var marked []string
	now := time.Now()
	for _, instance := range instances {
		if instance.Status != types.InstanceStatusLive {
			continue
		}
		if now.Sub(instance.LastHeartbeat) <= m.heartbeatTTL {
			continue
		}
		instance.Status = types.InstanceStatusDown
		if err := m.apply("update_instance", instance); err != nil {
			m.logger.Error().Err(err).Str("instance_id", instance.ID).Msg("Failed to mark instance down")
			continue
		}
		marked = append(marked, instance.ID)
		m.PublishEvent(events.EventInstanceDown, "Instance missed heartbeats", map[string]string{
			"instance_id": instance.ID,
		})
	}
	return marked, nil
}

// Snapshot assembles the read-only cluster view the rebalance pipeline
// consumes. Instances are ordered by id so capacity distribution is stable
// across passes and across controller replicas.
func (m *Manager) Snapshot() (*types.ClusterSnapshot, error) {
	instances, err := m.store.ListInstances()
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].ID < instances[j].ID })

	now := time.Now()
	var live []string
	for _, instance := range instances {
		if !instance.Enabled {
			continue
		}
		if instance.Status != types.InstanceStatusLive {
			continue
		}
		if now.Sub(instance.LastHeartbeat) > m.heartbeatTTL {
			continue
		}
		live = append(live, instance.ID)
	}

	defs, err := m.store.ListStateModels()
	if err != nil {
		return nil, fmt.Errorf("failed to list state models: %w", err)
	}
	stateModels := make(map[string]*types.StateModelDefinition, len(defs))
	for _, def := range defs {
		stateModels[def.Name] = def
	}

	currentStates, err := m.store.ListCurrentStates()
	if err != nil {
		return nil, fmt.Errorf("failed to list current states: %w", err)
	}
	output := types.NewCurrentStateOutput()
	for _, cs := range currentStates {
		for partition, state := range cs.PartitionStates {
			output.SetCurrentState(cs.Resource, partition, cs.InstanceID, state)
		}
		for partition, state := range cs.Pending {
			output.SetPendingState(cs.Resource, partition, cs.InstanceID, state)
		}
	}

	return &types.ClusterSnapshot{
		LiveInstances: live,
		Instances:     instances,
		StateModels:   stateModels,
		CurrentState:  output,
	}, nil
}

// EnsureDefaultStateModels registers the built-in state models if missing
func (m *Manager) EnsureDefaultStateModels() error {
	for _, def := range DefaultStateModels() {
		if _, err := m.store.GetStateModel(def.Name); err == nil {
			continue
		}
		if err := m.CreateStateModel(def); err != nil {
			return err
		}
	}
	return nil
}

// DefaultStateModels returns the state models Burrow ships with
func DefaultStateModels() []*types.StateModelDefinition {
	return []*types.StateModelDefinition{
		{
			Name:         "MasterSlave",
			InitialState: "OFFLINE",
			States: []types.StateSpec{
				{Name: "MASTER", CountSpec: "1"},
				{Name: "SLAVE", CountSpec: "R"},
			},
		},
		{
			Name:         "LeaderStandby",
			InitialState: "OFFLINE",
			States: []types.StateSpec{
				{Name: "LEADER", CountSpec: "1"},
				{Name: "STANDBY", CountSpec: "R"},
			},
		},
		{
			Name:         "OnlineOffline",
			InitialState: "OFFLINE",
			States: []types.StateSpec{
				{Name: "ONLINE", CountSpec: "R"},
			},
		},
	}
}

// Shutdown stops the manager and releases its resources
func (m *Manager) Shutdown() error {
	if m.eventBroker != nil {
		m.eventBroker.Stop()
	}

	if m.raft != nil {
		future := m.raft.Shutdown()
		if err := future.Error(); err != nil {
			return fmt.Errorf("failed to shutdown raft: %w", err)
		}
	}

	if m.store != nil {
		if err := m.store.Close(); err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
	}

	return nil
}
