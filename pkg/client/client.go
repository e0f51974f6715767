package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cuemby/burrow/pkg/types"
)

// Client talks to a controller's admin API
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the controller at addr (host:port)
func NewClient(addr string) *Client {
	return &Client{
		baseURL: "http://" + addr,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// RegisterInstance registers a participant instance
func (c *Client) RegisterInstance(instance *types.Instance) error {
	return c.do(http.MethodPost, "/v1/instances", instance, instance)
}

// ListInstances lists all instances
func (c *Client) ListInstances() ([]*types.Instance, error) {
	var instances []*types.Instance
	err := c.do(http.MethodGet, "/v1/instances", nil, &instances)
	return instances, err
}

// RemoveInstance removes an instance
func (c *Client) RemoveInstance(id string) error {
	return c.do(http.MethodDelete, "/v1/instances/"+id, nil, nil)
}

// Heartbeat records a liveness signal for an instance
func (c *Client) Heartbeat(id string) error {
	return c.do(http.MethodPost, "/v1/instances/"+id+"/heartbeat", nil, nil)
}

// CreateResource registers a resource
func (c *Client) CreateResource(resource *types.Resource) error {
	return c.do(http.MethodPost, "/v1/resources", resource, resource)
}

// ListResources lists all resources
func (c *Client) ListResources() ([]*types.Resource, error) {
	var resources []*types.Resource
	err := c.do(http.MethodGet, "/v1/resources", nil, &resources)
	return resources, err
}

// DeleteResource removes a resource
func (c *Client) DeleteResource(name string) error {
	return c.do(http.MethodDelete, "/v1/resources/"+name, nil, nil)
}

// CreateStateModel registers a state model definition
func (c *Client) CreateStateModel(def *types.StateModelDefinition) error {
	return c.do(http.MethodPost, "/v1/statemodels", def, def)
}

// ListStateModels lists all state model definitions
func (c *Client) ListStateModels() ([]*types.StateModelDefinition, error) {
	var defs []*types.StateModelDefinition
	err := c.do(http.MethodGet, "/v1/statemodels", nil, &defs)
	return defs, err
}

// GetIdealState fetches a resource's ideal state
func (c *Client) GetIdealState(resource string) (*types.IdealState, error) {
	var is types.IdealState
	if err := c.do(http.MethodGet, "/v1/idealstates/"+resource, nil, &is); err != nil {
		return nil, err
	}
	return &is, nil
}

// ReportCurrentState reports an instance's replica states
func (c *Client) ReportCurrentState(cs *types.CurrentState) error {
	return c.do(http.MethodPost, "/v1/currentstates", cs, nil)
}

// AddController adds a controller node to the Raft cluster
func (c *Client) AddController(nodeID, address string) error {
	payload := map[string]string{"node_id": nodeID, "address": address}
	return c.do(http.MethodPost, "/v1/cluster/controllers", payload, nil)
}

// Leader returns the current leader address and whether the target is leader
func (c *Client) Leader() (string, bool, error) {
	var out struct {
		Leader   string `json:"leader"`
		IsLeader bool   `json:"is_leader"`
	}
	err := c.do(http.MethodGet, "/v1/cluster/leader", nil, &out)
	return out.Leader, out.IsLeader, err
}
