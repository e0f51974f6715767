/*
Package client is the Go client for the controller's admin API.

The burrow CLI uses it for every remote command; participant agents can use
it to register, heartbeat, and report replica states. The client is a thin
JSON/HTTP wrapper: one method per endpoint, no retries, no connection
state beyond the standard library's transport pooling.

# Architecture

	┌─────────────── CLIENT ───────────────┐
	│                                       │
	│  Client methods                       │
	│  RegisterInstance / Heartbeat / ...   │
	│              │                        │
	│              ▼                        │
	│  ┌─────────────────────────┐         │
	│  │ do(method, path, in, out)│         │
	│  │  - JSON encode request   │         │
	│  │  - decode {"error": ...} │         │
	│  │  - decode response body  │         │
	│  └────────────┬────────────┘         │
	│               ▼                       │
	│     http.Client (10s timeout)         │
	│               ▼                       │
	│     controller admin API              │
	└───────────────────────────────────────┘

# Method Catalog

Instances:
  - RegisterInstance, ListInstances, RemoveInstance, Heartbeat

Resources and models:
  - CreateResource, ListResources, DeleteResource
  - CreateStateModel, ListStateModels

Placement:
  - GetIdealState
  - ReportCurrentState

Controller cluster:
  - AddController (Raft voter admission, leader only)
  - Leader (leader's Raft bind address + whether the target is leader)

# Error Handling

Any response with status 400 or above becomes a Go error. When the server
supplied a JSON error body, its message is surfaced verbatim:

	POST /v1/resources: unknown state model "Nope"

Otherwise the status code is reported. Transport failures (connection
refused, timeout) return the underlying net/http error. The client does
not retry. Leader() returns the leader's Raft bind address (its
--bind-addr), not the address of its admin API.

# Usage

CLI-style administration:

	c := client.NewClient("localhost:7070")

	err := c.CreateResource(&types.Resource{
		Name:          "db",
		StateModel:    "MasterSlave",
		NumPartitions: 8,
		Replicas:      "3",
	})

	is, err := c.GetIdealState("db")
	for partition, instances := range is.ListFields {
		fmt.Println(partition, instances)
	}

Participant agent loop:

	c := client.NewClient(controllerAddr)

	instance := &types.Instance{ID: "n0", Address: "10.0.0.5:7000", Enabled: true}
	if err := c.RegisterInstance(instance); err != nil {
		return err
	}

	ticker := time.NewTicker(10 * time.Second)
	for range ticker.C {
		if err := c.Heartbeat(instance.ID); err != nil {
			log.Errorf("heartbeat failed", err)
		}
	}

Reporting replica states:

	err := c.ReportCurrentState(&types.CurrentState{
		InstanceID:      "n0",
		Resource:        "db",
		PartitionStates: map[string]string{"db_0": "MASTER"},
	})

Finding the leader:

	leader, isLeader, err := c.Leader()
	if err == nil && !isLeader {
		// leader is the Raft bind address, e.g. "10.0.0.1:7100",
		// not the leader's admin API address
		fmt.Println("leader:", leader)
	}

# Design Patterns

Single transport helper:
  - Every method funnels through do(), so encoding, error mapping, and
    timeouts live in one place

Mutable-in, filled-out:
  - Create methods decode the server's response back into the argument,
    so generated fields (instance ids, timestamps) appear on the caller's
    struct after the call

# Troubleshooting

"connection refused":

 1. The admin API listens on the --api-addr of the controller process;
    confirm the address and that the controller is running

Mutations fail against a follower:

 1. Use Leader() to identify the leader; it reports the Raft bind
    address, so re-point the client at that controller's --api-addr

# Best Practices

Do:
  - Reuse one Client per target controller; the underlying transport
    pools connections
  - Re-resolve the leader on mutation errors rather than retrying blind
  - Set instance ids explicitly when the caller owns naming; omitted ids
    are generated server-side

Don't:
  - Share a Client across goroutines that re-point it; create one per
    target instead (the struct itself is immutable after NewClient)
  - Parse error strings; match on behavior (status-derived errors all
    flow through the returned error)

# See Also

  - pkg/api for endpoint semantics and validation rules
  - cmd/burrow for the CLI built on this client
*/
package client
