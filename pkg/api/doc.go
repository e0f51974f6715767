/*
Package api exposes the controller's admin API over HTTP/JSON.

The server is the surface the burrow CLI and participant agents talk to:
instance registration and heartbeats, resource and state model definitions,
ideal-state reads, current-state reports, and controller cluster
membership. It also serves the operational endpoints: /health, /ready, and
Prometheus /metrics.

# Architecture

	┌──────────────────── ADMIN API ─────────────────────────┐
	│                                                         │
	│  burrow CLI          participant agents                 │
	│  (pkg/client)        (register/heartbeat/report)        │
	│        │                     │                          │
	│        └──────────┬──────────┘                          │
	│                   ▼                                     │
	│  ┌──────────────────────────────────────────┐          │
	│  │       http.ServeMux (method patterns)     │          │
	│  │       + request logging wrapper           │          │
	│  └──────────────────┬───────────────────────┘          │
	│                     ▼                                   │
	│  ┌──────────────────────────────────────────┐          │
	│  │              Manager                      │          │
	│  │  mutations -> Raft -> FSM -> store        │          │
	│  │  reads     -> local store                 │          │
	│  └──────────────────────────────────────────┘          │
	└─────────────────────────────────────────────────────────┘

# Endpoints

Instances:

	GET    /v1/instances                 list instances
	POST   /v1/instances                 register an instance
	DELETE /v1/instances/{id}            remove an instance
	POST   /v1/instances/{id}/heartbeat  record a liveness signal

Resources and state models:

	GET    /v1/resources                 list resources
	POST   /v1/resources                 create a resource (validated)
	DELETE /v1/resources/{name}          delete a resource
	GET    /v1/statemodels               list state model definitions
	POST   /v1/statemodels               register a state model

Placement:

	GET    /v1/idealstates/{resource}    read the persisted ideal state
	POST   /v1/currentstates             report replica states

Controller cluster:

	POST   /v1/cluster/controllers       add a Raft voter (leader only)
	GET    /v1/cluster/leader            leader address + local leadership

Operational:

	GET    /health                       liveness (process is up)
	GET    /ready                        readiness (leader + storage)
	GET    /metrics                      Prometheus exposition

# Request and Response Conventions

  - Request and response bodies are JSON with the pkg/types field names
  - Errors return {"error": "..."} with a 4xx/5xx status
  - Successful creates return 201 with the stored record (ids filled in)
  - Deletes and reports return 204 with no body

Validation happens before the mutation reaches Raft:

  - Resources need a name, a positive partition count, and a registered
    state model
  - State models need a name and at least one state
  - Current-state reports need instance_id and resource

# Leadership

Mutating requests go through the manager and therefore through Raft; they
must be sent to the leader, and a follower returns the Raft error to the
client. GET endpoints are served from the local store on any controller.
GET /v1/cluster/leader reports the leader's Raft bind address (not its
admin API address) and whether this node is the leader:

	{"leader": "10.0.0.1:7100", "is_leader": false}

# Readiness Semantics

/ready returns 200 only when:

 1. A Raft leader exists (this node or a reachable peer)
 2. The local store answers reads

Otherwise it returns 503 with per-check detail:

	{
	  "status": "not ready",
	  "checks": {"raft": "no leader elected", "storage": "ok"},
	  "message": "Waiting for leader election"
	}

Point load balancers and orchestration probes at /ready; /health only
asserts the process is alive.

# Usage

Embedding the server:

	server := api.NewServer(mgr)
	go func() {
		if err := server.Start("127.0.0.1:7070"); err != nil {
			log.Errorf("Admin API server exited", err)
		}
	}()
	defer server.Close()

Driving it with curl:

	curl -s localhost:7070/v1/instances
	curl -s -X POST localhost:7070/v1/resources \
	  -d '{"Name":"db","StateModel":"MasterSlave","NumPartitions":8,"Replicas":"3"}'
	curl -s localhost:7070/v1/idealstates/db

Testing handlers without a listener:

	ts := httptest.NewServer(api.NewServer(mgr).Handler())
	defer ts.Close()

# Integration Points

This package integrates with:

  - pkg/manager: every endpoint delegates to it
  - pkg/client: the Go client for this API
  - pkg/metrics: /metrics exposition and nothing else (no API metrics of
    its own; request handling is logged instead)
  - cmd/burrow: starts the server alongside the controller loop

# Design Patterns

Method-pattern routing:
  - Routes register as "METHOD /path/{param}" on the standard ServeMux;
    no router dependency, and handlers read r.PathValue

Thin handlers:
  - Handlers decode, validate, delegate, encode; business rules live in
    the manager, so the API surface stays mechanical

# Troubleshooting

Mutations fail with a raft error:

 1. The request hit a follower; query /v1/cluster/leader to identify the
    leader (it reports the Raft bind address) and retry against that
    controller's admin API

/ready stays 503:

 1. "no leader elected": the controller quorum has not formed; check
    Raft bind addresses and voter membership
 2. storage errors: the local BoltDB file is unreadable or locked

POST /v1/resources returns 400 "unknown state model":

 1. Register the model first (POST /v1/statemodels or burrow apply)

# Performance Characteristics

Handlers are I/O bound on the manager: reads cost a BoltDB lookup, writes
cost a Raft commit. The server applies 5s/10s read/write timeouts and a
60s idle timeout; there is no request concurrency limit beyond net/http
defaults, which is appropriate for an admin-plane API measured in
requests per second, not thousands.

# Best Practices

Do:
  - Point orchestration probes at /ready and humans at /health
  - Send mutations to the leader (follow /v1/cluster/leader)
  - Front with TLS termination when the admin plane crosses trust zones

Don't:
  - Poll /v1/idealstates in a tight loop from participants; watch the
    event stream or poll at the reconcile interval
  - Treat 204 responses as carrying bodies

# See Also

  - pkg/client for the Go wrapper over these endpoints
  - pkg/manager for mutation semantics and leadership
  - cmd/burrow for server lifecycle
*/
package api
