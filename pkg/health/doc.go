/*
Package health provides health check mechanisms for monitoring participant
instances.

Two checker types are implemented: HTTP (probe a status endpoint and accept
a status-code range) and TCP (probe that the serving port accepts
connections). A Status state machine tracks consecutive results per target,
and a Monitor runs the probe loop over the instance fleet, firing a
callback on healthy/unhealthy transitions.

# Architecture

	┌──────────────────── HEALTH SYSTEM ─────────────────────┐
	│                                                         │
	│  ┌──────────────────────────────────────────┐          │
	│  │            Checker interface              │          │
	│  │  - Check(ctx) Result                      │          │
	│  │  - Type() CheckType                       │          │
	│  └──────────────┬───────────────────────────┘          │
	│                 │                                       │
	│         ┌───────┴────────┐                             │
	│         ▼                ▼                             │
	│    ┌─────────┐      ┌─────────┐                        │
	│    │  HTTP   │      │   TCP   │                        │
	│    │ Checker │      │ Checker │                        │
	│    └────┬────┘      └────┬────┘                        │
	│         └───────┬────────┘                             │
	│                 ▼                                       │
	│  ┌──────────────────────────────────────────┐          │
	│  │               Monitor                     │          │
	│  │  - probe loop on Config.Interval          │          │
	│  │  - Status per target (retry threshold)    │          │
	│  │  - onChange(id, healthy, result)          │          │
	│  └──────────────┬───────────────────────────┘          │
	│                 ▼                                       │
	│  cmd/burrow: mark instance down, publish event          │
	└─────────────────────────────────────────────────────────┘

# Why Probes Next to Heartbeats

Heartbeats are the primary liveness signal: the manager expires instances
whose heartbeat exceeds the TTL. Probes are the secondary signal for a
failure mode heartbeats cannot see: a wedged participant whose control
loop keeps heartbeating while its serving port is dead. The monitor
detects the dead port and the instance is marked down, which orphans its
replicas on the next rebalance even though heartbeats continue.

# Core Components

Checker:
  - HTTPChecker: GET (configurable method/headers) against a URL, healthy
    when the status code falls in the accepted range (default 200-399)
  - TCPChecker: dials the address with a timeout, healthy on connect

Result:
  - Healthy flag, human-readable Message, CheckedAt, Duration

Config:
  - Interval between probe rounds (default 30s)
  - Timeout per probe (default 10s)
  - Retries: consecutive failures before a target flips unhealthy
  - StartPeriod: grace window for slow-starting instances

Status:
  - Tracks consecutive successes and failures per target
  - Flips to unhealthy only at the retry threshold, so a single dropped
    probe does not mark an instance down
  - Recovers on the first success

Monitor:
  - SetTargets replaces the probed set, preserving Status for retained ids
  - Start/Stop run the loop; probeAll executes one round
  - onChange fires only on healthy/unhealthy boundary crossings
  - StatusOf exposes a copy of a target's current status

# Usage

One-shot checks:

	checker := health.NewTCPChecker("10.0.0.5:7000")
	result := checker.Check(ctx)
	if !result.Healthy {
		fmt.Println(result.Message)
	}

	httpCheck := health.NewHTTPChecker("http://10.0.0.5:8080/healthz").
		WithStatusRange(200, 299).
		WithTimeout(2 * time.Second)

Running a monitor over the fleet:

	monitor := health.NewMonitor(health.DefaultConfig(),
		func(id string, healthy bool, result health.Result) {
			if !healthy {
				markInstanceDown(id, result.Message)
			}
		})
	monitor.Start()
	defer monitor.Stop()

	monitor.SetTargets([]health.Target{
		{ID: "n0", Checker: health.NewTCPChecker("10.0.0.5:7000")},
		{ID: "n1", Checker: health.NewTCPChecker("10.0.0.6:7000")},
	})

The cmd/burrow controller wires exactly this behind the --probe-instances
flag, refreshing targets from the instance registry every 30 seconds.

# Threshold Behavior

With Retries = 3:

	probe:   ok   ok   fail fail fail fail ok
	healthy: yes  yes  yes  yes  NO   NO   yes
	                        ▲         ▲    ▲
	                        │         │    └ recovery on first success
	                        │         └ stays unhealthy
	                        └ still healthy (2 < 3 failures)

Transitions fire the callback once per boundary crossing, not once per
failing probe, so downstream marking logic stays idempotent.

# Design Patterns

Builder-style configuration:
  - HTTPChecker options chain (WithMethod, WithHeader, WithStatusRange,
    WithTimeout) over a constructor with many parameters

Probe isolation:
  - Each probe gets its own context with the configured timeout; one
    hanging target cannot stall the whole round beyond its timeout

# Performance Characteristics

  - A probe round is sequential: worst case targets x timeout; with the
    defaults (10s timeout) a fleet of mostly-dead instances can stretch a
    round, so large fleets should lower the timeout
  - Memory: one Status per target, reclaimed when SetTargets drops it

# Troubleshooting

Instances flap between live and down:

 1. Raise Retries or the probe timeout; short timeouts plus GC pauses on
    the participant produce false negatives
 2. Check the probed address is the serving port, not an ephemeral one

Monitor never fires the callback:

 1. Confirm Start was called (SetTargets alone does not probe)
 2. The callback only fires on transitions; an instance that was already
    unhealthy at first probe transitions once and then stays silent

# Monitoring

The monitor emits no metrics itself; its effects surface through the
instances it marks down:

  - burrow_instances_total{status="down"} rises on probe failures
  - instance.down events carry probe messages in their metadata
  - StatusOf supports ad hoc inspection from debug tooling

# Best Practices

Do:
  - Probe the serving port participants actually answer on
  - Match Retries x Interval to your tolerance for acting on flapping
  - Keep the TCP checker as the default; HTTP checks belong to
    participants that expose a real status endpoint

Don't:
  - Probe through load balancers (you would measure the balancer)
  - Set Interval below a second; the fleet loop refreshes targets every
    30 seconds and faster probing only burns sockets

# See Also

  - pkg/manager for heartbeat-based liveness (the primary signal)
  - cmd/burrow for the fleet wiring behind --probe-instances
*/
package health
