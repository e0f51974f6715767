/*
Package log provides structured logging for Burrow using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper
functions for common logging patterns. All logs include timestamps and
support filtering by severity level for production debugging.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Context Loggers                     │          │
	│  │  - WithComponent("controller")              │          │
	│  │  - WithResource("db")                       │          │
	│  │  - WithInstanceID("n0")                     │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │                                             │          │
	│  │  JSON Format:                               │          │
	│  │  {                                          │          │
	│  │    "level": "info",                         │          │
	│  │    "component": "controller",               │          │
	│  │    "resource": "db",                        │          │
	│  │    "message": "Persisted new ideal state"   │          │
	│  │  }                                          │          │
	│  │                                             │          │
	│  │  Console Format:                            │          │
	│  │  2026-07-30T10:30:00Z INF Persisted new     │          │
	│  │          ideal state component=controller   │          │
	│  │          resource=db                        │          │
	│  └────────────────────────────────────────────┘          │
	└───────────────────────────────────────────────────────────┘

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from all Burrow packages
  - Thread-safe concurrent writes

Log Levels:
  - Debug: detailed pipeline tracing (per-resource computations)
  - Info: lifecycle events (controller started, ideal state persisted)
  - Warn: degraded outcomes (unplaceable replica, missed heartbeats)
  - Error: failed operations (storage errors, Raft apply failures)
  - Fatal: unrecoverable errors, exits the process

Configuration:
  - Level: filter messages below threshold
  - JSONOutput: JSON vs human-readable console
  - Output: io.Writer for log destination (stdout, file)

Context Loggers:
  - WithComponent: tag all logs with the emitting subsystem
  - WithResource: tag logs with a resource name
  - WithInstanceID: tag logs with an instance id

# Usage

Initializing the logger:

	import "github.com/cuemby/burrow/pkg/log"

	// JSON output (production)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

	// Console output (development)
	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: false,
	})

	// Custom output (tests)
	log.Init(log.Config{
		Level:  log.ErrorLevel,
		Output: io.Discard,
	})

Simple logging:

	log.Info("Controller started")
	log.Warn("Instance missed heartbeats")
	log.Errorf("Failed to persist ideal state", err)

Structured logging:

	log.Logger.Info().
		Str("resource", "db").
		Int("replicas_placed", 24).
		Msg("Persisted new ideal state")

	log.Logger.Error().
		Err(err).
		Str("instance_id", "n0").
		Msg("Failed to mark instance down")

Component loggers:

	logger := log.WithComponent("rebalance")
	logger.Warn().
		Str("replica", "db_0|1").
		Msg("Unable to place replica; no live instance can accept it")

# Log Output Examples

JSON format (production):

	{"level":"info","component":"controller","resource":"db","time":"2026-07-30T10:30:00Z","message":"Persisted new ideal state"}
	{"level":"warn","component":"rebalance","replica":"db_0|1","time":"2026-07-30T10:30:01Z","message":"Unable to place replica; no live instance can accept it"}

Console format (development):

	2026-07-30T10:30:00Z INF Persisted new ideal state component=controller resource=db
	2026-07-30T10:30:01Z WRN Unable to place replica; no live instance can accept it component=rebalance replica=db_0|1

# Integration Points

This package integrates with:

  - pkg/manager: logs Raft lifecycle and state mutations
  - pkg/controller: logs reconciliation cycles and persisted assignments
  - pkg/rebalance: logs degraded placement outcomes
  - pkg/strategy: logs per-resource computations at debug level
  - pkg/api: logs handled requests at debug level
  - cmd/burrow: initializes the logger from CLI flags

# Design Patterns

Single initialization:
  - cmd/burrow calls Init once (via cobra.OnInitialize) before any command
    runs; packages never re-initialize
  - Tests that exercise logging call Init in TestMain with io.Discard

Warnings over errors for degraded placement:
  - The rebalance pipeline never fails; it logs warnings and returns a
    well-formed assignment. Operators watch warn-level output to detect
    capacity pressure.

# Best Practices

Do:
  - Use Info level in production
  - Use structured fields for queryable data (resource, instance_id)
  - Create component-specific loggers at construction time
  - Log errors with .Err() so the error chain survives

Don't:
  - Log secrets or instance credentials
  - Use Debug level in production (per-replica tracing is verbose)
  - Concatenate values into messages (use .Str, .Int)

# Performance Characteristics

Zerolog allocates nothing for suppressed levels, so leaving debug
statements in hot paths costs a level check. JSON output writes one
buffer per event. Console output formats per event and is meant for
humans, not throughput. The rebalance pipeline logs only on degradation,
so steady-state log volume tracks cluster change rate, not size.

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - Structured logging: https://www.thoughtworks.com/radar/techniques/structured-logging
  - 12-Factor App Logs: https://12factor.net/logs
*/
package log
