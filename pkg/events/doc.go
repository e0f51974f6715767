/*
Package events provides an in-process publish/subscribe broker for Burrow
cluster events.

The controller publishes events when resources are created, deleted, or
rebalanced, and when instances join, leave, or are marked down. The
resource.updated, idealstate.updated and leader.changed types are defined,
but no component publishes them. Subscribers receive events on buffered
channels; a slow subscriber drops events rather than blocking the broker,
so event delivery can never stall the reconciliation loop.

# Architecture

	┌──────────────────── EVENT SYSTEM ─────────────────────┐
	│                                                        │
	│  Publishers                                            │
	│  ┌───────────┐ ┌────────────┐ ┌──────────────┐        │
	│  │  manager  │ │ controller │ │ cmd/burrow   │        │
	│  └─────┬─────┘ └─────┬──────┘ └──────┬───────┘        │
	│        │             │               │                 │
	│        └─────────────┼───────────────┘                 │
	│                      ▼                                 │
	│  ┌────────────────────────────────────────┐           │
	│  │              Broker                     │           │
	│  │  - eventCh: buffered intake (100)       │           │
	│  │  - run(): single distribution loop      │           │
	│  │  - broadcast to all subscribers         │           │
	│  └──────┬──────────────┬──────────────────┘           │
	│         │              │                               │
	│         ▼              ▼                               │
	│  ┌────────────┐ ┌────────────┐                        │
	│  │ Subscriber │ │ Subscriber │  (buffered chan, 50)   │
	│  │  (CLI tail)│ │ (metrics)  │                        │
	│  └────────────┘ └────────────┘                        │
	└────────────────────────────────────────────────────────┘

# Event Types

Resource lifecycle:
  - resource.created, resource.updated, resource.deleted
  - resource.rebalanced: a new ideal state was persisted

Instance lifecycle:
  - instance.joined: registered with the cluster
  - instance.left: removed from the cluster
  - instance.down: missed heartbeats or failed a health probe

Control plane:
  - idealstate.updated: an ideal state changed outside a rebalance
  - leader.changed: controller leadership moved

# Core Components

Event:
  - ID: unique id assigned by the publisher (uuid)
  - Type: one of the EventType constants
  - Timestamp: set by the broker when left zero
  - Message: human-readable summary
  - Metadata: string key/value context (resource, instance_id)

Broker:
  - Start launches the distribution goroutine
  - Publish enqueues an event (non-blocking once buffered)
  - Subscribe returns a new buffered Subscriber channel
  - Unsubscribe removes and closes a subscription
  - Stop shuts the loop down

# Delivery Semantics

  - At-most-once per subscriber: the broker never retries
  - No ordering guarantee across publishers, FIFO per publisher
  - A subscriber whose buffer is full misses events silently; consumers
    that need completeness should read the store, not the event stream
  - Events are not persisted; a subscriber joining late sees only what
    happens after Subscribe returns

# Usage

Publishing (typically via manager.PublishEvent):

	broker.Publish(&events.Event{
		ID:      uuid.New().String(),
		Type:    events.EventResourceRebalanced,
		Message: "Resource rebalanced",
		Metadata: map[string]string{
			"resource": "db",
		},
	})

Subscribing:

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	for event := range sub {
		fmt.Printf("%s %s %v\n", event.Type, event.Message, event.Metadata)
	}

# Integration Points

This package integrates with:

  - pkg/manager: publishes instance and resource lifecycle events, owns
    the broker instance
  - pkg/controller: publishes resource.rebalanced after persisting a new
    ideal state
  - cmd/burrow: publishes instance.down from failed health probes

# Design Patterns

Fire-and-forget intake:
  - Publish blocks only when the intake buffer (100 events) is full and
    the broker is running; the stop channel breaks the wait on shutdown

Per-subscriber isolation:
  - Each subscriber has its own buffer; one stuck consumer cannot starve
    the others or the publisher

# Troubleshooting

Missing events on a subscriber:

 1. Check the subscriber drains its channel promptly; full buffers drop
 2. Confirm Subscribe happened before the event was published

Broker goroutine leaks in tests:

 1. Always pair Start with Stop; Stop closes the distribution loop

# Performance Characteristics

  - Publish: one channel send; blocks only when the intake buffer (100)
    is full, which at controller event rates (a handful per cycle) does
    not happen in practice
  - Broadcast: one non-blocking send per subscriber per event
  - Memory: bounded by the intake buffer plus 50 events per subscriber

# Best Practices

Do:
  - Treat the stream as a change notification, then read the store for
    authoritative state
  - Unsubscribe before abandoning a channel; the broker holds a reference
    until then
  - Keep Metadata small (ids, not payloads)

Don't:
  - Block inside a consumer loop; drain fast or buffer elsewhere
  - Rely on delivery for correctness; the broker drops under pressure
    by design

# See Also

  - pkg/manager for the broker's owner and the publish helpers
  - pkg/metrics for the polling-based alternative to event consumption
*/
package events
