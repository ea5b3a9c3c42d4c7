package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Event types published when relationships change.
const (
	EventRelationshipCreated  = "relationship.created"
	EventRelationshipStatus   = "relationship.status_changed"
	EventRelationshipStrength = "relationship.strength_updated"
)

// Event is the structured message sent to stream clients.
type Event struct {
	Type   string          `json:"type"`
	ID     uint64          `json:"id"`
	NodeID string          `json:"node_id"`
	Data   json.RawMessage `json:"data"`
	Time   time.Time       `json:"time"`
}

// SubscribeMsg is sent by the client on connect to request event replay.
type SubscribeMsg struct {
	Type        string `json:"type"`
	LastEventID uint64 `json:"last_event_id"`
}

// ResetMsg tells the client to do a full refresh (requested events too old).
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// EventSequence tracks monotonic event IDs per node.
type EventSequence struct {
	mu       sync.Mutex
	counters map[string]*atomic.Uint64
}

// NewEventSequence creates a new EventSequence.
func NewEventSequence() *EventSequence {
	return &EventSequence{
		counters: make(map[string]*atomic.Uint64),
	}
}

// Next returns the next sequence number for a node's stream.
func (es *EventSequence) Next(nodeID string) uint64 {
	es.mu.Lock()
	counter, ok := es.counters[nodeID]
	if !ok {
		counter = &atomic.Uint64{}
		es.counters[nodeID] = counter
	}
	es.mu.Unlock()

	return counter.Add(1)
}
