// Package ws streams relationship change events to WebSocket clients that
// watch a node.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/campusgraph/socialgraph/internal/metrics"
)

// Hub limits and buffer sizes.
const (
	broadcastBuffer   = 256
	registerBuffer    = 64
	maxClients        = 1000
	maxClientsPerNode = 20
	maxEventPayload   = 4096
	drainTimeout      = 3 * time.Second
	drainPollInterval = 50 * time.Millisecond
)

// nodeMessage is handed to the Run goroutine for delivery to one node's watchers.
type nodeMessage struct {
	nodeID string
	msg    []byte
}

// Hub tracks stream clients by watched node and fans events out to them.
// All client map mutations happen in the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	perNode    map[string]int
	register   chan *Client
	unregister chan *Client
	broadcast  chan nodeMessage
	shutdown   chan struct{}
	done       chan struct{}
	count      atomic.Int64
	log        *logrus.Logger
	seq        *EventSequence
	buffer     *EventBuffer
	now        func() time.Time
}

// NewHub creates a Hub. Call Run to start delivery.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		perNode:    make(map[string]int),
		register:   make(chan *Client, registerBuffer),
		unregister: make(chan *Client, registerBuffer),
		broadcast:  make(chan nodeMessage, broadcastBuffer),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
		seq:        NewEventSequence(),
		buffer:     NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
		now:        time.Now,
	}
}

// Run is the hub event loop. It returns after Shutdown or ctx cancellation,
// once connected clients have been drained.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.buffer.Stop()

	for {
		select {
		case <-ctx.Done():
			h.drainClients()
			return
		case <-h.shutdown:
			h.drainClients()
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			if h.clients[c] {
				h.remove(c)
				h.log.WithFields(logrus.Fields{"node_id": c.NodeID, "total": len(h.clients)}).Debug("stream client left")
			}
		case m := <-h.broadcast:
			for c := range h.clients {
				if c.NodeID != m.nodeID {
					continue
				}
				select {
				case c.send <- m.msg:
				default:
					h.log.WithField("node_id", c.NodeID).Warn("stream client too slow, disconnecting")
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) add(c *Client) {
	switch {
	case len(h.clients) >= maxClients:
		h.log.Warn("stream connection limit reached, dropping client")
		c.closeSend()
		return
	case h.perNode[c.NodeID] >= maxClientsPerNode:
		h.log.WithField("node_id", c.NodeID).Warn("per-node stream limit reached, dropping client")
		c.closeSend()
		return
	}

	h.clients[c] = true
	h.perNode[c.NodeID]++
	h.setCount()
	h.log.WithFields(logrus.Fields{"node_id": c.NodeID, "total": len(h.clients)}).Debug("stream client joined")
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	c.closeSend()

	if h.perNode[c.NodeID]--; h.perNode[c.NodeID] <= 0 {
		delete(h.perNode, c.NodeID)
	}

	h.setCount()
}

func (h *Hub) setCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Publish sends an event of eventType carrying payload to the watchers of
// each node in nodeIDs. Each node's stream gets its own sequence id.
func (h *Hub) Publish(eventType string, nodeIDs []string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).WithField("type", eventType).Error("encoding event payload")
		return
	}

	for _, id := range nodeIDs {
		h.publishTo(eventType, id, data)
	}

	metrics.EventsPublished.WithLabelValues(eventType).Inc()
}

func (h *Hub) publishTo(eventType, nodeID string, data json.RawMessage) {
	evt := Event{
		Type:   eventType,
		ID:     h.seq.Next(nodeID),
		NodeID: nodeID,
		Data:   data,
		Time:   h.now().UTC(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("encoding event")
		return
	}

	if len(msg) > maxEventPayload {
		h.log.WithFields(logrus.Fields{
			"node_id":      nodeID,
			"type":         eventType,
			"payload_size": len(msg),
		}).Warn("dropping oversized event")
		return
	}

	h.buffer.Append(&evt)

	select {
	case h.broadcast <- nodeMessage{nodeID: nodeID, msg: msg}:
	default:
		h.log.WithField("node_id", nodeID).Warn("broadcast channel full, event kept for replay only")
	}
}

// Shutdown tells connected clients the server is going away, waits briefly
// for their queues to flush, and closes them. It blocks until Run returns.
func (h *Hub) Shutdown() {
	select {
	case <-h.shutdown:
	default:
		close(h.shutdown)
	}
	<-h.done
}

func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining stream clients")

	bye := []byte(`{"type":"shutdown","reason":"server shutting down"}`)
	for c := range h.clients {
		select {
		case c.send <- bye:
		default:
		}
	}

	deadline := time.NewTimer(drainTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for !h.queuesEmpty() {
		select {
		case <-deadline.C:
			h.log.Warn("stream drain timed out, closing remaining clients")
			h.closeAll()
			return
		case <-ticker.C:
		}
	}

	h.closeAll()
}

func (h *Hub) queuesEmpty() bool {
	for c := range h.clients {
		if len(c.send) > 0 {
			return false
		}
	}
	return true
}

func (h *Hub) closeAll() {
	for c := range h.clients {
		c.closeSend()
	}

	h.clients = make(map[*Client]bool)
	h.perNode = make(map[string]int)
	h.setCount()
}

// ReplayEvents queues the node's buffered events after lastEventID on c.
// It reports false when lastEventID has already been evicted.
func (h *Hub) ReplayEvents(c *Client, lastEventID uint64) bool {
	oldest := h.buffer.OldestID(c.NodeID)
	if oldest > 0 && lastEventID > 0 && lastEventID < oldest-1 {
		return false
	}

	for _, evt := range h.buffer.Since(c.NodeID, lastEventID) {
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		select {
		case c.send <- msg:
		default:
			return true
		}
	}
	return true
}
