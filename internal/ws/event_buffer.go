package ws

import (
	"slices"
	"sync"
	"time"
)

const (
	defaultBufferMaxLen = 500
	defaultBufferMaxAge = 30 * time.Minute
	bufferSweepInterval = 5 * time.Minute
)

// EventBuffer keeps each node's recent events so a reconnecting client can
// resume from its last seen id.
type EventBuffer struct {
	mu      sync.RWMutex
	streams map[string][]Event
	maxAge  time.Duration
	maxLen  int
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewEventBuffer creates an EventBuffer and starts its sweeper, which drops
// streams whose newest event is older than maxAge.
func NewEventBuffer(maxLen int, maxAge time.Duration) *EventBuffer {
	eb := &EventBuffer{
		streams: make(map[string][]Event),
		maxAge:  maxAge,
		maxLen:  maxLen,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go eb.sweep()
	return eb
}

// Stop halts the sweeper. It is safe to call more than once.
func (eb *EventBuffer) Stop() {
	eb.once.Do(func() { close(eb.stop) })
}

func (eb *EventBuffer) sweep() {
	ticker := time.NewTicker(bufferSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-eb.stop:
			return
		case <-ticker.C:
			eb.dropIdle()
		}
	}
}

func (eb *EventBuffer) dropIdle() {
	cutoff := eb.now().Add(-eb.maxAge)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	for nodeID, events := range eb.streams {
		if len(events) == 0 || events[len(events)-1].Time.Before(cutoff) {
			delete(eb.streams, nodeID)
		}
	}
}

// Append records evt on its node's stream, trimming expired and excess entries.
func (eb *EventBuffer) Append(evt *Event) {
	cutoff := eb.now().Add(-eb.maxAge)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	events := eb.streams[evt.NodeID]
	fresh := slices.IndexFunc(events, func(e Event) bool { return !e.Time.Before(cutoff) })
	if fresh < 0 {
		events = events[:0]
	} else {
		events = events[fresh:]
	}

	events = append(events, *evt)
	if over := len(events) - eb.maxLen; over > 0 {
		events = slices.Clone(events[over:])
	}

	eb.streams[evt.NodeID] = events
}

// Since returns a copy of the node's events with ID greater than lastEventID.
func (eb *EventBuffer) Since(nodeID string, lastEventID uint64) []Event {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	events := eb.streams[nodeID]
	i, _ := slices.BinarySearchFunc(events, lastEventID+1, func(e Event, id uint64) int {
		switch {
		case e.ID < id:
			return -1
		case e.ID > id:
			return 1
		default:
			return 0
		}
	})

	if i >= len(events) {
		return nil
	}

	return slices.Clone(events[i:])
}

// OldestID returns the oldest buffered event id for a node, or 0 when none is held.
func (eb *EventBuffer) OldestID(nodeID string) uint64 {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if events := eb.streams[nodeID]; len(events) > 0 {
		return events[0].ID
	}
	return 0
}
