package service

import (
	"sync"
)

// EventType defines the type of event
type EventType string

const (
	EventMarkerPlaced   EventType = "marker_placed"
	EventMarkerMoved    EventType = "marker_moved"
	EventLineDrawn      EventType = "line_drawn"
	EventLinesCleared   EventType = "lines_cleared"
	EventMarkersCleared EventType = "markers_cleared"
	EventInfo           EventType = "info"
	EventInfoCleared    EventType = "info_cleared"
	EventModeChanged    EventType = "mode_changed"
	EventTopologyLoaded EventType = "topology_loaded"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events. Channel subscribers
// that fall behind miss events; handlers added with Forward see every event.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
	forwarders  []*forwarder
}

type forwarder struct {
	fn func(Event)
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Forward calls fn synchronously, in publish order, for every event until the
// returned stop function is called. fn runs on the publisher's goroutine, so
// it may block the publisher but never loses an event.
func (eb *EventBus) Forward(fn func(Event)) (stop func()) {
	f := &forwarder{fn: fn}
	eb.mu.Lock()
	eb.forwarders = append(eb.forwarders, f)
	eb.mu.Unlock()

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		for i, other := range eb.forwarders {
			if other == f {
				eb.forwarders = append(eb.forwarders[:i], eb.forwarders[i+1:]...)
				return
			}
		}
	}
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, f := range eb.forwarders {
		f.fn(event)
	}
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
