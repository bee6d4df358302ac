package service

import (
	"netcanvas/internal/domain"
	"netcanvas/internal/render"
)

// MarkerPayload describes a placed or moved marker
type MarkerPayload struct {
	NodeID int     `json:"node_id"`
	Kind   string  `json:"kind,omitempty"`
	Status string  `json:"status,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// LinePayload describes a drawn connection line
type LinePayload struct {
	From  domain.Point `json:"from"`
	To    domain.Point `json:"to"`
	Color string       `json:"color"`
}

// InfoPayload carries inspection or notice text
type InfoPayload struct {
	Text string `json:"text"`
}

// ModePayload reports the current mode
type ModePayload struct {
	Mode string `json:"mode"`
}

// StreamRenderer turns render instructions into events on the bus, so a
// browser connected over SSE can replay them onto its own canvas
type StreamRenderer struct {
	bus *EventBus
}

var _ render.Surface = (*StreamRenderer)(nil)

// NewStreamRenderer creates a renderer publishing to bus
func NewStreamRenderer(bus *EventBus) *StreamRenderer {
	return &StreamRenderer{bus: bus}
}

type streamMarker struct {
	id  int
	bus *EventBus
}

func (m *streamMarker) Move(p domain.Point) {
	m.bus.Publish(Event{
		Type:    EventMarkerMoved,
		Payload: MarkerPayload{NodeID: m.id, X: p.X, Y: p.Y},
	})
}

// PlaceMarker publishes marker_placed
func (s *StreamRenderer) PlaceMarker(node domain.Node) render.Marker {
	s.bus.Publish(Event{
		Type: EventMarkerPlaced,
		Payload: MarkerPayload{
			NodeID: node.ID,
			Kind:   string(node.Kind),
			Status: node.Status,
			X:      node.X,
			Y:      node.Y,
		},
	})
	return &streamMarker{id: node.ID, bus: s.bus}
}

// DrawLine publishes line_drawn
func (s *StreamRenderer) DrawLine(from, to domain.Point, c render.Color) {
	s.bus.Publish(Event{
		Type:    EventLineDrawn,
		Payload: LinePayload{From: from, To: to, Color: c.Hex()},
	})
}

// ClearAllLines publishes lines_cleared
func (s *StreamRenderer) ClearAllLines() {
	s.bus.Publish(Event{Type: EventLinesCleared})
}

// RemoveAllMarkers publishes markers_cleared
func (s *StreamRenderer) RemoveAllMarkers() {
	s.bus.Publish(Event{Type: EventMarkersCleared})
}

// ShowInfo publishes info
func (s *StreamRenderer) ShowInfo(text string) {
	s.bus.Publish(Event{Type: EventInfo, Payload: InfoPayload{Text: text}})
}

// ShowEmpty publishes info_cleared
func (s *StreamRenderer) ShowEmpty() {
	s.bus.Publish(Event{Type: EventInfoCleared})
}
