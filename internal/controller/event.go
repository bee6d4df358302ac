package controller

import (
	"netcanvas/internal/domain"
)

// EventKind is the phase of a pointer gesture
type EventKind string

const (
	EventPress   EventKind = "press"
	EventMove    EventKind = "move"
	EventRelease EventKind = "release"
)

// Target is what the pointer was over when the event fired
type Target string

const (
	TargetBackground Target = "background"
	TargetMarker     Target = "marker"
)

// PointerEvent is the single message a renderer sends into the controller.
// NodeID is only meaningful when Target is TargetMarker.
type PointerEvent struct {
	Kind     EventKind    `json:"kind" validate:"required,oneof=press move release"`
	Target   Target       `json:"target" validate:"omitempty,oneof=background marker"`
	NodeID   int          `json:"nodeId,omitempty" validate:"required_if=Target marker,gte=0"`
	Position domain.Point `json:"position"`
}

// Press builds a press on the canvas background
func Press(x, y float64) PointerEvent {
	return PointerEvent{Kind: EventPress, Target: TargetBackground, Position: domain.Point{X: x, Y: y}}
}

// PressMarker builds a press on the marker of node id
func PressMarker(id int, x, y float64) PointerEvent {
	return PointerEvent{Kind: EventPress, Target: TargetMarker, NodeID: id, Position: domain.Point{X: x, Y: y}}
}

// MoveTo builds a pointer move
func MoveTo(x, y float64) PointerEvent {
	return PointerEvent{Kind: EventMove, Position: domain.Point{X: x, Y: y}}
}

// Release builds a pointer release
func Release(x, y float64) PointerEvent {
	return PointerEvent{Kind: EventRelease, Position: domain.Point{X: x, Y: y}}
}
