package render

import (
	"netcanvas/internal/domain"
)

// Surface is a Renderer that also shows inspection text
type Surface interface {
	Renderer
	InfoPanel
}

// Tee forwards every call to each surface in order
type Tee []Surface

type teeMarker []Marker

func (m teeMarker) Move(p domain.Point) {
	for _, marker := range m {
		marker.Move(p)
	}
}

func (t Tee) PlaceMarker(node domain.Node) Marker {
	markers := make(teeMarker, 0, len(t))
	for _, s := range t {
		markers = append(markers, s.PlaceMarker(node))
	}
	return markers
}

func (t Tee) DrawLine(from, to domain.Point, c Color) {
	for _, s := range t {
		s.DrawLine(from, to, c)
	}
}

func (t Tee) ClearAllLines() {
	for _, s := range t {
		s.ClearAllLines()
	}
}

func (t Tee) RemoveAllMarkers() {
	for _, s := range t {
		s.RemoveAllMarkers()
	}
}

func (t Tee) ShowInfo(text string) {
	for _, s := range t {
		s.ShowInfo(text)
	}
}

func (t Tee) ShowEmpty() {
	for _, s := range t {
		s.ShowEmpty()
	}
}
