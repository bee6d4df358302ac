package render

import (
	"image"
	"image/color"
	"io"
	"strconv"

	"github.com/fogleman/gg"

	"netcanvas/internal/domain"
)

var (
	colorBackground = color.RGBA{0xe3, 0xe2, 0xe1, 0xff}
	colorRouter     = color.RGBA{0x2f, 0x3e, 0x4e, 0xff}
	colorPC         = color.RGBA{0x3a, 0x6e, 0xa5, 0xff}
	colorLabel      = color.RGBA{0x33, 0x33, 0x33, 0xff}
)

// Line is a drawn connection segment
type Line struct {
	From  domain.Point
	To    domain.Point
	Color Color
}

// MarkerState is the current state of a placed marker
type MarkerState struct {
	NodeID   int
	Kind     domain.Kind
	Position domain.Point
}

type canvasMarker struct {
	state MarkerState
}

func (m *canvasMarker) Move(p domain.Point) {
	m.state.Position = p
}

// Canvas is an in-memory Renderer and InfoPanel that rasterises to PNG
type Canvas struct {
	Width      int
	Height     int
	MarkerSize float64

	markers []*canvasMarker
	lines   []Line
	info    string
}

// NewCanvas creates an empty canvas
func NewCanvas(width, height int, markerSize float64) *Canvas {
	if markerSize <= 0 {
		markerSize = DefaultMarkerSize
	}
	return &Canvas{
		Width:      width,
		Height:     height,
		MarkerSize: markerSize,
	}
}

// PlaceMarker adds a marker for node
func (c *Canvas) PlaceMarker(node domain.Node) Marker {
	m := &canvasMarker{state: MarkerState{
		NodeID:   node.ID,
		Kind:     node.Kind,
		Position: node.Position(),
	}}
	c.markers = append(c.markers, m)
	return m
}

// DrawLine adds a line segment
func (c *Canvas) DrawLine(from, to domain.Point, col Color) {
	c.lines = append(c.lines, Line{From: from, To: to, Color: col})
}

// ClearAllLines removes every line
func (c *Canvas) ClearAllLines() {
	c.lines = c.lines[:0]
}

// RemoveAllMarkers removes every marker
func (c *Canvas) RemoveAllMarkers() {
	c.markers = c.markers[:0]
}

// ShowInfo records the inspection text
func (c *Canvas) ShowInfo(text string) {
	c.info = text
}

// ShowEmpty clears the inspection text
func (c *Canvas) ShowEmpty() {
	c.info = ""
}

// Info returns the last inspection text
func (c *Canvas) Info() string {
	return c.info
}

// Lines returns a copy of the drawn lines
func (c *Canvas) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Markers returns the state of every placed marker
func (c *Canvas) Markers() []MarkerState {
	out := make([]MarkerState, 0, len(c.markers))
	for _, m := range c.markers {
		out = append(out, m.state)
	}
	return out
}

// Image rasterises lines first, then markers with their id labels
func (c *Canvas) Image() image.Image {
	dc := gg.NewContext(c.Width, c.Height)
	dc.SetColor(colorBackground)
	dc.Clear()

	dc.SetLineWidth(2)
	for _, l := range c.lines {
		dc.SetColor(l.Color.RGBA())
		dc.DrawLine(l.From.X, l.From.Y, l.To.X, l.To.Y)
		dc.Stroke()
	}

	half := c.MarkerSize / 2
	for _, m := range c.markers {
		p := m.state.Position
		switch m.state.Kind {
		case domain.KindRouter:
			dc.SetColor(colorRouter)
			dc.DrawCircle(p.X, p.Y, half)
		default:
			dc.SetColor(colorPC)
			dc.DrawRectangle(p.X-half, p.Y-half, c.MarkerSize, c.MarkerSize)
		}
		dc.Fill()

		dc.SetColor(colorLabel)
		dc.DrawStringAnchored(strconv.Itoa(m.state.NodeID), p.X, p.Y+half+10, 0.5, 0.5)
	}

	return dc.Image()
}

// WritePNG encodes the rasterised canvas as PNG
func (c *Canvas) WritePNG(w io.Writer) error {
	dc := gg.NewContextForImage(c.Image())
	return dc.EncodePNG(w)
}
