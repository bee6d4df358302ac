// Package render holds the contracts between the topology core and whatever
// paints it, the connection style policy, and a raster Canvas implementation.
//
// The core never assumes a rendering technology. It places markers, draws
// and clears lines, and shows inspection text through the Renderer and
// InfoPanel interfaces. Pointer input flows the other way as messages into
// the controller's single intake.
package render

import (
	"fmt"
	"image/color"

	"netcanvas/internal/domain"
)

// Marker is the visual representation of a placed node
type Marker interface {
	Move(p domain.Point)
}

// Renderer paints markers and connection lines
type Renderer interface {
	PlaceMarker(node domain.Node) Marker
	DrawLine(from, to domain.Point, c Color)
	ClearAllLines()
	RemoveAllMarkers()
}

// InfoPanel displays human-readable node details
type InfoPanel interface {
	ShowInfo(text string)
	ShowEmpty()
}

// Color is a 24-bit RGB colour
type Color uint32

const (
	ColorDarkRed Color = 0x8b0000
	ColorBlue    Color = 0x0000ff
	ColorOrange  Color = 0xffa500
)

// Hex returns the colour as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// RGBA converts the colour to an opaque color.RGBA
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(c >> 16),
		G: uint8(c >> 8),
		B: uint8(c),
		A: 0xff,
	}
}

func (c Color) String() string {
	return c.Hex()
}
