package render

import (
	"math"

	"netcanvas/internal/domain"
)

// DefaultMarkerSize is the edge length of a node marker
const DefaultMarkerSize = 40.0

// Style is the visual treatment of one connection
type Style struct {
	Color Color
	From  domain.Point
	To    domain.Point
}

// Policy styles connections for markers of a given size
type Policy struct {
	MarkerSize float64
}

// DefaultPolicy uses DefaultMarkerSize
var DefaultPolicy = Policy{MarkerSize: DefaultMarkerSize}

// ConnectionColor classifies an unordered pair of kinds
func ConnectionColor(a, b domain.Kind) (Color, error) {
	switch {
	case a == domain.KindRouter && b == domain.KindRouter:
		return ColorDarkRed, nil
	case a == domain.KindPC && b == domain.KindPC:
		return ColorBlue, nil
	case a == domain.KindRouter && b == domain.KindPC,
		a == domain.KindPC && b == domain.KindRouter:
		return ColorOrange, nil
	default:
		return 0, &domain.UnknownConnectionKindError{A: a, B: b}
	}
}

// ConnectionStyle styles the connection between a and b with DefaultPolicy
func ConnectionStyle(a, b domain.Node) (Style, error) {
	return DefaultPolicy.Style(a, b)
}

// Style returns the colour and endpoints of the line between a and b. Each
// endpoint is pulled in from the node centre by half the marker size so the
// line stops at the icon boundary.
func (p Policy) Style(a, b domain.Node) (Style, error) {
	c, err := ConnectionColor(a.Kind, b.Kind)
	if err != nil {
		return Style{}, err
	}

	r := p.MarkerSize / 2
	angle := math.Atan2(b.Y-a.Y, b.X-a.X)
	dx, dy := math.Cos(angle)*r, math.Sin(angle)*r

	return Style{
		Color: c,
		From:  domain.Point{X: a.X + dx, Y: a.Y + dy},
		To:    domain.Point{X: b.X - dx, Y: b.Y - dy},
	}, nil
}
